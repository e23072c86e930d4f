package domain

import (
	"context"
	"time"
)

// PlacementTx — операции над хранилищем, доступные внутри одной транзакции
// оформления заказа.
type PlacementTx interface {
	// LockProductForUpdate читает строку товара под эксклюзивным замком,
	// который удерживается до конца транзакции. Конкурирующая транзакция,
	// запросившая ту же строку, блокируется до коммита или отката этой.
	// Возвращает ErrProductNotFound, если товара нет.
	LockProductForUpdate(ctx context.Context, productID string) (Product, error)
	// DecrementStock уменьшает остаток товара в рамках текущей транзакции.
	// Проверка stock >= qty лежит на вызывающей стороне: check-then-act
	// защищён уже взятым замком строки.
	DecrementStock(ctx context.Context, productID string, qty int32) error
	// AppendOrder добавляет запись заказа в рамках текущей транзакции.
	AppendOrder(ctx context.Context, order Order) error
}

// UnitOfWork выполняет fn внутри одной атомарной транзакции: любая ошибка fn
// или коммита откатывает все изменения целиком.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(tx PlacementTx) error) error
}

// LockHandle — удерживаемый распределённый замок.
type LockHandle interface {
	// Release снимает замок, если он всё ещё принадлежит этому держателю.
	// Идемпотентен; обязан вызываться на любом исходе операции.
	Release(ctx context.Context) error
}

// LockManager выдаёт именованные распределённые замки с ограниченным временем
// жизни. Замок должен быть виден всем процессам, разделяющим бэкенд.
type LockManager interface {
	// Acquire делает ровно одну неблокирующую попытку взять замок.
	// Возвращает ErrLockBusy, если ключ уже занят другим держателем;
	// ttl ограничивает, как долго упавший держатель может блокировать остальных.
	Acquire(ctx context.Context, key string, ttl time.Duration) (LockHandle, error)
}
