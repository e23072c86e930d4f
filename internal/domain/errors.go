package domain

import "errors"

var (
	// ErrProductNotFound возвращается, если товар не найден в хранилище.
	ErrProductNotFound = errors.New("product not found")
	// ErrProductBusy — товар в дефиците и уже обрабатывается другим запросом.
	// Покрывает и реальную конкуренцию за замок, и ошибки его бэкенда:
	// вызывающей стороне в обоих случаях остаётся только повторить попытку.
	ErrProductBusy = errors.New("product is currently being processed")
	// ErrInsufficientStock — запрошенное количество превышает текущий остаток.
	ErrInsufficientStock = errors.New("insufficient stock available")
	// ErrTransactionFailed — коммит или иная неожиданная ошибка внутри unit of work.
	ErrTransactionFailed = errors.New("order transaction failed")
	// ErrLockBusy возвращается менеджером замков, когда ключ уже занят.
	ErrLockBusy = errors.New("lock already held")

	// Ошибка отсутствующего идентификатора товара.
	ErrProductIDRequired = errors.New("product_id is required")
	// Ошибка отсутствующего идентификатора пользователя.
	ErrUserRequired = errors.New("user_id is required")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrQuantityInvalid = errors.New("quantity must be greater than zero")
	// Ошибка отрицательного остатка.
	ErrStockNegative = errors.New("stock must be non-negative")
	// Ошибка отрицательной цены или суммы.
	ErrPriceNegative = errors.New("price must be non-negative")
	// Ошибка недопустимого статуса заказа.
	ErrStatusInvalid = errors.New("order status is invalid")
)

// IsRetryable проверяет, имеет ли смысл повторить запрос без изменений.
// Повторять стоит только конкуренцию за дефицитный товар; нехватка остатка
// и инфраструктурные сбои повтором того же запроса не лечатся.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrProductBusy)
}
