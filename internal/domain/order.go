package domain

import "time"

// OrderStatus описывает состояние заказа.
type OrderStatus string

// OrderStatusCompleted — единственное состояние заказа в этой системе: заказ
// существует только после успешного коммита списания остатка, промежуточных
// состояний нет.
const OrderStatusCompleted OrderStatus = "completed"

// Order — неизменяемая запись о выполненном заказе.
type Order struct {
	ID        string
	UserID    string
	ProductID string
	// Quantity — количество единиц товара, строго положительное.
	Quantity int32
	// TotalMinor — итоговая стоимость: цена товара на момент списания,
	// умноженная на количество. Считается в минимальных единицах, без округлений.
	TotalMinor int64
	Status     OrderStatus
	CreatedAt  time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o Order) ValidateInvariants() []error {
	var errs []error

	if o.UserID == "" {
		errs = append(errs, ErrUserRequired)
	}
	if o.ProductID == "" {
		errs = append(errs, ErrProductIDRequired)
	}
	if o.Quantity <= 0 {
		errs = append(errs, ErrQuantityInvalid)
	}
	if o.TotalMinor < 0 {
		errs = append(errs, ErrPriceNegative)
	}
	if o.Status != OrderStatusCompleted {
		errs = append(errs, ErrStatusInvalid)
	}

	return errs
}
