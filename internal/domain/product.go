package domain

import "time"

// LowStockThreshold — уровень остатка, начиная с которого на горячий товар
// включается дополнительный распределённый замок при оформлении заказа.
const LowStockThreshold = 5

// Product описывает товар на складе.
type Product struct {
	ID          string
	Name        string
	Description string
	// Stock — текущий остаток на складе, не может уходить в минус.
	Stock int32
	// PriceMinor — цена за единицу в минимальных денежных единицах (например, копейки).
	PriceMinor int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// LowStock сообщает, находится ли товар в зоне дефицита.
func (p Product) LowStock() bool {
	return p.Stock <= LowStockThreshold
}

// ValidateInvariants проверяет базовые инварианты товара и возвращает список замечаний.
func (p Product) ValidateInvariants() []error {
	var errs []error

	if p.ID == "" {
		errs = append(errs, ErrProductIDRequired)
	}
	if p.Stock < 0 {
		errs = append(errs, ErrStockNegative)
	}
	if p.PriceMinor < 0 {
		errs = append(errs, ErrPriceNegative)
	}

	return errs
}
