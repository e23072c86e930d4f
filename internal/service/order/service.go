package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderflow/internal/domain"
	"github.com/vladislavdragonenkov/orderflow/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/orderflow/internal/metrics"
)

const (
	// lockTTL ограничивает, как долго упавший держатель замка может блокировать
	// оформление дефицитного товара.
	lockTTL = 10 * time.Second
	// releaseTimeout — сколько ждём снятия распределённого замка после операции.
	releaseTimeout = 2 * time.Second

	lockKeyPrefix = "product_order:"
)

// Причины отказов для метрик.
const (
	failReasonNotFound     = "product_not_found"
	failReasonBusy         = "product_busy"
	failReasonInsufficient = "insufficient_stock"
	failReasonTransaction  = "transaction_failed"
)

// Service оформляет заказы против общего склада, не допуская перепродажи
// остатка даже при конкурентных запросах на один и тот же товар.
type Service struct {
	uow           domain.UnitOfWork
	locks         domain.LockManager
	logger        *log.Entry
	metrics       *metrics.PlacementMetrics
	kafkaProducer *kafka.Producer // опциональный Kafka producer для событий заказов
}

// NewService создаёт рабочий экземпляр сервиса оформления заказов.
func NewService(uow domain.UnitOfWork, locks domain.LockManager, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "order")
	}
	return &Service{
		uow:     uow,
		locks:   locks,
		logger:  logger,
		metrics: metrics.NewPlacementMetrics(),
	}
}

// NewServiceWithKafka создаёт сервис с Kafka producer для публикации событий заказов.
func NewServiceWithKafka(uow domain.UnitOfWork, locks domain.LockManager, kafkaProducer *kafka.Producer, logger *log.Entry) *Service {
	svc := NewService(uow, locks, logger)
	svc.kafkaProducer = kafkaProducer
	return svc
}

// NewServiceWithoutMetrics создаёт сервис без метрик (для тестов).
func NewServiceWithoutMetrics(uow domain.UnitOfWork, locks domain.LockManager, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "order")
	}
	return &Service{
		uow:    uow,
		locks:  locks,
		logger: logger,
	}
}

// PlaceOrder оформляет заказ на quantity единиц товара от имени userID.
//
// Внутри одной транзакции: строка товара берётся под эксклюзивный замок;
// если остаток в зоне дефицита, дополнительно делается одна неблокирующая
// попытка взять распределённый замок product_order:{productID} — отказ любого
// рода означает ErrProductBusy и откат. Дальше проверка остатка, списание и
// запись заказа; заказ существует только вместе с закоммиченным списанием.
// Распределённый замок снимается на любом исходе.
func (s *Service) PlaceOrder(ctx context.Context, userID, productID string, quantity int32) (domain.Order, error) {
	start := time.Now()
	if s.metrics != nil {
		s.metrics.RecordPlacementStarted()
	}
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordPlacementFinished()
			s.metrics.RecordPlacementDuration(time.Since(start))
		}
	}()

	var (
		order domain.Order
		lock  domain.LockHandle
	)
	defer func() {
		if lock == nil {
			return
		}
		// Снимаем замок даже если исходный контекст уже отменён.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil {
			s.logger.WithError(err).WithField("product_id", productID).Warn("failed to release product lock")
		}
	}()

	err := s.uow.Within(ctx, func(tx domain.PlacementTx) error {
		product, err := tx.LockProductForUpdate(ctx, productID)
		if err != nil {
			return err
		}

		if product.LowStock() {
			handle, acquireErr := s.locks.Acquire(ctx, lockKeyPrefix+productID, lockTTL)
			if acquireErr != nil {
				if !errors.Is(acquireErr, domain.ErrLockBusy) {
					// Сбой бэкенда замков неотличим для клиента от конкуренции,
					// поэтому тоже превращается в retryable-отказ.
					s.logger.WithError(acquireErr).WithField("product_id", productID).Warn("product lock backend failed")
				}
				if s.metrics != nil {
					s.metrics.RecordLockContention()
				}
				return domain.ErrProductBusy
			}
			lock = handle
		}

		if product.Stock < quantity {
			return domain.ErrInsufficientStock
		}

		if err := tx.DecrementStock(ctx, productID, quantity); err != nil {
			return err
		}

		order = domain.Order{
			ID:         uuid.NewString(),
			UserID:     userID,
			ProductID:  productID,
			Quantity:   quantity,
			TotalMinor: product.PriceMinor * int64(quantity),
			Status:     domain.OrderStatusCompleted,
			CreatedAt:  time.Now().UTC(),
		}
		return tx.AppendOrder(ctx, order)
	})
	if err != nil {
		return domain.Order{}, s.placementFailed(userID, productID, quantity, err)
	}

	if s.metrics != nil {
		s.metrics.RecordOrderPlaced()
	}
	s.logger.WithFields(log.Fields{
		"order_id":   order.ID,
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	}).Info("order placed")

	s.publishOrderPlaced(order)

	return order, nil
}

// placementFailed классифицирует ошибку оформления: бизнес-отказы проходят
// как есть, всё неожиданное логируется и оборачивается в ErrTransactionFailed.
func (s *Service) placementFailed(userID, productID string, quantity int32, err error) error {
	fields := log.Fields{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	}

	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		s.recordFailure(failReasonNotFound)
		s.logger.WithFields(fields).Warn("order failed: product not found")
		return err
	case errors.Is(err, domain.ErrProductBusy):
		s.recordFailure(failReasonBusy)
		s.logger.WithFields(fields).Debug("order failed: product busy")
		return err
	case errors.Is(err, domain.ErrInsufficientStock):
		s.recordFailure(failReasonInsufficient)
		s.logger.WithFields(fields).Debug("order failed: insufficient stock")
		return err
	default:
		s.recordFailure(failReasonTransaction)
		s.logger.WithError(err).WithFields(fields).Error("order failed")
		return fmt.Errorf("%w: %v", domain.ErrTransactionFailed, err)
	}
}

func (s *Service) recordFailure(reason string) {
	if s.metrics != nil {
		s.metrics.RecordOrderFailed(reason)
	}
}

// publishOrderPlaced публикует событие заказа в Kafka (если producer настроен)
func (s *Service) publishOrderPlaced(order domain.Order) {
	if s.kafkaProducer == nil {
		return // Kafka не настроен, пропускаем
	}

	event := kafka.NewOrderPlacedEvent(order.ID, order.UserID, order.ProductID, order.Quantity, order.TotalMinor)
	if err := s.kafkaProducer.PublishOrderEvent(event); err != nil {
		// Заказ уже закоммичен; потеря события не должна ронять запрос.
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to publish order event to kafka")
	}
}
