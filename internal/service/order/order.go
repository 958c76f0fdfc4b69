package order

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ANJAN672/Ecom/internal/logging"
	"github.com/ANJAN672/Ecom/internal/models"
	"github.com/ANJAN672/Ecom/internal/mykafka"
	"github.com/ANJAN672/Ecom/internal/service/address"
	"github.com/ANJAN672/Ecom/internal/service/cart"
	"github.com/ANJAN672/Ecom/internal/service/catalog"
)

type Service struct {
	DB        *gorm.DB
	Cart      *cart.Service
	Addresses *address.Service
	Producer  *mykafka.Producer
	now       func() time.Time
}

func New(db *gorm.DB, cartSvc *cart.Service, addrSvc *address.Service, producer *mykafka.Producer) *Service {
	return &Service{
		DB:        db,
		Cart:      cartSvc,
		Addresses: addrSvc,
		Producer:  producer,
		now:       time.Now,
	}
}

type CreateOrderInput struct {
	AddressID     uint                 `json:"address_id"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	Notes         string               `json:"notes"`
}

// CreateOrder is the checkout: everything after validation happens in one
// transaction, so a failure at any step leaves stock, cart and orders exactly
// as they were.
func (s *Service) CreateOrder(ctx context.Context, userID uint, in CreateOrderInput) (*models.Order, error) {
	if in.PaymentMethod != models.PaymentMethodCOD {
		return nil, fmt.Errorf("%s is coming soon, only cash on delivery is available now: %w",
			strings.ToUpper(string(in.PaymentMethod)), ErrPaymentMethodUnavailable)
	}

	validation, err := s.Cart.ValidateForCheckout(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !validation.Valid {
		return nil, &CartInvalidError{Issues: validation.Issues}
	}

	items, err := s.Cart.ItemsForCheckout(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	addr, err := s.Addresses.Get(ctx, in.AddressID, userID)
	if err != nil {
		return nil, err
	}

	var total float64
	for _, it := range items {
		total += round2(it.Product.Price * float64(it.Quantity))
	}
	total = round2(total)

	var ord models.Order
	for attempt := 0; ; attempt++ {
		ord = models.Order{
			OrderNumber:      newOrderNumber(s.now()),
			UserID:           userID,
			Status:           models.OrderStatusPending,
			PaymentMethod:    in.PaymentMethod,
			PaymentStatus:    models.PaymentStatusPending,
			TotalAmount:      total,
			ShippingName:     addr.FullName,
			ShippingPhone:    addr.Phone,
			ShippingLine1:    addr.Line1,
			ShippingLine2:    addr.Line2,
			ShippingCity:     addr.City,
			ShippingState:    addr.State,
			ShippingPostCode: addr.PostCode,
			Notes:            in.Notes,
		}

		err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&ord).Error; err != nil {
				return err
			}

			for _, it := range items {
				p := it.Product
				productID := it.ProductID
				item := models.OrderItem{
					OrderID:         ord.ID,
					ProductID:       &productID,
					Quantity:        it.Quantity,
					PriceAtPurchase: p.Price,
					Subtotal:        round2(p.Price * float64(it.Quantity)),
					ProductName:     p.Name,
					ProductImage:    p.ImageURL,
				}
				if err := tx.Create(&item).Error; err != nil {
					return err
				}

				// Stock may have moved since validation; the conditional
				// decrement is the authoritative check and aborts the whole
				// transaction when it comes up short.
				if _, err := catalog.DecreaseStock(ctx, tx, it.ProductID, it.Quantity); err != nil {
					return err
				}
			}

			return tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
		})
		if err == nil {
			break
		}
		// Order numbers are random; a duplicate means we lost the suffix
		// lottery, so draw again.
		if errors.Is(err, gorm.ErrDuplicatedKey) && attempt < 3 {
			continue
		}
		return nil, err
	}

	s.publish(ctx, map[string]any{
		"type":        "order_created",
		"orderID":     ord.ID,
		"orderNumber": ord.OrderNumber,
		"userID":      userID,
		"total":       ord.TotalAmount,
	})

	return s.FindOne(ctx, ord.ID, userID)
}

// FindOne checks existence before ownership so the two failures stay
// distinguishable.
func (s *Service) FindOne(ctx context.Context, id, userID uint) (*models.Order, error) {
	var ord models.Order
	err := s.DB.WithContext(ctx).Preload("Items").First(&ord, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("order #%d: %w", id, ErrOrderNotFound)
	}
	if err != nil {
		return nil, err
	}
	if ord.UserID != userID {
		return nil, ErrForbidden
	}
	return &ord, nil
}

func (s *Service) FindByOrderNumber(ctx context.Context, orderNumber string, userID uint) (*models.Order, error) {
	var ord models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items").
		Where("order_number = ?", orderNumber).
		First(&ord).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("order %s: %w", orderNumber, ErrOrderNotFound)
	}
	if err != nil {
		return nil, err
	}
	if ord.UserID != userID {
		return nil, ErrForbidden
	}
	return &ord, nil
}

func (s *Service) ListByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// UpdateStatus applies one step of the status machine. Delivering a
// cash-on-delivery order also completes its payment, the cash changed hands
// at the door.
func (s *Service) UpdateStatus(ctx context.Context, id uint, newStatus models.OrderStatus) (*models.Order, error) {
	var ord models.Order
	err := s.DB.WithContext(ctx).Preload("Items").First(&ord, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("order #%d: %w", id, ErrOrderNotFound)
	}
	if err != nil {
		return nil, err
	}

	if !canTransition(ord.Status, newStatus) {
		return nil, &InvalidTransitionError{From: ord.Status, To: newStatus}
	}

	fields := map[string]any{"status": newStatus}
	if ord.PaymentMethod == models.PaymentMethodCOD && newStatus == models.OrderStatusDelivered {
		fields["payment_status"] = models.PaymentStatusCompleted
	}
	if err := s.DB.WithContext(ctx).Model(&ord).Updates(fields).Error; err != nil {
		return nil, err
	}
	ord.Status = newStatus
	if ps, ok := fields["payment_status"]; ok {
		ord.PaymentStatus = ps.(models.PaymentStatus)
	}

	s.publish(ctx, map[string]any{
		"type":        "order_status_changed",
		"orderID":     ord.ID,
		"orderNumber": ord.OrderNumber,
		"status":      newStatus,
	})
	return &ord, nil
}

// CancelOrder restores stock for every line that still points at a live
// product; lines whose product is gone are skipped, not failed.
func (s *Service) CancelOrder(ctx context.Context, userID, id uint) (*models.Order, error) {
	ord, err := s.FindOne(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if ord.Status != models.OrderStatusPending && ord.Status != models.OrderStatusConfirmed {
		return nil, fmt.Errorf("order is already %s: %w", ord.Status, ErrCannotCancel)
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range ord.Items {
			if item.ProductID == nil {
				continue
			}
			if _, err := catalog.IncreaseStock(ctx, tx, *item.ProductID, item.Quantity); err != nil {
				if errors.Is(err, catalog.ErrProductNotFound) {
					continue
				}
				return err
			}
		}
		return tx.Model(&models.Order{}).
			Where("id = ?", ord.ID).
			Update("status", models.OrderStatusCancelled).Error
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, map[string]any{
		"type":        "order_cancelled",
		"orderID":     ord.ID,
		"orderNumber": ord.OrderNumber,
		"userID":      userID,
	})
	return s.FindOne(ctx, ord.ID, userID)
}

func (s *Service) publish(ctx context.Context, event map[string]any) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.Producer.PublishEvent(pubCtx, "order_events", fmt.Sprint(event["orderID"]), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish failed", "error", err)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
