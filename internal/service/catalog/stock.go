package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ANJAN672/Ecom/internal/models"
)

// DecreaseStock is a check-and-decrement in a single conditional UPDATE, so
// two concurrent checkouts can never drive the counter below zero. It runs on
// whatever handle it is given, which lets the checkout transaction call it on
// its own tx.
func DecreaseStock(ctx context.Context, db *gorm.DB, productID uint, quantity int) (*models.Product, error) {
	res := db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", productID, quantity).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if res.Error != nil {
		return nil, res.Error
	}

	var p models.Product
	if res.RowsAffected == 0 {
		if err := db.WithContext(ctx).First(&p, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, err
		}
		return nil, fmt.Errorf("not enough stock for %q, only %d available: %w",
			p.Name, p.StockQuantity, ErrInsufficientStock)
	}

	if err := db.WithContext(ctx).First(&p, productID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// IncreaseStock restocks a product, used by order cancellation.
func IncreaseStock(ctx context.Context, db *gorm.DB, productID uint, quantity int) (*models.Product, error) {
	res := db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", quantity))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrProductNotFound
	}

	var p models.Product
	if err := db.WithContext(ctx).First(&p, productID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
