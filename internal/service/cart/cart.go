package cart

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"gorm.io/gorm"

	"github.com/ANJAN672/Ecom/internal/models"
	"github.com/ANJAN672/Ecom/internal/service/catalog"
)

var ErrItemNotFound = errors.New("cart item not found")

type Service struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// AddItem merges into an existing line for the same product instead of
// creating a duplicate. The quantity bump is an additive UPDATE so two
// concurrent adds both land.
func (s *Service) AddItem(ctx context.Context, userID, productID uint, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		quantity = 1
	}

	var product models.Product
	if err := s.DB.WithContext(ctx).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, err
	}

	if !product.InStock() {
		return nil, fmt.Errorf("%q is out of stock: %w", product.Name, catalog.ErrOutOfStock)
	}
	if product.StockQuantity < quantity {
		return nil, fmt.Errorf("only %d available for %q: %w",
			product.StockQuantity, product.Name, catalog.ErrInsufficientStock)
	}

	var item models.CartItem
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error
	switch {
	case err == nil:
		if product.StockQuantity < item.Quantity+quantity {
			return nil, fmt.Errorf("cannot add %d more of %q, only %d more available: %w",
				quantity, product.Name, product.StockQuantity-item.Quantity, catalog.ErrInsufficientStock)
		}
		if err := s.DB.WithContext(ctx).Model(&item).
			Update("quantity", gorm.Expr("quantity + ?", quantity)).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = models.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
		if err := s.DB.WithContext(ctx).Create(&item).Error; err != nil {
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, err
			}
			// Lost the insert race against a concurrent add for the same
			// product; fold the quantity into the winner's line.
			if err := s.DB.WithContext(ctx).
				Model(&models.CartItem{}).
				Where("user_id = ? AND product_id = ?", userID, productID).
				Update("quantity", gorm.Expr("quantity + ?", quantity)).Error; err != nil {
				return nil, err
			}
		}
	default:
		return nil, err
	}

	if err := s.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

type LineProduct struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	ImageURL      string  `json:"image_url"`
	StockQuantity int     `json:"stock_quantity"`
	IsInStock     bool    `json:"is_in_stock"`
	Category      string  `json:"category,omitempty"`
}

type Line struct {
	ID           uint        `json:"id"`
	Quantity     int         `json:"quantity"`
	Product      LineProduct `json:"product"`
	ItemTotal    float64     `json:"item_total"`
	StockWarning string      `json:"stock_warning,omitempty"`
}

type Cart struct {
	Items     []Line `json:"items"`
	ItemCount int    `json:"item_count"`
	Subtotal  string `json:"subtotal"`
	Total     string `json:"total"`
}

// GetCart joins each line with live product data and flags lines the stock
// can no longer cover. ItemCount is the number of lines, not the quantity sum.
func (s *Service) GetCart(ctx context.Context, userID uint) (*Cart, error) {
	var items []models.CartItem
	if err := s.DB.WithContext(ctx).
		Preload("Product.Category").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}

	cart := &Cart{Items: make([]Line, 0, len(items)), ItemCount: len(items)}
	var subtotal float64
	for _, it := range items {
		p := it.Product
		if p == nil {
			continue
		}

		itemTotal := round2(p.Price * float64(it.Quantity))
		subtotal += itemTotal

		line := Line{
			ID:       it.ID,
			Quantity: it.Quantity,
			Product: LineProduct{
				ID:            p.ID,
				Name:          p.Name,
				Price:         p.Price,
				ImageURL:      p.ImageURL,
				StockQuantity: p.StockQuantity,
				IsInStock:     p.InStock(),
			},
			ItemTotal: itemTotal,
		}
		if p.Category != nil {
			line.Product.Category = p.Category.Name
		}
		switch {
		case !p.InStock():
			line.StockWarning = "Out of stock"
		case p.StockQuantity < it.Quantity:
			line.StockWarning = fmt.Sprintf("Only %d available", p.StockQuantity)
		}
		cart.Items = append(cart.Items, line)
	}

	// No tax or shipping, so total mirrors subtotal. Formatted as strings
	// to keep two stable fraction digits on the wire.
	cart.Subtotal = money(subtotal)
	cart.Total = cart.Subtotal
	return cart, nil
}

// UpdateQuantity checks the requested quantity against the full stock, not
// the remainder, unlike AddItem.
func (s *Service) UpdateQuantity(ctx context.Context, userID, itemID uint, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1")
	}

	item, err := s.findItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := s.DB.WithContext(ctx).First(&product, item.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, err
	}
	if product.StockQuantity < quantity {
		return nil, fmt.Errorf("only %d available for %q: %w",
			product.StockQuantity, product.Name, catalog.ErrInsufficientStock)
	}

	if err := s.DB.WithContext(ctx).Model(item).Update("quantity", quantity).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) RemoveItem(ctx context.Context, userID, itemID uint) error {
	item, err := s.findItem(ctx, userID, itemID)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Delete(item).Error
}

// ClearCart is idempotent, clearing an empty cart is not an error.
func (s *Service) ClearCart(ctx context.Context, userID uint) error {
	return s.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}

// ItemsForCheckout loads the raw lines with products attached, on the handle
// it is given so checkout can read them inside its transaction.
func (s *Service) ItemsForCheckout(ctx context.Context, db *gorm.DB, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	err := db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

type StockIssue struct {
	ProductName string `json:"productName"`
	Issue       string `json:"issue"`
}

type Validation struct {
	Valid  bool         `json:"valid"`
	Issues []StockIssue `json:"issues"`
}

// ValidateForCheckout re-checks every line against current stock without
// mutating anything. An empty cart validates trivially.
func (s *Service) ValidateForCheckout(ctx context.Context, userID uint) (*Validation, error) {
	items, err := s.ItemsForCheckout(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}

	issues := []StockIssue{}
	for _, it := range items {
		p := it.Product
		switch {
		case p == nil:
			issues = append(issues, StockIssue{ProductName: fmt.Sprintf("product #%d", it.ProductID), Issue: "No longer available"})
		case !p.InStock():
			issues = append(issues, StockIssue{ProductName: p.Name, Issue: "Out of stock"})
		case p.StockQuantity < it.Quantity:
			issues = append(issues, StockIssue{
				ProductName: p.Name,
				Issue:       fmt.Sprintf("Only %d available (you have %d in cart)", p.StockQuantity, it.Quantity),
			})
		}
	}

	return &Validation{Valid: len(issues) == 0, Issues: issues}, nil
}

func (s *Service) findItem(ctx context.Context, userID, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := s.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
