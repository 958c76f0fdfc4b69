package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/elastic/go-elasticsearch/v9"
	"gorm.io/gorm"

	"github.com/ANJAN672/Ecom/internal/es"
	"github.com/ANJAN672/Ecom/internal/logging"
	"github.com/ANJAN672/Ecom/internal/models"
	"github.com/ANJAN672/Ecom/internal/mykafka"
)

type Service struct {
	DB       *gorm.DB
	ES       *elasticsearch.Client
	Index    string
	Producer *mykafka.Producer
}

func New(db *gorm.DB, esClient *elasticsearch.Client, producer *mykafka.Producer) *Service {
	return &Service{
		DB:       db,
		ES:       esClient,
		Index:    es.ProductIndex,
		Producer: producer,
	}
}

type ProductInput struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
	ImageURL      string  `json:"image_url"`
	CategoryID    *uint   `json:"category_id"`
}

type ProductPatch struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Price         *float64 `json:"price"`
	StockQuantity *int     `json:"stock_quantity"`
	ImageURL      *string  `json:"image_url"`
	CategoryID    *uint    `json:"category_id"`
	IsActive      *bool    `json:"is_active"`
}

type ListFilter struct {
	Search     string
	CategoryID *uint
	InStock    *bool
	MinPrice   *float64
	MaxPrice   *float64
	Offset     int
	Limit      int
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	err := s.DB.WithContext(ctx).Preload("Category").First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) Create(ctx context.Context, sellerID uint, in ProductInput) (*models.Product, error) {
	if in.CategoryID != nil {
		var cat models.Category
		if err := s.DB.WithContext(ctx).First(&cat, *in.CategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
	}

	p := models.Product{
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price,
		StockQuantity: in.StockQuantity,
		ImageURL:      in.ImageURL,
		IsActive:      true,
		SellerID:      sellerID,
		CategoryID:    in.CategoryID,
	}
	if err := s.DB.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}

	s.index(ctx, &p)
	s.publish(ctx, map[string]any{
		"type":      "product_created",
		"productID": p.ID,
		"sellerID":  sellerID,
		"name":      p.Name,
	})
	return &p, nil
}

func (s *Service) Update(ctx context.Context, sellerID, id uint, patch ProductPatch) (*models.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.SellerID != sellerID {
		return nil, ErrNotProductOwner
	}

	fields := map[string]any{}
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Price != nil {
		fields["price"] = *patch.Price
	}
	if patch.StockQuantity != nil {
		fields["stock_quantity"] = *patch.StockQuantity
	}
	if patch.ImageURL != nil {
		fields["image_url"] = *patch.ImageURL
	}
	if patch.CategoryID != nil {
		fields["category_id"] = *patch.CategoryID
	}
	if patch.IsActive != nil {
		fields["is_active"] = *patch.IsActive
	}
	if len(fields) > 0 {
		if err := s.DB.WithContext(ctx).Model(p).Updates(fields).Error; err != nil {
			return nil, err
		}
	}

	p, err = s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.index(ctx, p)
	s.publish(ctx, map[string]any{
		"type":      "product_updated",
		"productID": p.ID,
		"sellerID":  sellerID,
	})
	return p, nil
}

// SetStock is the seller-facing inventory endpoint, distinct from the
// checkout-side Decrease/IncreaseStock operations.
func (s *Service) SetStock(ctx context.Context, sellerID, id uint, quantity int) (*models.Product, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("stock quantity must not be negative")
	}
	return s.Update(ctx, sellerID, id, ProductPatch{StockQuantity: &quantity})
}

func (s *Service) Delete(ctx context.Context, sellerID, id uint) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if p.SellerID != sellerID {
		return ErrNotProductOwner
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Order lines keep their denormalized copy, only the live
		// reference is detached.
		if err := tx.Model(&models.OrderItem{}).
			Where("product_id = ?", id).
			Update("product_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, id).Error
	})
	if err != nil {
		return err
	}

	if err := es.DeleteProduct(ctx, s.ES, s.Index, id); err != nil {
		logging.FromContext(ctx).Error("es delete failed", "productID", id, "error", err)
	}
	s.publish(ctx, map[string]any{
		"type":      "product_deleted",
		"productID": id,
		"sellerID":  sellerID,
	})
	return nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]models.Product, int64, error) {
	q := s.DB.WithContext(ctx).Model(&models.Product{}).Where("is_active = ?", true)

	if f.Search != "" {
		q = q.Where("name LIKE ?", "%"+f.Search+"%")
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.InStock != nil {
		if *f.InStock {
			q = q.Where("stock_quantity > 0")
		} else {
			q = q.Where("stock_quantity = 0")
		}
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Product
	if err := q.Preload("Category").
		Order("created_at DESC").
		Offset(f.Offset).Limit(f.Limit).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Service) BySeller(ctx context.Context, sellerID uint) ([]models.Product, error) {
	var items []models.Product
	err := s.DB.WithContext(ctx).
		Preload("Category").
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (s *Service) index(ctx context.Context, p *models.Product) {
	if err := es.IndexProduct(ctx, s.ES, s.Index, p); err != nil {
		logging.FromContext(ctx).Error("es index failed", "productID", p.ID, "error", err)
	}
}

func (s *Service) publish(ctx context.Context, event map[string]any) {
	if err := s.Producer.PublishEvent(ctx, "product_events", fmt.Sprint(event["productID"]), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish failed", "error", err)
	}
}
