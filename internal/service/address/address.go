package address

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ANJAN672/Ecom/internal/models"
)

var (
	ErrAddressNotFound = errors.New("address not found")
	ErrNotAddressOwner = errors.New("you can only access your own addresses")
)

type Service struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Service {
	return &Service{DB: db}
}

type Input struct {
	FullName  string `json:"full_name"`
	Phone     string `json:"phone"`
	Line1     string `json:"line1"`
	Line2     string `json:"line2"`
	City      string `json:"city"`
	State     string `json:"state"`
	PostCode  string `json:"post_code"`
	IsDefault bool   `json:"is_default"`
}

// Create makes the first address the default automatically. Setting a new
// default unsets the previous one inside the same transaction, so at most one
// default exists per user at any time.
func (s *Service) Create(ctx context.Context, userID uint, in Input) (*models.Address, error) {
	addr := models.Address{
		UserID:    userID,
		FullName:  in.FullName,
		Phone:     in.Phone,
		Line1:     in.Line1,
		Line2:     in.Line2,
		City:      in.City,
		State:     in.State,
		PostCode:  in.PostCode,
		IsDefault: in.IsDefault,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Address{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			addr.IsDefault = true
		}
		if addr.IsDefault {
			if err := unsetDefaults(tx, userID); err != nil {
				return err
			}
		}
		return tx.Create(&addr).Error
	})
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

func (s *Service) List(ctx context.Context, userID uint) ([]models.Address, error) {
	var addrs []models.Address
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&addrs).Error
	return addrs, err
}

// Get distinguishes a missing address from someone else's address.
func (s *Service) Get(ctx context.Context, id, userID uint) (*models.Address, error) {
	var addr models.Address
	err := s.DB.WithContext(ctx).First(&addr, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAddressNotFound
	}
	if err != nil {
		return nil, err
	}
	if addr.UserID != userID {
		return nil, ErrNotAddressOwner
	}
	return &addr, nil
}

func (s *Service) Default(ctx context.Context, userID uint) (*models.Address, error) {
	var addr models.Address
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND is_default = ?", userID, true).
		First(&addr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAddressNotFound
	}
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

func (s *Service) Update(ctx context.Context, id, userID uint, in Input) (*models.Address, error) {
	addr, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.IsDefault && !addr.IsDefault {
			if err := unsetDefaults(tx, userID); err != nil {
				return err
			}
		}
		addr.FullName = in.FullName
		addr.Phone = in.Phone
		addr.Line1 = in.Line1
		addr.Line2 = in.Line2
		addr.City = in.City
		addr.State = in.State
		addr.PostCode = in.PostCode
		addr.IsDefault = addr.IsDefault || in.IsDefault
		return tx.Save(addr).Error
	})
	if err != nil {
		return nil, err
	}
	return addr, nil
}

func (s *Service) SetDefault(ctx context.Context, id, userID uint) (*models.Address, error) {
	addr, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := unsetDefaults(tx, userID); err != nil {
			return err
		}
		addr.IsDefault = true
		return tx.Save(addr).Error
	})
	if err != nil {
		return nil, err
	}
	return addr, nil
}

// Delete promotes the most recent remaining address when the default is
// removed.
func (s *Service) Delete(ctx context.Context, id, userID uint) error {
	addr, err := s.Get(ctx, id, userID)
	if err != nil {
		return err
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wasDefault := addr.IsDefault
		if err := tx.Delete(addr).Error; err != nil {
			return err
		}
		if !wasDefault {
			return nil
		}

		var remaining models.Address
		err := tx.Where("user_id = ?", userID).Order("created_at DESC").First(&remaining).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Model(&remaining).Update("is_default", true).Error
	})
}

func unsetDefaults(tx *gorm.DB, userID uint) error {
	return tx.Model(&models.Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
}
