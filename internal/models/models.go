package models

import (
	"time"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"  json:"id"`
	Username     string `gorm:"unique;not null"           json:"username"`
	PasswordHash string `gorm:"not null"                  json:"-"`
	Role         string `gorm:"not null;default:customer" json:"role"`
}

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"          json:"id"`
	Token     string    `gorm:"unique;not null"     json:"token"`
	UserID    uint      `gorm:"index;not null"      json:"user_id"`
	ExpiresAt time.Time `gorm:"not null"            json:"expires_at"`
	Revoked   bool      `gorm:"default:false"       json:"revoked"`
}

type Category struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"unique;not null"          json:"name"`
	Description string `json:"description"`
}

type Product struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string    `gorm:"not null"                 json:"name"`
	Description   string    `gorm:"not null"                 json:"description"`
	Price         float64   `gorm:"not null"                 json:"price"`
	StockQuantity int       `gorm:"not null;default:0;check:stock_quantity>=0" json:"stock_quantity"`
	ImageURL      string    `json:"image_url"`
	IsActive      bool      `gorm:"not null;default:true"    json:"is_active"`
	SellerID      uint      `gorm:"index;not null"           json:"seller_id"`
	CategoryID    *uint     `gorm:"index"                    json:"category_id"`
	Category      *Category `gorm:"foreignKey:CategoryID"    json:"category,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// InStock is derived from the counter instead of being stored, so the
// flag and the quantity can never drift apart.
func (p *Product) InStock() bool { return p.StockQuantity > 0 }

type CartItem struct {
	ID        uint      `gorm:"primaryKey"                                       json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:ux_cart_items_user_product"  json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:ux_cart_items_user_product"  json:"product_id"`
	Quantity  int       `gorm:"not null;default:1;check:quantity>0"              json:"quantity"`
	Product   *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusShipped        OrderStatus = "shipped"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentMethodCOD        PaymentMethod = "cod"
	PaymentMethodUPI        PaymentMethod = "upi"
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodDebitCard  PaymentMethod = "debit_card"
	PaymentMethodNetBanking PaymentMethod = "net_banking"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

type Order struct {
	ID            uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber   string        `gorm:"uniqueIndex;not null"     json:"order_number"`
	UserID        uint          `gorm:"index;not null"           json:"user_id"`
	Status        OrderStatus   `gorm:"not null;default:pending" json:"status"`
	PaymentMethod PaymentMethod `gorm:"not null"                 json:"payment_method"`
	PaymentStatus PaymentStatus `gorm:"not null;default:pending" json:"payment_status"`
	TotalAmount   float64       `gorm:"not null"                 json:"total_amount"`

	// Address snapshot copied at checkout time. Later edits to the user's
	// address book never change what an order shows.
	ShippingName     string `gorm:"not null" json:"shipping_name"`
	ShippingPhone    string `gorm:"not null" json:"shipping_phone"`
	ShippingLine1    string `gorm:"not null" json:"shipping_line1"`
	ShippingLine2    string `json:"shipping_line2"`
	ShippingCity     string `gorm:"not null" json:"shipping_city"`
	ShippingState    string `gorm:"not null" json:"shipping_state"`
	ShippingPostCode string `gorm:"not null" json:"shipping_post_code"`

	Notes     string      `json:"notes"`
	Items     []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type OrderItem struct {
	ID      uint `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID uint `gorm:"index;not null"           json:"order_id"`

	// Nullable on purpose: a product may be deleted later, the order line
	// stays as history.
	ProductID *uint `gorm:"index" json:"product_id"`

	Quantity        int     `gorm:"not null;check:quantity>0" json:"quantity"`
	PriceAtPurchase float64 `gorm:"not null"                  json:"price_at_purchase"`
	Subtotal        float64 `gorm:"not null"                  json:"subtotal"`
	ProductName     string  `gorm:"not null"                  json:"product_name"`
	ProductImage    string  `json:"product_image"`

	CreatedAt time.Time `json:"created_at"`
}

type Address struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"index;not null"           json:"user_id"`
	FullName  string    `gorm:"not null"                 json:"full_name"`
	Phone     string    `gorm:"not null"                 json:"phone"`
	Line1     string    `gorm:"not null"                 json:"line1"`
	Line2     string    `json:"line2"`
	City      string    `gorm:"not null"                 json:"city"`
	State     string    `gorm:"not null"                 json:"state"`
	PostCode  string    `gorm:"not null"                 json:"post_code"`
	IsDefault bool      `gorm:"not null;default:false"   json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
