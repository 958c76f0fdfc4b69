package order

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ANJAN672/Ecom/internal/config"
	"github.com/ANJAN672/Ecom/internal/models"
	"github.com/ANJAN672/Ecom/internal/mykafka"
	"github.com/ANJAN672/Ecom/internal/service/address"
	"github.com/ANJAN672/Ecom/internal/service/cart"
)

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func newTestService(db *gorm.DB) *Service {
	return New(db, cart.New(db), address.New(db), &mykafka.Producer{})
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64, stock int) *models.Product {
	p := &models.Product{
		Name:          name,
		Price:         price,
		StockQuantity: stock,
		ImageURL:      "/img/" + name + ".png",
		IsActive:      true,
		SellerID:      1,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedAddress(t *testing.T, db *gorm.DB, userID uint) *models.Address {
	a := &models.Address{
		UserID:    userID,
		FullName:  "Test Customer",
		Phone:     "5550100",
		Line1:     "1 Main St",
		City:      "Springfield",
		State:     "IL",
		PostCode:  "62701",
		IsDefault: true,
	}
	require.NoError(t, db.Create(a).Error)
	return a
}

func stockOf(t *testing.T, db *gorm.DB, id uint) int {
	var p models.Product
	require.NoError(t, db.First(&p, id).Error)
	return p.StockQuantity
}

func cartSize(t *testing.T, db *gorm.DB, userID uint) int64 {
	var n int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func TestCreateOrder(t *testing.T) {
	db := initTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	keyboard := seedProduct(t, db, "keyboard", 100.00, 10)
	mouse := seedProduct(t, db, "mouse", 50.00, 5)
	addr := seedAddress(t, db, 1)

	_, err := svc.Cart.AddItem(ctx, 1, keyboard.ID, 2)
	require.NoError(t, err)
	_, err = svc.Cart.AddItem(ctx, 1, mouse.ID, 1)
	require.NoError(t, err)

	ord, err := svc.CreateOrder(ctx, 1, CreateOrderInput{
		AddressID:     addr.ID,
		PaymentMethod: models.PaymentMethodCOD,
		Notes:         "leave at the door",
	})
	require.NoError(t, err)

	require.Regexp(t, `^ORD-\d{8}-[A-Z0-9]{5}$`, ord.OrderNumber)
	require.Equal(t, models.OrderStatusPending, ord.Status)
	require.Equal(t, models.PaymentStatusPending, ord.PaymentStatus)
	require.Equal(t, 250.00, ord.TotalAmount)
	require.Equal(t, "Test Customer", ord.ShippingName)
	require.Equal(t, "1 Main St", ord.ShippingLine1)
	require.Equal(t, "leave at the door", ord.Notes)
	require.Len(t, ord.Items, 2)

	byName := map[string]models.OrderItem{}
	for _, it := range ord.Items {
		byName[it.ProductName] = it
	}
	require.Equal(t, 100.00, byName["keyboard"].PriceAtPurchase)
	require.Equal(t, 200.00, byName["keyboard"].Subtotal)
	require.Equal(t, "/img/keyboard.png", byName["keyboard"].ProductImage)
	require.Equal(t, 50.00, byName["mouse"].Subtotal)

	require.Equal(t, 8, stockOf(t, db, keyboard.ID))
	require.Equal(t, 4, stockOf(t, db, mouse.ID))
	require.Zero(t, cartSize(t, db, 1), "cart is emptied by checkout")
}

func TestCreateOrderRejectsUnavailablePayment(t *testing.T) {
	db := initTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	p := seedProduct(t, db, "keyboard", 100.00, 10)
	addr := seedAddress(t, db, 1)
	_, err := svc.Cart.AddItem(ctx, 1, p.ID, 1)
	require.NoError(t, err)

	_, err = svc.CreateOrder(ctx, 1, CreateOrderInput{
		AddressID:     addr.ID,
		PaymentMethod: models.PaymentMethodUPI,
	})
	require.ErrorIs(t, err, ErrPaymentMethodUnavailable)
	require.Contains(t, err.Error(), "UPI is coming soon")

	require.Equal(t, 10, stockOf(t, db, p.ID))
	require.EqualValues(t, 1, cartSize(t, db, 1))
}

func TestCreateOrderEmptyCart(t *testing.T) {
	db := initTestDB(t)
	svc := newTestService(db)
	addr := seedAddress(t, db, 1)

	_, err := svc.CreateOrder(context.Background(), 1, CreateOrderInput{
		AddressID:     addr.ID,
		PaymentMethod: models.PaymentMethodCOD,
	})
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestCreateOrderInvalidCart(t *testing.T) {
	db := initTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	p := seedProduct(t, db, "keyboard", 100.00, 5)
	addr := seedAddress(t, db, 1)
	_, err := svc.Cart.AddItem(ctx, 1, p.ID, 5)
	require.NoError(t, err)

	// Someone else buys most of the stock before this user checks out.
	require.NoError(t, db.Model(p).Update("stock_quantity", 2).Error)

	_, err = svc.CreateOrder(ctx, 1, CreateOrderInput{
		AddressID:     addr.ID,
		PaymentMethod: models.PaymentMethodCOD,
	})
	var cartErr *CartInvalidError
	require.ErrorAs(t, err, &cartErr)
	require.Len(t, cartErr.Issues, 1)
	require.Equal(t, "keyboard", cartErr.Issues[0].ProductName)
	require.Equal(t, "Only 2 available (you have 5 in cart)", cartErr.Issues[0].Issue)

	require.EqualValues(t, 1, cartSize(t, db, 1), "failed checkout keeps the cart")
}

func TestCreateOrderMissingAddress(t *testing.T) {
	db := initTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	p := seedProduct(t, db, "keyboard", 100.00, 5)
	_, err := svc.Cart.AddItem(ctx, 1, p.ID, 1)
	require.NoError(t, err)

	_, err = svc.CreateOrder(ctx, 1, CreateOrderInput{
		AddressID:     999,
		PaymentMethod: models.PaymentMethodCOD,
	})
	require.ErrorIs(t, err, address.ErrAddressNotFound)
}

// A stock decrement that fails mid-transaction must roll back the order, its
// lines, earlier decrements, and leave the cart intact.
func TestCreateOrderAtomicRollback(t *testing.T) {
	db := initTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	a := seedProduct(t, db, "keyboard", 100.00, 10)
	b := seedProduct(t, db, "mouse", 50.00, 5)
	addr := seedAddress(t, db, 1)

	_, err := svc.Cart.AddItem(ctx, 1, a.ID, 2)
	require.NoError(t, err)
	_, err = svc.Cart.AddItem(ctx, 1, b.ID, 3)
	require.NoError(t, err)

	// Drain product b's stock from inside the checkout transaction, after
	// validation has already passed, by hooking the first order line insert.
	drained := false
	err = db.Callback().Create().Before("gorm:create").Register("drain_stock", func(tx *gorm.DB) {
		if _, ok := tx.Statement.Dest.(*models.OrderItem); ok && !drained {
			drained = true
			tx.Session(&gorm.Session{NewDB: true}).
				Model(&models.Product{}).
				Where("id = ?", b.ID).
				Update("stock_quantity", 0)
		}
	})
	require.NoError(t, err)
	defer db.Callback().Create().Remove("drain_stock")

	_, err = svc.CreateOrder(ctx, 1, CreateOrderInput{
		AddressID:     addr.ID,
		PaymentMethod: models.PaymentMethodCOD,
	})
	require.Error(t, err)

	// The drain ran on the same connection, so the rollback undid it too;
	// what matters is that nothing from the checkout itself survived.
	require.Equal(t, 10, stockOf(t, db, a.ID))
	require.EqualValues(t, 2, cartSize(t, db, 1))

	var orders, items int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&items).Error)
	require.Zero(t, orders)
	require.Zero(t, items)
}

func TestFindOne(t *testing.T) {
	db := initTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	p := seedProduct(t, db, "keyboard", 100.00, 10)
	addr := seedAddress(t, db, 1)
	_, err := svc.Cart.AddItem(ctx, 1, p.ID, 1)
	require.NoError(t, err)
	ord, err := svc.CreateOrder(ctx, 1, CreateOrderInput{AddressID: addr.ID, PaymentMethod: models.PaymentMethodCOD})
	require.NoError(t, err)

	got, err := svc.FindOne(ctx, ord.ID, 1)
	require.NoError(t, err)
	require.Equal(t, ord.OrderNumber, got.OrderNumber)

	_, err = svc.FindOne(ctx, ord.ID, 2)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.FindOne(ctx, 999, 1)
	require.ErrorIs(t, err, ErrOrderNotFound)

	byNumber, err := svc.FindByOrderNumber(ctx, ord.OrderNumber, 1)
	require.NoError(t, err)
	require.Equal(t, ord.ID, byNumber.ID)

	_, err = svc.FindByOrderNumber(ctx, ord.OrderNumber, 2)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.FindByOrderNumber(ctx, "ORD-20200101-XXXXX", 1)
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestListByUser(t *testing.T) {
	db := initTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	p := seedProduct(t, db, "keyboard", 100.00, 10)
	addr := seedAddress(t, db, 1)

	for i := 0; i < 2; i++ {
		_, err := svc.Cart.AddItem(ctx, 1, p.ID, 1)
		require.NoError(t, err)
		_, err = svc.CreateOrder(ctx, 1, CreateOrderInput{AddressID: addr.ID, PaymentMethod: models.PaymentMethodCOD})
		require.NoError(t, err)
	}

	orders, err := svc.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Len(t, orders[0].Items, 1)

	orders, err = svc.ListByUser(ctx, 2)
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestUpdateStatus(t *testing.T) {
	db := initTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	p := seedProduct(t, db, "keyboard", 100.00, 10)
	addr := seedAddress(t, db, 1)
	_, err := svc.Cart.AddItem(ctx, 1, p.ID, 1)
	require.NoError(t, err)
	ord, err := svc.CreateOrder(ctx, 1, CreateOrderInput{AddressID: addr.ID, PaymentMethod: models.PaymentMethodCOD})
	require.NoError(t, err)

	// pending -> shipped skips confirmation and must be rejected.
	_, err = svc.UpdateStatus(ctx, ord.ID, models.OrderStatusShipped)
	var transErr *InvalidTransitionError
	require.ErrorAs(t, err, &transErr)
	require.Equal(t, models.OrderStatusPending, transErr.From)
	require.Equal(t, models.OrderStatusShipped, transErr.To)

	for _, next := range []models.OrderStatus{
		models.OrderStatusConfirmed,
		models.OrderStatusShipped,
		models.OrderStatusOutForDelivery,
	} {
		updated, err := svc.UpdateStatus(ctx, ord.ID, next)
		require.NoError(t, err)
		require.Equal(t, next, updated.Status)
		require.Equal(t, models.PaymentStatusPending, updated.PaymentStatus)
	}

	delivered, err := svc.UpdateStatus(ctx, ord.ID, models.OrderStatusDelivered)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusDelivered, delivered.Status)
	require.Equal(t, models.PaymentStatusCompleted, delivered.PaymentStatus,
		"cash on delivery completes payment on delivery")

	// Delivered is terminal.
	_, err = svc.UpdateStatus(ctx, ord.ID, models.OrderStatusCancelled)
	require.ErrorAs(t, err, &transErr)

	_, err = svc.UpdateStatus(ctx, 999, models.OrderStatusConfirmed)
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCancelOrderRestoresStock(t *testing.T) {
	db := initTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	p := seedProduct(t, db, "keyboard", 100.00, 10)
	addr := seedAddress(t, db, 1)
	_, err := svc.Cart.AddItem(ctx, 1, p.ID, 3)
	require.NoError(t, err)
	ord, err := svc.CreateOrder(ctx, 1, CreateOrderInput{AddressID: addr.ID, PaymentMethod: models.PaymentMethodCOD})
	require.NoError(t, err)
	require.Equal(t, 7, stockOf(t, db, p.ID))

	cancelled, err := svc.CancelOrder(ctx, 1, ord.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	require.Equal(t, 10, stockOf(t, db, p.ID))

	_, err = svc.CancelOrder(ctx, 1, ord.ID)
	require.ErrorIs(t, err, ErrCannotCancel)
	require.Equal(t, 10, stockOf(t, db, p.ID), "double cancel must not restore twice")
}

func TestCancelOrderAfterShipping(t *testing.T) {
	db := initTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	p := seedProduct(t, db, "keyboard", 100.00, 10)
	addr := seedAddress(t, db, 1)
	_, err := svc.Cart.AddItem(ctx, 1, p.ID, 1)
	require.NoError(t, err)
	ord, err := svc.CreateOrder(ctx, 1, CreateOrderInput{AddressID: addr.ID, PaymentMethod: models.PaymentMethodCOD})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, ord.ID, models.OrderStatusConfirmed)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, ord.ID, models.OrderStatusShipped)
	require.NoError(t, err)

	_, err = svc.CancelOrder(ctx, 1, ord.ID)
	require.ErrorIs(t, err, ErrCannotCancel)
	require.Contains(t, err.Error(), "already shipped")
}

func TestCancelOrderForbidden(t *testing.T) {
	db := initTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	p := seedProduct(t, db, "keyboard", 100.00, 10)
	addr := seedAddress(t, db, 1)
	_, err := svc.Cart.AddItem(ctx, 1, p.ID, 1)
	require.NoError(t, err)
	ord, err := svc.CreateOrder(ctx, 1, CreateOrderInput{AddressID: addr.ID, PaymentMethod: models.PaymentMethodCOD})
	require.NoError(t, err)

	_, err = svc.CancelOrder(ctx, 2, ord.ID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestCancelOrderSkipsDeletedProducts(t *testing.T) {
	db := initTestDB(t)
	svc := newTestService(db)
	ctx := context.Background()

	p := seedProduct(t, db, "keyboard", 100.00, 10)
	addr := seedAddress(t, db, 1)
	_, err := svc.Cart.AddItem(ctx, 1, p.ID, 2)
	require.NoError(t, err)
	ord, err := svc.CreateOrder(ctx, 1, CreateOrderInput{AddressID: addr.ID, PaymentMethod: models.PaymentMethodCOD})
	require.NoError(t, err)

	// The product disappears between checkout and cancellation.
	require.NoError(t, db.Model(&models.OrderItem{}).
		Where("order_id = ?", ord.ID).
		Update("product_id", nil).Error)
	require.NoError(t, db.Delete(&models.Product{}, p.ID).Error)

	cancelled, err := svc.CancelOrder(ctx, 1, ord.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusCancelled, cancelled.Status)
}

func TestOrderNumberFormat(t *testing.T) {
	at := time.Date(2026, time.March, 9, 23, 59, 0, 0, time.UTC)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		n := newOrderNumber(at)
		require.Regexp(t, `^ORD-20260309-[A-Z0-9]{5}$`, n)
		seen[n] = true
	}
	require.Greater(t, len(seen), 1, "suffixes are random")
}
