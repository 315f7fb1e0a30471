package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is a registered account. Staff users may manage products,
// see every order and change order statuses.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsStaff      bool      `db:"is_staff" json:"is_staff"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID   int64
	Username string
	IsStaff  bool
}

// Product is a catalog entry. Quantity is unconstrained; there is no
// stock tracking in this system.
type Product struct {
	ID          int64           `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Image       string          `db:"image" json:"image,omitempty"`
	Category    string          `db:"category" json:"category"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// CartItem is one (user, product) line in a shopping cart. The schema
// enforces at most one line per pair; repeated adds increment quantity.
type CartItem struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	ProductID int64     `db:"product_id" json:"product_id"`
	Quantity  int       `db:"quantity" json:"quantity"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	Product *Product `db:"-" json:"product,omitempty"`
}

// Order is an immutable snapshot of a cart taken at checkout.
// TotalAmount is fixed at creation; only Status changes afterwards.
type Order struct {
	ID              int64           `db:"id" json:"id"`
	UserID          int64           `db:"user_id" json:"user_id"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"total_amount"`
	Status          string          `db:"status" json:"status"`
	DeliveryAddress string          `db:"delivery_address" json:"delivery_address,omitempty"`
	PaymentMethod   string          `db:"payment_method" json:"payment_method"`
	Notes           string          `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`

	Items []OrderItem `db:"-" json:"items,omitempty"`
}

// OrderItem snapshots product, quantity and unit price at checkout time,
// decoupled from later catalog price changes.
type OrderItem struct {
	ID        int64           `db:"id" json:"id"`
	OrderID   int64           `db:"order_id" json:"order_id"`
	ProductID int64           `db:"product_id" json:"product_id"`
	Quantity  int             `db:"quantity" json:"quantity"`
	Price     decimal.Decimal `db:"price" json:"price"`

	Product *Product `db:"-" json:"product,omitempty"`
}

// Order statuses. The usual flow is pending -> processing -> completed,
// with cancelled reachable from pending or processing. Staff updates are
// not restricted to that graph (see DESIGN.md).
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// DefaultPaymentMethod is used when checkout does not name one.
const DefaultPaymentMethod = "cash"

// KnownStatus reports whether s is one of the four order statuses.
func KnownStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// ProductSales is one row of the top-products rollup.
type ProductSales struct {
	ProductID     int64           `db:"product_id" json:"product_id"`
	Name          string          `db:"name" json:"name"`
	TotalQuantity int             `db:"total_quantity" json:"total_quantity"`
	TotalRevenue  decimal.Decimal `db:"total_revenue" json:"total_revenue"`
}

// DailySales is the completed-order total for one calendar date.
type DailySales struct {
	Date  time.Time       `db:"date" json:"date"`
	Total decimal.Decimal `db:"total" json:"total"`
}

// OrderStats counts orders per status.
type OrderStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
}

// Dashboard is the staff analytics payload.
type Dashboard struct {
	TotalSales   decimal.Decimal `json:"total_sales"`
	WeeklySales  decimal.Decimal `json:"weekly_sales"`
	MonthlySales decimal.Decimal `json:"monthly_sales"`
	OrderStats   OrderStats      `json:"order_stats"`
	TopProducts  []ProductSales  `json:"top_products"`
	DailySales   []DailySales    `json:"daily_sales"`
}
