package backend

// Product is a sellable catalog entry. Region, platform, age and followers
// ride inside Features as "Key: Value" strings; see the features package for
// the typed view.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       int64    `json:"price"`
	Stock       int      `json:"stock"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Image       string   `json:"image,omitempty"`
}

// ProductInput is the write shape for product create/update calls.
type ProductInput struct {
	Name        string   `json:"name" validate:"required"`
	Price       int64    `json:"price" validate:"gte=0"`
	Stock       int      `json:"stock" validate:"gte=0"`
	Category    string   `json:"category" validate:"required"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Image       string   `json:"image,omitempty"`
}

// CartItem is a product snapshot plus the selected quantity.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// User is the cached profile for a session or an admin listing row.
type User struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"isAdmin"`
	Active  *bool  `json:"active,omitempty"`
}

// OrderStatus values are admin-driven and intentionally unconstrained:
// any status may be set to any other.
type OrderStatus string

const (
	OrderPending    OrderStatus = "Pending"
	OrderProcessing OrderStatus = "Processing"
	OrderDelivered  OrderStatus = "Delivered"
	OrderCancelled  OrderStatus = "Cancelled"
	OrderCompleted  OrderStatus = "Completed"
)

// Known reports whether the status is one of the catalog values.
func (s OrderStatus) Known() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderDelivered, OrderCancelled, OrderCompleted:
		return true
	}
	return false
}

// Delivery is the free-text credential payload an admin attaches to an order.
type Delivery struct {
	Details   string `json:"details"`
	UpdatedAt int64  `json:"updatedAt,omitempty"`
}

// Order snapshots the cart at checkout time; items are copies, not live
// catalog references.
type Order struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	Customer  string      `json:"customer"`
	Email     string      `json:"email"`
	Items     []CartItem  `json:"items"`
	Total     float64     `json:"total"`
	Status    OrderStatus `json:"status"`
	Date      string      `json:"date"`
	CreatedAt string      `json:"createdAt"`
	Reference string      `json:"reference,omitempty"`
	Delivery  *Delivery   `json:"delivery,omitempty"`
}

// OrderInput is the write shape for order creation; the backend assigns the id.
type OrderInput struct {
	UserID    string      `json:"userId"`
	Customer  string      `json:"customer" validate:"required"`
	Email     string      `json:"email" validate:"required,email"`
	Items     []CartItem  `json:"items" validate:"min=1"`
	Total     float64     `json:"total" validate:"gt=0"`
	Status    OrderStatus `json:"status"`
	Date      string      `json:"date"`
	CreatedAt string      `json:"createdAt"`
	Reference string      `json:"reference,omitempty"`
}

// OrderPage is one cursor page of orders. NextCursor is opaque; empty means
// the listing is exhausted.
type OrderPage struct {
	Items      []Order `json:"items"`
	NextCursor string  `json:"nextCursor"`
}

// Gateway selects one of the two supported payment integrations.
type Gateway string

const (
	GatewayFlutterwave Gateway = "flutterwave"
	GatewayPaystack    Gateway = "paystack"
)

// PaymentSession carries the hosted checkout URL returned by an initiate call.
type PaymentSession struct {
	Link string
}

// PaymentVerification is the result of a one-shot verify poll.
type PaymentVerification struct {
	Paid   bool        `json:"paid"`
	Status OrderStatus `json:"status"`
}

// Confirmed reports whether the payment landed and the order moved on.
func (v PaymentVerification) Confirmed() bool {
	return v.Paid && (v.Status == OrderDelivered || v.Status == OrderProcessing)
}

// HealthStatus mirrors the backend health payload shown on the admin dashboard.
type HealthStatus struct {
	FlutterwaveConfigured bool `json:"flutterwaveConfigured"`
	Maintenance           bool `json:"maintenance"`
}
