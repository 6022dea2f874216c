package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryElectronics Category = "Electronics"
	CategoryFashion     Category = "Fashion"
	CategoryHome        Category = "Home"
	CategorySports      Category = "Sports"
)

// Categories lists every category in menu order.
var Categories = []Category{CategoryElectronics, CategoryFashion, CategoryHome, CategorySports}

type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    Category        `json:"category"`
	Image       string          `json:"image"`
	Rating      float64         `json:"rating"` // 0.0 - 5.0
	Description string          `json:"description"`
}

type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// LineTotal is price * quantity, unrounded.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Address struct {
	ID            string    `json:"id"`
	AccountID     string    `json:"-"`
	Label         string    `json:"label"` // "Home", "Work", ...
	FullName      string    `json:"full_name"`
	PhoneNumber   string    `json:"phone_number"`
	StreetAddress string    `json:"street_address"`
	City          string    `json:"city"`
	Province      string    `json:"province"`
	ZipCode       string    `json:"zip_code"`
	Country       string    `json:"country"`
	IsDefault     bool      `json:"is_default"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type OrderStatus string

const (
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

const (
	PaymentCreditCard     = "Credit Card"
	PaymentDebitCard      = "Debit Card"
	PaymentPayPal         = "PayPal"
	PaymentCashOnDelivery = "Cash on Delivery"
)

// PaymentMethods is the checkout payment menu. Payment is a label only.
var PaymentMethods = []string{PaymentCreditCard, PaymentDebitCard, PaymentPayPal, PaymentCashOnDelivery}

func ValidPaymentMethod(label string) bool {
	for _, m := range PaymentMethods {
		if m == label {
			return true
		}
	}
	return false
}

// OrderItem is a copy of a cart line taken at placement time.
type OrderItem struct {
	ProductID int             `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image"`
}

// ShippingAddress is the address snapshot embedded in an order.
type ShippingAddress struct {
	Label         string `json:"label"`
	FullName      string `json:"full_name"`
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	Province      string `json:"province"`
	ZipCode       string `json:"zip_code"`
	PhoneNumber   string `json:"phone_number"`
	Country       string `json:"country,omitempty"`
}

type Order struct {
	ID            string          `json:"id"`
	AccountID     string          `json:"-"`
	OrderNumber   string          `json:"order_number"` // Display only, not unique
	Items         []OrderItem     `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Shipping      decimal.Decimal `json:"shipping"`
	Total         decimal.Decimal `json:"total"`
	Address       ShippingAddress `json:"address"`
	PaymentMethod string          `json:"payment_method"`
	Status        OrderStatus     `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

type Account struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Password    string    `json:"-"` // bcrypt hash
	DisplayName string    `json:"display_name"`
	IsAdmin     bool      `json:"is_admin"`
	CreatedAt   time.Time `json:"created_at"`
}
