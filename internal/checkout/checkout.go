package checkout

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/alextreichler/storefront/internal/addressbook"
	"github.com/alextreichler/storefront/internal/apperr"
	"github.com/alextreichler/storefront/internal/cart"
	"github.com/alextreichler/storefront/internal/models"
	"github.com/alextreichler/storefront/internal/pricing"
	"github.com/shopspring/decimal"
)

// ErrInFlight rejects a second placement while one is still running.
var ErrInFlight = errors.New("an order is already being placed")

type State int

const (
	Idle State = iota
	Validating
	Placing
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Placing:
		return "placing"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// AddressLister is the read side of the address book.
type AddressLister interface {
	List(ctx context.Context, accountID string) ([]models.Address, error)
}

// OrderWriter durably stores an order and assigns its ID.
type OrderWriter interface {
	CreateOrder(ctx context.Context, accountID string, order *models.Order) error
}

type Request struct {
	// AddressID is the user's explicit choice. Empty means the default
	// selection policy applies.
	AddressID     string `json:"address_id"`
	PaymentMethod string `json:"payment_method"`
}

type Result struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
}

// Workflow places orders for one session's cart.
type Workflow struct {
	cart      *cart.Cart
	addresses AddressLister
	orders    OrderWriter
	timeout   time.Duration
	now       func() time.Time
	newNumber func() string

	mu    sync.Mutex
	state State

	// OnTransition, if set, is called after every state change.
	OnTransition func(from, to State)
}

type Option func(*Workflow)

func WithTimeout(d time.Duration) Option {
	return func(w *Workflow) { w.timeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

func WithOrderNumbers(gen func() string) Option {
	return func(w *Workflow) { w.newNumber = gen }
}

func New(c *cart.Cart, addresses AddressLister, orders OrderWriter, opts ...Option) *Workflow {
	w := &Workflow{
		cart:      c,
		addresses: addresses,
		orders:    orders,
		now:       time.Now,
		newNumber: NewOrderNumber,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Place runs Idle -> Validating -> Placing -> Succeeded|Failed. Validation
// failures return to Idle without writing anything. A failed write leaves the
// cart untouched so the user can retry.
func (w *Workflow) Place(ctx context.Context, accountID string, req Request) (*Result, error) {
	if err := w.begin(); err != nil {
		return nil, err
	}

	sel, err := w.validate(ctx, accountID, req)
	if err != nil {
		w.transition(Idle)
		return nil, err
	}

	w.transition(Placing)
	order := Snapshot(sel.lines, sel.address, sel.payment, w.newNumber(), w.now())
	order.AccountID = accountID
	if err := w.write(ctx, accountID, order); err != nil {
		w.transition(Failed)
		w.transition(Idle)
		slog.Error("Failed to place order", "account_id", accountID, "order_number", order.OrderNumber, "error", err)
		return nil, apperr.Remote("place order", err)
	}

	// Only what went into the order leaves the cart; lines added while the
	// write was in flight stay.
	w.cart.RemoveLines(sel.lines)
	w.transition(Succeeded)
	slog.Info("Order placed", "account_id", accountID, "order_id", order.ID, "order_number", order.OrderNumber, "total", pricing.Format(order.Total))

	return &Result{OrderID: order.ID, OrderNumber: order.OrderNumber}, nil
}

func (w *Workflow) begin() error {
	w.mu.Lock()
	switch w.state {
	case Validating, Placing:
		w.mu.Unlock()
		return ErrInFlight
	}
	from := w.state
	w.state = Validating
	w.mu.Unlock()
	w.notify(from, Validating)
	return nil
}

func (w *Workflow) transition(to State) {
	w.mu.Lock()
	from := w.state
	w.state = to
	w.mu.Unlock()
	w.notify(from, to)
}

func (w *Workflow) notify(from, to State) {
	if w.OnTransition != nil {
		w.OnTransition(from, to)
	}
}

type selection struct {
	lines   []models.CartLine
	address models.Address
	payment string
}

func (w *Workflow) validate(ctx context.Context, accountID string, req Request) (*selection, error) {
	payment := req.PaymentMethod
	if payment == "" {
		payment = models.PaymentCreditCard
	}
	if !models.ValidPaymentMethod(payment) {
		return nil, apperr.Validation("payment_method", "Please choose a payment method")
	}

	lines := w.cart.Lines()
	if len(lines) == 0 {
		return nil, apperr.Validation("cart", "Your cart is empty")
	}

	addrs, err := w.addresses.List(ctx, accountID)
	if err != nil {
		return nil, apperr.Remote("list addresses", err)
	}
	var (
		addr models.Address
		ok   bool
	)
	if req.AddressID != "" {
		addr, ok = addressbook.Find(addrs, req.AddressID)
	} else {
		addr, ok = addressbook.Select(addrs)
	}
	if !ok {
		return nil, apperr.Validation("address", "Please select a delivery address")
	}

	return &selection{lines: lines, address: addr, payment: payment}, nil
}

func (w *Workflow) write(ctx context.Context, accountID string, order *models.Order) error {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}
	return w.orders.CreateOrder(ctx, accountID, order)
}

// Snapshot builds an order from copies of the cart lines and address, so
// later catalog or address edits never change it.
func Snapshot(lines []models.CartLine, addr models.Address, payment, number string, at time.Time) *models.Order {
	items := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, models.OrderItem{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Price:     l.Product.Price,
			Quantity:  l.Quantity,
			Image:     l.Product.Image,
		})
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal())
	}
	b := pricing.Calculate(subtotal)

	return &models.Order{
		OrderNumber: number,
		Items:       items,
		Subtotal:    b.Subtotal,
		Tax:         b.Tax,
		Shipping:    b.Shipping,
		Total:       b.Total,
		Address: models.ShippingAddress{
			Label:         addr.Label,
			FullName:      addr.FullName,
			StreetAddress: addr.StreetAddress,
			City:          addr.City,
			Province:      addr.Province,
			ZipCode:       addr.ZipCode,
			PhoneNumber:   addr.PhoneNumber,
			Country:       addr.Country,
		},
		PaymentMethod: payment,
		Status:        models.StatusProcessing,
		CreatedAt:     at.UTC(),
	}
}

// NewOrderNumber returns a 9 character display token. Collisions are
// possible; the persistence id is the real key.
func NewOrderNumber() string {
	const charset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // no I, O, 1, 0
	b := make([]byte, 9)
	if _, err := rand.Read(b); err != nil {
		return "ORD" + strconv.FormatInt(time.Now().Unix(), 36)
	}
	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}
	return string(b)
}
