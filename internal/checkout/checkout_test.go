package checkout

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/alextreichler/storefront/internal/apperr"
	"github.com/alextreichler/storefront/internal/cart"
	"github.com/alextreichler/storefront/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAddresses struct {
	addrs []models.Address
	err   error
}

func (s *stubAddresses) List(ctx context.Context, accountID string) ([]models.Address, error) {
	return s.addrs, s.err
}

type stubOrders struct {
	mu      sync.Mutex
	written []models.Order
	err     error
	release chan struct{}
	entered chan struct{}
}

func (s *stubOrders) CreateOrder(ctx context.Context, accountID string, order *models.Order) error {
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.release != nil {
		<-s.release
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	order.ID = fmt.Sprintf("order-%d", len(s.written)+1)
	s.written = append(s.written, *order)
	return nil
}

var (
	headphones = models.Product{ID: 1, Name: "Wireless Headphones", Price: decimal.RequireFromString("89.99"), Image: "🎧"}
	yogaMat    = models.Product{ID: 6, Name: "Yoga Mat", Price: decimal.RequireFromString("34.99"), Image: "🧘"}

	home = models.Address{ID: "home", Label: "Home", FullName: "Jane Doe", PhoneNumber: "555", StreetAddress: "1 Main", City: "Springfield", Province: "IL", ZipCode: "12345"}
	work = models.Address{ID: "work", Label: "Work", FullName: "Jane Doe", PhoneNumber: "555", StreetAddress: "9 Office Park", City: "Springfield", ZipCode: "12345", IsDefault: true}
)

func fixedClock() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

func newWorkflow(c *cart.Cart, addrs *stubAddresses, orders *stubOrders) (*Workflow, *[]string) {
	var transitions []string
	w := New(c, addrs, orders, WithClock(fixedClock), WithOrderNumbers(func() string { return "ABC234XYZ" }))
	w.OnTransition = func(from, to State) {
		transitions = append(transitions, from.String()+"->"+to.String())
	}
	return w, &transitions
}

func TestPlaceSucceeds(t *testing.T) {
	c := cart.New()
	c.Add(headphones)
	c.Add(headphones)
	c.Add(yogaMat)
	orders := &stubOrders{}
	w, transitions := newWorkflow(c, &stubAddresses{addrs: []models.Address{home, work}}, orders)

	res, err := w.Place(context.Background(), "acct", Request{PaymentMethod: models.PaymentPayPal})
	require.NoError(t, err)
	assert.Equal(t, "order-1", res.OrderID)
	assert.Equal(t, "ABC234XYZ", res.OrderNumber)
	assert.Equal(t, Succeeded, w.State())
	assert.Equal(t, []string{"idle->validating", "validating->placing", "placing->succeeded"}, *transitions)
	assert.True(t, c.IsEmpty())

	require.Len(t, orders.written, 1)
	o := orders.written[0]
	assert.Equal(t, "acct", o.AccountID)
	assert.Equal(t, models.StatusProcessing, o.Status)
	assert.Equal(t, models.PaymentPayPal, o.PaymentMethod)
	assert.Equal(t, "Work", o.Address.Label, "default address is preselected")
	assert.Equal(t, "214.97", o.Subtotal.String())
	assert.True(t, o.Tax.Equal(decimal.RequireFromString("21.497")))
	assert.True(t, o.Shipping.IsZero())
	assert.Equal(t, fixedClock(), o.CreatedAt)
	require.Len(t, o.Items, 2)
	assert.Equal(t, models.OrderItem{ProductID: 1, Name: "Wireless Headphones", Price: headphones.Price, Quantity: 2, Image: "🎧"}, o.Items[0])
}

func TestPlaceUsesExplicitAddress(t *testing.T) {
	c := cart.New()
	c.Add(yogaMat)
	orders := &stubOrders{}
	w, _ := newWorkflow(c, &stubAddresses{addrs: []models.Address{home, work}}, orders)

	_, err := w.Place(context.Background(), "acct", Request{AddressID: "home"})
	require.NoError(t, err)
	assert.Equal(t, "Home", orders.written[0].Address.Label)
	assert.Equal(t, "IL", orders.written[0].Address.Province)
	assert.Equal(t, models.PaymentCreditCard, orders.written[0].PaymentMethod)
	assert.Equal(t, "10", orders.written[0].Shipping.String())
}

func TestPlaceFallsBackToFirstAddressWithoutDefault(t *testing.T) {
	c := cart.New()
	c.Add(yogaMat)
	orders := &stubOrders{}
	second := home
	second.ID, second.Label = "second", "Second"
	w, _ := newWorkflow(c, &stubAddresses{addrs: []models.Address{home, second}}, orders)

	_, err := w.Place(context.Background(), "acct", Request{})
	require.NoError(t, err)
	assert.Equal(t, "Home", orders.written[0].Address.Label)
}

func TestPlaceWithoutAddressesWritesNothing(t *testing.T) {
	c := cart.New()
	c.Add(yogaMat)
	orders := &stubOrders{}
	w, transitions := newWorkflow(c, &stubAddresses{}, orders)

	_, err := w.Place(context.Background(), "acct", Request{})

	var ve *apperr.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "address", ve.Field)
	assert.Empty(t, orders.written)
	assert.Equal(t, Idle, w.State())
	assert.Equal(t, 1, c.Count())
	assert.Equal(t, []string{"idle->validating", "validating->idle"}, *transitions)
}

func TestPlaceUnknownExplicitAddress(t *testing.T) {
	c := cart.New()
	c.Add(yogaMat)
	orders := &stubOrders{}
	w, _ := newWorkflow(c, &stubAddresses{addrs: []models.Address{home}}, orders)

	_, err := w.Place(context.Background(), "acct", Request{AddressID: "deleted"})
	assert.True(t, apperr.IsValidation(err))
	assert.Empty(t, orders.written)
}

func TestPlaceValidation(t *testing.T) {
	orders := &stubOrders{}

	w, _ := newWorkflow(cart.New(), &stubAddresses{addrs: []models.Address{home}}, orders)
	_, err := w.Place(context.Background(), "acct", Request{})
	var ve *apperr.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "cart", ve.Field)

	c := cart.New()
	c.Add(yogaMat)
	w, _ = newWorkflow(c, &stubAddresses{addrs: []models.Address{home}}, orders)
	_, err = w.Place(context.Background(), "acct", Request{PaymentMethod: "Bitcoin"})
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "payment_method", ve.Field)

	assert.Empty(t, orders.written)
}

func TestPlaceAddressFetchFailure(t *testing.T) {
	c := cart.New()
	c.Add(yogaMat)
	orders := &stubOrders{}
	w, _ := newWorkflow(c, &stubAddresses{err: errors.New("offline")}, orders)

	_, err := w.Place(context.Background(), "acct", Request{})
	assert.True(t, apperr.IsNetwork(err))
	assert.Equal(t, Idle, w.State())
	assert.Empty(t, orders.written)
}

func TestPlaceWriteFailureKeepsCartAndAllowsRetry(t *testing.T) {
	c := cart.New()
	c.Add(headphones)
	orders := &stubOrders{err: errors.New("backend fault")}
	w, transitions := newWorkflow(c, &stubAddresses{addrs: []models.Address{home}}, orders)

	_, err := w.Place(context.Background(), "acct", Request{})
	assert.True(t, apperr.IsNetwork(err))
	assert.Equal(t, Idle, w.State())
	assert.Equal(t, 1, c.Count())
	assert.Equal(t, []string{"idle->validating", "validating->placing", "placing->failed", "failed->idle"}, *transitions)

	orders.err = nil
	res, err := w.Place(context.Background(), "acct", Request{})
	require.NoError(t, err)
	assert.NotEmpty(t, res.OrderID)
	assert.True(t, c.IsEmpty())
}

func TestPlaceRejectsDoubleSubmit(t *testing.T) {
	c := cart.New()
	c.Add(headphones)
	orders := &stubOrders{release: make(chan struct{}), entered: make(chan struct{}, 1)}
	w, _ := newWorkflow(c, &stubAddresses{addrs: []models.Address{home}}, orders)

	done := make(chan error, 1)
	go func() {
		_, err := w.Place(context.Background(), "acct", Request{})
		done <- err
	}()

	<-orders.entered
	assert.Equal(t, Placing, w.State())
	_, err := w.Place(context.Background(), "acct", Request{})
	assert.ErrorIs(t, err, ErrInFlight)

	close(orders.release)
	require.NoError(t, <-done)
	assert.Len(t, orders.written, 1)
}

func TestSnapshotIsolatedFromCatalog(t *testing.T) {
	p := headphones
	c := cart.New()
	c.Add(p)

	order := Snapshot(c.Lines(), home, models.PaymentCreditCard, "N", fixedClock())

	p.Name = "Renamed Headphones"
	p.Price = decimal.RequireFromString("1.00")
	c.Clear()
	c.Add(p)

	assert.Equal(t, "Wireless Headphones", order.Items[0].Name)
	assert.Equal(t, "89.99", order.Items[0].Price.String())
}

func TestNewOrderNumber(t *testing.T) {
	re := regexp.MustCompile(`^[A-HJ-NP-Z2-9]{9}$`)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		n := NewOrderNumber()
		assert.Regexp(t, re, n)
		seen[n] = true
	}
	// Collisions are possible but should be rare.
	assert.Greater(t, len(seen), 95)
}

func TestPlaceKeepsItemsAddedWhileWriting(t *testing.T) {
	c := cart.New()
	c.Add(headphones)
	orders := &stubOrders{release: make(chan struct{}), entered: make(chan struct{}, 1)}
	w, _ := newWorkflow(c, &stubAddresses{addrs: []models.Address{home}}, orders)

	done := make(chan error, 1)
	go func() {
		_, err := w.Place(context.Background(), "acct", Request{})
		done <- err
	}()

	<-orders.entered
	c.Add(yogaMat)
	c.Add(headphones)
	close(orders.release)
	require.NoError(t, <-done)

	require.Len(t, orders.written, 1)
	require.Len(t, orders.written[0].Items, 1)
	assert.Equal(t, 1, orders.written[0].Items[0].Quantity)

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, headphones.ID, lines[0].Product.ID)
	assert.Equal(t, 1, lines[0].Quantity)
	assert.Equal(t, yogaMat.ID, lines[1].Product.ID)
	assert.Equal(t, 2, c.Count())
}
