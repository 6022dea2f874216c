package features

import (
	"context"
	"fmt"
	"testing"

	"github.com/alextreichler/storefront/internal/cart"
	"github.com/alextreichler/storefront/internal/models"
	"github.com/alextreichler/storefront/internal/pricing"
	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"
)

type cartTestContext struct {
	products map[int]models.Product
	cart     *cart.Cart
}

func (c *cartTestContext) reset() {
	c.products = map[int]models.Product{}
	c.cart = cart.New()
}

func (c *cartTestContext) theCatalogProductPriced(id int, name, price string) error {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	c.products[id] = models.Product{ID: id, Name: name, Price: p}
	return nil
}

func (c *cartTestContext) anEmptyCart() error {
	c.cart = cart.New()
	return nil
}

func (c *cartTestContext) iAddProductToTheCart(id int) error {
	p, ok := c.products[id]
	if !ok {
		return fmt.Errorf("unknown product %d", id)
	}
	c.cart.Add(p)
	return nil
}

func (c *cartTestContext) iSetTheQuantityOfProductTo(id, quantity int) error {
	c.cart.UpdateQuantity(id, quantity)
	return nil
}

func (c *cartTestContext) iRemoveProductFromTheCart(id int) error {
	c.cart.Remove(id)
	return nil
}

func (c *cartTestContext) iClearTheCart() error {
	c.cart.Clear()
	return nil
}

func (c *cartTestContext) theCartHasLines(n int) error {
	if got := len(c.cart.Lines()); got != n {
		return fmt.Errorf("expected %d lines, got %d", n, got)
	}
	return nil
}

func (c *cartTestContext) theLineForProductHasQuantity(id, quantity int) error {
	for _, l := range c.cart.Lines() {
		if l.Product.ID == id {
			if l.Quantity != quantity {
				return fmt.Errorf("expected quantity %d, got %d", quantity, l.Quantity)
			}
			return nil
		}
	}
	return fmt.Errorf("no line for product %d", id)
}

func (c *cartTestContext) theCartCountIs(n int) error {
	if got := c.cart.Count(); got != n {
		return fmt.Errorf("expected count %d, got %d", n, got)
	}
	return nil
}

func (c *cartTestContext) theCartTotalIs(total string) error {
	want, err := decimal.NewFromString(total)
	if err != nil {
		return err
	}
	if got := c.cart.Total(); !got.Equal(want) {
		return fmt.Errorf("expected total %s, got %s", want, got)
	}
	return nil
}

func (c *cartTestContext) theOrderSummaryShows(subtotal, tax, shipping, total string) error {
	got := pricing.For(c.cart).Display()
	want := pricing.Display{Subtotal: subtotal, Tax: tax, Shipping: shipping, Total: total}
	if got.Subtotal != want.Subtotal || got.Tax != want.Tax || got.Shipping != want.Shipping || got.Total != want.Total {
		return fmt.Errorf("expected %+v, got %+v", want, got)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &cartTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^the catalog product (\d+) "([^"]*)" priced (\d+(?:\.\d+)?)$`, tc.theCatalogProductPriced)
	ctx.Step(`^an empty cart$`, tc.anEmptyCart)

	// When steps
	ctx.Step(`^I add product (\d+) to the cart$`, tc.iAddProductToTheCart)
	ctx.Step(`^I set the quantity of product (\d+) to (-?\d+)$`, tc.iSetTheQuantityOfProductTo)
	ctx.Step(`^I remove product (\d+) from the cart$`, tc.iRemoveProductFromTheCart)
	ctx.Step(`^I clear the cart$`, tc.iClearTheCart)

	// Then steps
	ctx.Step(`^the cart has (\d+) lines$`, tc.theCartHasLines)
	ctx.Step(`^the line for product (\d+) has quantity (\d+)$`, tc.theLineForProductHasQuantity)
	ctx.Step(`^the cart count is (\d+)$`, tc.theCartCountIs)
	ctx.Step(`^the cart total is (\d+(?:\.\d+)?)$`, tc.theCartTotalIs)
	ctx.Step(`^the order summary shows subtotal (\d+\.\d+), tax (\d+\.\d+), shipping (\d+\.\d+) and total (\d+\.\d+)$`, tc.theOrderSummaryShows)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"cart.feature"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
