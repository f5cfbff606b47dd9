package pos

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"umkmcore/internal/models"

	"github.com/google/uuid"
)

// PaymentMethod enumerates the payment methods the POS accepts.
type PaymentMethod string

const (
	PaymentCash          PaymentMethod = "cash"
	PaymentCreditCard    PaymentMethod = "credit_card"
	PaymentDigitalWallet PaymentMethod = "digital_wallet"
)

// Valid reports whether m is one of the accepted payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCreditCard, PaymentDigitalWallet:
		return true
	}
	return false
}

// Selection holds the user-entered checkout choices. AmountReceived is only
// used for change calculation and is not validated against the total.
type Selection struct {
	PaymentMethod  PaymentMethod `json:"payment_method"`
	AmountReceived float64       `json:"amount_received"`
	CustomerID     string        `json:"customer_id,omitempty"` // empty means anonymous sale
}

func defaultSelection() Selection {
	return Selection{PaymentMethod: PaymentCash}
}

// State is the checkout coordinator state.
type State string

const (
	StateIdle                 State = "idle"
	StateAwaitingConfirmation State = "awaiting_confirmation"
	StateSubmitting           State = "submitting"
)

var (
	// ErrEmptyCart is returned when checkout is opened on an empty cart.
	ErrEmptyCart = errors.New("cannot checkout an empty cart")
	// ErrCheckoutNotOpen is returned when an operation requires an open checkout.
	ErrCheckoutNotOpen = errors.New("checkout is not open")
	// ErrSubmissionInFlight is returned when a confirm is already being submitted.
	ErrSubmissionInFlight = errors.New("an order submission is already in flight")
	// ErrInvalidPaymentMethod is returned for a payment method outside the accepted set.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)

// SubmissionError wraps a failure reported by the sales order collaborator.
// Its message is safe to surface to the user verbatim.
type SubmissionError struct {
	Message string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("order submission failed: %s", e.Message)
}

// SalesOrderCreator is the external collaborator that records a sale.
type SalesOrderCreator interface {
	CreateSalesOrder(ctx context.Context, order *models.Order) (*models.Order, error)
}

// CacheInvalidator invalidates read-through caches by tag. The coordinator
// calls it once per successful checkout, because the sale changes stock
// levels on the server side.
type CacheInvalidator interface {
	Invalidate(tag string)
}

// ProductsCacheTag is the cache tag invalidated after a successful sale.
const ProductsCacheTag = "products"

// Checkout coordinates the transition from "cart being built" to "sale
// recorded". At most one submission is in flight at a time; the Submitting
// state is enforced here, not by the caller, so rapid repeated Confirm calls
// cannot produce two orders.
type Checkout struct {
	mu        sync.Mutex
	userID    string
	cart      *Cart
	taxRate   float64
	orders    SalesOrderCreator
	caches    CacheInvalidator
	state     State
	selection Selection
}

// NewCheckout creates a coordinator for the given cashier and cart. A
// non-positive taxRate falls back to DefaultTaxRate. caches may be nil.
func NewCheckout(userID string, cart *Cart, orders SalesOrderCreator, caches CacheInvalidator, taxRate float64) *Checkout {
	if taxRate <= 0 {
		taxRate = DefaultTaxRate
	}
	return &Checkout{
		userID:    userID,
		cart:      cart,
		taxRate:   taxRate,
		orders:    orders,
		caches:    caches,
		state:     StateIdle,
		selection: defaultSelection(),
	}
}

// Cart returns the cart this coordinator owns.
func (c *Checkout) Cart() *Cart {
	return c.cart
}

// State returns the current coordinator state.
func (c *Checkout) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Selection returns the current checkout selection.
func (c *Checkout) Selection() Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection
}

// Pricing returns the pricing breakdown for the current cart contents.
func (c *Checkout) Pricing() PricingSnapshot {
	return Price(c.cart.Items(), c.taxRate)
}

// OpenCheckout transitions Idle -> AwaitingConfirmation with a fresh default
// selection. It fails without a state transition when the cart is empty.
// Opening an already-open checkout is a no-op.
func (c *Checkout) OpenCheckout() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateSubmitting:
		return ErrSubmissionInFlight
	case StateAwaitingConfirmation:
		return nil
	}
	if c.cart.Len() == 0 {
		return ErrEmptyCart
	}
	c.state = StateAwaitingConfirmation
	c.selection = defaultSelection()
	return nil
}

// CancelCheckout transitions AwaitingConfirmation -> Idle, preserving the
// cart. It cannot interrupt an in-flight submission.
func (c *Checkout) CancelCheckout() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateSubmitting:
		return ErrSubmissionInFlight
	case StateIdle:
		return nil
	}
	c.state = StateIdle
	c.selection = defaultSelection()
	return nil
}

// UpdateSelection replaces the checkout selection. It is only allowed while
// the checkout is awaiting confirmation.
func (c *Checkout) UpdateSelection(sel Selection) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateIdle:
		return ErrCheckoutNotOpen
	case StateSubmitting:
		return ErrSubmissionInFlight
	}
	if !sel.PaymentMethod.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, sel.PaymentMethod)
	}
	c.selection = sel
	return nil
}

// Confirm snapshots the cart and selection into an order and submits it to
// the sales order collaborator, exactly once per call. On success the sold
// quantities are deducted from the cart, the selection reset, the products
// cache tag invalidated, and the coordinator returns to Idle. On failure the
// cart and selection are untouched and the coordinator returns to
// AwaitingConfirmation so the user can retry.
//
// Cart mutations made while the submission is in flight are permitted; they
// apply to the next sale only, since the order was already snapshotted. That
// is why success deducts the snapshot rather than clearing the cart outright.
func (c *Checkout) Confirm(ctx context.Context) (*models.Order, error) {
	c.mu.Lock()
	switch c.state {
	case StateIdle:
		c.mu.Unlock()
		return nil, ErrCheckoutNotOpen
	case StateSubmitting:
		c.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}

	order, snapshot := c.assembleOrderLocked()
	c.state = StateSubmitting
	c.mu.Unlock()

	created, err := c.orders.CreateSalesOrder(ctx, order)

	c.mu.Lock()
	if err != nil {
		c.state = StateAwaitingConfirmation
		c.mu.Unlock()
		msg := err.Error()
		if msg == "" {
			msg = "the sale could not be recorded"
		}
		return nil, &SubmissionError{Message: msg}
	}
	c.cart.Deduct(snapshot)
	c.selection = defaultSelection()
	c.state = StateIdle
	c.mu.Unlock()

	if c.caches != nil {
		c.caches.Invalidate(ProductsCacheTag)
	}
	return created, nil
}

// assembleOrderLocked builds the order payload from the current cart and
// selection, returning the line-item snapshot alongside so the success path
// can deduct exactly what was sold.
func (c *Checkout) assembleOrderLocked() (*models.Order, []LineItem) {
	items := c.cart.Items()
	pricing := Price(items, c.taxRate)

	orderItems := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return &models.Order{
		ID:            uuid.New().String(),
		UserID:        c.userID,
		CustomerID:    c.selection.CustomerID,
		Items:         orderItems,
		TotalAmount:   pricing.Total,
		TaxAmount:     pricing.TaxAmount,
		PaymentMethod: string(c.selection.PaymentMethod),
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}, items
}
