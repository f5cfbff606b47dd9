package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"umkmcore/internal/pos"
	"umkmcore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// PosHandler exposes the cart/checkout engine over HTTP. Each authenticated
// user (cashier) gets their own cart and checkout coordinator, keyed by the
// user ID the JWT middleware stored in the request context.
//
// All string-to-number coercion happens here; the engine itself only ever
// sees numeric types.
type PosHandler struct {
	products *services.ProductService
	orders   pos.SalesOrderCreator
	caches   pos.CacheInvalidator
	taxRate  float64
	validate *validator.Validate

	mu       sync.Mutex
	sessions map[string]*pos.Checkout
}

// NewPosHandler creates a new PosHandler. A non-positive taxRate falls back
// to the engine default.
func NewPosHandler(products *services.ProductService, orders pos.SalesOrderCreator, caches pos.CacheInvalidator, taxRate float64) *PosHandler {
	return &PosHandler{
		products: products,
		orders:   orders,
		caches:   caches,
		taxRate:  taxRate,
		validate: validator.New(),
		sessions: make(map[string]*pos.Checkout),
	}
}

// RegisterRoutes registers the POS routes with the Fiber app.
func (h *PosHandler) RegisterRoutes(router fiber.Router) {
	posRoutes := router.Group("/pos")
	posRoutes.Get("/cart", h.HandleGetCart)
	posRoutes.Post("/cart/items", h.HandleAddItem)
	posRoutes.Put("/cart/items/:productId", h.HandleSetQuantity)
	posRoutes.Delete("/cart/items/:productId", h.HandleRemoveItem)
	posRoutes.Delete("/cart", h.HandleClearCart)
	posRoutes.Post("/checkout", h.HandleOpenCheckout)
	posRoutes.Put("/checkout", h.HandleUpdateSelection)
	posRoutes.Delete("/checkout", h.HandleCancelCheckout)
	posRoutes.Post("/checkout/confirm", h.HandleConfirm)
}

// checkoutFor returns the checkout coordinator for the authenticated user,
// creating it on first use.
func (h *PosHandler) checkoutFor(c *fiber.Ctx) (*pos.Checkout, error) {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return nil, fmt.Errorf("no authenticated user in request context")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	checkout, ok := h.sessions[userID]
	if !ok {
		checkout = pos.NewCheckout(userID, pos.NewCart(), h.orders, h.caches, h.taxRate)
		h.sessions[userID] = checkout
	}
	return checkout, nil
}

// cartView is the response shape for cart reads: line items plus the pricing
// snapshot recomputed for this read, and the change preview for the current
// selection.
type cartView struct {
	Items     []pos.LineItem      `json:"items"`
	Pricing   pos.PricingSnapshot `json:"pricing"`
	State     pos.State           `json:"state"`
	Selection pos.Selection       `json:"selection"`
	Change    float64             `json:"change"`
}

func buildCartView(checkout *pos.Checkout) cartView {
	pricing := checkout.Pricing()
	selection := checkout.Selection()
	return cartView{
		Items:     checkout.Cart().Items(),
		Pricing:   pricing,
		State:     checkout.State(),
		Selection: selection,
		Change:    pricing.Change(selection.AmountReceived),
	}
}

// HandleGetCart returns the current cart with its pricing snapshot.
func (h *PosHandler) HandleGetCart(c *fiber.Ctx) error {
	checkout, err := h.checkoutFor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(buildCartView(checkout))
}

// AddItemRequest is the request body for adding a product to the cart.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// HandleAddItem looks up the product and adds one unit of it to the cart,
// snapshotting its name and selling price.
func (h *PosHandler) HandleAddItem(c *fiber.Ctx) error {
	checkout, err := h.checkoutFor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
	}

	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  formatValidationErrors(err),
		})
	}

	product, err := h.products.GetProductByID(req.ProductID)
	if err != nil {
		log.Printf("Error looking up product %s for cart add: %v", req.ProductID, err)
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Product with ID %s not found", req.ProductID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not look up product",
			"error":   err.Error(),
		})
	}

	checkout.Cart().AddItem(pos.ProductSnapshot{
		ID:           product.ID,
		Name:         product.Name,
		SellingPrice: product.SellingPrice,
	})
	return c.JSON(buildCartView(checkout))
}

// SetQuantityRequest is the request body for replacing a line's quantity.
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// HandleSetQuantity replaces the quantity of one cart line. A quantity of
// zero or less removes the line.
func (h *PosHandler) HandleSetQuantity(c *fiber.Ctx) error {
	checkout, err := h.checkoutFor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
	}

	var req SetQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	checkout.Cart().SetQuantity(c.Params("productId"), req.Quantity)
	return c.JSON(buildCartView(checkout))
}

// HandleRemoveItem removes one line from the cart.
func (h *PosHandler) HandleRemoveItem(c *fiber.Ctx) error {
	checkout, err := h.checkoutFor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
	}

	checkout.Cart().RemoveItem(c.Params("productId"))
	return c.JSON(buildCartView(checkout))
}

// HandleClearCart empties the cart.
func (h *PosHandler) HandleClearCart(c *fiber.Ctx) error {
	checkout, err := h.checkoutFor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
	}

	checkout.Cart().Clear()
	return c.JSON(buildCartView(checkout))
}

// HandleOpenCheckout opens the checkout for the current cart.
func (h *PosHandler) HandleOpenCheckout(c *fiber.Ctx) error {
	checkout, err := h.checkoutFor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
	}

	if err := checkout.OpenCheckout(); err != nil {
		return h.checkoutErrorResponse(c, err)
	}
	return c.JSON(buildCartView(checkout))
}

// SelectionRequest is the request body for updating the checkout selection.
type SelectionRequest struct {
	PaymentMethod  string  `json:"payment_method" validate:"required"`
	AmountReceived float64 `json:"amount_received" validate:"gte=0"`
	CustomerID     string  `json:"customer_id"`
}

// HandleUpdateSelection updates payment method, amount received and customer
// for the open checkout.
func (h *PosHandler) HandleUpdateSelection(c *fiber.Ctx) error {
	checkout, err := h.checkoutFor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
	}

	var req SelectionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  formatValidationErrors(err),
		})
	}

	err = checkout.UpdateSelection(pos.Selection{
		PaymentMethod:  pos.PaymentMethod(req.PaymentMethod),
		AmountReceived: req.AmountReceived,
		CustomerID:     req.CustomerID,
	})
	if err != nil {
		return h.checkoutErrorResponse(c, err)
	}
	return c.JSON(buildCartView(checkout))
}

// HandleCancelCheckout closes the checkout without submitting, keeping the cart.
func (h *PosHandler) HandleCancelCheckout(c *fiber.Ctx) error {
	checkout, err := h.checkoutFor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
	}

	if err := checkout.CancelCheckout(); err != nil {
		return h.checkoutErrorResponse(c, err)
	}
	return c.JSON(buildCartView(checkout))
}

// HandleConfirm submits the sale. On success the cart is empty and the
// created order is returned; on failure the cart is untouched and the
// collaborator's message is surfaced.
func (h *PosHandler) HandleConfirm(c *fiber.Ctx) error {
	checkout, err := h.checkoutFor(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
	}

	order, err := checkout.Confirm(c.UserContext())
	if err != nil {
		return h.checkoutErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Sale recorded successfully",
		"order":   order,
		"cart":    buildCartView(checkout),
	})
}

// checkoutErrorResponse maps engine errors to HTTP responses.
func (h *PosHandler) checkoutErrorResponse(c *fiber.Ctx, err error) error {
	var subErr *pos.SubmissionError
	switch {
	case errors.Is(err, pos.ErrEmptyCart),
		errors.Is(err, pos.ErrCheckoutNotOpen),
		errors.Is(err, pos.ErrInvalidPaymentMethod):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	case errors.Is(err, pos.ErrSubmissionInFlight):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": err.Error(),
		})
	case errors.As(err, &subErr):
		log.Printf("Sale submission failed: %v", subErr)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": "Could not record sale",
			"error":   subErr.Message,
		})
	default:
		log.Printf("Unexpected checkout error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not process checkout request",
			"error":   err.Error(),
		})
	}
}
