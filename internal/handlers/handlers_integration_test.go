package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"umkmcore/internal/handlers"
	"umkmcore/internal/middleware"
	"umkmcore/internal/models"
	"umkmcore/internal/repositories"
	"umkmcore/internal/services"
	"umkmcore/pkg/querycache"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp sets up a Fiber app for testing with in-memory SQLite and all
// handlers/services wired, without a message broker.
func setupApp() (*fiber.App, *services.AuthService, error) {
	// Configure Viper for testing
	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	// Initialize in-memory SQLite database
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to in-memory database: %w", err)
	}

	// Auto-migrate models
	err = db.AutoMigrate(
		&models.Product{},
		&models.Material{},
		&models.BOMItem{},
		&models.Customer{},
		&models.User{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	// Initialize Repositories
	productRepo := repositories.NewGORMProductRepository(db)
	materialRepo := repositories.NewGORMMaterialRepository(db)
	bomRepo := repositories.NewGORMBOMRepository(db)
	customerRepo := repositories.NewGORMCustomerRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	// Initialize Services
	cache := querycache.New()
	productService := services.NewProductService(productRepo, cache)
	materialService := services.NewMaterialService(materialRepo)
	bomService := services.NewBOMService(bomRepo, productRepo, materialRepo)
	customerService := services.NewCustomerService(customerRepo)
	authService := services.NewAuthService(userRepo, jwtSecret)
	salesOrderService := services.NewSalesOrderService(orderRepo, productRepo, nil) // nil event publisher

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(authService)
	productHandler := handlers.NewProductHandler(productService, bomService)
	materialHandler := handlers.NewMaterialHandler(materialService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	orderHandler := handlers.NewOrderHandler(salesOrderService)
	posHandler := handlers.NewPosHandler(productService, salesOrderService, cache, 0.10)

	app := fiber.New()

	// API Routes
	apiV1 := app.Group("/api/v1")

	// Authentication routes (public)
	authHandler.RegisterRoutes(apiV1)

	// Protected routes (require JWT authentication)
	protectedRoutes := apiV1.Group("", middleware.AuthRequired(authService))
	userHandler.RegisterRoutes(protectedRoutes)
	productHandler.RegisterRoutes(protectedRoutes)
	materialHandler.RegisterRoutes(protectedRoutes)
	customerHandler.RegisterRoutes(protectedRoutes)
	orderHandler.RegisterRoutes(protectedRoutes)
	posHandler.RegisterRoutes(protectedRoutes)

	return app, authService, nil
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

// registerAndLogin creates a user through the API and returns a valid token.
func registerAndLogin(t *testing.T, app *fiber.App, username string) string {
	t.Helper()

	userToRegister := map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	}
	jsonBody, _ := json.Marshal(userToRegister)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	loginCredentials := map[string]string{
		"username": username,
		"password": "password123",
	}
	jsonBody, _ = json.Marshal(loginCredentials)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var loginResp map[string]string
	err = json.NewDecoder(resp.Body).Decode(&loginResp)
	assert.NoError(t, err)
	assert.NotEmpty(t, loginResp["token"])
	resp.Body.Close()
	return loginResp["token"]
}

// doJSON performs an authenticated JSON request against the test app.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reader = bytes.NewReader(jsonBody)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	resp.Body.Close()
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app, authService, err := setupApp()
	assert.NoError(t, err)

	token := registerAndLogin(t, app, "authflowuser")

	// Duplicate registration is rejected
	userToRegister := map[string]string{
		"username": "authflowuser",
		"email":    "authflowuser@example.com",
		"password": "password123",
	}
	jsonBody, _ := json.Marshal(userToRegister)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// The issued token carries the expected claims
	claims, err := authService.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "authflowuser", claims["username"])
	assert.Contains(t, claims, "user_id")
}

func TestProductEndpointsWithAuth(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)
	token := registerAndLogin(t, app, "productuser")

	// --- POST /products ---
	newProduct := map[string]interface{}{
		"name":          "Smartphone",
		"description":   "Latest model smartphone",
		"selling_price": 799.99,
		"stock":         50,
	}
	resp := doJSON(t, app, http.MethodPost, "/api/v1/products", token, newProduct)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var createdProduct models.Product
	decodeBody(t, resp, &createdProduct)
	assert.NotEmpty(t, createdProduct.ID)
	assert.Equal(t, "Smartphone", createdProduct.Name)

	// --- GET /products ---
	resp = doJSON(t, app, http.MethodGet, "/api/v1/products", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var products []models.Product
	decodeBody(t, resp, &products)
	assert.GreaterOrEqual(t, len(products), 1)

	// --- GET /products/:id ---
	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/"+createdProduct.ID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var fetchedProduct models.Product
	decodeBody(t, resp, &fetchedProduct)
	assert.Equal(t, createdProduct.ID, fetchedProduct.ID)

	// --- PUT /products/:id ---
	updatedProductData := map[string]interface{}{
		"name":          "Smartphone Pro",
		"description":   "Latest model smartphone pro edition",
		"selling_price": 899.99,
		"stock":         45,
	}
	resp = doJSON(t, app, http.MethodPut, "/api/v1/products/"+createdProduct.ID, token, updatedProductData)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var updatedProduct models.Product
	decodeBody(t, resp, &updatedProduct)
	assert.Equal(t, "Smartphone Pro", updatedProduct.Name)

	// --- DELETE /products/:id ---
	resp = doJSON(t, app, http.MethodDelete, "/api/v1/products/"+createdProduct.ID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Verify deletion
	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/"+createdProduct.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestProductEndpointsWithoutAuth(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)

	// Test GET /products without token
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Test POST /products without token
	newProduct := map[string]interface{}{
		"name":          "Unauthorized Product",
		"selling_price": 100.0,
		"stock":         10,
	}
	jsonBody, _ := json.Marshal(newProduct)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestBOMAndCosting(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)
	token := registerAndLogin(t, app, "bomuser")

	// Create a product and a material
	resp := doJSON(t, app, http.MethodPost, "/api/v1/products", token, map[string]interface{}{
		"name":          "Iced Coffee",
		"selling_price": 25.0,
		"stock":         100,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var product models.Product
	decodeBody(t, resp, &product)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/materials", token, map[string]interface{}{
		"name":       "Coffee Beans",
		"unit":       "kg",
		"unit_price": 200.0,
		"stock":      5.0,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var material models.Material
	decodeBody(t, resp, &material)

	// Attach the material to the product's BOM
	resp = doJSON(t, app, http.MethodPost, "/api/v1/products/"+product.ID+"/bom", token, map[string]interface{}{
		"material_id": material.ID,
		"quantity":    0.02,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Cost rollup: 0.02 kg * 200 = 4.0 material cost, margin 21.0
	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/"+product.ID+"/cost", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var cost services.ProductCost
	decodeBody(t, resp, &cost)
	assert.InDelta(t, 4.0, cost.MaterialCost, 1e-9)
	assert.InDelta(t, 21.0, cost.ProfitMargin, 1e-9)
}

func TestPosCheckoutFlow(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)
	token := registerAndLogin(t, app, "cashier")

	// Seed two products through the API
	resp := doJSON(t, app, http.MethodPost, "/api/v1/products", token, map[string]interface{}{
		"name":          "POS Product A",
		"selling_price": 10.0,
		"stock":         5,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var prodA models.Product
	decodeBody(t, resp, &prodA)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/products", token, map[string]interface{}{
		"name":          "POS Product B",
		"selling_price": 20.0,
		"stock":         5,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var prodB models.Product
	decodeBody(t, resp, &prodB)

	// Build the cart: A once, B twice
	resp = doJSON(t, app, http.MethodPost, "/api/v1/pos/cart/items", token, map[string]string{"product_id": prodA.ID})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = doJSON(t, app, http.MethodPost, "/api/v1/pos/cart/items", token, map[string]string{"product_id": prodB.ID})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = doJSON(t, app, http.MethodPost, "/api/v1/pos/cart/items", token, map[string]string{"product_id": prodB.ID})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// 10 + 20*2 = 50 subtotal, 5 tax, 55 total
	var view struct {
		Items []struct {
			ProductID string `json:"product_id"`
			Quantity  int    `json:"quantity"`
		} `json:"items"`
		Pricing struct {
			Subtotal  float64 `json:"subtotal"`
			TaxAmount float64 `json:"tax_amount"`
			Total     float64 `json:"total"`
		} `json:"pricing"`
		Change float64 `json:"change"`
	}
	decodeBody(t, resp, &view)
	assert.Len(t, view.Items, 2)
	assert.Equal(t, 50.0, view.Pricing.Subtotal)
	assert.Equal(t, 5.0, view.Pricing.TaxAmount)
	assert.Equal(t, 55.0, view.Pricing.Total)

	// Open checkout and set the payment selection
	resp = doJSON(t, app, http.MethodPost, "/api/v1/pos/checkout", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPut, "/api/v1/pos/checkout", token, map[string]interface{}{
		"payment_method":  "cash",
		"amount_received": 55.0,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &view)
	assert.Equal(t, 0.0, view.Change)

	// Confirm the sale
	resp = doJSON(t, app, http.MethodPost, "/api/v1/pos/checkout/confirm", token, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var confirmResp struct {
		Order models.Order `json:"order"`
	}
	decodeBody(t, resp, &confirmResp)
	assert.Equal(t, "completed", confirmResp.Order.Status)
	assert.Equal(t, 55.0, confirmResp.Order.TotalAmount)
	assert.Equal(t, 5.0, confirmResp.Order.TaxAmount)

	// The cart is cleared after a successful sale
	resp = doJSON(t, app, http.MethodGet, "/api/v1/pos/cart", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &view)
	assert.Empty(t, view.Items)

	// Stock was decremented server-side
	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/"+prodB.ID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched models.Product
	decodeBody(t, resp, &fetched)
	assert.Equal(t, 3, fetched.Stock)

	// The order shows up in the sales history
	resp = doJSON(t, app, http.MethodGet, "/api/v1/orders/"+confirmResp.Order.ID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var storedOrder models.Order
	decodeBody(t, resp, &storedOrder)
	assert.Len(t, storedOrder.Items, 2)
}

func TestPosCheckoutGuards(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)
	token := registerAndLogin(t, app, "guarduser")

	// Empty-cart checkout is rejected before any network activity
	resp := doJSON(t, app, http.MethodPost, "/api/v1/pos/checkout", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Contains(t, body["message"], "empty cart")

	// Confirm without an open checkout is rejected as well
	resp = doJSON(t, app, http.MethodPost, "/api/v1/pos/checkout/confirm", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestPosCheckoutFailurePreservesCart(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)
	token := registerAndLogin(t, app, "failureuser")

	// Product with a single unit in stock
	resp := doJSON(t, app, http.MethodPost, "/api/v1/products", token, map[string]interface{}{
		"name":          "Scarce Product",
		"selling_price": 10.0,
		"stock":         1,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var product models.Product
	decodeBody(t, resp, &product)

	// Two units in the cart, only one in stock
	resp = doJSON(t, app, http.MethodPost, "/api/v1/pos/cart/items", token, map[string]string{"product_id": product.ID})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = doJSON(t, app, http.MethodPost, "/api/v1/pos/cart/items", token, map[string]string{"product_id": product.ID})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/v1/pos/checkout", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/v1/pos/checkout/confirm", token, nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	var errBody map[string]string
	decodeBody(t, resp, &errBody)
	assert.Contains(t, errBody["error"], "insufficient stock")

	// The cart is preserved for a retry
	resp = doJSON(t, app, http.MethodGet, "/api/v1/pos/cart", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var view struct {
		Items []struct {
			Quantity int `json:"quantity"`
		} `json:"items"`
		State string `json:"state"`
	}
	decodeBody(t, resp, &view)
	assert.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.Equal(t, "awaiting_confirmation", view.State)
}
