package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"umkmcore/internal/models"
	"umkmcore/internal/repositories"

	"github.com/google/uuid"
)

// EventPublisher publishes domain events to the message broker.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// SalesOrderService records sales submitted from the POS checkout. It is the
// order-creation collaborator the checkout coordinator talks to.
type SalesOrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	publisher   EventPublisher
}

// NewSalesOrderService creates a new SalesOrderService. publisher may be nil;
// event publication is then skipped.
func NewSalesOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, publisher EventPublisher) *SalesOrderService {
	return &SalesOrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		publisher:   publisher,
	}
}

// GetAllOrders retrieves all recorded sales.
func (s *SalesOrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetOrderByID retrieves a single sale by its ID.
func (s *SalesOrderService) GetOrderByID(id string) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// CreateSalesOrder validates stock for every line, then persists the order
// and deducts the sold stock in one atomic repository call. The order arrives
// fully priced from the checkout coordinator; unit prices are the snapshots
// taken at add time and are not re-read here.
func (s *SalesOrderService) CreateSalesOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(order.Items) == 0 {
		return nil, fmt.Errorf("order must contain at least one item")
	}

	// Validate every line up front for friendly error messages. The
	// repository re-checks stock inside its transaction, so a concurrent sale
	// slipping in between cannot drive stock negative.
	deductions := make(map[string]int, len(order.Items))
	for _, item := range order.Items {
		product, err := s.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %s not found: %w", item.ProductID, err)
		}
		if product.Stock < item.Quantity {
			return nil, fmt.Errorf("insufficient stock for product %s (requested: %d, available: %d)", product.Name, item.Quantity, product.Stock)
		}
		deductions[item.ProductID] += item.Quantity
	}

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.Status = "completed"
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()

	if err := s.orderRepo.CreateWithStockDeduction(order, deductions); err != nil {
		return nil, fmt.Errorf("failed to record sale: %w", err)
	}

	s.publishSaleCreated(order)

	return order, nil
}

// UpdateOrderStatus updates the status of an existing sale, e.g. to void it.
func (s *SalesOrderService) UpdateOrderStatus(id string, status string) error {
	validStatuses := map[string]bool{"completed": true, "cancelled": true, "refunded": true}
	if _, ok := validStatuses[status]; !ok {
		return fmt.Errorf("invalid order status: %s", status)
	}

	if err := s.orderRepo.UpdateStatus(id, status); err != nil {
		return fmt.Errorf("failed to update order status for order %s: %w", id, err)
	}
	return nil
}

// publishSaleCreated publishes the sale event best-effort; a broker failure
// is logged and never fails the sale itself.
func (s *SalesOrderService) publishSaleCreated(order *models.Order) {
	if s.publisher == nil {
		log.Println("Event publisher is not initialized. Skipping sale event publication.")
		return
	}

	saleCreatedMessage := map[string]interface{}{
		"orderID":       order.ID,
		"userID":        order.UserID,
		"customerID":    order.CustomerID,
		"total":         order.TotalAmount,
		"tax":           order.TaxAmount,
		"paymentMethod": order.PaymentMethod,
		"status":        order.Status,
	}

	messageBody, err := json.Marshal(saleCreatedMessage)
	if err != nil {
		log.Printf("Failed to marshal sale event to JSON: %v", err)
		return
	}
	if err := s.publisher.Publish("sale", "sale.created", messageBody); err != nil {
		log.Printf("Warning: Failed to publish sale created event for order %s: %v", order.ID, err)
		return
	}
	log.Printf("Successfully published sale created event for order %s", order.ID)
}
