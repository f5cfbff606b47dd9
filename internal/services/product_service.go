package services

import (
	"umkmcore/internal/models"
	"umkmcore/internal/pos"
	"umkmcore/internal/repositories"
	"umkmcore/pkg/querycache"
)

const allProductsCacheKey = "all"

// ProductService handles business logic related to products. Listing is
// served read-through from the query cache; every write invalidates the
// products tag, as does a completed POS sale (stock changed server-side).
type ProductService struct {
	repo  repositories.ProductRepository
	cache *querycache.Cache
}

// NewProductService creates a new ProductService. cache may be nil to
// disable caching.
func NewProductService(repo repositories.ProductRepository, cache *querycache.Cache) *ProductService {
	return &ProductService{
		repo:  repo,
		cache: cache,
	}
}

// GetAllProducts retrieves all products, from cache when possible.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(pos.ProductsCacheTag, allProductsCacheKey); ok {
			return cached.([]models.Product), nil
		}
	}

	products, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(pos.ProductsCacheTag, allProductsCacheKey, products)
	}
	return products, nil
}

// GetProductByID retrieves a single product by its ID. Always hits the
// repository so the POS snapshots current prices and stock.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct creates a new product.
func (s *ProductService) CreateProduct(product *models.Product) error {
	if err := s.repo.Create(product); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// UpdateProduct updates an existing product.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	if err := s.repo.Update(product); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id string) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *ProductService) invalidate() {
	if s.cache != nil {
		s.cache.Invalidate(pos.ProductsCacheTag)
	}
}
