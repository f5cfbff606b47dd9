package services

import (
	"umkmcore/internal/models"
	"umkmcore/internal/repositories"
)

// MaterialService handles business logic related to raw materials.
type MaterialService struct {
	repo repositories.MaterialRepository
}

// NewMaterialService creates a new MaterialService.
func NewMaterialService(repo repositories.MaterialRepository) *MaterialService {
	return &MaterialService{
		repo: repo,
	}
}

// GetAllMaterials retrieves all materials.
func (s *MaterialService) GetAllMaterials() ([]models.Material, error) {
	return s.repo.GetAll()
}

// GetMaterialByID retrieves a single material by its ID.
func (s *MaterialService) GetMaterialByID(id string) (*models.Material, error) {
	return s.repo.GetByID(id)
}

// CreateMaterial creates a new material.
func (s *MaterialService) CreateMaterial(material *models.Material) error {
	return s.repo.Create(material)
}

// UpdateMaterial updates an existing material.
func (s *MaterialService) UpdateMaterial(material *models.Material) error {
	return s.repo.Update(material)
}

// DeleteMaterial deletes a material by its ID.
func (s *MaterialService) DeleteMaterial(id string) error {
	return s.repo.Delete(id)
}
