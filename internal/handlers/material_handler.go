package handlers

import (
	"fmt"
	"log"
	"strings"
	"umkmcore/internal/models"
	"umkmcore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// MaterialHandler handles HTTP requests for raw materials.
type MaterialHandler struct {
	service  *services.MaterialService
	validate *validator.Validate
}

// NewMaterialHandler creates a new MaterialHandler.
func NewMaterialHandler(service *services.MaterialService) *MaterialHandler {
	return &MaterialHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the material routes with the Fiber app.
func (h *MaterialHandler) RegisterRoutes(router fiber.Router) {
	materialRoutes := router.Group("/materials")
	materialRoutes.Get("/", h.HandleGetMaterials)
	materialRoutes.Get("/:id", h.HandleGetMaterialByID)
	materialRoutes.Post("/", h.HandleCreateMaterial)
	materialRoutes.Put("/:id", h.HandleUpdateMaterial)
	materialRoutes.Delete("/:id", h.HandleDeleteMaterial)
}

// HandleGetMaterials retrieves all materials.
func (h *MaterialHandler) HandleGetMaterials(c *fiber.Ctx) error {
	materials, err := h.service.GetAllMaterials()
	if err != nil {
		log.Printf("Error getting all materials: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve materials",
			"error":   err.Error(),
		})
	}
	return c.JSON(materials)
}

// HandleGetMaterialByID retrieves a single material by its ID.
func (h *MaterialHandler) HandleGetMaterialByID(c *fiber.Ctx) error {
	materialID := c.Params("id")
	material, err := h.service.GetMaterialByID(materialID)
	if err != nil {
		log.Printf("Error getting material by ID %s: %v", materialID, err)
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Material with ID %s not found", materialID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve material",
			"error":   err.Error(),
		})
	}
	return c.JSON(material)
}

// HandleCreateMaterial creates a new material.
func (h *MaterialHandler) HandleCreateMaterial(c *fiber.Ctx) error {
	var material models.Material
	if err := c.BodyParser(&material); err != nil {
		log.Printf("Error parsing material request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(material); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  formatValidationErrors(err),
		})
	}

	if err := h.service.CreateMaterial(&material); err != nil {
		log.Printf("Error creating material: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create material",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(material)
}

// HandleUpdateMaterial updates an existing material.
func (h *MaterialHandler) HandleUpdateMaterial(c *fiber.Ctx) error {
	materialID := c.Params("id")
	var material models.Material
	if err := c.BodyParser(&material); err != nil {
		log.Printf("Error parsing material request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	material.ID = materialID

	if err := h.validate.Struct(material); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  formatValidationErrors(err),
		})
	}

	if err := h.service.UpdateMaterial(&material); err != nil {
		log.Printf("Error updating material %s: %v", materialID, err)
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Material with ID %s not found", materialID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update material",
			"error":   err.Error(),
		})
	}

	return c.JSON(material)
}

// HandleDeleteMaterial deletes a material by its ID.
func (h *MaterialHandler) HandleDeleteMaterial(c *fiber.Ctx) error {
	materialID := c.Params("id")
	if err := h.service.DeleteMaterial(materialID); err != nil {
		log.Printf("Error deleting material %s: %v", materialID, err)
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Material with ID %s not found", materialID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete material",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Material %s deleted successfully", materialID),
	})
}
