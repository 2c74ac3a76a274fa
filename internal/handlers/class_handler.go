package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shikhoron/qna-service/internal/repositories"
	"github.com/shikhoron/qna-service/internal/services"
	"github.com/shikhoron/qna-service/internal/utils"
)

// ClassHandler serves the public catalog reads: classes with their
// sections, curated resources and book listings.
type ClassHandler struct {
	BaseHandler
	catalogService services.CatalogService
}

func NewClassHandler(catalogService services.CatalogService, logger utils.Logger) *ClassHandler {
	return &ClassHandler{
		BaseHandler:    NewBaseHandler(logger),
		catalogService: catalogService,
	}
}

// ListClasses returns every class with its sections
func (h *ClassHandler) ListClasses(c *gin.Context) {
	classes, err := h.catalogService.ListClasses(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"classes": classes, "total": len(classes)})
}

// ListResources returns curated resources, filterable by class and section
func (h *ClassHandler) ListResources(c *gin.Context) {
	filters := catalogFiltersFromQuery(c)

	resources, err := h.catalogService.ListResources(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"resources": resources, "total": len(resources)})
}

// ListBooks returns book listings, filterable by class and section
func (h *ClassHandler) ListBooks(c *gin.Context) {
	filters := catalogFiltersFromQuery(c)

	books, err := h.catalogService.ListBooks(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"books": books, "total": len(books)})
}

func catalogFiltersFromQuery(c *gin.Context) repositories.CatalogFilters {
	filters := repositories.CatalogFilters{}

	if class := c.Query("class"); class != "" {
		filters.Class = &class
	}
	if section := c.Query("section"); section != "" {
		filters.Section = &section
	}
	if group := c.Query("group"); group != "" {
		filters.Group = &group
	}

	filters.Limit, filters.Offset = paginationFromQuery(c)
	return filters
}
