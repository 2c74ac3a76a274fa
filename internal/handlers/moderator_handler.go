package handlers

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shikhoron/qna-service/internal/services"
	"github.com/shikhoron/qna-service/internal/utils"
	"github.com/shikhoron/qna-service/internal/validator"
)

// ModeratorHandler owns the curated catalog writes: classes, resources
// and books. Access is gated by the moderator middleware on the route
// group, and re-checked inside the services.
type ModeratorHandler struct {
	BaseHandler
	catalogService services.CatalogService
	validator      *validator.Validator
}

func NewModeratorHandler(catalogService services.CatalogService, validator *validator.Validator, logger utils.Logger) *ModeratorHandler {
	return &ModeratorHandler{
		BaseHandler:    NewBaseHandler(logger),
		catalogService: catalogService,
		validator:      validator,
	}
}

// ===== CLASSES =====

// CreateClass adds a class to the catalog
func (h *ModeratorHandler) CreateClass(c *gin.Context) {
	var req services.ClassCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	class, err := h.catalogService.CreateClass(c.Request.Context(), ActorFromContext(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, class)
}

// UpdateClass renames a class and replaces its section list
func (h *ModeratorHandler) UpdateClass(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.ClassCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	class, err := h.catalogService.UpdateClass(c.Request.Context(), ActorFromContext(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, class)
}

// AddSection appends a section to a class; re-adding is a no-op
func (h *ModeratorHandler) AddSection(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.SectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	class, err := h.catalogService.AddSection(c.Request.Context(), ActorFromContext(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, class)
}

// DeleteClass removes a class from the catalog
func (h *ModeratorHandler) DeleteClass(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.catalogService.DeleteClass(c.Request.Context(), ActorFromContext(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Class deleted"})
}

// ===== RESOURCES =====

// CreateResource adds a curated resource, optionally with a file
func (h *ModeratorHandler) CreateResource(c *gin.Context) {
	req, file, opened, ok := h.bindResourceForm(c)
	if !ok {
		return
	}
	defer closeAll(opened)

	resource, err := h.catalogService.CreateResource(c.Request.Context(), ActorFromContext(c), req, file)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resource)
}

// UpdateResource edits a curated resource, optionally replacing its file
func (h *ModeratorHandler) UpdateResource(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	req, file, opened, ok := h.bindResourceForm(c)
	if !ok {
		return
	}
	defer closeAll(opened)

	resource, err := h.catalogService.UpdateResource(c.Request.Context(), ActorFromContext(c), id, req, file)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resource)
}

// DeleteResource removes a resource and its stored file
func (h *ModeratorHandler) DeleteResource(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	cleanup, err := h.catalogService.DeleteResource(c.Request.Context(), ActorFromContext(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Resource deleted",
		Data:    gin.H{"cleanup": cleanup},
	})
}

// ===== BOOKS =====

// CreateBook adds a book listing, optionally with a cover image
func (h *ModeratorHandler) CreateBook(c *gin.Context) {
	req, image, opened, ok := h.bindBookForm(c)
	if !ok {
		return
	}
	defer closeAll(opened)

	book, err := h.catalogService.CreateBook(c.Request.Context(), ActorFromContext(c), req, image)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, book)
}

// UpdateBook edits a book listing, optionally replacing its cover image
func (h *ModeratorHandler) UpdateBook(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	req, image, opened, ok := h.bindBookForm(c)
	if !ok {
		return
	}
	defer closeAll(opened)

	book, err := h.catalogService.UpdateBook(c.Request.Context(), ActorFromContext(c), id, req, image)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, book)
}

// DeleteBook removes a book listing and its stored image
func (h *ModeratorHandler) DeleteBook(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	cleanup, err := h.catalogService.DeleteBook(c.Request.Context(), ActorFromContext(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Book deleted",
		Data:    gin.H{"cleanup": cleanup},
	})
}

// ===== FORM BINDING =====

func (h *ModeratorHandler) bindResourceForm(c *gin.Context) (*services.ResourceRequest, *services.FileAttachment, []multipart.File, bool) {
	if !isMultipart(c) {
		var req services.ResourceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
			return nil, nil, nil, false
		}
		return &req, nil, nil, true
	}

	req := &services.ResourceRequest{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Link:        c.PostForm("link"),
		Class:       c.PostForm("class"),
		Section:     c.PostForm("section"),
		Group:       c.PostForm("group"),
	}

	file, opened := h.singleFile(c, "file")
	return req, file, opened, true
}

func (h *ModeratorHandler) bindBookForm(c *gin.Context) (*services.BookRequest, *services.FileAttachment, []multipart.File, bool) {
	if !isMultipart(c) {
		var req services.BookRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
			return nil, nil, nil, false
		}
		return &req, nil, nil, true
	}

	price, _ := strconv.ParseFloat(c.PostForm("price"), 64)
	req := &services.BookRequest{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Price:       price,
		Class:       c.PostForm("class"),
		Section:     c.PostForm("section"),
		Group:       c.PostForm("group"),
	}

	image, opened := h.singleFile(c, "image")
	return req, image, opened, true
}

func (h *ModeratorHandler) singleFile(c *gin.Context, field string) (*services.FileAttachment, []multipart.File) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		return nil, nil
	}
	return &services.FileAttachment{Filename: header.Filename, Reader: file}, []multipart.File{file}
}
