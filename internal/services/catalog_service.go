package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"

	"github.com/shikhoron/qna-service/internal/auth"
	"github.com/shikhoron/qna-service/internal/models"
	"github.com/shikhoron/qna-service/internal/repositories"
	"github.com/shikhoron/qna-service/internal/storage"
	"github.com/shikhoron/qna-service/internal/utils"
	"github.com/shikhoron/qna-service/internal/validator"
)

type catalogService struct {
	repo      repositories.Repository
	store     storage.ObjectStore
	logger    *slog.Logger
	validator *validator.Validator
}

func NewCatalogService(
	repo repositories.Repository,
	store storage.ObjectStore,
	logger *slog.Logger,
	validator *validator.Validator,
) CatalogService {
	return &catalogService{
		repo:      repo,
		store:     store,
		logger:    logger,
		validator: validator,
	}
}

// ===== CLASSES =====

// ListClasses is open to everyone; the class list drives signup and
// question forms.
func (s *catalogService) ListClasses(ctx context.Context) ([]*models.Class, error) {
	return s.repo.Class().List(ctx)
}

func (s *catalogService) CreateClass(ctx context.Context, actor auth.AuthContext, req *ClassCreateRequest) (*models.Class, error) {
	if ok, reason := auth.CanModerate(actor); !ok {
		return nil, NewPermissionError(actor.UserID, 0, "class", "create", reason)
	}
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	class := &models.Class{
		Name:     req.Name,
		Sections: datatypes.JSONSlice[string](req.Sections),
	}

	if err := s.repo.Class().Create(ctx, class); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrClassNameTaken
		}
		return nil, fmt.Errorf("failed to create class: %w", err)
	}

	s.logger.Info("Class created", "class_id", class.ID, "name", class.Name)

	return class, nil
}

// UpdateClass renames a class and replaces its section list
func (s *catalogService) UpdateClass(ctx context.Context, actor auth.AuthContext, id uint, req *ClassCreateRequest) (*models.Class, error) {
	if ok, reason := auth.CanModerate(actor); !ok {
		return nil, NewPermissionError(actor.UserID, id, "class", "update", reason)
	}
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	class, err := s.repo.Class().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	class.Name = req.Name
	class.Sections = datatypes.JSONSlice[string](req.Sections)

	if err := s.repo.Class().Update(ctx, class); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrClassNameTaken
		}
		return nil, fmt.Errorf("failed to update class: %w", err)
	}

	s.logger.Info("Class updated", "class_id", class.ID, "name", class.Name)

	return class, nil
}

// AddSection appends a section to a class. Adding a section that already
// exists is a no-op, not an error.
func (s *catalogService) AddSection(ctx context.Context, actor auth.AuthContext, classID uint, req *SectionRequest) (*models.Class, error) {
	if ok, reason := auth.CanModerate(actor); !ok {
		return nil, NewPermissionError(actor.UserID, classID, "class", "add_section", reason)
	}
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	class, err := s.repo.Class().GetByID(ctx, classID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	if class.HasSection(req.Section) {
		return class, nil
	}

	class.Sections = append(class.Sections, req.Section)
	if err := s.repo.Class().Update(ctx, class); err != nil {
		return nil, fmt.Errorf("failed to add section: %w", err)
	}

	return class, nil
}

func (s *catalogService) DeleteClass(ctx context.Context, actor auth.AuthContext, id uint) error {
	if ok, reason := auth.CanModerate(actor); !ok {
		return NewPermissionError(actor.UserID, id, "class", "delete", reason)
	}

	if err := s.repo.Class().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrClassNotFound
		}
		return fmt.Errorf("failed to delete class: %w", err)
	}

	return nil
}

// ===== RESOURCES =====

func (s *catalogService) ListResources(ctx context.Context, filters repositories.CatalogFilters) ([]*models.Resource, error) {
	return s.repo.Resource().List(ctx, filters)
}

func (s *catalogService) CreateResource(ctx context.Context, actor auth.AuthContext, req *ResourceRequest, file *FileAttachment) (*models.Resource, error) {
	if ok, reason := auth.CanModerate(actor); !ok {
		return nil, NewPermissionError(actor.UserID, 0, "resource", "create", reason)
	}
	if actor.UserID == 0 {
		return nil, ErrUnauthorized
	}
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	resource := &models.Resource{
		Title:       req.Title,
		Description: req.Description,
		Link:        req.Link,
		Class:       req.Class,
		Section:     req.Section,
		Group:       req.Group,
		ModeratorID: actor.UserID,
	}

	if file != nil {
		url, err := s.store.Upload(ctx, "resources", file.Filename, file.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to upload resource file: %w", err)
		}
		resource.File = url
	}

	if err := s.repo.Resource().Create(ctx, resource); err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	s.logger.Info("Resource created", "resource_id", resource.ID, "moderator_id", actor.UserID)

	return resource, nil
}

func (s *catalogService) UpdateResource(ctx context.Context, actor auth.AuthContext, id uint, req *ResourceRequest, file *FileAttachment) (*models.Resource, error) {
	if ok, reason := auth.CanModerate(actor); !ok {
		return nil, NewPermissionError(actor.UserID, id, "resource", "update", reason)
	}
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	resource, err := s.repo.Resource().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}

	resource.Title = req.Title
	resource.Description = req.Description
	resource.Link = req.Link
	resource.Class = req.Class
	resource.Section = req.Section
	resource.Group = req.Group

	previous := ""
	if file != nil {
		url, err := s.store.Upload(ctx, "resources", file.Filename, file.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to upload resource file: %w", err)
		}
		previous = resource.File
		resource.File = url
	}

	if err := s.repo.Resource().Update(ctx, resource); err != nil {
		return nil, fmt.Errorf("failed to update resource: %w", err)
	}

	if previous != "" && previous != resource.File {
		storage.BestEffortDelete(ctx, s.store, utils.NewSlogLogger(s.logger), []string{previous})
	}

	return resource, nil
}

func (s *catalogService) DeleteResource(ctx context.Context, actor auth.AuthContext, id uint) ([]storage.CleanupResult, error) {
	if ok, reason := auth.CanModerate(actor); !ok {
		return nil, NewPermissionError(actor.UserID, id, "resource", "delete", reason)
	}

	resource, err := s.repo.Resource().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}

	if err := s.repo.Resource().Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to delete resource: %w", err)
	}

	var cleanup []storage.CleanupResult
	if resource.File != "" {
		cleanup = storage.BestEffortDelete(ctx, s.store, utils.NewSlogLogger(s.logger), []string{resource.File})
	}

	return cleanup, nil
}

// ===== BOOKS =====

func (s *catalogService) ListBooks(ctx context.Context, filters repositories.CatalogFilters) ([]*models.Book, error) {
	return s.repo.Book().List(ctx, filters)
}

func (s *catalogService) CreateBook(ctx context.Context, actor auth.AuthContext, req *BookRequest, image *FileAttachment) (*models.Book, error) {
	if ok, reason := auth.CanModerate(actor); !ok {
		return nil, NewPermissionError(actor.UserID, 0, "book", "create", reason)
	}
	if actor.UserID == 0 {
		return nil, ErrUnauthorized
	}
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	book := &models.Book{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Class:       req.Class,
		Section:     req.Section,
		Group:       req.Group,
		ModeratorID: actor.UserID,
	}

	if image != nil {
		url, err := s.store.Upload(ctx, "books", image.Filename, image.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to upload book image: %w", err)
		}
		book.Image = url
	}

	if err := s.repo.Book().Create(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	s.logger.Info("Book created", "book_id", book.ID, "moderator_id", actor.UserID)

	return book, nil
}

func (s *catalogService) UpdateBook(ctx context.Context, actor auth.AuthContext, id uint, req *BookRequest, image *FileAttachment) (*models.Book, error) {
	if ok, reason := auth.CanModerate(actor); !ok {
		return nil, NewPermissionError(actor.UserID, id, "book", "update", reason)
	}
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	book, err := s.repo.Book().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	book.Title = req.Title
	book.Description = req.Description
	book.Price = req.Price
	book.Class = req.Class
	book.Section = req.Section
	book.Group = req.Group

	previous := ""
	if image != nil {
		url, err := s.store.Upload(ctx, "books", image.Filename, image.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to upload book image: %w", err)
		}
		previous = book.Image
		book.Image = url
	}

	if err := s.repo.Book().Update(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	if previous != "" && previous != book.Image {
		storage.BestEffortDelete(ctx, s.store, utils.NewSlogLogger(s.logger), []string{previous})
	}

	return book, nil
}

func (s *catalogService) DeleteBook(ctx context.Context, actor auth.AuthContext, id uint) ([]storage.CleanupResult, error) {
	if ok, reason := auth.CanModerate(actor); !ok {
		return nil, NewPermissionError(actor.UserID, id, "book", "delete", reason)
	}

	book, err := s.repo.Book().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	if err := s.repo.Book().Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to delete book: %w", err)
	}

	var cleanup []storage.CleanupResult
	if book.Image != "" {
		cleanup = storage.BestEffortDelete(ctx, s.store, utils.NewSlogLogger(s.logger), []string{book.Image})
	}

	return cleanup, nil
}
