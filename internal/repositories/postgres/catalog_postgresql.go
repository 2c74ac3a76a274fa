package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/shikhoron/qna-service/internal/cache"
	"github.com/shikhoron/qna-service/internal/models"
	"github.com/shikhoron/qna-service/internal/repositories"
)

// ===== CLASSES =====

type ClassPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewClassPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ClassRepository {
	return &ClassPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (c *ClassPostgreSQL) Create(ctx context.Context, class *models.Class) error {
	if err := c.db.WithContext(ctx).Create(class).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		return fmt.Errorf("failed to create class: %w", err)
	}

	cache.InvalidateCatalogCaches(ctx, c.cacheManager)

	return nil
}

func (c *ClassPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Class, error) {
	var class models.Class
	if err := c.db.WithContext(ctx).First(&class, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get class: %w", err)
	}
	return &class, nil
}

// GetByName returns (nil, nil) when no class carries the name,
// mirroring the user repository's email lookup.
func (c *ClassPostgreSQL) GetByName(ctx context.Context, name string) (*models.Class, error) {
	var class models.Class
	if err := c.db.WithContext(ctx).Where("name = ?", name).First(&class).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get class by name: %w", err)
	}
	return &class, nil
}

func (c *ClassPostgreSQL) Update(ctx context.Context, class *models.Class) error {
	if err := c.db.WithContext(ctx).Save(class).Error; err != nil {
		return fmt.Errorf("failed to update class: %w", err)
	}

	cache.InvalidateCatalogCaches(ctx, c.cacheManager)

	return nil
}

func (c *ClassPostgreSQL) Delete(ctx context.Context, id uint) error {
	result := c.db.WithContext(ctx).Delete(&models.Class{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete class: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	cache.InvalidateCatalogCaches(ctx, c.cacheManager)

	return nil
}

// List retrieves all classes with caching; the class list is small
// and read on every question form render.
func (c *ClassPostgreSQL) List(ctx context.Context) ([]*models.Class, error) {
	var classes []*models.Class

	err := c.cacheManager.Catalog.CacheOrExecute(ctx, "list:classes", &classes, cache.CatalogCacheConfig.TTL, func() (interface{}, error) {
		var dbClasses []*models.Class
		if err := c.db.WithContext(ctx).Order("name ASC").Find(&dbClasses).Error; err != nil {
			return nil, fmt.Errorf("failed to list classes: %w", err)
		}
		return dbClasses, nil
	})
	if err != nil {
		return nil, err
	}

	return classes, nil
}

// ===== RESOURCES =====

type ResourcePostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewResourcePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ResourceRepository {
	return &ResourcePostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (r *ResourcePostgreSQL) Create(ctx context.Context, resource *models.Resource) error {
	if err := r.db.WithContext(ctx).Create(resource).Error; err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	cache.InvalidateCatalogCaches(ctx, r.cacheManager)

	return nil
}

func (r *ResourcePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Resource, error) {
	var resource models.Resource
	if err := r.db.WithContext(ctx).First(&resource, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}
	return &resource, nil
}

func (r *ResourcePostgreSQL) Update(ctx context.Context, resource *models.Resource) error {
	if err := r.db.WithContext(ctx).Save(resource).Error; err != nil {
		return fmt.Errorf("failed to update resource: %w", err)
	}

	cache.InvalidateCatalogCaches(ctx, r.cacheManager)

	return nil
}

func (r *ResourcePostgreSQL) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Resource{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete resource: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	cache.InvalidateCatalogCaches(ctx, r.cacheManager)

	return nil
}

func (r *ResourcePostgreSQL) List(ctx context.Context, filters repositories.CatalogFilters) ([]*models.Resource, error) {
	var resources []*models.Resource

	query := r.db.WithContext(ctx).Model(&models.Resource{})
	query = r.helpers.ApplyCatalogFilters(query, filters)
	query = r.helpers.ApplyPagination(query, filters.Limit, filters.Offset)

	if err := query.Find(&resources).Error; err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}

	return resources, nil
}

// ===== BOOKS =====

type BookPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewBookPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.BookRepository {
	return &BookPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (b *BookPostgreSQL) Create(ctx context.Context, book *models.Book) error {
	if err := b.db.WithContext(ctx).Create(book).Error; err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}

	cache.InvalidateCatalogCaches(ctx, b.cacheManager)

	return nil
}

func (b *BookPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	if err := b.db.WithContext(ctx).First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return &book, nil
}

func (b *BookPostgreSQL) Update(ctx context.Context, book *models.Book) error {
	if err := b.db.WithContext(ctx).Save(book).Error; err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}

	cache.InvalidateCatalogCaches(ctx, b.cacheManager)

	return nil
}

func (b *BookPostgreSQL) Delete(ctx context.Context, id uint) error {
	result := b.db.WithContext(ctx).Delete(&models.Book{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete book: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	cache.InvalidateCatalogCaches(ctx, b.cacheManager)

	return nil
}

func (b *BookPostgreSQL) List(ctx context.Context, filters repositories.CatalogFilters) ([]*models.Book, error) {
	var books []*models.Book

	query := b.db.WithContext(ctx).Model(&models.Book{})
	query = b.helpers.ApplyCatalogFilters(query, filters)
	query = b.helpers.ApplyPagination(query, filters.Limit, filters.Offset)

	if err := query.Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	return books, nil
}
