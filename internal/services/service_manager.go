package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shikhoron/qna-service/internal/auth"
	"github.com/shikhoron/qna-service/internal/config"
	"github.com/shikhoron/qna-service/internal/events"
	"github.com/shikhoron/qna-service/internal/repositories"
	"github.com/shikhoron/qna-service/internal/storage"
	"github.com/shikhoron/qna-service/internal/validator"
)

// ServiceManagerConfig holds everything the services depend on
type ServiceManagerConfig struct {
	Repo      repositories.Repository
	Sessions  *auth.SessionStore
	Checker   *auth.CredentialChecker
	Store     storage.ObjectStore
	Publisher events.EventPublisher
	Logger    *slog.Logger
	Validator *validator.Validator
	Admin     config.AdminConfig
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	config ServiceManagerConfig

	userService     UserService
	questionService QuestionService
	catalogService  CatalogService
	adminService    AdminService

	initialized bool
	mu          sync.RWMutex
}

// NewServiceManager creates a service manager with all dependencies
func NewServiceManager(config ServiceManagerConfig) ServiceManager {
	return &serviceManager{config: config}
}

// Initialize builds all services and boots the administrator account
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	if sm.config.Repo == nil {
		return fmt.Errorf("repository is required")
	}

	c := sm.config
	sm.userService = NewUserService(c.Repo, c.Sessions, c.Checker, c.Store, c.Publisher, c.Logger, c.Validator, c.Admin)
	sm.questionService = NewQuestionService(c.Repo, c.Store, c.Publisher, c.Logger, c.Validator)
	sm.catalogService = NewCatalogService(c.Repo, c.Store, c.Logger, c.Validator)
	sm.adminService = NewAdminService(c.Repo, c.Publisher, c.Logger, c.Validator)

	if err := sm.userService.EnsureAdminUser(ctx); err != nil {
		return fmt.Errorf("failed to ensure admin user: %w", err)
	}

	sm.initialized = true
	c.Logger.Info("Service manager initialized")

	return nil
}

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.userService
}

func (sm *serviceManager) Question() QuestionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.questionService
}

func (sm *serviceManager) Catalog() CatalogService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.catalogService
}

func (sm *serviceManager) Admin() AdminService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.adminService
}

// HealthCheck verifies database and cache connectivity
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	return sm.config.Repo.Ping(ctx)
}

// Shutdown flushes the event publisher; repository connections are owned
// and closed by the repository manager.
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.config.Publisher != nil {
		if err := sm.config.Publisher.Close(); err != nil {
			return fmt.Errorf("failed to close event publisher: %w", err)
		}
	}

	sm.initialized = false
	return nil
}
