package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"

	"github.com/shikhoron/qna-service/internal/auth"
	"github.com/shikhoron/qna-service/internal/config"
	"github.com/shikhoron/qna-service/internal/events"
	"github.com/shikhoron/qna-service/internal/models"
	"github.com/shikhoron/qna-service/internal/repositories"
	"github.com/shikhoron/qna-service/internal/storage"
	"github.com/shikhoron/qna-service/internal/utils"
	"github.com/shikhoron/qna-service/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	sessions  *auth.SessionStore
	checker   *auth.CredentialChecker
	store     storage.ObjectStore
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	admin     config.AdminConfig
}

func NewUserService(
	repo repositories.Repository,
	sessions *auth.SessionStore,
	checker *auth.CredentialChecker,
	store storage.ObjectStore,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
	admin config.AdminConfig,
) UserService {
	return &userService{
		repo:      repo,
		sessions:  sessions,
		checker:   checker,
		store:     store,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		admin:     admin,
	}
}

// Register creates an account and opens a session for it
func (s *userService) Register(ctx context.Context, req *RegisterRequest, avatar *FileAttachment) (*AuthResponse, error) {
	s.logger.Info("Registering user", "email", req.Email)

	if errs := s.validator.GetBusinessValidator().ValidateRegister(req); len(errs) > 0 {
		return nil, errs
	}

	exists, err := s.repo.User().ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	role := models.RoleStudent
	if req.Role == string(models.RoleTeacher) {
		role = models.RoleTeacher
	}

	user := &models.User{
		Name:            req.Name,
		Email:           req.Email,
		InstitutionName: req.InstitutionName,
		Class:           req.Class,
		Role:            role,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Upload the avatar before the insert; a failed upload fails signup.
	if avatar != nil {
		url, err := s.store.Upload(ctx, "avatars", avatar.Filename, avatar.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to upload avatar: %w", err)
		}
		profile := user.Profile.Data()
		profile.Avatar = url
		user.Profile = datatypes.NewJSONType(profile)
	}

	if err := s.repo.User().Create(ctx, user); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.publishEvent(ctx, events.NewEvent(events.TypeUserRegistered, map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
		"class":   user.Class,
	}))

	cred := auth.Credential{Kind: auth.CredentialStoredUser, User: user}
	token, err := s.sessions.Create(ctx, cred.Actor())
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("User registered", "user_id", user.ID)

	return &AuthResponse{Token: token, User: user.Summary()}, nil
}

// Login validates credentials and opens a session
func (s *userService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	cred, err := s.checker.Check(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	actor := cred.Actor()
	token, err := s.sessions.Create(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	summary := s.summaryForCredential(cred)

	s.logger.Info("User logged in", "user_id", actor.UserID, "role", actor.Role)

	return &AuthResponse{Token: token, User: summary}, nil
}

// Logout destroys the session server-side
func (s *userService) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}

// GetProfile returns the actor's own account
func (s *userService) GetProfile(ctx context.Context, actor auth.AuthContext) (*models.UserSummary, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthorized
	}

	if actor.UserID == 0 {
		// Configured admin session with no backing row
		summary := s.syntheticAdminSummary()
		return &summary, nil
	}

	user, err := s.repo.User().GetByID(ctx, actor.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	summary := user.Summary()
	return &summary, nil
}

// UpdateProfile applies partial edits to the actor's account
func (s *userService) UpdateProfile(ctx context.Context, actor auth.AuthContext, req *ProfileUpdateRequest) (*models.UserSummary, error) {
	if !actor.Authenticated() || actor.UserID == 0 {
		return nil, ErrUnauthorized
	}

	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.repo.User().GetByID(ctx, actor.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.InstitutionName != nil {
		user.InstitutionName = *req.InstitutionName
	}
	if req.Class != nil {
		user.Class = *req.Class
	}

	profile := user.Profile.Data()
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.Bookmarks != nil {
		profile.Bookmarks = req.Bookmarks
	}
	user.Profile = datatypes.NewJSONType(profile)

	if err := s.repo.User().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	summary := user.Summary()
	return &summary, nil
}

// UpdateAvatar replaces the avatar and removes the previous object
func (s *userService) UpdateAvatar(ctx context.Context, actor auth.AuthContext, avatar *FileAttachment) (*models.UserSummary, error) {
	if !actor.Authenticated() || actor.UserID == 0 {
		return nil, ErrUnauthorized
	}
	if avatar == nil {
		return nil, validator.ValidationErrors{{Field: "avatar", Message: "is required"}}
	}

	user, err := s.repo.User().GetByID(ctx, actor.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	url, err := s.store.Upload(ctx, "avatars", avatar.Filename, avatar.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	profile := user.Profile.Data()
	previous := profile.Avatar
	profile.Avatar = url
	user.Profile = datatypes.NewJSONType(profile)

	if err := s.repo.User().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}

	if previous != "" && previous != url {
		storage.BestEffortDelete(ctx, s.store, utils.NewSlogLogger(s.logger), []string{previous})
	}

	summary := user.Summary()
	return &summary, nil
}

// EnsureAdminUser creates the administrator row backing the configured
// credential pair. Runs at startup; idempotent.
func (s *userService) EnsureAdminUser(ctx context.Context) error {
	if s.admin.Email == "" {
		return nil
	}

	existing, err := s.repo.User().GetByEmail(ctx, s.admin.Email)
	if err != nil {
		return fmt.Errorf("failed to look up admin user: %w", err)
	}
	if existing != nil {
		if existing.Role != models.RoleAdmin {
			existing.Role = models.RoleAdmin
			if err := s.repo.User().Update(ctx, existing); err != nil {
				return fmt.Errorf("failed to promote admin user: %w", err)
			}
		}
		return nil
	}

	admin := &models.User{
		Name:            "Administrator",
		Email:           s.admin.Email,
		InstitutionName: "system",
		Class:           "system",
		Role:            models.RoleAdmin,
	}
	if err := admin.SetPassword(s.admin.Password); err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	if err := s.repo.User().Create(ctx, admin); err != nil {
		// Concurrent boot of another replica can win the insert race.
		if repositories.IsDuplicateError(err) {
			return nil
		}
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	s.logger.Info("Administrator account created", "user_id", admin.ID)

	return nil
}

func (s *userService) summaryForCredential(cred *auth.Credential) models.UserSummary {
	if cred.User != nil {
		summary := cred.User.Summary()
		if cred.Kind == auth.CredentialConfiguredAdmin {
			summary.Role = models.RoleAdmin
		}
		return summary
	}
	return s.syntheticAdminSummary()
}

func (s *userService) syntheticAdminSummary() models.UserSummary {
	return models.UserSummary{
		Name:  "Administrator",
		Email: s.admin.Email,
		Role:  models.RoleAdmin,
	}
}

func (s *userService) publishEvent(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish event", "type", event.Type, "error", err)
	}
}
