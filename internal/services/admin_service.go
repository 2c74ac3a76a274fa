package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/shikhoron/qna-service/internal/auth"
	"github.com/shikhoron/qna-service/internal/events"
	"github.com/shikhoron/qna-service/internal/models"
	"github.com/shikhoron/qna-service/internal/repositories"
	"github.com/shikhoron/qna-service/internal/validator"
)

type adminService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAdminService(
	repo repositories.Repository,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
) AdminService {
	return &adminService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// ===== USER MANAGEMENT =====

// ListUsers retrieves accounts matching the filters. Without an explicit
// role filter the listing covers students and moderators only; the
// administrator account never shows up in the console user table.
func (s *adminService) ListUsers(ctx context.Context, actor auth.AuthContext, filters repositories.UserFilters) (*UserListResponse, error) {
	if ok, reason := auth.CanAdminister(actor); !ok {
		return nil, NewPermissionError(actor.UserID, 0, "user", "list", reason)
	}

	if len(filters.Roles) == 0 {
		filters.Roles = []models.UserRole{models.RoleStudent, models.RoleModerator}
	}

	users, total, err := s.repo.User().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	summaries := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, u.Summary())
	}

	page, size := pageFromFilters(filters.Limit, filters.Offset)

	return &UserListResponse{
		Users: summaries,
		Total: total,
		Page:  page,
		Size:  size,
	}, nil
}

// DeleteUser removes an account permanently
func (s *adminService) DeleteUser(ctx context.Context, actor auth.AuthContext, id uint) error {
	if ok, reason := auth.CanAdminister(actor); !ok {
		return NewPermissionError(actor.UserID, id, "user", "delete", reason)
	}
	if id == actor.UserID {
		return NewBusinessRuleError("self_delete", "administrators cannot delete their own account")
	}

	if err := s.repo.User().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("User deleted", "user_id", id, "deleted_by", actor.UserID)

	return nil
}

// SetSuspended flips the suspension flag. A suspended account keeps its
// data but can no longer log in; live sessions expire on their own.
func (s *adminService) SetSuspended(ctx context.Context, actor auth.AuthContext, id uint, suspended bool) (*models.UserSummary, error) {
	if ok, reason := auth.CanAdminister(actor); !ok {
		return nil, NewPermissionError(actor.UserID, id, "user", "suspend", reason)
	}

	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if user.Role == models.RoleAdmin {
		return nil, NewBusinessRuleError("suspend_admin", "administrator accounts cannot be suspended")
	}

	user.Suspended = suspended
	if err := s.repo.User().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update suspension: %w", err)
	}

	if suspended {
		s.publishEvent(ctx, events.NewEvent(events.TypeUserSuspended, map[string]interface{}{
			"user_id":      id,
			"suspended_by": actor.UserID,
		}))
	}

	summary := user.Summary()
	return &summary, nil
}

// ===== MODERATOR MANAGEMENT =====

func (s *adminService) ListModerators(ctx context.Context, actor auth.AuthContext) ([]models.UserSummary, error) {
	if ok, reason := auth.CanAdminister(actor); !ok {
		return nil, NewPermissionError(actor.UserID, 0, "moderator", "list", reason)
	}

	moderators, _, err := s.repo.User().List(ctx, repositories.UserFilters{
		Roles: []models.UserRole{models.RoleModerator},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list moderators: %w", err)
	}

	summaries := make([]models.UserSummary, 0, len(moderators))
	for _, m := range moderators {
		summaries = append(summaries, m.Summary())
	}

	return summaries, nil
}

// AddModerator promotes an existing account to moderator, or creates a
// fresh moderator account when the email is unknown.
func (s *adminService) AddModerator(ctx context.Context, actor auth.AuthContext, req *ModeratorCreateRequest) (*models.UserSummary, error) {
	if ok, reason := auth.CanAdminister(actor); !ok {
		return nil, NewPermissionError(actor.UserID, 0, "moderator", "create", reason)
	}
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.repo.User().GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if user != nil {
		if user.Role == models.RoleAdmin {
			return nil, NewBusinessRuleError("demote_admin", "administrator accounts cannot change role")
		}
		user.Role = models.RoleModerator
		if req.Class != "" {
			user.Class = req.Class
		}
		if err := s.repo.User().Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to promote moderator: %w", err)
		}
	} else {
		if req.Password == "" {
			return nil, validator.ValidationErrors{{Field: "password", Message: "is required for a new account"}}
		}
		user = &models.User{
			Name:            req.Name,
			Email:           req.Email,
			InstitutionName: "system",
			Class:           req.Class,
			Role:            models.RoleModerator,
		}
		if user.Class == "" {
			user.Class = "system"
		}
		if err := user.SetPassword(req.Password); err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		if err := s.repo.User().Create(ctx, user); err != nil {
			if repositories.IsDuplicateError(err) {
				return nil, ErrEmailTaken
			}
			return nil, fmt.Errorf("failed to create moderator: %w", err)
		}
	}

	s.publishEvent(ctx, events.NewEvent(events.TypeModeratorPromoted, map[string]interface{}{
		"user_id":     user.ID,
		"promoted_by": actor.UserID,
	}))

	s.logger.Info("Moderator added", "user_id", user.ID)

	summary := user.Summary()
	return &summary, nil
}

// UpdateModerator applies partial edits to a moderator account
func (s *adminService) UpdateModerator(ctx context.Context, actor auth.AuthContext, id uint, req *ModeratorUpdateRequest) (*models.UserSummary, error) {
	if ok, reason := auth.CanAdminister(actor); !ok {
		return nil, NewPermissionError(actor.UserID, id, "moderator", "update", reason)
	}
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.moderatorByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Class != nil {
		user.Class = *req.Class
	}
	if req.Password != nil {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
	}

	if err := s.repo.User().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update moderator: %w", err)
	}

	summary := user.Summary()
	return &summary, nil
}

// RemoveModerator demotes a moderator back to student; the account stays.
func (s *adminService) RemoveModerator(ctx context.Context, actor auth.AuthContext, id uint) (*models.UserSummary, error) {
	if ok, reason := auth.CanAdminister(actor); !ok {
		return nil, NewPermissionError(actor.UserID, id, "moderator", "remove", reason)
	}

	user, err := s.moderatorByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Role = models.RoleStudent
	if err := s.repo.User().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to demote moderator: %w", err)
	}

	s.logger.Info("Moderator removed", "user_id", id, "removed_by", actor.UserID)

	summary := user.Summary()
	return &summary, nil
}

func (s *adminService) moderatorByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.Role != models.RoleModerator {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ===== EXPORT =====

// ExportUsers builds an xlsx workbook with one row per account
func (s *adminService) ExportUsers(ctx context.Context, actor auth.AuthContext) ([]byte, error) {
	if ok, reason := auth.CanAdminister(actor); !ok {
		return nil, NewPermissionError(actor.UserID, 0, "user", "export", reason)
	}

	users, _, err := s.repo.User().List(ctx, repositories.UserFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Users"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Name", "Email", "Role", "Class", "Institution", "Suspended", "Registered"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, u := range users {
		values := []interface{}{
			u.ID,
			u.Name,
			u.Email,
			string(u.Role),
			u.Class,
			u.InstitutionName,
			u.Suspended,
			u.CreatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("User export generated", "rows", len(users), "exported_by", actor.UserID)

	return buf.Bytes(), nil
}

func (s *adminService) publishEvent(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish event", "type", event.Type, "error", err)
	}
}
