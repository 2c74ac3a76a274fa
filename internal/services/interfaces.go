package services

import (
	"context"
	"io"

	"github.com/shikhoron/qna-service/internal/auth"
	"github.com/shikhoron/qna-service/internal/models"
	"github.com/shikhoron/qna-service/internal/repositories"
	"github.com/shikhoron/qna-service/internal/storage"
	"github.com/shikhoron/qna-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type RegisterRequest = validator.RegisterRequest
type LoginRequest = validator.LoginRequest
type ProfileUpdateRequest = validator.ProfileUpdateRequest
type QuestionCreateRequest = validator.QuestionCreateRequest
type AnswerCreateRequest = validator.AnswerCreateRequest
type VoteRequest = validator.VoteRequest
type ReportRequest = validator.ReportRequest
type ClassCreateRequest = validator.ClassCreateRequest
type SectionRequest = validator.SectionRequest
type ResourceRequest = validator.ResourceRequest
type BookRequest = validator.BookRequest
type ModeratorCreateRequest = validator.ModeratorCreateRequest
type ModeratorUpdateRequest = validator.ModeratorUpdateRequest

// FileAttachment is one uploaded file decoupled from the HTTP layer
type FileAttachment struct {
	Filename string
	Reader   io.Reader
}

// AuthResponse is returned on register and login
type AuthResponse struct {
	Token string             `json:"token"`
	User  models.UserSummary `json:"user"`
}

type QuestionResponse struct {
	*models.Question
	Upvotes     int `json:"upvotes"`
	Downvotes   int `json:"downvotes"`
	AnswerCount int `json:"answer_count"`
}

type QuestionListResponse struct {
	Questions []*QuestionResponse `json:"questions"`
	Total     int64               `json:"total"`
	Page      int                 `json:"page"`
	Size      int                 `json:"size"`
}

type AnswerResponse struct {
	*models.Answer
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
}

// QuestionDetailResponse bundles a question with its answers
type QuestionDetailResponse struct {
	*QuestionResponse
	Answers []*AnswerResponse `json:"answers"`
}

type UserListResponse struct {
	Users []models.UserSummary `json:"users"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Size  int                  `json:"size"`
}

// ===== SERVICE INTERFACES =====

type UserService interface {
	Register(ctx context.Context, req *RegisterRequest, avatar *FileAttachment) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	Logout(ctx context.Context, token string) error

	GetProfile(ctx context.Context, actor auth.AuthContext) (*models.UserSummary, error)
	UpdateProfile(ctx context.Context, actor auth.AuthContext, req *ProfileUpdateRequest) (*models.UserSummary, error)
	UpdateAvatar(ctx context.Context, actor auth.AuthContext, avatar *FileAttachment) (*models.UserSummary, error)

	// EnsureAdminUser creates the administrator account backing the
	// configured credential pair when it does not exist yet.
	EnsureAdminUser(ctx context.Context) error
}

type QuestionService interface {
	Create(ctx context.Context, actor auth.AuthContext, req *QuestionCreateRequest, files []*FileAttachment) (*QuestionResponse, error)
	List(ctx context.Context, filters repositories.QuestionFilters) (*QuestionListResponse, error)
	GetByID(ctx context.Context, id uint) (*QuestionDetailResponse, error)
	Delete(ctx context.Context, actor auth.AuthContext, id uint) ([]storage.CleanupResult, error)

	PostAnswer(ctx context.Context, actor auth.AuthContext, questionID uint, req *AnswerCreateRequest, files []*FileAttachment) (*AnswerResponse, error)
	GetAnswers(ctx context.Context, questionID uint) ([]*AnswerResponse, error)
	DeleteAnswer(ctx context.Context, actor auth.AuthContext, answerID uint) ([]storage.CleanupResult, error)
	VerifyAnswer(ctx context.Context, actor auth.AuthContext, answerID uint) (*AnswerResponse, error)

	VoteQuestion(ctx context.Context, actor auth.AuthContext, id uint, req *VoteRequest) (*QuestionResponse, error)
	VoteAnswer(ctx context.Context, actor auth.AuthContext, answerID uint, req *VoteRequest) (*AnswerResponse, error)
	ReportQuestion(ctx context.Context, actor auth.AuthContext, id uint, req *ReportRequest) error
	ReportAnswer(ctx context.Context, actor auth.AuthContext, answerID uint, req *ReportRequest) error
}

type CatalogService interface {
	ListClasses(ctx context.Context) ([]*models.Class, error)
	CreateClass(ctx context.Context, actor auth.AuthContext, req *ClassCreateRequest) (*models.Class, error)
	UpdateClass(ctx context.Context, actor auth.AuthContext, id uint, req *ClassCreateRequest) (*models.Class, error)
	AddSection(ctx context.Context, actor auth.AuthContext, classID uint, req *SectionRequest) (*models.Class, error)
	DeleteClass(ctx context.Context, actor auth.AuthContext, id uint) error

	ListResources(ctx context.Context, filters repositories.CatalogFilters) ([]*models.Resource, error)
	CreateResource(ctx context.Context, actor auth.AuthContext, req *ResourceRequest, file *FileAttachment) (*models.Resource, error)
	UpdateResource(ctx context.Context, actor auth.AuthContext, id uint, req *ResourceRequest, file *FileAttachment) (*models.Resource, error)
	DeleteResource(ctx context.Context, actor auth.AuthContext, id uint) ([]storage.CleanupResult, error)

	ListBooks(ctx context.Context, filters repositories.CatalogFilters) ([]*models.Book, error)
	CreateBook(ctx context.Context, actor auth.AuthContext, req *BookRequest, image *FileAttachment) (*models.Book, error)
	UpdateBook(ctx context.Context, actor auth.AuthContext, id uint, req *BookRequest, image *FileAttachment) (*models.Book, error)
	DeleteBook(ctx context.Context, actor auth.AuthContext, id uint) ([]storage.CleanupResult, error)
}

type AdminService interface {
	ListUsers(ctx context.Context, actor auth.AuthContext, filters repositories.UserFilters) (*UserListResponse, error)
	DeleteUser(ctx context.Context, actor auth.AuthContext, id uint) error
	SetSuspended(ctx context.Context, actor auth.AuthContext, id uint, suspended bool) (*models.UserSummary, error)

	ListModerators(ctx context.Context, actor auth.AuthContext) ([]models.UserSummary, error)
	AddModerator(ctx context.Context, actor auth.AuthContext, req *ModeratorCreateRequest) (*models.UserSummary, error)
	UpdateModerator(ctx context.Context, actor auth.AuthContext, id uint, req *ModeratorUpdateRequest) (*models.UserSummary, error)
	RemoveModerator(ctx context.Context, actor auth.AuthContext, id uint) (*models.UserSummary, error)

	// ExportUsers builds an xlsx workbook of all accounts.
	ExportUsers(ctx context.Context, actor auth.AuthContext) ([]byte, error)
}

// ServiceManager provides access to all services
type ServiceManager interface {
	User() UserService
	Question() QuestionService
	Catalog() CatalogService
	Admin() AdminService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
