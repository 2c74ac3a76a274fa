package repositories

import (
	"context"

	"github.com/shikhoron/qna-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type UserFilters struct {
	Query  string            `json:"query"` // name or email substring
	Roles  []models.UserRole `json:"roles"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

type QuestionFilters struct {
	Class   *string `json:"class"`
	Subject *string `json:"subject"` // matches any tag in the subject list
	UserID  *uint   `json:"user_id"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

type CatalogFilters struct {
	Class   *string `json:"class"`
	Section *string `json:"section"`
	Group   *string `json:"group"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

// ===== PER-ENTITY REPOSITORIES =====

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	// GetByEmail returns (nil, nil) when no user carries the email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error

	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	// GetByIDWithAnswers preloads the answer rows for cascade deletion.
	GetByIDWithAnswers(ctx context.Context, id uint) (*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id uint) error

	List(ctx context.Context, filters QuestionFilters) ([]*models.Question, int64, error)
}

type AnswerRepository interface {
	Create(ctx context.Context, answer *models.Answer) error
	GetByID(ctx context.Context, id uint) (*models.Answer, error)
	Update(ctx context.Context, answer *models.Answer) error
	Delete(ctx context.Context, id uint) error

	ListByQuestion(ctx context.Context, questionID uint) ([]*models.Answer, error)
	DeleteByQuestion(ctx context.Context, questionID uint) error
}

type ClassRepository interface {
	Create(ctx context.Context, class *models.Class) error
	GetByID(ctx context.Context, id uint) (*models.Class, error)
	GetByName(ctx context.Context, name string) (*models.Class, error)
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id uint) error

	List(ctx context.Context) ([]*models.Class, error)
}

type ResourceRepository interface {
	Create(ctx context.Context, resource *models.Resource) error
	GetByID(ctx context.Context, id uint) (*models.Resource, error)
	Update(ctx context.Context, resource *models.Resource) error
	Delete(ctx context.Context, id uint) error

	List(ctx context.Context, filters CatalogFilters) ([]*models.Resource, error)
}

type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, id uint) (*models.Book, error)
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id uint) error

	List(ctx context.Context, filters CatalogFilters) ([]*models.Book, error)
}
