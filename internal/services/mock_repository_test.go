package services

import (
	"context"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/shikhoron/qna-service/internal/models"
	"github.com/shikhoron/qna-service/internal/repositories"
)

// mockRepository is an in-memory Repository for service tests. All maps
// share one mutex; copies are not made, callers hold live pointers the way
// gorm callers hold loaded rows.
type mockRepository struct {
	mu sync.Mutex

	users     map[uint]*models.User
	questions map[uint]*models.Question
	answers   map[uint]*models.Answer
	classes   map[uint]*models.Class
	resources map[uint]*models.Resource
	books     map[uint]*models.Book

	nextID uint
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:     make(map[uint]*models.User),
		questions: make(map[uint]*models.Question),
		answers:   make(map[uint]*models.Answer),
		classes:   make(map[uint]*models.Class),
		resources: make(map[uint]*models.Resource),
		books:     make(map[uint]*models.Book),
	}
}

func (m *mockRepository) id() uint {
	m.nextID++
	return m.nextID
}

func (m *mockRepository) User() repositories.UserRepository         { return (*mockUserRepo)(m) }
func (m *mockRepository) Question() repositories.QuestionRepository { return (*mockQuestionRepo)(m) }
func (m *mockRepository) Answer() repositories.AnswerRepository     { return (*mockAnswerRepo)(m) }
func (m *mockRepository) Class() repositories.ClassRepository       { return (*mockClassRepo)(m) }
func (m *mockRepository) Resource() repositories.ResourceRepository { return (*mockResourceRepo)(m) }
func (m *mockRepository) Book() repositories.BookRepository         { return (*mockBookRepo)(m) }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}
func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

// ===== USERS =====

type mockUserRepo mockRepository

func (m *mockUserRepo) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = (*mockRepository)(m).id()
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.User
	for _, u := range m.users {
		if filters.Query != "" {
			q := strings.ToLower(filters.Query)
			if !strings.Contains(strings.ToLower(u.Name), q) && !strings.Contains(strings.ToLower(u.Email), q) {
				continue
			}
		}
		if len(filters.Roles) > 0 {
			matched := false
			for _, r := range filters.Roles {
				if u.Role == r {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	user, err := m.GetByEmail(ctx, email)
	return user != nil, err
}

// ===== QUESTIONS =====

type mockQuestionRepo mockRepository

func (m *mockQuestionRepo) Create(_ context.Context, question *models.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	question.ID = (*mockRepository)(m).id()
	m.questions[question.ID] = question
	return nil
}

func (m *mockQuestionRepo) GetByID(_ context.Context, id uint) (*models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	question, ok := m.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return question, nil
}

func (m *mockQuestionRepo) GetByIDWithAnswers(_ context.Context, id uint) (*models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	question, ok := m.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	question.Answers = question.Answers[:0]
	for _, a := range m.answers {
		if a.QuestionID == id {
			question.Answers = append(question.Answers, *a)
		}
	}
	return question, nil
}

func (m *mockQuestionRepo) Update(_ context.Context, question *models.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.questions[question.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.questions[question.ID] = question
	return nil
}

func (m *mockQuestionRepo) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.questions[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.questions, id)
	for aid, a := range m.answers {
		if a.QuestionID == id {
			delete(m.answers, aid)
		}
	}
	return nil
}

func (m *mockQuestionRepo) List(_ context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.Question
	for _, q := range m.questions {
		if filters.Class != nil && q.Class != *filters.Class {
			continue
		}
		if filters.UserID != nil && q.UserID != *filters.UserID {
			continue
		}
		if filters.Subject != nil {
			matched := false
			for _, tag := range q.Subject {
				if tag == *filters.Subject {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		out = append(out, q)
	}
	return out, int64(len(out)), nil
}

// ===== ANSWERS =====

type mockAnswerRepo mockRepository

func (m *mockAnswerRepo) Create(_ context.Context, answer *models.Answer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	answer.ID = (*mockRepository)(m).id()
	m.answers[answer.ID] = answer
	return nil
}

func (m *mockAnswerRepo) GetByID(_ context.Context, id uint) (*models.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	answer, ok := m.answers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return answer, nil
}

func (m *mockAnswerRepo) Update(_ context.Context, answer *models.Answer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.answers[answer.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.answers[answer.ID] = answer
	return nil
}

func (m *mockAnswerRepo) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.answers[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.answers, id)
	return nil
}

func (m *mockAnswerRepo) ListByQuestion(_ context.Context, questionID uint) ([]*models.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Answer
	for _, a := range m.answers {
		if a.QuestionID == questionID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAnswerRepo) DeleteByQuestion(_ context.Context, questionID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, a := range m.answers {
		if a.QuestionID == questionID {
			delete(m.answers, id)
		}
	}
	return nil
}

// ===== CLASSES =====

type mockClassRepo mockRepository

func (m *mockClassRepo) Create(_ context.Context, class *models.Class) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.classes {
		if c.Name == class.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	class.ID = (*mockRepository)(m).id()
	m.classes[class.ID] = class
	return nil
}

func (m *mockClassRepo) GetByID(_ context.Context, id uint) (*models.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	class, ok := m.classes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return class, nil
}

func (m *mockClassRepo) GetByName(_ context.Context, name string) (*models.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.classes {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockClassRepo) Update(_ context.Context, class *models.Class) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.classes[class.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	for id, c := range m.classes {
		if id != class.ID && c.Name == class.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	m.classes[class.ID] = class
	return nil
}

func (m *mockClassRepo) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.classes[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.classes, id)
	return nil
}

func (m *mockClassRepo) List(_ context.Context) ([]*models.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Class
	for _, c := range m.classes {
		out = append(out, c)
	}
	return out, nil
}

// ===== RESOURCES =====

type mockResourceRepo mockRepository

func (m *mockResourceRepo) Create(_ context.Context, resource *models.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	resource.ID = (*mockRepository)(m).id()
	m.resources[resource.ID] = resource
	return nil
}

func (m *mockResourceRepo) GetByID(_ context.Context, id uint) (*models.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	resource, ok := m.resources[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return resource, nil
}

func (m *mockResourceRepo) Update(_ context.Context, resource *models.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.resources[resource.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.resources[resource.ID] = resource
	return nil
}

func (m *mockResourceRepo) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.resources[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.resources, id)
	return nil
}

func (m *mockResourceRepo) List(_ context.Context, filters repositories.CatalogFilters) ([]*models.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Resource
	for _, r := range m.resources {
		if filters.Class != nil && r.Class != *filters.Class {
			continue
		}
		if filters.Section != nil && r.Section != *filters.Section {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// ===== BOOKS =====

type mockBookRepo mockRepository

func (m *mockBookRepo) Create(_ context.Context, book *models.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	book.ID = (*mockRepository)(m).id()
	m.books[book.ID] = book
	return nil
}

func (m *mockBookRepo) GetByID(_ context.Context, id uint) (*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	book, ok := m.books[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return book, nil
}

func (m *mockBookRepo) Update(_ context.Context, book *models.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[book.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.books[book.ID] = book
	return nil
}

func (m *mockBookRepo) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.books, id)
	return nil
}

func (m *mockBookRepo) List(_ context.Context, filters repositories.CatalogFilters) ([]*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Book
	for _, b := range m.books {
		if filters.Class != nil && b.Class != *filters.Class {
			continue
		}
		if filters.Section != nil && b.Section != *filters.Section {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}
