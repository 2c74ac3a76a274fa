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

type AnswerPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewAnswerPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.AnswerRepository {
	return &AnswerPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// Answer writes ride on the parent question's cache entries.
func (a *AnswerPostgreSQL) invalidateParent(ctx context.Context, questionID uint) {
	cache.SafeDelete(ctx, a.cacheManager.Question, fmt.Sprintf("id:%d", questionID))
	cache.SafeInvalidatePattern(ctx, a.cacheManager.Question, "list:*")
}

// Create posts a new answer
func (a *AnswerPostgreSQL) Create(ctx context.Context, answer *models.Answer) error {
	if err := a.db.WithContext(ctx).Create(answer).Error; err != nil {
		return fmt.Errorf("failed to create answer: %w", err)
	}

	a.invalidateParent(ctx, answer.QuestionID)

	return nil
}

// GetByID retrieves an answer by ID
func (a *AnswerPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Answer, error) {
	var answer models.Answer
	if err := a.db.WithContext(ctx).Preload("Author").First(&answer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get answer: %w", err)
	}
	return &answer, nil
}

// Update saves an answer
func (a *AnswerPostgreSQL) Update(ctx context.Context, answer *models.Answer) error {
	if err := a.db.WithContext(ctx).Save(answer).Error; err != nil {
		return fmt.Errorf("failed to update answer: %w", err)
	}

	a.invalidateParent(ctx, answer.QuestionID)

	return nil
}

// Delete removes a single answer
func (a *AnswerPostgreSQL) Delete(ctx context.Context, id uint) error {
	var answer models.Answer
	if err := a.db.WithContext(ctx).Select("id", "question_id").First(&answer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return fmt.Errorf("failed to get answer before delete: %w", err)
	}

	if err := a.db.WithContext(ctx).Delete(&models.Answer{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete answer: %w", err)
	}

	a.invalidateParent(ctx, answer.QuestionID)

	return nil
}

// ListByQuestion retrieves all answers for a question, oldest first
func (a *AnswerPostgreSQL) ListByQuestion(ctx context.Context, questionID uint) ([]*models.Answer, error) {
	var answers []*models.Answer
	err := a.db.WithContext(ctx).
		Preload("Author").
		Where("question_id = ?", questionID).
		Order("created_at ASC").
		Find(&answers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	return answers, nil
}

// DeleteByQuestion removes every answer below a question
func (a *AnswerPostgreSQL) DeleteByQuestion(ctx context.Context, questionID uint) error {
	if err := a.db.WithContext(ctx).Where("question_id = ?", questionID).Delete(&models.Answer{}).Error; err != nil {
		return fmt.Errorf("failed to delete answers for question: %w", err)
	}

	a.invalidateParent(ctx, questionID)

	return nil
}
