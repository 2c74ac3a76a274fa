package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"

	"github.com/shikhoron/qna-service/internal/auth"
	"github.com/shikhoron/qna-service/internal/events"
	"github.com/shikhoron/qna-service/internal/models"
	"github.com/shikhoron/qna-service/internal/repositories"
	"github.com/shikhoron/qna-service/internal/storage"
	"github.com/shikhoron/qna-service/internal/utils"
	"github.com/shikhoron/qna-service/internal/validator"
)

type questionService struct {
	repo      repositories.Repository
	store     storage.ObjectStore
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuestionService(
	repo repositories.Repository,
	store storage.ObjectStore,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
) QuestionService {
	return &questionService{
		repo:      repo,
		store:     store,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// ===== QUESTIONS =====

// Create posts a new question with up to MaxFilesPerPost attachments.
// Files are uploaded before the insert; if the insert then fails the
// uploaded objects are orphaned on the external store.
func (s *questionService) Create(ctx context.Context, actor auth.AuthContext, req *QuestionCreateRequest, files []*FileAttachment) (*QuestionResponse, error) {
	s.logger.Info("Creating question", "user_id", actor.UserID, "class", req.Class)

	if errs := s.validator.GetBusinessValidator().ValidateQuestionCreate(req, len(files)); len(errs) > 0 {
		return nil, errs
	}

	if ok, reason := auth.CanPostQuestion(actor); !ok {
		return nil, NewPermissionError(actor.UserID, 0, "question", "create", reason)
	}

	urls, err := s.uploadFiles(ctx, "questions", files)
	if err != nil {
		return nil, err
	}

	question := &models.Question{
		Title:       req.Title,
		Description: req.Description,
		Class:       req.Class,
		Subject:     datatypes.JSONSlice[string](req.Subject),
		Files:       datatypes.JSONSlice[string](urls),
		UserID:      actor.UserID,
	}

	if err := s.repo.Question().Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.publishEvent(ctx, events.NewEvent(events.TypeQuestionCreated, map[string]interface{}{
		"question_id": question.ID,
		"user_id":     actor.UserID,
		"class":       question.Class,
	}))

	s.logger.Info("Question created", "question_id", question.ID)

	return s.buildQuestionResponse(question), nil
}

// List retrieves questions matching the filters
func (s *questionService) List(ctx context.Context, filters repositories.QuestionFilters) (*QuestionListResponse, error) {
	questions, total, err := s.repo.Question().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	responses := make([]*QuestionResponse, 0, len(questions))
	for _, q := range questions {
		responses = append(responses, s.buildQuestionResponse(q))
	}

	page, size := pageFromFilters(filters.Limit, filters.Offset)

	return &QuestionListResponse{
		Questions: responses,
		Total:     total,
		Page:      page,
		Size:      size,
	}, nil
}

// GetByID retrieves a question together with its answers
func (s *questionService) GetByID(ctx context.Context, id uint) (*QuestionDetailResponse, error) {
	question, err := s.repo.Question().GetByIDWithAnswers(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}

	answers := make([]*AnswerResponse, 0, len(question.Answers))
	for i := range question.Answers {
		answers = append(answers, s.buildAnswerResponse(&question.Answers[i]))
	}

	return &QuestionDetailResponse{
		QuestionResponse: s.buildQuestionResponse(question),
		Answers:          answers,
	}, nil
}

// Delete removes a question, its answers and their stored files. File
// cleanup is best-effort: the database delete commits first and every
// failed object delete is reported back instead of failing the call.
func (s *questionService) Delete(ctx context.Context, actor auth.AuthContext, id uint) ([]storage.CleanupResult, error) {
	if ok, reason := auth.CanDeleteContent(actor); !ok {
		return nil, NewPermissionError(actor.UserID, id, "question", "delete", reason)
	}

	question, err := s.repo.Question().GetByIDWithAnswers(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}

	var urls []string
	urls = append(urls, question.Files...)
	for _, answer := range question.Answers {
		urls = append(urls, answer.Files...)
	}

	if err := s.repo.Question().Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to delete question: %w", err)
	}

	cleanup := storage.BestEffortDelete(ctx, s.store, utils.NewSlogLogger(s.logger), urls)

	s.publishEvent(ctx, events.NewEvent(events.TypeQuestionDeleted, map[string]interface{}{
		"question_id": id,
		"deleted_by":  actor.UserID,
		"answers":     len(question.Answers),
	}))

	s.logger.Info("Question deleted", "question_id", id, "answers", len(question.Answers))

	return cleanup, nil
}

// ===== ANSWERS =====

// PostAnswer adds an answer below a question. Students may only answer
// questions of their own class; moderators and admins answer anywhere.
func (s *questionService) PostAnswer(ctx context.Context, actor auth.AuthContext, questionID uint, req *AnswerCreateRequest, files []*FileAttachment) (*AnswerResponse, error) {
	if errs := s.validator.GetBusinessValidator().ValidateAnswerCreate(req, len(files)); len(errs) > 0 {
		return nil, errs
	}

	question, err := s.repo.Question().GetByID(ctx, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}

	actorClass, err := s.classForActor(ctx, actor)
	if err != nil {
		return nil, err
	}

	if ok, reason := auth.CanAnswer(actor, actorClass, question.Class); !ok {
		return nil, NewPermissionError(actor.UserID, questionID, "question", "answer", reason)
	}
	if actor.UserID == 0 {
		// Admin session with no backing row cannot own content
		return nil, ErrUnauthorized
	}

	urls, err := s.uploadFiles(ctx, "answers", files)
	if err != nil {
		return nil, err
	}

	answer := &models.Answer{
		QuestionID: questionID,
		UserID:     actor.UserID,
		Content:    req.Content,
		Files:      datatypes.JSONSlice[string](urls),
	}

	if err := s.repo.Answer().Create(ctx, answer); err != nil {
		return nil, fmt.Errorf("failed to create answer: %w", err)
	}

	s.publishEvent(ctx, events.NewEvent(events.TypeAnswerPosted, map[string]interface{}{
		"answer_id":   answer.ID,
		"question_id": questionID,
		"user_id":     actor.UserID,
	}))

	return s.buildAnswerResponse(answer), nil
}

// GetAnswers lists a question's answers oldest first
func (s *questionService) GetAnswers(ctx context.Context, questionID uint) ([]*AnswerResponse, error) {
	if _, err := s.repo.Question().GetByID(ctx, questionID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}

	answers, err := s.repo.Answer().ListByQuestion(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}

	responses := make([]*AnswerResponse, 0, len(answers))
	for _, a := range answers {
		responses = append(responses, s.buildAnswerResponse(a))
	}

	return responses, nil
}

// DeleteAnswer removes one answer and its stored files
func (s *questionService) DeleteAnswer(ctx context.Context, actor auth.AuthContext, answerID uint) ([]storage.CleanupResult, error) {
	if ok, reason := auth.CanDeleteContent(actor); !ok {
		return nil, NewPermissionError(actor.UserID, answerID, "answer", "delete", reason)
	}

	answer, err := s.repo.Answer().GetByID(ctx, answerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAnswerNotFound
		}
		return nil, err
	}

	if err := s.repo.Answer().Delete(ctx, answerID); err != nil {
		return nil, fmt.Errorf("failed to delete answer: %w", err)
	}

	cleanup := storage.BestEffortDelete(ctx, s.store, utils.NewSlogLogger(s.logger), []string(answer.Files))

	return cleanup, nil
}

// VerifyAnswer marks an answer as verified by a moderator
func (s *questionService) VerifyAnswer(ctx context.Context, actor auth.AuthContext, answerID uint) (*AnswerResponse, error) {
	if ok, reason := auth.CanModerate(actor); !ok {
		return nil, NewPermissionError(actor.UserID, answerID, "answer", "verify", reason)
	}

	answer, err := s.repo.Answer().GetByID(ctx, answerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAnswerNotFound
		}
		return nil, err
	}

	answer.IsVerified = true
	if err := s.repo.Answer().Update(ctx, answer); err != nil {
		return nil, fmt.Errorf("failed to verify answer: %w", err)
	}

	return s.buildAnswerResponse(answer), nil
}

// ===== VOTES AND REPORTS =====

// VoteQuestion records the actor's vote, overwriting an earlier one.
// The read-modify-write is not serialized; two concurrent casts by the
// same user can append duplicate entries.
func (s *questionService) VoteQuestion(ctx context.Context, actor auth.AuthContext, id uint, req *VoteRequest) (*QuestionResponse, error) {
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}
	if ok, reason := auth.CanVote(actor); !ok {
		return nil, NewPermissionError(actor.UserID, id, "question", "vote", reason)
	}

	question, err := s.repo.Question().GetByIDWithAnswers(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}

	question.Votes = models.UpsertVote(question.Votes, actor.UserID, req.Value)
	if err := s.repo.Question().Update(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to save vote: %w", err)
	}

	return s.buildQuestionResponse(question), nil
}

// VoteAnswer records the actor's vote on an answer
func (s *questionService) VoteAnswer(ctx context.Context, actor auth.AuthContext, answerID uint, req *VoteRequest) (*AnswerResponse, error) {
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}
	if ok, reason := auth.CanVote(actor); !ok {
		return nil, NewPermissionError(actor.UserID, answerID, "answer", "vote", reason)
	}

	answer, err := s.repo.Answer().GetByID(ctx, answerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAnswerNotFound
		}
		return nil, err
	}

	answer.Votes = models.UpsertVote(answer.Votes, actor.UserID, req.Value)
	if err := s.repo.Answer().Update(ctx, answer); err != nil {
		return nil, fmt.Errorf("failed to save vote: %w", err)
	}

	return s.buildAnswerResponse(answer), nil
}

// ReportQuestion appends a report entry; reports are never deduplicated
func (s *questionService) ReportQuestion(ctx context.Context, actor auth.AuthContext, id uint, req *ReportRequest) error {
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return errs
	}
	if !actor.Authenticated() {
		return ErrUnauthorized
	}

	question, err := s.repo.Question().GetByIDWithAnswers(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return err
	}

	question.Reports = append(question.Reports, models.Report{UserID: actor.UserID, Reason: req.Reason})
	if err := s.repo.Question().Update(ctx, question); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	return nil
}

// ReportAnswer appends a report entry on an answer
func (s *questionService) ReportAnswer(ctx context.Context, actor auth.AuthContext, answerID uint, req *ReportRequest) error {
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return errs
	}
	if !actor.Authenticated() {
		return ErrUnauthorized
	}

	answer, err := s.repo.Answer().GetByID(ctx, answerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAnswerNotFound
		}
		return err
	}

	answer.Reports = append(answer.Reports, models.Report{UserID: actor.UserID, Reason: req.Reason})
	if err := s.repo.Answer().Update(ctx, answer); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	return nil
}

// ===== HELPERS =====

func (s *questionService) uploadFiles(ctx context.Context, folder string, files []*FileAttachment) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, f := range files {
		url, err := s.store.Upload(ctx, folder, f.Filename, f.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to upload %s: %w", f.Filename, err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *questionService) classForActor(ctx context.Context, actor auth.AuthContext) (string, error) {
	if actor.IsAdmin || actor.IsModerator || actor.UserID == 0 {
		return "", nil
	}
	user, err := s.repo.User().GetByID(ctx, actor.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	return user.Class, nil
}

func (s *questionService) buildQuestionResponse(question *models.Question) *QuestionResponse {
	up, down := models.TallyVotes(question.Votes)
	return &QuestionResponse{
		Question:    question,
		Upvotes:     up,
		Downvotes:   down,
		AnswerCount: len(question.Answers),
	}
}

func (s *questionService) buildAnswerResponse(answer *models.Answer) *AnswerResponse {
	up, down := models.TallyVotes(answer.Votes)
	return &AnswerResponse{
		Answer:    answer,
		Upvotes:   up,
		Downvotes: down,
	}
}

func (s *questionService) publishEvent(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish event", "type", event.Type, "error", err)
	}
}

// pageFromFilters converts limit/offset back to 1-based page numbers
func pageFromFilters(limit, offset int) (page, size int) {
	size = limit
	if size <= 0 {
		size = 20
	}
	page = offset/size + 1
	return page, size
}
