package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shikhoron/qna-service/internal/repositories"
	"github.com/shikhoron/qna-service/internal/services"
	"github.com/shikhoron/qna-service/internal/utils"
	"github.com/shikhoron/qna-service/internal/validator"
)

type QuestionHandler struct {
	BaseHandler
	questionService services.QuestionService
	validator       *validator.Validator
}

func NewQuestionHandler(questionService services.QuestionService, validator *validator.Validator, logger utils.Logger) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:     NewBaseHandler(logger),
		questionService: questionService,
		validator:       validator,
	}
}

// ListQuestions retrieves questions with optional class/subject/user filters
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	filters := repositories.QuestionFilters{}

	if class := c.Query("class"); class != "" {
		filters.Class = &class
	}
	if subject := c.Query("subject"); subject != "" {
		filters.Subject = &subject
	}
	if rawUser := c.Query("user"); rawUser != "" {
		userID, err := strconv.ParseUint(rawUser, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid user parameter", Details: rawUser})
			return
		}
		id := uint(userID)
		filters.UserID = &id
	}
	filters.Limit, filters.Offset = paginationFromQuery(c)

	resp, err := h.questionService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetQuestion retrieves a question with its answers
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	resp, err := h.questionService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CreateQuestion posts a new question. Accepts JSON, or multipart form
// data when attachments ride along.
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var req services.QuestionCreateRequest
	var files []*services.FileAttachment

	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid multipart form", Details: err.Error()})
			return
		}
		req = services.QuestionCreateRequest{
			Title:       c.PostForm("title"),
			Description: c.PostForm("description"),
			Class:       c.PostForm("class"),
			Subject:     subjectTags(c),
		}
		attachments, opened, err := attachmentsFromForm(form, "files")
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Failed to read attachments", Details: err.Error()})
			return
		}
		defer closeAll(opened)
		files = attachments
	} else if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.questionService.Create(c.Request.Context(), ActorFromContext(c), &req, files)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// DeleteQuestion removes a question, its answers and stored files
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting question", "question_id", id)

	cleanup, err := h.questionService.Delete(c.Request.Context(), ActorFromContext(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Question deleted",
		Data:    gin.H{"cleanup": cleanup},
	})
}

// ===== ANSWERS =====

// PostAnswer adds an answer below a question
func (h *QuestionHandler) PostAnswer(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.AnswerCreateRequest
	var files []*services.FileAttachment

	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid multipart form", Details: err.Error()})
			return
		}
		req = services.AnswerCreateRequest{Content: c.PostForm("content")}
		attachments, opened, err := attachmentsFromForm(form, "files")
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Failed to read attachments", Details: err.Error()})
			return
		}
		defer closeAll(opened)
		files = attachments
	} else if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.questionService.PostAnswer(c.Request.Context(), ActorFromContext(c), id, &req, files)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetAnswers lists a question's answers
func (h *QuestionHandler) GetAnswers(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	answers, err := h.questionService.GetAnswers(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, answers)
}

// DeleteAnswer removes one answer and its stored files
func (h *QuestionHandler) DeleteAnswer(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	cleanup, err := h.questionService.DeleteAnswer(c.Request.Context(), ActorFromContext(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Answer deleted",
		Data:    gin.H{"cleanup": cleanup},
	})
}

// VerifyAnswer marks an answer as moderator-verified
func (h *QuestionHandler) VerifyAnswer(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	resp, err := h.questionService.VerifyAnswer(c.Request.Context(), ActorFromContext(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ===== VOTES AND REPORTS =====

// VoteQuestion records the actor's vote on a question
func (h *QuestionHandler) VoteQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	resp, err := h.questionService.VoteQuestion(c.Request.Context(), ActorFromContext(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// VoteAnswer records the actor's vote on an answer
func (h *QuestionHandler) VoteAnswer(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	resp, err := h.questionService.VoteAnswer(c.Request.Context(), ActorFromContext(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ReportQuestion appends a report on a question
func (h *QuestionHandler) ReportQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	if err := h.questionService.ReportQuestion(c.Request.Context(), ActorFromContext(c), id, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Report recorded"})
}

// ReportAnswer appends a report on an answer
func (h *QuestionHandler) ReportAnswer(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	if err := h.questionService.ReportAnswer(c.Request.Context(), ActorFromContext(c), id, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Report recorded"})
}

// ===== HELPERS =====

// subjectTags reads subject tags from repeated form fields or a single
// comma-separated field
func subjectTags(c *gin.Context) []string {
	values := c.PostFormArray("subject")
	if len(values) == 1 && strings.Contains(values[0], ",") {
		values = strings.Split(values[0], ",")
	}
	tags := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}

// paginationFromQuery converts page/size query params to limit/offset
func paginationFromQuery(c *gin.Context) (limit, offset int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return size, (page - 1) * size
}
