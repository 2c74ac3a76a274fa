package handlers

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shikhoron/qna-service/internal/auth"
	"github.com/shikhoron/qna-service/internal/services"
	"github.com/shikhoron/qna-service/internal/utils"
	"github.com/shikhoron/qna-service/internal/validator"
)

type AuthHandler struct {
	BaseHandler
	userService services.UserService
	validator   *validator.Validator
}

func NewAuthHandler(userService services.UserService, validator *validator.Validator, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
		validator:   validator,
	}
}

// Register creates an account and opens a session. Accepts JSON, or
// multipart form data when an avatar file rides along.
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	var avatar *services.FileAttachment

	if isMultipart(c) {
		req = services.RegisterRequest{
			Name:            c.PostForm("name"),
			Email:           c.PostForm("email"),
			Password:        c.PostForm("password"),
			InstitutionName: c.PostForm("institution_name"),
			Class:           c.PostForm("class"),
			Role:            c.PostForm("role"),
		}
		file, header, err := c.Request.FormFile("avatar")
		if err == nil {
			defer file.Close()
			avatar = &services.FileAttachment{Filename: header.Filename, Reader: file}
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.userService.Register(c.Request.Context(), &req, avatar)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.setSessionCookie(c, resp.Token)
	c.JSON(http.StatusCreated, resp)
}

// Login validates credentials and opens a session
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.userService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.setSessionCookie(c, resp.Token)
	c.JSON(http.StatusOK, resp)
}

// Logout destroys the session and clears the cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	token := TokenFromContext(c)
	if token != "" {
		if err := h.userService.Logout(c.Request.Context(), token); err != nil {
			h.handleServiceError(c, err)
			return
		}
	}

	c.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, SuccessResponse{Message: "Logged out"})
}

// Me returns the actor's own account
func (h *AuthHandler) Me(c *gin.Context) {
	summary, err := h.userService.GetProfile(c.Request.Context(), ActorFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// UpdateProfile applies partial edits to the actor's account
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req services.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	summary, err := h.userService.UpdateProfile(c.Request.Context(), ActorFromContext(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// UpdateAvatar replaces the actor's avatar image
func (h *AuthHandler) UpdateAvatar(c *gin.Context) {
	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Avatar file is required",
			Details: err.Error(),
		})
		return
	}
	defer file.Close()

	avatar := &services.FileAttachment{Filename: header.Filename, Reader: file}
	summary, err := h.userService.UpdateAvatar(c.Request.Context(), ActorFromContext(c), avatar)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetCookie(SessionCookieName, token, int(auth.SessionTTL.Seconds()), "/", "", false, true)
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// attachmentsFromForm opens every file under the given form field
func attachmentsFromForm(form *multipart.Form, field string) ([]*services.FileAttachment, []multipart.File, error) {
	headers := form.File[field]
	files := make([]*services.FileAttachment, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			for _, o := range opened {
				o.Close()
			}
			return nil, nil, err
		}
		opened = append(opened, f)
		files = append(files, &services.FileAttachment{Filename: header.Filename, Reader: f})
	}
	return files, opened, nil
}

func closeAll(opened []multipart.File) {
	for _, f := range opened {
		f.Close()
	}
}
