package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shikhoron/qna-service/internal/auth"
	"github.com/shikhoron/qna-service/internal/models"
	"github.com/shikhoron/qna-service/internal/services"
	"github.com/shikhoron/qna-service/internal/utils"
)

func newTestMiddleware(t *testing.T) (*SessionAuthMiddleware, *auth.SessionStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := auth.NewSessionStore(client)
	return NewSessionAuthMiddleware(store), store
}

func newTestRouter(mw *SessionAuthMiddleware) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw.Middleware())

	echoActor := func(c *gin.Context) {
		c.JSON(http.StatusOK, ActorFromContext(c))
	}
	r.GET("/whoami", echoActor)
	r.GET("/private", mw.RequireAuth(), echoActor)
	r.GET("/moderation", mw.RequireModerator(), echoActor)
	r.GET("/administration", mw.RequireAdmin(), echoActor)
	return r
}

func TestSessionAuthMiddleware(t *testing.T) {
	mw, store := newTestMiddleware(t)
	router := newTestRouter(mw)

	student := auth.AuthContext{UserID: 7, Role: models.RoleStudent}
	token, err := store.Create(context.Background(), student)
	require.NoError(t, err)

	t.Run("cookie token resolves actor", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":7`)
	})

	t.Run("bearer token resolves actor", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown token stays anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer not-a-session")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing token rejected on protected route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Authentication required")
	})

	t.Run("public route serves anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":0`)
	})
}

func TestRoleGates(t *testing.T) {
	mw, store := newTestMiddleware(t)
	router := newTestRouter(mw)

	get := func(t *testing.T, path string, actor auth.AuthContext) *httptest.ResponseRecorder {
		t.Helper()
		token, err := store.Create(context.Background(), actor)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	student := auth.AuthContext{UserID: 1, Role: models.RoleStudent}
	moderator := auth.AuthContext{UserID: 2, Role: models.RoleStudent, IsModerator: true}
	admin := auth.AuthContext{IsAdmin: true}

	t.Run("student blocked from moderation", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, get(t, "/moderation", student).Code)
	})

	t.Run("moderator passes moderation gate", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, get(t, "/moderation", moderator).Code)
	})

	t.Run("admin passes moderation gate", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, get(t, "/moderation", admin).Code)
	})

	t.Run("moderator blocked from administration", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, get(t, "/administration", moderator).Code)
	})

	t.Run("admin passes administration gate", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, get(t, "/administration", admin).Code)
	})
}

func TestHandleServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	base := NewBaseHandler(utils.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil))))

	serve := func(err error) *httptest.ResponseRecorder {
		r := gin.New()
		r.GET("/", func(c *gin.Context) { base.handleServiceError(c, err) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		return w
	}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"permission error", services.NewPermissionError(1, 2, "question", "delete", "not allowed"), http.StatusForbidden},
		{"question not found", services.ErrQuestionNotFound, http.StatusNotFound},
		{"email taken", services.ErrEmailTaken, http.StatusConflict},
		{"invalid credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"suspended account", auth.ErrAccountSuspended, http.StatusForbidden},
		{"unknown error", io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, serve(tt.err).Code)
		})
	}
}
