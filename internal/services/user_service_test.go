package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/shikhoron/qna-service/internal/auth"
	"github.com/shikhoron/qna-service/internal/config"
	"github.com/shikhoron/qna-service/internal/events"
	"github.com/shikhoron/qna-service/internal/models"
	"github.com/shikhoron/qna-service/internal/repositories"
	"github.com/shikhoron/qna-service/internal/storage"
	"github.com/shikhoron/qna-service/internal/validator"
)

// testEnv wires every service against in-memory backends.
type testEnv struct {
	repo      *mockRepository
	sessions  *auth.SessionStore
	store     *storage.MockStore
	publisher *events.MockEventPublisher

	user     UserService
	question QuestionService
	catalog  CatalogService
	admin    AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := newMockRepository()
	sessions := auth.NewSessionStore(client)
	store := storage.NewMockStore()
	publisher := events.NewMockEventPublisher(logger)
	v := validator.NewValidator()
	adminCfg := config.AdminConfig{Email: "admin@qna.local", Password: "root-password"}
	checker := auth.NewCredentialChecker(adminCfg, repo.User())

	return &testEnv{
		repo:      repo,
		sessions:  sessions,
		store:     store,
		publisher: publisher,
		user:      NewUserService(repo, sessions, checker, store, publisher, logger, v, adminCfg),
		question:  NewQuestionService(repo, store, publisher, logger, v),
		catalog:   NewCatalogService(repo, store, logger, v),
		admin:     NewAdminService(repo, publisher, logger, v),
	}
}

func (e *testEnv) registerStudent(t *testing.T, email, class string) *AuthResponse {
	t.Helper()
	resp, err := e.user.Register(context.Background(), &RegisterRequest{
		Name:            "Test Student",
		Email:           email,
		Password:        "hunter22",
		InstitutionName: "Springfield High",
		Class:           class,
	}, nil)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return resp
}

func (e *testEnv) studentActor(t *testing.T, email, class string) auth.AuthContext {
	t.Helper()
	resp := e.registerStudent(t, email, class)
	return auth.AuthContext{UserID: resp.User.ID, Role: models.RoleStudent}
}

func (e *testEnv) moderatorActor(t *testing.T) auth.AuthContext {
	t.Helper()
	mod := &models.User{
		Name:            "Mod",
		Email:           "mod@qna.local",
		InstitutionName: "system",
		Class:           "system",
		Role:            models.RoleModerator,
	}
	if err := mod.SetPassword("hunter22"); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	if err := e.repo.User().Create(context.Background(), mod); err != nil {
		t.Fatalf("failed to seed moderator: %v", err)
	}
	return auth.AuthContext{UserID: mod.ID, Role: models.RoleModerator, IsModerator: true}
}

func adminActor() auth.AuthContext {
	return auth.AuthContext{IsAdmin: true, Role: models.RoleAdmin}
}

func TestUserService_Register(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("creates account and session", func(t *testing.T) {
		resp := env.registerStudent(t, "alex@school.edu", "10A")

		if resp.Token == "" {
			t.Error("expected a session token")
		}
		if resp.User.Role != models.RoleStudent {
			t.Errorf("role = %s, want student", resp.User.Role)
		}

		actor, err := env.sessions.Get(ctx, resp.Token)
		if err != nil {
			t.Fatalf("session missing: %v", err)
		}
		if actor.UserID != resp.User.ID {
			t.Errorf("session actor = %+v", actor)
		}

		found := false
		for _, ev := range env.publisher.GetPublishedEvents() {
			if ev.Type == events.TypeUserRegistered {
				found = true
			}
		}
		if !found {
			t.Error("registration event not published")
		}
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		_, err := env.user.Register(ctx, &RegisterRequest{
			Name:            "Second Alex",
			Email:           "alex@school.edu",
			Password:        "hunter22",
			InstitutionName: "Springfield High",
			Class:           "10A",
		}, nil)
		if !errors.Is(err, ErrEmailTaken) {
			t.Errorf("expected ErrEmailTaken, got %v", err)
		}
	})

	t.Run("teacher role honored", func(t *testing.T) {
		resp, err := env.user.Register(ctx, &RegisterRequest{
			Name:            "Ms. Pat",
			Email:           "pat@school.edu",
			Password:        "hunter22",
			InstitutionName: "Springfield High",
			Class:           "10A",
			Role:            "teacher",
		}, nil)
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if resp.User.Role != models.RoleTeacher {
			t.Errorf("role = %s, want teacher", resp.User.Role)
		}
	})

	t.Run("privileged role rejected", func(t *testing.T) {
		_, err := env.user.Register(ctx, &RegisterRequest{
			Name:            "Sneaky",
			Email:           "sneaky@school.edu",
			Password:        "hunter22",
			InstitutionName: "Springfield High",
			Class:           "10A",
			Role:            "admin",
		}, nil)
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			t.Errorf("expected validation errors, got %v", err)
		}
	})

	t.Run("avatar uploaded before insert", func(t *testing.T) {
		resp, err := env.user.Register(ctx, &RegisterRequest{
			Name:            "Avatar User",
			Email:           "ava@school.edu",
			Password:        "hunter22",
			InstitutionName: "Springfield High",
			Class:           "10A",
		}, &FileAttachment{Filename: "me.png", Reader: strings.NewReader("png")})
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if resp.User.Profile.Avatar == "" {
			t.Error("avatar URL not stored on profile")
		}
		if !env.store.Has(resp.User.Profile.Avatar) {
			t.Error("avatar object missing from store")
		}
	})
}

func TestUserService_Login(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.registerStudent(t, "alex@school.edu", "10A")

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := env.user.Login(ctx, &LoginRequest{Email: "alex@school.edu", Password: "hunter22"})
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if resp.Token == "" {
			t.Error("expected a session token")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := env.user.Login(ctx, &LoginRequest{Email: "alex@school.edu", Password: "wrong"})
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("configured admin without stored row", func(t *testing.T) {
		resp, err := env.user.Login(ctx, &LoginRequest{Email: "admin@qna.local", Password: "root-password"})
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if resp.User.Role != models.RoleAdmin {
			t.Errorf("role = %s, want admin", resp.User.Role)
		}

		actor, err := env.sessions.Get(ctx, resp.Token)
		if err != nil {
			t.Fatalf("session missing: %v", err)
		}
		if !actor.IsAdmin {
			t.Errorf("admin flag not set on session actor: %+v", actor)
		}
	})

	t.Run("suspended account", func(t *testing.T) {
		resp := env.registerStudent(t, "banned@school.edu", "10A")
		user, err := env.repo.User().GetByID(ctx, resp.User.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		user.Suspended = true
		if err := env.repo.User().Update(ctx, user); err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		_, err = env.user.Login(ctx, &LoginRequest{Email: "banned@school.edu", Password: "hunter22"})
		if !errors.Is(err, auth.ErrAccountSuspended) {
			t.Errorf("expected ErrAccountSuspended, got %v", err)
		}
	})
}

func TestUserService_Logout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp := env.registerStudent(t, "alex@school.edu", "10A")
	if err := env.user.Logout(ctx, resp.Token); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := env.sessions.Get(ctx, resp.Token); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Errorf("session should be destroyed, got %v", err)
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	actor := env.studentActor(t, "alex@school.edu", "10A")

	newName := "Alexandra"
	newBio := "I like biology."
	summary, err := env.user.UpdateProfile(ctx, actor, &ProfileUpdateRequest{
		Name:      &newName,
		Bio:       &newBio,
		Bookmarks: []uint{3, 5},
	})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	if summary.Name != "Alexandra" {
		t.Errorf("name = %s", summary.Name)
	}
	if summary.Profile.Bio != "I like biology." {
		t.Errorf("bio = %s", summary.Profile.Bio)
	}
	if len(summary.Profile.Bookmarks) != 2 {
		t.Errorf("bookmarks = %v", summary.Profile.Bookmarks)
	}

	// Untouched fields stay put.
	if summary.Class != "10A" {
		t.Errorf("class = %s, want 10A", summary.Class)
	}

	// Re-saving without touching the password leaves the stored digest
	// verifying the original plaintext.
	stored, err := env.repo.User().GetByID(ctx, actor.UserID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !stored.ComparePassword("hunter22") {
		t.Error("stored password digest changed on a profile update")
	}
}

func TestUserService_UpdateAvatar(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	actor := env.studentActor(t, "alex@school.edu", "10A")

	first, err := env.user.UpdateAvatar(ctx, actor, &FileAttachment{Filename: "one.png", Reader: strings.NewReader("1")})
	if err != nil {
		t.Fatalf("UpdateAvatar failed: %v", err)
	}

	second, err := env.user.UpdateAvatar(ctx, actor, &FileAttachment{Filename: "two.png", Reader: strings.NewReader("2")})
	if err != nil {
		t.Fatalf("UpdateAvatar failed: %v", err)
	}

	if second.Profile.Avatar == first.Profile.Avatar {
		t.Error("avatar URL should change")
	}
	if env.store.Has(first.Profile.Avatar) {
		t.Error("previous avatar object should be deleted")
	}
	if !env.store.Has(second.Profile.Avatar) {
		t.Error("new avatar object should exist")
	}
}

func TestUserService_EnsureAdminUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if err := env.user.EnsureAdminUser(ctx); err != nil {
		t.Fatalf("EnsureAdminUser failed: %v", err)
	}

	admin, err := env.repo.User().GetByEmail(ctx, "admin@qna.local")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if admin == nil || admin.Role != models.RoleAdmin {
		t.Fatalf("admin row = %+v", admin)
	}

	// Second run is a no-op.
	if err := env.user.EnsureAdminUser(ctx); err != nil {
		t.Fatalf("repeat EnsureAdminUser failed: %v", err)
	}

	users, total, err := env.repo.User().List(ctx, repositories.UserFilters{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 || len(users) != 1 {
		t.Errorf("expected a single admin row, got %d", total)
	}
}
