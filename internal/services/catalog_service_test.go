package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shikhoron/qna-service/internal/repositories"
)

func TestCatalogService_Classes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mod := env.moderatorActor(t)

	t.Run("student cannot create", func(t *testing.T) {
		student := env.studentActor(t, "alex@school.edu", "10A")
		_, err := env.catalog.CreateClass(ctx, student, &ClassCreateRequest{Name: "10A"})
		var perr *PermissionError
		if !errors.As(err, &perr) {
			t.Errorf("expected PermissionError, got %v", err)
		}
	})

	t.Run("moderator creates with sections", func(t *testing.T) {
		class, err := env.catalog.CreateClass(ctx, mod, &ClassCreateRequest{Name: "10A", Sections: []string{"A", "B"}})
		if err != nil {
			t.Fatalf("CreateClass failed: %v", err)
		}
		if class.ID == 0 || len(class.Sections) != 2 {
			t.Errorf("class = %+v", class)
		}
	})

	t.Run("duplicate name rejected", func(t *testing.T) {
		_, err := env.catalog.CreateClass(ctx, mod, &ClassCreateRequest{Name: "10A"})
		if !errors.Is(err, ErrClassNameTaken) {
			t.Errorf("expected ErrClassNameTaken, got %v", err)
		}
	})

	t.Run("update renames and replaces sections", func(t *testing.T) {
		class, err := env.catalog.CreateClass(ctx, mod, &ClassCreateRequest{Name: "9C", Sections: []string{"A"}})
		if err != nil {
			t.Fatalf("CreateClass failed: %v", err)
		}

		updated, err := env.catalog.UpdateClass(ctx, mod, class.ID, &ClassCreateRequest{Name: "9D", Sections: []string{"B", "C"}})
		if err != nil {
			t.Fatalf("UpdateClass failed: %v", err)
		}
		if updated.Name != "9D" {
			t.Errorf("name = %s, want 9D", updated.Name)
		}
		if len(updated.Sections) != 2 || updated.Sections[0] != "B" {
			t.Errorf("sections = %v, want [B C]", updated.Sections)
		}

		t.Run("rename to a taken name rejected", func(t *testing.T) {
			_, err := env.catalog.UpdateClass(ctx, mod, class.ID, &ClassCreateRequest{Name: "10A"})
			if !errors.Is(err, ErrClassNameTaken) {
				t.Errorf("expected ErrClassNameTaken, got %v", err)
			}
		})

		t.Run("unknown class", func(t *testing.T) {
			_, err := env.catalog.UpdateClass(ctx, mod, 9999, &ClassCreateRequest{Name: "ghost"})
			if !errors.Is(err, ErrClassNotFound) {
				t.Errorf("expected ErrClassNotFound, got %v", err)
			}
		})

		t.Run("student denied", func(t *testing.T) {
			student := env.studentActor(t, "casey@school.edu", "10A")
			_, err := env.catalog.UpdateClass(ctx, student, class.ID, &ClassCreateRequest{Name: "9E"})
			var perr *PermissionError
			if !errors.As(err, &perr) {
				t.Errorf("expected PermissionError, got %v", err)
			}
		})
	})

	t.Run("add section is idempotent", func(t *testing.T) {
		class, err := env.catalog.CreateClass(ctx, mod, &ClassCreateRequest{Name: "11B", Sections: []string{"A"}})
		if err != nil {
			t.Fatalf("CreateClass failed: %v", err)
		}

		updated, err := env.catalog.AddSection(ctx, mod, class.ID, &SectionRequest{Section: "B"})
		if err != nil {
			t.Fatalf("AddSection failed: %v", err)
		}
		if len(updated.Sections) != 2 {
			t.Fatalf("sections = %v", updated.Sections)
		}

		// Re-adding the same section changes nothing.
		updated, err = env.catalog.AddSection(ctx, mod, class.ID, &SectionRequest{Section: "B"})
		if err != nil {
			t.Fatalf("repeat AddSection failed: %v", err)
		}
		if len(updated.Sections) != 2 {
			t.Errorf("sections after repeat = %v", updated.Sections)
		}
	})

	t.Run("list is public", func(t *testing.T) {
		classes, err := env.catalog.ListClasses(ctx)
		if err != nil {
			t.Fatalf("ListClasses failed: %v", err)
		}
		if len(classes) != 3 {
			t.Errorf("expected 3 classes, got %d", len(classes))
		}
	})

	t.Run("delete", func(t *testing.T) {
		class, err := env.catalog.CreateClass(ctx, mod, &ClassCreateRequest{Name: "temp"})
		if err != nil {
			t.Fatalf("CreateClass failed: %v", err)
		}
		if err := env.catalog.DeleteClass(ctx, mod, class.ID); err != nil {
			t.Fatalf("DeleteClass failed: %v", err)
		}
		if err := env.catalog.DeleteClass(ctx, mod, class.ID); !errors.Is(err, ErrClassNotFound) {
			t.Errorf("expected ErrClassNotFound, got %v", err)
		}
	})
}

func TestCatalogService_Resources(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mod := env.moderatorActor(t)

	resourceReq := func() *ResourceRequest {
		return &ResourceRequest{
			Title:   "Calvin cycle summary",
			Link:    "https://example.org/calvin",
			Class:   "10A",
			Section: "A",
		}
	}

	t.Run("create with file", func(t *testing.T) {
		resource, err := env.catalog.CreateResource(ctx, mod, resourceReq(),
			&FileAttachment{Filename: "summary.pdf", Reader: strings.NewReader("pdf")})
		if err != nil {
			t.Fatalf("CreateResource failed: %v", err)
		}
		if resource.File == "" || !env.store.Has(resource.File) {
			t.Error("resource file not stored")
		}
		if resource.ModeratorID != mod.UserID {
			t.Errorf("moderator id = %d", resource.ModeratorID)
		}
	})

	t.Run("update replaces the file", func(t *testing.T) {
		resource, err := env.catalog.CreateResource(ctx, mod, resourceReq(),
			&FileAttachment{Filename: "v1.pdf", Reader: strings.NewReader("1")})
		if err != nil {
			t.Fatalf("CreateResource failed: %v", err)
		}
		previous := resource.File

		updated, err := env.catalog.UpdateResource(ctx, mod, resource.ID, resourceReq(),
			&FileAttachment{Filename: "v2.pdf", Reader: strings.NewReader("2")})
		if err != nil {
			t.Fatalf("UpdateResource failed: %v", err)
		}
		if updated.File == previous {
			t.Error("file URL should change")
		}
		if env.store.Has(previous) {
			t.Error("previous file should be deleted")
		}
	})

	t.Run("delete cleans up the file", func(t *testing.T) {
		resource, err := env.catalog.CreateResource(ctx, mod, resourceReq(),
			&FileAttachment{Filename: "gone.pdf", Reader: strings.NewReader("x")})
		if err != nil {
			t.Fatalf("CreateResource failed: %v", err)
		}

		cleanup, err := env.catalog.DeleteResource(ctx, mod, resource.ID)
		if err != nil {
			t.Fatalf("DeleteResource failed: %v", err)
		}
		if len(cleanup) != 1 || cleanup[0].Err != nil {
			t.Errorf("cleanup = %+v", cleanup)
		}
		if env.store.Has(resource.File) {
			t.Error("file should be gone")
		}
	})

	t.Run("list filters by class", func(t *testing.T) {
		class := "10A"
		resources, err := env.catalog.ListResources(ctx, repositories.CatalogFilters{Class: &class})
		if err != nil {
			t.Fatalf("ListResources failed: %v", err)
		}
		for _, r := range resources {
			if r.Class != "10A" {
				t.Errorf("filter leaked class %s", r.Class)
			}
		}
	})

	t.Run("student cannot create", func(t *testing.T) {
		student := env.studentActor(t, "casey@school.edu", "10A")
		_, err := env.catalog.CreateResource(ctx, student, resourceReq(), nil)
		var perr *PermissionError
		if !errors.As(err, &perr) {
			t.Errorf("expected PermissionError, got %v", err)
		}
	})
}

func TestCatalogService_Books(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mod := env.moderatorActor(t)

	bookReq := func() *BookRequest {
		return &BookRequest{
			Title: "Biology for Class 10",
			Price: 12.50,
			Class: "10A",
		}
	}

	t.Run("create with cover image", func(t *testing.T) {
		book, err := env.catalog.CreateBook(ctx, mod, bookReq(),
			&FileAttachment{Filename: "cover.jpg", Reader: strings.NewReader("jpg")})
		if err != nil {
			t.Fatalf("CreateBook failed: %v", err)
		}
		if book.Image == "" || !env.store.Has(book.Image) {
			t.Error("cover image not stored")
		}
		if book.Price != 12.50 {
			t.Errorf("price = %f", book.Price)
		}
	})

	t.Run("delete cleans up the image", func(t *testing.T) {
		book, err := env.catalog.CreateBook(ctx, mod, bookReq(),
			&FileAttachment{Filename: "gone.jpg", Reader: strings.NewReader("x")})
		if err != nil {
			t.Fatalf("CreateBook failed: %v", err)
		}

		cleanup, err := env.catalog.DeleteBook(ctx, mod, book.ID)
		if err != nil {
			t.Fatalf("DeleteBook failed: %v", err)
		}
		if len(cleanup) != 1 {
			t.Errorf("cleanup = %+v", cleanup)
		}
		if env.store.Has(book.Image) {
			t.Error("image should be gone")
		}
	})

	t.Run("unknown book", func(t *testing.T) {
		if _, err := env.catalog.DeleteBook(ctx, mod, 9999); !errors.Is(err, ErrBookNotFound) {
			t.Errorf("expected ErrBookNotFound, got %v", err)
		}
	})
}
