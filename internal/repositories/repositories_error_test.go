package repositories

import (
	"errors"
	"net/http"
	"testing"

	"github.com/desertthunder/studyx/internal/models"
	"github.com/desertthunder/studyx/internal/shared"
)

func TestSessionRepositoryErrors(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		t.Run("ValidationError", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewSessionRepository(db)
			if err := repo.Create(models.NewStoredSession("")); err == nil {
				t.Fatal("expected validation error for empty base url")
			}
		})

		t.Run("NamelessCookie", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewSessionRepository(db)
			session := newSession("http://localhost:8080", "", &http.Cookie{Value: "x"})
			if err := repo.Create(session); err == nil {
				t.Fatal("expected validation error for nameless cookie")
			}
		})

		t.Run("DuplicateBaseURL", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewSessionRepository(db)
			if err := repo.Create(newSession("http://localhost:8080", "one")); err != nil {
				t.Fatalf("failed to create first session: %v", err)
			}
			if err := repo.Create(newSession("http://localhost:8080", "two")); err == nil {
				t.Fatal("expected error when creating a second session for the same backend")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			_, err := NewSessionRepository(db).Get("nonexistent-id")
			if !errors.Is(err, shared.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})

		t.Run("ClosedDatabase", func(t *testing.T) {
			db := setupTestDB(t)
			db.Close()

			_, err := NewSessionRepository(db).GetByBaseURL("http://localhost:8080")
			if err == nil || errors.Is(err, shared.ErrNotFound) {
				t.Fatalf("expected query error, got %v", err)
			}
		})
	})

	t.Run("Update", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			session := newSession("http://localhost:8080", "tok")
			session.SetID("nonexistent-id")

			err := NewSessionRepository(db).Update(session)
			if !errors.Is(err, shared.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			err := NewSessionRepository(db).Delete("nonexistent-id")
			if !errors.Is(err, shared.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	})

	t.Run("List", func(t *testing.T) {
		t.Run("ClosedDatabase", func(t *testing.T) {
			db := setupTestDB(t)
			db.Close()

			if _, err := NewSessionRepository(db).List(nil); err == nil {
				t.Fatal("expected error listing from closed database")
			}
		})
	})
}

func TestCurrentRoomRepositoryErrors(t *testing.T) {
	tests := []struct {
		name string
		room *models.CurrentRoom
	}{
		{"MissingID", models.NewCurrentRoom("", "Title", models.RoomKindOpen)},
		{"UnknownKind", models.NewCurrentRoom("1", "Title", models.RoomKind("lecture"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			if err := NewCurrentRoomRepository(db).Save(tt.room); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	t.Run("GetOtherRoom", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCurrentRoomRepository(db)
		if err := repo.Save(models.NewCurrentRoom("1", "Title", models.RoomKindOpen)); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		if _, err := repo.Get("2"); !errors.Is(err, shared.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if err := repo.Update(models.NewCurrentRoom("2", "Other", models.RoomKindOpen)); !errors.Is(err, shared.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on update, got %v", err)
		}
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if err := NewCurrentRoomRepository(db).Delete("5"); !errors.Is(err, shared.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ClosedDatabase", func(t *testing.T) {
		db := setupTestDB(t)
		db.Close()

		if _, err := NewCurrentRoomRepository(db).Load(); err == nil {
			t.Fatal("expected error loading from closed database")
		}
	})
}
