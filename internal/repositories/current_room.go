package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/studyx/internal/models"
	"github.com/desertthunder/studyx/internal/shared"
	"github.com/jmoiron/sqlx"
)

// CurrentRoomRepository implements [models.Repository] for the [models.CurrentRoom] pointer.
//
// The table holds at most one row (slot 1); Create and Update both replace it.
type CurrentRoomRepository struct {
	db *sqlx.DB
}

// NewCurrentRoomRepository creates a new [CurrentRoomRepository] with the given database connection
func NewCurrentRoomRepository(db *sqlx.DB) *CurrentRoomRepository {
	return &CurrentRoomRepository{db: db}
}

// Load returns the stored pointer, or nil when none is stored.
func (r *CurrentRoomRepository) Load() (*models.CurrentRoom, error) {
	var room models.CurrentRoom
	err := r.db.Get(&room, `SELECT room_id, title, kind, joined_at FROM current_room WHERE slot = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query current room: %w", err)
	}
	return &room, nil
}

// Save replaces the stored pointer.
func (r *CurrentRoomRepository) Save(room *models.CurrentRoom) error {
	if err := room.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if room.JoinedAt.IsZero() {
		room.JoinedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO current_room (slot, room_id, title, kind, joined_at) VALUES (1, :room_id, :title, :kind, :joined_at)
		ON CONFLICT(slot) DO UPDATE SET
			room_id = excluded.room_id, title = excluded.title, kind = excluded.kind, joined_at = excluded.joined_at
	`
	if _, err := r.db.NamedExec(query, room); err != nil {
		return fmt.Errorf("failed to save current room: %w", err)
	}
	return nil
}

// Clear removes the stored pointer. Clearing an empty store is not an error.
func (r *CurrentRoomRepository) Clear() error {
	if _, err := r.db.Exec(`DELETE FROM current_room`); err != nil {
		return fmt.Errorf("failed to clear current room: %w", err)
	}
	return nil
}

// Create stores room as the pointer.
func (r *CurrentRoomRepository) Create(room *models.CurrentRoom) error {
	return r.Save(room)
}

// Get returns the pointer if it references id.
func (r *CurrentRoomRepository) Get(id string) (*models.CurrentRoom, error) {
	room, err := r.Load()
	if err != nil {
		return nil, err
	}
	if room == nil || room.ID() != id {
		return nil, fmt.Errorf("%w: current room %s", shared.ErrNotFound, id)
	}
	return room, nil
}

// Update replaces the pointer, which must already reference the same room.
func (r *CurrentRoomRepository) Update(room *models.CurrentRoom) error {
	if _, err := r.Get(room.ID()); err != nil {
		return err
	}
	return r.Save(room)
}

// Delete clears the pointer if it references id.
func (r *CurrentRoomRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM current_room WHERE room_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete current room: %w", err)
	}
	return mustAffect(result, "current room "+id)
}

// List returns the pointer as a zero- or one-element slice, filtered by an optional "kind" criterion.
func (r *CurrentRoomRepository) List(criteria map[string]any) ([]*models.CurrentRoom, error) {
	room, err := r.Load()
	if err != nil {
		return nil, err
	}
	if room == nil {
		return []*models.CurrentRoom{}, nil
	}
	if kind, ok := criteria["kind"].(models.RoomKind); ok && kind != "" && room.Kind != kind {
		return []*models.CurrentRoom{}, nil
	}
	return []*models.CurrentRoom{room}, nil
}
