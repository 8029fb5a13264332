package repo

import (
	"context"
	"database/sql"

	"github.com/andrei-iacobb/neatplan-sub001/internal/models"
)

// ========================
// REPOSITORY STRUCT
// ========================

type RoomRepo struct {
	DB *sql.DB
}

func NewRoomRepo(db *sql.DB) *RoomRepo {
	return &RoomRepo{DB: db}
}

// ========================
// CREATE ROOM
// ========================

func (r *RoomRepo) Create(ctx context.Context, name string, floor *string, description string) (*models.Room, error) {
	room := &models.Room{}
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO rooms (name, floor, description)
		 VALUES ($1, $2, $3)
		 RETURNING id, name, floor, description, created_at`,
		name, floor, description,
	).Scan(&room.ID, &room.Name, &room.Floor, &room.Description, &room.CreatedAt)
	if err != nil {
		return nil, err
	}
	return room, nil
}

// ========================
// GET ROOM BY ID
// ========================

func (r *RoomRepo) GetByID(ctx context.Context, id int) (*models.Room, error) {
	room := &models.Room{}
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, floor, description, created_at
		 FROM rooms
		 WHERE id = $1`,
		id,
	).Scan(&room.ID, &room.Name, &room.Floor, &room.Description, &room.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return room, nil
}

// ========================
// UPDATE ROOM BY ID
// ========================

func (r *RoomRepo) Update(ctx context.Context, id int, name string, floor *string, description string) (*models.Room, error) {
	room := &models.Room{}
	err := r.DB.QueryRowContext(ctx,
		`UPDATE rooms
		 SET name = $1, floor = $2, description = $3
		 WHERE id = $4
		 RETURNING id, name, floor, description, created_at`,
		name, floor, description, id,
	).Scan(&room.ID, &room.Name, &room.Floor, &room.Description, &room.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return room, nil
}

// ========================
// DELETE ROOM BY ID
// ========================

func (r *RoomRepo) Delete(ctx context.Context, id int) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM rooms WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ========================
// LIST / SEARCH ROOMS WITH PAGINATION
// ========================

// List returns rooms ordered by name. A non-empty search matches name or floor.
func (r *RoomRepo) List(ctx context.Context, search string, limit, offset int) ([]models.Room, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, floor, description, created_at
		FROM rooms
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR floor ILIKE '%' || $1 || '%')
		ORDER BY name, id
		LIMIT $2 OFFSET $3
	`, search, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []models.Room
	for rows.Next() {
		var room models.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.Floor, &room.Description, &room.CreatedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func (r *RoomRepo) Count(ctx context.Context, search string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rooms WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR floor ILIKE '%' || $1 || '%')`,
		search,
	).Scan(&n)
	return n, err
}
