package repo

import (
	"context"
	"database/sql"

	"github.com/andrei-iacobb/neatplan-sub001/internal/models"
)

// EquipmentRepo persists equipment items.
type EquipmentRepo struct {
	DB *sql.DB
}

func NewEquipmentRepo(db *sql.DB) *EquipmentRepo {
	return &EquipmentRepo{DB: db}
}

func (r *EquipmentRepo) Create(ctx context.Context, name, location, description string) (*models.Equipment, error) {
	e := &models.Equipment{}
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO equipment (name, location, description)
		 VALUES ($1, $2, $3)
		 RETURNING id, name, location, description, created_at`,
		name, location, description,
	).Scan(&e.ID, &e.Name, &e.Location, &e.Description, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetByID returns one item, or nil if not found.
func (r *EquipmentRepo) GetByID(ctx context.Context, id int) (*models.Equipment, error) {
	e := &models.Equipment{}
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, location, description, created_at FROM equipment WHERE id = $1`,
		id,
	).Scan(&e.ID, &e.Name, &e.Location, &e.Description, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *EquipmentRepo) Update(ctx context.Context, id int, name, location, description string) (*models.Equipment, error) {
	e := &models.Equipment{}
	err := r.DB.QueryRowContext(ctx,
		`UPDATE equipment
		 SET name = $1, location = $2, description = $3
		 WHERE id = $4
		 RETURNING id, name, location, description, created_at`,
		name, location, description, id,
	).Scan(&e.ID, &e.Name, &e.Location, &e.Description, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *EquipmentRepo) Delete(ctx context.Context, id int) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM equipment WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// List returns equipment ordered by name. A non-empty search matches name or location.
func (r *EquipmentRepo) List(ctx context.Context, search string, limit, offset int) ([]models.Equipment, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, location, description, created_at
		FROM equipment
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR location ILIKE '%' || $1 || '%')
		ORDER BY name, id
		LIMIT $2 OFFSET $3
	`, search, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Equipment
	for rows.Next() {
		var e models.Equipment
		if err := rows.Scan(&e.ID, &e.Name, &e.Location, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func (r *EquipmentRepo) Count(ctx context.Context, search string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM equipment WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR location ILIKE '%' || $1 || '%')`,
		search,
	).Scan(&n)
	return n, err
}
