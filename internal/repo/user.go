package repo

import (
	"context"
	"database/sql"

	"github.com/andrei-iacobb/neatplan-sub001/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// ==========================
// UserRepo
// ==========================
type UserRepo struct {
	DB *sql.DB
}

// ==========================
// Constructor
// ==========================
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// ==========================
// Create User (password optional; stored as bcrypt hash)
// ==========================
func (r *UserRepo) Create(ctx context.Context, username, password, role string) (*models.User, error) {
	var hash any
	if password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hash = string(h)
	}

	query := `
		INSERT INTO users (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, username, role
	`
	user := &models.User{}
	err := r.DB.QueryRowContext(ctx, query, username, hash, role).
		Scan(&user.ID, &user.Username, &user.Role)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepo) get(ctx context.Context, where string, arg any) (*models.User, error) {
	var hash sql.NullString
	user := &models.User{}
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, username, password_hash, role FROM users WHERE `+where+` = $1`,
		arg,
	).Scan(&user.ID, &user.Username, &hash, &user.Role)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash.String
	return user, nil
}

// ==========================
// Get By ID (sql.ErrNoRows when missing)
// ==========================
func (r *UserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	return r.get(ctx, "id", id)
}

// ==========================
// Get By Username (sql.ErrNoRows when missing)
// ==========================
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.get(ctx, "username", username)
}

// ==========================
// Update User (empty role keeps the current one)
// ==========================
func (r *UserRepo) Update(ctx context.Context, id int, username, role string) (*models.User, error) {
	query := `
		UPDATE users
		SET username = $1, role = COALESCE(NULLIF($2, ''), role)
		WHERE id = $3
		RETURNING id, username, role
	`
	user := &models.User{}
	err := r.DB.QueryRowContext(ctx, query, username, role, id).
		Scan(&user.ID, &user.Username, &user.Role)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ==========================
// Delete User
// ==========================
func (r *UserRepo) Delete(ctx context.Context, id int) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// ==========================
// List / Count Users
// ==========================
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, username, role FROM users ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Role); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// CheckPassword reports whether password matches the user's stored hash.
// Users without a password only match an empty password.
func CheckPassword(u *models.User, password string) bool {
	if u.PasswordHash == "" {
		return password == ""
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
