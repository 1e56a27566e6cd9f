package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/studiopanel/internal/domain/model"
	"github.com/ericfisherdev/studiopanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ProfileStore = (*ProfileRepo)(nil)

// ErrProfileExists is returned by Create when the email is already taken.
var ErrProfileExists = errors.New("profile already exists")

// ProfileRepo is the SQLite implementation of the ProfileStore port interface.
type ProfileRepo struct {
	db *DB
}

// NewProfileRepo creates a new ProfileRepo backed by the given DB.
func NewProfileRepo(db *DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// Create inserts a profile, assigning a UUID and creation time when absent.
func (r *ProfileRepo) Create(ctx context.Context, p model.Profile) (model.Profile, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.CreatedAt = p.CreatedAt.UTC()

	const query = `INSERT INTO profiles (id, email, name, created_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.Writer.ExecContext(ctx, query, p.ID, p.Email, p.Name, formatTime(p.CreatedAt))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return model.Profile{}, fmt.Errorf("create profile %s: %w", p.Email, ErrProfileExists)
		}
		return model.Profile{}, fmt.Errorf("create profile %s: %w", p.Email, err)
	}

	return p, nil
}

// GetByEmail looks a profile up by email, ignoring case.
func (r *ProfileRepo) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	const query = `SELECT id, email, name, created_at FROM profiles WHERE email = ? COLLATE NOCASE`
	return r.scanOne(r.db.Reader.QueryRowContext(ctx, query, email), email)
}

// GetByID looks a profile up by its identifier.
func (r *ProfileRepo) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	const query = `SELECT id, email, name, created_at FROM profiles WHERE id = ?`
	return r.scanOne(r.db.Reader.QueryRowContext(ctx, query, id), id)
}

func (r *ProfileRepo) scanOne(row *sql.Row, key string) (*model.Profile, error) {
	var (
		p         model.Profile
		createdAt string
	)
	err := row.Scan(&p.ID, &p.Email, &p.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, driven.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", key, err)
	}

	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at for profile %s: %w", key, err)
	}
	return &p, nil
}
