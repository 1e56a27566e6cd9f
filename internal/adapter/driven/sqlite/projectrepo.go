package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/studiopanel/internal/domain/model"
	"github.com/ericfisherdev/studiopanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ProjectStore = (*ProjectRepo)(nil)

// ProjectRepo is the SQLite implementation of the ProjectStore port interface.
// Every query joins on owner_id so a foreign project is indistinguishable from
// a missing one.
type ProjectRepo struct {
	db *DB
}

// NewProjectRepo creates a new ProjectRepo backed by the given DB.
func NewProjectRepo(db *DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

// Create inserts a project row. Clients and contacts on the argument are
// ignored; attach them with AddClient and AddContact.
func (r *ProjectRepo) Create(ctx context.Context, p model.Project) (model.Project, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.Clients = nil
	p.Contacts = nil

	const query = `INSERT INTO projects (id, owner_id, name, created_at) VALUES (?, ?, ?, ?)`
	if _, err := r.db.Writer.ExecContext(ctx, query, p.ID, p.OwnerID, p.Name, formatTime(p.CreatedAt)); err != nil {
		return model.Project{}, fmt.Errorf("create project %q: %w", p.Name, err)
	}

	return p, nil
}

// GetForOwner loads a project with its clients and contacts in insertion order.
func (r *ProjectRepo) GetForOwner(ctx context.Context, ownerID, projectID string) (*model.Project, error) {
	const query = `SELECT id, owner_id, name, created_at FROM projects WHERE id = ? AND owner_id = ?`

	var (
		p         model.Project
		createdAt string
	)
	err := r.db.Reader.QueryRowContext(ctx, query, projectID, ownerID).
		Scan(&p.ID, &p.OwnerID, &p.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, driven.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", projectID, err)
	}

	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at for project %s: %w", projectID, err)
	}

	if p.Clients, err = r.clients(ctx, projectID); err != nil {
		return nil, err
	}
	if p.Contacts, err = r.contacts(ctx, projectID); err != nil {
		return nil, err
	}

	return &p, nil
}

// ListForOwner returns the owner's projects in creation order.
func (r *ProjectRepo) ListForOwner(ctx context.Context, ownerID string) ([]model.Project, error) {
	const query = `SELECT id, owner_id, name, created_at FROM projects WHERE owner_id = ? ORDER BY rowid`

	rows, err := r.db.Reader.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		var (
			p         model.Project
			createdAt string
		)
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		if p.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at for project %s: %w", p.ID, err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}

	return projects, nil
}

// AddClient attaches a client to one of the owner's projects.
func (r *ProjectRepo) AddClient(ctx context.Context, ownerID string, c model.Client) (model.Client, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	const query = `INSERT INTO project_clients (id, project_id, name, email)
		SELECT ?, id, ?, ? FROM projects WHERE id = ? AND owner_id = ?`
	result, err := r.db.Writer.ExecContext(ctx, query, c.ID, c.Name, c.Email, c.ProjectID, ownerID)
	if err != nil {
		return model.Client{}, fmt.Errorf("add client to project %s: %w", c.ProjectID, err)
	}
	if err := requireOneRow(result, c.ProjectID); err != nil {
		return model.Client{}, err
	}

	return c, nil
}

// AddContact attaches a contact to one of the owner's projects.
func (r *ProjectRepo) AddContact(ctx context.Context, ownerID string, c model.Contact) (model.Contact, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	const query = `INSERT INTO project_contacts (id, project_id, name, role, email)
		SELECT ?, id, ?, ?, ? FROM projects WHERE id = ? AND owner_id = ?`
	result, err := r.db.Writer.ExecContext(ctx, query, c.ID, c.Name, c.Role, c.Email, c.ProjectID, ownerID)
	if err != nil {
		return model.Contact{}, fmt.Errorf("add contact to project %s: %w", c.ProjectID, err)
	}
	if err := requireOneRow(result, c.ProjectID); err != nil {
		return model.Contact{}, err
	}

	return c, nil
}

func (r *ProjectRepo) clients(ctx context.Context, projectID string) ([]model.Client, error) {
	const query = `SELECT id, project_id, name, email FROM project_clients WHERE project_id = ? ORDER BY rowid`

	rows, err := r.db.Reader.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list clients for project %s: %w", projectID, err)
	}
	defer rows.Close()

	var clients []model.Client
	for rows.Next() {
		var c model.Client
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.Name, &c.Email); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}

	return clients, nil
}

func (r *ProjectRepo) contacts(ctx context.Context, projectID string) ([]model.Contact, error) {
	const query = `SELECT id, project_id, name, role, email FROM project_contacts WHERE project_id = ? ORDER BY rowid`

	rows, err := r.db.Reader.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list contacts for project %s: %w", projectID, err)
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.Name, &c.Role, &c.Email); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}

	return contacts, nil
}

func requireOneRow(result sql.Result, projectID string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("project %s: %w", projectID, driven.ErrProjectNotFound)
	}
	return nil
}
