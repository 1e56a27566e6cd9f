package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ericfisherdev/studiopanel/internal/domain/model"
	"github.com/ericfisherdev/studiopanel/internal/domain/port/driven"
)

// ErrInvalidInput indicates a request failed field validation.
var ErrInvalidInput = errors.New("invalid input")

// ProjectService manages an owner's projects and the people attached to them.
type ProjectService struct {
	store driven.ProjectStore
}

// NewProjectService creates a ProjectService.
func NewProjectService(store driven.ProjectStore) *ProjectService {
	return &ProjectService{store: store}
}

// Create adds a project for ownerID.
func (s *ProjectService) Create(ctx context.Context, ownerID, name string) (model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Project{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return s.store.Create(ctx, model.Project{OwnerID: ownerID, Name: name})
}

// Get loads one of the owner's projects with its clients and contacts.
func (s *ProjectService) Get(ctx context.Context, ownerID, projectID string) (*model.Project, error) {
	p, err := s.store.GetForOwner(ctx, ownerID, projectID)
	if errors.Is(err, driven.ErrProjectNotFound) {
		return nil, ErrProjectNotFound
	}
	return p, err
}

// List returns the owner's projects.
func (s *ProjectService) List(ctx context.Context, ownerID string) ([]model.Project, error) {
	return s.store.ListForOwner(ctx, ownerID)
}

// AddClient attaches a client to the project. Email is optional.
func (s *ProjectService) AddClient(ctx context.Context, ownerID string, client model.Client) (model.Client, error) {
	client.Name = strings.TrimSpace(client.Name)
	client.Email = strings.TrimSpace(client.Email)
	if client.Name == "" {
		return model.Client{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	c, err := s.store.AddClient(ctx, ownerID, client)
	if errors.Is(err, driven.ErrProjectNotFound) {
		return model.Client{}, ErrProjectNotFound
	}
	return c, err
}

// AddContact attaches a contact to the project. Email is optional.
func (s *ProjectService) AddContact(ctx context.Context, ownerID string, contact model.Contact) (model.Contact, error) {
	contact.Name = strings.TrimSpace(contact.Name)
	contact.Role = strings.TrimSpace(contact.Role)
	contact.Email = strings.TrimSpace(contact.Email)
	if contact.Name == "" {
		return model.Contact{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	c, err := s.store.AddContact(ctx, ownerID, contact)
	if errors.Is(err, driven.ErrProjectNotFound) {
		return model.Contact{}, ErrProjectNotFound
	}
	return c, err
}
