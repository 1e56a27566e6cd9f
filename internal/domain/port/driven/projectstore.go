package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/studiopanel/internal/domain/model"
)

// ErrProjectNotFound indicates the project does not exist for the given owner.
// Stores never distinguish "exists for someone else" from "does not exist".
var ErrProjectNotFound = errors.New("project not found")

// ProjectStore defines the driven port for projects and their client and
// contact collections. Every read is scoped to an owner.
type ProjectStore interface {
	Create(ctx context.Context, project model.Project) (model.Project, error)

	// GetForOwner loads the project with its clients and contacts in insertion
	// order. Returns ErrProjectNotFound if the project is missing or belongs to
	// another owner.
	GetForOwner(ctx context.Context, ownerID, projectID string) (*model.Project, error)

	// ListForOwner returns the owner's projects without related collections.
	ListForOwner(ctx context.Context, ownerID string) ([]model.Project, error)

	AddClient(ctx context.Context, ownerID string, client model.Client) (model.Client, error)
	AddContact(ctx context.Context, ownerID string, contact model.Contact) (model.Contact, error)
}
