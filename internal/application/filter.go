package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ericfisherdev/studiopanel/internal/domain/port/driven"
)

// ProjectQuery is the provider search for a project's correspondence.
// NoContacts is set, and Query left empty, when no client or contact on the
// project has an email address.
type ProjectQuery struct {
	Query      string
	Addresses  []string
	NoContacts bool
}

// CorrespondenceFilter derives the mailbox search that selects a project's
// client correspondence.
type CorrespondenceFilter struct {
	projectStore driven.ProjectStore
}

// NewCorrespondenceFilter creates a CorrespondenceFilter.
func NewCorrespondenceFilter(projectStore driven.ProjectStore) *CorrespondenceFilter {
	return &CorrespondenceFilter{projectStore: projectStore}
}

// BuildQuery loads the owner's project and builds a search over the email
// addresses of its clients, then its contacts. Returns ErrProjectNotFound for
// projects that are missing or owned by someone else.
func (f *CorrespondenceFilter) BuildQuery(ctx context.Context, projectID, ownerID string) (ProjectQuery, error) {
	project, err := f.projectStore.GetForOwner(ctx, ownerID, projectID)
	if errors.Is(err, driven.ErrProjectNotFound) {
		return ProjectQuery{}, ErrProjectNotFound
	}
	if err != nil {
		return ProjectQuery{}, fmt.Errorf("load project %s: %w", projectID, err)
	}

	addrs := uniqueAddresses(project.EmailAddresses())
	if len(addrs) == 0 {
		return ProjectQuery{NoContacts: true}, nil
	}

	return ProjectQuery{
		Query:     BuildSearchQuery(addrs),
		Addresses: addrs,
	}, nil
}

// BuildSearchQuery matches mail sent from or to any of the addresses, e.g.
// "from:a@x.com OR to:a@x.com OR from:b@x.com OR to:b@x.com".
func BuildSearchQuery(addrs []string) string {
	clauses := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		clauses = append(clauses, fmt.Sprintf("from:%s OR to:%s", addr, addr))
	}
	return strings.Join(clauses, " OR ")
}

// uniqueAddresses trims addresses and drops blanks and case-insensitive
// duplicates, keeping first-seen order.
func uniqueAddresses(addrs []string) []string {
	seen := make(map[string]struct{}, len(addrs))
	out := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		key := strings.ToLower(addr)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, addr)
	}
	return out
}
