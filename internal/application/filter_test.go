package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/studiopanel/internal/application"
	"github.com/ericfisherdev/studiopanel/internal/domain/model"
)

func projectStoreWith(projects ...model.Project) *mockProjectStore {
	m := &mockProjectStore{projects: make(map[string]model.Project)}
	for _, p := range projects {
		m.projects[p.ID] = p
	}
	return m
}

func TestBuildQuery_ClientsThenContacts(t *testing.T) {
	store := projectStoreWith(model.Project{
		ID:      "p1",
		OwnerID: "owner-1",
		Clients: []model.Client{{Name: "Ana", Email: "a@x.com"}},
		Contacts: []model.Contact{
			{Name: "Ben", Email: "b@x.com"},
			{Name: "No Mail"},
		},
	})

	q, err := application.NewCorrespondenceFilter(store).BuildQuery(context.Background(), "p1", "owner-1")
	require.NoError(t, err)

	assert.False(t, q.NoContacts)
	assert.Equal(t, "from:a@x.com OR to:a@x.com OR from:b@x.com OR to:b@x.com", q.Query)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, q.Addresses)
}

func TestBuildQuery_DuplicateAddressesCollapse(t *testing.T) {
	store := projectStoreWith(model.Project{
		ID:       "p1",
		OwnerID:  "owner-1",
		Clients:  []model.Client{{Email: "a@x.com"}},
		Contacts: []model.Contact{{Email: " A@X.com "}, {Email: "c@x.com"}},
	})

	q, err := application.NewCorrespondenceFilter(store).BuildQuery(context.Background(), "p1", "owner-1")
	require.NoError(t, err)

	assert.Equal(t, []string{"a@x.com", "c@x.com"}, q.Addresses)
}

func TestBuildQuery_NoContacts(t *testing.T) {
	tests := []struct {
		name    string
		project model.Project
	}{
		{
			name:    "no people",
			project: model.Project{ID: "p1", OwnerID: "owner-1"},
		},
		{
			name: "people without email",
			project: model.Project{
				ID:       "p1",
				OwnerID:  "owner-1",
				Clients:  []model.Client{{Name: "Ana"}},
				Contacts: []model.Contact{{Name: "Ben"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := projectStoreWith(tt.project)

			q, err := application.NewCorrespondenceFilter(store).BuildQuery(context.Background(), "p1", "owner-1")
			require.NoError(t, err)

			assert.True(t, q.NoContacts)
			assert.Empty(t, q.Query)
			assert.Empty(t, q.Addresses)
		})
	}
}

func TestBuildQuery_ForeignProjectIsNotFound(t *testing.T) {
	store := projectStoreWith(model.Project{
		ID:      "p1",
		OwnerID: "owner-2",
		Clients: []model.Client{{Email: "a@x.com"}},
	})
	filter := application.NewCorrespondenceFilter(store)

	_, err := filter.BuildQuery(context.Background(), "p1", "owner-1")
	assert.ErrorIs(t, err, application.ErrProjectNotFound)

	_, err = filter.BuildQuery(context.Background(), "missing", "owner-1")
	assert.ErrorIs(t, err, application.ErrProjectNotFound)
}

func TestBuildSearchQuery(t *testing.T) {
	assert.Equal(t, "from:a@x.com OR to:a@x.com", application.BuildSearchQuery([]string{"a@x.com"}))
	assert.Empty(t, application.BuildSearchQuery(nil))
}
