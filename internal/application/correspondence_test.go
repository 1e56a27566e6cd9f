package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/studiopanel/internal/application"
	"github.com/ericfisherdev/studiopanel/internal/domain/model"
)

func newCorrespondenceService(projects *mockProjectStore, creds *mockCredentialStore, provider *mockMailProvider) *application.CorrespondenceService {
	return application.NewCorrespondenceService(
		application.NewCorrespondenceFilter(projects),
		newFetcher(creds, provider),
	)
}

func TestForProject_SearchesProjectAddresses(t *testing.T) {
	projects := projectStoreWith(model.Project{
		ID:      "p1",
		OwnerID: "owner-1",
		Clients: []model.Client{{Email: "a@x.com"}},
	})
	provider := &mockMailProvider{
		searchMessages: func(_ context.Context, _, query string, _ int64) ([]model.MessageRef, error) {
			assert.Equal(t, "from:a@x.com OR to:a@x.com", query)
			return []model.MessageRef{{ID: "m1"}}, nil
		},
		getMessage: func(_ context.Context, _, id string, _ []string) (*model.MailMessage, error) {
			return metadataMessage(id, "a@x.com"), nil
		},
	}

	res, err := newCorrespondenceService(projects, connectedStore(), provider).
		ForProject(context.Background(), "owner-1", "p1", 0)
	require.NoError(t, err)

	assert.False(t, res.NoContacts)
	assert.Equal(t, []string{"a@x.com"}, res.Addresses)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "m1", res.Records[0].ID)
}

func TestForProject_NoContactsSkipsMailbox(t *testing.T) {
	projects := projectStoreWith(model.Project{ID: "p1", OwnerID: "owner-1"})
	provider := &mockMailProvider{
		searchMessages: func(context.Context, string, string, int64) ([]model.MessageRef, error) {
			t.Fatal("search must not run without contacts")
			return nil, nil
		},
	}

	res, err := newCorrespondenceService(projects, newMockCredentialStore(), provider).
		ForProject(context.Background(), "owner-1", "p1", 0)
	require.NoError(t, err)

	assert.True(t, res.NoContacts)
	assert.Empty(t, res.Records)
}

func TestForProject_Errors(t *testing.T) {
	projects := projectStoreWith(model.Project{
		ID:      "p1",
		OwnerID: "owner-1",
		Clients: []model.Client{{Email: "a@x.com"}},
	})

	_, err := newCorrespondenceService(projects, connectedStore(), &mockMailProvider{}).
		ForProject(context.Background(), "owner-2", "p1", 0)
	assert.ErrorIs(t, err, application.ErrProjectNotFound)

	_, err = newCorrespondenceService(projects, newMockCredentialStore(), &mockMailProvider{}).
		ForProject(context.Background(), "owner-1", "p1", 0)
	assert.ErrorIs(t, err, application.ErrNotConnected)
}

func TestThread_RefreshesBeforeFetching(t *testing.T) {
	creds := newMockCredentialStore(credentialExpiringAt(fixedNow.Add(-time.Minute)))
	provider := &mockMailProvider{
		refresh: func(context.Context, string) (model.TokenSet, error) {
			return model.TokenSet{AccessToken: "AT2", Expiry: fixedNow.Add(time.Hour)}, nil
		},
		getThread: func(_ context.Context, at, _ string) ([]model.MailMessage, error) {
			assert.Equal(t, "AT2", at)
			return []model.MailMessage{{ID: "m1"}}, nil
		},
	}

	records, err := newCorrespondenceService(projectStoreWith(), creds, provider).
		Thread(context.Background(), "owner-1", "t1")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
