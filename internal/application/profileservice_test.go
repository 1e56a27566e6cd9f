package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/studiopanel/internal/application"
	"github.com/ericfisherdev/studiopanel/internal/domain/model"
)

func TestResolveProfile_Existing(t *testing.T) {
	store := &mockProfileStore{byEmail: map[string]model.Profile{
		"ana@studio.com": {ID: "prof-1", Email: "ana@studio.com"},
	}}

	p, err := application.NewProfileService(store, false, discardLogger()).
		Resolve(context.Background(), " ana@studio.com ")
	require.NoError(t, err)
	assert.Equal(t, "prof-1", p.ID)
}

func TestResolveProfile_AutoProvision(t *testing.T) {
	store := &mockProfileStore{}

	p, err := application.NewProfileService(store, true, discardLogger()).
		Resolve(context.Background(), "New@Studio.com")
	require.NoError(t, err)

	assert.Equal(t, "new@studio.com", p.Email)
	assert.Len(t, store.created, 1)
}

func TestResolveProfile_NotAuthenticated(t *testing.T) {
	svc := application.NewProfileService(&mockProfileStore{}, false, discardLogger())

	_, err := svc.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, application.ErrNotAuthenticated)

	_, err = svc.Resolve(context.Background(), "stranger@studio.com")
	assert.ErrorIs(t, err, application.ErrNotAuthenticated)
}
