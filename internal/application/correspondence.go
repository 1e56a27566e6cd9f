package application

import (
	"context"

	"github.com/ericfisherdev/studiopanel/internal/domain/model"
)

// ProjectCorrespondence is a project's client mail. NoContacts is set when
// the project has no addressable client or contact, in which case no search
// was run.
type ProjectCorrespondence struct {
	Records    []model.CorrespondenceRecord
	Message    string
	NoContacts bool
	Addresses  []string
}

// CorrespondenceService composes the project filter with the message fetcher.
type CorrespondenceService struct {
	filter  *CorrespondenceFilter
	fetcher *MessageFetcher
}

// NewCorrespondenceService creates a CorrespondenceService.
func NewCorrespondenceService(filter *CorrespondenceFilter, fetcher *MessageFetcher) *CorrespondenceService {
	return &CorrespondenceService{filter: filter, fetcher: fetcher}
}

// ForProject lists recent mail exchanged with the project's clients and
// contacts.
func (s *CorrespondenceService) ForProject(ctx context.Context, ownerID, projectID string, limit int) (ProjectCorrespondence, error) {
	q, err := s.filter.BuildQuery(ctx, projectID, ownerID)
	if err != nil {
		return ProjectCorrespondence{}, err
	}
	if q.NoContacts {
		return ProjectCorrespondence{Records: []model.CorrespondenceRecord{}, NoContacts: true}, nil
	}

	list, err := s.fetcher.ListMessages(ctx, ownerID, q.Query, limit)
	if err != nil {
		return ProjectCorrespondence{}, err
	}

	return ProjectCorrespondence{
		Records:   list.Records,
		Message:   list.Message,
		Addresses: q.Addresses,
	}, nil
}

// Thread returns a full conversation.
func (s *CorrespondenceService) Thread(ctx context.Context, ownerID, threadID string) ([]model.CorrespondenceRecord, error) {
	return s.fetcher.GetThread(ctx, ownerID, threadID)
}
