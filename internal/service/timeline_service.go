package service

import (
	"context"

	"github.com/noah-isme/sma-ops-api/internal/models"
	appErrors "github.com/noah-isme/sma-ops-api/pkg/errors"
)

type timelineStore interface {
	History(ctx context.Context, itemType models.WorkItemType, itemID string) ([]models.TimelineEntry, error)
}

// TimelineService exposes read access to the audit timeline. Writes happen
// only through the workflow engine.
type TimelineService struct {
	repo timelineStore
}

// NewTimelineService constructs the service.
func NewTimelineService(repo timelineStore) *TimelineService {
	return &TimelineService{repo: repo}
}

// History returns a work item's timeline ascending by creation time.
func (s *TimelineService) History(ctx context.Context, itemType models.WorkItemType, itemID string) ([]models.TimelineEntry, error) {
	if !itemType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported work item type")
	}
	entries, err := s.repo.History(ctx, itemType, itemID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timeline")
	}
	return entries, nil
}
