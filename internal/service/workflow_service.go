package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-ops-api/internal/models"
	"github.com/noah-isme/sma-ops-api/internal/repository"
	appErrors "github.com/noah-isme/sma-ops-api/pkg/errors"
)

type workItemStore interface {
	Create(ctx context.Context, item *models.WorkItem) error
	GetByID(ctx context.Context, itemType models.WorkItemType, id string) (*models.WorkItem, error)
	List(ctx context.Context, filter models.WorkItemFilter) ([]models.WorkItem, error)
	ExecuteTransition(ctx context.Context, params repository.TransitionParams) error
	RevisionChain(ctx context.Context, reportID string) ([]models.WorkItem, error)
}

type timelineAppender interface {
	Append(ctx context.Context, entry *models.TimelineEntry) error
}

type accountingInvalidator interface {
	InvalidateStudent(ctx context.Context, studentID string)
}

type eventDispatcher interface {
	Dispatch(event models.TransitionEvent)
}

type transitionObserver interface {
	ObserveTransition(itemType models.WorkItemType, action models.WorkflowAction, outcome string)
}

// WorkflowService is the generic transition executor. It owns every status
// mutation, ledger credit and timeline append; nothing else in the system
// writes those tables.
type WorkflowService struct {
	repo       workItemStore
	timeline   timelineAppender
	accounting accountingInvalidator
	dispatcher eventDispatcher
	metrics    transitionObserver
	logger     *zap.Logger
}

// NewWorkflowService constructs the engine. Accounting, dispatcher and
// metrics are optional collaborators.
func NewWorkflowService(repo workItemStore, timeline timelineAppender, accounting accountingInvalidator, dispatcher eventDispatcher, metrics transitionObserver, logger *zap.Logger) *WorkflowService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkflowService{
		repo:       repo,
		timeline:   timeline,
		accounting: accounting,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
	}
}

// Create persists a new work item in its type's initial status and records
// the first timeline entry.
func (s *WorkflowService) Create(ctx context.Context, item *models.WorkItem) (*models.WorkItem, error) {
	if !item.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported work item type")
	}
	if strings.TrimSpace(item.Title) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "title is required")
	}
	if item.Type == models.WorkItemAchievement {
		if item.StudentID == nil || strings.TrimSpace(*item.StudentID) == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student_id is required")
		}
		if item.Points == nil || *item.Points <= 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "points must be positive")
		}
	}
	item.Status = item.Type.InitialStatus()
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create work item")
	}
	return item, nil
}

// Get loads a work item of the given type.
func (s *WorkflowService) Get(ctx context.Context, itemType models.WorkItemType, id string) (*models.WorkItem, error) {
	if !itemType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported work item type")
	}
	item, err := s.repo.GetByID(ctx, itemType, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load work item")
	}
	return item, nil
}

// List returns work items matching the filter.
func (s *WorkflowService) List(ctx context.Context, filter models.WorkItemFilter) ([]models.WorkItem, error) {
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list work items")
	}
	return items, nil
}

// RevisionChain returns a report and its superseded predecessors, newest
// first.
func (s *WorkflowService) RevisionChain(ctx context.Context, reportID string) ([]models.WorkItem, error) {
	chain, err := s.repo.RevisionChain(ctx, reportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to traverse revision chain")
	}
	return chain, nil
}

// Transition validates and executes one guarded action against a work item.
// Preconditions are checked in a fixed order: existence, authorization,
// payload validity, source state. Nothing is written until all pass, and the
// source state is re-checked inside the commit so that of two concurrent
// approvals exactly one succeeds.
func (s *WorkflowService) Transition(ctx context.Context, itemType models.WorkItemType, itemID string, action models.WorkflowAction, actor *models.Actor, payload *TransitionPayload) (*models.WorkItem, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !itemType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported work item type")
	}
	rule, ok := ruleFor(itemType, action)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("action %s is not supported for %s", action, strings.ToLower(string(itemType))))
	}

	item, err := s.repo.GetByID(ctx, itemType, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.observe(itemType, action, "not_found")
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load work item")
	}

	if !rule.Guard(actor, item) {
		s.observe(itemType, action, "forbidden")
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not permitted for this action")
	}

	if rule.Validate != nil {
		if err := rule.Validate(payload); err != nil {
			s.observe(itemType, action, "invalid")
			return nil, err
		}
	}

	if !statusAllowed(rule, item.Status) {
		s.observe(itemType, action, "conflict")
		return nil, stateConflict(item)
	}

	switch {
	case rule.CreatesRevision:
		return s.resubmit(ctx, item, actor, payload)
	case rule.To == "":
		return s.comment(ctx, rule, item, actor, payload)
	default:
		return s.apply(ctx, rule, item, action, actor, payload)
	}
}

// apply runs the atomic unit for a status-changing action.
func (s *WorkflowService) apply(ctx context.Context, rule transitionRule, item *models.WorkItem, action models.WorkflowAction, actor *models.Actor, payload *TransitionPayload) (*models.WorkItem, error) {
	params := repository.TransitionParams{
		ItemType:   item.Type,
		ItemID:     item.ID,
		FromStatus: item.Status,
		ToStatus:   rule.To,
		Timeline: models.TimelineEntry{
			WorkItemType: item.Type,
			WorkItemID:   item.ID,
			Action:       rule.Timeline,
			PerformerID:  actor.ID,
		},
	}
	if payload != nil {
		if rule.SetsAssignee && payload.ToUserID != "" {
			toUser := payload.ToUserID
			params.AssigneeID = &toUser
			params.Timeline.ToUserID = &toUser
		}
		if note := strings.TrimSpace(payload.Note); note != "" {
			params.Timeline.Note = &note
		}
		if rule.SetsReviewNote {
			if note := strings.TrimSpace(payload.ReviewNote); note != "" {
				params.ReviewNote = &note
				params.Timeline.Note = &note
			}
		}
	}
	if rule.CreditsLedger {
		if item.StudentID == nil || item.Points == nil {
			return nil, appErrors.Clone(appErrors.ErrInternal, "achievement is missing student or points")
		}
		params.Ledger = &models.PointsLedgerEntry{
			AchievementID: item.ID,
			StudentID:     *item.StudentID,
			Points:        *item.Points,
		}
	}

	if err := s.repo.ExecuteTransition(ctx, params); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.observe(item.Type, action, "conflict")
			return nil, appErrors.Clone(appErrors.ErrStateConflict, "a concurrent transition was already applied")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply transition")
	}

	fromStatus := item.Status
	item.Status = rule.To
	item.UpdatedAt = time.Now().UTC()
	if params.AssigneeID != nil {
		item.AssigneeID = params.AssigneeID
	}
	if params.ReviewNote != nil {
		item.ReviewNote = params.ReviewNote
	}

	if rule.CreditsLedger && s.accounting != nil {
		s.accounting.InvalidateStudent(ctx, *item.StudentID)
	}

	s.observe(item.Type, action, "applied")
	s.emit(models.TransitionEvent{
		WorkItemType: item.Type,
		WorkItemID:   item.ID,
		Action:       action,
		FromStatus:   fromStatus,
		ToStatus:     item.Status,
		ActorID:      actor.ID,
		ToUserID:     params.AssigneeID,
	})
	return item, nil
}

// comment appends to the timeline without touching the status.
func (s *WorkflowService) comment(ctx context.Context, rule transitionRule, item *models.WorkItem, actor *models.Actor, payload *TransitionPayload) (*models.WorkItem, error) {
	text := strings.TrimSpace(payload.Comment)
	entry := &models.TimelineEntry{
		WorkItemType: item.Type,
		WorkItemID:   item.ID,
		Action:       rule.Timeline,
		PerformerID:  actor.ID,
		Note:         &text,
	}
	if err := s.timeline.Append(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record comment")
	}
	s.observe(item.Type, models.ActionComment, "applied")
	s.emit(models.TransitionEvent{
		WorkItemType: item.Type,
		WorkItemID:   item.ID,
		Action:       models.ActionComment,
		FromStatus:   item.Status,
		ToStatus:     item.Status,
		ActorID:      actor.ID,
	})
	return item, nil
}

// resubmit supersedes a rejected report with a fresh submission linked via
// previous_report_id. The rejected report itself stays terminal.
func (s *WorkflowService) resubmit(ctx context.Context, rejected *models.WorkItem, actor *models.Actor, payload *TransitionPayload) (*models.WorkItem, error) {
	req := payload.Resubmission
	previousID := rejected.ID
	revision := &models.WorkItem{
		Type:             models.WorkItemReport,
		Status:           models.StatusSubmitted,
		Title:            strings.TrimSpace(req.Title),
		Description:      req.Description,
		Category:         req.Category,
		CreatedBy:        actor.ID,
		PreviousReportID: &previousID,
	}
	if revision.Category == nil {
		revision.Category = rejected.Category
	}
	if err := s.repo.Create(ctx, revision); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create resubmission")
	}

	s.observe(models.WorkItemReport, models.ActionResubmit, "applied")
	s.emit(models.TransitionEvent{
		WorkItemType: models.WorkItemReport,
		WorkItemID:   revision.ID,
		Action:       models.ActionResubmit,
		FromStatus:   rejected.Status,
		ToStatus:     revision.Status,
		ActorID:      actor.ID,
	})
	return revision, nil
}

func (s *WorkflowService) emit(event models.TransitionEvent) {
	event.OccurredAt = time.Now().UTC()
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(event)
	}
}

func (s *WorkflowService) observe(itemType models.WorkItemType, action models.WorkflowAction, outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveTransition(itemType, action, outcome)
	}
}

func stateConflict(item *models.WorkItem) error {
	return appErrors.Clone(appErrors.ErrStateConflict,
		fmt.Sprintf("%s is already %s", strings.ToLower(string(item.Type)), strings.ToLower(string(item.Status))))
}
