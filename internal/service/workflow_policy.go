package service

import (
	"strings"

	"github.com/noah-isme/sma-ops-api/internal/dto"
	"github.com/noah-isme/sma-ops-api/internal/models"
	appErrors "github.com/noah-isme/sma-ops-api/pkg/errors"
)

// TransitionPayload carries action-specific data into the engine.
type TransitionPayload struct {
	ToUserID     string
	Note         string
	Comment      string
	ReviewNote   string
	Resubmission *dto.ResubmitRequest
}

// transitionRule is one row of a per-type transition table: source states,
// target state, guard, payload validation and side-effect markers.
type transitionRule struct {
	From     []models.WorkItemStatus
	To       models.WorkItemStatus // empty means the status is unchanged
	Timeline models.TimelineAction
	Guard    func(actor *models.Actor, item *models.WorkItem) bool
	Validate func(payload *TransitionPayload) error
	// CreditsLedger marks the single transition that writes a points
	// ledger entry (achievement PENDING -> APPROVED).
	CreditsLedger bool
	// SetsAssignee moves the current responsible to payload.ToUserID.
	SetsAssignee bool
	// SetsReviewNote persists the reviewer note on the item.
	SetsReviewNote bool
	// CreatesRevision replaces the mutation with the creation of a new
	// report linked to the rejected one.
	CreatesRevision bool
}

func isManagement(actor *models.Actor) bool {
	return actor != nil && (actor.Role == models.RolePrincipal || actor.Role == models.RoleManager)
}

func isCreatorOrAssignee(actor *models.Actor, item *models.WorkItem) bool {
	if actor == nil || item == nil {
		return false
	}
	if actor.ID == item.CreatedBy {
		return true
	}
	return item.AssigneeID != nil && *item.AssigneeID == actor.ID
}

func requireComment(payload *TransitionPayload) error {
	if payload == nil || strings.TrimSpace(payload.Comment) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "comment is required")
	}
	return nil
}

func requireReviewNote(payload *TransitionPayload) error {
	if payload == nil || strings.TrimSpace(payload.ReviewNote) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "review_note is required")
	}
	return nil
}

// workflowPolicy is the closed transition table for every governed type.
// Illegal transitions are unrepresentable: an action missing here does not
// exist, and a source status outside From is a state conflict.
var workflowPolicy = map[models.WorkItemType]map[models.WorkflowAction]transitionRule{
	models.WorkItemIssue: {
		models.ActionForward: {
			From:     []models.WorkItemStatus{models.StatusOpen, models.StatusForwarded},
			To:       models.StatusForwarded,
			Timeline: models.TimelineForwarded,
			Guard: func(actor *models.Actor, _ *models.WorkItem) bool {
				return actor.Can(models.CapabilityIssueForward)
			},
			Validate: func(payload *TransitionPayload) error {
				if payload == nil || strings.TrimSpace(payload.ToUserID) == "" {
					return appErrors.Clone(appErrors.ErrValidation, "to_user_id is required")
				}
				return nil
			},
			SetsAssignee: true,
		},
		models.ActionResolve: {
			From:     []models.WorkItemStatus{models.StatusOpen, models.StatusForwarded},
			To:       models.StatusResolved,
			Timeline: models.TimelineResolved,
			Guard: func(actor *models.Actor, _ *models.WorkItem) bool {
				return actor.Can(models.CapabilityIssueResolve)
			},
		},
		models.ActionComment: {
			From:     []models.WorkItemStatus{models.StatusOpen, models.StatusForwarded},
			Timeline: models.TimelineCommented,
			Guard: func(actor *models.Actor, item *models.WorkItem) bool {
				return isCreatorOrAssignee(actor, item) || isManagement(actor)
			},
			Validate: requireComment,
		},
	},
	models.WorkItemReport: {
		models.ActionApprove: {
			From:     []models.WorkItemStatus{models.StatusSubmitted},
			To:       models.StatusApproved,
			Timeline: models.TimelineApproved,
			Guard: func(actor *models.Actor, _ *models.WorkItem) bool {
				return actor.Can(models.CapabilityReportReview)
			},
			SetsReviewNote: true,
		},
		models.ActionReject: {
			From:     []models.WorkItemStatus{models.StatusSubmitted},
			To:       models.StatusRejected,
			Timeline: models.TimelineRejected,
			Guard: func(actor *models.Actor, _ *models.WorkItem) bool {
				return actor.Can(models.CapabilityReportReview)
			},
			Validate:       requireReviewNote,
			SetsReviewNote: true,
		},
		models.ActionComment: {
			From: []models.WorkItemStatus{
				models.StatusSubmitted, models.StatusApproved, models.StatusRejected,
			},
			Timeline: models.TimelineCommented,
			Guard: func(actor *models.Actor, item *models.WorkItem) bool {
				return isCreatorOrAssignee(actor, item) || actor.Can(models.CapabilityReportReview)
			},
			Validate: requireComment,
		},
		models.ActionResubmit: {
			From:     []models.WorkItemStatus{models.StatusRejected},
			To:       models.StatusSubmitted,
			Timeline: models.TimelineResubmitted,
			Guard: func(actor *models.Actor, item *models.WorkItem) bool {
				return actor != nil && actor.ID == item.CreatedBy
			},
			Validate: func(payload *TransitionPayload) error {
				if payload == nil || payload.Resubmission == nil || strings.TrimSpace(payload.Resubmission.Title) == "" {
					return appErrors.Clone(appErrors.ErrValidation, "resubmission title is required")
				}
				return nil
			},
			CreatesRevision: true,
		},
	},
	models.WorkItemAchievement: {
		models.ActionApprove: {
			From:     []models.WorkItemStatus{models.StatusPending},
			To:       models.StatusApproved,
			Timeline: models.TimelineApproved,
			Guard: func(actor *models.Actor, _ *models.WorkItem) bool {
				return actor.Can(models.CapabilityAchievementReview)
			},
			CreditsLedger:  true,
			SetsReviewNote: true,
		},
		models.ActionReject: {
			From:     []models.WorkItemStatus{models.StatusPending},
			To:       models.StatusRejected,
			Timeline: models.TimelineRejected,
			Guard: func(actor *models.Actor, _ *models.WorkItem) bool {
				return actor.Can(models.CapabilityAchievementReview)
			},
			Validate:       requireReviewNote,
			SetsReviewNote: true,
		},
	},
}

func ruleFor(itemType models.WorkItemType, action models.WorkflowAction) (transitionRule, bool) {
	actions, ok := workflowPolicy[itemType]
	if !ok {
		return transitionRule{}, false
	}
	rule, ok := actions[action]
	return rule, ok
}

func statusAllowed(rule transitionRule, status models.WorkItemStatus) bool {
	for _, from := range rule.From {
		if from == status {
			return true
		}
	}
	return false
}
