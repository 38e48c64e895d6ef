package models

import "time"

// WorkItemType enumerates the resources governed by the workflow engine.
type WorkItemType string

const (
	WorkItemIssue       WorkItemType = "ISSUE"
	WorkItemReport      WorkItemType = "REPORT"
	WorkItemAchievement WorkItemType = "ACHIEVEMENT"
)

// Valid returns true when the type is a supported value.
func (t WorkItemType) Valid() bool {
	switch t {
	case WorkItemIssue, WorkItemReport, WorkItemAchievement:
		return true
	default:
		return false
	}
}

// WorkItemStatus captures the closed per-type state sets. Issues move through
// OPEN/FORWARDED/RESOLVED, reports through SUBMITTED/APPROVED/REJECTED and
// achievements through PENDING/APPROVED/REJECTED.
type WorkItemStatus string

const (
	StatusOpen      WorkItemStatus = "OPEN"
	StatusForwarded WorkItemStatus = "FORWARDED"
	StatusResolved  WorkItemStatus = "RESOLVED"
	StatusSubmitted WorkItemStatus = "SUBMITTED"
	StatusApproved  WorkItemStatus = "APPROVED"
	StatusRejected  WorkItemStatus = "REJECTED"
	StatusPending   WorkItemStatus = "PENDING"
)

// Terminal reports whether the status accepts no further status-changing
// action. A rejected report can still be superseded, but that creates a new
// work item rather than mutating the terminal one.
func (s WorkItemStatus) Terminal() bool {
	switch s {
	case StatusResolved, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// InitialStatus returns the status a freshly created item of the type holds.
func (t WorkItemType) InitialStatus() WorkItemStatus {
	switch t {
	case WorkItemIssue:
		return StatusOpen
	case WorkItemReport:
		return StatusSubmitted
	default:
		return StatusPending
	}
}

// WorkflowAction enumerates the guarded actions the engine executes.
type WorkflowAction string

const (
	ActionForward  WorkflowAction = "FORWARD"
	ActionResolve  WorkflowAction = "RESOLVE"
	ActionComment  WorkflowAction = "COMMENT"
	ActionApprove  WorkflowAction = "APPROVE"
	ActionReject   WorkflowAction = "REJECT"
	ActionResubmit WorkflowAction = "RESUBMIT"
)

// WorkItem is the generic envelope for issues, reports and achievements.
// Status is the sole field the engine mutates, plus type-specific annexes
// such as the review note and the current assignee.
type WorkItem struct {
	ID          string         `db:"id" json:"id"`
	Type        WorkItemType   `db:"type" json:"type"`
	Status      WorkItemStatus `db:"status" json:"status"`
	Title       string         `db:"title" json:"title"`
	Description *string        `db:"description" json:"description,omitempty"`
	Category    *string        `db:"category" json:"category,omitempty"`
	Priority    *string        `db:"priority" json:"priority,omitempty"`
	CreatedBy   string         `db:"created_by" json:"created_by"`
	// AssigneeID is the current responsible for issues and the current
	// reviewer for reports; empty until assigned.
	AssigneeID *string `db:"assignee_id" json:"assignee_id,omitempty"`
	// StudentID and Points apply to achievements only.
	StudentID  *string `db:"student_id" json:"student_id,omitempty"`
	Points     *int    `db:"points" json:"points,omitempty"`
	ReviewNote *string `db:"review_note" json:"review_note,omitempty"`
	// PreviousReportID links a resubmitted report to the rejected one it
	// supersedes, forming a singly linked revision chain.
	PreviousReportID *string   `db:"previous_report_id" json:"previous_report_id,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// WorkItemFilter constrains listing queries.
type WorkItemFilter struct {
	Type       WorkItemType
	Status     []WorkItemStatus
	CreatedBy  string
	AssigneeID string
	StudentID  string
	Limit      int
	Offset     int
}
