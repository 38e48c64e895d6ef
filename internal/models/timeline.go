package models

import "time"

// TimelineAction constants represent actions recorded on the audit timeline.
type TimelineAction string

const (
	TimelineCreated     TimelineAction = "CREATED"
	TimelineForwarded   TimelineAction = "FORWARDED"
	TimelineResolved    TimelineAction = "RESOLVED"
	TimelineCommented   TimelineAction = "COMMENTED"
	TimelineApproved    TimelineAction = "APPROVED"
	TimelineRejected    TimelineAction = "REJECTED"
	TimelineResubmitted TimelineAction = "RESUBMITTED"
)

// TimelineEntry is an immutable audit record for a work item. Entries are
// append-only and ordered ascending by creation time; no update or delete
// path exists anywhere in the codebase.
type TimelineEntry struct {
	ID           string         `db:"id" json:"id"`
	WorkItemType WorkItemType   `db:"work_item_type" json:"work_item_type"`
	WorkItemID   string         `db:"work_item_id" json:"work_item_id"`
	Action       TimelineAction `db:"action" json:"action"`
	PerformerID  string         `db:"performer_id" json:"performer_id"`
	ToUserID     *string        `db:"to_user_id" json:"to_user_id,omitempty"`
	Note         *string        `db:"note" json:"note,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}
