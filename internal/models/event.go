package models

import "time"

// TransitionEvent is emitted after a transition commits. Consumers receive
// it asynchronously; delivery transport lives outside this service.
type TransitionEvent struct {
	WorkItemType WorkItemType   `json:"work_item_type"`
	WorkItemID   string         `json:"work_item_id"`
	Action       WorkflowAction `json:"action"`
	FromStatus   WorkItemStatus `json:"from_status"`
	ToStatus     WorkItemStatus `json:"to_status"`
	ActorID      string         `json:"actor_id"`
	ToUserID     *string        `json:"to_user_id,omitempty"`
	OccurredAt   time.Time      `json:"occurred_at"`
}
