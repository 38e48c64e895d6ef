package dto

// CreateIssueRequest payload for opening an issue.
type CreateIssueRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low medium high"`
}

// CreateReportRequest payload for submitting a duty report.
type CreateReportRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

// CreateAchievementRequest payload for recording a student achievement.
type CreateAchievementRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description"`
	StudentID   string  `json:"student_id" validate:"required"`
	Points      int     `json:"points" validate:"required,gt=0"`
}

// ForwardRequest reassigns an issue to a new responsible.
type ForwardRequest struct {
	ToUserID string `json:"to_user_id" validate:"required"`
	Note     string `json:"note"`
}

// CommentRequest appends a comment to a work item's timeline.
type CommentRequest struct {
	Comment string `json:"comment" validate:"required"`
}

// ReviewRequest carries the reviewer note for approve/reject decisions.
// The note is optional on approve and mandatory on reject; the engine
// enforces the distinction.
type ReviewRequest struct {
	ReviewNote string `json:"review_note"`
}

// ResubmitRequest supersedes a rejected report with a new submission.
type ResubmitRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

// WorkItemQuery mirrors supported listing filters.
type WorkItemQuery struct {
	Status     []string
	CreatedBy  string
	AssigneeID string
	StudentID  string
	Page       int
	PageSize   int
}
