package dto

// AttendanceItem is a single fact within a bulk recording request.
type AttendanceItem struct {
	StudentID string `json:"student_id" validate:"required"`
	Status    string `json:"status" validate:"required,attendance_status"`
}

// RecordAttendanceRequest records one session's attendance for a class.
// Re-sending the same request is an idempotent overwrite per
// (student, date, session).
type RecordAttendanceRequest struct {
	ClassID string           `json:"class_id" validate:"required"`
	Date    string           `json:"date" validate:"required"`
	Session string           `json:"session" validate:"required,attendance_session"`
	Items   []AttendanceItem `json:"items" validate:"required,min=1,dive"`
}

// StudentAttendanceQuery bounds the statistics range.
type StudentAttendanceQuery struct {
	DateFrom string
	DateTo   string
}
