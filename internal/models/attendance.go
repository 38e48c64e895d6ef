package models

import "time"

// AttendanceSession identifies the half-day slot a fact belongs to.
type AttendanceSession string

const (
	SessionMorning   AttendanceSession = "MORNING"
	SessionAfternoon AttendanceSession = "AFTERNOON"
)

// Valid returns true when the session is a supported value.
func (s AttendanceSession) Valid() bool {
	return s == SessionMorning || s == SessionAfternoon
}

// AttendanceStatus represents the status for an attendance fact.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	return s == AttendancePresent || s == AttendanceAbsent
}

// AttendanceFact is a raw attendance record keyed by
// (student, date, session). A correction overwrites the same key via an
// idempotent upsert; the aggregator only ever reads current facts.
type AttendanceFact struct {
	ID        string            `db:"id" json:"id"`
	StudentID string            `db:"student_id" json:"student_id"`
	ClassID   string            `db:"class_id" json:"class_id"`
	Date      time.Time         `db:"date" json:"date"`
	Session   AttendanceSession `db:"session" json:"session"`
	Status    AttendanceStatus  `db:"status" json:"status"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt time.Time         `db:"updated_at" json:"updated_at"`
}

// DayStatus reports whether attendance has been taken for each session of a
// class on a given date.
type DayStatus struct {
	ClassID        string    `json:"class_id"`
	Date           time.Time `json:"date"`
	MorningTaken   bool      `json:"morning_taken"`
	AfternoonTaken bool      `json:"afternoon_taken"`
}

// StudentAttendanceStats summarises per-student session counts.
type StudentAttendanceStats struct {
	StudentID       string `json:"student_id"`
	TotalSessions   int    `json:"total_sessions"`
	PresentSessions int    `json:"present_sessions"`
	AbsentSessions  int    `json:"absent_sessions"`
	Percentage      int    `json:"percentage"`
}

// AbsenceReportEntry groups a student's absences for one date with the
// sessions missed.
type AbsenceReportEntry struct {
	Date     time.Time           `json:"date"`
	Sessions []AttendanceSession `json:"sessions"`
}
