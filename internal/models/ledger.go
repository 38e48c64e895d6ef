package models

import "time"

// StarDivisor converts accumulated points into stars.
const StarDivisor = 20

// PointsLedgerEntry credits points to a student for an approved achievement.
// Entries are written exactly once, inside the approval transaction, and are
// never mutated or deleted; a correction would be a new negative entry.
type PointsLedgerEntry struct {
	ID            string    `db:"id" json:"id"`
	AchievementID string    `db:"achievement_id" json:"achievement_id"`
	StudentID     string    `db:"student_id" json:"student_id"`
	Points        int       `db:"points" json:"points"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// StudentAccounting is derived from the ledger on every read; no stored
// counter exists that could drift from the entries.
type StudentAccounting struct {
	StudentID     string `json:"student_id"`
	TotalPoints   int    `json:"total_points"`
	MonthlyPoints int    `json:"monthly_points"`
	Stars         int    `json:"stars"`
}

// StarsFor computes the star count for a point total.
func StarsFor(totalPoints int) int {
	if totalPoints <= 0 {
		return 0
	}
	return totalPoints / StarDivisor
}
