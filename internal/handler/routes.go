package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-ops-api/internal/middleware"
	"github.com/noah-isme/sma-ops-api/internal/models"
	"github.com/noah-isme/sma-ops-api/internal/service"
)

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Issues       *IssueHandler
	Reports      *ReportHandler
	Achievements *AchievementHandler
	Attendance   *AttendanceHandler
	Students     *StudentHandler
	Timeline     *TimelineHandler
}

// RegisterRoutes mounts the API surface under prefix. Every route requires a
// valid bearer token; role middleware only gates routes whose allowed roles
// are fixed, while per-action guards (creator, assignee, delegated
// capabilities) stay inside the workflow engine.
func RegisterRoutes(r *gin.Engine, prefix string, tokens *service.TokenService, h Handlers) {
	api := r.Group(prefix)
	api.Use(middleware.JWT(tokens))

	staff := middleware.RequireRoles(models.RolePrincipal, models.RoleManager, models.RoleTeacher)

	issues := api.Group("/issues")
	{
		issues.POST("", h.Issues.Create)
		issues.GET("", h.Issues.List)
		issues.GET("/:id", h.Issues.Get)
		issues.POST("/:id/forward", h.Issues.Forward)
		issues.POST("/:id/resolve", h.Issues.Resolve)
		issues.POST("/:id/comment", h.Issues.Comment)
	}

	reports := api.Group("/reports")
	{
		reports.POST("", staff, h.Reports.Create)
		reports.GET("", h.Reports.List)
		reports.GET("/:id", h.Reports.Get)
		reports.GET("/:id/history", h.Reports.History)
		reports.POST("/:id/approve", h.Reports.Approve)
		reports.POST("/:id/reject", h.Reports.Reject)
		reports.POST("/:id/comment", h.Reports.Comment)
		reports.POST("/:id/resubmit", h.Reports.Resubmit)
	}

	achievements := api.Group("/achievements")
	{
		achievements.POST("", staff, h.Achievements.Create)
		achievements.GET("", h.Achievements.List)
		achievements.GET("/:id", h.Achievements.Get)
		achievements.POST("/:id/approve", h.Achievements.Approve)
		achievements.POST("/:id/reject", h.Achievements.Reject)
	}

	attendance := api.Group("/attendance")
	{
		attendance.POST("", staff, h.Attendance.Record)
		attendance.GET("", h.Attendance.DailyStatus)
	}

	students := api.Group("/students")
	{
		students.GET("/:id/points", h.Students.Points)
		students.GET("/:id/points/ledger", h.Students.Ledger)
		students.GET("/:id/attendance", h.Students.AttendanceStats)
		students.GET("/:id/absences", h.Students.Absences)
	}

	api.GET("/timeline/:type/:id", h.Timeline.History)
}
