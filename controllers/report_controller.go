package controllers

import (
	"net/http"
	"time"

	"lebs_backend/app"

	"github.com/gin-gonic/gin"
)

type ReportController struct{ *Srv }

func NewReportController(s *Srv) *ReportController { return &ReportController{Srv: s} }

// Dashboard bundles the counters, the staged returns awaiting confirmation
// and the current week's borrow chart.
func (rc *ReportController) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := rc.Repo.DashboardStats(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	pending, err := rc.Repo.ListPendingReturns(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	now := time.Now().UTC()
	monday := now.AddDate(0, 0, -int((now.Weekday()+6)%7))
	monday = time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
	weekly, err := rc.Repo.WeeklyBorrowCounts(ctx, monday)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, app.H{
		"stats":          stats,
		"pendingReturns": pending,
		"weeklyBorrows":  weekly,
	})
}

func (rc *ReportController) History(c *gin.Context) {
	hs, err := rc.Repo.ListHistory(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"history": hs})
}
