// Package handler exposes the web surface of the platform: citizen intake,
// public lookups, admin workflow actions and the live dashboard socket.
package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/mayankshukla2904/nagrik-backend/internal/classifier"
	"github.com/mayankshukla2904/nagrik-backend/internal/dashhub"
	"github.com/mayankshukla2904/nagrik-backend/internal/dedup"
	"github.com/mayankshukla2904/nagrik-backend/internal/storage"
	"github.com/mayankshukla2904/nagrik-backend/internal/upvote"
)

// Handler carries the services every route needs.
type Handler struct {
	Storage  storage.Storage
	Hub      *dashhub.Hub
	Cascade  *classifier.Cascade
	Detector *dedup.Detector
	Upvotes  *upvote.Service
}

func NewHandler(s storage.Storage, hub *dashhub.Hub, cascade *classifier.Cascade, detector *dedup.Detector, upvotes *upvote.Service) *Handler {
	return &Handler{
		Storage:  s,
		Hub:      hub,
		Cascade:  cascade,
		Detector: detector,
		Upvotes:  upvotes,
	}
}

// RegisterRoutes wires every route under /api/v1. Reads are public; writes
// need a citizen token and workflow actions need an admin token.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")

	api.POST("/auth/token", h.IssueCitizenToken)
	api.POST("/auth/admin", h.IssueAdminToken)

	api.GET("/complaints", h.ListComplaints)
	api.GET("/complaints/:code", h.GetComplaint)
	api.GET("/analytics/summary", h.AnalyticsSummary)
	api.GET("/analytics/trending", h.TrendingComplaints)

	authed := api.Group("", RequireAuth())
	authed.POST("/complaints", h.submitRateLimit, h.CreateComplaint)
	authed.POST("/complaints/duplicates", h.PreviewDuplicates)
	authed.POST("/complaints/:code/upvote", h.UpvoteComplaint)

	admin := api.Group("", RequireAuth(), RequireAdmin())
	admin.PATCH("/complaints/:code/status", h.UpdateComplaintStatus)
	admin.PATCH("/complaints/:code/assign", h.AssignDepartment)
	admin.GET("/analytics/export", h.ExportComplaintsCSV)

	api.GET("/ws/dashboard", h.ServeDashboard)
}
