package handler

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mayankshukla2904/nagrik-backend/internal/config"
)

// AnalyticsSummary aggregates complaint counts for the public dashboard.
func (h *Handler) AnalyticsSummary(c *gin.Context) {
	byStatus, err := h.Storage.StatusCounts()
	if err != nil {
		log.Printf("ERROR: Failed to aggregate status counts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build summary"})
		return
	}

	byCategory, err := h.Storage.CategoryCounts()
	if err != nil {
		log.Printf("ERROR: Failed to aggregate category counts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build summary"})
		return
	}

	byDistrict, err := h.Storage.DistrictCounts()
	if err != nil {
		log.Printf("ERROR: Failed to aggregate district counts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build summary"})
		return
	}

	var total int64
	for _, count := range byStatus {
		total += count
	}

	c.JSON(http.StatusOK, gin.H{
		"total":       total,
		"by_status":   byStatus,
		"by_category": byCategory,
		"by_district": byDistrict,
	})
}

// TrendingComplaints returns the highest-momentum open complaints.
func (h *Handler) TrendingComplaints(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(config.TrendingLimit)))
	if err != nil || limit < 1 {
		limit = config.TrendingLimit
	}

	complaints, err := h.Storage.TrendingComplaints(limit)
	if err != nil {
		log.Printf("ERROR: Failed to rank trending complaints: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rank trending complaints"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"complaints": complaints, "count": len(complaints)})
}

// ExportComplaintsCSV streams every complaint as CSV for offline analysis.
func (h *Handler) ExportComplaintsCSV(c *gin.Context) {
	complaints, err := h.Storage.ExportComplaints()
	if err != nil {
		log.Printf("ERROR: Failed to export complaints: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export complaints"})
		return
	}

	filename := fmt.Sprintf("complaints-%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	header := []string{
		"tracking_code", "status", "priority", "severity", "category",
		"subcategory", "department", "district", "channel", "upvotes",
		"title", "created_at",
	}
	if err := w.Write(header); err != nil {
		log.Printf("ERROR: CSV export aborted: %v", err)
		return
	}

	for _, complaint := range complaints {
		record := []string{
			complaint.TrackingCode,
			complaint.Status,
			complaint.Priority,
			complaint.Severity,
			complaint.Category,
			complaint.Subcategory,
			complaint.Department,
			complaint.District,
			complaint.Channel,
			strconv.Itoa(complaint.UpvoteCount),
			complaint.Title,
			complaint.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			log.Printf("ERROR: CSV export aborted at %s: %v", complaint.TrackingCode, err)
			return
		}
	}
	w.Flush()
}
