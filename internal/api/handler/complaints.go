package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"github.com/mayankshukla2904/nagrik-backend/internal/config"
	"github.com/mayankshukla2904/nagrik-backend/internal/dedup"
	"github.com/mayankshukla2904/nagrik-backend/internal/location"
	"github.com/mayankshukla2904/nagrik-backend/internal/models"
	"github.com/mayankshukla2904/nagrik-backend/internal/storage"
	"github.com/mayankshukla2904/nagrik-backend/internal/upvote"
)

type createComplaintRequest struct {
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description" binding:"required"`
	Address      string   `json:"address"`
	District     string   `json:"district"`
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	MediaFileIDs []string `json:"media_file_ids"`
	Language     string   `json:"language"`
	// Force skips the duplicate check; clients set it after showing the
	// citizen the similar complaints and getting an explicit go-ahead.
	Force bool `json:"force"`
}

// validate applies the same length rules the chat flow enforces turn by turn.
func (r *createComplaintRequest) validate() []string {
	var errs []string

	titleLen := len([]rune(strings.TrimSpace(r.Title)))
	if titleLen < config.TitleMinLength {
		errs = append(errs, fmt.Sprintf("title must be at least %d characters", config.TitleMinLength))
	}
	if titleLen > config.TitleMaxLength {
		errs = append(errs, fmt.Sprintf("title must be at most %d characters", config.TitleMaxLength))
	}

	descLen := len([]rune(strings.TrimSpace(r.Description)))
	if descLen < config.DescriptionMinLength {
		errs = append(errs, fmt.Sprintf("description must be at least %d characters", config.DescriptionMinLength))
	}
	if descLen > config.DescriptionMaxLength {
		errs = append(errs, fmt.Sprintf("description must be at most %d characters", config.DescriptionMaxLength))
	}

	hasCoords := r.Latitude != 0 || r.Longitude != 0
	if strings.TrimSpace(r.Address) == "" && !hasCoords {
		errs = append(errs, "either address or coordinates are required")
	} else if !hasCoords && len([]rune(strings.TrimSpace(r.Address))) < config.LocationMinLength {
		errs = append(errs, fmt.Sprintf("address must be at least %d characters", config.LocationMinLength))
	}

	if r.District != "" && !location.KnownDistrict(r.District) {
		errs = append(errs, "unknown district: "+r.District)
	}
	if len(r.MediaFileIDs) > config.MediaAttachmentCap {
		errs = append(errs, fmt.Sprintf("at most %d media attachments are allowed", config.MediaAttachmentCap))
	}

	return errs
}

// CreateComplaint is the web intake path. It validates, classifies, checks
// for duplicates unless forced, and registers the complaint.
func (h *Handler) CreateComplaint(c *gin.Context) {
	var req createComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and description are required"})
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Address = strings.TrimSpace(req.Address)

	// Derive the district from the address when the client did not send one,
	// same as the chat flow does.
	district := strings.TrimSpace(req.District)
	latitude, longitude := req.Latitude, req.Longitude
	if district == "" && req.Address != "" {
		if info := location.Validate(req.Address); info.Valid {
			district = info.District
			if latitude == 0 && longitude == 0 && info.Coordinates != nil {
				latitude = info.Coordinates.Latitude
				longitude = info.Coordinates.Longitude
			}
		}
	}

	result := h.Cascade.Classify(c.Request.Context(), req.Title, req.Description, req.Address)

	if !req.Force {
		candidates := h.findCandidates(c.Request.Context(), req.Title, req.Description, result.Category, district)
		if len(candidates) > 0 {
			c.JSON(http.StatusConflict, gin.H{
				"message":    "similar open complaints already exist; resubmit with force=true to file anyway",
				"duplicates": candidates,
			})
			return
		}
	}

	language := req.Language
	if language == "" {
		language = "en"
	}

	complaint := &models.Complaint{
		ReporterID:       c.GetString(ctxUserID),
		Title:            req.Title,
		Description:      req.Description,
		Category:         result.Category,
		Subcategory:      result.Subcategory,
		Severity:         result.Severity,
		Priority:         models.PriorityForSeverity(result.Severity),
		Department:       result.Department,
		Channel:          models.ChannelWeb,
		Language:         language,
		Address:          req.Address,
		District:         district,
		Latitude:         latitude,
		Longitude:        longitude,
		Confidence:       result.Confidence,
		ClassifierSource: result.Source,
		MatchedKeywords:  pq.StringArray(result.MatchedKeywords),
		ExtractedInfo:    result.ExtractedInfo,
		MediaFileIDs:     pq.StringArray(req.MediaFileIDs),
		Supporters:       pq.StringArray{},
	}

	if err := h.Storage.SaveComplaint(complaint); err != nil {
		log.Printf("ERROR: Failed to save web complaint for user %s: %v", complaint.ReporterID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register complaint"})
		return
	}

	c.JSON(http.StatusCreated, complaint)
}

// findCandidates runs the duplicate check with its own deadline. Failures
// degrade to "no duplicates" so intake never blocks on the detector.
func (h *Handler) findCandidates(ctx context.Context, title, description, category, district string) []dedup.Candidate {
	searchCtx, cancel := context.WithTimeout(ctx, config.DuplicateSearchTimeout)
	defer cancel()

	candidates, err := h.Detector.FindCandidates(searchCtx, title, description, category, district)
	if err != nil {
		log.Printf("WARN: Duplicate search failed, continuing without candidates: %v", err)
		return nil
	}
	return candidates
}

type previewDuplicatesRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	District    string `json:"district"`
}

// PreviewDuplicates lets a client show similar open complaints before the
// citizen finishes filing. When the category is not known yet it is derived
// by the classifier first.
func (h *Handler) PreviewDuplicates(c *gin.Context) {
	var req previewDuplicatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	category := req.Category
	if category == "" {
		result := h.Cascade.Classify(c.Request.Context(), req.Title, req.Description, "")
		category = result.Category
	}

	candidates := h.findCandidates(c.Request.Context(), req.Title, req.Description, category, req.District)
	c.JSON(http.StatusOK, gin.H{
		"category":   category,
		"candidates": candidates,
		"count":      len(candidates),
	})
}

// ListComplaints returns a filtered page of complaints for dashboards.
func (h *Handler) ListComplaints(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	filter := storage.ComplaintFilter{
		Status:     c.Query("status"),
		Category:   c.Query("category"),
		District:   c.Query("district"),
		Department: c.Query("department"),
		Severity:   c.Query("severity"),
		Priority:   c.Query("priority"),
		Page:       page,
		PerPage:    perPage,
	}

	complaints, total, err := h.Storage.ListComplaints(filter)
	if err != nil {
		log.Printf("ERROR: Failed to list complaints: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list complaints"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"complaints": complaints,
		"total":      total,
		"page":       filter.Page,
		"per_page":   filter.PerPage,
	})
}

// GetComplaint is the public status lookup, timeline included.
func (h *Handler) GetComplaint(c *gin.Context) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))

	complaint, err := h.Storage.GetComplaintByTrackingCode(code)
	if err != nil {
		if errors.Is(err, storage.ErrComplaintNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no complaint with tracking code " + code})
			return
		}
		log.Printf("ERROR: Failed to fetch complaint %s: %v", code, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch complaint"})
		return
	}

	c.JSON(http.StatusOK, complaint)
}

// UpvoteComplaint records one citizen's support for an open complaint.
func (h *Handler) UpvoteComplaint(c *gin.Context) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	userID := c.GetString(ctxUserID)

	complaint, err := h.Upvotes.Reinforce(c.Request.Context(), code, userID)
	switch {
	case errors.Is(err, upvote.ErrAlreadyReinforced):
		c.JSON(http.StatusConflict, gin.H{"error": "you already support this complaint"})
		return
	case errors.Is(err, upvote.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "no open complaint with tracking code " + code})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record support"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tracking_code": complaint.TrackingCode,
		"upvote_count":  complaint.UpvoteCount,
		"priority":      complaint.Priority,
		"status":        complaint.Status,
	})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

func validStatus(status string) bool {
	switch status {
	case models.StatusSubmitted, models.StatusUnderReview, models.StatusInProgress,
		models.StatusResolved, models.StatusClosed, models.StatusRejected:
		return true
	}
	return false
}

// UpdateComplaintStatus moves a complaint forward through its lifecycle.
func (h *Handler) UpdateComplaintStatus(c *gin.Context) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	if !validStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status: " + req.Status})
		return
	}

	actor := "admin:" + c.GetString(ctxUserID)
	complaint, err := h.Storage.UpdateComplaintStatus(code, req.Status, req.Note, actor)
	switch {
	case errors.Is(err, storage.ErrComplaintNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "no complaint with tracking code " + code})
		return
	case errors.Is(err, storage.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("cannot move complaint %s to %s", code, req.Status)})
		return
	case err != nil:
		log.Printf("ERROR: Failed to update status of %s: %v", code, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update status"})
		return
	}

	c.JSON(http.StatusOK, complaint)
}

type assignDepartmentRequest struct {
	Department string `json:"department" binding:"required"`
}

// AssignDepartment reroutes a complaint to a different department.
func (h *Handler) AssignDepartment(c *gin.Context) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))

	var req assignDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "department is required"})
		return
	}

	actor := "admin:" + c.GetString(ctxUserID)
	complaint, err := h.Storage.AssignDepartment(code, strings.TrimSpace(req.Department), actor)
	switch {
	case errors.Is(err, storage.ErrComplaintNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "no complaint with tracking code " + code})
		return
	case err != nil:
		log.Printf("ERROR: Failed to assign department on %s: %v", code, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to assign department"})
		return
	}

	c.JSON(http.StatusOK, complaint)
}
