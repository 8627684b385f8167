package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mayankshukla2904/nagrik-backend/internal/api/handler"
	"github.com/mayankshukla2904/nagrik-backend/internal/classifier"
	"github.com/mayankshukla2904/nagrik-backend/internal/config"
	"github.com/mayankshukla2904/nagrik-backend/internal/dashhub"
	"github.com/mayankshukla2904/nagrik-backend/internal/dedup"
	"github.com/mayankshukla2904/nagrik-backend/internal/models"
	"github.com/mayankshukla2904/nagrik-backend/internal/storage"
	"github.com/mayankshukla2904/nagrik-backend/internal/upvote"
)

// Intake fixtures. The description scores three Utilities keyword hits, so
// the keyword tier classifies it without any external tier wired in.
const (
	webTitle       = "Garbage not being cleared"
	webDescription = "Garbage has been piling up near the park gate and sewage water overflows the drain every morning"
	webAddress     = "Near Albert Ekka Chowk, Ranchi"
)

// setupAPI builds a router with every route registered against the mock
// store. The cascade runs keyword-only and the detector and upvote service
// share the same mock.
func setupAPI(store *MockStorage) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	h := handler.NewHandler(store, dashhub.NewHub(), classifier.NewCascade(nil, nil), dedup.NewDetector(store), upvote.NewService(store))
	h.RegisterRoutes(router)
	return router
}

// doRequest issues one request against the router, attaching the bearer
// token and JSON body when given.
func doRequest(router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// citizenToken obtains an anonymous citizen token from the auth endpoint.
func citizenToken(t *testing.T, router *gin.Engine) (token, citizenID string) {
	t.Helper()

	w := doRequest(router, http.MethodPost, "/api/v1/auth/token", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Token     string `json:"token"`
		CitizenID string `json:"citizen_id"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Token)
	assert.NotEmpty(t, body.CitizenID)
	return body.Token, body.CitizenID
}

// adminToken configures admin credentials and exchanges them for a token.
func adminToken(t *testing.T, router *gin.Engine) string {
	t.Helper()

	t.Setenv("ADMIN_USERNAME", "rmc-admin")
	t.Setenv("ADMIN_PASSWORD", "ward-office-only")

	w := doRequest(router, http.MethodPost, "/api/v1/auth/admin", "",
		`{"username":"rmc-admin","password":"ward-office-only"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Token string `json:"token"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Token)
	return body.Token
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func jsonBody(t *testing.T, v interface{}) string {
	t.Helper()

	raw, err := json.Marshal(v)
	assert.NoError(t, err)
	return string(raw)
}

// TestIssueCitizenToken verifies that every call mints a fresh anonymous
// identity.
func TestIssueCitizenToken(t *testing.T) {
	// Arrange
	store := &MockStorage{}
	router := setupAPI(store)

	// Act
	_, firstID := citizenToken(t, router)
	_, secondID := citizenToken(t, router)

	// Assert
	assert.NotEqual(t, firstID, secondID)
}

// TestAdminLogin verifies the admin credential exchange and its failure
// modes.
func TestAdminLogin(t *testing.T) {
	// Arrange
	store := &MockStorage{}
	router := setupAPI(store)

	// No credentials configured.
	t.Setenv("ADMIN_USERNAME", "")
	t.Setenv("ADMIN_PASSWORD", "")
	w := doRequest(router, http.MethodPost, "/api/v1/auth/admin", "", `{"username":"x","password":"y"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "admin access is not configured")

	// Wrong credentials.
	t.Setenv("ADMIN_USERNAME", "rmc-admin")
	t.Setenv("ADMIN_PASSWORD", "ward-office-only")
	w = doRequest(router, http.MethodPost, "/api/v1/auth/admin", "", `{"username":"rmc-admin","password":"guess"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid credentials")

	// Missing fields fail binding.
	w = doRequest(router, http.MethodPost, "/api/v1/auth/admin", "", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Correct credentials.
	w = doRequest(router, http.MethodPost, "/api/v1/auth/admin", "", `{"username":"rmc-admin","password":"ward-office-only"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "token")
}

// TestCreateComplaint_RequiresAuth verifies that intake rejects missing and
// malformed tokens before touching any service.
func TestCreateComplaint_RequiresAuth(t *testing.T) {
	// Arrange
	store := &MockStorage{}
	router := setupAPI(store)
	payload := jsonBody(t, gin.H{"title": webTitle, "description": webDescription, "address": webAddress})

	// No token.
	w := doRequest(router, http.MethodPost, "/api/v1/complaints", "", payload)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authorization token missing")

	// Garbage token.
	w = doRequest(router, http.MethodPost, "/api/v1/complaints", "not-a-jwt", payload)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid token or expired")

	store.AssertNotCalled(t, "AllowSubmission", mock.Anything)
	store.AssertNotCalled(t, "SaveComplaint", mock.Anything)
}

// TestCreateComplaint_Success verifies the happy path: the request is
// classified, the district is derived from the address, and the registered
// complaint is returned with its tracking code.
func TestCreateComplaint_Success(t *testing.T) {
	// Arrange
	store := &MockStorage{}
	router := setupAPI(store)
	token, citizenID := citizenToken(t, router)

	store.On("AllowSubmission", citizenID).Return(true, nil).Once()
	store.On("FindOpenSimilar", mock.Anything, "Utilities", "Ranchi", config.DuplicatePoolLimit).
		Return([]models.Complaint{}, nil).Once()

	var saved *models.Complaint
	store.On("SaveComplaint", mock.AnythingOfType("*models.Complaint")).Run(func(args mock.Arguments) {
		// Mimic the BeforeCreate hook the real database would run.
		saved = args.Get(0).(*models.Complaint)
		saved.TrackingCode = "NGR-20250114-0AB12"
		saved.Status = models.StatusSubmitted
	}).Return(nil).Once()

	payload := jsonBody(t, gin.H{"title": webTitle, "description": webDescription, "address": webAddress})

	// Act
	w := doRequest(router, http.MethodPost, "/api/v1/complaints", token, payload)

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)

	var got models.Complaint
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "NGR-20250114-0AB12", got.TrackingCode)
	assert.Equal(t, citizenID, got.ReporterID)
	assert.Equal(t, webTitle, got.Title)
	assert.Equal(t, webDescription, got.Description)
	assert.Equal(t, "Utilities", got.Category)
	assert.Equal(t, "Water Supply", got.Subcategory)
	assert.Equal(t, models.SeverityMedium, got.Severity)
	assert.Equal(t, models.PriorityMedium, got.Priority)
	assert.Equal(t, "Urban Development Department", got.Department)
	assert.Equal(t, models.ChannelWeb, got.Channel)
	assert.Equal(t, "en", got.Language)
	assert.Equal(t, models.StatusSubmitted, got.Status)
	assert.Equal(t, webAddress, got.Address)
	assert.Equal(t, "Ranchi", got.District)
	assert.InDelta(t, 23.3441, got.Latitude, 0.0001)
	assert.InDelta(t, 85.3096, got.Longitude, 0.0001)
	assert.InDelta(t, 0.3, got.Confidence, 0.0001)
	assert.Equal(t, classifier.SourceKeyword, got.ClassifierSource)
	assert.ElementsMatch(t, []string{"water", "garbage", "sewage"}, got.MatchedKeywords)

	// Supporter and media internals never leak into the response.
	assert.NotContains(t, w.Body.String(), "supporters")
	assert.Empty(t, saved.Supporters)
	assert.Empty(t, saved.MediaFileIDs)

	store.AssertExpectations(t)
}

// TestCreateComplaint_ValidationErrors verifies that the web path enforces
// the same field rules the chat flow does, one message per violation.
func TestCreateComplaint_ValidationErrors(t *testing.T) {
	// Arrange
	store := &MockStorage{}
	router := setupAPI(store)
	token, citizenID := citizenToken(t, router)
	store.On("AllowSubmission", citizenID).Return(true, nil)

	// Missing description fails binding outright.
	w := doRequest(router, http.MethodPost, "/api/v1/complaints", token, `{"title":"only a title here"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "title and description are required")

	// Short title, short description and no location collect three errors.
	w = doRequest(router, http.MethodPost, "/api/v1/complaints", token, `{"title":"Bad","description":"too short"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	errs, ok := body["errors"].([]interface{})
	assert.True(t, ok)
	assert.Len(t, errs, 3)
	assert.Contains(t, w.Body.String(), "title must be at least 10 characters")
	assert.Contains(t, w.Body.String(), "description must be at least 20 characters")
	assert.Contains(t, w.Body.String(), "either address or coordinates are required")

	// A district outside the state is rejected by name.
	payload := jsonBody(t, gin.H{
		"title":       "Deep pothole on the main road",
		"description": "The road near the temple is blocked by a deep pothole",
		"address":     "Near the main temple road",
		"district":    "Atlantis",
	})
	w = doRequest(router, http.MethodPost, "/api/v1/complaints", token, payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown district: Atlantis")

	store.AssertNotCalled(t, "SaveComplaint", mock.Anything)
	store.AssertNotCalled(t, "FindOpenSimilar", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestCreateComplaint_DuplicateConflict verifies that similar open complaints
// block a plain submission and that force=true files anyway.
func TestCreateComplaint_DuplicateConflict(t *testing.T) {
	// Arrange
	store := &MockStorage{}
	router := setupAPI(store)
	token, citizenID := citizenToken(t, router)

	pool := []models.Complaint{{
		TrackingCode: "NGR-20250110-00A01",
		Title:        webTitle,
		Description:  webDescription,
		Category:     "Utilities",
		District:     "Ranchi",
		Status:       models.StatusSubmitted,
		UpvoteCount:  3,
	}}
	store.On("AllowSubmission", citizenID).Return(true, nil)
	store.On("FindOpenSimilar", mock.Anything, "Utilities", "Ranchi", config.DuplicatePoolLimit).
		Return(pool, nil)

	payload := jsonBody(t, gin.H{"title": webTitle, "description": webDescription, "address": webAddress})

	// Act: plain submission hits the duplicate gate.
	w := doRequest(router, http.MethodPost, "/api/v1/complaints", token, payload)

	// Assert
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "similar open complaints already exist")
	assert.Contains(t, w.Body.String(), "NGR-20250110-00A01")
	store.AssertNotCalled(t, "SaveComplaint", mock.Anything)

	// Act: the forced resubmission skips the gate.
	store.On("SaveComplaint", mock.AnythingOfType("*models.Complaint")).Run(func(args mock.Arguments) {
		complaint := args.Get(0).(*models.Complaint)
		complaint.TrackingCode = "NGR-20250114-0CD34"
		complaint.Status = models.StatusSubmitted
	}).Return(nil).Once()

	forced := jsonBody(t, gin.H{"title": webTitle, "description": webDescription, "address": webAddress, "force": true})
	w = doRequest(router, http.MethodPost, "/api/v1/complaints", token, forced)

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "NGR-20250114-0CD34")
	store.AssertExpectations(t)
}

// TestCreateComplaint_RateLimited verifies the hourly budget, and that a
// broken limiter fails open instead of blocking intake.
func TestCreateComplaint_RateLimited(t *testing.T) {
	// Arrange
	store := &MockStorage{}
	router := setupAPI(store)
	token, citizenID := citizenToken(t, router)
	payload := jsonBody(t, gin.H{"title": webTitle, "description": webDescription, "address": webAddress})

	// Budget exhausted.
	store.On("AllowSubmission", citizenID).Return(false, nil).Once()
	w := doRequest(router, http.MethodPost, "/api/v1/complaints", token, payload)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "submission limit of 5 per hour reached")
	store.AssertNotCalled(t, "SaveComplaint", mock.Anything)

	// Limiter down: the request goes through.
	store.On("AllowSubmission", citizenID).Return(false, errors.New("limiter unavailable")).Once()
	store.On("FindOpenSimilar", mock.Anything, "Utilities", "Ranchi", config.DuplicatePoolLimit).
		Return([]models.Complaint{}, nil).Once()
	store.On("SaveComplaint", mock.AnythingOfType("*models.Complaint")).Run(func(args mock.Arguments) {
		complaint := args.Get(0).(*models.Complaint)
		complaint.TrackingCode = "NGR-20250114-0EF56"
		complaint.Status = models.StatusSubmitted
	}).Return(nil).Once()

	w = doRequest(router, http.MethodPost, "/api/v1/complaints", token, payload)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "NGR-20250114-0EF56")
	store.AssertExpectations(t)
}

// TestGetComplaint verifies the public status lookup, including tracking
// code normalization and the not-found reply.
func TestGetComplaint(t *testing.T) {
	// Arrange
	store := &MockStorage{}
	router := setupAPI(store)

	complaint := &models.Complaint{
		TrackingCode: "NGR-20250110-00A01",
		Title:        "Streetlight out near the park",
		Status:       models.StatusInProgress,
		Priority:     models.PriorityHigh,
		UpvoteCount:  7,
	}
	store.On("GetComplaintByTrackingCode", "NGR-20250110-00A01").Return(complaint, nil).Once()
	store.On("GetComplaintByTrackingCode", "NGR-20991231-ZZZZZ").Return(nil, storage.ErrComplaintNotFound).Once()

	// Act: a lowercase code still resolves.
	w := doRequest(router, http.MethodGet, "/api/v1/complaints/ngr-20250110-00a01", "", "")

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	var got models.Complaint
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "NGR-20250110-00A01", got.TrackingCode)
	assert.Equal(t, models.StatusInProgress, got.Status)
	assert.Equal(t, 7, got.UpvoteCount)

	// Act: unknown code.
	w = doRequest(router, http.MethodGet, "/api/v1/complaints/ngr-20991231-zzzzz", "", "")

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "no complaint with tracking code NGR-20991231-ZZZZZ")
	store.AssertExpectations(t)
}

// TestUpvoteComplaint verifies support registration and its conflict and
// not-found outcomes.
func TestUpvoteComplaint(t *testing.T) {
	// Arrange
	store := &MockStorage{}
	router := setupAPI(store)
	token, citizenID := citizenToken(t, router)

	merged := &models.Complaint{
		TrackingCode: "NGR-20250110-00A01",
		Status:       models.StatusSubmitted,
		Priority:     models.PriorityMedium,
		UpvoteCount:  6,
	}
	store.On("ReinforceComplaint", mock.Anything, "NGR-20250110-00A01", citizenID).Return(merged, nil).Once()
	store.On("ReinforceComplaint", mock.Anything, "NGR-20250111-11B22", citizenID).
		Return(nil, storage.ErrAlreadyReinforced).Once()
	store.On("ReinforceComplaint", mock.Anything, "NGR-20991231-ZZZZZ", citizenID).
		Return(nil, storage.ErrComplaintNotFound).Once()

	// No token.
	w := doRequest(router, http.MethodPost, "/api/v1/complaints/NGR-20250110-00A01/upvote", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Act: lowercase code, first reinforcement.
	w = doRequest(router, http.MethodPost, "/api/v1/complaints/ngr-20250110-00a01/upvote", token, "")

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "NGR-20250110-00A01", body["tracking_code"])
	assert.EqualValues(t, 6, body["upvote_count"])
	assert.Equal(t, models.PriorityMedium, body["priority"])
	assert.Equal(t, models.StatusSubmitted, body["status"])

	// Second reinforcement of another complaint by the same citizen.
	w = doRequest(router, http.MethodPost, "/api/v1/complaints/NGR-20250111-11B22/upvote", token, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "you already support this complaint")

	// Unknown or closed complaint.
	w = doRequest(router, http.MethodPost, "/api/v1/complaints/NGR-20991231-ZZZZZ/upvote", token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "no open complaint with tracking code NGR-20991231-ZZZZZ")

	store.AssertExpectations(t)
}

// TestListComplaints verifies that query parameters map onto the storage
// filter and that paging metadata is echoed back.
func TestListComplaints(t *testing.T) {
	// Arrange
	store := &MockStorage{}
	router := setupAPI(store)

	page := []models.Complaint{{
		TrackingCode: "NGR-20250110-00A01",
		Title:        "Streetlight out near the park",
		Status:       models.StatusSubmitted,
	}}
	store.On("ListComplaints", storage.ComplaintFilter{Status: "submitted", Page: 2, PerPage: 10}).
		Return(page, int64(35), nil).Once()
	store.On("ListComplaints", storage.ComplaintFilter{Page: 1, PerPage: 20}).
		Return([]models.Complaint{}, int64(0), nil).Once()

	// Act: explicit filter and paging.
	w := doRequest(router, http.MethodGet, "/api/v1/complaints?status=submitted&page=2&per_page=10", "", "")

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.EqualValues(t, 35, body["total"])
	assert.EqualValues(t, 2, body["page"])
	assert.EqualValues(t, 10, body["per_page"])
	complaints, ok := body["complaints"].([]interface{})
	assert.True(t, ok)
	assert.Len(t, complaints, 1)

	// Act: defaults apply when nothing is passed.
	w = doRequest(router, http.MethodGet, "/api/v1/complaints", "", "")

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	store.AssertExpectations(t)
}

// TestUpdateComplaintStatus verifies the admin-gated lifecycle endpoint:
// role enforcement, status vocabulary, forward-only transitions.
func TestUpdateComplaintStatus(t *testing.T) {
	// Arrange
	store := &MockStorage{}
	router := setupAPI(store)
	admin := adminToken(t, router)
	citizen, _ := citizenToken(t, router)

	// No token.
	w := doRequest(router, http.MethodPatch, "/api/v1/complaints/NGR-20250110-00A01/status", "", `{"status":"in_progress"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Citizen tokens cannot drive the workflow.
	w = doRequest(router, http.MethodPatch, "/api/v1/complaints/NGR-20250110-00A01/status", citizen, `{"status":"in_progress"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "admin token required")

	// Status outside the lifecycle vocabulary.
	w = doRequest(router, http.MethodPatch, "/api/v1/complaints/NGR-20250110-00A01/status", admin, `{"status":"half_done"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown status: half_done")

	// Act: a valid move, actor recorded from the token subject.
	updated := &models.Complaint{TrackingCode: "NGR-20250110-00A01", Status: models.StatusInProgress}
	store.On("UpdateComplaintStatus", "NGR-20250110-00A01", "in_progress", "crew dispatched", "admin:rmc-admin").
		Return(updated, nil).Once()

	w = doRequest(router, http.MethodPatch, "/api/v1/complaints/ngr-20250110-00a01/status", admin,
		`{"status":"in_progress","note":"crew dispatched"}`)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	var got models.Complaint
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, models.StatusInProgress, got.Status)

	// Backward transition is refused by storage.
	store.On("UpdateComplaintStatus", "NGR-20250112-22C33", "submitted", "", "admin:rmc-admin").
		Return(nil, storage.ErrInvalidTransition).Once()
	w = doRequest(router, http.MethodPatch, "/api/v1/complaints/NGR-20250112-22C33/status", admin, `{"status":"submitted"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "cannot move complaint NGR-20250112-22C33 to submitted")

	// Unknown tracking code.
	store.On("UpdateComplaintStatus", "NGR-20991231-ZZZZZ", "resolved", "", "admin:rmc-admin").
		Return(nil, storage.ErrComplaintNotFound).Once()
	w = doRequest(router, http.MethodPatch, "/api/v1/complaints/NGR-20991231-ZZZZZ/status", admin, `{"status":"resolved"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	store.AssertExpectations(t)
}

// TestAssignDepartment verifies rerouting a complaint to another department.
func TestAssignDepartment(t *testing.T) {
	// Arrange
	store := &MockStorage{}
	router := setupAPI(store)
	admin := adminToken(t, router)

	updated := &models.Complaint{TrackingCode: "NGR-20250110-00A01", Department: "Health Department"}
	store.On("AssignDepartment", "NGR-20250110-00A01", "Health Department", "admin:rmc-admin").
		Return(updated, nil).Once()
	store.On("AssignDepartment", "NGR-20991231-ZZZZZ", "Health Department", "admin:rmc-admin").
		Return(nil, storage.ErrComplaintNotFound).Once()

	// Missing department fails binding.
	w := doRequest(router, http.MethodPatch, "/api/v1/complaints/NGR-20250110-00A01/assign", admin, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "department is required")

	// Act
	w = doRequest(router, http.MethodPatch, "/api/v1/complaints/NGR-20250110-00A01/assign", admin,
		`{"department":"Health Department"}`)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	var got models.Complaint
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Health Department", got.Department)

	// Unknown tracking code.
	w = doRequest(router, http.MethodPatch, "/api/v1/complaints/NGR-20991231-ZZZZZ/assign", admin,
		`{"department":"Health Department"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	store.AssertExpectations(t)
}

// TestPreviewDuplicates verifies the pre-submission similarity check,
// including category derivation when the client does not send one.
func TestPreviewDuplicates(t *testing.T) {
	// Arrange
	store := &MockStorage{}
	router := setupAPI(store)
	token, _ := citizenToken(t, router)

	pool := []models.Complaint{{
		TrackingCode: "NGR-20250110-00A01",
		Title:        webTitle,
		Description:  webDescription,
		Status:       models.StatusSubmitted,
		UpvoteCount:  3,
	}}
	store.On("FindOpenSimilar", mock.Anything, "Utilities", "", config.DuplicatePoolLimit).
		Return(pool, nil).Once()

	// Missing title fails binding.
	w := doRequest(router, http.MethodPost, "/api/v1/complaints/duplicates", token, `{"description":"no title"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "title is required")

	// Act
	payload := jsonBody(t, gin.H{"title": webTitle, "description": webDescription})
	w = doRequest(router, http.MethodPost, "/api/v1/complaints/duplicates", token, payload)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Utilities", body["category"])
	assert.EqualValues(t, 1, body["count"])
	candidates, ok := body["candidates"].([]interface{})
	assert.True(t, ok)
	assert.Len(t, candidates, 1)
	first, ok := candidates[0].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, "NGR-20250110-00A01", first["tracking_code"])

	store.AssertExpectations(t)
}
