package conversation

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/mayankshukla2904/nagrik-backend/internal/classifier"
	"github.com/mayankshukla2904/nagrik-backend/internal/config"
	"github.com/mayankshukla2904/nagrik-backend/internal/dedup"
	"github.com/mayankshukla2904/nagrik-backend/internal/localization"
	"github.com/mayankshukla2904/nagrik-backend/internal/location"
	"github.com/mayankshukla2904/nagrik-backend/internal/models"
	"github.com/mayankshukla2904/nagrik-backend/internal/storage"
	"github.com/mayankshukla2904/nagrik-backend/internal/upvote"
)

// intentKeywords open the intake flow from the greeting state.
var intentKeywords = []string{
	"complaint", "report", "file", "register", "problem", "issue",
	"shikayat", "शिकायत", "समस्या",
}

// Machine drives every conversation. One Handle call processes one inbound
// event for one user; calls for the same user serialize on the session lock,
// calls for different users run freely in parallel.
type Machine struct {
	Sessions  *SessionStore
	Storage   storage.Storage
	Cascade   *classifier.Cascade
	Detector  *dedup.Detector
	Upvotes   *upvote.Service
	Localizer *localization.Localizer
	Channel   string
}

func NewMachine(sessions *SessionStore, store storage.Storage, cascade *classifier.Cascade, detector *dedup.Detector, upvotes *upvote.Service, localizer *localization.Localizer, channel string) *Machine {
	return &Machine{
		Sessions:  sessions,
		Storage:   store,
		Cascade:   cascade,
		Detector:  detector,
		Upvotes:   upvotes,
		Localizer: localizer,
		Channel:   channel,
	}
}

// Handle processes one inbound event and returns the resulting session
// snapshot plus the outbound reply text. It never panics past this frame:
// any internal failure rolls the session back to its pre-event state and
// degrades to the generic fallback reply.
func (m *Machine) Handle(ctx context.Context, userID string, event Event) (snapshot Snapshot, reply string) {
	session, created := m.Sessions.GetOrCreate(userID)

	session.mu.Lock()
	defer session.mu.Unlock()

	entryState := session.State
	entryDraft := session.Draft
	entryCandidates := session.Candidates
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ERROR: Conversation handler panic for user %s in state %s: %v", userID, entryState, r)
			session.State = entryState
			session.Draft = entryDraft
			session.Candidates = entryCandidates
			reply = m.text(session.Language, "generic_error")
			snapshot = session.snapshot()
		}
	}()

	if created {
		session.Language = m.initialLanguage(userID, event)
	}
	session.touch()

	if event.Kind == EventCommand {
		reply = m.handleCommand(session, event)
		return session.snapshot(), reply
	}
	if event.Kind == EventText {
		if global, handled := m.interceptGlobalText(session, event.Text); handled {
			return session.snapshot(), global
		}
	}

	reply = m.transition(ctx, session, event, created)
	return session.snapshot(), reply
}

// initialLanguage fixes the session language at first contact. A persisted
// Hindi preference wins; otherwise the first message decides.
func (m *Machine) initialLanguage(userID string, event Event) string {
	detected := localization.DetectLanguage(event.Text)

	user, err := m.Storage.GetUserByID(userID)
	if err != nil {
		log.Printf("WARN: Could not load user %s for language preference: %v", userID, err)
		return detected
	}
	if user != nil && user.Language == localization.LanguageHindi {
		return localization.LanguageHindi
	}
	return detected
}

// interceptGlobalText routes bare keywords that work in any state without
// touching the draft. Only whole-message matches count, so a title that
// merely contains "help" is not hijacked.
func (m *Machine) interceptGlobalText(session *Session, text string) (string, bool) {
	lowered := strings.ToLower(strings.TrimSpace(text))

	switch {
	case lowered == "help":
		return m.text(session.Language, "help"), true
	case lowered == "trending":
		return m.trendingReply(session.Language), true
	case lowered == "cancel":
		return m.cancelDraft(session), true
	case strings.HasPrefix(lowered, "status "):
		code := strings.TrimSpace(strings.TrimSpace(text)[len("status "):])
		return m.statusReply(session.Language, code), true
	case lowered == "language" || strings.HasPrefix(lowered, "language "):
		arg := strings.TrimSpace(strings.TrimPrefix(lowered, "language"))
		return m.languageReply(session, arg), true
	}

	return "", false
}

func (m *Machine) handleCommand(session *Session, event Event) string {
	arg := strings.TrimSpace(event.Text)

	switch event.Command {
	case "start":
		session.resetDraft()
		session.State = StateGreeting
		return m.text(session.Language, "welcome")
	case "help":
		return m.text(session.Language, "help")
	case "cancel":
		return m.cancelDraft(session)
	case "status":
		if arg == "" {
			return m.text(session.Language, "status_usage")
		}
		return m.statusReply(session.Language, arg)
	case "trending":
		return m.trendingReply(session.Language)
	case "mycomplaints":
		return m.myComplaintsReply(session)
	case "language":
		return m.languageReply(session, strings.ToLower(arg))
	}

	return m.text(session.Language, "help")
}

func (m *Machine) transition(ctx context.Context, session *Session, event Event, created bool) string {
	switch session.State {
	case StateGreeting:
		return m.handleGreeting(session, event, created)
	case StateAwaitingTitle:
		return m.handleTitle(session, event)
	case StateAwaitingDescription:
		return m.handleDescription(ctx, session, event)
	case StateCategoryConfirm:
		return m.handleCategoryConfirm(session, event)
	case StateAwaitingLocation:
		return m.handleLocation(session, event)
	case StateAwaitingMedia:
		return m.handleMedia(ctx, session, event)
	case StateDuplicateDecision:
		return m.handleDuplicateDecision(ctx, session, event)
	case StateConfirming:
		return m.handleConfirming(ctx, session, event)
	}

	// A stray event on a terminal session restarts the conversation.
	session.resetDraft()
	session.State = StateGreeting
	return m.text(session.Language, "welcome")
}

func (m *Machine) handleGreeting(session *Session, event Event, created bool) string {
	if event.Kind == EventText && matchesIntent(event.Text) {
		session.State = StateAwaitingTitle
		return m.text(session.Language, "prompt_title")
	}
	if created {
		return m.text(session.Language, "welcome")
	}
	return m.text(session.Language, "greeting_hint")
}

func (m *Machine) handleTitle(session *Session, event Event) string {
	if event.Kind != EventText {
		return m.text(session.Language, "prompt_title")
	}

	title := strings.TrimSpace(event.Text)
	length := len([]rune(title))
	if length < config.TitleMinLength {
		return m.textf(session.Language, "title_too_short", config.TitleMinLength)
	}
	if length > config.TitleMaxLength {
		return m.textf(session.Language, "title_too_long", config.TitleMaxLength)
	}

	session.Draft.Title = title

	probe := classifier.KeywordClassify(title, "")
	if probe.Confidence > config.TitleCategoryConfidence && probe.Category != classifier.CategoryOther {
		if profile, ok := classifier.CategoryByName(probe.Category); ok && len(profile.Subcategories) > 0 {
			session.Draft.Classification = probe
			session.State = StateCategoryConfirm
			return m.subcategoryMenu(session.Language, profile)
		}
	}

	session.State = StateAwaitingDescription
	return m.textf(session.Language, "prompt_description", config.DescriptionMinLength, config.DescriptionMaxLength)
}

func (m *Machine) handleDescription(ctx context.Context, session *Session, event Event) string {
	if event.Kind != EventText {
		return m.textf(session.Language, "prompt_description", config.DescriptionMinLength, config.DescriptionMaxLength)
	}

	description := strings.TrimSpace(event.Text)
	length := len([]rune(description))
	if length < config.DescriptionMinLength {
		return m.textf(session.Language, "description_too_short", config.DescriptionMinLength)
	}
	if length > config.DescriptionMaxLength {
		return m.textf(session.Language, "description_too_long", config.DescriptionMaxLength)
	}

	session.Draft.Description = description
	session.Draft.Classification = m.Cascade.Classify(ctx, session.Draft.Title, description, session.Draft.Address)

	result := session.Draft.Classification
	if result.Confidence > config.TitleCategoryConfidence && result.Category != classifier.CategoryOther {
		if profile, ok := classifier.CategoryByName(result.Category); ok && len(profile.Subcategories) > 0 {
			session.State = StateCategoryConfirm
			return m.subcategoryMenu(session.Language, profile)
		}
	}

	session.State = StateAwaitingLocation
	return m.text(session.Language, "prompt_location")
}

func (m *Machine) handleCategoryConfirm(session *Session, event Event) string {
	if event.Kind != EventText {
		return m.text(session.Language, "category_invalid")
	}

	choice := strings.ToLower(strings.TrimSpace(event.Text))
	profile, ok := classifier.CategoryByName(session.Draft.Classification.Category)
	if !ok {
		session.State = StateAwaitingLocation
		return m.text(session.Language, "prompt_location")
	}

	if choice == "other" {
		session.Draft.Subcategory = ""
		session.State = StateAwaitingLocation
		return m.text(session.Language, "prompt_location")
	}

	if n, err := strconv.Atoi(choice); err == nil && n >= 1 && n <= len(profile.Subcategories) {
		session.Draft.Subcategory = profile.Subcategories[n-1]
		session.State = StateAwaitingLocation
		return m.text(session.Language, "prompt_location")
	}

	return m.text(session.Language, "category_invalid")
}

func (m *Machine) handleLocation(session *Session, event Event) string {
	switch event.Kind {
	case EventLocation:
		session.Draft.Latitude = event.Latitude
		session.Draft.Longitude = event.Longitude
		session.Draft.HasCoordinates = true
		session.State = StateAwaitingMedia
		return m.textf(session.Language, "prompt_media", config.MediaAttachmentCap)
	case EventText:
		address := strings.TrimSpace(event.Text)
		if len([]rune(address)) < config.LocationMinLength {
			return m.textf(session.Language, "location_too_short", config.LocationMinLength)
		}

		session.Draft.Address = address
		info := location.Validate(address)
		if info.District != "" {
			session.Draft.District = info.District
			if info.Coordinates != nil && !session.Draft.HasCoordinates {
				session.Draft.Latitude = info.Coordinates.Latitude
				session.Draft.Longitude = info.Coordinates.Longitude
				session.Draft.HasCoordinates = true
			}
		}

		session.State = StateAwaitingMedia
		reply := m.textf(session.Language, "prompt_media", config.MediaAttachmentCap)
		if info.District != "" {
			reply = m.textf(session.Language, "location_noted_district", info.District) + "\n\n" + reply
		}
		return reply
	}

	return m.text(session.Language, "prompt_location")
}

func (m *Machine) handleMedia(ctx context.Context, session *Session, event Event) string {
	switch event.Kind {
	case EventMedia:
		if event.MediaFileID != "" && len(session.Draft.MediaFileIDs) < config.MediaAttachmentCap {
			session.Draft.MediaFileIDs = append(session.Draft.MediaFileIDs, event.MediaFileID)
		}
		if len(session.Draft.MediaFileIDs) >= config.MediaAttachmentCap {
			return m.advanceAfterMedia(ctx, session)
		}
		return m.textf(session.Language, "media_received", len(session.Draft.MediaFileIDs), config.MediaAttachmentCap)
	case EventText:
		word := strings.ToLower(strings.TrimSpace(event.Text))
		if word == "skip" || word == "done" || word == "no" || word == "none" {
			return m.advanceAfterMedia(ctx, session)
		}
	}

	return m.text(session.Language, "media_hint")
}

// advanceAfterMedia runs the duplicate search and routes the session to the
// duplicate decision or straight to confirmation. A failed search degrades
// to "no duplicates": filing must not be blocked by a detector outage.
func (m *Machine) advanceAfterMedia(ctx context.Context, session *Session) string {
	searchCtx, cancel := context.WithTimeout(ctx, config.DuplicateSearchTimeout)
	candidates, err := m.Detector.FindCandidates(searchCtx, session.Draft.Title, session.Draft.Description,
		session.Draft.Classification.Category, session.Draft.District)
	cancel()
	if err != nil {
		log.Printf("WARN: Duplicate search degraded for user %s: %v", session.UserID, err)
		candidates = nil
	}

	if len(candidates) > 0 {
		session.Candidates = candidates
		session.State = StateDuplicateDecision
		return m.duplicateList(session.Language, candidates)
	}

	session.State = StateConfirming
	return m.confirmSummary(session.Language, session.Draft)
}

func (m *Machine) handleDuplicateDecision(ctx context.Context, session *Session, event Event) string {
	if event.Kind != EventText {
		return m.text(session.Language, "duplicate_invalid")
	}

	choice := strings.ToLower(strings.TrimSpace(event.Text))
	switch choice {
	case "new", "proceed", "continue", "mine":
		session.State = StateConfirming
		return m.confirmSummary(session.Language, session.Draft)
	}

	choice = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(choice, "reinforce"), "support"))
	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(session.Candidates) {
		return m.text(session.Language, "duplicate_invalid")
	}

	chosen := session.Candidates[n-1]
	complaint, err := m.Upvotes.Reinforce(ctx, chosen.TrackingCode, session.UserID)
	switch {
	case errors.Is(err, upvote.ErrAlreadyReinforced):
		return m.text(session.Language, "already_reinforced")
	case errors.Is(err, upvote.ErrNotFound):
		return m.text(session.Language, "reinforce_not_found")
	case err != nil:
		return m.text(session.Language, "reinforce_failed")
	}

	session.State = StateDone
	reply := m.textf(session.Language, "reinforced",
		complaint.Title, complaint.UpvoteCount, complaint.Priority, complaint.TrackingCode)
	m.Sessions.Delete(session.UserID)
	return reply
}

func (m *Machine) handleConfirming(ctx context.Context, session *Session, event Event) string {
	if event.Kind != EventText {
		return m.text(session.Language, "confirm_invalid")
	}

	switch strings.ToLower(strings.TrimSpace(event.Text)) {
	case "confirm", "yes", "submit", "haan":
		return m.finalize(ctx, session)
	case "cancel":
		return m.cancelDraft(session)
	case "edit":
		session.State = StateAwaitingTitle
		return m.text(session.Language, "prompt_title")
	}

	return m.text(session.Language, "confirm_invalid")
}

// finalize turns the draft into a durable complaint. On any storage failure
// the draft and state survive so the citizen can simply try again.
func (m *Machine) finalize(ctx context.Context, session *Session) string {
	allowed, err := m.Storage.AllowSubmission(session.UserID)
	if err != nil {
		log.Printf("WARN: Rate limiter unavailable for user %s, allowing submission: %v", session.UserID, err)
		allowed = true
	}
	if !allowed {
		return m.textf(session.Language, "rate_limited", config.SubmissionsPerHour)
	}

	result := session.Draft.Classification
	if result.Category == "" {
		result = m.Cascade.Classify(ctx, session.Draft.Title, session.Draft.Description, session.Draft.Address)
		session.Draft.Classification = result
	}

	subcategory := session.Draft.Subcategory
	if subcategory == "" {
		subcategory = result.Subcategory
	}

	complaint := &models.Complaint{
		ReporterID:       session.UserID,
		Title:            session.Draft.Title,
		Description:      session.Draft.Description,
		Category:         result.Category,
		Subcategory:      subcategory,
		Severity:         result.Severity,
		Priority:         models.PriorityForSeverity(result.Severity),
		Department:       result.Department,
		Channel:          m.Channel,
		Language:         session.Language,
		Address:          session.Draft.Address,
		District:         session.Draft.District,
		Latitude:         session.Draft.Latitude,
		Longitude:        session.Draft.Longitude,
		Confidence:       result.Confidence,
		ClassifierSource: result.Source,
		MatchedKeywords:  pq.StringArray(result.MatchedKeywords),
		ExtractedInfo:    result.ExtractedInfo,
		MediaFileIDs:     pq.StringArray(session.Draft.MediaFileIDs),
		Supporters:       pq.StringArray{},
	}

	if err := m.Storage.SaveComplaint(complaint); err != nil {
		return m.text(session.Language, "submission_failed")
	}

	session.State = StateDone
	reply := m.textf(session.Language, "submitted",
		complaint.TrackingCode, complaint.Department, complaint.Status, complaint.TrackingCode)
	m.Sessions.Delete(session.UserID)
	return reply
}

func (m *Machine) cancelDraft(session *Session) string {
	session.resetDraft()
	session.State = StateGreeting
	return m.text(session.Language, "cancelled")
}

func matchesIntent(text string) bool {
	lowered := strings.ToLower(text)
	for _, keyword := range intentKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
