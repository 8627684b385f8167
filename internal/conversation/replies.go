package conversation

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/mayankshukla2904/nagrik-backend/internal/classifier"
	"github.com/mayankshukla2904/nagrik-backend/internal/dedup"
	"github.com/mayankshukla2904/nagrik-backend/internal/localization"
	"github.com/mayankshukla2904/nagrik-backend/internal/storage"
)

func (m *Machine) text(lang, key string) string {
	return m.Localizer.GetString(lang, key)
}

func (m *Machine) textf(lang, key string, args ...interface{}) string {
	return m.Localizer.Format(lang, key, args...)
}

// subcategoryMenu renders the numbered options for the category-confirm
// state. The citizen answers with a number or "other".
func (m *Machine) subcategoryMenu(lang string, profile classifier.CategoryProfile) string {
	var options strings.Builder
	for i, subcategory := range profile.Subcategories {
		fmt.Fprintf(&options, "%d. %s\n", i+1, subcategory)
	}
	return m.textf(lang, "category_confirm", profile.Name, strings.TrimRight(options.String(), "\n"))
}

// duplicateList renders the ranked candidates for the duplicate decision.
func (m *Machine) duplicateList(lang string, candidates []dedup.Candidate) string {
	var lines strings.Builder
	for i, candidate := range candidates {
		fmt.Fprintf(&lines, "%d. %s (%d supporters)\n   %s\n", i+1, candidate.Title, candidate.UpvoteCount, candidate.Summary)
	}
	return m.textf(lang, "duplicates_found", strings.TrimRight(lines.String(), "\n"))
}

// confirmSummary shows the draft before submission.
func (m *Machine) confirmSummary(lang string, draft Draft) string {
	category := draft.Classification.Category
	subcategory := draft.Subcategory
	if subcategory == "" {
		subcategory = draft.Classification.Subcategory
	}
	if subcategory != "" {
		category = category + " / " + subcategory
	}

	where := draft.Address
	if where == "" && draft.HasCoordinates {
		where = fmt.Sprintf("%.5f, %.5f", draft.Latitude, draft.Longitude)
	}
	if draft.District != "" && !strings.Contains(strings.ToLower(where), strings.ToLower(draft.District)) {
		where = where + " (" + draft.District + ")"
	}

	return m.textf(lang, "confirm_summary",
		draft.Title, category, draft.Classification.Severity, where, len(draft.MediaFileIDs))
}

func (m *Machine) statusReply(lang, code string) string {
	complaint, err := m.Storage.GetComplaintByTrackingCode(strings.ToUpper(strings.TrimSpace(code)))
	if errors.Is(err, storage.ErrComplaintNotFound) {
		return m.textf(lang, "status_not_found", code)
	}
	if err != nil {
		return m.text(lang, "generic_error")
	}

	return m.textf(lang, "status_found",
		complaint.TrackingCode, complaint.Title, complaint.Status,
		complaint.Priority, complaint.UpvoteCount, complaint.Department)
}

func (m *Machine) trendingReply(lang string) string {
	complaints, err := m.Storage.TrendingComplaints(5)
	if err != nil {
		return m.text(lang, "generic_error")
	}
	if len(complaints) == 0 {
		return m.text(lang, "trending_empty")
	}

	var lines strings.Builder
	for i, complaint := range complaints {
		fmt.Fprintf(&lines, "%d. %s (%s, %d supporters)\n", i+1, complaint.Title, complaint.Category, complaint.UpvoteCount)
	}
	return m.textf(lang, "trending_header", strings.TrimRight(lines.String(), "\n"))
}

func (m *Machine) myComplaintsReply(session *Session) string {
	complaints, err := m.Storage.GetComplaintsByReporter(session.UserID, 5)
	if err != nil {
		return m.text(session.Language, "generic_error")
	}
	if len(complaints) == 0 {
		return m.text(session.Language, "my_complaints_empty")
	}

	var lines strings.Builder
	for _, complaint := range complaints {
		fmt.Fprintf(&lines, "%s - %s (%s)\n", complaint.TrackingCode, complaint.Title, complaint.Status)
	}
	return m.textf(session.Language, "my_complaints_header", strings.TrimRight(lines.String(), "\n"))
}

// languageReply switches the session language and persists the preference.
// Unlike every other session field, language may change at any state.
func (m *Machine) languageReply(session *Session, arg string) string {
	switch arg {
	case "":
		return m.text(session.Language, "language_prompt")
	case localization.LanguageEnglish, localization.LanguageHindi:
		session.Language = arg
		if err := m.Storage.UpdateUserLanguage(session.UserID, arg); err != nil {
			log.Printf("WARN: Failed to persist language %s for user %s: %v", arg, session.UserID, err)
		}
		return m.text(arg, "language_set")
	}

	return m.text(session.Language, "language_unknown")
}
