package classifier

import "strings"

// CategoryOther is the fallback when nothing matches.
const CategoryOther = "Other"

// CategoryProfile describes one complaint category: the keywords that vote
// for it, the subcategories offered to the user for confirmation, and the
// department complaints of this category are routed to.
type CategoryProfile struct {
	Name          string
	Keywords      []string
	Subcategories []string
	Department    string
}

// Categories is the closed enumeration, in fixed order. Keyword-scoring ties
// keep the first-seen category, so this order is part of the contract.
var Categories = []CategoryProfile{
	{
		Name:          "Infrastructure",
		Keywords:      []string{"road", "bridge", "building", "construction", "repair", "maintenance", "pothole", "street", "sidewalk", "streetlight", "footpath"},
		Subcategories: []string{"Roads", "Bridges", "Public Buildings", "Street Lighting"},
		Department:    "Public Works Department",
	},
	{
		Name:          "Healthcare",
		Keywords:      []string{"hospital", "doctor", "medicine", "health", "medical", "treatment", "clinic", "ambulance", "vaccination"},
		Subcategories: []string{"Hospital Services", "Medicine Availability", "Emergency Care"},
		Department:    "Health Department",
	},
	{
		Name:          "Education",
		Keywords:      []string{"school", "teacher", "education", "student", "class", "book", "uniform", "mid-day meal", "scholarship"},
		Subcategories: []string{"School Infrastructure", "Teacher Issues", "Educational Materials"},
		Department:    "Education Department",
	},
	{
		Name:          "Transportation",
		Keywords:      []string{"bus", "transport", "traffic", "vehicle", "auto", "rickshaw", "railway", "station", "parking"},
		Subcategories: []string{"Public Transport", "Traffic Management", "Railway Issues"},
		Department:    "Transport Department",
	},
	{
		Name:          "Environment",
		Keywords:      []string{"pollution", "air", "noise", "tree", "forest", "mining", "dust", "smoke", "deforestation", "wildlife"},
		Subcategories: []string{"Air Pollution", "Noise Pollution", "Deforestation", "Mining Pollution"},
		Department:    "Environment Department",
	},
	{
		Name:          "Public Safety",
		Keywords:      []string{"police", "crime", "safety", "security", "theft", "violence", "harassment", "kidnapping"},
		Subcategories: []string{"Crime", "Police Response", "Public Security"},
		Department:    "Police Department",
	},
	{
		Name:          "Utilities",
		Keywords:      []string{"water", "tap", "pipeline", "leak", "electricity", "power", "outage", "blackout", "transformer", "meter", "garbage", "waste", "sewage", "drainage", "toilet"},
		Subcategories: []string{"Water Supply", "Power Outage", "Waste Management", "Drainage"},
		Department:    "Urban Development Department",
	},
	{
		Name:          "Governance",
		Keywords:      []string{"corruption", "bribe", "officer", "certificate", "license", "ration card", "aadhaar", "tender", "office"},
		Subcategories: []string{"Service Delivery", "Corruption", "Administrative Issues"},
		Department:    "Administrative Department",
	},
	{
		Name:          "Social Services",
		Keywords:      []string{"pension", "welfare", "scheme", "anganwadi", "ration", "disability", "widow", "bpl"},
		Subcategories: []string{"Pension Schemes", "Ration Distribution", "Welfare Programs"},
		Department:    "Social Welfare Department",
	},
	{
		Name:          "Economic Issues",
		Keywords:      []string{"employment", "unemployment", "wages", "mgnrega", "farmer", "agriculture", "irrigation", "loan", "subsidy", "market"},
		Subcategories: []string{"Employment Schemes", "Agriculture", "Wages"},
		Department:    "Rural Development Department",
	},
	{
		Name:       CategoryOther,
		Department: "General Administration",
	},
}

// SeverityProfile pairs a severity level with its indicator keywords.
type SeverityProfile struct {
	Level      string
	Indicators []string
}

// Severities in enumeration order; ties keep the first-seen level. A text
// with no indicator hits defaults to Medium.
var Severities = []SeverityProfile{
	{
		Level:      "Low",
		Indicators: []string{"request", "suggestion", "improvement", "minor", "whenever possible", "inconvenience"},
	},
	{
		Level:      "Medium",
		Indicators: []string{"problem", "issue", "concern", "needs attention", "repair needed", "not working", "pending"},
	},
	{
		Level:      "High",
		Indicators: []string{"severe", "major", "widespread", "dangerous", "broken", "health hazard", "unsafe", "road blocked", "affecting many"},
	},
	{
		Level:      "Critical",
		Indicators: []string{"emergency", "life threatening", "death", "explosion", "collapse", "fire", "flood", "accident", "serious injury", "immediately"},
	},
}

// subcategoryKeywords refine the suggested subcategory once a category is
// chosen. Only the common cases carry hints; the first subcategory is the
// default suggestion.
var subcategoryKeywords = map[string][]string{
	"Roads":             {"road", "street", "pothole", "footpath"},
	"Street Lighting":   {"streetlight", "street light", "lamp"},
	"Water Supply":      {"water", "tap", "pipeline", "shortage"},
	"Power Outage":      {"outage", "blackout", "no power", "electricity"},
	"Waste Management":  {"garbage", "waste", "dump"},
	"Drainage":          {"drainage", "sewage", "drain"},
	"Hospital Services": {"hospital", "doctor", "treatment"},
	"Emergency Care":    {"ambulance", "emergency"},
	"Crime":             {"theft", "robbery", "crime"},
	"Public Transport":  {"bus", "auto", "rickshaw"},
	"Railway Issues":    {"railway", "train", "station"},
	"Air Pollution":     {"air", "smoke", "dust"},
	"Noise Pollution":   {"noise", "loudspeaker"},
}

// CategoryNames returns the enumeration in order, for prompts and validation.
func CategoryNames() []string {
	names := make([]string, 0, len(Categories))
	for _, c := range Categories {
		names = append(names, c.Name)
	}
	return names
}

// SeverityLevels returns the four levels in enumeration order.
func SeverityLevels() []string {
	levels := make([]string, 0, len(Severities))
	for _, s := range Severities {
		levels = append(levels, s.Level)
	}
	return levels
}

// CategoryByName resolves a category name case-insensitively. The bool is
// false for names outside the enumeration.
func CategoryByName(name string) (CategoryProfile, bool) {
	for _, c := range Categories {
		if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			return c, true
		}
	}
	return CategoryProfile{}, false
}

// ValidSeverity resolves a severity level case-insensitively.
func ValidSeverity(level string) (string, bool) {
	for _, s := range Severities {
		if strings.EqualFold(s.Level, strings.TrimSpace(level)) {
			return s.Level, true
		}
	}
	return "", false
}

// DepartmentFor returns the owning department for a category, falling back
// to General Administration for unknown names.
func DepartmentFor(category string) string {
	if c, ok := CategoryByName(category); ok {
		return c.Department
	}
	return "General Administration"
}

// SuggestSubcategory picks the subcategory whose hint keywords appear in the
// text, defaulting to the category's first subcategory.
func SuggestSubcategory(text, category string) string {
	profile, ok := CategoryByName(category)
	if !ok || len(profile.Subcategories) == 0 {
		return ""
	}
	lower := strings.ToLower(text)
	for _, sub := range profile.Subcategories {
		for _, kw := range subcategoryKeywords[sub] {
			if strings.Contains(lower, kw) {
				return sub
			}
		}
	}
	return profile.Subcategories[0]
}
