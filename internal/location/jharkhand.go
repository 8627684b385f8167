// Package location holds the Jharkhand reference data used to resolve
// free-text addresses to an administrative district. The district is the
// coarse location unit duplicate detection pools candidates by, so matching
// here is deliberately forgiving: substring checks against district names
// and well-known localities, no geocoding.
package location

import "strings"

// Coordinates is an optional lat/lon pair for a recognized place.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Info is the result of validating a free-text location.
type Info struct {
	Valid       bool         `json:"valid"`
	District    string       `json:"district,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	// Suggestions lists likely districts when no exact match was found.
	Suggestions []string `json:"suggestions,omitempty"`
}

// Districts lists the 24 administrative districts of Jharkhand.
var Districts = []string{
	"Bokaro", "Chatra", "Deoghar", "Dhanbad", "Dumka", "East Singhbhum",
	"Garhwa", "Giridih", "Godda", "Gumla", "Hazaribagh", "Jamtara",
	"Khunti", "Koderma", "Latehar", "Lohardaga", "Pakur", "Palamu",
	"Ramgarh", "Ranchi", "Sahibganj", "Seraikela Kharsawan",
	"Simdega", "West Singhbhum",
}

var districtCoordinates = map[string]Coordinates{
	"Ranchi":  {Latitude: 23.3441, Longitude: 85.3096},
	"Dhanbad": {Latitude: 23.7957, Longitude: 86.4304},
	"Bokaro":  {Latitude: 23.6693, Longitude: 85.9590},
}

// commonLocalities maps well-known areas and city names to their district,
// so "pothole near Sakchi" still resolves to East Singhbhum.
var commonLocalities = map[string]string{
	"jamshedpur":    "East Singhbhum",
	"bistupur":      "East Singhbhum",
	"sakchi":        "East Singhbhum",
	"kadma":         "East Singhbhum",
	"jugsalai":      "East Singhbhum",
	"mango":         "East Singhbhum",
	"jharia":        "Dhanbad",
	"bank more":     "Dhanbad",
	"saraidhela":    "Dhanbad",
	"katras":        "Dhanbad",
	"kanke road":    "Ranchi",
	"ratu road":     "Ranchi",
	"circular road": "Ranchi",
	"steel city":    "Bokaro",
	"city centre":   "Bokaro",
}

var miningDistricts = []string{"Dhanbad", "Bokaro", "Ramgarh", "East Singhbhum", "West Singhbhum"}
var ruralDistricts = []string{"Khunti", "Gumla", "Simdega", "Latehar", "Pakur", "Dumka", "Sahibganj", "Godda"}
var urbanDistricts = []string{"Ranchi", "Dhanbad", "Bokaro", "Deoghar", "East Singhbhum"}

// Validate resolves a free-text location against the district set. It never
// fails: an unrecognized location yields Valid=false with best-effort
// suggestions the caller may surface to the user.
func Validate(text string) Info {
	info := Info{}
	if strings.TrimSpace(text) == "" {
		return info
	}
	lower := strings.ToLower(text)

	for _, district := range Districts {
		if strings.Contains(lower, strings.ToLower(district)) {
			info.Valid = true
			info.District = district
			if coords, ok := districtCoordinates[district]; ok {
				c := coords
				info.Coordinates = &c
			}
			return info
		}
	}

	for locality, district := range commonLocalities {
		if strings.Contains(lower, locality) {
			info.Valid = true
			info.District = district
			if coords, ok := districtCoordinates[district]; ok {
				c := coords
				info.Coordinates = &c
			}
			return info
		}
	}

	// No district found: suggest by area type keywords.
	switch {
	case containsAny(lower, "mine", "mining", "coal", "colliery"):
		info.Suggestions = append(info.Suggestions, miningDistricts...)
	case containsAny(lower, "village", "gram", "panchayat", "tribal"):
		info.Suggestions = append(info.Suggestions, ruralDistricts...)
	case containsAny(lower, "city", "urban", "municipality", "nagar"):
		info.Suggestions = append(info.Suggestions, urbanDistricts...)
	}

	// Partial word matches against district names as a last resort.
	if len(info.Suggestions) == 0 {
		for _, district := range Districts {
			for _, part := range strings.Fields(strings.ToLower(district)) {
				if len(part) > 4 && strings.Contains(lower, part) {
					info.Suggestions = append(info.Suggestions, district)
					break
				}
			}
		}
	}

	return info
}

// KnownDistrict reports whether name matches a district exactly
// (case-insensitive).
func KnownDistrict(name string) bool {
	for _, district := range Districts {
		if strings.EqualFold(district, name) {
			return true
		}
	}
	return false
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
