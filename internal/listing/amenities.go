package listing

import "strings"

// Canonical amenity names produced by ExtractAmenities for NYC listings
const (
	AmenityWasherInUnit     = "Laundry in unit"
	AmenityWasherInBuilding = "Laundry in building"
	AmenityDishwasher       = "Dishwasher"
	AmenityAirConditioning  = "Air conditioning"
	AmenityPetsAllowed      = "Pets allowed"
	AmenityFireplace        = "Fireplace"
	AmenityGym              = "Gym"
	AmenityParking          = "Parking"
	AmenityPool             = "Pool"
)

// legacyKeywords maps free-text fragments to the flag they imply
var legacyKeywords = []struct {
	keywords []string
	set      func(*AmenityFlags)
}{
	{[]string{"in-unit laundry", "in unit laundry", "laundry in unit", "washer/dryer in unit", "in-unit washer", "washer in unit"}, func(f *AmenityFlags) { f.WasherInUnit = true }},
	{[]string{"laundry in building", "building laundry", "shared laundry", "laundry room", "washer in building"}, func(f *AmenityFlags) { f.WasherInBuilding = true }},
	{[]string{"dishwasher"}, func(f *AmenityFlags) { f.Dishwasher = true }},
	{[]string{"air conditioning", "central air", "a/c", "ac unit"}, func(f *AmenityFlags) { f.AirConditioning = true }},
	{[]string{"pets", "pet friendly", "pet-friendly", "dog friendly", "cat friendly"}, func(f *AmenityFlags) { f.PetsAllowed = true }},
	{[]string{"fireplace"}, func(f *AmenityFlags) { f.Fireplace = true }},
	{[]string{"gym", "fitness"}, func(f *AmenityFlags) { f.Gym = true }},
	{[]string{"parking", "garage"}, func(f *AmenityFlags) { f.Parking = true }},
	{[]string{"pool"}, func(f *AmenityFlags) { f.Pool = true }},
}

var legacyOutdoor = []string{"balcony", "terrace", "patio", "garden", "roof deck", "backyard", "yard"}

var legacyView = []string{"view", "skyline"}

var negationPrefixes = []string{"no ", "not ", "without ", "non-", "non "}

// ExtractAmenities converts either listing shape into one list of
// human-readable amenity names. Negated legacy entries are dropped.
func ExtractAmenities(l *Listing) []string {
	if l == nil {
		return nil
	}
	if l.Flags == nil {
		out := make([]string, 0, len(l.AmenityList))
		for _, a := range l.AmenityList {
			if a = strings.TrimSpace(a); a != "" && !isNegated(NormalizeAmenity(a)) {
				out = append(out, a)
			}
		}
		return out
	}

	f := l.Flags
	var out []string
	add := func(ok bool, name string) {
		if ok {
			out = append(out, name)
		}
	}
	add(f.WasherInUnit, AmenityWasherInUnit)
	add(f.WasherInBuilding, AmenityWasherInBuilding)
	add(f.Dishwasher, AmenityDishwasher)
	add(f.AirConditioning, AmenityAirConditioning)
	add(f.PetsAllowed, AmenityPetsAllowed)
	add(f.Fireplace, AmenityFireplace)
	add(f.Gym, AmenityGym)
	add(f.Parking, AmenityParking)
	add(f.Pool, AmenityPool)
	if f.HasOutdoorArea() {
		out = append(out, titleCase(f.OutdoorArea))
	}
	if f.HasView() {
		out = append(out, titleCase(f.View)+" view")
	}
	return out
}

// FlagsOf returns structured amenity flags for any listing. Legacy listings
// have their free-text amenities matched against known keywords.
func FlagsOf(l *Listing) AmenityFlags {
	if l == nil {
		return AmenityFlags{}
	}
	if l.Flags != nil {
		return *l.Flags
	}

	var f AmenityFlags
	for _, raw := range l.AmenityList {
		a := NormalizeAmenity(raw)
		if a == "" || isNegated(a) {
			continue
		}
		for _, k := range legacyKeywords {
			if containsAny(a, k.keywords) {
				k.set(&f)
			}
		}
		if f.OutdoorArea == "" {
			for _, o := range legacyOutdoor {
				if strings.Contains(a, o) {
					f.OutdoorArea = o
					break
				}
			}
		}
		if f.View == "" && containsAny(a, legacyView) {
			f.View = a
		}
	}
	return f
}

// NormalizeAmenity lower-cases and trims an amenity name for comparison
func NormalizeAmenity(a string) string {
	return strings.ToLower(strings.TrimSpace(a))
}

// FuzzyMatch reports whether a and b match case-insensitively with either
// one contained in the other
func FuzzyMatch(a, b string) bool {
	a, b = NormalizeAmenity(a), NormalizeAmenity(b)
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// isNegated reports whether a normalized amenity entry denies the amenity,
// as in "no pets" or "without parking"
func isNegated(a string) bool {
	for _, p := range negationPrefixes {
		if strings.HasPrefix(a, p) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func titleCase(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
