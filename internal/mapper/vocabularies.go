package mapper

// Sex codes. SIS records with no or unrecognised sex map to Unknown so the
// descriptor URI is always well formed.
const SexUnknown = "Unknown"

var sexVocabulary = NewVocabulary(SexDescriptor,
	[]string{"Female", "Male", "Not Selected", SexUnknown},
	map[string]string{
		"f":             "Female",
		"woman":         "Female",
		"girl":          "Female",
		"m":             "Male",
		"man":           "Male",
		"boy":           "Male",
		"not specified": "Not Selected",
		"declined":      "Not Selected",
		"u":             SexUnknown,
		"other":         SexUnknown,
	},
	SexUnknown,
)

const (
	SchoolTypeElementary = "Elementary School"
	SchoolTypeMiddle     = "Middle School"
	SchoolTypeHigh       = "High School"
)

var schoolTypeVocabulary = NewVocabulary(SchoolTypeDescriptor,
	[]string{
		SchoolTypeElementary,
		SchoolTypeMiddle,
		SchoolTypeHigh,
		"Regular",
		"Alternative",
		"Special Education",
		"Career and Technical Education",
		"JJAEP",
		"DAEP",
	},
	map[string]string{
		"elementary":  SchoolTypeElementary,
		"primary":     SchoolTypeElementary,
		"middle":      SchoolTypeMiddle,
		"junior high": SchoolTypeMiddle,
		"high":        SchoolTypeHigh,
		"secondary":   SchoolTypeHigh,
		"cte":         "Career and Technical Education",
		"vocational":  "Career and Technical Education",
		"special ed":  "Special Education",
	},
	"",
)

var (
	gradesElementary = []string{"Kindergarten", "First grade", "Second grade", "Third grade", "Fourth grade", "Fifth grade"}
	gradesMiddle     = []string{"Sixth grade", "Seventh grade", "Eighth grade"}
	gradesHigh       = []string{"Ninth grade", "Tenth grade", "Eleventh grade", "Twelfth grade"}
)

// gradeLevelsFor derives the offered grades from the school type code.
func gradeLevelsFor(schoolType string) []string {
	switch schoolType {
	case SchoolTypeElementary:
		return gradesElementary
	case SchoolTypeMiddle:
		return gradesMiddle
	case SchoolTypeHigh:
		return gradesHigh
	}
	all := make([]string, 0, len(gradesElementary)+len(gradesMiddle)+len(gradesHigh))
	all = append(all, gradesElementary...)
	all = append(all, gradesMiddle...)
	return append(all, gradesHigh...)
}

var stateVocabulary = NewVocabulary(StateAbbreviationDescriptor,
	[]string{
		"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "FL", "GA",
		"HI", "ID", "IL", "IN", "IA", "KS", "KY", "LA", "ME", "MD",
		"MA", "MI", "MN", "MS", "MO", "MT", "NE", "NV", "NH", "NJ",
		"NM", "NY", "NC", "ND", "OH", "OK", "OR", "PA", "RI", "SC",
		"SD", "TN", "TX", "UT", "VT", "VA", "WA", "WV", "WI", "WY",
		"DC", "AS", "GU", "MP", "PR", "VI",
	},
	map[string]string{
		"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
		"california": "CA", "colorado": "CO", "connecticut": "CT", "delaware": "DE",
		"florida": "FL", "georgia": "GA", "hawaii": "HI", "idaho": "ID",
		"illinois": "IL", "indiana": "IN", "iowa": "IA", "kansas": "KS",
		"kentucky": "KY", "louisiana": "LA", "maine": "ME", "maryland": "MD",
		"massachusetts": "MA", "michigan": "MI", "minnesota": "MN", "mississippi": "MS",
		"missouri": "MO", "montana": "MT", "nebraska": "NE", "nevada": "NV",
		"new hampshire": "NH", "new jersey": "NJ", "new mexico": "NM", "new york": "NY",
		"north carolina": "NC", "north dakota": "ND", "ohio": "OH", "oklahoma": "OK",
		"oregon": "OR", "pennsylvania": "PA", "rhode island": "RI", "south carolina": "SC",
		"south dakota": "SD", "tennessee": "TN", "texas": "TX", "utah": "UT",
		"vermont": "VT", "virginia": "VA", "washington": "WA", "west virginia": "WV",
		"wisconsin": "WI", "wyoming": "WY", "district of columbia": "DC",
		"american samoa": "AS", "guam": "GU", "northern mariana islands": "MP",
		"puerto rico": "PR", "virgin islands": "VI",
	},
	"",
)

const (
	addressTypePhysical = "Physical"
	addressTypeHome     = "Home"
	telephoneTypeMain   = "Main"
	electronicMailWork  = "Work"
	categorySchool      = "School"
)
