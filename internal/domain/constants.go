package domain

const (
	SpeciesDog   = "dog"
	SpeciesCat   = "cat"
	SpeciesOther = "other"
)

const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// Declared intent of a pet profile.
const (
	IntentBreeding  = "breeding"
	IntentPlaydates = "playdates"
	IntentOpen      = "open"
)

const (
	NotificationNewMatch   = "NEW_MATCH"
	NotificationNewMessage = "NEW_MESSAGE"
)

// MaxMessageLen is the maximum chat message length in runes.
const MaxMessageLen = 500

// MaxPersonalityTags is the onboarding cap on personality tags per pet.
const MaxPersonalityTags = 3

// Search radius options in km
var SearchRadiusKm = []float64{1, 3, 5, 10, 25}

// MaxSearchRadiusKm is the widest radius a discovery query may request.
func MaxSearchRadiusKm() float64 {
	return SearchRadiusKm[len(SearchRadiusKm)-1]
}

func ValidSpecies(s string) bool {
	switch s {
	case SpeciesDog, SpeciesCat, SpeciesOther:
		return true
	}
	return false
}

func ValidGender(g string) bool {
	switch g {
	case GenderMale, GenderFemale:
		return true
	}
	return false
}

func ValidIntent(i string) bool {
	switch i {
	case IntentBreeding, IntentPlaydates, IntentOpen:
		return true
	}
	return false
}
