package domain

// MoodLabel is the qualitative reading of a mood value.
type MoodLabel string

const (
	MoodVeryBad MoodLabel = "Very Bad"
	MoodBad     MoodLabel = "Bad"
	MoodOkay    MoodLabel = "Okay"
	MoodGood    MoodLabel = "Good"
	MoodGreat   MoodLabel = "Great"
)

const (
	MinMoodValue     = 0
	MaxMoodValue     = 100
	DefaultMoodValue = 50
)

// LabelFor maps a mood value to its label. Out-of-range values fall into
// the nearest band.
func LabelFor(value int) MoodLabel {
	switch {
	case value < 20:
		return MoodVeryBad
	case value < 40:
		return MoodBad
	case value < 60:
		return MoodOkay
	case value < 80:
		return MoodGood
	default:
		return MoodGreat
	}
}

// ValidMoodValue reports whether v is inside [MinMoodValue, MaxMoodValue].
func ValidMoodValue(v int) bool {
	return v >= MinMoodValue && v <= MaxMoodValue
}

// MoodLog is an immutable mood check-in.
type MoodLog struct {
	ID        MoodLogID         `json:"id"`
	UserID    UserID            `json:"user_id"`
	Label     MoodLabel         `json:"mood"`
	Value     int               `json:"mood_value"`
	Answers   map[string]string `json:"answers"`
	CreatedAt Timestamp         `json:"created_at"`
}

// ReflectionQuestions are the prompts offered next to the mood slider.
// Answers are keyed by the question text.
var ReflectionQuestions = []string{
	"One good moment today?",
	"A word to describe your strength today?",
	"One hard moment today?",
	"A feeling you want to let go?",
	"What challenged you?",
	"Energy level right now?",
	"A small win today?",
	"One supportive person today?",
	"One intention for tomorrow?",
}
