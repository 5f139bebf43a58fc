// Package mood provides the Mood domain type.
package mood

import "strings"

// Mood is one of the six fixed mood labels used both as a selector
// and as a generation-request parameter.
type Mood string

const (
	Happy        Mood = "Happy"
	Sad          Mood = "Sad"
	Motivational Mood = "Motivational"
	Sleep        Mood = "Sleep"
	Anger        Mood = "Anger"
	Chill        Mood = "Chill"
)

// Default is the fallback mood used when classification fails or no
// mood has been selected yet.
const Default = Chill

// All returns the moods in display order.
func All() []Mood {
	return []Mood{Happy, Sad, Motivational, Sleep, Anger, Chill}
}

// profile holds the static attributes of a mood.
type profile struct {
	description  string
	defaultGenre string
}

var profiles = map[Mood]profile{
	Happy:        {"Upbeat, joyful, and positive vibes", "Pop, Disco, Funk"},
	Sad:          {"Melancholic, soul-searching melodies", "Indie, Acoustic, Blues"},
	Motivational: {"Powerful, high-energy anthems", "Rock, Cinematic, Electronic"},
	Sleep:        {"Calm, ambient, and soothing sounds", "Ambient, Lo-fi, Classical"},
	Anger:        {"Intense, aggressive, and raw energy", "Metal, Hardcore, Punk"},
	Chill:        {"Relaxed, laid-back atmospheric tunes", "Jazz, Lo-fi Hip Hop, Neo-soul"},
}

// String returns the mood label.
func (m Mood) String() string {
	return string(m)
}

// IsValid reports whether m is one of the six known labels.
func (m Mood) IsValid() bool {
	_, ok := profiles[m]
	return ok
}

// Description returns the human-readable description of the mood.
func (m Mood) Description() string {
	return profiles[m].description
}

// DefaultGenre returns the genre substituted for generated tracks that
// arrive without one.
func (m Mood) DefaultGenre() string {
	if p, ok := profiles[m]; ok {
		return p.defaultGenre
	}
	return "Eclectic"
}

// Parse maps a label onto a known Mood, ignoring case and surrounding
// whitespace. The second return value reports whether the label matched.
func Parse(label string) (Mood, bool) {
	candidate := strings.TrimSpace(label)
	for m := range profiles {
		if strings.EqualFold(candidate, string(m)) {
			return m, true
		}
	}
	return "", false
}
