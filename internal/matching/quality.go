package matching

import (
	"strings"
	"unicode/utf8"

	"github.com/oggyb/speedy-match/internal/db"
)

const (
	minTextChars          = 20
	minDescriptionWords   = 10
	minMatchDescWords     = 8
	repetitiveWordRatio   = 2.5
	shortDescriptionDays  = 90
	shortMatchDescDays    = 30
	repetitiveOrEmptyDays = 600
)

type textStats struct {
	chars  int
	words  int
	unique int
}

func statsOf(text string) textStats {
	text = strings.TrimSpace(text)
	words := strings.Fields(text)
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		seen[w] = struct{}{}
	}
	return textStats{chars: utf8.RuneCountInString(text), words: len(words), unique: len(seen)}
}

// repetitive is true for empty text or text whose words repeat on average 2.5 times or more.
func (s textStats) repetitive() bool {
	return s.unique == 0 || float64(s.words)/float64(s.unique) >= repetitiveWordRatio
}

// ContentPenalty returns the days added for a thin or repetitive profile text
// in the given language.
func ContentPenalty(u *db.User, language string) int {
	desc := statsOf(u.Descriptions[language])
	matchDesc := statsOf(u.MatchDescriptions[language])

	days := 0
	if desc.chars < minTextChars || desc.words < minDescriptionWords {
		days += shortDescriptionDays
	}
	if matchDesc.chars < minTextChars || matchDesc.words < minMatchDescWords {
		days += shortMatchDescDays
	}
	if desc.repetitive() {
		days += repetitiveOrEmptyDays
	}
	if matchDesc.repetitive() {
		days += repetitiveOrEmptyDays
	}
	return days
}
