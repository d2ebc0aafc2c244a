package ticket

import (
	"math/rand/v2"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// idRandomLen is the length of the random suffix of a ticket id.
const idRandomLen = 6

// GenerateID builds a ticket id of the form YYYYMMDD-EVID-RAND6.
// The event part is the first four characters of eventID, kept as given.
// A nil r uses the global source.
func GenerateID(date time.Time, eventID string, r *rand.Rand) string {
	ev := eventID
	if runes := []rune(eventID); len(runes) > 4 {
		ev = string(runes[:4])
	}

	var suffix strings.Builder
	suffix.Grow(idRandomLen)
	for range idRandomLen {
		var n int
		if r != nil {
			n = r.IntN(len(idAlphabet))
		} else {
			n = rand.IntN(len(idAlphabet))
		}
		suffix.WriteByte(idAlphabet[n])
	}

	return date.Format("20060102") + "-" + ev + "-" + suffix.String()
}

var latinNamePattern = regexp.MustCompile(`^[A-Za-z0-9\s]+$`)

// IsLatinName reports whether name only holds ASCII letters, digits and spaces,
// which is what the ticket fonts are guaranteed to cover.
func IsLatinName(name string) bool {
	return latinNamePattern.MatchString(name)
}

// FormatName title-cases each word of a participant name ("jane DOE" -> "Jane Doe").
func FormatName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ToLower(name))
}
