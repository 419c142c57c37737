package server

import (
	"regexp"
	"strings"
)

const maxMessageRunes = 1000

var (
	unsafeChars = regexp.MustCompile(`[<>"';]`)
	dateFormat  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

	// answerErrorMarkers flag generated text that leaked an upstream failure.
	answerErrorMarkers = []string{
		"error occurred",
		"internal server error",
		"failed to generate",
		"api key",
		"authentication",
	}
)

// Sanitize strips markup characters, collapses whitespace and caps the length.
// An empty result means the message is unusable.
func Sanitize(msg string) string {
	msg = unsafeChars.ReplaceAllString(msg, "")
	msg = strings.Join(strings.Fields(msg), " ")
	if r := []rune(msg); len(r) > maxMessageRunes {
		msg = strings.TrimSpace(string(r[:maxMessageRunes]))
	}
	return msg
}

func validDate(s string) bool {
	return dateFormat.MatchString(s)
}

// usableAnswer rejects blank, very short or error-shaped answers.
func usableAnswer(answer string) bool {
	trimmed := strings.TrimSpace(answer)
	if len([]rune(trimmed)) < 5 {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, m := range answerErrorMarkers {
		if strings.Contains(lower, m) {
			return false
		}
	}
	return true
}
