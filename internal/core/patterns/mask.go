package patterns

import "fmt"

// maskThreshold is the length at or under which a match is fully redacted
const maskThreshold = 20

// Mask redacts a matched secret for safe persistence. Short matches are
// replaced entirely with a marker naming only their length; longer matches
// keep the first 10 and last 4 characters
func Mask(raw string) string {
	if len(raw) <= maskThreshold {
		return fmt.Sprintf("[REDACTED:%d chars]", len(raw))
	}
	return raw[:10] + "..." + raw[len(raw)-4:]
}
