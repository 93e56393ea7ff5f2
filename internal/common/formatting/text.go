// internal/common/formatting/text.go
package formatting

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrNoNumber          = errors.New("no numeric value")
	ErrNonIntegerAmount  = errors.New("amount is not a whole number")
	ErrUnparseableDate   = errors.New("unrecognized date format")
	ErrAmountOutOfRange  = errors.New("amount out of range")
	numberPattern        = regexp.MustCompile(`\d+(?:\.\d+)?`)
	horizontalWhitespace = regexp.MustCompile(`[ \t\f\v]+`)
)

// ASCIIFold decomposes s, drops combining marks and removes whatever is
// still outside ASCII.
func ASCIIFold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, folded)
}

// Clean folds to ASCII, normalizes line endings and collapses runs of
// horizontal whitespace.
func Clean(s string) string {
	s = ASCIIFold(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = horizontalWhitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Justification returns the export form of a justification: ASCII, double
// quotes replaced by single quotes, whitespace collapsed, wrapped in double
// quotes. The word count is taken before quoting.
func Justification(s string) (string, int) {
	s = Clean(s)
	s = strings.ReplaceAll(s, `"`, "'")
	words := strings.Fields(s)
	if len(words) == 0 {
		return "", 0
	}
	return `"` + strings.Join(words, " ") + `"`, len(words)
}

// MaxAmount bounds a single monetary or hours entry.
const MaxAmount = 1_000_000

// ExtractAmount pulls the first number out of a currency or hours field.
// Thousands separators and currency symbols are ignored. Fractional amounts
// and amounts above MaxAmount are rejected.
func ExtractAmount(s string) (int, error) {
	cleaned := strings.NewReplacer(",", "", "$", "").Replace(Clean(s))
	match := numberPattern.FindString(cleaned)
	if match == "" {
		return 0, fmt.Errorf("%w in %q", ErrNoNumber, s)
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, fmt.Errorf("%w in %q", ErrNoNumber, s)
	}
	if f > MaxAmount {
		return 0, fmt.Errorf("%w: %q exceeds %d", ErrAmountOutOfRange, s, MaxAmount)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %q", ErrNonIntegerAmount, s)
	}
	return int(f), nil
}

// dateLayouts are the formats accepted in the "date received" field.
var dateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"1-2-2006",
	"2006/01/02",
	"2006-01-02",
	"02 Jan 2006",
	"2 Jan 2006",
	"02 January 2006",
	"2 January 2006",
	"Jan 02, 2006",
	"Jan 2, 2006",
	"January 02, 2006",
	"January 2, 2006",
}

// ParseDate converts a date received value to YYYY-MM-DD. An empty value
// yields now's date.
func ParseDate(s string, now time.Time) (string, error) {
	s = strings.TrimSpace(Clean(s))
	if s == "" {
		return now.Format("2006-01-02"), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnparseableDate, s)
}
