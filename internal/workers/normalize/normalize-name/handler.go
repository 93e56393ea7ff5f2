// internal/workers/normalize/normalize-name/handler.go
package normalizename

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/cinematicsodium/awards/internal/common/formatting"
	"github.com/cinematicsodium/awards/internal/common/logger"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	TaskType = "normalize-name"
)

type Handler struct {
	logger logger.Logger
}

func NewHandler(log logger.Logger) *Handler {
	return &Handler{
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	res := Normalize(input.Raw)
	if res.Kind != KindResolved {
		h.logger.Debug("name not resolved", map[string]interface{}{
			"original": res.Original,
			"kind":     string(res.Kind),
			"reason":   res.Reason,
		})
	}
	return &Output{Result: res}, nil
}

var quoteReplacer = strings.NewReplacer("“", `"`, "”", `"`, "‘", "'", "’", "'", ",", ", ")

// nicknameSpan and singleQuotedSpan match quoted or parenthesized nicknames
// of any length. A single-quoted span must be bounded by whitespace;
// apostrophes inside surnames ("O'Brien") are not nicknames.
var (
	nicknameSpan     = regexp.MustCompile(`"[^"]*"|\([^)]*\)`)
	singleQuotedSpan = regexp.MustCompile(`(^|\s)'[^']*'(\s|$)`)
)

// Normalize converts free text to "Last, First[ Middle]".
//
// Titles, quoted or parenthetical nicknames and initials are dropped before
// counting tokens, so "John Q. Public" becomes "Public, John": the middle
// initial is not kept. A full middle name survives the three-token path.
func Normalize(raw string) Result {
	res := Result{Original: raw}

	text := formatting.Clean(quoteReplacer.Replace(raw))
	if text == "" {
		res.Kind, res.Reason = KindUnresolved, "empty"
		return res
	}

	tokens, droppedInitial := filterTokens(strings.Fields(stripNicknames(text)))

	switch len(tokens) {
	case 2:
		first, second := tokens[0], tokens[1]
		if strings.HasSuffix(first, ",") {
			return resolved(res, strings.TrimSuffix(first, ","), second)
		}
		return resolved(res, second, first)

	case 3:
		if strings.HasSuffix(tokens[0], ",") {
			return resolved(res, strings.TrimSuffix(tokens[0], ","), tokens[1]+" "+tokens[2])
		}
		if particles[strings.ToLower(tokens[1])] {
			return resolved(res, tokens[1]+" "+tokens[2], tokens[0])
		}
		if droppedInitial {
			return resolved(res, tokens[2], tokens[0]+" "+tokens[1])
		}
		res.Kind, res.Reason = KindAmbiguous, "three name parts without an initial"
		return res
	}

	res.Kind = KindUnresolved
	res.Reason = "unsupported number of name parts"
	return res
}

func stripNicknames(s string) string {
	s = nicknameSpan.ReplaceAllString(s, " ")
	return singleQuotedSpan.ReplaceAllString(s, " ")
}

func resolved(res Result, last, first string) Result {
	res.Kind = KindResolved
	res.Name = titleName(strings.TrimRight(last, ",")) + ", " + titleName(strings.TrimRight(first, ","))
	return res
}

// filterTokens drops titles, nicknames and initials. It reports whether an
// initial was dropped.
func filterTokens(raw []string) ([]string, bool) {
	kept := make([]string, 0, len(raw))
	droppedInitial := false
	for _, tok := range raw {
		bare := strings.TrimSuffix(tok, ",")
		switch {
		case bare == "":
			if len(kept) > 0 && !strings.HasSuffix(kept[len(kept)-1], ",") {
				kept[len(kept)-1] += ","
			}
		case isTitle(bare):
		case isNickname(bare):
		case particles[strings.ToLower(bare)]:
			kept = append(kept, tok)
		case isInitial(bare):
			droppedInitial = true
			if strings.HasSuffix(tok, ",") && len(kept) > 0 && !strings.HasSuffix(kept[len(kept)-1], ",") {
				kept[len(kept)-1] += ","
			}
		default:
			kept = append(kept, tok)
		}
	}
	return kept, droppedInitial
}

func isTitle(tok string) bool {
	return titles[strings.TrimSuffix(strings.ToLower(tok), ".")]
}

func isNickname(tok string) bool {
	if len(tok) < 2 {
		return false
	}
	first, last := tok[0], tok[len(tok)-1]
	return (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '(' && last == ')')
}

// isInitial matches a bare letter or a short abbreviation ending in a
// period with at most three letters ("Q.", "Jr.", "J.R.").
func isInitial(tok string) bool {
	if len(tok) == 1 {
		return unicode.IsLetter(rune(tok[0]))
	}
	if len(tok) > 4 || !strings.HasSuffix(tok, ".") {
		return false
	}
	letters := 0
	for _, r := range tok {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters <= 3
}

// titleName title-cases each name part. Parts already in mixed case
// ("McDonald") and surname particles are left alone.
func titleName(s string) string {
	parts := strings.Fields(s)
	caser := cases.Title(language.English)
	for i, p := range parts {
		if particles[strings.ToLower(p)] && i < len(parts)-1 {
			parts[i] = strings.ToLower(p)
			continue
		}
		if isMixedCase(p) {
			continue
		}
		parts[i] = titleSegments(caser, strings.ToLower(p))
	}
	return strings.Join(parts, " ")
}

func titleSegments(caser cases.Caser, s string) string {
	var b strings.Builder
	start := 0
	for i, r := range s {
		if r == '-' || r == '\'' {
			b.WriteString(caser.String(s[start:i]))
			b.WriteRune(r)
			start = i + 1
		}
	}
	b.WriteString(caser.String(s[start:]))
	return b.String()
}

func isMixedCase(s string) bool {
	var upper, lower int
	for _, r := range s {
		if unicode.IsUpper(r) {
			upper++
		} else if unicode.IsLower(r) {
			lower++
		}
	}
	return upper > 1 && lower > 0
}
