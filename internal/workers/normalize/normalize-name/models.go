// internal/workers/normalize/normalize-name/models.go
package normalizename

// Kind tags the outcome of a name normalization.
type Kind string

const (
	KindResolved   Kind = "resolved"
	KindAmbiguous  Kind = "ambiguous"
	KindUnresolved Kind = "unresolved"
)

// Result is returned instead of prompting: ambiguous names are handed back
// to the caller together with the original text.
type Result struct {
	Kind     Kind   `json:"kind"`
	Name     string `json:"name,omitempty"`
	Original string `json:"original"`
	Reason   string `json:"reason,omitempty"`
}

func (r Result) Resolved() bool { return r.Kind == KindResolved }

type Input struct {
	Raw string `json:"raw"`
}

type Output struct {
	Result Result `json:"result"`
}

// titles are honorifics dropped from names; the trailing period is optional.
var titles = map[string]bool{
	"dr": true, "mr": true, "mrs": true, "miss": true, "ms": true,
	"prof": true, "phd": true, "ph.d": true, "mx": true,
}

// particles are lower-case surname prefixes kept as part of the surname.
var particles = map[string]bool{
	"mc": true, "st": true, "st.": true, "de": true, "da": true, "di": true,
	"du": true, "la": true, "le": true, "el": true, "lo": true, "van": true,
	"von": true, "der": true, "den": true, "al": true, "bin": true,
}
