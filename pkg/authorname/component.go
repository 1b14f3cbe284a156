package authorname

// Role is the part a token plays in a person's name.
type Role int

const (
	RoleUnknown Role = iota
	RoleGiven
	RoleFamily
	RoleDiscarded
)

// String returns the name of the role.
func (r Role) String() string {
	switch r {
	case RoleGiven:
		return "given"
	case RoleFamily:
		return "family"
	case RoleDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// Component is a token tagged with its role.
// Confidence is 1 for positionally determined roles; Classified marks
// components whose role came from the frequency classifier.
type Component struct {
	Text       string  `json:"text"`
	Role       Role    `json:"-"`
	Confidence float64 `json:"confidence"`
	Classified bool    `json:"classified,omitempty"`
}

// ComponentTexts returns the text of each component.
func ComponentTexts(components []Component) []string {
	out := make([]string, len(components))
	for i, c := range components {
		out[i] = c.Text
	}
	return out
}
