package narration

import "strings"

// DefaultAnswer is returned when no rule matches.
const DefaultAnswer = "I'm not sure about that. Try asking 'What is a JWT?' or 'Is it safe?'."

// Rule matches a lowercased message when it contains every word in All and,
// if Any is non-empty, at least one word in Any.
type Rule struct {
	Name   string
	All    []string
	Any    []string
	Answer string
}

func (r Rule) matches(msg string) bool {
	for _, w := range r.All {
		if !strings.Contains(msg, w) {
			return false
		}
	}
	if len(r.Any) == 0 {
		return true
	}
	for _, w := range r.Any {
		if strings.Contains(msg, w) {
			return true
		}
	}
	return false
}

// DefaultRules is the priority-ordered rule list. Order matters: the first match wins.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "definition", All: []string{"what", "jwt"},
			Answer: "A JWT (JSON Web Token) is like a digital ID card. It securely transmits information between parties as a JSON object."},
		{Name: "rationale", Any: []string{"why", "use"},
			Answer: "We use JWTs because they are compact and self-contained. The server doesn't need to keep a session record in memory."},
		{Name: "security", Any: []string{"safe", "secure"},
			Answer: "JWTs are signed, so they can't be tampered with. However, you should secure them with HTTPS and never put secrets in the payload!"},
		{Name: "header", All: []string{"header"},
			Answer: "The Header tells us the type of token (JWT) and the hashing algorithm used (like HS256)."},
		{Name: "payload", All: []string{"payload"},
			Answer: "The Payload contains the claims (data) about the user, like their ID or name. This part is readable by anyone!"},
		{Name: "signature", All: []string{"signature"},
			Answer: "The Signature is what makes the token secure. It's created using a secret key to verify the token hasn't been changed."},
	}
}

// Matcher answers chat messages by case-insensitive substring rules.
type Matcher struct {
	rules    []Rule
	fallback string
}

func NewMatcher(rules []Rule, fallback string) *Matcher {
	return &Matcher{rules: rules, fallback: fallback}
}

// DefaultMatcher uses DefaultRules and DefaultAnswer.
func DefaultMatcher() *Matcher { return NewMatcher(DefaultRules(), DefaultAnswer) }

// Answer returns the answer and the name of the rule that produced it
// ("default" when nothing matched).
func (m *Matcher) Answer(message string) (string, string) {
	msg := strings.ToLower(message)
	for _, r := range m.rules {
		if r.matches(msg) {
			return r.Answer, r.Name
		}
	}
	return m.fallback, "default"
}
