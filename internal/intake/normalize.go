// Package intake turns inbound webhook payloads into canonical Submissions
// and derives the fingerprint used to deduplicate them.
//
// Two payload shapes are accepted:
//   - direct:      {"email": "...", "phone": "...", "name": "...", "timestamp": "..."}
//   - namedValues: {"namedValues": {"Adresse e-mail": ["..."], ...}, "timestamp": "..."}
//
// Shapes are handled by an ordered list of extractors; the first one that
// recognizes the payload wins.
package intake

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/Notho-freedom/Autoresponder/internal/domain"
)

// MaxNameRunes caps the sanitized display name.
const MaxNameRunes = 100

var (
	phoneSeparators = regexp.MustCompile(`[\s\-\.\(\)]`)
	validPhone      = regexp.MustCompile(`^\+[0-9]+$`)
)

// rawFields are the untrimmed strings an extractor found.
type rawFields struct {
	Email, Phone, Name, Timestamp string
}

// Extractor recognizes one payload shape. ok is false when the payload is
// not of that shape, letting the next extractor try.
type Extractor func(payload map[string]any) (f rawFields, ok bool)

// Normalizer converts raw JSON bodies into Submissions.
type Normalizer struct {
	Extractors []Extractor
	Now        func() time.Time

	validate *validator.Validate
}

// NewNormalizer returns a Normalizer trying namedValues first, then the
// direct shape, resolving namedValues keys through aliases.
func NewNormalizer(aliases AliasTable) *Normalizer {
	return &Normalizer{
		Extractors: []Extractor{
			NamedValuesExtractor(aliases),
			DirectExtractor,
		},
		Now:      time.Now,
		validate: validator.New(),
	}
}

// Normalize parses raw and returns a Submission or a *ValidationError.
func (n *Normalizer) Normalize(raw []byte) (domain.Submission, error) {
	var payload map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil || payload == nil {
		return domain.Submission{}, &ValidationError{Kind: ErrMalformedPayload}
	}

	var f rawFields
	for _, ex := range n.Extractors {
		if got, ok := ex(payload); ok {
			f = got
			break
		}
	}

	sub := domain.Submission{
		Email:     strings.TrimSpace(f.Email),
		Phone:     NormalizePhone(f.Phone),
		Name:      SanitizeName(f.Name),
		Timestamp: strings.TrimSpace(f.Timestamp),
	}

	var missing []string
	if sub.Email == "" {
		missing = append(missing, "email")
	}
	if sub.Phone == "" {
		missing = append(missing, "phone")
	}
	if len(missing) > 0 {
		return domain.Submission{}, &ValidationError{Kind: ErrMissingRequiredField, Fields: missing}
	}
	if err := n.validate.Var(sub.Email, "email"); err != nil {
		return domain.Submission{}, &ValidationError{Kind: ErrInvalidEmail, Fields: []string{"email"}}
	}
	if !validPhone.MatchString(sub.Phone) {
		return domain.Submission{}, &ValidationError{Kind: ErrInvalidPhone, Fields: []string{"phone"}}
	}

	if sub.Timestamp == "" {
		now := time.Now
		if n.Now != nil {
			now = n.Now
		}
		sub.Timestamp = now().UTC().Format(time.RFC3339Nano)
	}
	return sub, nil
}

// DirectExtractor reads top-level fields. It accepts any object.
func DirectExtractor(payload map[string]any) (rawFields, bool) {
	return rawFields{
		Email:     scalar(payload["email"]),
		Phone:     scalar(payload["phone"]),
		Name:      scalar(payload["name"]),
		Timestamp: scalar(payload["timestamp"]),
	}, true
}

// NamedValuesExtractor reads Google Forms style answers keyed by question
// title. A top-level "timestamp" takes precedence over the form's own one.
func NamedValuesExtractor(aliases AliasTable) Extractor {
	return func(payload map[string]any) (rawFields, bool) {
		nv, ok := payload["namedValues"].(map[string]any)
		if !ok {
			return rawFields{}, false
		}
		f := rawFields{
			Email: lookupAlias(nv, aliases.Email),
			Phone: lookupAlias(nv, aliases.Phone),
			Name:  lookupAlias(nv, aliases.Name),
		}
		f.Timestamp = scalar(payload["timestamp"])
		if strings.TrimSpace(f.Timestamp) == "" {
			f.Timestamp = lookupAlias(nv, aliases.Timestamp)
		}
		return f, true
	}
}

// lookupAlias returns the first answer of the first alias that carries a
// non-blank answer. Exact keys are tried before a case-insensitive pass.
func lookupAlias(nv map[string]any, aliases []string) string {
	for _, a := range aliases {
		if v := firstAnswer(nv[a]); v != "" {
			return v
		}
	}
	for _, a := range aliases {
		for k, raw := range nv {
			if strings.EqualFold(strings.TrimSpace(k), a) {
				if v := firstAnswer(raw); v != "" {
					return v
				}
			}
		}
	}
	return ""
}

func firstAnswer(v any) string {
	switch t := v.(type) {
	case []any:
		if len(t) == 0 {
			return ""
		}
		return strings.TrimSpace(scalar(t[0]))
	default:
		return strings.TrimSpace(scalar(v))
	}
}

func scalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

// NormalizePhone strips spaces, dashes, dots and parentheses and prefixes
// '+' when missing. Inputs without any digit normalize to "". Other
// characters are kept; Normalize rejects them.
func NormalizePhone(phone string) string {
	p := phoneSeparators.ReplaceAllString(strings.TrimSpace(phone), "")
	if strings.TrimLeft(p, "+") == "" {
		return ""
	}
	if !strings.HasPrefix(p, "+") {
		p = "+" + p
	}
	return p
}

// SanitizeName collapses inner whitespace, trims, and caps the length.
func SanitizeName(name string) string {
	s := strings.Join(strings.Fields(name), " ")
	if utf8.RuneCountInString(s) <= MaxNameRunes {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:MaxNameRunes]))
}

// DisplayName returns the name if present, otherwise the local part of email.
func DisplayName(name, email string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}
