package notify

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestNewTemplates_LanguageMatching(t *testing.T) {
	cases := map[string]string{
		"fr":    "fr",
		"fr-CA": "fr",
		"en":    "en",
		"en-US": "en",
		"de":    "fr",
		"":      "fr",
	}
	for in, want := range cases {
		if got := NewTemplates(in, "").Lang(); got != want {
			t.Fatalf("NewTemplates(%q).Lang() = %q; want %q", in, got, want)
		}
	}
}

func TestTemplates_SMSText(t *testing.T) {
	tpl := NewTemplates("fr", "")
	if got := tpl.SMSText(""); got != "Nous avons bien reçu votre réponse au formulaire. Merci pour votre participation !" {
		t.Fatalf("anonymous sms = %q", got)
	}
	if got := tpl.SMSText("Alice"); got != "Bonjour Alice, nous avons bien reçu votre formulaire. Merci pour votre participation !" {
		t.Fatalf("named sms = %q", got)
	}
	long := tpl.SMSText(strings.Repeat("x", 200))
	if n := utf8.RuneCountInString(long); n != SMSMaxLen {
		t.Fatalf("truncated length = %d", n)
	}
	if !strings.HasSuffix(long, "...") {
		t.Fatalf("truncated sms should end with ellipsis")
	}
}

func TestTemplates_Email(t *testing.T) {
	tpl := NewTemplates("en", "Acme")
	tpl.now = func() time.Time { return time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC) }

	if got := tpl.EmailSubject("Bob"); got != "Confirmation - Form received from Bob" {
		t.Fatalf("subject = %q", got)
	}
	html, err := tpl.EmailHTML("<b>Bob</b>", "bob@b.com")
	if err != nil {
		t.Fatalf("EmailHTML: %v", err)
	}
	if strings.Contains(html, "<b>Bob</b>") {
		t.Fatalf("display name must be escaped")
	}
	for _, want := range []string{"bob@b.com", "Jun 1, 2025 at 09:30", "&copy; 2025 Acme"} {
		if !strings.Contains(html, want) {
			t.Fatalf("html missing %q", want)
		}
	}
}
