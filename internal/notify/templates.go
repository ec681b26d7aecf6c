package notify

import (
	"bytes"
	"html/template"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/language"
)

// SMSMaxLen is the single-segment SMS length; longer texts are cut with "...".
const SMSMaxLen = 160

var templateLangs = language.NewMatcher([]language.Tag{language.French, language.English})

type messages struct {
	Subject     string // %s = display name
	Heading     string
	Greeting    string
	Body        []string
	DetailsHead string
	EmailLabel  string
	DateLabel   string
	DateLayout  string
	Footer      string
	SMSNamed    string // %s = name
	SMSAnon     string
}

var catalog = map[string]messages{
	"fr": {
		Subject:     "Confirmation - Formulaire reçu de %s",
		Heading:     "Confirmation de réception",
		Greeting:    "Bonjour",
		Body:        []string{"Votre formulaire a été enregistré avec succès !", "Nous avons bien reçu votre soumission et elle sera traitée dans les plus brefs délais."},
		DetailsHead: "Détails de votre soumission",
		EmailLabel:  "E-mail",
		DateLabel:   "Date",
		DateLayout:  "02/01/2006 à 15:04",
		Footer:      "Cet e-mail a été envoyé automatiquement, merci de ne pas y répondre.",
		SMSNamed:    "Bonjour %s, nous avons bien reçu votre formulaire. Merci pour votre participation !",
		SMSAnon:     "Nous avons bien reçu votre réponse au formulaire. Merci pour votre participation !",
	},
	"en": {
		Subject:     "Confirmation - Form received from %s",
		Heading:     "Submission received",
		Greeting:    "Hello",
		Body:        []string{"Your form has been recorded successfully!", "We received your submission and will process it shortly."},
		DetailsHead: "Submission details",
		EmailLabel:  "Email",
		DateLabel:   "Date",
		DateLayout:  "Jan 2, 2006 at 15:04",
		Footer:      "This email was sent automatically, please do not reply.",
		SMSNamed:    "Hello %s, we received your form. Thank you for taking part!",
		SMSAnon:     "We received your form response. Thank you for taking part!",
	},
}

var confirmationHTML = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><meta name="viewport" content="width=device-width, initial-scale=1.0"></head>
<body style="font-family:'Segoe UI',Tahoma,Geneva,Verdana,sans-serif;line-height:1.6;color:#333;background:#f5f5f5;margin:0;padding:0">
<div style="max-width:600px;margin:20px auto;background:#fff;border-radius:8px;overflow:hidden">
<div style="background:#4CAF50;color:#fff;padding:24px;text-align:center"><h1 style="margin:0;font-size:22px">{{.M.Heading}}</h1></div>
<div style="padding:30px">
<p>{{.M.Greeting}} <strong>{{.Name}}</strong>,</p>
{{range .M.Body}}<p>{{.}}</p>
{{end}}<div style="background:#f9f9f9;border-left:4px solid #4CAF50;padding:12px 16px;margin:20px 0">
<p style="margin:4px 0"><strong>{{.M.DetailsHead}}</strong></p>
<p style="margin:4px 0">{{.M.EmailLabel}}: {{.Email}}</p>
<p style="margin:4px 0">{{.M.DateLabel}}: {{.Date}}</p>
</div>
</div>
<div style="background:#fafafa;color:#888;font-size:12px;padding:16px;text-align:center">
<p style="margin:0">{{.M.Footer}}</p>
{{if .Org}}<p style="margin:4px 0 0">&copy; {{.Year}} {{.Org}}</p>{{end}}
</div>
</div>
</body>
</html>`))

// Templates renders confirmation texts in one language chosen at startup.
type Templates struct {
	lang string
	org  string
	now  func() time.Time
}

// NewTemplates matches locale against the supported languages (French,
// English) and falls back to French.
func NewTemplates(locale, organization string) *Templates {
	lang := "fr"
	if tag, _ := language.MatchStrings(templateLangs, locale); tag != language.Und {
		if base, _ := tag.Base(); base.String() == "en" {
			lang = "en"
		}
	}
	return &Templates{lang: lang, org: strings.TrimSpace(organization), now: time.Now}
}

// Lang returns the selected language code.
func (t *Templates) Lang() string { return t.lang }

func (t *Templates) msgs() messages { return catalog[t.lang] }

// EmailSubject builds the confirmation subject line.
func (t *Templates) EmailSubject(displayName string) string {
	return strings.Replace(t.msgs().Subject, "%s", displayName, 1)
}

// EmailHTML renders the HTML confirmation body. Values are escaped.
func (t *Templates) EmailHTML(displayName, email string) (string, error) {
	m := t.msgs()
	now := t.now()
	var buf bytes.Buffer
	err := confirmationHTML.Execute(&buf, struct {
		M           messages
		Name, Email string
		Date, Org   string
		Year        int
	}{
		M: m, Name: displayName, Email: email,
		Date: now.Format(m.DateLayout), Org: t.org, Year: now.Year(),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SMSText builds the SMS confirmation, capped at SMSMaxLen characters.
func (t *Templates) SMSText(name string) string {
	m := t.msgs()
	text := m.SMSAnon
	if name = strings.TrimSpace(name); name != "" {
		text = strings.Replace(m.SMSNamed, "%s", name, 1)
	}
	return truncateSMS(text)
}

func truncateSMS(s string) string {
	if utf8.RuneCountInString(s) <= SMSMaxLen {
		return s
	}
	r := []rune(s)
	return string(r[:SMSMaxLen-3]) + "..."
}
