package templates

import (
	"bytes"
	"html"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"github.com/DanishNadar/ttp-tracker/services/scenario"
)

const callToActionLabel = "Book a call with our team"

type Data struct {
	Name    string
	Domain  string
	DNSHost string
	Phone   string
	// CallToActionURL is optional; when set it is appended as a link
	CallToActionURL string
}

type Rendered struct {
	Subject string
	Plain   string
	HTML    string
}

type compiled struct {
	subject *template.Template
	body    *template.Template
}

type Renderer struct {
	templates map[scenario.Scenario]compiled
}

func NewRenderer() *Renderer {
	r := &Renderer{templates: make(map[scenario.Scenario]compiled, len(scenarioTexts))}
	for s, text := range scenarioTexts {
		r.templates[s] = compiled{
			subject: template.Must(template.New(s.String() + "_subject").Parse(text.subject)),
			body:    template.Must(template.New(s.String() + "_body").Parse(text.body)),
		}
	}
	return r
}

// Render produces the subject and both bodies. Unknown scenarios use the default text.
func (r *Renderer) Render(s scenario.Scenario, data Data) (Rendered, error) {
	tmpl, ok := r.templates[s]
	if !ok {
		tmpl = r.templates[scenario.ScenarioDefault]
	}

	values := struct {
		Data
		Severity string
	}{Data: data, Severity: "gaps"}
	values.Name = strings.TrimSpace(values.Name)
	if values.Name == "" {
		values.Name = "there"
	}
	if s == scenario.ScenarioSPFAndDKIMMissing {
		values.Severity = "failures"
	}

	var subject, body bytes.Buffer
	if err := tmpl.subject.Execute(&subject, values); err != nil {
		return Rendered{}, errors.Wrap(err, "render subject")
	}
	if err := tmpl.body.Execute(&body, values); err != nil {
		return Rendered{}, errors.Wrap(err, "render body")
	}

	plain := body.String()
	if data.CallToActionURL != "" {
		plain += "\n" + callToActionLabel + ": " + data.CallToActionURL + "\n"
	}

	return Rendered{
		Subject: subject.String(),
		Plain:   plain,
		HTML:    toHTML(body.String(), data.CallToActionURL),
	}, nil
}

// toHTML escapes each plain line and joins them with <br>
func toHTML(plain, ctaURL string) string {
	lines := strings.Split(strings.TrimSuffix(plain, "\n"), "\n")
	for i, line := range lines {
		lines[i] = html.EscapeString(line)
	}
	var sb strings.Builder
	sb.WriteString("<html><body>")
	sb.WriteString(strings.Join(lines, "<br>"))
	if ctaURL != "" {
		sb.WriteString(`<br><br><a href="`)
		sb.WriteString(html.EscapeString(ctaURL))
		sb.WriteString(`">`)
		sb.WriteString(callToActionLabel)
		sb.WriteString("</a>")
	}
	sb.WriteString("</body></html>")
	return sb.String()
}
