package mailer

import (
	"bytes"
	"fmt"
	htmpl "html/template"
	texttpl "text/template"

	"github.com/oksasatya/doctor-directory/internal/domain/entity"
)

// Notice is a rendered email.
type Notice struct {
	Subject string
	Text    string
	HTML    string
}

const doctorAddedText = `A new doctor was added to {{.AppName}}.

Name:       {{.Doctor.Name}}
Specialty:  {{.Doctor.Specialty}}
City:       {{.Doctor.City}}
Hospital:   {{if .Doctor.Hospital}}{{.Doctor.Hospital}}{{else}}-{{end}}
Experience: {{.Doctor.Experience}} years
Fee:        {{.Doctor.Fee}}
Added at:   {{.When}}
`

const doctorAddedHTML = `<p>A new doctor was added to <strong>{{.AppName}}</strong>.</p>
<table>
<tr><td>Name</td><td>{{.Doctor.Name}}</td></tr>
<tr><td>Specialty</td><td>{{.Doctor.Specialty}}</td></tr>
<tr><td>City</td><td>{{.Doctor.City}}</td></tr>
<tr><td>Hospital</td><td>{{if .Doctor.Hospital}}{{.Doctor.Hospital}}{{else}}-{{end}}</td></tr>
<tr><td>Experience</td><td>{{.Doctor.Experience}} years</td></tr>
<tr><td>Fee</td><td>{{.Doctor.Fee}}</td></tr>
</table>
<p><small>{{.When}}</small></p>
`

var (
	doctorAddedTextTpl = texttpl.Must(texttpl.New("doctor_added_text").Parse(doctorAddedText))
	doctorAddedHTMLTpl = htmpl.Must(htmpl.New("doctor_added_html").Parse(doctorAddedHTML))
)

// DoctorAdded renders the notice sent to the directory operators for ev.
func DoctorAdded(appName string, ev entity.DoctorAddedEvent) (Notice, error) {
	data := struct {
		AppName string
		Doctor  entity.Doctor
		When    string
	}{
		AppName: appName,
		Doctor:  ev.Doctor,
		When:    ev.OccurredAt.UTC().Format("2006-01-02 15:04 MST"),
	}

	var text, html bytes.Buffer
	if err := doctorAddedTextTpl.Execute(&text, data); err != nil {
		return Notice{}, fmt.Errorf("render text: %w", err)
	}
	if err := doctorAddedHTMLTpl.Execute(&html, data); err != nil {
		return Notice{}, fmt.Errorf("render html: %w", err)
	}
	return Notice{
		Subject: fmt.Sprintf("[%s] New doctor: %s", appName, ev.Doctor.Name),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
