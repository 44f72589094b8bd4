package service

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"meetsync/modules/mailer/dto"
)

// Rendering is a pure function of the MeetingEmail: the same input always
// produces the same HTML, and the location block depends only on the
// location type.

const inviteTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <h2>{{.Subject}}</h2>
  <p>{{.OrganizerName}} ({{.OrganizerEmail}}) has invited you to a meeting.</p>
  {{if .Description}}<p>{{.Description}}</p>{{end}}
  <p><strong>When:</strong> {{.When}}</p>
  {{template "location" .}}
  {{if .HTMLLink}}<p><a href="{{.HTMLLink}}">View in your calendar</a></p>{{end}}
  {{if .ICSLink}}<p><a href="{{.ICSLink}}">Download invite (.ics)</a></p>{{end}}
</body>
</html>`

const updateTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <h2>Updated: {{.Subject}}</h2>
  <p>{{.OrganizerName}} ({{.OrganizerEmail}}) has updated this meeting.</p>
  {{if .Changes}}
  <table border="0" cellpadding="4">
    <tr><th align="left">What</th><th align="left">Before</th><th align="left">Now</th></tr>
    {{range .Changes}}<tr><td>{{.Field}}</td><td>{{.Old}}</td><td>{{.New}}</td></tr>{{end}}
  </table>
  {{end}}
  <p><strong>When:</strong> {{.When}}</p>
  {{template "location" .}}
  {{if .HTMLLink}}<p><a href="{{.HTMLLink}}">View in your calendar</a></p>{{end}}
</body>
</html>`

const cancelTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <h2>Cancelled: {{.Subject}}</h2>
  <p>{{.OrganizerName}} ({{.OrganizerEmail}}) has cancelled this meeting.</p>
  <p><strong>Was scheduled for:</strong> {{.When}}</p>
</body>
</html>`

const locationPartial = `{{define "location"}}
{{if eq .LocationType "video"}}<p><strong>Join:</strong> <a href="{{.JoinURL}}">{{.JoinURL}}</a></p>
{{else if eq .LocationType "physical"}}<p><strong>Where:</strong> {{.Address}}</p>
{{else if eq .LocationType "phone"}}<p><strong>Dial in:</strong> {{.DialInNumber}}</p>
{{end}}{{end}}`

var (
	inviteTmpl = template.Must(template.Must(
		template.New("invite").Parse(inviteTemplate)).Parse(locationPartial))
	updateTmpl = template.Must(template.Must(
		template.New("update").Parse(updateTemplate)).Parse(locationPartial))
	cancelTmpl = template.Must(template.Must(
		template.New("cancel").Parse(cancelTemplate)).Parse(locationPartial))
)

type templateData struct {
	Subject        string
	Description    string
	OrganizerName  string
	OrganizerEmail string
	When           string
	LocationType   string
	JoinURL        string
	Address        string
	DialInNumber   string
	HTMLLink       string
	ICSLink        string
	Changes        []dto.FieldChange
}

func formatWhen(email *dto.MeetingEmail) string {
	loc, err := time.LoadLocation(email.Timezone)
	if err != nil {
		loc = time.UTC
	}
	start := email.StartTime.In(loc)
	end := email.EndTime.In(loc)
	return fmt.Sprintf("%s – %s (%s)",
		start.Format("Mon, 2 Jan 2006 15:04"),
		end.Format("15:04"),
		email.Timezone)
}

// RenderEmail renders the HTML body for the given notification kind.
// icsLink may be empty when no attachment was uploaded.
func RenderEmail(kind dto.EmailKind, email *dto.MeetingEmail, icsLink string) (string, error) {
	data := templateData{
		Subject:        email.Subject,
		Description:    email.Description,
		OrganizerName:  email.OrganizerName,
		OrganizerEmail: email.OrganizerEmail,
		When:           formatWhen(email),
		LocationType:   string(email.LocationType),
		JoinURL:        email.JoinURL,
		Address:        email.Address,
		DialInNumber:   email.DialInNumber,
		HTMLLink:       email.HTMLLink,
		ICSLink:        icsLink,
		Changes:        email.Changes,
	}

	var tmpl *template.Template
	switch kind {
	case dto.EmailKindUpdate:
		tmpl = updateTmpl
	case dto.EmailKindCancel:
		tmpl = cancelTmpl
	default:
		tmpl = inviteTmpl
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SubjectLine prefixes the meeting subject by notification kind
func SubjectLine(kind dto.EmailKind, subject string) string {
	switch kind {
	case dto.EmailKindUpdate:
		return "Updated: " + subject
	case dto.EmailKindCancel:
		return "Cancelled: " + subject
	default:
		return "Invitation: " + subject
	}
}
