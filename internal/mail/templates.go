package mail

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/example/band-rehearsal/internal/application"
)

// Subjects match the messages members have received since the Sheets era.
const (
	digestSubject     = "Rehearsal Schedule for Next Five Weeks"
	invitationSubject = "You've Been Invited to Band Rehearsal Scheduler!"
)

const digestTemplateText = `<html>
    <head>
        <meta content="text/html; charset=UTF-8" http-equiv="content-type">
        <title>Rehearsal Schedule</title>
    </head>
    <body>
        Hej!<br><br>
        Se rep-status för kommande veckor. Är något fel, uppdatera gärna på
        <a href="{{.AppURL}}" target="_blank">denna länk</a> för att justera.
        <br><br><br>
        <table style="text-align: left; width: 274px; height: 148px;" border="1" cellpadding="0" cellspacing="2">
            <tbody>
                <tr>
                    <td style="vertical-align: top; background-color: rgb(51, 51, 51); color: white;">Datum<br></td>
                    <td style="vertical-align: top; background-color: rgb(51, 51, 51); color: white;">Frånvarande<br></td>
                </tr>
{{- range .Rows}}
{{- if .Decliners}}
                <tr><td style="vertical-align: top; background-color: red;">{{.Date}}</td><td style="vertical-align: top;">{{range .Decliners}}{{.Name}}{{with .Comment}} - {{.}}{{end}}<BR>{{end}}</td></tr>
{{- else}}
                <tr><td style="vertical-align: top; background-color: rgb(0, 153, 0);">{{.Date}}<br></td><td style="vertical-align: top;"><br></td></tr>
{{- end}}
{{- end}}
            </tbody>
        </table>
        <br>
    </body>
</html>
`

const invitationHTMLTemplateText = `<html>
  <head></head>
  <body>
    <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #eee; border-radius: 5px;">
      <h2 style="color: #2196f3;">You've Been Invited!</h2>
      <p>You've been invited to join the <strong>Band Rehearsal Scheduler</strong>. This application helps band members coordinate rehearsal schedules.</p>

      <div style="margin: 30px 0; text-align: center;">
        <a href="{{.URL}}" style="background-color: #2196f3; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; display: inline-block; font-weight: bold;">
          Accept Invitation
        </a>
      </div>

      <p style="color: #666; font-size: 14px;">This invitation link will expire in 7 days.</p>

      <p style="color: #666; font-size: 14px;">If the button doesn't work, copy and paste this URL into your browser:</p>
      <p style="background-color: #f5f5f5; padding: 10px; border-radius: 4px; font-size: 14px; word-break: break-all;">
        {{.URL}}
      </p>

      <p>If you have any questions, please contact the administrator.</p>

      <p>Thank you!</p>
    </div>
  </body>
</html>
`

const invitationTextTemplateText = `Hello!

You've been invited to join the Band Rehearsal Scheduler. This application helps band members coordinate rehearsal schedules.

To accept this invitation, please visit the following link:
{{.URL}}

This invitation link will expire in 7 days.

If you have any questions, please contact the administrator.

Thank you!
`

var (
	digestTemplate         = template.Must(template.New("digest").Parse(digestTemplateText))
	invitationHTMLTemplate = template.Must(template.New("invitation").Parse(invitationHTMLTemplateText))
)

type digestRow struct {
	Date      string
	Decliners []application.DigestDecliner
}

type digestView struct {
	AppURL string
	Rows   []digestRow
}

// renderDigest produces the HTML table report for the given entries.
func renderDigest(appURL string, entries []application.DigestEntry) (string, error) {
	view := digestView{AppURL: appURL, Rows: make([]digestRow, 0, len(entries))}
	for _, entry := range entries {
		view.Rows = append(view.Rows, digestRow{
			Date:      entry.Date.Format("02 Jan"),
			Decliners: entry.Decliners,
		})
	}

	var out strings.Builder
	if err := digestTemplate.Execute(&out, view); err != nil {
		return "", fmt.Errorf("mail: render digest: %w", err)
	}
	return out.String(), nil
}

// renderInvitation produces the HTML and plain text bodies for an invitation.
func renderInvitation(appURL, token string) (html string, text string, err error) {
	url := fmt.Sprintf("%s/register/%s", strings.TrimRight(appURL, "/"), token)

	var htmlOut strings.Builder
	if err := invitationHTMLTemplate.Execute(&htmlOut, struct{ URL string }{URL: url}); err != nil {
		return "", "", fmt.Errorf("mail: render invitation: %w", err)
	}

	text = strings.ReplaceAll(invitationTextTemplateText, "{{.URL}}", url)
	return htmlOut.String(), text, nil
}
