package service

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"hrportal/onboarding-api/internal/auth"
)

// Message is a notification rendered for a transport
type Message struct {
	Subject string
	HTML    string
	Text    string
}

var mailTemplate = template.Must(template.New("code").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: sans-serif">
    <p>Hi {{if .Name}}{{.Name}}{{else}}there{{end}},</p>
    <p>{{.Intro}}</p>
    <p style="font-size: 24px; letter-spacing: 4px"><strong>{{.Code}}</strong></p>
    <p>The code expires in {{.ExpiresIn}}. If you didn't ask for it you can ignore this message.</p>
  </body>
</html>`))

type mailData struct {
	Name      string
	Intro     string
	Code      string
	ExpiresIn string
}

// Render builds the subject and bodies of a notification. now is used to tell
// the user how long the code stays valid.
func Render(n auth.Notification, now time.Time) (*Message, error) {
	var subject, intro string

	switch n.Purpose {
	case auth.PurposeVerify:
		subject = "Verify your account"
		intro = "Use this code to verify your account:"
	case auth.PurposeReset:
		subject = "Reset your password"
		intro = "Use this code to reset your password:"
	default:
		return nil, fmt.Errorf("unknown notification purpose %q", n.Purpose)
	}

	expiresIn := humanDuration(n.ExpiresAt.Sub(now))

	var buf bytes.Buffer
	err := mailTemplate.Execute(&buf, mailData{
		Name:      n.Name,
		Intro:     intro,
		Code:      n.Code,
		ExpiresIn: expiresIn,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render mail, %w", err)
	}

	return &Message{
		Subject: subject,
		HTML:    buf.String(),
		Text:    fmt.Sprintf("%s %s (valid for %s)", intro, n.Code, expiresIn),
	}, nil
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= 48*time.Hour:
		return fmt.Sprintf("%d days", int(d.Hours()/24))
	case d >= 2*time.Hour:
		return fmt.Sprintf("%d hours", int(d.Hours()))
	case d >= time.Hour:
		return "1 hour"
	case d >= 2*time.Minute:
		return fmt.Sprintf("%d minutes", int(d.Minutes()))
	}

	return "a minute"
}
