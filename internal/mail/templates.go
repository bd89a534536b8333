package mail

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	texttemplate "text/template"
)

//go:embed templates/*
var templateFS embed.FS

var (
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt"))
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html"))
)

// ResetPasswordData fills the reset_password templates.
type ResetPasswordData struct {
	Username string
	Link     string
	Minutes  int
}

// ResetPassword builds the password reset email for to.
func ResetPassword(to string, data ResetPasswordData) (Message, error) {
	var text, html bytes.Buffer
	if err := textTemplates.ExecuteTemplate(&text, "reset_password.txt", data); err != nil {
		return Message{}, err
	}
	if err := htmlTemplates.ExecuteTemplate(&html, "reset_password.html", data); err != nil {
		return Message{}, err
	}
	return Message{
		To:      []string{to},
		Subject: "[Microblog] Reset Your Password",
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
