package mailer

import (
	"fmt"
	"strings"
	"text/template"
)

var resetText = template.Must(template.New(TemplateResetPassword).Parse(
	`You requested a password reset for {{.AppName}}.

Use this token in the app: {{.Token}}

Or click this link: {{.Link}}

This token expires in {{.ExpiresIn}} and can be used once.
`))

// RenderTemplate renders a named template into subject and plain-text body.
func RenderTemplate(name, appName string, data map[string]any) (subject, text string, err error) {
	switch name {
	case TemplateResetPassword:
		payload := map[string]any{"AppName": appName}
		for k, v := range data {
			payload[k] = v
		}
		var b strings.Builder
		if err := resetText.Execute(&b, payload); err != nil {
			return "", "", err
		}
		return appName + " password reset", b.String(), nil
	default:
		return "", "", fmt.Errorf("unknown email template %q", name)
	}
}
