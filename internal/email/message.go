package email

import (
	"bytes"
	"fmt"
	htemplate "html/template"
	"strings"
	ttemplate "text/template"

	mail "github.com/go-mail/mail"
	"github.com/google/uuid"
)

// ─── Email de prueba ───

const testEmailStyles = `
body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #f4f4f7; color: #333; margin: 0; padding: 0; }
.container { max-width: 600px; margin: 0 auto; background-color: #ffffff; border-radius: 12px; overflow: hidden; }
.content { padding: 32px; line-height: 1.6; }
.info-card { background: #f8f9ff; border-left: 4px solid #667eea; padding: 16px 20px; margin: 20px 0; }
.timestamp { color: #999; font-size: 12px; margin-top: 16px; }
`

var testEmailHTML = htemplate.Must(htemplate.New("smtp_test_html").Parse(`<!doctype html>
<html>
<head>
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<style>{{.Styles}}</style>
</head>
<body>
  <div class="container">
    <div class="content">
      <h2>{{.Heading}}</h2>
      <p>{{.Intro}}</p>
      <p>{{.Received}}</p>
      <div class="info-card">
        <p>{{.SettingsUsed}}</p>
        <ul>
          <li>{{.LabelServer}}: {{.Host}}</li>
          <li>{{.LabelPort}}: {{.Port}}</li>
          <li>{{.LabelTLS}}: {{.TLS}}</li>
        </ul>
      </div>
      <p class="timestamp">{{.Timestamp}}</p>
    </div>
  </div>
</body>
</html>`))

var testEmailText = ttemplate.Must(ttemplate.New("smtp_test_text").Parse(`{{.Heading}}

{{.Intro}}
{{.Received}}

{{.SettingsUsed}}
- {{.LabelServer}}: {{.Host}}
- {{.LabelPort}}: {{.Port}}
- {{.LabelTLS}}: {{.TLS}}

{{.Timestamp}}
`))

// TestEmailContent contiene el contenido del email de prueba.
type TestEmailContent struct {
	Subject  string
	HTMLBody string
	TextBody string
}

// TestEmail renderiza el email de prueba en el idioma pedido.
func (t *Translator) TestEmail(accept string, d DialConfig, timestamp string) (TestEmailContent, error) {
	tls := t.Text(accept, "No", nil)
	if d.SSL {
		tls = t.Text(accept, "Yes", nil)
	}
	vars := map[string]any{
		"Styles":       htemplate.CSS(testEmailStyles),
		"Heading":      t.Text(accept, "TestHeading", nil),
		"Intro":        t.Text(accept, "TestIntro", nil),
		"Received":     t.Text(accept, "TestReceived", nil),
		"SettingsUsed": t.Text(accept, "TestSettingsUsed", nil),
		"LabelServer":  t.Text(accept, "LabelServer", nil),
		"LabelPort":    t.Text(accept, "LabelPort", nil),
		"LabelTLS":     t.Text(accept, "LabelTLS", nil),
		"Host":         d.Host,
		"Port":         d.Port,
		"TLS":          tls,
		"Timestamp":    timestamp,
	}

	var html, text bytes.Buffer
	if err := testEmailHTML.Execute(&html, vars); err != nil {
		return TestEmailContent{}, fmt.Errorf("render html: %w", err)
	}
	if err := testEmailText.Execute(&text, vars); err != nil {
		return TestEmailContent{}, fmt.Errorf("render text: %w", err)
	}
	return TestEmailContent{
		Subject:  t.Text(accept, "SubjectTest", nil),
		HTMLBody: html.String(),
		TextBody: text.String(),
	}, nil
}

// newMessage arma el mensaje multipart/alternative (txt + html).
func newMessage(fromEmail, fromName, to, messageID string, c TestEmailContent) *mail.Message {
	m := mail.NewMessage()
	m.SetAddressHeader("From", fromEmail, fromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", c.Subject)
	m.SetHeader("Message-ID", messageID)
	m.SetBody("text/plain", c.TextBody)
	m.AddAlternative("text/html", c.HTMLBody)
	return m
}

// newMessageID genera "<uuid@dominio-del-remitente>".
func newMessageID(fromEmail string) string {
	domain := "localhost"
	if i := strings.LastIndexByte(fromEmail, '@'); i >= 0 && i < len(fromEmail)-1 {
		domain = fromEmail[i+1:]
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}
