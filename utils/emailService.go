package utils

import (
	"fmt"
	"net/http"

	"lms/config"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendGridMailer delivers transactional emails through the SendGrid v3 API.
type SendGridMailer struct {
	key  string
	from *sgmail.Email
}

// NewSendGridMailer returns nil when no API key is configured.
func NewSendGridMailer(cfg *config.Config) *SendGridMailer {
	if cfg.SendGridAPIKey == "" || cfg.EmailSender == "" {
		return nil
	}
	return &SendGridMailer{
		key:  cfg.SendGridAPIKey,
		from: sgmail.NewEmail(cfg.EmailSenderName, cfg.EmailSender),
	}
}

func (m *SendGridMailer) Send(toEmail, toName, subject, html string) error {
	req := sendgrid.GetRequest(m.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m.prepare(toEmail, toName, subject, html))

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sending email: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

func (m *SendGridMailer) prepare(toEmail, toName, subject, html string) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = subject
	p.AddTos(sgmail.NewEmail(toName, toEmail))

	msg := sgmail.NewV3Mail()
	msg.SetFrom(m.from)
	msg.AddPersonalizations(p)
	msg.AddContent(sgmail.NewContent("text/html", getEmailTemplate(subject, html)))
	return msg
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.content { padding: 40px 30px; color: #1F2937; line-height: 1.6; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">This is an automated message, please do not reply.</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}
