package notify

import (
	"fmt"
	"net/smtp"

	"ewaste-pickup/internal/config"
)

// Mailer sends plain-text notification emails over SMTP. Delivery is best
// effort end to end; callers log failures and move on.
type Mailer struct {
	cfg config.EmailConfig
}

func NewMailer(cfg config.EmailConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.cfg.From, to, subject, body)

	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort
	var a smtp.Auth
	if m.cfg.SMTPUsername != "" {
		a = smtp.PlainAuth("", m.cfg.SMTPUsername, m.cfg.SMTPPassword, m.cfg.SMTPHost)
	}
	return smtp.SendMail(addr, a, m.cfg.From, []string{to}, []byte(msg))
}
