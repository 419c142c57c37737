package notify

import (
	"time"

	"github.com/rs/zerolog"
	gomail "gopkg.in/mail.v2"
)

// RenderedMessage is an email ready to send.
type RenderedMessage struct {
	Subject string
	Text    string
	HTML    string
}

// EmailConfig holds SMTP configuration for sending emails.
type EmailConfig struct {
	SMTPServer string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	FromEmail  string
	ToEmail    string
	Enabled    bool
	Timeout    time.Duration
}

// EmailSender delivers messages via SMTP.
type EmailSender struct {
	cfg EmailConfig
	log zerolog.Logger
}

func NewEmailSender(cfg EmailConfig, log zerolog.Logger) *EmailSender {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.FromEmail == "" {
		cfg.FromEmail = cfg.SMTPUser
	}
	return &EmailSender{cfg: cfg, log: log}
}

func (s *EmailSender) Enabled() bool {
	return s != nil && s.cfg.Enabled
}

// Send delivers an email with HTML body and plain text fallback.
func (s *EmailSender) Send(msg *RenderedMessage) error {
	if !s.Enabled() {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.FromEmail)
	m.SetHeader("To", s.cfg.ToEmail)
	m.SetHeader("Subject", msg.Subject)

	if msg.HTML != "" && msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	} else if msg.HTML != "" {
		m.SetBody("text/html", msg.HTML)
	} else {
		m.SetBody("text/plain", msg.Text)
	}

	dialer := gomail.NewDialer(s.cfg.SMTPServer, s.cfg.SMTPPort, s.cfg.SMTPUser, s.cfg.SMTPPass)
	dialer.Timeout = s.cfg.Timeout

	if err := dialer.DialAndSend(m); err != nil {
		s.log.Error().Err(err).Str("to", s.cfg.ToEmail).Str("subject", msg.Subject).Msg("Failed to send email")
		return err
	}

	s.log.Info().Str("subject", msg.Subject).Msg("Email sent")
	return nil
}
