package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/andrei-iacobb/neatplan-sub001/internal/models"
)

const defaultSMTPPort = 587

// SMTPConfig is the complete mail configuration. It is fixed when the Mailer is built.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// Enabled reports whether there is enough configuration to send mail.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != "" && len(c.To) > 0
}

func (c SMTPConfig) port() int {
	if c.Port == 0 {
		return defaultSMTPPort
	}
	return c.Port
}

// Mailer sends one digest email per sweep that found newly overdue assignments.
type Mailer struct {
	cfg  SMTPConfig
	send func(ctx context.Context, msg *mail.Msg) error
}

func NewMailer(cfg SMTPConfig) *Mailer {
	m := &Mailer{cfg: cfg}
	m.send = m.dialAndSend
	return m
}

func (m *Mailer) NotifyOverdue(ctx context.Context, overdue []models.Assignment) error {
	if len(overdue) == 0 {
		return nil
	}
	if !m.cfg.Enabled() {
		return errors.New("notify: smtp not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := m.digest(overdue)
	if err != nil {
		return fmt.Errorf("notify: build overdue digest: %w", err)
	}
	if err := m.send(ctx, msg); err != nil {
		return fmt.Errorf("notify: send overdue digest: %w", err)
	}
	return nil
}

func (m *Mailer) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
		mail.WithPort(m.cfg.port()),
		mail.WithTimeout(30 * time.Second),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	return mail.NewClient(m.cfg.Host, opts...)
}

func (m *Mailer) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	c, err := m.client()
	if err != nil {
		return err
	}
	return c.DialAndSendWithContext(ctx, msg)
}

// digest renders the overdue list as a plain-text message. Addresses and headers
// are encoded by go-mail, so display names may carry non-ASCII text.
func (m *Mailer) digest(overdue []models.Assignment) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return nil, err
	}
	if err := msg.To(m.cfg.To...); err != nil {
		return nil, err
	}
	msg.Subject(fmt.Sprintf("[NeatPlan] %d cleaning assignment(s) overdue", len(overdue)))
	msg.SetDate()

	var body strings.Builder
	body.WriteString("The following assignments are past their grace period:\r\n\r\n")
	for _, a := range overdue {
		subject := a.SubjectName
		if subject == "" {
			subject = fmt.Sprintf("%s #%d", a.Kind, a.SubjectID)
		}
		fmt.Fprintf(&body, "- %s: %s (%s), due %s\r\n",
			subject, a.ScheduleTitle, a.Frequency, a.NextDue.UTC().Format(time.RFC1123))
	}
	msg.SetBodyString(mail.TypeTextPlain, body.String())
	return msg, nil
}
