package notifier

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"text/template"

	"github.com/fonyuygita/protrack-backend/internal/config"
)

var dueTemplate = template.Must(template.New("due").Parse(
	`Subject: Monthly payment due

Hello {{.Name}},

Your monthly subscription payment is due. Please complete it to keep your
account active.
`))

var preBlockTemplate = template.Must(template.New("preblock").Parse(
	`Subject: Your access expires in {{.DaysUntilBlock}} day(s)

Hello {{.Name}},

Your last payment was on {{.LastPaidAt.Format "2 Jan 2006"}}. Your access
will be blocked on {{.BlockDate.Format "2 Jan 2006"}} unless a new payment
is made before then.
`))

type smtpNotifier struct {
	cfg config.SMTPConfig
}

// NewSMTPNotifier returns a Notifier that delivers reminders over plain SMTP.
func NewSMTPNotifier(cfg config.SMTPConfig) Notifier {
	return &smtpNotifier{cfg: cfg}
}

func (n *smtpNotifier) SendDueReminder(ctx context.Context, email, displayName string) error {
	var body bytes.Buffer
	if err := dueTemplate.Execute(&body, struct{ Name string }{displayName}); err != nil {
		return fmt.Errorf("render due reminder: %w", err)
	}

	return n.send(email, body.Bytes())
}

func (n *smtpNotifier) SendPreBlockReminder(ctx context.Context, email, displayName string, info PreBlockInfo) error {
	data := struct {
		Name string
		PreBlockInfo
	}{displayName, info}

	var body bytes.Buffer
	if err := preBlockTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("render pre-block reminder: %w", err)
	}

	return n.send(email, body.Bytes())
}

func (n *smtpNotifier) send(to string, msg []byte) error {
	addr := n.cfg.Host + ":" + n.cfg.Port

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, n.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	return nil
}
