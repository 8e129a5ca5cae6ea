/*
email.go - Customer email notifications

PURPOSE:
  Implements bank.Notifier over SMTP. Notifications are best-effort:
  failures are logged and swallowed, never propagated into the
  simulation loop that raised the event.
*/
package notify

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/aegean/bank-engine/bank"
	"github.com/aegean/bank-engine/config"
)

// Sender sends customer notifications via SMTP.
type Sender struct {
	cfg *config.Config
	log *logrus.Logger
}

var _ bank.Notifier = (*Sender)(nil)

// NewSender creates an email sender from the process configuration.
func NewSender(cfg *config.Config, log *logrus.Logger) *Sender {
	return &Sender{cfg: cfg, log: log}
}

// BillOverdue notifies a customer that a bill has passed its due date.
func (s *Sender) BillOverdue(toEmail, name string, bill bank.Bill, current bank.Date) {
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your bill from %s of %s EUR was due on %s and is now overdue.\n"+
			"Reference: %s\n"+
			"Please arrange payment at your earliest convenience.\n"+
			"\nBest regards,\nAegean Bank",
		name, bill.ProviderName, bill.Amount.StringFixed(2), bill.DueDate, bill.RFCode,
	)
	s.send(toEmail, "Overdue Bill Notification", body)
}

// OrderSkipped notifies a customer that a standing order cycle did not
// execute.
func (s *Sender) OrderSkipped(toEmail, name string, order bank.StandingOrder, reason string) {
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your standing order %s (%s) could not be executed: %s.\n"+
			"The order remains active and will be retried.\n"+
			"\nBest regards,\nAegean Bank",
		name, order.ID, order.Description, reason,
	)
	s.send(toEmail, "Standing Order Not Executed", body)
}

func (s *Sender) send(to, subject, body string) {
	if !s.cfg.EmailEnabled() {
		s.log.WithField("to", to).Debug("email disabled, notification dropped")
		return
	}

	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.log.Errorf("Failed to send email to %s: %v", to, err)
		return
	}
	s.log.Infof("Email sent to %s: %s", to, subject)
}
