package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/gaston-app/budget-service/internal/config"
	"github.com/gaston-app/budget-service/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

func (s *Sender) send(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %v: %v", e.To, err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	s.logger.Infof("Email sent to %v: %s", e.To, e.Subject)
	return nil
}

// SendPaymentReminder emails a debt payment reminder. Debts in arrears
// get the overdue wording.
func (s *Sender) SendPaymentReminder(to string, debt models.Debt, dueDate time.Time) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}

	installment := debt.EstimatedInstallment()
	if debt.MonthsInArrears > 0 {
		e.Subject = fmt.Sprintf("Overdue payment: %s", debt.Name)
		e.Text = []byte(fmt.Sprintf(
			"Your debt %q is %d month(s) in arrears.\n"+
				"Estimated installment: %s\n"+
				"Outstanding balance: %s\n\n"+
				"Please make a payment as soon as possible to avoid further penalties.\n",
			debt.Name, debt.MonthsInArrears, installment, debt.Remaining(),
		))
	} else {
		e.Subject = fmt.Sprintf("Upcoming payment: %s", debt.Name)
		e.Text = []byte(fmt.Sprintf(
			"This is a reminder that a payment on %q is due on %s.\n"+
				"Estimated installment: %s\n"+
				"Outstanding balance: %s\n",
			debt.Name, dueDate.Format("2006-01-02"), installment, debt.Remaining(),
		))
	}

	return s.send(e)
}

// SendGoalReached congratulates the owner when a goal hits its target
func (s *Sender) SendGoalReached(to string, goal models.FinancialGoal) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Goal reached: %s", goal.Name)
	e.Text = []byte(fmt.Sprintf(
		"Congratulations! Your goal %q has reached its target of %s.\n"+
			"Total saved: %s\n",
		goal.Name, goal.TargetAmount, goal.CurrentAmount,
	))

	return s.send(e)
}
