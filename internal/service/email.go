package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"marketplace-admin-backend/internal/domain"
	"marketplace-admin-backend/internal/logger"
)

type mailSender interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

type sendGridEmailService struct {
	client          mailSender
	fromEmail       string
	fromName        string
	moderatorsEmail string
}

func NewSendGridEmailService(apiKey, fromEmail, fromName, moderatorsEmail string) EmailService {
	return &sendGridEmailService{
		client:          sendgrid.NewSendClient(apiKey),
		fromEmail:       fromEmail,
		fromName:        fromName,
		moderatorsEmail: moderatorsEmail,
	}
}

func (s *sendGridEmailService) send(ctx context.Context, toEmail, toName, subject, body string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	logger.ExternalServiceCall("sendgrid", "send", "subject", subject)
	response, err := s.client.Send(message)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", "send", err, "subject", subject)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *sendGridEmailService) SendDisputeResolvedNotification(ctx context.Context, d *domain.Dispute) error {
	res, ok := d.Resolution.Get()
	if !ok || s.moderatorsEmail == "" {
		return nil
	}
	subject := fmt.Sprintf("Dispute %s resolved: %s", d.ID, res.Outcome)
	body := fmt.Sprintf("Dispute %s on order %s (%s) was resolved with outcome %s.\n\n%s\n\nBuyer: %s\nSeller: %s\nAmount: %s %s",
		d.ID, d.OrderID, d.ServiceTitle, res.Outcome, res.Note, d.BuyerID, d.SellerID, d.Amount.StringFixed(2), d.Currency)
	return s.send(ctx, s.moderatorsEmail, "Moderators", subject, body)
}

func (s *sendGridEmailService) SendAccountStatusNotification(ctx context.Context, u *domain.User) error {
	subject := "Your marketplace account status has changed"
	body := fmt.Sprintf("Hello %s,\n\nYour account status is now: %s.", u.Name, u.Status)
	if reason, ok := u.SuspendedReason.Get(); ok {
		body += fmt.Sprintf("\n\nReason: %s", reason)
	}
	body += "\n\nBest regards,\nThe Marketplace Team"
	return s.send(ctx, u.Email, u.Name, subject, body)
}

func (s *sendGridEmailService) SendAdminNotification(ctx context.Context, subject, message string) error {
	if s.moderatorsEmail == "" {
		return nil
	}
	return s.send(ctx, s.moderatorsEmail, "Moderators", subject, message)
}

// logEmailService records notifications in the log instead of sending them.
type logEmailService struct{}

func NewLogEmailService() EmailService {
	return logEmailService{}
}

func (logEmailService) SendDisputeResolvedNotification(ctx context.Context, d *domain.Dispute) error {
	logger.Info("Email skipped: dispute resolved", "disputeID", d.ID, "status", d.Status)
	return nil
}

func (logEmailService) SendAccountStatusNotification(ctx context.Context, u *domain.User) error {
	logger.Info("Email skipped: account status", "userID", u.ID, "status", u.Status)
	return nil
}

func (logEmailService) SendAdminNotification(ctx context.Context, subject, message string) error {
	logger.Info("Email skipped: admin notification", "subject", subject)
	return nil
}
