package service

import (
	"context"
	"fmt"

	"ecoloop-backend/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type emailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &emailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *emailService) send(ctx context.Context, to, toName, subject, body string) error {
	logger.ExternalServiceCall("sendgrid", "send", "to", to, "subject", subject)

	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)
	message := mail.NewSingleEmail(from, subject, recipient, body, "")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		logger.ExternalServiceResult("sendgrid", "send", err, "to", to)
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		err := fmt.Errorf("sendgrid error: status %d", response.StatusCode)
		logger.ExternalServiceResult("sendgrid", "send", err, "to", to)
		return err
	}

	logger.ExternalServiceResult("sendgrid", "send", nil, "to", to)
	return nil
}

func (s *emailService) SendRegistrationOTP(ctx context.Context, email, code string) error {
	body := fmt.Sprintf(`Welcome!

Thank you for registering. Your verification OTP is: %s

This OTP will expire in 5 minutes. Please enter this code to complete your registration.

If you didn't create an account, please ignore this email.

Best regards,
Eco Loop Team`, code)
	return s.send(ctx, email, "", "Verify Your Email Address", body)
}

func (s *emailService) SendLoginOTP(ctx context.Context, email, code string) error {
	body := fmt.Sprintf(`Hello,

Your OTP for login is: %s

This OTP will expire in 5 minutes. Please do not share this code with anyone.

If you didn't request this, please ignore this email.

Best regards,
Eco Loop Team`, code)
	return s.send(ctx, email, "", "Your Login OTP", body)
}

func (s *emailService) SendPasswordResetOTP(ctx context.Context, email, code string) error {
	body := fmt.Sprintf(`Hello,

We received a request to reset your password. Your OTP is: %s

This OTP will expire in 5 minutes. If you didn't request a password reset, please ignore this email.

Your password will remain unchanged until you create a new one using this OTP.

Best regards,
Eco Loop Team`, code)
	return s.send(ctx, email, "", "Password Reset Request", body)
}

func (s *emailService) SendApplicationDecision(ctx context.Context, email, name, roleName string, approved bool, notes string) error {
	decision := "approved"
	if !approved {
		decision = "rejected"
	}
	subject := fmt.Sprintf("Your %s application has been %s", roleName, decision)

	body := fmt.Sprintf("Hello %s,\n\nYour application for the %s role has been %s.", name, roleName, decision)
	if notes != "" {
		body += fmt.Sprintf("\n\nReviewer notes: %s", notes)
	}
	body += "\n\nBest regards,\nEco Loop Team"

	return s.send(ctx, email, name, subject, body)
}

func (s *emailService) SendAccountStatusNotice(ctx context.Context, email, name, status, reason string) error {
	body := fmt.Sprintf("Hello %s,\n\nYour account status has been updated to: %s.", name, status)
	if reason != "" {
		body += fmt.Sprintf("\n\nReason: %s", reason)
	}
	body += "\n\nBest regards,\nEco Loop Team"

	return s.send(ctx, email, name, "Account Status Update", body)
}
