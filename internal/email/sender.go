// Package email delivers lost-pet alert notifications to community
// members. It supports both development mode (log-only) and production
// mode (SMTP).
package email

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strconv"

	"petplaza/internal/feed"
)

// Sender defines the interface for sending alert emails
type Sender interface {
	SendLostPetAlert(recipient string, event feed.AlertEvent) error
}

// Config holds email configuration
type Config struct {
	Mode     string // "log" or "smtp"
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

// NewConfig creates a new email configuration from environment variables
func NewConfig() *Config {
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))

	return &Config{
		Mode:     getEnvOrDefault("EMAIL_MODE", "log"),
		Host:     os.Getenv("SMTP_HOST"),
		Port:     port,
		User:     os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     getEnvOrDefault("SMTP_FROM", "alerts@petplaza.local"),
		FromName: getEnvOrDefault("SMTP_FROM_NAME", "PetPlaza Alerts"),
	}
}

// NewSender creates a new email sender based on configuration
func NewSender(cfg *Config) Sender {
	if cfg.Mode == "smtp" {
		return &smtpSender{config: cfg}
	}
	return &logSender{}
}

// logSender logs alerts to console (development mode)
type logSender struct{}

func (s *logSender) SendLostPetAlert(recipient string, event feed.AlertEvent) error {
	log.Printf("[DEV] Lost pet alert for %s: %s reported %q (post %s)",
		recipient, event.AuthorName, event.Caption, event.PostID)
	return nil
}

// smtpSender sends alerts via SMTP (production mode)
type smtpSender struct {
	config *Config
}

func (s *smtpSender) SendLostPetAlert(recipient string, event feed.AlertEvent) error {
	subject := fmt.Sprintf("Lost pet alert from %s", event.AuthorName)
	body := s.buildAlertBody(event)

	message := fmt.Sprintf("From: %s <%s>\r\n", s.config.FromName, s.config.From)
	message += fmt.Sprintf("To: %s\r\n", recipient)
	message += fmt.Sprintf("Subject: %s\r\n", subject)
	message += "MIME-Version: 1.0\r\n"
	message += "Content-Type: text/html; charset=UTF-8\r\n"
	message += "\r\n"
	message += body

	auth := smtp.PlainAuth("", s.config.User, s.config.Password, s.config.Host)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	if err := smtp.SendMail(addr, auth, s.config.From, []string{recipient}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("Lost pet alert sent to %s via SMTP", recipient)
	return nil
}

func (s *smtpSender) buildAlertBody(event feed.AlertEvent) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Lost Pet Alert</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background: #d9534f; padding: 30px; text-align: center; border-radius: 10px 10px 0 0;">
        <h1 style="color: white; margin: 0;">Lost Pet Alert</h1>
    </div>

    <div style="background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px;">
        <p style="font-size: 16px;"><strong>%s</strong> reported a lost pet in your community:</p>

        <div style="background: white; border: 2px solid #d9534f; border-radius: 8px; padding: 20px; margin: 20px 0;">
            <p style="font-size: 18px; margin: 0;">%s</p>
        </div>

        <p style="font-size: 14px; color: #666;">
            Reported at %s. Open the feed to see the photo and leave a comment
            if you have seen this pet.
        </p>

        <hr style="border: none; border-top: 1px solid #ddd; margin: 30px 0;">

        <p style="font-size: 12px; color: #999; text-align: center;">
            This is an automated message, please do not reply to this email.
        </p>
    </div>
</body>
</html>
`, event.AuthorName, event.Caption, event.CreatedAt.Format("Jan 2, 2006 15:04 MST"))
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
