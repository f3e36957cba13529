package Models

import (
	"os"
	"strconv"
)

type EmailConfig struct {
	SMTPServer string
	SMTPPort   int
	Username   string
	Password   string
	FromEmail  string
	FromName   string
}

// EmailMessage represents an email to be sent
type EmailMessage struct {
	To      []string
	Subject string
	Body    string
	IsHTML  bool
}

// EmailConfigFromEnv reads SMTP settings from the environment. The second
// return value is false when no SMTP server is configured.
func EmailConfigFromEnv() (EmailConfig, bool) {
	server := os.Getenv("SMTP_SERVER")
	if server == "" {
		return EmailConfig{}, false
	}
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}
	return EmailConfig{
		SMTPServer: server,
		SMTPPort:   port,
		Username:   os.Getenv("SMTP_USERNAME"),
		Password:   os.Getenv("SMTP_PASSWORD"),
		FromEmail:  os.Getenv("SMTP_FROM_EMAIL"),
		FromName:   os.Getenv("SMTP_FROM_NAME"),
	}, true
}
