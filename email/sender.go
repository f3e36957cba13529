package email

import (
	"Fatura/Models"
	"fmt"
	"net/smtp"
	"strings"
)

// SendEmail sends an email using the provided configuration and message details
func SendEmail(config Models.EmailConfig, message Models.EmailMessage) error {
	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("%s <%s>", config.FromName, config.FromEmail)
	headers["To"] = strings.Join(message.To, ", ")
	headers["Subject"] = message.Subject

	if message.IsHTML {
		headers["MIME-Version"] = "1.0"
		headers["Content-Type"] = "text/html; charset=UTF-8"
	} else {
		headers["Content-Type"] = "text/plain; charset=UTF-8"
	}

	var messageBody strings.Builder
	for key, value := range headers {
		messageBody.WriteString(fmt.Sprintf("%s: %s\r\n", key, value))
	}
	messageBody.WriteString("\r\n")
	messageBody.WriteString(message.Body)

	auth := smtp.PlainAuth("", config.Username, config.Password, config.SMTPServer)
	serverAddr := fmt.Sprintf("%s:%d", config.SMTPServer, config.SMTPPort)

	return smtp.SendMail(serverAddr, auth, config.FromEmail, message.To, []byte(messageBody.String()))
}
