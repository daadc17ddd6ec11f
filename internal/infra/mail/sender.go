package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templatesFS embed.FS

var noticeTemplate = template.Must(template.ParseFS(templatesFS, "templates/notice.html"))

// Dialer é o que o envio usa do *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	if from == "" {
		from = "nao-responda@liguerateio.com"
	}
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		dialer:   gomail.NewDialer(host, port, user, password),
	}
}

// SendNotice manda os avisos de cobrança (nova, vencida, paga) e de suspensão.
func (s *EmailSender) SendNotice(to, name, subject, message string) error {
	if to == "" {
		return fmt.Errorf("destinatário vazio")
	}

	var body bytes.Buffer
	data := NoticeEmailData{Name: name, Subject: subject, Message: message}
	if err := noticeTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("erro ao processar template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body.String())
	m.AddAlternative("text/plain", fmt.Sprintf("Olá, %s!\n\n%s", name, message))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}
	return nil
}
