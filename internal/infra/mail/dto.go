package mail

type NoticeEmailData struct {
	Name    string
	Subject string
	Message string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	dialer   Dialer
}
