// Package notify builds the account emails and hands them to a delivery
// backend: the log, a RabbitMQ queue, a Kafka topic or an S3 spool bucket.
// Rendering and SMTP belong to whatever consumes those.
package notify

import (
	"context"
	"io"
	"net/url"
)

// Kinds of message.
const (
	KindVerifyEmail   = "verify_email"
	KindResetPassword = "reset_password"
)

// Message is the job handed to a Sender. It is also the JSON document
// published by the queue backends.
type Message struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	Link    string `json:"link"`
}

// Dispatcher sends the two account emails AuthService needs.
type Dispatcher interface {
	SendVerificationEmail(ctx context.Context, to, token string) error
	SendResetPasswordEmail(ctx context.Context, to, token string) error
}

// Sender delivers one prepared Message.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// Mailer composes messages with links back to the client and passes them to
// a Sender.
type Mailer struct {
	clientURL string
	sender    Sender
	newID     func() string
}

func NewMailer(clientURL string, sender Sender) *Mailer {
	return &Mailer{clientURL: clientURL, sender: sender, newID: newMessageID}
}

func (m *Mailer) link(path, token string) string {
	return m.clientURL + path + "?token=" + url.QueryEscape(token)
}

func (m *Mailer) SendVerificationEmail(ctx context.Context, to, token string) error {
	link := m.link("/v1/auth/verify-email", token)
	return m.sender.Send(ctx, Message{
		ID:      m.newID(),
		Kind:    KindVerifyEmail,
		To:      to,
		Subject: "Email Verification",
		Text:    "To verify your email, click on this link: " + link,
		Link:    link,
	})
}

func (m *Mailer) SendResetPasswordEmail(ctx context.Context, to, token string) error {
	link := m.link("/reset-password", token)
	return m.sender.Send(ctx, Message{
		ID:      m.newID(),
		Kind:    KindResetPassword,
		To:      to,
		Subject: "Reset password",
		Text:    "To reset your password, click on this link: " + link + "\nIf you did not request any password resets, then ignore this email.",
		Link:    link,
	})
}

// Close releases the sender if it holds a connection.
func (m *Mailer) Close() error {
	if c, ok := m.sender.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
