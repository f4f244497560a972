package mailer

import (
	"context"
	"fmt"
	"html"

	"todo_webapp/internal/domain"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridMailer emails a copy of each notification to its recipient
type SendGridMailer struct {
	from    *sgmail.Email
	baseURL string
	send    func(ctx context.Context, m *sgmail.SGMailV3) (int, error)
}

func NewSendGridMailer(apiKey, from, baseURL string) *SendGridMailer {
	client := sendgrid.NewSendClient(apiKey)
	return &SendGridMailer{
		from:    sgmail.NewEmail("ToDo", from),
		baseURL: baseURL,
		send: func(ctx context.Context, m *sgmail.SGMailV3) (int, error) {
			resp, err := client.SendWithContext(ctx, m)
			if err != nil {
				return 0, err
			}
			return resp.StatusCode, nil
		},
	}
}

// Deliver sends the email. Guests have no real address and are skipped.
func (m *SendGridMailer) Deliver(ctx context.Context, recipient *domain.User, n *domain.Notification) error {
	if recipient == nil || recipient.Guest || recipient.Email == "" {
		return nil
	}

	to := sgmail.NewEmail(recipient.DisplayName(), recipient.Email)
	link := m.baseURL + "/notifications"
	plain := fmt.Sprintf("%s\n\n%s", n.Message, link)
	htmlBody := fmt.Sprintf("<p>%s</p><p><a href=%q>Open notifications</a></p>",
		html.EscapeString(n.Message), link)

	message := sgmail.NewSingleEmail(m.from, n.Title, to, plain, htmlBody)
	status, err := m.send(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if status >= 300 {
		return fmt.Errorf("sendgrid: status %d", status)
	}
	return nil
}
