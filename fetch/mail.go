package fetch

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	fhttp "github.com/spruceid/rebase-sub001/fetch/http"
)

const DefaultSendGridEndpoint = "https://api.sendgrid.com"

// Message is an email sent to a subject.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers email challenges.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// SendGrid sends mail with the SendGrid v3 API. The channel must carry the
// bearer token and accept 202 responses.
type SendGrid struct {
	channel  *fhttp.Channel
	endpoint string
	from     string
}

func NewSendGrid(channel *fhttp.Channel, endpoint, from string) *SendGrid {
	if endpoint == "" {
		endpoint = DefaultSendGridEndpoint
	}
	return &SendGrid{channel, strings.TrimSuffix(endpoint, "/"), from}
}

type sendGridAddress struct {
	Email string `json:"email"`
}

type sendGridPersonalization struct {
	To []sendGridAddress `json:"to"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridRequest struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
}

func (s *SendGrid) Send(ctx context.Context, m Message) error {
	to, err := mail.ParseAddress(m.To)
	if err != nil {
		return fmt.Errorf("invalid recipient %q: %w", m.To, err)
	}
	req := sendGridRequest{
		Personalizations: []sendGridPersonalization{{To: []sendGridAddress{{Email: to.Address}}}},
		From:             sendGridAddress{Email: s.from},
		Subject:          m.Subject,
		Content:          []sendGridContent{{Type: "text/plain", Value: m.Body}},
	}

	log.Debugw("sending email", "to", to.Address)
	if _, err := s.channel.PostJSON(ctx, s.endpoint+"/v3/mail/send", req); err != nil {
		return fmt.Errorf("sending email to %s: %w", to.Address, err)
	}
	return nil
}
