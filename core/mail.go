package core

import (
	"context"
	"net/mail"
	"strings"
)

type (
	EmailMessage struct {
		From        mail.Address
		To          []mail.Address
		Subject     string
		TextContent string
		HTMLContent string
	}

	// SendResult is what a transport reports back for an accepted message.
	SendResult struct {
		Success   bool   `json:"success"`
		MessageID string `json:"messageId"`
		Response  string `json:"response"`
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// Send delivers msg synchronously.
		Send(ctx context.Context, msg *EmailMessage) (*SendResult, error)
		// Verify checks that the transport is reachable and its credentials are accepted.
		Verify(ctx context.Context) error
	}
)

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return (m.TextContent != "") || (m.HTMLContent != "") }

func (m *EmailMessage) Recipients() []string {
	addrs := make([]string, 0, len(m.To))
	for _, a := range m.To {
		addrs = append(addrs, a.Address)
	}
	return addrs
}

// ParseAddressList parses a comma separated address list. Values that are not
// RFC 5322 addresses are kept as bare addresses.
func ParseAddressList(s string) []mail.Address {
	s = CleanString(s)
	if s == "" {
		return nil
	}
	if list, err := mail.ParseAddressList(s); err == nil {
		addrs := make([]mail.Address, 0, len(list))
		for _, a := range list {
			addrs = append(addrs, *a)
		}
		return addrs
	}
	parts := strings.Split(s, ",")
	addrs := make([]mail.Address, 0, len(parts))
	for _, p := range parts {
		if p = CleanString(p); p != "" {
			addrs = append(addrs, mail.Address{Address: p})
		}
	}
	return addrs
}

// TextToHTML renders plain text as HTML by turning line breaks into <br>.
func TextToHTML(s string) string {
	return strings.ReplaceAll(s, "\n", "<br>")
}
