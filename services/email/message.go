package emailsvc

import (
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/assistant/core"
)

// newMessageID returns a unique Message-Id (without angle brackets) in the sender's domain.
func newMessageID(from string) string {
	domain := "localhost"
	if i := strings.LastIndex(from, "@"); i >= 0 && i < len(from)-1 {
		domain = from[i+1:]
	}
	return uuid.NewString() + "@" + domain
}

// writeMessage renders msg as a multipart/alternative MIME message.
func writeMessage(w io.Writer, msg *core.EmailMessage, messageID string, date time.Time) error {
	from := msg.From
	to := make([]*mail.Address, 0, len(msg.To))
	for i := range msg.To {
		to = append(to, &msg.To[i])
	}

	var h mail.Header
	h.SetDate(date)
	h.SetAddressList("From", []*mail.Address{&from})
	h.SetAddressList("To", to)
	h.SetSubject(msg.Subject)
	h.SetMessageID(messageID)

	mw, err := mail.CreateWriter(w, h)
	if err != nil {
		return errors.Wrap(err, "creating mail writer")
	}
	aw, err := mw.CreateInline()
	if err != nil {
		return errors.Wrap(err, "creating multipart/alternative part")
	}

	parts := []struct {
		contentType string
		content     string
	}{
		{"text/plain", msg.TextContent},
		{"text/html", msg.HTMLContent},
	}
	for _, p := range parts {
		if p.content == "" {
			continue
		}
		var ph mail.InlineHeader
		ph.SetContentType(p.contentType, map[string]string{"charset": "utf-8"})
		pw, err := aw.CreatePart(ph)
		if err != nil {
			return errors.Wrapf(err, "creating %s part", p.contentType)
		}
		if _, err := io.WriteString(pw, p.content); err != nil {
			return errors.Wrapf(err, "writing %s part", p.contentType)
		}
		if err := pw.Close(); err != nil {
			return errors.Wrapf(err, "closing %s part", p.contentType)
		}
	}

	if err := aw.Close(); err != nil {
		return errors.Wrap(err, "closing multipart/alternative part")
	}
	return errors.Wrap(mw.Close(), "closing mail writer")
}

func checkMessage(msg *core.EmailMessage) error {
	if !msg.HasRecipients() {
		return errors.New("no recipients defined")
	}
	if msg.From.Address == "" {
		return errors.New("no sender defined")
	}
	if !msg.HasContent() {
		return errors.New("no content defined")
	}
	return nil
}
