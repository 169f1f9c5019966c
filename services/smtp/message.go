package smtp

import (
	"bytes"
	"fmt"

	"github.com/jhillyerd/enmime"
	"github.com/pkg/errors"

	"github.com/DanishNadar/ttp-tracker/internal/utils"
)

// Identity is who the outreach mail comes from
type Identity struct {
	Name             string
	Email            string
	ReplyTo          string
	UnsubscribeEmail string
	// Domain is the right-hand side of generated Message-IDs
	Domain string
}

type OutboundEmail struct {
	To        string
	Subject   string
	Plain     string
	HTML      string
	MessageID string
}

func (e *OutboundEmail) validate() error {
	switch {
	case e == nil:
		return errors.New("email cannot be nil")
	case !utils.IsDeliverableAddress(e.To):
		return errors.Errorf("invalid recipient %q", e.To)
	case e.Subject == "":
		return errors.New("email must have a subject")
	case e.Plain == "" && e.HTML == "":
		return errors.New("email must have either text or HTML content")
	case e.MessageID == "":
		return errors.New("email must have a message id")
	}
	return nil
}

// BuildMessage renders a multipart/alternative message with outreach headers
func BuildMessage(from Identity, email *OutboundEmail) ([]byte, error) {
	if err := email.validate(); err != nil {
		return nil, err
	}

	replyTo := from.ReplyTo
	if replyTo == "" {
		replyTo = from.Email
	}

	builder := enmime.Builder().
		From(from.Name, from.Email).
		To("", email.To).
		ReplyTo("", replyTo).
		Subject(email.Subject).
		Text([]byte(email.Plain)).
		HTML([]byte(email.HTML)).
		Header("Message-ID", utils.GenerateMessageID(email.MessageID, from.Domain)).
		Header("X-Auto-Generated", "true")

	if from.UnsubscribeEmail != "" {
		builder = builder.Header("List-Unsubscribe", fmt.Sprintf("<mailto:%s?subject=unsubscribe>", from.UnsubscribeEmail))
	}

	part, err := builder.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build mime message")
	}

	var buffer bytes.Buffer
	if err := part.Encode(&buffer); err != nil {
		return nil, errors.Wrap(err, "encode mime message")
	}
	return buffer.Bytes(), nil
}
