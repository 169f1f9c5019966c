package interfaces

import (
	"context"

	"github.com/DanishNadar/ttp-tracker/services/smtp"
)

type Mailer interface {
	Send(ctx context.Context, email *smtp.OutboundEmail) error
}
