package enum

// SkipReason explains why the outreach pipeline did not send to a row
type SkipReason string

const (
	SkipInvalidDomain    SkipReason = "invalid_domain"
	SkipAlreadySent      SkipReason = "already_sent"
	SkipNoContact        SkipReason = "no_contact"
	SkipInvalidRecipient SkipReason = "invalid_recipient"
)

func (r SkipReason) String() string {
	return string(r)
}
