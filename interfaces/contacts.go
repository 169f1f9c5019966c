package interfaces

import "github.com/DanishNadar/ttp-tracker/services/contacts"

type ContactResolver interface {
	Resolve(domain string) (contacts.Contact, bool)
}
