package outreach

import (
	"github.com/DanishNadar/ttp-tracker/dto"
	"github.com/DanishNadar/ttp-tracker/interfaces"
	"github.com/DanishNadar/ttp-tracker/internal/enum"
	"github.com/DanishNadar/ttp-tracker/internal/utils"
	"github.com/DanishNadar/ttp-tracker/services/contacts"
	"github.com/DanishNadar/ttp-tracker/services/scenario"
)

// Decision is what the pipeline will do with one row. Skip is empty when the row is sent.
type Decision struct {
	Row      int
	Skip     enum.SkipReason
	Domain   string
	Scenario scenario.Scenario
	DNSHost  string
	Contact  contacts.Contact
	Company  string
}

func (d Decision) Send() bool {
	return d.Skip == ""
}

// Plan decides a row without side effects
func Plan(row dto.ScanRow, resolver interfaces.ContactResolver) Decision {
	decision := Decision{Row: row.Row}

	domain, ok := utils.NormalizeDomain(row.Website)
	if !ok {
		decision.Skip = enum.SkipInvalidDomain
		return decision
	}
	decision.Domain = domain

	if row.EmailSent {
		decision.Skip = enum.SkipAlreadySent
		return decision
	}

	// the sheet carries no weak-DMARC column
	signal := scenario.AuthSignal{
		SPFOK:   row.SPF,
		DKIMOK:  row.DKIM,
		DMARCOK: row.DMARC,
	}
	decision.Scenario = signal.Scenario()
	decision.DNSHost = utils.DNSHostFromSPF(row.SPFRecord)

	contact, found := resolver.Resolve(domain)
	if !found {
		decision.Skip = enum.SkipNoContact
		return decision
	}
	if !utils.IsDeliverableAddress(contact.Email) {
		decision.Skip = enum.SkipInvalidRecipient
		return decision
	}
	decision.Contact = contact

	decision.Company = contact.Company
	if decision.Company == "" {
		decision.Company = utils.CompanyFromDomain(domain)
	}
	return decision
}
