// Package scenario maps the authentication state of a domain to the outreach scenario
// that selects the email content.
package scenario

import "fmt"

type Scenario int

const (
	// ScenarioDefault covers fully compliant domains and any combination without a named gap
	ScenarioDefault Scenario = iota
	// ScenarioDMARCWeak: SPF and DKIM ok, DMARC present with p=none
	ScenarioDMARCWeak
	// ScenarioSPFMissing: SPF missing, DKIM and DMARC ok
	ScenarioSPFMissing
	// ScenarioSPFAndDMARCMissing: SPF and DMARC missing, DKIM ok
	ScenarioSPFAndDMARCMissing
	// ScenarioDKIMMissing: DKIM missing, SPF and DMARC ok
	ScenarioDKIMMissing
	// ScenarioSPFAndDKIMMissing: SPF and DKIM missing, whatever the DMARC state
	ScenarioSPFAndDKIMMissing
)

func (s Scenario) Int() int {
	return int(s)
}

func (s Scenario) String() string {
	switch s {
	case ScenarioDefault:
		return "default"
	case ScenarioDMARCWeak:
		return "dmarc_weak"
	case ScenarioSPFMissing:
		return "spf_missing"
	case ScenarioSPFAndDMARCMissing:
		return "spf_dmarc_missing"
	case ScenarioDKIMMissing:
		return "dkim_missing"
	case ScenarioSPFAndDKIMMissing:
		return "spf_dkim_missing"
	default:
		return fmt.Sprintf("scenario(%d)", int(s))
	}
}

// AuthSignal is the authentication state derived from one scan row.
// DMARCOK means an enforced policy (quarantine/reject); DMARCWeak means p=none.
type AuthSignal struct {
	SPFOK     bool
	DKIMOK    bool
	DMARCOK   bool
	DMARCWeak bool
}

func (a AuthSignal) Scenario() Scenario {
	return Classify(a.SPFOK, a.DMARCOK, a.DKIMOK, a.DMARCWeak)
}

// Classify selects exactly one scenario. Rules are evaluated in order and the first
// match wins, so missing SPF and DKIM always yields ScenarioSPFAndDKIMMissing even
// when DMARC is enforced.
func Classify(spfOK, dmarcOK, dkimOK, dmarcWeak bool) Scenario {
	dmarcMissing := !dmarcOK && !dmarcWeak

	switch {
	case !spfOK && !dkimOK:
		return ScenarioSPFAndDKIMMissing
	case !spfOK && dkimOK && dmarcMissing:
		return ScenarioSPFAndDMARCMissing
	case !spfOK && dkimOK && dmarcOK:
		return ScenarioSPFMissing
	case !dkimOK && spfOK && dmarcOK:
		return ScenarioDKIMMissing
	case dmarcWeak && spfOK && dkimOK:
		return ScenarioDMARCWeak
	default:
		return ScenarioDefault
	}
}
