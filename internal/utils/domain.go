package utils

import (
	"regexp"
	"strings"

	"github.com/weppos/publicsuffix-go/net/publicsuffix"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	schemeRegex      = regexp.MustCompile(`^https?://`)
	nonAlphaNumRegex = regexp.MustCompile(`[^a-zA-Z0-9]+`)
)

// NormalizeDomain turns a website cell ("HTTPS://Example.COM:443/path") into a bare
// lower-case host. Hosts without a dot are rejected.
func NormalizeDomain(raw string) (string, bool) {
	u := strings.ToLower(strings.TrimSpace(raw))
	if u == "" {
		return "", false
	}
	u = schemeRegex.ReplaceAllString(u, "")
	u = strings.SplitN(u, "/", 2)[0]
	u = strings.SplitN(u, "?", 2)[0]
	u = strings.SplitN(u, "#", 2)[0]
	u = strings.SplitN(u, ":", 2)[0]
	if !strings.Contains(u, ".") {
		return "", false
	}
	return u, true
}

// CandidateDomains returns the domain followed by up to maxStrips parents, each
// obtained by removing the leftmost label. A single-label remainder is included,
// so "a.b" yields ["a.b", "b"].
func CandidateDomains(domain string, maxStrips int) []string {
	candidates := []string{domain}
	labels := strings.Split(domain, ".")
	for i := 1; i <= maxStrips && i < len(labels); i++ {
		candidates = append(candidates, strings.Join(labels[i:], "."))
	}
	return candidates
}

// CompanyFromDomain derives a display name from the leading label: "acme-corp.com" -> "Acme Corp".
func CompanyFromDomain(domain string) string {
	base := strings.Split(domain, ".")[0]
	base = strings.TrimSpace(nonAlphaNumRegex.ReplaceAllString(base, " "))
	if base == "" {
		return domain
	}
	return cases.Title(language.Und).String(base)
}

// ApexDomain returns the registrable domain (eTLD+1), or the input when it has none.
func ApexDomain(domain string) string {
	apex, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil {
		return domain
	}
	return apex
}

const defaultDNSHost = "your DNS/email provider"

// DNSHostFromSPF guesses the mail/DNS provider named in an SPF record description.
func DNSHostFromSPF(spfRecord string) string {
	s := strings.ToLower(spfRecord)
	switch {
	case s == "":
		return defaultDNSHost
	case strings.Contains(s, "spf.protection.outlook.com") || strings.Contains(s, "mail.protection.outlook.com"):
		return "Microsoft 365"
	case strings.Contains(s, "_spf.google.com") || strings.Contains(s, "include:spf.google.com"):
		return "Google Workspace"
	case strings.Contains(s, "amazonses"):
		return "Amazon SES"
	case strings.Contains(s, "sendgrid.net"):
		return "SendGrid"
	case strings.Contains(s, "mailgun.org"):
		return "Mailgun"
	default:
		return defaultDNSHost
	}
}
