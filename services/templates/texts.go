package templates

import "github.com/DanishNadar/ttp-tracker/services/scenario"

type scenarioText struct {
	subject string
	body    string
}

const (
	intro = `Hi {{.Name}},

We’re a cybersecurity firm and need to make you aware of an email authentication gap for {{.Domain}}.
This may be a result of your DNS security settings at {{.DNSHost}} not being properly configured.
`
	introCritical = `Hi {{.Name}},

We’re a cybersecurity firm and need to make you aware of critical email authentication {{.Severity}} for {{.Domain}}.
This may be a result of your DNS security settings at {{.DNSHost}} not being properly configured.
`
	closing = `
If you want to learn more, or have this fixed, either reply to this email or call us at {{.Phone}}.
`
)

var scenarioTexts = map[scenario.Scenario]scenarioText{
	scenario.ScenarioDMARCWeak: {
		subject: "Security gap detected for {{.Domain}} (DMARC not enforced)",
		body: intro + `
Here’s what we found regarding your email authentication:
• SPF (Authorized Mail Sender): Configured correctly
• DKIM (Ensures Mail Encryption): Configured correctly
• DMARC (Handling Malicious Mail): Implemented but not enforced (p=none / weak)

A DMARC policy set to “none” means failed emails aren’t blocked, they’re just monitored.
When DMARC isn’t enforced, it becomes much easier for attackers to impersonate your domain and trick users.
` + closing,
	},
	scenario.ScenarioSPFMissing: {
		subject: "High-risk email issue for {{.Domain}}: SPF missing",
		body: intro + `
Here’s what our scan found:
• SPF (Authorized Mail Sender): Missing
• DKIM (Ensures Mail Encryption): Configured correctly
• DMARC (Handling Malicious Mail): Configured correctly

SPF tells email providers which servers are allowed to send mail for your domain.
Without it, attackers can impersonate your staff or your brand.
` + closing,
	},
	scenario.ScenarioSPFAndDMARCMissing: {
		subject: "Critical email security gaps for {{.Domain}}: SPF + DMARC missing",
		body: introCritical + `
Here’s what we found:
• SPF (Authorized Mail Sender): Missing
• DMARC (Handling Malicious Mail): Missing
• DKIM (Ensures Mail Encryption): Configured correctly

Without SPF and DMARC, attackers can impersonate any employee and mail providers will treat those fraudulent messages as legitimate.
` + closing,
	},
	scenario.ScenarioDKIMMissing: {
		subject: "Your domain {{.Domain}} is missing DKIM",
		body: intro + `
Here’s what we discovered:
• SPF (Authorized Mail Sender): Configured correctly
• DKIM (Ensures Mail Encryption): Missing
• DMARC (Handling Malicious Mail): Configured correctly

Without DKIM, receiving mail systems cannot verify that messages weren’t forged or altered.
` + closing,
	},
	scenario.ScenarioSPFAndDKIMMissing: {
		subject: "Critical security failures for {{.Domain}}: SPF, DKIM, DMARC missing",
		body: introCritical + `
Here’s what our scan found:
• SPF (Authorized Mail Sender): Missing
• DKIM (Ensures Mail Encryption): Missing
• DMARC (Handling Malicious Mail): Missing

With all three protections missing, attackers can impersonate any employee and deliver emails that appear entirely legitimate.
` + closing,
	},
	scenario.ScenarioDefault: {
		subject: "Email authentication check for {{.Domain}}",
		body: `Hi {{.Name}},

We ran an email-authentication scan for {{.Domain}}. If you'd like a brief summary and recommendations, reply to this email.

If you want to learn more, either reply to this email or call us at {{.Phone}}.
`,
	},
}
