package dto

// ScanRow is one data row of the scan results sheet. Row is the 1-based sheet row.
type ScanRow struct {
	Row       int
	Website   string
	SPF       bool
	DKIM      bool
	DMARC     bool
	SPFRecord string
	EmailSent bool
	EmailOpen bool
	Email     string
	MessageID string
}

// SentUpdate is written back to a row once its email went out
type SentUpdate struct {
	FirstName string
	LastName  string
	Title     string
	Company   string
	Email     string
	MessageID string
	Scenario  int
}
