package interfaces

import "github.com/DanishNadar/ttp-tracker/dto"

// ScanDataset is the typed view of the scan results workbook
type ScanDataset interface {
	Path() string
	HasColumn(name string) bool
	Rows() ([]dto.ScanRow, error)
	MarkSent(row int, update dto.SentUpdate) error
	MarkOpened(row int) error
	Save() error
}
