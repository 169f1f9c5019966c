package dataset

import (
	"context"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/DanishNadar/ttp-tracker/dto"
	ttp_errors "github.com/DanishNadar/ttp-tracker/internal/errors"
	"github.com/DanishNadar/ttp-tracker/internal/utils"
)

// ResultsSheet is preferred over the active sheet when present
const ResultsSheet = "Results"

const (
	ColumnWebsite      = "Website"
	ColumnSPF          = "SPF"
	ColumnDKIM         = "DKIM"
	ColumnDMARC        = "DMARC"
	ColumnSPFRecord    = "SPF Record Description"
	ColumnEmailSent    = "Email Sent"
	ColumnEmailOpen    = "Email Open"
	ColumnEmailBounced = "Email Bounced"
	ColumnReplied      = "Replied"
	ColumnEmail        = "Email"
	ColumnFirstName    = "First Name"
	ColumnLastName     = "Last Name"
	ColumnTitle        = "Title"
	ColumnCompany      = "Company"
	ColumnCompanyEmail = "Company Name for Emails"
	ColumnMessageID    = "Message ID"
	ColumnScenario     = "Scenario"
)

var requiredColumns = []string{ColumnWebsite, ColumnSPF, ColumnDKIM, ColumnDMARC, ColumnEmailSent, ColumnEmailOpen}

const lockRetryDelay = 250 * time.Millisecond

// Workbook wraps the scan results file. Cell access stays inside this package.
type Workbook struct {
	path    string
	file    *excelize.File
	lock    *flock.Flock
	sheet   string
	columns map[string]int
}

// Lock takes the exclusive lock on path's companion ".lock" file, waiting until ctx is done.
// Every process that rewrites the workbook holds it from read to final save.
func Lock(ctx context.Context, path string) (*flock.Flock, error) {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil && ctx.Err() == nil {
		return nil, errors.Wrapf(err, "lock workbook %s", path)
	}
	if !locked {
		return nil, errors.Wrap(ttp_errors.ErrWorkbookLocked, path)
	}
	return lock, nil
}

// Open locks the workbook and loads it. The lock is held until Close.
func Open(ctx context.Context, path string) (*Workbook, error) {
	lock, err := Lock(ctx, path)
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		lock.Unlock()
		return nil, errors.Wrapf(err, "open workbook %s", path)
	}

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	for _, name := range f.GetSheetList() {
		if name == ResultsSheet {
			sheet = name
			break
		}
	}

	w := &Workbook{path: path, file: f, lock: lock, sheet: sheet}
	if err := w.loadHeader(); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

func (w *Workbook) loadHeader() error {
	rows, err := w.file.Rows(w.sheet)
	if err != nil {
		return errors.Wrapf(err, "read sheet %s", w.sheet)
	}
	defer rows.Close()

	w.columns = make(map[string]int)
	if rows.Next() {
		header, err := rows.Columns()
		if err != nil {
			return errors.Wrap(err, "read header row")
		}
		for idx, name := range header {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if _, exists := w.columns[name]; !exists {
				w.columns[name] = idx + 1
			}
		}
	}

	for _, column := range requiredColumns {
		if _, ok := w.columns[column]; !ok {
			return errors.Wrapf(ttp_errors.ErrMissingColumn, "%s in sheet %s", column, w.sheet)
		}
	}
	return nil
}

func (w *Workbook) Path() string {
	return w.path
}

func (w *Workbook) Sheet() string {
	return w.sheet
}

func (w *Workbook) HasColumn(name string) bool {
	_, ok := w.columns[name]
	return ok
}

// Rows returns every data row below the header
func (w *Workbook) Rows() ([]dto.ScanRow, error) {
	all, err := w.file.GetRows(w.sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "read rows of %s", w.sheet)
	}

	var result []dto.ScanRow
	for i := 1; i < len(all); i++ {
		cells := all[i]
		get := func(column string) string {
			idx, ok := w.columns[column]
			if !ok || idx > len(cells) {
				return ""
			}
			return strings.TrimSpace(cells[idx-1])
		}
		result = append(result, dto.ScanRow{
			Row:       i + 1,
			Website:   get(ColumnWebsite),
			SPF:       utils.NormalizeBool(get(ColumnSPF)),
			DKIM:      utils.NormalizeBool(get(ColumnDKIM)),
			DMARC:     utils.NormalizeBool(get(ColumnDMARC)),
			SPFRecord: get(ColumnSPFRecord),
			EmailSent: utils.NormalizeBool(get(ColumnEmailSent)),
			EmailOpen: utils.NormalizeBool(get(ColumnEmailOpen)),
			Email:     get(ColumnEmail),
			MessageID: get(ColumnMessageID),
		})
	}
	return result, nil
}

// MarkSent writes contact details and the sent flags. Columns the sheet lacks are skipped.
func (w *Workbook) MarkSent(row int, update dto.SentUpdate) error {
	values := []struct {
		column string
		value  interface{}
	}{
		{ColumnFirstName, update.FirstName},
		{ColumnLastName, update.LastName},
		{ColumnTitle, update.Title},
		{ColumnCompany, update.Company},
		{ColumnCompanyEmail, update.Company},
		{ColumnEmail, update.Email},
		{ColumnEmailSent, true},
		{ColumnEmailOpen, false},
		{ColumnEmailBounced, false},
		{ColumnReplied, false},
		{ColumnScenario, update.Scenario},
	}
	if update.MessageID != "" {
		values = append(values, struct {
			column string
			value  interface{}
		}{ColumnMessageID, update.MessageID})
	}

	for _, v := range values {
		if err := w.setCell(row, v.column, v.value); err != nil {
			return err
		}
	}
	return nil
}

func (w *Workbook) MarkOpened(row int) error {
	return w.setCell(row, ColumnEmailOpen, true)
}

func (w *Workbook) setCell(row int, column string, value interface{}) error {
	col, ok := w.columns[column]
	if !ok {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return errors.Wrapf(w.file.SetCellValue(w.sheet, cell, value), "set %s", cell)
}

func (w *Workbook) Save() error {
	return errors.Wrapf(w.file.Save(), "save workbook %s", w.path)
}

func (w *Workbook) Close() error {
	err := w.file.Close()
	if unlockErr := w.lock.Unlock(); err == nil {
		err = unlockErr
	}
	return err
}
