package dataset

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/DanishNadar/ttp-tracker/dto"
	ttp_errors "github.com/DanishNadar/ttp-tracker/internal/errors"
)

var testHeader = []interface{}{
	"Website", "SPF", "DKIM", "DMARC", "SPF Record Description", "Email Sent", "Email Open",
	"Email Bounced", "Replied", "Email", "First Name", "Last Name", "Title", "Company",
	"Company Name for Emails", "Message ID", "Scenario",
}

func writeTestWorkbook(t *testing.T, sheet string, header []interface{}, rows ...[]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
	}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}

	path := filepath.Join(t.TempDir(), "results.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestOpen_PrefersResultsSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewSheet(ResultsSheet)
	require.NoError(t, err)
	header := testHeader
	require.NoError(t, f.SetSheetRow(ResultsSheet, "A1", &header))
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Other"}))
	path := filepath.Join(t.TempDir(), "results.xlsx")
	require.NoError(t, f.SaveAs(path))

	w, err := Open(context.Background(), path)
	require.NoError(t, err)
	defer w.Close()
	assert.Equal(t, ResultsSheet, w.Sheet())
}

func TestOpen_FallsBackToActiveSheet(t *testing.T) {
	path := writeTestWorkbook(t, "Scan", testHeader)
	w, err := Open(context.Background(), path)
	require.NoError(t, err)
	defer w.Close()
	assert.Equal(t, "Scan", w.Sheet())
}

func TestOpen_MissingColumn(t *testing.T) {
	path := writeTestWorkbook(t, "Sheet1", []interface{}{"Website", "SPF"})
	_, err := Open(context.Background(), path)
	assert.ErrorIs(t, err, ttp_errors.ErrMissingColumn)
}

func TestRows_CoercesBooleans(t *testing.T) {
	path := writeTestWorkbook(t, ResultsSheet, testHeader,
		[]interface{}{"https://Acme.com", true, "yes", 1, "v=spf1 include:_spf.google.com ~all", false, ""},
		[]interface{}{"beta.io", "FALSE", 0, "no", "", "TRUE", "1", nil, nil, "x@beta.io", nil, nil, nil, nil, nil, "mid-2"},
	)
	w, err := Open(context.Background(), path)
	require.NoError(t, err)
	defer w.Close()

	rows, err := w.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].Row)
	assert.Equal(t, "https://Acme.com", rows[0].Website)
	assert.True(t, rows[0].SPF)
	assert.True(t, rows[0].DKIM)
	assert.True(t, rows[0].DMARC)
	assert.False(t, rows[0].EmailSent)
	assert.Contains(t, rows[0].SPFRecord, "_spf.google.com")

	assert.Equal(t, 3, rows[1].Row)
	assert.False(t, rows[1].SPF)
	assert.False(t, rows[1].DKIM)
	assert.False(t, rows[1].DMARC)
	assert.True(t, rows[1].EmailSent)
	assert.True(t, rows[1].EmailOpen)
	assert.Equal(t, "x@beta.io", rows[1].Email)
	assert.Equal(t, "mid-2", rows[1].MessageID)
}

func TestMarkSent_PersistsAfterSave(t *testing.T) {
	path := writeTestWorkbook(t, ResultsSheet, testHeader,
		[]interface{}{"acme.com", true, true, true},
	)
	w, err := Open(context.Background(), path)
	require.NoError(t, err)

	require.NoError(t, w.MarkSent(2, dto.SentUpdate{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Title:     "CTO",
		Company:   "Acme",
		Email:     "ada@acme.com",
		MessageID: "mid-1",
		Scenario:  4,
	}))
	require.NoError(t, w.Save())
	require.NoError(t, w.Close())

	reopened, err := Open(context.Background(), path)
	require.NoError(t, err)
	defer reopened.Close()
	rows, err := reopened.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].EmailSent)
	assert.False(t, rows[0].EmailOpen)
	assert.Equal(t, "ada@acme.com", rows[0].Email)
	assert.Equal(t, "mid-1", rows[0].MessageID)

	company, err := reopened.file.GetCellValue(ResultsSheet, "O2")
	require.NoError(t, err)
	assert.Equal(t, "Acme", company)
	scenario, err := reopened.file.GetCellValue(ResultsSheet, "Q2")
	require.NoError(t, err)
	assert.Equal(t, "4", scenario)
}

func TestMarkSent_SkipsAbsentColumns(t *testing.T) {
	path := writeTestWorkbook(t, "Sheet1",
		[]interface{}{"Website", "SPF", "DKIM", "DMARC", "Email Sent", "Email Open"},
		[]interface{}{"acme.com", true, true, true},
	)
	w, err := Open(context.Background(), path)
	require.NoError(t, err)
	defer w.Close()

	assert.False(t, w.HasColumn(ColumnMessageID))
	require.NoError(t, w.MarkSent(2, dto.SentUpdate{Email: "ada@acme.com", MessageID: "mid-1"}))

	rows, err := w.Rows()
	require.NoError(t, err)
	assert.True(t, rows[0].EmailSent)
	assert.Empty(t, rows[0].MessageID)
}

func TestMarkOpened(t *testing.T) {
	path := writeTestWorkbook(t, ResultsSheet, testHeader,
		[]interface{}{"acme.com", true, true, true, "", true, false},
	)
	w, err := Open(context.Background(), path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.MarkOpened(2))
	rows, err := w.Rows()
	require.NoError(t, err)
	assert.True(t, rows[0].EmailOpen)
}

func TestOpen_WaitsForLockHolder(t *testing.T) {
	path := writeTestWorkbook(t, ResultsSheet, testHeader,
		[]interface{}{"acme.com", true, true, true},
		[]interface{}{"beta.io", true, true, true, "", true, false, nil, nil, "x@beta.io"},
	)
	sender, err := Open(context.Background(), path)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = Open(ctx, path)
	assert.ErrorIs(t, err, ttp_errors.ErrWorkbookLocked)

	require.NoError(t, sender.MarkSent(2, dto.SentUpdate{Email: "ada@acme.com", MessageID: "mid-1"}))
	require.NoError(t, sender.Save())
	require.NoError(t, sender.Close())

	syncer, err := Open(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, syncer.MarkOpened(3))
	require.NoError(t, syncer.Save())
	require.NoError(t, syncer.Close())

	final, err := Open(context.Background(), path)
	require.NoError(t, err)
	defer final.Close()
	rows, err := final.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].EmailSent)
	assert.Equal(t, "mid-1", rows[0].MessageID)
	assert.True(t, rows[1].EmailOpen)
}

func TestOpen_BlockedByExternalLock(t *testing.T) {
	path := writeTestWorkbook(t, ResultsSheet, testHeader)
	held := flock.New(path + ".lock")
	locked, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, locked)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = Open(ctx, path)
	assert.ErrorIs(t, err, ttp_errors.ErrWorkbookLocked)

	require.NoError(t, held.Unlock())
	w, err := Open(context.Background(), path)
	require.NoError(t, err)
	assert.NoError(t, w.Close())
}
