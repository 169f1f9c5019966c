package outreach

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/DanishNadar/ttp-tracker/dto"
	"github.com/DanishNadar/ttp-tracker/interfaces"
	"github.com/DanishNadar/ttp-tracker/internal/enum"
	"github.com/DanishNadar/ttp-tracker/internal/logger"
	"github.com/DanishNadar/ttp-tracker/internal/metrics"
	"github.com/DanishNadar/ttp-tracker/services/contacts"
	"github.com/DanishNadar/ttp-tracker/services/scenario"
	"github.com/DanishNadar/ttp-tracker/services/templates"
	"github.com/DanishNadar/ttp-tracker/services/tracking"
)

func testLogger() logger.Logger {
	l := logger.NewAppLogger(&logger.Config{LogLevel: "error"})
	l.InitLogger()
	return l
}

func testIndex() *contacts.Index {
	return contacts.NewIndex([]contacts.Contact{
		{Email: "ada@acme.com", FirstName: "Ada", LastName: "Lovelace", Title: "CTO", Company: "Acme Corp"},
		{Email: "bob@beta.io", FirstName: "Bob"},
		{Email: "broken", Website: "gamma.org"},
	}, contacts.DefaultFallbackDepth)
}

type harness struct {
	pipeline    *Pipeline
	mailer      interfaces.Mailer
	messages    *memoryMessageRepository
	snapshotter *countingSnapshotter
}

func newHarness(cfg Config, mailer interfaces.Mailer) *harness {
	if cfg.CallToActionPhone == "" {
		cfg.CallToActionPhone = "800-889-8072"
	}
	messages := newMemoryMessageRepository()
	snapshotter := &countingSnapshotter{}
	p := NewPipeline(cfg, testIndex(), templates.NewRenderer(), tracking.NewDecorator("https://t.ttp.com", "sec"),
		mailer, messages, snapshotter, metrics.New(), testLogger())
	counter := 0
	p.newID = func() string {
		counter++
		return fmt.Sprintf("mid-%d", counter)
	}
	return &harness{pipeline: p, mailer: mailer, messages: messages, snapshotter: snapshotter}
}

func TestPlan(t *testing.T) {
	idx := testIndex()

	d := Plan(dto.ScanRow{Row: 2, Website: "localhost"}, idx)
	assert.Equal(t, enum.SkipInvalidDomain, d.Skip)

	d = Plan(dto.ScanRow{Row: 2, Website: "acme.com", EmailSent: true}, idx)
	assert.Equal(t, enum.SkipAlreadySent, d.Skip)

	d = Plan(dto.ScanRow{Row: 2, Website: "unknown.net"}, idx)
	assert.Equal(t, enum.SkipNoContact, d.Skip)

	d = Plan(dto.ScanRow{Row: 2, Website: "gamma.org"}, idx)
	assert.Equal(t, enum.SkipInvalidRecipient, d.Skip)

	d = Plan(dto.ScanRow{Row: 2, Website: "https://mail.acme.com/x", SPF: true, DMARC: true, SPFRecord: "include:spf.protection.outlook.com"}, idx)
	require.True(t, d.Send())
	assert.Equal(t, "mail.acme.com", d.Domain)
	assert.Equal(t, scenario.ScenarioDKIMMissing, d.Scenario)
	assert.Equal(t, "Microsoft 365", d.DNSHost)
	assert.Equal(t, "Acme Corp", d.Company)

	d = Plan(dto.ScanRow{Row: 2, Website: "beta.io", DKIM: true, DMARC: true}, idx)
	require.True(t, d.Send())
	assert.Equal(t, scenario.ScenarioSPFMissing, d.Scenario)
	assert.Equal(t, "Beta", d.Company)
}

func TestRun_SendsAndMarksRows(t *testing.T) {
	mailer := &recordingMailer{}
	h := newHarness(Config{MaxEmailsPerRun: 50}, mailer)
	dataset := newMemoryDataset(
		dto.ScanRow{Website: "acme.com", SPF: true, DKIM: true, DMARC: true},
		dto.ScanRow{Website: "not a domain"},
		dto.ScanRow{Website: "www.beta.io"},
		dto.ScanRow{Website: "unknown.net"},
	)

	summary, err := h.pipeline.Run(context.Background(), dataset)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Sent)
	assert.Equal(t, 1, summary.Skipped[enum.SkipInvalidDomain])
	assert.Equal(t, 1, summary.Skipped[enum.SkipNoContact])
	assert.False(t, summary.CapReached)

	require.Len(t, mailer.sent, 2)
	first := mailer.sent[0]
	assert.Equal(t, "ada@acme.com", first.To)
	assert.Equal(t, "mid-1", first.MessageID)
	assert.Equal(t, "Email authentication check for acme.com", first.Subject)
	assert.Contains(t, first.HTML, "https://t.ttp.com/pixel/mid-1.png?k=sec")
	assert.Contains(t, mailer.sent[1].Subject, "SPF, DKIM, DMARC missing")

	assert.True(t, dataset.rows[0].EmailSent)
	assert.Equal(t, "mid-1", dataset.rows[0].MessageID)
	assert.False(t, dataset.rows[1].EmailSent)
	assert.True(t, dataset.rows[2].EmailSent)
	assert.Equal(t, "Beta", dataset.updates[4].Company)
	assert.Equal(t, 2, dataset.saves)
	assert.Equal(t, 1, h.snapshotter.calls)

	msg, err := h.messages.GetByID(context.Background(), "mid-2")
	require.NoError(t, err)
	assert.Equal(t, "bob@beta.io", msg.Email)
	assert.Equal(t, "www.beta.io", msg.Domain)
	assert.Equal(t, "beta.io", msg.ApexDomain)
	assert.Equal(t, scenario.ScenarioSPFAndDKIMMissing.Int(), msg.Scenario)
}

func TestRun_SecondRunSendsNothing(t *testing.T) {
	mailer := &recordingMailer{}
	h := newHarness(Config{MaxEmailsPerRun: 50}, mailer)
	dataset := newMemoryDataset(
		dto.ScanRow{Website: "acme.com"},
		dto.ScanRow{Website: "beta.io"},
	)

	_, err := h.pipeline.Run(context.Background(), dataset)
	require.NoError(t, err)
	require.Len(t, mailer.sent, 2)

	summary, err := h.pipeline.Run(context.Background(), dataset)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Sent)
	assert.Equal(t, 2, summary.Skipped[enum.SkipAlreadySent])
	assert.Len(t, mailer.sent, 2)
}

func TestRun_RespectsCap(t *testing.T) {
	mailer := &recordingMailer{}
	h := newHarness(Config{MaxEmailsPerRun: 1}, mailer)
	dataset := newMemoryDataset(
		dto.ScanRow{Website: "acme.com"},
		dto.ScanRow{Website: "beta.io"},
	)

	summary, err := h.pipeline.Run(context.Background(), dataset)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Sent)
	assert.True(t, summary.CapReached)
	assert.False(t, dataset.rows[1].EmailSent)
	assert.Zero(t, summary.skippedTotal())
}

func TestRun_RowsPastCapAreLeftUntouched(t *testing.T) {
	mailer := &recordingMailer{}
	h := newHarness(Config{MaxEmailsPerRun: 2}, mailer)
	dataset := newMemoryDataset(
		dto.ScanRow{Website: "acme.com"},
		dto.ScanRow{Website: "beta.io"},
		dto.ScanRow{Website: "www.acme.com"},
		dto.ScanRow{Website: "unknown.net"},
		dto.ScanRow{Website: "not a domain"},
	)

	summary, err := h.pipeline.Run(context.Background(), dataset)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Sent)
	assert.True(t, summary.CapReached)
	assert.Zero(t, summary.skippedTotal())
	assert.Len(t, mailer.sent, 2)
	for _, row := range dataset.rows[2:] {
		assert.False(t, row.EmailSent, row.Website)
		assert.Empty(t, row.MessageID, row.Website)
	}
	assert.Equal(t, 2, dataset.saves)
}

func TestRun_ZeroCapSendsNothing(t *testing.T) {
	mailer := &recordingMailer{}
	h := newHarness(Config{MaxEmailsPerRun: 0}, mailer)
	dataset := newMemoryDataset(dto.ScanRow{Website: "acme.com"})

	summary, err := h.pipeline.Run(context.Background(), dataset)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Sent)
	assert.Empty(t, mailer.sent)
}

func TestRun_DryRunDoesNotPersist(t *testing.T) {
	mailer := &recordingMailer{}
	h := newHarness(Config{MaxEmailsPerRun: 50, DryRun: true}, mailer)
	dataset := newMemoryDataset(dto.ScanRow{Website: "acme.com"})

	summary, err := h.pipeline.Run(context.Background(), dataset)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Sent)
	assert.True(t, summary.DryRun)
	assert.False(t, dataset.rows[0].EmailSent)
	assert.Equal(t, 0, dataset.saves)
	assert.Empty(t, h.messages.messages)
	assert.Equal(t, 0, h.snapshotter.calls)
}

func TestRun_TransportErrorAborts(t *testing.T) {
	mailer := &mockMailer{}
	mailer.On("Send", mock.Anything, mock.Anything).Return(nil).Once()
	mailer.On("Send", mock.Anything, mock.Anything).Return(errors.New("connection reset")).Once()

	h := newHarness(Config{MaxEmailsPerRun: 50}, mailer)
	dataset := newMemoryDataset(
		dto.ScanRow{Website: "acme.com"},
		dto.ScanRow{Website: "beta.io"},
		dto.ScanRow{Website: "acme.com"},
	)

	summary, err := h.pipeline.Run(context.Background(), dataset)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "connection reset"))
	assert.Equal(t, 1, summary.Sent)
	assert.True(t, dataset.rows[0].EmailSent)
	assert.False(t, dataset.rows[1].EmailSent)
	assert.False(t, dataset.rows[2].EmailSent)
	mailer.AssertNumberOfCalls(t, "Send", 2)
}

func TestRun_RecordFailureStillMarksRow(t *testing.T) {
	mailer := &recordingMailer{}
	h := newHarness(Config{MaxEmailsPerRun: 50}, mailer)
	h.messages.err = errors.New("db down")
	dataset := newMemoryDataset(dto.ScanRow{Website: "acme.com"})

	summary, err := h.pipeline.Run(context.Background(), dataset)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Sent)
	assert.True(t, dataset.rows[0].EmailSent)
	assert.Equal(t, 1, dataset.saves)
}

func TestRun_CallToActionLinkIsTracked(t *testing.T) {
	mailer := &recordingMailer{}
	h := newHarness(Config{MaxEmailsPerRun: 5, CallToActionURL: "https://ttp.com/book"}, mailer)
	dataset := newMemoryDataset(dto.ScanRow{Website: "acme.com"})

	_, err := h.pipeline.Run(context.Background(), dataset)
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0].HTML, "https://t.ttp.com/l/mid-1?")
	assert.Contains(t, mailer.sent[0].Plain, "https://ttp.com/book")
}
