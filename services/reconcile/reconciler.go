package reconcile

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/DanishNadar/ttp-tracker/dto"
	"github.com/DanishNadar/ttp-tracker/interfaces"
	"github.com/DanishNadar/ttp-tracker/internal/logger"
	"github.com/DanishNadar/ttp-tracker/internal/metrics"
	"github.com/DanishNadar/ttp-tracker/internal/models"
	"github.com/DanishNadar/ttp-tracker/internal/tracing"
	"github.com/DanishNadar/ttp-tracker/internal/utils"
	"github.com/DanishNadar/ttp-tracker/services/dataset"
)

type recipientKey struct {
	email  string
	domain string
}

func newRecipientKey(email, domain string) recipientKey {
	return recipientKey{email: strings.ToLower(strings.TrimSpace(email)), domain: domain}
}

// OpenIndex answers whether a row's message has been opened
type OpenIndex struct {
	messageIDs map[string]struct{}
	recipients map[recipientKey]struct{}
}

func NewOpenIndex(openedIDs []string, messages []*models.Message) *OpenIndex {
	idx := &OpenIndex{
		messageIDs: make(map[string]struct{}, len(openedIDs)),
		recipients: make(map[recipientKey]struct{}),
	}
	for _, id := range openedIDs {
		idx.messageIDs[id] = struct{}{}
	}
	for _, m := range messages {
		if _, opened := idx.messageIDs[m.MessageID]; opened {
			idx.recipients[newRecipientKey(m.Email, m.Domain)] = struct{}{}
		}
	}
	return idx
}

func (o *OpenIndex) Empty() bool {
	return len(o.messageIDs) == 0
}

// Opened prefers the row's message id and falls back to the (email, website domain) pair
func (o *OpenIndex) Opened(row dto.ScanRow) bool {
	if row.MessageID != "" {
		_, ok := o.messageIDs[row.MessageID]
		return ok
	}
	if row.Email == "" {
		return false
	}
	domain, ok := utils.NormalizeDomain(row.Website)
	if !ok {
		return false
	}
	_, ok = o.recipients[newRecipientKey(row.Email, domain)]
	return ok
}

// RowsToMark lists rows that are opened but not yet flagged. Flags are never cleared.
func RowsToMark(rows []dto.ScanRow, opens *OpenIndex) []int {
	var marks []int
	for _, row := range rows {
		if row.EmailOpen {
			continue
		}
		if opens.Opened(row) {
			marks = append(marks, row.Row)
		}
	}
	return marks
}

type Result struct {
	OpenedMessages int
	Updated        int
}

type Reconciler struct {
	messages    interfaces.MessageRepository
	events      interfaces.TrackingEventRepository
	snapshotter interfaces.WorkbookSnapshotter
	metrics     *metrics.Metrics
	log         logger.Logger
}

func NewReconciler(messages interfaces.MessageRepository, events interfaces.TrackingEventRepository,
	snapshotter interfaces.WorkbookSnapshotter, m *metrics.Metrics, log logger.Logger) *Reconciler {
	return &Reconciler{
		messages:    messages,
		events:      events,
		snapshotter: snapshotter,
		metrics:     m,
		log:         log,
	}
}

// Sync sets Email Open on rows whose message was opened. The workbook is only written
// when at least one row changed.
func (r *Reconciler) Sync(ctx context.Context, dataset interfaces.ScanDataset) (*Result, error) {
	span, ctx := tracing.StartTracerSpan(ctx, "Reconciler.Sync")
	defer span.Finish()
	tracing.TagComponentService(span)

	result := &Result{}

	openedIDs, err := r.events.ListOpenedMessageIDs(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		return result, errors.Wrap(err, "list opened messages")
	}
	if len(openedIDs) == 0 {
		r.log.Info("No opens recorded yet")
		return result, nil
	}
	result.OpenedMessages = len(openedIDs)

	messages, err := r.messages.List(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		return result, errors.Wrap(err, "list messages")
	}

	rows, err := dataset.Rows()
	if err != nil {
		tracing.TraceErr(span, err)
		return result, err
	}

	marks := RowsToMark(rows, NewOpenIndex(openedIDs, messages))
	if len(marks) == 0 {
		r.log.Info("Updated Email Open for 0 rows")
		return result, nil
	}

	if err := r.snapshotter.Snapshot(ctx, dataset.Path()); err != nil {
		r.log.Warnf("Workbook snapshot failed: %v", err)
	}

	for _, row := range marks {
		if err := dataset.MarkOpened(row); err != nil {
			tracing.TraceErr(span, err)
			return result, errors.Wrapf(err, "mark row %d opened", row)
		}
	}
	if err := dataset.Save(); err != nil {
		tracing.TraceErr(span, err)
		return result, err
	}

	result.Updated = len(marks)
	r.metrics.RowsOpened(result.Updated)
	span.LogKV("updated", result.Updated)
	r.log.Infof("Updated Email Open for %d rows", result.Updated)
	return result, nil
}

// SyncFile opens the workbook at path, syncs it and closes it.
// The workbook lock is held throughout, so a concurrent send run cannot lose its writes.
func (r *Reconciler) SyncFile(ctx context.Context, path string) (*Result, error) {
	workbook, err := dataset.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer workbook.Close()

	return r.Sync(ctx, workbook)
}
