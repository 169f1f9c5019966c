package outreach

import (
	"context"
	"strings"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/DanishNadar/ttp-tracker/dto"
	"github.com/DanishNadar/ttp-tracker/interfaces"
	"github.com/DanishNadar/ttp-tracker/internal/enum"
	"github.com/DanishNadar/ttp-tracker/internal/logger"
	"github.com/DanishNadar/ttp-tracker/internal/metrics"
	"github.com/DanishNadar/ttp-tracker/internal/models"
	"github.com/DanishNadar/ttp-tracker/internal/tracing"
	"github.com/DanishNadar/ttp-tracker/internal/utils"
	"github.com/DanishNadar/ttp-tracker/services/smtp"
	"github.com/DanishNadar/ttp-tracker/services/templates"
	"github.com/DanishNadar/ttp-tracker/services/tracking"
)

type Config struct {
	MaxEmailsPerRun   int
	DryRun            bool
	CallToActionPhone string
	CallToActionURL   string
}

type Summary struct {
	Sent       int
	Skipped    map[enum.SkipReason]int
	CapReached bool
	DryRun     bool
}

func (s *Summary) skippedTotal() int {
	total := 0
	for _, n := range s.Skipped {
		total += n
	}
	return total
}

type Pipeline struct {
	cfg         Config
	contacts    interfaces.ContactResolver
	renderer    *templates.Renderer
	decorator   *tracking.Decorator
	mailer      interfaces.Mailer
	messages    interfaces.MessageRepository
	snapshotter interfaces.WorkbookSnapshotter
	metrics     *metrics.Metrics
	log         logger.Logger
	newID       func() string
}

func NewPipeline(
	cfg Config,
	contacts interfaces.ContactResolver,
	renderer *templates.Renderer,
	decorator *tracking.Decorator,
	mailer interfaces.Mailer,
	messages interfaces.MessageRepository,
	snapshotter interfaces.WorkbookSnapshotter,
	m *metrics.Metrics,
	log logger.Logger,
) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		contacts:    contacts,
		renderer:    renderer,
		decorator:   decorator,
		mailer:      mailer,
		messages:    messages,
		snapshotter: snapshotter,
		metrics:     m,
		log:         log,
		newID:       utils.GenerateTrackingID,
	}
}

// Run walks the dataset top to bottom. A transport error stops the run; rows already
// marked stay marked because the workbook is saved after every send.
func (p *Pipeline) Run(ctx context.Context, dataset interfaces.ScanDataset) (*Summary, error) {
	span, ctx := tracing.StartTracerSpan(ctx, "Pipeline.Run")
	defer span.Finish()
	tracing.TagComponentService(span)

	summary := &Summary{Skipped: make(map[enum.SkipReason]int), DryRun: p.cfg.DryRun}

	rows, err := dataset.Rows()
	if err != nil {
		tracing.TraceErr(span, err)
		return summary, err
	}

	snapshotTaken := false
	for _, row := range rows {
		if summary.Sent >= p.cfg.MaxEmailsPerRun {
			summary.CapReached = true
			break
		}

		decision := Plan(row, p.contacts)
		if !decision.Send() {
			summary.Skipped[decision.Skip]++
			p.metrics.RowSkipped(decision.Skip)
			p.log.Debugf("Skipping row %d (%s): %s", row.Row, row.Website, decision.Skip)
			continue
		}

		if !p.cfg.DryRun && !snapshotTaken {
			if err := p.snapshotter.Snapshot(ctx, dataset.Path()); err != nil {
				p.log.Warnf("Workbook snapshot failed: %v", err)
			}
			snapshotTaken = true
		}

		messageID, err := p.send(ctx, decision)
		if err != nil {
			tracing.TraceErr(span, err)
			return summary, errors.Wrapf(err, "row %d (%s)", row.Row, decision.Domain)
		}

		summary.Sent++
		p.metrics.EmailSent()
		if p.cfg.DryRun {
			continue
		}

		if err := p.record(ctx, dataset, decision, messageID); err != nil {
			tracing.TraceErr(span, err)
			return summary, err
		}
		p.log.Infof("Sent %d: %s -> %s (scenario %d)", summary.Sent, decision.Domain, decision.Contact.Email, decision.Scenario.Int())
	}

	span.LogKV("sent", summary.Sent, "skipped", summary.skippedTotal(), "capReached", summary.CapReached)
	p.log.Infof("Outreach run finished: sent=%d skipped=%d cap_reached=%t dry_run=%t",
		summary.Sent, summary.skippedTotal(), summary.CapReached, summary.DryRun)
	return summary, nil
}

func (p *Pipeline) send(ctx context.Context, decision Decision) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Pipeline.send")
	defer span.Finish()
	tracing.TagDomain(span, decision.Domain)

	rendered, err := p.renderer.Render(decision.Scenario, templates.Data{
		Name:            decision.Contact.FirstName,
		Domain:          decision.Domain,
		DNSHost:         decision.DNSHost,
		Phone:           p.cfg.CallToActionPhone,
		CallToActionURL: p.cfg.CallToActionURL,
	})
	if err != nil {
		return "", err
	}

	messageID := p.newID()
	tracing.TagMessageId(span, messageID)

	html, err := p.decorator.Decorate(rendered.HTML, messageID)
	if err != nil {
		return "", err
	}

	err = p.mailer.Send(ctx, &smtp.OutboundEmail{
		To:        strings.TrimSpace(decision.Contact.Email),
		Subject:   rendered.Subject,
		Plain:     rendered.Plain,
		HTML:      html,
		MessageID: messageID,
	})
	if err != nil {
		return "", err
	}
	return messageID, nil
}

// record stores the message and persists the row. A failed insert only costs tracking
// attribution, so the row is still marked to avoid sending twice.
func (p *Pipeline) record(ctx context.Context, dataset interfaces.ScanDataset, decision Decision, messageID string) error {
	recipient := strings.TrimSpace(decision.Contact.Email)

	err := p.messages.Create(ctx, &models.Message{
		MessageID:  messageID,
		Email:      recipient,
		Domain:     decision.Domain,
		ApexDomain: utils.ApexDomain(decision.Domain),
		Scenario:   decision.Scenario.Int(),
	})
	if err != nil {
		p.log.Errorf("Failed to record message %s for %s: %v", messageID, decision.Domain, err)
	}

	update := dto.SentUpdate{
		FirstName: decision.Contact.FirstName,
		LastName:  decision.Contact.LastName,
		Title:     decision.Contact.Title,
		Company:   decision.Company,
		Email:     recipient,
		MessageID: messageID,
		Scenario:  decision.Scenario.Int(),
	}
	if err := dataset.MarkSent(decision.Row, update); err != nil {
		return errors.Wrapf(err, "mark row %d sent", decision.Row)
	}
	if err := dataset.Save(); err != nil {
		return errors.Wrapf(err, "persist row %d", decision.Row)
	}
	return nil
}
