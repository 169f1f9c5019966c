package services

import (
	"context"
	"time"

	"github.com/DanishNadar/ttp-tracker/config"
	"github.com/DanishNadar/ttp-tracker/interfaces"
	"github.com/DanishNadar/ttp-tracker/internal/logger"
	"github.com/DanishNadar/ttp-tracker/internal/metrics"
	"github.com/DanishNadar/ttp-tracker/internal/repository"
	"github.com/DanishNadar/ttp-tracker/services/contacts"
	"github.com/DanishNadar/ttp-tracker/services/events"
	"github.com/DanishNadar/ttp-tracker/services/outreach"
	"github.com/DanishNadar/ttp-tracker/services/reconcile"
	"github.com/DanishNadar/ttp-tracker/services/smtp"
	"github.com/DanishNadar/ttp-tracker/services/storage"
	"github.com/DanishNadar/ttp-tracker/services/templates"
	"github.com/DanishNadar/ttp-tracker/services/tracking"
)

const snapshotPrefix = "snapshots"

type Services struct {
	Metrics        *metrics.Metrics
	EventPublisher interfaces.EventPublisher
	Snapshotter    interfaces.WorkbookSnapshotter
	Reconciler     *reconcile.Reconciler
}

// InitServices builds what every command shares. The event publisher is only
// connected when withPublisher is set.
func InitServices(cfg *config.Config, log logger.Logger, repos *repository.Repositories, withPublisher bool) (*Services, error) {
	m := metrics.New()
	snapshotter := NewSnapshotter(cfg, log)

	var publisher interfaces.EventPublisher = events.NoopPublisher{}
	if withPublisher {
		var err error
		publisher, err = events.NewEventPublisher(cfg.RabbitMQConfig.URL, log, events.DefaultPublisherConfig(cfg.RabbitMQConfig.Exchange))
		if err != nil {
			return nil, err
		}
	}

	return &Services{
		Metrics:        m,
		EventPublisher: publisher,
		Snapshotter:    snapshotter,
		Reconciler:     reconcile.NewReconciler(repos.MessageRepository, repos.TrackingEventRepository, snapshotter, m, log),
	}, nil
}

func NewSnapshotter(cfg *config.Config, log logger.Logger) interfaces.WorkbookSnapshotter {
	if !cfg.StorageConfig.Enabled {
		return storage.NoopSnapshotter{}
	}
	return NewR2Snapshotter(cfg, log)
}

func NewR2Snapshotter(cfg *config.Config, log logger.Logger) *storage.Snapshotter {
	s := cfg.StorageConfig
	return storage.NewSnapshotter(
		storage.NewR2StorageService(s.AccountID, s.AccessKeyID, s.AccessKeySecret, s.Bucket),
		snapshotPrefix,
		log,
	)
}

func NewMailer(cfg *config.Config, log logger.Logger) interfaces.Mailer {
	from := smtp.Identity{
		Name:             cfg.SenderConfig.Name,
		Email:            cfg.SenderConfig.Email,
		ReplyTo:          cfg.SenderConfig.ReplyTo,
		UnsubscribeEmail: cfg.SenderConfig.UnsubscribeEmail,
		Domain:           cfg.SenderDomain(),
	}
	if cfg.OutreachConfig.DryRun {
		return smtp.NewDryRunClient(from, log)
	}
	return smtp.NewSMTPClient(smtp.ServerConfig{
		Host:     cfg.SmtpConfig.Host,
		Port:     cfg.SmtpConfig.Port,
		User:     cfg.SmtpConfig.User,
		Password: cfg.SmtpConfig.Password,
		Timeout:  time.Duration(cfg.SmtpConfig.TimeoutSeconds) * time.Second,
	}, from, log)
}

// InitOutreachPipeline loads the contact list and wires the send path
func (s *Services) InitOutreachPipeline(ctx context.Context, cfg *config.Config, repos *repository.Repositories, log logger.Logger) (*outreach.Pipeline, error) {
	index, err := contacts.LoadIndex(ctx, cfg.OutreachConfig.ContactsCsv, cfg.OutreachConfig.MaxContactFallback, log)
	if err != nil {
		return nil, err
	}

	return outreach.NewPipeline(
		outreach.Config{
			MaxEmailsPerRun:   cfg.OutreachConfig.MaxEmailsPerRun,
			DryRun:            cfg.OutreachConfig.DryRun,
			CallToActionPhone: cfg.OutreachConfig.CallToActionPhone,
			CallToActionURL:   cfg.OutreachConfig.CallToActionURL,
		},
		index,
		templates.NewRenderer(),
		tracking.NewDecorator(cfg.AppConfig.PublicBaseURL, cfg.AppConfig.TrackerSecret),
		NewMailer(cfg, log),
		repos.MessageRepository,
		s.Snapshotter,
		s.Metrics,
		log,
	), nil
}
