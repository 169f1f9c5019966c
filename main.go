package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"github.com/DanishNadar/ttp-tracker/config"
	"github.com/DanishNadar/ttp-tracker/internal/database"
	"github.com/DanishNadar/ttp-tracker/internal/logger"
	"github.com/DanishNadar/ttp-tracker/internal/repository"
	"github.com/DanishNadar/ttp-tracker/internal/tracing"
	"github.com/DanishNadar/ttp-tracker/server"
	"github.com/DanishNadar/ttp-tracker/services"
	"github.com/DanishNadar/ttp-tracker/services/dataset"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatalf("ttp-tracker: %v", err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "ttp-tracker",
		Usage: "Email authentication outreach with open and click tracking",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "xlsx", Usage: "scan results workbook (overrides RESULTS_XLSX)"},
		},
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Create the messages and tracking_events tables",
				Action: migrateAction,
			},
			{
				Name:  "send",
				Usage: "Send one email per eligible row of the results workbook",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "contacts", Usage: "contact list CSV (overrides APOLLO_CSV)"},
					&cli.IntFlag{Name: "max", Usage: "per-run send cap (overrides MAX_EMAILS_PER_RUN)"},
					&cli.BoolFlag{Name: "dry-run", Usage: "build and log messages without sending"},
				},
				Action: sendAction,
			},
			{
				Name:   "sync-opens",
				Usage:  "Mark opened rows in the results workbook",
				Action: syncOpensAction,
			},
			{
				Name:      "events",
				Usage:     "Print a sent message and its tracking events",
				ArgsUsage: "<message-id>",
				Action:    eventsAction,
			},
			{
				Name:      "restore-snapshot",
				Usage:     "Overwrite the results workbook with an uploaded snapshot",
				ArgsUsage: "<snapshot-key>",
				Action:    restoreSnapshotAction,
			},
			{
				Name:   "tracker",
				Usage:  "Serve the pixel and click endpoints",
				Action: trackerAction,
			},
		},
	}
}

type session struct {
	cfg   *config.Config
	log   logger.Logger
	db    *gorm.DB
	repos *repository.Repositories
}

// setup loads config, applies prepare and only then connects to the tracking database.
// prepare applies command flags and validates, so config errors surface before connection errors.
func setup(c *cli.Context, prepare func(cfg *config.Config) error) (*session, error) {
	cfg, err := config.InitConfig()
	if err != nil {
		return nil, err
	}
	if path := c.String("xlsx"); path != "" {
		cfg.OutreachConfig.ResultsXlsx = path
	}
	if prepare != nil {
		if err := prepare(cfg); err != nil {
			return nil, err
		}
	}

	appLogger := logger.NewAppLogger(cfg.Logger)
	appLogger.InitLogger()

	db, err := database.InitTrackingDatabase(cfg.Database())
	if err != nil {
		return nil, errors.Wrap(err, "tracking database initialization failed")
	}

	return &session{
		cfg:   cfg,
		log:   appLogger,
		db:    db,
		repos: repository.InitRepositories(db),
	}, nil
}

func migrateAction(c *cli.Context) error {
	rt, err := setup(c, nil)
	if err != nil {
		return err
	}
	defer rt.log.Sync()

	if err := repository.MigrateDB(rt.cfg.Database(), rt.db); err != nil {
		return errors.Wrap(err, "database migration failed")
	}
	rt.log.Info("Database migration completed successfully")
	return nil
}

func applySendFlags(c *cli.Context, cfg *config.Config) error {
	if path := c.String("contacts"); path != "" {
		cfg.OutreachConfig.ContactsCsv = path
	}
	if c.IsSet("max") {
		cfg.OutreachConfig.MaxEmailsPerRun = c.Int("max")
	}
	if c.Bool("dry-run") {
		cfg.OutreachConfig.DryRun = true
	}
	return cfg.ValidateForSend()
}

func sendAction(c *cli.Context) error {
	rt, err := setup(c, func(cfg *config.Config) error {
		return applySendFlags(c, cfg)
	})
	if err != nil {
		return err
	}
	defer rt.log.Sync()

	cfg := rt.cfg

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	span, ctx := tracing.StartTracerSpan(ctx, "cli.send")
	defer span.Finish()
	tracing.TagComponentCli(span)

	svcs, err := services.InitServices(cfg, rt.log, rt.repos, false)
	if err != nil {
		return err
	}
	pipeline, err := svcs.InitOutreachPipeline(ctx, cfg, rt.repos, rt.log)
	if err != nil {
		return err
	}

	workbook, err := dataset.Open(ctx, cfg.OutreachConfig.ResultsXlsx)
	if err != nil {
		return err
	}
	defer workbook.Close()

	summary, err := pipeline.Run(ctx, workbook)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	for reason, n := range summary.Skipped {
		rt.log.Infof("Skipped %d rows: %s", n, reason)
	}
	return nil
}

func syncOpensAction(c *cli.Context) error {
	rt, err := setup(c, nil)
	if err != nil {
		return err
	}
	defer rt.log.Sync()

	span, ctx := tracing.StartTracerSpan(context.Background(), "cli.sync-opens")
	defer span.Finish()
	tracing.TagComponentCli(span)

	svcs, err := services.InitServices(rt.cfg, rt.log, rt.repos, false)
	if err != nil {
		return err
	}
	if _, err := svcs.Reconciler.SyncFile(ctx, rt.cfg.OutreachConfig.ResultsXlsx); err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}

func eventsAction(c *cli.Context) error {
	messageID := c.Args().First()
	if messageID == "" {
		return cli.Exit("usage: ttp-tracker events <message-id>", 2)
	}

	rt, err := setup(c, nil)
	if err != nil {
		return err
	}
	defer rt.log.Sync()

	ctx := context.Background()
	message, err := rt.repos.MessageRepository.GetByID(ctx, messageID)
	switch {
	case errors.Is(err, repository.ErrMessageNotFound):
		fmt.Printf("message %s: not recorded\n", messageID)
	case err != nil:
		return err
	default:
		fmt.Printf("message %s: %s (%s) scenario=%d sent=%s\n", message.MessageID, message.Email,
			message.Domain, message.Scenario, message.SentAt.Format(time.RFC3339))
	}

	events, err := rt.repos.TrackingEventRepository.ListByMessageID(ctx, messageID)
	if err != nil {
		return err
	}
	for _, e := range events {
		fmt.Printf("%s\t%s\t%s\t%s\t%s\n", e.CreatedAt.Format(time.RFC3339), e.EventType, e.IP, e.UserAgent, e.TargetURL)
	}
	if len(events) == 0 {
		fmt.Println("no tracking events")
	}
	return nil
}

func restoreSnapshotAction(c *cli.Context) error {
	key := c.Args().First()
	if key == "" {
		return cli.Exit("usage: ttp-tracker restore-snapshot <snapshot-key>", 2)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		return err
	}
	if path := c.String("xlsx"); path != "" {
		cfg.OutreachConfig.ResultsXlsx = path
	}
	if err := cfg.ValidateForSnapshots(); err != nil {
		return err
	}

	appLogger := logger.NewAppLogger(cfg.Logger)
	appLogger.InitLogger()
	defer appLogger.Sync()

	lock, err := dataset.Lock(c.Context, cfg.OutreachConfig.ResultsXlsx)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	return services.NewR2Snapshotter(cfg, appLogger).Restore(c.Context, key, cfg.OutreachConfig.ResultsXlsx)
}

func trackerAction(c *cli.Context) error {
	rt, err := setup(c, func(cfg *config.Config) error {
		return cfg.ValidateForTracker()
	})
	if err != nil {
		return err
	}
	defer rt.log.Sync()

	srv, err := server.NewServer(rt.cfg, rt.log, rt.db)
	if err != nil {
		return errors.Wrap(err, "server setup failed")
	}
	if err := srv.Run(); err != nil {
		return errors.Wrap(err, "server stopped with error")
	}
	rt.log.Info("Shutdown complete")
	return nil
}
