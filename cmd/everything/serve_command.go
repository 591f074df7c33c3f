package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/vbonduro/everything/internal/auth"
	"github.com/vbonduro/everything/internal/commute"
	"github.com/vbonduro/everything/internal/config"
	"github.com/vbonduro/everything/internal/db"
	"github.com/vbonduro/everything/internal/events"
	"github.com/vbonduro/everything/internal/imagestore/local"
	"github.com/vbonduro/everything/internal/notify"
	"github.com/vbonduro/everything/internal/scheduler"
	"github.com/vbonduro/everything/internal/service"
	"github.com/vbonduro/everything/internal/speech"
	"github.com/vbonduro/everything/internal/store"
	"github.com/vbonduro/everything/internal/sysinfo"
	"github.com/vbonduro/everything/internal/vision"
	claudevision "github.com/vbonduro/everything/internal/vision/claude"
	ollamavision "github.com/vbonduro/everything/internal/vision/ollama"
	"github.com/vbonduro/everything/internal/voice"
	"github.com/vbonduro/everything/internal/web"
)

type serveOptions struct {
	listenAddr  string
	noScheduler bool
}

func addServeFlags(fs *pflag.FlagSet, opts *serveOptions) {
	fs.StringVar(&opts.listenAddr, "listen", "", "Listen address (overrides LISTEN_ADDR)")
	fs.BoolVar(&opts.noScheduler, "no-scheduler", false, "Do not run background jobs in this process")
}

func newServeCommand(ctx *commandContext) *cobra.Command {
	var opts serveOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if opts.listenAddr != "" {
				cfg.ListenAddr = opts.listenAddr
			}
			if opts.noScheduler {
				cfg.SchedulerEnabled = false
			}
			logger, cleanup, err := ctx.logger()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer cleanup()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(runCtx, cfg, logger)
		},
	}
	addServeFlags(cmd.Flags(), &opts)
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	images, err := local.New(cfg.DataDir, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize image store: %w", err)
	}
	analyzer, err := newVisionAnalyzer(cfg, logger)
	if err != nil {
		return err
	}
	stt, err := speech.NewTranscriber(cfg, logger)
	if err != nil {
		return err
	}
	tts, err := speech.NewSynthesizer(cfg)
	if err != nil {
		return err
	}

	hub := events.NewHub(logger)
	defer hub.Close()
	sinks := []service.EventSink{hub}
	if len(cfg.KafkaBrokers) > 0 {
		kafka := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer func() {
			if err := kafka.Close(); err != nil {
				logger.Error("failed to close kafka writer", "error", err)
			}
		}()
		sinks = append(sinks, kafka)
		logger.Info("publishing events to kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	eventSvc := service.NewEventService(store.NewEventStore(database), logger, sinks...)
	inventory := service.NewInventoryService(store.NewItemStore(database), logger)
	reminders := service.NewReminderService(store.NewReminderStore(database), logger)
	appointments := service.NewAppointmentService(store.NewAppointmentStore(database), logger)
	commuteClient := commute.NewClient(cfg.GTFSFeedURL, cfg.CommuteStopID, logger)
	notifier, expo := notify.New(cfg, store.NewPushTokenStore(database), logger)
	logger.Info("notification channels", "channels", notifier.Channels())

	sched := scheduler.New(cfg.SchedulerLockPath, logger)
	sched.Add(scheduler.UpcomingJob(reminders, appointments, notifier))
	sched.Add(scheduler.LowStockJob(inventory, notifier))
	sched.Add(scheduler.CommuteJob(commuteClient, logger))

	users, err := auth.NewAuthenticator(cfg.AdminPassword)
	if err != nil {
		return err
	}
	if cfg.AdminPassword == "" {
		logger.Warn("ADMIN_PASSWORD is not set; system, file and process routes are disabled")
	}
	if cfg.AuthSecret == "" {
		logger.Warn("AUTH_SECRET is not set; tokens will not survive a restart")
	}
	sys, err := sysinfo.NewReader()
	if err != nil {
		return err
	}

	pipeline := voice.NewPipeline(stt, tts, logger)
	server := web.NewServer(web.Deps{
		Reminders:    reminders,
		Appointments: appointments,
		Inventory:    inventory,
		Receipts:     service.NewReceiptService(store.NewReceiptStore(database), inventory, analyzer, images, logger),
		Home:         service.NewHomeService(store.NewDeviceStore(database), eventSvc, tts, logger),
		Events:       eventSvc,
		Health:       service.NewHealthService(store.NewCheckInStore(database), logger),
		Commute:      commuteClient,
		Voice:        pipeline,
		Hub:          hub,
		Push:         expo,
		Scheduler:    sched,
		System:       sys,
		Users:        users,
		Tokens:       auth.NewJWTManager(cfg.AuthSecret, time.Duration(cfg.TokenTTLMinutes)*time.Minute),
	}, logger)
	pipeline.SetHandler(server)

	if cfg.SchedulerEnabled && !cfg.TestMode {
		switch err := sched.Start(ctx); {
		case errors.Is(err, scheduler.ErrLocked):
			logger.Info("scheduler already running in another process", "lock", cfg.SchedulerLockPath)
		case err != nil:
			return err
		default:
			defer sched.Stop()
		}
	}

	return server.ListenAndServe(ctx, cfg.ListenAddr)
}

func newVisionAnalyzer(cfg *config.Config, logger *slog.Logger) (vision.ReceiptAnalyzer, error) {
	switch cfg.VisionBackend {
	case "claude":
		if cfg.ClaudeAPIKey == "" {
			return nil, errors.New("CLAUDE_API_KEY is required when VISION_BACKEND=claude")
		}
		logger.Info("using Claude vision backend", "model", cfg.ClaudeModel)
		return claudevision.NewClaudeAnalyzer(cfg.ClaudeAPIKey, cfg.ClaudeModel), nil
	default:
		logger.Info("using Ollama vision backend", "model", cfg.OllamaModel)
		return ollamavision.NewOllamaAnalyzer(cfg.OllamaHost, cfg.OllamaModel), nil
	}
}
