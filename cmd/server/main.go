package main

import (
	"context"
	"flag"
	"log/syslog"
	"os"
	"os/signal"
	"time"

	"github.com/dealstreak/dealstreak"
	"github.com/dealstreak/dealstreak/inmem"
	"github.com/dealstreak/dealstreak/line"
	"github.com/dealstreak/dealstreak/notify"
	"github.com/dealstreak/dealstreak/persistent"
	"github.com/dealstreak/dealstreak/transport/rest"
	"github.com/dealstreak/dealstreak/webhook"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	logrusys "github.com/sirupsen/logrus/hooks/syslog"
	"github.com/tidwall/buntdb"
	"github.com/uptrace/bun"
)

type stores struct {
	activities dealstreak.ActivityStore
	users      dealstreak.UserStore
	groups     dealstreak.GroupStore
}

func openStores(ctx context.Context, cfg config) (stores, func()) {
	if cfg.pgDsn == "" {
		logrus.Warningln("POSTGRES_DSN not set, keeping data in memory.")
		return stores{
			activities: inmem.NewActivityStore(),
			users:      inmem.NewUserStore(),
			groups:     inmem.NewGroupStore(),
		}, func() {}
	}

	logrus.Infoln("Opening database.")
	db := persistent.PgOpen(ctx, cfg.pgDsn, cfg.debug)
	if err := persistent.CreateSchema(ctx, db); err != nil {
		logrus.WithError(err).Fatalln("Could not create database schema.")
	}
	return stores{
		activities: &persistent.ActivityStore{DB: db},
		users:      &persistent.UserStore{DB: db},
		groups:     &persistent.GroupStore{DB: db},
	}, func() { closeDb(db) }
}

func closeDb(db *bun.DB) {
	if err := db.Close(); err != nil {
		logrus.WithError(err).Warningln("Could not close database.")
	}
}

func newQuota(cfg config, bdb *buntdb.DB) notify.Quota {
	switch cfg.quotaBackend {
	case "buntdb":
		return &persistent.QuotaWindow{Buntdb: bdb, Limit: cfg.quotaLimit, Interval: cfg.quotaInterval}
	case "memory":
		return notify.NewTokenBucket(cfg.quotaLimit, cfg.quotaInterval)
	default:
		logrus.Fatalln("QUOTA_BACKEND must be memory or buntdb!")
		return nil
	}
}

func listenAndServe(ctx context.Context, cfg config, st stores, bdb *buntdb.DB) func() error {
	client := &line.Client{
		AccessToken: cfg.channelAccessToken,
		BaseUrl:     cfg.messagingApiUrl,
		Timeout:     10 * time.Second,
	}
	gateway := &notify.Gateway{Messenger: client, Quota: newQuota(cfg, bdb)}

	broadcaster := dealstreak.NewBroadcaster(32)
	board := &dealstreak.Leaderboard{
		Activities: st.activities,
		Users:      st.users,
		Ranks:      &persistent.RankStore{Buntdb: bdb},
		Location:   cfg.location,
	}
	ledger := &dealstreak.Ledger{
		Activities: st.activities,
		Users:      st.users,
		Aggregates: &dealstreak.Aggregator{Users: st.users, Activities: st.activities, Location: cfg.location},
		Events:     broadcaster,
		Stats:      board,
	}
	registry := &dealstreak.GroupRegistry{Store: st.groups}

	router := &webhook.Router{
		Groups:    registry,
		Stats:     ledger,
		Messenger: gateway,
		Summaries: client,
		TopN:      5,
		Link:      cfg.leaderboardUrl,
	}
	queue := webhook.NewQueue(cfg.webhookWorkers, cfg.webhookQueueSize, router.Handle)
	queue.Start(ctx)

	created, unsubscribe := broadcaster.Subscribe(dealstreak.EventActivityCreated)
	announcer := &notify.Announcer{
		Users:         st.users,
		Groups:        registry,
		Notifier:      gateway,
		MilestoneStep: cfg.milestoneStep,
	}
	go announcer.Run(ctx, created)

	digest := &notify.Digest{
		Stats:    ledger,
		Groups:   registry,
		Notifier: gateway,
		Location: cfg.location,
		Hour:     cfg.digestHour,
		TopN:     10,
		Link:     cfg.leaderboardUrl,
	}
	go digest.Run(ctx)
	go ledger.RunReconciler(ctx, cfg.reconcileInterval)

	server := fiber.New(fiber.Config{ErrorHandler: rest.ErrorHandler})
	server.Use(rest.LogHandler())

	api := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Second,
		ErrorHandler: rest.ErrorHandler,
	})
	api.Use(cors.New(cors.Config{AllowOrigins: cfg.allowOrigins}))

	requestAuthorizer := rest.RequestAuthorizer(rest.TokenConfig{Secret: cfg.jwtSecret, Issuer: cfg.jwtIssuer}, st.users)
	api.Get("/status", monitor.New())
	(&rest.ActivityController{Ledger: ledger}).InstallTo(requestAuthorizer, api)
	(&rest.LeaderboardController{Stats: ledger}).InstallTo(requestAuthorizer, api)
	(&rest.GroupController{Registry: registry}).InstallTo(requestAuthorizer, api)
	(&rest.EventsController{Source: broadcaster, Done: ctx.Done()}).InstallTo(requestAuthorizer, api)

	server.Mount("/api/", api)
	(&rest.WebhookController{Secret: []byte(cfg.channelSecret), Queue: queue}).InstallTo(server)
	server.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	server.Use(rest.NotFoundHandler)

	go func() {
		if err := server.Listen(cfg.listenAddr); err != nil {
			logrus.WithError(err).Fatalln("Could not listen.")
		}
	}()

	return func() error {
		err := server.Shutdown()
		unsubscribe()
		queue.Close()
		return err
	}
}

func setupLogger(verbose bool, useSyslog bool) {
	logrus.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: time.Stamp,
		FullTimestamp:   true,
	})
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if !useSyslog {
		return
	}

	syslogHook, err := logrusys.NewSyslogHook("", "", syslog.LOG_USER, "dealstreak")
	if err != nil {
		logrus.WithError(err).Fatalln("Could not create syslog hook.")
		return
	}
	logrus.AddHook(syslogHook)
}

func awaitInterruption() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c
}

func main() {
	flag.Parse()
	cfg := configFromEnv()
	setupLogger(cfg.debug, cfg.syslog)
	logrus.Infoln("Starting dealstreak.")

	bdb, err := buntdb.Open(cfg.buntdbPath)
	if err != nil {
		logrus.WithError(err).Fatalln("Could not open buntdb.")
	}
	defer bdb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	st, closeStores := openStores(ctx, cfg)
	defer closeStores()

	logrus.WithField("addr", cfg.listenAddr).Infoln("Starting listening... To shut down use ^C")
	shutdown := listenAndServe(ctx, cfg, st, bdb)

	awaitInterruption()

	logrus.Infoln("Shutting down...")
	// webhook workers drain their queues while ctx is still live
	if err := shutdown(); err != nil {
		logrus.WithError(err).Warningln("Fiber shutdown failed.")
	}
	cancel()
}
