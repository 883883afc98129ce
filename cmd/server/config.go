package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type config struct {
	debug      bool
	syslog     bool
	listenAddr string

	pgDsn      string
	buntdbPath string

	channelSecret      string
	channelAccessToken string
	messagingApiUrl    string

	quotaLimit    int
	quotaInterval time.Duration
	quotaBackend  string

	jwtSecret string
	jwtIssuer string

	location          *time.Location
	webhookWorkers    int
	webhookQueueSize  int
	digestHour        int
	leaderboardUrl    string
	reconcileInterval time.Duration
	milestoneStep     int
	allowOrigins      string
}

func requireEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		logrus.Fatalln(key + " not set!")
	}
	return value
}

func envOr(key string, def string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return def
}

func envInt(key string, def int) int {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		logrus.WithError(err).Fatalln(key + " is not a number!")
	}
	return i
}

func envDuration(key string, def time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		logrus.WithError(err).Fatalln(key + " is not a duration!")
	}
	return d
}

// configFromEnv reads the process environment, .env in the working directory
// fills in unset keys.
func configFromEnv() config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warningln("Could not load .env file.")
	}

	location, err := time.LoadLocation(envOr("REPORTING_TZ", "UTC"))
	if err != nil {
		logrus.WithError(err).Fatalln("REPORTING_TZ is not a known timezone!")
	}

	return config{
		debug:      os.Getenv("DEBUG") == "true",
		syslog:     os.Getenv("SYSLOG") == "true",
		listenAddr: envOr("LISTEN_ADDR", ":2137"),

		pgDsn:      os.Getenv("POSTGRES_DSN"),
		buntdbPath: envOr("BUNTDB_PATH", "kv.db"),

		channelSecret:      requireEnv("CHANNEL_SECRET"),
		channelAccessToken: requireEnv("CHANNEL_ACCESS_TOKEN"),
		messagingApiUrl:    os.Getenv("MESSAGING_API_URL"),

		quotaLimit:    envInt("QUOTA_LIMIT", 500),
		quotaInterval: envDuration("QUOTA_INTERVAL", 30*24*time.Hour),
		quotaBackend:  envOr("QUOTA_BACKEND", "memory"),

		jwtSecret: requireEnv("JWT_SECRET"),
		jwtIssuer: os.Getenv("JWT_ISSUER"),

		location:          location,
		webhookWorkers:    envInt("WEBHOOK_WORKERS", 4),
		webhookQueueSize:  envInt("WEBHOOK_QUEUE_SIZE", 64),
		digestHour:        envInt("DIGEST_HOUR", 18),
		leaderboardUrl:    os.Getenv("LEADERBOARD_URL"),
		reconcileInterval: envDuration("RECONCILE_INTERVAL", time.Hour),
		milestoneStep:     envInt("MILESTONE_STEP", 500),
		allowOrigins:      envOr("ALLOW_ORIGINS", "*"),
	}
}
