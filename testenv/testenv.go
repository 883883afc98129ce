package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/dealstreak/dealstreak/persistent"
	"github.com/ory/dockertest"
	"github.com/ory/dockertest/docker"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

var (
	pgTag     = flag.String("pg-tag", "14.1", "postgres image tag")
	expiresIn = flag.Uint("expire", 120, "seconds after which docker kills the container")
	maxWait   = flag.Duration("wait", 20*time.Second, "how long to wait for postgres to accept connections")
)

// testenv runs `go test` against a throwaway postgres with the dealstreak
// schema. Arguments after the flags are passed to `go test`.
//
//	go run ./testenv -- -run TestActivityStore ./persistent/...
func main() {
	flag.Parse()

	logrus.WithField("tag", *pgTag).Infoln("Starting postgres container.")
	pg, err := startPostgres(*pgTag, *expiresIn, *maxWait)
	if err != nil {
		logrus.WithError(err).Fatalln("Could not start test database.")
	}

	args := flag.Args()
	if len(args) == 0 {
		args = []string{"./..."}
	}
	code := goTest(pg.dsn, args)

	logrus.Infoln("Tests done. Removing test database.")
	pg.purge()
	os.Exit(code)
}

// goTest returns the exit code of `go test args...`.
func goTest(dsn string, args []string) int {
	persistent.SetTestEnvDsn(dsn)

	c := exec.Command("go", append([]string{"test"}, args...)...)
	c.Env = os.Environ()
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	logrus.WithField("args", args).Infoln("Running tests...")
	err := c.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &exitErr):
		return exitErr.ExitCode()
	default:
		logrus.WithError(err).Errorln("Could not run go test.")
		return 1
	}
}

type testPostgres struct {
	dsn   string
	purge func()
}

func startPostgres(tag string, expiresIn uint, wait time.Duration) (testPostgres, error) {
	secret := make([]byte, 16)
	if _, err := rand.Read(secret); err != nil {
		return testPostgres{}, fmt.Errorf("password generate: %w", err)
	}
	password := hex.EncodeToString(secret)

	pool, err := dockertest.NewPool("")
	if err != nil {
		return testPostgres{}, fmt.Errorf("docker connect: %w", err)
	}
	pool.MaxWait = wait

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        tag,
		Env:        []string{"POSTGRES_PASSWORD=" + password, "POSTGRES_DB=dealstreak"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return testPostgres{}, fmt.Errorf("resource start: %w", err)
	}
	if err := resource.Expire(expiresIn); err != nil {
		logrus.WithError(err).Warningln("Could not set container expiry.")
	}
	purge := func() {
		if err := pool.Purge(resource); err != nil {
			logrus.WithError(err).Warningln("Could not purge postgres container.")
		}
	}

	dsn := fmt.Sprintf("postgresql://postgres:%s@localhost:%s/dealstreak?sslmode=disable",
		password, resource.GetPort("5432/tcp"))
	err = pool.Retry(func() error {
		return createSchema(dsn)
	})
	if err != nil {
		purge()
		return testPostgres{}, fmt.Errorf("database connect: %w", err)
	}
	return testPostgres{dsn: dsn, purge: purge}, nil
}

func createSchema(dsn string) error {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return persistent.CreateSchema(ctx, db)
}
