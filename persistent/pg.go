package persistent

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"reflect"

	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	_ "github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

// PgOpen connects to postgres. Every query is logged when verbose is set.
func PgOpen(ctx context.Context, pgDsn string, verbose bool) *bun.DB {
	sqldb, err := sql.Open("pg", pgDsn)
	if err != nil {
		logrus.WithError(err).Fatalln("Could not open pg database.")
	}
	if err = sqldb.PingContext(ctx); err != nil {
		logrus.WithError(err).Fatalln("Could not ping pg database.")
	}

	bdb := bun.NewDB(sqldb, pgdialect.New())
	if verbose {
		bdb.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return bdb
}

// Running integration tests requires a real pg instance. testenv starts it
// once and passes the datasource to every test through the environment.

const testEnvDsnKey = "DEALSTREAK_TEST_PG_DSN"

func PgOpenTest(ctx context.Context) *bun.DB {
	return PgOpen(ctx, TestEnvDsn(), os.Getenv("DB_VERBOSE") == "true")
}

func TestEnvDsn() string {
	return os.Getenv(testEnvDsnKey)
}

func SetTestEnvDsn(dsn string) {
	os.Setenv(testEnvDsnKey, dsn)
}

var models = []interface{}{
	(*Activity)(nil),
	(*User)(nil),
	(*Group)(nil),
}

// CreateSchema creates missing tables and indexes.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	for _, model := range models {
		modelType := reflect.TypeOf(model)
		logrus.WithField("model", modelType).Debugln("Creating table.")
		_, err := db.NewCreateTable().IfNotExists().Model(model).Exec(ctx)
		if err != nil {
			return fmt.Errorf("create table %s: %w", modelType, err)
		}
	}

	_, err := db.NewCreateIndex().
		IfNotExists().
		Model((*Activity)(nil)).
		Index("activity_owner_created_idx").
		Column("owner_id", "created_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create activity owner index: %w", err)
	}
	_, err = db.NewCreateIndex().
		IfNotExists().
		Model((*Activity)(nil)).
		Index("activity_created_idx").
		Column("created_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create activity created index: %w", err)
	}
	return nil
}
