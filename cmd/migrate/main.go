package main

import (
	"database/sql"
	"time"

	"blackjack-server/internal/config"
	"blackjack-server/pkg/db"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Instance()
	conn := waitForDB(cfg.PGDSN)
	defer conn.Close()

	if err := db.Migrate(logrus.StandardLogger(), conn, cfg.MigrationsPath); err != nil {
		logrus.WithError(err).Fatal("could not run migrations")
	}
}

func waitForDB(dsn string) *sql.DB {
	timeout := time.NewTimer(time.Second * 10)
	for {
		select {
		case <-timeout.C:
			logrus.Fatal("could not connect to database")
		default:
			conn, err := db.Open(dsn)
			if err == nil {
				return conn
			}

			logrus.WithError(err).Debug("database is not ready")
			time.Sleep(time.Millisecond * 500)
		}
	}
}
