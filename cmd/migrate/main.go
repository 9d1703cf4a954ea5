package main

import (
	"database/sql"
	"flag"
	"time"

	"highcard-server/pkg/db"

	"github.com/sirupsen/logrus"
)

var timeout = flag.Duration("timeout", time.Second*10, "how long to wait for the database")

func main() {
	flag.Parse()
	waitForDB(*timeout)
	db.Migrate()
}

func waitForDB(timeout time.Duration) {
	deadline := time.NewTimer(timeout)
	for {
		select {
		case <-deadline.C:
			logrus.Fatal("could not connect to database")
		default:
			dbh := func() *sql.DB {
				defer func() { _ = recover() }()
				return db.Instance()
			}()

			if dbh != nil {
				return
			}

			logrus.Debug("database is not ready yet")
			time.Sleep(time.Millisecond * 500)
		}
	}
}
