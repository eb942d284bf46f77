package main

import (
	"database/sql"
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/carnet/core"
	"github.com/trezcool/carnet/storage/database"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	var db *sqlx.DB
	defer func() {
		if db != nil {
			_ = db.Close()
		}
	}()

	// start CLI
	cli := commandLine{
		conf: conf,
		openDB: func() (*sql.DB, error) {
			var err error
			if db, err = database.Open(conf); err != nil {
				return nil, err
			}
			return db.DB, nil
		},
		out: os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		if db != nil {
			_ = db.Close()
		}
		os.Exit(1)
	}
}
