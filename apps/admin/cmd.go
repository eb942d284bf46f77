package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/trezcool/carnet/apps/api/echo"
	"github.com/trezcool/carnet/core"
	"github.com/trezcool/carnet/storage/database"
)

var (
	gooseRunFunc = database.RunMigrations // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf   *core.Config
	openDB func() (*sql.DB, error) // called by the commands that need the database
	out    io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, ...)")
	fmt.Println("  token -name NAME       - print an API token for the client called NAME")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenName := tokenCmd.String("name", "", "The name of the API client the token is issued to.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *tokenName == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(*tokenName)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) migrate(args []string) error {
	db, err := cli.openDB()
	if err != nil {
		return err
	}
	return gooseRunFunc(db, args[0], args[1:]...)
}

func (cli *commandLine) token(name string) error {
	token, err := echoapi.GenerateToken(cli.conf, core.CleanString(name))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cli.out, token)
	return err
}
