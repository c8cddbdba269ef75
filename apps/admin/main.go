package main

import (
	"log"
	"os"

	"github.com/shakhna/portal/core"
	"github.com/shakhna/portal/storage/airtable"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()
	client := airtable.NewClient(conf.Store.BaseID, conf.Store.Token)

	cli := commandLine{
		usrRepo: airtable.NewUserRepository(client, conf.Store.Tables.Users),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
