// Command ansdnsctl operates a record registry stored in a local bbolt file:
// it seeds the state from a genesis file, executes actions, and inspects or
// upgrades the stored state.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "ansdnsctl"
	app.Usage = "Manage an ANS DNS record registry state file"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "db",
			Value:  "ansdns.db",
			Usage:  "path to the bbolt state file",
			EnvVar: "ANSDNS_BOLT_PATH",
		},
		cli.StringFlag{
			Name:   "exm-url",
			Value:  "https://api.exm.dev/read",
			Usage:  "base URL of the EXM balances endpoint",
			EnvVar: "ANSDNS_EXM_BASE_URL",
		},
		cli.DurationFlag{
			Name:  "timeout",
			Value: defaultLookupTimeout,
			Usage: "timeout of each external lookup",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "init",
			Usage:     "Seed an empty state file from a genesis YAML file",
			ArgsUsage: "<genesis.yaml>",
			Action:    initState,
		},
		{
			Name:      "exec",
			Usage:     "Execute one action read from a JSON file (or - for stdin)",
			ArgsUsage: "<action.json>",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "tx",
					Usage: "transaction id stamped on created records (minted when empty)",
				},
			},
			Action: execAction,
		},
		{
			Name:      "get",
			Usage:     "Print the records of a domain",
			ArgsUsage: "<domain>",
			Action:    getRecords,
		},
		{
			Name:   "migrate",
			Usage:  "Rewrite the stored state in the current schema",
			Action: migrateState,
		},
		{
			Name:   "dump",
			Usage:  "Print the whole stored state",
			Action: dumpState,
		},
	}
	return app
}
