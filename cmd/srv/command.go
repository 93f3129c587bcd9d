package main

import "github.com/urfave/cli/v2"

// NewApp creates an app with sane defaults.
func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "Hikari"
	app.Usage = ""
	app.Commands = []*cli.Command{
		{
			Action:      server.startApi,
			Name:        "api",
			Usage:       "Start the interactions api",
			Flags:       []cli.Flag{},
			Category:    "Api",
			Description: `Used to start the interactions endpoint that receives command webhooks from the chat platform.`,
		},
	}

	s.app = app
}
