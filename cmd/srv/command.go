package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "raffle"
	app.Usage = "Verifiable randomness raffle"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the TOML config file",
			EnvVars: []string{"RAFFLE_CONFIG"},
		},
	}
	app.Before = s.loadConfig
	app.Commands = []*cli.Command{
		{
			Action:   s.startRaffle,
			Name:     "raffle",
			Usage:    "Start the raffle service",
			Category: "Service",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "keeper",
					Usage: "Run the keeper in the same process",
				},
			},
			Description: `Serves the HTTP api, the websocket event stream and the JSON-RPC api used by the keeper and the coordinator.`,
		},
		{
			Action:      s.startKeeper,
			Name:        "keeper",
			Usage:       "Start the keeper",
			Category:    "Worker",
			Description: `Polls checkUpkeep of a remote raffle and calls performUpkeep when a draw is due.`,
		},
		{
			Action:      s.startIndexer,
			Name:        "indexer",
			Usage:       "Start the event indexer",
			Category:    "Worker",
			Description: `Consumes raffle events from kafka, stores them in the database and maintains the winner leaderboard.`,
		},
		{
			Action:      s.startCoordinator,
			Name:        "coordinator",
			Usage:       "Start a mock randomness coordinator",
			Category:    "Development",
			Description: `Serves requestRandomWords and delivers signed random words to a remote raffle. Its words are predictable, never use it for a real raffle.`,
		},
		{
			Action:   s.generateOperatorToken,
			Name:     "token",
			Usage:    "Generate an operator access token",
			Category: "Tool",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "address",
					Usage:    "Operator address",
					Required: true,
				},
			},
		},
	}

	s.app = app
}
