package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"portalsync/database"
	"portalsync/notion"
	"portalsync/scheduler"
	"portalsync/server"
)

func GetServerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Sources: cli.EnvVars("DB_BACKEND"),
			Name:    "db-backend",
			Aliases: []string{"db"},
			Value:   "sqlite",
			Usage:   "database driver to use (sqlite or postgres)",
		},
		&cli.StringFlag{
			Sources: cli.EnvVars("DB_DSN"),
			Name:    "db-dsn",
			Aliases: []string{"dp"},
			Value:   "data.db",
			Usage:   "for sqlite the database file path, for postgres the DSN",
		},
		&cli.BoolFlag{
			Sources: cli.EnvVars("DEBUG"),
			Name:    "debug",
			Aliases: []string{"d"},
			Value:   false,
			Usage:   "enable debug mode (drops and recreates owned tables)",
		},
		&cli.StringFlag{
			Sources: cli.EnvVars("HOST"),
			Name:    "host",
			Aliases: []string{"b"},
			Value:   "127.0.0.1",
			Usage:   "server bind address",
		},
		&cli.IntFlag{
			Sources: cli.EnvVars("PORT"),
			Name:    "port",
			Aliases: []string{"p"},
			Value:   4242,
			Usage:   "server port",
		},
		&cli.StringFlag{
			Sources: cli.EnvVars("NOTION_HOST"),
			Name:    "notion-host",
			Value:   notion.DefaultHost,
			Usage:   "remote workspace API endpoint",
		},
		&cli.StringFlag{
			Sources: cli.EnvVars("PORTALSYNC_SECRET_KEY"),
			Name:    "secret-key",
			Value:   "",
			Usage:   "key used to encrypt integration credentials at rest",
		},
	}
}

func ServerCli() *cli.Command {
	cmd := &cli.Command{
		Name:  "server",
		Usage: "run the sync backend",
		Flags: GetServerFlags(),
		Action: func(_ context.Context, c *cli.Command) error {
			log := logrus.New()
			if c.Bool("debug") {
				log.SetLevel(logrus.DebugLevel)
			}

			if err := database.InitSecretKey(c.String("secret-key")); err != nil {
				return fmt.Errorf("failed to initialize secret key: %w", err)
			}

			DB := database.SetupDatabase(c.String("db-backend"), c.String("db-dsn"), c.Bool("debug"))

			schedulerService := scheduler.NewSchedulerService(DB, log, c.String("notion-host"))
			schedulerService.RegisterTasks()
			schedulerService.Start()
			defer schedulerService.Stop()

			s, fullHost := server.BackendServer(DB, log, c.String("host"), int(c.Int("port")), c.String("notion-host"))
			log.Infof("Starting server on %s", fullHost)

			return s.ListenAndServe()
		},
	}

	return cmd
}
