package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"portalsync/database"
	"portalsync/notion"
	"portalsync/syncer"
)

// SyncCli runs one manual synchronization pass and prints the structured
// result.
func SyncCli() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "run one synchronization pass for one integration",
		Flags: append(GetServerFlags(), []cli.Flag{
			&cli.UintFlag{
				Name:     "integration",
				Aliases:  []string{"i"},
				Usage:    "integration ID to synchronize",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "direction",
				Value:   "pull",
				Usage:   "pass direction: pull (workspace -> store) or push (store -> workspace)",
				Sources: cli.EnvVars("SYNC_DIRECTION"),
			},
		}...),
		Action: func(_ context.Context, c *cli.Command) error {
			log := logrus.New()
			if c.Bool("debug") {
				log.SetLevel(logrus.DebugLevel)
			}

			direction := c.String("direction")
			if direction != "pull" && direction != "push" {
				return fmt.Errorf("unsupported sync direction: %s", direction)
			}

			if err := database.InitSecretKey(c.String("secret-key")); err != nil {
				return fmt.Errorf("failed to initialize secret key: %w", err)
			}

			DB := database.SetupDatabase(c.String("db-backend"), c.String("db-dsn"), false)

			var integration database.Integration
			if err := DB.First(&integration, uint(c.Uint("integration"))).Error; err != nil {
				return fmt.Errorf("failed to load integration: %w", err)
			}

			token, err := integration.BearerToken()
			if err != nil {
				return err
			}

			client := notion.NewClient(c.String("notion-host"), token)
			s := syncer.New(database.NewStore(DB), client, log)

			var result syncer.Result
			if direction == "pull" {
				result = s.PullPass(context.Background(), &integration)
			} else {
				result = s.PushPass(context.Background(), &integration)
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(result); err != nil {
				return err
			}
			return result.Err
		},
	}
}
