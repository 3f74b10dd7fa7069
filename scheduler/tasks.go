package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"portalsync/database"
	"portalsync/notion"
	"portalsync/syncer"
)

// SyncTasks returns the recurring synchronization tasks.
func SyncTasks(DB *gorm.DB, log *logrus.Logger, notionHost string) []Task {
	return []Task{
		{
			Name:        "pull_active_integrations",
			Description: "Run a pull pass for every active integration",
			Every:       time.Hour,
			StartDelay:  30 * time.Second,
			Enabled:     true,
			Handler: func() error {
				return PullActiveIntegrations(DB, log, notionHost)
			},
		},
	}
}

// PullActiveIntegrations runs one pull pass per active integration,
// sequentially. A failing integration is logged and never blocks the
// remaining ones; retry happens on the next scheduled run, never within the
// same tick.
func PullActiveIntegrations(DB *gorm.DB, log *logrus.Logger, notionHost string) error {
	var integrations []database.Integration
	if err := DB.Where("active = ?", true).Find(&integrations).Error; err != nil {
		return err
	}

	store := database.NewStore(DB)
	for _, listed := range integrations {
		// Re-read right before the pass: an integration deactivated since
		// enumeration is skipped. A pass is never cancelled mid-flight.
		var integration database.Integration
		if err := DB.First(&integration, listed.ID).Error; err != nil {
			log.WithField("integration", listed.Name).WithError(err).Error("Failed to reload integration")
			continue
		}
		if !integration.Active {
			continue
		}

		logger := log.WithFields(logrus.Fields{
			"integration": integration.Name,
			"workspace":   integration.WorkspaceID,
		})

		settings, err := integration.SyncSettings()
		if err != nil {
			logger.WithError(err).Error("Failed to parse integration settings")
			continue
		}
		if settings.DefaultDatabaseID == "" {
			// Counted as neither success nor failure.
			logger.Warn("Integration has no default database configured, skipping")
			continue
		}

		token, err := integration.BearerToken()
		if err != nil {
			logger.WithError(err).Error("Failed to read integration credential")
			continue
		}

		// Fresh client per pass: each integration carries its own credential.
		client := notion.NewClient(notionHost, token)
		result := syncer.New(store, client, log).PullPass(context.Background(), &integration)
		if result.Err != nil {
			logger.WithError(result.Err).WithFields(logrus.Fields{
				"attempted": result.Attempted,
				"failed":    result.Failed,
			}).Error("Pull pass failed")
			continue
		}

		logger.WithFields(logrus.Fields{
			"attempted": result.Attempted,
			"succeeded": result.Succeeded,
		}).Info("Pull pass completed")
	}

	return nil
}
