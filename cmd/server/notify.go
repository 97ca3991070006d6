package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/welldanyogia/projecthub-backend/internal/database"
	"github.com/welldanyogia/projecthub-backend/internal/repository"
	"github.com/welldanyogia/projecthub-backend/internal/services"
)

// notifyProjectStartsCmd runs one project start pass, for use from an
// external cron when the in-process trigger is disabled
var notifyProjectStartsCmd = &cobra.Command{
	Use:   "notify-project-starts",
	Short: "Notify members of projects starting today and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, db, err := setup()
		if err != nil {
			return err
		}
		defer database.Close(db)

		store := repository.NewStore(db)
		resolver := services.NewRecipientResolver(store.Directory)
		// No hub runs in this process and it exits before a background relay
		// could finish; rows are picked up by clients on their next fetch
		notifier := services.NewNotifier(store, services.NotifierConfig{Logger: log})

		scheduler, err := services.NewProjectStartScheduler(resolver, notifier, services.ProjectStartSchedulerConfig{
			Cron: cfg.SchedulerCron,
		}, nil, log)
		if err != nil {
			return err
		}

		count, err := scheduler.RunOnce(context.Background())
		log.Info("project start pass finished", slog.Int("projects", count))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "notified %d project(s)\n", count)
		return nil
	},
}
