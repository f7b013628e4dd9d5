package main

import (
	"fmt"
	"os"

	"lms/config"
	"lms/database"
	"lms/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "lms-admin",
		Short:         "Administrative tasks for the LMS backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadConfig()
			if verbose {
				return logger.Init(config.AppConfig.AppEnv)
			}
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr")

	root.AddCommand(
		newMigrateCommand(),
		newCreateAdminCommand(),
		newGrantCourseCommand(),
		newCategoriesCommand(),
		newDispatchCommand(),
	)
	return root
}

// connect opens the configured database; ConnectDb also migrates it.
func connect() (*gorm.DB, error) {
	if err := database.ConnectDb(); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return database.Database.Db, nil
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := connect(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return nil
		},
	}
}
