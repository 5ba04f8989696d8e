package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"daily-tasks/internal/model"
)

var (
	carryOverUser string
	archiveUser   string
)

var carryOverCmd = &cobra.Command{
	Use:   "carryover",
	Short: "Carry a user's unfinished tasks from yesterday into today",
	Long: `Archive the user's older daily tasks and copy yesterday's unfinished ones into
today. Runs at most once per user and day; a second run reports alreadyRan.

Example:
  dailytasks carryover --user 3b1f...`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := a.findUser(cmd.Context(), carryOverUser)
		if err != nil {
			return err
		}
		res, err := a.carryOver.CarryOver(cmd.Context(), user.ID, a.tasks.Day(user).Location())
		if err != nil {
			return fmt.Errorf("carry over: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

var archiveProjectsCmd = &cobra.Command{
	Use:   "archive-projects",
	Short: "Archive a user's finished and inactive projects",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := a.findUser(cmd.Context(), archiveUser)
		if err != nil {
			return err
		}
		res, err := a.archive.AutoArchive(cmd.Context(), user.ID, user.Settings)
		if err != nil {
			return fmt.Errorf("archive projects: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

var maintenanceCmd = &cobra.Command{
	Use:   "maintenance",
	Short: "Run carry-over, project archival and attempt cleanup for every user once",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		reports, err := a.maintenance.RunAll(cmd.Context())
		if perr := printJSON(cmd.OutOrStdout(), reports); perr != nil {
			return errors.Join(err, perr)
		}
		return err
	},
}

func init() {
	carryOverCmd.Flags().StringVar(&carryOverUser, "user", "", "user id (required)")
	_ = carryOverCmd.MarkFlagRequired("user")
	archiveProjectsCmd.Flags().StringVar(&archiveUser, "user", "", "user id (required)")
	_ = archiveProjectsCmd.MarkFlagRequired("user")
}

func (a *app) findUser(ctx context.Context, id string) (*model.User, error) {
	user, err := a.store.Users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", id, err)
	}
	return user, nil
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
