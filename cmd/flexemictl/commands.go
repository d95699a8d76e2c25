package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"flexemi-backend/internal/app"
	"flexemi-backend/internal/infrastructure/db"
	"flexemi-backend/pkg/calendar"

	"github.com/spf13/cobra"
)

type opener func() (*app.App, error)

func newRootCmd(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "flexemictl",
		Short:         "FlexEMI operations tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		migrateCmd(open),
		sweepCmd(open),
		createAdminCmd(open),
	)
	return root
}

func migrateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.Migrate(); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema up to date (%d tables).\n", len(db.Models()))
			return nil
		},
	}
}

func sweepCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep-late-fees",
		Short: "Mark overdue installments and charge late fees on every active loan",
		RunE: func(cmd *cobra.Command, args []string) error {
			at, _ := cmd.Flags().GetString("at")
			var day time.Time
			if at != "" {
				d, err := calendar.ParseDate(at)
				if err != nil {
					return fmt.Errorf("--at must be YYYY-MM-DD: %w", err)
				}
				day = d
			}

			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()

			now := time.Now()
			if !day.IsZero() {
				// start of that day where "today" is computed
				now = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, a.Cfg.Location())
			}

			res, err := a.Engine.SweepAll(cmd.Context(), now)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Swept %d loans: %d installments overdue, %d late fees charged, %d failed.\n",
				res.LoansScanned, res.MarkedOverdue, res.ChargesAdded, res.Failed)
			if res.Failed > 0 {
				return fmt.Errorf("%d loans failed, see logs", res.Failed)
			}
			return nil
		},
	}
	cmd.Flags().String("at", "", "sweep as of this day (YYYY-MM-DD), default today")
	return cmd
}

func createAdminCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an ADMIN account",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			name, _ := cmd.Flags().GetString("name")
			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				password = os.Getenv("FLEXEMI_ADMIN_PASSWORD")
			}
			if email == "" || password == "" {
				return errors.New("--email and --password (or FLEXEMI_ADMIN_PASSWORD) are required")
			}

			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()

			dto, err := a.Users.CreateAdmin(cmd.Context(), email, name, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Admin %s created (%s).\n", dto.Email, dto.UserID)
			return nil
		},
	}
	cmd.Flags().String("email", "", "admin email")
	cmd.Flags().String("name", "", "display name")
	cmd.Flags().String("password", "", "initial password")
	return cmd
}
