// Package commands defines the sub-commands of the maintenance CLI.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"insurance_backend/internal/app/di"
)

// Env is what every command runs against.
type Env struct {
	DB          *gorm.DB
	Maintenance di.Maintenance
}

// Loader builds the Env. The returned cleanup is called once the command finishes.
type Loader func(ctx context.Context) (*Env, func(), error)

// NewRootCmd creates the root command with every job registered.
func NewRootCmd(load Loader) *cobra.Command {
	root := &cobra.Command{
		Use:           "maintenance",
		Short:         "Batch jobs of the insurance backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("now", "", "reference time in RFC3339 (defaults to the current time)")

	root.AddCommand(
		job(load, "migrate", "Create or update the database schema", migrate),
		job(load, "purge-sessions", "Delete expired refresh sessions", purgeSessions),
		job(load, "expire-quotes", "Expire pending quotes past their validity", expireQuotes),
		job(load, "policy-transitions", "Activate due policies and expire lapsed ones", policyTransitions),
	)
	return root
}

type runFunc func(cmd *cobra.Command, env *Env, now time.Time) error

func job(load Loader, use, short string, run runFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now, err := referenceTime(cmd)
			if err != nil {
				return err
			}
			env, cleanup, err := load(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}
			defer cleanup()
			return run(cmd, env, now)
		},
	}
}

func referenceTime(cmd *cobra.Command) (time.Time, error) {
	raw, err := cmd.Flags().GetString("now")
	if err != nil {
		return time.Time{}, err
	}
	if raw == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now value %q: %w", raw, err)
	}
	return t, nil
}

func migrate(cmd *cobra.Command, env *Env, _ time.Time) error {
	if err := di.Migrate(env.DB); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
	return nil
}

func purgeSessions(cmd *cobra.Command, env *Env, _ time.Time) error {
	n, err := env.Maintenance.Sessions.PurgeExpiredSessions(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "purged %d expired sessions\n", n)
	return nil
}

func expireQuotes(cmd *cobra.Command, env *Env, now time.Time) error {
	n, err := env.Maintenance.Quotes.ExpireStale(cmd.Context(), now)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "expired %d quotes\n", n)
	return nil
}

func policyTransitions(cmd *cobra.Command, env *Env, now time.Time) error {
	activated, err := env.Maintenance.Policies.ActivateDue(cmd.Context(), now)
	if err != nil {
		return err
	}
	expired, err := env.Maintenance.Policies.ExpireLapsed(cmd.Context(), now)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "activated %d policies, expired %d policies\n", activated, expired)
	return nil
}
