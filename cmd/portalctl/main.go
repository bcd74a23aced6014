package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hackgods/healthcare-portal/internal/db"
	"github.com/hackgods/healthcare-portal/internal/logger"
	"github.com/hackgods/healthcare-portal/internal/user"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "portalctl",
		Short:         "Healthcare portal administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("database-url", "", "Postgres connection string (env DATABASE_URL)")
	_ = viper.BindPFlag("DATABASE_URL", rootCmd.PersistentFlags().Lookup("database-url"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createAdminCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func connect(ctx context.Context) (*pgxpool.Pool, error) {
	dsn := viper.GetString("DATABASE_URL")
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	return db.ConnectPostgres(ctx, dsn, 2, 0)
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := db.NewMigrator(pool).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			for _, name := range applied {
				fmt.Printf("applied %s\n", name)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", len(applied))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool).Status(ctx)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "VERSION\tNAME\tAPPLIED AT")
			for _, s := range statuses {
				at := "pending"
				if s.AppliedAt != nil {
					at = s.AppliedAt.Format(time.RFC3339)
				}
				fmt.Fprintf(tw, "%03d\t%s\t%s\n", s.Version, s.Name, at)
			}
			return tw.Flush()
		},
	})

	return cmd
}

// createAdminCmd creates the admin account, or promotes and resets it when the
// email is already registered.
func createAdminCmd() *cobra.Command {
	var in user.RegisterInput
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create or reset the administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			log := logger.New("warn", "console", "portalctl")
			svc := user.NewService(user.NewPgRepository(pool), nil, "", log)

			u, err := svc.EnsureAdmin(ctx, in)
			if err != nil {
				return err
			}
			fmt.Printf("Admin account ready\n  id:    %d\n  email: %s\n  role:  %s\n", u.ID, u.Email, u.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "admin@gmail.com", "admin email")
	cmd.Flags().StringVar(&in.Password, "password", "admin1234", "admin password")
	cmd.Flags().StringVar(&in.FirstName, "first-name", "Admin", "first name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "User", "last name")
	return cmd
}
