package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/persistence"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/service"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "support-desk",
		Short:         "Customer support ticketing service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(func(rt *runtime) error {
				return serve(rt)
			})
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(func(rt *runtime) error {
				return persistence.RunMigrations(rt.ctx, rt.pg.PoolHandle(), rt.logger)
			})
		},
	}

	seedCmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the administrator account if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			name, _ := cmd.Flags().GetString("name")
			return withRuntime(func(rt *runtime) error {
				return seedAdmin(rt, email, password, name)
			})
		},
	}
	seedCmd.Flags().String("email", "", "admin email (defaults to ADMIN_SEED_EMAIL)")
	seedCmd.Flags().String("password", "", "admin password (defaults to ADMIN_SEED_PASSWORD)")
	seedCmd.Flags().String("name", "", "admin display name (defaults to ADMIN_SEED_NAME)")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
	// A bare invocation serves, matching container entrypoints.
	rootCmd.RunE = serveCmd.RunE

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runtime holds the process-wide resources shared by every command.
type runtime struct {
	ctx    context.Context
	cfg    *config.Config
	logger *zap.Logger
	pg     *persistence.Postgres
}

func withRuntime(fn func(rt *runtime) error) error {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Error("failed to connect postgres", zap.Error(err))
		return err
	}
	defer pg.Close()

	return fn(&runtime{ctx: ctx, cfg: cfg, logger: logger, pg: pg})
}

func seedAdmin(rt *runtime, email, password, name string) error {
	in := service.SeedAdminInput{
		Name:     rt.cfg.AdminSeed.Name,
		Email:    rt.cfg.AdminSeed.Email,
		Password: rt.cfg.AdminSeed.Password,
	}
	if email != "" {
		in.Email = email
	}
	if password != "" {
		in.Password = password
	}
	if name != "" {
		in.Name = name
	}

	authService := service.NewAuthService(*rt.cfg, service.AuthDependencies{
		UserRepo: repository.NewUserRepository(rt.pg.PoolHandle()),
		Logger:   rt.logger,
	})
	user, created, err := authService.SeedAdmin(rt.ctx, in)
	if err != nil {
		return err
	}
	if created {
		rt.logger.Info("admin account created", zap.String("email", user.Email))
	} else {
		rt.logger.Info("admin account already exists", zap.String("email", user.Email))
	}
	return nil
}
