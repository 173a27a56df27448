package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/astren/core/internal/adapters/backend"
	"github.com/astren/core/internal/adapters/localstore"
	"github.com/astren/core/internal/application/guard"
	"github.com/astren/core/internal/application/services"
	"github.com/astren/core/internal/application/worker"
	"github.com/astren/core/internal/infrastructure/config"
	"github.com/astren/core/internal/infrastructure/database"
	"github.com/astren/core/internal/infrastructure/logger"
	"github.com/astren/core/internal/infrastructure/server"
	"github.com/astren/core/internal/ports"
)

// NewSyncCommand creates the sync command: the headless client loop
// that keeps the local mirror, statuses and stats current.
func NewSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run the background sync loop",
		Long:  "Load the task collection from the backend, keep the local mirror fresh and sweep overdue statuses until interrupted",
		Run: func(cmd *cobra.Command, args []string) {
			userID, _ := cmd.Flags().GetInt64("user")
			runSync(userID)
		},
	}
	cmd.Flags().Int64("user", 0, "User id to sync (defaults to the stored session)")
	return cmd
}

// NewDevServerCommand creates the devserver command.
func NewDevServerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "devserver",
		Short: "Start the local development backend",
		Long:  "Start the local HTTP backend speaking the production wire contract over SQLite",
		Run: func(cmd *cobra.Command, args []string) {
			runDevServer()
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands.
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage the dev backend database schema (up, down, version)",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Run: func(cmd *cobra.Command, args []string) {
			withDB(func(db *database.DB) {
				if err := db.Migrate(); err != nil {
					log.Fatalf("Migration failed: %v", err)
				}
				fmt.Println("Migrations applied")
			})
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		Run: func(cmd *cobra.Command, args []string) {
			withDB(func(db *database.DB) {
				if err := db.MigrateDown(); err != nil {
					log.Fatalf("Rollback failed: %v", err)
				}
				fmt.Println("Migrations rolled back")
			})
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		Run: func(cmd *cobra.Command, args []string) {
			withDB(func(db *database.DB) {
				version, dirty, err := db.MigrationVersion()
				if err != nil {
					log.Fatalf("Failed to read migration version: %v", err)
				}
				fmt.Printf("Current migration version: %d\n", version)
				fmt.Printf("Dirty: %t\n", dirty)
			})
		},
	})

	return migrateCmd
}

// NewUserCommand creates the dev backend user management command.
func NewUserCommand() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Dev backend user management",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a dev backend account",
		Run: func(cmd *cobra.Command, args []string) {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			name, _ := cmd.Flags().GetString("name")
			if email == "" || password == "" {
				log.Fatal("Email and password are required")
			}
			createUser(email, password, name)
		},
	}
	createCmd.Flags().String("email", "", "Account email (required)")
	createCmd.Flags().String("password", "", "Account password (required)")
	createCmd.Flags().String("name", "", "Display name")

	userCmd.AddCommand(createCmd)
	return userCmd
}

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print Astren version",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load()
			if err != nil {
				log.Fatalf("Failed to load configuration: %v", err)
			}
			fmt.Printf("%s %s (%s)\n", cfg.App.Name, cfg.App.Version, cfg.App.Environment)
		},
	}
}

func runSync(userID int64) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Close()

	store, err := localstore.New(cfg.Store.Dir, appLogger)
	if err != nil {
		appLogger.Fatalw("Failed to open local store", "error", err)
	}

	gateway := backend.NewClient(&cfg.Backend, appLogger)
	guards := guard.NewRegistry()

	reputation := services.NewReputationService(store, appLogger)
	tasks := services.NewTaskService(gateway, store, guards, reputation, appLogger)
	areas := services.NewAreaService(store, appLogger)
	notifications := services.NewNotificationService(store, appLogger)
	auth := services.NewAuthService(gateway, store, appLogger)
	dashboard := services.NewDashboardService(gateway, tasks, areas, appLogger)

	if userID == 0 {
		session, err := auth.CurrentSession()
		if err != nil {
			appLogger.Fatalw("No session and no --user flag; log in first or pass --user")
		}
		userID = session.UserID
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	counts, err := dashboard.Refresh(ctx, userID)
	if err != nil {
		appLogger.Warnw("Initial refresh failed, starting from the mirror", "error", err)
	} else {
		appLogger.Infow("Dashboard refreshed",
			"today", counts.Today,
			"pending", counts.Pending,
			"completed", counts.Completed,
			"overdue", counts.Overdue,
		)
	}

	sweeper := worker.NewSweeper(tasks, areas, notifications, cfg.Sync.SweepInterval, appLogger)
	go sweeper.Start(ctx)

	refresh := time.NewTicker(cfg.Sync.RefreshInterval)
	defer refresh.Stop()

	for {
		select {
		case <-refresh.C:
			if _, err := dashboard.Refresh(ctx, userID); err != nil {
				appLogger.Warnw("Periodic refresh failed", "error", err)
			}
		case <-ctx.Done():
			appLogger.Infow("Sync loop stopping")
			return
		}
	}
}

func runDevServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Close()

	db, err := database.New(cfg.DevServer)
	if err != nil {
		appLogger.Fatalw("Failed to open database", "error", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		appLogger.Fatalw("Failed to migrate database", "error", err)
	}

	srv, err := server.New(cfg, db, appLogger)
	if err != nil {
		appLogger.Fatalw("Failed to initialize server", "error", err)
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			appLogger.Errorw("Graceful shutdown failed", "error", err)
		}
	}()

	appLogger.Infow("Starting dev backend",
		"address", cfg.DevServer.Addr(),
		"database", cfg.DevServer.DatabasePath,
	)

	if err := srv.Start(cfg.DevServer.Addr()); err != nil {
		appLogger.Infow("Server stopped", "reason", err.Error())
	}
}

func withDB(fn func(db *database.DB)) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg.DevServer)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fn(db)
}

func createUser(email, password, name string) {
	withDB(func(db *database.DB) {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}

		user := ports.UserRecord{
			Name:         name,
			Email:        email,
			PasswordHash: string(hash),
		}

		query := `INSERT INTO usuarios (nombre, apellido, email, contrasena_hash) VALUES (?, ?, ?, ?)`
		result, err := db.DB.Exec(query, user.Name, user.LastName, user.Email, user.PasswordHash)
		if err != nil {
			log.Fatalf("Failed to create user: %v", err)
		}
		id, _ := result.LastInsertId()

		fmt.Printf("User created:\n")
		fmt.Printf("  ID: %d\n", id)
		fmt.Printf("  Email: %s\n", email)
		if name != "" {
			fmt.Printf("  Name: %s\n", name)
		}
	})
}
