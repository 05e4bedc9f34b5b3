package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"armory-sync/core/archive"
	"armory-sync/core/armory"
	"armory-sync/core/config"
	"armory-sync/core/database"
	"armory-sync/core/loader"
	"armory-sync/core/logger"
	"armory-sync/core/middleware/auth"
	"armory-sync/core/middleware/rayid"
	"armory-sync/feature/refdata"
	"armory-sync/feature/roster"
	"armory-sync/feature/roster/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "armory-sync/docs/swagger"
)

// @title Armory Sync API
// @version 1.0
// @description API for reconciling characters and guilds with the remote profile service.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the armory sync server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to Database
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Database connection failed", zap.Error(err))
		}
		logg = logg.With(zap.String("region", cfg.Armory.Region))

		// Schema is owned by this service
		err = db.AutoMigrate(
			&models.User{},
			&models.Guild{},
			&models.Character{},
			&refdata.PlayableClass{},
			&refdata.PlayableRace{},
			&refdata.Realm{},
		)
		if err != nil {
			logg.Fatal("Schema migration failed", zap.Error(err))
		}

		// 4. Initialize Armory Client
		client, err := armory.NewClient(cfg.Armory)
		if err != nil {
			logg.Fatal("Failed to create armory client", zap.Error(err))
		}

		// 5. Initialize Run-Report Archive (Optional)
		var archiver archive.Archiver
		if cfg.Archive.Enabled {
			archiver, err = archive.NewArchiver(cfg.Archive)
			if err != nil {
				logg.Warn("Optional archive connection failed", zap.Error(err))
				archiver = nil
			} else {
				logg.Info("Run-report archive enabled", zap.String("bucket", cfg.Archive.Bucket))
			}
		}

		// 6. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 7. Initialize Feature Loader
		mgr := loader.NewManager()

		// Register Features
		mgr.Register(roster.NewFeature(db, client, archiver, logg))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Custom to use Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			// Log error if happened
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 2.5 Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// 3. Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 8. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 9. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 10. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
