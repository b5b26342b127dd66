package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/DaanHessen/jwtviz/internal/logger"
	"github.com/DaanHessen/jwtviz/internal/narration"
	"github.com/DaanHessen/jwtviz/internal/scene"
	"github.com/DaanHessen/jwtviz/internal/server"
	"github.com/DaanHessen/jwtviz/internal/steps"
	"github.com/DaanHessen/jwtviz/internal/store"
	"github.com/DaanHessen/jwtviz/internal/text"
	"github.com/DaanHessen/jwtviz/internal/ui"
	"github.com/DaanHessen/jwtviz/internal/util"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg, err := util.Load()
	if err != nil {
		log.Fatal(err)
	}

	gateway := flag.String("gateway", cfg.GatewayURL, "Narration gateway base URL")
	sceneFile := flag.String("scene", cfg.SceneFile, "Scene YAML file (hot reloaded); built-in layout if empty")
	theme := flag.String("theme", cfg.Theme, "Colour theme")
	offline := flag.Bool("offline", false, "Answer from the built-in catalog instead of the gateway")
	fallback := flag.Bool("fallback", false, "Use the built-in catalog when the gateway fails")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "jwtviz [--gateway URL] [--scene FILE] [--theme NAME] [--offline|--fallback] | serve | migrate up|down | narrations list|set STEP TEXT | version\n")
	}
	flag.Parse()
	cfg.GatewayURL, cfg.SceneFile, cfg.Theme = *gateway, *sceneFile, *theme

	args := flag.Args()
	if len(args) > 0 {
		switch args[0] {
		case "version":
			fmt.Println("jwtviz", version)
			return
		case "migrate":
			if len(args) < 2 {
				log.Fatal("migrate requires 'up' or 'down'")
			}
			if err := runMigrate(cfg, args[1]); err != nil {
				log.Fatal(err)
			}
			return
		case "narrations":
			if err := runNarrations(cfg, args[1:]); err != nil {
				log.Fatal(err)
			}
			return
		case "serve":
			zlog := mustLogger(cfg, cfg.LogFile)
			defer func() { _ = zlog.Sync() }()
			if err := serve(cfg, zlog); err != nil {
				zlog.Fatal("Gateway stopped", zap.Error(err))
			}
			return
		default:
			flag.Usage()
			os.Exit(2)
		}
	}

	logFile := cfg.LogFile
	if logFile == "" {
		logFile = "jwtviz.log"
	}
	zlog := mustLogger(cfg, logFile)
	defer func() { _ = zlog.Sync() }()
	if err := visualize(cfg, zlog, *offline, *fallback); err != nil {
		zlog.Error("Visualization exited", zap.Error(err))
		log.Fatal(err)
	}
}

func mustLogger(cfg util.Config, path string) *zap.Logger {
	zlog, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding, OutputPath: path})
	if err != nil {
		log.Fatal(err)
	}
	zap.ReplaceGlobals(zlog)
	return zlog
}

func runMigrate(cfg util.Config, action string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	migrator, err := store.NewMigrator(cfg.DSN, cfg.MigrationsDir)
	if err != nil {
		return err
	}
	switch action {
	case "up":
		if err := migrator.Up(ctx); err != nil && !errors.Is(err, store.ErrNoChange) {
			return err
		}
		fmt.Println("Migrations applied")
	case "down":
		if err := migrator.Down(ctx); err != nil && !errors.Is(err, store.ErrNoChange) {
			return err
		}
		fmt.Println("Migrations rolled back")
	default:
		return fmt.Errorf("unknown migrate action %q; use up|down", action)
	}
	return nil
}

// runNarrations lists or edits the narration table used by serve.
func runNarrations(cfg util.Config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("narrations requires 'list' or 'set STEP TEXT'")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	db, err := store.Open(ctx, cfg.DSN)
	if err != nil {
		return err
	}
	defer db.Close()
	repo := store.NewNarrationRepo(db)

	switch args[0] {
	case "list":
		recs, err := repo.List(ctx)
		if err != nil {
			return err
		}
		for _, r := range recs {
			fmt.Printf("%d\t%s\t%s\n", r.Step, r.UpdatedAt.Format(time.RFC3339), r.Text)
		}
	case "set":
		if len(args) < 3 {
			return fmt.Errorf("narrations set requires STEP and TEXT")
		}
		step, err := strconv.Atoi(args[1])
		if err != nil || !steps.Default().Has(steps.ID(step)) || steps.ID(step) == steps.FullStory {
			return fmt.Errorf("narrations set: unknown step %q", args[1])
		}
		if err := repo.Upsert(ctx, step, strings.Join(args[2:], " ")); err != nil {
			return err
		}
		fmt.Printf("Narration for step %d updated\n", step)
	default:
		return fmt.Errorf("unknown narrations action %q; use list|set", args[0])
	}
	return nil
}

func serve(cfg util.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var source narration.Source = narration.DefaultCatalog()
	if cfg.DSN != "" {
		if err := runMigrate(cfg, "up"); err != nil {
			return fmt.Errorf("migrations failed: %w", err)
		}
		db, err := store.Open(ctx, cfg.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		source = store.NewNarrationRepo(db)
		zlog.Info("Serving narration from Postgres")
	} else {
		zlog.Info("DATABASE_URL not set, serving the built-in narration catalog")
	}

	reg := prometheus.NewRegistry()
	svc := narration.NewService(source, []byte(cfg.DemoTokenSecret), zlog,
		narration.WithMetrics(narration.NewMetrics(reg)))

	return server.New(cfg, svc, reg, zlog).Run(ctx)
}

func visualize(cfg util.Config, zlog *zap.Logger, offline, fallback bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	spec := scene.Default()
	var watcher *scene.Watcher
	if cfg.SceneFile != "" {
		loaded, err := scene.Load(cfg.SceneFile)
		if err != nil {
			return err
		}
		spec = loaded
		if watcher, err = scene.NewWatcher(cfg.SceneFile); err != nil {
			zlog.Warn("Scene hot reload disabled", zap.Error(err))
		} else {
			defer watcher.Close()
		}
	}

	var narrator text.Narrator
	switch {
	case offline:
		narrator = text.NewOfflineNarrator()
	case fallback:
		narrator = text.WithFallback(text.NewHTTPNarrator(cfg.GatewayURL, cfg.RequestTimeout), text.NewOfflineNarrator())
	default:
		narrator = text.NewHTTPNarrator(cfg.GatewayURL, cfg.RequestTimeout)
	}
	zlog.Info("Starting visualization",
		zap.String("gateway", cfg.GatewayURL), zap.Bool("offline", offline), zap.String("scene", cfg.SceneFile))

	return ui.Run(ctx, ui.Options{
		Narrator: narrator,
		Registry: steps.Default(),
		Scene:    spec,
		Watcher:  watcher,
		Theme:    cfg.Theme,
		Logger:   zlog,
	})
}
