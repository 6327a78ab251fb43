package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/questforge/engine/internal/config"
	"github.com/questforge/engine/internal/data"
	"github.com/questforge/engine/internal/geom"
	"github.com/questforge/engine/internal/render"
	"github.com/questforge/engine/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(mapID string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m           QuestForge  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        2D map entity engine demo          \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mmap:\033[0m %s\n\n", mapID)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main demo logic ────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "configs/engine.toml"
	if p := os.Getenv("QUESTFORGE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// 3. Load data tables
	tileset, err := data.LoadTileset(cfg.Data.TilesetPath)
	if err != nil {
		return fmt.Errorf("load tileset: %w", err)
	}
	mapFile, err := data.LoadMapFile(cfg.Data.MapPath)
	if err != nil {
		return fmt.Errorf("load map: %w", err)
	}

	printBanner(mapFile.ID)
	printSection("data")
	printStat("tile patterns", tileset.Count())
	printStat("tiles", len(mapFile.Tiles))
	printStat("entities", len(mapFile.Entities))
	fmt.Println()

	// 4. Build the map and start it
	viewport := geom.Size{Width: cfg.Game.ViewportWidth, Height: cfg.Game.ViewportHeight}
	m := world.Populate(log, nil, mapFile, tileset, viewport)
	m.NotifyMapStarted()
	m.NotifyMapOpeningTransitionFinished()

	// 5. Run the frame loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Game.TickRate)
	defer ticker.Stop()

	printSection("running")
	printReady(fmt.Sprintf("frame loop started (tick: %s)", cfg.Game.TickRate))
	fmt.Println()

	queue := render.NewQueue()
	frames := 0
	const statsInterval = 300 // frames between stats lines

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			m.Update(now)
			queue.Reset()
			m.Draw(queue)

			frames++
			if frames%statsInterval == 0 {
				log.Info("frame stats",
					zap.Int("frame", frames),
					zap.Int("entities", m.EntityCount()),
					zap.Int("draw_commands", queue.Len()))
			}
			if cfg.Game.FrameBudget > 0 && frames >= cfg.Game.FrameBudget {
				log.Info("frame budget reached", zap.Int("frames", frames))
				m.NotifyMapFinished()
				return nil
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			m.NotifyMapFinished()
			return nil
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
