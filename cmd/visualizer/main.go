package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"time"

	"resonance/internal/logger"
	"resonance/pkg/audio"
	"resonance/pkg/config"
	"resonance/pkg/engine"
	"resonance/pkg/visualizer"
)

func init() {
	// GLFW requires the program to be running on the main thread
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.NewLogger("info").Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.NewLogger(cfg.Log.Level)
	if cfg.Log.File != "" {
		if log, err = logger.NewMultiLogger(cfg.Log.Level, cfg.Log.File); err != nil {
			logger.NewLogger("info").Fatalf("Failed to open log file: %v", err)
		}
	}

	err = run(cfg, log)
	if err != nil {
		log.Error(err.Error())
	}
	log.Close()
	if err != nil {
		os.Exit(1)
	}
}

// run plays one session. Everything it opens is closed before it returns.
func run(cfg *config.Config, log *logger.Logger) error {
	log.Info("Starting resonance...")

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	session, err := cfg.SelectSession(rng)
	if err != nil {
		return fmt.Errorf("failed to select session: %w", err)
	}
	log.Infof("Session: material %q, special colour %s", session.Material.Directory, session.Lights.SpecialColor.Hex())

	game, err := engine.NewEngine(cfg, log.Named("engine"))
	if err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}

	ctx := visualizer.NewContext(cfg, session, log.Named("visualizer"))

	var device audio.Device = audio.NullDevice{}
	if cfg.Audio.Enabled {
		pa, err := audio.NewPortAudioDevice()
		if err != nil {
			log.Warnf("Audio output unavailable, continuing silent: %v", err)
		} else {
			device = pa
		}
	}

	opts := audio.OptionsFromConfig(cfg.Audio)
	opts.Rand = rng
	player, err := audio.NewPlayer(log.Named("audio"), ctx.Assets.Playlist(cfg.Music), audio.FileLoader{}, device, opts)
	if err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}
	defer player.Close()

	if err := game.Attach(ctx, player, player, visualizer.FileTextureLoader{}); err != nil {
		return fmt.Errorf("failed to build scene: %w", err)
	}

	if err := player.Start(); err != nil {
		log.Errorf("Playback not started: %v", err)
	}

	log.Info("Engine initialized, starting render loop...")
	if err := game.Run(); err != nil {
		return fmt.Errorf("render loop stopped: %w", err)
	}
	return nil
}
