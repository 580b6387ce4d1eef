package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/arm"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/stream"
)

func main() {
	configPath := flag.String("config", "", "path to KEY=VALUE configuration file")
	replayPath := flag.String("replay", "", "replay a recorded signal file instead of generating one")
	listenAddr := flag.String("listen", "", "HTTP listen address (overrides config)")
	flag.Parse()

	fmt.Println("Mudra - EMG Gripper Control")

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}

	st, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	source, sourceName := buildSource(cfg, *replayPath)
	channel, err := buildChannel(cfg)
	if err != nil {
		log.Fatalf("Failed to open arm channel: %v", err)
	}
	defer channel.Close()

	a, err := app.New(app.Options{
		Config:     cfg,
		Source:     source,
		Channel:    channel,
		Store:      st,
		SourceName: sourceName,
	})
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}

	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start pipeline: %v", err)
	}
	defer a.Stop()

	srv := server.New(server.Config{App: a, Store: st})
	go func() {
		fmt.Printf("Starting server on %s\n", cfg.ListenAddr)
		if err := srv.ListenAndServe(cfg.ListenAddr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	fmt.Println("Shutting down")
}

// openStore opens the event journal at the configured path, defaulting to
// ~/.mudra/mudra.db.
func openStore(cfg config.Config) (*store.Store, error) {
	dbPath := cfg.DBPath
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		dbDir := filepath.Join(homeDir, ".mudra")
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		dbPath = filepath.Join(dbDir, "mudra.db")
	}
	return store.New(dbPath)
}

// buildSource picks the signal source: a replay file when given, otherwise
// the synthetic generator tuned to the configured sample rate.
func buildSource(cfg config.Config, replayPath string) (stream.Source, string) {
	if replayPath != "" {
		return stream.NewReplay(replayPath, true), "replay"
	}
	synth := stream.DefaultSyntheticConfig()
	synth.SampleRate = cfg.SampleRate
	return stream.NewSynthetic(synth), "synthetic"
}

// buildChannel picks the arm transport: the configured serial port, or the
// mock when MOCK_MODE is set or no port is configured.
func buildChannel(cfg config.Config) (arm.Channel, error) {
	if cfg.MockMode || cfg.SerialPort == "" {
		log.Println("Using mock arm channel")
		return arm.NewMockChannel(), nil
	}
	log.Printf("Opening serial arm channel on %s at %d baud", cfg.SerialPort, cfg.BaudRate)
	return arm.OpenSerial(cfg.SerialPort, cfg.BaudRate)
}
