package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/comigor/rahagir-go/internal/config"
	"github.com/comigor/rahagir-go/internal/history"
	"github.com/comigor/rahagir-go/internal/identity"
	"github.com/comigor/rahagir-go/internal/logger"
	"github.com/comigor/rahagir-go/internal/planner"
	"github.com/comigor/rahagir-go/internal/storage"
	"github.com/comigor/rahagir-go/internal/tui"
	"github.com/comigor/rahagir-go/internal/widget"
)

const botName = "Rahagir"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("rahagir exited with error", "error", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	url        string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "rahagir",
		Short:         "Chat with the Rahagir travel planner from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", os.Getenv("CONFIG_PATH"), "path to config.yaml")
	cmd.Flags().StringVar(&opts.url, "url", "", "planner base URL (overrides backend.base_url)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	return cmd
}

func loadConfig(opts options) (*config.Config, error) {
	cfg, err := config.LoadFile(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.url != "" {
		cfg.Backend.BaseURL = opts.url
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	closeLog, err := setupLogging(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	store := storage.Open(cfg.Storage.Path)
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}

	log := history.NewLog()
	surface := tui.NewSurface()
	w := widget.New(surface,
		planner.NewHTTPClient(cfg.Backend),
		identity.New(store, cfg.Storage.UserIDKey),
		log,
	)

	p := tea.NewProgram(tui.NewModel(ctx, w, botName),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	surface.Attach(p)

	logger.L.Info("starting chat", "backend", cfg.Backend.BaseURL+cfg.Backend.Path)
	_, runErr := p.Run()

	if cfg.UI.TranscriptPath != "" && log.Len() > 0 {
		if err := log.ExportFile(cfg.UI.TranscriptPath, botName+" conversation"); err != nil {
			logger.L.Error("transcript export failed", "path", cfg.UI.TranscriptPath, "error", err)
		} else {
			logger.L.Info("transcript exported", "path", cfg.UI.TranscriptPath, "messages", log.Len())
		}
	}

	if runErr != nil && ctx.Err() == nil {
		return fmt.Errorf("run terminal UI: %w", runErr)
	}
	return nil
}

func setupLogging(cfg config.LogConfig) (func(), error) {
	logger.SetLevel(cfg.Level)
	if cfg.File == "" {
		logger.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(f)
	return func() { f.Close() }, nil
}
