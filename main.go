package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jessevdk/go-flags"

	"sleep_bot/internal/bot"
	"sleep_bot/internal/command"
	"sleep_bot/internal/config"
	"sleep_bot/internal/console"
	"sleep_bot/internal/journal"
	"sleep_bot/internal/registry"
)

// Options are the command line flags. They take precedence over the config
// file and the environment.
type Options struct {
	Config   string `short:"f" long:"config" description:"config YAML path"`
	Plain    bool   `long:"plain" description:"read '<conversation> <text>' lines from stdin instead of starting the terminal UI"`
	LogLevel string `long:"log-level" description:"log level (debug, info, warn, error)"`
	Journal  string `long:"journal" description:"sqlite file that closed intervals are appended to"`
	User     string `long:"user" default:"you" description:"display name used in the terminal UI"`
}

func main() {
	opts := &Options{}
	if _, err := flags.NewParser(opts, flags.Default).Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts *Options) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.Journal != "" {
		cfg.Journal.Path = opts.Journal
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// the terminal UI owns stdout/stderr, so logs go to a file
	var logOut io.Writer = os.Stderr
	if !opts.Plain {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := cfg.NewLogger(logOut)
	slog.SetDefault(logger)

	handlerOpts := []command.Option{command.WithLogger(logger)}
	if cfg.Journal.Path != "" {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer j.Close()
		handlerOpts = append(handlerOpts, command.WithRecorder(j))
		logger.Info("journaling closed intervals", "path", cfg.Journal.Path)
	}

	reg := registry.New()
	dispatcher := bot.NewDispatcher(
		command.New(reg, handlerOpts...),
		bot.WithBotName(cfg.Bot.Name),
		bot.WithWorkers(cfg.Dispatch.Workers),
		bot.WithLogger(logger),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting sleep bot", "plain", opts.Plain, "workers", cfg.Dispatch.Workers)
	defer func() {
		logger.Info("sleep bot stopped", "conversations", reg.Len())
	}()

	if opts.Plain {
		err := dispatcher.Run(ctx, console.NewLines(os.Stdin, os.Stdout))
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	tui := console.NewTUI(opts.User, tea.WithAltScreen())
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- dispatcher.Run(ctx, tui)
	}()
	go func() {
		<-ctx.Done()
		tui.Quit()
	}()

	runErr := tui.Run()
	cancel()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return runErr
}
