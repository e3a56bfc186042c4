package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/garyjia/trip-expenses/internal/application/service"
	"github.com/garyjia/trip-expenses/internal/config"
	"github.com/garyjia/trip-expenses/internal/container"
	"github.com/garyjia/trip-expenses/internal/domain/entity"
	"github.com/garyjia/trip-expenses/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML configuration file")
	mode := flag.String("mode", "", "entry mode: guided or free_text (default from config)")
	user := flag.String("user", "local-user", "owner recorded on saved trips")
	timeout := flag.Duration("timeout", 0, "bound on the final save call (default from config)")
	flag.Parse()

	_ = gotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// stdout belongs to the conversation
	logCfg := utils.LoggerConfig{Level: cfg.Logger.Level, OutputPath: cfg.Logger.OutputPath, Format: cfg.Logger.Format}
	if logCfg.OutputPath == "" || logCfg.OutputPath == "stdout" {
		logCfg.OutputPath = "stderr"
		logCfg.Level = "warn"
	}
	logger, err := utils.NewLogger(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	containerCfg := cfg.ToContainerConfig()
	containerCfg.Server.Enabled = false
	if *mode != "" {
		containerCfg.Wizard.DefaultMode = entity.EntryMode(*mode)
		if !containerCfg.Wizard.DefaultMode.IsValid() {
			fmt.Fprintf(os.Stderr, "Unknown mode %q\n", *mode)
			os.Exit(2)
		}
	}
	if *timeout > 0 {
		containerCfg.Wizard.SubmitTimeout = *timeout
	}

	if err := run(containerCfg, *user, logger, os.Stdin, os.Stdout); err != nil {
		logger.Error("Shell exited with error", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *container.Config, user string, logger *zap.Logger, in io.Reader, out io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := container.NewContainer(cfg, logger)
	if err != nil {
		return err
	}
	if err := c.Start(ctx); err != nil {
		return err
	}
	defer c.Close()

	return converse(ctx, c.Services().Chat, user, cfg.Wizard.DefaultMode, in, out)
}

// converse relays lines between the terminal and one chat session until EOF or /sair
func converse(ctx context.Context, chat service.ChatService, user string, mode entity.EntryMode, in io.Reader, out io.Writer) error {
	session, err := chat.StartSession(ctx, user, mode)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = chat.CloseSession(closeCtx, user, session.ID)
	}()

	printMessages(out, session.Transcript)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "/sair" {
			return nil
		}

		result, err := chat.SendMessage(ctx, user, session.ID, text)
		if err != nil {
			return err
		}
		printMessages(out, result.Reply.Messages)
		if result.Reply.TripID != "" {
			fmt.Fprintf(out, "  [viagem %s]\n", result.Reply.TripID)
		}
	}
}

func printMessages(out io.Writer, messages []entity.ChatMessage) {
	for _, m := range messages {
		if m.Speaker != entity.SpeakerAssistant {
			continue
		}
		fmt.Fprintln(out, m.Text)
	}
}
