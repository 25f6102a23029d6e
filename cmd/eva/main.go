// Command eva runs the personal assistant as an interactive chat.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/google/uuid"

	"github.com/mfalcone/eva"
	"github.com/mfalcone/eva/agent"
	"github.com/mfalcone/eva/backends/gcal"
	"github.com/mfalcone/eva/backends/gmail"
	"github.com/mfalcone/eva/backends/googleauth"
	"github.com/mfalcone/eva/config"
	"github.com/mfalcone/eva/loggers"
	"github.com/mfalcone/eva/models"
	"github.com/mfalcone/eva/store/sqlitestore"
	"github.com/mfalcone/eva/tools/calendartools"
	"github.com/mfalcone/eva/tools/fstools"
	"github.com/mfalcone/eva/tools/mailtools"
	"github.com/mfalcone/eva/tools/timetools"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

const defaultSystemPrompt = "You are a helpful assistant called Eva that " +
	"can manage calendar events, send emails, and handle file system " +
	"operations."

const greeting = "Hi! Introduce yourself briefly. Specify I need to say " +
	"'bye' to end the chat."

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%sError: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "eva.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logDir := ".logs"
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile, err := os.Create(filepath.Join(logDir, "eva.log"))
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer logFile.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Printf("\n%sReceived interrupt, shutting down...%s\n",
			colorYellow, colorReset)
		cancel()
	}()

	model, err := models.NewOllama(cfg.Model, cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to create model: %w", err)
	}

	catalog := eva.NewCatalog(buildGroups(ctx, cfg)...)

	store, closeStore, err := buildStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	prompt, err := cfg.SystemPrompt(defaultSystemPrompt)
	if err != nil {
		return err
	}

	a := agent.New(model, catalog).
		WithSystemPrompt(prompt).
		WithStore(store).
		WithHooks(loggers.NewLoggerHookWithWriter(logFile))

	return chat(ctx, a)
}

// buildGroups assembles the tool catalog. Time and filesystem tools are
// always available; calendar and mail require Google credentials and are
// skipped with a warning when authorization fails.
func buildGroups(ctx context.Context, cfg config.Config) []eva.Group {
	groups := []eva.Group{timetools.New(), fstools.New()}

	calClient, err := googleauth.Client(ctx,
		cfg.Google.CredentialsPath, cfg.Google.CalendarTokenPath, gcal.Scope)
	if err == nil {
		var svc *gcal.GoogleService
		svc, err = gcal.NewGoogle(ctx, calClient)
		if err == nil {
			groups = append(groups, calendartools.New(svc,
				calendartools.WithDefaultTimeZone(cfg.TimeZone)))
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr,
			"%sWARNING: calendar tools disabled: %v%s\n",
			colorYellow, err, colorReset)
	}

	mailClient, err := googleauth.Client(ctx,
		cfg.Google.CredentialsPath, cfg.Google.GmailTokenPath, gmail.Scopes...)
	if err == nil {
		var svc *gmail.GoogleService
		svc, err = gmail.NewGoogle(ctx, mailClient)
		if err == nil {
			groups = append(groups, mailtools.New(svc, cfg.SenderAddress))
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr,
			"%sWARNING: mail tools disabled: %v%s\n",
			colorYellow, err, colorReset)
	}

	return groups
}

func buildStore(cfg config.Config) (eva.Store, func(), error) {
	switch cfg.Store.Driver {
	case "", "memory":
		return eva.NewMemoryStore(), func() {}, nil
	case "sqlite":
		s, err := sqlitestore.Open(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

func chat(ctx context.Context, a *agent.Agent) error {
	rl, err := readline.New(colorCyan + colorBold + "You: " + colorReset)
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	sessionID := uuid.NewString()

	// The assistant opens the conversation so the user knows what it can do.
	if err := respond(ctx, a, sessionID, greeting); err != nil {
		return err
	}

	for {
		input, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				fmt.Printf("\n%sGoodbye!%s\n", colorGreen, colorReset)
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if strings.EqualFold(input, "bye") {
			fmt.Printf("%sGoodbye!%s\n", colorGreen, colorReset)
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := respond(ctx, a, sessionID, input); err != nil {
			fmt.Fprintf(os.Stderr, "\n%sError: %v%s\n",
				colorRed, err, colorReset)
		}
	}
}

// respond streams one assistant reply to stdout, token by token, with tool
// activity rendered dimly in between.
func respond(ctx context.Context, a *agent.Agent, sessionID, text string) error {
	fmt.Printf("%sEVA:%s\n", colorBold+colorGreen, colorReset)

	stream := a.Stream(ctx, sessionID, text)
	for chunk := range stream.Chunks() {
		switch chunk.Kind {
		case eva.ChunkAssistantText:
			fmt.Printf("%s%s%s", colorGreen, chunk.Text, colorReset)
		case eva.ChunkToolCall:
			fmt.Printf("\n%s[Tool: %s]%s\n", colorDim, chunk.Call.Name, colorReset)
		case eva.ChunkToolResult:
			if chunk.Result.IsError {
				fmt.Printf("%s[Tool error: %s]%s\n",
					colorRed, chunk.Result.Content, colorReset)
			}
		case eva.ChunkError:
			fmt.Println()
			return chunk.Err
		}
	}
	fmt.Println()
	return nil
}
