package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/movzen/internal/catalog"
	"github.com/mmcdole/movzen/internal/config"
	"github.com/mmcdole/movzen/internal/domain"
	"github.com/mmcdole/movzen/internal/fetch"
	"github.com/mmcdole/movzen/internal/launcher"
	"github.com/mmcdole/movzen/internal/lists"
	"github.com/mmcdole/movzen/internal/logging"
	"github.com/mmcdole/movzen/internal/store"
	"github.com/mmcdole/movzen/internal/tmdb"
	"github.com/mmcdole/movzen/internal/tui"
	"golang.org/x/term"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

func main() {
	var showVersion bool
	var configPath string
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	if showVersion {
		fmt.Printf("movzen %s\n", Version)
		return
	}

	if err := run(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.Setup(cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = logging.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting movzen", "version", Version)

	client := tmdb.NewClient(clientOptions(cfg), logger)

	if !cfg.IsConfigured() {
		return runSetupFlow(cfg, configPath, logger)
	}

	kv, err := store.Open(cfg.Storage.Dir)
	if err != nil {
		return fmt.Errorf("failed to open list storage: %w", err)
	}
	defer func() {
		if err := kv.Close(); err != nil {
			logger.Error("failed to close list storage", "error", err)
		}
	}()
	if !kv.Persistent() {
		logger.Warn("lists are kept in memory only")
	}
	if keys, err := kv.Keys(); err != nil {
		logger.Warn("failed to list stored keys", "error", err)
	} else {
		logger.Debug("opened list storage", "dir", cfg.Storage.Dir, "keys", keys)
	}

	listStore := lists.NewStore(kv, logger)
	cache := fetch.NewCache(cfg.Fetch.Retries, cfg.Fetch.RetryDelay, logger)
	svc := catalog.NewService(client, cache, listStore, cfg.TMDB.Region, logger)

	model := tui.NewModel(svc, listStore, logger)
	model.Opener = launcher.NewLauncher(cfg.Browser.Command, cfg.Browser.Args, logger)

	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

func clientOptions(cfg *config.Config) tmdb.Options {
	return tmdb.Options{
		BaseURL:   cfg.TMDB.BaseURL,
		Token:     cfg.TMDB.Token,
		Language:  cfg.TMDB.Language,
		Region:    cfg.TMDB.Region,
		Timeout:   cfg.TMDB.Timeout,
		RateLimit: cfg.TMDB.RateLimit,
	}
}

// runSetupFlow asks for an access token, verifies it and saves the config
func runSetupFlow(cfg *config.Config, configPath string, logger *slog.Logger) error {
	fmt.Println()
	fmt.Println("Welcome to movzen!")
	fmt.Println()
	fmt.Println("movzen needs a TMDB API read access token.")
	fmt.Println("Create one at https://www.themoviedb.org/settings/api")
	fmt.Println()

	for {
		token, err := readToken()
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if token == "" {
			fmt.Println("Token cannot be empty. Please try again.")
			continue
		}

		cfg.TMDB.Token = token
		client := tmdb.NewClient(clientOptions(cfg), logger)

		err = verifyWithSpinner(client)
		if err == nil {
			break
		}
		fmt.Printf("✗ %v\n", err)
		if !errors.Is(err, domain.ErrAuthFailed) {
			// Can't tell whether the token is good; keep it
			fmt.Println("Saving the token anyway.")
			break
		}
		fmt.Println("Please check the token and try again.")
		fmt.Println()
	}

	path, err := config.Save(cfg, configPath)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Printf("✓ Configuration saved to %s\n", path)
	fmt.Println()
	fmt.Println("Run movzen again to start the application.")

	return nil
}

// readToken reads the token without echo when stdin is a terminal
func readToken() (string, error) {
	fmt.Print("Enter your access token: ")

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	input, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// verifyWithSpinner checks the token against the API with a visual spinner
func verifyWithSpinner(client *tmdb.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	resultCh := make(chan error, 1)
	go func() {
		resultCh <- client.Ping(ctx)
	}()

	frames := spinner.Dot.Frames
	frame := 0
	fmt.Printf("\r%s Verifying token...", frames[frame])

	ticker := time.NewTicker(spinner.Dot.FPS)
	defer ticker.Stop()

	for {
		select {
		case err := <-resultCh:
			fmt.Print(clearSpinnerLine)
			if err != nil {
				return err
			}
			fmt.Println("✓ Token verified")
			return nil

		case <-ticker.C:
			frame++
			fmt.Printf("\r%s Verifying token...", frames[frame%len(frames)])

		case <-ctx.Done():
			fmt.Print(clearSpinnerLine)
			return fmt.Errorf("verification timed out")
		}
	}
}
