package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/marquee/internal/app"
	"github.com/mmcdole/marquee/internal/config"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/logging"
	"github.com/mmcdole/marquee/internal/modal"
	"github.com/mmcdole/marquee/internal/player"
	"github.com/mmcdole/marquee/internal/remote"
	"github.com/mmcdole/marquee/internal/store"
	"github.com/mmcdole/marquee/internal/tui"
	"golang.org/x/term"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	// Handle version flag
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Usage = usage
	flag.Parse()

	if showVersion {
		fmt.Printf("marquee %s\n", Version)
		return
	}

	config.LoadDotenvIfPresent("")

	var err error
	switch cmd := flag.Arg(0); cmd {
	case "":
		err = run()
	case "setup":
		err = runSetup()
	case "list":
		err = runList(flag.Args()[1:])
	default:
		usage()
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: marquee [flags] [command]

Commands:
  (none)   browse the catalog
  list     print the catalog (-mine for My List only)
  setup    configure the server connection

Flags:
`)
	flag.PrintDefaults()
}

// setup loads config and the logger shared by every command
func setup() (*config.Config, *slog.Logger, io.Closer, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, closer, err := logging.SetupLogger(cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger, closer = logging.NullLogger(), io.NopCloser(nil)
	}
	slog.SetDefault(logger)
	return cfg, logger, closer, nil
}

// newApp builds the application over the configured server
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, observer domain.Observer) (*app.App, func()) {
	client := remote.NewClient(cfg.Server.URL, cfg.Server.Token, logger)

	snapshot, err := store.NewSnapshotStore(cfg.SnapshotDir(), cfg.Server.URL)
	if err != nil {
		logger.Error("failed to open snapshot store, continuing without persistence", "error", err)
		snapshot, _ = store.NewSnapshotStore("", "")
	}

	var featured domain.CatalogGateway
	if cfg.UI.FeaturedSource == config.FeaturedCatalog {
		featured = remote.CatalogPool{Client: client}
	}

	a := app.New(ctx, client, app.Options{
		UserID:      cfg.Server.UserID,
		Snapshot:    snapshot,
		Featured:    featured,
		Player:      player.NewLauncher(cfg.Player.Command, cfg.Player.Args, logger),
		Observer:    observer,
		Logger:      logger,
		Suggestions: cfg.UI.SearchSuggestions,
		ModalOptions: []modal.Option{
			modal.WithCloseDelay(cfg.UI.ModalCloseDelay),
		},
	})
	return a, func() { snapshot.Close() }
}

func run() error {
	cfg, logger, closer, err := setup()
	if err != nil {
		return err
	}
	defer closer.Close()

	logger.Info("starting marquee", "version", Version)

	if !cfg.IsConfigured() {
		fmt.Println("marquee is not configured yet.")
		return runSetupFlow(cfg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan domain.Change, 1)
	a, closeStore := newApp(ctx, cfg, logger, tui.NewChannelObserver(changes))
	defer closeStore()

	p := tea.NewProgram(
		tui.NewModel(a, changes),
		tea.WithAltScreen(),
	)

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// runList prints the catalog. Output is a plain tab-separated table when
// stdout is not a terminal.
func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	mine := fs.Bool("mine", false, "only titles in My List")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, logger, closer, err := setup()
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a, closeStore := newApp(ctx, cfg, logger, nil)
	defer closeStore()

	if err := a.Refresh(ctx); err != nil {
		// A saved catalog is still worth printing
		if !a.Catalog().HasValue {
			return err
		}
		fmt.Fprintf(os.Stderr, "warning: %v (showing saved catalog)\n", err)
	}

	titles := a.Catalog().Value
	if *mine {
		titles = a.FavoriteTitles()
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 1, '\t', 0)
		for _, t := range titles {
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", t.ID, t.Title, t.GenreLabel(), a.IsFavorite(t.ID))
		}
		return w.Flush()
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tTITLE\tGENRES\tDURATION")
	for _, t := range titles {
		marker := " "
		if a.IsFavorite(t.ID) {
			marker = "♥"
		}
		fmt.Fprintf(w, "%s %s\t%s\t%s\t%s\n", marker, t.ID, t.Title, t.GenreLabel(), t.Duration)
	}
	return w.Flush()
}

func runSetup() error {
	cfg, _, closer, err := setup()
	if err != nil {
		return err
	}
	defer closer.Close()
	return runSetupFlow(cfg)
}

// runSetupFlow prompts for the server connection, verifies it and saves it
func runSetupFlow(cfg *config.Config) error {
	fmt.Println()
	fmt.Println("Welcome to marquee!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	for {
		cfg.Server.URL = prompt(reader, "Server URL", cfg.Server.URL)
		cfg.Server.UserID = prompt(reader, "User ID", cfg.Server.UserID)

		fmt.Print("Token (leave empty for none): ")
		token, err := readSecret(reader)
		if err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}
		cfg.Server.Token = token

		if cfg.Server.URL == "" || cfg.Server.UserID == "" {
			if !interactive {
				return errors.New("server URL and user ID are required")
			}
			fmt.Println("Server URL and user ID are required. Please try again.")
			continue
		}

		fmt.Println("Checking connection...")
		if err := verify(cfg); err != nil {
			if !interactive {
				return err
			}
			fmt.Printf("✗ %v\n", err)
			fmt.Println("Please check the settings and try again.")
			fmt.Println()
			continue
		}
		break
	}

	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	fmt.Println("Run marquee again to start browsing.")
	return nil
}

func prompt(reader *bufio.Reader, label, current string) string {
	if current != "" {
		fmt.Printf("%s [%s]: ", label, current)
	} else {
		fmt.Printf("%s: ", label)
	}
	input, _ := reader.ReadString('\n')
	if input = strings.TrimSpace(input); input != "" {
		return input
	}
	return current
}

// readSecret reads a line without echo when stdin is a terminal
func readSecret(reader *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}
	secret, err := term.ReadPassword(fd)
	fmt.Println() // Add newline after hidden input
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(secret)), nil
}

// verify checks that the server accepts the settings
func verify(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client := remote.NewClient(cfg.Server.URL, cfg.Server.Token, logging.NullLogger())
	titles, err := client.FetchCatalog(ctx)
	if err != nil {
		return err
	}
	if _, err := client.FetchFavoriteIDs(ctx, cfg.Server.UserID); err != nil {
		return err
	}
	fmt.Printf("✓ Connected: %d titles\n", len(titles))
	return nil
}
