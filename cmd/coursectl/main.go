package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/danmuck/courseselect/internal/auth"
	"github.com/danmuck/courseselect/internal/config"
	"github.com/danmuck/courseselect/internal/enrollment"
	"github.com/danmuck/courseselect/internal/logging"
	"github.com/danmuck/courseselect/internal/protocol/session"
	"github.com/danmuck/courseselect/internal/reconcile"
	"github.com/danmuck/courseselect/internal/server"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	defaultConfigPath = "cmd/coursectl/config.toml"
	// EnvSession carries the session cookie value.
	EnvSession = "COURSESEL_SESSION"
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "client config path")
	envPath := flag.String("env", ".env", "optional env file")
	origin := flag.String("origin", "", "server origin, overrides the config file")
	flag.Parse()

	// The env file may carry log settings too, so it is read first.
	if err := loadEnv(*envPath); err != nil {
		fmt.Fprintf(os.Stderr, "coursectl: %v\n", err)
		os.Exit(1)
	}
	logging.ConfigureRuntime()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, *configPath, *origin, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("coursectl")
		os.Exit(1)
	}
}

// loadEnv reads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func loadEnv(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env %s: %w", path, err)
	}
	return nil
}

func run(ctx context.Context, configPath, originOverride string, in io.Reader, out io.Writer) error {
	cfg, err := config.LoadClientConfig(configPath)
	if err != nil {
		return err
	}
	if originOverride != "" {
		cfg.Origin = originOverride
		if err := config.ValidateClientConfig(cfg); err != nil {
			return err
		}
	}
	cat, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}
	model, err := enrollment.NewModel(cat)
	if err != nil {
		return err
	}

	term := &terminal{out: out}
	runner, err := session.NewRunner(session.RunnerConfig{
		Origin:  cfg.Origin,
		Dialect: cfg.Dialect,
		Session: cfg.Session,
		Credentials: auth.FuncSource(func() (string, error) {
			return auth.StaticSession{Token: os.Getenv(EnvSession)}.Session()
		}),
		Notifier: reconcile.NotifierFunc(term.notice),
	}, model)
	if err != nil {
		return err
	}
	log.Info().
		Str("target", runner.Target()).
		Str("dialect", string(cfg.Dialect)).
		Int("courses", len(cat.Courses)).
		Msg("coursectl starting")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.StatusAddr != "" {
		status := server.New(server.Config{Addr: cfg.StatusAddr, CorsOrigins: cfg.CorsOrigins}, runner)
		go func() {
			if err := status.Serve(ctx); err != nil {
				log.Warn().Err(err).Str("addr", cfg.StatusAddr).Msg("status api stopped")
			}
		}()
	}

	runErr := make(chan error, 1)
	go func() { runErr <- runner.Run(ctx) }()

	lines := make(chan string)
	go readLines(ctx, in, lines)

	term.printf("%s\n", helpText)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-runErr:
			return err
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			cmd, err := parseCommand(line)
			if err != nil {
				term.printf("%v\n", err)
				continue
			}
			if cmd.kind == cmdQuit {
				return nil
			}
			if err := execute(ctx, runner, term, cmd); err != nil {
				term.printf("error: %v\n", err)
			}
		}
	}
}

func readLines(ctx context.Context, in io.Reader, out chan<- string) {
	defer close(out)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case out <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
}

// actions is the part of the runner the prompt drives.
type actions interface {
	Toggle(ctx context.Context, courseID string, checked bool) error
	ToggleControl(ctx context.Context, controlID string, checked bool) error
	Confirm(ctx context.Context) error
	Unconfirm(ctx context.Context) error
	Snapshot() enrollment.Snapshot
}

func execute(ctx context.Context, a actions, term *terminal, cmd command) error {
	switch cmd.kind {
	case cmdToggle:
		return a.Toggle(ctx, cmd.courseID, cmd.checked)
	case cmdToggleControl:
		return a.ToggleControl(ctx, cmd.controlID, cmd.checked)
	case cmdConfirm:
		return a.Confirm(ctx)
	case cmdUnconfirm:
		return a.Unconfirm(ctx)
	case cmdState:
		term.write(func(w io.Writer) { renderState(w, a.Snapshot()) })
	case cmdView:
		term.write(func(w io.Writer) { renderConfirmedView(w, a.Snapshot()) })
	case cmdHelp:
		term.printf("%s\n", helpText)
	}
	return nil
}

// terminal serializes output from the prompt and the event loop.
type terminal struct {
	mu  sync.Mutex
	out io.Writer
}

func (t *terminal) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format, args...)
}

func (t *terminal) write(fn func(io.Writer)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(t.out)
}

func (t *terminal) notice(n reconcile.Notice) {
	t.printf("[%s] %s\n", n.Severity, n.Text)
}
