package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cineshelf/cineshelf/internal/api"
	"github.com/cineshelf/cineshelf/internal/config"
	"github.com/cineshelf/cineshelf/internal/constants"
	"github.com/cineshelf/cineshelf/internal/events"
	inthttp "github.com/cineshelf/cineshelf/internal/http"
	"github.com/cineshelf/cineshelf/internal/logging"
	"github.com/cineshelf/cineshelf/internal/notify"
	"github.com/cineshelf/cineshelf/internal/progress"
	"github.com/cineshelf/cineshelf/internal/session"
)

// app bundles what every catalog command needs.
type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	bus     *events.EventBus
	session *session.Manager
	client  *api.Client
	errOut  io.Writer

	stop    context.CancelFunc
	waiters []func()
}

type appOptions struct {
	// interactive disables console notices and the spinner; the TUI owns the terminal
	interactive bool
	errOut      io.Writer
}

// loadConfig loads the config file and applies env vars and global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg.MergeWithFlags(apiBaseURL, proxyMode, proxyHost, proxyPort)
	return cfg, nil
}

// newApp loads configuration, restores the session and creates the API client.
// Callers must call close.
func newApp(opts appOptions) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log := GetLogger()
	if opts.interactive {
		log = logging.NewNopLogger()
	}
	if !verbose && !debug {
		logging.SetGlobalLevel(logging.ParseLevel(cfg.LogLevel))
	}
	if cfg.LogFile {
		if err := log.EnableFile(logging.FileOptions{Path: config.DefaultLogPath()}); err != nil {
			log.Warn().Err(err).Msg("File logging disabled")
		}
	}

	if inthttp.NeedsProxyPassword(cfg) {
		password, err := promptPassword(fmt.Sprintf("Proxy password for %s: ", cfg.ProxyUser))
		if err != nil {
			return nil, fmt.Errorf("failed to read proxy password: %w", err)
		}
		cfg.ProxyPassword = password
	}

	bus := events.NewEventBus(constants.EventBusDefaultBuffer)

	sess := session.NewManager(bus)
	sess.SetLogger(log)
	sess.SetStore(session.NewFileStore(config.DefaultSessionPath()))
	if err := sess.Load(); err != nil {
		log.Warn().Err(err).Msg("Ignoring unreadable session file")
	}

	client, err := api.NewClient(cfg, sess)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	client.SetLogger(log)

	errOut := opts.errOut
	if errOut == nil {
		errOut = os.Stderr
	}

	ctx, stop := context.WithCancel(GetContext())
	a := &app{
		cfg:     cfg,
		logger:  log,
		bus:     bus,
		session: sess,
		client:  client,
		errOut:  errOut,
		stop:    stop,
	}

	if !opts.interactive {
		notifier := notify.NewNotifier(&notify.Config{
			Desktop: cfg.DesktopNotifications,
			Quiet:   quiet,
			Out:     errOut,
		}, log)
		a.waiters = append(a.waiters, notifier.Start(ctx, bus))

		var reporter progress.Reporter = progress.NoOpProgress{}
		if errOut == os.Stderr {
			reporter = progress.New()
		}
		a.waiters = append(a.waiters, progress.NewQueryIndicator(reporter).Start(ctx, bus))
	}

	return a, nil
}

// close flushes pending notices and releases resources.
func (a *app) close() {
	// Closing the bus lets the watchers drain what was already published.
	a.bus.Close()
	for _, wait := range a.waiters {
		wait()
	}
	if n := a.bus.GetDroppedEventCount(); n > 0 {
		a.logger.Debug().Int64("dropped", n).Msg("Events dropped while subscribers were busy")
	}
	a.stop()
	if err := a.logger.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
	}
}

// writeFailure reports a failed write. A token the server no longer accepts
// is forgotten so the next command starts signed out.
func (a *app) writeFailure(err error) error {
	if api.IsUnauthorized(err) {
		if _, ok := a.session.Current(); ok {
			a.session.Clear()
			fmt.Fprintln(a.errOut, "Saved session was rejected and has been cleared. Run 'cineshelf auth login' to sign in again.")
		}
	}
	return serviceFailure(err)
}
