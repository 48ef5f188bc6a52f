// runtime.go opens the config, store and logs that every command shares.
package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/intentional-app/intentional/internal/apps"
	"github.com/intentional-app/intentional/internal/clock"
	"github.com/intentional-app/intentional/internal/config"
	"github.com/intentional-app/intentional/internal/log"
	"github.com/intentional-app/intentional/internal/logging"
	"github.com/intentional-app/intentional/internal/questions"
	"github.com/intentional-app/intentional/internal/store"
)

// rootOptions are the persistent flags.
type rootOptions struct {
	dataDir string
	verbose bool
	clock   clock.Clock // tests pin the time
}

type runtime struct {
	dataDir  string
	cfg      *config.Config
	store    store.Store
	logger   *zap.Logger
	events   *log.Logger
	clock    clock.Clock
	location *time.Location

	selector *questions.Selector
}

func openRuntime(opts *rootOptions) (*runtime, error) {
	dir := opts.dataDir
	if dir == "" {
		var err error
		if dir, err = config.DataDir(); err != nil {
			return nil, err
		}
	}

	cfg, err := config.LoadOrDefault(dir)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	st, err := cfg.OpenStore(dir)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, filepath.Join(dir, logging.LogFile), opts.verbose)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	events, err := log.NewLogger(dir)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("opening event log: %w", err)
	}

	clk := opts.clock
	if clk == nil {
		clk = clock.System{}
	}

	return &runtime{
		dataDir:  dir,
		cfg:      cfg,
		store:    st,
		logger:   logger.With(zap.String("env", cfg.Environment.Mode)),
		events:   events,
		clock:    clk,
		location: loc,
	}, nil
}

func (r *runtime) apps() *apps.Service {
	return apps.NewService(r.store, r.clock, r.logger)
}

// questions returns the shared selector, starting it on first use.
func (r *runtime) questions() *questions.Selector {
	if r.selector == nil {
		r.selector = questions.NewSelector(r.store, questions.Options{
			Clock:      r.clock,
			Location:   r.location,
			Logger:     r.logger,
			RecentDays: r.cfg.Questions.RecentDays,
		})
	}
	return r.selector
}

// Close flushes question history before the store goes away.
func (r *runtime) Close() {
	if r.selector != nil {
		if err := r.selector.Close(); err != nil {
			r.logger.Warn("close question selector", zap.Error(err))
		}
	}
	if err := r.store.Close(); err != nil {
		r.logger.Warn("close store", zap.Error(err))
	}
	_ = r.logger.Sync()
}
