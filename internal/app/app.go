// Package app wires together all adapters and domain logic.
// It provides lifecycle management for the vigia daemon: create, start, stop.
package app

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tomas/vigia/internal/adapters/ahocorasick"
	"github.com/tomas/vigia/internal/adapters/bbolt"
	"github.com/tomas/vigia/internal/adapters/csvfeed"
	fsw "github.com/tomas/vigia/internal/adapters/fsnotify"
	"github.com/tomas/vigia/internal/adapters/socket"
	"github.com/tomas/vigia/internal/adapters/web"
	"github.com/tomas/vigia/internal/domain/bayes"
	"github.com/tomas/vigia/internal/domain/risk"
	"github.com/tomas/vigia/internal/domain/rules"
	"github.com/tomas/vigia/internal/logging"
	"github.com/tomas/vigia/rulepack"
)

// recentRingSize bounds the in-memory feed of latest assessments.
const recentRingSize = 100

// App is the top-level container wiring all components together.
type App struct {
	ProjectRoot string
	ProjectID   string

	Paths     *Paths
	Store     *bbolt.Store
	Watcher   *fsw.Watcher
	Engine    *rules.Engine
	Scanner   *ahocorasick.Scanner
	Server    *socket.Server
	WebServer *web.Server

	log      *zap.Logger
	httpPort int // preferred HTTP port (0 = auto from project root)
	feedPath string
	watchDir string
	started  time.Time

	feed *csvfeed.Tailer // live feed tailer, nil unless configured

	mu    sync.Mutex
	model *bayes.Model // nil until trained

	// Counters since daemon start
	assessed    int
	actionable  int
	byLevel     map[string]int
	skippedRows int

	// Ring buffer of most recent assessments for the dashboard
	recentRing  [recentRingSize]risk.Assessment
	recentHead  int
	recentCount int
}

// Config holds initialization parameters for the App.
type Config struct {
	ProjectRoot string
	ProjectID   string
	RulesPath   string // external rule pack, file or directory (default: embedded pack)
	DBPath      string // path to bbolt file (default: .vigia/vigia.db)
	HTTPPort    int    // preferred HTTP port (default: computed from project root)
	WatchDir    string // CSV drop directory to watch (default: .vigia/drops)
	FeedPath    string // optional live feed CSV to tail
	Logger      *zap.Logger
}

// New creates an App with all dependencies wired. Does not start services.
func New(cfg Config) (*App, error) {
	if cfg.ProjectRoot == "" {
		return nil, fmt.Errorf("project root required")
	}
	if cfg.ProjectID == "" {
		cfg.ProjectID = filepath.Base(cfg.ProjectRoot)
	}

	paths := NewPaths(cfg.ProjectRoot)
	if err := paths.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("create project dirs: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = paths.DB
	}
	if cfg.WatchDir == "" {
		cfg.WatchDir = paths.DropDir
	}

	var (
		ruleSet []rules.Rule
		err     error
	)
	if cfg.RulesPath != "" {
		ruleSet, err = rules.LoadFromPath(cfg.RulesPath)
	} else {
		ruleSet, err = rules.LoadFromFS(rulepack.FS, "rules")
	}
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	scanner, err := ahocorasick.NewScanner(ahocorasick.DefaultTable())
	if err != nil {
		return nil, fmt.Errorf("build event scanner: %w", err)
	}

	store, err := bbolt.NewStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	watcher, err := fsw.NewWatcher()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	// Load the fitted model, if one was trained before
	var model *bayes.Model
	if state, err := store.LoadModel(cfg.ProjectID); err != nil {
		store.Close()
		watcher.Stop()
		return nil, fmt.Errorf("load model: %w", err)
	} else if state != nil {
		model, err = bayes.FromState(state)
		if err != nil {
			store.Close()
			watcher.Stop()
			return nil, fmt.Errorf("restore model: %w", err)
		}
	}

	a := &App{
		ProjectRoot: cfg.ProjectRoot,
		ProjectID:   cfg.ProjectID,
		Paths:       paths,
		Store:       store,
		Watcher:     watcher,
		Engine:      rules.NewEngine(ruleSet),
		Scanner:     scanner,
		log:         logging.OrNop(cfg.Logger),
		httpPort:    cfg.HTTPPort,
		feedPath:    cfg.FeedPath,
		watchDir:    cfg.WatchDir,
		model:       model,
		byLevel:     make(map[string]int),
	}

	// Create server with App as query provider
	sockPath := socket.SocketPath(cfg.ProjectRoot)
	a.Server = socket.NewServer(a, sockPath)

	// Create HTTP server for the web dashboard
	a.WebServer = web.NewServer(a, a.Recent, paths.PortFile)

	return a, nil
}

// Start begins the daemon (socket server + HTTP server + watchers).
func (a *App) Start() error {
	a.started = time.Now()
	if err := a.Server.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	// HTTP dashboard is non-fatal if the port is unavailable
	httpPort := a.httpPort
	if httpPort == 0 {
		httpPort = web.DefaultPort(a.ProjectRoot)
	}
	if err := a.WebServer.Start(httpPort); err != nil {
		a.log.Warn("http dashboard unavailable", zap.Error(err))
	} else {
		a.log.Info("http dashboard up", zap.Int("port", a.WebServer.Port()))
	}

	// Drop directory watcher is non-fatal if setup fails
	if err := a.Watcher.Watch(a.watchDir, a.onFileDropped); err != nil {
		a.log.Warn("drop watcher unavailable", zap.String("dir", a.watchDir), zap.Error(err))
	}

	// Live feed tailer, only when configured
	if a.feedPath != "" {
		a.feed = csvfeed.NewTailer(csvfeed.Config{
			Path: a.feedPath,
			OnError: func(err error) {
				a.mu.Lock()
				a.skippedRows++
				a.mu.Unlock()
				a.log.Warn("feed row rejected", zap.Error(err))
			},
		})
		if err := a.feed.Start(a.onFeedReading); err != nil {
			a.log.Warn("feed tailer unavailable", zap.String("path", a.feedPath), zap.Error(err))
			a.feed = nil
		}
	}

	a.log.Info("daemon started",
		zap.String("project", a.ProjectID),
		zap.String("socket", a.Server.Addr()),
		zap.Int("rules", len(a.Engine.Rules())))
	return nil
}

// Stop gracefully shuts down all services.
func (a *App) Stop() error {
	if a.feed != nil {
		a.feed.Stop()
	}
	a.Watcher.Stop()
	a.WebServer.Stop()
	a.Server.Stop()
	a.Paths.CleanEphemeral()
	err := a.Store.Close()
	a.log.Info("daemon stopped", zap.String("project", a.ProjectID))
	return err
}

// Uptime reports how long the daemon has been running.
func (a *App) Uptime() time.Duration {
	if a.started.IsZero() {
		return 0
	}
	return time.Since(a.started)
}
