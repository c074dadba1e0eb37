package app

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/scriba-editor/scriba/internal/annotate"
	"github.com/scriba-editor/scriba/internal/check"
	"github.com/scriba-editor/scriba/internal/config"
	"github.com/scriba-editor/scriba/internal/replace"
	"github.com/scriba-editor/scriba/internal/rewrite"
	"github.com/scriba-editor/scriba/internal/surface"
)

// Options configures application construction.
type Options struct {
	// ConfigPath overrides the config file location.
	ConfigPath string
	// FilePath is the document to open.
	FilePath string
	// LogLevel overrides the log level.
	LogLevel string
	// Screen replaces the terminal screen, for tests.
	Screen tcell.Screen
	// Logger replaces the default logger.
	Logger *Logger
}

// Application owns every component and the interactive event loop.
type Application struct {
	logger *Logger
	cfg    *config.Config

	table   *replace.Table
	cache   *replace.Cache
	engine  *replace.Engine
	watcher *replace.Watcher

	screen    tcell.Screen
	ownScreen bool
	editor    *surface.Editor

	manager    *annotate.Manager
	sched      *check.Scheduler
	dispatcher *rewrite.Dispatcher

	// pendingSel maps in-flight rewrite request IDs to the selection
	// they were dispatched for. Touched only on the interactive loop.
	pendingSel map[uint64]surface.Range

	autosaveCancel func()
	running        atomic.Bool
}

// New builds an application. Component failures degrade with a logged
// warning wherever possible; only the screen is load-bearing.
func New(opts Options) (*Application, error) {
	logger := opts.Logger
	if logger == nil {
		logger = NewLogger(DefaultLoggerConfig())
	}
	if opts.LogLevel != "" {
		logger.SetLevel(ParseLogLevel(opts.LogLevel))
	} else if lvl := os.Getenv(config.EnvLogLevel); lvl != "" {
		logger.SetLevel(ParseLogLevel(lvl))
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		logger.Warn("config load degraded to defaults: %v", err)
	}

	a := &Application{
		logger:     logger,
		cfg:        cfg,
		pendingSel: make(map[uint64]surface.Range),
	}

	a.initRules()

	a.cache = replace.NewCache(cfg.Replace.CacheSize)
	a.engine = replace.NewEngine(a.table)

	if err := a.initScreen(opts); err != nil {
		return nil, err
	}
	a.initEditor(opts)
	a.initAnnotations()
	a.initCheck()
	a.initRewrite()

	return a, nil
}

func (a *Application) initRules() {
	a.table = replace.NewEmptyTable()
	path := a.cfg.Replace.RulesPath
	if path == "" {
		return
	}
	log := a.logger.WithComponent("replace")

	load := ruleLoader(path)
	rules, skipped, err := load(path)
	if err != nil {
		log.Warn("rule load failed, continuing with empty table: %v", err)
		return
	}
	a.table.Replace(rules)
	if skipped > 0 {
		log.Warn("rule source %s: skipped %d malformed lines", path, skipped)
	}
	log.Info("loaded %d replacement rules from %s", len(rules), path)

	w, err := replace.NewWatcher(a.table, path,
		replace.WithLoader(load),
		replace.WithReloadHandler(func(count, skipped int) {
			log.Info("reloaded %d replacement rules (%d skipped)", count, skipped)
		}),
		replace.WithErrorHandler(func(err error) {
			log.Warn("rule reload failed, keeping previous table: %v", err)
		}))
	if err != nil {
		log.Warn("rule watcher unavailable: %v", err)
		return
	}
	a.watcher = w
}

// ruleLoader picks the loader by extension. Lua sources are evaluated,
// anything else parses as plain wrong/correct lines.
func ruleLoader(path string) func(string) ([]replace.Rule, int, error) {
	if strings.EqualFold(filepath.Ext(path), ".lua") {
		return replace.LoadLua
	}
	return replace.LoadFile
}

func (a *Application) initScreen(opts Options) error {
	if opts.Screen != nil {
		a.screen = opts.Screen
		return nil
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		return &InitError{Component: "screen", Err: err}
	}
	if err := screen.Init(); err != nil {
		return &InitError{Component: "screen", Err: err}
	}
	screen.EnableMouse()
	a.screen = screen
	a.ownScreen = true
	return nil
}

func (a *Application) initEditor(opts Options) {
	var eopts []surface.EditorOption
	if opts.FilePath != "" {
		path := opts.FilePath
		if !filepath.IsAbs(path) && a.cfg.Files.DefaultDir != "" {
			path = filepath.Join(a.cfg.Files.DefaultDir, path)
		}
		eopts = append(eopts, surface.WithPath(path))
		if data, err := os.ReadFile(path); err == nil {
			eopts = append(eopts, surface.WithContent(string(data)))
		} else if !os.IsNotExist(err) {
			a.logger.Warn("opening %s: %v", path, err)
		}
	}
	if a.cfg.UI.CursorColor != "" {
		eopts = append(eopts, surface.WithCursorColor(a.cfg.UI.CursorColor))
	}
	a.editor = surface.NewEditor(a.screen, eopts...)
}

func (a *Application) initAnnotations() {
	a.manager = annotate.NewManager(
		annotate.WithApplyHandler(func(ann annotate.Annotation) {
			a.editor.AddHighlight(surface.Highlight{
				ID:      ann.ID.String(),
				Start:   ann.Start,
				End:     ann.End,
				Message: hoverText(ann),
			})
		}),
		annotate.WithRetireHandler(func(ann annotate.Annotation) {
			a.editor.RemoveHighlight(ann.ID.String())
		}))
}

func (a *Application) initCheck() {
	if a.cfg.Check.Endpoint == "" {
		a.logger.Debug("grammar check disabled: no endpoint configured")
		return
	}
	client, err := check.NewLanguageToolClient(a.cfg.Check.Endpoint)
	if err != nil {
		a.logger.Warn("grammar check unavailable: %v", err)
		return
	}
	log := a.logger.WithComponent("check")
	a.sched = check.NewScheduler(a.editor, client, a.manager, check.NewState(),
		check.WithInterval(time.Duration(a.cfg.Check.Interval)*time.Second),
		check.WithMaxCheckSize(a.cfg.Check.MaxCheckSize),
		check.WithLanguage(a.cfg.Check.Language),
		check.WithSkipHandler(func(size int) {
			log.Info("check skipped: document is %d runes, limit %d", size, a.cfg.Check.MaxCheckSize)
		}),
		check.WithCheckErrorHandler(func(err error) {
			log.Warn("check cycle failed: %v", err)
		}))
}

func (a *Application) initRewrite() {
	if a.cfg.Rewrite.Endpoint == "" {
		a.logger.Debug("rewrite disabled: no endpoint configured")
		return
	}
	client, err := rewrite.NewClient(a.cfg.Rewrite.Endpoint,
		rewrite.WithModel(a.cfg.Rewrite.Model),
		rewrite.WithAPIKey(a.cfg.APIKey()))
	if err != nil {
		a.logger.Warn("rewrite unavailable: %v", err)
		return
	}
	a.dispatcher = rewrite.NewDispatcher(client, a.editor,
		rewrite.WithBeginHandler(func(id uint64) {
			if sel, ok := a.editor.Selection(); ok {
				a.pendingSel[id] = sel
			}
			a.editor.BeginWaiting()
		}),
		rewrite.WithFinishHandler(func(id uint64) {
			a.editor.EndWaiting()
		}),
		rewrite.WithResultHandler(a.applyRewrite))
}

// applyRewrite runs on the interactive loop with the completion of one
// rewrite request.
func (a *Application) applyRewrite(id uint64, text string, err error) {
	sel, had := a.pendingSel[id]
	delete(a.pendingSel, id)

	if err != nil {
		a.logger.Warn("rewrite request %d failed: %v", id, err)
		a.editor.SetStatus(err.Error())
		return
	}
	if !had {
		a.editor.SetStatus("rewrite finished but selection was lost")
		return
	}
	a.editor.Delete(sel)
	a.editor.Insert(sel.Start, text)
	a.editor.ClearSelection()
	a.editor.SetStatus("rewrite applied")
}

// hoverText renders an annotation for the status line.
func hoverText(ann annotate.Annotation) string {
	if len(ann.Suggestions) == 0 {
		return ann.Message
	}
	return ann.Message + " (" + strings.Join(ann.Suggestions, ", ") + ")"
}

// Editor returns the interactive surface.
func (a *Application) Editor() *surface.Editor {
	return a.editor
}

// Annotations returns the annotation manager.
func (a *Application) Annotations() *annotate.Manager {
	return a.manager
}

// Scheduler returns the check scheduler, or nil when checking is not
// configured.
func (a *Application) Scheduler() *check.Scheduler {
	return a.sched
}

// Dispatcher returns the rewrite dispatcher, or nil when rewriting is not
// configured.
func (a *Application) Dispatcher() *rewrite.Dispatcher {
	return a.dispatcher
}

// Config returns the loaded configuration.
func (a *Application) Config() *config.Config {
	return a.cfg
}

// Logger returns the application logger.
func (a *Application) Logger() *Logger {
	return a.logger
}

// Shutdown stops background workers and releases the screen. Safe to call
// after Run returns; in-flight rewrites are abandoned, their completions
// land on a queue nobody drains.
func (a *Application) Shutdown() {
	if a.sched != nil {
		a.sched.Stop()
	}
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			a.logger.Warn("closing rule watcher: %v", err)
		}
	}
	if a.autosaveCancel != nil {
		a.autosaveCancel()
		a.autosaveCancel = nil
	}
	if a.ownScreen && a.screen != nil {
		a.screen.Fini()
		a.screen = nil
	}
}
