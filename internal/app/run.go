package app

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hokupod/ccflags/internal/args"
	"github.com/hokupod/ccflags/internal/config"
	"github.com/hokupod/ccflags/internal/flags"
	"github.com/hokupod/ccflags/internal/logging"
	"github.com/hokupod/ccflags/internal/output"
	"github.com/hokupod/ccflags/internal/probe"
	"github.com/hokupod/ccflags/internal/processor"
	"github.com/hokupod/ccflags/internal/settings"
	"github.com/hokupod/ccflags/internal/source"
	"github.com/hokupod/ccflags/internal/watch"
)

const (
	exitInvalidArgs = 90
	exitConfigErr   = 91
	exitProbeErr    = 92
	exitOutputErr   = 93
)

var errProbe = errors.New("compiler probe failed")

// Config controls Run behavior; zero values pick sensible defaults.
type Config struct {
	Options args.Options
	Context context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Stdin   io.Reader
	// Exists backs header/source probing; nil uses os.Stat.
	Exists func(string) bool
	Runner probe.Runner
	Getenv func(string) string
	Getwd  func() (string, error)
	Logger *slog.Logger
	// Watch replaces watch.File, mainly for tests.
	Watch func(context.Context, watch.Options) error
}

type runner struct {
	cfg    Config
	opts   args.Options
	ctx    context.Context
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
	cwd    string
	cache  map[string]*settings.Provider
	// mu serializes watch callbacks, which run on timer goroutines.
	mu     sync.Mutex
}

// Run executes one ccflags command and returns the process exit code.
func Run(cfg Config) int {
	r := &runner{cfg: cfg, opts: cfg.Options, cache: map[string]*settings.Provider{}}

	r.ctx = cfg.Context
	if r.ctx == nil {
		r.ctx = context.Background()
	}
	r.stdout = cfg.Stdout
	if r.stdout == nil {
		r.stdout = os.Stdout
	}
	r.stderr = cfg.Stderr
	if r.stderr == nil {
		r.stderr = os.Stderr
	}
	getwd := cfg.Getwd
	if getwd == nil {
		getwd = os.Getwd
	}
	wd, err := getwd()
	if err != nil {
		fmt.Fprintln(r.stderr, "failed to determine working directory:", err)
		return exitInvalidArgs
	}
	r.cwd = wd

	if err := validate(r.opts); err != nil {
		fmt.Fprintln(r.stderr, err)
		return exitInvalidArgs
	}

	// The config may carry the log settings, so it is read before the logger
	// exists. Flags on the command line win.
	conf, confPath, err := r.resolveConfig(r.startDir(r.opts.Filename))
	if err != nil {
		fmt.Fprintln(r.stderr, "config error:", err)
		return exitConfigErr
	}

	logger := cfg.Logger
	if logger == nil {
		level := firstNonEmpty(r.opts.LogLevel, conf.LogLevel)
		logFile := firstNonEmpty(r.opts.LogFile, conf.LogFile)
		l, closeLog, err := logging.Open(logFile, level, r.stderr)
		if err != nil {
			fmt.Fprintln(r.stderr, "failed to initialize logger:", err)
			return exitInvalidArgs
		}
		defer closeLog()
		logger = l
	}
	r.logger = logger
	if confPath != "" {
		r.logger.Debug("config loaded", "path", confPath)
	}

	switch r.opts.Command {
	case args.CmdAbsolutize:
		return r.absolutize()
	case args.CmdSource:
		return r.source(conf)
	case args.CmdFlags, args.CmdSettings:
		p, err := r.provider(conf, r.cacheKey(confPath))
		if err != nil {
			return r.fail(err)
		}
		return r.emit(r.answer(p))
	case args.CmdServe:
		return r.serve()
	case args.CmdWatch:
		return r.watch(conf, confPath)
	default:
		fmt.Fprintf(r.stderr, "unknown command %q\n", r.opts.Command)
		return exitInvalidArgs
	}
}

func validate(opts args.Options) error {
	switch opts.Command {
	case args.CmdFlags, args.CmdSettings, args.CmdSource, args.CmdWatch:
		if opts.Filename == "" {
			return fmt.Errorf("%s: filename is required", opts.Command)
		}
	}
	return nil
}

func (r *runner) startDir(filename string) string {
	if filename == "" {
		return r.cwd
	}
	if !filepath.IsAbs(filename) {
		filename = filepath.Join(r.cwd, filename)
	}
	return filepath.Dir(filename)
}

func (r *runner) locator(startDir string) config.Locator {
	return config.Locator{
		Explicit: r.opts.ConfigPath,
		StartDir: startDir,
		Getenv:   r.cfg.Getenv,
	}
}

func (r *runner) resolveConfig(startDir string) (config.Config, string, error) {
	conf, err := config.Resolve(r.locator(startDir))
	if err != nil {
		return config.Config{}, "", err
	}
	return conf, conf.Path, nil
}

// cacheKey identifies a config file revision. The modification time is part
// of the key so that edits made while serving are picked up.
func (r *runner) cacheKey(confPath string) string {
	if confPath == "" {
		return ""
	}
	info, err := os.Stat(confPath)
	if err != nil {
		return confPath
	}
	return fmt.Sprintf("%s@%d", confPath, info.ModTime().UnixNano())
}

// provider builds the settings provider for a config, probing the compiler
// at most once per config revision.
func (r *runner) provider(conf config.Config, key string) (*settings.Provider, error) {
	if p, ok := r.cache[key]; ok {
		return p, nil
	}
	extra, err := conf.ExtraFlagTokens()
	if err != nil {
		return nil, err
	}
	var systemDirs []string
	if conf.ProbeCompiler != "" {
		systemDirs, err = probe.SystemIncludeDirs(r.ctx, r.cfg.Runner, conf.ProbeCompiler)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errProbe, err)
		}
		r.logger.Debug("probed system include dirs", "compiler", conf.ProbeCompiler, "count", len(systemDirs))
	}
	p := &settings.Provider{
		Flags: processor.Assemble(processor.Input{
			Base:           conf.Flags,
			Extra:          extra,
			SystemDirs:     systemDirs,
			IgnorePrefixes: conf.IgnorePrefixes,
		}),
		WorkingDirectory: conf.WorkingDirectory(r.cwd),
		Finder:           r.finder(conf),
		Logger:           r.logger,
	}
	r.cache[key] = p
	return p, nil
}

func (r *runner) finder(conf config.Config) source.Finder {
	return source.Finder{
		SourceExtensions: conf.SourceExtensions,
		HeaderExtensions: conf.HeaderExtensions,
		Exists:           r.cfg.Exists,
	}
}

func (r *runner) answer(p *settings.Provider) settings.Response {
	kwargs := settings.Kwargs{Filename: r.opts.Filename, Language: r.opts.Language}
	if r.opts.Command == args.CmdFlags {
		return p.FlagsForFile(r.opts.Filename, kwargs)
	}
	return p.Settings(kwargs)
}

func (r *runner) emit(resp settings.Response) int {
	if r.opts.JSON {
		b, err := output.ResponseJSON(resp)
		if err != nil {
			fmt.Fprintln(r.stderr, "output error:", err)
			return exitOutputErr
		}
		return r.writeLine(string(b))
	}
	if text := output.ResponseText(resp); text != "" {
		return r.writeLine(text)
	}
	return 0
}

func (r *runner) writeLine(line string) int {
	if _, err := fmt.Fprintln(r.stdout, line); err != nil {
		fmt.Fprintln(r.stderr, "output error:", err)
		return exitOutputErr
	}
	return 0
}

func (r *runner) absolutize() int {
	dir := r.opts.Dir
	if dir == "." {
		dir = r.cwd
	}
	out := flags.MakeRelativePathsInFlagsAbsolute(r.opts.Tokens, dir)
	if r.opts.JSON {
		b, err := output.FlagsJSON(out)
		if err != nil {
			fmt.Fprintln(r.stderr, "output error:", err)
			return exitOutputErr
		}
		fmt.Fprintln(r.stdout, string(b))
		return 0
	}
	if len(out) > 0 {
		fmt.Fprintln(r.stdout, strings.Join(out, "\n"))
	}
	return 0
}

func (r *runner) source(conf config.Config) int {
	fmt.Fprintln(r.stdout, r.finder(conf).FindCorrespondingSourceFile(r.opts.Filename))
	return 0
}

// serve answers one JSON request per stdin line until EOF.
func (r *runner) serve() int {
	stdin := r.cfg.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	scanner := bufio.NewScanner(stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		b, err := r.handleLine(line)
		if err != nil {
			r.logger.Warn("request failed", "err", err)
			b, err = output.ErrorJSON(err)
			if err != nil {
				fmt.Fprintln(r.stderr, "output error:", err)
				return exitOutputErr
			}
		}
		if _, err := fmt.Fprintln(r.stdout, string(b)); err != nil {
			fmt.Fprintln(r.stderr, "output error:", err)
			return exitOutputErr
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintln(r.stderr, "stdin read error:", err)
		return exitOutputErr
	}
	return 0
}

func (r *runner) handleLine(line string) ([]byte, error) {
	var req settings.Request
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	confPath, err := r.locator(r.startDir(req.Filename)).Locate()
	if err != nil {
		return nil, err
	}
	key := r.cacheKey(confPath)
	p, ok := r.cache[key]
	if !ok {
		conf, err := config.LoadOrDefault(confPath)
		if err != nil {
			return nil, err
		}
		if p, err = r.provider(conf, key); err != nil {
			return nil, err
		}
	}
	resp, err := p.Handle(req)
	if err != nil {
		return nil, err
	}
	return output.ResponseJSON(resp)
}

// watch emits the settings once, then again after every config change.
func (r *runner) watch(conf config.Config, confPath string) int {
	if confPath == "" {
		fmt.Fprintln(r.stderr, "watch: no config file found for", r.opts.Filename)
		return exitConfigErr
	}
	p, err := r.provider(conf, r.cacheKey(confPath))
	if err != nil {
		return r.fail(err)
	}
	if code := r.emit(r.answer(p)); code != 0 {
		return code
	}

	watchFn := r.cfg.Watch
	if watchFn == nil {
		watchFn = watch.File
	}
	err = watchFn(r.ctx, watch.Options{
		Path:   confPath,
		Logger: r.logger,
		OnChange: func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			clear(r.cache)
			key := r.cacheKey(confPath)
			conf, err := config.Load(confPath)
			if err != nil {
				r.logger.Error("config reload failed", "path", confPath, "err", err)
				return
			}
			p, err := r.provider(conf, key)
			if err != nil {
				r.logger.Error("config reload failed", "path", confPath, "err", err)
				return
			}
			if code := r.emit(r.answer(p)); code != 0 {
				r.logger.Error("emit after reload failed", "path", confPath, "code", code)
			}
		},
	})
	if err != nil {
		fmt.Fprintln(r.stderr, "watch error:", err)
		return exitConfigErr
	}
	return 0
}

func (r *runner) fail(err error) int {
	if errors.Is(err, errProbe) {
		fmt.Fprintln(r.stderr, err)
		return exitProbeErr
	}
	fmt.Fprintln(r.stderr, "config error:", err)
	return exitConfigErr
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
