package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mpjhorner/specdash/internal/config"
	"github.com/mpjhorner/specdash/internal/dashboard"
	"github.com/mpjhorner/specdash/internal/flow"
	"github.com/mpjhorner/specdash/internal/fsutil"
	"github.com/mpjhorner/specdash/internal/log"
	"github.com/mpjhorner/specdash/internal/model"
	"github.com/mpjhorner/specdash/internal/render"
	"github.com/mpjhorner/specdash/internal/render/components"
	"github.com/mpjhorner/specdash/internal/textutil"
	"github.com/mpjhorner/specdash/internal/tui"
	"github.com/mpjhorner/specdash/internal/view"
	"github.com/mpjhorner/specdash/internal/watch"
)

var (
	cfgFile string
	noWatch bool
	v       = config.New()
)

// errReported marks failures that were already shown to the user
var errReported = errors.New("reported")

var rootCmd = &cobra.Command{
	Use:   "specdash [path]",
	Short: "Live terminal dashboard for spec-driven development workflows",
	Long: `specdash watches a project that tracks its work as spec files and shows
where things stand: active runs or bolts, the pending queue, intents, git
changes and workspace health.

It understands three layouts and picks the first one it finds:
  - FIRE    (.specs-fire/)
  - AIDLC   (memory-bank/)
  - Simple  (specs/)

Without --no-watch the dashboard is interactive and refreshes when files
change. With --no-watch it prints one rendering and exits, with status 1
when the workspace could not be parsed.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDashboard,
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✗")+" "+err.Error())
	}
	return err
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/specdash/config.toml)")

	f := rootCmd.Flags()
	f.String("flow", "", "flow to show: fire, aidlc or simple (default: detect)")
	f.Bool("watch", true, "watch files and run the interactive dashboard")
	f.BoolVar(&noWatch, "no-watch", false, "print one rendering and exit")
	f.String("refresh-interval", config.DefaultRefreshInterval.String(), "fallback refresh interval, clamped to 200ms..5s")
	f.String("debounce", config.DefaultDebounce.String(), "delay between a file change and the refresh")
	f.String("icons", "ascii", "icon set: ascii or nerd")
	f.Bool("notify", false, "send a desktop notification when an approval gate appears")
	f.Bool("highlight-code", true, "syntax-highlight fenced code in previews")
	f.String("log-file", "", "write logs to this file")
	f.String("log-level", "info", "log level: debug, info, warn or error")
	f.Bool("select-flow", false, "ask which flow to show when several are present")

	bindFlags(v, f, map[string]string{
		config.KeyFlow:            "flow",
		config.KeyWatch:           "watch",
		config.KeyRefreshInterval: "refresh-interval",
		config.KeyDebounce:        "debounce",
		config.KeyIcons:           "icons",
		config.KeyNotify:          "notify",
		config.KeyHighlightCode:   "highlight-code",
		config.KeyLogFile:         "log-file",
		config.KeyLogLevel:        "log-level",
		config.KeySelectFlow:      "select-flow",
	})
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}

// workspaceRoot resolves the optional path argument to an absolute directory
func workspaceRoot(args []string) (string, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	if !fsutil.IsDir(abs) {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}

func runDashboard(cmd *cobra.Command, args []string) error {
	root, err := workspaceRoot(args)
	if err != nil {
		return err
	}

	if noWatch {
		v.Set(config.KeyWatch, false)
	}
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}

	term := render.NewTerminal(os.Stdin, os.Stdout)
	interactive := cfg.Watch && term.IsTTY()

	logger, closeLog, err := newLogger(cfg, interactive)
	if err != nil {
		return err
	}
	defer closeLog()
	logger = logger.With("session", uuid.New().String()[:8])
	log.SetDefault(logger)
	if cfg.File != "" {
		logger.Debug("config loaded", "file", cfg.File)
	}

	detection, err := flow.Detect(root, cfg.Flow)
	if err != nil {
		return err
	}
	if detection.Warning != "" {
		logger.Warn(detection.Warning)
	}

	active := detection.EffectiveFlow()
	if cfg.SelectFlow && cfg.Flow == "" && len(detection.AvailableFlows) > 1 && term.IsTTY() {
		active, err = selectFlow(detection.AvailableFlows, active)
		if err != nil {
			return err
		}
	}

	parser, err := flow.NewParser(active, root)
	if err != nil {
		return err
	}
	dash := dashboard.New(root, parser).
		WithLogger(logger).
		WithAvailableFlows(detection.AvailableFlows)

	icons := view.Icons(cfg.Icons)
	engine := render.NewEngine(icons.ASCII())
	logger.Info("dashboard starting", "root", root, "flow", active, "source", detection.Source, "interactive", interactive)

	if !interactive {
		return runStatic(cmd.Context(), dash, engine, term, icons, cfg)
	}
	return runInteractive(dash, engine, term, icons, cfg, logger)
}

// runStatic prints one rendering of the work view
func runStatic(ctx context.Context, dash *dashboard.Dashboard, renderer render.Renderer, term render.Terminal, icons view.IconSet, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	res := dash.Refresh(ctx)
	status := dash.Status()

	frame := view.Build(status.Snapshot, status.Changes, view.State{
		View:          components.TabWork,
		Icons:         icons,
		HighlightCode: cfg.HighlightCode,
	})
	frame.Status = status.State.String()
	if !status.UpdatedAt.IsZero() {
		frame.Updated = textutil.FormatClock(status.UpdatedAt)
	}
	frame.Error = res.Err

	width, _ := term.Size()
	fmt.Fprintln(term, renderer.Render(frame, width, 0))

	if res.Err != nil {
		return errReported
	}
	return nil
}

func runInteractive(dash *dashboard.Dashboard, renderer render.Renderer, term render.Terminal, icons view.IconSet, cfg config.Config, logger *log.Logger) error {
	var runtime *watch.Runtime

	m := tui.NewModel(dash, renderer, term, tui.Options{
		RefreshInterval: cfg.RefreshInterval,
		Notify:          cfg.Notify,
		Icons:           icons,
		HighlightCode:   cfg.HighlightCode,
		Logger:          logger,
		OnFlowChange: func(f model.Flow) {
			if runtime != nil {
				runtime.Retarget(f)
			}
		},
	})
	program := tui.NewProgram(m, os.Stdin, os.Stdout)

	runtime, err := watch.Start(watch.Options{
		Roots: []string{dash.Root()},
		Flow:  dash.Flow(),
		Delay: cfg.Debounce,
		OnRefresh: func() {
			program.Send(tui.RefreshMsg{})
		},
		OnError: func(e *model.Error) {
			program.Send(tui.WatchErrorMsg{Err: e})
		},
		Logger: logger,
	})
	if err != nil {
		// The refresh timer still keeps the screen current.
		logger.Warn("file watching disabled", "error", err)
	} else {
		defer runtime.Close()
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}
	return nil
}

// newLogger builds the session logger. The interactive dashboard owns the
// terminal, so it logs only to --log-file.
func newLogger(cfg config.Config, interactive bool) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	opts := log.DefaultOptions()
	opts.Level = level
	closer := func() {}

	switch {
	case cfg.LogFile != "":
		f, err := log.OpenFile(cfg.LogFile)
		if err != nil {
			return nil, nil, err
		}
		opts.Output = f
		closer = func() { f.Close() }
	case interactive:
		opts.Output = io.Discard
	default:
		opts.Output = os.Stderr
		opts.Level = max(level, log.WarnLevel)
	}
	return log.New(opts), closer, nil
}

// selectFlow asks which of the available flows to show
func selectFlow(available []model.Flow, current model.Flow) (model.Flow, error) {
	choice := current
	options := lo.Map(available, func(f model.Flow, _ int) huh.Option[model.Flow] {
		return huh.NewOption(fmt.Sprintf("%s (%s/)", f.DisplayName(), flow.Marker(f)), f)
	})

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[model.Flow]().
				Title("Which flow?").
				Description("Several flows are set up in this workspace").
				Options(options...).
				Value(&choice),
		),
	)
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("flow selection canceled: %w", err)
	}
	return choice, nil
}
