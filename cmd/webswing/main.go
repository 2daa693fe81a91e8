package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot"

	"github.com/san-kum/webswing/internal/config"
	"github.com/san-kum/webswing/internal/dynamo"
	"github.com/san-kum/webswing/internal/experiment"
	"github.com/san-kum/webswing/internal/export"
	"github.com/san-kum/webswing/internal/logging"
	"github.com/san-kum/webswing/internal/metrics"
	"github.com/san-kum/webswing/internal/optim"
	"github.com/san-kum/webswing/internal/sim"
	"github.com/san-kum/webswing/internal/storage"
	"github.com/san-kum/webswing/internal/vecmath"
	"github.com/san-kum/webswing/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	method     string
	logLevel   string
	logJSON    bool

	// run
	release     float64
	launchSpeed float64
	launchAngle float64 // degrees
	noSave      bool

	// optimize
	releaseLo  float64
	releaseHi  float64
	gridPoints int
	maxEval    int

	// sweep
	sweepFrom   float64
	sweepTo     float64
	sweepPoints int

	// plot, render, replay
	outFile     string
	renderKind  string
	replaySpeed float64
	theme       string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "webswing",
		Short:         "web swing range simulator and optimizer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log := logging.New(logging.Options{Level: logLevel, JSON: logJSON})
			cmd.SetContext(logging.WithContext(cmd.Context(), log))
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".webswing", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "start from a preset configuration")
	rootCmd.PersistentFlags().StringVar(&method, "method", "rk45", "integration method")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "simulate one swing and store it",
		Args:  cobra.NoArgs,
		RunE:  runSwing,
	}
	runCmd.Flags().Float64Var(&release, "release", 8, "release time [s]")
	runCmd.Flags().Float64Var(&launchSpeed, "speed", 0, "initial launch speed at the start of the swing [m/s]")
	runCmd.Flags().Float64Var(&launchAngle, "angle", 0, "launch angle [deg]")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	optimizeCmd := &cobra.Command{
		Use:       "optimize [release|launch]",
		Short:     "search for the longest swing",
		Long:      "release: best release time with no launch velocity (bounded Brent).\nlaunch: best release time, launch speed and angle together (bounded Nelder-Mead).",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"release", "launch"},
		RunE:      optimizeSwing,
	}
	optimizeCmd.Flags().Float64Var(&releaseLo, "lo", 0, "lower release bound [s]")
	optimizeCmd.Flags().Float64Var(&releaseHi, "hi", 0, "upper release bound [s]")
	optimizeCmd.Flags().IntVar(&gridPoints, "grid", 0, "grid points per variable seeding the launch search (0 = default 7, 1 = start from the guess)")
	optimizeCmd.Flags().IntVar(&maxEval, "max-eval", 0, "objective evaluation budget")
	optimizeCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the best run")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "range as a function of release time",
		Args:  cobra.NoArgs,
		RunE:  sweepRelease,
	}
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 1, "first release time [s]")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 20, "last release time [s]")
	sweepCmd.Flags().IntVar(&sweepPoints, "n", 40, "number of release times")
	sweepCmd.Flags().StringVar(&outFile, "out", "", "also render the sweep to this image file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run state in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	renderCmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render a run to an image file",
		Args:  cobra.ExactArgs(1),
		RunE:  renderRun,
	}
	renderCmd.Flags().StringVar(&outFile, "out", "", "output file, format from extension (default <run_id>.png)")
	renderCmd.Flags().StringVar(&renderKind, "kind", "path", "path, x, y, vx or vy")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run trajectory to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and trajectory to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	replayCmd := &cobra.Command{
		Use:   "replay [run_id]",
		Short: "replay a run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  replayRun,
	}
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1, "playback speed")
	replayCmd.Flags().StringVar(&theme, "theme", viz.Themes[0].Name, fmt.Sprintf("color theme %v", viz.ThemeNames()))

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	initConfigCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the effective configuration as yaml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, optimizeCmd, sweepCmd, listCmd, showCmd, plotCmd, renderCmd,
		exportCSVCmd, exportJSONCmd, replayCmd, presetsCmd, initConfigCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// loadConfig layers defaults, the preset, the config file and finally any
// flag the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		var err error
		cfg, err = config.LoadOver(cfg, configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	if cmd.Flags().Changed("method") {
		cfg.Solver.Method = method
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func simulator(cmd *cobra.Command) (*config.Config, *sim.Simulator, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	s, err := cfg.Simulator()
	if err != nil {
		return nil, nil, err
	}
	return cfg, s, nil
}

func runSwing(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	_, s, err := simulator(cmd)
	if err != nil {
		return err
	}

	launch := vecmath.FromPolar(launchAngle*math.Pi/180, launchSpeed)
	start := time.Now()
	res, err := s.Run(ctx, release, launch)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	id, err := saveRun("run", s, res)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n", elapsed)
	printRun(id, res)
	return nil
}

func optimizeSwing(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, s, err := simulator(cmd)
	if err != nil {
		return err
	}

	settings := cfg.OptimSettings()
	if cmd.Flags().Changed("max-eval") {
		settings.MaxEval = maxEval
	}

	var out *experiment.Outcome
	start := time.Now()
	switch args[0] {
	case "release":
		lo, hi := cfg.Release.Lo, cfg.Release.Hi
		if cmd.Flags().Changed("lo") {
			lo = releaseLo
		}
		if cmd.Flags().Changed("hi") {
			hi = releaseHi
		}
		out, err = experiment.OptimizeRelease(ctx, s, lo, hi, settings)
	case "launch":
		opts := experiment.LaunchOptions{Settings: settings, GridPoints: cfg.Launch.GridPoints}
		if cmd.Flags().Changed("grid") {
			opts.GridPoints = gridPoints
		}
		out, err = experiment.OptimizeLaunch(ctx, s, cfg.LaunchGuess(), cfg.LaunchBounds(), opts)
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	res := out.Optimizer
	fmt.Printf("optimizer: %s (converged=%v, %d evaluations, %d iterations) in %v\n",
		res.Message, res.Converged, res.Evaluations, res.Iterations, elapsed.Round(time.Millisecond))
	if out.Failures > 0 {
		fmt.Printf("failed evaluations: %d\n", out.Failures)
	}
	if !res.Converged {
		fmt.Println("warning: search stopped before converging; reporting best point found")
	}

	id, err := saveRun("optimize-"+args[0], s, out.Run)
	if err != nil {
		return err
	}
	printRun(id, out.Run)
	return nil
}

// saveRun stores res with its metrics unless --no-save was given. It
// returns the run id, empty when nothing was stored.
func saveRun(kind string, s *sim.Simulator, res *sim.Result) (string, error) {
	ms, err := metrics.Standard(s.Params, res.Release)
	if err != nil {
		return "", err
	}
	meta := storage.NewMetadata(kind, s, res)
	meta.Preset = preset
	meta.Metrics = metrics.Collect(res.Trajectory, ms...)
	fmt.Println("metrics:", metrics.Format(meta.Metrics))
	if noSave {
		return "", nil
	}
	return storage.New(dataDir).Save(meta, res.Trajectory)
}

func printRun(id string, res *sim.Result) {
	if id != "" {
		fmt.Printf("run id: %s\n", id)
	}
	angle, speed := res.Launch.Polar()
	fmt.Printf("release: %.4f s\n", res.Release)
	if speed > 0 {
		fmt.Printf("launch: %.4f m/s at %.2f deg\n", speed, angle*180/math.Pi)
	}
	fmt.Printf("range: %.4f m\n", res.Range)
	fmt.Printf("flight time: %.4f s\n", res.FlightTime)
	fmt.Printf("steps: %d (swing %d, flight %d)\n", res.Steps(), res.Swing.Steps, res.Flight.Steps)
	fmt.Printf("samples: %d\n", res.Trajectory.Len())
}

func sweepRelease(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	_, s, err := simulator(cmd)
	if err != nil {
		return err
	}
	if sweepPoints < 2 || !(sweepTo > sweepFrom) {
		return fmt.Errorf("%w: need --to > --from and --n >= 2", dynamo.ErrParameterBounds)
	}

	rows := experiment.SweepRelease(ctx, s, optim.Linspace(sweepFrom, sweepTo, sweepPoints))
	if err := ctx.Err(); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RELEASE\tRANGE\tLANDED\tERROR")
	ranges := make([]float64, 0, len(rows))
	for _, r := range rows {
		msg := ""
		if r.Err != nil {
			msg = r.Err.Error()
		} else {
			ranges = append(ranges, r.Range)
		}
		fmt.Fprintf(w, "%.3f\t%.3f\t%v\t%s\n", r.Release, r.Range, r.Landed, msg)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(ranges) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(ranges,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("range [m] vs release time"),
		))
	}

	if outFile != "" {
		p, err := export.Sweep(rows, "range vs release time")
		if err != nil {
			return err
		}
		if err := export.Save(p, outFile); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outFile)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tTIME\tMETHOD\tRELEASE\tSPEED\tRANGE\tLANDED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.3fs\t%.2f\t%.2fm\t%v\n",
			run.ID,
			run.Kind,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Method,
			run.Release,
			run.Speed,
			run.Range,
			run.Landed,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, *dynamo.Trajectory, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	tr, err := st.LoadTrajectory(runID)
	if err != nil {
		return nil, nil, err
	}
	if tr.Len() == 0 {
		return nil, nil, fmt.Errorf("run %s has no samples", runID)
	}
	return meta, tr, nil
}

func showRun(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("release: %.4f s  range: %.4f m\n", meta.Release, meta.Range)
	fmt.Printf("samples: %d\n\n", tr.Len())

	for idx, caption := range export.Component {
		graph := asciigraph.Plot(tr.Component(idx),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(caption+" vs time"),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func renderRun(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s: range %.1f m", meta.ID, meta.Range)
	plt, err := renderPlot(tr, meta.Release, title)
	if err != nil {
		return err
	}
	out := outFile
	if out == "" {
		out = meta.ID + ".png"
	}
	if err := export.Save(plt, out); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

var seriesIndex = map[string]int{"x": 0, "y": 1, "vx": 2, "vy": 3}

func renderPlot(tr *dynamo.Trajectory, release float64, title string) (*plot.Plot, error) {
	if renderKind == "path" {
		return export.Trajectory(tr, release, title)
	}
	idx, ok := seriesIndex[renderKind]
	if !ok {
		return nil, fmt.Errorf("unknown plot kind: %s (available: path, x, y, vx, vy)", renderKind)
	}
	return export.Series(tr, idx, title)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.WriteCSV(os.Stdout, tr)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, *meta, tr)
}

func replayRun(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}
	err = viz.Run(cmd.Context(), tr, viz.Options{
		Title:   meta.ID,
		Release: meta.Release,
		Anchor:  vecmath.New(0, meta.Params.Height),
		Theme:   theme,
		Speed:   replaySpeed,
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
