package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/threebody/internal/analysis"
	"github.com/san-kum/threebody/internal/automation"
	"github.com/san-kum/threebody/internal/config"
	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/export"
	"github.com/san-kum/threebody/internal/integrators"
	"github.com/san-kum/threebody/internal/logging"
	"github.com/san-kum/threebody/internal/metrics"
	"github.com/san-kum/threebody/internal/physics"
	"github.com/san-kum/threebody/internal/sim"
	"github.com/san-kum/threebody/internal/storage"
	"github.com/san-kum/threebody/internal/viz"
)

var (
	settingsFile string
	dataDir      string
	logLevel     string

	// Scenario
	configFile string
	preset     string
	integrator string
	dt         float64
	duration   float64
	masses     []float64
	background string

	// Live view
	frameRate     int
	stepsPerFrame int

	// Output
	outFile   string
	showAxes  bool
	svgWidth  int
	svgHeight int

	// Analysis
	body         int
	sweepBody    int
	perturbation float64
	xCoord       string
	yCoord       string
	sweepLo      float64
	sweepHi      float64
	sweepN       int

	settings *config.Settings
	logger   zerolog.Logger
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "threebody",
		Short: "planar three-body simulator",
		Long: "Integrates three point masses under Newtonian gravity with fixed-step RK4.\n" +
			"With no subcommand it opens the live view on the figure-eight orbit.",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		RunE:              runLive,
	}
	rootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "settings file (default ./threebody.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "run directory (overrides settings)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides settings)")
	addScenarioFlags(rootCmd)
	addLiveFlags(rootCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)
	addLiveFlags(liveCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a batch simulation and record it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addScenarioFlags(runCmd)

	batchCmd := &cobra.Command{
		Use:   "batch [plan.yaml]",
		Short: "run and record every scenario in a plan",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot body positions and energy of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run states to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and states to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	svgCmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "render run trajectories as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	svgCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")
	svgCmd.Flags().BoolVar(&showAxes, "axes", false, "draw unit axes")
	svgCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	svgCmd.Flags().IntVar(&svgHeight, "height", 600, "image height")
	svgCmd.Flags().StringVar(&background, "background", config.DefaultBackground, "background colour")

	initCmd := &cobra.Command{
		Use:   "init [file]",
		Short: "write a scenario file from a preset and flags",
		Args:  cobra.ExactArgs(1),
		RunE:  writeScenario,
	}
	addScenarioFlags(initCmd)

	compareCmd := &cobra.Command{
		Use:   "compare [integrator] [integrator] ...",
		Short: "compare integrators on the same scenario",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	addScenarioFlags(compareCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenarios",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "chaos and accuracy diagnostics",
	}

	sensitivityCmd := &cobra.Command{
		Use:   "sensitivity",
		Short: "estimate the growth rate of a small perturbation",
		Args:  cobra.NoArgs,
		RunE:  analyzeSensitivity,
	}
	addScenarioFlags(sensitivityCmd)
	sensitivityCmd.Flags().Float64Var(&perturbation, "perturbation", 1e-8, "initial offset of body 1")

	convergenceCmd := &cobra.Command{
		Use:   "convergence",
		Short: "estimate the observed order of accuracy by step halving",
		Args:  cobra.NoArgs,
		RunE:  analyzeConvergence,
	}
	addScenarioFlags(convergenceCmd)

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase space plot of one body",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzePhase,
	}
	phaseCmd.Flags().IntVar(&body, "body", 1, "body (1-3)")
	phaseCmd.Flags().StringVar(&xCoord, "x", "x", "horizontal coordinate (x, vx, y, vy)")
	phaseCmd.Flags().StringVar(&yCoord, "y", "vx", "vertical coordinate (x, vx, y, vy)")

	poincareCmd := &cobra.Command{
		Use:   "poincare [run_id]",
		Short: "upward y = 0 crossings of one body",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzePoincare,
	}
	poincareCmd.Flags().IntVar(&body, "body", 1, "body (1-3)")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "vary one mass and report how each run ends",
		Args:  cobra.NoArgs,
		RunE:  analyzeSweep,
	}
	addScenarioFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&sweepBody, "body", 3, "body whose mass varies (1-3)")
	sweepCmd.Flags().Float64Var(&sweepLo, "from", 0, "first mass")
	sweepCmd.Flags().Float64Var(&sweepHi, "to", 1, "last mass")
	sweepCmd.Flags().IntVar(&sweepN, "n", 11, "number of runs")

	analyzeCmd.AddCommand(sensitivityCmd, convergenceCmd, phaseCmd, poincareCmd, sweepCmd)
	rootCmd.AddCommand(liveCmd, runCmd, batchCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, svgCmd, initCmd, compareCmd, presetsCmd, analyzeCmd)
	return rootCmd
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "built-in scenario (see presets)")
	cmd.Flags().StringVar(&integrator, "integrator", integrators.Default, "integrator: "+strings.Join(integrators.Names(), ", "))
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultStepSize, "step size")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Float64SliceVar(&masses, "masses", nil, "masses m1,m2,m3")
	cmd.Flags().StringVar(&background, "background", config.DefaultBackground, "background: "+strings.Join(config.Backgrounds, ", "))
}

func addLiveFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&frameRate, "fps", 0, "frame rate (overrides settings)")
	cmd.Flags().IntVar(&stepsPerFrame, "steps-per-frame", 0, "integration steps per frame (overrides settings)")
}

// setup loads settings and the logger before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	s, err := config.LoadSettings(settingsFile)
	if err != nil {
		return err
	}
	if dataDir != "" {
		s.DataDir = dataDir
	}
	if logLevel != "" {
		s.LogLevel = logLevel
	}
	settings = s
	logger = logging.New(s.LogLevel, cmd.ErrOrStderr(), s.LogPretty)
	return nil
}

// loadScenario resolves the scenario: preset, then config file, then any
// flags set on the command line.
func loadScenario(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("integrator") || cfg.Integrator == "" {
		cfg.Integrator = integrator
	}
	if flags.Changed("dt") {
		cfg.StepSize = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("background") {
		cfg.Background = background
	}
	if flags.Changed("masses") {
		if len(masses) != dynamo.NumBodies {
			return nil, fmt.Errorf("--masses needs %d values, got %d: %w", dynamo.NumBodies, len(masses), dynamo.ErrInvalidParameter)
		}
		for i := range cfg.Bodies {
			cfg.Bodies[i].Mass = masses[i]
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	integ, err := integrators.Lookup(cfg.Integrator)
	if err != nil {
		return err
	}
	x0, err := cfg.State()
	if err != nil {
		return err
	}

	// stdout belongs to the terminal UI; logs go to a file.
	f, err := logging.OpenFile(settings.LogFile)
	if err != nil {
		return err
	}
	defer f.Close()
	fileLogger := logging.New(settings.LogLevel, f, false).With().Str("scenario", cfg.Name).Logger()

	updates := sim.NewUpdates(16)
	driver, err := sim.NewDriver(sim.NewStepper(physics.Derivative, integ), x0, updates, fileLogger)
	if err != nil {
		return err
	}

	fps := settings.FPS
	if cmd.Flags().Changed("fps") {
		fps = frameRate
	}
	spf := settings.StepsPerFrame
	if cmd.Flags().Changed("steps-per-frame") {
		spf = stepsPerFrame
	}

	fileLogger.Info().Str("integrator", cfg.Integrator).Int("fps", fps).Int("steps_per_frame", spf).Msg("live view started")
	m := viz.NewModel(driver, updates, viz.Options{
		Name:          cfg.Name,
		FPS:           fps,
		StepsPerFrame: spf,
		TrailCapacity: settings.TrailCapacity,
		Zoom:          settings.Zoom,
		Background:    cfg.Background,
		Colors:        cfg.Colors(),
	}, fileLogger)
	err = viz.Run(m)
	fileLogger.Info().Int("steps", driver.Steps()).Float64("t", driver.State().T).Msg("live view closed")
	return err
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	integ, err := integrators.Lookup(cfg.Integrator)
	if err != nil {
		return err
	}
	x0, err := cfg.State()
	if err != nil {
		return err
	}

	st := storage.New(settings.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	s := sim.New(physics.Derivative, integ)
	s.SetLogger(logger.With().Str("scenario", cfg.Name).Logger())
	for _, mt := range metrics.Standard() {
		s.AddMetric(mt)
	}

	ctx, cancel := signalContext()
	defer cancel()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "running %s with %s...\n", cfg.Name, cfg.Integrator)
	start := time.Now()

	result, runErr := s.Run(ctx, x0, dynamo.Config{Duration: cfg.Duration, ValidateState: true})
	if result == nil {
		return runErr
	}
	if runErr != nil && !errors.Is(runErr, dynamo.ErrSingular) {
		return runErr
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunInfo{
		Scenario:   cfg.Name,
		Integrator: cfg.Integrator,
		Duration:   cfg.Duration,
	}, result, runErr)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "completed in %v\n", elapsed)
	fmt.Fprintf(out, "run id: %s\n", runID)
	fmt.Fprintf(out, "steps: %d\n", result.StepsTaken)
	if runErr != nil {
		fmt.Fprintf(out, "halted: %v\n", runErr)
	}
	fmt.Fprintf(out, "\nmetrics:\n")
	fmt.Fprintf(out, "  %s: %.6g\n", "final_energy_drift", result.EnergyDrift)
	for _, mt := range metrics.Standard() {
		if v, ok := result.Metrics[mt.Name()]; ok {
			fmt.Fprintf(out, "  %s: %.6g\n", mt.Name(), v)
		}
	}
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	plan, err := automation.LoadPlan(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	out := cmd.OutOrStdout()
	if plan.Name != "" {
		fmt.Fprintf(out, "plan: %s\n", plan.Name)
	}
	records, err := automation.Execute(ctx, plan, storage.New(settings.DataDir), logger)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tSCENARIO\tSTEPS\tHALTED")
	for _, r := range records {
		halted := "-"
		if r.Halted != nil {
			halted = r.Halted.Error()
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.RunID, r.Scenario, r.Steps, halted)
	}
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(settings.DataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tDURATION\tDT\tINTEG\tSTEPS\tHALTED")
	for _, run := range runs {
		halted := "-"
		if run.Halted != "" {
			halted = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%g\t%s\t%d\t%s\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.StepSize,
			run.Integrator,
			run.Steps,
			halted,
		)
	}
	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []dynamo.SimulationState, error) {
	st := storage.New(settings.DataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	states, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(states) == 0 {
		return nil, nil, fmt.Errorf("run %s has no states", runID)
	}
	return meta, states, nil
}

// downsample keeps at most n evenly spaced samples for plotting.
func downsample(data []float64, n int) []float64 {
	if len(data) <= n {
		return data
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = data[i*(len(data)-1)/(n-1)]
	}
	return out
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, states, err := loadRun(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "scenario: %s\n", meta.Scenario)
	fmt.Fprintf(out, "samples: %d\n\n", len(states))

	colors := []asciigraph.AnsiColor{asciigraph.Default, asciigraph.Blue, asciigraph.Red}
	for c, name := range []string{"x", "y"} {
		series := make([][]float64, dynamo.NumBodies)
		for b := range series {
			data := make([]float64, len(states))
			for i, s := range states {
				x, y := s.Bodies[b].State.Pos()
				data[i] = x
				if c == 1 {
					data[i] = y
				}
			}
			series[b] = downsample(data, 200)
		}
		graph := asciigraph.PlotMany(series,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.SeriesColors(colors...),
			asciigraph.Caption(name+" of bodies 1-3 vs time"),
		)
		fmt.Fprintln(out, graph)
		fmt.Fprintln(out)
	}

	energy := make([]float64, len(states))
	for i, s := range states {
		energy[i] = physics.Energy(s)
	}
	graph := asciigraph.Plot(downsample(energy, 200),
		asciigraph.Height(8),
		asciigraph.Width(80),
		asciigraph.Caption("total energy"),
	)
	fmt.Fprintln(out, graph)
	return nil
}

// output returns the -o file, or w when none was given.
func output(w io.Writer) (io.Writer, func() error, error) {
	if outFile == "" {
		return w, func() error { return nil }, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, states, err := loadRun(args[0])
	if err != nil {
		return err
	}
	w, done, err := output(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if err := storage.WriteCSV(w, states); err != nil {
		done()
		return err
	}
	return done()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, states, err := loadRun(args[0])
	if err != nil {
		return err
	}
	w, done, err := output(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(w, meta, states); err != nil {
		done()
		return err
	}
	return done()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	_, states, err := loadRun(args[0])
	if err != nil {
		return err
	}

	if config.BackgroundIndex(background) < 0 {
		return fmt.Errorf("unknown background %q: %w", background, dynamo.ErrInvalidParameter)
	}
	style := export.DefaultStyle()
	style.Background = string(viz.GetTheme(background).Background)
	style.ShowAxes = showAxes
	for i, c := range config.DefaultConfig().Colors() {
		style.Bodies[i] = c.Hex()
	}

	svg := export.TrajectoriesToSVG(states, svgWidth, svgHeight, style)
	if svg == "" {
		return fmt.Errorf("run %s is too short to draw", args[0])
	}
	w, done, err := output(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, svg); err != nil {
		done()
		return err
	}
	return done()
}

func writeScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", args[0], cfg.Name)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMASSES\tDT\tDURATION")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		ms := make([]string, len(p.Bodies))
		for i, b := range p.Bodies {
			ms[i] = fmt.Sprintf("%g", b.Mass)
		}
		fmt.Fprintf(w, "%s\t%s\t%g\t%g\n", name, strings.Join(ms, ","), p.StepSize, p.Duration)
	}
	return w.Flush()
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	x0, err := cfg.State()
	if err != nil {
		return err
	}

	jobs := make([]sim.Job, 0, len(args))
	for _, name := range args {
		integ, err := integrators.Lookup(name)
		if err != nil {
			return err
		}
		jobs = append(jobs, sim.Job{
			Name:       name,
			Field:      physics.Derivative,
			Integrator: integ,
			Initial:    x0,
			Config:     dynamo.Config{Duration: cfg.Duration, ValidateState: true},
		})
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	outcomes, err := sim.NewEnsemble(0).Run(ctx, jobs)
	if err != nil {
		return err
	}
	logger.Debug().Int("jobs", len(jobs)).Dur("elapsed", time.Since(start)).Msg("comparison finished")

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "scenario: %s  dt: %g  duration: %g\n\n", cfg.Name, cfg.StepSize, cfg.Duration)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tSTEPS\tENERGY DRIFT\tMOMENTUM DRIFT\tANG MOM DRIFT\tCLOSEST\tHALTED")
	for _, o := range outcomes {
		ed, md, ad := metrics.NewEnergyDrift(), metrics.NewMomentumDrift(), metrics.NewAngularMomentumDrift()
		closest := metrics.NewClosestApproach()
		for _, s := range o.Result.States {
			ed.Observe(s)
			md.Observe(s)
			ad.Observe(s)
			closest.Observe(s)
		}
		halted := "-"
		if o.Err != nil {
			halted = fmt.Sprintf("t=%.4f", o.Result.States[len(o.Result.States)-1].T)
		}
		fmt.Fprintf(w, "%s\t%d\t%.3e\t%.3e\t%.3e\t%.4g\t%s\n",
			o.Job.Name, o.Result.StepsTaken, ed.Value(), md.Value(), ad.Value(), closest.Value(), halted)
	}
	return w.Flush()
}

func analyzeSensitivity(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	integ, err := integrators.Lookup(cfg.Integrator)
	if err != nil {
		return err
	}
	x0, err := cfg.State()
	if err != nil {
		return err
	}
	if perturbation <= 0 {
		return fmt.Errorf("perturbation must be positive: %w", dynamo.ErrInvalidParameter)
	}

	lambda := analysis.SensitivityExponent(sim.NewStepper(physics.Derivative, integ), x0, cfg.Duration, perturbation)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "scenario: %s\n", cfg.Name)
	fmt.Fprintf(out, "sensitivity exponent: %.4f per unit time\n", lambda)
	if lambda > 0 {
		fmt.Fprintf(out, "e-folding time: %.3f\n", 1/lambda)
	}
	return nil
}

func analyzeConvergence(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	integ, err := integrators.Lookup(cfg.Integrator)
	if err != nil {
		return err
	}
	x0, err := cfg.State()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	order, err := analysis.ConvergenceOrder(ctx, physics.Derivative, integ, x0, cfg.Duration)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "scenario: %s  integrator: %s  dt: %g\n", cfg.Name, cfg.Integrator, cfg.StepSize)
	fmt.Fprintf(cmd.OutOrStdout(), "observed order: %.2f\n", order)
	return nil
}

// bodyIndex converts a 1-based body flag to an index.
func bodyIndex(n int) (int, error) {
	if n < 1 || n > dynamo.NumBodies {
		return 0, fmt.Errorf("body must be 1-%d, got %d: %w", dynamo.NumBodies, n, dynamo.ErrInvalidParameter)
	}
	return n - 1, nil
}

func analyzePhase(cmd *cobra.Command, args []string) error {
	b, err := bodyIndex(body)
	if err != nil {
		return err
	}
	xc, err := analysis.ParseCoordinate(xCoord)
	if err != nil {
		return err
	}
	yc, err := analysis.ParseCoordinate(yCoord)
	if err != nil {
		return err
	}
	meta, states, err := loadRun(args[0])
	if err != nil {
		return err
	}

	portrait := analysis.GeneratePhasePortrait(states, b, xc, yc)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "phase space plot: %s\n", meta.ID)
	fmt.Fprintf(out, "body %d: %s vs %s\n\n", body, yCoord, xCoord)
	fmt.Fprint(out, analysis.PhasePortraitToASCII(portrait.Points, 70, 20))
	return nil
}

func analyzePoincare(cmd *cobra.Command, args []string) error {
	b, err := bodyIndex(body)
	if err != nil {
		return err
	}
	meta, states, err := loadRun(args[0])
	if err != nil {
		return err
	}

	crossings := analysis.PoincareSection(states, b)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "poincare section: %s body %d, upward y = 0\n", meta.ID, body)
	fmt.Fprintf(out, "crossings: %d\n", len(crossings))
	if len(crossings) == 0 {
		return nil
	}
	if p := analysis.CrossingPeriod(crossings); p > 0 {
		fmt.Fprintf(out, "mean period: %.4f\n", p)
	}
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "T\tX\tVX")
	for _, c := range crossings {
		fmt.Fprintf(w, "%.4f\t%.6f\t%.6f\n", c.T, c.X, c.VX)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(crossings) > 1 {
		fmt.Fprintln(out)
		fmt.Fprint(out, analysis.PhasePortraitToASCII(analysis.SectionPoints(crossings), 60, 15))
	}
	return nil
}

func analyzeSweep(cmd *cobra.Command, args []string) error {
	b, err := bodyIndex(sweepBody)
	if err != nil {
		return err
	}
	if sweepLo < 0 || sweepHi < sweepLo {
		return fmt.Errorf("mass range [%g, %g] invalid: %w", sweepLo, sweepHi, dynamo.ErrInvalidParameter)
	}
	cfg, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	integ, err := integrators.Lookup(cfg.Integrator)
	if err != nil {
		return err
	}
	x0, err := cfg.State()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	points, err := analysis.MassSweep(ctx, physics.Derivative, integ, x0, b, sweepLo, sweepHi, sweepN, cfg.Duration)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "scenario: %s  body %d mass %g..%g\n\n", cfg.Name, sweepBody, sweepLo, sweepHi)
	fmt.Fprint(cmd.OutOrStdout(), analysis.SweepToTable(points))
	return nil
}
