package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"gbmviz/internal/anim"
	"gbmviz/internal/config"
	"gbmviz/internal/gbm"
	"gbmviz/internal/render"
	"gbmviz/internal/stats"
	"gbmviz/internal/storage"
	"gbmviz/internal/tui"
)

var (
	dataDir    string
	configFile string
	preset     string
	// Simulation parameters
	numPaths     int
	steps        int
	drift        float64
	volatility   float64
	initialPrice float64
	rate         float64
	seed         int64
	// Render/animation parameters
	workers    int
	bins       string
	width      int
	height     int
	fps        int
	output     string
	frameDir   string
	keepFrames bool
	// Plot command
	maxSeries int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gbmviz",
		Short: "geometric brownian motion ensemble animator",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gbmviz", "data directory")

	animateCmd := &cobra.Command{
		Use:   "animate",
		Short: "simulate paths and render the looping animation",
		RunE:  runAnimate,
	}
	addSimFlags(animateCmd)
	addRenderFlags(animateCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "animate with a live progress view",
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	addRenderFlags(liveCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "simulate paths and store the run",
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVar(&bins, "bins", "sqrt", "histogram bin policy (sqrt or a count)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "terminal preview of stored paths",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&maxSeries, "series", 5, "number of paths to draw")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a run's path matrix to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run's metadata to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Printf("%-10s %d paths, %d steps, drift %.2f, vol %.3f\n",
					name, cfg.Simulation.Paths, cfg.Simulation.Steps,
					cfg.Simulation.Drift, cfg.Simulation.Volatility)
			}
			return nil
		},
	}

	rootCmd.AddCommand(animateCmd, liveCmd, runCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&numPaths, "paths", config.DefaultPaths, "number of paths")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of time steps")
	cmd.Flags().Float64Var(&drift, "drift", 0, "drift (mu)")
	cmd.Flags().Float64Var(&volatility, "vol", config.DefaultVolatility, "volatility (sigma)")
	cmd.Flags().Float64Var(&initialPrice, "price", config.DefaultInitialPrice, "initial price")
	cmd.Flags().Float64Var(&rate, "rate", 0, "risk-free rate")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 uses the current time)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

func addRenderFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&workers, "workers", 0, "render workers (0 picks NumCPU/4)")
	cmd.Flags().StringVar(&bins, "bins", "sqrt", "histogram bin policy (sqrt or a count)")
	cmd.Flags().IntVar(&width, "width", config.DefaultWidth, "frame width in pixels")
	cmd.Flags().IntVar(&height, "height", config.DefaultHeight, "frame height in pixels")
	cmd.Flags().IntVar(&fps, "fps", config.DefaultFPS, "animation frame rate")
	cmd.Flags().StringVarP(&output, "output", "o", config.DefaultOutput, "animation output path")
	cmd.Flags().StringVar(&frameDir, "frame-dir", config.DefaultFrameDir, "working directory for frames")
	cmd.Flags().BoolVar(&keepFrames, "keep-frames", false, "keep per-frame images after assembly")
}

// buildConfig resolves preset, config file, and flags in that order:
// flags that were set explicitly win.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		*cfg = *p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("paths") {
		cfg.Simulation.Paths = numPaths
	}
	if flags.Changed("steps") {
		cfg.Simulation.Steps = steps
	}
	if flags.Changed("drift") {
		cfg.Simulation.Drift = drift
	}
	if flags.Changed("vol") {
		cfg.Simulation.Volatility = volatility
	}
	if flags.Changed("price") {
		cfg.Simulation.InitialPrice = initialPrice
	}
	if flags.Changed("rate") {
		cfg.Simulation.Rate = rate
	}
	if flags.Changed("seed") {
		cfg.Simulation.Seed = seed
	}
	if flags.Changed("workers") {
		cfg.Render.Workers = workers
	}
	if flags.Changed("bins") {
		cfg.Render.Bins = bins
	}
	if flags.Changed("width") {
		cfg.Render.Width = width
	}
	if flags.Changed("height") {
		cfg.Render.Height = height
	}
	if flags.Changed("fps") {
		cfg.Animation.FPS = fps
	}
	if flags.Changed("output") {
		cfg.Animation.Output = output
	}
	if flags.Changed("frame-dir") {
		cfg.Animation.FrameDir = frameDir
	}
	if flags.Changed("keep-frames") {
		cfg.Animation.KeepFrames = keepFrames
	}

	return cfg, nil
}

func resolveSeed(cfg *config.Config) int64 {
	if cfg.Simulation.Seed != 0 {
		return cfg.Simulation.Seed
	}
	return time.Now().UnixNano()
}

// runPipeline executes the full animation pipeline: generate paths,
// fix the global scale, render every frame, assemble the GIF, clean up
// the frame directory, and try to compress the result.
func runPipeline(ctx context.Context, cfg *config.Config, runSeed int64, progress func(done, total int)) error {
	params := cfg.Params()
	if err := params.Validate(); err != nil {
		return err
	}

	policy, err := stats.ParseBinPolicy(cfg.Render.Bins)
	if err != nil {
		return err
	}

	paths, err := gbm.Generate(params, rand.New(rand.NewSource(runSeed)))
	if err != nil {
		return err
	}

	scale := stats.Compute(paths, policy)

	if err := os.MkdirAll(cfg.Animation.FrameDir, 0755); err != nil {
		return err
	}

	pool := &render.Pool{Workers: cfg.Render.Workers, OnFrame: progress}
	opts := render.Options{Width: cfg.Render.Width, Height: cfg.Render.Height, Bins: policy}
	if err := pool.Render(ctx, paths, scale, opts, cfg.Animation.FrameDir); err != nil {
		return err
	}

	if err := anim.Assemble(cfg.Animation.FrameDir, cfg.Animation.Output, params.Horizon, cfg.FrameDelay()); err != nil {
		return err
	}

	if !cfg.Animation.KeepFrames {
		if err := os.RemoveAll(cfg.Animation.FrameDir); err != nil {
			return err
		}
	}

	// Best-effort: a missing or failing gifsicle never fails the run.
	if err := anim.Optimize(cfg.Animation.Output); err != nil {
		fmt.Printf("could not compress gif: %v\n", err)
	}

	return nil
}

func runAnimate(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	runSeed := resolveSeed(cfg)
	total := cfg.Simulation.Steps + 1

	fmt.Printf("simulating %d paths over %d steps...\n", cfg.Simulation.Paths, cfg.Simulation.Steps)
	fmt.Println("rendering frames in parallel...")

	start := time.Now()
	err = runPipeline(context.Background(), cfg, runSeed, func(done, total int) {
		if done%50 == 0 || done == total {
			fmt.Printf("  %d/%d frames\n", done, total)
		}
	})
	if err != nil {
		return err
	}

	fmt.Printf("created %s (%d frames) in %v\n", cfg.Animation.Output, total, time.Since(start).Round(time.Millisecond))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	runSeed := resolveSeed(cfg)
	total := cfg.Simulation.Steps + 1

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := tea.NewProgram(tui.NewModel(cfg.Animation.Output, total))

	go func() {
		err := runPipeline(ctx, cfg, runSeed, func(done, total int) {
			p.Send(tui.ProgressMsg{Done: done, Total: total})
		})
		p.Send(tui.DoneMsg{Err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return err
	}

	m := final.(tui.Model)
	if m.Canceled() {
		cancel()
		return errors.New("canceled")
	}
	if m.Err() != nil {
		return m.Err()
	}

	fmt.Printf("created %s\n", cfg.Animation.Output)
	return nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	params := cfg.Params()
	if err := params.Validate(); err != nil {
		return err
	}

	policy, err := stats.ParseBinPolicy(cfg.Render.Bins)
	if err != nil {
		return err
	}

	runSeed := resolveSeed(cfg)

	fmt.Printf("simulating %d paths over %d steps...\n", params.PathCount, params.Horizon)
	start := time.Now()

	paths, err := gbm.Generate(params, rand.New(rand.NewSource(runSeed)))
	if err != nil {
		return err
	}
	scale := stats.Compute(paths, policy)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	runID, err := st.Save(params, runSeed, scale, paths)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("max price: %.4f\n", scale.MaxPrice)
	fmt.Printf("log-return range: [%.4f, %.4f]\n", scale.MinLogReturn, scale.MaxLogReturn)

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
	fmt.Fprintln(w, "ID\tTIME\tPATHS\tSTEPS\tDRIFT\tVOL\tSEED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.3f\t%.3f\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Params.PathCount,
			run.Params.Horizon,
			run.Params.Drift,
			run.Params.Volatility,
			run.Seed,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	paths, err := st.LoadPaths(runID)
	if err != nil {
		return err
	}
	if paths.Paths() == 0 {
		return fmt.Errorf("no data to plot")
	}

	n := maxSeries
	if n > paths.Paths() {
		n = paths.Paths()
	}

	series := make([][]float64, n)
	for j := 0; j < n; j++ {
		series[j] = make([]float64, len(paths))
		for t := range paths {
			series[j][t] = paths[t][j]
		}
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("paths: %d (showing %d), steps: %d\n\n", paths.Paths(), n, paths.Steps())

	graph := asciigraph.PlotMany(series,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("price paths"),
	)
	fmt.Println(graph)

	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	paths, err := st.LoadPaths(runID)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := []string{"step"}
	for j := 0; j < paths.Paths(); j++ {
		header = append(header, fmt.Sprintf("p%d", j))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for t, row := range paths {
		record := []string{strconv.Itoa(t)}
		for _, v := range row {
			record = append(record, strconv.FormatFloat(v, 'f', 6, 64))
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
