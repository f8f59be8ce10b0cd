package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/turbosim/internal/config"
	"github.com/san-kum/turbosim/internal/dynamo"
	"github.com/san-kum/turbosim/internal/experiment"
	"github.com/san-kum/turbosim/internal/sim"
	"github.com/san-kum/turbosim/internal/storage"
	"github.com/san-kum/turbosim/internal/viz"
)

var (
	logLevel string
	dataDir  string
	// Run inputs
	preset   string
	numSteps int
	outDir   string
	progress bool
	// Live view
	field string
	// Plot
	maxPlots int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "turbosim",
		Short: "plugin-driven particle and field simulation",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logrus.SetLevel(level)
			return nil
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warning", "log level (debug, info, warning, error)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "output", "directory holding run outputs")

	runCmd := &cobra.Command{
		Use:   "run [config.yaml]",
		Short: "run a simulation to completion",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addInputFlags(runCmd)
	runCmd.Flags().BoolVar(&progress, "progress", false, "print a progress bar")

	liveCmd := &cobra.Command{
		Use:   "live [config.yaml]",
		Short: "step a simulation with a live terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addInputFlags(liveCmd)
	liveCmd.Flags().StringVar(&field, "field", "", "published resource to plot")

	benchCmd := &cobra.Command{
		Use:   "bench [config.yaml]",
		Short: "measure steps per second at several resolutions",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchSimulation,
	}
	benchCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_dir]",
		Short: "print a run manifest",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [file]",
		Short: "plot the columns of a csv or npy output",
		Args:  cobra.ExactArgs(1),
		RunE:  plotFile,
	}
	plotCmd.Flags().IntVar(&maxPlots, "max", 6, "maximum number of columns to plot")

	typesCmd := &cobra.Command{
		Use:   "types",
		Short: "list registered component types",
		RunE: func(cmd *cobra.Command, args []string) error {
			types := experiment.NewDefaultRegistry().Types()
			kinds := make([]string, 0, len(types))
			for kind := range types {
				kinds = append(kinds, kind)
			}
			sort.Strings(kinds)
			for _, kind := range kinds {
				fmt.Printf("%s:\n", kind)
				for _, name := range types[kind] {
					fmt.Printf("  - %s\n", name)
				}
			}
			return nil
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [name] [file]",
		Short: "list presets, or write one out as a config file",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				for _, name := range config.ListPresets() {
					fmt.Println(name)
				}
				return nil
			}
			cfg := config.GetPreset(args[0])
			if cfg == nil {
				return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
			}
			if len(args) == 1 {
				data, err := yaml.Marshal(cfg)
				if err != nil {
					return err
				}
				_, err = os.Stdout.Write(data)
				return err
			}
			return config.Save(args[1], cfg)
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, benchCmd, listCmd, showCmd, plotCmd, typesCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&numSteps, "steps", 0, "override the clock step count")
	cmd.Flags().StringVar(&outDir, "out", "", "override the diagnostics directory")
}

// loadConfig resolves the configuration from a file argument or a preset and
// applies command line overrides.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case len(args) == 1:
		c, err := config.Load(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	default:
		return nil, fmt.Errorf("a config file or --preset is required")
	}

	if cmd.Flags().Changed("steps") {
		cfg.Clock.NumSteps = numSteps
	}
	if cmd.Flags().Changed("out") {
		cfg.Diagnostics.Directory = outDir
	}
	if cfg.Diagnostics.Directory == "" && preset != "" {
		cfg.Diagnostics.Directory = filepath.Join(dataDir, preset)
	}
	return cfg, cfg.Validate()
}

// progressPrinter redraws a progress bar on stderr after every step.
type progressPrinter struct {
	last int
}

func (p *progressPrinter) OnStep(c *dynamo.Clock) {
	pct := int(c.Progress() * 100)
	if pct == p.last && c.IsRunning() {
		return
	}
	p.last = pct
	fmt.Fprintf(os.Stderr, "\r%s %3d%%", viz.ProgressBar(c.Progress(), 40), pct)
	if !c.IsRunning() {
		fmt.Fprintln(os.Stderr)
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg, nil)
	if err := exp.Setup(); err != nil {
		return err
	}
	if progress {
		exp.Simulation().AddObserver(&progressPrinter{last: -1})
	}

	fmt.Printf("running %v...\n", exp.Simulation().ModuleNames())
	m, err := exp.Run()
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", m.Elapsed)
	fmt.Printf("run id: %s\n", m.ID)
	fmt.Printf("steps: %d\n", m.StepsTaken)
	fmt.Println("\noutputs:")
	for _, out := range m.Outputs {
		fmt.Printf("  %-8s %s (%d x %d)\n", out.Diagnostic, out.Path, out.Rows, out.Width)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	s, err := sim.New(cfg, experiment.NewDefaultRegistry())
	if err != nil {
		return err
	}
	if err := s.ExchangeResources(); err != nil {
		return err
	}
	if err := s.Initialize(); err != nil {
		return err
	}

	title := preset
	if len(args) == 1 {
		title = filepath.Base(args[0])
	}
	return viz.Run(s, field, title)
}

func benchSimulation(cmd *cobra.Command, args []string) error {
	fmt.Println("benchmarking")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEPS\tTIME\tSTEPS/SEC")

	for _, steps := range []int{100, 1000, 10000} {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		cfg.Clock.NumSteps = steps
		cfg.Diagnostics.Directory, err = os.MkdirTemp("", "turbosim-bench")
		if err != nil {
			return err
		}

		s, err := sim.New(cfg, experiment.NewDefaultRegistry())
		if err != nil {
			return err
		}
		start := time.Now()
		err = s.Run()
		elapsed := time.Since(start)
		os.RemoveAll(cfg.Diagnostics.Directory)
		if err != nil {
			return err
		}

		taken := s.Clock().Step
		fmt.Fprintf(w, "%d\t%v\t%.0f\n", taken, elapsed, float64(taken)/elapsed.Seconds())
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSTEPS\tDT\tMODULES\tOUTPUTS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.4g\t%v\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.StepsTaken,
			run.Dt,
			run.Modules,
			len(run.Outputs),
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	m, err := storage.New(args[0]).LoadManifest()
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

func plotFile(cmd *cobra.Command, args []string) error {
	rows, err := storage.ReadFile(args[0])
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("file: %s\n", args[0])
	fmt.Printf("samples: %d\n\n", len(rows))

	// A single row is a snapshot; plot it across its columns instead.
	if len(rows) == 1 {
		fmt.Println(asciigraph.Plot(rows[0],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(filepath.Base(args[0])),
		))
		return nil
	}

	numVars := min(len(rows[0]), maxPlots)
	for col := 0; col < numVars; col++ {
		data := make([]float64, len(rows))
		for i := range rows {
			data[i] = rows[i][col]
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("column %d", col)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}
