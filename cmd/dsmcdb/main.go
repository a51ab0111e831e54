package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/dsmcdb/internal/config"
	"github.com/san-kum/dsmcdb/internal/crosssection"
	"github.com/san-kum/dsmcdb/internal/database"
	"github.com/san-kum/dsmcdb/internal/experiment"
	"github.com/san-kum/dsmcdb/internal/export"
	"github.com/san-kum/dsmcdb/internal/logging"
	"github.com/san-kum/dsmcdb/internal/optim"
	"github.com/san-kum/dsmcdb/internal/physics"
	"github.com/san-kum/dsmcdb/internal/sim"
	"github.com/san-kum/dsmcdb/internal/storage"
	"github.com/san-kum/dsmcdb/internal/tui"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	dbPath     string
	seed       int64
	steps      int
	pairs      int
	ensemble   int
	logLevel   string
	live       bool
	frameRate  int
	noExtrap   bool
	section    string
	vMax       float64
	samples    int
	outPath    string
	full       bool
	svgPath    string
	sweeps     []string
	metricName string
)

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Red, asciigraph.Green, asciigraph.Yellow, asciigraph.Blue, asciigraph.Magenta, asciigraph.Cyan,
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "dsmcdb",
		Short: "collision database and DSMC relaxation lab",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.RunInteractive(func(gas, name string) (*experiment.Experiment, error) {
				cfg, err := presetConfig(gas, name)
				if err != nil {
					return nil, err
				}
				return experiment.New(cfg, logging.NewNoOp())
			})
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".dsmcdb", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [gas]",
		Short: "run a relaxation and store it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&live, "live", false, "draw species temperatures while running")
	runCmd.Flags().IntVar(&frameRate, "fps", 20, "frame rate for --live")

	watchCmd := &cobra.Command{
		Use:   "watch [gas]",
		Short: "step a cell interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE:  watchSimulation,
	}
	addRunFlags(watchCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot temperatures and energy of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "also write the temperature plot to this svg file")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().BoolVar(&full, "full", false, "include the sampled series")
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "write to a file instead of stdout")

	sweepCmd := &cobra.Command{
		Use:   "sweep [gas]",
		Short: "grid search over run parameters",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepParameters,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweeps, "param", nil, "name=v1,v2,... (majorant_speed_factor, pairs_per_step, steps, temperature.<i>, count.<i>)")
	sweepCmd.Flags().StringVar(&metricName, "metric", "relaxation_step", "metric to minimize")

	speciesCmd := &cobra.Command{
		Use:   "species [database]",
		Short: "list the particles of a database",
		Args:  cobra.ExactArgs(1),
		RunE:  listSpecies,
	}

	tableCmd := &cobra.Command{
		Use:   "table [database]",
		Short: "print the interaction table of a database",
		Args:  cobra.ExactArgs(1),
		RunE:  printTable,
	}
	tableCmd.Flags().BoolVar(&noExtrap, "no-extrapolation", false, "treat queries past tabulated data as errors")

	sigmaCmd := &cobra.Command{
		Use:   "sigma [database] [species_a] [species_b]",
		Short: "plot the cross sections of a species pair",
		Args:  cobra.ExactArgs(3),
		RunE:  plotSigma,
	}
	sigmaCmd.Flags().StringVar(&section, "section", "", "only equations of this section")
	sigmaCmd.Flags().Float64Var(&vMax, "vmax", 0, "largest relative speed, m/s (default: 5x thermal at 300K)")
	sigmaCmd.Flags().IntVar(&samples, "samples", 80, "number of speeds")
	sigmaCmd.Flags().BoolVar(&noExtrap, "no-extrapolation", false, "treat queries past tabulated data as errors")

	presetsCmd := &cobra.Command{
		Use:   "presets [gas]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gases := config.Gases()
			if len(args) == 1 {
				gases = args
			}
			for _, gas := range gases {
				presets := config.ListPresets(gas)
				if len(presets) == 0 {
					fmt.Printf("no presets for gas: %s\n", gas)
					continue
				}
				fmt.Printf("presets for %s:\n", gas)
				for _, p := range presets {
					fmt.Printf("  %s\n", p)
				}
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, watchCmd, listCmd, plotCmd, exportCmd, sweepCmd, speciesCmd, tableCmd, sigmaCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	cmd.Flags().StringVar(&preset, "preset", "", "preset of the gas (default: first listed)")
	cmd.Flags().StringVar(&dbPath, "db", "", "collision database, overrides the config")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	cmd.Flags().IntVar(&pairs, "pairs", config.DefaultPairsPerStep, "trial pairs per step")
	cmd.Flags().IntVar(&ensemble, "ensemble", 1, "independent cells")
	cmd.Flags().BoolVar(&noExtrap, "no-extrapolation", false, "treat queries past tabulated data as errors")
}

func presetConfig(gas, name string) (*config.Config, error) {
	if name == "" {
		presets := config.ListPresets(gas)
		if len(presets) == 0 {
			return nil, fmt.Errorf("unknown gas: %s (available: %v)", gas, config.Gases())
		}
		name = presets[0]
	}
	cfg := config.GetPreset(gas, name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets(gas))
	}
	return cfg, nil
}

// resolveConfig layers preset, config file, flags and environment, in
// that order.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	name := "default"

	if len(args) == 1 {
		p, err := presetConfig(args[0], preset)
		if err != nil {
			return nil, "", err
		}
		cfg = p
		name = args[0]
		if preset != "" {
			name += "-" + preset
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		name = strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Database = dbPath
	}
	if flags.Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("pairs") {
		cfg.PairsPerStep = pairs
	}
	if flags.Changed("ensemble") {
		cfg.Ensemble = ensemble
	}
	if noExtrap {
		cfg.Extrapolation = false
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, "", err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, name, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	log := logging.New(cfg.LogLevel)

	exp, err := experiment.New(cfg, log)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s: %d cell(s), %d steps x %d pairs...\n", name, cfg.Ensemble, cfg.Steps, cfg.PairsPerStep)
	start := time.Now()

	var results []*sim.Result
	if live && cfg.Ensemble == 1 {
		s, err := exp.NewSimulator()
		if err != nil {
			return err
		}
		r := tui.NewLiveRenderer(os.Stdout, name, exp.SpeciesNames(), frameRate)
		s.AddObserver(r)
		r.Start()
		result, err := s.Run(ctx, exp.SimConfig())
		r.Stop()
		if err != nil {
			return err
		}
		results = []*sim.Result{result}
	} else {
		results, err = exp.Run(ctx)
		if err != nil {
			return err
		}
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		log.Warnf("interrupted, storing partial results")
	}

	elapsed := time.Since(start)
	fmt.Printf("completed in %v\n", elapsed)

	for i, result := range results {
		runID, err := st.Save(storage.RunMetadata{
			Name:         name,
			Database:     cfg.Database,
			Seed:         cfg.Seed + int64(i),
			Steps:        cfg.Steps,
			PairsPerStep: cfg.PairsPerStep,
			Species:      exp.SpeciesNames(),
		}, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	counters, channels := sim.Merge(results)
	fmt.Printf("\ntrials: %d  accepted: %d  rejected: %d  domain errors: %d  below threshold: %d\n",
		counters.Trials, counters.Accepted, counters.Rejected, counters.DomainErrors, counters.BelowThreshold)
	fmt.Printf("acceptance rate: %.4f\n", counters.AcceptanceRate())

	fmt.Println("\nchannels:")
	keys := make([]string, 0, len(channels))
	for k := range channels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-40s %d\n", k, channels[k])
	}

	fmt.Println("\nmetrics:")
	for i, result := range results {
		names := make([]string, 0, len(result.Metrics))
		for n := range result.Metrics {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			fmt.Printf("  [%d] %s: %.6g\n", i, n, result.Metrics[n])
		}
	}

	return nil
}

func watchSimulation(cmd *cobra.Command, args []string) error {
	cfg, _, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, logging.NewNoOp())
	if err != nil {
		return err
	}
	return tui.RunWatch(exp)
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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tSTEPS\tPAIRS\tSEED\tACCEPTED\tDRIFT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%.2e\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.PairsPerStep,
			run.Seed,
			run.Counters.Accepted,
			run.EnergyDrift,
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

	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	if len(series) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("database: %s\n", meta.Database)
	fmt.Printf("samples: %d\n\n", len(series))

	temps := make([][]float64, 0, len(meta.Species)+1)
	for i := range meta.Species {
		data := make([]float64, len(series))
		for k, s := range series {
			if i < len(s.Species) {
				data[k] = s.Species[i]
			}
		}
		temps = append(temps, data)
	}
	total := make([]float64, len(series))
	energy := make([]float64, len(series))
	for k, s := range series {
		total[k] = s.Temperature
		energy[k] = s.Energy + s.Absorbed
	}
	temps = append(temps, total)

	legend := make([]string, 0, len(temps))
	for i, name := range append(append([]string{}, meta.Species...), "all") {
		legend = append(legend, fmt.Sprintf("%s=%s", name, colorName(i)))
	}

	fmt.Println(asciigraph.PlotMany(temps,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.SeriesColors(seriesColors...),
		asciigraph.Caption("temperature, K ("+strings.Join(legend, " ")+")"),
	))
	fmt.Println()
	fmt.Println(asciigraph.Plot(energy,
		asciigraph.Height(8),
		asciigraph.Width(80),
		asciigraph.Caption("kinetic + absorbed energy, J"),
	))

	if svgPath != "" {
		xs := make([]float64, len(series))
		for k, s := range series {
			xs[k] = float64(s.Step)
		}
		lines := make([]export.Series, 0, len(temps))
		for i, data := range temps {
			n := "all"
			if i < len(meta.Species) {
				n = meta.Species[i]
			}
			lines = append(lines, export.Series{Name: n, Values: data})
		}
		if err := export.SaveSVG(svgPath, xs, lines, 800, 400, meta.ID+" temperature, K"); err != nil {
			return err
		}
		fmt.Printf("\nwrote %s\n", svgPath)
	}

	return nil
}

func colorName(i int) string {
	names := []string{"red", "green", "yellow", "blue", "magenta", "cyan"}
	return names[i%len(names)]
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if full {
		if outPath != "" {
			return st.ExportJSON(outPath, args[0])
		}
		return st.WriteJSON(os.Stdout, args[0])
	}

	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func sweepParameters(cmd *cobra.Command, args []string) error {
	if len(sweeps) == 0 {
		return fmt.Errorf("at least one --param is required")
	}
	cfg, name, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	names := make([]string, len(sweeps))
	ranges := make([][]float64, len(sweeps))
	for i, s := range sweeps {
		names[i], ranges[i], err = optim.ParseRange(s)
		if err != nil {
			return err
		}
	}

	g, err := optim.NewGridSearch(cfg, names, ranges, logging.New(cfg.LogLevel))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("sweeping %s over %v, minimizing %s\n\n", name, names, metricName)
	points, best, err := g.Search(ctx, metricName)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\t"+strings.ToUpper(metricName))
	for _, p := range points {
		row := make([]string, 0, len(names)+1)
		for _, n := range names {
			row = append(row, fmt.Sprintf("%g", p.Params[n]))
		}
		switch {
		case p.Err != nil:
			row = append(row, "error: "+p.Err.Error())
		case math.IsNaN(p.Value):
			row = append(row, "not reached")
		default:
			row = append(row, fmt.Sprintf("%.6g", p.Value))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if best == nil {
		fmt.Println("\nno grid point reached the metric")
		return nil
	}
	fmt.Printf("\nbest: %v -> %.6g\n", best.Params, best.Value)
	return nil
}

func loadDatabase(path string) (*database.Database, error) {
	level := logLevel
	if level == "" {
		level = "warn"
	}
	return database.Load(path, logging.New(level))
}

func listSpecies(cmd *cobra.Command, args []string) error {
	db, err := loadDatabase(args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INDEX\tNAME\tMASS (kg)\tCHARGE\tSIZE (m)")
	for i, s := range db.Species.All() {
		fmt.Fprintf(w, "%d\t%s\t%.6e\t%d\t%.3e\n", i, s.Name, s.Mass, s.Charge, s.Size)
	}
	return w.Flush()
}

func printTable(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	cfg.Database = args[0]
	cfg.Extrapolation = !noExtrap
	exp, err := experiment.New(cfg, logging.NewNoOp())
	if err != nil {
		return err
	}

	reg := exp.Species()
	table := exp.Table()
	fmt.Printf("%d species, %d pairs, %d equations\n\n", table.Species(), table.Size(), len(exp.Equations()))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PAIR\tSECTION\tEQUATION\tCOLLISION\tCROSS SECTION\tTHRESHOLD (eV)")
	for _, set := range table.Sets() {
		a, b := set.Pair()
		pair := reg.At(a).Name + " + " + reg.At(b).Name
		for _, eq := range set.Equations() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.4g\n",
				pair, eq.Section, eq.Label, eq.Collision.Name(), eq.CrossSection.Name(), eq.Threshold/physics.ElectronVolt)
		}
	}
	return w.Flush()
}

func plotSigma(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	cfg.Database = args[0]
	cfg.Extrapolation = !noExtrap
	cfg.Filter.Sections = nil
	if section != "" {
		cfg.Filter.Sections = []string{section}
	}
	exp, err := experiment.New(cfg, logging.NewNoOp())
	if err != nil {
		return err
	}

	reg := exp.Species()
	a, err := reg.Index(args[1])
	if err != nil {
		return err
	}
	b, err := reg.Index(args[2])
	if err != nil {
		return err
	}
	set := exp.Table().Get(a, b)
	if set == nil || set.Len() == 0 {
		return fmt.Errorf("no equations for %s + %s", args[1], args[2])
	}

	top := vMax
	if top <= 0 {
		ma, mb := reg.Mass(a), reg.Mass(b)
		top = 5 * math.Sqrt(8*physics.Boltzmann*300/math.Pi*(1/ma+1/mb))
	}
	if samples < 2 {
		samples = 2
	}

	curves := make([][]float64, 0, set.Len())
	legend := make([]string, 0, set.Len())
	outside := 0
	for i, eq := range set.Equations() {
		data := make([]float64, samples)
		for k := range data {
			v := top * float64(k+1) / float64(samples)
			s, err := eq.CrossSection.Sigma(v)
			if errors.Is(err, crosssection.ErrOutOfDomain) {
				outside++
				continue
			} else if err != nil {
				return err
			}
			data[k] = s
		}
		curves = append(curves, data)
		legend = append(legend, fmt.Sprintf("%s=%s", eq.Section+": "+eq.Label, colorName(i)))
	}

	fmt.Println(asciigraph.PlotMany(curves,
		asciigraph.Height(14),
		asciigraph.Width(80),
		asciigraph.SeriesColors(seriesColors...),
		asciigraph.Caption(fmt.Sprintf("σ (m²) for v in (0, %.4g] m/s", top)),
	))
	for _, l := range legend {
		fmt.Printf("  %s\n", l)
	}
	if outside > 0 {
		fmt.Printf("\n%d samples outside the tabulated range plotted as 0\n", outside)
	}

	majorant, err := set.FindMaxSigmaVProduct(top)
	if err != nil {
		fmt.Printf("\nsummed majorant unavailable: %v\n", err)
		return nil
	}
	fmt.Printf("\nsummed majorant max σ·v on (0, %.4g]: %.4e m³/s\n", top, majorant)
	return nil
}
