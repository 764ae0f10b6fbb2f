package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/tuneforge/regtemp/internal/config"
	"github.com/tuneforge/regtemp/internal/export"
	"github.com/tuneforge/regtemp/internal/report"
	"github.com/tuneforge/regtemp/internal/scan"
	"github.com/tuneforge/regtemp/internal/spectrum"
	"github.com/tuneforge/regtemp/internal/subgroup"
	"github.com/tuneforge/regtemp/internal/temperament"
	"github.com/tuneforge/regtemp/internal/tui"
)

var (
	subgroupSpec string
	weighting    string
	weightAmount float64
	skew         float64
	order        float64
	optimizer    string
	enforce      string
	ntype        string
	configFile   string
	preset       string
	scheme       string
	jsonOut      bool
	verbose      bool

	// measures
	scale float64

	// spectrum
	limit   int
	exclude []int
	oe      bool

	// scan
	from    int
	to      int
	metric  string
	svgPath string
)

// main registers commands and flags, launches the interactive explorer
// when no subcommand is provided, and executes the root command. It
// exits the process with status 1 if command execution returns an error.
func main() {
	rootCmd := &cobra.Command{
		Use:   "regtemp",
		Short: "regular temperament tuning optimizer",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default to the explore view when no command given
			return tui.RunExplore()
		},
	}
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "debug logging")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05",
		})))
	}

	tuneCmd := &cobra.Command{
		Use:     "tune [mapping]",
		Aliases: []string{"optimize", "optimise", "analyze", "analyse"},
		Short:   "solve the optimal generator tuning",
		Args:    cobra.MaximumNArgs(1),
		RunE:    runTune,
	}
	addTemperamentFlags(tuneCmd)
	tuneCmd.Flags().StringVar(&optimizer, "optimizer", config.DefaultOptimizer, "optimizer (numeric, symbolic)")
	tuneCmd.Flags().StringVar(&enforce, "enforce", "", "enforcement, e.g. c1 or d1 or c1c2")
	tuneCmd.Flags().BoolVar(&jsonOut, "json", false, "print the result as JSON")

	measuresCmd := &cobra.Command{
		Use:   "measures [mapping]",
		Short: "complexity, error and badness",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMeasures,
	}
	addTemperamentFlags(measuresCmd)
	measuresCmd.Flags().StringVar(&ntype, "ntype", config.DefaultNType, "normalizer (breed, smith, none)")
	measuresCmd.Flags().Float64Var(&scale, "scale", 1000, "badness scale")

	wedgieCmd := &cobra.Command{
		Use:   "wedgie [mapping]",
		Short: "exterior product of the weighted mapping",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runWedgie,
	}
	addTemperamentFlags(wedgieCmd)

	commasCmd := &cobra.Command{
		Use:   "commas [mapping]",
		Short: "comma basis of the temperament",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCommas,
	}
	addTemperamentFlags(commasCmd)

	spectrumCmd := &cobra.Command{
		Use:   "spectrum [mapping]",
		Short: "complexity spectrum of odd-limit intervals",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSpectrum,
	}
	addTemperamentFlags(spectrumCmd)
	spectrumCmd.Flags().IntVar(&limit, "limit", 9, "odd limit")
	spectrumCmd.Flags().IntSliceVar(&exclude, "exclude", nil, "odd numbers to leave out")
	spectrumCmd.Flags().BoolVar(&oe, "oe", true, "octave-equivalent norm")

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "sweep equal divisions of the octave",
		Args:  cobra.NoArgs,
		RunE:  runScan,
	}
	addNormFlags(scanCmd)
	scanCmd.Flags().StringVar(&subgroupSpec, "subgroup", "", "subgroup basis, e.g. 2.3.5")
	scanCmd.Flags().IntVar(&from, "from", 5, "first division")
	scanCmd.Flags().IntVar(&to, "to", 53, "last division")
	scanCmd.Flags().StringVar(&metric, "metric", scan.MetricBadness, "ranking metric (badness, logflat, error, complexity)")
	scanCmd.Flags().StringVar(&ntype, "ntype", config.DefaultNType, "normalizer (breed, smith, none)")
	scanCmd.Flags().StringVar(&svgPath, "svg", "", "write an SVG chart to this path")
	scanCmd.Flags().BoolVar(&jsonOut, "json", false, "print the results as JSON")

	presetsCmd := &cobra.Command{
		Use:   "presets [temperament]",
		Short: "list built-in temperaments and schemes",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPresets,
	}

	exploreCmd := &cobra.Command{
		Use:   "explore",
		Short: "interactive tuning explorer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.RunExplore()
		},
	}

	rootCmd.AddCommand(tuneCmd, measuresCmd, wedgieCmd, commasCmd, spectrumCmd, scanCmd, presetsCmd, exploreCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addTemperamentFlags registers the flags every temperament-taking
// command shares.
func addTemperamentFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&subgroupSpec, "subgroup", "", "subgroup basis, e.g. 2.3.5 or 2.9.13/5")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use a built-in temperament")
	cmd.Flags().StringVar(&scheme, "scheme", "te", "preset tuning scheme")
	addNormFlags(cmd)
}

func addNormFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&weighting, "weighting", config.DefaultWeighting, "weighting (tenney, wilson, equilateral)")
	cmd.Flags().Float64Var(&weightAmount, "weight-amount", config.DefaultWeightAmount, "weight exponent")
	cmd.Flags().Float64Var(&skew, "skew", 0, "weil skew factor")
	cmd.Flags().Float64Var(&order, "order", config.DefaultOrder, "norm order (2, 1, inf)")
}

// resolveConfig layers the temperament request: positional mapping and
// changed flags override the config file, which overrides the preset,
// which overrides the defaults.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset, scheme)
		if p == nil {
			if config.ListPresets(preset) == nil {
				return nil, fmt.Errorf("unknown temperament: %s (available: %v)", preset, config.ListTemperaments())
			}
			return nil, fmt.Errorf("unknown scheme: %s (available: %v)", scheme, config.ListPresets(preset))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if len(args) > 0 {
		mapping, err := parseMapping(args[0])
		if err != nil {
			return nil, err
		}
		cfg.Mapping = mapping
	}
	if cmd.Flags().Changed("subgroup") {
		cfg.Subgroup = subgroupSpec
	}
	if cmd.Flags().Changed("weighting") {
		cfg.Weighting = weighting
	}
	if cmd.Flags().Changed("weight-amount") {
		cfg.WeightAmount = weightAmount
	}
	if cmd.Flags().Changed("skew") {
		cfg.Skew = skew
	}
	if cmd.Flags().Changed("order") {
		cfg.Order = order
	}
	if cmd.Flags().Changed("optimizer") {
		cfg.Optimizer = optimizer
	}
	if cmd.Flags().Changed("enforce") {
		cfg.Enforce = enforce
	}
	if cmd.Flags().Changed("ntype") {
		cfg.NType = ntype
	}
	return cfg, nil
}

// parseMapping reads rows like "1 0 -4; 0 1 4".
func parseMapping(s string) ([][]int, error) {
	mapping := make([][]int, 0, 2)
	for _, row := range strings.Split(s, ";") {
		fields := strings.Fields(strings.ReplaceAll(row, ",", " "))
		if len(fields) == 0 {
			continue
		}
		r := make([]int, len(fields))
		for i, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("bad mapping entry %q: %w", f, err)
			}
			r[i] = v
		}
		mapping = append(mapping, r)
	}
	if len(mapping) == 0 {
		return nil, fmt.Errorf("empty mapping %q", s)
	}
	return mapping, nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	tp, err := cfg.Temperament(temperament.Options{Logger: slog.Default()})
	if err != nil {
		return err
	}
	res, err := tp.Tune(cfg.TuneOptions())
	if err != nil {
		return err
	}

	opt := cfg.Optimizer
	if opt == "" {
		opt = temperament.OptimizerNumeric
	}
	if jsonOut {
		return export.JSON(os.Stdout, export.Tuning(tp, res, report.Norm(cfg.Profile()), opt, cfg.Enforce))
	}

	fmt.Println(report.Describe(tp))
	fmt.Printf("Norm: %s\n", report.Norm(cfg.Profile()))
	fmt.Printf("Enforcement: %s\n", report.Enforce(cfg.Enforce, tp.Subgroup()))
	fmt.Println()
	fmt.Println(report.Tuning(res, tp.Subgroup()))
	if res.TuningProjection != nil {
		fmt.Println("Tuning projection map:")
		fmt.Println(res.TuningProjection.String())
	}
	if res.ErrorProjection != nil {
		fmt.Println("Error projection map:")
		fmt.Println(res.ErrorProjection.String())
	}
	return nil
}

func runMeasures(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	tp, err := cfg.Temperament(temperament.Options{Logger: slog.Default()})
	if err != nil {
		return err
	}
	m, err := tp.Measures(temperament.NType(cfg.NType), cfg.Profile())
	if err != nil {
		return err
	}

	fmt.Println(report.Describe(tp))
	fmt.Printf("Norm: %s\n", report.Norm(cfg.Profile()))
	fmt.Printf("Normalizer: %s\n", cfg.NType)
	fmt.Println()
	fmt.Println(report.Measures(m, scale))
	return nil
}

func runWedgie(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	tp, err := cfg.Temperament(temperament.Options{Logger: slog.Default()})
	if err != nil {
		return err
	}
	w, err := tp.Wedgie(cfg.Profile())
	if err != nil {
		return err
	}

	fmt.Println(report.Describe(tp))
	fmt.Printf("Wedgie: %s\n", report.Wedgie(w))
	return nil
}

func runCommas(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	tp, err := cfg.Temperament(temperament.Options{Logger: slog.Default()})
	if err != nil {
		return err
	}

	fmt.Println(report.Describe(tp))
	fmt.Println("Comma basis:")
	fmt.Println(report.Commas(tp.CommaBasis(), tp.Subgroup()))
	return nil
}

func runSpectrum(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	tp, err := cfg.Temperament(temperament.Options{Logger: slog.Default()})
	if err != nil {
		return err
	}

	ratios := spectrum.OddLimit(limit, exclude)
	monzos, _, err := spectrum.Monzos(ratios, tp.Subgroup())
	if err != nil {
		return err
	}
	entries, err := spectrum.Complexity(tp, monzos, cfg.Profile(), oe)
	if err != nil {
		return err
	}

	fmt.Println(report.Describe(tp))
	fmt.Println()
	fmt.Println("Complexity spectrum:")
	fmt.Println(report.Spectrum(entries, tp.Subgroup()))
	return nil
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	sg, err := cfg.ParseSubgroup()
	if err != nil {
		return err
	}
	if sg == nil {
		sg = subgroup.Default(3)
	}

	sw := scan.NewSweep(from, to)
	sw.NType = temperament.NType(cfg.NType)
	sw.Profile = cfg.Profile()
	sw.Logger = slog.Default()

	res, err := sw.Run(cmd.Context(), sg, metric)
	if err != nil {
		return err
	}

	if svgPath != "" {
		svg := export.ScanSVG(res, metric, 800, 400)
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("chart written to %s\n", svgPath)
	}
	if jsonOut {
		return export.JSON(os.Stdout, export.Scan(res, sg.String(), metric))
	}

	graph := asciigraph.Plot(res.Series(metric),
		asciigraph.Height(12),
		asciigraph.Width(72),
		asciigraph.Caption(fmt.Sprintf("%s over %d..%d edo (%s)", metric, from, to, sg)),
	)
	fmt.Println(graph)
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EDO\tVAL\tERROR\tCOMPLEXITY\tBADNESS\tLOGFLAT")
	for _, pt := range res.Points {
		fmt.Fprintf(w, "%d\t%s\t%.4f\t%.4f\t%.6f\t%.6f\n",
			pt.Divisions, report.Val(pt.Val), pt.Error, pt.Complexity, pt.Badness, pt.Logflat)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest by %s: %d divisions %s\n", metric, res.Best.Divisions, report.Val(res.Best.Val))
	return nil
}

func runPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Println("temperaments:")
		for _, name := range config.ListTemperaments() {
			fmt.Printf("  %s\n", name)
		}
		return nil
	}
	schemes := config.ListPresets(args[0])
	if len(schemes) == 0 {
		fmt.Printf("no presets for temperament: %s\n", args[0])
		return nil
	}
	fmt.Printf("schemes for %s:\n", args[0])
	for _, s := range schemes {
		fmt.Printf("  %s\n", s)
	}
	return nil
}
