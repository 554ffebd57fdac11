package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"qctrl/internal/circuit"
	"qctrl/internal/config"
	"qctrl/internal/control"
	"qctrl/internal/gates"
	"qctrl/internal/sim"
	"qctrl/internal/tui"
	"qctrl/internal/unroll"
)

// app holds the parsed flags and the loaded configuration for one run.
type app struct {
	configFile string
	logLevel   string
	preset     string

	numCtrl     int
	ctrlState   string
	params      string
	qasmFile    string
	label       string
	output      string
	maxControls int

	cfg    *config.Config
	logger *log.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:          "qctrl",
		Short:        "controlled quantum gate synthesis",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default to the terminal UI when no command given
			return a.runTUI()
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&a.preset, "preset", "", "use preset request")

	controlCmd := &cobra.Command{
		Use:   "control [gate]",
		Short: "synthesize a controlled operation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.runControl,
	}
	a.requestFlags(controlCmd)
	controlCmd.Flags().StringVarP(&a.output, "output", "o", "", "output format (qasm, diagram, both)")

	verifyCmd := &cobra.Command{
		Use:   "verify [gate]",
		Short: "synthesize and check against the reference unitary",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.runVerify,
	}
	a.requestFlags(verifyCmd)

	costCmd := &cobra.Command{
		Use:   "cost [gate]",
		Short: "basis gate counts as the number of controls grows",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.runCost,
	}
	costCmd.Flags().StringVar(&a.params, "params", "", "comma separated gate parameters")
	costCmd.Flags().StringVar(&a.qasmFile, "qasm", "", "QASM file defining a custom operation")
	costCmd.Flags().IntVar(&a.maxControls, "max-controls", 0, "largest number of controls to synthesize")

	basisCmd := &cobra.Command{
		Use:   "basis",
		Short: "list the basis gates controlled in closed form",
		RunE:  a.runBasis,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(out, "  %-10s %s on %d controls", name, p.Gate, p.NumCtrlQubits)
				if p.CtrlState.IsSet() {
					fmt.Fprintf(out, " (state %s)", p.CtrlState)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive terminal UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI()
		},
	}

	rootCmd.AddCommand(controlCmd, verifyCmd, costCmd, basisCmd, presetsCmd, tuiCmd)
	return rootCmd
}

func (a *app) requestFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&a.numCtrl, "num-ctrl", "n", 0, "number of control qubits")
	cmd.Flags().StringVar(&a.ctrlState, "ctrl-state", "", "control state: integer or 0b bitstring, last control leftmost")
	cmd.Flags().StringVar(&a.params, "params", "", "comma separated gate parameters")
	cmd.Flags().StringVar(&a.qasmFile, "qasm", "", "QASM file defining a custom operation")
	cmd.Flags().StringVar(&a.label, "label", "", "label for the controlled operation")
}

// setup loads the configuration, applies the preset and builds the logger.
// Flags override both.
func (a *app) setup(cmd *cobra.Command) error {
	a.cfg = config.DefaultConfig()
	if a.preset != "" {
		p := config.GetPreset(a.preset)
		if p == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", a.preset, config.ListPresets())
		}
		a.cfg = p
	}
	if a.configFile != "" {
		cfg, err := config.Load(a.configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		a.cfg = cfg
	}
	if a.logLevel != "" {
		a.cfg.LogLevel = a.logLevel
	}

	lvl, err := log.ParseLevel(a.cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("log level %q: %w", a.cfg.LogLevel, config.ErrInvalidConfig)
	}
	a.logger = log.NewWithOptions(cmd.ErrOrStderr(), log.Options{Prefix: "qctrl", Level: lvl})
	return nil
}

// request merges the command line over the configuration and builds the
// operation to control.
func (a *app) request(cmd *cobra.Command, args []string) (*config.Config, circuit.Operation, error) {
	cfg := *a.cfg
	flags := cmd.Flags()
	if len(args) == 1 {
		cfg.Gate = args[0]
		if !flags.Changed("params") {
			cfg.Params = nil
		}
	}
	if flags.Changed("params") {
		cfg.Params = strings.Split(a.params, ",")
	}
	if flags.Changed("num-ctrl") {
		cfg.NumCtrlQubits = a.numCtrl
	}
	if flags.Changed("ctrl-state") {
		cs, err := control.ParseCtrlState(a.ctrlState)
		if err != nil {
			return nil, circuit.Operation{}, err
		}
		cfg.CtrlState = cs
	}
	if flags.Changed("label") {
		cfg.Label = a.label
	}
	if flags.Changed("output") {
		cfg.Output = a.output
	}
	if flags.Changed("max-controls") {
		cfg.MaxPlotControls = a.maxControls
	}

	var (
		op  circuit.Operation
		err error
	)
	if a.qasmFile != "" {
		src, rerr := os.ReadFile(a.qasmFile)
		if rerr != nil {
			return nil, circuit.Operation{}, rerr
		}
		cfg.Gate = "custom"
		op, err = gates.FromQASM(cfg.Gate, string(src))
	} else {
		op, err = gates.Parse(cfg.Gate, strings.Join(cfg.Params, ","))
	}
	if err != nil {
		return nil, circuit.Operation{}, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, circuit.Operation{}, err
	}
	return &cfg, op, nil
}

func (a *app) synthesizer(cfg *config.Config) (*control.Synthesizer, *unroll.Unroller) {
	u := unroll.New(cfg.MaxUnrollDepth)
	u.Logger = a.logger
	return control.New(control.WithOracle(u), control.WithLogger(a.logger)), u
}

func (a *app) synthesize(cmd *cobra.Command, args []string) (*config.Config, circuit.Operation, circuit.Operation, error) {
	cfg, src, err := a.request(cmd, args)
	if err != nil {
		return nil, circuit.Operation{}, circuit.Operation{}, err
	}
	synth, _ := a.synthesizer(cfg)
	opts := []control.ControlOption{control.WithCtrlState(cfg.CtrlState)}
	if cfg.Label != "" {
		opts = append(opts, control.WithLabel(cfg.Label))
	}
	result, err := synth.Control(src, cfg.NumCtrlQubits, opts...)
	if err != nil {
		return nil, circuit.Operation{}, circuit.Operation{}, err
	}
	a.logger.Info("synthesized", "op", result.QASMName(), "qubits", result.NumQubits, "instructions", result.Definition().Len())
	return cfg, src, result, nil
}

func (a *app) runControl(cmd *cobra.Command, args []string) error {
	cfg, _, result, err := a.synthesize(cmd, args)
	if err != nil {
		return err
	}
	def := result.Definition()
	out := cmd.OutOrStdout()
	if cfg.Output != config.OutputQASM {
		fmt.Fprintln(out, tui.RenderDiagram(def))
	}
	if cfg.Output == config.OutputBoth {
		fmt.Fprintln(out)
	}
	if cfg.Output != config.OutputDiagram {
		fmt.Fprint(out, def.ToQASM())
	}
	return nil
}

func (a *app) runVerify(cmd *cobra.Command, args []string) error {
	cfg, src, result, err := a.synthesize(cmd, args)
	if err != nil {
		return err
	}
	state, err := cfg.CtrlState.Resolve(cfg.NumCtrlQubits)
	if err != nil {
		return err
	}
	if err := sim.CheckControlled(src, result, cfg.NumCtrlQubits, state, cfg.Tolerance); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ok: %s matches %s controlled on %s\n",
		result.QASMName(), src.Name, control.Encode(state, cfg.NumCtrlQubits))

	// From |0> on the targets: the active pattern applies the operation, the
	// pattern differing on control 0 must leave the targets untouched.
	for _, pattern := range []int{state, state ^ 1} {
		probs, err := sim.TargetResponse(result, cfg.NumCtrlQubits, pattern)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  controls %s: P(target=1) %s\n",
			control.Encode(pattern, cfg.NumCtrlQubits), formatProbs(probs))
	}
	return nil
}

func formatProbs(probs []sim.QubitProbability) string {
	parts := make([]string, len(probs))
	for i, p := range probs {
		parts[i] = fmt.Sprintf("%.3f", p.Prob1)
	}
	return strings.Join(parts, " ")
}

// costRow is the unrolled size of one synthesized operation.
type costRow struct {
	controls     int
	instructions int
	depth        int
	counts       map[string]int
}

func (a *app) runCost(cmd *cobra.Command, args []string) error {
	cfg, src, err := a.request(cmd, args)
	if err != nil {
		return err
	}
	synth, u := a.synthesizer(cfg)

	var rows []costRow
	for n := 1; n <= cfg.MaxPlotControls; n++ {
		result, err := synth.Control(src, n)
		if err != nil {
			return err
		}
		flat, _, err := u.Unroll(result, gates.BasisSet())
		if err != nil {
			return err
		}
		rows = append(rows, costRow{controls: n, instructions: flat.Len(), depth: flat.Depth(), counts: flat.CountOps()})
		a.logger.Debug("cost", "controls", n, "instructions", flat.Len())
	}
	return writeCost(cmd.OutOrStdout(), src.Name, rows)
}

func writeCost(out io.Writer, name string, rows []costRow) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CONTROLS\tINSTRUCTIONS\tDEPTH\tCX")
	counts := make([]float64, len(rows))
	for i, r := range rows {
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\n", r.controls, r.instructions, r.depth, r.counts["cx"])
		counts[i] = float64(r.instructions)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(counts) > 1 {
		graph := asciigraph.Plot(counts,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption(fmt.Sprintf("basis instructions for controlled %s vs controls", name)),
		)
		fmt.Fprintln(out)
		fmt.Fprintln(out, graph)
	}
	return nil
}

func (a *app) runBasis(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GATE\tQUBITS\tPARAMS")
	for _, name := range gates.BasisNames() {
		g, err := gates.New(name, make([]circuit.Param, gates.NumParams(name)))
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%d\n", name, g.NumQubits, len(g.Params))
	}
	return w.Flush()
}

// runTUI starts the terminal UI. Logs would corrupt the screen, so they go
// to the file named by QCTRL_LOG or are dropped.
func (a *app) runTUI() error {
	logger := log.New(io.Discard)
	if path := os.Getenv("QCTRL_LOG"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		logger = log.NewWithOptions(f, log.Options{Prefix: "qctrl", Level: a.cfg.Level(), ReportTimestamp: true})
	}
	return tui.Run(a.cfg, logger)
}
