package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceLogic/internal/chart"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/circuit"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/logic"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/netfile"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/sim"
)

var (
	simSet       []string
	simMaxPasses int
	simChart     string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <file>",
	Short: "Propagate signals to a fixed point",
	Long: `Drive input pins and propagate signals until nothing changes, then print
the value of every component. Undriven inputs read X and spread through
gates whose result they can affect.

Input pins are named by component index, as listed by "otl info".

Examples:
  otl simulate adder.json --set 0=1 --set 1=0
  otl simulate ring.json --max-passes 50 --chart passes.png`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().StringArrayVar(&simSet, "set", nil, "drive an input pin, as index=value (0, 1 or x)")
	simulateCmd.Flags().IntVar(&simMaxPasses, "max-passes", sim.DefaultConfig().MaxPasses, "pass cap for feedback loops")
	simulateCmd.Flags().StringVar(&simChart, "chart", "", "write a convergence chart (.png, .svg or .pdf)")
}

// parseAssignment reads "index=value".
func parseAssignment(s string) (int, logic.Signal, error) {
	idx, val, ok := strings.Cut(s, "=")
	if !ok {
		return 0, logic.Unknown, fmt.Errorf("invalid --set %q: want index=value", s)
	}
	i, err := strconv.Atoi(strings.TrimSpace(idx))
	if err != nil {
		return 0, logic.Unknown, fmt.Errorf("invalid --set %q: %w", s, err)
	}
	v, err := logic.ParseSignal(val)
	if err != nil {
		return 0, logic.Unknown, fmt.Errorf("invalid --set %q: %w", s, err)
	}
	return i, v, nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg := sim.DefaultConfig()
	cfg.MaxPasses = simMaxPasses
	engine, err := sim.New(cfg)
	if err != nil {
		return err
	}

	c, err := loadCircuit(args[0])
	if err != nil {
		return err
	}
	for _, s := range simSet {
		i, v, err := parseAssignment(s)
		if err != nil {
			return err
		}
		if err := c.SetInputValue(i, v); err != nil {
			return err
		}
	}

	res := engine.Propagate(c)
	if res.Converged {
		fmt.Printf("Converged after %d passes\n", res.Passes)
	} else {
		fmt.Printf("Did not converge within %d passes\n", res.Passes)
		for _, loop := range res.Loops {
			names := make([]string, len(loop))
			for i, comp := range loop {
				names[i] = netfile.NodeName(comp)
			}
			fmt.Printf("  feedback loop: %s\n", strings.Join(names, ", "))
		}
	}
	if verbose {
		fmt.Printf("Changes per pass: %v\n", res.Changes)
	}

	fmt.Println()
	for i := range c.Components {
		comp := &c.Components[i]
		if comp.Kind == circuit.KindInputPin || comp.Kind == circuit.KindOutputPin || verbose {
			fmt.Printf("%s (%s) = %s\n", netfile.NodeName(i), comp.Kind, comp.Value)
		}
	}

	if simChart != "" {
		if err := chart.SaveConvergence(simChart, res, chart.DefaultOptions()); err != nil {
			return err
		}
		fmt.Printf("\nChart written to %s\n", simChart)
	}
	return nil
}
