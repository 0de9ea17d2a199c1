package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceLogic/pkg/circuit"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/document"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/route"
)

var (
	// Global flags
	verbose bool

	gridSize float64
	padding  float64
)

var rootCmd = &cobra.Command{
	Use:   "otl",
	Short: "OpenTraceLogic - logic circuit editor, router and simulator",
	Long: `OpenTraceLogic (otl) works with logic circuits saved by the editor:
  - inspect components, wires and electrical nets
  - re-route wires around component bodies
  - propagate signals to a fixed point
  - convert to and from netlist formats and render snapshots

Examples:
  otl view adder.json                         # Open the editor
  otl simulate adder.json --set 0=1 --set 1=1 # Evaluate with inputs driven
  otl export adder.json --format sexp -o adder
  otl render adder.json -o adder.png --simulate`,
	Version: "0.1.0",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetOutput(os.Stderr)
		} else {
			log.SetOutput(io.Discard)
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().Float64Var(&gridSize, "grid", route.DefaultConfig().GridSize, "router grid size in pixels")
	rootCmd.PersistentFlags().Float64Var(&padding, "padding", route.DefaultConfig().Padding, "clearance kept around component bodies")
}

// newRouter builds the router from the global flags.
func newRouter() (*route.Router, error) {
	cfg := route.DefaultConfig()
	cfg.GridSize = gridSize
	cfg.Padding = padding
	return route.New(cfg)
}

// loadCircuit reads a save file. Dropped connections are reported and the
// rest of the circuit is returned; a file that cannot be parsed is an error.
func loadCircuit(path string) (*circuit.Circuit, error) {
	r, err := newRouter()
	if err != nil {
		return nil, err
	}
	c, err := document.LoadFile(path, r)
	if err != nil {
		if c == nil || errors.Is(err, document.ErrMalformed) {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	log.Printf("loaded %s: %d components, %d connections", path, len(c.Components), len(c.Connections))
	return c, nil
}
