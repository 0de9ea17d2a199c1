package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceLogic/pkg/document"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/geom"
)

var (
	routeOutput string
)

var routeCmd = &cobra.Command{
	Use:   "route <file>",
	Short: "Re-route every wire",
	Long: `Recompute the path of every connection from its current endpoints, keeping
clear of component bodies, and save the result. Taps keep their place on
the re-routed wires.

Without -o the input file is overwritten.`,
	Args: cobra.ExactArgs(1),
	RunE: runRoute,
}

func init() {
	rootCmd.AddCommand(routeCmd)
	routeCmd.Flags().StringVarP(&routeOutput, "output", "o", "", "output file (default: overwrite input)")
}

func runRoute(cmd *cobra.Command, args []string) error {
	c, err := loadCircuit(args[0])
	if err != nil {
		return err
	}
	c.RerouteAll()

	bends := 0
	for k := range c.Connections {
		path := c.Path(k)
		bends += len(c.Connections[k].Route)
		if verbose {
			fmt.Printf("  wire %d: %d points, length %.1f\n", k, len(path), geom.Length(path))
		}
		if !geom.IsOrthogonal(path) {
			fmt.Printf("  wire %d: not orthogonal\n", k)
		}
	}

	out := routeOutput
	if out == "" {
		out = args[0]
	}
	if err := document.SaveFile(out, c); err != nil {
		return err
	}
	fmt.Printf("Routed %d wires (%d bends) -> %s\n", len(c.Connections), bends, out)
	return nil
}
