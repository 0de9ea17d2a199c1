package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceLogic/pkg/circuit"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/netfile"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write a circuit as a netlist",
	Long: `Export a circuit in one of the interchange formats:

  bookshelf  <base>.nodes and <base>.nets, readable by "otl import"
  sexp       <base>.net, a KiCad-style S-expression netlist of electrical nets

The output base name defaults to the input file without its extension.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "bookshelf", "output format: bookshelf or sexp")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output base name")
}

func runExport(cmd *cobra.Command, args []string) error {
	c, err := loadCircuit(args[0])
	if err != nil {
		return err
	}
	base := exportOutput
	if base == "" {
		base = strings.TrimSuffix(args[0], filepath.Ext(args[0]))
	}

	switch strings.ToLower(exportFormat) {
	case "bookshelf":
		return exportBookshelf(c, base)
	case "sexp", "kicad":
		return exportSexp(c, base, filepath.Base(args[0]))
	}
	return fmt.Errorf("unknown format %q (want bookshelf or sexp)", exportFormat)
}

func exportBookshelf(c *circuit.Circuit, base string) error {
	nodes, err := os.Create(base + ".nodes")
	if err != nil {
		return err
	}
	defer nodes.Close()
	nets, err := os.Create(base + ".nets")
	if err != nil {
		return err
	}
	defer nets.Close()

	if err := netfile.ExportNodesAndNets(c, nodes, nets); err != nil {
		return err
	}
	if err := nodes.Close(); err != nil {
		return err
	}
	if err := nets.Close(); err != nil {
		return err
	}
	fmt.Printf("Wrote %s.nodes (%d nodes) and %s.nets (%d nets)\n", base, len(c.Components), base, len(c.Connections))
	return nil
}

func exportSexp(c *circuit.Circuit, base, source string) error {
	out, err := os.Create(base + ".net")
	if err != nil {
		return err
	}
	opts := netfile.DefaultSexpOptions()
	opts.Source = source
	if err := netfile.ExportSexp(c, out, opts); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	fmt.Printf("Wrote %s.net (%d components, %d nets)\n", base, len(c.Components), len(c.Nets()))
	return nil
}
