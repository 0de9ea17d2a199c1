package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceLogic/pkg/document"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/netfile"
)

var (
	importOutput string
	importRoute  bool
)

var importCmd = &cobra.Command{
	Use:   "import <nodes> <nets>",
	Short: "Build a circuit from a Bookshelf netlist",
	Long: `Read a .nodes and a .nets file and save the circuit in the editor format.
Records that do not describe a valid component or wire are skipped with a
warning; a syntax error aborts the import.`,
	Args: cobra.ExactArgs(2),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVarP(&importOutput, "output", "o", "", "output save file (required)")
	importCmd.Flags().BoolVar(&importRoute, "route", false, "re-route every wire after import")
	importCmd.MarkFlagRequired("output")
}

func runImport(cmd *cobra.Command, args []string) error {
	nodes, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer nodes.Close()
	nets, err := os.Open(args[1])
	if err != nil {
		return err
	}
	defer nets.Close()

	r, err := newRouter()
	if err != nil {
		return err
	}
	c, err := netfile.ImportGenericNetlist(nodes, nets, r)
	if c == nil {
		return err
	}
	if err != nil {
		if !errors.Is(err, netfile.ErrSkipped) {
			return err
		}
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	if importRoute {
		c.RerouteAll()
	}

	if err := document.SaveFile(importOutput, c); err != nil {
		return err
	}
	fmt.Printf("Imported %d components, %d wires -> %s\n", len(c.Components), len(c.Connections), importOutput)
	return nil
}
