package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceLogic/pkg/circuit"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/netfile"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/sim"
)

var (
	outputJSON bool
)

// CircuitInfo is the structured summary printed by info --json.
type CircuitInfo struct {
	File        string         `json:"file"`
	Components  int            `json:"components"`
	Connections int            `json:"connections"`
	Taps        int            `json:"taps"`
	Kinds       map[string]int `json:"kinds"`
	Nets        []NetInfo      `json:"nets"`
	Loops       [][]int        `json:"feedback_loops"`
	Problems    []string       `json:"problems,omitempty"`
}

// NetInfo is one electrical net.
type NetInfo struct {
	ID          int      `json:"id"`
	Pins        []string `json:"pins"`
	Connections []int    `json:"connections"`
}

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Summarise a circuit",
	Long: `Print component and wire counts, the electrical nets (a driving output
plus every input reached directly or through taps) and any feedback loops.

Examples:
  otl info adder.json
  otl info adder.json --json`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().BoolVar(&outputJSON, "json", false, "output JSON")
}

func pinLabel(p circuit.PinRef) string {
	return netfile.NodeName(p.Component) + "." + netfile.PinName(p)
}

func collectInfo(path string, c *circuit.Circuit) CircuitInfo {
	info := CircuitInfo{
		File:        path,
		Components:  len(c.Components),
		Connections: len(c.Connections),
		Kinds:       make(map[string]int),
		Nets:        []NetInfo{},
		Loops:       sim.FeedbackLoops(c),
	}
	for i := range c.Components {
		info.Kinds[c.Components[i].Kind.String()]++
	}
	for k := range c.Connections {
		info.Taps += len(c.Connections[k].Taps)
	}
	for _, n := range c.Nets() {
		ni := NetInfo{ID: n.ID, Connections: n.Connections}
		for _, p := range n.Pins {
			ni.Pins = append(ni.Pins, pinLabel(p))
		}
		info.Nets = append(info.Nets, ni)
	}
	if err := c.Validate(); err != nil {
		info.Problems = strings.Split(err.Error(), "\n")
	}
	if info.Loops == nil {
		info.Loops = [][]int{}
	}
	return info
}

func runInfo(cmd *cobra.Command, args []string) error {
	c, err := loadCircuit(args[0])
	if err != nil {
		return err
	}
	info := collectInfo(args[0], c)

	if outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	fmt.Printf("Circuit: %s\n", info.File)
	fmt.Printf("  Components: %d\n", info.Components)
	fmt.Printf("  Connections: %d (%d taps)\n", info.Connections, info.Taps)

	kinds := make([]string, 0, len(info.Kinds))
	for k := range info.Kinds {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Printf("    %-20s %d\n", k, info.Kinds[k])
	}

	fmt.Printf("\nNets: %d\n", len(info.Nets))
	for _, n := range info.Nets {
		fmt.Printf("  Net %d: %s\n", n.ID, strings.Join(n.Pins, " "))
		if verbose {
			fmt.Printf("         wires %v\n", n.Connections)
		}
	}

	if len(info.Loops) == 0 {
		fmt.Println("\nFeedback loops: none")
	} else {
		fmt.Printf("\nFeedback loops: %d\n", len(info.Loops))
		for _, loop := range info.Loops {
			names := make([]string, len(loop))
			for i, comp := range loop {
				names[i] = netfile.NodeName(comp)
			}
			fmt.Printf("  %s\n", strings.Join(names, ", "))
		}
	}

	if len(info.Problems) > 0 {
		fmt.Printf("\nProblems: %d\n", len(info.Problems))
		for _, p := range info.Problems {
			fmt.Printf("  %s\n", p)
		}
	}
	return nil
}
