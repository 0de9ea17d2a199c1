package cmd

import (
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceLogic/internal/ui"
)

var viewCmd = &cobra.Command{
	Use:   "view [file]",
	Short: "Open the circuit editor",
	Long: `Open the interactive editor, optionally on a save file.

Controls:
  Place menu        - Pick a component, then click the canvas
  Drag from output  - Draw a wire; drop it on an input pin
  Drag from wire    - Add a tap and branch a new wire off it
  Click input pin   - Toggle its value
  Drag body         - Move a component (snaps to the grid)
  Right drag        - Pan
  Scroll / + / -    - Zoom
  Space             - Fit circuit to window
  S                 - Start or stop simulation
  Ctrl+S            - Save
  Delete            - Delete selection
  [ / ]             - Fewer / more gate inputs
  , / .             - Shrink / grow component`,
	Args: cobra.RangeArgs(0, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		return ui.Run(path)
	},
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
