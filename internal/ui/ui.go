package ui

import (
	"log"
	"os"

	"gioui.org/app"
)

// Run opens the editor window on path and blocks until it closes. The Gio
// main loop must own the main goroutine, so the process exits when the
// window does.
func Run(path string) error {
	go func() {
		w := new(app.Window)
		editor := New(w, path)
		if err := editor.Run(); err != nil {
			log.Printf("ui: %v", err)
			os.Exit(1)
		}
		os.Exit(0)
	}()

	app.Main()
	return nil
}
