package cmd

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceLogic/internal/snapshot"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/route"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/sim"
)

func findTestdata(t *testing.T) string {
	t.Helper()
	testdata := "../../../testdata"
	if _, err := os.Stat(testdata); os.IsNotExist(err) {
		testdata = "../../testdata"
	}
	return testdata
}

// resetFlags prevents flag values from leaking between runs.
func resetFlags() {
	verbose = false
	gridSize = route.DefaultConfig().GridSize
	padding = route.DefaultConfig().Padding
	outputJSON = false
	routeOutput = ""
	simSet = nil
	simMaxPasses = sim.DefaultConfig().MaxPasses
	simChart = ""
	exportFormat = "bookshelf"
	exportOutput = ""
	importOutput = ""
	importRoute = false
	renderOutput = ""
	renderSimulate = false
	renderWidth = snapshot.DefaultOptions().Width
	renderHeight = snapshot.DefaultOptions().Height
	renderNoLabels = false
}

// run executes the CLI with args and returns what it printed to stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	// Read in background to prevent pipe buffer from blocking on Windows
	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		buf.ReadFrom(r)
		close(done)
	}()

	resetFlags()
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	w.Close()
	os.Stdout = old
	<-done
	return buf.String(), err
}

func TestCommandsE2E(t *testing.T) {
	testdata := findTestdata(t)
	adder := filepath.Join(testdata, "half_adder.json")
	ring := filepath.Join(testdata, "ring.json")

	malformed := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(malformed, []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
	}{
		{
			name: "info",
			args: []string{"info", adder},
			wantContain: []string{
				"Components: 6",
				"Connections: 6 (2 taps)",
				"Nets: 4",
				"Net 0: c0.O0 c2.I0 c3.I0",
				"Feedback loops: none",
			},
		},
		{
			name:        "info json",
			args:        []string{"info", "--json", adder},
			wantContain: []string{`"components": 6`, `"taps": 2`, `"c1.O0"`},
		},
		{
			name: "info reports loops",
			args: []string{"info", ring},
			wantContain: []string{
				"Connections: 3",
				"Feedback loops: 1",
				"c0, c1, c2",
			},
		},
		{
			name:        "simulate both high",
			args:        []string{"simulate", adder, "--set", "0=1", "--set", "1=1"},
			wantContain: []string{"Converged", "c4 (Output Pin) = 0", "c5 (Output Pin) = 1"},
		},
		{
			name:        "simulate one high",
			args:        []string{"simulate", adder, "--set", "0=1", "--set", "1=0"},
			wantContain: []string{"c4 (Output Pin) = 1", "c5 (Output Pin) = 0"},
		},
		{
			name:        "simulate unknown input",
			args:        []string{"simulate", adder, "--set", "0=x", "--set", "1=0"},
			wantContain: []string{"c0 (Input Pin) = X", "c4 (Output Pin) = X", "c5 (Output Pin) = 0"},
		},
		{
			name:    "simulate non-input",
			args:    []string{"simulate", adder, "--set", "2=1"},
			wantErr: true,
		},
		{
			name:    "simulate bad assignment",
			args:    []string{"simulate", adder, "--set", "0"},
			wantErr: true,
		},
		{
			name:    "simulate zero passes",
			args:    []string{"simulate", adder, "--max-passes", "0"},
			wantErr: true,
		},
		{
			name:    "missing file",
			args:    []string{"info", filepath.Join(testdata, "nope.json")},
			wantErr: true,
		},
		{
			name:    "malformed file",
			args:    []string{"info", malformed},
			wantErr: true,
		},
		{
			name:    "unknown export format",
			args:    []string{"export", adder, "--format", "gerber", "-o", filepath.Join(t.TempDir(), "x")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := run(t, tt.args...)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v\nOutput: %s", err, output)
				return
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(output, want) {
					t.Errorf("Output missing expected string: %q\nGot:\n%s", want, output)
				}
			}
		})
	}
}

func TestBookshelfRoundTripE2E(t *testing.T) {
	adder := filepath.Join(findTestdata(t), "half_adder.json")
	dir := t.TempDir()
	base := filepath.Join(dir, "adder")
	imported := filepath.Join(dir, "imported.json")

	out, err := run(t, "export", adder, "--format", "bookshelf", "-o", base)
	if err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}
	if !strings.Contains(out, "adder.nodes (6 nodes)") {
		t.Errorf("export output: %s", out)
	}

	out, err = run(t, "import", base+".nodes", base+".nets", "-o", imported)
	if err != nil {
		t.Fatalf("import: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Imported 6 components, 6 wires") {
		t.Errorf("import output: %s", out)
	}

	out, err = run(t, "simulate", imported, "--set", "0=1", "--set", "1=1")
	if err != nil {
		t.Fatalf("simulate: %v\n%s", err, out)
	}
	for _, want := range []string{"c4 (Output Pin) = 0", "c5 (Output Pin) = 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("imported circuit: missing %q\n%s", want, out)
		}
	}
}

func TestSexpExportE2E(t *testing.T) {
	adder := filepath.Join(findTestdata(t), "half_adder.json")
	base := filepath.Join(t.TempDir(), "adder")

	out, err := run(t, "export", adder, "--format", "sexp", "-o", base)
	if err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}
	if !strings.Contains(out, "6 components, 4 nets") {
		t.Errorf("export output: %s", out)
	}
	data, err := os.ReadFile(base + ".net")
	if err != nil {
		t.Fatalf("reading netlist: %v", err)
	}
	if !strings.HasPrefix(string(data), "(export") || !strings.Contains(string(data), "half_adder.json") {
		t.Errorf("netlist:\n%s", data)
	}
}

func TestRouteE2E(t *testing.T) {
	adder := filepath.Join(findTestdata(t), "half_adder.json")
	routed := filepath.Join(t.TempDir(), "routed.json")

	out, err := run(t, "route", adder, "-o", routed)
	if err != nil {
		t.Fatalf("route: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Routed 6 wires") || strings.Contains(out, "not orthogonal") {
		t.Errorf("route output: %s", out)
	}

	out, err = run(t, "info", routed)
	if err != nil {
		t.Fatalf("info: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Connections: 6 (2 taps)") || strings.Contains(out, "Problems") {
		t.Errorf("routed circuit: %s", out)
	}
}

func TestRenderE2E(t *testing.T) {
	adder := filepath.Join(findTestdata(t), "half_adder.json")
	img := filepath.Join(t.TempDir(), "adder.png")

	out, err := run(t, "render", adder, "-o", img, "--simulate", "--width", "320", "--height", "200")
	if err != nil {
		t.Fatalf("render: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Rendered 320x200") {
		t.Errorf("render output: %s", out)
	}
	f, err := os.Open(img)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != 320 || cfg.Height != 200 {
		t.Errorf("image is %dx%d", cfg.Width, cfg.Height)
	}
}

func TestSimulateChartE2E(t *testing.T) {
	adder := filepath.Join(findTestdata(t), "half_adder.json")
	chart := filepath.Join(t.TempDir(), "passes.png")

	out, err := run(t, "simulate", adder, "--chart", chart)
	if err != nil {
		t.Fatalf("simulate: %v\n%s", err, out)
	}
	if st, err := os.Stat(chart); err != nil || st.Size() == 0 {
		t.Errorf("chart not written: %v", err)
	}
}
