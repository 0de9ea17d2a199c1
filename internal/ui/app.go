package ui

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"time"

	"gioui.org/app"
	gfont "gioui.org/font"
	"gioui.org/font/gofont"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"github.com/oligo/gioview/menu"
	"github.com/oligo/gioview/theme"
	"golang.org/x/exp/shiny/materialdesign/icons"

	"github.com/OpenTraceLab/OpenTraceLogic/pkg/circuit"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/geom"
)

const untitled = "untitled.json"

// App is the editor window.
type App struct {
	window *app.Window
	ops    op.Ops

	gvTheme    *theme.Theme
	monoShaper *text.Shaper
	darkMode   bool

	cfg     *Config
	cfgPath string

	ed  *Editor
	cam *Camera

	fitted  bool
	editing bool
	panning bool
	lastPan geom.Point

	placeIcon  *widget.Icon
	runIcon    *widget.Icon
	stopIcon   *widget.Icon
	saveIcon   *widget.Icon
	deleteIcon *widget.Icon
	fitIcon    *widget.Icon

	placeBtn  widget.Clickable
	simBtn    widget.Clickable
	saveBtn   widget.Clickable
	deleteBtn widget.Clickable
	fitBtn    widget.Clickable
	placeMenu *menu.DropdownMenu

	darkModeSwitch widget.Bool

	logs          []string
	logText       string
	logSelectable widget.Selectable
	logList       widget.List
}

// New creates the editor for w and opens path when it is not empty.
func New(w *app.Window, path string) *App {
	if w == nil {
		w = new(app.Window)
	}
	w.Option(app.Title("OpenTraceLogic"), app.Size(unit.Dp(1360), unit.Dp(860)))

	a := &App{
		window:  w,
		gvTheme: theme.NewTheme("", nil, true),
		cam:     NewCamera(0, 0),
	}
	if mono := filterMonoFaces(); len(mono) > 0 {
		a.monoShaper = text.NewShaper(text.WithCollection(mono), text.NoSystemFonts())
	}
	a.loadIcons()
	a.logSelectable.WrapPolicy = text.WrapGraphemes
	a.logList.Axis = layout.Vertical
	a.logList.ScrollToEnd = true

	a.cfg = DefaultConfig()
	if p, err := ConfigPath(); err == nil {
		a.cfgPath = p
		if cfg, err := LoadConfig(p); err == nil {
			a.cfg = cfg
		} else {
			a.Logf("[WARN] %v", err)
		}
	}
	a.darkMode = a.cfg.DarkMode
	a.darkModeSwitch.Value = a.darkMode
	a.applyPalette()

	ed, err := NewEditor(nil, a.cfg.SimConfig())
	if err != nil {
		a.Logf("[WARN] %v, using engine defaults", err)
		ed, _ = NewEditor(nil, nil)
	}
	ed.SetLogger(a.Logf)
	a.ed = ed
	a.placeMenu = a.buildPlaceMenu()

	a.Logf("[BOOT] Editor ready")
	if path != "" {
		if err := a.ed.Load(path); err != nil {
			a.Logf("[ERROR] %v", err)
			a.ed.Path = path
		}
	}
	if a.cfg.SimulateOnOpen {
		a.ed.SetSimulate(true)
	}
	return a
}

func (a *App) loadIcons() {
	load := func(data []byte) *widget.Icon {
		icon, err := widget.NewIcon(data)
		if err != nil {
			return nil
		}
		return icon
	}
	a.placeIcon = load(icons.ContentAddBox)
	a.runIcon = load(icons.AVPlayArrow)
	a.stopIcon = load(icons.AVStop)
	a.saveIcon = load(icons.ContentSave)
	a.deleteIcon = load(icons.ActionDelete)
	a.fitIcon = load(icons.NavigationFullscreen)
}

// Run blocks processing window events until the window closes.
func (a *App) Run() error {
	for {
		e := a.window.Event()
		switch ev := e.(type) {
		case app.DestroyEvent:
			return ev.Err
		case app.FrameEvent:
			gtx := app.NewContext(&a.ops, ev)
			a.layout(gtx)
			ev.Frame(gtx.Ops)
		}
	}
}

func (a *App) layout(gtx layout.Context) layout.Dimensions {
	paint.FillShape(gtx.Ops, a.gvTheme.Palette.Bg, clip.Rect{Max: gtx.Constraints.Max}.Op())

	children := []layout.FlexChild{
		layout.Rigid(a.layoutToolbar),
		layout.Flexed(1, a.layoutCanvas),
	}
	if a.cfg.ShowLog {
		children = append(children, layout.Rigid(a.layoutLogPane))
	}
	children = append(children, layout.Rigid(a.layoutStatusBar))
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
}

func (a *App) layoutToolbar(gtx layout.Context) layout.Dimensions {
	if a.placeBtn.Clicked(gtx) {
		a.placeMenu.ToggleVisibility(gtx)
	}
	if a.simBtn.Clicked(gtx) {
		a.ed.SetSimulate(!a.ed.Simulate)
	}
	if a.saveBtn.Clicked(gtx) {
		a.save()
	}
	if a.deleteBtn.Clicked(gtx) {
		a.deleteSelection()
	}
	if a.fitBtn.Clicked(gtx) {
		a.fitView()
	}

	simLabel, simIcon := "Simulate", a.runIcon
	if a.ed.Simulate {
		simLabel, simIcon = "Stop", a.stopIcon
	}
	place := "Place"
	if a.ed.Place != circuit.KindUnknown {
		place = a.ed.Place.String()
	}

	inset := layout.Inset{Left: unit.Dp(12), Right: unit.Dp(12), Top: unit.Dp(8), Bottom: unit.Dp(8)}
	return inset.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		gap := layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout)
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				dims := a.layoutTool(gtx, &a.placeBtn, a.placeIcon, place, a.ed.Place != circuit.KindUnknown)
				a.placeMenu.Layout(gtx, a.gvTheme)
				return dims
			}),
			gap,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return a.layoutTool(gtx, &a.simBtn, simIcon, simLabel, a.ed.Simulate)
			}),
			gap,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return a.layoutTool(gtx, &a.saveBtn, a.saveIcon, "Save", false)
			}),
			gap,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return a.layoutTool(gtx, &a.deleteBtn, a.deleteIcon, "Delete", false)
			}),
			gap,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return a.layoutTool(gtx, &a.fitBtn, a.fitIcon, "Fit", false)
			}),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions { return layout.Dimensions{} }),
			layout.Rigid(material.Body2(a.gvTheme.Theme, "Dark mode").Layout),
			gap,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				prev := a.darkModeSwitch.Value
				d := material.Switch(a.gvTheme.Theme, &a.darkModeSwitch, "Dark mode").Layout(gtx)
				if prev != a.darkModeSwitch.Value {
					a.setDarkMode(a.darkModeSwitch.Value)
				}
				return d
			}),
		)
	})
}

// layoutTool draws a toolbar button: icon plus label on a rounded card.
func (a *App) layoutTool(gtx layout.Context, click *widget.Clickable, icon *widget.Icon, label string, active bool) layout.Dimensions {
	return click.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		bg := a.gvTheme.Bg2
		fg := a.gvTheme.Palette.Fg
		if active {
			bg = a.gvTheme.Palette.ContrastBg
			fg = a.gvTheme.Palette.ContrastFg
		}
		macro := op.Record(gtx.Ops)
		dims := layout.UniformInset(unit.Dp(6)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					size := gtx.Dp(unit.Dp(18))
					gtx.Constraints.Min = image.Pt(size, size)
					gtx.Constraints.Max = gtx.Constraints.Min
					if icon == nil {
						return layout.Dimensions{Size: gtx.Constraints.Min}
					}
					return icon.Layout(gtx, fg)
				}),
				layout.Rigid(layout.Spacer{Width: unit.Dp(6)}.Layout),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					lbl := material.Body2(a.gvTheme.Theme, label)
					lbl.Color = fg
					return lbl.Layout(gtx)
				}),
			)
		})
		call := macro.Stop()

		r := gtx.Dp(unit.Dp(6))
		paint.FillShape(gtx.Ops, bg, clip.UniformRRect(image.Rectangle{Max: dims.Size}, r).Op(gtx.Ops))
		call.Add(gtx.Ops)
		return dims
	})
}

func (a *App) layoutCanvas(gtx layout.Context) layout.Dimensions {
	size := gtx.Constraints.Max
	a.cam.UpdateScreenSize(size.X, size.Y)
	if !a.fitted && size.X > 0 && size.Y > 0 {
		a.fitted = true
		a.fitView()
		gtx.Execute(key.FocusCmd{Tag: a.cam})
	}

	a.handleKeys(gtx)
	a.handlePointer(gtx)

	area := clip.Rect{Max: size}.Push(gtx.Ops)
	event.Op(gtx.Ops, a.cam)
	view := canvasView{cam: a.cam, ed: a.ed, th: a.gvTheme.Theme}
	view.render(gtx)
	area.Pop()

	return layout.Dimensions{Size: size}
}

func (a *App) handleKeys(gtx layout.Context) {
	for {
		ev, ok := gtx.Event(key.Filter{Focus: a.cam})
		if !ok {
			break
		}
		ke, ok := ev.(key.Event)
		if !ok || ke.State != key.Press {
			continue
		}
		center := func() (float64, float64) {
			return float64(a.cam.ScreenWidth) / 2, float64(a.cam.ScreenHeight) / 2
		}
		switch ke.Name {
		case "+", "=":
			x, y := center()
			a.cam.ZoomAt(x, y, 1.2)
		case "-":
			x, y := center()
			a.cam.ZoomAt(x, y, 0.8)
		case key.NameSpace:
			a.fitView()
		case key.NameDeleteBackward, key.NameDeleteForward:
			a.deleteSelection()
		case key.NameEscape:
			a.ed.Cancel()
		case "S":
			if ke.Modifiers.Contain(key.ModShortcut) {
				a.save()
			} else {
				a.ed.SetSimulate(!a.ed.Simulate)
			}
		case "]":
			a.report(a.ed.AdjustInputs(1))
		case "[":
			a.report(a.ed.AdjustInputs(-1))
		case ".":
			a.report(a.ed.AdjustScale(0.5))
		case ",":
			a.report(a.ed.AdjustScale(-0.5))
		}
		gtx.Execute(op.InvalidateCmd{})
	}
}

func (a *App) handlePointer(gtx layout.Context) {
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  a.cam,
			Kinds:   pointer.Press | pointer.Drag | pointer.Release | pointer.Cancel | pointer.Scroll,
			ScrollY: pointer.ScrollRange{Min: -1000, Max: 1000},
		})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		screen := geom.Pt(float64(pe.Position.X), float64(pe.Position.Y))
		at := a.cam.ScreenToWorld(screen.X, screen.Y)

		switch pe.Kind {
		case pointer.Press:
			gtx.Execute(key.FocusCmd{Tag: a.cam})
			if pe.Buttons == pointer.ButtonPrimary {
				a.editing = true
				a.ed.Press(at)
			} else {
				a.panning = true
				a.lastPan = screen
			}
		case pointer.Drag:
			if a.panning {
				d := screen.Sub(a.lastPan)
				a.cam.Pan(d.X, d.Y)
				a.lastPan = screen
			} else if a.editing {
				a.ed.Drag(at)
			}
		case pointer.Release:
			if a.editing {
				a.ed.Release(at)
			}
			a.editing, a.panning = false, false
		case pointer.Cancel:
			if a.editing {
				a.ed.Cancel()
			}
			a.editing, a.panning = false, false
		case pointer.Scroll:
			if pe.Scroll.Y != 0 {
				factor := 1.0 - float64(pe.Scroll.Y)*0.01
				if factor < 0.5 {
					factor = 0.5
				}
				a.cam.ZoomAt(screen.X, screen.Y, factor)
			}
		}
		gtx.Execute(op.InvalidateCmd{})
	}
}

func (a *App) layoutLogPane(gtx layout.Context) layout.Dimensions {
	h := gtx.Dp(unit.Dp(140))
	gtx.Constraints.Min.Y = h
	gtx.Constraints.Max.Y = h
	size := image.Pt(gtx.Constraints.Max.X, h)
	paint.FillShape(gtx.Ops, a.gvTheme.Bg2, clip.Rect{Max: size}.Op())

	return layout.Inset{Left: unit.Dp(16), Right: unit.Dp(16), Top: unit.Dp(6), Bottom: unit.Dp(6)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		gtx.Constraints.Min = gtx.Constraints.Max
		return a.logList.Layout(gtx, 1, func(gtx layout.Context, _ int) layout.Dimensions {
			label := material.Body2(a.gvTheme.Theme, a.logText)
			label.State = &a.logSelectable
			label.WrapPolicy = text.WrapGraphemes
			label.Alignment = text.Start
			label.Font.Typeface = gfont.Typeface("Go Mono")
			if a.monoShaper != nil {
				label.Shaper = a.monoShaper
			}
			label.Color = a.opaqueFg()
			label.SelectionColor = a.selectionColor()
			return label.Layout(gtx)
		})
	})
}

func (a *App) layoutStatusBar(gtx layout.Context) layout.Dimensions {
	inset := layout.Inset{Left: unit.Dp(16), Right: unit.Dp(16), Top: unit.Dp(8), Bottom: unit.Dp(8)}
	return inset.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
			layout.Rigid(material.Body2(a.gvTheme.Theme, a.ed.Status()).Layout),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions { return layout.Dimensions{} }),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				name := "unsaved"
				if a.ed.Path != "" {
					name = filepath.Base(a.ed.Path)
				}
				zoom := fmt.Sprintf("%s | %.0f%%", name, a.cam.Zoom*100)
				return material.Body2(a.gvTheme.Theme, zoom).Layout(gtx)
			}),
		)
	})
}

func (a *App) buildPlaceMenu() *menu.DropdownMenu {
	kinds := circuit.Kinds()
	opts := make([]menu.MenuOption, 0, len(kinds))
	for _, k := range kinds {
		kind := k
		opts = append(opts, menu.MenuOption{
			OnClicked: func() error {
				a.ed.Place = kind
				a.Logf("[INFO] Click the canvas to place %s", kind)
				return nil
			},
			Layout: func(gtx menu.C, th *theme.Theme) menu.D {
				lbl := material.Body1(th.Theme, kind.String())
				if kind == a.ed.Place {
					lbl.Color = th.Palette.ContrastBg
				}
				return layout.Inset{Left: unit.Dp(4), Right: unit.Dp(4)}.Layout(gtx, lbl.Layout)
			},
		})
	}
	drop := menu.NewDropdownMenu([][]menu.MenuOption{opts})
	drop.MaxWidth = unit.Dp(220)
	return drop
}

func (a *App) fitView() {
	if len(a.ed.Circuit.Components) == 0 {
		a.cam.Center = geom.Point{}
		a.cam.Zoom = 1
		return
	}
	a.cam.Fit(a.ed.Circuit.Bounds().Inflate(circuit.BaseHeight))
}

func (a *App) save() {
	path := a.ed.Path
	if path == "" {
		path = untitled
	}
	a.report(a.ed.Save(path))
}

func (a *App) deleteSelection() {
	a.report(a.ed.Delete())
}

func (a *App) report(err error) {
	if err != nil {
		a.Logf("[ERROR] %v", err)
	}
}

func (a *App) applyPalette() {
	if a.gvTheme == nil {
		return
	}
	if a.darkMode {
		a.gvTheme.WithPalette(theme.Palette{
			Bg:         color.NRGBA{R: 18, G: 20, B: 26, A: 255},
			Fg:         color.NRGBA{R: 233, G: 236, B: 245, A: 255},
			ContrastBg: color.NRGBA{R: 120, G: 150, B: 255, A: 255},
			ContrastFg: color.NRGBA{R: 12, G: 16, B: 24, A: 255},
			Bg2:        color.NRGBA{R: 34, G: 40, B: 50, A: 255},
		})
	} else {
		a.gvTheme.WithPalette(theme.Palette{
			Bg:         color.NRGBA{R: 245, G: 247, B: 253, A: 255},
			Fg:         color.NRGBA{R: 34, G: 37, B: 49, A: 255},
			ContrastBg: color.NRGBA{R: 80, G: 120, B: 255, A: 255},
			ContrastFg: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
			Bg2:        color.NRGBA{R: 225, G: 230, B: 244, A: 255},
		})
	}
}

func (a *App) setDarkMode(enabled bool) {
	if a.darkMode == enabled {
		return
	}
	a.darkMode = enabled
	a.darkModeSwitch.Value = enabled
	a.applyPalette()
	a.cfg.DarkMode = enabled
	if a.cfgPath != "" {
		if err := SaveConfig(a.cfgPath, a.cfg); err != nil {
			a.Logf("[ERROR] Failed to save config: %v", err)
		}
	}
	a.invalidate()
}

func (a *App) invalidate() {
	if a.window != nil {
		a.window.Invalidate()
	}
}

// Logf appends a timestamped line to the log pane.
func (a *App) Logf(format string, args ...any) {
	prefix := time.Now().Format(time.Stamp)
	entry := fmt.Sprintf("[%s] %s", prefix, fmt.Sprintf(format, args...))
	a.logs = append(a.logs, entry)
	a.logText = strings.Join(a.logs, "\n")
	a.logSelectable.SetText(a.logText)
	a.invalidate()
}

func (a *App) opaqueFg() color.NRGBA {
	fg := a.gvTheme.Palette.Fg
	fg.A = 0xFF
	return fg
}

func (a *App) selectionColor() color.NRGBA {
	bg := a.gvTheme.Palette.ContrastBg
	return color.NRGBA{R: bg.R, G: bg.G, B: bg.B, A: 0x88}
}

func filterMonoFaces() []gfont.FontFace {
	var mono []gfont.FontFace
	for _, face := range gofont.Collection() {
		if face.Font.Typeface == gfont.Typeface("Go Mono") {
			mono = append(mono, face)
		}
	}
	return mono
}
