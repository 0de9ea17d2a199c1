package ui

import (
	"image"
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/OpenTraceLab/OpenTraceLogic/internal/snapshot"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/circuit"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/geom"
)

const (
	wireWidth = 2.0
	tapRadius = 4.0
	pinRadius = 3.0
)

// canvasView draws the circuit held by an editor through a camera.
type canvasView struct {
	cam *Camera
	ed  *Editor
	th  *material.Theme
}

func (v *canvasView) pt(p geom.Point) f32.Point {
	s := v.cam.WorldToScreen(p)
	return f32.Pt(float32(s.X), float32(s.Y))
}

func (v *canvasView) rect(r geom.Rect) image.Rectangle {
	a, b := v.pt(r.Min), v.pt(r.Max)
	return image.Rect(int(a.X), int(a.Y), int(math.Ceil(float64(b.X))), int(math.Ceil(float64(b.Y))))
}

func (v *canvasView) render(gtx layout.Context) {
	paint.Fill(gtx.Ops, snapshot.ColorBackground)
	v.renderGrid(gtx)

	for k := range v.ed.Circuit.Connections {
		v.renderWire(gtx, k)
	}
	for i := range v.ed.Circuit.Components {
		v.renderComponent(gtx, i)
	}
	for k := range v.ed.Circuit.Connections {
		v.renderTaps(gtx, k)
	}
	if from, to, ok := v.ed.Preview(); ok {
		renderLine(gtx, v.pt(from), v.pt(to), 1, snapshot.ColorSelected)
	}
}

// renderGrid draws grid lines every five grid steps once they are far
// enough apart to read.
func (v *canvasView) renderGrid(gtx layout.Context) {
	step := circuit.GridSize * 5
	if step*v.cam.Zoom < 12 {
		return
	}
	vis := v.cam.VisibleBounds()
	w, h := float32(gtx.Constraints.Max.X), float32(gtx.Constraints.Max.Y)
	for x := math.Floor(vis.Min.X/step) * step; x <= vis.Max.X; x += step {
		sx := v.pt(geom.Pt(x, 0)).X
		renderLine(gtx, f32.Pt(sx, 0), f32.Pt(sx, h), 1, snapshot.ColorGrid)
	}
	for y := math.Floor(vis.Min.Y/step) * step; y <= vis.Max.Y; y += step {
		sy := v.pt(geom.Pt(0, y)).Y
		renderLine(gtx, f32.Pt(0, sy), f32.Pt(w, sy), 1, snapshot.ColorGrid)
	}
}

func (v *canvasView) renderWire(gtx layout.Context, k int) {
	pts := v.ed.Circuit.Path(k)
	if len(pts) < 2 {
		return
	}
	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(v.pt(pts[0]))
	for _, p := range pts[1:] {
		path.LineTo(v.pt(p))
	}
	col := snapshot.SignalColor(v.ed.Circuit.Connections[k].Signal)
	width := float32(wireWidth)
	if v.ed.Selected.Connection == k {
		col = snapshot.ColorSelected
		width *= 1.5
	}
	paint.FillShape(gtx.Ops, col, clip.Stroke{
		Path:  path.End(),
		Width: width,
	}.Op())
}

func (v *canvasView) renderTaps(gtx layout.Context, k int) {
	for t := range v.ed.Circuit.Connections[k].Taps {
		at, err := v.ed.Circuit.TapPoint(k, t)
		if err != nil {
			continue
		}
		renderDot(gtx, v.pt(at), tapRadius, snapshot.ColorTap)
	}
}

func (v *canvasView) renderComponent(gtx layout.Context, i int) {
	comp := &v.ed.Circuit.Components[i]
	r := v.rect(comp.Footprint())
	corner := int(4 * v.cam.Zoom)

	body := snapshot.ColorBody
	if comp.Kind == circuit.KindInputPin || comp.Kind == circuit.KindOutputPin {
		body = snapshot.SignalColor(comp.Value)
		body.A = 70
	}
	paint.FillShape(gtx.Ops, body, clip.UniformRRect(r, corner).Op(gtx.Ops))

	outline := snapshot.OutlineColor(comp.Color)
	stroke := float32(math.Max(1, comp.StrokeWidth*v.cam.Zoom))
	if v.ed.Selected.Component == i {
		outline = snapshot.ColorSelected
		stroke *= 2
	}
	paint.FillShape(gtx.Ops, outline, clip.Stroke{
		Path:  clip.UniformRRect(r, corner).Path(gtx.Ops),
		Width: stroke,
	}.Op())

	for pin := 0; pin < comp.Inputs; pin++ {
		renderDot(gtx, v.pt(comp.InputPin(pin)), pinRadius, snapshot.ColorOutline)
	}
	for pin := 0; pin < comp.Outputs; pin++ {
		renderDot(gtx, v.pt(comp.OutputPin(pin)), pinRadius, snapshot.SignalColor(comp.Value))
	}

	if v.cam.Zoom < 0.4 {
		return
	}
	c := v.pt(comp.Footprint().Center())
	renderLabel(gtx, v.th, c, snapshot.Label(comp), 12*v.cam.Zoom, snapshot.ColorText)
}

func renderLine(gtx layout.Context, a, b f32.Point, width float32, col color.NRGBA) {
	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(a)
	path.LineTo(b)
	paint.FillShape(gtx.Ops, col, clip.Stroke{
		Path:  path.End(),
		Width: width,
	}.Op())
}

func renderDot(gtx layout.Context, c f32.Point, radius float32, col color.NRGBA) {
	paint.FillShape(gtx.Ops, col, clip.Ellipse{
		Min: image.Pt(int(c.X-radius), int(c.Y-radius)),
		Max: image.Pt(int(c.X+radius), int(c.Y+radius)),
	}.Op(gtx.Ops))
}

// renderLabel centres txt on c.
func renderLabel(gtx layout.Context, th *material.Theme, c f32.Point, txt string, size float64, col color.NRGBA) {
	lbl := material.Label(th, unit.Sp(float32(size)), txt)
	lbl.Color = col
	lbl.Alignment = text.Middle
	lbl.MaxLines = 1
	gtx.Constraints.Min = image.Point{}

	// Measure first so the text can be centred
	macro := op.Record(gtx.Ops)
	dims := lbl.Layout(gtx)
	_ = macro.Stop()

	stack := op.Offset(image.Pt(int(c.X)-dims.Size.X/2, int(c.Y)-dims.Size.Y/2)).Push(gtx.Ops)
	lbl.Layout(gtx)
	stack.Pop()
}
