// Package snapshot renders a circuit to a PNG image without a window.
package snapshot

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/OpenTraceLab/OpenTraceLogic/pkg/circuit"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/geom"
)

// Options configures PNG rendering.
type Options struct {
	Width       int
	Height      int
	Padding     int     // margin around the circuit, in output pixels
	Supersample int     // render this many times larger, then downsample
	FontSize    float64 // label size in output points
	Labels      bool
	Grid        bool
}

// DefaultOptions returns sensible defaults for PNG rendering.
func DefaultOptions() Options {
	return Options{
		Width:       1024,
		Height:      768,
		Padding:     24,
		Supersample: 4,
		FontSize:    11,
		Labels:      true,
		Grid:        true,
	}
}

func (o Options) validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("snapshot: image size %dx%d", o.Width, o.Height)
	}
	if o.Supersample < 1 {
		return fmt.Errorf("snapshot: supersample must be at least 1, got %d", o.Supersample)
	}
	if 2*o.Padding >= o.Width || 2*o.Padding >= o.Height {
		return fmt.Errorf("snapshot: padding %d leaves no room", o.Padding)
	}
	return nil
}

// canvas is the large render target with the world-to-pixel transform.
type canvas struct {
	img    *image.RGBA
	z      *vector.Rasterizer
	face   font.Face
	zoom   float64
	origin geom.Point // world point drawn at pixel (offX, offY)
	offX   float64
	offY   float64
}

func (cv *canvas) px(p geom.Point) (float32, float32) {
	return float32((p.X-cv.origin.X)*cv.zoom + cv.offX), float32((p.Y-cv.origin.Y)*cv.zoom + cv.offY)
}

// polygon fills a closed polygon given in pixels. The rasterizer only
// covers the polygon's bounding box, clipped to the image.
func (cv *canvas) polygon(c color.Color, pts ...[2]float32) {
	if len(pts) < 3 {
		return
	}
	b := cv.img.Bounds()
	clamp := func(p [2]float32) [2]float32 {
		p[0] = min(max(p[0], float32(b.Min.X)), float32(b.Max.X))
		p[1] = min(max(p[1], float32(b.Min.Y)), float32(b.Max.Y))
		return p
	}
	minX, minY := float32(math.Inf(1)), float32(math.Inf(1))
	maxX, maxY := float32(math.Inf(-1)), float32(math.Inf(-1))
	for i := range pts {
		pts[i] = clamp(pts[i])
		minX, maxX = min(minX, pts[i][0]), max(maxX, pts[i][0])
		minY, maxY = min(minY, pts[i][1]), max(maxY, pts[i][1])
	}
	r := image.Rect(int(math.Floor(float64(minX))), int(math.Floor(float64(minY))),
		int(math.Ceil(float64(maxX))), int(math.Ceil(float64(maxY))))
	if r.Empty() {
		return
	}
	ox, oy := float32(r.Min.X), float32(r.Min.Y)
	cv.z.Reset(r.Dx(), r.Dy())
	cv.z.MoveTo(pts[0][0]-ox, pts[0][1]-oy)
	for _, p := range pts[1:] {
		cv.z.LineTo(p[0]-ox, p[1]-oy)
	}
	cv.z.ClosePath()
	cv.z.Draw(cv.img, r, image.NewUniform(c), image.Point{})
}

func (cv *canvas) rect(r geom.Rect, c color.Color) {
	x0, y0 := cv.px(r.Min)
	x1, y1 := cv.px(r.Max)
	cv.polygon(c, [2]float32{x0, y0}, [2]float32{x1, y0}, [2]float32{x1, y1}, [2]float32{x0, y1})
}

// outline strokes r with width w in pixels.
func (cv *canvas) outline(r geom.Rect, w float64, c color.Color) {
	corners := []geom.Point{r.Min, {X: r.Max.X, Y: r.Min.Y}, r.Max, {X: r.Min.X, Y: r.Max.Y}, r.Min}
	cv.polyline(corners, w, c)
}

func (cv *canvas) disc(p geom.Point, radius float64, c color.Color) {
	const n = 24
	cx, cy := cv.px(p)
	r := float32(radius)
	pts := make([][2]float32, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / n
		pts[i] = [2]float32{cx + r*float32(math.Cos(a)), cy + r*float32(math.Sin(a))}
	}
	cv.polygon(c, pts...)
}

// polyline strokes path with width w in pixels, rounding every joint.
func (cv *canvas) polyline(path []geom.Point, w float64, c color.Color) {
	half := float32(w / 2)
	for i := 0; i+1 < len(path); i++ {
		x0, y0 := cv.px(path[i])
		x1, y1 := cv.px(path[i+1])
		dx, dy := x1-x0, y1-y0
		l := float32(math.Hypot(float64(dx), float64(dy)))
		if l < 1e-3 {
			continue
		}
		nx, ny := -dy/l*half, dx/l*half
		cv.polygon(c,
			[2]float32{x0 + nx, y0 + ny}, [2]float32{x1 + nx, y1 + ny},
			[2]float32{x1 - nx, y1 - ny}, [2]float32{x0 - nx, y0 - ny})
	}
	for i := 1; i+1 < len(path); i++ {
		cv.disc(path[i], w/2, c)
	}
}

func (cv *canvas) textCentered(p geom.Point, s string, c color.Color) {
	if cv.face == nil || s == "" {
		return
	}
	x, y := cv.px(p)
	width := font.MeasureString(cv.face, s).Ceil()
	ascent := cv.face.Metrics().Ascent.Ceil()
	d := &font.Drawer{
		Dst:  cv.img,
		Src:  image.NewUniform(c),
		Face: cv.face,
		Dot:  fixed.Point26_6{X: fixed.I(int(x) - width/2), Y: fixed.I(int(y) + ascent*35/100)},
	}
	d.DrawString(s)
}

// Render draws c into a new image of opts.Width x opts.Height, fitting the
// circuit bounds inside the padding.
func Render(c *circuit.Circuit, opts Options) (*image.RGBA, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	ss := opts.Supersample
	large := image.NewRGBA(image.Rect(0, 0, opts.Width*ss, opts.Height*ss))
	cv := &canvas{img: large, z: vector.NewRasterizer(large.Bounds().Dx(), large.Bounds().Dy())}

	if opts.Labels {
		fnt, err := opentype.Parse(goregular.TTF)
		if err != nil {
			return nil, fmt.Errorf("snapshot: font: %w", err)
		}
		face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
			Size:    opts.FontSize * float64(ss),
			DPI:     72,
			Hinting: font.HintingNone,
		})
		if err != nil {
			return nil, fmt.Errorf("snapshot: font face: %w", err)
		}
		defer face.Close()
		cv.face = face
	}

	draw.Draw(large, large.Bounds(), image.NewUniform(ColorBackground), image.Point{}, draw.Src)

	bounds := c.Bounds()
	availW := float64((opts.Width - 2*opts.Padding) * ss)
	availH := float64((opts.Height - 2*opts.Padding) * ss)
	cv.zoom = float64(ss)
	if bounds.Width() > 0 && bounds.Height() > 0 {
		cv.zoom = math.Min(availW/bounds.Width(), availH/bounds.Height())
	}
	cv.origin = bounds.Center()
	cv.offX = float64(large.Bounds().Dx()) / 2
	cv.offY = float64(large.Bounds().Dy()) / 2

	if opts.Grid {
		drawGrid(cv)
	}
	line := math.Max(1, cv.zoom)
	for k := range c.Connections {
		cv.polyline(c.Path(k), 2*line, SignalColor(c.Connections[k].Signal))
	}
	for k := range c.Connections {
		for t := range c.Connections[k].Taps {
			if p, err := c.TapPoint(k, t); err == nil {
				cv.disc(p, 3.5*line, ColorTap)
			}
		}
	}
	for i := range c.Components {
		drawComponent(cv, &c.Components[i], line, opts.Labels)
	}

	final := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.CatmullRom.Scale(final, final.Bounds(), large, large.Bounds(), draw.Over, nil)
	return final, nil
}

func drawGrid(cv *canvas) {
	step := circuit.GridSize * 4 * cv.zoom
	if step < 8 {
		return
	}
	b := cv.img.Bounds()
	ox, oy := cv.px(geom.Point{})
	start := func(v float32) float64 {
		s := math.Mod(float64(v), step)
		if s < 0 {
			s += step
		}
		return s
	}
	for x := start(ox); x < float64(b.Dx()); x += step {
		cv.polygon(ColorGrid, [2]float32{float32(x), 0}, [2]float32{float32(x) + 1, 0},
			[2]float32{float32(x) + 1, float32(b.Dy())}, [2]float32{float32(x), float32(b.Dy())})
	}
	for y := start(oy); y < float64(b.Dy()); y += step {
		cv.polygon(ColorGrid, [2]float32{0, float32(y)}, [2]float32{float32(b.Dx()), float32(y)},
			[2]float32{float32(b.Dx()), float32(y) + 1}, [2]float32{0, float32(y) + 1})
	}
}

func drawComponent(cv *canvas, comp *circuit.Component, line float64, labels bool) {
	fp := comp.Footprint()
	body := ColorBody
	if comp.Kind == circuit.KindInputPin || comp.Kind == circuit.KindOutputPin {
		body = lighten(SignalColor(comp.Value))
	}
	cv.rect(fp, body)
	cv.outline(fp, math.Max(1, comp.StrokeWidth)*1.5*line, OutlineColor(comp.Color))

	pin := 2.5 * line
	for i := 0; i < comp.Inputs; i++ {
		cv.disc(comp.InputPin(i), pin, ColorOutline)
	}
	for i := 0; i < comp.Outputs; i++ {
		cv.disc(comp.OutputPin(i), pin, SignalColor(comp.Value))
	}

	if !labels {
		return
	}
	cv.textCentered(fp.Center(), Label(comp), ColorText)
}

func lighten(c color.NRGBA) color.NRGBA {
	mix := func(v uint8) uint8 { return uint8((int(v) + 3*255) / 4) }
	return color.NRGBA{R: mix(c.R), G: mix(c.G), B: mix(c.B), A: 255}
}

// WritePNG renders c and encodes it as PNG.
func WritePNG(w io.Writer, c *circuit.Circuit, opts Options) error {
	img, err := Render(c, opts)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("snapshot: encode: %w", err)
	}
	return nil
}

// SaveFile writes the PNG snapshot of c to path.
func SaveFile(path string, c *circuit.Circuit, opts Options) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := WritePNG(out, c, opts); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Label is the text drawn inside a component body.
func Label(comp *circuit.Component) string {
	switch comp.Kind {
	case circuit.KindInputPin, circuit.KindOutputPin:
		return comp.Value.String()
	case circuit.KindControlledBuffer:
		return "BUF EN"
	case circuit.KindControlledInverter:
		return "INV EN"
	case circuit.KindUnknown:
		return "?"
	}
	return comp.Kind.String()
}
