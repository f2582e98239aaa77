// Package render turns a path matrix into the per-step frames of the
// animation: a two-panel plot with every path drawn up to the current
// step on the left and the cross-sectional log-return distribution on
// the right. Axis bounds come from the precomputed scale state, never
// from the frame's own data, so every frame shares one coordinate
// system.
package render

import (
	"fmt"
	"image/color"
	"os"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"gbmviz/internal/gbm"
	"gbmviz/internal/stats"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 600

	// Horizontal split between the path panel and the distribution
	// panel, matching the 3:1 layout of the animation.
	pathPanelRatio = 0.75
)

var histColor = color.RGBA{G: 128, A: 255}

// Options controls frame geometry and histogram binning.
type Options struct {
	Width  int // output width in pixels
	Height int // output height in pixels
	Bins   stats.BinPolicy
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Bins == nil {
		o.Bins = stats.SqrtCount
	}
	return o
}

// FrameName returns the frame filename for step t. The index is
// zero-padded to at least the horizon's digit count so lexical order
// equals numeric order.
func FrameName(t, horizon int) string {
	width := len(strconv.Itoa(horizon))
	if width < 3 {
		width = 3
	}
	return fmt.Sprintf("gbm_%0*d.png", width, t)
}

// Frame renders the plot for step t to a single PNG file at path. It
// reads the shared matrix and scale without mutating them and does not
// depend on any other frame, so invocations may run concurrently.
func Frame(m gbm.Matrix, t int, scale stats.Scale, opts Options, path string) error {
	horizon := m.Steps()
	if t < 0 || t > horizon {
		return fmt.Errorf("%w: t=%d, horizon=%d", ErrFrameIndex, t, horizon)
	}
	opts = opts.withDefaults()

	left, err := pathPanel(m, t, scale)
	if err != nil {
		return err
	}
	right := distributionPanel(m, t, scale, opts.Bins)

	wpt := vg.Inch * vg.Length(opts.Width) / vgimg.DefaultDPI
	hpt := vg.Inch * vg.Length(opts.Height) / vgimg.DefaultDPI
	img := vgimg.New(wpt, hpt)
	dc := draw.New(img)

	split := wpt * pathPanelRatio
	left.Draw(draw.Crop(dc, 0, split-wpt, 0, 0))
	right.Draw(draw.Crop(dc, split, 0, 0, 0))

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		return err
	}
	return f.Close()
}

func pathPanel(m gbm.Matrix, t int, scale stats.Scale) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Geometric Brownian Motion (t=%d)", t)
	p.X.Label.Text = "Time Steps"
	p.Y.Label.Text = "Price"

	for j := 0; j < m.Paths(); j++ {
		pts := make(plotter.XYs, t+1)
		for s := 0; s <= t; s++ {
			pts[s].X = float64(s)
			pts[s].Y = m[s][j]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.LineStyle.Width = vg.Points(0.5)
		line.LineStyle.Color = plotutil.Color(j)
		p.Add(line)
	}

	// Fixed after Add: plotters expand axis ranges as they are added.
	p.X.Min, p.X.Max = 0, float64(horizonOrOne(m))
	p.Y.Min, p.Y.Max = 0, scale.MaxPrice
	return p, nil
}

func distributionPanel(m gbm.Matrix, t int, scale stats.Scale, bins stats.BinPolicy) *plot.Plot {
	p := plot.New()
	p.Title.Text = "Log-Returns Distribution"
	p.X.Label.Text = "Density"
	p.Y.Label.Text = "Log-Returns"

	// t = 0 has no accumulated returns; the panel stays empty but keeps
	// the run's fixed axes.
	if rets := m.RowLogReturns(t); rets != nil {
		p.Add(&hbars{hist: stats.NewHistogram(rets, bins), color: histColor})
	}

	bound := scale.SymmetricBound()
	if bound == 0 {
		bound = 0.5
	}
	density := scale.DensityBound()
	if density == 0 {
		density = 1
	}
	p.Y.Min, p.Y.Max = -bound, bound
	p.X.Min, p.X.Max = 0, density
	return p
}

func horizonOrOne(m gbm.Matrix) int {
	if h := m.Steps(); h > 0 {
		return h
	}
	return 1
}

// hbars draws a density histogram as horizontal bars growing from the
// density axis origin.
type hbars struct {
	hist  stats.Histogram
	color color.Color
}

func (b *hbars) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	for i, d := range b.hist.Density {
		if d == 0 {
			continue
		}
		x0, x1 := trX(0), trX(d)
		y0, y1 := trY(b.hist.Edges[i]), trY(b.hist.Edges[i+1])
		// Early-step densities can exceed the fixed axis bound; clip the
		// bar at the panel instead of painting past the frame.
		c.FillPolygon(b.color, c.ClipPolygonXY([]vg.Point{
			{X: x0, Y: y0},
			{X: x1, Y: y0},
			{X: x1, Y: y1},
			{X: x0, Y: y1},
		}))
	}
}

func (b *hbars) DataRange() (xmin, xmax, ymin, ymax float64) {
	if len(b.hist.Density) == 0 {
		return 0, 1, 0, 1
	}
	xmax = b.hist.Density[0]
	for _, d := range b.hist.Density {
		if d > xmax {
			xmax = d
		}
	}
	return 0, xmax, b.hist.Edges[0], b.hist.Edges[len(b.hist.Edges)-1]
}
