// Package preview shows the camera image with each player's controls drawn
// over it.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"gocv.io/x/gocv"

	"github.com/ayusman/volante/internal/app"
	"github.com/ayusman/volante/internal/detector"
	"github.com/ayusman/volante/internal/gesture"
)

const (
	barWidth    = 14
	barOffset   = 0.12
	wristRadius = 15
	font        = gocv.FontHersheyComplex
	fontScale   = 0.5
)

var (
	white = color.RGBA{255, 255, 255, 0}
	black = color.RGBA{0, 0, 0, 0}
	red   = color.RGBA{220, 0, 0, 0}

	bandColors = map[gesture.VerticalBand]color.RGBA{
		gesture.High: {45, 201, 55, 0},
		gesture.Mid:  {231, 180, 22, 0},
		gesture.Low:  {204, 50, 50, 0},
	}
)

// Overlay draws the controller state onto frames.
type Overlay struct {
	vertical      gesture.Trigger
	minConfidence float64
	slots         int
}

// NewOverlay creates an Overlay for the given thresholds and player count.
func NewOverlay(config gesture.Config, slots int) *Overlay {
	return &Overlay{
		vertical:      config.Vertical,
		minConfidence: config.MinConfidence,
		slots:         slots,
	}
}

// Draw annotates img in place.
func (o *Overlay) Draw(img *gocv.Mat, snap app.Snapshot) {
	size := image.Point{X: img.Cols(), Y: img.Rows()}

	if o.slots > 1 {
		gocv.Line(img, image.Pt(size.X/2, 0), image.Pt(size.X/2, size.Y), white, 2)
	}

	for _, s := range snap.Slots {
		if !s.Assigned {
			continue
		}
		o.drawBar(img, s, size)
		o.drawWheel(img, s, size)
	}

	drawLabel(img, keysText(snap), image.Pt(0, 0), false)
	drawLabel(img, "Press 'q' to quit", image.Pt(0, size.Y), true)
	if snap.Paused {
		drawLabel(img, "PAUSED", image.Pt(size.X/2, size.Y), true)
	}
}

func (o *Overlay) drawBar(img *gocv.Mat, s app.SlotState, size image.Point) {
	b, ok := layoutBar(s, o.vertical, o.minConfidence, size)
	if !ok {
		return
	}

	gocv.Rectangle(img, b.high, bandColors[gesture.High], -1)
	gocv.Rectangle(img, b.mid, bandColors[gesture.Mid], -1)
	gocv.Rectangle(img, b.low, bandColors[gesture.Low], -1)
	gocv.Rectangle(img, b.high.Union(b.low), white, 1)
	if b.hasPointer {
		gocv.Line(img, image.Pt(b.mid.Min.X, b.pointer), image.Pt(b.mid.Max.X, b.pointer), white, 5)
	}

	label := fmt.Sprintf("P%d", s.ID)
	gocv.PutText(img, label, image.Pt(b.high.Min.X, b.high.Min.Y-6), font, fontScale, white, 1)
}

func (o *Overlay) drawWheel(img *gocv.Mat, s app.SlotState, size image.Point) {
	w, ok := layoutWheel(s.Body, o.minConfidence, size)
	if !ok {
		// show the wrists that were found so a missing one is obvious
		for _, name := range []detector.JointName{detector.LeftWrist, detector.RightWrist} {
			if p, ok := s.Body.Get(name, o.minConfidence); ok {
				gocv.Circle(img, toPixel(p, size), 5, red, -1)
			}
		}
		return
	}

	c := bandColors[s.Classification.Band]
	if !s.Classification.HasHeight {
		c = black
	}
	gocv.Circle(img, w.center, w.radius, c, 10)

	for _, hand := range []struct {
		at    image.Point
		label string
	}{{w.left, "L"}, {w.right, "R"}} {
		gocv.Circle(img, hand.at, wristRadius, white, -1)
		putTextCentered(img, hand.label, hand.at, black)
	}
}

// bar is the height gauge next to a player: one band per vertical value and
// the current pointer.
type bar struct {
	high, mid, low image.Rectangle
	pointer        int
	hasPointer     bool
}

// layoutBar places the gauge beside the body using the same scale as the
// height metric, so the pointer crosses a band edge exactly when the
// classifier's enter threshold is crossed.
func layoutBar(s app.SlotState, vertical gesture.Trigger, minConfidence float64, size image.Point) (bar, bool) {
	if s.Body == nil {
		return bar{}, false
	}
	cx, ok := s.Body.CenterX(minConfidence)
	if !ok {
		return bar{}, false
	}

	top, bottom := gesture.HeightScale(s.Body, minConfidence)
	yAt := func(metric float64) int {
		return clamp(int(math.Round((bottom-metric*(bottom-top))*float64(size.Y))), 0, size.Y)
	}

	x := clamp(int(math.Round((cx+barOffset)*float64(size.X))), 0, size.X-barWidth)
	yTop, yUpper, yLower, yBottom := yAt(1), yAt(vertical.Upper.Enter), yAt(vertical.Lower.Enter), yAt(0)

	b := bar{
		high: image.Rect(x, yTop, x+barWidth, yUpper),
		mid:  image.Rect(x, yUpper, x+barWidth, yLower),
		low:  image.Rect(x, yLower, x+barWidth, yBottom),
	}
	if s.Classification.HasHeight {
		b.pointer = yAt(s.Classification.Height)
		b.hasPointer = true
	}
	return b, true
}

// wheel is the steering wheel drawn through both wrists.
type wheel struct {
	center      image.Point
	radius      int
	left, right image.Point
}

func layoutWheel(body detector.Body, minConfidence float64, size image.Point) (wheel, bool) {
	a, okA := body.Get(detector.LeftWrist, minConfidence)
	b, okB := body.Get(detector.RightWrist, minConfidence)
	if !okA || !okB {
		return wheel{}, false
	}

	pa, pb := toPixel(a, size), toPixel(b, size)
	if pb.X < pa.X {
		pa, pb = pb, pa
	}

	dx := float64(pb.X - pa.X)
	dy := float64(pb.Y - pa.Y)
	return wheel{
		center: image.Pt((pa.X+pb.X)/2, (pa.Y+pb.Y)/2),
		radius: int(math.Round(math.Hypot(dx, dy) / 2)),
		left:   pa,
		right:  pb,
	}, true
}

func keysText(snap app.Snapshot) string {
	if len(snap.Keys) == 0 {
		return "no keys"
	}
	names := make([]string, len(snap.Keys))
	for i, k := range snap.Keys {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// drawLabel writes white text on a black box anchored at the top-left corner
// at, or at the bottom-left corner when bottom is set.
func drawLabel(img *gocv.Mat, text string, at image.Point, bottom bool) {
	ts := gocv.GetTextSize(text, font, fontScale, 1)
	pad := 4
	box := image.Rect(at.X, at.Y, at.X+ts.X+2*pad, at.Y+ts.Y+2*pad)
	if bottom {
		box = box.Sub(image.Pt(0, box.Dy()))
	}
	gocv.Rectangle(img, box, black, -1)
	gocv.PutText(img, text, image.Pt(box.Min.X+pad, box.Max.Y-pad), font, fontScale, white, 1)
}

func putTextCentered(img *gocv.Mat, text string, center image.Point, c color.RGBA) {
	ts := gocv.GetTextSize(text, font, fontScale, 1)
	gocv.PutText(img, text, image.Pt(center.X-ts.X/2, center.Y+ts.Y/2), font, fontScale, c, 1)
}

func toPixel(p detector.Point2D, size image.Point) image.Point {
	return image.Pt(
		int(math.Round(p.X*float64(size.X))),
		int(math.Round(p.Y*float64(size.Y))),
	)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
