package trace

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	chartBackground = color.RGBA{R: 16, G: 18, B: 24, A: 255}
	chartAxis       = color.RGBA{R: 90, G: 90, B: 100, A: 255}
	chartHeading    = color.RGBA{R: 120, G: 200, B: 255, A: 255}
	chartTransition = color.RGBA{R: 255, G: 90, B: 70, A: 255}
	chartLabel      = color.RGBA{R: 230, G: 230, B: 230, A: 255}
)

const chartMargin = 40

// RenderChart draws heading over time. Frame commands are plotted as dots;
// each animated transition is a vertical band as wide as its duration.
func (r *Recorder) RenderChart(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{chartBackground}, image.Point{}, draw.Src)

	plotW := width - 2*chartMargin
	plotH := height - 2*chartMargin
	if plotW <= 0 || plotH <= 0 {
		return img
	}

	span := time.Second
	if last, ok := r.Last(); ok {
		end := last.At + last.Duration
		if end > span {
			span = end
		}
	}

	xOf := func(d time.Duration) int {
		return chartMargin + int(float64(plotW)*float64(d)/float64(span))
	}
	yOf := func(heading float64) int {
		return chartMargin + plotH - int(float64(plotH)*heading/360)
	}

	// Axes
	for x := chartMargin; x <= chartMargin+plotW; x++ {
		img.Set(x, chartMargin+plotH, chartAxis)
	}
	for y := chartMargin; y <= chartMargin+plotH; y++ {
		img.Set(chartMargin, y, chartAxis)
	}

	for _, c := range r.Commands {
		if c.Kind != Animated {
			continue
		}
		x0, x1 := xOf(c.At), xOf(c.At+c.Duration)
		if x1 == x0 {
			x1 = x0 + 1
		}
		for x := x0; x < x1 && x < width; x++ {
			for y := chartMargin; y < chartMargin+plotH; y += 3 {
				img.Set(x, y, chartTransition)
			}
		}
	}

	for _, c := range r.Commands {
		if c.Kind != Immediate {
			continue
		}
		x, y := xOf(c.At), yOf(c.Pose.Heading)
		img.Set(x, y, chartHeading)
		img.Set(x, y-1, chartHeading)
	}

	drawLabel(img, 4, chartMargin+4, "360")
	drawLabel(img, 4, chartMargin+plotH, "0")
	drawLabel(img, chartMargin, height-12, "0s")
	drawLabel(img, width-chartMargin-40, height-12, fmt.Sprintf("%.1fs", span.Seconds()))
	drawLabel(img, chartMargin+8, 20, fmt.Sprintf("heading | %d frames, %d transitions",
		r.Count(Immediate), r.Count(Animated)))
	return img
}

// WritePNG renders the chart and writes it to path.
func (r *Recorder) WritePNG(path string, width, height int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := png.Encode(f, r.RenderChart(width, height)); err != nil {
		return fmt.Errorf("encode chart: %w", err)
	}
	return nil
}

func drawLabel(img draw.Image, x, y int, text string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(chartLabel),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
