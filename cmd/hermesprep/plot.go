package main

import (
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/ezoic/hermes/pkg/errors"
)

const histogramBins = 20

// saveHistograms writes one PNG per numeric column comparing the raw and the
// prepared distribution side by side.
func saveHistograms(dir string, columns []string, raw, prepared map[string][]float64) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create plot directory")
	}

	var paths []string
	for _, name := range columns {
		before, err := histogram(name+" (raw)", raw[name])
		if err != nil {
			return paths, err
		}
		after, err := histogram(name+" (prepared)", prepared[name])
		if err != nil {
			return paths, err
		}

		img := vgimg.New(10*vg.Inch, 4*vg.Inch)
		tiles := draw.Tiles{Rows: 1, Cols: 2, PadX: vg.Millimeter * 4}
		canvases := plot.Align([][]*plot.Plot{{before, after}}, tiles, draw.New(img))
		before.Draw(canvases[0][0])
		after.Draw(canvases[0][1])

		path := filepath.Join(dir, name+".png")
		f, err := os.Create(path)
		if err != nil {
			return paths, errors.Wrap(err, "failed to create file")
		}
		if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
			_ = f.Close()
			return paths, errors.Wrapf(err, "failed to write %s", path)
		}
		if err := f.Close(); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func histogram(title string, values []float64) (*plot.Plot, error) {
	present := make(plotter.Values, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "count"
	if len(present) == 0 {
		return p, nil
	}

	h, err := plotter.NewHist(present, histogramBins)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build histogram %s", title)
	}
	p.Add(h)
	return p, nil
}
