// Package imageprep normalizes images for computer vision models.
//
// Images are held as one gonum matrix per channel (height × width) with the
// raw 0..255 intensities as float64. Three normalizations are provided:
//
//   - RangeNormalize: divides every pixel by 255
//   - MinMax: rescales with the image-wide minimum and maximum to a target
//     range such as [0, 1] or [-1, 1]
//   - ChannelWise: z-score of each channel with its own mean and standard
//     deviation
//
// Resizing is done before conversion with Resize.
package imageprep

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"math"
	"os"

	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/hermes/pkg/errors"
)

// Method selects an image normalization.
type Method int

const (
	RangeNorm Method = iota + 1
	MinMaxNorm
	ChannelWiseNorm
)

func (m Method) String() string {
	switch m {
	case RangeNorm:
		return "RANGE_NORM"
	case MinMaxNorm:
		return "MINMAX"
	case ChannelWiseNorm:
		return "CHANNEL_WISE"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// Image is a multi-channel image with one plane per channel.
type Image struct {
	Planes []*mat.Dense
}

// Channels returns the number of planes.
func (img *Image) Channels() int { return len(img.Planes) }

// Dims returns the height and width.
func (img *Image) Dims() (h, w int) {
	if len(img.Planes) == 0 {
		return 0, 0
	}
	return img.Planes[0].Dims()
}

// FromImage converts src to planes. Gray images give one plane, everything
// else three (R, G, B); alpha is discarded. An empty image has no planes.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	h, w := b.Dy(), b.Dx()
	if h == 0 || w == 0 {
		return &Image{}
	}

	switch src.(type) {
	case *image.Gray, *image.Gray16:
		plane := mat.NewDense(h, w, nil)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				g := color.GrayModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
				plane.Set(y, x, float64(g.Y))
			}
		}
		return &Image{Planes: []*mat.Dense{plane}}
	}

	planes := []*mat.Dense{mat.NewDense(h, w, nil), mat.NewDense(h, w, nil), mat.NewDense(h, w, nil)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			planes[0].Set(y, x, float64(r>>8))
			planes[1].Set(y, x, float64(g>>8))
			planes[2].Set(y, x, float64(bl>>8))
		}
	}
	return &Image{Planes: planes}
}

// Open decodes a PNG or JPEG file.
func Open(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer func() { _ = f.Close() }()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", path)
	}
	return src, nil
}

// Load decodes a PNG or JPEG file into planes.
func Load(path string) (*Image, error) {
	src, err := Open(path)
	if err != nil {
		return nil, err
	}
	return FromImage(src), nil
}

// Resize scales src to width × height with Catmull-Rom interpolation.
func Resize(src image.Image, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.NewValidationError("size", "width and height must be positive",
			fmt.Sprintf("%dx%d", width, height))
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst, nil
}

// apply returns a copy of img with fn applied to every pixel; c is the channel.
func (img *Image) apply(fn func(c int, v float64) float64) *Image {
	out := &Image{Planes: make([]*mat.Dense, len(img.Planes))}
	for c, p := range img.Planes {
		dst := mat.DenseCopyOf(p)
		dst.Apply(func(_, _ int, v float64) float64 { return fn(c, v) }, dst)
		out.Planes[c] = dst
	}
	return out
}

// RangeNormalize maps 0..255 intensities to 0..1.
func RangeNormalize(img *Image) *Image {
	return img.apply(func(_ int, v float64) float64 { return v / 255.0 })
}

// MinMax rescales img to [lo, hi] using the minimum and maximum over all
// channels. lo and hi must satisfy -1 <= lo < hi <= 1.
func MinMax(img *Image, lo, hi float64) (*Image, error) {
	if !(lo < hi) || lo < -1 || hi > 1 {
		return nil, errors.NewValidationError("range", "must satisfy -1 <= lo < hi <= 1",
			fmt.Sprintf("(%g, %g)", lo, hi))
	}
	if img.Channels() == 0 {
		return nil, errors.NewModelError("MinMax", "image has no channels", errors.ErrEmptyData)
	}

	low, high := math.Inf(1), math.Inf(-1)
	for _, p := range img.Planes {
		low = math.Min(low, mat.Min(p))
		high = math.Max(high, mat.Max(p))
	}
	span := high - low
	if span == 0 {
		span = 1
	}
	return img.apply(func(_ int, v float64) float64 {
		return (v-low)/span*(hi-lo) + lo
	}), nil
}

// ChannelWise standardizes each channel with its own mean and population
// standard deviation. A constant channel maps to zero.
func ChannelWise(img *Image) *Image {
	means := make([]float64, img.Channels())
	stds := make([]float64, img.Channels())
	for c, p := range img.Planes {
		data := mat.DenseCopyOf(p).RawMatrix().Data
		mean, variance := stat.PopMeanVariance(data, nil)
		means[c], stds[c] = mean, math.Sqrt(variance)
		if stds[c] == 0 {
			stds[c] = 1
		}
	}
	return img.apply(func(c int, v float64) float64 {
		return (v - means[c]) / stds[c]
	})
}

// Normalize dispatches on method. lo and hi are only used by MinMaxNorm.
func Normalize(img *Image, method Method, lo, hi float64) (*Image, error) {
	switch method {
	case RangeNorm:
		return RangeNormalize(img), nil
	case MinMaxNorm:
		return MinMax(img, lo, hi)
	case ChannelWiseNorm:
		return ChannelWise(img), nil
	default:
		return nil, errors.Wrapf(errors.ErrNotImplemented, "image normalization %s", method)
	}
}

// Stats returns the mean and the range of each channel, for inspection.
func (img *Image) Stats() (means, mins, maxs []float64) {
	for _, p := range img.Planes {
		data := mat.DenseCopyOf(p).RawMatrix().Data
		means = append(means, stat.Mean(data, nil))
		mins = append(mins, floats.Min(data))
		maxs = append(maxs, floats.Max(data))
	}
	return means, mins, maxs
}
