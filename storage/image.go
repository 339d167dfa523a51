package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxDimension is the longest side, in pixels, of a stored image
const MaxDimension = 1600

// JPEGQuality is the compression quality for re-encoded JPEG output
const JPEGQuality = 85

// MaxPixels bounds the declared size of an upload. Decoders allocate the whole
// frame up front, so the header is checked before decoding.
const MaxPixels = 50_000_000

// Processing errors reported to the client
var (
	ErrTooLarge      = errors.New("file is too large")
	ErrTooManyPixels = errors.New("image dimensions are too large")
	ErrUnsupported   = errors.New("unsupported image format, only JPEG, PNG, GIF and WebP are accepted")
)

var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Image is an upload ready to be stored
type Image struct {
	Data   []byte
	MIME   string
	Ext    string
	Width  int
	Height int
}

// Process reads an upload of at most maxSize bytes, checks it is an image by
// sniffing its bytes and downscales it so neither side exceeds MaxDimension.
// Images already within bounds are stored as sent.
func Process(r io.Reader, maxSize int64) (*Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, ErrTooLarge
	}

	detected := http.DetectContentType(data)
	ext, ok := extensions[detected]
	if !ok {
		return nil, ErrUnsupported
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, ErrTooManyPixels
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	bounds := img.Bounds()
	if bounds.Dx() <= MaxDimension && bounds.Dy() <= MaxDimension {
		return &Image{Data: data, MIME: detected, Ext: ext, Width: bounds.Dx(), Height: bounds.Dy()}, nil
	}

	scaled := downscale(img, MaxDimension)
	var buf bytes.Buffer
	out := &Image{Width: scaled.Bounds().Dx(), Height: scaled.Bounds().Dy()}
	switch detected {
	case "image/png":
		err = png.Encode(&buf, scaled)
		out.MIME, out.Ext = "image/png", "png"
	case "image/gif":
		err = gif.Encode(&buf, scaled, nil)
		out.MIME, out.Ext = "image/gif", "gif"
	default:
		// there is no webp encoder, large webp uploads become jpeg
		err = jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: JPEGQuality})
		out.MIME, out.Ext = "image/jpeg", "jpg"
	}
	if err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	out.Data = buf.Bytes()
	return out, nil
}

// downscale resizes the image so neither dimension exceeds maxDim,
// preserving the aspect ratio
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	newW, newH := w, h
	if w > h {
		newW = maxDim
		newH = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		newH = maxDim
		newW = int(float64(w) * float64(maxDim) / float64(h))
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
