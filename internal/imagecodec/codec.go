// Package imagecodec holds the pure image transforms used by tagging and
// storage: decoding, resizing and conversion to the classifier input layout.
package imagecodec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // GIF decoder
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // WebP decoder
)

// ClassifierInputSize is the square edge length expected by the tagging model.
const ClassifierInputSize = 224

// ClassifierChannels is the number of colour channels in a PixelBuffer.
const ClassifierChannels = 3

// ErrDegenerateImage reports an image or target with a zero dimension.
var ErrDegenerateImage = errors.New("imagecodec: degenerate image dimensions")

// CodecError describes a failed transform.
type CodecError struct {
	Op  string
	Err error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("imagecodec: %s: %v", e.Op, e.Err)
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// PixelBuffer is a row-major, 8-bit RGB pixel layout.
type PixelBuffer struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// Image rebuilds an image from the buffer so it can be handed to encoders.
func (b PixelBuffer) Image() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			i := (y*b.Width + x) * b.Channels
			img.SetNRGBA(x, y, color.NRGBA{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2], A: 0xff})
		}
	}
	return img
}

// Decode decodes raw image bytes, applying the EXIF orientation if present.
func Decode(raw []byte) (image.Image, error) {
	if len(raw) == 0 {
		return nil, &CodecError{Op: "decode", Err: ErrDegenerateImage}
	}
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &CodecError{Op: "decode", Err: err}
	}
	if isDegenerate(img.Bounds()) {
		return nil, &CodecError{Op: "decode", Err: ErrDegenerateImage}
	}
	return img, nil
}

// ResizeToFit scales img preserving its aspect ratio so that its larger
// dimension matches the corresponding target bound. Smaller images are
// scaled up.
func ResizeToFit(img image.Image, width, height int) (*image.NRGBA, error) {
	if img == nil || isDegenerate(img.Bounds()) || width <= 0 || height <= 0 {
		return nil, &CodecError{Op: "resize to fit", Err: ErrDegenerateImage}
	}

	b := img.Bounds()
	aspect := float64(b.Dx()) / float64(b.Dy())

	var w, h int
	if aspect > 1 {
		w = width
		h = int(float64(width)/aspect + 0.5)
	} else {
		h = height
		w = int(float64(height)*aspect + 0.5)
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	return imaging.Resize(img, w, h, imaging.Lanczos), nil
}

// ResizeExact stretches img to exactly width x height.
func ResizeExact(img image.Image, width, height int) (*image.NRGBA, error) {
	if img == nil || isDegenerate(img.Bounds()) || width <= 0 || height <= 0 {
		return nil, &CodecError{Op: "resize exact", Err: ErrDegenerateImage}
	}
	return imaging.Resize(img, width, height, imaging.Lanczos), nil
}

// ToClassifierInput converts img to the fixed-size RGB layout the tagging
// model expects. Images of another size are stretched first.
func ToClassifierInput(img image.Image) (PixelBuffer, error) {
	if img == nil || isDegenerate(img.Bounds()) {
		return PixelBuffer{}, &CodecError{Op: "classifier input", Err: ErrDegenerateImage}
	}

	b := img.Bounds()
	if b.Dx() != ClassifierInputSize || b.Dy() != ClassifierInputSize {
		resized, err := ResizeExact(img, ClassifierInputSize, ClassifierInputSize)
		if err != nil {
			return PixelBuffer{}, err
		}
		img = resized
	}

	nrgba := imaging.Clone(img)
	buf := PixelBuffer{
		Width:    ClassifierInputSize,
		Height:   ClassifierInputSize,
		Channels: ClassifierChannels,
		Pix:      make([]uint8, ClassifierInputSize*ClassifierInputSize*ClassifierChannels),
	}

	for y := 0; y < buf.Height; y++ {
		row := nrgba.Pix[y*nrgba.Stride:]
		for x := 0; x < buf.Width; x++ {
			src := row[x*4:]
			dst := buf.Pix[(y*buf.Width+x)*ClassifierChannels:]
			dst[0], dst[1], dst[2] = src[0], src[1], src[2]
		}
	}

	return buf, nil
}

// EncodeJPEG writes img to w as JPEG.
func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	if err := imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return &CodecError{Op: "encode", Err: err}
	}
	return nil
}

func isDegenerate(r image.Rectangle) bool {
	return r.Dx() <= 0 || r.Dy() <= 0
}
