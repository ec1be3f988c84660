package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/jpeg"

	"github.com/nfnt/resize"

	"github.com/BaSui01/captionflow/types"
)

// MediaTypeJPEG is the media type of every encoded payload.
const MediaTypeJPEG = "image/jpeg"

// jpegQuality is fixed so identical pixels always yield identical payloads.
const jpegQuality = 85

// EncodedImage is the provider-agnostic transmittable payload: a base64
// JPEG rendition of the normalized source image. Request-scoped; discard
// after the provider call completes.
type EncodedImage struct {
	Data      string // base64 (std encoding)
	MediaType string
	ByteSize  int // JPEG size before base64 expansion
}

// Encoder normalizes image sources into EncodedImage payloads.
type Encoder struct {
	maxDimension int
}

// NewEncoder creates an encoder. maxDimension bounds the longer image side;
// larger images are downscaled with Lanczos resampling before encoding.
// Zero disables the bound.
func NewEncoder(maxDimension int) *Encoder {
	return &Encoder{maxDimension: maxDimension}
}

// Encode produces the normalized payload for src. Failures are ENCODING
// errors and must not be retried.
func (e *Encoder) Encode(src Source) (*EncodedImage, error) {
	img, err := src.decode()
	if err != nil {
		return nil, err
	}

	img = e.bound(img)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, types.NewEncodingError("jpeg encode", err)
	}

	return &EncodedImage{
		Data:      base64.StdEncoding.EncodeToString(buf.Bytes()),
		MediaType: MediaTypeJPEG,
		ByteSize:  buf.Len(),
	}, nil
}

func (e *Encoder) bound(img image.Image) image.Image {
	if e.maxDimension <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= e.maxDimension && b.Dy() <= e.maxDimension {
		return img
	}
	return resize.Thumbnail(uint(e.maxDimension), uint(e.maxDimension), img, resize.Lanczos3)
}
