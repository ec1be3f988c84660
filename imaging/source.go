package imaging

import (
	"fmt"
	"image"
	"os"

	// Register decoders for the common still-image formats a caller may
	// hand us as a file path.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/BaSui01/captionflow/types"
)

// ChannelOrder tags the layout of a raw interleaved pixel buffer.
type ChannelOrder string

const (
	// OrderRGB is the canonical red-first layout.
	OrderRGB ChannelOrder = "rgb"
	// OrderBGR is the blue-first layout produced by OpenCV-style frame
	// grabbers; it is reordered to RGB before encoding.
	OrderBGR ChannelOrder = "bgr"
)

// Source is an image in one of the three accepted input forms. Obtain one
// via FromBuffer, FromImage or FromFile and pass it to Encoder.Encode.
type Source interface {
	decode() (image.Image, error)
}

type bufferSource struct {
	pix           []byte
	width, height int
	order         ChannelOrder
}

type imageSource struct {
	img image.Image
}

type fileSource struct {
	path string
}

// FromBuffer wraps a raw 3-channel interleaved pixel buffer. The buffer
// must hold exactly width*height*3 bytes.
func FromBuffer(pix []byte, width, height int, order ChannelOrder) Source {
	return bufferSource{pix: pix, width: width, height: height, order: order}
}

// FromImage wraps an already decoded image. Assumed canonical channel order.
func FromImage(img image.Image) Source {
	return imageSource{img: img}
}

// FromFile wraps a path to a PNG, JPEG or GIF file on disk.
func FromFile(path string) Source {
	return fileSource{path: path}
}

func (s bufferSource) decode() (image.Image, error) {
	if s.width <= 0 || s.height <= 0 {
		return nil, types.NewEncodingError(
			fmt.Sprintf("invalid buffer dimensions %dx%d", s.width, s.height), nil)
	}
	if len(s.pix) != s.width*s.height*3 {
		return nil, types.NewEncodingError(
			fmt.Sprintf("buffer size %d does not match %dx%dx3", len(s.pix), s.width, s.height), nil)
	}
	if s.order != OrderRGB && s.order != OrderBGR {
		return nil, types.NewEncodingError(
			fmt.Sprintf("unknown channel order %q", s.order), nil)
	}

	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			src := (y*s.width + x) * 3
			dst := img.PixOffset(x, y)
			r, g, b := s.pix[src], s.pix[src+1], s.pix[src+2]
			if s.order == OrderBGR {
				r, b = b, r
			}
			img.Pix[dst] = r
			img.Pix[dst+1] = g
			img.Pix[dst+2] = b
			img.Pix[dst+3] = 0xFF
		}
	}
	return img, nil
}

func (s imageSource) decode() (image.Image, error) {
	if s.img == nil {
		return nil, types.NewEncodingError("nil image", nil)
	}
	return s.img, nil
}

func (s fileSource) decode() (image.Image, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, types.NewEncodingError(fmt.Sprintf("open image %s", s.path), err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, types.NewEncodingError(fmt.Sprintf("decode image %s", s.path), err)
	}
	return img, nil
}
