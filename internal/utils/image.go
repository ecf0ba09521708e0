package utils

import (
	"bytes"
	"io"

	"github.com/disintegration/imaging"
)

// ResizeImage scales an image down to fit within width x height, keeping
// the aspect ratio. A zero dimension is derived from the other one. Used
// when serving image attachments with thumbnail query parameters.
func ResizeImage(reader io.Reader, width, height int) ([]byte, error) {
	src, err := imaging.Decode(reader)
	if err != nil {
		return nil, err
	}

	if width == 0 && height == 0 {
		width = 256
	}
	resized := imaging.Fit(src, orDefault(width, src.Bounds().Dx()), orDefault(height, src.Bounds().Dy()), imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, resized, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func orDefault(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
