package render

import (
	"bytes"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// minResizeWidth guards against requests for unreadably small charts.
const minResizeWidth = 100

// ResizePNG scales a rendered chart down to the requested pixel width,
// keeping the aspect ratio. It never upscales: widths at or above the
// native size return the original bytes untouched.
func ResizePNG(data []byte, width int) ([]byte, error) {
	if width <= 0 {
		return data, nil
	}
	if width < minResizeWidth {
		width = minResizeWidth
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "decode chart")
	}
	if width >= img.Bounds().Dx() {
		return data, nil
	}

	resized := imaging.Resize(img, width, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.PNG); err != nil {
		return nil, errors.Wrap(err, "encode chart")
	}
	return buf.Bytes(), nil
}
