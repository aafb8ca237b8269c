package imagecodec

import (
	"bytes"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// TakenAt returns the capture time recorded in the image's EXIF data.
func TakenAt(raw []byte) (time.Time, bool) {
	x, err := exif.Decode(bytes.NewReader(raw))
	if err != nil {
		return time.Time{}, false
	}
	t, err := x.DateTime()
	if err != nil || t.IsZero() {
		return time.Time{}, false
	}
	return t, true
}
