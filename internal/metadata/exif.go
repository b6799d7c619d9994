package metadata

import (
	"fmt"
	"os"

	"github.com/rwcarlsen/goexif/exif"
)

// exifDateFields are read in this order: original capture, digitized, modify.
var exifDateFields = []exif.FieldName{
	exif.DateTimeOriginal,
	exif.DateTimeDigitized,
	exif.DateTime,
}

// ExifReader reads embedded EXIF dates with goexif. Values are returned as
// the raw tag bytes so that nonstandard encodings survive until decoding.
type ExifReader struct{}

func (ExifReader) ReadDates(path string) ([]RawValue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		if err == nil {
			err = fmt.Errorf("no exif data")
		}
		return nil, fmt.Errorf("decode exif: %w", err)
	}

	var out []RawValue
	for _, name := range exifDateFields {
		tag, err := x.Get(name)
		if err != nil || tag == nil {
			continue
		}
		out = append(out, RawValue{Backend: "exif", Field: string(name), Value: append([]byte(nil), tag.Val...)})
	}
	return out, nil
}

var _ ImageReader = ExifReader{}
