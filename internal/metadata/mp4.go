package metadata

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/abema/go-mp4"

	"github.com/lavelinevgeny/mediasort/internal/media"
)

// Seconds between 1904-01-01, the ISO BMFF epoch, and the Unix epoch.
const mp4EpochOffset = 2082844800

// MP4Boxes reads mvhd and tkhd creation times straight from an ISO BMFF
// container. It needs no external binary.
type MP4Boxes struct{}

func (MP4Boxes) Name() string { return "mp4" }

func (MP4Boxes) Supports(path string) bool { return media.IsISOBMFF(path) }

func (MP4Boxes) ProbeCreationTimes(ctx context.Context, path string) ([]RawValue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	boxes, err := mp4.ExtractBoxesWithPayload(f, nil, []mp4.BoxPath{
		{mp4.BoxTypeMoov(), mp4.BoxTypeMvhd()},
		{mp4.BoxTypeMoov(), mp4.BoxTypeTrak(), mp4.BoxTypeTkhd()},
	})
	if err != nil {
		return nil, fmt.Errorf("read mp4 structure: %w", err)
	}

	var out []RawValue
	track := 0
	for _, box := range boxes {
		switch b := box.Payload.(type) {
		case *mp4.Mvhd:
			if t, ok := mp4Time(b.GetCreationTime()); ok {
				out = append(out, RawValue{Backend: "mp4", Field: "moov.mvhd.creation_time", Value: t})
			}
		case *mp4.Tkhd:
			var secs uint64
			if b.GetVersion() == 0 {
				secs = uint64(b.CreationTimeV0)
			} else {
				secs = b.CreationTimeV1
			}
			if t, ok := mp4Time(secs); ok {
				field := fmt.Sprintf("moov.trak[%d].tkhd.creation_time", track)
				out = append(out, RawValue{Backend: "mp4", Field: field, Value: t})
			}
			track++
		}
	}
	return out, nil
}

// mp4Time converts seconds since 1904 to UTC. Zero means unset.
func mp4Time(secs uint64) (time.Time, bool) {
	if secs == 0 || secs < mp4EpochOffset {
		return time.Time{}, false
	}
	return time.Unix(int64(secs-mp4EpochOffset), 0).UTC(), true
}

var _ ContainerProber = MP4Boxes{}
