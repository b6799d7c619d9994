package metadata

import "github.com/lavelinevgeny/mediasort/internal/media"

// Capture-like exiftool tags, in priority order. File:FileModifyDate and
// friends are deliberately absent: they record transfer, not capture.
var imageTags = []string{
	"EXIF:DateTimeOriginal",
	"EXIF:CreateDate",
	"XMP:DateTimeOriginal",
	"XMP:CreateDate",
	"XMP:DateCreated",
	"MakerNotes:DateTimeOriginal",
	"Composite:SubSecDateTimeOriginal",
	"Composite:SubSecCreateDate",
}

var videoTags = []string{
	"QuickTime:CreateDate",
	"QuickTime:MediaCreateDate",
	"QuickTime:TrackCreateDate",
	"Keys:CreationDate",
	"UserData:DateTimeOriginal",
	"XMP:DateTimeOriginal",
	"XMP:CreateDate",
	"XMP:DateCreated",
	"H264:DateTimeOriginal",
	"MPEG:DateTimeOriginal",
	"RIFF:DateTimeOriginal",
	"ASF:CreationDate",
	"Matroska:DateUTC",
	"EXIF:DateTimeOriginal",
	"EXIF:CreateDate",
	"Composite:SubSecCreateDate",
	"Composite:SubSecDateTimeOriginal",
}

// fileTags are the last resort when no metadata field validates.
var fileTags = []string{
	"File:FileModifyDate",
	"File:FileAccessDate",
	"File:FileInodeChangeDate",
	"File:FileCreateDate",
}

// captureTags is the per-kind tag list consulted when the primary reader
// yields nothing.
var captureTags = map[media.Kind][]string{
	media.Image: imageTags,
	media.Video: videoTags,
}

