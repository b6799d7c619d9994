// Package media classifies files by extension and counts a source tree.
package media

import (
	"path/filepath"
	"strings"
)

// Kind is the closed set of media variants the organizer handles.
type Kind int

const (
	Unknown Kind = iota
	Image
	Video
)

func (k Kind) String() string {
	switch k {
	case Image:
		return "image"
	case Video:
		return "video"
	default:
		return "unknown"
	}
}

var extKind = map[string]Kind{
	// images
	".jpg":  Image,
	".jpeg": Image,
	".png":  Image,
	".tif":  Image,
	".tiff": Image,
	".heic": Image,
	".dng":  Image,
	".arw":  Image,
	// videos
	".mp4":  Video,
	".avi":  Video,
	".mov":  Video,
	".mkv":  Video,
	".wmv":  Video,
	".flv":  Video,
	".webm": Video,
	".mts":  Video,
	".mpg":  Video,
}

// sidecarExts are companion files that travel with videos and are never
// processed on their own.
var sidecarExts = map[string]bool{
	".xml": true,
	".thm": true,
}

// isoBMFF lists containers whose moov box can be read without ffprobe.
var isoBMFF = map[string]bool{
	".mp4": true,
	".mov": true,
}

// Lookup returns the kind of path by its extension.
func Lookup(path string) Kind {
	if k, ok := extKind[Ext(path)]; ok {
		return k
	}
	return Unknown
}

// IsSidecar reports whether path has a sidecar metadata extension.
func IsSidecar(path string) bool {
	return sidecarExts[Ext(path)]
}

// IsISOBMFF reports whether path is an MP4/QuickTime style container.
func IsISOBMFF(path string) bool {
	return isoBMFF[Ext(path)]
}

// Ext returns the lowercased extension of path, including the dot.
func Ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
