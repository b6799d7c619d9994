package archive

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// copySuffix splits "MyVideo (1)" into core "MyVideo" and suffix " (1)".
var copySuffix = regexp.MustCompile(`^(.*?)(\s*\(_?\d+\))?$`)

// Sidecars returns the companion files of the video at path that exist on
// disk: at most one thumbnail and at most one XML file, in that order.
func Sidecars(path string) []string {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	var out []string
	for _, name := range thumbnailNames(stem) {
		if p := filepath.Join(dir, name); isRegular(p) {
			out = append(out, p)
			break
		}
	}
	for _, name := range xmlNames(stem) {
		if p := filepath.Join(dir, name); isRegular(p) {
			out = append(out, p)
			break
		}
	}
	return out
}

func thumbnailNames(stem string) []string {
	return []string{stem + ".thm", stem + ".THM"}
}

// xmlNames lists camera XML naming conventions, first match wins.
func xmlNames(stem string) []string {
	core, suffix := stem, ""
	if m := copySuffix.FindStringSubmatch(stem); m != nil {
		core, suffix = m[1], m[2]
	}
	return []string{
		core + suffix + "M01.xml",      // MyVideo (1)M01.xml
		core + "M01" + suffix + ".xml", // C0029M01 (1).xml
		stem + ".xml",
		stem + ".XML",
		core + suffix + "M01.XML",
		core + "M01" + suffix + ".XML",
	}
}

func isRegular(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
