package archive

import (
	"path/filepath"
	"testing"
)

func TestSidecars(t *testing.T) {
	tests := []struct {
		name  string
		video string
		files []string
		want  []string
	}{
		{
			name:  "none",
			video: "C0029.MP4",
			want:  nil,
		},
		{
			name:  "thumbnail and plain xml",
			video: "MVI_0001.MOV",
			files: []string{"MVI_0001.thm", "MVI_0001.xml"},
			want:  []string{"MVI_0001.thm", "MVI_0001.xml"},
		},
		{
			name:  "sony M01 xml",
			video: "C0029.MP4",
			files: []string{"C0029M01.xml"},
			want:  []string{"C0029M01.xml"},
		},
		{
			name:  "copy suffix after M01",
			video: "C0029 (1).MP4",
			files: []string{"C0029M01 (1).xml", "C0029M01.xml"},
			want:  []string{"C0029M01 (1).xml"},
		},
		{
			name:  "M01 preferred over plain",
			video: "clip.mp4",
			files: []string{"clip.xml", "clipM01.xml"},
			want:  []string{"clipM01.xml"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			video := filepath.Join(dir, tt.video)
			writeFile(t, video, "video")
			for _, f := range tt.files {
				writeFile(t, filepath.Join(dir, f), f)
			}

			got := Sidecars(video)
			if len(got) != len(tt.want) {
				t.Fatalf("Sidecars() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if want := filepath.Join(dir, tt.want[i]); got[i] != want {
					t.Errorf("Sidecars()[%d] = %q, want %q", i, got[i], want)
				}
			}
		})
	}
}

func TestXMLNames(t *testing.T) {
	got := xmlNames("MyVideo (1)")
	want := []string{
		"MyVideo (1)M01.xml",
		"MyVideoM01 (1).xml",
		"MyVideo (1).xml",
		"MyVideo (1).XML",
		"MyVideo (1)M01.XML",
		"MyVideoM01 (1).XML",
	}
	if len(got) != len(want) {
		t.Fatalf("xmlNames() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("xmlNames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
