package timestamp

import (
	"encoding/base64"
	"testing"
)

func TestDecodeBytesWith(t *testing.T) {
	tests := []struct {
		name    string
		in      []byte
		want    string
		wantEnc string
	}{
		{
			name:    "ascii exif value with nul terminator",
			in:      []byte("2019:08:26 09:54:50\x00"),
			want:    "2019:08:26 09:54:50",
			wantEnc: "utf-8",
		},
		{
			name:    "padded with spaces and nuls",
			in:      []byte("\x00  2019:08:26 09:54:50  \x00\x00"),
			want:    "2019:08:26 09:54:50",
			wantEnc: "utf-8",
		},
		{
			name:    "shift_jis text",
			in:      []byte{0x93, 0xfa, 0x95, 0x74}, // 日付
			want:    "日付",
			wantEnc: "shift_jis",
		},
		{
			name:    "empty",
			in:      nil,
			want:    "",
			wantEnc: "utf-8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, enc := DecodeBytesWith(tt.in)
			if got != tt.want {
				t.Errorf("DecodeBytesWith() = %q, want %q", got, tt.want)
			}
			if enc != tt.wantEnc {
				t.Errorf("DecodeBytesWith() encoding = %q, want %q", enc, tt.wantEnc)
			}
		})
	}
}

func TestDecodeBytes_BinaryFallsBackToBase64(t *testing.T) {
	// Private-use and control code points come out of every step of the
	// cascade, so none of them is accepted.
	in := []byte{0xE0, 0xE0, 0x01, 0x00}
	got, enc := DecodeBytesWith(in)
	if enc != "base64" {
		t.Fatalf("DecodeBytesWith() encoding = %q, want base64", enc)
	}
	if want := base64.StdEncoding.EncodeToString(in); got != want {
		t.Errorf("DecodeBytesWith() = %q, want %q", got, want)
	}

	n := newTestNormalizer(t)
	if _, err := n.Normalize(in); err == nil {
		t.Error("Normalize(binary) error = nil, want rejection")
	}
}

func TestPrintable(t *testing.T) {
	if !printable("2019:08:26\t09:54:50") {
		t.Error("printable(tab) = false, want true")
	}
	if printable("2019\x07") {
		t.Error("printable(bell) = true, want false")
	}
}
