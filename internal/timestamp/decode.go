package timestamp

import (
	"encoding/base64"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	xunicode "golang.org/x/text/encoding/unicode"
)

// byteDecoder is one step of the decoding cascade.
type byteDecoder struct {
	name   string
	decode func([]byte) (string, bool)
}

// decodeCascade is tried in order; the first result that is entirely
// printable after trimming wins. Only utf-8 is strict, the rest replace
// invalid sequences with U+FFFD.
var decodeCascade = []byteDecoder{
	{"utf-8", decodeUTF8},
	{"shift_jis", withEncoding(japanese.ShiftJIS)},
	{"utf-16le", withEncoding(xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM))},
	{"utf-16be", withEncoding(xunicode.UTF16(xunicode.BigEndian, xunicode.IgnoreBOM))},
	{"ascii", decodeASCII},
	{"latin-1", withEncoding(charmap.ISO8859_1)},
	{"mac-roman", withEncoding(charmap.Macintosh)},
}

// DecodeBytes converts a raw metadata byte value into text. It never fails:
// when no encoding yields printable text the bytes come back as base64,
// which no date layout accepts.
func DecodeBytes(b []byte) string {
	s, _ := DecodeBytesWith(b)
	return s
}

// DecodeBytesWith is DecodeBytes that also names the encoding that won, or
// "base64".
func DecodeBytesWith(b []byte) (string, string) {
	for _, d := range decodeCascade {
		s, ok := d.decode(b)
		if !ok {
			continue
		}
		s = trimNulls(s)
		if printable(s) {
			return s, d.name
		}
	}
	return base64.StdEncoding.EncodeToString(b), "base64"
}

func decodeUTF8(b []byte) (string, bool) {
	if !utf8.Valid(b) {
		return "", false
	}
	return string(b), true
}

func decodeASCII(b []byte) (string, bool) {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		if c < utf8.RuneSelf {
			sb.WriteByte(c)
		} else {
			sb.WriteRune(utf8.RuneError)
		}
	}
	return sb.String(), true
}

func withEncoding(enc encoding.Encoding) func([]byte) (string, bool) {
	return func(b []byte) (string, bool) {
		out, err := enc.NewDecoder().Bytes(b)
		if err != nil {
			return "", false
		}
		return string(out), true
	}
}

func trimNulls(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return r == 0 || unicode.IsSpace(r)
	})
}

func printable(s string) bool {
	for _, r := range s {
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
