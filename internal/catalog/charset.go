package catalog

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// Decode converts raw file bytes to a UTF-8 string. The composition and
// price sheets are exported either as UTF-8 (optionally with a BOM) or as
// Shift-JIS; valid UTF-8 always wins to avoid double decoding.
func Decode(data []byte) (string, error) {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		data = data[3:]
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
