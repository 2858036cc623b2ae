package cursor

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/meigma/oaktms/internal/format"
)

// StringDecoder converts the raw body of a length-prefixed string to text.
type StringDecoder interface {
	// Size returns how many bytes follow a length prefix of n.
	Size(n int32) uint64

	// Decode strips the terminator from raw and validates the text.
	Decode(raw []byte) (string, error)
}

// Decoders for the two string encodings.
var (
	UTF8  StringDecoder = utf8Decoder{}
	UTF16 StringDecoder = utf16Decoder{}
)

// DecoderFor returns the decoder for a non-zero length prefix.
func DecoderFor(n int32) StringDecoder {
	if n < 0 {
		return UTF16
	}
	return UTF8
}

type utf8Decoder struct{}

func (utf8Decoder) Size(n int32) uint64 {
	return uint64(n) //nolint:gosec // only called for n > 0
}

func (utf8Decoder) Decode(raw []byte) (string, error) {
	if len(raw) == 0 || raw[len(raw)-1] != 0 {
		return "", fmt.Errorf("%w: missing UTF-8 terminator", format.ErrTextDecode)
	}
	body := raw[:len(raw)-1]
	if !utf8.Valid(body) {
		return "", fmt.Errorf("%w: invalid UTF-8", format.ErrTextDecode)
	}
	return string(body), nil
}

type utf16Decoder struct{}

func (utf16Decoder) Size(n int32) uint64 {
	return uint64(-int64(n)) * 2 //nolint:gosec // only called for n < 0
}

func (utf16Decoder) Decode(raw []byte) (string, error) {
	if len(raw) < 2 || len(raw)%2 != 0 || raw[len(raw)-1] != 0 || raw[len(raw)-2] != 0 {
		return "", fmt.Errorf("%w: missing UTF-16 terminator", format.ErrTextDecode)
	}
	body := raw[:len(raw)-2]
	units := make([]uint16, len(body)/2)
	for i := range units {
		units[i] = uint16(body[2*i]) | uint16(body[2*i+1])<<8
	}
	for i := 0; i < len(units); i++ {
		u := rune(units[i])
		if !utf16.IsSurrogate(u) {
			continue
		}
		if u >= 0xDC00 || i+1 == len(units) {
			return "", fmt.Errorf("%w: unpaired UTF-16 surrogate", format.ErrTextDecode)
		}
		next := rune(units[i+1])
		if next < 0xDC00 || next > 0xDFFF {
			return "", fmt.Errorf("%w: unpaired UTF-16 surrogate", format.ErrTextDecode)
		}
		i++
	}
	return string(utf16.Decode(units)), nil
}
