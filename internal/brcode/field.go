package brcode

import (
	"errors"
	"fmt"

	"github.com/moov-io/iso8583/prefix"
)

// MaxFieldLength is the largest value a two-digit length prefix can describe.
const MaxFieldLength = 99

var (
	ErrFieldTooLong = errors.New("field value too long")
	ErrInvalidTag   = errors.New("tag must be two digits")
	ErrTruncated    = errors.New("truncated field")
)

// FieldTooLongError reports a value that does not fit the LL length prefix.
type FieldTooLongError struct {
	Tag    string
	Length int
}

func (e *FieldTooLongError) Error() string {
	return fmt.Sprintf("field %s: value length %d exceeds %d", e.Tag, e.Length, MaxFieldLength)
}

func (e *FieldTooLongError) Is(target error) bool {
	return target == ErrFieldTooLong
}

// Field is a single tag/value unit of the payload.
type Field struct {
	Tag   string
	Value string
}

// EncodeField returns tag + two-digit length + value.
func EncodeField(tag, value string) (string, error) {
	if !validTag(tag) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTag, tag)
	}
	if len(value) > MaxFieldLength {
		return "", &FieldTooLongError{Tag: tag, Length: len(value)}
	}
	length, err := prefix.ASCII.LL.EncodeLength(MaxFieldLength, len(value))
	if err != nil {
		return "", fmt.Errorf("encoding length of field %s: %w", tag, err)
	}
	return tag + string(length) + value, nil
}

// encodeFields concatenates the encoding of every field, in order.
func encodeFields(fields ...Field) (string, error) {
	var out string
	for _, f := range fields {
		enc, err := EncodeField(f.Tag, f.Value)
		if err != nil {
			return "", err
		}
		out += enc
	}
	return out, nil
}

// DecodeFields splits a concatenation of TLV units back into fields.
func DecodeFields(s string) ([]Field, error) {
	var fields []Field
	for pos := 0; pos < len(s); {
		if len(s)-pos < 4 {
			return nil, fmt.Errorf("%w at offset %d", ErrTruncated, pos)
		}
		tag := s[pos : pos+2]
		if !validTag(tag) {
			return nil, fmt.Errorf("%w at offset %d: %q", ErrInvalidTag, pos, tag)
		}
		length, read, err := prefix.ASCII.LL.DecodeLength(MaxFieldLength, []byte(s[pos+2:pos+4]))
		if err != nil {
			return nil, fmt.Errorf("decoding length of field %s: %w", tag, err)
		}
		start := pos + 2 + read
		if start+length > len(s) {
			return nil, fmt.Errorf("%w: field %s wants %d bytes", ErrTruncated, tag, length)
		}
		fields = append(fields, Field{Tag: tag, Value: s[start : start+length]})
		pos = start + length
	}
	return fields, nil
}

func validTag(tag string) bool {
	return len(tag) == 2 && isDigit(tag[0]) && isDigit(tag[1])
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
