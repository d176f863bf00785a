package brcode

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestEncodeField(t *testing.T) {
	cases := []struct {
		tag, value, want string
	}{
		{"00", "01", "000201"},
		{"05", "***", "0503***"},
		{"60", "", "6000"},
		{"00", "BR.GOV.BCB.PIX", "0014BR.GOV.BCB.PIX"},
	}
	for _, c := range cases {
		got, err := EncodeField(c.tag, c.value)
		if err != nil {
			t.Fatalf("EncodeField(%s, %q) err: %v", c.tag, c.value, err)
		}
		if got != c.want {
			t.Fatalf("EncodeField(%s, %q) = %q want %q", c.tag, c.value, got, c.want)
		}
	}
}

func TestEncodeField_RoundTrip(t *testing.T) {
	for n := 0; n <= MaxFieldLength; n++ {
		v := strings.Repeat("a", n)
		enc, err := EncodeField("59", v)
		if err != nil {
			t.Fatalf("length %d: %v", n, err)
		}
		if enc[:2] != "59" {
			t.Fatalf("length %d: tag %q", n, enc[:2])
		}
		if enc[2:4] != fmt.Sprintf("%02d", n) {
			t.Fatalf("length %d: declared %q", n, enc[2:4])
		}
		if enc[4:] != v {
			t.Fatalf("length %d: value mismatch", n)
		}

		fields, err := DecodeFields(enc)
		if err != nil {
			t.Fatalf("length %d: decode: %v", n, err)
		}
		if len(fields) != 1 || fields[0].Tag != "59" || fields[0].Value != v {
			t.Fatalf("length %d: decoded %+v", n, fields)
		}
	}
}

func TestEncodeField_TooLong(t *testing.T) {
	_, err := EncodeField("01", strings.Repeat("k", 100))
	if !errors.Is(err, ErrFieldTooLong) {
		t.Fatalf("expected ErrFieldTooLong, got %v", err)
	}
	var tooLong *FieldTooLongError
	if !errors.As(err, &tooLong) {
		t.Fatalf("expected *FieldTooLongError, got %T", err)
	}
	if tooLong.Tag != "01" || tooLong.Length != 100 {
		t.Fatalf("unexpected error details: %+v", tooLong)
	}
}

func TestEncodeField_InvalidTag(t *testing.T) {
	for _, tag := range []string{"", "1", "123", "a1", "6 "} {
		if _, err := EncodeField(tag, "x"); !errors.Is(err, ErrInvalidTag) {
			t.Fatalf("EncodeField(%q) expected ErrInvalidTag, got %v", tag, err)
		}
	}
}

func TestDecodeFields_Nested(t *testing.T) {
	fields, err := DecodeFields("0014BR.GOV.BCB.PIX0116user@example.com")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []Field{{"00", "BR.GOV.BCB.PIX"}, {"01", "user@example.com"}}
	if len(fields) != len(want) {
		t.Fatalf("got %d fields want %d", len(fields), len(want))
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Fatalf("field %d: got %+v want %+v", i, fields[i], want[i])
		}
	}
}

func TestDecodeFields_Truncated(t *testing.T) {
	for _, in := range []string{"00", "0002", "000201590", "5910Fulano"} {
		if _, err := DecodeFields(in); !errors.Is(err, ErrTruncated) {
			t.Fatalf("DecodeFields(%q) expected ErrTruncated, got %v", in, err)
		}
	}
}

func TestDecodeFields_BadLength(t *testing.T) {
	if _, err := DecodeFields("00x1a"); err == nil {
		t.Fatalf("expected error for non-numeric length")
	}
}
