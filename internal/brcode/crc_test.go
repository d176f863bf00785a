package brcode

import "testing"

func TestCRC16_ReferenceVectors(t *testing.T) {
	cases := []struct{ in, want string }{
		{"123456789", "29B1"},
		{"", "FFFF"},
		{
			"00020126380014BR.GOV.BCB.PIX0116user@example.com520400005303986540510.005802BR5913Fulano de Tal6009Sao Paulo62070503***6304",
			"AF9F",
		},
	}
	for _, c := range cases {
		if got := CRC16(c.in); got != c.want {
			t.Fatalf("CRC16(%q) = %s want %s", c.in, got, c.want)
		}
	}
}

func TestCRC16_Deterministic(t *testing.T) {
	p := "000201010211"
	first := CRC16(p)
	for i := 0; i < 10; i++ {
		if got := CRC16(p); got != first {
			t.Fatalf("run %d: got %s want %s", i, got, first)
		}
	}
}

func TestCRC16_Format(t *testing.T) {
	for _, in := range []string{"a", "ab", "000201", "6304"} {
		got := CRC16(in)
		if len(got) != 4 {
			t.Fatalf("CRC16(%q) = %q, want 4 characters", in, got)
		}
		for i := 0; i < len(got); i++ {
			c := got[i]
			if !(c >= '0' && c <= '9') && !(c >= 'A' && c <= 'F') {
				t.Fatalf("CRC16(%q) = %q, want uppercase hex", in, got)
			}
		}
	}
}

func TestCRC16_SingleCharacterMutation(t *testing.T) {
	code, err := Build(MerchantProfile{Key: "user@example.com", RecipientName: "Fulano de Tal", City: "Sao Paulo"}, "10.00")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	payload := code[:len(code)-4]
	sum := code[len(code)-4:]

	for i := 0; i < len(payload); i++ {
		b := []byte(payload)
		if b[i] == 'X' {
			b[i] = 'Y'
		} else {
			b[i] = 'X'
		}
		if got := CRC16(string(b)); got == sum {
			t.Fatalf("mutation at %d kept checksum %s", i, sum)
		}
	}
}
