package keys

import "testing"

func TestValid(t *testing.T) {
	if Code(0).Valid() {
		t.Error("Zero is reserved and must be invalid")
	}
	if Code(0xFF).Valid() {
		t.Error("0xFF is reserved and must be invalid")
	}
	for _, c := range []Code{A, Z, Escape, F1, F12, Backspace} {
		if !c.Valid() {
			t.Errorf("%s should be valid", c)
		}
	}
}

func TestString(t *testing.T) {
	cases := map[Code]string{
		A:       "A",
		Z:       "Z",
		Digit0:  "0",
		Escape:  "Escape",
		Space:   "Space",
		Enter:   "Enter",
		Control: "Control",
		F1:      "Code(0x70)",
	}
	for code, want := range cases {
		if got := code.String(); got != want {
			t.Errorf("Code 0x%02X: expected %q, got %q", uint8(code), want, got)
		}
	}
}
