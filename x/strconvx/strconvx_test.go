package strconvx

import "testing"

func TestFormat(t *testing.T) {
	for _, c := range []struct {
		u    uint64
		base int
		want string
	}{
		{0, 2, "0"},
		{5, 2, "101"},
		{0x4002_3800, 16, "40023800"},
		{84_000_000, 10, "84000000"},
	} {
		if got := FormatUint(c.u, c.base); got != c.want {
			t.Fatalf("FormatUint(%d,%d) = %q, want %q", c.u, c.base, got, c.want)
		}
	}
	if got := FormatInt(-15, 10); got != "-15" {
		t.Fatalf("FormatInt(-15,10) = %q", got)
	}
	if got := Itoa(255); got != "255" {
		t.Fatalf("Itoa(255) = %q", got)
	}
}
