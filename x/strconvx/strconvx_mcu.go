//go:build tinygo && (rp2040 || rp2350 || stm32f4)

package strconvx

// Integer formatting without pulling strconv tables into firmware images.
// Bases outside 2..36 format as base 10.

func Itoa(i int) string { return FormatInt(int64(i), 10) }

func FormatInt(i int64, base int) string {
	if i < 0 {
		return "-" + FormatUint(uint64(-i), base)
	}
	return FormatUint(uint64(i), base)
}

func FormatUint(u uint64, base int) string {
	if base < 2 || base > 36 {
		base = 10
	}
	if u == 0 {
		return "0"
	}
	const digits = "0123456789abcdefghijklmnopqrstuvwxyz"
	var buf [64]byte
	i := len(buf)
	for b := uint64(base); u > 0; u /= b {
		i--
		buf[i] = digits[u%b]
	}
	return string(buf[i:])
}
