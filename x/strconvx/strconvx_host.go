//go:build !(tinygo && (rp2040 || rp2350 || stm32f4))

package strconvx

import "strconv"

func Itoa(i int) string                    { return strconv.Itoa(i) }
func FormatInt(i int64, base int) string   { return strconv.FormatInt(i, base) }
func FormatUint(u uint64, base int) string { return strconv.FormatUint(u, base) }
