//go:build !(tinygo && (rp2040 || rp2350 || stm32f4))

// Package fmtx is the formatting used for log lines. Host builds delegate
// to fmt; firmware builds use a small formatter instead.
package fmtx

import "fmt"

func Sprintf(format string, a ...any) string { return fmt.Sprintf(format, a...) }
func Sprint(a ...any) string                 { return fmt.Sprint(a...) }
