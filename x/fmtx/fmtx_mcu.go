//go:build tinygo && (rp2040 || rp2350 || stm32f4)

package fmtx

import "periphkit-go/x/strconvx"

// Supported: %s %d %x %X %t %v %% with an optional width (zero-padded with
// a leading 0). Errors and Stringers print through their methods.

func Sprintf(format string, a ...any) string {
	var b builder
	b.format(format, a)
	return string(b.buf)
}

// Sprint adds a space between operands when neither is a string.
func Sprint(a ...any) string {
	var b builder
	for i, v := range a {
		if i > 0 && !isString(v) && !isString(a[i-1]) {
			b.buf = append(b.buf, ' ')
		}
		b.value(v)
	}
	return string(b.buf)
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

type builder struct{ buf []byte }

func (b *builder) str(s string) { b.buf = append(b.buf, s...) }

func (b *builder) pad(s string, width int, zero bool) {
	fill := byte(' ')
	if zero {
		fill = '0'
	}
	for n := len(s); n < width; n++ {
		b.buf = append(b.buf, fill)
	}
	b.str(s)
}

func (b *builder) value(v any) {
	switch x := v.(type) {
	case nil:
		b.str("<nil>")
	case string:
		b.str(x)
	case error:
		b.str(x.Error())
	case interface{ String() string }:
		b.str(x.String())
	case bool:
		if x {
			b.str("true")
		} else {
			b.str("false")
		}
	default:
		if u, ok := unsigned(v); ok {
			b.str(strconvx.FormatUint(u, 10))
		} else if i, ok := signed(v); ok {
			b.str(strconvx.FormatInt(i, 10))
		} else {
			b.str("?")
		}
	}
}

func unsigned(v any) (uint64, bool) {
	switch x := v.(type) {
	case uint:
		return uint64(x), true
	case uint8:
		return uint64(x), true
	case uint16:
		return uint64(x), true
	case uint32:
		return uint64(x), true
	case uint64:
		return x, true
	case uintptr:
		return uint64(x), true
	}
	return 0, false
}

func signed(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	}
	return 0, false
}

func (b *builder) format(format string, args []any) {
	ai := 0
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i+1 >= len(format) {
			b.buf = append(b.buf, c)
			continue
		}
		i++
		if format[i] == '%' {
			b.buf = append(b.buf, '%')
			continue
		}
		zero := format[i] == '0'
		width := 0
		for ; i < len(format) && '0' <= format[i] && format[i] <= '9'; i++ {
			width = width*10 + int(format[i]-'0')
		}
		if i >= len(format) {
			return
		}
		verb := format[i]
		if ai >= len(args) {
			b.str("%!" + string(verb) + "(MISSING)")
			continue
		}
		arg := args[ai]
		ai++

		switch verb {
		case 'd':
			if u, ok := unsigned(arg); ok {
				b.pad(strconvx.FormatUint(u, 10), width, zero)
			} else if n, ok := signed(arg); ok {
				b.pad(strconvx.FormatInt(n, 10), width, zero)
			} else {
				b.value(arg)
			}
		case 'x', 'X':
			u, ok := unsigned(arg)
			if !ok {
				n, _ := signed(arg)
				u = uint64(n)
			}
			h := []byte(strconvx.FormatUint(u, 16))
			if verb == 'X' {
				for j, d := range h {
					if 'a' <= d && d <= 'f' {
						h[j] = d - 'a' + 'A'
					}
				}
			}
			b.pad(string(h), width, zero)
		case 's', 'v', 't':
			var sub builder
			sub.value(arg)
			b.pad(string(sub.buf), width, false)
		default:
			b.buf = append(b.buf, '%', verb)
		}
	}
}
