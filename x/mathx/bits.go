package mathx

import "golang.org/x/exp/constraints"

// Bit returns a 32-bit mask with only bit i set. Indices >= 32 yield 0.
func Bit[T constraints.Unsigned](i T) uint32 {
	if uint64(i) >= 32 {
		return 0
	}
	return 1 << uint32(i)
}

// FieldMask returns a right-aligned mask `width` bits wide.
func FieldMask[T constraints.Unsigned](width T) uint32 {
	if uint64(width) >= 32 {
		return ^uint32(0)
	}
	return 1<<uint32(width) - 1
}

// Field extracts `width` bits of v starting at pos.
func Field[T constraints.Unsigned](v uint32, pos, width T) uint32 {
	return (v >> uint32(pos)) & FieldMask(width)
}
