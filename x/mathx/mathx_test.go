package mathx

import "testing"

func TestClampAndBetween(t *testing.T) {
	if Clamp(70, 2, 63) != 63 || Clamp(1, 63, 2) != 2 || Clamp(8, 2, 63) != 8 {
		t.Fatal("Clamp mismatch")
	}
	if !Between(uint32(50), 50, 432) || Between(uint32(433), 432, 50) {
		t.Fatal("Between mismatch")
	}
	if !OneOf(uint32(4), 2, 4, 6, 8) || OneOf(uint32(3), 2, 4, 6, 8) {
		t.Fatal("OneOf mismatch")
	}
}

func TestDivHelpers(t *testing.T) {
	if RoundDiv(uint32(7), 2) != 4 || RoundDiv(uint32(5), 3) != 2 || RoundDiv(uint64(336_000_000), 4) != 84_000_000 {
		t.Fatal("division helpers mismatch")
	}
	if RoundDiv(uint8(1), 0) != 0 {
		t.Fatal("divide by zero should yield 0")
	}
}

func TestBits(t *testing.T) {
	if Bit(uint8(5)) != 0x20 || Bit(uint8(32)) != 0 {
		t.Fatal("Bit mismatch")
	}
	if FieldMask(uint8(2)) != 0b11 || FieldMask(uint8(32)) != 0xFFFFFFFF {
		t.Fatal("FieldMask mismatch")
	}
	if Field(0x0000_0C00, uint8(10), uint8(2)) != 0b11 {
		t.Fatal("Field mismatch")
	}
}
