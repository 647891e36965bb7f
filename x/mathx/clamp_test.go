package mathx

import "testing"

func TestClamp(t *testing.T) {
	if got := Clamp(5, 1, 3); got != 3 {
		t.Fatalf("Clamp(5,1,3) = %d", got)
	}
	if got := Clamp(-5, -3, 3); got != -3 {
		t.Fatalf("Clamp(-5,-3,3) = %d", got)
	}
	if got := Clamp(2, 1, 3); got != 2 {
		t.Fatalf("Clamp(2,1,3) = %d", got)
	}
	// Swapped bounds behave the same.
	if got := Clamp(5, 3, 1); got != 3 {
		t.Fatalf("Clamp(5,3,1) = %d", got)
	}
	if got := Clamp(uint32(40), uint32(1), uint32(16)); got != 16 {
		t.Fatalf("Clamp(40,1,16) = %d", got)
	}
}

func TestBetween(t *testing.T) {
	if !Between(2, 1, 3) || Between(4, 1, 3) {
		t.Fatal("Between misjudged range")
	}
	if !Between(2, 3, 1) {
		t.Fatal("Between should tolerate swapped bounds")
	}
	if !Between(1, 1, 3) || !Between(3, 1, 3) {
		t.Fatal("Between should include endpoints")
	}
}

func TestMax(t *testing.T) {
	if Max(uint16(0x100), uint16(0x200)) != 0x200 {
		t.Fatal("Max picked the smaller value")
	}
	if Max(7, 7) != 7 {
		t.Fatal("Max of equals")
	}
}
