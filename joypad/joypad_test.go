package joypad

import "testing"

func TestReadOrderMatchesBitPositions(t *testing.T) {
	j := New()
	j.SetButtons(ButtonA | ButtonStart)

	want := []uint8{1, 0, 0, 1, 0, 0, 0, 0}
	for i, w := range want {
		if got := j.Read(); got != w {
			t.Errorf("Read() #%d = %d, want %d", i, got, w)
		}
	}
}

func TestReadSaturatesAfterEighth(t *testing.T) {
	j := New()
	for i := 0; i < 8; i++ {
		j.Read()
	}
	if got := j.Read(); got != 1 {
		t.Errorf("Read() after exhaustion = %d, want 1", got)
	}
	if got := j.Read(); got != 1 {
		t.Errorf("Read() after exhaustion = %d, want 1", got)
	}
}

func TestStrobeHoldReturnsButtonA(t *testing.T) {
	j := New()
	j.SetButtons(ButtonA)
	j.Write(1) // strobe on

	for i := 0; i < 3; i++ {
		if got := j.Read(); got != 1 {
			t.Errorf("Read() while strobed = %d, want 1 (button A)", got)
		}
	}
}

func TestStrobeTransitionResetsIndex(t *testing.T) {
	j := New()
	j.SetButtons(ButtonB) // bit 1

	j.Write(1)
	j.Read()
	j.Read()
	j.Write(0) // 1->0 transition resets index

	if got := j.Read(); got != 0 {
		t.Errorf("Read() after reset = %d, want bit 0 (A) = 0", got)
	}
	if got := j.Read(); got != 1 {
		t.Errorf("Read() #2 after reset = %d, want bit 1 (B) = 1", got)
	}
}
