package evdev

import (
	"testing"

	"Nemo/internal/service/keys"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		value int32
		want  keys.Transition
		ok    bool
	}{
		{0, keys.Up, true},
		{1, keys.Down, true},
		{2, keys.Down, true},
		{3, 0, false},
	}
	for _, tt := range tests {
		got, ok := transition(tt.value)
		if got != tt.want || ok != tt.ok {
			t.Errorf("transition(%d) = %v, %v; want %v, %v", tt.value, got, ok, tt.want, tt.ok)
		}
	}
}
