//go:build linux

package platform

import (
	"reflect"
	"testing"

	"github.com/1broseidon/pintodo/internal/x11"
)

func TestStackingStates(t *testing.T) {
	tests := []struct {
		in   Stacking
		want []string
	}{
		{StackingNormal, nil},
		{StackingAbove, []string{x11.StateAbove}},
		{StackingDesktop, []string{x11.StateBelow}},
	}
	for _, tt := range tests {
		if got := stackingStates(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("stackingStates(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWithout(t *testing.T) {
	got := without([]string{x11.StateAbove, x11.StateBelow}, []string{x11.StateBelow})
	if !reflect.DeepEqual(got, []string{x11.StateAbove}) {
		t.Fatalf("without = %v", got)
	}
}

func TestStackingString(t *testing.T) {
	if StackingAbove.String() != "above" || StackingDesktop.String() != "desktop" || StackingNormal.String() != "normal" {
		t.Fatalf("unexpected stacking names")
	}
}
