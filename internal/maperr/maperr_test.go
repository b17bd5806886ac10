package maperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeFloorNotFound, "floor %d not found", 3)

	if err.Code != CodeFloorNotFound {
		t.Errorf("Code = %v, want %v", err.Code, CodeFloorNotFound)
	}
	if got, want := err.Error(), "floor_not_found: floor 3 not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("no rows")
	err := Wrap(CodeMapNotFound, cause, "map %d", 7)

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if got, want := err.Error(), "map_not_found: map 7: no rows"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"matching code", New(CodeOutOfBounds, "x"), CodeOutOfBounds, true},
		{"different code", New(CodeOutOfBounds, "x"), CodeNodeNotFound, false},
		{"wrapped by fmt", fmt.Errorf("save: %w", New(CodeDuplicateFloor, "x")), CodeDuplicateFloor, true},
		{"plain error", errors.New("boom"), CodeValidation, false},
		{"nil", nil, CodeValidation, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCodeOfAndUserMessage(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeInvalidDimension, "rows must be positive"))
	if got := CodeOf(err); got != CodeInvalidDimension {
		t.Errorf("CodeOf() = %q", got)
	}
	if got := UserMessage(err); got != "rows must be positive" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := CodeOf(errors.New("x")); got != "" {
		t.Errorf("CodeOf(plain) = %q, want empty", got)
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}
