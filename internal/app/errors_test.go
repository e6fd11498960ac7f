package app

import (
	"errors"
	"testing"
)

func TestInitError(t *testing.T) {
	cause := errors.New("boom")
	err := &InitError{Component: "colors", Err: cause}

	if got := err.Error(); got != "failed to initialize colors: boom" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("InitError should unwrap to its cause")
	}
}

func TestOperationError(t *testing.T) {
	cause := errors.New("not found")
	tests := []struct {
		name string
		err  *OperationError
		want string
	}{
		{"full", &OperationError{Op: "open", Target: "main.c", Err: cause}, "open main.c: not found"},
		{"no target", &OperationError{Op: "reload", Err: cause}, "reload: not found"},
		{"no cause", &OperationError{Op: "reload", Target: "c"}, "reload c"},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}

	var target *OperationError
	wrapped := error(&OperationError{Op: "open", Target: "x", Err: cause})
	if !errors.As(wrapped, &target) || !errors.Is(wrapped, cause) {
		t.Error("OperationError should support errors.As and errors.Is")
	}
}
