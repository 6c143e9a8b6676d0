package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestOperationError_Error(t *testing.T) {
	err := New(ErrorTypeNotFound, "read", stderrors.New("no such file")).WithPath("src/main.go")

	msg := err.Error()
	if !strings.Contains(msg, "not_found") {
		t.Errorf("Expected error type in message, got %q", msg)
	}
	if !strings.Contains(msg, "src/main.go") {
		t.Errorf("Expected path in message, got %q", msg)
	}
}

func TestOperationError_Unwrap(t *testing.T) {
	underlying := stderrors.New("permission denied")
	err := New(ErrorTypeProcessing, "write", underlying)

	if !stderrors.Is(err, underlying) {
		t.Error("Expected errors.Is to find the underlying error")
	}
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"operation error", New(ErrorTypePathValidation, "write", stderrors.New("traversal")), ErrorTypePathValidation},
		{"wrapped operation error", fmt.Errorf("outer: %w", New(ErrorTypeSizeLimit, "read", stderrors.New("too big"))), ErrorTypeSizeLimit},
		{"plain error", stderrors.New("plain"), ErrorType("")},
		{"nil", nil, ErrorType("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TypeOf(tt.err); got != tt.want {
				t.Errorf("TypeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindPredicates(t *testing.T) {
	if !IsPathValidation(Newf(ErrorTypePathValidation, "validate", "path %q escapes root", "../etc")) {
		t.Error("IsPathValidation should match")
	}
	if !IsNotAnalyzed(New(ErrorTypeNotAnalyzed, "search", stderrors.New("no cached context"))) {
		t.Error("IsNotAnalyzed should match")
	}
	if IsNotFound(New(ErrorTypeCache, "stats", stderrors.New("boom"))) {
		t.Error("IsNotFound should not match cache errors")
	}
}
