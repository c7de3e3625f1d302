// Package apperror provides tests for the custom error types and utility functions.
package apperror

import (
	"errors"
	"testing"
)

// TestError_Error verifies that the Error() method returns the correct string format.
func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "without field",
			err:      New(CodeValidation, "dataset is invalid"),
			expected: "[VALIDATION_ERROR] dataset is invalid",
		},
		{
			name:     "with field",
			err:      NewWithField(CodeInvalidCoordinate, "latitude out of range", "order_lat"),
			expected: "[INVALID_COORDINATE] latitude out of range (field: order_lat)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

// TestError_Unwrap verifies that the Unwrap() method correctly returns the underlying cause.
func TestError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, CodeInternal, "wrapped error")

	if unwrapped := err.Unwrap(); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}
}

// TestNew verifies the New function correctly initializes an Error.
func TestNew(t *testing.T) {
	err := New(CodeEmptyDataset, "dataset is empty")

	if err.Code != CodeEmptyDataset {
		t.Errorf("Code = %v, want %v", err.Code, CodeEmptyDataset)
	}
	if err.Message != "dataset is empty" {
		t.Errorf("Message = %v, want %v", err.Message, "dataset is empty")
	}
	if err.Severity != SeverityError {
		t.Errorf("Severity = %v, want %v", err.Severity, SeverityError)
	}
}

// TestNewWarning verifies the NewWarning function correctly initializes an Error with SeverityWarning.
func TestNewWarning(t *testing.T) {
	err := NewWarning(CodeInsufficientData, "too few points")

	if err.Severity != SeverityWarning {
		t.Errorf("Severity = %v, want %v", err.Severity, SeverityWarning)
	}
}

// TestNewCritical verifies the NewCritical function correctly initializes an Error with SeverityCritical.
func TestNewCritical(t *testing.T) {
	err := NewCritical(CodeInternal, "critical failure")

	if err.Severity != SeverityCritical {
		t.Errorf("Severity = %v, want %v", err.Severity, SeverityCritical)
	}
}

// TestWithDetails verifies that WithDetails adds key-value pairs to the error's details map.
func TestWithDetails(t *testing.T) {
	err := New(CodeValidation, "invalid").
		WithDetails("row_count", 5).
		WithDetails("skipped_rows", 10)

	if err.Details["row_count"] != 5 {
		t.Errorf("Details[row_count] = %v, want 5", err.Details["row_count"])
	}
	if err.Details["skipped_rows"] != 10 {
		t.Errorf("Details[skipped_rows] = %v, want 10", err.Details["skipped_rows"])
	}
}

// TestIs verifies code matching through wrapped error chains.
func TestIs(t *testing.T) {
	base := New(CodeBoundaryUnavailable, "no boundary file")
	wrapped := Wrap(base, CodePolicyConfiguration, "configuration failed")

	if !Is(wrapped, CodePolicyConfiguration) {
		t.Error("Is() should match the outer code")
	}
	if Is(errors.New("plain"), CodeValidation) {
		t.Error("Is() should not match a plain error")
	}
}

// TestCode verifies ErrorCode extraction with the internal fallback.
func TestCode(t *testing.T) {
	if got := Code(New(CodeNoClusters, "none")); got != CodeNoClusters {
		t.Errorf("Code() = %v, want %v", got, CodeNoClusters)
	}
	if got := Code(errors.New("plain")); got != CodeInternal {
		t.Errorf("Code() = %v, want %v", got, CodeInternal)
	}
}

// TestIsSoft verifies that only recoverable planning codes are soft.
func TestIsSoft(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"insufficient data", ErrInsufficientData, true},
		{"boundary unavailable", ErrBoundaryUnavailable, true},
		{"no clusters", ErrNoClusters, true},
		{"validation", New(CodeValidation, "bad input"), false},
		{"policy", New(CodePolicyConfiguration, "bad tiers"), false},
		{"plain", errors.New("plain"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSoft(tt.err); got != tt.want {
				t.Errorf("IsSoft() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestSeverity_String verifies severity labels.
func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.severity.String(); got != tt.want {
			t.Errorf("String() = %v, want %v", got, tt.want)
		}
	}
}

// TestValidationErrors covers the accumulator behavior.
func TestValidationErrors(t *testing.T) {
	v := NewValidationErrors()

	if !v.IsValid() {
		t.Error("empty collection should be valid")
	}

	v.AddWarning(CodeInsufficientData, "sparse zone")
	if !v.IsValid() {
		t.Error("warnings should not invalidate the collection")
	}
	if !v.HasWarnings() {
		t.Error("expected a warning")
	}

	v.AddError(CodeValidation, "bad row")
	v.AddErrorWithField(CodeInvalidCoordinate, "out of range", "pickup_lat")

	if v.IsValid() {
		t.Error("errors should invalidate the collection")
	}
	if len(v.Errors) != 2 {
		t.Errorf("Errors = %d, want 2", len(v.Errors))
	}

	other := NewValidationErrors()
	other.Add(NewWarning(CodeNoClusters, "empty area"))
	other.Add(New(CodeInvalidFleetMix, "shares do not sum to 1"))
	v.Merge(other)

	if len(v.Errors) != 3 || len(v.Warnings) != 2 {
		t.Errorf("after merge: %d errors, %d warnings; want 3, 2", len(v.Errors), len(v.Warnings))
	}

	if msgs := v.ErrorMessages(); len(msgs) != 3 {
		t.Errorf("ErrorMessages() = %d entries, want 3", len(msgs))
	}
}

// TestValidationErrors_AsError verifies single-error summarization.
func TestValidationErrors_AsError(t *testing.T) {
	v := NewValidationErrors()
	if v.AsError() != nil {
		t.Error("valid collection should summarize to nil")
	}

	v.AddError(CodeNonMonotonicTiers, "tier count increases with radius")
	err := v.AsError()
	if !Is(err, CodeNonMonotonicTiers) {
		t.Errorf("AsError() code = %v, want %v", Code(err), CodeNonMonotonicTiers)
	}

	v.AddError(CodeValidation, "second failure")
	if err := v.AsError(); err == nil {
		t.Error("expected summarized error")
	}
}
