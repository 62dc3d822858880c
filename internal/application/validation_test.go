package application

import (
	"errors"
	"testing"
)

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		name      string
		fieldName string
		value     string
		wantErr   bool
	}{
		{
			name:      "valid value",
			fieldName: "rootKey",
			value:     "MUP-1",
			wantErr:   false,
		},
		{
			name:      "empty string",
			fieldName: "rootKey",
			value:     "",
			wantErr:   true,
		},
		{
			name:      "whitespace only",
			fieldName: "planFile",
			value:     "   ",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequired(tt.fieldName, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRequired() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err != nil {
				var valErr *ValidationError
				if !errors.As(err, &valErr) {
					t.Errorf("expected ValidationError, got %T", err)
				}
				if valErr.Field != tt.fieldName {
					t.Errorf("expected field %s, got %s", tt.fieldName, valErr.Field)
				}
			}
		})
	}
}

func TestValidateIssueKey(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		project    string
		wantErr    bool
		invalidKey bool
	}{
		{name: "plain key", key: "MUP-1", wantErr: false},
		{name: "lower case is normalized", key: " mup-42 ", wantErr: false},
		{name: "underscore project", key: "OPS_2-7", wantErr: false},
		{name: "empty", key: "", wantErr: true},
		{name: "no number", key: "MUP-", wantErr: true, invalidKey: true},
		{name: "no project", key: "123", wantErr: true, invalidKey: true},
		{name: "allowed project", key: "MUP-3", project: "mup", wantErr: false},
		{name: "other project rejected", key: "ABC-3", project: "MUP", wantErr: true, invalidKey: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIssueKey(tt.key, tt.project)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateIssueKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
			if tt.invalidKey && !errors.Is(err, ErrInvalidKey) {
				t.Errorf("expected ErrInvalidKey, got %v", err)
			}
		})
	}
}

func TestProjectOf(t *testing.T) {
	tests := map[string]string{
		"MUP-12":  "MUP",
		"a-b-3":   "A-B",
		"MUP":     "",
		"-5":      "",
		"ops_2-1": "OPS_2",
	}
	for key, want := range tests {
		if got := ProjectOf(key); got != want {
			t.Errorf("ProjectOf(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestTrackerError(t *testing.T) {
	cause := errors.New("connection reset")
	err := error(&TrackerError{Op: "fetch issue", Key: "MUP-1", StatusCode: 502, Err: cause})

	if !errors.Is(err, ErrTracker) {
		t.Error("expected TrackerError to match ErrTracker")
	}
	if !errors.Is(err, cause) {
		t.Error("expected TrackerError to unwrap to its cause")
	}
	if want := "tracker fetch issue MUP-1: HTTP 502: connection reset"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
