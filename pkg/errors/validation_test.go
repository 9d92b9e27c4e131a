package errors

import (
	"strings"
	"testing"
)

func TestValidatePluginID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid app id", "grafana-lokiexplore-app", false},
		{"valid extension point", "grafana-exploretraces-app/investigation/v1", false},
		{"valid with dot", "plugins.core.panel", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 300), true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
		{"comma", "a,b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePluginID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePluginID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPluginID) {
				t.Errorf("ValidatePluginID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidPluginID)
			}
		})
	}
}

func TestValidatePluginIDs(t *testing.T) {
	if err := ValidatePluginIDs([]string{"a-app", "b-app"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidatePluginIDs([]string{"a-app", ""}); err == nil {
		t.Error("expected error for empty id")
	}
	if err := ValidatePluginIDs(nil); err != nil {
		t.Errorf("nil slice should be valid, got %v", err)
	}
}

func TestValidateSnapshotPath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCode Code
	}{
		{"json", "apps.json", ""},
		{"yaml", "testdata/apps.yaml", ""},
		{"yml upper", "APPS.YML", ""},

		{"empty", "", ErrCodeInvalidPath},
		{"null byte", "apps\x00.json", ErrCodeInvalidPath},
		{"no extension", "apps", ErrCodeInvalidFormat},
		{"toml", "apps.toml", ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSnapshotPath(tt.input)
			if got := GetCode(err); got != tt.wantCode {
				t.Errorf("ValidateSnapshotPath(%q) code = %q, want %q (err=%v)", tt.input, got, tt.wantCode, err)
			}
		})
	}
}
