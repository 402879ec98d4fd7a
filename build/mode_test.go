package build

import (
	"testing"

	"github.com/codex-storage/go-codex/errors"
)

func TestResolveMode(t *testing.T) {
	tests := []struct {
		name     string
		static   bool
		dynamic  bool
		want     Mode
		conflict bool
	}{
		{name: "neither defaults to dynamic", want: ModeDynamic},
		{name: "dynamic only", dynamic: true, want: ModeDynamic},
		{name: "static only", static: true, want: ModeStatic},
		{name: "both is a conflict", static: true, dynamic: true, conflict: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveMode(tt.static, tt.dynamic)
			if tt.conflict {
				if !errors.IsKind(err, errors.KindModeConflict) {
					t.Fatalf("ResolveMode(%v, %v) error = %v, want mode conflict", tt.static, tt.dynamic, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveMode(%v, %v) error = %v", tt.static, tt.dynamic, err)
			}
			if got != tt.want {
				t.Errorf("ResolveMode(%v, %v) = %v, want %v", tt.static, tt.dynamic, got, tt.want)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: ModeDynamic},
		{in: "dynamic", want: ModeDynamic},
		{in: "static", want: ModeStatic},
		{in: "shared", wantErr: true},
		{in: "Static", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("parse "+tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMode(%q) succeeded, want error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMode(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestModeArtifactNames(t *testing.T) {
	if got := ModeDynamic.LibraryName(); got != "libcodex.so" {
		t.Errorf("dynamic library name = %q", got)
	}
	if got := ModeStatic.LibraryName(); got != "libcodex.a" {
		t.Errorf("static library name = %q", got)
	}
	if got := ModeDynamic.BuildTag(); got != "" {
		t.Errorf("dynamic build tag = %q, want empty", got)
	}
	if got := ModeStatic.BuildTag(); got != "codex_static" {
		t.Errorf("static build tag = %q", got)
	}
}
