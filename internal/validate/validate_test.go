package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/sakif/print-queue/internal/apperror"
)

func TestCheckFile_Accepts(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		size     int64
	}{
		{"stl", "part.stl", 1024},
		{"uppercase extension", "PART.STL", 1024},
		{"3mf", "model.3mf", 1},
		{"obj", "mesh.obj", 1024 * 1024},
		{"gcode", "sliced.gcode", 52_428_800}, // exactly at the ceiling
		{"dotted name", "my.final.v2.stl", 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CheckFile(tt.fileName, tt.size); err != nil {
				t.Errorf("CheckFile(%q, %d) = %v, want nil", tt.fileName, tt.size, err)
			}
		})
	}
}

func TestCheckFile_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		size     int64
	}{
		{"unsupported extension", "model.step", 1024},
		{"no extension", "README", 1024},
		{"empty name", "", 1024},
		{"one byte over the ceiling", "part.stl", 52_428_801},
		{"60MB file", "part.stl", 60 * 1024 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckFile(tt.fileName, tt.size)
			if err == nil {
				t.Fatalf("CheckFile(%q, %d) = nil, want validation error", tt.fileName, tt.size)
			}
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("CheckFile() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestCheckFile_SizeErrorCitesLimit(t *testing.T) {
	err := CheckFile("part.stl", 60*1024*1024)
	if err == nil {
		t.Fatal("expected an error for a 60MB file")
	}
	if !strings.Contains(err.Error(), "50MB") {
		t.Errorf("size error %q should state the 50MB limit", err.Error())
	}
}

func TestCheckFile_ExtensionErrorEnumeratesAllowedTypes(t *testing.T) {
	err := CheckFile("model.step", 1024)
	if err == nil {
		t.Fatal("expected an error for a .step file")
	}
	for _, ext := range []string{"stl", "3mf", "obj", "gcode"} {
		if !strings.Contains(err.Error(), ext) {
			t.Errorf("extension error %q should mention %q", err.Error(), ext)
		}
	}
}

// Size is checked before the extension, so an oversized file with a bad
// extension reports the size problem first.
func TestCheckFile_SizeCheckedFirst(t *testing.T) {
	err := CheckFile("model.step", 60*1024*1024)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "too large") {
		t.Errorf("got %q, want the size error", err.Error())
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		fileName string
		want     string
	}{
		{"part.stl", "stl"},
		{"PART.STL", "stl"},
		{"my.final.v2.gcode", "gcode"},
		{"README", ""},
		{"archive.", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Extension(tt.fileName); got != tt.want {
			t.Errorf("Extension(%q) = %q, want %q", tt.fileName, got, tt.want)
		}
	}
}
