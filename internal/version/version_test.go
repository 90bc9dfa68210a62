package version

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestVersionString(t *testing.T) {
	tests := []struct {
		name     string
		version  Version
		expected string
	}{
		{
			name:     "basic version",
			version:  Version{Major: 1, Minor: 2, Patch: 3},
			expected: "1.2.3",
		},
		{
			name:     "zero version",
			version:  Version{},
			expected: "0.0.0",
		},
		{
			name:     "double digit minor",
			version:  Version{Major: 1, Minor: 19, Patch: 12},
			expected: "1.19.12",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.version.String()
			if got != tt.expected {
				t.Errorf("Version.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Version
		wantErr bool
	}{
		{
			name:  "plain triple",
			input: "1.2.3",
			want:  Version{Major: 1, Minor: 2, Patch: 3},
		},
		{
			name:  "marker with txt suffix",
			input: "1.19.3.txt",
			want:  Version{Major: 1, Minor: 19, Patch: 3},
		},
		{
			name:  "zero version",
			input: "0.0.0",
			want:  Version{},
		},
		{
			name:  "large numbers",
			input: "10.20.30",
			want:  Version{Major: 10, Minor: 20, Patch: 30},
		},
		{
			name:    "missing patch",
			input:   "1.2",
			wantErr: true,
		},
		{
			name:    "too many parts",
			input:   "1.2.3.4",
			wantErr: true,
		},
		{
			name:    "negative component",
			input:   "1.-2.3",
			wantErr: true,
		},
		{
			name:    "non-numeric patch",
			input:   "1.2.Z",
			wantErr: true,
		},
		{
			name:    "pre-release tag",
			input:   "1.20.0-rc.1",
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedVersion) {
					t.Errorf("Parse(%q) error = %v, want ErrMalformedVersion", tt.input, err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, s := range []string{"0.0.1", "1.19.3", "2.0.0", "1.21.10", "007.1.2"} {
		first, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", s, err)
		}
		second, err := Parse(first.String())
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", first.String(), err)
		}
		if first != second {
			t.Errorf("round trip of %q: %v != %v", s, first, second)
		}
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.0", "1.0.1", -1},
		{"1.1.0", "1.0.9", 1},
		{"2.0.0", "1.99.99", 1},
		{"1.9.0", "1.10.0", -1},
	}

	for _, tt := range tests {
		got := MustParse(tt.a).Compare(MustParse(tt.b))
		if got != tt.want {
			t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if less := MustParse(tt.a).Less(MustParse(tt.b)); less != (tt.want < 0) {
			t.Errorf("Less(%s, %s) = %v", tt.a, tt.b, less)
		}
	}
}

func TestIncrements(t *testing.T) {
	v := MustParse("1.19.3")

	v.IncrementPatch()
	if v != MustParse("1.19.4") {
		t.Errorf("IncrementPatch() = %v, want 1.19.4", v)
	}

	v.IncrementMinor()
	if v != MustParse("1.20.0") {
		t.Errorf("IncrementMinor() = %v, want 1.20.0", v)
	}

	v.IncrementPatch()
	v.IncrementMajor()
	if v != MustParse("2.0.0") {
		t.Errorf("IncrementMajor() = %v, want 2.0.0", v)
	}
}

func TestIsZero(t *testing.T) {
	if !Zero.IsZero() {
		t.Error("Zero.IsZero() = false")
	}
	if MustParse("0.0.1").IsZero() {
		t.Error("0.0.1 reported as zero")
	}
	if !MustParse("1.2.3").Equal(Version{Major: 1, Minor: 2, Patch: 3}) {
		t.Error("Equal() = false for identical versions")
	}
}

func TestReadInstalled(t *testing.T) {
	tests := []struct {
		name    string
		files   []string
		want    Version
		wantErr error
	}{
		{
			name:  "marker without extension",
			files: []string{"version-1.19.2"},
			want:  MustParse("1.19.2"),
		},
		{
			name:  "marker with txt extension",
			files: []string{"version-1.18.15.txt", "lang.json"},
			want:  MustParse("1.18.15"),
		},
		{
			name:    "no marker",
			files:   []string{"lang.json"},
			wantErr: ErrNoMarker,
		},
		{
			name:    "two markers",
			files:   []string{"version-1.19.2", "version-1.19.3"},
			wantErr: ErrMultipleMarkers,
		},
		{
			name:    "malformed marker",
			files:   []string{"version-latest"},
			wantErr: ErrMalformedVersion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			assets := filepath.Join(dir, AssetsDir)
			if err := os.MkdirAll(assets, 0755); err != nil {
				t.Fatal(err)
			}
			for _, f := range tt.files {
				if err := os.WriteFile(filepath.Join(assets, f), nil, 0644); err != nil {
					t.Fatal(err)
				}
			}

			got, err := ReadInstalled(dir)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ReadInstalled() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadInstalled() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ReadInstalled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadInstalled_NoAssetsDir(t *testing.T) {
	_, err := ReadInstalled(t.TempDir())
	if !errors.Is(err, ErrNoMarker) {
		t.Errorf("ReadInstalled() error = %v, want ErrNoMarker", err)
	}
}
