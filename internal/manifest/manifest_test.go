package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestReadVersion tests version lookup across manifest styles
func TestReadVersion(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr error
	}{
		{
			name: "standard manifest",
			content: `{
  "type": "code",
  "name": "Carry Capacity",
  "modid": "carrycapacity",
  "version": "1.1.0",
  "dependencies": { "game": "1.19.0" }
}`,
			want: "1.1.0",
		},
		{
			name: "pascal case key without trailing comma",
			content: `{
  "Name": "Primitive Survival",
  "Version": "3.7.4"
}`,
			want: "3.7.4",
		},
		{
			name: "commented out version is ignored",
			content: `{
  // "version": "0.0.1",
  "version": "0.2.0",
}`,
			want: "0.2.0",
		},
		{
			name:    "no version key",
			content: `{ "name": "x" }`,
			wantErr: ErrNoVersion,
		},
		{
			name: "similar key is not a version",
			content: `{
  "versionCheck": "false"
}`,
			wantErr: ErrNoVersion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, ModInfoFile), []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			got, err := ReadVersion(dir)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ReadVersion() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadVersion() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ReadVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestReadVersion_MissingFile tests error handling for a missing manifest
func TestReadVersion_MissingFile(t *testing.T) {
	_, err := ReadVersion(t.TempDir())
	if err == nil {
		t.Fatal("ReadVersion() expected error for missing manifest")
	}
	if !os.IsNotExist(errors.Unwrap(err)) {
		t.Errorf("ReadVersion() error = %v, want wrapped not-exist error", err)
	}
}
