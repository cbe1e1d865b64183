package security

import "testing"

func TestValidateFilename(t *testing.T) {
	v := NewValidator(0)

	tests := []struct {
		name     string
		filename string
		wantErr  bool
	}{
		{"simple filename", "photo.jpg", false},
		{"nested filename", "album/photo.jpg", false},
		{"empty", "", true},
		{"absolute path", "/etc/passwd", true},
		{"parent escape", "../escape.jpg", true},
		{"bare dotdot", "..", true},
		{"cleaned escape", "album/../../escape.jpg", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateFilename(tt.filename)
			if tt.wantErr && err == nil {
				t.Errorf("expected %q to be rejected", tt.filename)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected %q to be accepted, got %v", tt.filename, err)
			}
		})
	}
}

func TestValidateFileSize(t *testing.T) {
	v := NewValidator(10)

	if err := v.ValidateFileSize(10); err != nil {
		t.Errorf("size at the limit should pass, got %v", err)
	}
	if err := v.ValidateFileSize(11); err == nil {
		t.Error("size over the limit should fail")
	}

	unlimited := NewValidator(0)
	if err := unlimited.ValidateFileSize(1 << 40); err != nil {
		t.Errorf("zero limit disables the check, got %v", err)
	}
}
