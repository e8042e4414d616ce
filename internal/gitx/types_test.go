// SPDX-License-Identifier: MPL-2.0

package gitx

import (
	"errors"
	"testing"
)

func TestGitURLValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     GitURL
		wantErr bool
	}{
		{name: "https", url: "https://example.com/repo.git"},
		{name: "ssh", url: "git@example.com:org/repo.git"},
		{name: "local path", url: "/tmp/repos/component"},
		{name: "empty", url: "", wantErr: true},
		{name: "whitespace", url: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.url.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidGitURL) {
					t.Errorf("Validate() error = %v, want ErrInvalidGitURL", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestGitCommitValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		commit  GitCommit
		wantErr bool
	}{
		{name: "valid", commit: "0123456789abcdef0123456789abcdef01234567"},
		{name: "too short", commit: "abc123", wantErr: true},
		{name: "uppercase", commit: "0123456789ABCDEF0123456789ABCDEF01234567", wantErr: true},
		{name: "empty", commit: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.commit.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidGitCommit) {
					t.Errorf("Validate() error = %v, want ErrInvalidGitCommit", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}
