// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestListenPortValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		port    ListenPort
		wantErr bool
	}{
		{name: "min", port: 1},
		{name: "registry default", port: 5000},
		{name: "max", port: 65535},
		{name: "zero requires an explicit port", port: 0, wantErr: true},
		{name: "negative", port: -1, wantErr: true},
		{name: "too large", port: 65536, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.port.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidListenPort) {
					t.Errorf("Validate() error = %v, want ErrInvalidListenPort", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestListenPortString(t *testing.T) {
	t.Parallel()

	if got := ListenPort(5000).String(); got != "5000" {
		t.Errorf("String() = %q, want %q", got, "5000")
	}
}
