package storage

import (
	"context"
	"testing"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{
			name:    "valid context",
			ctx:     context.Background(),
			wantErr: false,
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: true,
		},
		{
			name: "canceled context still valid",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateContext() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateKeyAndTag(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		check   func(string) error
		wantErr bool
	}{
		{name: "plain key", value: "vaultswipe_mvp1", check: validateKey},
		{name: "empty key", value: "", check: validateKey, wantErr: true},
		{name: "slash key", value: "a/b", check: validateKey, wantErr: true},
		{name: "backslash key", value: `a\b`, check: validateKey, wantErr: true},
		{name: "dotdot key", value: "..", check: validateKey, wantErr: true},
		{name: "plain tag", value: "before-import", check: validateTag},
		{name: "tag with slash", value: "x/y", check: validateTag, wantErr: true},
		{name: "padded tag", value: " x ", check: validateTag, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
