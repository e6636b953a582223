package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoString(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{
			name: "dev build",
			info: Info{Version: "dev", CommitHash: "abcdef0123", BuildTime: "unknown"},
			want: "fbstubs dev (commit abcdef0, built unknown)",
		},
		{
			name: "tagged build",
			info: Info{Version: "v1.2.0", CommitHash: "1234567", BuildTime: "2026-01-02"},
			want: "fbstubs v1.2.0 (commit 1234567, built 2026-01-02)",
		},
		{
			name: "unparseable version",
			info: Info{Version: "main-branch", CommitHash: "dev", BuildTime: "unknown"},
			want: "fbstubs dev (commit dev, built unknown)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.String())
		})
	}
}

func TestGet(t *testing.T) {
	info := Get()
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
	assert.Equal(t, Version, info.Version)
}

func TestUserAgent(t *testing.T) {
	assert.Equal(t, "fbstubs/v1.2.0", Info{Version: "v1.2.0", CommitHash: "1234567abc"}.UserAgent())
	assert.Equal(t, "fbstubs/dev+1234567", Info{Version: "dev", CommitHash: "1234567abc"}.UserAgent())
}
