package cmd

import (
	"bytes"
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionCommandStructure(t *testing.T) {
	assert.NotNil(t, versionCmd)
	assert.Equal(t, "version", versionCmd.Use)
	assert.NotEmpty(t, versionCmd.Short)
	assert.NotEmpty(t, versionCmd.Long)
	assert.NotNil(t, versionCmd.Run)
}

func TestVersionOutputFormat(t *testing.T) {
	originalVersion := Version
	originalCommit := Commit
	defer func() {
		Version = originalVersion
		Commit = originalCommit
	}()

	Version = "1.2.3"
	Commit = "abc123"

	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	runVersion(versionCmd, []string{})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	assert.Len(t, lines, 6)
	assert.Contains(t, string(lines[0]), "idseek version 1.2.3")
	assert.Contains(t, string(lines[1]), "Commit: abc123")
	assert.Contains(t, string(lines[2]), "MySQL driver: ")
	assert.Contains(t, string(lines[3]), "Timestamp layout: 2006-01-02 15:04:05")
	assert.Contains(t, string(lines[4]), runtime.Version())
	assert.Contains(t, string(lines[5]), runtime.GOOS+"/"+runtime.GOARCH)
}

func TestReadBuildDetails(t *testing.T) {
	info := &debug.BuildInfo{
		Deps: []*debug.Module{
			{Path: "go.uber.org/zap", Version: "v1.27.1"},
			{Path: mysqlDriverModule, Version: "v1.9.3"},
		},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0f3c9e1"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	tests := []struct {
		name   string
		commit string
		info   *debug.BuildInfo
		want   buildDetails
	}{
		{
			name:   "ldflags commit wins",
			commit: "abc123",
			info:   info,
			want:   buildDetails{commit: "abc123", modified: true, driver: "v1.9.3"},
		},
		{
			name:   "falls back to vcs revision",
			commit: "unknown",
			info:   info,
			want:   buildDetails{commit: "0f3c9e1", modified: true, driver: "v1.9.3"},
		},
		{
			name:   "replaced driver",
			commit: "abc123",
			info: &debug.BuildInfo{Deps: []*debug.Module{
				{Path: mysqlDriverModule, Version: "v1.9.3", Replace: &debug.Module{Path: "../mysql", Version: "v1.9.4-fix"}},
			}},
			want: buildDetails{commit: "abc123", driver: "v1.9.4-fix"},
		},
		{
			name:   "no build info",
			commit: "unknown",
			info:   nil,
			want:   buildDetails{commit: "unknown", driver: "unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, readBuildDetails(tt.commit, tt.info))
		})
	}
}
