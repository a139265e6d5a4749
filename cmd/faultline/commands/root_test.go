package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevelFlags(t *testing.T) {
	tests := []struct {
		name         string
		flags        []string
		env          map[string]string
		wantDefault  string
		wantPackages map[string]string
		wantErr      bool
	}{
		{
			name:         "plain default",
			flags:        []string{"debug"},
			wantDefault:  "debug",
			wantPackages: map[string]string{},
		},
		{
			name:         "per package",
			flags:        []string{"default=warn", "verdict.*=debug"},
			wantDefault:  "warn",
			wantPackages: map[string]string{"verdict.*": "debug"},
		},
		{
			name:         "env var",
			flags:        []string{"info"},
			env:          map[string]string{"LOG_LEVEL_VERDICT_REST": "error"},
			wantDefault:  "info",
			wantPackages: map[string]string{"verdict.rest": "error"},
		},
		{
			name:         "flag beats env",
			flags:        []string{"apiserver=debug"},
			env:          map[string]string{"LOG_LEVEL_APISERVER": "warn"},
			wantDefault:  "info",
			wantPackages: map[string]string{"apiserver": "debug"},
		},
		{
			name:    "invalid default",
			flags:   []string{"loud"},
			wantErr: true,
		},
		{
			name:    "invalid package level",
			flags:   []string{"mcp=chatty"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			def, pkgs, err := parseLogLevelFlags(tt.flags)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDefault, def)
			for pkg, level := range tt.wantPackages {
				assert.Equal(t, level, pkgs[pkg], "level for %s", pkg)
			}
		})
	}
}

func TestConvertEnvKeyToPackageName(t *testing.T) {
	assert.Equal(t, "verdict.rest", convertEnvKeyToPackageName("LOG_LEVEL_VERDICT_REST"))
	assert.Equal(t, "apiserver", convertEnvKeyToPackageName("LOG_LEVEL_APISERVER"))
}
