package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name      string
		in        Config
		want      *Config
		expectErr bool
	}{
		{
			name: "defaults applied",
			in:   Config{SearchPath: "/plugins"},
			want: &Config{SearchPath: "/plugins", LogFormat: "text", LogLevel: "info"},
		},
		{
			name: "explicit values kept",
			in:   Config{SearchPath: "/plugins", LogFormat: "json", LogLevel: "debug", HealthcheckPort: 8080, Preload: []string{"a.Foo"}},
			want: &Config{SearchPath: "/plugins", LogFormat: "json", LogLevel: "debug", HealthcheckPort: 8080, Preload: []string{"a.Foo"}},
		},
		{name: "error - missing search path", in: Config{}, expectErr: true},
		{name: "error - bad format", in: Config{SearchPath: "/p", LogFormat: "xml"}, expectErr: true},
		{name: "error - bad level", in: Config{SearchPath: "/p", LogLevel: "trace"}, expectErr: true},
		{name: "error - bad port", in: Config{SearchPath: "/p", HealthcheckPort: 70000}, expectErr: true},
		{name: "error - bad preload name", in: Config{SearchPath: "/p", Preload: []string{"a..b"}}, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NewConfig(tc.in)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("NewConfig() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	want := Config{
		SearchPath:      "/srv/units",
		Preload:         []string{"a.Foo", "b.Bar"},
		LogFormat:       "json",
		LogLevel:        "debug",
		HealthcheckPort: 9090,
	}

	files := map[string]string{
		"hotunit.hcl": `
search_path      = "/srv/units"
preload          = ["a.Foo", "b.Bar"]
log_format       = "json"
log_level        = "debug"
healthcheck_port = 9090
`,
		"hotunit.toml": `
search_path = "/srv/units"
preload = ["a.Foo", "b.Bar"]
log_format = "json"
log_level = "debug"
healthcheck_port = 9090
`,
		"hotunit.yaml": `
search_path: /srv/units
preload:
  - a.Foo
  - b.Bar
log_format: json
log_level: debug
healthcheck_port: 9090
`,
	}

	dir := t.TempDir()
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(p, []byte(content), 0o600))

			got, err := LoadConfigFile(p)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("LoadConfigFile() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadConfigFile_Errors(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"unknown.toml": "search_path = \"/p\"\nbogus = 1\n",
		"unknown.yaml": "search_path: /p\nbogus: 1\n",
		"unknown.hcl":  "search_path = \"/p\"\nbogus = 1\n",
		"broken.hcl":   "search_path = ",
		"config.json":  "{}",
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(p, []byte(content), 0o600))

			_, err := LoadConfigFile(p)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigFile_EmptyYAML(t *testing.T) {
	p := filepath.Join(t.TempDir(), "empty.yml")
	require.NoError(t, os.WriteFile(p, nil, 0o600))

	got, err := LoadConfigFile(p)
	require.NoError(t, err)
	assert.Equal(t, Config{}, got)
}
