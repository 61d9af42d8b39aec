package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/hotunit/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

const doubleSrc = `
unit "math.Double" {
  description = "Doubles a number."

  input "n" {
    type = number
  }

  exports {
    result = input.n * 2
  }
}
`

const helloSrc = `
unit "greeter.Hello" {
  input "name" {
    type    = string
    default = "world"
  }

  exports {
    greeting = "Hello, ${input.name}!"
  }
}
`

func unitsDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for rel, src := range map[string]string{
		"math/Double.unit":   doubleSrc,
		"greeter/Hello.unit": helloSrc,
	} {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(src), 0o600))
	}
	return root
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := Execute(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func requireExitCode(t *testing.T, err error, code int) {
	t.Helper()
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "expected *ExitError, got %T: %v", err, err)
	assert.Equal(t, code, exitErr.Code)
}

func TestCall(t *testing.T) {
	dir := unitsDir(t)

	testCases := []struct {
		name string
		args []string
		want string
	}{
		{name: "number input", args: []string{"math.Double", "result", "n=21"}, want: "42\n"},
		{name: "default input", args: []string{"greeter.Hello", "greeting"}, want: "\"Hello, world!\"\n"},
		{name: "string input", args: []string{"greeter.Hello", "greeting", "name=gopher"}, want: "\"Hello, gopher!\"\n"},
		{name: "quoted json input", args: []string{"greeter.Hello", "greeting", `name="42"`}, want: "\"Hello, 42!\"\n"},
		{name: "built-in unit", args: []string{"std.Math", "max", "values=[3,9,4]"}, want: "9\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, _, err := execute(t, append([]string{"--path", dir, "call"}, tc.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out)
		})
	}
}

func TestCall_Errors(t *testing.T) {
	dir := unitsDir(t)

	t.Run("missing arguments", func(t *testing.T) {
		_, _, err := execute(t, "--path", dir, "call", "math.Double")
		requireExitCode(t, err, 2)
	})

	t.Run("malformed input", func(t *testing.T) {
		_, _, err := execute(t, "--path", dir, "call", "math.Double", "result", "n")
		requireExitCode(t, err, 2)
	})

	t.Run("duplicate input", func(t *testing.T) {
		_, _, err := execute(t, "--path", dir, "call", "math.Double", "result", "n=1", "n=2")
		requireExitCode(t, err, 2)
	})

	t.Run("unknown unit", func(t *testing.T) {
		_, logs, err := execute(t, "--path", dir, "call", "nope.Missing", "x")
		assert.ErrorIs(t, err, registry.ErrNotFound)
		assert.Contains(t, logs, "Failed to fetch unit resource.")
	})

	t.Run("invalid unit name", func(t *testing.T) {
		_, _, err := execute(t, "--path", dir, "call", "bad..name", "x")
		assert.ErrorIs(t, err, registry.ErrInvalidName)
	})

	t.Run("missing search path", func(t *testing.T) {
		_, _, err := execute(t, "call", "math.Double", "result", "n=1")
		requireExitCode(t, err, 2)
	})
}

func TestList(t *testing.T) {
	out, _, err := execute(t, "--path", unitsDir(t), "list")
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace([]byte(out)), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Contains(t, string(lines[0]), "NAME")
	assert.Contains(t, string(lines[1]), "greeter.Hello")
	assert.Contains(t, string(lines[1]), "greeting")
	assert.Contains(t, string(lines[2]), "math.Double")
	assert.Contains(t, string(lines[2]), "result")
}

func TestList_WithConfigFileAndOverride(t *testing.T) {
	dir := unitsDir(t)
	cfgPath := filepath.Join(t.TempDir(), "hotunit.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"search_path = \""+filepath.ToSlash(dir)+"\"\npreload = [\"math.Double\"]\nlog_level = \"debug\"\n",
	), 0o600))

	out, logs, err := execute(t, "--config", cfgPath, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "math.Double")
	assert.NotContains(t, out, "greeter.Hello")
	assert.Contains(t, logs, "level=DEBUG")

	out, _, err = execute(t, "--config", cfgPath, "--preload", "greeter.Hello", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "greeter.Hello")
	assert.NotContains(t, out, "math.Double")
}

func TestFlagErrors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{name: "unknown flag", args: []string{"--this-is-not-a-valid-flag"}},
		{name: "unknown command", args: []string{"frobnicate"}},
		{name: "bad log level", args: []string{"--path", ".", "--log-level", "trace", "list"}},
		{name: "bad log format", args: []string{"--path", ".", "--log-format", "xml", "list"}},
		{name: "serve without port", args: []string{"--path", ".", "serve"}},
		{name: "version with arguments", args: []string{"version", "extra"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := execute(t, tc.args...)
			requireExitCode(t, err, 2)
		})
	}
}

func TestHelpAndVersion(t *testing.T) {
	out, _, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "call")

	out, _, err = execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "hotunit "+Version+"\n", out)
}

func TestParseValue(t *testing.T) {
	assert.True(t, parseValue("21").Equals(cty.NumberIntVal(21)).True())
	assert.True(t, parseValue("true").RawEquals(cty.True))
	assert.True(t, parseValue("gopher").RawEquals(cty.StringVal("gopher")))
	assert.True(t, parseValue(`"21"`).RawEquals(cty.StringVal("21")))
	assert.True(t, parseValue("").RawEquals(cty.StringVal("")))
}
