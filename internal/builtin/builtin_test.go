package builtin

import (
	"context"
	"testing"

	"github.com/specialistvlad/hotunit/internal/registry"
	"github.com/specialistvlad/hotunit/internal/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestDefine(t *testing.T) {
	units, err := Define(unit.NewHCLRuntime())
	require.NoError(t, err)

	var names []string
	for _, u := range units {
		names = append(names, u.Name())
	}
	assert.ElementsMatch(t, []string{"std.Math", "std.Text"}, names)
}

func TestResolver(t *testing.T) {
	base, err := Resolver()
	require.NoError(t, err)
	ctx := context.Background()

	text, ok := base.Resolve("std.Text")
	require.True(t, ok)
	got, err := text.Call(ctx, "upper", map[string]cty.Value{"s": cty.StringVal("hot")})
	require.NoError(t, err)
	assert.Equal(t, "HOT", got.AsString())

	got, err = text.Call(ctx, "parts", map[string]cty.Value{"s": cty.StringVal("a;b"), "sep": cty.StringVal(";")})
	require.NoError(t, err)
	assert.True(t, got.Equals(cty.ListVal([]cty.Value{cty.StringVal("a"), cty.StringVal("b")})).True())

	math, ok := base.Resolve("std.Math")
	require.True(t, ok)
	values := cty.ListVal([]cty.Value{cty.NumberIntVal(3), cty.NumberIntVal(9), cty.NumberIntVal(4)})
	got, err = math.Call(ctx, "max", map[string]cty.Value{"values": values})
	require.NoError(t, err)
	assert.True(t, got.Equals(cty.NumberIntVal(9)).True())

	got, err = math.Call(ctx, "count", map[string]cty.Value{"values": values})
	require.NoError(t, err)
	assert.True(t, got.Equals(cty.NumberIntVal(3)).True())
}

func TestSearchPathShadowsBuiltin(t *testing.T) {
	base, err := Resolver()
	require.NoError(t, err)
	r := registry.New(registry.WithBase(base))
	ctx := context.Background()

	u, err := r.LoadByName(ctx, "std.Text")
	require.NoError(t, err)
	assert.Equal(t, "std.Text", u.Name())

	_, err = r.LoadFromBytes(ctx, []byte(`
unit "std.Text" {
  exports {
    upper = "shadowed"
  }
}
`), "std.Text")
	require.NoError(t, err)

	u, err = r.LoadByName(ctx, "std.Text")
	require.NoError(t, err)
	got, err := u.Call(ctx, "upper", nil)
	require.NoError(t, err)
	assert.Equal(t, "shadowed", got.AsString())
}
