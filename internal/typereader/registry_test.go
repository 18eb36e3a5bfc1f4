package typereader

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveBuiltinNames(t *testing.T) {
	r := New()
	cases := map[string]Kind{
		"Microsoft.Xna.Framework.Content.Texture2DReader": KindTexture2D,
		"Microsoft.Xna.Framework.Content.ListReader":       KindList,
		"Magicka.ContentReaders.LevelModelReader":          KindLevelModel,
		"PolygonHead.Pipeline.BiTreeModelReader":           KindBiTreeModel,
	}
	for name, want := range cases {
		got, ok := r.Resolve(name)
		require.True(t, ok, "Resolve(%q): not found", name)
		require.Equal(t, want, got)
	}
}

func TestResolveUnknownName(t *testing.T) {
	r := New()
	_, ok := r.Resolve("Some.Unknown.Reader")
	require.False(t, ok, "expected unknown name to be unresolved")
}

func TestTrimAssemblyQualifier(t *testing.T) {
	name := "Microsoft.Xna.Framework.Content.Texture2DReader, MyGame, Version=1.0.0.0, Culture=neutral"
	require.Equal(t, "Microsoft.Xna.Framework.Content.Texture2DReader", TrimAssemblyQualifier(name))
	require.Equal(t, "NoComma", TrimAssemblyQualifier("NoComma"))
}

func TestLoadOverridesAddsEntry(t *testing.T) {
	r := New()
	data := []byte("readers:\n  Some.Modded.Content.WidgetReader: texture_2d\n")
	require.NoError(t, LoadOverrides(r, data))
	kind, ok := r.Resolve("Some.Modded.Content.WidgetReader")
	require.True(t, ok)
	require.Equal(t, KindTexture2D, kind)
}

func TestLoadOverridesUnknownKindFails(t *testing.T) {
	r := New()
	data := []byte("readers:\n  Foo: not_a_real_kind\n")
	require.Error(t, LoadOverrides(r, data))
}
