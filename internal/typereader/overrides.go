package typereader

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// overrideFile is the on-disk shape accepted by LoadOverrides: a flat map of
// type-reader name (or prefix) to the asset-kind string spat out by
// Kind.String, letting an operator extend the registry for mod content that
// ships its own content-reader types without a code change.
type overrideFile struct {
	Readers map[string]string `yaml:"readers"`
}

var kindByName = map[string]Kind{
	"string":                  KindString,
	"texture_2d":              KindTexture2D,
	"texture_3d":              KindTexture3D,
	"model":                   KindModel,
	"vertex_declaration":      KindVertexDeclaration,
	"vertex_buffer":           KindVertexBuffer,
	"index_buffer":            KindIndexBuffer,
	"list":                    KindList,
	"bi_tree_model":           KindBiTreeModel,
	"render_deferred_effect":  KindRenderDeferredEffect,
	"level_model":             KindLevelModel,
}

// LoadOverrides parses a YAML document of the form:
//
//	readers:
//	  Some.Modded.Content.WidgetReader: texture_2d
//
// and registers each entry into r. Unknown asset-kind strings and entries
// naming a built-in type-reader are errors; the registry is left unmodified
// if parsing fails partway.
func LoadOverrides(r *Registry, data []byte) error {
	var f overrideFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("typereader: parsing overrides: %w", err)
	}

	resolved := make(map[string]Kind, len(f.Readers))
	for name, kindName := range f.Readers {
		if _, builtin := defaultNames[name]; builtin {
			return fmt.Errorf("typereader: override %q: built-in type-reader names cannot be overridden", name)
		}
		kind, ok := kindByName[kindName]
		if !ok {
			return fmt.Errorf("typereader: override %q: unknown asset kind %q", name, kindName)
		}
		resolved[name] = kind
	}

	for name, kind := range resolved {
		r.Register(name, kind)
	}
	return nil
}
