package magicka

import (
	"fmt"

	"github.com/deepteams/magicka/internal/asset"
	"github.com/deepteams/magicka/internal/byteio"
	"github.com/deepteams/magicka/internal/container"
	"github.com/deepteams/magicka/internal/texcache"
	"github.com/deepteams/magicka/internal/typereader"
)

// Container is the fully deserialized result of one Open call: the parsed
// header, the recognized type-reader names, and the recursively decoded
// asset graph. Close releases every owned buffer reachable from Asset.
type Container struct {
	Platform   string
	HiDef      bool
	Compressed bool

	// TypeReaderNames holds the type-reader names recorded in this
	// container's payload, in on-wire order, regardless of whether each
	// was recognized by the registry.
	TypeReaderNames []string

	// Asset is the primary asset decoded from the payload. It is never
	// nil; an empty primary asset slot decodes to asset.None{}.
	Asset asset.Variant

	decodeInfo container.DecodeInfo
	cache      *texcache.Cache
}

// Features summarizes the flags and diagnostics a caller would otherwise
// have to dig out of Container's internals.
type Features struct {
	Platform        string
	HiDef           bool
	Compressed      bool
	IntelE8Detected bool
}

// Features reports c's container-level flags and decoder diagnostics.
func (c *Container) Features() Features {
	return Features{
		Platform:        c.Platform,
		HiDef:           c.HiDef,
		Compressed:      c.Compressed,
		IntelE8Detected: c.decodeInfo.IntelE8Detected,
	}
}

// Close releases every buffer owned by c.Asset (pool-backed mip, vertex,
// and index payloads; child nodes of recursive structures). A second Close
// is a no-op, since the first one clears Asset.
func (c *Container) Close() {
	if c.Asset != nil {
		c.Asset.Release()
		c.Asset = nil
	}
}

// Option configures Open.
type Option func(*openOptions)

type openOptions struct {
	registryOverrides []byte
	cache             *texcache.Cache
}

// WithRegistryOverrides extends the built-in type-reader registry with the
// YAML document described by typereader.LoadOverrides before the asset
// graph is read, letting a caller recognize mod content's own reader
// types without a code change.
func WithRegistryOverrides(yamlDoc []byte) Option {
	return func(o *openOptions) { o.registryOverrides = yamlDoc }
}

// WithTextureCache supplies a shared texcache.Cache for this Open call's
// DecodeMip calls to memoize through, instead of the private per-Container
// cache Open creates by default. Share one Cache across Containers that
// reuse the same texture content (an atlas referenced by many levels) to
// amortize block-codec decode cost across them.
func WithTextureCache(c *texcache.Cache) Option {
	return func(o *openOptions) { o.cache = c }
}

// Open parses data as a complete Magicka content file: header, optional
// LZX-compressed payload, type-reader table, and asset graph.
func Open(data []byte, opts ...Option) (*Container, error) {
	var o openOptions
	for _, opt := range opts {
		opt(&o)
	}

	src := byteio.NewSource(data)
	h, err := container.ReadHeader(src)
	if err != nil {
		return nil, fmt.Errorf("magicka: reading header: %w", err)
	}

	payload, info, err := container.ReadPayload(src, h)
	if err != nil {
		return nil, fmt.Errorf("magicka: reading payload: %w", err)
	}

	registry := typereader.New()
	if o.registryOverrides != nil {
		if err := typereader.LoadOverrides(registry, o.registryOverrides); err != nil {
			return nil, fmt.Errorf("magicka: loading registry overrides: %w", err)
		}
	}

	r := asset.NewReader(byteio.NewSource(payload), registry)
	if err := r.ReadTypeReaders(); err != nil {
		return nil, fmt.Errorf("magicka: reading type-reader table: %w", err)
	}
	primary, err := r.ReadGraph()
	if err != nil {
		return nil, fmt.Errorf("magicka: reading asset graph: %w", err)
	}

	cache := o.cache
	if cache == nil {
		cache = texcache.New()
	}

	platformName := map[container.Platform]string{
		container.PlatformWindows:      "windows",
		container.PlatformWindowsPhone: "windows-phone",
		container.PlatformXbox360:      "xbox360",
	}[h.Platform]

	return &Container{
		Platform:        platformName,
		HiDef:           h.HiDef,
		Compressed:      h.Compressed,
		TypeReaderNames: r.TypeReaderNames(),
		Asset:           primary,
		decodeInfo:      info,
		cache:           cache,
	}, nil
}

// DecodeMip decodes one mip of a Texture2D to tightly packed RGBA8,
// memoized through c's texture cache.
func DecodeMip(c *Container, tex *asset.Texture2D, mipIndex int) ([]byte, error) {
	if mipIndex < 0 || mipIndex >= len(tex.Mips) {
		return nil, fmt.Errorf("magicka: mip index %d out of range [0,%d)", mipIndex, len(tex.Mips))
	}
	w, h := mipDimensions(int(tex.Width), int(tex.Height), mipIndex)
	return c.cache.DecodeMip(texcache.PixelFormat(tex.Format), w, h, tex.Mips[mipIndex])
}

// mipDimensions halves width/height once per mip level down to a 1x1
// floor, the standard mip-chain convention every XNA-style texture uses.
func mipDimensions(width, height, level int) (int, int) {
	for i := 0; i < level; i++ {
		if width > 1 {
			width /= 2
		}
		if height > 1 {
			height /= 2
		}
	}
	return width, height
}
