// Package config is the configuration surface (C8): build-time parameters
// and feature flags for the index, their defaults, their cross-field
// validation, and TOML load/save so a build can be driven from a config
// file instead of hand-built Go values.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds every build-time parameter recognized by the builder.
type Config struct {
	SSAStride      uint32 `toml:"ssa_stride"`
	SuperBlockBits uint32 `toml:"super_block_bits"`
	SubBlockBits   uint32 `toml:"sub_block_bits"`
	CoarseStrideS  uint32 `toml:"coarse_stride_s"`
	MicroStrideS   uint32 `toml:"micro_stride_s"`
	TailPopcountR  uint32 `toml:"tail_popcount_r"`
	UseLearnedOcc  bool   `toml:"use_learned_occ"`
	UseVEBLayout   bool   `toml:"use_veb_layout"`
}

// Default returns 32-byte SSA stride, 2048/256-bit rank blocks, 512/32-bit
// learned-rank strides, a 2-word bounded popcount tail, classical
// (non-learned) occ, and vEB layout enabled.
func Default() Config {
	return Config{
		SSAStride:      32,
		SuperBlockBits: 2048,
		SubBlockBits:   256,
		CoarseStrideS:  512,
		MicroStrideS:   32,
		TailPopcountR:  2,
		UseLearnedOcc:  false,
		UseVEBLayout:   true,
	}
}

// Option mutates a Config in place; used with New for a fluent build-time
// override of the defaults.
type Option func(*Config)

// New returns Default() with the given options applied.
func New(opts ...Option) Config {
	c := Default()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithSSAStride overrides the SA sampling stride.
func WithSSAStride(stride uint32) Option { return func(c *Config) { c.SSAStride = stride } }

// WithRankBlocks overrides the classical bit-rank dictionary's block sizes.
func WithRankBlocks(superBits, subBits uint32) Option {
	return func(c *Config) { c.SuperBlockBits, c.SubBlockBits = superBits, subBits }
}

// WithLearnedOcc overrides the learned-rank strides and selects the
// learned backend.
func WithLearnedOcc(coarse, micro, tailR uint32) Option {
	return func(c *Config) {
		c.CoarseStrideS, c.MicroStrideS, c.TailPopcountR = coarse, micro, tailR
		c.UseLearnedOcc = true
	}
}

// WithVEBLayout toggles the cache-oblivious level packing.
func WithVEBLayout(enabled bool) Option { return func(c *Config) { c.UseVEBLayout = enabled } }

// ErrInvalidParameter wraps every cross-field validation failure.
var ErrInvalidParameter = fmt.Errorf("config: invalid parameter")

// Validate checks: super_block_bits a multiple of sub_block_bits;
// sub_block_bits a multiple of 64; coarse_stride_S a multiple of
// micro_stride_s; ssa_stride at least 1.
func (c Config) Validate() error {
	if c.SSAStride < 1 {
		return fmt.Errorf("%w: ssa_stride must be >= 1, got %d", ErrInvalidParameter, c.SSAStride)
	}
	if c.SubBlockBits == 0 || c.SubBlockBits%64 != 0 {
		return fmt.Errorf("%w: sub_block_bits must be a positive multiple of 64, got %d", ErrInvalidParameter, c.SubBlockBits)
	}
	if c.SuperBlockBits == 0 || c.SuperBlockBits%c.SubBlockBits != 0 {
		return fmt.Errorf("%w: super_block_bits must be a positive multiple of sub_block_bits, got %d (sub=%d)", ErrInvalidParameter, c.SuperBlockBits, c.SubBlockBits)
	}
	if c.MicroStrideS == 0 || c.CoarseStrideS == 0 || c.CoarseStrideS%c.MicroStrideS != 0 {
		return fmt.Errorf("%w: coarse_stride_S must be a positive multiple of micro_stride_s, got %d (micro=%d)", ErrInvalidParameter, c.CoarseStrideS, c.MicroStrideS)
	}
	return nil
}

// Load reads a Config from a TOML file, applying defaults for any field
// the file omits.
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Save writes c to path as TOML.
func (c Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshaling: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}
