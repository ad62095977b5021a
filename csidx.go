// Package csidx builds and queries compressed succinct full-text indexes
// over byte strings: suffix array and BWT construction, a rank-dictionary
// backed wavelet tree, a sampled suffix array, and an FM-index search
// engine, serialized to a single mmap-friendly file.
//
// A typical build/query cycle:
//
//	b, err := csidx.Build(text, config.Default())
//	err = b.Save("corpus.csidx")
//	idx, err := csidx.Open("corpus.csidx")
//	defer idx.Close()
//	n := idx.Count([]byte("needle"))
package csidx

import (
	"fmt"
	"os"
	"time"

	"github.com/Soham-Moholkar/csidx/bitrank"
	"github.com/Soham-Moholkar/csidx/config"
	"github.com/Soham-Moholkar/csidx/csformat"
	"github.com/Soham-Moholkar/csidx/fmindex"
	"github.com/Soham-Moholkar/csidx/learnedrank"
	"github.com/Soham-Moholkar/csidx/ssa"
	"github.com/Soham-Moholkar/csidx/sufsort"
	"github.com/Soham-Moholkar/csidx/utils"
	"github.com/Soham-Moholkar/csidx/wavelet"
)

var debug bool

func init() {
	debug = os.Getenv("DEBUG") == "1"
}

func debugf(format string, args ...any) {
	if debug {
		fmt.Fprintf(os.Stderr, "csidx: "+format+"\n", args...)
	}
}

// BuildStats records what a build produced: sizes, timing, and the
// backend choices made, for CLI reporting and for tests. It is not persisted in
// the binary format; Open never returns a populated Stats() beyond what
// can be recomputed cheaply from the reopened sections.
type BuildStats struct {
	N              uint64
	AlphabetSize   int
	LearnedOcc     bool
	VEBLayout      bool
	BuildDuration  time.Duration
	Sizes          utils.MemReport
}

// Config re-exports config.Config so callers need only import csidx for
// the common path.
type Config = config.Config

// Builder holds an index built in memory, ready to be written to disk.
// It does not support querying directly: Save, then Open the result.
type Builder struct {
	text  []byte
	c     fmindex.CTable
	bwt   []byte
	sa    []uint32
	ssa   *ssa.SSA
	tree  *wavelet.Tree
	cfg   config.Config
	stats BuildStats
}

// Build constructs an in-memory index over text using cfg. text is used
// as-is: callers wanting the sentinel convention described for the CLI
// tools must append it themselves before calling Build.
func Build(text []byte, cfg config.Config) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	sa := sufsort.BuildSA(text)
	debugf("suffix array built: n=%d", len(text))
	bwt := sufsort.BuildBWT(text, sa)
	c := fmindex.BuildCTable(text)

	sampled, err := ssa.Build(sa, cfg.SSAStride)
	if err != nil {
		return nil, fmt.Errorf("csidx: building sampled suffix array: %w", err)
	}

	tree := wavelet.Build(bwt, rankBuilder(cfg))
	debugf("wavelet tree built: learned_occ=%v veb=%v", cfg.UseLearnedOcc, cfg.UseVEBLayout)

	alphabet := alphabetSize(text)
	sizes := buildSizeReport(text, bwt, c, sampled, tree)

	b := &Builder{
		text: text,
		c:    c,
		bwt:  bwt,
		sa:   sa,
		ssa:  sampled,
		tree: tree,
		cfg:  cfg,
		stats: BuildStats{
			N:             uint64(len(text)),
			AlphabetSize:  alphabet,
			LearnedOcc:    cfg.UseLearnedOcc,
			VEBLayout:     cfg.UseVEBLayout,
			BuildDuration: time.Since(start),
			Sizes:         sizes,
		},
	}
	return b, nil
}

// Stats returns the statistics gathered while building.
func (b *Builder) Stats() BuildStats { return b.stats }

// Save serializes the built index to path in the binary format described
// by the csformat package.
func (b *Builder) Save(path string) error {
	var flags uint32
	if b.cfg.UseLearnedOcc {
		flags |= csformat.FlagLearnedOcc
	}
	if b.cfg.UseVEBLayout {
		flags |= csformat.FlagVEBLayout
	}
	w := csformat.NewWriter(flags)
	w.WriteText(b.text)
	w.WriteBWT(b.bwt)
	w.WriteCTable(b.c[:])
	w.WriteSSA(b.ssa.Stride, b.ssa.Samples)
	if err := w.WriteWavelet(b.tree); err != nil {
		return fmt.Errorf("csidx: writing wavelet section: %w", err)
	}
	data := w.Finalize(uint64(len(b.text)))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("csidx: writing %s: %w", path, err)
	}
	return nil
}

func rankBuilder(cfg config.Config) wavelet.Builder {
	if cfg.UseLearnedOcc {
		return func(bits []bool) wavelet.RankDict {
			return learnedrank.Build(bits, cfg.CoarseStrideS, cfg.MicroStrideS, cfg.TailPopcountR)
		}
	}
	return func(bits []bool) wavelet.RankDict {
		return bitrank.Build(bits, cfg.SuperBlockBits, cfg.SubBlockBits)
	}
}

func alphabetSize(text []byte) int {
	var seen [256]bool
	n := 0
	for _, b := range text {
		if !seen[b] {
			seen[b] = true
			n++
		}
	}
	return n
}

func buildSizeReport(text, bwt []byte, c fmindex.CTable, sampled *ssa.SSA, tree *wavelet.Tree) utils.MemReport {
	levels := make([]utils.MemReport, 8)
	for i := 0; i < 8; i++ {
		levels[i] = utils.Leaf(fmt.Sprintf("level_%d", i), levelBytes(tree.Level(i)))
	}
	return utils.Branch("csidx index",
		utils.Leaf("text", int64(len(text))),
		utils.Leaf("bwt", int64(len(bwt))),
		utils.Leaf("c_table", int64(len(c)*8)),
		utils.Leaf("ssa", int64(len(sampled.Samples)*4)),
		utils.Branch("wavelet", levels...),
	)
}

func levelBytes(rd wavelet.RankDict) int64 {
	switch d := rd.(type) {
	case *bitrank.Dict:
		words, _, _, _ := d.Export()
		return int64(len(words) * 8)
	case *learnedrank.Dict:
		words, _, _, _, _ := d.Export()
		return int64(len(words) * 8)
	default:
		return 0
	}
}

// Index is an opened, queryable index, backed by an mmap'd file.
type Index struct {
	r     *csformat.Reader
	fm    *fmindex.Index
	stats BuildStats
}

// Open mmaps and validates path, then assembles a queryable Index. The
// underlying file stays mapped until Close is called.
func Open(path string) (*Index, error) {
	r, err := csformat.Open(path)
	if err != nil {
		return nil, err
	}
	tree, err := r.Wavelet()
	if err != nil {
		r.Close()
		return nil, err
	}
	stride, samples := r.SSA()
	sampled := &ssa.SSA{Stride: stride, Samples: samples}
	var c fmindex.CTable
	rawC := r.CTable()
	if len(rawC) != len(c) {
		r.Close()
		return nil, fmt.Errorf("csidx: %s: c-table has %d entries, want %d", path, len(rawC), len(c))
	}
	copy(c[:], rawC)

	text := r.Text()
	fm := fmindex.New(r.TextLen(), c, tree, sampled, text)

	idx := &Index{
		r:  r,
		fm: fm,
		stats: BuildStats{
			N:          r.TextLen(),
			LearnedOcc: r.Flags()&csformat.FlagLearnedOcc != 0,
			VEBLayout:  r.Flags()&csformat.FlagVEBLayout != 0,
		},
	}
	return idx, nil
}

// Close unmaps the underlying file.
func (idx *Index) Close() error { return idx.r.Close() }

// Count returns the number of occurrences of pattern.
func (idx *Index) Count(pattern []byte) uint64 { return idx.fm.Count(pattern) }

// Locate returns up to limit occurrence positions of pattern.
func (idx *Index) Locate(pattern []byte, limit int) ([]uint64, error) {
	return idx.fm.Locate(pattern, limit)
}

// Extract returns text[pos : pos+length), clamped to the text length.
func (idx *Index) Extract(pos, length uint64) ([]byte, error) {
	if pos >= idx.fm.N() {
		return nil, fmt.Errorf("csidx: extract: pos %d out of range for text of length %d", pos, idx.fm.N())
	}
	return idx.fm.Extract(pos, length), nil
}

// Stats returns build/geometry statistics for this index.
func (idx *Index) Stats() BuildStats { return idx.stats }
