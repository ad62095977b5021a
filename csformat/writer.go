package csformat

import (
	"encoding/binary"
	"fmt"

	"github.com/zeebo/xxh3"

	"github.com/Soham-Moholkar/csidx/bitrank"
	"github.com/Soham-Moholkar/csidx/learnedrank"
	"github.com/Soham-Moholkar/csidx/wavelet"
)

// Writer serializes one index build into the binary format. Sections must
// be written in the order Text, BWT, CTable, SSA, Wavelet; Finalize then
// writes the footer and backfills the header.
type Writer struct {
	flags   uint32
	body    writeCursor
	offsets [numSections]uint64
	useVEB  bool
}

// NewWriter starts a fresh writer. flags should already have FlagVEBLayout
// and FlagLearnedOcc set to match the config the index was built with;
// WriteWavelet reads FlagVEBLayout back off the writer to choose the
// section layout.
func NewWriter(flags uint32) *Writer {
	w := &Writer{flags: flags, useVEB: flags&FlagVEBLayout != 0}
	return w
}

// WriteText appends the Text section.
func (w *Writer) WriteText(text []byte) {
	w.body.alignTo(8)
	w.offsets[SecText] = HeaderSize + w.body.pos()
	w.body.byteArray(text)
}

// WriteBWT appends the BWT section.
func (w *Writer) WriteBWT(bwt []byte) {
	w.body.alignTo(8)
	w.offsets[SecBWT] = HeaderSize + w.body.pos()
	w.body.byteArray(bwt)
}

// WriteCTable appends the C-array section: the 257-entry cumulative
// byte-frequency table.
func (w *Writer) WriteCTable(c []uint64) {
	w.body.alignTo(8)
	w.offsets[SecCArray] = HeaderSize + w.body.pos()
	w.body.u64Array(c)
}

// WriteSSA appends the sampled suffix array section.
func (w *Writer) WriteSSA(stride uint32, samples []uint32) {
	w.body.alignTo(8)
	w.offsets[SecSSA] = HeaderSize + w.body.pos()
	w.body.u32(stride)
	w.body.u32Array(samples)
}

// WriteWavelet appends the wavelet tree section: 8 rank-dictionary levels,
// each tagged with its backend and written with only the scalars needed
// to rebuild it via bitrank.FromWords / learnedrank.FromWords. Under the
// vEB layout the first two levels are written inline and every remaining
// level is padded to a 4096-byte boundary before it starts.
func (w *Writer) WriteWavelet(tree *wavelet.Tree) error {
	sec := SecWavelet
	if w.useVEB {
		sec = SecVEB
		w.body.alignAbsoluteTo(HeaderSize, vebMacroblockSize)
	} else {
		w.body.alignTo(8)
	}
	w.offsets[sec] = HeaderSize + w.body.pos()
	for level := 0; level < 8; level++ {
		if w.useVEB && level >= vebTopLevels {
			w.body.alignAbsoluteTo(HeaderSize, vebMacroblockSize)
		}
		if err := w.writeLevel(tree.Level(level)); err != nil {
			return fmt.Errorf("csformat: level %d: %w", level, err)
		}
	}
	return nil
}

func (w *Writer) writeLevel(rd wavelet.RankDict) error {
	switch d := rd.(type) {
	case *bitrank.Dict:
		words, n, superBits, subBits := d.Export()
		w.body.raw([]byte{backendClassical})
		w.body.u64(n)
		w.body.u32(superBits)
		w.body.u32(subBits)
		w.body.u64Array(words)
	case *learnedrank.Dict:
		words, n, coarse, micro, tailBound := d.Export()
		w.body.raw([]byte{backendLearned})
		w.body.u64(n)
		w.body.u32(coarse)
		w.body.u32(micro)
		w.body.u32(tailBound)
		w.body.u64Array(words)
	default:
		return fmt.Errorf("unsupported rank dictionary backend %T", rd)
	}
	return nil
}

// Finalize appends the footer (an xxh3-64 checksum over every section
// written so far, followed by the sentinel magic) and returns the
// complete file image with the header backfilled at offset 0.
func (w *Writer) Finalize(textLen uint64) []byte {
	sum := xxh3.Hash(w.body.buf)
	w.offsets[SecFooter] = HeaderSize + w.body.pos()
	w.body.u64(sum)
	w.body.raw(footerMagic[:])

	out := make([]byte, HeaderSize+len(w.body.buf))
	copy(out[0:8], magic[:])
	binary.LittleEndian.PutUint16(out[8:10], FormatVersion)
	// out[10:12] is the reserved field, left zero.
	binary.LittleEndian.PutUint32(out[12:16], w.flags)
	binary.LittleEndian.PutUint64(out[16:24], textLen)
	w.offsets[SecHeader] = 0
	for i, off := range w.offsets {
		binary.LittleEndian.PutUint64(out[24+i*8:32+i*8], off)
	}
	copy(out[HeaderSize:], w.body.buf)
	return out
}
