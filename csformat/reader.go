package csformat

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/zeebo/xxh3"

	"github.com/Soham-Moholkar/csidx/bitrank"
	"github.com/Soham-Moholkar/csidx/learnedrank"
	"github.com/Soham-Moholkar/csidx/wavelet"
)

// Reader is an opened, validated, mmap-backed index file. The Text and
// BWT sections are exposed as direct subslices of the mapping (zero
// copy); the structured sections (C table, SSA, wavelet levels) are
// decoded into newly allocated slices each time their accessor is called.
type Reader struct {
	file   *os.File
	mm     mmap.MMap
	header Header
}

// Open mmaps path, validates its header and footer checksum, and returns
// a Reader. The caller must call Close when done.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csformat: opening %s: %w", path, err)
	}
	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("csformat: mmap %s: %w", path, err)
	}
	r := &Reader{file: f, mm: mm}
	if err := r.parseAndValidate(); err != nil {
		r.Close()
		return nil, fmt.Errorf("%w: %s", err, path)
	}
	return r, nil
}

func (r *Reader) parseAndValidate() error {
	if len(r.mm) < HeaderSize+FooterSize {
		return ErrTruncated
	}
	var h Header
	copy(h.Magic[:], r.mm[0:8])
	if h.Magic != magic {
		return ErrBadMagic
	}
	h.Version = binary.LittleEndian.Uint16(r.mm[8:10])
	if h.Version != FormatVersion {
		return ErrBadVersion
	}
	h.Flags = binary.LittleEndian.Uint32(r.mm[12:16])
	h.TextLen = binary.LittleEndian.Uint64(r.mm[16:24])
	for i := 0; i < numSections; i++ {
		h.Offsets[i] = binary.LittleEndian.Uint64(r.mm[24+i*8 : 32+i*8])
	}
	for _, off := range h.Offsets {
		if off > uint64(len(r.mm)) {
			return ErrOffsetRange
		}
	}
	prev := uint64(HeaderSize)
	for sec := SecText; sec < numSections; sec++ {
		off := h.Offsets[sec]
		if off == 0 {
			continue // section not written (only one of Wavelet/vEB is)
		}
		if off < prev {
			return ErrOffsetRange
		}
		prev = off
	}
	r.header = h

	footerOff := h.Offsets[SecFooter]
	if footerOff+FooterSize > uint64(len(r.mm)) {
		return ErrTruncated
	}
	wantSum := binary.LittleEndian.Uint64(r.mm[footerOff : footerOff+8])
	var gotMagic [8]byte
	copy(gotMagic[:], r.mm[footerOff+8:footerOff+16])
	if gotMagic != footerMagic {
		return ErrTruncated
	}
	gotSum := xxh3.Hash(r.mm[HeaderSize:footerOff])
	if gotSum != wantSum {
		return ErrChecksum
	}
	return nil
}

// Close unmaps and closes the underlying file.
func (r *Reader) Close() error {
	var errs []error
	if r.mm != nil {
		if err := r.mm.Unmap(); err != nil {
			errs = append(errs, err)
		}
	}
	if r.file != nil {
		if err := r.file.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// Flags returns the header's feature-flag bitfield.
func (r *Reader) Flags() uint32 { return r.header.Flags }

// TextLen returns the indexed text length recorded in the header.
func (r *Reader) TextLen() uint64 { return r.header.TextLen }

func (r *Reader) cursorAt(sec int) readCursor {
	return readCursor{data: r.mm, pos: r.header.Offsets[sec]}
}

// Text returns the indexed text as a direct, zero-copy view into the
// mapped file.
func (r *Reader) Text() []byte {
	c := r.cursorAt(SecText)
	return c.byteArray()
}

// BWT returns the Burrows-Wheeler transform as a direct, zero-copy view
// into the mapped file.
func (r *Reader) BWT() []byte {
	c := r.cursorAt(SecBWT)
	return c.byteArray()
}

// CTable decodes and returns the 257-entry cumulative byte-frequency
// table.
func (r *Reader) CTable() []uint64 {
	c := r.cursorAt(SecCArray)
	return c.u64Array()
}

// SSA decodes and returns the sampled suffix array.
func (r *Reader) SSA() (stride uint32, samples []uint32) {
	c := r.cursorAt(SecSSA)
	stride = c.u32()
	samples = c.u32Array()
	return stride, samples
}

// Wavelet decodes and reconstructs the wavelet tree, selecting the vEB or
// flat section per the header's FlagVEBLayout bit, and rebuilding each
// level's rank dictionary from its persisted words via the same
// deterministic construction the writer used.
func (r *Reader) Wavelet() (*wavelet.Tree, error) {
	sec := SecWavelet
	useVEB := r.header.Flags&FlagVEBLayout != 0
	if useVEB {
		sec = SecVEB
	}
	c := r.cursorAt(sec)
	var levels [8]wavelet.RankDict
	var n uint64
	for level := 0; level < 8; level++ {
		if useVEB && level >= vebTopLevels {
			c.alignTo(vebMacroblockSize)
		}
		rd, levelN, err := r.readLevel(&c)
		if err != nil {
			return nil, fmt.Errorf("csformat: level %d: %w", level, err)
		}
		levels[level] = rd
		n = levelN
	}
	return wavelet.FromLevels(n, levels), nil
}

func (r *Reader) readLevel(c *readCursor) (wavelet.RankDict, uint64, error) {
	tag := c.raw(1)[0]
	switch tag {
	case backendClassical:
		n := c.u64()
		superBits := c.u32()
		subBits := c.u32()
		words := c.u64Array()
		return bitrank.FromWords(words, n, superBits, subBits), n, nil
	case backendLearned:
		n := c.u64()
		coarse := c.u32()
		micro := c.u32()
		tailBound := c.u32()
		words := c.u64Array()
		return learnedrank.FromWords(words, n, coarse, micro, tailBound), n, nil
	default:
		return nil, 0, fmt.Errorf("unknown rank dictionary backend tag %d", tag)
	}
}
