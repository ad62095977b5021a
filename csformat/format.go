// Package csformat is the on-disk binary index format (C7): an 88-byte
// header, eight offset-addressed sections, and an mmap-based zero-copy
// loader built on github.com/edsrzf/mmap-go.
package csformat

import "errors"

// FormatVersion is the only version this reader accepts.
const FormatVersion uint16 = 1

// Section indices into Header.Offsets. The header occupies index 0 by
// convention (offset 0), the rest name the sections a Writer lays out in
// order.
const (
	SecHeader = iota
	SecText
	SecBWT
	SecCArray
	SecSSA
	SecWavelet
	SecVEB
	SecFooter
	numSections
)

// HeaderSize is the fixed size in bytes of the leading header: 8-byte
// magic, 2-byte version, 2 reserved bytes, 4-byte flags, 8-byte text
// length, 8 offsets of 8 bytes each.
const HeaderSize = 8 + 2 + 2 + 4 + 8 + numSections*8

// FooterSize is the fixed size of the trailing footer: an 8-byte xxh3-64
// checksum followed by an 8-byte sentinel.
const FooterSize = 8 + 8

// Feature flag bits, stored in Header.Flags.
const (
	FlagLearnedOcc uint32 = 1 << 0
	FlagVEBLayout  uint32 = 1 << 1
	// FlagHuffmanWavelet and FlagCompressedSSA are reserved for future
	// layout variants; no writer in this package ever sets them.
	FlagHuffmanWavelet uint32 = 1 << 2
	FlagCompressedSSA  uint32 = 1 << 3
)

// vebMacroblockSize is the alignment boundary for each non-inline wavelet
// level under the vEB layout, matching the reference layout's macroblock
// size.
const vebMacroblockSize = 4096

// vebTopLevels is the number of leading wavelet levels stored inline
// (no per-level padding) under the vEB layout.
const vebTopLevels = 2

var magic = [8]byte{'C', 'S', 'I', 'D', 'X', 0, 0, 0}
var footerMagic = [8]byte{'C', 'S', 'E', 'N', 'D', 0, 0, 0}

// Rank dictionary backend tags, written ahead of each wavelet level.
const (
	backendClassical byte = 0
	backendLearned    byte = 1
)

var (
	// ErrBadMagic means the file does not start with the CSIDX magic.
	ErrBadMagic = errors.New("csformat: bad magic")
	// ErrBadVersion means the header's format version is not one this
	// reader understands.
	ErrBadVersion = errors.New("csformat: unsupported format version")
	// ErrTruncated means the file is shorter than its header or footer
	// claim it should be.
	ErrTruncated = errors.New("csformat: truncated file")
	// ErrOffsetRange means a section offset in the header points outside
	// the mapped file, or before the offset of a section laid out ahead
	// of it.
	ErrOffsetRange = errors.New("csformat: section offset out of range")
	// ErrChecksum means the footer checksum does not match the recomputed
	// xxh3-64 hash of the section payloads.
	ErrChecksum = errors.New("csformat: checksum mismatch")
)

// Header is the decoded 88-byte file header.
type Header struct {
	Magic    [8]byte
	Version  uint16
	Reserved uint16
	Flags    uint32
	TextLen  uint64
	Offsets  [numSections]uint64
}
