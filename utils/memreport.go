// Package utils holds cross-cutting reporting helpers shared by the
// builder and the CLI tools.
package utils

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// MemReport provides a detailed, hierarchical byte-size report for a
// component: a section of a built index, a rank dictionary level, or
// anything else worth breaking down for a human reading build output.
type MemReport struct {
	Name       string      `json:"name"`
	TotalBytes int64       `json:"total_bytes"`
	Children   []MemReport `json:"children,omitempty"`
}

// Leaf builds a childless MemReport for a single measured component.
func Leaf(name string, bytes int64) MemReport {
	return MemReport{Name: name, TotalBytes: bytes}
}

// Branch builds a MemReport whose TotalBytes is the sum of its children.
func Branch(name string, children ...MemReport) MemReport {
	var total int64
	for _, c := range children {
		total += c.TotalBytes
	}
	return MemReport{Name: name, TotalBytes: total, Children: children}
}

// Print formats and prints the MemReport as a tree, with byte counts
// rendered both raw and in human-readable form (e.g. "1.2 MB").
func (r MemReport) Print(indent int) {
	fmt.Print(r.line(indent))
	for _, child := range r.Children {
		child.Print(indent + 1)
	}
}

// JSON returns a JSON string representation of the MemReport.
func (r MemReport) JSON() string {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf(`{"error": "%s"}`, err.Error())
	}
	return string(b)
}

// String returns a string representation of the MemReport as a tree.
func (r MemReport) String() string {
	var sb strings.Builder
	r.buildString(&sb, 0)
	return sb.String()
}

func (r MemReport) line(indent int) string {
	prefix := strings.Repeat("  ", indent)
	return fmt.Sprintf("%s- %s: %d bytes (%s)\n", prefix, r.Name, r.TotalBytes, humanize.Bytes(uint64(r.TotalBytes)))
}

func (r MemReport) buildString(sb *strings.Builder, indent int) {
	sb.WriteString(r.line(indent))
	for _, child := range r.Children {
		child.buildString(sb, indent+1)
	}
}
