// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package asset implements the Binary Formats (BF) component of
// spec §3/§4.10: the on-disk mesh and material-blueprint file
// layouts, each framed by a 4-character tag and a version, and
// the asset-ID remap table loaders use to translate source-side
// IDs into runtime references.
//
// The tag+version+length-prefixed-sections framing is grounded
// on the teacher's gltf/glb.go, which reads a GLB file's
// {magic, version, length} header followed by a chain of
// {length, type} chunks via encoding/binary with explicit
// little-endian byte order; asset generalizes that same
// technique to the two formats spec §4.10 defines, rather than
// to GLB's fixed JSON+BIN chunk pair.
package asset

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const prefix = "asset: "

func newErr(reason string) error { return errors.New(prefix + reason) }

// ErrUnsupportedFormat is returned when a file's tag or version
// does not match what the loader expects (spec §7:
// UnsupportedFormat, fatal to that asset load).
var ErrUnsupportedFormat = newErr("unsupported asset format")

// Tag is a 4-character format identifier, stored on disk as
// four raw bytes (not null-terminated; always exactly 4).
type Tag [4]byte

func (t Tag) String() string { return string(t[:]) }

// NewTag builds a Tag from a string, panicking if it is not
// exactly 4 bytes; used only with compile-time-constant tag
// literals.
func NewTag(s string) Tag {
	if len(s) != 4 {
		panic("asset: tag must be exactly 4 characters: " + s)
	}
	var t Tag
	copy(t[:], s)
	return t
}

// Header is the common {formatType, formatVersion} prefix every
// asset file begins with (spec §4.10).
type Header struct {
	Tag     Tag
	Version uint32
}

// byteOrder is little-endian throughout, per spec §6.
var byteOrder = binary.LittleEndian

// ReadHeader reads and validates a Header against wantTag; any
// version is accepted by ReadHeader itself; callers compare
// Header.Version against the versions they know how to read.
func ReadHeader(r io.Reader, wantTag Tag) (Header, error) {
	var raw [8]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return Header{}, fmt.Errorf("%s%w", prefix, err)
	}
	var h Header
	copy(h.Tag[:], raw[0:4])
	h.Version = byteOrder.Uint32(raw[4:8])
	if h.Tag != wantTag {
		return Header{}, fmt.Errorf("%w: tag %q, want %q", ErrUnsupportedFormat, h.Tag, wantTag)
	}
	return h, nil
}

// WriteHeader writes h in the on-disk byte order.
func WriteHeader(w io.Writer, h Header) error {
	var raw [8]byte
	copy(raw[0:4], h.Tag[:])
	byteOrder.PutUint32(raw[4:8], h.Version)
	_, err := w.Write(raw[:])
	return err
}

// readUint32 and writeUint32 are the section-length-prefix
// primitives every array field in spec §4.10 uses.
func readUint32(r io.Reader) (uint32, error) {
	var raw [4]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return 0, err
	}
	return byteOrder.Uint32(raw[:]), nil
}

func writeUint32(w io.Writer, v uint32) error {
	var raw [4]byte
	byteOrder.PutUint32(raw[:], v)
	_, err := w.Write(raw[:])
	return err
}

// readBytes reads a length-prefixed byte section.
func readBytes(r io.Reader) ([]byte, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

func writeBytes(w io.Writer, b []byte) error {
	if err := writeUint32(w, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// AsBytes returns the contents of a bytes.Buffer (or any byte
// slice holder) without copying, for callers that built up a
// file in memory before handing it to a loader in tests.
func AsBytes(buf *bytes.Buffer) []byte { return buf.Bytes() }
