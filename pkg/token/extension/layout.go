package extension

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// MintBaseSize is the byte footprint of a mint before any extensions.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program/src/state.rs
const MintBaseSize = 82

// tlvHeaderSize is a u16 extension type plus a u16 length.
const tlvHeaderSize = 4

// Entry locates one extension's value bytes within an account image.
// Offset is the position of the value, immediately after the TLV header.
type Entry struct {
	Type   Type
	Offset uint32
	Size   uint32
}

// Layout is the exact storage layout of an extensible account. It is
// computed once, before the account is funded, and must match the external
// runtime's on-chain representation byte for byte.
type Layout struct {
	BaseSize  uint32
	Entries   []Entry
	TotalSize uint32
}

// ComputeLayout sizes an account for the requested extension set. It is a
// pure function and safe to call repeatedly with candidate sets before
// committing to one.
//
// Extensions are laid out in catalog declaration order at strictly
// increasing, non-overlapping offsets: the base account bytes first, then
// for each extension a TLV header followed by its value bytes.
func ComputeLayout(types []Type, contentSizes map[Type]uint32) (*Layout, error) {
	requested := make(map[Type]struct{}, len(types))
	for _, t := range types {
		if _, err := getDescriptor(t); err != nil {
			return nil, err
		}
		if _, ok := requested[t]; ok {
			return nil, errors.Wrap(ErrDuplicateExtension, t.Name())
		}
		requested[t] = struct{}{}
	}

	for _, t := range types {
		desc, _ := getDescriptor(t)
		for _, other := range desc.incompatible {
			if _, ok := requested[other]; ok {
				return nil, errors.Wrapf(ErrIncompatibleExtensions, "%s cannot coexist with %s", t.Name(), other.Name())
			}
		}
	}

	layout := &Layout{
		BaseSize:  MintBaseSize,
		TotalSize: MintBaseSize,
	}

	for _, desc := range catalog {
		if _, ok := requested[desc.extensionType]; !ok {
			continue
		}

		var contentSize *uint32
		if size, ok := contentSizes[desc.extensionType]; ok {
			contentSize = &size
		}

		size, err := Footprint(desc.extensionType, contentSize)
		if err != nil {
			return nil, err
		}

		layout.Entries = append(layout.Entries, Entry{
			Type:   desc.extensionType,
			Offset: layout.TotalSize + tlvHeaderSize,
			Size:   size,
		})
		layout.TotalSize += tlvHeaderSize + size
	}

	return layout, nil
}

// Marshal renders the layout as an account image of exactly TotalSize
// bytes: zeroed base and value regions with TLV headers in place.
func (l *Layout) Marshal() []byte {
	b := make([]byte, l.TotalSize)
	for _, entry := range l.Entries {
		headerOffset := entry.Offset - tlvHeaderSize
		binary.LittleEndian.PutUint16(b[headerOffset:], uint16(entry.Type))
		binary.LittleEndian.PutUint16(b[headerOffset+2:], uint16(entry.Size))
	}
	return b
}

// ParseLayout recovers the extension layout from an account image by
// walking the TLV entries after the base account bytes. It is the inverse
// of ComputeLayout followed by Marshal.
func ParseLayout(data []byte) (*Layout, error) {
	if len(data) < MintBaseSize {
		return nil, errors.Errorf("account data too short for mint base: got %d, want at least %d", len(data), MintBaseSize)
	}

	layout := &Layout{
		BaseSize:  MintBaseSize,
		TotalSize: MintBaseSize,
	}

	offset := uint32(MintBaseSize)
	for {
		if offset+tlvHeaderSize > uint32(len(data)) {
			break
		}

		extensionType := Type(binary.LittleEndian.Uint16(data[offset:]))
		length := uint32(binary.LittleEndian.Uint16(data[offset+2:]))

		// Trailing zero padding marks the end of the entries.
		if extensionType == TypeUninitialized && length == 0 {
			break
		}

		if _, err := getDescriptor(extensionType); err != nil {
			return nil, err
		}
		if offset+tlvHeaderSize+length > uint32(len(data)) {
			return nil, errors.Errorf("invalid TLV length %d for %s at offset %d", length, extensionType.Name(), offset)
		}

		layout.Entries = append(layout.Entries, Entry{
			Type:   extensionType,
			Offset: offset + tlvHeaderSize,
			Size:   length,
		})
		offset += tlvHeaderSize + length
		layout.TotalSize = offset
	}

	return layout, nil
}

// Find returns the entry for the provided extension type, if present.
func (l *Layout) Find(t Type) (*Entry, bool) {
	for i := range l.Entries {
		if l.Entries[i].Type == t {
			return &l.Entries[i], true
		}
	}
	return nil, false
}
