package extension

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeLayout_SingleExtension(t *testing.T) {
	layout, err := ComputeLayout([]Type{TypeTransferFeeConfig}, nil)
	require.NoError(t, err)

	assert.EqualValues(t, MintBaseSize, layout.BaseSize)
	require.Len(t, layout.Entries, 1)
	assert.Equal(t, TypeTransferFeeConfig, layout.Entries[0].Type)
	assert.EqualValues(t, MintBaseSize+tlvHeaderSize, layout.Entries[0].Offset)
	assert.EqualValues(t, 108, layout.Entries[0].Size)
	assert.EqualValues(t, MintBaseSize+tlvHeaderSize+108, layout.TotalSize)
}

func TestComputeLayout_CanonicalOrder(t *testing.T) {
	// Request order must not affect the layout.
	a, err := ComputeLayout([]Type{TypeMetadataPointer, TypeTransferFeeConfig}, nil)
	require.NoError(t, err)
	b, err := ComputeLayout([]Type{TypeTransferFeeConfig, TypeMetadataPointer}, nil)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	require.Len(t, a.Entries, 2)
	assert.Equal(t, TypeTransferFeeConfig, a.Entries[0].Type)
	assert.Equal(t, TypeMetadataPointer, a.Entries[1].Type)
}

func TestComputeLayout_OffsetsStrictlyIncreasing(t *testing.T) {
	contentSizes := map[Type]uint32{TypeTokenMetadata: 256}
	all := []Type{
		TypeTransferFeeConfig,
		TypeMintCloseAuthority,
		TypeDefaultAccountState,
		TypePermanentDelegate,
		TypeMetadataPointer,
		TypeTokenMetadata,
	}

	layout, err := ComputeLayout(all, contentSizes)
	require.NoError(t, err)
	require.Len(t, layout.Entries, len(all))

	var expectedTotal = uint32(MintBaseSize)
	prevEnd := uint32(MintBaseSize)
	for _, entry := range layout.Entries {
		assert.EqualValues(t, prevEnd+tlvHeaderSize, entry.Offset)
		prevEnd = entry.Offset + entry.Size
		expectedTotal += tlvHeaderSize + entry.Size
	}
	assert.Equal(t, expectedTotal, layout.TotalSize)
	assert.Equal(t, prevEnd, layout.TotalSize)
}

func TestComputeLayout_Empty(t *testing.T) {
	layout, err := ComputeLayout(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, layout.Entries)
	assert.EqualValues(t, MintBaseSize, layout.TotalSize)
}

func TestComputeLayout_Errors(t *testing.T) {
	_, err := ComputeLayout([]Type{Type(9999)}, nil)
	assert.ErrorIs(t, err, ErrUnknownExtension)

	_, err = ComputeLayout([]Type{TypeTransferFeeConfig, TypeTransferFeeConfig}, nil)
	assert.ErrorIs(t, err, ErrDuplicateExtension)

	_, err = ComputeLayout([]Type{TypeTokenMetadata}, nil)
	assert.ErrorIs(t, err, ErrMissingContentSize)

	_, err = ComputeLayout([]Type{TypeTokenMetadata}, map[Type]uint32{TypeTokenMetadata: 1 << 20})
	assert.ErrorIs(t, err, ErrContentTooLarge)
}

func TestLayout_RoundTrip(t *testing.T) {
	original, err := ComputeLayout(
		[]Type{TypeTransferFeeConfig, TypeMetadataPointer, TypeTokenMetadata},
		map[Type]uint32{TypeTokenMetadata: 128},
	)
	require.NoError(t, err)

	parsed, err := ParseLayout(original.Marshal())
	require.NoError(t, err)

	assert.Equal(t, original, parsed)
}

func TestParseLayout_Truncated(t *testing.T) {
	_, err := ParseLayout(make([]byte, MintBaseSize-1))
	assert.Error(t, err)
}

func TestParseLayout_BareMint(t *testing.T) {
	layout, err := ParseLayout(make([]byte, MintBaseSize))
	require.NoError(t, err)
	assert.Empty(t, layout.Entries)
	assert.EqualValues(t, MintBaseSize, layout.TotalSize)
}

func TestFootprint(t *testing.T) {
	size, err := Footprint(TypeMintCloseAuthority, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 32, size)

	contentSize := uint32(64)
	size, err = Footprint(TypeTokenMetadata, &contentSize)
	require.NoError(t, err)
	assert.EqualValues(t, 64, size)

	_, err = Footprint(Type(9999), nil)
	assert.ErrorIs(t, err, ErrUnknownExtension)
}
