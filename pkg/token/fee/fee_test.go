package fee

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate_OnePercentUnderCap(t *testing.T) {
	// 1% of 50,000,000 with a 1,000,000 cap.
	fee, err := Calculate(50_000_000, 100, 1_000_000)
	require.NoError(t, err)
	assert.EqualValues(t, 500_000, fee)
}

func TestCalculate_Capped(t *testing.T) {
	// 1% of 200,000,000 is 2,000,000, above the 1,000,000 cap.
	fee, err := Calculate(200_000_000, 100, 1_000_000)
	require.NoError(t, err)
	assert.EqualValues(t, 1_000_000, fee)
}

func TestCalculate_ZeroRate(t *testing.T) {
	for _, amount := range []uint64{0, 1, 10_000, math.MaxUint64} {
		fee, err := Calculate(amount, 0, math.MaxUint64)
		require.NoError(t, err)
		assert.EqualValues(t, 0, fee)
	}
}

func TestCalculate_ZeroAmount(t *testing.T) {
	fee, err := Calculate(0, MaxBasisPoints, math.MaxUint64)
	require.NoError(t, err)
	assert.EqualValues(t, 0, fee)
}

func TestCalculate_ZeroCap(t *testing.T) {
	for _, rate := range []uint16{1, 100, MaxBasisPoints} {
		fee, err := Calculate(math.MaxUint64, rate, 0)
		require.NoError(t, err)
		assert.EqualValues(t, 0, fee)
	}
}

func TestCalculate_RateOutOfRange(t *testing.T) {
	_, err := Calculate(1_000_000, MaxBasisPoints+1, math.MaxUint64)
	assert.ErrorIs(t, err, ErrRateOutOfRange)
}

func TestCalculate_FloorRounding(t *testing.T) {
	// 0.01% of 9999 is 0.9999, which floors to 0.
	fee, err := Calculate(9_999, 1, math.MaxUint64)
	require.NoError(t, err)
	assert.EqualValues(t, 0, fee)

	fee, err = Calculate(10_001, 1, math.MaxUint64)
	require.NoError(t, err)
	assert.EqualValues(t, 1, fee)
}

func TestCalculate_WideIntermediate(t *testing.T) {
	// amount * rate exceeds 64 bits; the quotient must still be exact.
	fee, err := Calculate(math.MaxUint64, MaxBasisPoints, math.MaxUint64)
	require.NoError(t, err)
	assert.EqualValues(t, uint64(math.MaxUint64), fee)

	fee, err = Calculate(math.MaxUint64, 5_000, math.MaxUint64)
	require.NoError(t, err)
	assert.EqualValues(t, uint64(math.MaxUint64)/2, fee)
}

func TestCalculate_Bounds(t *testing.T) {
	amounts := []uint64{0, 1, 9_999, 10_000, 1 << 32, math.MaxUint64}
	rates := []uint16{0, 1, 99, 100, 9_999, MaxBasisPoints}
	caps := []uint64{0, 1, 1_000_000, math.MaxUint64}

	for _, amount := range amounts {
		for _, rate := range rates {
			for _, cap := range caps {
				fee, err := Calculate(amount, rate, cap)
				require.NoError(t, err)
				assert.LessOrEqual(t, fee, cap)
				assert.LessOrEqual(t, fee, amount)
			}
		}
	}
}
