package retry

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type fakeSleeper struct {
	delays []time.Duration
}

func (f *fakeSleeper) Sleep(d time.Duration) {
	f.delays = append(f.delays, d)
}

func TestRetry_NoStrategies(t *testing.T) {
	calls := 0
	attempts, err := Retry(func() error {
		calls++
		return nil
	})
	assert.NoError(t, err)
	assert.EqualValues(t, 1, attempts)
	assert.Equal(t, 1, calls)
}

func TestRetry_Limit(t *testing.T) {
	errTest := errors.New("test")

	calls := 0
	attempts, err := Retry(func() error {
		calls++
		return errTest
	}, Limit(3))

	assert.Equal(t, errTest, err)
	assert.EqualValues(t, 3, attempts)
	assert.Equal(t, 3, calls)
}

func TestRetry_RetriableErrors(t *testing.T) {
	errRetriable := errors.New("retriable")
	errFatal := errors.New("fatal")

	calls := 0
	_, err := Retry(func() error {
		calls++
		if calls < 3 {
			return errRetriable
		}
		return errFatal
	}, RetriableErrors(errRetriable))

	assert.Equal(t, errFatal, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_NonRetriableErrors(t *testing.T) {
	errFatal := errors.New("fatal")

	calls := 0
	_, err := Retry(func() error {
		calls++
		return errFatal
	}, NonRetriableErrors(errFatal))

	assert.Equal(t, errFatal, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_WrappedErrors(t *testing.T) {
	errRetriable := errors.New("retriable")

	calls := 0
	_, err := Retry(func() error {
		calls++
		return errors.Wrap(errRetriable, "call failed")
	}, RetriableErrors(errRetriable), Limit(3))

	assert.True(t, errors.Is(err, errRetriable))
	assert.Equal(t, 3, calls)
}

func TestRetry_Backoff(t *testing.T) {
	sleeper := &fakeSleeper{}
	sleeperImpl = sleeper
	defer func() { sleeperImpl = &realSleeper{} }()

	errTest := errors.New("test")

	_, err := Retry(func() error {
		return errTest
	}, Limit(4), Backoff(func(attempts uint) time.Duration {
		return time.Duration(attempts) * time.Second
	}, 2*time.Second))

	assert.Equal(t, errTest, err)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 2 * time.Second}, sleeper.delays)
}
