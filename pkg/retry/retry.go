package retry

// Action is a function to be executed in a retriable manner.
type Action func() error

// Retrier retries actions using a fixed set of strategies.
type Retrier interface {
	Retry(action Action) (uint, error)
}

type retrier struct {
	strategies []Strategy
}

// NewRetrier returns a Retrier that retries actions based off of the
// provided strategies.
func NewRetrier(strategies ...Strategy) Retrier {
	return &retrier{
		strategies: strategies,
	}
}

func (r *retrier) Retry(action Action) (uint, error) {
	return Retry(action, r.strategies...)
}

// Retry executes the provided action, retrying on error until one of the
// provided strategies indicates no further attempts should be made. The
// number of attempts performed is returned alongside the final error.
//
// Strategies are evaluated in order, so strategies that sleep should be
// placed last.
func Retry(action Action, strategies ...Strategy) (uint, error) {
	for i := uint(1); ; i++ {
		err := action()
		if err == nil {
			return i, nil
		}

		for _, s := range strategies {
			if !s(i, err) {
				return i, err
			}
		}
	}
}
