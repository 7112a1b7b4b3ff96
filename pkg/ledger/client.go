package ledger

import (
	"encoding/base64"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/ybbus/jsonrpc"
	xrate "golang.org/x/time/rate"

	"github.com/tokenworks/mint-server/pkg/rate"
	"github.com/tokenworks/mint-server/pkg/retry"
	"github.com/tokenworks/mint-server/pkg/retry/backoff"
)

// Receipt is the runtime's confirmation that a batch was applied.
type Receipt struct {
	Signature string
	Slot      uint64
}

// Client submits ordered operation batches to the external runtime.
type Client interface {
	// SubmitBatch submits an ordered batch of operations for atomic
	// application. The runtime verifies authorization proofs from every
	// signer the batch's instructions require. Transient failures are
	// retried internally with bounded backoff; the final error is a
	// *SubmissionError carrying the last underlying cause.
	SubmitBatch(instructions ...Instruction) (*Receipt, error)

	// GetMinimumBalanceForRentExemption returns the minimum reserve an
	// account of the given size must be funded with.
	GetMinimumBalanceForRentExemption(size uint64) (uint64, error)
}

type client struct {
	log        *logrus.Entry
	client     jsonrpc.RPCClient
	commitment Commitment
	limiter    rate.Limiter
	retrier    retry.Retrier
}

// New returns a client using the specified endpoint and confirmed
// commitment.
func New(endpoint string) Client {
	return NewWithConfig(Config{
		Endpoint:    endpoint,
		Commitment:  CommitmentConfirmed,
		RetryLimit:  defaultRetryLimit,
		BackoffBase: defaultBackoffBase,
		BackoffCap:  defaultBackoffCap,
	})
}

// NewWithConfig returns a client using the provided connection settings.
func NewWithConfig(conf Config) Client {
	var limiter rate.Limiter = &rate.NoLimiter{}
	if conf.RequestsPerSecond > 0 {
		limiter = rate.NewLocalRateLimiter(xrate.Limit(conf.RequestsPerSecond))
	}

	return &client{
		log:        logrus.StandardLogger().WithField("type", "ledger/client"),
		client:     jsonrpc.NewClient(conf.Endpoint),
		commitment: conf.Commitment,
		limiter:    limiter,
		retrier: retry.NewRetrier(
			retry.RetriableErrors(errRateLimited, errServiceError, errTransport),
			retry.Limit(conf.RetryLimit),
			retry.BackoffWithJitter(backoff.BinaryExponential(conf.BackoffBase), conf.BackoffCap, 0.1),
		),
	}
}

type accountMetaParam struct {
	PublicKey  string `json:"publicKey"`
	IsSigner   bool   `json:"isSigner"`
	IsWritable bool   `json:"isWritable"`
}

type instructionParam struct {
	Program  string             `json:"program"`
	Accounts []accountMetaParam `json:"accounts"`
	Data     string             `json:"data"`
}

type submitBatchConfig struct {
	IdempotencyKey string `json:"idempotencyKey"`
	Commitment     string `json:"commitment"`
}

type submitBatchResponse struct {
	Signature string `json:"signature"`
	Slot      uint64 `json:"slot"`
}

// SubmitBatch implements Client.SubmitBatch
func (c *client) SubmitBatch(instructions ...Instruction) (*Receipt, error) {
	if len(instructions) == 0 {
		return nil, &SubmissionError{Cause: errors.New("empty batch")}
	}

	params := make([]instructionParam, len(instructions))
	for i, instruction := range instructions {
		accounts := make([]accountMetaParam, len(instruction.Accounts))
		for j, account := range instruction.Accounts {
			accounts[j] = accountMetaParam{
				PublicKey:  base58.Encode(account.PublicKey),
				IsSigner:   account.IsSigner,
				IsWritable: account.IsWritable,
			}
		}

		params[i] = instructionParam{
			Program:  base58.Encode(instruction.Program),
			Accounts: accounts,
			Data:     base64.StdEncoding.EncodeToString(instruction.Data),
		}
	}

	config := submitBatchConfig{
		IdempotencyKey: uuid.New().String(),
		Commitment:     c.commitment.Commitment,
	}

	var response submitBatchResponse
	if err := c.call(&response, "submitBatch", params, config); err != nil {
		return nil, c.asSubmissionError(err)
	}

	return &Receipt{
		Signature: response.Signature,
		Slot:      response.Slot,
	}, nil
}

// GetMinimumBalanceForRentExemption implements Client.GetMinimumBalanceForRentExemption
func (c *client) GetMinimumBalanceForRentExemption(size uint64) (lamports uint64, err error) {
	if err := c.call(&lamports, "getMinimumBalanceForRentExemption", size); err != nil {
		return 0, errors.Wrap(err, "getMinimumBalanceForRentExemption() failed to send request")
	}

	return lamports, nil
}

func (c *client) call(out interface{}, method string, params ...interface{}) error {
	_, err := c.retrier.Retry(func() error {
		// Self-imposed limits ride the same retry and backoff path as
		// limits imposed by the endpoint.
		if allowed, err := c.limiter.Allow(method); err == nil && !allowed {
			return errRateLimited
		}

		err := c.client.CallFor(out, method, params...)
		if err == nil {
			return nil
		}

		return c.handleRpcError(method, err)
	})

	return err
}

func (c *client) handleRpcError(method string, err error) error {
	rpcErr, ok := err.(*jsonrpc.RPCError)
	if !ok {
		// Anything that never produced an RPC-level response is a
		// transport failure (refused/reset connections, timeouts) and
		// worth retrying.
		c.log.WithField("method", method).WithError(err).Warn("transport failure")
		return errors.Wrap(errTransport, err.Error())
	}
	if rpcErr.Code == 429 {
		c.log.WithField("method", method).Warn("rate limited")
		return errRateLimited
	}
	if rpcErr.Code >= 500 {
		return errServiceError
	}

	return err
}

// asSubmissionError classifies a final submission failure. Errors that
// exhausted the retrier's budget remain retryable from the caller's
// perspective; anything else is terminal.
func (c *client) asSubmissionError(err error) *SubmissionError {
	retryable := errors.Is(err, errRateLimited) ||
		errors.Is(err, errServiceError) ||
		errors.Is(err, errTransport)
	return &SubmissionError{
		Retryable: retryable,
		Cause:     err,
	}
}
