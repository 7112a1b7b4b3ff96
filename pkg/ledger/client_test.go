package ledger

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ybbus/jsonrpc"

	"github.com/tokenworks/mint-server/pkg/rate"
	"github.com/tokenworks/mint-server/pkg/retry"
)

// failingRPCClient fails every call with a fixed error, counting attempts.
type failingRPCClient struct {
	err   error
	calls int
}

func (f *failingRPCClient) Call(method string, params ...interface{}) (*jsonrpc.RPCResponse, error) {
	f.calls++
	return nil, f.err
}

func (f *failingRPCClient) CallRaw(request *jsonrpc.RPCRequest) (*jsonrpc.RPCResponse, error) {
	f.calls++
	return nil, f.err
}

func (f *failingRPCClient) CallFor(out interface{}, method string, params ...interface{}) error {
	f.calls++
	return f.err
}

func (f *failingRPCClient) CallBatch(requests jsonrpc.RPCRequests) (jsonrpc.RPCResponses, error) {
	f.calls++
	return nil, f.err
}

func (f *failingRPCClient) CallBatchRaw(requests jsonrpc.RPCRequests) (jsonrpc.RPCResponses, error) {
	f.calls++
	return nil, f.err
}

func newTestClient(rpc jsonrpc.RPCClient, retryLimit uint) *client {
	return &client{
		log:        logrus.StandardLogger().WithField("type", "ledger/client"),
		client:     rpc,
		commitment: CommitmentConfirmed,
		limiter:    &rate.NoLimiter{},
		retrier: retry.NewRetrier(
			retry.RetriableErrors(errRateLimited, errServiceError, errTransport),
			retry.Limit(retryLimit),
		),
	}
}

func TestClient_ErrorClassification(t *testing.T) {
	c := newTestClient(&failingRPCClient{}, 1)

	// Connection refused/reset and timeouts reach us as plain errors.
	err := c.handleRpcError("submitBatch", errors.New("connection refused"))
	assert.True(t, errors.Is(err, errTransport))
	assert.True(t, c.asSubmissionError(err).Retryable)

	err = c.handleRpcError("submitBatch", &jsonrpc.RPCError{Code: 429})
	assert.True(t, errors.Is(err, errRateLimited))
	assert.True(t, c.asSubmissionError(err).Retryable)

	err = c.handleRpcError("submitBatch", &jsonrpc.RPCError{Code: 503})
	assert.True(t, errors.Is(err, errServiceError))
	assert.True(t, c.asSubmissionError(err).Retryable)

	// Validation-class responses are terminal.
	err = c.handleRpcError("submitBatch", &jsonrpc.RPCError{Code: 400, Message: "bad instruction"})
	assert.False(t, c.asSubmissionError(err).Retryable)
}

func TestClient_TransportFailuresRetried(t *testing.T) {
	rpc := &failingRPCClient{err: errors.New("connection reset by peer")}
	c := newTestClient(rpc, 3)

	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	_, err = c.SubmitBatch(NewInstruction(pub, []byte{1}, NewAccountMeta(pub, true)))
	require.Error(t, err)

	// The transport failure burned the full retry budget and still
	// surfaces as retryable to the caller.
	assert.Equal(t, 3, rpc.calls)
	assert.True(t, IsRetryable(err))
}

func TestClient_TerminalRpcErrorNotRetried(t *testing.T) {
	rpc := &failingRPCClient{err: &jsonrpc.RPCError{Code: 400, Message: "bad instruction"}}
	c := newTestClient(rpc, 3)

	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	_, err = c.SubmitBatch(NewInstruction(pub, []byte{1}, NewAccountMeta(pub, true)))
	require.Error(t, err)

	assert.Equal(t, 1, rpc.calls)
	assert.False(t, IsRetryable(err))
}
