package ledger

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Commitment is the confirmation level a submission waits for before the
// runtime acknowledges it.
type Commitment struct {
	Commitment string `json:"commitment"`
}

var (
	CommitmentProcessed = Commitment{Commitment: "processed"}
	CommitmentConfirmed = Commitment{Commitment: "confirmed"}
	CommitmentFinalized = Commitment{Commitment: "finalized"}
)

const (
	envPrefix = "mint_server"

	defaultCommitment  = "confirmed"
	defaultRetryLimit  = 3
	defaultBackoffBase = time.Second
	defaultBackoffCap  = 10 * time.Second
)

// Config carries the runtime connection settings. The core passes these
// through as opaque knobs; it never interprets them beyond wiring the
// submission client.
type Config struct {
	Endpoint    string
	Commitment  Commitment
	RetryLimit  uint
	BackoffBase time.Duration
	BackoffCap  time.Duration

	// RequestsPerSecond self-limits outbound calls per RPC method before
	// the endpoint does it for us. Zero disables the limiter.
	RequestsPerSecond float64
}

// LoadConfig reads connection settings from the environment
// (MINT_SERVER_LEDGER_*), falling back to sane defaults for everything but
// the endpoint.
func LoadConfig() Config {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("ledger.commitment", defaultCommitment)
	v.SetDefault("ledger.retry_limit", defaultRetryLimit)
	v.SetDefault("ledger.backoff_base", defaultBackoffBase)
	v.SetDefault("ledger.backoff_cap", defaultBackoffCap)
	v.SetDefault("ledger.requests_per_second", 0)

	return Config{
		Endpoint:          v.GetString("ledger.endpoint"),
		Commitment:        Commitment{Commitment: v.GetString("ledger.commitment")},
		RetryLimit:        v.GetUint("ledger.retry_limit"),
		BackoffBase:       v.GetDuration("ledger.backoff_base"),
		BackoffCap:        v.GetDuration("ledger.backoff_cap"),
		RequestsPerSecond: v.GetFloat64("ledger.requests_per_second"),
	}
}
