package weather

import "errors"

// Provider and aggregation failure classes. Provider clients wrap one of the
// first four; ErrNoData is produced only by the aggregation service when the
// merge of every eligible provider yields an empty observation.
var (
	// ErrInvalidCredentials means a required secret for an otherwise
	// eligible provider is missing or malformed.
	ErrInvalidCredentials = errors.New("invalid provider credentials")

	// ErrInvalidURL means request construction failed; this is a
	// programmer or configuration error, not a transient condition.
	ErrInvalidURL = errors.New("invalid request url")

	// ErrNetwork covers transport failures and timeouts.
	ErrNetwork = errors.New("network error")

	// ErrDecode means the payload did not match the expected shape.
	ErrDecode = errors.New("decode error")

	// ErrNoData means aggregation produced an observation with no
	// populated fields.
	ErrNoData = errors.New("no weather data from any provider")
)
