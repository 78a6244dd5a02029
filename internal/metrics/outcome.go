package metrics

import "time"

// ErrorKind names the class of transport failure behind a failed Outcome.
type ErrorKind string

const (
	ErrorKindTimeout     ErrorKind = "timeout"
	ErrorKindConnRefused ErrorKind = "connection_refused"
	ErrorKindDNS         ErrorKind = "dns"
	ErrorKindMalformed   ErrorKind = "malformed_response"
	ErrorKindCanceled    ErrorKind = "canceled"
	ErrorKindOther       ErrorKind = "other"
)

// Outcome is the measured result of one request attempt. A request either
// completed with a status code or failed at the transport level with Err set.
type Outcome struct {
	StatusCode int
	Latency    time.Duration
	Bytes      int64
	Err        error
	Kind       ErrorKind
}

// Success builds the outcome of a request that produced a response.
// 4xx and 5xx statuses are successes at this level.
func Success(status int, bytes int64) Outcome {
	return Outcome{StatusCode: status, Bytes: bytes}
}

// Failure builds the outcome of a transport-level failure.
func Failure(err error) Outcome {
	return Outcome{Err: err, Kind: ClassifyError(err)}
}

// Failed reports whether the request failed before producing a status.
func (o Outcome) Failed() bool {
	return o.Err != nil
}
