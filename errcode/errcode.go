package errcode

// Code is a stable, bus-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes. The five taxonomy members below name the
// arbitration core's error classes; the rest are generic codes from
// the wider bus/backend plumbing, of which core also replies
// InvalidPayload and InvalidTopic to malformed requests.
const (
	OK Code = "ok"

	// ConfigInvalid: bad field count, length overflow, unparseable
	// integer, or an LED muxed to both engines. The offending pattern
	// is skipped with a warning; loading continues.
	ConfigInvalid Code = "config_invalid"
	// ConfigMissing: a required pattern has no definition.
	ConfigMissing Code = "config_missing"
	// BackendIOError: a file write, I2C ioctl, or indicator-service
	// call failed. Logged and swallowed; the arbiter is unaffected.
	BackendIOError Code = "backend_io_error"
	// BusTransportError: an outbound signal or inbound reply could
	// not be sent.
	BusTransportError Code = "bus_transport_error"
	// UnknownPattern: activate/deactivate named a pattern that is
	// not in the repository.
	UnknownPattern Code = "unknown_pattern"

	Busy           Code = "busy"
	Unsupported    Code = "unsupported"
	InvalidParams  Code = "invalid_params"
	InvalidPayload Code = "invalid_payload"
	InvalidTopic   Code = "invalid_topic"
	Timeout        Code = "timeout"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}

// MapDriverErr maps low-level driver errors to a Code.
// Extend the heuristics per platform/driver.
func MapDriverErr(err error) Code {
	if err == nil {
		return OK
	}
	return Error
}
