package querycache

// QueryError is the error half of the remote store's result envelope.
type QueryError struct {
	Message string `json:"message" msgpack:"message"`
	Code    string `json:"code,omitempty" msgpack:"code,omitempty"`
	Details string `json:"details,omitempty" msgpack:"details,omitempty"`
	Hint    string `json:"hint,omitempty" msgpack:"hint,omitempty"`
}

func (e *QueryError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Envelope is the {data, error} wrapper every remote query resolves with.
// Exactly one side is meaningful: a nil Error marks success.
type Envelope[T any] struct {
	Data  T           `json:"data" msgpack:"data"`
	Error *QueryError `json:"error" msgpack:"error"`
}

// Ok wraps a successful payload.
func Ok[T any](data T) Envelope[T] {
	return Envelope[T]{Data: data}
}

// Fail wraps a query error. Failed envelopes are returned to callers but
// never written to either cache tier.
func Fail[T any](err *QueryError) Envelope[T] {
	return Envelope[T]{Error: err}
}

// Failf builds a failed envelope from a message.
func Failf[T any](message string) Envelope[T] {
	return Fail[T](&QueryError{Message: message})
}

// Cacheable reports whether the envelope may be written to the cache.
func (e Envelope[T]) Cacheable() bool {
	return e.Error == nil
}
