package requestcontext

var _ error = requestcontextError{}

// requestcontextError aborts the request with status and a message that's safe to return to the client.
type requestcontextError struct {
	err     error
	status  int
	message string
}

func (r requestcontextError) Error() string {
	if r.err != nil {
		return r.err.Error()
	}
	return r.message
}

func (r requestcontextError) Unwrap() error {
	return r.err
}
