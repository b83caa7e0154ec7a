package errs

// ErrorKind identifies a kind of internal error.
// fully support for errors.Is and errors.As.
type ErrorKind string

const (
	// NotFound is returned when a requested item is not found.
	NotFound = ErrorKind("Not Found")

	// InvalidArgument is returned when an argument is out of its valid domain.
	InvalidArgument = ErrorKind("Invalid Argument")

	// Unsupported is returned when a feature, driver or option is not supported.
	Unsupported = ErrorKind("Unsupported")

	// Conflict is returned when a write is rejected because of the current state of the record.
	Conflict = ErrorKind("Conflict")

	// Unavailable is returned when a remote dependency can't be reached or timed out.
	Unavailable = ErrorKind("Unavailable")

	// SomethingWentWrong is returned for unexpected internal failures.
	SomethingWentWrong = ErrorKind("Something Went Wrong")

	OverflowUint128 = ErrorKind("overflow uint128")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}
