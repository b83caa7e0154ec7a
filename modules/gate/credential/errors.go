package credential

// DecodeError is the reason a credential string was refused.
type DecodeError string

func (e DecodeError) Error() string {
	return string(e)
}

const (
	// ErrMalformedPayload is returned when the string can't be parsed or a field is missing or mistyped.
	ErrMalformedPayload = DecodeError("MalformedPayload")

	// ErrSignatureMismatch is returned when the embedded tag doesn't match the embedded fields.
	ErrSignatureMismatch = DecodeError("SignatureMismatch")

	// ErrExpired is returned when the credential is older than [ValidityWindow].
	ErrExpired = DecodeError("Expired")
)
