package constants

const (
	// Version is the service version.
	Version = "v0.1.0"
)
