package errors

import (
	"errors"
	"fmt"
)

var (
	ErrDataRootUnavailable   = errors.New("data root cannot be enumerated")
	ErrMetadataNotFound      = errors.New("metadata file not found")
	ErrMalformedMetadata     = errors.New("malformed metadata")
	ErrMissingChecksum       = errors.New("metadata has no recorded checksum")
	ErrChecksumMismatch      = errors.New("checksum mismatch")
	ErrObjectUnreadable      = errors.New("object data cannot be read")
	ErrInvalidChunkSize      = errors.New("chunk size must be positive")
	ErrUnsupportedScheme     = errors.New("unsupported storage scheme")
	ErrMissingRequiredFields = errors.New("missing required fields")
)

func ConfigNotSetError(config string) error {
	return fmt.Errorf("%w: the %s configuration value must be set", ErrMissingRequiredFields, config)
}
