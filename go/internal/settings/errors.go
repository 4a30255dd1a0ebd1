package settings

import "errors"

// ErrNoEncryptionKey indicates an encrypted setting was written or read
// without a configured settings encryption key.
var ErrNoEncryptionKey = errors.New("no settings encryption key configured")
