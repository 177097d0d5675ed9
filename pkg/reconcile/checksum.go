package reconcile

import (
	"crypto/md5" // #nosec G401 -- drift detection, not an integrity guarantee
	"encoding/hex"
	"io"
	"os"
)

// DefaultBufferSize bounds memory during hashing regardless of file
// size.
const DefaultBufferSize = 4 * 1024 * 1024

// ChecksumFile computes the lowercase hex digest of a file's content,
// streaming it through a fixed-size buffer.
func ChecksumFile(path string, bufferSize int) (string, error) {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}

	f, err := os.Open(path) // #nosec G304 -- path comes from the tracked tree
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	hasher := md5.New() // #nosec G401
	buf := make([]byte, bufferSize)
	if _, err := io.CopyBuffer(hasher, f, buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
