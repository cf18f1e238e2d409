package packaging

import (
	"crypto/sha512"
	"encoding/hex"
	"io"
	"os"
)

// SHA512File returns the hex-encoded SHA-512 digest of the file at path.
func SHA512File(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	digest := sha512.New()
	if _, err := io.Copy(digest, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(digest.Sum(nil)), nil
}
