package storage

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/blake2b"
)

// ContentHash returns the hex blake2b-256 digest of the given files'
// bytes, concatenated in argument order. Missing files contribute
// nothing, so a repository with only nodes hashes the same before and
// after `touch edges.jsonl`.
func ContentHash(paths ...string) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", fmt.Errorf("initializing hash: %w", err)
	}

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", fmt.Errorf("opening %s: %w", path, err)
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", fmt.Errorf("hashing %s: %w", path, err)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
