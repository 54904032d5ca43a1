// Package artifact inspects the predictive model file shipped alongside the
// reference table. The model is never invoked; startup only verifies that
// the file is readable and records its digest.
package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/crop-stage-advisory/internal/domain"
)

// Inspect opens the artifact at path and returns its size and SHA-256 digest.
func Inspect(path string) (domain.ModelArtifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.ModelArtifact{}, fmt.Errorf("load model artifact: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return domain.ModelArtifact{}, fmt.Errorf("stat model artifact: %w", err)
	}
	if info.IsDir() {
		return domain.ModelArtifact{}, fmt.Errorf("load model artifact: %s is a directory", path)
	}

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return domain.ModelArtifact{}, fmt.Errorf("read model artifact: %w", err)
	}

	return domain.ModelArtifact{
		Path:   path,
		Size:   n,
		SHA256: hex.EncodeToString(h.Sum(nil)),
	}, nil
}
