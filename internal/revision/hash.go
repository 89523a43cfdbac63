package revision

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/rickgao/econ-etl/internal/model"
)

// Hash returns the hex-encoded SHA-256 digest of the canonical payload.
// Identical bytes always produce identical digests.
func Hash(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// HashWindow hashes the canonical payload restricted to observations
// dated on or after since. Incremental fetches narrow the payload to
// that window, so hashes are only comparable when computed against the
// same window start. A nil since covers the whole sequence.
func HashWindow(obs []model.RawObservation, since *time.Time) string {
	if since != nil {
		cutoff := since.Format("2006-01-02")
		windowed := make([]model.RawObservation, 0, len(obs))
		for _, o := range obs {
			if o.Date >= cutoff {
				windowed = append(windowed, o)
			}
		}
		obs = windowed
	}
	return Hash(model.CanonicalRaw(obs))
}
