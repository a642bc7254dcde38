package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strings"

	domain "github.com/bryanwahyu/emergency-response/internal/domain/analysis"
)

// messagePrefixLen bounds fingerprint cost for very long inputs while still
// discriminating distinct reports in practice.
const messagePrefixLen = 200

// CoordPrecision is the decimal precision locations are rounded to before
// fingerprinting. Two decimals is roughly a 1.1 km grid, so near-identical
// locations share a cache entry. Tunable via config.
const CoordPrecision = 2

func roundCoord(v float64, precision int) float64 {
	scale := math.Pow(10, float64(precision))
	return math.Round(v*scale) / scale
}

// Fingerprint derives the stable cache key for a request.
func Fingerprint(req domain.Request, precision int) string {
	msg := strings.ToLower(strings.TrimSpace(req.Message))
	if len(msg) > messagePrefixLen {
		msg = msg[:messagePrefixLen]
	}
	lat := roundCoord(req.Location.Latitude, precision)
	lon := roundCoord(req.Location.Longitude, precision)

	seed := fmt.Sprintf("%s|%.*f|%.*f|%s", msg, precision, lat, precision, lon, req.ScenarioType)
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])
}
