package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// BuildPlanKey builds the cache key for a computed network plan. The dataset
// hash covers the canonical order list; the params hash covers every planning
// knob that affects the result.
func BuildPlanKey(strategy, datasetHash, paramsHash string) string {
	if paramsHash == "" {
		return fmt.Sprintf("plan:%s:%s", datasetHash, strategy)
	}
	return fmt.Sprintf("plan:%s:%s:%s", datasetHash, strategy, paramsHash)
}

// PlanKeyPattern matches every cached plan for a dataset regardless of
// strategy or parameters.
func PlanKeyPattern(datasetHash string) string {
	return fmt.Sprintf("plan:%s:*", datasetHash)
}

// QuickHash returns the full hex SHA-256 of arbitrary data.
func QuickHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ShortHash returns a 16-character hash, enough to key cache entries.
func ShortHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}
