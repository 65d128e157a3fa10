package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ResultKey returns the cache key for a shared quiz result
func (r *CacheKeyStruct) ResultKey(resultID string) string {
	return fmt.Sprintf("result:%s", resultID)
}

// TestsTakenKey returns the key of the global tests-taken counter
func (r *CacheKeyStruct) TestsTakenKey() string {
	return "stats:tests_taken"
}

// TypeCountsKey returns the hash key holding per-type result counts
func (r *CacheKeyStruct) TypeCountsKey() string {
	return "stats:type_counts"
}

var CacheKey = NewCacheKeyStruct()
