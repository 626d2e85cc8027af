package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

const (
	GlobalKeyPrefix = "wikiquiz"
)

// GenerateCacheKey builds a cache key for a given object type and identifier,
// e.g. GenerateCacheKey("articles", "url", <hash>).
func GenerateCacheKey(objectType, field, identifier string) string {
	return strings.Join([]string{GlobalKeyPrefix, objectType, field, identifier}, ":")
}

// ArticleKeyByURL keys a cached generate-quiz response by its source URL.
// URLs are hashed so percent-encoded titles never collide with the key syntax.
func ArticleKeyByURL(url string) string {
	sum := sha1.Sum([]byte(url))
	return GenerateCacheKey("articles", "url", hex.EncodeToString(sum[:]))
}

// ArticleKeyPattern matches every cached article response, for bulk
// invalidation after a history wipe.
func ArticleKeyPattern() string {
	return GenerateCacheKey("articles", "url", "*")
}
