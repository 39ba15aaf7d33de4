package services

import (
	"fmt"
	"sync"

	"github.com/dgraph-io/ristretto/v2"
)

var (
	tagCache     *ristretto.Cache[string, string]
	tagCacheOnce sync.Once
)

// InitTagCache initializes the tag name to id cache (singleton pattern).
// Without it every lookup goes to the database.
func InitTagCache(maxKeys, maxCost int64) error {
	var initErr error

	tagCacheOnce.Do(func() {
		cache, err := ristretto.NewCache(&ristretto.Config[string, string]{
			NumCounters: maxKeys * 10,
			MaxCost:     maxCost,
			BufferItems: 64,
		})
		if err != nil {
			initErr = fmt.Errorf("failed to create tag cache: %w", err)
			return
		}
		tagCache = cache
	})

	return initErr
}

func tagCacheKey(userID, name string) string {
	return userID + "\x00" + name
}

func cachedTagID(userID, name string) (string, bool) {
	if tagCache == nil {
		return "", false
	}
	return tagCache.Get(tagCacheKey(userID, name))
}

func cacheTagID(userID, name, id string) {
	if tagCache == nil {
		return
	}
	key := tagCacheKey(userID, name)
	tagCache.Set(key, id, int64(len(key)+len(id)))
}

func forgetTagID(userID, name string) {
	if tagCache == nil {
		return
	}
	tagCache.Del(tagCacheKey(userID, name))
}

// clearTagCache drops every entry. Used when a whole user goes away.
func clearTagCache() {
	if tagCache == nil {
		return
	}
	tagCache.Clear()
}
