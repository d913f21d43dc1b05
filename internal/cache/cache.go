// Package cache holds parsed datasets in memory between upload and analysis.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"godash/domain/core"
	"godash/domain/dataset"
)

// purgeEvery is how often expired entries are swept out.
const purgeEvery = 10 * time.Minute

// DatasetCache keeps uploaded datasets for a bounded window so a user can
// upload once and analyze several times without resending the file.
type DatasetCache struct {
	cache *gocache.Cache
}

func NewDatasetCache(ttl time.Duration) *DatasetCache {
	return &DatasetCache{cache: gocache.New(ttl, purgeEvery)}
}

// Put stores ds under its own ID, resetting the expiry window.
func (c *DatasetCache) Put(ds *dataset.Dataset) {
	c.cache.Set(ds.ID.String(), ds, gocache.DefaultExpiration)
}

// Get returns the dataset if it is still cached.
func (c *DatasetCache) Get(id core.DatasetID) (*dataset.Dataset, bool) {
	v, found := c.cache.Get(id.String())
	if !found {
		return nil, false
	}
	return v.(*dataset.Dataset), true
}

// GetOwned returns the dataset only when it is still cached and owned by
// userID. A foreign dataset reads the same as a missing one.
func (c *DatasetCache) GetOwned(id core.DatasetID, userID core.UserID) (*dataset.Dataset, bool) {
	ds, found := c.Get(id)
	if !found || ds.OwnerID != userID {
		return nil, false
	}
	return ds, true
}

// Delete evicts the dataset immediately.
func (c *DatasetCache) Delete(id core.DatasetID) {
	c.cache.Delete(id.String())
}
