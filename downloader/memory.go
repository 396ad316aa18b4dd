package downloader

import (
	"context"
	"sync"
	"time"

	"departureboard.dev/gtfs/clock"
)

// Caches downloaded files in memory, keyed by URL.
type MemoryDownloader struct {
	mutex sync.Mutex
	cache map[string]cacheEntry

	Clock clock.Clock
}

func NewMemoryDownloader() *MemoryDownloader {
	return &MemoryDownloader{
		cache: map[string]cacheEntry{},
		Clock: clock.RealClock{},
	}
}

type cacheEntry struct {
	data       []byte
	expiration time.Time
}

func (d *MemoryDownloader) Get(
	ctx context.Context,
	url string,
	headers map[string]string,
	options GetOptions,
) ([]byte, error) {
	if options.Cache {
		d.mutex.Lock()
		entry, ok := d.cache[url]
		d.mutex.Unlock()

		if ok && entry.expiration.After(d.Clock.Now()) {
			return entry.data, nil
		}
	}

	body, err := HTTPGet(ctx, url, headers, options)
	if err != nil {
		return nil, err
	}

	if options.Cache {
		d.mutex.Lock()
		d.cache[url] = cacheEntry{
			data:       body,
			expiration: d.Clock.Now().Add(options.CacheTTL),
		}
		d.mutex.Unlock()
	}

	return body, nil
}
