package cache

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	cacheVersion    = 2
	defaultTTL      = 30 * 24 * time.Hour
	cacheDirName    = "lyreplay"
	lyricsCacheName = "lyrics"
	entrySuffix     = ".bin"
)

var (
	ErrCacheMiss    = errors.New("cache miss")
	ErrCacheExpired = errors.New("cache expired")
	ErrCacheCorrupt = errors.New("cache corrupt")
)

// LyricEntry is one cached synced-lyrics body for an artist/title pair.
type LyricEntry struct {
	Version      uint8
	Artist       string
	Title        string
	Album        string
	Source       string
	SyncedLyrics string
	SyncOffset   float64
	CreatedAt    int64
	ExpiresAt    int64
}

// DiskCache keeps entries in memory and as gob files under basePath. An
// empty basePath makes it memory-only.
type DiskCache struct {
	basePath string
	ttl      time.Duration
	now      func() time.Time
	mu       sync.RWMutex
	memCache map[string]*LyricEntry
}

// Open returns the cache under the user's cache directory, falling back to a
// memory-only cache when that directory is unusable.
func Open() *DiskCache {
	dir, err := defaultDirectory()
	if err != nil {
		return New("")
	}

	c, err := NewAt(dir)
	if err != nil {
		return New("")
	}
	return c
}

func NewAt(dir string) (*DiskCache, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, err
	}
	return New(dir), nil
}

func New(dir string) *DiskCache {
	return &DiskCache{
		basePath: dir,
		ttl:      defaultTTL,
		now:      time.Now,
		memCache: make(map[string]*LyricEntry),
	}
}

func (c *DiskCache) Path() string {
	return c.basePath
}

func defaultDirectory() (string, error) {
	// xdg cache home takes priority
	xdgCache := os.Getenv("XDG_CACHE_HOME")
	if xdgCache != "" {
		return filepath.Join(xdgCache, cacheDirName, lyricsCacheName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".cache", cacheDirName, lyricsCacheName), nil
}

func generateKey(artist, title string) string {
	normalized := strings.ToLower(strings.TrimSpace(artist)) + "|" + strings.ToLower(strings.TrimSpace(title))
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:12])
}

func (c *DiskCache) filePath(key string) string {
	if c.basePath == "" {
		return ""
	}
	return filepath.Join(c.basePath, key+entrySuffix)
}

func (c *DiskCache) Get(artist, title string) (*LyricEntry, error) {
	if artist == "" || title == "" {
		return nil, ErrCacheMiss
	}

	key := generateKey(artist, title)
	now := c.now().Unix()

	c.mu.RLock()
	entry, exists := c.memCache[key]
	c.mu.RUnlock()

	if exists {
		if entry.ExpiresAt > now {
			return entry, nil
		}
		c.mu.Lock()
		delete(c.memCache, key)
		c.mu.Unlock()
	}

	if c.basePath == "" {
		return nil, ErrCacheMiss
	}

	path := c.filePath(key)
	entry, err := readEntry(path)
	if err != nil {
		return nil, err
	}

	if entry.ExpiresAt <= now {
		_ = os.Remove(path)
		return nil, ErrCacheExpired
	}

	c.mu.Lock()
	c.memCache[key] = entry
	c.mu.Unlock()

	return entry, nil
}

func (c *DiskCache) Set(artist, title string, entry *LyricEntry) error {
	if artist == "" || title == "" || entry == nil {
		return errors.New("invalid cache entry")
	}

	key := generateKey(artist, title)

	now := c.now()
	entry.Version = cacheVersion
	entry.Artist = artist
	entry.Title = title
	entry.CreatedAt = now.Unix()
	entry.ExpiresAt = now.Add(c.ttl).Unix()

	c.mu.Lock()
	c.memCache[key] = entry
	c.mu.Unlock()

	if c.basePath == "" {
		return nil
	}

	return writeEntry(c.filePath(key), entry)
}

// SetSyncOffset stores a per-song offset on an existing entry and renews it.
func (c *DiskCache) SetSyncOffset(artist, title string, offset float64) error {
	current, err := c.Get(artist, title)
	if err != nil {
		return err
	}

	// stored casing is kept, the key ignores it anyway
	updated := *current
	updated.SyncOffset = offset
	return c.Set(current.Artist, current.Title, &updated)
}

func readEntry(path string) (*LyricEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	defer file.Close()

	var entry LyricEntry
	err = gob.NewDecoder(file).Decode(&entry)
	if err != nil {
		return nil, ErrCacheCorrupt
	}

	// version mismatch means stale format
	if entry.Version != cacheVersion {
		_ = os.Remove(path)
		return nil, ErrCacheCorrupt
	}

	return &entry, nil
}

func writeEntry(path string, entry *LyricEntry) error {
	// write to temp file first, then rename for atomicity
	tmpPath := path + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return err
	}

	err = gob.NewEncoder(file).Encode(entry)
	if err == nil {
		err = file.Sync()
	}
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, path)
}

func (c *DiskCache) Clear() error {
	c.mu.Lock()
	c.memCache = make(map[string]*LyricEntry)
	c.mu.Unlock()

	return c.eachFile(func(path string) {
		_ = os.Remove(path)
	})
}

// Prune removes expired and unreadable entries and reports how many went.
func (c *DiskCache) Prune() (int, error) {
	pruned := 0
	now := c.now().Unix()

	err := c.eachFile(func(path string) {
		entry, err := readEntry(path)
		if err != nil || entry.ExpiresAt <= now {
			_ = os.Remove(path)
			pruned++
		}
	})

	return pruned, err
}

func (c *DiskCache) Stats() (count int, sizeBytes int64, err error) {
	err = c.eachFile(func(path string) {
		info, statErr := os.Stat(path)
		if statErr != nil {
			return
		}
		count++
		sizeBytes += info.Size()
	})
	return count, sizeBytes, err
}

func (c *DiskCache) ListAll() ([]*LyricEntry, error) {
	var result []*LyricEntry
	err := c.eachFile(func(path string) {
		entry, err := readEntry(path)
		if err != nil {
			return
		}
		result = append(result, entry)
	})
	return result, err
}

func (c *DiskCache) Delete(artist, title string) error {
	if artist == "" || title == "" {
		return errors.New("invalid artist or title")
	}

	key := generateKey(artist, title)

	c.mu.Lock()
	delete(c.memCache, key)
	c.mu.Unlock()

	if c.basePath == "" {
		return nil
	}

	err := os.Remove(c.filePath(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}

func (c *DiskCache) eachFile(fn func(path string)) error {
	if c.basePath == "" {
		return nil
	}

	entries, err := os.ReadDir(c.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), entrySuffix) {
			continue
		}
		fn(filepath.Join(c.basePath, entry.Name()))
	}

	return nil
}
