// internal/storage/file_storage.go
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Corphon/NovelForge/internal/utils"
)

// ErrNotExist is returned when a file or directory is missing.
var ErrNotExist = errors.New("does not exist")

// FileStorage stores JSON documents under BaseDir. Writes are atomic (temp file +
// rename) and serialised per path; reads go through a small TTL cache.
type FileStorage struct {
	BaseDir string

	fileLocks sync.Map // path -> *sync.RWMutex

	cache        map[string]*CacheEntry
	cacheMutex   sync.RWMutex
	cacheExpiry  time.Duration
	maxCacheSize int

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	logger   *utils.Logger
}

// CacheEntry is one cached file body.
type CacheEntry struct {
	Data      []byte
	Timestamp time.Time
}

// Options tunes a FileStorage. Zero values pick the defaults.
type Options struct {
	CacheExpiry     time.Duration
	MaxCacheSize    int
	CleanupInterval time.Duration
	Logger          *utils.Logger
}

// NewFileStorage creates the base directory and starts the cache janitor.
// Call Close to stop it.
func NewFileStorage(baseDir string, opts Options) (*FileStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	if opts.CacheExpiry <= 0 {
		opts.CacheExpiry = 5 * time.Minute
	}
	if opts.MaxCacheSize <= 0 {
		opts.MaxCacheSize = 100
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = 2 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = utils.GetLogger()
	}

	fs := &FileStorage{
		BaseDir:      baseDir,
		cache:        make(map[string]*CacheEntry),
		cacheExpiry:  opts.CacheExpiry,
		maxCacheSize: opts.MaxCacheSize,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
		logger:       opts.Logger,
	}
	go fs.cacheCleanup(opts.CleanupInterval)
	return fs, nil
}

// Close stops the cache janitor and waits for it to exit.
func (fs *FileStorage) Close() error {
	fs.stopOnce.Do(func() { close(fs.stop) })
	<-fs.done
	return nil
}

func (fs *FileStorage) getFileLock(fullPath string) *sync.RWMutex {
	value, _ := fs.fileLocks.LoadOrStore(fullPath, &sync.RWMutex{})
	return value.(*sync.RWMutex)
}

// SaveTextFile writes content atomically.
func (fs *FileStorage) SaveTextFile(dirPath, filename string, content []byte) error {
	fullDirPath := filepath.Join(fs.BaseDir, dirPath)
	fullPath := filepath.Join(fullDirPath, filename)

	lock := fs.getFileLock(fullPath)
	lock.Lock()
	defer lock.Unlock()

	if err := os.MkdirAll(fullDirPath, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tempPath := fullPath + ".tmp"
	if err := os.WriteFile(tempPath, content, 0644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tempPath, fullPath); err != nil {
		if removeErr := os.Remove(tempPath); removeErr != nil {
			fs.logger.Warn("failed to clean up temp file", map[string]interface{}{
				"path":  tempPath,
				"error": removeErr,
			})
		}
		return fmt.Errorf("replace file: %w", err)
	}

	fs.invalidateCache(fullPath)
	return nil
}

// SaveJSONFile marshals data with indentation and writes it atomically.
func (fs *FileStorage) SaveJSONFile(dirPath, filename string, data interface{}) error {
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return fs.SaveTextFile(dirPath, filename, content)
}

// LoadTextFile reads a file, serving from cache while the entry is fresh.
func (fs *FileStorage) LoadTextFile(dirPath, filename string) ([]byte, error) {
	fullPath := filepath.Join(fs.BaseDir, dirPath, filename)

	if data, ok := fs.cached(fullPath); ok {
		return data, nil
	}

	lock := fs.getFileLock(fullPath)
	lock.RLock()
	defer lock.RUnlock()

	if data, ok := fs.cached(fullPath); ok {
		return data, nil
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", filepath.Join(dirPath, filename), ErrNotExist)
		}
		return nil, fmt.Errorf("read file: %w", err)
	}

	fs.updateCache(fullPath, content)
	return content, nil
}

// LoadJSONFile reads and unmarshals a JSON file into v.
func (fs *FileStorage) LoadJSONFile(dirPath, filename string, v interface{}) error {
	content, err := fs.LoadTextFile(dirPath, filename)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(content, v); err != nil {
		return fmt.Errorf("decode json %s: %w", filename, err)
	}
	return nil
}

func (fs *FileStorage) cached(fullPath string) ([]byte, bool) {
	fs.cacheMutex.RLock()
	defer fs.cacheMutex.RUnlock()
	if entry, exists := fs.cache[fullPath]; exists && time.Since(entry.Timestamp) < fs.cacheExpiry {
		return entry.Data, true
	}
	return nil, false
}

func (fs *FileStorage) updateCache(path string, data []byte) {
	fs.cacheMutex.Lock()
	defer fs.cacheMutex.Unlock()

	fs.cache[path] = &CacheEntry{Data: data, Timestamp: time.Now()}

	if len(fs.cache) > fs.maxCacheSize {
		var oldestKey string
		var oldestTime time.Time
		for key, entry := range fs.cache {
			if oldestKey == "" || entry.Timestamp.Before(oldestTime) {
				oldestKey = key
				oldestTime = entry.Timestamp
			}
		}
		delete(fs.cache, oldestKey)
	}
}

// DirExists reports whether dirPath exists under BaseDir.
func (fs *FileStorage) DirExists(dirPath string) bool {
	info, err := os.Stat(filepath.Join(fs.BaseDir, dirPath))
	return err == nil && info.IsDir()
}

// FileExists reports whether the file exists.
func (fs *FileStorage) FileExists(dirPath, filename string) bool {
	_, err := os.Stat(filepath.Join(fs.BaseDir, dirPath, filename))
	return err == nil
}

// DeleteDir removes a directory tree and its cache entries.
func (fs *FileStorage) DeleteDir(dirPath string) error {
	fullPath := filepath.Join(fs.BaseDir, dirPath)

	lock := fs.getFileLock(fullPath)
	lock.Lock()
	defer lock.Unlock()

	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", dirPath, ErrNotExist)
	}
	if err := os.RemoveAll(fullPath); err != nil {
		return fmt.Errorf("remove directory: %w", err)
	}

	fs.removeCacheEntriesWithPrefix(fullPath)
	return nil
}

func (fs *FileStorage) removeCacheEntriesWithPrefix(prefix string) {
	fs.cacheMutex.Lock()
	defer fs.cacheMutex.Unlock()
	for key := range fs.cache {
		if strings.HasPrefix(key, prefix) {
			delete(fs.cache, key)
		}
	}
}

// ListDirs lists the subdirectories of dirPath, sorted by name.
func (fs *FileStorage) ListDirs(dirPath string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(fs.BaseDir, dirPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

func (fs *FileStorage) cacheCleanup(interval time.Duration) {
	defer close(fs.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-fs.stop:
			return
		case <-ticker.C:
			fs.cleanupExpiredCache()
		}
	}
}

func (fs *FileStorage) cleanupExpiredCache() {
	fs.cacheMutex.Lock()
	defer fs.cacheMutex.Unlock()

	now := time.Now()
	for path, entry := range fs.cache {
		if now.Sub(entry.Timestamp) > fs.cacheExpiry {
			delete(fs.cache, path)
		}
	}
}

func (fs *FileStorage) invalidateCache(path string) {
	fs.cacheMutex.Lock()
	defer fs.cacheMutex.Unlock()
	delete(fs.cache, path)
}
