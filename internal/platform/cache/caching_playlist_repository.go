// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"quicktracks/internal/feature/playlists/domain/entity"
	"quicktracks/internal/feature/playlists/usecase"
)

// CachingPlaylistRepository decorates a PlaylistRepository with Redis
// caching of the public search results. It implements the decorator
// pattern, transparently adding caching without modifying the underlying
// repository. Every write invalidates the search namespace.
type CachingPlaylistRepository struct {
	inner     usecase.PlaylistRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// Compile-time check to ensure the decorator implements PlaylistRepository.
var _ usecase.PlaylistRepository = (*CachingPlaylistRepository)(nil)

// NewCachingPlaylistRepository decorates a PlaylistRepository with Redis caching.
// If ttl is 0, it defaults to 1 minute. If namespace is empty, it uses "public".
func NewCachingPlaylistRepository(rdb *redis.Client, ttl time.Duration, inner usecase.PlaylistRepository, namespace string) *CachingPlaylistRepository {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if namespace == "" {
		namespace = "public"
	}
	return &CachingPlaylistRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Search retrieves playlists, checking the cache first then falling back to
// the database.
func (c *CachingPlaylistRepository) Search(ctx context.Context, keyword string) ([]entity.Playlist, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.Search(ctx, keyword)
	}

	key := c.cacheKey(keyword)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Playlist
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.Search(ctx, keyword)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// Create inserts a playlist and invalidates the search cache.
func (c *CachingPlaylistRepository) Create(ctx context.Context, p *entity.Playlist) error {
	if err := c.inner.Create(ctx, p); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// FindByID delegates to the underlying repository; private reads are not cached.
func (c *CachingPlaylistRepository) FindByID(ctx context.Context, id uint) (*entity.Playlist, error) {
	return c.inner.FindByID(ctx, id)
}

// FindByOwner delegates to the underlying repository; the dashboard is not cached.
func (c *CachingPlaylistRepository) FindByOwner(ctx context.Context, owner uint) ([]entity.Playlist, error) {
	return c.inner.FindByOwner(ctx, owner)
}

// UpdateMeta updates a playlist and invalidates the search cache.
func (c *CachingPlaylistRepository) UpdateMeta(ctx context.Context, id uint, name, description string) error {
	if err := c.inner.UpdateMeta(ctx, id, name, description); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// Delete removes a playlist and invalidates the search cache.
func (c *CachingPlaylistRepository) Delete(ctx context.Context, id uint) error {
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// AppendSong adds a song and invalidates the search cache.
func (c *CachingPlaylistRepository) AppendSong(ctx context.Context, playlistID uint, song entity.Song) error {
	if err := c.inner.AppendSong(ctx, playlistID, song); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// UpdateSongAt updates a song and invalidates the search cache.
func (c *CachingPlaylistRepository) UpdateSongAt(ctx context.Context, playlistID uint, index int, song entity.Song) error {
	if err := c.inner.UpdateSongAt(ctx, playlistID, index, song); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// RemoveSongAt removes a song and invalidates the search cache.
func (c *CachingPlaylistRepository) RemoveSongAt(ctx context.Context, playlistID uint, index int) error {
	if err := c.inner.RemoveSongAt(ctx, playlistID, index); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// cacheKey generates a cache key for one keyword's search result.
func (c *CachingPlaylistRepository) cacheKey(keyword string) string {
	return fmt.Sprintf("%s:search:%s", c.namespace, safe(keyword))
}

// invalidate drops every cached search result (best effort).
func (c *CachingPlaylistRepository) invalidate(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	_ = c.deleteByPattern(ctx, c.namespace+":search:*")
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingPlaylistRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	if s == "" {
		s = "_all"
	}
	return s
}
