package offline

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	redisc "github.com/Maulik-008/clock-software-sub000/internal/pkg/redis"
)

// Entry is one cached response, keyed by request identity (method + URL).
type Entry struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	BodyBase64  string `json:"body_base64"`
	Body        []byte `json:"-"`
}

// Store persists cache generations in Redis. A generation is a named
// keyspace of request→response pairs plus a membership record in the
// generation registry set. Entries carry no TTL: a generation lives until
// the activation cycle of a newer version deletes it wholesale.
type Store struct {
	rc     *redisc.Client
	prefix string
}

func NewStore(rc *redisc.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "ct-cache"
	}
	return &Store{rc: rc, prefix: prefix}
}

func (s *Store) entryKey(generation, method, url string) string {
	return s.prefix + ":" + generation + ":" + method + " " + url
}

func (s *Store) registryKey() string { return s.prefix + ":generations" }

// Register records a generation name in the registry. Idempotent.
func (s *Store) Register(ctx context.Context, generation string) error {
	return s.rc.Raw().SAdd(ctx, s.registryKey(), generation).Err()
}

// Generations lists every registered generation name.
func (s *Store) Generations(ctx context.Context) ([]string, error) {
	return s.rc.Raw().SMembers(ctx, s.registryKey()).Result()
}

// Put stores a response under the given generation. Concurrent writers for
// the same identity race benignly; last writer wins.
func (s *Store) Put(ctx context.Context, generation, method, url string, e Entry) error {
	e.BodyBase64 = base64.StdEncoding.EncodeToString(e.Body)
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.rc.Raw().Set(ctx, s.entryKey(generation, method, url), raw, 0).Err()
}

// Get retrieves a cached response, reporting whether it was present. Decode
// failures are treated as a miss.
func (s *Store) Get(ctx context.Context, generation, method, url string) (Entry, bool) {
	raw, err := s.rc.Raw().Get(ctx, s.entryKey(generation, method, url)).Bytes()
	if err != nil || len(raw) == 0 {
		return Entry{}, false
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return Entry{}, false
	}
	body, err := base64.StdEncoding.DecodeString(e.BodyBase64)
	if err != nil {
		return Entry{}, false
	}
	e.Body = body
	if e.Status <= 0 {
		e.Status = http.StatusOK
	}
	return e, true
}

// Lookup searches the given generations in order for the request identity.
func (s *Store) Lookup(ctx context.Context, generations []string, method, url string) (Entry, bool) {
	for _, g := range generations {
		if e, ok := s.Get(ctx, g, method, url); ok {
			return e, true
		}
	}
	return Entry{}, false
}

// DropGeneration deletes every entry of a generation and removes it from
// the registry, returning the number of deleted entries.
func (s *Store) DropGeneration(ctx context.Context, generation string) (int64, error) {
	deleted, err := s.deleteByPattern(ctx, s.prefix+":"+generation+":*")
	if err != nil {
		return deleted, err
	}
	return deleted, s.rc.Raw().SRem(ctx, s.registryKey(), generation).Err()
}

// Purge removes all generations and the registry itself.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	deleted, err := s.deleteByPattern(ctx, s.prefix+":*")
	if err != nil {
		return deleted, err
	}
	return deleted, s.rc.Raw().Del(ctx, s.registryKey()).Err()
}

func (s *Store) deleteByPattern(ctx context.Context, pattern string) (int64, error) {
	var (
		cursor  uint64
		deleted int64
	)
	for {
		keys, next, err := s.rc.Raw().Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			n, err := s.rc.Raw().Del(ctx, keys...).Result()
			if err != nil {
				return deleted, err
			}
			deleted += n
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}
