// Package report persists rendered report artifacts for download.
package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/zain621/rehmatshipping/internal/db"
	"github.com/zain621/rehmatshipping/internal/domain"
	logpkg "github.com/zain621/rehmatshipping/internal/logger"
)

const reportNamespace = "report:"

// validID accepts the UUID-shaped identifiers minted by the lookup service and
// keeps path separators out of file names.
var validID = regexp.MustCompile(`^[A-Za-z0-9-]{1,64}$`)

func checkID(id string) error {
	if !validID.MatchString(id) {
		return fmt.Errorf("%w: invalid report id %q", domain.ErrReportNotFound, id)
	}
	return nil
}

// kvStore is the consumer interface for report artifacts (ISP).
type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Ping(ctx context.Context) error
}

// KVStore keeps reports in Redis under {prefix}report:{id} until ttl expires.
type KVStore struct {
	store  kvStore
	ttl    time.Duration
	prefix string
}

// NewKVStore creates a key-value backed report store using domain.KeyPrefix.
func NewKVStore(s kvStore, ttl time.Duration) *KVStore {
	return &KVStore{store: s, ttl: ttl, prefix: domain.KeyPrefix}
}

// WithKeyPrefix overrides the global key prefix.
func (s *KVStore) WithKeyPrefix(prefix string) *KVStore {
	if prefix != "" {
		s.prefix = prefix
	}
	return s
}

func (s *KVStore) key(id string) string {
	return s.prefix + reportNamespace + id
}

// Save stores data under id, replacing any previous artifact.
func (s *KVStore) Save(ctx context.Context, id string, data []byte) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.store.SetWithTTL(ctx, s.key(id), data, s.ttl); err != nil {
		return fmt.Errorf("report SET %s: %w", id, err)
	}
	return nil
}

// Load returns the artifact stored under id.
func (s *KVStore) Load(ctx context.Context, id string) ([]byte, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	data, err := s.store.Get(ctx, s.key(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrReportNotFound, id)
		}
		return nil, fmt.Errorf("report GET %s: %w", id, err)
	}
	return data, nil
}

// Ping checks the backing store.
func (s *KVStore) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("report store: %w", err)
	}
	return nil
}

// FileStore keeps reports as {dir}/{id}.pdf. Writing the same id twice
// overwrites the earlier file. Files older than ttl are treated as missing
// and removed; a ttl of zero keeps them forever.
type FileStore struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewFileStore creates a file-backed report store rooted at dir.
func NewFileStore(dir string, ttl time.Duration) *FileStore {
	return &FileStore{dir: dir, ttl: ttl, now: time.Now}
}

// WithClock overrides the time source used for expiry.
func (s *FileStore) WithClock(now func() time.Time) *FileStore {
	if now != nil {
		s.now = now
	}
	return s
}

// Save writes data atomically via a temp file and rename, then removes
// expired reports.
func (s *FileStore) Save(ctx context.Context, id string, data []byte) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, id+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write report %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close report %s: %w", id, err)
	}
	if err := os.Rename(tmp.Name(), s.path(id)); err != nil {
		return fmt.Errorf("publish report %s: %w", id, err)
	}

	if _, err := s.Sweep(ctx); err != nil {
		logpkg.FromContext(ctx).Warn("Report sweep failed", zap.String("dir", s.dir), zap.Error(err))
	}
	return nil
}

// Load reads the artifact stored under id. Expired files are removed and
// reported as domain.ErrReportNotFound.
func (s *FileStore) Load(_ context.Context, id string) ([]byte, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	p := s.path(id)
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrReportNotFound, id)
		}
		return nil, fmt.Errorf("stat report %s: %w", id, err)
	}
	if s.expired(info.ModTime()) {
		_ = os.Remove(p)
		return nil, fmt.Errorf("%w: %s expired", domain.ErrReportNotFound, id)
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrReportNotFound, id)
		}
		return nil, fmt.Errorf("read report %s: %w", id, err)
	}
	return data, nil
}

// Sweep removes expired reports and returns how many were deleted.
func (s *FileStore) Sweep(_ context.Context) (int, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("list reports: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".pdf" {
			continue
		}
		info, err := e.Info()
		if err != nil || !s.expired(info.ModTime()) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

func (s *FileStore) expired(modified time.Time) bool {
	return s.ttl > 0 && s.now().Sub(modified) > s.ttl
}

// Ping checks that the report directory is usable.
func (s *FileStore) Ping(_ context.Context) error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("report dir: %w", err)
	}
	return nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".pdf")
}
