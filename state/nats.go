package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSStore implements Store with the workspace scope persisted in a NATS
// JetStream KV bucket derived from the workspace identity. Entries written
// there survive process restarts tied to the same workspace. The process
// scope stays in-memory and dies with the process.
type NATSStore struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	kv     jetstream.KeyValue
	config NATSStoreConfig
	closed atomic.Bool

	mu      sync.RWMutex
	process map[string][]byte
}

// NATSStoreConfig holds NATS KV store configuration.
type NATSStoreConfig struct {
	// Conn is the NATS connection to use.
	Conn *nats.Conn

	// Workspace is the workspace identity the store is tied to.
	// It determines the KV bucket name unless Bucket overrides it.
	Workspace string

	// Bucket overrides the derived KV bucket name.
	Bucket string

	// History is the number of revisions to keep per key.
	// Default: 1
	History int

	// MaxValueSize is the maximum value size in bytes.
	// Default: 64KB
	MaxValueSize int32

	// OpTimeout bounds individual KV operations.
	// Default: 5 seconds
	OpTimeout time.Duration
}

// DefaultNATSStoreConfig returns configuration with sensible defaults.
func DefaultNATSStoreConfig() NATSStoreConfig {
	return NATSStoreConfig{
		History:      1,
		MaxValueSize: 64 * 1024,
		OpTimeout:    5 * time.Second,
	}
}

// bucketName derives a valid KV bucket name from a workspace identity.
func bucketName(workspace string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, workspace)
	return "hostkit-ws-" + sanitized
}

// NewNATSStore creates a new NATS-backed scoped store.
func NewNATSStore(cfg NATSStoreConfig) (*NATSStore, error) {
	if cfg.Conn == nil {
		return nil, fmt.Errorf("nats connection required")
	}
	if cfg.Workspace == "" && cfg.Bucket == "" {
		return nil, fmt.Errorf("workspace identity or bucket required")
	}
	if cfg.Bucket == "" {
		cfg.Bucket = bucketName(cfg.Workspace)
	}
	if cfg.History <= 0 {
		cfg.History = DefaultNATSStoreConfig().History
	}
	if cfg.MaxValueSize <= 0 {
		cfg.MaxValueSize = DefaultNATSStoreConfig().MaxValueSize
	}
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = DefaultNATSStoreConfig().OpTimeout
	}

	js, err := jetstream.New(cfg.Conn)
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:       cfg.Bucket,
		History:      uint8(cfg.History),
		MaxValueSize: cfg.MaxValueSize,
	})
	if err != nil {
		return nil, fmt.Errorf("create kv bucket: %w", err)
	}

	return &NATSStore{
		conn:    cfg.Conn,
		js:      js,
		kv:      kv,
		config:  cfg,
		process: make(map[string][]byte),
	}, nil
}

func (s *NATSStore) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.config.OpTimeout)
}

// Get retrieves a value by key within a scope.
func (s *NATSStore) Get(key string, scope Scope) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if err := ValidateScope(scope); err != nil {
		return nil, err
	}
	if s.closed.Load() {
		return nil, ErrClosed
	}

	if scope == ScopeProcess {
		s.mu.RLock()
		defer s.mu.RUnlock()
		v, ok := s.process[key]
		if !ok {
			return nil, ErrNotFound
		}
		val := make([]byte, len(v))
		copy(val, v)
		return val, nil
	}

	ctx, cancel := s.opContext()
	defer cancel()

	e, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("kv get: %w", err)
	}

	return e.Value(), nil
}

// Set stores a value under a key within a scope.
func (s *NATSStore) Set(key string, value []byte, scope Scope) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := ValidateScope(scope); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}

	if scope == ScopeProcess {
		s.mu.Lock()
		defer s.mu.Unlock()
		val := make([]byte, len(value))
		copy(val, value)
		s.process[key] = val
		return nil
	}

	ctx, cancel := s.opContext()
	defer cancel()

	if _, err := s.kv.Put(ctx, key, value); err != nil {
		return fmt.Errorf("kv put: %w", err)
	}
	return nil
}

// Remove deletes a key within a scope.
func (s *NATSStore) Remove(key string, scope Scope) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := ValidateScope(scope); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}

	if scope == ScopeProcess {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.process, key)
		return nil
	}

	ctx, cancel := s.opContext()
	defer cancel()

	// Purge rather than Delete so no tombstone counts as a present key
	if err := s.kv.Purge(ctx, key); err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil
		}
		return fmt.Errorf("kv purge: %w", err)
	}
	return nil
}

// Keys returns all keys present in a scope.
func (s *NATSStore) Keys(scope Scope) ([]string, error) {
	if err := ValidateScope(scope); err != nil {
		return nil, err
	}
	if s.closed.Load() {
		return nil, ErrClosed
	}

	if scope == ScopeProcess {
		s.mu.RLock()
		defer s.mu.RUnlock()
		var keys []string
		for key := range s.process {
			keys = append(keys, key)
		}
		return keys, nil
	}

	ctx, cancel := s.opContext()
	defer cancel()

	keys, err := s.kv.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("kv keys: %w", err)
	}
	return keys, nil
}

// Close shuts down the store. The NATS connection is owned by the caller
// and left open.
func (s *NATSStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.process = nil
	return nil
}
