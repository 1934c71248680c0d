package vault

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

// SecretBag is one portal's opaque credential payload in the clear: login
// fields, API tokens, whatever the portal needs. It exists only in memory;
// stores only ever see the sealed form.
type SecretBag map[string]string

// sealedRow is the at-rest shape of one (user, portal) entry. Each secret
// value is stored as hex(iv):hex(ciphertext).
type sealedRow struct {
	UserID  string
	Portal  string
	Secrets map[string]string
}

// SecretStore persists sealed credential rows keyed by (user, portal).
// Put is an atomic upsert on that pair. Get returns engine.ErrNotFound for
// unknown pairs.
type SecretStore interface {
	Put(ctx context.Context, row sealedRow) error
	Get(ctx context.Context, userID, portal string) (sealedRow, error)
	Delete(ctx context.Context, userID, portal string) error
	ListPortals(ctx context.Context, userID string) ([]string, error)
	Close() error
}

// Vault composes a cipher with a store. All sealing happens here so store
// implementations stay plaintext-free.
type Vault struct {
	cipher *Cipher
	store  SecretStore
}

// New builds a vault over the given store. The key must be exactly
// KeySize bytes.
func New(key []byte, store SecretStore) (*Vault, error) {
	cipher, err := NewCipher(key)
	if err != nil {
		return nil, err
	}
	return &Vault{cipher: cipher, store: store}, nil
}

// Store seals and upserts one user's credentials for a portal, replacing any
// previous entry for the same (user, portal) pair.
func (v *Vault) Store(ctx context.Context, userID, portal string, bag SecretBag) error {
	if userID == "" {
		return &engine.ValidationError{Field: "user_id", Reason: "must not be empty"}
	}
	if portal == "" {
		return &engine.ValidationError{Field: "portal", Reason: "must not be empty"}
	}
	if len(bag) == 0 {
		return &engine.ValidationError{Field: "secrets", Reason: "must not be empty"}
	}
	sealed := make(map[string]string, len(bag))
	for field, value := range bag {
		enc, err := v.cipher.EncryptString(value)
		if err != nil {
			return err
		}
		sealed[field] = enc
	}
	return v.store.Put(ctx, sealedRow{UserID: userID, Portal: portal, Secrets: sealed})
}

// Lookup opens the stored credentials for a (user, portal) pair. Sealed
// values carry the iv:ciphertext delimiter; values without it were stored in
// the clear and pass through untouched. Missing pairs return
// engine.ErrNotFound; corrupted rows return a decryption error.
func (v *Vault) Lookup(ctx context.Context, userID, portal string) (SecretBag, error) {
	row, err := v.store.Get(ctx, userID, portal)
	if err != nil {
		return nil, err
	}
	bag := make(SecretBag, len(row.Secrets))
	for field, value := range row.Secrets {
		if !strings.Contains(value, ":") {
			bag[field] = value
			continue
		}
		plain, err := v.cipher.DecryptString(value)
		if err != nil {
			return nil, fmt.Errorf("credentials for %s: %w", portal, err)
		}
		bag[field] = plain
	}
	return bag, nil
}

// Has reports whether credentials exist for a (user, portal) pair without
// opening them.
func (v *Vault) Has(ctx context.Context, userID, portal string) bool {
	_, err := v.store.Get(ctx, userID, portal)
	return err == nil
}

// Remove deletes one user's credentials for a portal. Deleting an absent
// entry is a no-op.
func (v *Vault) Remove(ctx context.Context, userID, portal string) error {
	return v.store.Delete(ctx, userID, portal)
}

// Portals lists the portal names a user has stored credentials for, sorted.
func (v *Vault) Portals(ctx context.Context, userID string) ([]string, error) {
	return v.store.ListPortals(ctx, userID)
}

// Close releases the underlying store.
func (v *Vault) Close() error {
	return v.store.Close()
}

type credKey struct {
	userID string
	portal string
}

// memoryStore is the default store: sealed rows in a map. Suitable for
// single-process runs and tests.
type memoryStore struct {
	mu   sync.RWMutex
	rows map[credKey]map[string]string
}

// NewMemoryStore returns an in-memory SecretStore.
func NewMemoryStore() SecretStore {
	return &memoryStore{rows: make(map[credKey]map[string]string)}
}

func (m *memoryStore) Put(_ context.Context, row sealedRow) error {
	secrets := make(map[string]string, len(row.Secrets))
	for k, v := range row.Secrets {
		secrets[k] = v
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[credKey{row.UserID, row.Portal}] = secrets
	return nil
}

func (m *memoryStore) Get(_ context.Context, userID, portal string) (sealedRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stored, ok := m.rows[credKey{userID, portal}]
	if !ok {
		return sealedRow{}, engine.ErrNotFound
	}
	secrets := make(map[string]string, len(stored))
	for k, v := range stored {
		secrets[k] = v
	}
	return sealedRow{UserID: userID, Portal: portal, Secrets: secrets}, nil
}

func (m *memoryStore) Delete(_ context.Context, userID, portal string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, credKey{userID, portal})
	return nil
}

func (m *memoryStore) ListPortals(_ context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var portals []string
	for key := range m.rows {
		if key.userID == userID {
			portals = append(portals, key.portal)
		}
	}
	sort.Strings(portals)
	return portals, nil
}

func (m *memoryStore) Close() error { return nil }
