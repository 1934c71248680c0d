package vault

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

func testKey() []byte {
	return bytes.Repeat([]byte{0x42}, KeySize)
}

func newTestVault(t *testing.T) *Vault {
	t.Helper()
	v, err := New(testKey(), NewMemoryStore())
	require.NoError(t, err)
	return v
}

func loginBag(username, password string) SecretBag {
	return SecretBag{"username": username, "password": password}
}

func TestNewCipherKeyLength(t *testing.T) {
	for _, n := range []int{0, 16, 31, 33, 64} {
		_, err := NewCipher(make([]byte, n))
		assert.Error(t, err, "key of %d bytes must be rejected", n)
	}
	_, err := NewCipher(testKey())
	assert.NoError(t, err)
}

func TestEncryptStringFormat(t *testing.T) {
	c, err := NewCipher(testKey())
	require.NoError(t, err)

	enc, err := c.EncryptString("hunter2")
	require.NoError(t, err)

	iv, ct, ok := strings.Cut(enc, ":")
	require.True(t, ok, "encrypted value must be iv:ciphertext")
	assert.Len(t, iv, 2*ivSize, "iv must be hex of %d bytes", ivSize)
	assert.NotEmpty(t, ct)

	// A fresh IV per call: two encryptions of the same value differ.
	enc2, err := c.EncryptString("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, enc, enc2)
}

func TestVaultRoundTrip(t *testing.T) {
	ctx := context.Background()
	v := newTestVault(t)

	err := v.Store(ctx, "user-1", "linkedin", loginBag("grace@example.com", "hunter2"))
	require.NoError(t, err)

	got, err := v.Lookup(ctx, "user-1", "linkedin")
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", got["username"])
	assert.Equal(t, "hunter2", got["password"])
}

func TestVaultUpsert(t *testing.T) {
	ctx := context.Background()
	v := newTestVault(t)

	require.NoError(t, v.Store(ctx, "user-1", "indeed", loginBag("old@example.com", "old")))
	require.NoError(t, v.Store(ctx, "user-1", "indeed", loginBag("new@example.com", "new")))

	got, err := v.Lookup(ctx, "user-1", "indeed")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", got["username"])
	assert.Equal(t, "new", got["password"])

	portals, err := v.Portals(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"indeed"}, portals, "upsert must not create a second entry")
}

func TestVaultPerUserIsolation(t *testing.T) {
	ctx := context.Background()
	v := newTestVault(t)

	require.NoError(t, v.Store(ctx, "user-a", "linkedin", loginBag("a@example.com", "pass-a")))
	require.NoError(t, v.Store(ctx, "user-b", "linkedin", loginBag("b@example.com", "pass-b")))

	gotA, err := v.Lookup(ctx, "user-a", "linkedin")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", gotA["username"], "second user's store must not overwrite the first")

	gotB, err := v.Lookup(ctx, "user-b", "linkedin")
	require.NoError(t, err)
	assert.Equal(t, "b@example.com", gotB["username"])

	require.NoError(t, v.Remove(ctx, "user-a", "linkedin"))
	assert.False(t, v.Has(ctx, "user-a", "linkedin"))
	assert.True(t, v.Has(ctx, "user-b", "linkedin"), "removals are scoped to one user")

	portals, err := v.Portals(ctx, "user-b")
	require.NoError(t, err)
	assert.Equal(t, []string{"linkedin"}, portals)
}

func TestVaultOpaqueBagFields(t *testing.T) {
	ctx := context.Background()
	v := newTestVault(t)

	bag := SecretBag{
		"username":        "grace@example.com",
		"password":        "hunter2",
		"security_answer": "first pet",
	}
	require.NoError(t, v.Store(ctx, "user-1", "workday", bag))

	got, err := v.Lookup(ctx, "user-1", "workday")
	require.NoError(t, err)
	assert.Equal(t, bag, got)
}

func TestVaultPlainValuePassthrough(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	v, err := New(testKey(), store)
	require.NoError(t, err)

	// A value without the iv:ciphertext delimiter was stored in the clear
	// and must come back untouched.
	require.NoError(t, store.Put(ctx, sealedRow{
		UserID:  "user-1",
		Portal:  "indeed",
		Secrets: map[string]string{"region": "us"},
	}))

	got, err := v.Lookup(ctx, "user-1", "indeed")
	require.NoError(t, err)
	assert.Equal(t, "us", got["region"])
}

func TestVaultTamperedCiphertextFails(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	v, err := New(testKey(), store)
	require.NoError(t, err)

	require.NoError(t, v.Store(ctx, "user-1", "linkedin", loginBag("grace@example.com", "hunter2")))

	row, err := store.Get(ctx, "user-1", "linkedin")
	require.NoError(t, err)

	// Flip one hex digit of the password ciphertext.
	tampered := []byte(row.Secrets["password"])
	last := len(tampered) - 1
	if tampered[last] == '0' {
		tampered[last] = '1'
	} else {
		tampered[last] = '0'
	}
	row.Secrets["password"] = string(tampered)
	require.NoError(t, store.Put(ctx, row))

	_, err = v.Lookup(ctx, "user-1", "linkedin")
	assert.Error(t, err, "tampered ciphertext must fail decryption, not yield garbage")
}

func TestVaultMissingPortal(t *testing.T) {
	ctx := context.Background()
	v := newTestVault(t)

	_, err := v.Lookup(ctx, "user-1", "ziprecruiter")
	assert.ErrorIs(t, err, engine.ErrNotFound)
	assert.False(t, v.Has(ctx, "user-1", "ziprecruiter"))
}

func TestVaultRemove(t *testing.T) {
	ctx := context.Background()
	v := newTestVault(t)

	require.NoError(t, v.Store(ctx, "user-1", "linkedin", loginBag("u", "p")))
	require.NoError(t, v.Remove(ctx, "user-1", "linkedin"))
	assert.False(t, v.Has(ctx, "user-1", "linkedin"))

	// Removing an absent entry is a no-op.
	assert.NoError(t, v.Remove(ctx, "user-1", "linkedin"))
}

func TestVaultValidation(t *testing.T) {
	ctx := context.Background()
	v := newTestVault(t)

	var verr *engine.ValidationError
	assert.ErrorAs(t, v.Store(ctx, "", "linkedin", loginBag("u", "p")), &verr)
	assert.ErrorAs(t, v.Store(ctx, "user-1", "", loginBag("u", "p")), &verr)
	assert.ErrorAs(t, v.Store(ctx, "user-1", "linkedin", nil), &verr)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(t.TempDir() + "/vault.db")
	require.NoError(t, err)
	defer store.Close()

	v, err := New(testKey(), store)
	require.NoError(t, err)

	require.NoError(t, v.Store(ctx, "user-1", "linkedin", loginBag("grace@example.com", "hunter2")))
	require.NoError(t, v.Store(ctx, "user-1", "indeed", loginBag("g", "p")))
	require.NoError(t, v.Store(ctx, "user-2", "linkedin", loginBag("other@example.com", "secret")))

	got, err := v.Lookup(ctx, "user-1", "linkedin")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got["password"])

	other, err := v.Lookup(ctx, "user-2", "linkedin")
	require.NoError(t, err)
	assert.Equal(t, "other@example.com", other["username"], "rows for the same portal stay separate per user")

	portals, err := v.Portals(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"indeed", "linkedin"}, portals)
}

func TestSQLiteStoreUpsertPerPair(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(t.TempDir() + "/vault.db")
	require.NoError(t, err)
	defer store.Close()

	v, err := New(testKey(), store)
	require.NoError(t, err)

	require.NoError(t, v.Store(ctx, "user-1", "linkedin", loginBag("first", "p1")))
	require.NoError(t, v.Store(ctx, "user-1", "linkedin", loginBag("second", "p2")))

	got, err := v.Lookup(ctx, "user-1", "linkedin")
	require.NoError(t, err)
	assert.Equal(t, "second", got["username"])

	portals, err := v.Portals(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"linkedin"}, portals, "upsert on (user, portal) leaves one row")
}
