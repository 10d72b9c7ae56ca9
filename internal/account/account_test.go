package account

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerificationStatus_RoundTrip(t *testing.T) {
	for _, s := range []VerificationStatus{NotVerified, Succeeded, Failed} {
		got, err := ParseVerificationStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := ParseVerificationStatus("maybe")
	assert.Error(t, err)
	assert.Equal(t, "unknown", VerificationStatus(42).String())
}

func TestAccount_CanSync(t *testing.T) {
	var missing *Account
	assert.False(t, missing.CanSync())
	assert.False(t, (&Account{VerificationStatus: Failed}).CanSync())
	assert.False(t, (&Account{VerificationStatus: NotVerified}).CanSync())
	assert.True(t, (&Account{VerificationStatus: Succeeded}).CanSync())
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(
		&Account{Name: "bob", VerificationStatus: Failed},
		&Account{Name: "alice", VerificationStatus: Succeeded},
	)

	a, err := store.ResolveByName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, Succeeded, a.VerificationStatus)

	// Returned records are copies
	a.VerificationStatus = Failed
	again, _ := store.ResolveByName(ctx, "alice")
	assert.Equal(t, Succeeded, again.VerificationStatus)

	_, err = store.ResolveByName(ctx, "carol")
	assert.True(t, errors.Is(err, ErrNotFound))

	all, err := store.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "alice", all[0].Name)
	assert.Equal(t, "bob", all[1].Name)

	store.Delete("bob")
	_, err = store.ResolveByName(ctx, "bob")
	assert.ErrorIs(t, err, ErrNotFound)
}
