package inmemdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/smartlearn/core"
)

func TestDB(t *testing.T) {
	ctx := context.Background()
	db := Open()

	_, err := db.Get(ctx, "courses")
	assert.ErrorIs(t, err, core.ErrKeyNotFound)

	require.NoError(t, db.Set(ctx, "courses", []byte(`[]`)))
	v, err := db.Get(ctx, "courses")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(v))

	v[0] = 'x'
	v, _ = db.Get(ctx, "courses")
	assert.Equal(t, `[]`, string(v), "stored value must not alias returned slices")

	require.NoError(t, db.Delete(ctx, "courses"))
	_, err = db.Get(ctx, "courses")
	assert.ErrorIs(t, err, core.ErrKeyNotFound)
}

func TestDB_Quota(t *testing.T) {
	ctx := context.Background()
	db := Open(WithQuota(10))

	require.NoError(t, db.Set(ctx, "a", []byte("12345")))
	require.NoError(t, db.Set(ctx, "b", []byte("12345")))
	assert.ErrorIs(t, db.Set(ctx, "c", []byte("1")), core.ErrQuotaExceeded)

	// replacing a value only counts the difference
	require.NoError(t, db.Set(ctx, "a", []byte("1234")))
	require.NoError(t, db.Set(ctx, "c", []byte("1")))

	db.SetQuota(0)
	require.NoError(t, db.Set(ctx, "d", make([]byte, 100)))
}
