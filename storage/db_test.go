package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemDBRoundTrip(t *testing.T) {
	db := NewMemDB()
	defer db.Close()

	key := []byte("participant/1")
	value := []byte{0x01, 0x02, 0x03}

	require.NoError(t, db.Put(key, value))

	got, err := db.Get(key)
	require.NoError(t, err)
	require.Equal(t, value, got)

	ok, err := db.Has(key)
	require.NoError(t, err)
	require.True(t, ok)

	// A stored value must not alias the caller's slice.
	value[0] = 0xff
	got, err = db.Get(key)
	require.NoError(t, err)
	require.Equal(t, byte(0x01), got[0])

	require.NoError(t, db.Delete(key))
	got, err = db.Get(key)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestMemDBMissingKey(t *testing.T) {
	db := NewMemDB()
	defer db.Close()

	got, err := db.Get([]byte("absent"))
	require.NoError(t, err)
	require.Nil(t, got)

	ok, err := db.Has([]byte("absent"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLevelDBPersistsAcrossReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")

	db, err := NewLevelDB(dir)
	require.NoError(t, err)
	require.NoError(t, db.Put([]byte("counter"), []byte{0x2a}))
	db.Close()

	reopened, err := NewLevelDB(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get([]byte("counter"))
	require.NoError(t, err)
	require.Equal(t, []byte{0x2a}, got)

	// Missing keys read as nil without an error.
	got, err = reopened.Get([]byte("absent"))
	require.NoError(t, err)
	require.Nil(t, got)
}
