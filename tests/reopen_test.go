package tests

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Giulio2002/tkv"
	"github.com/Giulio2002/tkv/internal/engine"
)

func u64(n uint64) []byte {
	b := make([]byte, 8)
	binary.NativeEndian.PutUint64(b, n)
	return b
}

// TestCommitSurvivesReopen closes the store and reads it back from disk:
// committed writes are kept and pending ones are lost.
func TestCommitSurvivesReopen(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		backend, ok := tkv.ParseBackend(b.name)
		require.True(t, ok)
		dir := t.TempDir()
		open := func() *tkv.Store[uint64, string] {
			s, err := tkv.Open(dir, tkv.IntKey[uint64]{}, tkv.StringValue[string]{},
				tkv.WithBackend(backend), tkv.WithName("persist"))
			require.NoError(t, err)
			return s
		}

		s := open()
		require.NoError(t, s.Put(1, "committed"))
		require.NoError(t, s.Add(2, "pending", false))
		require.NoError(t, s.Close())

		s = open()
		defer s.Close()
		v, err := s.Get(1)
		require.NoError(t, err)
		assert.Equal(t, "committed", v)
		_, err = s.Get(2)
		assert.True(t, tkv.IsNotFound(err))
	})
}

// TestStoredLayoutIsChecked reopens a database with a different layout.
func TestStoredLayoutIsChecked(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend) {
		dir := t.TempDir()
		env := openEnv(t, b, dir)
		openDB(t, env, "layout", engine.DupSort)
		require.NoError(t, env.Close())

		env = openEnv(t, b, dir)
		defer env.Close()
		txn, err := env.BeginTxn(false)
		require.NoError(t, err)
		defer txn.Abort()
		_, err = txn.OpenDBI("layout", engine.IntegerKey)
		assert.Equal(t, engine.Incompatible, engine.StatusOf(err))
	})
}
