//go:build cgo

package mdbx

import (
	"encoding/binary"
	"testing"

	"github.com/erigontech/mdbx-go/mdbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Giulio2002/tkv/internal/engine"
)

func openEnv(t *testing.T, maxDBs uint32) *Env {
	t.Helper()
	env, err := New("test")
	require.NoError(t, err)
	require.NoError(t, env.SetMaxMapSize(16<<20))
	require.NoError(t, env.SetMaxDBs(maxDBs))
	require.NoError(t, env.Open(t.TempDir(), 0o644))
	t.Cleanup(func() { env.Close() })
	return env
}

func u64(v uint64) []byte {
	b := make([]byte, 8)
	binary.NativeEndian.PutUint64(b, v)
	return b
}

func TestDBFlags(t *testing.T) {
	got := dbFlags(engine.Create | engine.DupSort | engine.IntegerKey | engine.DupFixed | engine.IntegerDup)
	assert.Equal(t, mdbx.Create|mdbx.DupSort|mdbx.DupFixed|integerKey|integerDup, got)
}

func TestIntegerDuplicates(t *testing.T) {
	env := openEnv(t, 2)

	txn, err := env.BeginTxn(false)
	require.NoError(t, err)
	dbi, err := txn.OpenDBI("", engine.Create|engine.IntegerKey|engine.DupSort|engine.DupFixed|engine.IntegerDup)
	require.NoError(t, err)
	for _, v := range []uint64{300, 2, 1 << 40} {
		require.NoError(t, txn.Put(dbi, u64(7), u64(v), engine.Upsert))
	}
	named, err := txn.OpenDBI("names", engine.Create)
	require.NoError(t, err)
	require.NoError(t, txn.Put(named, []byte("k"), []byte("v"), engine.Upsert))
	require.NoError(t, txn.Commit())

	txn, err = env.BeginTxn(true)
	require.NoError(t, err)
	defer txn.Abort()
	n, err := txn.Entries(dbi)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	got, err := txn.Get(dbi, u64(7))
	require.NoError(t, err)
	assert.Equal(t, u64(2), got)
}

func TestNamedDatabaseLimit(t *testing.T) {
	env := openEnv(t, 1)

	txn, err := env.BeginTxn(false)
	require.NoError(t, err)
	defer txn.Abort()
	_, err = txn.OpenDBI("one", engine.Create)
	require.NoError(t, err)
	_, err = txn.OpenDBI("one", engine.Create)
	require.NoError(t, err)
	_, err = txn.OpenDBI("two", engine.Create)
	assert.Equal(t, engine.DBsFull, engine.StatusOf(err))
	_, err = txn.OpenDBI(engine.MainTable, engine.Create)
	assert.Equal(t, engine.InvalidArgument, engine.StatusOf(err))
	_, err = txn.OpenDBI("", engine.Create)
	require.NoError(t, err)
}
