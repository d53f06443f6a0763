package tkv

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvShared(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Option) {
		dir := t.TempDir()
		a, err := Open(dir, IntKey[uint64]{}, StringValue[string]{}, backend)
		require.NoError(t, err)
		b, err := Open(dir, IntKey[uint64]{}, StringValue[string]{}, backend)
		require.NoError(t, err)
		require.Same(t, a.Env(), b.Env())

		require.NoError(t, a.Put(1, "shared"))
		v, err := b.Get(1)
		require.NoError(t, err)
		assert.Equal(t, "shared", v)
		require.NoError(t, b.Abort())

		require.NoError(t, a.Close())
		v, err = b.Get(1)
		require.NoError(t, err)
		assert.Equal(t, "shared", v)
		require.NoError(t, b.Close())

		_, loaded := environments.Load(a.Env().Path())
		assert.False(t, loaded)
	})
}

func TestEnvBackendMismatch(t *testing.T) {
	if len(testBackends()) < 2 {
		t.Skip("needs both backends")
	}
	dir := t.TempDir()
	s := openIntStore(t, dir, WithBackend(BackendBolt))
	require.NoError(t, s.Put(1, "x"))

	_, err := Open(dir, IntKey[uint64]{}, StringValue[string]{}, WithBackend(BackendMDBX))
	assert.Equal(t, IncompatibleOptions, KindOf(err))
}

func TestEnvNamedDatabases(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Option) {
		dir := t.TempDir()
		users := openIntStore(t, dir, backend, WithName("users"))
		tags := openIntStore(t, dir, backend, WithName("tags"))

		require.NoError(t, users.Put(1, "ann"))
		require.NoError(t, tags.Put(1, "red"))

		v, err := users.Get(1)
		require.NoError(t, err)
		assert.Equal(t, "ann", v)
		require.NoError(t, users.Abort())

		v, err = tags.Get(1)
		require.NoError(t, err)
		assert.Equal(t, "red", v)
		require.NoError(t, tags.Abort())
	})
}

func TestEnvDatabaseFlagsMismatch(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Option) {
		dir := t.TempDir()
		plain := openIntStore(t, dir, backend, WithName("events"))
		require.NoError(t, plain.Put(1, "a"))

		dups := openIntStore(t, dir, backend, WithName("events"), WithDuplicates())
		err := dups.Put(1, "b")
		assert.Equal(t, IncompatibleOptions, KindOf(err))
		assert.False(t, dups.InTransaction())
	})
}

func TestWriteMetrics(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Option) {
		s := openIntStore(t, t.TempDir(), backend, WithName("metered"))
		require.NoError(t, s.Put(1, "a"))
		_, err := s.Get(2)
		require.Error(t, err)
		require.NoError(t, s.Abort())
	})

	var buf bytes.Buffer
	WriteMetrics(&buf)
	out := buf.String()
	assert.Contains(t, out, `tkv_operations_total{op="add",db="metered"}`)
	assert.Contains(t, out, `tkv_transactions_total{mode="write",outcome="commit"}`)
	assert.Contains(t, out, `tkv_errors_total{kind="NotFound"}`)
}

func TestEnvNamedNextToUnnamed(t *testing.T) {
	check := func(t *testing.T, backend Option, namedFirst bool) {
		dir := t.TempDir()
		unnamed := openIntStore(t, dir, backend)
		named, err := Open(dir, StringKey[string]{}, StringValue[string]{}, backend, WithName("side"))
		require.NoError(t, err)
		defer named.Close()

		if namedFirst {
			require.NoError(t, named.Put("k", "side"))
			require.NoError(t, unnamed.Put(1, "main"))
		} else {
			require.NoError(t, unnamed.Put(1, "main"))
			require.NoError(t, named.Put("k", "side"))
		}

		c, err := unnamed.Begin()
		require.NoError(t, err)
		assert.Equal(t, []uint64{1}, collectForward(t, c))
		n, err := unnamed.Len()
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
		require.NoError(t, unnamed.Abort())

		v, err := named.Get("k")
		require.NoError(t, err)
		assert.Equal(t, "side", v)
		require.NoError(t, named.Abort())
	}

	forEachBackend(t, func(t *testing.T, backend Option) {
		t.Run("unnamed first", func(t *testing.T) { check(t, backend, false) })
		t.Run("named first", func(t *testing.T) { check(t, backend, true) })
	})
}

func TestEnvReservedName(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Option) {
		s := openIntStore(t, t.TempDir(), backend, WithName("tkv.main"))
		err := s.Put(1, "x")
		assert.Equal(t, Unknown, KindOf(err))
		assert.False(t, s.InTransaction())
	})
}

func TestReadDoesNotWaitForWriter(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Option) {
		dir := t.TempDir()
		writer := openIntStore(t, dir, backend, WithName("writer"))
		require.NoError(t, writer.Put(1, "w"))

		seed, err := Open(dir, IntKey[uint64]{}, StringValue[string]{}, backend, WithName("reader"))
		require.NoError(t, err)
		require.NoError(t, seed.Put(1, "r"))
		require.NoError(t, seed.Close())

		reader, err := Open(dir, IntKey[uint64]{}, StringValue[string]{}, backend, WithName("reader"))
		require.NoError(t, err)
		defer reader.Close()

		require.NoError(t, writer.Add(2, "pending", false))

		type result struct {
			val string
			err error
		}
		done := make(chan result, 1)
		go func() {
			v, err := reader.Get(1)
			if abortErr := reader.Abort(); err == nil {
				err = abortErr
			}
			done <- result{v, err}
		}()

		select {
		case r := <-done:
			require.NoError(t, r.err)
			assert.Equal(t, "r", r.val)
		case <-time.After(5 * time.Second):
			t.Fatal("read blocked behind a pending write transaction")
		}
		require.NoError(t, writer.Commit())
	})
}
