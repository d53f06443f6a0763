package tkv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectForward[K, V any](t *testing.T, c *Cursor[K, V]) []K {
	t.Helper()
	var keys []K
	for c.Valid() {
		k, err := c.Key()
		require.NoError(t, err)
		keys = append(keys, k)
		ok, err := c.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
	}
	return keys
}

func TestCursorIntegerOrder(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Option) {
		s := openIntStore(t, t.TempDir(), backend)
		for _, k := range []uint64{256, 10, 1, 2, 1 << 33} {
			require.NoError(t, s.Add(k, "v", false))
		}
		require.NoError(t, s.Commit())

		c, err := s.Begin()
		require.NoError(t, err)
		assert.Equal(t, []uint64{1, 2, 10, 256, 1 << 33}, collectForward(t, c))
		assert.False(t, c.Valid())
	})
}

func TestCursorStringOrder(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Option) {
		s, err := Open(t.TempDir(), StringKey[string]{}, StringValue[string]{}, backend)
		require.NoError(t, err)
		defer s.Close()

		for _, k := range []string{"b", "aa", "c", "a"} {
			require.NoError(t, s.Add(k, k+"!", false))
		}
		require.NoError(t, s.Commit())

		c, err := s.Begin()
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "aa", "b", "c"}, collectForward(t, c))
	})
}

func TestCursorReverse(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Option) {
		s := openIntStore(t, t.TempDir(), backend)
		for _, k := range []uint64{3, 1, 2} {
			require.NoError(t, s.Add(k, "v", false))
		}
		require.NoError(t, s.Commit())

		c, err := s.End()
		require.NoError(t, err)
		var keys []uint64
		for {
			k, err := c.Key()
			require.NoError(t, err)
			keys = append(keys, k)
			ok, err := c.Prev()
			require.NoError(t, err)
			if !ok {
				break
			}
		}
		assert.Equal(t, []uint64{3, 2, 1}, keys)

		require.NoError(t, c.SeekBegin())
		k, err := c.Key()
		require.NoError(t, err)
		assert.Equal(t, uint64(1), k)

		require.NoError(t, c.SeekEnd())
		k, err = c.Key()
		require.NoError(t, err)
		assert.Equal(t, uint64(3), k)

		require.NoError(t, c.Seek(2))
		v, err := c.Value()
		require.NoError(t, err)
		assert.Equal(t, "v", v)

		err = c.Seek(7)
		assert.True(t, IsNotFound(err))
		assert.False(t, c.Valid())
	})
}

func TestCursorEmptyDatabase(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Option) {
		s := openIntStore(t, t.TempDir(), backend)

		_, err := s.Begin()
		assert.True(t, IsNotFound(err))
		_, err = s.End()
		assert.True(t, IsNotFound(err))
		_, err = s.FindFirst(1)
		assert.True(t, IsNotFound(err))
		require.NoError(t, s.Abort())

		err = s.View(func(tx *Tx[uint64, string]) error {
			c, err := tx.Cursor()
			require.NoError(t, err)

			require.NoError(t, c.SeekBegin())
			assert.False(t, c.Valid())
			require.NoError(t, c.SeekEnd())
			assert.False(t, c.Valid())

			_, err = c.Key()
			assert.Equal(t, NotFound, KindOf(err))
			_, err = c.Value()
			assert.Equal(t, NotFound, KindOf(err))

			ok, err := c.Next()
			require.NoError(t, err)
			assert.False(t, ok)
			return nil
		})
		require.NoError(t, err)
	})
}

func TestCursorEqual(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Option) {
		s := openIntStore(t, t.TempDir(), backend)
		require.NoError(t, s.Add(1, "a", false))
		require.NoError(t, s.Add(2, "b", false))
		require.NoError(t, s.Commit())

		a, err := s.Begin()
		require.NoError(t, err)
		b, err := s.FindFirst(1)
		require.NoError(t, err)
		assert.True(t, a.Equal(b))

		ok, err := b.Next()
		require.NoError(t, err)
		require.True(t, ok)
		assert.False(t, a.Equal(b))

		end, err := s.End()
		require.NoError(t, err)
		assert.True(t, b.Equal(end))

		ok, err = b.Next()
		require.NoError(t, err)
		assert.False(t, ok)
		assert.False(t, b.Equal(end))

		ok, err = end.Next()
		require.NoError(t, err)
		assert.False(t, ok)
		assert.True(t, b.Equal(end))

		assert.True(t, b.Equal(nil))
		assert.False(t, a.Equal(nil))
	})
}

func TestCursorLifetime(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Option) {
		s := openIntStore(t, t.TempDir(), backend)
		require.NoError(t, s.Put(1, "a"))

		c, err := s.Begin()
		require.NoError(t, err)
		c.Close()
		c.Close()
		_, err = c.Key()
		assert.Equal(t, BadTransaction, KindOf(err))

		c, err = s.Begin()
		require.NoError(t, err)
		require.NoError(t, s.Commit())
		assert.False(t, c.Valid())

		_, err = c.Key()
		assert.Equal(t, BadTransaction, KindOf(err))
		_, err = c.Next()
		assert.Equal(t, BadTransaction, KindOf(err))
		assert.Equal(t, BadTransaction, KindOf(c.SeekBegin()))
		c.Close()
	})
}

func TestCursorSurvivesWrites(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Option) {
		s := openIntStore(t, t.TempDir(), backend)
		for _, k := range []uint64{1, 2, 3} {
			require.NoError(t, s.Add(k, "v", false))
		}

		c, err := s.Begin()
		require.NoError(t, err)
		require.NoError(t, s.Add(4, "w", false))

		assert.Equal(t, []uint64{1, 2, 3, 4}, collectForward(t, c))
		require.NoError(t, s.Abort())

		_, err = s.Get(4)
		assert.True(t, IsNotFound(err))
	})
}

func TestCursorExhaustionIsNotCounted(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Option) {
		s := openIntStore(t, t.TempDir(), backend)
		require.NoError(t, s.Add(1, "a", false))
		require.NoError(t, s.Add(2, "b", false))
		require.NoError(t, s.Commit())

		notFound := storeMetrics.GetOrCreateCounter(`tkv_errors_total{kind="NotFound"}`)
		before := notFound.Get()

		c, err := s.Begin()
		require.NoError(t, err)
		assert.Equal(t, []uint64{1, 2}, collectForward(t, c))
		ok, err := c.Next()
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, c.SeekBegin())
		ok, err = c.Prev()
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, before, notFound.Get())

		assert.True(t, IsNotFound(c.Seek(9)))
		assert.Equal(t, before+1, notFound.Get())
	})
}
