package memorydb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIteratorOrderAndPrefix(t *testing.T) {
	require := require.New(t)

	db := New()
	for _, k := range []string{"b2", "a1", "b1", "c", "b3", "a2"} {
		require.NoError(db.Put([]byte(k), []byte("v"+k)))
	}

	collect := func(prefix, start string) []string {
		var keys []string
		it := db.NewIterator([]byte(prefix), []byte(start))
		defer it.Release()
		for it.Next() {
			keys = append(keys, string(it.Key()))
			require.Equal("v"+string(it.Key()), string(it.Value()))
		}
		require.NoError(it.Error())
		return keys
	}

	require.Equal([]string{"a1", "a2", "b1", "b2", "b3", "c"}, collect("", ""))
	require.Equal([]string{"b1", "b2", "b3"}, collect("b", ""))
	require.Equal([]string{"b2", "b3"}, collect("b", "2"))
	require.Empty(collect("d", ""))
}

func TestGetCopiesValue(t *testing.T) {
	require := require.New(t)

	db := New()
	val := []byte{1, 2, 3}
	require.NoError(db.Put([]byte("k"), val))
	val[0] = 9

	got, err := db.Get([]byte("k"))
	require.NoError(err)
	require.Equal([]byte{1, 2, 3}, got)

	got, err = db.Get([]byte("missing"))
	require.NoError(err)
	require.Nil(got)
}

func TestClose(t *testing.T) {
	db := New()
	require.NoError(t, db.Put([]byte("k"), nil))
	require.Panics(t, db.Drop)

	require.NoError(t, db.Close())
	require.Error(t, db.Close())

	_, err := db.Get([]byte("k"))
	require.Error(t, err)

	db.Drop()
	require.Equal(t, 0, db.tree.Size())
}
