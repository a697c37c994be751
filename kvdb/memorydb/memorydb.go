// Package memorydb implements the key-value database layer based on an
// in-memory red-black tree.
package memorydb

import (
	"bytes"
	"errors"
	"sync"

	rbt "github.com/emirpasic/gods/trees/redblacktree"
	"github.com/ethereum/go-ethereum/common"

	"github.com/Fantom-foundation/segpipe/kvdb"
)

var errClosed = errors.New("database closed")

// Database is an ephemeral key-value store. Apart from basic data storage
// functionality it also supports batch writes and iterating over the keyspace in
// binary-alphabetical order.
type Database struct {
	tree   *rbt.Tree
	closed bool

	lock sync.RWMutex
}

// New returns an empty database.
func New() *Database {
	return &Database{
		tree: rbt.NewWithStringComparator(),
	}
}

// Close deallocates the internal tree.
func (db *Database) Close() error {
	db.lock.Lock()
	defer db.lock.Unlock()

	if db.closed {
		return errClosed
	}
	db.closed = true
	db.tree = rbt.NewWithStringComparator()
	return nil
}

// Drop whole database. The database must be closed first.
func (db *Database) Drop() {
	db.lock.Lock()
	defer db.lock.Unlock()

	if !db.closed {
		panic("Close database first!")
	}
	db.tree = rbt.NewWithStringComparator()
}

// Has retrieves if a key is present in the key-value store.
func (db *Database) Has(key []byte) (bool, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	if db.closed {
		return false, errClosed
	}
	_, ok := db.tree.Get(string(key))
	return ok, nil
}

// Get retrieves the given key if it's present in the key-value store.
func (db *Database) Get(key []byte) ([]byte, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	if db.closed {
		return nil, errClosed
	}
	val, ok := db.tree.Get(string(key))
	if !ok {
		return nil, nil
	}
	return common.CopyBytes(val.([]byte)), nil
}

// Put inserts the given value into the key-value store.
func (db *Database) Put(key []byte, value []byte) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	if db.closed {
		return errClosed
	}
	db.tree.Put(string(key), common.CopyBytes(value))
	return nil
}

// Delete removes the key from the key-value store.
func (db *Database) Delete(key []byte) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	if db.closed {
		return errClosed
	}
	db.tree.Remove(string(key))
	return nil
}

// NewBatch creates a write-only key-value store that buffers changes to its host
// database until a final write is called.
func (db *Database) NewBatch() kvdb.Batch {
	return &batch{db: db}
}

// NewIterator creates a binary-alphabetical iterator over a subset
// of database content with a particular key prefix, starting at a particular
// initial key (or after, if it does not exist).
//
// The iterator works on a copy of the matching pairs, so writes made after its
// creation are not visible.
func (db *Database) NewIterator(prefix []byte, start []byte) kvdb.Iterator {
	db.lock.RLock()
	defer db.lock.RUnlock()

	it := &iterator{index: -1}
	if db.closed {
		it.err = errClosed
		return it
	}

	from := append(common.CopyBytes(prefix), start...)
	node, ok := db.tree.Ceiling(string(from))
	for ; ok; node, ok = nextNode(db.tree, node) {
		key := []byte(node.Key.(string))
		if !bytes.HasPrefix(key, prefix) {
			break
		}
		it.keys = append(it.keys, key)
		it.values = append(it.values, node.Value.([]byte))
	}
	return it
}

// nextNode returns the smallest node which is > than the specified node
func nextNode(tree *rbt.Tree, node *rbt.Node) (next *rbt.Node, ok bool) {
	origin := node
	if node.Right != nil {
		node = node.Right
		for node.Left != nil {
			node = node.Left
		}
		return node, true
	}
	for node.Parent != nil {
		node = node.Parent
		if tree.Comparator(origin.Key, node.Key) <= 0 {
			return node, true
		}
	}
	return nil, false
}

type iterator struct {
	keys   [][]byte
	values [][]byte
	index  int
	err    error
}

func (it *iterator) Next() bool {
	if it.index >= len(it.keys) {
		return false
	}
	it.index++
	return it.index < len(it.keys)
}

func (it *iterator) Error() error {
	return it.err
}

func (it *iterator) Key() []byte {
	if it.index < 0 || it.index >= len(it.keys) {
		return nil
	}
	return it.keys[it.index]
}

func (it *iterator) Value() []byte {
	if it.index < 0 || it.index >= len(it.keys) {
		return nil
	}
	return it.values[it.index]
}

func (it *iterator) Release() {
	it.keys, it.values = nil, nil
}

type keyvalue struct {
	key    []byte
	value  []byte
	delete bool
}

// batch is a write-only memory batch that commits changes to its host
// database when Write is called. A batch cannot be used concurrently.
type batch struct {
	db     *Database
	writes []keyvalue
	size   int
}

// Put inserts the given value into the batch for later committing.
func (b *batch) Put(key, value []byte) error {
	b.writes = append(b.writes, keyvalue{common.CopyBytes(key), common.CopyBytes(value), false})
	b.size += len(value)
	return nil
}

// Delete inserts the key removal into the batch for later committing.
func (b *batch) Delete(key []byte) error {
	b.writes = append(b.writes, keyvalue{common.CopyBytes(key), nil, true})
	b.size++
	return nil
}

// ValueSize retrieves the amount of data queued up for writing.
func (b *batch) ValueSize() int {
	return b.size
}

// Write flushes any accumulated data to the memory database.
func (b *batch) Write() error {
	b.db.lock.Lock()
	defer b.db.lock.Unlock()

	if b.db.closed {
		return errClosed
	}
	for _, kv := range b.writes {
		if kv.delete {
			b.db.tree.Remove(string(kv.key))
			continue
		}
		b.db.tree.Put(string(kv.key), kv.value)
	}
	return nil
}

// Reset resets the batch for reuse.
func (b *batch) Reset() {
	b.writes = b.writes[:0]
	b.size = 0
}

// Replay replays the batch contents.
func (b *batch) Replay(w kvdb.Writer) error {
	for _, kv := range b.writes {
		if kv.delete {
			if err := w.Delete(kv.key); err != nil {
				return err
			}
			continue
		}
		if err := w.Put(kv.key, kv.value); err != nil {
			return err
		}
	}
	return nil
}
