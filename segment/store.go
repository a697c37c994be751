package segment

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/Fantom-foundation/segpipe/common/bigendian"
	"github.com/Fantom-foundation/segpipe/kvdb"
	"github.com/Fantom-foundation/segpipe/kvdb/table"
	"github.com/Fantom-foundation/segpipe/name"
	"github.com/Fantom-foundation/segpipe/packet"
)

var (
	countKey  = []byte("count")
	prefixKey = []byte("prefix")
)

// Store keeps encoded signed segments keyed by segment number.
// Segments are written once and returned verbatim.
type Store struct {
	db    kvdb.Store
	table struct {
		Segments kvdb.Store `table:"s"`
		Meta     kvdb.Store `table:"m"`
	}

	cache *lru.Cache // seg -> wire
}

// NewStore wraps db. The caller keeps ownership of db.
func NewStore(db kvdb.Store, cfg StoreConfig) (*Store, error) {
	s := &Store{db: db}
	if err := table.MigrateTables(&s.table, db); err != nil {
		return nil, err
	}
	cache, err := lru.New(cfg.CacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "segment cache")
	}
	s.cache = cache
	return s, nil
}

// Put stores the given segments, starting with number first, in one batch.
func (s *Store) Put(first uint64, segments ...*packet.Data) error {
	batch := s.table.Segments.NewBatch()
	for i, d := range segments {
		wire, err := packet.EncodeData(d)
		if err != nil {
			return err
		}
		if err := batch.Put(bigendian.Uint64ToBytes(first+uint64(i)), wire); err != nil {
			return err
		}
		if batch.ValueSize() >= kvdb.IdealBatchSize {
			if err := batch.Write(); err != nil {
				return err
			}
			batch.Reset()
		}
	}
	if err := batch.Write(); err != nil {
		return err
	}
	for i := range segments {
		s.cache.Remove(first + uint64(i))
	}
	return nil
}

// Get returns the wire form of segment seg, or nil if it isn't stored.
func (s *Store) Get(seg uint64) ([]byte, error) {
	if v, ok := s.cache.Get(seg); ok {
		return v.([]byte), nil
	}
	wire, err := s.table.Segments.Get(bigendian.Uint64ToBytes(seg))
	if err != nil || wire == nil {
		return nil, err
	}
	s.cache.Add(seg, wire)
	return wire, nil
}

// GetData returns segment seg decoded, or nil if it isn't stored.
func (s *Store) GetData(seg uint64) (*packet.Data, error) {
	wire, err := s.Get(seg)
	if err != nil || wire == nil {
		return nil, err
	}
	return packet.DecodeData(wire)
}

// SetHeader records the namespace and number of stored segments.
func (s *Store) SetHeader(prefix name.Name, count uint64) error {
	if err := s.table.Meta.Put(prefixKey, []byte(prefix.String())); err != nil {
		return err
	}
	return s.table.Meta.Put(countKey, bigendian.Uint64ToBytes(count))
}

// Header returns what SetHeader recorded. ok is false on an empty store.
func (s *Store) Header() (prefix name.Name, count uint64, ok bool, err error) {
	uri, err := s.table.Meta.Get(prefixKey)
	if err != nil || uri == nil {
		return nil, 0, false, err
	}
	raw, err := s.table.Meta.Get(countKey)
	if err != nil || len(raw) != 8 {
		return nil, 0, false, err
	}
	prefix, err = name.Parse(string(uri))
	if err != nil {
		return nil, 0, false, errors.Wrap(err, "stored prefix")
	}
	return prefix, bigendian.BytesToUint64(raw), true, nil
}
