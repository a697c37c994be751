// Package segment produces the signed, final-block-tagged segments of an object
// and keeps them in a key-value store.
package segment

import (
	"github.com/ethereum/go-ethereum/log"

	"github.com/Fantom-foundation/segpipe/name"
	"github.com/Fantom-foundation/segpipe/packet"
	"github.com/Fantom-foundation/segpipe/signer"
)

// genBatch is the number of segments written per store batch.
const genBatch = 256

// Segmenter pre-generates MaxCount segments under a prefix.
type Segmenter struct {
	cfg    Config
	prefix name.Name
	signer signer.Signer
	store  *Store

	log.Logger
}

// New validates cfg and returns a segmenter. Nothing is generated until Generate.
func New(cfg Config, prefix name.Name, s signer.Signer, store *Store) (*Segmenter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Content == nil {
		cfg.Content = HelloContent
	}
	return &Segmenter{
		cfg:    cfg,
		prefix: prefix,
		signer: s,
		store:  store,
		Logger: log.New("module", "segmenter", "prefix", prefix.String()),
	}, nil
}

// Count is the number of segments.
func (s *Segmenter) Count() uint64 {
	return s.cfg.MaxCount
}

// Prefix is the namespace the segments are named under.
func (s *Segmenter) Prefix() name.Name {
	return s.prefix
}

// Final is the number of the last segment.
func (s *Segmenter) Final() uint64 {
	return s.cfg.MaxCount - 1
}

// Segment builds and signs segment seg without storing it.
func (s *Segmenter) Segment(seg uint64) (*packet.Data, error) {
	n := s.prefix.AppendSegment(seg)
	d := packet.NewData(n, s.cfg.Content(n, seg))
	d.MetaInfo.FreshnessPeriod = s.cfg.FreshnessPeriod
	d.SetFinalSegment(s.Final())
	if err := s.signer.Sign(d); err != nil {
		return nil, err
	}
	return d, nil
}

// Generate builds, signs and stores all the segments.
func (s *Segmenter) Generate() error {
	batch := make([]*packet.Data, 0, genBatch)
	first := uint64(0)
	for seg := uint64(0); seg < s.cfg.MaxCount; seg++ {
		d, err := s.Segment(seg)
		if err != nil {
			return err
		}
		batch = append(batch, d)
		if len(batch) == genBatch {
			if err := s.store.Put(first, batch...); err != nil {
				return err
			}
			first = seg + 1
			batch = batch[:0]
		}
	}
	if len(batch) != 0 {
		if err := s.store.Put(first, batch...); err != nil {
			return err
		}
	}
	if err := s.store.SetHeader(s.prefix, s.cfg.MaxCount); err != nil {
		return err
	}
	s.Debug("Generated segments", "count", s.cfg.MaxCount)
	return nil
}
