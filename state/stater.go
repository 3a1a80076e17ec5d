// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"errors"
	"sync"

	"github.com/vechain/stakeledger/cache"
	"github.com/vechain/stakeledger/kv"
)

const defaultCacheSize = 4096

var errMissing = errors.New("missing")

// Stater creates states over a kv store and caches committed values.
type Stater struct {
	db    kv.Store
	mu    sync.Mutex
	cache *cache.LRU[string, []byte]
	stats cache.Stats
}

// NewStater creates a new stater. cacheSize <= 0 selects the default size.
func NewStater(db kv.Store, cacheSize int) *Stater {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	c, _ := cache.NewLRU[string, []byte](cacheSize)
	return &Stater{db: db, cache: c}
}

// NewState creates a state over the latest committed values.
func (s *Stater) NewState() *State {
	st := New(&struct {
		kv.GetFunc
		kv.HasFunc
		kv.IsNotFoundFunc
	}{
		s.get,
		func(key []byte) (bool, error) {
			_, err := s.get(key)
			if err != nil {
				if errors.Is(err, errMissing) {
					return false, nil
				}
				return false, err
			}
			return true, nil
		},
		func(err error) bool { return errors.Is(err, errMissing) },
	})
	st.sink = s.commit
	return st
}

// CacheStats returns the hit and miss count of the value cache.
func (s *Stater) CacheStats() (changed bool, hit, miss int64) {
	return s.stats.Stats()
}

// get loads a committed value. A missing value is cached as nil.
func (s *Stater) get(key []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.cache.Get(string(key)); ok {
		s.stats.Hit()
		metricStateAccessCounter().AddWithLabel(1, map[string]string{"type": "read", "target": "cache"})
		if v == nil {
			return nil, errMissing
		}
		return v, nil
	}
	s.stats.Miss()
	metricStateAccessCounter().AddWithLabel(1, map[string]string{"type": "read", "target": "db"})

	v, err := s.db.Get(key)
	if err != nil {
		if !s.db.IsNotFound(err) {
			return nil, err
		}
		v = nil
	}
	s.cache.Add(string(key), v)
	if v == nil {
		return nil, errMissing
	}
	return v, nil
}

// commit writes changes in one bulk and refreshes the cache.
func (s *Stater) commit(changes []change) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bulk := s.db.Bulk()
	for _, c := range changes {
		var err error
		if len(c.val) == 0 {
			err = bulk.Delete(c.key)
		} else {
			err = bulk.Put(c.key, c.val)
		}
		if err != nil {
			return err
		}
	}
	if err := bulk.Write(); err != nil {
		// the store may be partially unknown now
		for _, c := range changes {
			s.cache.Remove(string(c.key))
		}
		return err
	}
	for _, c := range changes {
		if len(c.val) == 0 {
			s.cache.Add(string(c.key), nil)
		} else {
			s.cache.Add(string(c.key), c.val)
		}
	}
	metricStateAccessCounter().AddWithLabel(int64(len(changes)), map[string]string{"type": "write", "target": "db"})
	return nil
}
