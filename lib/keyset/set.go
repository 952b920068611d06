package keyset

import (
	"github.com/ValentinKolb/qtrie/lib/common"
	"github.com/ValentinKolb/qtrie/lib/keyspace"
	"github.com/ValentinKolb/qtrie/lib/trie"
	"github.com/lni/dragonboat/v4/logger"
)

var plog = logger.GetLogger(common.LoggerKeySet)

type setImpl struct {
	m trie.Map[struct{}]
}

// NewKeySet creates a key set on top of the map built by factory.
// The set is as thread-safe as the map: backed by a map with
// trie.FeatureConcurrent it may be used from multiple goroutines.
func NewKeySet(factory MapFactory) IKeySet {
	m := factory()
	plog.Debugf("key set created (width %d)", m.KeyWidth())
	return &setImpl{m: m}
}

func (s *setImpl) require(feature trie.Feature, op string) error {
	if !s.m.SupportsFeature(feature) {
		return NewError(RetCUnsupportedOperation, op+" operation is not supported")
	}
	return nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see keyset/interface.go)
// --------------------------------------------------------------------------

func (s *setImpl) Add(key []byte) (bool, error) {
	if err := s.require(trie.FeatureInsertOrUpdate, "Add"); err != nil {
		return false, err
	}
	status, err := s.m.InsertOrUpdateIf(key, struct{}{}, trie.NeverUpdate[struct{}])
	if err != nil {
		return false, err
	}
	return status == trie.StatusInserted, nil
}

func (s *setImpl) Has(key []byte) (bool, error) {
	if err := s.require(trie.FeatureGet, "Has"); err != nil {
		return false, err
	}
	_, ok := s.m.Get(key)
	return ok, nil
}

func (s *setImpl) Remove(key []byte) (bool, error) {
	if err := s.require(trie.FeatureRemove, "Remove"); err != nil {
		return false, err
	}
	return s.m.Remove(key)
}

func (s *setImpl) Closest(probe []byte, includeKey, loopAround bool) ([]byte, bool, error) {
	if err := s.require(trie.FeatureClosest, "Closest"); err != nil {
		return nil, false, err
	}
	e, ok, err := s.m.GetOrClosest(probe, includeKey, loopAround)
	if err != nil || !ok {
		return nil, false, err
	}
	plog.Debugf("closest to %s is %s", keyspace.String(probe), keyspace.String(e.Key))
	return e.Key, true, nil
}

func (s *setImpl) ClosestByPrefix(probe []byte, includeKey bool) ([]byte, bool, error) {
	if err := s.require(trie.FeatureClosest, "ClosestByPrefix"); err != nil {
		return nil, false, err
	}
	e, ok, err := s.m.GetOrClosestByPrefix(probe, includeKey)
	if err != nil || !ok {
		return nil, false, err
	}
	return e.Key, true, nil
}

func (s *setImpl) Min() ([]byte, bool, error) {
	if err := s.require(trie.FeatureMinMax, "Min"); err != nil {
		return nil, false, err
	}
	e, ok := s.m.Min()
	return e.Key, ok, nil
}

func (s *setImpl) Max() ([]byte, bool, error) {
	if err := s.require(trie.FeatureMinMax, "Max"); err != nil {
		return nil, false, err
	}
	e, ok := s.m.Max()
	return e.Key, ok, nil
}

func (s *setImpl) Len() int {
	return s.m.Len()
}

func (s *setImpl) Clear() {
	s.m.Clear()
}

func (s *setImpl) GetInfo() trie.MapInfo {
	return s.m.GetInfo()
}
