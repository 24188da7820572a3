package storage

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/the-maldridge/quack/pkg/types"
)

const buildPrefix = "build/"

// NewHistory keeps build records in s.
func NewHistory(s Storage) *History {
	x := History{s: s}
	return &x
}

func buildKey(base string) []byte {
	return []byte(buildPrefix + base)
}

// Record stores r as the latest build of its package base.
func (h *History) Record(r types.BuildRecord) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return h.s.Put(buildKey(r.Base), b)
}

// Last returns the latest build of base, or nil if it was never
// built.
func (h *History) Last(base string) (*types.BuildRecord, error) {
	b, err := h.s.Get(buildKey(base))
	if err != nil || b == nil {
		return nil, err
	}
	r := new(types.BuildRecord)
	if err := json.Unmarshal(b, r); err != nil {
		return nil, err
	}
	return r, nil
}

// All returns the latest build of every base, ordered by base.
func (h *History) All() ([]types.BuildRecord, error) {
	keys, err := h.s.Keys([]byte(buildPrefix))
	if err != nil {
		return nil, err
	}
	out := make([]types.BuildRecord, 0, len(keys))
	for _, k := range keys {
		r, err := h.Last(strings.TrimPrefix(string(k), buildPrefix))
		if err != nil {
			return nil, err
		}
		if r != nil {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Base < out[j].Base })
	return out, nil
}

// Forget drops the record of base.
func (h *History) Forget(base string) error {
	return h.s.Del(buildKey(base))
}

// Close closes the underlying store.
func (h *History) Close() error {
	return h.s.Close()
}
