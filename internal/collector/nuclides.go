package collector

import (
	"cmp"
	"slices"
	"sync"

	"github.com/dvp2015/xpypact/internal/inventory"
)

// nuclideSet is the concurrency-safe nuclide dictionary of a collection,
// keyed by ZAI. The first info seen for a ZAI is kept.
type nuclideSet struct {
	mu    sync.Mutex
	infos map[uint32]inventory.NuclideInfo
}

func newNuclideSet() *nuclideSet {
	return &nuclideSet{infos: make(map[uint32]inventory.NuclideInfo)}
}

func (s *nuclideSet) update(infos []inventory.NuclideInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range infos {
		if _, ok := s.infos[n.ZAI]; !ok {
			s.infos[n.ZAI] = n
		}
	}
}

// snapshot returns the entries sorted by ZAI.
func (s *nuclideSet) snapshot() []inventory.NuclideInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]inventory.NuclideInfo, 0, len(s.infos))
	for _, n := range s.infos {
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b inventory.NuclideInfo) int {
		return cmp.Compare(a.ZAI, b.ZAI)
	})
	return out
}

func (s *nuclideSet) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.infos)
}
