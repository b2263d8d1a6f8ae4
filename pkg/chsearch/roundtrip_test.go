package chsearch

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/azybler/chrouter/pkg/ch"
	"github.com/azybler/chrouter/pkg/overlay"
)

// TestSerializedOverlayAnswersIdentically contracts the eleven-node
// fixture, round-trips the overlay through the binary format, and checks
// that every pairwise query agrees between the in-memory and reloaded
// hierarchies.
func TestSerializedOverlayAnswersIdentically(t *testing.T) {
	g, ids := buildComplexGraph()
	order := labelsToNodes("BEIKDGCJHFA", ids)
	og, _ := ch.ContractWithOrder(g, order, ch.DefaultParams())

	path := filepath.Join(t.TempDir(), "overlay.bin")
	if err := overlay.WriteBinary(path, og); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}
	loaded, err := overlay.ReadBinary(path)
	if err != nil {
		t.Fatalf("ReadBinary: %v", err)
	}

	mem := NewSearcher(og)
	disk := NewSearcher(loaded)

	n := uint32(og.NumNodes())
	for s := uint32(0); s < n; s++ {
		for d := uint32(0); d < n; d++ {
			w1, p1, ok1 := mem.Search(s, d)
			w2, p2, ok2 := disk.Search(s, d)
			if ok1 != ok2 || w1 != w2 {
				t.Fatalf("%d->%d: in-memory (%d,%v) != reloaded (%d,%v)", s, d, w1, ok1, w2, ok2)
			}
			if !reflect.DeepEqual(p1, p2) {
				t.Fatalf("%d->%d: paths differ: %v vs %v", s, d, p1, p2)
			}
		}
	}
}
