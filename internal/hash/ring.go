package hash

import (
	"encoding/binary"
	"slices"
	"strconv"

	"github.com/zeebo/xxh3"
)

// Ring implements a consistent hash ring with virtual nodes over numbered slots.
//
// Slots are the destination groups 0..n-1. The ring maps arbitrary keys to a
// slot so that the same key lands in the same slot for a given slot count and
// seed, and growing the slot count moves only a fraction of the keys.
type Ring struct {
	// nodes contains all virtual nodes on the ring, sorted by hash
	nodes []virtualNode

	// slots is the number of distinct slots on the ring
	slots int

	// seed for hash function (0 means unseeded)
	seed uint64
}

// virtualNode represents a virtual node on the hash ring.
type virtualNode struct {
	hash uint64 // Position on the ring
	slot int    // Slot owning this virtual node
}

// NewRing creates a new consistent hash ring.
//
// Parameters:
//   - slots: Number of slots to place on the ring (non-positive yields an empty ring)
//   - virtualNodesPerSlot: Number of virtual nodes per slot (higher = better distribution)
//   - seed: Seed for hash function (0 for unseeded, non-zero for a distinct layout)
//
// Returns:
//   - *Ring: Initialized hash ring
//
// Example:
//
//	ring := hash.NewRing(3, 150, 42)
//	slot := ring.GetSlot("佐藤")
func NewRing(slots int, virtualNodesPerSlot int, seed uint64) *Ring {
	if slots < 0 {
		slots = 0
	}
	if virtualNodesPerSlot < 1 {
		virtualNodesPerSlot = 1
	}

	ring := &Ring{
		nodes: make([]virtualNode, 0, slots*virtualNodesPerSlot),
		slots: slots,
		seed:  seed,
	}

	for i := range slots {
		ring.addSlot(i, virtualNodesPerSlot)
	}

	// Sort nodes by hash for binary search
	slices.SortFunc(ring.nodes, func(a, b virtualNode) int {
		if a.hash < b.hash {
			return -1
		}
		if a.hash > b.hash {
			return 1
		}

		return 0
	})

	return ring
}

// GetSlot finds the slot responsible for a key.
//
// Uses binary search to find the first virtual node whose hash is >= key hash.
// If no such node exists (key hash > all nodes), wraps around to first node.
//
// Parameters:
//   - key: Key to place (e.g., a person's name)
//
// Returns:
//   - int: Slot index, or -1 when the ring is empty
func (r *Ring) GetSlot(key string) int {
	if len(r.nodes) == 0 {
		return -1
	}

	return r.getSlotByHash(r.hash(key))
}

// Slots returns the number of slots on the ring.
func (r *Ring) Slots() int {
	return r.slots
}

// Size returns the total number of virtual nodes on the ring.
func (r *Ring) Size() int {
	return len(r.nodes)
}

// addSlot adds virtual nodes for a slot to the ring.
func (r *Ring) addSlot(slot int, virtualNodes int) {
	slotID := "group-" + strconv.Itoa(slot)
	for i := range virtualNodes {
		// Fold slot ID, then vnode index using previous hash as seed.
		h := r.hash(slotID)

		var ib [8]byte
		binary.LittleEndian.PutUint64(ib[:], uint64(i)) //nolint:gosec
		h = xxh3.HashSeed(ib[:], h)

		r.nodes = append(r.nodes, virtualNode{hash: h, slot: slot})
	}
}

// hash computes a 64-bit hash of the key using XXH3.
func (r *Ring) hash(key string) uint64 {
	if r.seed != 0 {
		return xxh3.HashStringSeed(key, r.seed)
	}

	return xxh3.HashString(key)
}

// getSlotByHash returns the slot for a given hash value using binary search over the ring.
func (r *Ring) getSlotByHash(target uint64) int {
	idx, found := slices.BinarySearchFunc(r.nodes, target, func(node virtualNode, t uint64) int {
		if node.hash < t {
			return -1
		}
		if node.hash > t {
			return 1
		}

		return 0
	})

	// If idx >= len(nodes), wrap around to first node
	if !found && idx >= len(r.nodes) {
		idx = 0
	}

	return r.nodes[idx].slot
}
