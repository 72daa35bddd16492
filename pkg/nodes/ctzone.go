package nodes

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/cuemby/ovncontroller/pkg/engine"
	"github.com/cuemby/ovncontroller/pkg/model"
	"github.com/cuemby/ovncontroller/pkg/ovsdb"
	bolt "go.etcd.io/bbolt"
)

// CtZoneNodeName is this node's registered engine.Node name.
const CtZoneNodeName = "ct_zone"

var ctZoneBucket = []byte("ct_zones")

const (
	minCTZone = 1
	maxCTZone = 1<<16 - 1
)

// CtZoneStore persists zone assignments locally across restarts, backed by
// bbolt; it is the only place a restart recovers assignments from (spec.md
// §8 restart-stability law).
type CtZoneStore struct {
	db *bolt.DB
}

// OpenCtZoneStore opens (creating if necessary) the bbolt database at path.
func OpenCtZoneStore(path string) (*CtZoneStore, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("nodes: opening ct-zone store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(ctZoneBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("nodes: initializing ct-zone bucket: %w", err)
	}
	return &CtZoneStore{db: db}, nil
}

// Close closes the underlying database.
func (s *CtZoneStore) Close() error { return s.db.Close() }

// Load returns every persisted key -> zone assignment.
func (s *CtZoneStore) Load() (map[string]int32, error) {
	out := make(map[string]int32)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(ctZoneBucket)
		return b.ForEach(func(k, v []byte) error {
			out[string(k)] = int32(binary.BigEndian.Uint32(v))
			return nil
		})
	})
	return out, err
}

// Save persists key -> zone.
func (s *CtZoneStore) Save(key string, zone int32) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, uint32(zone))
		return tx.Bucket(ctZoneBucket).Put([]byte(key), buf)
	})
}

// Delete removes a persisted assignment.
func (s *CtZoneStore) Delete(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(ctZoneBucket).Delete([]byte(key))
	})
}

// CtZoneNode allocates 16-bit connection-tracking zone ids per local port
// (and per-datapath for SNAT) and, when Store is set, persists them in
// CtZoneStore. Zone ids are not written to or read from the virtual-switch
// bridge's external_ids. Every change in runtime data's local ports or
// datapaths is handled by a full recompute; a single port claim/release is
// not handled incrementally.
type CtZoneNode struct {
	RuntimeData *RuntimeDataNode
	Store       *CtZoneStore

	zones    map[string]int32
	used     map[int32]bool
	nextZone int32
}

func (n *CtZoneNode) Name() string { return CtZoneNodeName }

func (n *CtZoneNode) Flags() engine.Flags { return 0 }

func (n *CtZoneNode) Initialize(ctx context.Context) error {
	n.zones = make(map[string]int32)
	n.used = make(map[int32]bool)
	n.nextZone = minCTZone

	if n.Store != nil {
		loaded, err := n.Store.Load()
		if err != nil {
			return fmt.Errorf("nodes: loading ct-zone store: %w", err)
		}
		for key, zone := range loaded {
			n.zones[key] = zone
			n.used[zone] = true
		}
	}
	return nil
}

func (n *CtZoneNode) Handlers() map[string]engine.InputHandler {
	return map[string]engine.InputHandler{
		RuntimeDataNodeName: func(ctx context.Context, b *engine.Borrow, delta any) (engine.HandlerOutcome, error) {
			// Runtime data reports an update only when its local ports or
			// datapaths changed; every such change is handled by a full
			// recompute, which allocates and releases zones as needed.
			return engine.HandlerUnhandled, nil
		},
	}
}

func (n *CtZoneNode) Run(ctx context.Context, b *engine.Borrow) (bool, error) {
	changed := false
	for _, p := range n.RuntimeData.LocalPorts() {
		key := fmt.Sprintf("port-%s", p)
		if _, ok := n.zones[key]; !ok {
			if err := n.allocate(key); err != nil {
				return false, err
			}
			changed = true
		}
	}
	for _, dp := range n.RuntimeData.LocalDatapaths() {
		key := fmt.Sprintf("snat-%s", dp)
		if _, ok := n.zones[key]; !ok {
			if err := n.allocate(key); err != nil {
				return false, err
			}
			changed = true
		}
	}

	local := make(map[string]bool)
	for _, p := range n.RuntimeData.LocalPorts() {
		local[fmt.Sprintf("port-%s", p)] = true
	}
	for _, dp := range n.RuntimeData.LocalDatapaths() {
		local[fmt.Sprintf("snat-%s", dp)] = true
	}
	for key := range n.zones {
		if !local[key] {
			n.release(key)
			changed = true
		}
	}
	return changed, nil
}

func (n *CtZoneNode) allocate(key string) error {
	zone := n.nextFreeZone()
	n.zones[key] = zone
	n.used[zone] = true
	if n.Store != nil {
		if err := n.Store.Save(key, zone); err != nil {
			return fmt.Errorf("nodes: persisting ct-zone for %s: %w", key, err)
		}
	}
	return nil
}

func (n *CtZoneNode) release(key string) {
	zone, ok := n.zones[key]
	if !ok {
		return
	}
	delete(n.zones, key)
	delete(n.used, zone)
	if n.Store != nil {
		_ = n.Store.Delete(key)
	}
}

func (n *CtZoneNode) nextFreeZone() int32 {
	for z := n.nextZone; z <= maxCTZone; z++ {
		if !n.used[z] {
			n.nextZone = z + 1
			return z
		}
	}
	for z := int32(minCTZone); z < n.nextZone; z++ {
		if !n.used[z] {
			n.nextZone = z + 1
			return z
		}
	}
	return minCTZone // exhausted; minCTZone is handed out again while still in use
}

func (n *CtZoneNode) Delta() any { return nil }

func (n *CtZoneNode) ClearTracked() {}

func (n *CtZoneNode) Cleanup() {}

func (n *CtZoneNode) Validity() engine.Validity { return engine.Valid }

// Zone returns the allocated zone for key, if any.
func (n *CtZoneNode) Zone(key string) (int32, bool) {
	z, ok := n.zones[key]
	return z, ok
}

// Zones returns a copy of every current key -> zone assignment, used by the
// ct-zone-list unixctl command.
func (n *CtZoneNode) Zones() map[string]int32 {
	out := make(map[string]int32, len(n.zones))
	for k, v := range n.zones {
		out[k] = v
	}
	return out
}
