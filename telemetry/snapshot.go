package telemetry

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/boids/components"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 2

// Snapshot is a diagnostic dump of the flock, written when a bookmark fires
// so the moment can be inspected offline.
type Snapshot struct {
	Version int   `json:"version"`
	RNGSeed int64 `json:"rng_seed"`
	Tick    int32 `json:"tick"`

	WorldWidth  float64 `json:"world_width"`
	WorldHeight float64 `json:"world_height"`

	Bookmark *Bookmark   `json:"bookmark,omitempty"`
	Stats    *FlockStats `json:"stats,omitempty"` // window the bookmark fired on

	Agents []AgentState `json:"agents"`
}

// AgentState is one agent as of the snapshot tick.
type AgentState struct {
	ID        uint32          `json:"id"`
	Kind      components.Kind `json:"-"`
	KindName  string          `json:"kind"`
	X         float64         `json:"x"`
	Y         float64         `json:"y"`
	VelX      float64         `json:"vel_x"`
	VelY      float64         `json:"vel_y"`
	Speed     float64         `json:"speed"`
	Heading   float64         `json:"heading_deg"` // 0 = +x, clockwise with y down
	Accel     float64         `json:"accel"`       // magnitude of the capped steering sum
	Neighbors int32           `json:"neighbors"`
}

// NewAgentState fills the derived fields from an agent's kinematics.
func NewAgentState(id uint32, kind components.Kind, pos, vel, accel r2.Vec, neighbors int32) AgentState {
	return AgentState{
		ID:        id,
		Kind:      kind,
		KindName:  kind.String(),
		X:         pos.X,
		Y:         pos.Y,
		VelX:      vel.X,
		VelY:      vel.Y,
		Speed:     r2.Norm(vel),
		Heading:   math.Atan2(vel.Y, vel.X) * 180 / math.Pi,
		Accel:     r2.Norm(accel),
		Neighbors: neighbors,
	}
}

// Counts returns the number of boids and predators in the snapshot.
func (s *Snapshot) Counts() (boids, predators int) {
	for _, a := range s.Agents {
		if a.Kind == components.KindPredator {
			predators++
		} else {
			boids++
		}
	}
	return boids, predators
}

// SaveSnapshot writes s as indented JSON to dir and returns the file path.
// Files are named tick_<tick>[_<bookmark>].json.
func SaveSnapshot(s *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("tick_%08d", s.Tick)
	if s.Bookmark != nil {
		name += "_" + string(s.Bookmark.Type)
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot written by SaveSnapshot.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", s.Version, SnapshotVersion)
	}
	for i := range s.Agents {
		a := &s.Agents[i]
		if a.KindName == components.KindPredator.String() {
			a.Kind = components.KindPredator
		} else {
			a.Kind = components.KindBoid
		}
	}
	return &s, nil
}
