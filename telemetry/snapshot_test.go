package telemetry

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/boids/components"
)

func TestNewAgentState(t *testing.T) {
	tests := []struct {
		name        string
		vel         r2.Vec
		wantSpeed   float64
		wantHeading float64
	}{
		{"east", r2.Vec{X: 450}, 450, 0},
		{"down screen", r2.Vec{Y: 300}, 300, 90},
		{"west", r2.Vec{X: -3, Y: 0}, 3, 180},
		{"3-4-5", r2.Vec{X: 3, Y: -4}, 5, -53.130102},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAgentState(7, components.KindBoid, r2.Vec{X: 1, Y: 2}, tt.vel, r2.Vec{X: 6, Y: 8}, 4)
			if math.Abs(a.Speed-tt.wantSpeed) > 1e-9 {
				t.Errorf("Speed = %v, want %v", a.Speed, tt.wantSpeed)
			}
			if math.Abs(a.Heading-tt.wantHeading) > 1e-5 {
				t.Errorf("Heading = %v, want %v", a.Heading, tt.wantHeading)
			}
			if a.Accel != 10 || a.KindName != "boid" || a.Neighbors != 4 {
				t.Errorf("state = %+v", a)
			}
		})
	}
}

func TestSnapshotSaveLoad(t *testing.T) {
	snapshot := &Snapshot{
		Version:     SnapshotVersion,
		RNGSeed:     12345,
		WorldWidth:  1920,
		WorldHeight: 1080,
		Tick:        1000,
		Agents: []AgentState{
			NewAgentState(1, components.KindBoid, r2.Vec{X: 100, Y: 200}, r2.Vec{X: 450, Y: -10}, r2.Vec{}, 6),
			NewAgentState(2, components.KindPredator, r2.Vec{X: 300, Y: 400}, r2.Vec{Y: 150}, r2.Vec{X: 20}, 1),
		},
		Bookmark: &Bookmark{Type: BookmarkFlockFormed, Tick: 1000, Description: "test bookmark"},
		Stats:    &FlockStats{WindowEndTick: 1000, Boids: 1, Predators: 1, Polarization: 0.92},
	}

	path, err := SaveSnapshot(snapshot, t.TempDir())
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.RNGSeed != snapshot.RNGSeed || loaded.Tick != snapshot.Tick {
		t.Errorf("header mismatch: got seed %d tick %d", loaded.RNGSeed, loaded.Tick)
	}
	if len(loaded.Agents) != 2 {
		t.Fatalf("agents = %d, want 2", len(loaded.Agents))
	}
	// Kind is not serialized directly; it comes back from the kind name.
	if loaded.Agents[1] != snapshot.Agents[1] {
		t.Errorf("agent mismatch: got %+v, want %+v", loaded.Agents[1], snapshot.Agents[1])
	}
	if boids, preds := loaded.Counts(); boids != 1 || preds != 1 {
		t.Errorf("Counts = %d/%d, want 1/1", boids, preds)
	}
	if loaded.Bookmark == nil || loaded.Bookmark.Type != BookmarkFlockFormed {
		t.Errorf("bookmark = %+v", loaded.Bookmark)
	}
	if loaded.Stats == nil || loaded.Stats.Polarization != 0.92 {
		t.Errorf("stats = %+v", loaded.Stats)
	}
}

func TestSnapshotFilename(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
		want string
	}{
		{"with bookmark", Snapshot{Tick: 5000, Bookmark: &Bookmark{Type: BookmarkFlockScattered}}, "tick_00005000_flock_scattered.json"},
		{"plain", Snapshot{Tick: 3000}, "tick_00003000.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tt.snap.Version = SnapshotVersion
			path, err := SaveSnapshot(&tt.snap, dir)
			if err != nil {
				t.Fatalf("SaveSnapshot failed: %v", err)
			}
			if want := filepath.Join(dir, tt.want); path != want {
				t.Errorf("path = %s, want %s", path, want)
			}
		})
	}
}

func TestLoadSnapshot_RejectsOtherVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	if err := os.WriteFile(path, []byte(`{"version": 1}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected version error")
	}
}
