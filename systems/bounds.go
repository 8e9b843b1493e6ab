package systems

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/boids/config"
)

// BoundaryPolicy selects how agents are kept on screen.
type BoundaryPolicy uint8

const (
	// BoundaryTurn nudges velocity back toward the interior while inside the margin.
	BoundaryTurn BoundaryPolicy = iota
	// BoundaryWrap teleports agents to the opposite edge once they pass the padding.
	BoundaryWrap
)

// Bounds describes the world rectangle [0, Width] × [0, Height].
type Bounds struct {
	Width, Height float64
	Margin        float64
	Policy        BoundaryPolicy
	WrapPadding   float64
	ScaleByDT     bool // multiply the edge turn speed by dt
}

// BoundsFromConfig builds Bounds from the world section and derived world size.
func BoundsFromConfig(cfg *config.Config) Bounds {
	b := Bounds{
		Width:       cfg.Derived.WorldW,
		Height:      cfg.Derived.WorldH,
		Margin:      cfg.World.Margin,
		WrapPadding: cfg.World.WrapPadding,
		ScaleByDT:   cfg.World.ScaleEdgeTurnByDT,
	}
	if cfg.World.Boundary == config.BoundaryWrap {
		b.Policy = BoundaryWrap
	}
	return b
}

// Contain returns vel corrected by turnSpeed on each axis where pos lies
// within the margin of an edge (inclusive). Only the turn policy corrects.
func (b *Bounds) Contain(pos, vel r2.Vec, turnSpeed, dt float64) r2.Vec {
	if b.Policy != BoundaryTurn {
		return vel
	}
	if b.ScaleByDT {
		turnSpeed *= dt
	}

	if pos.X <= b.Margin {
		vel.X += turnSpeed
	} else if pos.X >= b.Width-b.Margin {
		vel.X -= turnSpeed
	}
	if pos.Y <= b.Margin {
		vel.Y += turnSpeed
	} else if pos.Y >= b.Height-b.Margin {
		vel.Y -= turnSpeed
	}
	return vel
}

// Wrap moves pos to the far side once it is more than WrapPadding outside the
// world. Only the wrap policy moves positions.
func (b *Bounds) Wrap(pos r2.Vec) r2.Vec {
	if b.Policy != BoundaryWrap {
		return pos
	}
	pad := b.WrapPadding

	if pos.X < -pad {
		pos.X = b.Width + pad
	} else if pos.X > b.Width+pad {
		pos.X = -pad
	}
	if pos.Y < -pad {
		pos.Y = b.Height + pad
	} else if pos.Y > b.Height+pad {
		pos.Y = -pad
	}
	return pos
}
