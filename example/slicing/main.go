package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/go-gl/mathgl/mgl64"

	disect "github.com/DanielTakeshi/DiSECt"
	"github.com/DanielTakeshi/DiSECt/geom"
	"github.com/DanielTakeshi/DiSECt/mesh"
)

// progressSink prints a diagnostics line every few frames
type progressSink struct {
	sim   *disect.Simulator
	every int
}

func (p *progressSink) Frame(f disect.Frame) error {
	if f.Index%p.every != 0 {
		return nil
	}

	d := p.sim.Diagnostics()
	fmt.Printf("frame %4d  t=%.3fs  knife_y=%+.4f  springs=%d  max_speed=%.4f\n",
		f.Index, f.Time, p.sim.Knife().Pose.Position.Y(), d.LiveCutSprings, d.MaxSpeed)
	return nil
}

func main() {
	cfg := disect.DefaultConfig()
	cfg.SimDT = 1e-4
	cfg.SimSubsteps = 100
	cfg.SimDuration = 0.7
	cfg.Workers = 4
	cfg.Gravity = mgl64.Vec3{}
	cfg.GroundActive = false

	// a two-layer block straddling the blade's x=0 cutting plane, bottom
	// layer pinned
	cfg.InitialY = 0.02
	cfg.VelocityY = -0.05
	cfg.Grid = disect.GridParams{Dim: [3]int{4, 2, 4}, Cell: [3]float64{0.01, 0.01, 0.01}}
	cfg.Geometry.Position = mgl64.Vec3{-0.015, -0.01, -0.02}
	cfg.StaticVertices = mesh.StaticRegion{
		Include: []geom.AABB{{
			Min: mgl64.Vec3{-1, -0.011, -1},
			Max: mgl64.Vec3{1, -0.009, 1},
		}},
	}

	m, err := disect.BuildMesh(cfg, cfg.GridSource())
	if err != nil {
		log.Fatal(err)
	}

	sim, err := disect.NewSimulator(cfg, m)
	if err != nil {
		log.Fatal(err)
	}

	sim.Events.Subscribe(disect.CUT_SPRING_CREATED, func(e disect.Event) {
		ev := e.(disect.CutSpringCreatedEvent)
		fmt.Printf("  cut: %d spring(s) installed at substep %d\n", ev.Count, ev.Substep)
	})
	sim.Events.Subscribe(disect.CUT_SPRING_RELEASED, func(e disect.Event) {
		ev := e.(disect.CutSpringReleasedEvent)
		fmt.Printf("  cut: %d spring(s) released at substep %d\n", ev.Count, ev.Substep)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("slicing %d particles, %d elements over %d frames\n",
		m.NodeCount(), m.TetCount(), cfg.Frames())

	if err := sim.Run(ctx, &progressSink{sim: sim, every: 50}); err != nil {
		log.Fatal(err)
	}

	d := sim.Diagnostics()
	fmt.Printf("done: %d particles, %d elements, total mass %.6f kg\n",
		sim.Mesh().NodeCount(), sim.Mesh().TetCount(), d.TotalMass)
}
