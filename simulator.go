package disect

import (
	"context"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/DanielTakeshi/DiSECt/contact"
	"github.com/DanielTakeshi/DiSECt/cut"
	"github.com/DanielTakeshi/DiSECt/fem"
	"github.com/DanielTakeshi/DiSECt/knife"
	"github.com/DanielTakeshi/DiSECt/mesh"
)

const DEFAULT_WORKERS = 1

// Frame is one reported simulation state snapshot
type Frame struct {
	Index int
	Time  float64

	Positions  []mgl64.Vec3
	Velocities []mgl64.Vec3
	Tets       []mesh.Tet
}

// FrameSink receives per-frame snapshots; recording formats are out of
// scope, a sink decides what to do with them
type FrameSink interface {
	Frame(frame Frame) error
}

// Simulator drives the explicit substep loop: knife advance, cutting,
// parallel force accumulation, symplectic-Euler integration, pinned clamp.
type Simulator struct {
	cfg  Config
	mesh *mesh.Mesh

	knife  *knife.Knife
	cutter *cut.Engine

	resolver contact.Resolver

	forces    []mgl64.Vec3
	tetForces [][4]mgl64.Vec3
	clamped   []bool
	unstable  []bool

	// elements already logged as degenerate, to keep the log quiet while
	// the event stream still reports every clamp
	degenerateSeen map[int]bool

	workers int
	substep int
	frame   int
	time    float64

	Events Events
	Log    *slog.Logger
}

// NewSimulator prepares a simulation over an already-built mesh. The
// static pin mask is applied here; the mesh is mutated in place from then
// on.
func NewSimulator(cfg Config, m *mesh.Mesh) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	profile, err := knife.NewProfile(cfg.KnifeType, cfg.Blade)
	if err != nil {
		return nil, &ConfigError{Field: "knife_type", Reason: err.Error()}
	}

	var k *knife.Knife
	if len(cfg.KnifeMotion) > 0 {
		k, err = knife.NewKeyframed(profile, knife.Track{Frames: cfg.KnifeMotion})
		if err != nil {
			return nil, &ConfigError{Field: "knife_motion", Reason: err.Error()}
		}
	} else {
		k = knife.NewDropping(profile, cfg.InitialY, cfg.VelocityY)
	}

	cfg.StaticVertices.Apply(m)

	s := &Simulator{
		cfg:   cfg,
		mesh:  m,
		knife: k,
		resolver: contact.Resolver{
			GroundActive: cfg.GroundActive,
			Ground:       cfg.Ground,
			SDF:          cfg.SDF,
			SurfaceSDF:   cfg.SurfaceSDF,
		},
		degenerateSeen: make(map[int]bool),
		workers:        max(DEFAULT_WORKERS, cfg.Workers),
		Events:         NewEvents(),
		Log:            slog.Default(),
	}

	if cfg.Cutting.Active {
		s.cutter = cut.NewEngine(cut.Params{
			Interior:   cfg.CutSpring,
			Surface:    cfg.SurfaceCutSpring,
			Mode:       cfg.Cutting.Mode,
			MaxStretch: cfg.Cutting.MaxStretch,
		}, m)
	}

	if stable := fem.StableTimestep(m); cfg.SimDT > stable {
		s.Log.Warn("sim_dt exceeds the stable timestep estimate",
			"sim_dt", cfg.SimDT, "stable_dt", stable)
	}

	return s, nil
}

// AddObstacle registers a static rigid SDF collider
func (s *Simulator) AddObstacle(o contact.Obstacle) {
	s.resolver.Obstacles = append(s.resolver.Obstacles, o)
}

// Mesh returns the simulated body
func (s *Simulator) Mesh() *mesh.Mesh { return s.mesh }

// Knife returns the rigid cutting body
func (s *Simulator) Knife() *knife.Knife { return s.knife }

// Cutter returns the cutting engine, nil when cutting is inactive
func (s *Simulator) Cutter() *cut.Engine { return s.cutter }

// Time returns the accumulated simulation time
func (s *Simulator) Time() float64 { return s.time }

// Run advances the whole configured duration, reporting each frame to the
// sink. A nil sink just steps.
func (s *Simulator) Run(ctx context.Context, sink FrameSink) error {
	frames := s.cfg.Frames()
	for f := 0; f < frames; f++ {
		if err := s.Step(ctx); err != nil {
			return err
		}
		if sink != nil {
			if err := sink.Frame(s.Snapshot()); err != nil {
				return err
			}
		}
	}
	return nil
}

// Step advances one frame of sim_substeps substeps, then flushes events.
// Cancellation is checked between substeps.
func (s *Simulator) Step(ctx context.Context) error {
	for i := 0; i < s.cfg.SimSubsteps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := s.advanceSubstep(); err != nil {
			return err
		}
	}

	s.frame++
	s.Events.emit(FrameCompleteEvent{Frame: s.frame, Time: s.time})
	s.Events.flush()
	return nil
}

// Snapshot copies the current state into a frame record
func (s *Simulator) Snapshot() Frame {
	f := Frame{
		Index:      s.frame,
		Time:       s.time,
		Positions:  make([]mgl64.Vec3, len(s.mesh.Positions)),
		Velocities: make([]mgl64.Vec3, len(s.mesh.Velocities)),
		Tets:       make([]mesh.Tet, len(s.mesh.Tets)),
	}
	copy(f.Positions, s.mesh.Positions)
	copy(f.Velocities, s.mesh.Velocities)
	copy(f.Tets, s.mesh.Tets)
	return f
}

func (s *Simulator) advanceSubstep() error {
	dt := s.cfg.SimDT

	previous := s.knife.Pose
	s.knife.Advance(dt)

	if s.cutter != nil {
		report := s.cutter.Step(s.knife, previous, dt, s.workers)
		if report.SpringsCreated > 0 {
			s.Events.emit(CutSpringCreatedEvent{Substep: s.substep, Count: report.SpringsCreated})
		}
		if report.SpringsReleased > 0 {
			s.Events.emit(CutSpringReleasedEvent{Substep: s.substep, Count: report.SpringsReleased})
		}
	}

	s.accumulateForces()

	if err := s.integrate(dt); err != nil {
		return err
	}

	s.substep++
	s.time += dt
	return nil
}

// accumulateForces gathers gravity, contact, elastic, distance-spring and
// cut-spring forces. Per-particle and per-element passes fan out across
// the workers; scatter into the shared force array stays serial so the
// summation order is fixed.
func (s *Simulator) accumulateForces() {
	n := s.mesh.NodeCount()
	if len(s.forces) < n {
		s.forces = make([]mgl64.Vec3, n)
		s.unstable = make([]bool, n)
	}
	forces := s.forces[:n]

	resolver := s.contactResolver()
	task(s.workers, n, func(i int) {
		f := s.cfg.Gravity.Mul(s.mesh.Mass[i])
		f = f.Add(resolver.Force(s.mesh.Positions[i], s.mesh.Velocities[i],
			s.mesh.CutExposed[i], s.mesh.NoContact[i]))
		forces[i] = f
	})

	tn := s.mesh.TetCount()
	if len(s.tetForces) < tn {
		s.tetForces = make([][4]mgl64.Vec3, tn)
		s.clamped = make([]bool, tn)
	}

	task(s.workers, tn, func(t int) {
		tet := s.mesh.Tets[t]
		if !tet.Active {
			s.tetForces[t] = [4]mgl64.Vec3{}
			s.clamped[t] = false
			return
		}
		s.tetForces[t], s.clamped[t] = fem.TetForces(s.mesh.Positions, s.mesh.Velocities, tet)
	})

	for t := 0; t < tn; t++ {
		if s.clamped[t] {
			s.Events.emit(ElementDegenerateEvent{Substep: s.substep, Element: t})
			if !s.degenerateSeen[t] {
				s.degenerateSeen[t] = true
				s.Log.Warn("degenerate element clamped", "element", t, "substep", s.substep)
			}
		}
		for c, ni := range s.mesh.Tets[t].Nodes {
			forces[ni] = forces[ni].Add(s.tetForces[t][c])
		}
	}

	for _, spring := range s.mesh.Springs {
		f := fem.SpringForce(s.mesh.Positions, s.mesh.Velocities, spring)
		forces[spring.I] = forces[spring.I].Add(f)
		forces[spring.J] = forces[spring.J].Sub(f)
	}

	if s.cutter != nil {
		s.cutter.Accumulate(forces)
	}
}

// contactResolver appends the knife at its current pose to the static
// obstacles
func (s *Simulator) contactResolver() contact.Resolver {
	r := s.resolver
	r.Obstacles = make([]contact.Obstacle, 0, len(s.resolver.Obstacles)+1)
	r.Obstacles = append(r.Obstacles, s.resolver.Obstacles...)
	r.Obstacles = append(r.Obstacles, contact.Obstacle{
		Solid:           s.knife.Solid(),
		SurfaceVelocity: s.knife.SurfaceVelocity,
	})
	return r
}

// integrate applies the symplectic-Euler update with under-relaxation and
// viscous damping, then the pinned clamp. Isolated non-finite particles
// are reset and reported; pervasive instability is fatal.
func (s *Simulator) integrate(dt float64) error {
	n := s.mesh.NodeCount()
	forces := s.forces[:n]

	damp := math.Exp(-s.cfg.Damping * dt)
	relax := s.cfg.Relaxation

	task(s.workers, n, func(i int) {
		if s.mesh.Pinned[i] {
			s.mesh.Velocities[i] = mgl64.Vec3{}
			return
		}

		v := s.mesh.Velocities[i].Add(forces[i].Mul(s.mesh.InvMass[i] * dt * relax)).Mul(damp)
		if !finiteVec(v) {
			s.unstable[i] = true
			v = mgl64.Vec3{}
		}

		s.mesh.Velocities[i] = v
		s.mesh.Positions[i] = s.mesh.Positions[i].Add(v.Mul(dt))
	})

	count := 0
	for i := 0; i < n; i++ {
		if !s.unstable[i] {
			continue
		}
		s.unstable[i] = false
		count++
		s.Events.emit(ParticleUnstableEvent{Substep: s.substep, Particle: i})
	}

	if count > 0 {
		s.Log.Warn("non-finite particle velocities reset", "count", count, "substep", s.substep)
		if 2*count > n {
			return &InstabilityError{Substep: s.substep, Particles: count}
		}
	}

	return nil
}

func finiteVec(v mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if math.IsNaN(v[i]) || math.IsInf(v[i], 0) {
			return false
		}
	}
	return true
}
