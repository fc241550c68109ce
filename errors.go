package disect

import "fmt"

// ConfigError reports a missing or out-of-range configuration field
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
}

// MeshError reports a fatal failure while importing or finalizing the
// deformable body
type MeshError struct {
	Stage string
	Err   error
}

func (e *MeshError) Error() string {
	return fmt.Sprintf("mesh %s: %v", e.Stage, e.Err)
}

func (e *MeshError) Unwrap() error { return e.Err }

// InstabilityError is raised when the majority of particles reach a
// non-finite state in one substep. Isolated blow-ups are clamped and
// reported as events instead; pervasive instability aborts the run. The
// substep index identifies the failure for reproduction.
type InstabilityError struct {
	Substep   int
	Particles int
}

func (e *InstabilityError) Error() string {
	return fmt.Sprintf("numerical instability at substep %d: %d particles non-finite", e.Substep, e.Particles)
}
