// Package fem implements the constitutive model of the deformable body:
// Lame parameter conversion and St.Venant-Kirchhoff force assembly over
// tetrahedral elements.
package fem

import "fmt"

// Material bundles the elasticity constants of the deformable body
type Material struct {
	Young   float64
	Poisson float64
	Density float64
	Damping float64
}

// Lame converts Young's modulus and Poisson ratio into the (mu, lambda)
// pair used by the constitutive law
func Lame(young, poisson float64) (mu, lambda float64) {
	mu = young / (2.0 * (1.0 + poisson))
	lambda = young * poisson / ((1.0 + poisson) * (1.0 - 2.0*poisson))
	return mu, lambda
}

// Validate rejects constants outside the physical range. A Poisson ratio
// of 0.5 (incompressible) makes lambda diverge and is rejected too.
func (m Material) Validate() error {
	if m.Young <= 0 {
		return fmt.Errorf("young modulus must be positive, got %v", m.Young)
	}
	if m.Poisson < 0 || m.Poisson >= 0.5 {
		return fmt.Errorf("poisson ratio must be in [0, 0.5), got %v", m.Poisson)
	}
	if m.Density <= 0 {
		return fmt.Errorf("density must be positive, got %v", m.Density)
	}
	if m.Damping < 0 {
		return fmt.Errorf("damping must be non-negative, got %v", m.Damping)
	}
	return nil
}

// Lame returns the derived Lame parameters
func (m Material) Lame() (mu, lambda float64) {
	return Lame(m.Young, m.Poisson)
}
