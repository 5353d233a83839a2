// Package layout adapts force-simulation parameters to graph size and
// runs the simulation that produces node positions.
package layout

// SimulationConfig is an immutable parameter set for one simulation
// run, selected once per render from the node count and never mutated
// mid-flight.
type SimulationConfig struct {
	LinkDistance   float64 `json:"link_distance"`
	LinkStrength   float64 `json:"link_strength"`
	ChargeStrength float64 `json:"charge_strength"`
	DistanceMin    float64 `json:"distance_min"`
	DistanceMax    float64 `json:"distance_max"`
	CollideRadius  float64 `json:"collide_radius"`
	AlphaDecay     float64 `json:"alpha_decay"`
	VelocityDecay  float64 `json:"velocity_decay"`

	// DegreeWeighted selects the profile where charge and link
	// distance scale with node degree, spreading hubs apart.
	DegreeWeighted bool `json:"degree_weighted,omitempty"`
}

// Node-count breakpoints for parameter selection.
const (
	breakTiny   = 100
	breakSmall  = 500
	breakMedium = 1000
	breakLarge  = 5000
)

// ConfigureFor picks simulation parameters for a node count. Link
// distance/strength, collision radius, and repulsion magnitude all
// shrink as the count grows, trading visual spread for stability.
// From the medium band up, both decay rates rise so the simulation
// settles in fewer ticks; a converged-but-approximate picture beats
// an accurate one that never stops moving.
func ConfigureFor(nodeCount int) SimulationConfig {
	switch {
	case nodeCount < breakTiny:
		return SimulationConfig{
			LinkDistance:   120,
			LinkStrength:   0.9,
			ChargeStrength: -400,
			DistanceMin:    1,
			DistanceMax:    1200,
			CollideRadius:  40,
			AlphaDecay:     0.0228,
			VelocityDecay:  0.25,
		}
	case nodeCount < breakSmall:
		return SimulationConfig{
			LinkDistance:   90,
			LinkStrength:   0.7,
			ChargeStrength: -300,
			DistanceMin:    1,
			DistanceMax:    900,
			CollideRadius:  28,
			AlphaDecay:     0.0228,
			VelocityDecay:  0.25,
		}
	case nodeCount < breakMedium:
		return SimulationConfig{
			LinkDistance:   60,
			LinkStrength:   0.5,
			ChargeStrength: -200,
			DistanceMin:    1,
			DistanceMax:    600,
			CollideRadius:  18,
			AlphaDecay:     0.028,
			VelocityDecay:  0.3,
		}
	case nodeCount < breakLarge:
		return SimulationConfig{
			LinkDistance:   35,
			LinkStrength:   0.35,
			ChargeStrength: -120,
			DistanceMin:    1,
			DistanceMax:    400,
			CollideRadius:  10,
			AlphaDecay:     0.05,
			VelocityDecay:  0.4,
		}
	default:
		return SimulationConfig{
			LinkDistance:   20,
			LinkStrength:   0.2,
			ChargeStrength: -60,
			DistanceMin:    1,
			DistanceMax:    250,
			CollideRadius:  6,
			AlphaDecay:     0.08,
			VelocityDecay:  0.5,
		}
	}
}

// ConfigureDegreeWeightedFor returns the degree-weighted profile: the
// same band parameters with per-node charge and per-link distance
// scaled by degree, which pulls dense hub clusters apart. It is a
// distinct, explicitly selected profile, not a fallback.
func ConfigureDegreeWeightedFor(nodeCount int) SimulationConfig {
	cfg := ConfigureFor(nodeCount)
	cfg.DegreeWeighted = true
	return cfg
}
