package launchsim

import "fmt"

// MaterialCategory groups fin stock by construction.
type MaterialCategory uint8

const (
	// CompositeMaterial covers laminates such as G10 and carbon fiber.
	CompositeMaterial MaterialCategory = iota + 1
	// MetalMaterial covers aluminum and similar alloys.
	MetalMaterial
	// WoodMaterial covers plywood and balsa stock.
	WoodMaterial
	// PlasticMaterial covers polycarbonate and printed parts.
	PlasticMaterial
)

func (c MaterialCategory) String() string {
	switch c {
	case CompositeMaterial:
		return "composite"
	case MetalMaterial:
		return "metal"
	case WoodMaterial:
		return "wood"
	case PlasticMaterial:
		return "plastic"
	default:
		panic("unknown material category")
	}
}

// Material is the structural description of fin stock.
type Material struct {
	Name          string
	ShearModulus  float64 // Pa
	YoungsModulus float64 // Pa
	Density       float64 // kg/m³
	PoissonRatio  float64
	Category      MaterialCategory
}

// Validate guards against a zero-stiffness material reaching the flutter
// formula.
func (m Material) Validate() error {
	if m.ShearModulus <= 0 || m.YoungsModulus <= 0 {
		return fmt.Errorf("material %s must have positive moduli", m.Name)
	}
	if m.Density <= 0 {
		return fmt.Errorf("material %s must have positive density", m.Name)
	}
	return nil
}

// Materials is the read-only built-in material table, keyed by name.
// It is constructed once at init and consumed by handle.
var Materials = map[string]Material{
	"G10":           {"G10", 4.1e9, 18.6e9, 1850, 0.12, CompositeMaterial},
	"aluminum-6061": {"aluminum-6061", 26.0e9, 68.9e9, 2700, 0.33, MetalMaterial},
	"birch-plywood": {"birch-plywood", 0.62e9, 12.0e9, 680, 0.30, WoodMaterial},
	"polycarbonate": {"polycarbonate", 0.8e9, 2.3e9, 1200, 0.37, PlasticMaterial},
	"carbon-fiber":  {"carbon-fiber", 5.0e9, 70.0e9, 1600, 0.10, CompositeMaterial},
}
