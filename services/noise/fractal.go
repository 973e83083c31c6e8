package noise

// Octave constants. They set the macro feature size and the detail falloff of
// rendered terrain; changing any of them changes every image.
const (
	BaseFrequency = 0.005
	BaseAmplitude = 1.0
	Lacunarity    = 2.0
	Persistence   = 0.5
)

// Accumulate sums octaves layers of gradient noise (fractal Brownian motion).
// Amplitudes are not renormalised, so the result can leave [-1, 1] for
// octaves > 1. octaves <= 0 yields 0.
func Accumulate(x, y float64, octaves int, t *Table) float64 {
	sum := 0.0
	amplitude := BaseAmplitude
	frequency := BaseFrequency

	for range max(octaves, 0) {
		n := Evaluate(x*frequency, y*frequency, t)
		sum += float64(amplitude * n)

		amplitude *= Persistence
		frequency *= Lacunarity
	}

	return sum
}

// GeneratorInterface defines the noise operations the raster and texture
// services depend on.
type GeneratorInterface interface {
	Noise2D(x, y float64) float64
	Value(x, y float64) float64
	Seed() uint64
	Octaves() int
}

// Generator binds a permutation table to an octave count.
type Generator struct {
	table   *Table
	seed    uint64
	octaves int
}

// NewGenerator builds the permutation table for seed once; the returned
// Generator is read-only and safe for concurrent use.
func NewGenerator(seed uint64, octaves int) *Generator {
	return &Generator{
		table:   NewTable(seed),
		seed:    seed,
		octaves: octaves,
	}
}

// Noise2D returns a single octave of gradient noise at (x, y).
func (g *Generator) Noise2D(x, y float64) float64 {
	return Evaluate(x, y, g.table)
}

// Value returns the fractal sum at pixel coordinate (x, y).
func (g *Generator) Value(x, y float64) float64 {
	return Accumulate(x, y, g.octaves, g.table)
}

// Seed returns the seed the table was built from.
func (g *Generator) Seed() uint64 {
	return g.seed
}

// Octaves returns the configured octave count.
func (g *Generator) Octaves() int {
	return g.octaves
}

// Table returns the generator's permutation table.
func (g *Generator) Table() *Table {
	return g.table
}
