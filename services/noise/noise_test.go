package noise

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VoidMesh/noisemap/internal/testutil"
)

func TestNewTable_Golden(t *testing.T) {
	table := NewTable(42)

	assert.Equal(t, []uint8{168, 253, 235, 33, 138, 107, 132, 234}, table[:8])
	assert.Equal(t, uint8(168), table[TableSize])
	testutil.AssertGoldenBytes(t, "noise_table_seed_42", table[:])
}

func TestNewTable_Validity(t *testing.T) {
	seeds := []uint64{0, 1, 7, 42, 12345, math.MaxUint32, math.MaxUint64}

	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 64; i++ {
		seeds = append(seeds, rng.Uint64())
	}

	for _, seed := range seeds {
		table := NewTable(seed)
		require.True(t, table.Valid(), "table for seed %d is not a permutation", seed)
		assert.Equal(t, table[0], table[TableSize], "wrap entry for seed %d", seed)
	}
}

func TestNewTable_Determinism(t *testing.T) {
	for _, seed := range []uint64{0, 42, math.MaxUint64} {
		assert.Equal(t, *NewTable(seed), *NewTable(seed), "seed %d", seed)
	}
}

func TestNewTable_DifferentSeeds(t *testing.T) {
	assert.Equal(t, []uint8{86, 80, 89, 88, 26, 118, 110, 202}, NewTable(0)[:8])
	assert.Equal(t, []uint8{34, 123, 254, 179, 106, 28, 84, 231}, NewTable(math.MaxUint64)[:8])
	assert.NotEqual(t, *NewTable(1), *NewTable(2))
}

func TestTable_Valid_DetectsCorruption(t *testing.T) {
	table := NewTable(42)
	duplicate := *table
	duplicate[5] = duplicate[6]
	assert.False(t, duplicate.Valid(), "duplicate value must be rejected")

	badWrap := *table
	badWrap[TableSize] = badWrap[0] + 1
	assert.False(t, badWrap.Valid(), "mismatched wrap entry must be rejected")
}

func TestEvaluate_KnownValues(t *testing.T) {
	table := NewTable(42)

	tests := []struct {
		name     string
		x, y     float64
		expected float64
	}{
		{name: "cell centre cancels", x: 0.5, y: 0.5, expected: 0},
		{name: "positive coordinates", x: 1.25, y: 3.75, expected: 0.3481578826904297},
		{name: "negative coordinates", x: -0.3, y: -7.2, expected: 0.17363918720000004},
		{name: "mixed signs", x: 100.9, y: -250.1, expected: 0.10515065471999349},
		{name: "last cell", x: 255.5, y: 255.5, expected: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Evaluate(tt.x, tt.y, table), 1e-12)
		})
	}
}

func TestEvaluate_LatticePointsAreZero(t *testing.T) {
	table := NewTable(12345)

	for x := -3; x <= 3; x++ {
		for y := -3; y <= 3; y++ {
			assert.Equal(t, 0.0, math.Abs(Evaluate(float64(x), float64(y), table)), "lattice (%d, %d)", x, y)
		}
	}
}

func TestEvaluate_Continuity(t *testing.T) {
	table := NewTable(42)
	const eps = 1e-9

	boundaries := []struct{ x, y float64 }{
		{1, 0.37},
		{17, 4.81},
		{-3, -0.62},
		{255, 128.5},
		{256, 9.1},
	}

	for _, b := range boundaries {
		left := Evaluate(b.x-eps, b.y, table)
		right := Evaluate(b.x+eps, b.y, table)
		assert.InDelta(t, left, right, 1e-6, "x boundary at (%v, %v)", b.x, b.y)

		below := Evaluate(b.y, b.x-eps, table)
		above := Evaluate(b.y, b.x+eps, table)
		assert.InDelta(t, below, above, 1e-6, "y boundary at (%v, %v)", b.y, b.x)
	}
}

func TestEvaluate_Periodicity(t *testing.T) {
	table := NewTable(42)

	for _, p := range []struct{ x, y float64 }{{1.25, 3.75}, {0.5, 100.125}, {-7.75, 2.5}} {
		base := Evaluate(p.x, p.y, table)
		assert.Equal(t, base, Evaluate(p.x+TableSize, p.y, table))
		assert.Equal(t, base, Evaluate(p.x, p.y-TableSize, table))
	}
}

func TestEvaluate_RangeSanity(t *testing.T) {
	table := NewTable(2024)
	rng := rand.New(rand.NewPCG(3, 4))

	for i := 0; i < 100000; i++ {
		x := (rng.Float64() - 0.5) * 2000
		y := (rng.Float64() - 0.5) * 2000
		v := Evaluate(x, y, table)

		require.False(t, math.IsNaN(v), "NaN at (%v, %v)", x, y)
		require.GreaterOrEqual(t, v, -1.0, "value below -1 at (%v, %v)", x, y)
		require.LessOrEqual(t, v, 1.0, "value above 1 at (%v, %v)", x, y)
	}
}

func TestEvaluate_EdgeCases(t *testing.T) {
	table := NewTable(42)

	tests := []struct {
		name string
		x, y float64
	}{
		{name: "very large coordinates", x: 1e15, y: 2e15},
		{name: "very large negative coordinates", x: -1e15, y: -2e15},
		{name: "beyond int range", x: 1e300, y: -1e300},
		{name: "smallest subnormal", x: math.SmallestNonzeroFloat64, y: -math.SmallestNonzeroFloat64},
		{name: "just below zero", x: -1e-17, y: -1e-17},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v float64
			require.NotPanics(t, func() { v = Evaluate(tt.x, tt.y, table) })
			assert.False(t, math.IsNaN(v), "result should not be NaN")
			assert.False(t, math.IsInf(v, 0), "result should not be infinite")
		})
	}
}

func TestCell_WrapsNegative(t *testing.T) {
	assert.Equal(t, 255, cell(-1))
	assert.Equal(t, 0, cell(-256))
	assert.Equal(t, 1, cell(257))
	assert.Equal(t, 0, cell(0))
}

func TestFade_Endpoints(t *testing.T) {
	assert.Equal(t, 0.0, fade(0))
	assert.Equal(t, 1.0, fade(1))
	assert.Equal(t, 0.5, fade(0.5))
}

func TestAccumulate_SingleOctaveMatchesEvaluate(t *testing.T) {
	table := NewTable(42)

	for _, p := range []struct{ x, y float64 }{{0, 0}, {10, 20}, {513, 697}, {-40, 12}} {
		assert.Equal(t, Evaluate(p.x*BaseFrequency, p.y*BaseFrequency, table), Accumulate(p.x, p.y, 1, table))
	}
	assert.InDelta(t, -0.04919298405500001, Accumulate(10, 20, 1, table), 1e-15)
}

func TestAccumulate_KnownValues(t *testing.T) {
	table := NewTable(42)

	assert.InDelta(t, -0.05456964035045495, Accumulate(513, 697, 4, table), 1e-12)
	assert.InDelta(t, 0.49372552404754416, Accumulate(-40, 12, 3, table), 1e-12)
}

func TestAccumulate_ZeroAndNegativeOctaves(t *testing.T) {
	table := NewTable(42)

	assert.Equal(t, 0.0, Accumulate(123, 456, 0, table))
	assert.Equal(t, 0.0, Accumulate(123, 456, -3, table))
}

func TestAccumulate_OctaveSum(t *testing.T) {
	table := NewTable(7)
	x, y := 321.0, 54.0

	expected := 0.0
	amplitude, frequency := 1.0, 0.005
	for i := 0; i < 6; i++ {
		expected += amplitude * Evaluate(x*frequency, y*frequency, table)
		amplitude /= 2
		frequency *= 2
	}

	assert.InDelta(t, expected, Accumulate(x, y, 6, table), 1e-12)
}

func TestNewGenerator(t *testing.T) {
	tests := []struct {
		name    string
		seed    uint64
		octaves int
	}{
		{name: "zero seed", seed: 0, octaves: 1},
		{name: "typical seed", seed: 12345, octaves: 8},
		{name: "max uint64 seed", seed: math.MaxUint64, octaves: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var g GeneratorInterface = NewGenerator(tt.seed, tt.octaves)
			require.NotNil(t, g)
			assert.Equal(t, tt.seed, g.Seed())
			assert.Equal(t, tt.octaves, g.Octaves())
		})
	}
}

func TestGenerator_MatchesPackageFunctions(t *testing.T) {
	g := NewGenerator(42, 5)
	table := NewTable(42)

	assert.Equal(t, *table, *g.Table())
	assert.Equal(t, Evaluate(3.3, 4.4, table), g.Noise2D(3.3, 4.4))
	assert.Equal(t, Accumulate(300, 400, 5, table), g.Value(300, 400))
}

func BenchmarkEvaluate(b *testing.B) {
	table := NewTable(12345)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x := float64(i%1000) * 0.37
		Evaluate(x, x*0.5, table)
	}
}

func BenchmarkAccumulate8(b *testing.B) {
	table := NewTable(12345)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Accumulate(float64(i%1024), float64(i/1024%1024), 8, table)
	}
}

func BenchmarkNewTable(b *testing.B) {
	for i := 0; i < b.N; i++ {
		NewTable(uint64(i))
	}
}
