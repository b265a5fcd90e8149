package world

// Biome describes terrain generation parameters for a biome.
type Biome struct {
	ID              byte // Minecraft biome ID
	Name            string
	SurfaceBlock    uint16 // block state (blockID << 4 | meta)
	FillerBlock     uint16 // block below surface
	BaseHeight      int    // base terrain height in blocks
	HeightVariation float64
	TreeDensity     float64 // 0.0 = none, higher = more trees
	BoulderDensity  float64 // 0.0 = none, chance per column
	HasSnow         bool
}

// Block states the biome table is built from.
const (
	surfaceGrass = 2 << 4
	surfaceSand  = 12 << 4
	surfaceSnow  = 80 << 4
	fillerDirt   = 3 << 4
	fillerStone  = 1 << 4
	fillerSandst = 24 << 4
)

// Predefined biomes.
var (
	BiomeOcean = &Biome{
		ID: 0, Name: "Ocean",
		SurfaceBlock: surfaceSand, FillerBlock: surfaceSand,
		BaseHeight: 38, HeightVariation: 8,
	}
	BiomePlains = &Biome{
		ID: 1, Name: "Plains",
		SurfaceBlock: surfaceGrass, FillerBlock: fillerDirt,
		BaseHeight: 66, HeightVariation: 12,
		TreeDensity: 0.006, BoulderDensity: 0.03,
	}
	BiomeDesert = &Biome{
		ID: 2, Name: "Desert",
		SurfaceBlock: surfaceSand, FillerBlock: fillerSandst,
		BaseHeight: 64, HeightVariation: 10,
		BoulderDensity: 0.02,
	}
	BiomeExtremeHills = &Biome{
		ID: 3, Name: "Extreme Hills",
		SurfaceBlock: surfaceGrass, FillerBlock: fillerStone,
		BaseHeight: 72, HeightVariation: 50,
		TreeDensity: 0.015, BoulderDensity: 0.08,
	}
	BiomeForest = &Biome{
		ID: 4, Name: "Forest",
		SurfaceBlock: surfaceGrass, FillerBlock: fillerDirt,
		BaseHeight: 68, HeightVariation: 14,
		TreeDensity: 0.05, BoulderDensity: 0.04,
	}
	BiomeJungle = &Biome{
		ID: 21, Name: "Jungle",
		SurfaceBlock: surfaceGrass, FillerBlock: fillerDirt,
		BaseHeight: 70, HeightVariation: 20,
		TreeDensity: 0.12, BoulderDensity: 0.02,
	}
	BiomeDarkForest = &Biome{
		ID: 29, Name: "Dark Forest",
		SurfaceBlock: surfaceGrass, FillerBlock: fillerDirt,
		BaseHeight: 68, HeightVariation: 10,
		TreeDensity: 0.25, BoulderDensity: 0.02,
	}
	BiomeSnowyTundra = &Biome{
		ID: 12, Name: "Snowy Tundra",
		SurfaceBlock: surfaceSnow, FillerBlock: fillerDirt,
		BaseHeight: 66, HeightVariation: 8,
		TreeDensity: 0.004, BoulderDensity: 0.02,
		HasSnow: true,
	}
)

// allBiomes is an ordered list used for selection lookups.
var allBiomes = []*Biome{
	BiomeOcean,
	BiomePlains,
	BiomeDesert,
	BiomeExtremeHills,
	BiomeForest,
	BiomeJungle,
	BiomeDarkForest,
	BiomeSnowyTundra,
}

// climateRule maps a temperature/rainfall box (values in 0..1, max bound
// exclusive except the final catch-alls) to a biome. Rules are checked in
// order; the first hit wins.
type climateRule struct {
	tempMax float64 // exclusive upper temperature bound, 2 = no bound
	rainMin float64 // inclusive lower rainfall bound
	rainMax float64 // exclusive upper rainfall bound, 2 = no bound
	biome   *Biome
}

var climateRules = []climateRule{
	// Cold: everything freezes.
	{0.25, 0, 2, BiomeSnowyTundra},

	// Cool: wetter means denser forest.
	{0.45, 0.7, 2, BiomeDarkForest},
	{0.45, 0.4, 0.7, BiomeForest},
	{0.45, 0, 0.4, BiomePlains},

	// Temperate.
	{0.75, 0.8, 2, BiomeJungle},
	{0.75, 0.5, 0.8, BiomeDarkForest},
	{0.75, 0.3, 0.5, BiomeForest},
	{0.75, 0.2, 0.3, BiomePlains},
	{0.75, 0, 0.2, BiomeExtremeHills},

	// Hot: dry land bakes to desert.
	{2, 0.7, 2, BiomeJungle},
	{2, 0.3, 0.7, BiomePlains},
	{2, 0, 0.3, BiomeDesert},
}

// BiomeAt selects a biome for a world block position using temperature and
// rainfall noise. The noise is sampled at a low frequency so biomes form
// large regions.
func BiomeAt(tempNoise, rainNoise *Perlin, worldX, worldZ int) *Biome {
	const scale = 0.003
	bx := float64(worldX) * scale
	bz := float64(worldZ) * scale

	// Map both climate axes from -1..1 to 0..1, clamped: octave noise can
	// overshoot its nominal range slightly.
	temp := clamp01((tempNoise.OctaveNoise2D(bx, bz, 4, 2.0, 0.5) + 1) / 2)
	rain := clamp01((rainNoise.OctaveNoise2D(bx+500, bz+500, 4, 2.0, 0.5) + 1) / 2)

	for _, rule := range climateRules {
		if temp < rule.tempMax && rain >= rule.rainMin && rain < rule.rainMax {
			return rule.biome
		}
	}
	return BiomePlains
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v >= 1 {
		return 0.999999
	}
	return v
}
