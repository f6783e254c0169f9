package gamedata

import (
	"math/rand"
)

// ElementRegistry indexes element definitions by ID.
type ElementRegistry struct {
	elements map[string]*ElementDef
	all      []ElementDef
}

// NewElementRegistry creates a registry from loaded element definitions.
func NewElementRegistry(elements []ElementDef) *ElementRegistry {
	registry := &ElementRegistry{
		elements: make(map[string]*ElementDef),
		all:      elements,
	}
	for i := range elements {
		registry.elements[elements[i].ID] = &elements[i]
	}
	return registry
}

// GetByID returns the element definition with the given ID, or nil if not found.
func (r *ElementRegistry) GetByID(id string) *ElementDef {
	return r.elements[id]
}

// GetMultiple returns element definitions for a list of IDs.
// Missing IDs are silently skipped.
func (r *ElementRegistry) GetMultiple(ids []string) []*ElementDef {
	result := make([]*ElementDef, 0, len(ids))
	for _, id := range ids {
		if element := r.elements[id]; element != nil {
			result = append(result, element)
		}
	}
	return result
}

// All returns all element definitions.
func (r *ElementRegistry) All() []ElementDef {
	return r.all
}

// Count returns the number of elements in the registry.
func (r *ElementRegistry) Count() int {
	return len(r.all)
}

// =============================================================================
// BiomeRegistry
// =============================================================================

// BiomeRegistry holds biome definitions and picks the next biome to visit.
type BiomeRegistry struct {
	biomes      []BiomeDef
	totalWeight int
}

// NewBiomeRegistry creates a registry from loaded biome definitions.
func NewBiomeRegistry(biomes []BiomeDef) *BiomeRegistry {
	totalWeight := 0
	for _, b := range biomes {
		totalWeight += b.SpawnWeight
	}
	return &BiomeRegistry{
		biomes:      biomes,
		totalWeight: totalWeight,
	}
}

// SpawnRandom selects a biome using weighted probability.
// Biomes with higher spawnWeight are more likely to be selected.
func (r *BiomeRegistry) SpawnRandom(rng *rand.Rand) *BiomeDef {
	if len(r.biomes) == 0 {
		return nil
	}
	if r.totalWeight <= 0 {
		return &r.biomes[rng.Intn(len(r.biomes))]
	}

	roll := rng.Intn(r.totalWeight)

	cumulative := 0
	for i := range r.biomes {
		cumulative += r.biomes[i].SpawnWeight
		if roll < cumulative {
			return &r.biomes[i]
		}
	}

	// Fallback (shouldn't happen)
	return &r.biomes[0]
}

// GetByID returns the biome definition with the given ID, or nil if not found.
func (r *BiomeRegistry) GetByID(id string) *BiomeDef {
	for i := range r.biomes {
		if r.biomes[i].ID == id {
			return &r.biomes[i]
		}
	}
	return nil
}

// All returns all biome definitions.
func (r *BiomeRegistry) All() []BiomeDef {
	return r.biomes
}

// Count returns the number of biomes in the registry.
func (r *BiomeRegistry) Count() int {
	return len(r.biomes)
}
