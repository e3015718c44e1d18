package hako

import (
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

// ArchetypeStats describes one archetype.
type ArchetypeStats struct {
	Components []string `json:"components"`
	Index      int      `json:"index"`
	Entities   int      `json:"entities"`
}

// Stats is a snapshot of a World's size.
type Stats struct {
	Archetypes     []ArchetypeStats `json:"archetypes"`
	Components     []string         `json:"components"`
	World          WorldID          `json:"world_id"`
	Entities       int              `json:"entities"`
	FreeIDs        int              `json:"free_ids"`
	LiveQueries    int              `json:"live_queries"`
	NumArchetypes  int              `json:"num_archetypes"`
	NumResources   int              `json:"num_resources"`
	ComponentTypes int              `json:"component_types"`
}

// Stats returns a snapshot of w's entity, archetype and component counts.
func (w *World) Stats() Stats {
	s := Stats{
		World:          w.id,
		Entities:       w.entities.live,
		FreeIDs:        len(w.entities.freeIDs),
		LiveQueries:    int(w.liveQueries.Load()),
		NumArchetypes:  len(w.archetypes.archetypes),
		NumResources:   w.resources.Len(),
		ComponentTypes: w.components.len(),
		Components:     make([]string, w.components.len()),
		Archetypes:     make([]ArchetypeStats, 0, len(w.archetypes.archetypes)),
	}
	for i := range s.Components {
		s.Components[i] = w.components.name(EcsTypeID(i))
	}
	for _, a := range w.archetypes.archetypes {
		names := make([]string, len(a.types))
		for i, id := range a.types {
			names[i] = w.components.name(id)
		}
		s.Archetypes = append(s.Archetypes, ArchetypeStats{
			Index:      a.index,
			Entities:   len(a.entities),
			Components: names,
		})
	}
	return s
}

// JSON encodes s.
func (s Stats) JSON() ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, eris.Wrap(err, "failed to encode world stats")
	}
	return b, nil
}
