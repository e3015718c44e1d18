package hako

import "github.com/rs/zerolog"

func componentsArray(reg *componentRegistry, ids []EcsTypeID) *zerolog.Array {
	arr := zerolog.Arr()
	for _, id := range ids {
		arr = arr.Dict(zerolog.Dict().
			Int("component_id", int(id)).
			Str("component_name", reg.name(id)))
	}
	return arr
}

func logArchetypeCreated(logger *zerolog.Logger, a *archetype, reg *componentRegistry) {
	ev := logger.Debug()
	if !ev.Enabled() {
		return
	}
	ev.Int("archetype_id", a.index).
		Array("components", componentsArray(reg, a.types)).
		Msg("archetype created")
}

func logComponentRegistered(logger *zerolog.Logger, id EcsTypeID, name string) {
	logger.Debug().
		Int("component_id", int(id)).
		Str("component_name", name).
		Msg("component registered")
}

func logSchedule(logger *zerolog.Logger, stages [][]string) {
	ev := logger.Debug()
	if !ev.Enabled() {
		return
	}
	arr := zerolog.Arr()
	for i, names := range stages {
		systems := zerolog.Arr()
		for _, name := range names {
			systems = systems.Str(name)
		}
		arr = arr.Dict(zerolog.Dict().Int("stage", i).Array("systems", systems))
	}
	ev.Int("total_stages", len(stages)).Array("stages", arr).Msg("schedule built")
}
