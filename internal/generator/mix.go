package generator

// MixResolver returns the ordered mix for a 1-based floor index.
type MixResolver interface {
	Resolve(floor int) ([]UnitMixEntry, error)
}

type specMixResolver struct {
	spec *GenerationSpec
}

func NewMixResolver(spec *GenerationSpec) MixResolver {
	return &specMixResolver{spec: spec}
}

// Resolve never substitutes a default: a floor without its own mix is a
// missing-configuration condition.
func (r *specMixResolver) Resolve(floor int) ([]UnitMixEntry, error) {
	if r.spec.SameMixForAllFloors {
		return r.spec.GlobalMix, nil
	}
	mix, ok := r.spec.PerFloorMix[floor]
	if !ok {
		return nil, &MissingConfigurationError{Floor: floor}
	}
	return mix, nil
}
