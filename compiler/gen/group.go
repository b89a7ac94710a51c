package gen

import (
	"maps"
	"slices"
	"sort"

	"github.com/syssam/autogen/compiler/load"
)

// NewPropertyDescriptor returns the descriptor of a marked field.
func NewPropertyDescriptor(p *load.Property) *PropertyDescriptor {
	return &PropertyDescriptor{
		FieldName:     p.Field,
		FieldType:     p.Type,
		PropertyName:  p.PropertyName(),
		Documentation: p.Doc,
		Imports:       maps.Clone(p.Imports),
		Comparable:    p.Comparable,
	}
}

// GroupFragments merges fragments by (Namespace, TypeName). Properties keep
// discovery order; a field seen again through another fragment of the same
// type is kept once. Groups without properties are dropped and the rest are
// sorted by key.
func GroupFragments(frags []*load.Fragment) []*TypeGroup {
	var (
		groups = make(map[TypeKey]*TypeGroup)
		fields = make(map[TypeKey]map[string]bool)
	)
	for _, f := range frags {
		key := TypeKey{Namespace: f.Namespace, TypeName: f.TypeName}
		g, ok := groups[key]
		if !ok {
			g = &TypeGroup{
				Namespace:  f.Namespace,
				Package:    f.Package,
				Dir:        f.Dir,
				TypeName:   f.TypeName,
				TypeParams: slices.Clone(f.TypeParams),
			}
			groups[key] = g
			fields[key] = make(map[string]bool)
		}
		for _, p := range f.Properties {
			if fields[key][p.Field] {
				continue
			}
			fields[key][p.Field] = true
			g.Properties = append(g.Properties, NewPropertyDescriptor(p))
		}
	}
	out := make([]*TypeGroup, 0, len(groups))
	for _, g := range groups {
		if len(g.Properties) > 0 {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key().String() < out[j].Key().String()
	})
	return out
}
