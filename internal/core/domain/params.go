package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Params holds classifier hyperparameters by name.
// Values are float64, int, bool or string; TOML and JSON decoders may also
// produce int64, which the getters accept.
type Params map[string]any

// Float returns a numeric parameter, or def if missing or non-numeric.
func (p Params) Float(key string, def float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return def
	}
}

// Int returns an integer parameter, or def if missing or non-numeric.
func (p Params) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

// String returns a string parameter, or def if missing.
func (p Params) String(key string, def string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return def
}

// Bool returns a boolean parameter, or def if missing.
func (p Params) Bool(key string, def bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return def
}

// Merge returns a copy of p with every key of other applied on top.
func (p Params) Merge(other Params) Params {
	out := make(Params, len(p)+len(other))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Format renders the params as "a=1, b=x" in key order.
func (p Params) Format() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + formatParamValue(p[k])
	}
	return strings.Join(parts, ", ")
}

func formatParamValue(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// ParamAxis is one named dimension of a grid.
type ParamAxis struct {
	Name   string
	Values []any
}

// ParamGrid is a discrete Cartesian product of parameter values.
type ParamGrid []ParamAxis

// Size returns the number of combinations.
func (g ParamGrid) Size() int {
	if len(g) == 0 {
		return 0
	}
	n := 1
	for _, axis := range g {
		n *= len(axis.Values)
	}
	return n
}

// Combinations enumerates every parameter combination.
// Axes are visited in name order and the last axis varies fastest,
// so enumeration order is stable regardless of how the grid was built.
func (g ParamGrid) Combinations() []Params {
	axes := make(ParamGrid, len(g))
	copy(axes, g)
	sort.SliceStable(axes, func(i, j int) bool { return axes[i].Name < axes[j].Name })

	size := axes.Size()
	if size == 0 {
		return nil
	}

	combos := make([]Params, 0, size)
	counters := make([]int, len(axes))
	for {
		combo := make(Params, len(axes))
		for i, axis := range axes {
			combo[axis.Name] = axis.Values[counters[i]]
		}
		combos = append(combos, combo)

		// Odometer increment from the last axis
		i := len(axes) - 1
		for ; i >= 0; i-- {
			counters[i]++
			if counters[i] < len(axes[i].Values) {
				break
			}
			counters[i] = 0
		}
		if i < 0 {
			return combos
		}
	}
}

// GridFromMap builds a grid from a name → values mapping.
func GridFromMap(m map[string][]any) ParamGrid {
	grid := make(ParamGrid, 0, len(m))
	for name, values := range m {
		grid = append(grid, ParamAxis{Name: name, Values: values})
	}
	sort.Slice(grid, func(i, j int) bool { return grid[i].Name < grid[j].Name })
	return grid
}
