package registry

import (
	"fmt"
	"strconv"
)

var errNoMediaPiped = fmt.Errorf("media is none")

// numberProperty reads a float64-valued node property, falling back to def
// when the property is absent (a node placed but never edited keeps its
// declared default, matching how original_source's properties map is
// populated from TypedInput defaults at placement time).
func numberProperty(properties map[string]any, name string, def float64) (float64, error) {
	raw, ok := properties[name]
	if !ok {
		return def, nil
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("property %q is not a number", name)
	}
}

// formatFloat renders a property value the way a GStreamer element property
// string expects: no trailing zeros, no scientific notation for the ranges
// these properties use.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
