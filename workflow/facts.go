package workflow

import (
	"sort"
	"strings"

	"github.com/typevault/typevault/pkg/fontparse"
	"github.com/typevault/typevault/pkg/tunables"
)

// Well-known variable axis tags mapped to their roles. Anything else is a
// custom axis.
var axisRoles = map[string]string{
	"wght": "weight",
	"wdth": "width",
	"opsz": "optical-size",
	"ital": "italic",
	"slnt": "slant",
	"GRAD": "grade",
}

// Engine profiles derived from table presence.
const (
	EngineVariable       = "variable"
	EngineTrueTypeHinted = "truetype-hinted"
	EngineCFF            = "cff"
	EngineTrueType       = "truetype"
)

// Optical-size buckets derived from the opsz default point size.
const (
	OpticalCaption = "caption"
	OpticalText    = "text"
	OpticalSubhead = "subhead"
	OpticalDisplay = "display"
)

// DeriveFacts produces the foundational facts record from parsed metadata.
// It is rule-based, never calls a model, and never fails: absent inputs
// simply omit the corresponding fields.
func DeriveFacts(md *fontparse.Metadata, optical tunables.Optical) *FoundationalFacts {
	facts := &FoundationalFacts{}
	if md == nil {
		return facts
	}

	facts.FeatureTags = normalizeFeatureTags(md.FeatureTags)
	facts.AxisRoles = deriveAxisRoles(md.Axes)
	facts.ColorFormats = append([]string(nil), md.ColorTables...)
	facts.EngineProfile = deriveEngineProfile(md)
	facts.OpticalBucket = deriveOpticalBucket(md.Axes, optical)

	return facts
}

func normalizeFeatureTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.ToUpper(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		seen[tag] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for tag := range seen {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

func deriveAxisRoles(axes []fontparse.Axis) map[string]string {
	if len(axes) == 0 {
		return nil
	}

	roles := make(map[string]string, len(axes))
	for _, axis := range axes {
		if role, ok := axisRoles[axis.Tag]; ok {
			roles[axis.Tag] = role
		} else {
			roles[axis.Tag] = "custom"
		}
	}
	return roles
}

func deriveEngineProfile(md *fontparse.Metadata) string {
	switch {
	case md.Variable:
		return EngineVariable
	case md.HasCFF:
		return EngineCFF
	case md.HasHinting:
		return EngineTrueTypeHinted
	default:
		return EngineTrueType
	}
}

// deriveOpticalBucket buckets the opsz axis default against the configured
// point thresholds. Fonts without an opsz axis get no bucket.
func deriveOpticalBucket(axes []fontparse.Axis, optical tunables.Optical) string {
	for _, axis := range axes {
		if axis.Tag != "opsz" {
			continue
		}

		switch size := axis.Default; {
		case size < optical.CaptionMax:
			return OpticalCaption
		case size < optical.TextMax:
			return OpticalText
		case size < optical.SubheadMax:
			return OpticalSubhead
		default:
			return OpticalDisplay
		}
	}
	return ""
}
