// Package fontparse extracts family, style, and axis metadata from raw font
// bytes. Name and glyph data come from x/image/font/sfnt; tables the sfnt
// package does not expose (OS/2, fvar, GSUB, GPOS, color tables) are read
// directly from the table directory.
package fontparse

import (
	"fmt"
	"sort"

	"golang.org/x/image/font/sfnt"
)

// Format identifies the container format of a font file.
type Format string

// Recognized font container formats.
const (
	FormatTrueType   Format = "ttf"
	FormatOpenType   Format = "otf"
	FormatCollection Format = "ttc"
	FormatWOFF       Format = "woff"
	FormatWOFF2      Format = "woff2"
)

// Axis describes one variable-font axis with its design-space range.
type Axis struct {
	Tag     string  `json:"tag"`
	Min     float64 `json:"min"`
	Default float64 `json:"default"`
	Max     float64 `json:"max"`
}

// Metadata is the structured record produced from a successfully parsed font.
type Metadata struct {
	Family      string   `json:"family"`
	Subfamily   string   `json:"subfamily"`
	WeightClass int      `json:"weight_class"`
	Format      Format   `json:"format"`
	Variable    bool     `json:"variable"`
	Axes        []Axis   `json:"axes,omitempty"`
	GlyphCount  int      `json:"glyph_count"`
	FeatureTags []string `json:"feature_tags,omitempty"`
	ColorTables []string `json:"color_tables,omitempty"`
	HasCFF      bool     `json:"has_cff"`
	HasHinting  bool     `json:"has_hinting"`
}

// Parse extracts metadata from raw font bytes. WOFF and WOFF2 containers are
// recognized but not unpacked; they return ErrCompressedContainer so callers
// can surface a per-file parse error without failing the batch.
func Parse(data []byte) (*Metadata, error) {
	format, err := sniffFormat(data)
	if err != nil {
		return nil, err
	}

	if format == FormatWOFF || format == FormatWOFF2 {
		return nil, fmt.Errorf("%w: %s", ErrCompressedContainer, format)
	}

	f, err := sfnt.Parse(data)
	if err != nil {
		if format == FormatCollection {
			c, cerr := sfnt.ParseCollection(data)
			if cerr != nil {
				return nil, fmt.Errorf("%w: %w", ErrCorruptFont, cerr)
			}
			f, err = c.Font(0)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrCorruptFont, err)
			}
		} else {
			return nil, fmt.Errorf("%w: %w", ErrCorruptFont, err)
		}
	}

	md := &Metadata{
		Format:     format,
		GlyphCount: f.NumGlyphs(),
	}

	if err := readNames(f, md); err != nil {
		return nil, err
	}

	tables, err := tableDirectory(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptFont, err)
	}

	readOS2(tables, md)
	readAxes(tables, md)
	readFeatures(tables, md)
	readColorTables(tables, md)

	_, md.HasCFF = tables["CFF "]
	if !md.HasCFF {
		_, md.HasCFF = tables["CFF2"]
	}
	_, hasFpgm := tables["fpgm"]
	_, hasPrep := tables["prep"]
	md.HasHinting = hasFpgm || hasPrep

	return md, nil
}

func readNames(f *sfnt.Font, md *Metadata) error {
	family, err := f.Name(nil, sfnt.NameIDTypographicFamily)
	if err != nil {
		family, err = f.Name(nil, sfnt.NameIDFamily)
		if err != nil {
			return fmt.Errorf("%w: missing family name", ErrCorruptFont)
		}
	}
	md.Family = family

	sub, err := f.Name(nil, sfnt.NameIDTypographicSubfamily)
	if err != nil {
		sub, err = f.Name(nil, sfnt.NameIDSubfamily)
		if err != nil {
			sub = "Regular"
		}
	}
	md.Subfamily = sub

	return nil
}

func readColorTables(tables map[string][]byte, md *Metadata) {
	for _, tag := range []string{"COLR", "CBDT", "sbix", "SVG "} {
		if _, ok := tables[tag]; ok {
			md.ColorTables = append(md.ColorTables, tag)
		}
	}
	sort.Strings(md.ColorTables)
}
