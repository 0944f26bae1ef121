package fontparse

import (
	"encoding/binary"
	"fmt"
	"sort"
)

const (
	sfntVersionTrueType  = 0x00010000
	sfntVersionAppleTrue = 0x74727565 // 'true'
	sfntVersionOpenType  = 0x4F54544F // 'OTTO'
	sfntVersionTTC       = 0x74746366 // 'ttcf'
	sfntVersionWOFF      = 0x774F4646 // 'wOFF'
	sfntVersionWOFF2     = 0x774F4632 // 'wOF2'
)

func sniffFormat(data []byte) (Format, error) {
	if len(data) < 12 {
		return "", ErrTooShort
	}

	switch binary.BigEndian.Uint32(data) {
	case sfntVersionTrueType, sfntVersionAppleTrue:
		return FormatTrueType, nil
	case sfntVersionOpenType:
		return FormatOpenType, nil
	case sfntVersionTTC:
		return FormatCollection, nil
	case sfntVersionWOFF:
		return FormatWOFF, nil
	case sfntVersionWOFF2:
		return FormatWOFF2, nil
	default:
		return "", ErrUnknownFormat
	}
}

// tableDirectory maps table tags to their raw byte slices. For collections
// only the first font's directory is read, matching sfnt.Collection.Font(0).
func tableDirectory(data []byte) (map[string][]byte, error) {
	base := uint32(0)
	if binary.BigEndian.Uint32(data) == sfntVersionTTC {
		if len(data) < 16 {
			return nil, ErrTooShort
		}
		base = binary.BigEndian.Uint32(data[12:])
		if int(base)+12 > len(data) {
			return nil, fmt.Errorf("collection offset out of range")
		}
	}

	numTables := int(binary.BigEndian.Uint16(data[base+4:]))
	dirEnd := int(base) + 12 + numTables*16
	if dirEnd > len(data) {
		return nil, fmt.Errorf("table directory truncated")
	}

	tables := make(map[string][]byte, numTables)
	for i := range numTables {
		entry := data[int(base)+12+i*16:]
		tag := string(entry[:4])
		offset := binary.BigEndian.Uint32(entry[8:])
		length := binary.BigEndian.Uint32(entry[12:])

		end := uint64(offset) + uint64(length)
		if end > uint64(len(data)) {
			return nil, fmt.Errorf("table %q out of range", tag)
		}
		tables[tag] = data[offset:end]
	}

	return tables, nil
}

func readOS2(tables map[string][]byte, md *Metadata) {
	os2, ok := tables["OS/2"]
	if !ok || len(os2) < 6 {
		return
	}
	md.WeightClass = int(binary.BigEndian.Uint16(os2[4:]))
}

func readAxes(tables map[string][]byte, md *Metadata) {
	fvar, ok := tables["fvar"]
	if !ok || len(fvar) < 16 {
		return
	}

	axesOffset := int(binary.BigEndian.Uint16(fvar[4:]))
	axisCount := int(binary.BigEndian.Uint16(fvar[8:]))
	axisSize := int(binary.BigEndian.Uint16(fvar[10:]))
	if axisSize < 20 {
		return
	}

	for i := range axisCount {
		rec := axesOffset + i*axisSize
		if rec+20 > len(fvar) {
			return
		}
		md.Axes = append(md.Axes, Axis{
			Tag:     string(fvar[rec : rec+4]),
			Min:     fixedToFloat(fvar[rec+4:]),
			Default: fixedToFloat(fvar[rec+8:]),
			Max:     fixedToFloat(fvar[rec+12:]),
		})
	}

	md.Variable = len(md.Axes) > 0
}

// readFeatures collects OpenType feature tags from the GSUB and GPOS
// feature lists. Tags are deduplicated and sorted.
func readFeatures(tables map[string][]byte, md *Metadata) {
	seen := make(map[string]struct{})

	for _, tag := range []string{"GSUB", "GPOS"} {
		layout, ok := tables[tag]
		if !ok || len(layout) < 8 {
			continue
		}

		featureListOffset := int(binary.BigEndian.Uint16(layout[6:]))
		if featureListOffset == 0 || featureListOffset+2 > len(layout) {
			continue
		}

		list := layout[featureListOffset:]
		count := int(binary.BigEndian.Uint16(list))
		for i := range count {
			rec := 2 + i*6
			if rec+6 > len(list) {
				break
			}
			seen[string(list[rec:rec+4])] = struct{}{}
		}
	}

	if len(seen) == 0 {
		return
	}

	md.FeatureTags = make([]string, 0, len(seen))
	for tag := range seen {
		md.FeatureTags = append(md.FeatureTags, tag)
	}
	sort.Strings(md.FeatureTags)
}

func fixedToFloat(b []byte) float64 {
	return float64(int32(binary.BigEndian.Uint32(b))) / 65536.0
}
