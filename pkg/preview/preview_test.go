package preview_test

import (
	"errors"
	"testing"

	"github.com/typevault/typevault/pkg/fontparse"
	"github.com/typevault/typevault/pkg/preview"
)

func parsed(filename, family, subfamily string, size int64) *preview.FileRecord {
	return &preview.FileRecord{
		Filename:    filename,
		Size:        size,
		QuickHash:   "qh-" + filename,
		ContentHash: "ch-" + filename,
		Metadata: &fontparse.Metadata{
			Family:    family,
			Subfamily: subfamily,
			Format:    fontparse.FormatTrueType,
		},
	}
}

func failed(filename string) *preview.FileRecord {
	return &preview.FileRecord{
		Filename: filename,
		Err:      errors.New("not a font"),
	}
}

func TestGroupByNormalizedFamily(t *testing.T) {
	records := []*preview.FileRecord{
		parsed("inter-regular.ttf", "Inter", "Regular", 100),
		parsed("inter-bold.ttf", "INTER", "Bold", 200),
		parsed("plex.ttf", "IBM Plex Sans", "Regular", 300),
	}

	result := preview.Group(records)

	if len(result.Families) != 2 {
		t.Fatalf("families = %d, want 2", len(result.Families))
	}

	inter, ok := result.Families["inter"]
	if !ok {
		t.Fatal("missing family key inter")
	}
	if len(inter.Files) != 2 {
		t.Errorf("inter files = %d, want 2", len(inter.Files))
	}
	if inter.TotalBytes != 300 {
		t.Errorf("inter total bytes = %d, want 300", inter.TotalBytes)
	}
	if inter.DisplayName != "Inter" {
		t.Errorf("display name = %q, want Inter (first seen)", inter.DisplayName)
	}

	if _, ok := result.Families["ibm plex sans"]; !ok {
		t.Error("missing family key ibm plex sans")
	}
}

func TestGroupNoFileLost(t *testing.T) {
	records := []*preview.FileRecord{
		parsed("a.ttf", "Alpha", "Regular", 1),
		parsed("b.ttf", "Beta", "Regular", 1),
		failed("broken.bin"),
		parsed("c.ttf", "Alpha", "Bold", 1),
		failed("other.bin"),
	}

	result := preview.Group(records)

	grouped := 0
	for _, fam := range result.Families {
		grouped += len(fam.Files)
	}
	if grouped+len(result.Failed) != len(records) {
		t.Errorf("grouped %d + failed %d != input %d", grouped, len(result.Failed), len(records))
	}
	if len(result.Failed) != 2 {
		t.Errorf("failed = %d, want 2", len(result.Failed))
	}
}

func TestGroupConflicts(t *testing.T) {
	t.Run("same family same subfamily conflicts", func(t *testing.T) {
		result := preview.Group([]*preview.FileRecord{
			parsed("one.ttf", "Inter", "Bold", 1),
			parsed("two.ttf", "Inter", "Bold", 1),
		})

		fam := result.Families["inter"]
		if len(fam.Conflicts) != 1 {
			t.Fatalf("conflicts = %d, want 1", len(fam.Conflicts))
		}
		conflict := fam.Conflicts[0]
		if conflict.Subfamily != "Bold" {
			t.Errorf("conflict subfamily = %q, want Bold", conflict.Subfamily)
		}
		if len(conflict.Filenames) != 2 {
			t.Errorf("conflict filenames = %v, want both files", conflict.Filenames)
		}
		// the competing file stays in the family rather than being dropped
		if len(fam.Files) != 2 {
			t.Errorf("files = %d, want 2", len(fam.Files))
		}
	})

	t.Run("same family different subfamilies no conflict", func(t *testing.T) {
		result := preview.Group([]*preview.FileRecord{
			parsed("one.ttf", "Inter", "Regular", 1),
			parsed("two.ttf", "Inter", "Bold", 1),
		})

		if n := len(result.Families["inter"].Conflicts); n != 0 {
			t.Errorf("conflicts = %d, want 0", n)
		}
	})

	t.Run("same subfamily different families no conflict", func(t *testing.T) {
		result := preview.Group([]*preview.FileRecord{
			parsed("one.ttf", "Inter", "Bold", 1),
			parsed("two.ttf", "Lato", "Bold", 1),
		})

		for key, fam := range result.Families {
			if len(fam.Conflicts) != 0 {
				t.Errorf("family %s conflicts = %d, want 0", key, len(fam.Conflicts))
			}
		}
	})
}

func TestGroupAggregates(t *testing.T) {
	records := []*preview.FileRecord{
		parsed("reg.ttf", "Recursive", "Regular", 10),
		parsed("var.ttf", "Recursive", "Italic", 20),
	}
	records[1].Metadata.Variable = true
	records[1].Metadata.Format = fontparse.FormatOpenType

	fam := preview.Group(records).Families["recursive"]

	if !fam.Variable {
		t.Error("Variable = false, want true when any file is variable")
	}
	if len(fam.Formats) != 2 {
		t.Errorf("formats = %v, want two distinct formats", fam.Formats)
	}
	if len(fam.Subfamilies) != 2 {
		t.Errorf("subfamilies = %v, want two", fam.Subfamilies)
	}
}
