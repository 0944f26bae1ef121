// Package preview implements client-side provisional grouping of font files
// prior to upload. Grouping is best effort: the server recomputes hashes and
// family assignment authoritatively and may regroup differently.
package preview

import (
	"sort"

	"github.com/typevault/typevault/pkg/fontparse"
	"github.com/typevault/typevault/pkg/naming"
)

// FileRecord is one scanned font file. Metadata and Err are mutually
// exclusive: a record either parsed or carries its parse error.
type FileRecord struct {
	Filename    string              `json:"filename"`
	Size        int64               `json:"size"`
	QuickHash   string              `json:"quick_hash"`
	ContentHash string              `json:"content_hash"`
	Metadata    *fontparse.Metadata `json:"metadata,omitempty"`
	Err         error               `json:"-"`
}

// Conflict records two or more parsed files competing for the same
// (family, subfamily) slot within one batch.
type Conflict struct {
	Subfamily string   `json:"subfamily"`
	Filenames []string `json:"filenames"`
}

// ProvisionalFamily is a client-local grouping of files sharing a normalized
// family key. It exists only for the pre-upload preview and is superseded by
// the server's canonical family.
type ProvisionalFamily struct {
	Key         string        `json:"key"`
	DisplayName string        `json:"display_name"`
	Subfamilies []string      `json:"subfamilies"`
	Files       []*FileRecord `json:"files"`
	Conflicts   []Conflict    `json:"conflicts,omitempty"`
	TotalBytes  int64         `json:"total_bytes"`
	Formats     []string      `json:"formats"`
	Variable    bool          `json:"variable"`
}

// Result is the outcome of grouping one batch. Every input record lands in
// exactly one place: a family's Files or Failed.
type Result struct {
	Families       map[string]*ProvisionalFamily `json:"families"`
	Failed         []*FileRecord                 `json:"failed"`
	RulesetVersion string                        `json:"ruleset_version"`

	// StaleRuleset is set when the server advertises a different grouping
	// ruleset version; the preview must then be rendered with a mismatch
	// warning rather than trusted silently.
	StaleRuleset bool `json:"stale_ruleset"`
}

// Group partitions parsed-or-failed records into provisional families keyed
// by normalized family name. Files that failed parsing are excluded from
// grouping and surfaced in Failed. A conflict is recorded if and only if two
// parsed files share both the normalized family key and the subfamily label;
// the competing file is kept in the family rather than silently dropped.
func Group(records []*FileRecord) *Result {
	result := &Result{
		Families:       make(map[string]*ProvisionalFamily),
		Failed:         []*FileRecord{},
		RulesetVersion: naming.RulesetVersion,
	}

	slots := make(map[string]map[string][]string)

	for _, rec := range records {
		if rec.Err != nil || rec.Metadata == nil {
			result.Failed = append(result.Failed, rec)
			continue
		}

		key := naming.Normalize(rec.Metadata.Family)
		fam, ok := result.Families[key]
		if !ok {
			fam = &ProvisionalFamily{
				Key:         key,
				DisplayName: rec.Metadata.Family,
			}
			result.Families[key] = fam
			slots[key] = make(map[string][]string)
		}

		fam.Files = append(fam.Files, rec)
		fam.TotalBytes += rec.Size
		fam.Variable = fam.Variable || rec.Metadata.Variable
		addUnique(&fam.Formats, string(rec.Metadata.Format))

		sub := rec.Metadata.Subfamily
		slots[key][sub] = append(slots[key][sub], rec.Filename)
		addUnique(&fam.Subfamilies, sub)
	}

	for key, fam := range result.Families {
		for sub, names := range slots[key] {
			if len(names) > 1 {
				sort.Strings(names)
				fam.Conflicts = append(fam.Conflicts, Conflict{
					Subfamily: sub,
					Filenames: names,
				})
			}
		}
		sort.Slice(fam.Conflicts, func(i, j int) bool {
			return fam.Conflicts[i].Subfamily < fam.Conflicts[j].Subfamily
		})
		sort.Strings(fam.Subfamilies)
		sort.Strings(fam.Formats)
	}

	return result
}

func addUnique(list *[]string, v string) {
	for _, existing := range *list {
		if existing == v {
			return
		}
	}
	*list = append(*list, v)
}
