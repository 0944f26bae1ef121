package families

import (
	"encoding/json"
	"net/url"

	"github.com/typevault/typevault/pkg/query"
	"github.com/typevault/typevault/pkg/repository"
	"github.com/typevault/typevault/workflow"
)

var projection = query.
	NewProjectionMap("public", "families", "f").
	Project("id", "ID").
	Project("owner", "Owner").
	Project("name", "Name").
	Project("normalized_name", "NormalizedName").
	Project("foundry", "Foundry").
	Project("description", "Description").
	Project("classification", "Classification").
	Project("tags", "Tags").
	Project("analysis", "Analysis").
	Project("variants", "Variants").
	Project("analyzed_at", "AnalyzedAt").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field: "name",
}

// Filters contains optional filtering criteria for family queries.
// Nil fields are ignored. Unowned selects families with no owner, for
// catalog-wide scans.
type Filters struct {
	Owner          *string `json:"owner,omitempty"`
	Classification *string `json:"classification,omitempty"`
	Foundry        *string `json:"foundry,omitempty"`
	Unowned        bool    `json:"unowned,omitempty"`
	Analyzed       *bool   `json:"analyzed,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	b.
		WhereEquals("Owner", f.Owner).
		WhereEquals("Classification", f.Classification).
		WhereContains("Foundry", f.Foundry)

	if f.Unowned {
		b.WhereNullable("Owner", nil)
	}

	if f.Analyzed != nil {
		if *f.Analyzed {
			b.WhereNotNull("AnalyzedAt")
		} else {
			b.WhereNullable("AnalyzedAt", nil)
		}
	}

	return b
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if v := values.Get("owner"); v != "" {
		f.Owner = &v
	}

	if v := values.Get("classification"); v != "" {
		f.Classification = &v
	}

	if v := values.Get("foundry"); v != "" {
		f.Foundry = &v
	}

	if values.Get("unowned") == "true" {
		f.Unowned = true
	}

	if v := values.Get("analyzed"); v != "" {
		analyzed := v == "true"
		f.Analyzed = &analyzed
	}

	return f
}

func scanFamily(s repository.Scanner) (FontFamily, error) {
	var (
		f        FontFamily
		tags     []byte
		analysis []byte
		variants []byte
	)

	err := s.Scan(
		&f.ID,
		&f.Owner,
		&f.Name,
		&f.NormalizedName,
		&f.Foundry,
		&f.Description,
		&f.Classification,
		&tags,
		&analysis,
		&variants,
		&f.AnalyzedAt,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return f, err
	}

	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &f.Tags); err != nil {
			return f, err
		}
	}
	if f.Tags == nil {
		f.Tags = []string{}
	}

	if len(analysis) > 0 {
		var result workflow.AnalysisResult
		if err := json.Unmarshal(analysis, &result); err != nil {
			return f, err
		}
		f.Analysis = &result
	}

	if len(variants) > 0 {
		if err := json.Unmarshal(variants, &f.Variants); err != nil {
			return f, err
		}
	}
	if f.Variants == nil {
		f.Variants = []Variant{}
	}

	return f, nil
}
