package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/typevault/typevault/pkg/preview"
)

func newPreviewCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "preview <file>...",
		Short: "Group font files into provisional families without uploading",
		Long: strings.TrimSpace(`
Hashes and parses the given font files locally and prints the provisional
family grouping the server is likely to produce. The grouping is advisory:
the server recomputes hashes and family assignment authoritatively.
`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := readSources(args)
			if err != nil {
				return err
			}

			records, err := preview.Scan(cmd.Context(), sources, window, nil)
			if err != nil {
				return err
			}

			result := preview.Group(records)
			checkRuleset(result)

			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
			}

			renderPreview(cmd, result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the grouping as JSON")
	return cmd
}

func readSources(paths []string) ([]preview.Source, error) {
	sources := make([]preview.Source, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		sources = append(sources, preview.Source{Name: path, Data: data})
	}
	return sources, nil
}

// checkRuleset compares the local grouping ruleset against the server's.
// An unreachable server is not an error; the preview is still useful offline.
func checkRuleset(result *preview.Result) {
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(serverURL + "/api/meta")
	if err != nil {
		return
	}
	defer resp.Body.Close()

	var meta struct {
		RulesetVersion string `json:"ruleset_version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return
	}

	if meta.RulesetVersion != "" && meta.RulesetVersion != result.RulesetVersion {
		result.StaleRuleset = true
	}
}

func renderPreview(cmd *cobra.Command, result *preview.Result) {
	out := cmd.OutOrStdout()

	if result.StaleRuleset {
		fmt.Fprintln(cmd.ErrOrStderr(),
			"warning: server uses a different grouping ruleset; the server may regroup these files")
	}

	keys := make([]string, 0, len(result.Families))
	for key := range result.Families {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fam := result.Families[key]
		fmt.Fprintf(out, "%s (%d files, %d bytes)\n",
			fam.DisplayName, len(fam.Files), fam.TotalBytes)
		fmt.Fprintf(out, "  formats: %s\n", strings.Join(fam.Formats, ", "))
		if fam.Variable {
			fmt.Fprintln(out, "  variable: yes")
		}
		for _, file := range fam.Files {
			fmt.Fprintf(out, "  %s  %s\n", file.Metadata.Subfamily, file.Filename)
		}
		for _, conflict := range fam.Conflicts {
			fmt.Fprintf(out, "  conflict on %q: %s\n",
				conflict.Subfamily, strings.Join(conflict.Filenames, ", "))
		}
	}

	for _, failed := range result.Failed {
		fmt.Fprintf(out, "failed: %s: %v\n", failed.Filename, failed.Err)
	}
}
