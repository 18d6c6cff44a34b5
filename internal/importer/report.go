package importer

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Summary aggregates the reconciliation counts shown to the operator before
// the confirmation gate.
type Summary struct {
	TotalRows       int
	ExistingKeys    int
	StoreDuplicates int
	FileDuplicates  int
	Invalid         int
	ToInsert        int
}

func newSummary(existingKeys int, res Result) Summary {
	return Summary{
		TotalRows:       res.Total,
		ExistingKeys:    existingKeys,
		StoreDuplicates: len(res.StoreDuplicates),
		FileDuplicates:  len(res.FileDuplicates),
		Invalid:         len(res.Invalid),
		ToInsert:        len(res.Accepted),
	}
}

func renderSummary(s Summary) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("Bulk Import Summary")

	rows := []struct {
		label string
		count int
	}{
		{"Rows in spreadsheet", s.TotalRows},
		{"Activation keys already in store", s.ExistingKeys},
		{"Duplicates against store", s.StoreDuplicates},
		{"Duplicates inside file", s.FileDuplicates},
		{"Invalid rows", s.Invalid},
		{"New items to insert", s.ToInsert},
	}
	for _, r := range rows {
		tw.AppendRow(table.Row{r.label, strconv.Itoa(r.count)})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignRight},
	})

	return tw.Render()
}

// uniqueKeys collapses a partition to its distinct activation keys, sorted so
// console output and side files are stable run to run.
func uniqueKeys(skipped []Skipped) []string {
	set := map[string]struct{}{}
	for _, sk := range skipped {
		if sk.ActivationKey == "" {
			continue
		}
		set[sk.ActivationKey] = struct{}{}
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// writeKeyList writes one activation key per line. Nothing is written when the
// list is empty.
func writeKeyList(path string, keys []string) error {
	if path == "" || len(keys) == 0 {
		return nil
	}
	content := strings.Join(keys, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing key list %q: %w", path, err)
	}
	return nil
}
