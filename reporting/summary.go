package reporting

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ethereum-optimism/infra/op-licenses/types"
)

const digestDisplayLen = 12

// SummaryTable renders a table listing where each package's license came from.
func SummaryTable(set *types.LicenseSet, runID string) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetTitle("License Collection Summary (run %s)", runID)

	t.AppendHeader(table.Row{"Package", "Licensed By", "Source", "Digest"})

	for _, r := range set.Records() {
		licensedBy := r.LicensedBy
		source := r.Source
		if r.Seeded {
			licensedBy = "-"
			source = "policy"
		} else if !r.Inherited() {
			licensedBy = "="
		}
		t.AppendRow(table.Row{r.Package, licensedBy, source, shortDigest(r.Digest())})
	}

	t.AppendFooter(table.Row{
		fmt.Sprintf("%d packages", set.Len()),
		"",
		fmt.Sprintf("%d distinct licenses", set.DistinctLicenses()),
		"",
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
	})

	return t.Render() + "\n"
}

func shortDigest(d string) string {
	if len(d) <= digestDisplayLen {
		return d
	}
	return d[:digestDisplayLen]
}
