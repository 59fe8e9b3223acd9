package reporting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"

	"github.com/yuin/goldmark"

	"github.com/ethereum-optimism/infra/op-licenses/types"
)

// ReportFormatter defines the interface for different report output formats
type ReportFormatter interface {
	Format(set *types.LicenseSet) ([]byte, error)
}

// NewFormatter returns the formatter for the given format.
func NewFormatter(format types.Format) (ReportFormatter, error) {
	switch format {
	case types.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case types.FormatHTML:
		return NewHTMLFormatter(), nil
	case types.FormatJSON:
		return NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported report format: %q", format)
	}
}

// MarkdownFormatter renders one level-3 section per package with the license
// text in a fenced block, in package order.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format generates the markdown report
func (f *MarkdownFormatter) Format(set *types.LicenseSet) ([]byte, error) {
	var buf bytes.Buffer
	for _, record := range set.Records() {
		fmt.Fprintf(&buf, "### %s\n\n", record.Package)
		buf.WriteString("```\n")
		buf.WriteString(record.TrimmedText())
		buf.WriteString("\n```\n\n")
	}
	return buf.Bytes(), nil
}

// HTMLFormatter renders the markdown report as a standalone HTML page.
type HTMLFormatter struct {
	markdown *MarkdownFormatter
	md       goldmark.Markdown
	page     *template.Template
}

const htmlPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Count}} packages, {{.Distinct}} distinct licenses</p>
{{.Body}}
</body>
</html>
`

// NewHTMLFormatter creates a new HTML formatter
func NewHTMLFormatter() *HTMLFormatter {
	return &HTMLFormatter{
		markdown: NewMarkdownFormatter(),
		md:       goldmark.New(),
		page:     template.Must(template.New("licenses").Parse(htmlPage)),
	}
}

// Format generates the HTML report
func (f *HTMLFormatter) Format(set *types.LicenseSet) ([]byte, error) {
	source, err := f.markdown.Format(set)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	if err := f.md.Convert(source, &body); err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}

	var out bytes.Buffer
	err = f.page.Execute(&out, struct {
		Title    string
		Count    int
		Distinct int
		Body     template.HTML
	}{
		Title:    "Third-party licenses",
		Count:    set.Len(),
		Distinct: set.DistinctLicenses(),
		Body:     template.HTML(body.String()), //nolint:gosec // goldmark escapes raw HTML by default
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute HTML template: %w", err)
	}
	return out.Bytes(), nil
}

// JSONFormatter renders the license set as a JSON array.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

type jsonRecord struct {
	Package    string `json:"package"`
	LicensedBy string `json:"licensed_by,omitempty"`
	Source     string `json:"source,omitempty"`
	Seeded     bool   `json:"seeded,omitempty"`
	Digest     string `json:"digest"`
	Text       string `json:"text"`
}

// Format generates the JSON report
func (f *JSONFormatter) Format(set *types.LicenseSet) ([]byte, error) {
	records := make([]jsonRecord, 0, set.Len())
	for _, r := range set.Records() {
		records = append(records, jsonRecord{
			Package:    r.Package,
			LicensedBy: r.LicensedBy,
			Source:     r.Source,
			Seeded:     r.Seeded,
			Digest:     r.Digest(),
			Text:       r.TrimmedText(),
		})
	}
	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return append(out, '\n'), nil
}

// ReportWriter defines the interface for writing reports to various destinations
type ReportWriter interface {
	Write(content []byte) error
}

// NewWriter returns a FileWriter for path, or a StdoutWriter for "" and "-".
func NewWriter(path string) ReportWriter {
	if path == "" || path == "-" {
		return NewStdoutWriter()
	}
	return NewFileWriter(path)
}

// FileWriter writes reports to a file
type FileWriter struct {
	path string
}

// NewFileWriter creates a new file writer
func NewFileWriter(path string) *FileWriter {
	return &FileWriter{path: path}
}

// Write writes the content to the file
func (fw *FileWriter) Write(content []byte) error {
	return os.WriteFile(fw.path, content, 0644)
}

// StdoutWriter writes reports to stdout
type StdoutWriter struct{}

// NewStdoutWriter creates a new stdout writer
func NewStdoutWriter() *StdoutWriter {
	return &StdoutWriter{}
}

// Write writes the content to stdout
func (sw *StdoutWriter) Write(content []byte) error {
	_, err := os.Stdout.Write(content)
	return err
}
