// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report writes the per-run article report in CSV and/or HTML.
package report

import (
	"encoding/csv"
	"fmt"
	"html/template"
	"os"
	"strings"
	"time"

	"github.com/pdiddy/pubarchiver/pkg/types"
)

const htmlReport = `<html>
    <style>
      html  { font-family: "Helvetica", sans-serif     }
      h1    { font-size: 14pt; text-align: center      }
      table { width: 100%                              }
      thead { background-color: #eee                   }
      th    { text-align: left; padding: 6px 6px 0 6px }
      td    { padding: 6px 10px                        }
    </style>
  <body>
    <h1>{{.Title}}</h1>
    <table>
      <thead>
        <tr>
          <th width="10%">Status</th>
          <th width="30%">DOI</th>
          <th width="10%">Date</th>
          <th>URL</th>
        </tr>
      </thead>
      <tbody>
{{- range .Articles}}
        <tr>
          <td>{{.Status}}</td>
          <td>{{.DOI}}</td>
          <td>{{.Date}}</td>
          <td><a href="{{.PDF}}">{{.PDF}}</a></td>
        </tr>
{{- end}}
      </tbody>
    </table>
  </body>
</html>
`

var htmlTemplate = template.Must(template.New("report").Parse(htmlReport))

// Write emits one report file per format in cfg.Formats. The path for
// each is cfg.File with the format's extension appended.
func Write(cfg types.ReportConfig, articles []types.Article) error {
	for _, format := range strings.Split(cfg.Formats, ",") {
		format = strings.TrimSpace(strings.ToLower(format))
		if format == "" {
			continue
		}
		dest := trimExtension(cfg.File) + "." + format
		var err error
		switch format {
		case "csv":
			err = writeCSV(dest, articles)
		case "html":
			err = writeHTML(dest, cfg.Title, articles)
		default:
			return fmt.Errorf("unsupported report format %q", format)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(dest string, articles []types.Article) error {
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating report %s: %w", dest, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Status", "DOI", "Date", "URL"}); err != nil {
		return fmt.Errorf("writing report header: %w", err)
	}
	for _, a := range articles {
		if err := w.Write([]string{string(a.Status), a.DOI, a.Date, a.PDF}); err != nil {
			return fmt.Errorf("writing report row for %s: %w", a.DOI, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing report %s: %w", dest, err)
	}
	return f.Close()
}

func writeHTML(dest, title string, articles []types.Article) error {
	if title == "" {
		title = "Report for " + time.Now().Format("Jan 2 2006 15:04:05 MST")
	}
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating report %s: %w", dest, err)
	}
	defer f.Close()

	data := struct {
		Title    string
		Articles []types.Article
	}{title, articles}
	if err := htmlTemplate.Execute(f, data); err != nil {
		return fmt.Errorf("writing report %s: %w", dest, err)
	}
	return f.Close()
}

// trimExtension strips a trailing .csv/.html so a user-supplied
// "report.csv" with formats "csv,html" yields report.csv and
// report.html rather than report.csv.html.
func trimExtension(path string) string {
	for _, ext := range []string{".csv", ".html"} {
		if strings.HasSuffix(path, ext) {
			return strings.TrimSuffix(path, ext)
		}
	}
	return path
}
