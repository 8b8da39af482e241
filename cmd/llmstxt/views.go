package main

import (
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"mercator-hq/llmstxt/pkg/cli"
	"mercator-hq/llmstxt/pkg/content"
	"mercator-hq/llmstxt/pkg/export"
	"mercator-hq/llmstxt/pkg/settings"
)

// reportView prints an export report.
type reportView export.Report

func (v reportView) Table() cli.Table {
	rows := [][]string{
		{"run_id", v.RunID},
		{"path", v.Path},
		{"bytes", strconv.Itoa(v.Bytes)},
		{"sections", strconv.Itoa(v.Sections)},
		{"items", strconv.Itoa(v.Items)},
	}

	types := make([]string, 0, len(v.TypeCounts))
	for name := range v.TypeCounts {
		types = append(types, name)
	}
	sort.Strings(types)
	for _, name := range types {
		rows = append(rows, []string{"items." + name, strconv.Itoa(v.TypeCounts[name])})
	}

	rows = append(rows, []string{"duration", v.Duration.Round(time.Millisecond).String()})
	return cli.Table{Headers: []string{"FIELD", "VALUE"}, Rows: rows}
}

// optionsView prints the stored export options.
type optionsView settings.Options

func (v optionsView) Table() cli.Table {
	return cli.Table{
		Headers: []string{"SETTING", "VALUE"},
		Rows: [][]string{
			{"post_types", strings.Join(v.PostTypes, ",")},
			{"interval", v.Interval},
		},
	}
}

// typesView prints content types and whether they are exported.
type typesView []typeRow

type typeRow struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Public   bool   `json:"public"`
	Selected bool   `json:"selected"`
}

func newTypesView(types []content.ContentType, selected []string) typesView {
	in := make(map[string]bool, len(selected))
	for _, name := range selected {
		in[name] = true
	}
	view := make(typesView, 0, len(types))
	for _, t := range types {
		view = append(view, typeRow{
			Name:     t.Name,
			Label:    t.DisplayLabel(),
			Public:   t.Public,
			Selected: in[t.Name] && t.Public,
		})
	}
	return view
}

func (v typesView) Table() cli.Table {
	rows := make([][]string, 0, len(v))
	for _, t := range v {
		rows = append(rows, []string{t.Name, t.Label, strconv.FormatBool(t.Public), strconv.FormatBool(t.Selected)})
	}
	return cli.Table{Headers: []string{"NAME", "LABEL", "PUBLIC", "SELECTED"}, Rows: rows}
}

// runsView prints the run history.
type runsView []settings.RunRecord

func (v runsView) Table() cli.Table {
	rows := make([][]string, 0, len(v))
	for _, run := range v {
		rows = append(rows, []string{
			run.StartedAt.Local().Format(time.RFC3339),
			run.Trigger,
			run.Status,
			strconv.Itoa(run.Bytes),
			strconv.Itoa(run.Items),
			run.Duration.Round(time.Millisecond).String(),
			run.Error,
		})
	}
	return cli.Table{
		Headers: []string{"STARTED", "TRIGGER", "STATUS", "BYTES", "ITEMS", "DURATION", "ERROR"},
		Rows:    rows,
	}
}

var stdout io.Writer = os.Stdout

// printOutput writes data in the format named by the --output flag.
func printOutput(format string, data any) error {
	outputFormat, err := cli.ParseOutputFormat(format)
	if err != nil {
		return cli.NewUsageError("%v", err)
	}
	return cli.NewFormatter(outputFormat).FormatTo(stdout, data)
}
