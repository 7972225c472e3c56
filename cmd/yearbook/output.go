package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"github.com/spektr-org/yearbook/engine"
)

// ============================================================================
// OUTPUT: table, json, pretty and csv renderings
// ============================================================================

const (
	formatTable  = "table"
	formatJSON   = "json"
	formatPretty = "pretty"
	formatCSV    = "csv"
)

type renderer struct {
	w      io.Writer
	format string
}

func (r renderer) structured() bool {
	return r.format == formatJSON || r.format == formatPretty
}

func (r renderer) json(v interface{}) error {
	var (
		out []byte
		err error
	)
	if r.format == formatPretty {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return errors.Wrap(err, "marshal output")
	}
	_, err = fmt.Fprintln(r.w, string(out))
	return err
}

// tableData writes td as a terminal table or as CSV.
func (r renderer) tableData(td *engine.TableData) error {
	headers := make([]string, len(td.Columns))
	for i, c := range td.Columns {
		headers[i] = c.Label
	}

	if r.format == formatCSV {
		return r.csv(headers, td.Rows)
	}

	if td.Title != "" {
		color.New(color.Bold).Fprintln(r.w, td.Title)
	}
	tw := newTableWriter(r.w, headers)
	aligns := make([]int, len(td.Columns))
	for i, c := range td.Columns {
		aligns[i] = alignment(c.Align)
	}
	tw.SetColumnAlignment(aligns)
	tw.AppendBulk(td.Rows)
	tw.Render()

	if td.Summary != nil {
		fmt.Fprintf(r.w, "%s: %s\n", td.Summary.Label, summaryValues(td.Summary))
	}
	return nil
}

// plain writes headers and rows without a title or summary.
func (r renderer) plain(headers []string, rows [][]string) error {
	if r.format == formatCSV {
		return r.csv(headers, rows)
	}
	tw := newTableWriter(r.w, headers)
	tw.AppendBulk(rows)
	tw.Render()
	return nil
}

func (r renderer) csv(headers []string, rows [][]string) error {
	cw := csv.NewWriter(r.w)
	if err := cw.Write(headers); err != nil {
		return errors.Wrap(err, "write csv")
	}
	if err := cw.WriteAll(rows); err != nil {
		return errors.Wrap(err, "write csv")
	}
	return nil
}

// heading prints a bold line in table mode only.
func (r renderer) heading(format string, args ...interface{}) {
	if r.format == formatTable {
		color.New(color.Bold).Fprintf(r.w, format+"\n", args...)
	}
}

// note prints a plain line in table mode only.
func (r renderer) note(format string, args ...interface{}) {
	if r.format == formatTable {
		fmt.Fprintf(r.w, format+"\n", args...)
	}
}

func newTableWriter(w io.Writer, headers []string) *tablewriter.Table {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(headers)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	return tw
}

func alignment(align string) int {
	switch align {
	case "right":
		return tablewriter.ALIGN_RIGHT
	case "center":
		return tablewriter.ALIGN_CENTER
	default:
		return tablewriter.ALIGN_LEFT
	}
}

func summaryValues(s *engine.Summary) string {
	keys := make([]string, 0, len(s.Values))
	for k := range s.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	vals := make([]string, len(keys))
	for i, k := range keys {
		vals[i] = s.Values[k]
	}
	return strings.Join(vals, ", ")
}
