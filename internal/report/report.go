// Package report computes the dashboard aggregates from a fetched document
// set. Everything here is a pure function of its inputs.
package report

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sotuphap-angiang/vbtrack/internal/config"
	"github.com/sotuphap-angiang/vbtrack/internal/models"
	"golang.org/x/text/unicode/norm"
)

// RepealGroup is the repealed / not-processed outcome of a document: the
// current-schema sum when positive, else the legacy repealed counter.
func RepealGroup(d models.Document) int {
	current := d.Continuing.Repealed + d.Continuing.NotProcessed + d.Continuing.Expired + d.NewInstrument.Repealed
	return fallback(current, d.Legacy.Repealed)
}

// IssuanceGroup is the newly-issued / replaced outcome of a document: the
// current-schema sum when positive, else the legacy newly-issued plus
// replaced counters.
func IssuanceGroup(d models.Document) int {
	current := d.Continuing.Replaced + d.NewInstrument.NewlyIssued + d.NewInstrument.Amended + d.NewInstrument.Replaced
	return fallback(current, d.Legacy.NewlyIssued+d.Legacy.Replaced)
}

func fallback(current, legacy int) int {
	if current > 0 {
		return current
	}
	return legacy
}

// AreaRollup is one row of an area summary table.
type AreaRollup struct {
	Ordinal  int      `json:"ordinal"`
	Name     string   `json:"name"`
	Agencies []string `json:"agencies"`
	Handler  string   `json:"handler"`
	Pending  int      `json:"pending"`
	Repeal   int      `json:"repeal"`
	Issuance int      `json:"issuance"`
}

// Completed is the processed outcome count of the area.
func (a AreaRollup) Completed() int { return a.Repeal + a.Issuance }

// AreaRollups builds the area table of group. A document belongs to an area
// when its doc type is the group's and its agency name equals one of the
// area's agencies, ignoring case. Pending documents are counted; completed
// documents contribute their repeal and issuance outcomes.
func AreaRollups(docs []models.Document, group config.AreaGroupConfig) []AreaRollup {
	rows := make([]AreaRollup, 0, len(group.Areas))
	for _, area := range group.Areas {
		members := make(map[string]bool, len(area.Agencies))
		for _, a := range area.Agencies {
			members[foldName(a)] = true
		}
		row := AreaRollup{
			Ordinal:  area.Ordinal,
			Name:     area.Name,
			Agencies: area.Agencies,
			Handler:  area.Handler,
		}
		for _, d := range docs {
			if d.DocType != group.DocType {
				continue
			}
			name := d.AgencyName()
			if name == "" || !members[foldName(name)] {
				continue
			}
			switch d.Status {
			case models.StatusPending:
				row.Pending++
			case models.StatusCompleted:
				row.Repeal += RepealGroup(d)
				row.Issuance += IssuanceGroup(d)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// foldName is the case-insensitive comparison key of an agency name.
func foldName(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

// GroupTotals sums a set of area rows.
type GroupTotals struct {
	Pending   int `json:"pending"`
	Repeal    int `json:"repeal"`
	Issuance  int `json:"issuance"`
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Percent   int `json:"percent"`
}

// Totals sums rows and derives the completion percentage.
func Totals(rows []AreaRollup) GroupTotals {
	var t GroupTotals
	for _, r := range rows {
		t.Pending += r.Pending
		t.Repeal += r.Repeal
		t.Issuance += r.Issuance
	}
	return t.finish()
}

// Combine adds group totals together.
func Combine(groups ...GroupTotals) GroupTotals {
	var t GroupTotals
	for _, g := range groups {
		t.Pending += g.Pending
		t.Repeal += g.Repeal
		t.Issuance += g.Issuance
	}
	return t.finish()
}

func (t GroupTotals) finish() GroupTotals {
	t.Completed = t.Repeal + t.Issuance
	t.Total = t.Completed + t.Pending
	t.Percent = CompletionPercent(t.Completed, t.Pending)
	return t
}

// CompletionPercent is round(100 * completed / (completed + pending)), with
// halves rounded up, or 0 when both are zero.
func CompletionPercent(completed, pending int) int {
	total := completed + pending
	if total <= 0 {
		return 0
	}
	pct := decimal.NewFromInt(int64(completed)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(0)
	return int(pct.IntPart())
}

// Tally counts documents by status under one name.
type Tally struct {
	Name      string `json:"name"`
	Pending   int    `json:"pending"`
	Completed int    `json:"completed"`
}

// Total is Pending + Completed.
func (t Tally) Total() int { return t.Pending + t.Completed }

// HandlerTallies counts every document by handler. Documents without a
// handler go to the unassigned bucket. The result is sorted by total,
// largest first, then by name.
func HandlerTallies(docs []models.Document, unassigned string) []Tally {
	return tallyBy(docs, unassigned, func(d models.Document) string { return d.HandlerName })
}

// AgencyTallies counts every document by agency name, in the same order as
// HandlerTallies. Documents without an agency go to the unknown bucket.
func AgencyTallies(docs []models.Document, unknown string) []Tally {
	return tallyBy(docs, unknown, models.Document.AgencyName)
}

func tallyBy(docs []models.Document, empty string, key func(models.Document) string) []Tally {
	index := make(map[string]int)
	var out []Tally
	for _, d := range docs {
		name := key(d)
		if name == "" {
			name = empty
		}
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, Tally{Name: name})
		}
		switch d.Status {
		case models.StatusPending:
			out[i].Pending++
		case models.StatusCompleted:
			out[i].Completed++
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Total() != out[b].Total() {
			return out[a].Total() > out[b].Total()
		}
		return out[a].Name < out[b].Name
	})
	if out == nil {
		out = []Tally{}
	}
	return out
}

// Outcomes holds raw sums of the current-schema counters. No legacy
// fallback is applied.
type Outcomes struct {
	Continuing         models.ContinuingCounts    `json:"continuing"`
	NewInstrument      models.NewInstrumentCounts `json:"new_instrument"`
	ContinuingTotal    int                        `json:"continuing_total"`
	NewInstrumentTotal int                        `json:"new_instrument_total"`
}

// OutcomeTotals sums each of the eight current-schema counters over docs.
func OutcomeTotals(docs []models.Document) Outcomes {
	var o Outcomes
	for _, d := range docs {
		o.Continuing.Replaced += d.Continuing.Replaced
		o.Continuing.Repealed += d.Continuing.Repealed
		o.Continuing.NotProcessed += d.Continuing.NotProcessed
		o.Continuing.Expired += d.Continuing.Expired
		o.NewInstrument.NewlyIssued += d.NewInstrument.NewlyIssued
		o.NewInstrument.Amended += d.NewInstrument.Amended
		o.NewInstrument.Replaced += d.NewInstrument.Replaced
		o.NewInstrument.Repealed += d.NewInstrument.Repealed
	}
	o.ContinuingTotal = o.Continuing.Sum()
	o.NewInstrumentTotal = o.NewInstrument.Sum()
	return o
}

// PartitionSummary describes the documents of one (doc type, status) pair,
// which corresponds to one workbook sheet.
type PartitionSummary struct {
	DocType     string              `json:"doc_type"`
	Status      string              `json:"status"`
	Documents   int                 `json:"documents"`
	NeedsReview int                 `json:"needs_review"`
	Legacy      models.LegacyCounts `json:"legacy"`
}

// PartitionSummaries returns one summary per doc type and status, in
// declaration order, including empty partitions.
func PartitionSummaries(docs []models.Document) []PartitionSummary {
	var out []PartitionSummary
	index := make(map[[2]string]int)
	for _, dt := range models.ValidDocTypes {
		for _, st := range models.ValidStatuses {
			index[[2]string{dt, st}] = len(out)
			out = append(out, PartitionSummary{DocType: dt, Status: st})
		}
	}
	for _, d := range docs {
		i, ok := index[[2]string{d.DocType, d.Status}]
		if !ok {
			continue
		}
		p := &out[i]
		p.Documents++
		if d.NeedsReview {
			p.NeedsReview++
		}
		p.Legacy.Replaced += d.Legacy.Replaced
		p.Legacy.Repealed += d.Legacy.Repealed
		p.Legacy.NewlyIssued += d.Legacy.NewlyIssued
		p.Legacy.Undetermined += d.Legacy.Undetermined
	}
	return out
}

// GroupReport is one area table with its totals.
type GroupReport struct {
	DocType string       `json:"doc_type"`
	Title   string       `json:"title"`
	Areas   []AreaRollup `json:"areas"`
	Totals  GroupTotals  `json:"totals"`
}

// Dashboard is every aggregate the reporting views show.
type Dashboard struct {
	Groups     []GroupReport      `json:"groups"`
	Overall    GroupTotals        `json:"overall"`
	Handlers   []Tally            `json:"handlers"`
	Agencies   []Tally            `json:"agencies"`
	Outcomes   Outcomes           `json:"outcomes"`
	Partitions []PartitionSummary `json:"partitions"`
}

// Build computes the full dashboard for docs.
func Build(docs []models.Document, cfg config.ReportConfig) Dashboard {
	d := Dashboard{Groups: make([]GroupReport, 0, len(cfg.Groups))}
	totals := make([]GroupTotals, 0, len(cfg.Groups))
	for _, g := range cfg.Groups {
		rows := AreaRollups(docs, g)
		t := Totals(rows)
		totals = append(totals, t)
		d.Groups = append(d.Groups, GroupReport{DocType: g.DocType, Title: g.Title, Areas: rows, Totals: t})
	}
	d.Overall = Combine(totals...)
	d.Handlers = HandlerTallies(docs, cfg.UnassignedLabel)
	d.Agencies = AgencyTallies(docs, cfg.UnassignedLabel)
	d.Outcomes = OutcomeTotals(docs)
	d.Partitions = PartitionSummaries(docs)
	return d
}
