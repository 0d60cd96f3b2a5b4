package dataset

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/dinodash/internal/metrics"
)

// ErrMalformedNumber marks a numeric cell that does not coerce cleanly. The
// rule set assumes clean numeric input, so this aborts normalization.
var ErrMalformedNumber = errors.New("malformed numeric field")

// RowError reports a hard failure on a single source row.
type RowError struct {
	Index  string
	Column string
	Value  string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %s column %s value %q: %v", e.Index, e.Column, e.Value, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

const (
	periodSuffix       = " million years ago"
	singleBoundWindow  = 10
	mislabeledType     = "1.0m"
	mislabeledTypeFix  = "euornithopod"
	lengthUnitMarker   = "m"
	periodBoundDivider = "-"
)

var (
	yearPattern   = regexp.MustCompile(`\d{4}`)
	digitsPattern = regexp.MustCompile(`\d+`)
	bracketStrip  = strings.NewReplacer("(", "", ")", "")
)

// Rule names, in pipeline order.
const (
	RuleRequireImageLocation = "require_image_location"
	RuleDiscovered           = "discovered"
	RuleNamedBy              = "named_by"
	RuleLength               = "length"
	RuleSpecies              = "species"
	RuleTypeFix              = "type_fix"
	RuleMajorGroup           = "major_group"
	RulePeriodSuffix         = "period_suffix"
	RulePeriodBounds         = "period_bounds"
	RuleRequirePeriodBounds  = "require_period_bounds"
	RulePeriodText           = "period_text"
	RuleProject              = "project"
)

// draft is a row in flight. Fields are filled in as rules run.
type draft struct {
	index    string
	name     string
	species  string
	typ      string
	diet     string
	period   string
	livedIn  string
	taxonomy string
	namedBy  string
	link     string
	image    string

	hasImage   bool
	hasLivedIn bool
	hasNamedBy bool
	hasSpecies bool
	hasLength  bool
	lengthRaw  string

	length     float64
	discovered int
	majorGroup string
	periodFrom int
	periodTo   int
	hasBounds  bool
}

type rule struct {
	name  string
	apply func(rows []*draft) ([]*draft, error)
}

// RuleDrop counts the rows a single rule removed.
type RuleDrop struct {
	Rule string `json:"rule"`
	Rows int    `json:"rows"`
}

// Report summarizes one normalization run.
type Report struct {
	InputRows  int        `json:"input_rows"`
	OutputRows int        `json:"output_rows"`
	Dropped    []RuleDrop `json:"dropped"`
}

// DroppedBy returns the rows dropped by the named rule.
func (r Report) DroppedBy(name string) int {
	for _, d := range r.Dropped {
		if d.Rule == name {
			return d.Rows
		}
	}
	return 0
}

// Pipeline runs the fixed, ordered column rules over a raw table.
type Pipeline struct {
	rules  []rule
	logger *zap.Logger
}

// NewPipeline builds the normalization pipeline.
func NewPipeline(logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		logger: logger,
		rules: []rule{
			{RuleRequireImageLocation, dropMissingImageOrLocation},
			{RuleDiscovered, deriveDiscovered},
			{RuleNamedBy, each(rewriteNamedBy)},
			{RuleLength, deriveLength},
			{RuleSpecies, each(defaultSpecies)},
			{RuleTypeFix, each(fixMislabeledType)},
			{RuleMajorGroup, each(assignMajorGroup)},
			{RulePeriodSuffix, each(stripPeriodSuffix)},
			{RulePeriodBounds, derivePeriodBounds},
			{RuleRequirePeriodBounds, dropMissingBounds},
			{RulePeriodText, each(stripPeriodNumbers)},
		},
	}
}

// RuleNames lists the rules in execution order, ending with the projection.
func (p *Pipeline) RuleNames() []string {
	names := make([]string, 0, len(p.rules)+1)
	for _, r := range p.rules {
		names = append(names, r.name)
	}
	return append(names, RuleProject)
}

// Normalize applies every rule in order and projects the survivors onto the
// ordered record schema. Row order is preserved.
func (p *Pipeline) Normalize(raw *RawTable) (*Table, Report, error) {
	if raw == nil {
		return nil, Report{}, errors.New("raw table is required")
	}
	if err := raw.Require(RequiredRawColumns...); err != nil {
		return nil, Report{}, fmt.Errorf("normalize: %w", err)
	}
	if err := raw.Require(RawImage); err != nil {
		return nil, Report{}, fmt.Errorf("normalize: %w", err)
	}

	rows := load(raw)
	report := Report{InputRows: len(rows)}
	for _, r := range p.rules {
		before := len(rows)
		next, err := r.apply(rows)
		if err != nil {
			return nil, Report{}, fmt.Errorf("rule %s: %w", r.name, err)
		}
		rows = next
		if dropped := before - len(rows); dropped > 0 {
			report.Dropped = append(report.Dropped, RuleDrop{Rule: r.name, Rows: dropped})
			p.logger.Debug("rule dropped rows",
				zap.String("rule", r.name),
				zap.Int("dropped", dropped),
				zap.Int("remaining", len(rows)),
			)
		}
	}

	table := project(rows)
	report.OutputRows = table.Len()
	dropped := make(map[string]int, len(report.Dropped))
	for _, d := range report.Dropped {
		dropped[d.Rule] = d.Rows
	}
	metrics.ObserveNormalize(report.InputRows, report.OutputRows, dropped)
	p.logger.Info("dataset normalized",
		zap.Int("input_rows", report.InputRows),
		zap.Int("output_rows", report.OutputRows),
	)
	return table, report, nil
}

func load(raw *RawTable) []*draft {
	rows := make([]*draft, raw.Len())
	for i := range raw.Rows {
		d := &draft{index: raw.Rows[i].Index}
		if d.index == "" {
			d.index = strconv.Itoa(i)
		}
		d.name, _ = raw.Get(i, RawName)
		d.diet, _ = raw.Get(i, RawDiet)
		d.typ, _ = raw.Get(i, RawType)
		d.period, _ = raw.Get(i, RawPeriod)
		d.taxonomy, _ = raw.Get(i, RawTaxonomy)
		d.link, _ = raw.Get(i, RawLink)
		d.image, d.hasImage = raw.Get(i, RawImage)
		d.livedIn, d.hasLivedIn = raw.Get(i, RawLivedIn)
		d.namedBy, d.hasNamedBy = raw.Get(i, RawNamedBy)
		d.species, d.hasSpecies = raw.Get(i, RawSpecies)
		d.lengthRaw, d.hasLength = raw.Get(i, RawLength)
		rows[i] = d
	}
	return rows
}

func each(fn func(*draft)) func([]*draft) ([]*draft, error) {
	return func(rows []*draft) ([]*draft, error) {
		for _, d := range rows {
			fn(d)
		}
		return rows, nil
	}
}

func keep(rows []*draft, ok func(*draft) bool) []*draft {
	out := rows[:0]
	for _, d := range rows {
		if ok(d) {
			out = append(out, d)
		}
	}
	return out
}

func dropMissingImageOrLocation(rows []*draft) ([]*draft, error) {
	return keep(rows, func(d *draft) bool { return d.hasImage && d.hasLivedIn }), nil
}

func deriveDiscovered(rows []*draft) ([]*draft, error) {
	out := rows[:0]
	for _, d := range rows {
		if !d.hasNamedBy {
			continue
		}
		year := yearPattern.FindString(d.namedBy)
		if year == "" {
			continue
		}
		n, err := strconv.Atoi(year)
		if err != nil {
			continue
		}
		d.discovered = n
		out = append(out, d)
	}
	return out, nil
}

// RewriteNamedBy strips parentheses and every four-digit run from a citation
// and trims it. Parentheses go first so that no new four-digit run can form
// afterwards, which keeps the rewrite idempotent.
func RewriteNamedBy(s string) string {
	s = bracketStrip.Replace(s)
	s = yearPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func rewriteNamedBy(d *draft) {
	d.namedBy = RewriteNamedBy(d.namedBy)
}

// ParseLength converts a raw length cell ("8.0m") to meters. Missing lengths
// are 0.0, meaning unknown.
func ParseLength(raw string, present bool) (float64, error) {
	if !present {
		return 0, nil
	}
	s := strings.TrimSpace(strings.ReplaceAll(raw, lengthUnitMarker, ""))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrMalformedNumber, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("%w: length out of range", ErrMalformedNumber)
	}
	return v, nil
}

func deriveLength(rows []*draft) ([]*draft, error) {
	for _, d := range rows {
		v, err := ParseLength(d.lengthRaw, d.hasLength)
		if err != nil {
			return nil, &RowError{Index: d.index, Column: RawLength, Value: d.lengthRaw, Err: err}
		}
		d.length = v
	}
	return rows, nil
}

func defaultSpecies(d *draft) {
	if !d.hasSpecies {
		d.species = d.name
		d.hasSpecies = true
	}
}

// fixMislabeledType corrects one known scraping artifact in the source data:
// a single entry whose type column holds its length. This is a data fix for
// that entry, not a general rule.
func fixMislabeledType(d *draft) {
	if d.typ == mislabeledType {
		d.typ = mislabeledTypeFix
	}
}

func assignMajorGroup(d *draft) {
	d.majorGroup = MajorGroupOf(d.taxonomy)
}

func stripPeriodSuffix(d *draft) {
	d.period = strings.ReplaceAll(d.period, periodSuffix, "")
}

// PeriodBounds extracts (from, to) in millions of years from a period text.
// Two or more numbers give the first two; a single number n gives
// (n, n+10); none reports ok=false.
func PeriodBounds(period string) (from, to int, ok bool, err error) {
	nums := digitsPattern.FindAllString(period, 2)
	if len(nums) == 0 {
		return 0, 0, false, nil
	}
	from, err = strconv.Atoi(nums[0])
	if err != nil {
		return 0, 0, false, fmt.Errorf("%w: %w", ErrMalformedNumber, err)
	}
	if len(nums) == 1 {
		return from, from + singleBoundWindow, true, nil
	}
	to, err = strconv.Atoi(nums[1])
	if err != nil {
		return 0, 0, false, fmt.Errorf("%w: %w", ErrMalformedNumber, err)
	}
	return from, to, true, nil
}

func derivePeriodBounds(rows []*draft) ([]*draft, error) {
	for _, d := range rows {
		from, to, ok, err := PeriodBounds(d.period)
		if err != nil {
			return nil, &RowError{Index: d.index, Column: RawPeriod, Value: d.period, Err: err}
		}
		d.periodFrom, d.periodTo, d.hasBounds = from, to, ok
	}
	return rows, nil
}

func dropMissingBounds(rows []*draft) ([]*draft, error) {
	return keep(rows, func(d *draft) bool { return d.hasBounds }), nil
}

// PeriodName removes digit runs and the range divider from a period text,
// leaving the period name ("Late Cretaceous 70-66" -> "Late Cretaceous").
func PeriodName(period string) string {
	s := digitsPattern.ReplaceAllString(period, "")
	s = strings.ReplaceAll(s, periodBoundDivider, "")
	return strings.TrimSpace(s)
}

func stripPeriodNumbers(d *draft) {
	d.period = PeriodName(d.period)
}

func project(rows []*draft) *Table {
	records := make([]Record, len(rows))
	for i, d := range rows {
		idx, err := strconv.Atoi(d.index)
		if err != nil {
			idx = i
		}
		records[i] = Record{
			Index:      idx,
			Name:       d.name,
			Species:    d.species,
			Type:       d.typ,
			Length:     d.length,
			Diet:       d.diet,
			Period:     d.period,
			PeriodFrom: d.periodFrom,
			PeriodTo:   d.periodTo,
			LivedIn:    d.livedIn,
			Discovered: d.discovered,
			MajorGroup: d.majorGroup,
			Taxonomy:   d.taxonomy,
			NamedBy:    d.namedBy,
			Link:       d.link,
			Image:      d.image,
		}
	}
	return &Table{records: records}
}
