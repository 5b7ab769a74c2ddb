package importer

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// FieldMapper turns raw spreadsheet rows into canonical records. Mapping is
// pure per row; the only state is the unmapped-columns report, which collects
// unrecognized headers per entity type for surfacing as warnings.
type FieldMapper struct {
	unmapped     map[EntityType][]string
	unmappedSeen map[EntityType]map[string]struct{}
}

func NewFieldMapper() *FieldMapper {
	return &FieldMapper{
		unmapped:     make(map[EntityType][]string),
		unmappedSeen: make(map[EntityType]map[string]struct{}),
	}
}

// MapRow maps one raw row into a canonical record. A cell that cannot be
// converted yields a null field and a warning; it never fails the row.
func (m *FieldMapper) MapRow(level Level, row RawRow) (Record, []string) {
	specs := FieldSpecs(level)
	rec := make(Record, len(specs))
	var warnings []string

	for _, field := range row.Fields {
		column := normalizeColumn(field.Name)
		if column == "" {
			continue
		}
		spec, ok := findSpec(specs, column)
		if !ok {
			m.reportUnmapped(level.EntityType(), column)
			continue
		}
		if _, dup := rec[spec.Name]; dup {
			continue
		}

		raw := strings.TrimSpace(field.Value)
		if raw == "" {
			continue // absent; default applied below
		}

		value, err := convert(spec.Kind, raw)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: column %q: %v", row.Ref(), column, err))
			rec[spec.Name] = Null()
			continue
		}
		rec[spec.Name] = value
	}

	// Defaults and explicit nulls for every spec field not present yet.
	for _, spec := range specs {
		if _, ok := rec[spec.Name]; ok {
			continue
		}
		if spec.Default != "" {
			rec[spec.Name] = String(spec.Default)
		} else if !IsLinkage(spec.Name) {
			rec[spec.Name] = Null()
		}
	}

	return rec, warnings
}

// UnmappedColumns reports unrecognized headers seen so far, deduplicated and
// in first-seen order per entity type.
func (m *FieldMapper) UnmappedColumns() map[EntityType][]string {
	out := make(map[EntityType][]string, len(m.unmapped))
	for entity, columns := range m.unmapped {
		out[entity] = append([]string(nil), columns...)
	}
	return out
}

func (m *FieldMapper) reportUnmapped(entity EntityType, column string) {
	seen, ok := m.unmappedSeen[entity]
	if !ok {
		seen = make(map[string]struct{})
		m.unmappedSeen[entity] = seen
	}
	if _, dup := seen[column]; dup {
		return
	}
	seen[column] = struct{}{}
	m.unmapped[entity] = append(m.unmapped[entity], column)
}

// normalizeColumn lower-cases a header and collapses whitespace runs into
// underscores, so "Project Name", "project name", and "project_name" all
// address the same field.
func normalizeColumn(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}

func findSpec(specs []FieldSpec, column string) (FieldSpec, bool) {
	for _, spec := range specs {
		if spec.matches(column) {
			return spec, true
		}
	}
	return FieldSpec{}, false
}

func convert(kind Kind, raw string) (Value, error) {
	switch kind {
	case KindString:
		return String(raw), nil
	case KindDate:
		return ConvertDate(raw)
	case KindFloat:
		return ConvertNumber(raw)
	case KindPercent:
		return ConvertPercent(raw)
	default:
		return String(raw), nil
	}
}

// dateLayouts are tried in order. US layouts come before European ones, so
// an ambiguous slash date like 03/04/2024 resolves as March 4.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"02/01/2006",
	"2/1/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"2-Jan-2006",
	"02-Jan-06",
}

// excelEpoch is day zero of the 1900 date system (accounting for the
// fictitious 1900-02-29 that Excel inherited from Lotus 1-2-3).
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ConvertDate parses ISO, US, European, and verbose month-name dates, plus
// raw Excel serial numbers. Unparseable input is an error for the caller to
// downgrade to a null-plus-warning.
func ConvertDate(raw string) (Value, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Null(), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date(t), nil
		}
	}
	// Date cells sometimes surface as their underlying serial number.
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 59 && serial < 200000 {
		days := int(serial)
		frac := serial - float64(days)
		t := excelEpoch.AddDate(0, 0, days).Add(time.Duration(frac * 24 * float64(time.Hour)))
		return Date(t), nil
	}
	return Null(), fmt.Errorf("unrecognized date %q", raw)
}

var numberStrip = strings.NewReplacer(",", "", "$", "", "€", "", "£", "", "₹", "", " ", "")

// ConvertNumber parses a float, tolerating thousands separators and currency
// symbols.
func ConvertNumber(raw string) (Value, error) {
	s := numberStrip.Replace(strings.TrimSpace(raw))
	if s == "" {
		return Null(), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Null(), fmt.Errorf("unrecognized number %q", raw)
	}
	return Float(f), nil
}

// ConvertPercent normalizes "75%", 75, and 0.75 to the same 0.75 decimal.
func ConvertPercent(raw string) (Value, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Null(), nil
	}
	explicit := strings.HasSuffix(s, "%")
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	f, err := strconv.ParseFloat(numberStrip.Replace(s), 64)
	if err != nil {
		return Null(), fmt.Errorf("unrecognized percentage %q", raw)
	}
	if explicit || math.Abs(f) > 1 {
		f /= 100
	}
	return Float(f), nil
}

// SortedFields returns the record's field names in deterministic order,
// linkage fields excluded.
func SortedFields(rec Record) []string {
	fields := make([]string, 0, len(rec))
	for name := range rec {
		if IsLinkage(name) {
			continue
		}
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return fields
}
