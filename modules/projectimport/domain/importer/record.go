package importer

import (
	"fmt"
	"strings"
	"time"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindFloat
	KindDate
	// KindPercent appears only in field specs; converted values are stored
	// as KindFloat in the 0..1 range.
	KindPercent
)

// Value is a typed cell value in a canonical record.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Date time.Time
}

func Null() Value               { return Value{Kind: KindNull} }
func String(s string) Value     { return Value{Kind: KindString, Str: s} }
func Float(f float64) Value     { return Value{Kind: KindFloat, Num: f} }
func Date(t time.Time) Value    { return Value{Kind: KindDate, Date: t} }
func (v Value) IsNull() bool    { return v.Kind == KindNull }
func (v Value) StringOr(def string) string {
	if v.Kind == KindString {
		return v.Str
	}
	return def
}

// Arg converts the value to a driver-friendly argument.
func (v Value) Arg() any {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindFloat:
		return v.Num
	case KindDate:
		return v.Date
	default:
		return nil
	}
}

// Linkage fields carry unresolved references out of the field mapper. They
// are rewritten into real foreign-key columns by the orchestrator and must
// never reach the record writer.
const (
	LinkagePrefix   = "@"
	FieldExcelID    = "@excel_id"
	FieldParentID   = "@parent_id"
	FieldOwner      = "@owner"
	FieldClientName = "@client_name"
)

func IsLinkage(field string) bool {
	return strings.HasPrefix(field, LinkagePrefix)
}

// Record maps canonical field names to typed values. Linkage fields are
// keyed with the "@" prefix.
type Record map[string]Value

// TakeString removes the named field and returns its string value, or ""
// when absent or null.
func (r Record) TakeString(field string) string {
	v, ok := r[field]
	if !ok {
		return ""
	}
	delete(r, field)
	return v.StringOr("")
}

// RawField is one header/cell pair of a spreadsheet row.
type RawField struct {
	Name  string // lower-cased, trimmed header
	Value string
}

// RawRow is an ordered snapshot of one spreadsheet row, tagged with its
// source sheet and 1-based row number (the header is row 1).
type RawRow struct {
	Sheet  string
	Number int
	Fields []RawField
}

// Ref identifies the row in warnings and errors, e.g. `Usecases row 2`.
func (r RawRow) Ref() string {
	return fmt.Sprintf("%s row %d", r.Sheet, r.Number)
}
