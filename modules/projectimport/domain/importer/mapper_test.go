package importer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VishnuMohan31/Worky-sub005/modules/projectimport/domain/importer"
)

func rawRow(sheet string, number int, pairs ...string) importer.RawRow {
	row := importer.RawRow{Sheet: sheet, Number: number}
	for i := 0; i+1 < len(pairs); i += 2 {
		row.Fields = append(row.Fields, importer.RawField{Name: pairs[i], Value: pairs[i+1]})
	}
	return row
}

func TestMapRow_AliasesAndDefaults(t *testing.T) {
	mapper := importer.NewFieldMapper()

	rec, warnings := mapper.MapRow(importer.LevelProject, rawRow("Projects", 2,
		"ID", "P1",
		"Project Name", "Apollo",
		"Client", "Acme Corp",
		"Descriptions", "Lunar program",
		"Budget", "$1,200.50",
		"Progress", "75%",
	))

	require.Empty(t, warnings)
	assert.Equal(t, "P1", rec[importer.FieldExcelID].Str)
	assert.Equal(t, "Apollo", rec["name"].Str)
	assert.Equal(t, "Acme Corp", rec[importer.FieldClientName].Str)
	assert.Equal(t, "Lunar program", rec["short_description"].Str)
	assert.InDelta(t, 1200.50, rec["budget"].Num, 0.001)
	assert.InDelta(t, 0.75, rec["percent_complete"].Num, 0.001)

	// Defaults fill in for columns the sheet never carried.
	assert.Equal(t, "Planning", rec["status"].Str)
	assert.Equal(t, "Medium", rec["priority"].Str)
	assert.True(t, rec["start_date"].IsNull())
	assert.True(t, rec["end_date"].IsNull())
}

func TestMapRow_EmptyCellGetsDefault(t *testing.T) {
	mapper := importer.NewFieldMapper()

	rec, warnings := mapper.MapRow(importer.LevelTask, rawRow("Tasks", 3,
		"task_name", "Write docs",
		"status", "   ",
	))

	require.Empty(t, warnings)
	assert.Equal(t, "To Do", rec["status"].Str)
}

func TestMapRow_ConversionFailureYieldsNullAndWarning(t *testing.T) {
	mapper := importer.NewFieldMapper()

	rec, warnings := mapper.MapRow(importer.LevelProject, rawRow("Projects", 4,
		"name", "Apollo",
		"start_date", "sometime soon",
	))

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Projects row 4")
	assert.Contains(t, warnings[0], `"start_date"`)
	assert.True(t, rec["start_date"].IsNull())
	assert.Equal(t, "Apollo", rec["name"].Str)
}

func TestMapRow_DuplicateColumnFirstWins(t *testing.T) {
	mapper := importer.NewFieldMapper()

	rec, _ := mapper.MapRow(importer.LevelProject, rawRow("Projects", 2,
		"name", "First",
		"title", "Second",
	))

	assert.Equal(t, "First", rec["name"].Str)
}

func TestMapRow_UnmappedColumnsDeduplicated(t *testing.T) {
	mapper := importer.NewFieldMapper()

	for row := 2; row <= 4; row++ {
		mapper.MapRow(importer.LevelProject, rawRow("Projects", row,
			"name", "Apollo",
			"Internal Code", "X",
			"color", "red",
		))
	}
	mapper.MapRow(importer.LevelTask, rawRow("Tasks", 2,
		"task_name", "Write docs",
		"color", "blue",
	))

	unmapped := mapper.UnmappedColumns()
	assert.Equal(t, []string{"internal_code", "color"}, unmapped[importer.EntityProjects])
	assert.Equal(t, []string{"color"}, unmapped[importer.EntityTasks])
}

func TestMapRow_Idempotent(t *testing.T) {
	row := rawRow("Usecases", 2,
		"id", "UC1",
		"project_id", "P1",
		"usecase_name", "Checkout",
	)

	first, _ := importer.NewFieldMapper().MapRow(importer.LevelUsecase, row)
	second, _ := importer.NewFieldMapper().MapRow(importer.LevelUsecase, row)
	assert.Equal(t, first, second)
}

func TestConvertDate(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
	}{
		{"2024-03-04", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)},
		{"03/04/2024", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)},
		{"3/4/2024", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)},
		{"January 2, 2024", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"2 Jan 2024", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"2-Jan-2024", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		// Excel serial for 2023-03-15 in the 1900 date system.
		{"45000", time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			v, err := importer.ConvertDate(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, importer.KindDate, v.Kind)
			assert.True(t, tc.want.Equal(v.Date), "got %s", v.Date)
		})
	}

	_, err := importer.ConvertDate("sometime soon")
	require.Error(t, err)

	v, err := importer.ConvertDate("  ")
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestConvertNumber(t *testing.T) {
	cases := map[string]float64{
		"42":        42,
		"1,234.5":   1234.5,
		"$99":       99,
		"€2 500":    2500,
		"-12.25":    -12.25,
		"£1,000.00": 1000,
	}
	for raw, want := range cases {
		v, err := importer.ConvertNumber(raw)
		require.NoError(t, err, raw)
		assert.InDelta(t, want, v.Num, 0.001, raw)
	}

	_, err := importer.ConvertNumber("a lot")
	require.Error(t, err)
}

func TestConvertPercent(t *testing.T) {
	cases := map[string]float64{
		"75%":   0.75,
		"75":    0.75,
		"0.75":  0.75,
		"100":   1,
		"0.5":   0.5,
		"12.5%": 0.125,
	}
	for raw, want := range cases {
		v, err := importer.ConvertPercent(raw)
		require.NoError(t, err, raw)
		assert.InDelta(t, want, v.Num, 0.0001, raw)
	}

	_, err := importer.ConvertPercent("done")
	require.Error(t, err)
}

func TestSortedFields_ExcludesLinkage(t *testing.T) {
	rec := importer.Record{
		"name":                importer.String("Apollo"),
		"status":              importer.String("Planning"),
		importer.FieldExcelID: importer.String("P1"),
		importer.FieldOwner:   importer.String("alice"),
	}
	assert.Equal(t, []string{"name", "status"}, importer.SortedFields(rec))
}
