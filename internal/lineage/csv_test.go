package lineage

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPaths(t *testing.T) {
	paths := ExtractPaths(deepTree())

	require.Len(t, paths, 3)
	assert.Equal(t, []string{"DB.S.V", "DB.S.A", "DB.S.T1"}, paths[0].Names())
	assert.Equal(t, []string{"DB.S.V", "DB.S.A", "DB.S.B", "DB.S.T2"}, paths[1].Names())
	assert.Equal(t, []string{"DB.S.V", "DB.S.T3"}, paths[2].Names())
	assert.Equal(t, KindTable, paths[1][3].Kind)
}

func TestExtractPaths_RowsEqualLeaves(t *testing.T) {
	tests := []struct {
		name   string
		res    *Result
		leaves int
	}{
		{"single table", NewResult(table("T")), 1},
		{"view without sources", NewResult(view("V")), 1},
		{"loop with sources", NewResult(view("V", loop("V", table("X"), table("Y")))), 1},
		{"table with sources", NewResult(view("V", table("T", table("X"), table("Y")))), 1},
		{"deep tree", deepTree(), 3},
		{"shared dependency counted per occurrence", NewResult(view("V",
			view("A", table("SHARED")),
			view("B", table("SHARED")),
		)), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paths := ExtractPaths(tt.res)
			assert.Len(t, paths, tt.leaves)
			assert.Equal(t, tt.leaves, Summarize(tt.res).Leaves)

			_, rows := Tabulate(paths)
			assert.Len(t, rows, tt.leaves)
			for _, row := range rows {
				assert.Equal(t, tt.res.RootName(), row[0])
			}
		})
	}
}

func TestExtractPaths_Empty(t *testing.T) {
	assert.Empty(t, ExtractPaths(&Result{}))
}

func TestTabulate(t *testing.T) {
	header, rows := Tabulate(ExtractPaths(deepTree()))

	assert.Equal(t, []string{
		"Analyzed Object", "Level 1 Source", "Level 2 Source", "Level 3 Source", "Table",
	}, header)
	assert.Equal(t, [][]string{
		{"DB.S.V", "DB.S.A", "DB.S.T1", "", "DB.S.T1"},
		{"DB.S.V", "DB.S.A", "DB.S.B", "DB.S.T2", "DB.S.T2"},
		{"DB.S.V", "DB.S.T3", "", "", "DB.S.T3"},
	}, rows)
}

func TestTabulate_NoPaths(t *testing.T) {
	header, rows := Tabulate(nil)
	assert.Equal(t, []string{"Analyzed Object", "Table"}, header)
	assert.Empty(t, rows)
}

func TestWriteCSV_Orders(t *testing.T) {
	got := RenderCSV(mustDecode(t, ordersFixture))

	want := `"Analyzed Object","Level 1 Source","Table"` + "\n" +
		`"DB.S.ORDERS","DB.S.RAW_ORDERS","DB.S.RAW_ORDERS"` + "\n" +
		`"DB.S.ORDERS","DB.S.ORDERS","DB.S.ORDERS"` + "\n"
	assert.Equal(t, want, got)
}

func TestWriteCSV_BaseTable(t *testing.T) {
	got := RenderCSV(mustDecode(t, `{"DB.S.T": {"kind": "TABLE", "sources": []}}`))

	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"Analyzed Object","Table"`, lines[0])
	assert.Equal(t, `"DB.S.T","DB.S.T"`, lines[1])
}

func TestWriteCSV_ViewWithoutSources(t *testing.T) {
	got := RenderCSV(NewResult(view("DB.S.V")))
	assert.Equal(t, `"Analyzed Object","Table"`+"\n"+`"DB.S.V","DB.S.V"`+"\n", got)
}

func TestWriteCSV_Empty(t *testing.T) {
	assert.Equal(t, `"Analyzed Object","Table"`+"\n", RenderCSV(&Result{}))
}

func TestWriteCSV_EscapesQuotes(t *testing.T) {
	got := RenderCSV(NewResult(view(`DB.S."Odd, Name"`, table("DB.S.T"))))
	assert.Contains(t, got, `"DB.S.""Odd, Name""","DB.S.T","DB.S.T"`)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteCSV_PropagatesWriteErrors(t *testing.T) {
	err := WriteCSV(failingWriter{}, deepTree())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
