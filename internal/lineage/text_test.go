package lineage

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func header(name string) string {
	return "\nANALYZING: " + name + "\n" + strings.Repeat("=", 80) + "\n\n"
}

func TestRenderText(t *testing.T) {
	tests := []struct {
		name string
		res  *Result
		want string
	}{
		{
			name: "empty result",
			res:  &Result{},
			want: "",
		},
		{
			name: "base table root",
			res:  NewResult(table("DB.S.T")),
			want: header("DB.S.T") + "This is a BASE TABLE - No dependencies\n",
		},
		{
			name: "base table root ignores sources",
			res:  NewResult(table("DB.S.T", view("DB.S.X"))),
			want: header("DB.S.T") + "This is a BASE TABLE - No dependencies\n",
		},
		{
			name: "view root without sources",
			res:  NewResult(view("DB.S.V")),
			want: header("DB.S.V") + "No dependencies found\n",
		},
		{
			name: "loop root is not expanded",
			res:  NewResult(loop("DB.S.L", table("DB.S.T"))),
			want: header("DB.S.L") + "DEPENDENCIES:\n\n",
		},
		{
			name: "unknown root without sources lists no dependencies",
			res:  NewResult(unknown("DB.S.U")),
			want: header("DB.S.U") + "DEPENDENCIES:\n\n",
		},
		{
			name: "nested tree",
			res:  deepTree(),
			want: header("DB.S.V") +
				"DEPENDENCIES:\n\n" +
				"├── [VIEW] A\n" +
				"│   ├── [TABLE] T1\n" +
				"│   └── [VIEW] B\n" +
				"│       └── [TABLE] T2\n" +
				"└── [TABLE] T3\n",
		},
		{
			name: "unknown kinds get a neutral tag and are followed",
			res:  NewResult(view("DB.S.V", unknown("DB.S.U", table("DB.S.T")))),
			want: header("DB.S.V") +
				"DEPENDENCIES:\n\n" +
				"└── [?] U\n" +
				"    └── [TABLE] T\n",
		},
		{
			name: "nested loop renders as a leaf",
			res:  NewResult(view("DB.S.V", loop("DB.S.V", table("DB.S.NEVER")))),
			want: header("DB.S.V") +
				"DEPENDENCIES:\n\n" +
				"└── [?] V\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderText(tt.res))
		})
	}
}

func TestRenderText_OrdersCycle(t *testing.T) {
	res := mustDecode(t, ordersFixture)

	want := header("DB.S.ORDERS") +
		"DEPENDENCIES:\n\n" +
		"├── [TABLE] RAW_ORDERS\n" +
		"└── [?] ORDERS\n"
	assert.Equal(t, want, RenderText(res))
}

func TestRenderText_Deterministic(t *testing.T) {
	res := deepTree()
	first := RenderText(res)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, RenderText(res))
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, deepTree()))
	assert.Equal(t, RenderText(deepTree()), buf.String())
}
