package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/bears/pkg/columnar"
	"github.com/ajitpratap0/bears/pkg/errors"
)

func TestFuncs(t *testing.T) {
	col := columnar.NewColumn("v", []string{"1", "", "3", "-2", ""})

	tests := []struct {
		name string
		fn   Func
		rows []int
		want columnar.Value
	}{
		{"count includes missing", Count, []int{0, 1, 2}, columnar.Number(3)},
		{"sum skips missing", Sum, []int{0, 1, 2}, columnar.Number(4)},
		{"sum of nothing is zero", Sum, []int{1, 4}, columnar.Number(0)},
		{"mean skips missing", Mean, []int{0, 1, 2}, columnar.Number(2)},
		{"mean of nothing is missing", Mean, []int{1, 4}, columnar.Missing()},
		{"min", Min, []int{0, 2, 3}, columnar.Number(-2)},
		{"min of nothing is missing", Min, []int{4}, columnar.Missing()},
		{"max", Max, []int{0, 1, 2, 3}, columnar.Number(3)},
		{"max of nothing is missing", Max, []int{1}, columnar.Missing()},
		{"first skips leading missing", First, []int{1, 2, 0}, columnar.Number(3)},
		{"first of nothing is missing", First, []int{1, 4}, columnar.Missing()},
		{"last skips trailing missing", Last, []int{0, 3, 4}, columnar.Number(-2)},
		{"last of nothing is missing", Last, []int{4, 1}, columnar.Missing()},
		{"empty group count", Count, nil, columnar.Number(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn(col, tt.rows))
		})
	}
}

func TestFirst_Text(t *testing.T) {
	col := columnar.NewColumn("CBSA_T", []string{"", "Ketchikan, AK", "Other"})
	assert.Equal(t, columnar.Text("Ketchikan, AK"), First(col, []int{0, 1, 2}))
	assert.Equal(t, columnar.Text("Other"), Last(col, []int{0, 1, 2}))
}

func TestParseSpec(t *testing.T) {
	tests := []struct {
		in      string
		want    Spec
		wantErr bool
	}{
		{in: "POP00:sum", want: Spec{Column: "POP00", Kind: KindSum}},
		{in: "POP10:AVG:avg10", want: Spec{Column: "POP10", Kind: KindMean, As: "avg10"}},
		{in: "POP10", wantErr: true},
		{in: ":sum", wantErr: true},
		{in: "a:b:c:d", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSpec(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSpec_OutputName(t *testing.T) {
	assert.Equal(t, "v", Spec{Column: "v", Kind: KindSum}.OutputName())
	assert.Equal(t, "total", Spec{Column: "v", Kind: KindSum, As: "total"}.OutputName())
}

func TestCompile(t *testing.T) {
	table, err := columnar.Load(
		[]string{"k", "title", "v"},
		[][]string{{"A", "x", "1"}, {"A", "y", "2"}, {"B", "z", "3"}},
	)
	require.NoError(t, err)

	t.Run("applies specs in order", func(t *testing.T) {
		agg, err := Compile(table, []Spec{
			{Column: "v", Kind: KindSum},
			{Column: "v", Kind: KindMean, As: "avg"},
			{Column: "title", Kind: KindCount, As: "n"},
			{Column: "title", Kind: KindFirst},
		})
		require.NoError(t, err)

		got := agg.Apply([]int{0, 1})
		assert.Equal(t, []columnar.Value{
			columnar.Number(3),
			columnar.Number(1.5),
			columnar.Number(2),
			columnar.Text("x"),
		}, got)
		assert.Equal(t, columnar.TypeNumeric, agg.OutputType(0))
		assert.Equal(t, columnar.TypeText, agg.OutputType(3))
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := Compile(table, []Spec{{Column: "nope", Kind: KindSum}})
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := Compile(table, []Spec{{Column: "v", Kind: "median"}})
		assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	})

	t.Run("numeric aggregate on text column", func(t *testing.T) {
		_, err := Compile(table, []Spec{{Column: "title", Kind: KindSum}})
		assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	})
}

func TestApply(t *testing.T) {
	table, err := columnar.Load([]string{"v"}, [][]string{{"2"}, {"4"}})
	require.NoError(t, err)

	got, err := Apply(table, []int{0, 1}, []Spec{{Column: "v", Kind: KindMax}})
	require.NoError(t, err)
	assert.Equal(t, []columnar.Value{columnar.Number(4)}, got)
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	rangeFn := func(col *columnar.Column, rows []int) columnar.Value {
		lo, okLo := Min(col, rows).Float()
		hi, okHi := Max(col, rows).Float()
		if !okLo || !okHi {
			return columnar.Missing()
		}
		return columnar.Number(hi - lo)
	}
	require.NoError(t, r.Register("range", rangeFn, true))
	assert.Error(t, r.Register("range", rangeFn, true))
	assert.Contains(t, r.Kinds(), "range")

	table, err := columnar.Load([]string{"v"}, [][]string{{"2"}, {"9"}, {"5"}})
	require.NoError(t, err)

	agg, err := r.Compile(table, []Spec{{Column: "v", Kind: "range"}})
	require.NoError(t, err)
	assert.Equal(t, []columnar.Value{columnar.Number(7)}, agg.Apply([]int{0, 1, 2}))
}

func TestRegistry_SourceTyped(t *testing.T) {
	r := NewRegistry()
	longest := func(col *columnar.Column, rows []int) columnar.Value {
		best := columnar.Missing()
		for _, row := range rows {
			if v := col.Value(row); !v.IsMissing() && len(v.String()) > len(best.String()) {
				best = v
			}
		}
		return best
	}
	require.NoError(t, r.Register("longest", longest, false, SourceTyped()))
	require.NoError(t, r.Register("longest_numeric", longest, false))

	table, err := columnar.Load([]string{"title"}, [][]string{{"Vernon"}, {"Ketchikan, AK"}, {""}})
	require.NoError(t, err)

	agg, err := r.Compile(table, []Spec{
		{Column: "title", Kind: "longest"},
		{Column: "title", Kind: "longest_numeric", As: "n"},
	})
	require.NoError(t, err)
	assert.Equal(t, columnar.TypeText, agg.OutputType(0))
	assert.Equal(t, columnar.TypeNumeric, agg.OutputType(1))
	assert.Equal(t, columnar.Text("Ketchikan, AK"), agg.Apply([]int{0, 1, 2})[0])
}

func TestKinds(t *testing.T) {
	assert.Equal(t, []string{"count", "first", "last", "max", "mean", "min", "sum"}, Kinds())
}
