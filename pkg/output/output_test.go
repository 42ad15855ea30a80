package output

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	gojson "github.com/goccy/go-json"
	"github.com/segmentio/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/bears/pkg/columnar"
	"github.com/ajitpratap0/bears/pkg/compression"
	"github.com/ajitpratap0/bears/pkg/errors"
)

func reportTable(t *testing.T) *columnar.Table {
	t.Helper()
	table, err := columnar.New(
		columnar.NewNumericColumn("CBSA09", []float64{28540, 46900}),
		columnar.NewTextColumn("CBSA_T", []string{"Ketchikan, AK", ""}, 1),
		columnar.NewNumericColumn("POP_CHANGE_PERCENT", []float64{-4.41, 0}, 1),
	)
	require.NoError(t, err)
	return table
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "csv", want: FormatCSV},
		{in: "", want: FormatCSV},
		{in: "JSON", want: FormatJSON},
		{in: "jsonl", want: FormatJSON},
		{in: "table", want: FormatTable},
		{in: "arrow", want: FormatArrow},
		{in: "Parquet", want: FormatParquet},
		{in: "xlsx", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCSVFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVFormatter(&buf).Format(reportTable(t)))
	assert.Equal(t,
		"CBSA09,CBSA_T,POP_CHANGE_PERCENT\n28540,\"Ketchikan, AK\",-4.41\n46900,,\n",
		buf.String())
}

func TestCSVFormatter_NoHeaderPrecision(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVFormatter(&buf, WithHeader(false), WithPrecision(1)).Format(reportTable(t)))
	assert.Equal(t, "28540.0,\"Ketchikan, AK\",-4.4\n46900.0,,\n", buf.String())
}

func TestCSVFormatter_ColumnFormat(t *testing.T) {
	upper := func(v columnar.Value) string { return strings.ToUpper(v.String()) }
	var buf bytes.Buffer
	require.NoError(t, NewCSVFormatter(&buf, WithHeader(false), WithPrecision(1),
		WithColumnFormat("CBSA_T", upper)).Format(reportTable(t)))
	assert.Equal(t, "28540.0,\"KETCHIKAN, AK\",-4.4\n46900.0,,\n", buf.String())
}

func TestCSVFormatter_Empty(t *testing.T) {
	table, err := columnar.Load([]string{"a", "b"}, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewCSVFormatter(&buf).Format(table))
	assert.Equal(t, "a,b\n", buf.String())

	buf.Reset()
	require.NoError(t, NewCSVFormatter(&buf, WithHeader(false)).Format(table))
	assert.Empty(t, buf.String())
}

func TestJSONFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(&buf).Format(reportTable(t)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `{"CBSA09":28540,"CBSA_T":"Ketchikan, AK","POP_CHANGE_PERCENT":-4.41}`, lines[0])

	var row map[string]interface{}
	require.NoError(t, gojson.Unmarshal([]byte(lines[1]), &row))
	assert.Equal(t, float64(46900), row["CBSA09"])
	assert.Nil(t, row["CBSA_T"])
	assert.Contains(t, row, "POP_CHANGE_PERCENT")
}

func TestJSONFormatter_Precision(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(&buf, WithPrecision(2)).Format(reportTable(t)))
	assert.True(t, strings.HasPrefix(buf.String(), `{"CBSA09":28540.00,`))
}

func TestTableFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(&buf).Format(reportTable(t)))

	out := buf.String()
	assert.Contains(t, out, "CBSA09")
	assert.Contains(t, out, "Ketchikan, AK")
	assert.Contains(t, out, "-4.41")
	assert.Contains(t, out, "+")
}

func readArrow(t *testing.T, data []byte) arrow.Record {
	t.Helper()
	r, err := ipc.NewFileReader(bytes.NewReader(data), ipc.WithAllocator(memory.NewGoAllocator()))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	require.Equal(t, 1, r.NumRecords())
	rec, err := r.Record(0)
	require.NoError(t, err)
	return rec
}

func TestArrowFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewArrowFormatter(&buf).Format(reportTable(t)))

	rec := readArrow(t, buf.Bytes())
	assert.Equal(t, int64(2), rec.NumRows())
	assert.Equal(t, "CBSA_T", rec.Schema().Field(1).Name)

	cbsa := rec.Column(0).(*array.Float64)
	assert.Equal(t, 28540.0, cbsa.Value(0))

	title := rec.Column(1).(*array.String)
	assert.Equal(t, "Ketchikan, AK", title.Value(0))
	assert.True(t, title.IsNull(1))

	change := rec.Column(2).(*array.Float64)
	assert.True(t, change.IsNull(1))
}

func readParquet(t *testing.T, data []byte) (*parquet.Schema, []parquet.Row) {
	t.Helper()
	pf, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	reader := parquet.NewReader(pf)
	defer func() { _ = reader.Close() }()

	var rows []parquet.Row
	buf := make([]parquet.Row, 8)
	for {
		n, err := reader.ReadRows(buf)
		for _, row := range buf[:n] {
			rows = append(rows, row.Clone())
		}
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	return pf.Schema(), rows
}

func TestParquetFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	f, err := New(FormatParquet, &buf)
	require.NoError(t, err)
	require.NoError(t, f.Format(reportTable(t)))

	schema, rows := readParquet(t, buf.Bytes())
	require.Len(t, rows, 2)

	index := make(map[string]int)
	for i, path := range schema.Columns() {
		index[path[0]] = i
	}
	require.Len(t, index, 3)

	cbsa, title, change := index["CBSA09"], index["CBSA_T"], index["POP_CHANGE_PERCENT"]
	assert.Equal(t, 28540.0, rows[0][cbsa].Double())
	assert.Equal(t, "Ketchikan, AK", string(rows[0][title].ByteArray()))
	assert.Equal(t, -4.41, rows[0][change].Double())
	assert.Equal(t, 46900.0, rows[1][cbsa].Double())
	assert.True(t, rows[1][title].IsNull())
	assert.True(t, rows[1][change].IsNull())
}

func TestWriteFile_Compressed(t *testing.T) {
	dir := t.TempDir()

	for _, alg := range []compression.Algorithm{compression.None, compression.Gzip, compression.Zstd, compression.LZ4} {
		t.Run(string(alg), func(t *testing.T) {
			path := filepath.Join(dir, "report.csv"+compression.Extension(alg))
			require.NoError(t, WriteFile(path, reportTable(t), FormatCSV,
				&compression.Config{Algorithm: alg, Level: compression.Default}, WithHeader(false)))

			f, err := os.Open(path)
			require.NoError(t, err)
			defer f.Close()
			r, err := compression.NewReader(f, compression.FromPath(path))
			require.NoError(t, err)
			defer r.Close()
			data, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, "28540,\"Ketchikan, AK\",-4.41\n46900,,\n", string(data))
		})
	}
}

func TestWriteFile_Errors(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "missing", "out.csv"), reportTable(t), FormatCSV, nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))

	err = WriteFile(filepath.Join(t.TempDir(), "out.x"), reportTable(t), "xlsx", nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}
