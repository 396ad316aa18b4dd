package parse

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, files map[string][]string) []byte {
	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)
	for filename, content := range files {
		f, err := w.Create(filename)
		require.NoError(t, err)
		_, err = f.Write([]byte(strings.Join(content, "\n")))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return buf.Bytes()
}

func sourceFromFiles(files map[string]string) Source {
	fsys := fstest.MapFS{}
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return FS(fsys)
}

func readAll(t *testing.T, src Source, name string, minFields int) ([][]string, error) {
	records := [][]string{}
	err := ReadTable(src, name, minFields, func(r []string) {
		records = append(records, r)
	})
	return records, err
}

func TestReadTable(t *testing.T) {
	for _, tc := range []struct {
		name      string
		content   string
		minFields int
		expected  [][]string
	}{
		{
			"header only",
			"a,b,c",
			3,
			[][]string{},
		},
		{
			"empty file",
			"",
			3,
			[][]string{},
		},
		{
			"trailing empty fields kept",
			"a,b,c\n1,,\n2,x,",
			3,
			[][]string{{"1", "", ""}, {"2", "x", ""}},
		},
		{
			"short rows dropped",
			"a,b,c\n1,2,3\n4,5\n6\n7,8,9,10",
			3,
			[][]string{{"1", "2", "3"}, {"7", "8", "9", "10"}},
		},
		{
			"no trimming",
			"a,b\n x , y ",
			2,
			[][]string{{" x ", " y "}},
		},
		{
			"quotes are not special",
			"a,b\n1,\"Stop, North\"",
			2,
			[][]string{{"1", "\"Stop", " North\""}},
		},
		{
			"unbalanced quote only affects its own row",
			"a,b,c\n1,\"broken,x\n2,ok,y\n3,ok,z\n",
			3,
			[][]string{{"1", "\"broken", "x"}, {"2", "ok", "y"}, {"3", "ok", "z"}},
		},
		{
			"malformed row between valid rows",
			"a,b,c\n1,ok,x\n\"\"bad\"\n2,ok,y\n",
			3,
			[][]string{{"1", "ok", "x"}, {"2", "ok", "y"}},
		},
		{
			"byte order mark",
			"\uFEFFa,b\n1,2",
			2,
			[][]string{{"1", "2"}},
		},
		{
			"crlf line endings",
			"a,b\r\n1,2\r\n3,4\r\n",
			2,
			[][]string{{"1", "2"}, {"3", "4"}},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			src := sourceFromFiles(map[string]string{"t.txt": tc.content})
			records, err := readAll(t, src, "t.txt", tc.minFields)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, records)
		})
	}
}

func TestReadTableMissing(t *testing.T) {
	src := sourceFromFiles(map[string]string{})

	records, err := readAll(t, src, "missing.txt", 1)
	assert.ErrorIs(t, err, ErrTableUnavailable)
	assert.Empty(t, records)
}

func TestZipSource(t *testing.T) {
	src, err := Zip(buildZip(t, map[string][]string{
		"stops.txt":        {"stop_id,a,b,c,d,parent_station", "s1,,,,,p1"},
		"nested/trips.txt": {"route_id,service_id,trip_id,a,b", "r,sv,t,,"},
	}))
	require.NoError(t, err)

	records, err := readAll(t, src, "stops.txt", 6)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"s1", "", "", "", "", "p1"}}, records)

	// Subdirectories are flattened
	records, err = readAll(t, src, "trips.txt", 5)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"r", "sv", "t", "", ""}}, records)

	_, err = readAll(t, src, "calendar.txt", 1)
	assert.ErrorIs(t, err, ErrTableUnavailable)

	_, err = Zip([]byte("not a zip"))
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stops.txt"), []byte("h\nx,,,,,p"), 0644))

	src, err := Open(dir)
	require.NoError(t, err)
	stops, err := ParseStops(src)
	require.NoError(t, err)
	assert.Len(t, stops, 1)

	zipPath := filepath.Join(t.TempDir(), "feed.zip")
	require.NoError(t, os.WriteFile(zipPath, buildZip(t, map[string][]string{
		"stops.txt": {"h", "y,,,,,q"},
	}), 0644))

	src, err = Open(zipPath)
	require.NoError(t, err)
	stops, err = ParseStops(src)
	require.NoError(t, err)
	require.Len(t, stops, 1)
	assert.Equal(t, "y", stops[0].ID)

	_, err = Open(filepath.Join(dir, "nope"))
	assert.Error(t, err)
}
