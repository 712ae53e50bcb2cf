package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/arbor/pkg/arbor/types"
	"github.com/jamesainslie/arbor/pkg/arbor/view"
	"github.com/jamesainslie/arbor/pkg/arbor/walker"
)

// sampleResult builds a small four-row tree:
//
//	root/
//	├── sub/
//	│   └── inner
//	└── tail
func sampleResult() *Result {
	return &Result{
		Rows: []view.Row{
			{
				Depth: 0, IsLast: true,
				Entry:   types.Entry{Path: "/tmp/root", Name: "root", Kind: types.KindDir},
				AggSize: 300, FileCount: 2, DirCount: 1,
			},
			{
				Depth: 1, IsLast: false,
				Entry:   types.Entry{Path: "/tmp/root/sub", Name: "sub", Kind: types.KindDir},
				AggSize: 200, FileCount: 1, DirCount: 0,
			},
			{
				Depth: 2, IsLast: true,
				Entry:   types.Entry{Path: "/tmp/root/sub/inner", Name: "inner", Kind: types.KindFile},
				AggSize: 200, FileCount: 1,
			},
			{
				Depth: 1, IsLast: true,
				Entry:   types.Entry{Path: "/tmp/root/tail", Name: "tail", Kind: types.KindFile},
				AggSize: 100, FileCount: 1,
			},
		},
		Root:   "/tmp/root",
		ScanID: "test-scan-id",
		Stats: walker.Stats{
			DirsScanned:  2,
			FilesScanned: 2,
			BytesScanned: 300,
			Elapsed:      5 * time.Millisecond,
		},
	}
}

func TestRegistryKnownFormatters(t *testing.T) {
	for _, name := range []string{"tree", "plain", "json", "jsonl", "yaml"} {
		f, err := Get(name)
		require.NoError(t, err, name)
		assert.NotNil(t, f)
	}
}

func TestRegistryUnknownFormatter(t *testing.T) {
	_, err := Get("carrier-pigeon")
	assert.ErrorContains(t, err, "unknown formatter")
}

func TestRegistryAvailableIsSorted(t *testing.T) {
	names := Available()
	assert.Contains(t, names, "tree")
	assert.IsNonDecreasing(t, names)
}

func TestTreeFormatterGlyphs(t *testing.T) {
	f := &TreeFormatter{NoColor: true}
	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, sampleResult()))

	lines := strings.Split(buf.String(), "\n")
	require.GreaterOrEqual(t, len(lines), 4)

	assert.Contains(t, lines[0], "root/")
	assert.NotContains(t, lines[0], "├")

	assert.Contains(t, lines[1], "├── sub/")
	assert.Contains(t, lines[2], "│   └── inner")
	assert.Contains(t, lines[3], "└── tail")
}

func TestTreeFormatterSummary(t *testing.T) {
	f := &TreeFormatter{NoColor: true}
	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, sampleResult()))

	assert.Contains(t, buf.String(), "2 files, 1 directories")
}

func TestTreeFormatterErrorMarker(t *testing.T) {
	r := sampleResult()
	r.Rows[1].Err = types.ErrPermission
	r.Errors = []types.ScanError{{Path: "/tmp/root/sub", Kind: types.ErrPermission}}

	f := &TreeFormatter{NoColor: true}
	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, r))

	assert.Contains(t, buf.String(), "["+types.ErrPermission.String()+"]")
	assert.Contains(t, buf.String(), "1 entries could not be read")
}

func TestTreeFormatterSymlinkTarget(t *testing.T) {
	r := sampleResult()
	r.Rows[3].Entry.Kind = types.KindSymlink
	r.Rows[3].Entry.LinkTarget = "../elsewhere"

	f := &TreeFormatter{NoColor: true}
	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, r))

	assert.Contains(t, buf.String(), "tail -> ../elsewhere")
}

func TestPlainFormatter(t *testing.T) {
	f := &PlainFormatter{}
	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, sampleResult()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "SIZE")
	assert.Contains(t, lines[0], "PATH")
	assert.Contains(t, lines[1], "/tmp/root")
	assert.Contains(t, lines[3], "/tmp/root/sub/inner")
}

func TestJSONFormatter(t *testing.T) {
	f := &JSONFormatter{}
	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, sampleResult()))

	var out jsonOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	require.Len(t, out.Rows, 4)
	assert.Equal(t, "/tmp/root", out.Rows[0].Path)
	assert.Equal(t, "dir", out.Rows[0].Kind)
	assert.Equal(t, int64(300), out.Rows[0].Size)
	assert.Equal(t, "test-scan-id", out.Meta.ScanID)
	assert.Equal(t, int64(2), out.Stats.DirsScanned)
}

func TestJSONLFormatterOneObjectPerLine(t *testing.T) {
	f := &JSONLFormatter{}
	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, sampleResult()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	for _, line := range lines {
		var row jsonRow
		require.NoError(t, json.Unmarshal([]byte(line), &row))
	}
}

func TestYAMLFormatter(t *testing.T) {
	f := &YAMLFormatter{}
	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, sampleResult()))

	var out yamlOutput
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &out))

	require.Len(t, out.Rows, 4)
	assert.Equal(t, "root", out.Rows[0].Name)
	assert.Equal(t, "/tmp/root", out.Meta.Root)
}

func TestResultSizeSelection(t *testing.T) {
	row := view.Row{AggSize: 100, AggPhysical: 4096}

	r := &Result{}
	assert.Equal(t, int64(100), r.size(row))

	r.ShowPhysical = true
	assert.Equal(t, int64(4096), r.size(row))
}

func TestResultUnitSelection(t *testing.T) {
	r := &Result{}
	assert.Contains(t, r.formatSize(2048), "KiB")

	r.Unit = UnitSI
	assert.Contains(t, r.formatSize(2000), "kB")
}
