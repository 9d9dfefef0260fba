package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/aria-lang/seqalign/internal/aligner"
	"github.com/aria-lang/seqalign/internal/alignment"
	"github.com/aria-lang/seqalign/internal/batch"
	"github.com/aria-lang/seqalign/internal/profiler"
	"github.com/aria-lang/seqalign/internal/scoring"
	"github.com/aria-lang/seqalign/internal/sequence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRegion(t *testing.T) {
	tests := []struct {
		region     string
		ref        string
		start, end int
		wantErr    bool
	}{
		{region: "ref1:100-200", ref: "ref1", start: 99, end: 199},
		{region: "chr1:1-1", ref: "chr1", start: 0, end: 0},
		{region: "NC_1:v2:5-9", ref: "NC_1:v2", start: 4, end: 8},
		{region: "ref1", wantErr: true},
		{region: ":1-2", wantErr: true},
		{region: "ref1:0-5", wantErr: true},
		{region: "ref1:9-5", wantErr: true},
		{region: "ref1:a-5", wantErr: true},
		{region: "ref1:5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.region, func(t *testing.T) {
			ref, start, end, err := parseRegion(tt.region)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ref, ref)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestListFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	for _, name := range []string{"a.fq", "b.fasta.gz", "sub/c.fa", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(">x\nA\n"), 0644))
	}

	files, err := listFiles(dir, regexp.MustCompile(`\.(f[aq](st[aq])?|fna)(.gz)?$`), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.fq"),
		filepath.Join(dir, "b.fasta.gz"),
		filepath.Join(dir, "sub", "c.fa"),
	}, files)
}

func TestReadSeqs(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.fa")
	b := filepath.Join(dir, "b.fq")
	require.NoError(t, os.WriteFile(a, []byte(">s1\nACGT\n>s2\nGGCC\n"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("@s3\nTTAA\n+\nIIII\n"), 0644))

	reads, err := readSeqs([]string{a, b})
	require.NoError(t, err)
	require.Len(t, reads, 3)
	assert.Equal(t, "s3", reads[2].Name)
	assert.Equal(t, []int{40, 40, 40, 40}, reads[2].Qual)
}

func TestWriteResult(t *testing.T) {
	ref := sequence.MustNew("ref", "ACGTACGTAC", nil)
	read := sequence.MustNew("read", "ACGTTCGTAC", nil)

	a := aligner.New(20, scoring.Default(), profiler.DefaultOptions())
	require.NoError(t, a.Align(ref, read, alignment.Global))
	res := batch.Result{Read: read, Ref: ref, Comparison: a.Profile(), Pair: a.Pair()}

	var buf bytes.Buffer
	writeHeader(&buf)
	require.NoError(t, writeResult(&buf, &res, false))
	require.NoError(t, writeResult(&buf, &batch.Result{Read: read}, false))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	header := strings.Split(lines[0], "\t")
	row := strings.Split(lines[1], "\t")
	require.Len(t, row, len(header))
	assert.Equal(t, []string{"read", "10", "ref", "10", "16", "9", "0", "1"}, row[:8])
	assert.Equal(t, "4=1X5=", row[len(row)-1])
	assert.Len(t, strings.Split(lines[2], "\t"), len(header))
	assert.True(t, strings.HasPrefix(lines[2], "read\t10\t*\t"))

	buf.Reset()
	require.NoError(t, writeResult(&buf, &res, true))
	var out jsonResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "ref", out.Ref)
	require.NotNil(t, out.Comparison)
	assert.Equal(t, 16, out.Comparison.Score)
}
