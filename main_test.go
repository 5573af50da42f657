package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	customerrors "cdr-analyzer/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `# normalized export
start,duration_seconds,caller,destination,status,ring_seconds,total_seconds
2025-03-14T09:00:00Z,600,101,0612345678,Answered,5,605
2025-03-14T09:02:00Z,300,102,0612345678,Answered,3,303
2025-03-14T09:04:00Z,0,101,0700000000,Unanswered,30,30
2025-03-14T09:05:00Z,3,103,0800000000,Answered,2,5
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAnalyze(t *testing.T) {
	path := writeFile(t, "march.csv", sampleCSV)

	tests := map[string]struct {
		args     []string
		contains []string
	}{
		"Text": {
			args: []string{"analyze", path},
			contains: []string{
				"Calls: 4",
				"Peak concurrent channels: 3 (first reached 2025-03-14T09:05:00Z)",
				"   1. 101 : 2",
				"== Short calls (< 5s) ==",
			},
		},
		"JSON": {
			args:     []string{"analyze", "--format", "json", path},
			contains: []string{`"peak": 3`, `"calls": 4`},
		},
		"CSV": {
			args: []string{"analyze", "--format=csv", path},
			contains: []string{
				"dataset,time,active_channels\n",
				path + ",2025-03-14T09:05:00Z,3\n",
				path + ",2025-03-14T09:10:00Z,0\n",
			},
		},
		"Timezone": {
			args:     []string{"analyze", "--timezone", "Asia/Tokyo", path},
			contains: []string{"  18:00 : 4"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestAnalyze_MultipleFilesKeepArgumentOrder(t *testing.T) {
	second := writeFile(t, "b.csv", "start,duration_seconds\n2025-04-01T08:00:00Z,60\n")
	first := writeFile(t, "a.csv", sampleCSV)

	out, err := execute(t, "analyze", second, first)
	require.NoError(t, err)

	i := strings.Index(out, "Dataset: "+second)
	j := strings.Index(out, "Dataset: "+first)
	require.GreaterOrEqual(t, i, 0)
	require.GreaterOrEqual(t, j, 0)
	assert.Less(t, i, j)
}

func TestAnalyze_EnvOverride(t *testing.T) {
	t.Setenv("CDR_FORMAT", "csv")
	path := writeFile(t, "march.csv", sampleCSV)

	out, err := execute(t, "analyze", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "dataset,time,active_channels\n"))
}

func TestAnalyze_Errors(t *testing.T) {
	bad := writeFile(t, "bad.csv", "start,duration_seconds\n2025-03-14T09:00:00Z,-3\n")

	_, err := execute(t, "analyze", bad)
	assert.ErrorIs(t, err, customerrors.ErrNegativeDuration)

	_, err = execute(t, "analyze", filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = execute(t, "analyze", "--format", "xml", bad)
	assert.ErrorContains(t, err, "format must be one of")

	_, err = execute(t, "analyze")
	assert.Error(t, err)
}
