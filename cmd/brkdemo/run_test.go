package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func executeDemo(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Reset flags
	verbose = false
	runCount = 10
	runLimit = 64 << 20
	runMapped = false
	runStats = false
	runDetailed = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"run"}, args...))
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return out.String(), err
}

func TestRunCommand(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		count       int
		wantContain []string
		wantErr     bool
	}{
		{
			name:        "defaults",
			count:       10,
			wantContain: []string{"SUCCESS.", "p[9] = 9", "q[9] = 0"},
		},
		{
			name:        "mapped",
			args:        []string{"--mapped", "--count", "3"},
			count:       3,
			wantContain: []string{"SUCCESS.", "p[2] = 2", "q[2] = 0"},
		},
		{
			name:        "zero count",
			args:        []string{"--count", "0"},
			wantContain: []string{"FAIL."},
		},
		{
			name:        "heap too small",
			args:        []string{"--limit", "16"},
			wantContain: []string{"FAIL."},
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := executeDemo(t, tt.args...)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			for _, want := range tt.wantContain {
				require.Contains(t, output, want)
			}
			require.Equal(t, tt.count, strings.Count(output, "p["))
			require.Equal(t, tt.count, strings.Count(output, "q["))
		})
	}
}

func TestRunCommandStats(t *testing.T) {
	output, err := executeDemo(t, "--count", "4", "--detailed")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(output), "\n")
	require.Equal(t, "SUCCESS.", lines[0])
	for i := 0; i < 4; i++ {
		require.Equal(t, fmt.Sprintf("p[%d] = %d", i, i), lines[1+i])
	}

	var stats struct {
		Total struct {
			BlockCount      int
			AllocationCount int
		}
		Blocks []struct {
			Size int
			Tag  string
		}
	}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &stats))
	require.Equal(t, 2, stats.Total.BlockCount)
	require.Equal(t, 2, stats.Total.AllocationCount)
	require.Len(t, stats.Blocks, 2)
	require.Equal(t, "TagGrown", stats.Blocks[1].Tag)
}
