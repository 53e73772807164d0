package main

import (
	"fmt"
	"io"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/vkngwrapper/brk/heap"
	"github.com/vkngwrapper/brk/memutils/segment"
)

var (
	runCount    uint
	runLimit    uint
	runMapped   bool
	runStats    bool
	runDetailed bool
)

func init() {
	rootCmd.AddCommand(newRunCmd())
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Allocate two int arrays, fill one and print both",
		Long: `The run command allocates two arrays of --count ints from a fresh heap,
reports whether the first allocation succeeded, writes 0..count-1 into the
first array and prints both arrays.

Example:
  brkdemo run
  brkdemo run --count 100 --stats
  brkdemo run --mapped --limit 1048576 --detailed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.OutOrStdout())
		},
	}

	cmd.Flags().UintVar(&runCount, "count", 10, "Number of ints in each array")
	cmd.Flags().UintVar(&runLimit, "limit", 64<<20, "Maximum size of the heap in bytes")
	cmd.Flags().BoolVar(&runMapped, "mapped", false, "Back the heap with reserved virtual memory instead of a Go buffer")
	cmd.Flags().BoolVar(&runStats, "stats", false, "Print heap statistics as json when done")
	cmd.Flags().BoolVar(&runDetailed, "detailed", false, "Include every block in the statistics (implies --stats)")
	return cmd
}

func newSegment() (segment.Segment, error) {
	if runMapped {
		return segment.NewMapped(runLimit)
	}
	return segment.NewSlice(runLimit), nil
}

func runDemo(out io.Writer) error {
	seg, err := newSegment()
	if err != nil {
		return errors.Wrap(err, "failed to create heap segment")
	}

	h, err := heap.New(newLogger(), seg, heap.CreateOptions{})
	if err != nil {
		return errors.Wrap(err, "failed to create heap")
	}

	intSize := uint(unsafe.Sizeof(int(0)))
	p, pErr := h.Allocate(runCount * intSize)
	q, qErr := h.Allocate(runCount * intSize)

	if p == nil {
		fmt.Fprintln(out, "FAIL.")
	} else {
		fmt.Fprintln(out, "SUCCESS.")
	}

	if pErr != nil || qErr != nil {
		releaseErr := h.Release()
		return errors.CombineErrors(errors.CombineErrors(pErr, qErr), releaseErr)
	}

	if runCount > 0 {
		pInts := unsafe.Slice((*int)(p), runCount)
		for i := range pInts {
			pInts[i] = i
			fmt.Fprintf(out, "p[%d] = %d\n", i, pInts[i])
		}

		for i, value := range unsafe.Slice((*int)(q), runCount) {
			fmt.Fprintf(out, "q[%d] = %d\n", i, value)
		}
	}

	if runStats || runDetailed {
		fmt.Fprintln(out, h.BuildStatsString(runDetailed))
	}

	h.Deallocate(q)
	h.Deallocate(p)
	return h.Release()
}
