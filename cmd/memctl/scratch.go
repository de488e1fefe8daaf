package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/joshuapare/memkit/alloc"
	"github.com/joshuapare/memkit/cmd/memctl/logger"
)

var (
	scratchSize    int
	scratchOps     int
	scratchSeed    uint64
	scratchMaxSize int
)

func init() {
	cmd := newScratchCmd()
	cmd.Flags().IntVar(&scratchSize, "size", 4096, "Ring size in bytes")
	cmd.Flags().IntVar(&scratchOps, "ops", 10000, "Number of random operations")
	cmd.Flags().Uint64Var(&scratchSeed, "seed", 1, "Random seed")
	cmd.Flags().IntVar(&scratchMaxSize, "max-alloc", 256, "Largest request in bytes")
	rootCmd.AddCommand(cmd)
}

func newScratchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scratch",
		Short: "Randomized scratch ring workload",
		Long: `The scratch command allocates and frees random short-lived blocks from a
scratch ring, mostly in allocation order, and reports how often the ring
had to fall back to the heap.

Example:
  memctl scratch
  memctl scratch --size 65536 --ops 1000000 --max-alloc 1024`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runScratch(scratchOptions{
				Size:    scratchSize,
				Ops:     scratchOps,
				Seed:    scratchSeed,
				MaxSize: scratchMaxSize,
			})
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(res)
			}
			printScratch(res)
			return nil
		},
	}
}

type scratchOptions struct {
	Size    int
	Ops     int
	Seed    uint64
	MaxSize int
}

// ScratchResult summarizes a scratch run.
type ScratchResult struct {
	Capacity    int `json:"capacity"`
	Ops         int `json:"ops"`
	Allocations int `json:"allocations"`
	Fallbacks   int `json:"fallbacks"`
	PeakInUse   int `json:"peak_in_use"`
	FinalInUse  int `json:"final_in_use"`
}

func runScratch(opts scratchOptions) (ScratchResult, error) {
	if opts.MaxSize <= 0 || opts.Ops < 0 {
		return ScratchResult{}, fmt.Errorf("--max-alloc must be > 0 and --ops >= 0")
	}
	heap := alloc.NewChecked(alloc.DefaultHeap())
	s, err := alloc.NewScratch(heap, opts.Size)
	if err != nil {
		return ScratchResult{}, err
	}

	type block struct {
		b    []byte
		seed byte
	}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed+1))
	var live []block
	res := ScratchResult{Capacity: s.Stats().Capacity, Ops: opts.Ops}

	release := func(j int) error {
		blk := live[j]
		for _, c := range blk.b {
			if c != blk.seed {
				return fmt.Errorf("allocation of %d bytes was overwritten", len(blk.b))
			}
		}
		s.Deallocate(blk.b)
		live = append(live[:j], live[j+1:]...)
		return nil
	}

	for i := range opts.Ops {
		if len(live) > 0 && rng.IntN(2) == 0 {
			j := 0
			if rng.IntN(8) == 0 {
				j = rng.IntN(len(live))
			}
			if err := release(j); err != nil {
				return res, err
			}
			continue
		}
		size := 1 + rng.IntN(opts.MaxSize)
		b := s.Allocate(size, 1<<rng.IntN(4))
		if b == nil {
			return res, fmt.Errorf("op %d: %w", i, alloc.ErrOutOfMemory)
		}
		seed := byte(i)
		for j := range b {
			b[j] = seed
		}
		live = append(live, block{b, seed})
		res.Allocations++
		res.PeakInUse = max(res.PeakInUse, s.AllocatedTotal())
	}
	for len(live) > 0 {
		if err := release(0); err != nil {
			return res, err
		}
	}

	st := s.Stats()
	res.Fallbacks = st.Fallbacks
	res.FinalInUse = st.InUse
	s.Destroy()
	if n := heap.CurrentAlloc(); n != 0 {
		return res, fmt.Errorf("scratch leaked %d bytes", n)
	}
	logger.Info("scratch done", "allocations", res.Allocations, "fallbacks", res.Fallbacks)
	return res, nil
}

func printScratch(res ScratchResult) {
	printInfo("Ring size:    %s\n", formatBytes(res.Capacity))
	printInfo("Operations:   %s\n", formatCount(res.Ops))
	printInfo("Allocations:  %s\n", formatCount(res.Allocations))
	printInfo("Fallbacks:    %s\n", formatCount(res.Fallbacks))
	printInfo("Peak in use:  %s\n", formatBytes(res.PeakInUse))
	printInfo("Final in use: %s\n", formatBytes(res.FinalInUse))
}
