package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/memkit/alloc"
	"github.com/joshuapare/memkit/alloc/pool"
	"github.com/joshuapare/memkit/cmd/memctl/logger"
)

var (
	poolBlock  int
	poolPage   int
	poolCycles int
	poolBlocks int
	poolLookup string
)

func init() {
	cmd := newPoolCmd()
	cmd.Flags().IntVar(&poolBlock, "block", 16, "Block size in bytes")
	cmd.Flags().IntVar(&poolPage, "page", 256, "Blocks per page")
	cmd.Flags().IntVar(&poolCycles, "cycles", 300, "Allocate/free cycles")
	cmd.Flags().IntVar(&poolBlocks, "blocks", 300, "Blocks allocated per cycle")
	cmd.Flags().StringVar(&poolLookup, "lookup", "hash", "Pointer lookup strategy: hash, linear or tree")
	rootCmd.AddCommand(cmd)
}

func newPoolCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pool",
		Short: "Allocate and free pool blocks in cycles",
		Long: `The pool command allocates a batch of blocks from a pool allocator, frees
them all, and repeats. Pages are reused across cycles, so the page count
stays flat and the allocated total returns to zero after every cycle.

Example:
  memctl pool
  memctl pool --block 64 --page 128 --cycles 1000 --lookup tree`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runPool(poolOptions{
				Block:  poolBlock,
				Page:   poolPage,
				Cycles: poolCycles,
				Blocks: poolBlocks,
				Lookup: poolLookup,
			})
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(res)
			}
			printPool(res)
			return nil
		},
	}
}

type poolOptions struct {
	Block  int
	Page   int
	Cycles int
	Blocks int
	Lookup string
}

// PoolResult summarizes a pool run.
type PoolResult struct {
	Lookup         string     `json:"lookup"`
	Cycles         int        `json:"cycles"`
	BlocksPerCycle int        `json:"blocks_per_cycle"`
	PeakAllocated  int        `json:"peak_allocated"`
	AllocatedTotal int        `json:"allocated_total"`
	Stats          pool.Stats `json:"stats"`
}

func runPool(opts poolOptions) (PoolResult, error) {
	lk, err := pool.ParseLookup(opts.Lookup)
	if err != nil {
		return PoolResult{}, err
	}
	if opts.Cycles < 0 || opts.Blocks < 0 {
		return PoolResult{}, fmt.Errorf("--cycles and --blocks must be >= 0")
	}
	p, err := pool.New(alloc.DefaultHeap(), pool.Options{BlockSize: opts.Block, PageSize: opts.Page, Lookup: lk})
	if err != nil {
		return PoolResult{}, err
	}
	defer p.Destroy()

	res := PoolResult{Lookup: lk.String(), Cycles: opts.Cycles, BlocksPerCycle: opts.Blocks}
	blocks := make([][]byte, 0, opts.Blocks)
	pages := -1
	for cycle := range opts.Cycles {
		for range opts.Blocks {
			b := p.Allocate(p.Options().BlockSize, 0)
			if b == nil {
				return res, fmt.Errorf("cycle %d: %w", cycle, alloc.ErrOutOfMemory)
			}
			blocks = append(blocks, b)
		}
		res.PeakAllocated = max(res.PeakAllocated, p.AllocatedTotal())
		for _, b := range blocks {
			p.Deallocate(b)
		}
		blocks = blocks[:0]

		if n := p.AllocatedTotal(); n != 0 {
			return res, fmt.Errorf("cycle %d: %d bytes still allocated after freeing every block", cycle, n)
		}
		st := p.Stats()
		if pages >= 0 && st.Pages != pages {
			return res, fmt.Errorf("cycle %d: page count changed from %d to %d", cycle, pages, st.Pages)
		}
		pages = st.Pages
		logger.Debug("pool cycle", "cycle", cycle, "pages", st.Pages)
	}
	res.AllocatedTotal = p.AllocatedTotal()
	res.Stats = p.Stats()
	return res, nil
}

func printPool(res PoolResult) {
	printInfo("Lookup:          %s\n", res.Lookup)
	printInfo("Block size:      %s\n", formatBytes(res.Stats.BlockSize))
	printInfo("Cycles:          %s x %s blocks\n", formatCount(res.Cycles), formatCount(res.BlocksPerCycle))
	printInfo("Pages:           %d\n", res.Stats.Pages)
	printInfo("Peak allocated:  %s\n", formatBytes(res.PeakAllocated))
	printInfo("Allocated total: %s\n", formatBytes(res.AllocatedTotal))
	printVerbose("Free blocks:     %d\n", res.Stats.FreeBlocks)
}
