package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/joshuapare/memkit/alloc"
	"github.com/joshuapare/memkit/alloc/pool"
	"github.com/joshuapare/memkit/cmd/memctl/logger"
	"github.com/joshuapare/memkit/hashtable"
	"github.com/joshuapare/memkit/slotmap"
)

var (
	churnOps    int
	churnSeed   uint64
	churnAlloc  string
	churnKeys   int
	churnLookup string
)

func init() {
	cmd := newChurnCmd()
	cmd.Flags().IntVar(&churnOps, "ops", 100000, "Number of random operations")
	cmd.Flags().Uint64Var(&churnSeed, "seed", 1, "Random seed")
	cmd.Flags().StringVar(&churnAlloc, "alloc", "heap", "Backing allocator: heap, scratch or pool")
	cmd.Flags().IntVar(&churnKeys, "keys", 4096, "Size of the hash table key space")
	cmd.Flags().StringVar(&churnLookup, "lookup", "hash", "Pool lookup strategy: hash, linear or tree")
	rootCmd.AddCommand(cmd)
}

func newChurnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "churn",
		Short: "Randomized hash table and slot map workload",
		Long: `The churn command runs a random mix of inserts and removals against a
hash table and a slot map sharing one allocator, checks both against Go
maps, and verifies that destroying them returns every byte.

Example:
  memctl churn --ops 1000000
  memctl churn --alloc scratch --seed 7
  memctl churn --alloc pool --lookup tree --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runChurn(churnOptions{
				Ops:    churnOps,
				Seed:   churnSeed,
				Alloc:  churnAlloc,
				Keys:   churnKeys,
				Lookup: churnLookup,
			})
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(res)
			}
			printChurn(res)
			return nil
		},
	}
}

type churnOptions struct {
	Ops    int
	Seed   uint64
	Alloc  string
	Keys   int
	Lookup string
}

// ChurnResult summarizes a churn run.
type ChurnResult struct {
	Alloc     string          `json:"alloc"`
	Ops       int             `json:"ops"`
	TableLen  int             `json:"table_len"`
	SlotLen   int             `json:"slot_len"`
	PeakBytes int             `json:"peak_bytes"`
	Table     hashtable.Stats `json:"table"`
	Slots     slotmap.Stats   `json:"slots"`
	Allocator any             `json:"allocator,omitempty"`
	Verified  bool            `json:"verified"`
}

type record struct {
	Key   uint64
	Value uint64
}

// backingAllocator builds the allocator named by kind on top of the heap and
// returns a function reporting its stats and one destroying it.
func backingAllocator(kind, lookup string) (alloc.Allocator, func() any, func(), error) {
	heap := alloc.DefaultHeap()
	switch kind {
	case "heap":
		return heap, func() any { return heap.Stats() }, func() {}, nil
	case "scratch":
		s, err := alloc.NewScratch(heap, 1<<20)
		if err != nil {
			return nil, nil, nil, err
		}
		return s, func() any { return s.Stats() }, s.Destroy, nil
	case "pool":
		lk, err := pool.ParseLookup(lookup)
		if err != nil {
			return nil, nil, nil, err
		}
		p, err := pool.New(heap, pool.Options{BlockSize: 256, Lookup: lk})
		if err != nil {
			return nil, nil, nil, err
		}
		return p, func() any { return p.Stats() }, p.Destroy, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown allocator %q (want heap, scratch or pool)", kind)
	}
}

func runChurn(opts churnOptions) (ChurnResult, error) {
	if opts.Ops < 0 || opts.Keys <= 0 {
		return ChurnResult{}, fmt.Errorf("--ops must be >= 0 and --keys > 0")
	}
	base, stats, destroy, err := backingAllocator(opts.Alloc, opts.Lookup)
	if err != nil {
		return ChurnResult{}, err
	}
	defer destroy()

	mem := alloc.NewChecked(base)
	tbl := hashtable.NewMap[uint64](mem)
	slots := slotmap.NewMap[record](mem)
	logger.Debug("churn start", "alloc", opts.Alloc, "ops", opts.Ops, "seed", opts.Seed)

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	tableModel := map[uint64]uint64{}
	slotModel := map[slotmap.ID]record{}
	var live []slotmap.ID

	res := ChurnResult{Alloc: opts.Alloc, Ops: opts.Ops}
	for i := range opts.Ops {
		key := hashtable.HashUint64(rng.Uint64N(uint64(opts.Keys)))
		switch rng.IntN(8) {
		case 0, 1, 2:
			v := rng.Uint64()
			tbl.Set(key, v)
			tableModel[key] = v
		case 3:
			tbl.Remove(key)
			delete(tableModel, key)
		case 4, 5, 6:
			r := record{Key: key, Value: rng.Uint64()}
			id := slots.Add(r)
			slotModel[id] = r
			live = append(live, id)
		default:
			if len(live) == 0 {
				continue
			}
			j := rng.IntN(len(live))
			slots.Remove(live[j])
			delete(slotModel, live[j])
			live[j] = live[len(live)-1]
			live = live[:len(live)-1]
		}
		res.PeakBytes = max(res.PeakBytes, mem.CurrentAlloc())
		if verbose && i > 0 && i%(max(opts.Ops/10, 1)) == 0 {
			printVerbose("%s ops: table=%d slots=%d bytes=%s\n",
				formatCount(i), tbl.Len(), slots.Len(), formatBytes(mem.CurrentAlloc()))
		}
	}

	if err := verifyChurn(tbl, slots, tableModel, slotModel); err != nil {
		tbl.Destroy()
		slots.Destroy()
		return res, err
	}
	res.Verified = true
	res.TableLen, res.SlotLen = tbl.Len(), slots.Len()
	res.Table, res.Slots = tbl.Stats(), slots.Stats()

	tbl.Destroy()
	slots.Destroy()
	if n := mem.CurrentAlloc(); n != 0 {
		return res, fmt.Errorf("containers leaked %d bytes (%d allocations)", n, mem.Live())
	}
	res.Allocator = stats()
	logger.Info("churn done", "alloc", opts.Alloc, "table", res.TableLen, "slots", res.SlotLen, "peak", res.PeakBytes)
	return res, nil
}

func verifyChurn(
	tbl *hashtable.Map[uint64],
	slots *slotmap.Map[record],
	tableModel map[uint64]uint64,
	slotModel map[slotmap.ID]record,
) error {
	if tbl.Len() != len(tableModel) {
		return fmt.Errorf("hash table holds %d entries, want %d", tbl.Len(), len(tableModel))
	}
	for k, want := range tableModel {
		got, ok := tbl.Get(k)
		if !ok || got != want {
			return fmt.Errorf("hash table key %#x = %d (found %v), want %d", k, got, ok, want)
		}
	}
	if slots.Len() != len(slotModel) {
		return fmt.Errorf("slot map holds %d items, want %d", slots.Len(), len(slotModel))
	}
	for id, want := range slotModel {
		got, ok := slots.Lookup(id)
		if !ok || got != want {
			return fmt.Errorf("slot map id %v = %+v (found %v), want %+v", id, got, ok, want)
		}
	}
	return nil
}

func printChurn(res ChurnResult) {
	printInfo("Allocator:     %s\n", res.Alloc)
	printInfo("Operations:    %s\n", formatCount(res.Ops))
	printInfo("Peak memory:   %s\n", formatBytes(res.PeakBytes))
	printInfo("\nHash table\n")
	printInfo("  Entries:       %s\n", formatCount(res.Table.Entries))
	printInfo("  Buckets:       %s (%d used)\n", formatCount(res.Table.Buckets), res.Table.UsedBuckets)
	printInfo("  Load factor:   %.2f\n", res.Table.LoadFactor)
	printInfo("  Longest chain: %d\n", res.Table.LongestChain)
	printInfo("\nSlot map\n")
	printInfo("  Items:         %s\n", formatCount(res.Slots.Items))
	printInfo("  Slots:         %s (%d free, %d retired)\n", formatCount(res.Slots.Slots), res.Slots.Free, res.Slots.Retired)
	if res.Allocator != nil {
		printVerbose("\nAllocator stats: %+v\n", res.Allocator)
	}
	printInfo("\nVerified against Go maps: %v\n", res.Verified)
}
