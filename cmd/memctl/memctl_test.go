package main

import (
	"strings"
	"testing"

	"github.com/joshuapare/memkit/slotmap"
)

func TestRunIdlut(t *testing.T) {
	steps, err := runIdlut()
	if err != nil {
		t.Fatalf("runIdlut: %v", err)
	}
	if len(steps) != 4 {
		t.Fatalf("got %d steps, want 4", len(steps))
	}

	last := steps[3]
	if last.Title != "remove 0:1" {
		t.Errorf("last step title = %q", last.Title)
	}
	want := []IdlutRow{
		{ID: slotmap.ID(1<<32 | 3), Var1: 7, Var2: 8},
		{ID: slotmap.ID(1<<32 | 2), Var1: 5, Var2: 6},
	}
	if len(last.Rows) != len(want) {
		t.Fatalf("last step has %d rows, want %d", len(last.Rows), len(want))
	}
	for i := range want {
		if last.Rows[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, last.Rows[i], want[i])
		}
	}
}

func TestIdlutCommand(t *testing.T) {
	out, err := runCommand(t, "idlut")
	if err != nil {
		t.Fatalf("idlut: %v", err)
	}
	for _, s := range []string{"initial setup", "remove 1:1", "add a new entry", "3:1\t7\t8"} {
		if !strings.Contains(out, s) {
			t.Errorf("output missing %q:\n%s", s, out)
		}
	}
}

func TestIdlutCommand_JSON(t *testing.T) {
	out, err := runCommand(t, "idlut", "--json")
	if err != nil {
		t.Fatalf("idlut --json: %v", err)
	}
	var steps []IdlutStep
	decodeJSON(t, out, &steps)
	if len(steps) != 4 || len(steps[0].Rows) != 3 {
		t.Errorf("unexpected steps: %+v", steps)
	}
}

func TestRunChurn(t *testing.T) {
	tests := []struct {
		alloc  string
		lookup string
	}{
		{"heap", "hash"},
		{"scratch", "hash"},
		{"pool", "hash"},
		{"pool", "linear"},
		{"pool", "tree"},
	}
	for _, tt := range tests {
		t.Run(tt.alloc+"/"+tt.lookup, func(t *testing.T) {
			res, err := runChurn(churnOptions{Ops: 5000, Seed: 3, Alloc: tt.alloc, Keys: 512, Lookup: tt.lookup})
			if err != nil {
				t.Fatalf("runChurn: %v", err)
			}
			if !res.Verified {
				t.Error("churn result not verified")
			}
			if res.TableLen == 0 || res.SlotLen == 0 {
				t.Errorf("empty containers after churn: %+v", res)
			}
			if res.Table.LoadFactor > 0.7 {
				t.Errorf("load factor %.2f above 0.7", res.Table.LoadFactor)
			}
		})
	}
}

func TestRunChurn_BadAllocator(t *testing.T) {
	if _, err := runChurn(churnOptions{Ops: 10, Alloc: "arena", Keys: 8}); err == nil {
		t.Error("expected error for unknown allocator")
	}
	if _, err := runChurn(churnOptions{Ops: 10, Alloc: "pool", Keys: 8, Lookup: "skiplist"}); err == nil {
		t.Error("expected error for unknown lookup")
	}
}

func TestRunPool(t *testing.T) {
	res, err := runPool(poolOptions{Block: 16, Page: 256, Cycles: 300, Blocks: 300, Lookup: "hash"})
	if err != nil {
		t.Fatalf("runPool: %v", err)
	}
	if res.AllocatedTotal != 0 {
		t.Errorf("AllocatedTotal = %d, want 0", res.AllocatedTotal)
	}
	if res.Stats.Pages != 2 {
		t.Errorf("Pages = %d, want 2", res.Stats.Pages)
	}
	if res.PeakAllocated != 300*16 {
		t.Errorf("PeakAllocated = %d, want %d", res.PeakAllocated, 300*16)
	}
}

func TestPoolCommand_JSON(t *testing.T) {
	out, err := runCommand(t, "pool", "--cycles", "10", "--lookup", "tree", "--json")
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	var res PoolResult
	decodeJSON(t, out, &res)
	if res.Lookup != "tree" || res.Cycles != 10 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestRunScratch(t *testing.T) {
	res, err := runScratch(scratchOptions{Size: 4096, Ops: 20000, Seed: 5, MaxSize: 256})
	if err != nil {
		t.Fatalf("runScratch: %v", err)
	}
	if res.FinalInUse != 0 {
		t.Errorf("FinalInUse = %d, want 0", res.FinalInUse)
	}
	if res.PeakInUse > res.Capacity {
		t.Errorf("PeakInUse %d exceeds capacity %d", res.PeakInUse, res.Capacity)
	}
	if res.Allocations == 0 {
		t.Error("no allocations made")
	}
}

func TestScratchCommand_BadSize(t *testing.T) {
	if _, err := runCommand(t, "scratch", "--size", "8"); err == nil {
		t.Error("expected error for undersized ring")
	}
}

func TestLogLevelFlag(t *testing.T) {
	if _, err := runCommand(t, "idlut", "--log-level", "chatty"); err == nil {
		t.Error("expected error for invalid log level")
	}
}

func TestVersionCommand_JSON(t *testing.T) {
	out, err := runCommand(t, "version", "--json")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var info VersionInfo
	decodeJSON(t, out, &info)
	if info.Version != version {
		t.Errorf("Version = %q, want %q", info.Version, version)
	}
	if !strings.Contains(info.GoVersion, "go") {
		t.Errorf("GoVersion = %q", info.GoVersion)
	}
	if info.CPU == "" {
		t.Error("CPU is empty")
	}
}
