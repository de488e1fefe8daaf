package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/memkit/alloc"
	"github.com/joshuapare/memkit/slotmap"
)

func init() {
	rootCmd.AddCommand(newIdlutCmd())
}

func newIdlutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "idlut",
		Short: "Replay the slot map add/remove walkthrough",
		Long: `The idlut command adds three entries to a slot map, removes the second,
adds a fourth and removes the first, printing the packed items and their
ids after every step. It shows how removal compacts storage and how ids
stay valid across moves.

Example:
  memctl idlut
  memctl idlut --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := runIdlut()
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(steps)
			}
			printIdlut(steps)
			return nil
		},
	}
}

type pairEntry struct {
	Var1 int32
	Var2 int32
}

// IdlutRow is one packed item.
type IdlutRow struct {
	ID   slotmap.ID `json:"id"`
	Var1 int32      `json:"var1"`
	Var2 int32      `json:"var2"`
}

// IdlutStep is the slot map contents after one step.
type IdlutStep struct {
	Title string     `json:"title"`
	Rows  []IdlutRow `json:"rows"`
}

func snapshot(title string, m *slotmap.Map[pairEntry]) IdlutStep {
	step := IdlutStep{Title: title, Rows: make([]IdlutRow, 0, m.Len())}
	items := m.Items()
	for i, id := range m.IDs() {
		step.Rows = append(step.Rows, IdlutRow{ID: id, Var1: items[i].Var1, Var2: items[i].Var2})
	}
	return step
}

func runIdlut() ([]IdlutStep, error) {
	mem := alloc.NewChecked(alloc.DefaultHeap())
	m := slotmap.NewMap[pairEntry](mem)

	id1 := m.Add(pairEntry{1, 2})
	id2 := m.Add(pairEntry{3, 4})
	m.Add(pairEntry{5, 6})
	steps := []IdlutStep{snapshot("initial setup", m)}

	m.Remove(id2)
	steps = append(steps, snapshot(fmt.Sprintf("remove %v", id2), m))

	m.Add(pairEntry{7, 8})
	steps = append(steps, snapshot("add a new entry", m))

	m.Remove(id1)
	steps = append(steps, snapshot(fmt.Sprintf("remove %v", id1), m))

	if m.Has(id1) || m.Has(id2) {
		return nil, fmt.Errorf("removed ids still resolve")
	}
	m.Destroy()
	if n := mem.CurrentAlloc(); n != 0 {
		return nil, fmt.Errorf("slot map leaked %d bytes", n)
	}
	return steps, nil
}

func printIdlut(steps []IdlutStep) {
	for _, step := range steps {
		printInfo("%s\n", step.Title)
		printInfo("ID\tvar1\tvar2\n")
		for _, r := range step.Rows {
			printInfo("%v\t%d\t%d\n", r.ID, r.Var1, r.Var2)
		}
		printInfo("\n")
	}
}
