package bedtool

import (
	"os"
)

// Step records one transformation: the operation, the exact argv it ran (or
// nil for in-process transforms), and the identities of its input and
// output. ParentPath is "<stream>" for non-file-backed inputs.
type Step struct {
	Op         string
	Argv       []string
	ParentPath string
	ParentTag  string
	ResultPath string
	ResultTag  string
}

// History is an append-only lineage log. Each node holds at most one step
// plus links to the histories of the collections that produced it; nothing
// is ever mutated after construction, so aliasing collections can never
// corrupt each other's lineage.
type History struct {
	parents []*History
	step    Step
	hasStep bool
}

func newHistory(step Step, parents ...*History) *History {
	ps := make([]*History, 0, len(parents))
	for _, p := range parents {
		if p != nil {
			ps = append(ps, p)
		}
	}
	return &History{parents: ps, step: step, hasStep: true}
}

// Steps returns the lineage flattened root-to-leaf: every ancestor's steps
// precede the step that produced this node. Shared ancestors appear once.
func (h *History) Steps() []Step {
	if h == nil {
		return nil
	}
	seen := make(map[*History]bool)
	var out []Step
	var walk func(*History)
	walk = func(n *History) {
		if n == nil || seen[n] {
			return
		}
		seen[n] = true
		for _, p := range n.parents {
			walk(p)
		}
		if n.hasStep {
			out = append(out, n.step)
		}
	}
	walk(h)
	return out
}

// History returns the collection's lineage log.
func (bt *BedTool) History() *History { return bt.hist }

// DeleteTemporaryHistory removes the intermediate files recorded in the
// lineage: every step output that lives under the session's managed temp
// pattern, except this collection's own backing file. Original inputs and
// anything else outside the pattern are never deleted. When the session has
// a Confirm callback it is consulted first; a veto deletes nothing.
// The removed paths are returned.
func (bt *BedTool) DeleteTemporaryHistory() ([]string, error) {
	var victims []string
	seen := make(map[string]bool)
	for _, st := range bt.hist.Steps() {
		fn := st.ResultPath
		if fn == "" || fn == bt.path || seen[fn] {
			continue
		}
		if !bt.sess.isManagedTemp(fn) {
			continue
		}
		seen[fn] = true
		victims = append(victims, fn)
	}
	if confirm := bt.sess.cfg.Confirm; confirm != nil && !confirm(victims) {
		return nil, nil
	}
	var removed []string
	for _, fn := range victims {
		if err := os.Remove(fn); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, err
		}
		removed = append(removed, fn)
	}
	return removed, nil
}
