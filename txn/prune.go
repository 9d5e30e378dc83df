package txn

// PruningPolicy decides, on each commit, which versions in history (the
// tail of superseded versions, oldest first, not including the newly
// published current one) may be dropped. It returns the subset of history
// to retain.
type PruningPolicy func(current *Version, history []*Version) []*Version

// DefaultPruningPolicy retains only versions still held by a live reader
// or any other Version.Retain caller (RefCount > 0); everything else is
// dropped.
func DefaultPruningPolicy(current *Version, history []*Version) []*Version {
	kept := make([]*Version, 0, len(history))
	for _, v := range history {
		if v.RefCount() > 0 {
			kept = append(kept, v)
		}
	}
	return kept
}

// KeepLastN builds a PruningPolicy retaining the N most recently
// superseded versions in addition to whatever DefaultPruningPolicy would
// keep for live readers, oldest-first trimming once the non-referenced
// tail exceeds n.
func KeepLastN(n int) PruningPolicy {
	return func(current *Version, history []*Version) []*Version {
		kept := make([]*Version, 0, len(history))
		unreferenced := 0
		for i := len(history) - 1; i >= 0; i-- {
			v := history[i]
			if v.RefCount() > 0 {
				kept = append(kept, v)
				continue
			}
			if unreferenced < n {
				kept = append(kept, v)
				unreferenced++
			}
		}
		// restore original (oldest-first) order
		for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
			kept[i], kept[j] = kept[j], kept[i]
		}
		return kept
	}
}
