package check

// frameSet tracks which local variables hold frame-scoped allocations.
// It mirrors the lexical scope stack: every let records an entry at the
// current level, so an inner shadowing binding masks the outer one and
// its taint dies with the block.
type frameSet struct {
	levels []map[string]bool
}

func newFrameSet() *frameSet {
	return &frameSet{levels: []map[string]bool{{}}}
}

func (f *frameSet) push() {
	f.levels = append(f.levels, map[string]bool{})
}

func (f *frameSet) pop() {
	f.levels = f.levels[:len(f.levels)-1]
}

// declare records a new binding at the current level, masking any outer
// binding of the same name.
func (f *frameSet) declare(name string, frameScoped bool) {
	f.levels[len(f.levels)-1][name] = frameScoped
}

// mark taints the innermost visible binding of name. Assignment from a
// frame-scoped source is sticky: a later clean assignment does not untaint
// (the analysis is conservative).
func (f *frameSet) mark(name string) {
	for i := len(f.levels) - 1; i >= 0; i-- {
		if _, ok := f.levels[i][name]; ok {
			f.levels[i][name] = true
			return
		}
	}
	f.levels[len(f.levels)-1][name] = true
}

// tainted reports whether the innermost visible binding of name is
// frame-scoped.
func (f *frameSet) tainted(name string) bool {
	for i := len(f.levels) - 1; i >= 0; i-- {
		if v, ok := f.levels[i][name]; ok {
			return v
		}
	}
	return false
}
