package comver

// AxisGate is one include/exclude pair of the commit filter
type AxisGate struct {
	Includes PatternSet
	Excludes PatternSet
}

// Passes reports whether the gate admits a single attribute value
func (g AxisGate) Passes(value string) bool {
	return g.PassesAny([]string{value})
}

// PassesAny reports whether the gate admits a set of values. A pattern set
// matches when any of its patterns matches any of the values.
func (g AxisGate) PassesAny(values []string) bool {
	if len(g.Includes) > 0 && !g.Includes.MatchAny(values) {
		return false
	}
	if len(g.Excludes) > 0 && g.Excludes.MatchAny(values) {
		return false
	}
	return true
}

// FilterConfig decides which commits count toward the version
type FilterConfig struct {
	Message     AxisGate
	Path        AxisGate
	AuthorName  AxisGate
	AuthorEmail AxisGate
}

// Passes reports whether every axis admits the commit. A commit that changed
// no files passes the path axis without consulting its patterns.
func Passes(commit *CommitRecord, cfg FilterConfig) bool {
	if !cfg.Message.Passes(commit.Message) {
		return false
	}
	if !cfg.AuthorName.Passes(commit.AuthorName) {
		return false
	}
	if !cfg.AuthorEmail.Passes(commit.AuthorEmail) {
		return false
	}
	if len(commit.Paths) > 0 && !cfg.Path.PassesAny(commit.Paths) {
		return false
	}
	return true
}
