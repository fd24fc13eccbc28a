package binding

// Result is the outcome of comparing expected and supplied names.
type Result struct {
	// Extra holds supplied names the SQL never reads.
	Extra []string
	// Missing holds expected names the literal does not supply.
	Missing []string
}

// Empty reports whether the binding is satisfied.
func (r Result) Empty() bool {
	return len(r.Extra) == 0 && len(r.Missing) == 0
}

// Reconcile computes extra = supplied - expected and, when the supplied
// set is exhaustive, missing = expected - supplied. Names compare by exact
// string equality. Each output keeps the first-seen order of its left
// operand with duplicates collapsed.
func Reconcile(expected, supplied []string, exhaustive bool) Result {
	res := Result{
		Extra: difference(supplied, expected),
	}
	if exhaustive {
		res.Missing = difference(expected, supplied)
	} else {
		res.Missing = []string{}
	}
	return res
}

func difference(a, b []string) []string {
	exclude := make(map[string]struct{}, len(b))
	for _, name := range b {
		exclude[name] = struct{}{}
	}
	out := []string{}
	for _, name := range a {
		if _, ok := exclude[name]; ok {
			continue
		}
		exclude[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
