package generate

// DiffKind classifies a line in a diff.
type DiffKind int

const (
	DiffContext DiffKind = iota
	DiffAdded
	DiffRemoved
)

// DiffLine is one line of a line-based diff.
type DiffLine struct {
	Kind DiffKind
	Text string
}

func (l DiffLine) String() string {
	switch l.Kind {
	case DiffAdded:
		return "+ " + l.Text
	case DiffRemoved:
		return "- " + l.Text
	}
	return "  " + l.Text
}

// maxLCSCells caps the LCS table size; larger inputs fall back to a
// positional comparison.
const maxLCSCells = 500000

// LineDiff returns a diff of a and b, keeping context unchanged lines
// around each change and eliding the rest as "...". It returns nil when
// the inputs are equal.
func LineDiff(a, b []string, context int) []DiffLine {
	m, n := len(a), len(b)
	if m*n > maxLCSCells {
		return filterContext(positionalDiff(a, b), context)
	}

	tbl := make([][]int, m+1)
	for i := range tbl {
		tbl[i] = make([]int, n+1)
	}
	for i := m - 1; i >= 0; i-- {
		for j := n - 1; j >= 0; j-- {
			switch {
			case a[i] == b[j]:
				tbl[i][j] = tbl[i+1][j+1] + 1
			case tbl[i+1][j] >= tbl[i][j+1]:
				tbl[i][j] = tbl[i+1][j]
			default:
				tbl[i][j] = tbl[i][j+1]
			}
		}
	}

	var all []DiffLine
	i, j := 0, 0
	for i < m && j < n {
		switch {
		case a[i] == b[j]:
			all = append(all, DiffLine{Kind: DiffContext, Text: a[i]})
			i++
			j++
		case tbl[i+1][j] >= tbl[i][j+1]:
			all = append(all, DiffLine{Kind: DiffRemoved, Text: a[i]})
			i++
		default:
			all = append(all, DiffLine{Kind: DiffAdded, Text: b[j]})
			j++
		}
	}
	for ; i < m; i++ {
		all = append(all, DiffLine{Kind: DiffRemoved, Text: a[i]})
	}
	for ; j < n; j++ {
		all = append(all, DiffLine{Kind: DiffAdded, Text: b[j]})
	}
	return filterContext(all, context)
}

func positionalDiff(a, b []string) []DiffLine {
	var out []DiffLine
	for i := 0; i < max(len(a), len(b)); i++ {
		switch {
		case i >= len(a):
			out = append(out, DiffLine{Kind: DiffAdded, Text: b[i]})
		case i >= len(b):
			out = append(out, DiffLine{Kind: DiffRemoved, Text: a[i]})
		case a[i] == b[i]:
			out = append(out, DiffLine{Kind: DiffContext, Text: a[i]})
		default:
			out = append(out, DiffLine{Kind: DiffRemoved, Text: a[i]}, DiffLine{Kind: DiffAdded, Text: b[i]})
		}
	}
	return out
}

func filterContext(lines []DiffLine, ctx int) []DiffLine {
	if len(lines) == 0 {
		return nil
	}

	keep := make([]bool, len(lines))
	for i, l := range lines {
		if l.Kind == DiffContext {
			continue
		}
		for j := max(0, i-ctx); j <= min(len(lines)-1, i+ctx); j++ {
			keep[j] = true
		}
	}

	var out []DiffLine
	prevKept := true
	changed := false
	for i, l := range lines {
		if !keep[i] {
			prevKept = false
			continue
		}
		if !prevKept {
			out = append(out, DiffLine{Kind: DiffContext, Text: "..."})
		}
		out = append(out, l)
		if l.Kind != DiffContext {
			changed = true
		}
		prevKept = true
	}
	if !changed {
		return nil
	}
	return out
}
