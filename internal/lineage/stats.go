package lineage

// Stats summarises a lineage tree as the walker sees it.
type Stats struct {
	Nodes   int `json:"nodes"`
	Leaves  int `json:"leaves"`
	Tables  int `json:"tables"`
	Views   int `json:"views"`
	Loops   int `json:"loops"`
	Unknown int `json:"unknown"`
	// MaxDepth is the number of nodes on the longest root-to-leaf path.
	MaxDepth int `json:"max_depth"`
}

// Summarize counts the reachable nodes of res by kind. Nodes hidden below a
// table or loop sentinel are not counted.
func Summarize(res *Result) Stats {
	var s Stats
	if res.IsEmpty() {
		return s
	}
	Walk(res.Root, func(v Visit) bool {
		s.Nodes++
		switch v.Node.Kind {
		case KindTable:
			s.Tables++
		case KindView:
			s.Views++
		case KindLoop:
			s.Loops++
		default:
			s.Unknown++
		}
		if v.Node.IsTerminal() {
			s.Leaves++
			if v.Depth+1 > s.MaxDepth {
				s.MaxDepth = v.Depth + 1
			}
		}
		return true
	})
	return s
}
