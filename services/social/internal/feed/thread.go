package feed

import "github.com/example/socialtrust/services/social/internal/store"

// DisplayDepth is how many comment levels are shown: top-level comments and
// one level of replies.
const DisplayDepth = 2

type ThreadNode struct {
	Comment store.Comment `json:"comment"`
	Replies []*ThreadNode `json:"replies,omitempty"`
}

// BuildThread turns a flat comment list into a tree of unlimited depth.
// Siblings keep input order. A comment whose parent is not in the list is
// treated as top-level.
func BuildThread(comments []store.Comment) []*ThreadNode {
	nodes := make(map[string]*ThreadNode, len(comments))
	for _, c := range comments {
		nodes[c.ID] = &ThreadNode{Comment: c, Replies: []*ThreadNode{}}
	}

	roots := []*ThreadNode{}
	for _, c := range comments {
		n := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok && parent != n {
				parent.Replies = append(parent.Replies, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots
}

// Flatten returns a copy of the tree cut at maxDepth levels. Everything below
// the last level is lifted into it in depth-first order, so a reply to a
// reply shows up next to the reply it answers.
func Flatten(roots []*ThreadNode, maxDepth int) []*ThreadNode {
	if maxDepth < 1 {
		maxDepth = 1
	}
	return flatten(roots, 1, maxDepth)
}

func flatten(nodes []*ThreadNode, depth, maxDepth int) []*ThreadNode {
	out := make([]*ThreadNode, 0, len(nodes))
	for _, n := range nodes {
		cp := &ThreadNode{Comment: n.Comment, Replies: []*ThreadNode{}}
		if depth < maxDepth {
			cp.Replies = flatten(n.Replies, depth+1, maxDepth)
		} else {
			cp.Replies = nil
		}
		out = append(out, cp)
		if depth == maxDepth {
			out = append(out, descendants(n.Replies)...)
		}
	}
	return out
}

func descendants(nodes []*ThreadNode) []*ThreadNode {
	var out []*ThreadNode
	for _, n := range nodes {
		out = append(out, &ThreadNode{Comment: n.Comment})
		out = append(out, descendants(n.Replies)...)
	}
	return out
}
