package cmdparse

import "fmt"

// PosNode is one node in the tree of token sequences a command's positional
// parameters can consume. Each edge is either a literal word (a choice or
// subcommand word) or an unconstrained word. The tree exists to detect
// definition-time ambiguity between positional and subcommand choices; the
// parser never consults it when consuming tokens.
type PosNode struct {
	param   *Param
	links   map[string]*PosNode
	anyWord *PosNode
	target  *Param
}

// BuildTree assembles the positional parse tree for cmd and every command
// reachable through its subcommand choices, reporting the first ambiguity
// found.
func BuildTree(cmd *Command) (*PosNode, error) {
	root := &PosNode{}
	if err := extendTree([]*PosNode{root}, cmd); err != nil {
		return nil, err
	}
	return root, nil
}

func extendTree(frontier []*PosNode, cmd *Command) error {
	for _, p := range cmd.params {
		if !p.positional() {
			continue
		}
		next, err := extendParam(frontier, p)
		if err != nil {
			return err
		}
		frontier = next
	}
	return nil
}

// extendParam grows every frontier node by the token sequences p accepts and
// returns the nodes where p can complete, which is where the next positional
// begins.
func extendParam(frontier []*PosNode, p *Param) ([]*PosNode, error) {
	if p.choiceMap != nil {
		var next []*PosNode
		for _, ent := range p.choiceMap.entries {
			for _, node := range frontier {
				end, err := insertWords(node, ent.words, p)
				if err != nil {
					return nil, err
				}
				if err := markTarget(end, p); err != nil {
					return nil, err
				}
				if ent.cmd != nil {
					if err := extendTree([]*PosNode{end}, ent.cmd); err != nil {
						return nil, err
					}
				} else {
					next = append(next, end)
				}
			}
		}
		return next, nil
	}
	depths := treeDepths(p.nargs)
	var next []*PosNode
	cur := frontier
	for depth := 1; depth <= depths.max; depth++ {
		var deeper []*PosNode
		for _, node := range cur {
			if len(p.choices) != 0 {
				for _, choice := range p.choices {
					end, err := insertWords(node, []string{choice}, p)
					if err != nil {
						return nil, err
					}
					deeper = append(deeper, end)
				}
			} else {
				end, err := insertAny(node, p)
				if err != nil {
					return nil, err
				}
				deeper = append(deeper, end)
			}
		}
		if p.nargs.Satisfied(depth) || (!p.nargs.HasMax() && depth >= depths.max) {
			for _, node := range deeper {
				if err := markTarget(node, p); err != nil {
					return nil, err
				}
			}
			next = append(next, deeper...)
		}
		cur = deeper
	}
	return next, nil
}

type depthRange struct{ min, max int }

// treeDepths bounds how far a parameter's arity is expanded in the tree. An
// unbounded arity is expanded one level past its minimum, which is enough to
// expose repetition conflicts without an infinite tree.
func treeDepths(n Nargs) depthRange {
	min := n.Min()
	if min < 1 {
		min = 1
	}
	if !n.HasMax() {
		return depthRange{min: min, max: min + 1}
	}
	max := n.Max()
	if max < min {
		max = min
	}
	return depthRange{min: min, max: max}
}

func insertWords(node *PosNode, words []string, p *Param) (*PosNode, error) {
	cur := node
	for _, word := range words {
		if cur.anyWord != nil && cur.anyWord.param != p {
			return nil, conflictingChoices(word, cur.anyWord.param, p)
		}
		if cur.links == nil {
			cur.links = make(map[string]*PosNode)
		}
		if have, ok := cur.links[word]; ok {
			if have.param != p {
				return nil, conflictingChoices(word, have.param, p)
			}
			cur = have
			continue
		}
		child := &PosNode{param: p}
		cur.links[word] = child
		cur = child
	}
	return cur, nil
}

func insertAny(node *PosNode, p *Param) (*PosNode, error) {
	for word, have := range node.links {
		if have.param != p {
			return nil, conflictingChoices(word, have.param, p)
		}
	}
	if node.anyWord != nil {
		if node.anyWord.param != p {
			return nil, &AmbiguousParseTree{Msg: fmt.Sprintf(
				"conflicting choices: both %s and %s may match the same words", node.anyWord.param, p)}
		}
		return node.anyWord, nil
	}
	child := &PosNode{param: p}
	node.anyWord = child
	return child, nil
}

func markTarget(node *PosNode, p *Param) error {
	if node.target != nil && node.target != p {
		return &AmbiguousParseTree{Msg: fmt.Sprintf(
			"conflicting targets: %s and %s may both be complete after the same words", node.target, p)}
	}
	node.target = p
	return nil
}

func conflictingChoices(word string, a, b *Param) error {
	return &AmbiguousParseTree{Msg: fmt.Sprintf(
		"conflicting choices: %q may match both %s and %s", word, a, b)}
}
