package trie

// trieNode is one edge of a radix tree. Siblings are kept in a linked list
// ordered by the first byte of their symbol, which is unique among siblings.
type trieNode struct {
	symbol string
	value  interface{}
	set    bool
	next   *trieNode
	child  *trieNode
}

type Trie struct {
	root trieNode
	size int
}

func NewTrie() *Trie {
	return &Trie{}
}

func commonPrefix(a, b string) int {
	i := 0
	for i < len(a) && i < len(b) && a[i] == b[i] {
		i++
	}
	return i
}

func (tr *Trie) Len() int {
	return tr.size
}

func (tr *Trie) Set(k string, v interface{}) {
	node := &tr.root

	for {
		if k == "" {
			if !node.set {
				tr.size++
			}
			node.value, node.set = v, true
			return
		}

		var prev *trieNode
		child := node.child
		for child != nil && child.symbol[0] < k[0] {
			prev, child = child, child.next
		}

		if child == nil || child.symbol[0] != k[0] {
			// no edge shares a first byte with the key -- insert a leaf in order
			// e.g. "cat" into {"bat", "dog"}
			leaf := &trieNode{symbol: k, value: v, set: true, next: child}
			if prev == nil {
				node.child = leaf
			} else {
				prev.next = leaf
			}
			tr.size++
			return
		}

		i := commonPrefix(k, child.symbol)
		if i < len(child.symbol) {
			// key diverges inside the edge -- split it
			// e.g. "car" into {"cat"}
			tail := &trieNode{
				symbol: child.symbol[i:],
				value:  child.value,
				set:    child.set,
				child:  child.child,
			}
			child.symbol = child.symbol[:i]
			child.value, child.set = nil, false
			child.child = tail
		}

		node = child
		k = k[i:]
	}
}

func (tr *Trie) Get(k string) (interface{}, bool) {
	node := &tr.root

	for k != "" {
		child := node.child
		for child != nil && child.symbol[0] != k[0] {
			child = child.next
		}
		if child == nil || len(k) < len(child.symbol) || k[:len(child.symbol)] != child.symbol {
			return nil, false
		}
		k = k[len(child.symbol):]
		node = child
	}

	return node.value, node.set
}

func (tr *Trie) Contains(k string) bool {
	_, ok := tr.Get(k)
	return ok
}

// WalkPrefix visits every key starting with prefix in lexicographic order.
func (tr *Trie) WalkPrefix(prefix string, fn func(key string, value interface{})) {
	node := &tr.root
	key := ""

	for rest := prefix; rest != ""; {
		child := node.child
		for child != nil && child.symbol[0] != rest[0] {
			child = child.next
		}
		if child == nil {
			return
		}

		i := commonPrefix(rest, child.symbol)
		if i == len(rest) {
			walk(child, key, fn)
			return
		}
		if i < len(child.symbol) {
			return
		}

		key += child.symbol
		rest = rest[i:]
		node = child
	}

	// empty prefix
	walk(node, key, fn)
}

func walk(node *trieNode, parentKey string, fn func(string, interface{})) {
	key := parentKey + node.symbol
	if node.set {
		fn(key, node.value)
	}
	for c := node.child; c != nil; c = c.next {
		walk(c, key, fn)
	}
}
