package table

import "github.com/tessera-db/tessera/core"

// DefaultMaxClusterSize bounds the number of rows per cluster so leaf reads
// stay cheap. Tables may be created with a smaller bound to force deeper
// trees in tests.
const DefaultMaxClusterSize = 256

// treeFanout bounds the number of children per inner node.
const treeFanout = 16

// clusterTree is the B+-tree of clusters, keyed by object key. Leaves are
// clusters; inner nodes hold the first key of each child subtree.
type clusterTree struct {
	root           *treeNode
	specs          []columnSpec
	maxClusterSize int
	size           int
}

type treeNode struct {
	cluster *Cluster // non-nil at leaves

	firstKeys []core.ObjKey
	children  []*treeNode
}

func newClusterTree(specs []columnSpec, maxClusterSize int) *clusterTree {
	if maxClusterSize <= 1 {
		maxClusterSize = DefaultMaxClusterSize
	}
	return &clusterTree{
		root:           &treeNode{cluster: newCluster(0, specs)},
		specs:          specs,
		maxClusterSize: maxClusterSize,
	}
}

// addColumn appends storage for a new column to every cluster.
func (t *clusterTree) addColumn(spec columnSpec) {
	t.specs = append(t.specs, spec)
	t.addColumnTo(t.root, spec)
}

func (t *clusterTree) addColumnTo(n *treeNode, spec columnSpec) {
	if t.isLeaf(n) {
		n.cluster.addColumn(spec)
		return
	}
	for _, ch := range n.children {
		t.addColumnTo(ch, spec)
	}
}

func (t *clusterTree) isLeaf(n *treeNode) bool { return n.cluster != nil }

// childIndex returns the child subtree that may contain key.
func (n *treeNode) childIndex(key core.ObjKey) int {
	i := len(n.firstKeys) - 1
	for i > 0 && n.firstKeys[i] > key {
		i--
	}
	return i
}

func (n *treeNode) firstKey() core.ObjKey {
	if n.cluster != nil {
		if n.cluster.NodeSize() == 0 {
			return core.ObjKey(n.cluster.Offset())
		}
		return n.cluster.RealKey(0)
	}
	return n.firstKeys[0]
}

// insert adds a row for key and returns its cluster and row index.
func (t *clusterTree) insert(key core.ObjKey) (*Cluster, int) {
	split := t.insertInto(t.root, key)
	if split != nil {
		// Grow a new root.
		old := t.root
		t.root = &treeNode{
			firstKeys: []core.ObjKey{old.firstKey(), split.firstKey()},
			children:  []*treeNode{old, split},
		}
	}
	t.size++
	c, row := t.find(key)
	return c, row
}

// insertInto descends to the leaf owning key; a non-nil return is a new
// right sibling the caller must register.
func (t *clusterTree) insertInto(n *treeNode, key core.ObjKey) *treeNode {
	if t.isLeaf(n) {
		n.cluster.insertRow(key)
		if n.cluster.NodeSize() > t.maxClusterSize {
			return &treeNode{cluster: n.cluster.split()}
		}
		return nil
	}
	i := n.childIndex(key)
	split := t.insertInto(n.children[i], key)
	n.firstKeys[i] = n.children[i].firstKey()
	if split != nil {
		n.firstKeys = append(n.firstKeys, 0)
		n.children = append(n.children, nil)
		copy(n.firstKeys[i+2:], n.firstKeys[i+1:])
		copy(n.children[i+2:], n.children[i+1:])
		n.firstKeys[i+1] = split.firstKey()
		n.children[i+1] = split
		if len(n.children) > treeFanout {
			at := len(n.children) / 2
			right := &treeNode{
				firstKeys: append([]core.ObjKey(nil), n.firstKeys[at:]...),
				children:  append([]*treeNode(nil), n.children[at:]...),
			}
			n.firstKeys = n.firstKeys[:at]
			n.children = n.children[:at]
			return right
		}
	}
	return nil
}

// find locates the cluster and row of key; row is NotFound if absent.
func (t *clusterTree) find(key core.ObjKey) (*Cluster, int) {
	n := t.root
	for !t.isLeaf(n) {
		n = n.children[n.childIndex(key)]
	}
	return n.cluster, n.cluster.findRow(key)
}

// erase removes the row of key; it reports whether a row was removed.
func (t *clusterTree) erase(key core.ObjKey) bool {
	c, row := t.find(key)
	if row == core.NotFound {
		return false
	}
	c.eraseRow(row)
	t.size--
	t.dropEmpty(t.root)
	return true
}

// dropEmpty prunes empty clusters so traversal never yields them. The last
// cluster is kept even when empty.
func (t *clusterTree) dropEmpty(n *treeNode) {
	if t.isLeaf(n) {
		return
	}
	kept := n.children[:0]
	keptKeys := n.firstKeys[:0]
	for i, ch := range n.children {
		t.dropEmpty(ch)
		if t.isLeaf(ch) && ch.cluster.NodeSize() == 0 {
			continue
		}
		if !t.isLeaf(ch) && len(ch.children) == 0 {
			continue
		}
		kept = append(kept, ch)
		keptKeys = append(keptKeys, n.firstKeys[i])
	}
	n.children = kept
	n.firstKeys = keptKeys
	if len(n.children) == 0 {
		// Degenerate to a single empty cluster.
		*n = treeNode{cluster: newCluster(0, t.specs)}
	}
}

// traverse visits clusters pre-order; the visitor returns true to stop.
// The return value reports whether the traversal was stopped.
func (t *clusterTree) traverse(fn func(*Cluster) bool) bool {
	return t.traverseNode(t.root, fn)
}

func (t *clusterTree) traverseNode(n *treeNode, fn func(*Cluster) bool) bool {
	if t.isLeaf(n) {
		if n.cluster.NodeSize() == 0 {
			return false
		}
		return fn(n.cluster)
	}
	for _, ch := range n.children {
		if t.traverseNode(ch, fn) {
			return true
		}
	}
	return false
}

// keyAtRow returns the object key at the global row position, counting in
// traversal order. Returns NullKey when row is past the end.
func (t *clusterTree) keyAtRow(row int) core.ObjKey {
	key := core.NullKey
	t.traverse(func(c *Cluster) bool {
		if row < c.NodeSize() {
			key = c.RealKey(row)
			return true
		}
		row -= c.NodeSize()
		return false
	})
	return key
}
