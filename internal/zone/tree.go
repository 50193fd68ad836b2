// Package zone implements the authoritative zone tree: a trie over
// domain name labels (root-to-leaf), zone-file parsing into that tree,
// and the on-disk discovery/loading of zone files.
package zone

import (
	"github.com/jthorne/dnsauthd/internal/dns"
)

// recordKey identifies a node's record bucket by class and type, the
// same (class, type) pairing the wire/zone codecs dispatch on.
type recordKey struct {
	Class dns.RecordClass
	Type  dns.RecordType
}

// Node is one vertex of the zone trie: one domain label deep from its
// parent, holding every record owned at that exact name.
type Node struct {
	children   map[string]*Node
	childOrder []string
	records    map[recordKey][]dns.Record
}

func newNode() *Node {
	return &Node{children: map[string]*Node{}, records: map[recordKey][]dns.Record{}}
}

// get returns label's child, if any, without creating one.
func (n *Node) get(label dns.Label) (*Node, bool) {
	c, ok := n.children[label.Key()]
	return c, ok
}

// insert returns label's child, creating it (and recording insertion
// order) if it doesn't already exist.
func (n *Node) insert(label dns.Label) *Node {
	key := label.Key()
	if c, ok := n.children[key]; ok {
		return c
	}
	c := newNode()
	n.children[key] = c
	n.childOrder = append(n.childOrder, key)
	return c
}

// addRecord appends rr to its (class, type) bucket, preserving
// insertion order within the bucket.
func (n *Node) addRecord(rr dns.Record) {
	hdr := rr.Header()
	key := recordKey{Class: hdr.Class, Type: rr.Type()}
	n.records[key] = append(n.records[key], rr)
}

// Lookup returns n's records for the exact (class, type) pair.
func (n *Node) Lookup(class dns.RecordClass, t dns.RecordType) []dns.Record {
	return n.records[recordKey{Class: class, Type: t}]
}

// CNAME returns n's CNAME records for class, if any.
func (n *Node) CNAME(class dns.RecordClass) []dns.Record {
	return n.Lookup(class, dns.TypeCNAME)
}

// Authorities returns n's SOA records for class if any, else its NS
// records if any, else nil, per the "authorities for a class" rule.
func (n *Node) Authorities(class dns.RecordClass) []dns.Record {
	if soa := n.Lookup(class, dns.TypeSOA); len(soa) > 0 {
		return soa
	}
	if ns := n.Lookup(class, dns.TypeNS); len(ns) > 0 {
		return ns
	}
	return nil
}

// merge unions other into n: record buckets are concatenated (n's
// records first, preserving relative insertion order), and children
// present in both are merged recursively, walking the two trees in
// lockstep.
func (n *Node) merge(other *Node) {
	for key, recs := range other.records {
		n.records[key] = append(n.records[key], recs...)
	}
	for _, key := range other.childOrder {
		child := other.children[key]
		if existing, ok := n.children[key]; ok {
			existing.merge(child)
		} else {
			n.children[key] = child
			n.childOrder = append(n.childOrder, key)
		}
	}
}

// Tree is a prefix trie over domain names, indexed root-label-first
// (Name.Reversed order), so that a node's ancestors in the tree are
// exactly its enclosing domains.
type Tree struct {
	root *Node
}

// NewTree returns an empty zone tree.
func NewTree() *Tree {
	return &Tree{root: newNode()}
}

// Insert adds rr at its owner name, creating trie nodes along the path
// as needed.
func (t *Tree) Insert(rr dns.Record) {
	cur := t.root
	for _, label := range rr.Header().Name.Reversed() {
		cur = cur.insert(label)
	}
	cur.addRecord(rr)
}

// Merge unions other's records and subtrees into t.
func (t *Tree) Merge(other *Tree) {
	t.root.merge(other.root)
}

// Walk returns the path of existing nodes from the root to the deepest
// node matching a prefix of name's labels, in root-to-leaf order (the
// root is always path[0]). If the full name matches a node, that node
// is path[len(path)-1] and len(path) == len(name)+1.
func (t *Tree) Walk(name dns.Name) []*Node {
	path := make([]*Node, 1, len(name)+1)
	path[0] = t.root
	cur := t.root
	for _, label := range name.Reversed() {
		child, ok := cur.get(label)
		if !ok {
			break
		}
		path = append(path, child)
		cur = child
	}
	return path
}

// Matched reports whether path (as returned by Walk) reached a node
// for the full queried name, and if so returns it.
func Matched(name dns.Name, path []*Node) (*Node, bool) {
	if len(path) == len(name)+1 {
		return path[len(path)-1], true
	}
	return nil, false
}

// ClosestAuthority walks path from its deepest node back toward the
// root and returns the first non-empty authority set for class: the
// nearest enclosing SOA-or-NS set, per the ancestor-walk rule.
func ClosestAuthority(path []*Node, class dns.RecordClass) []dns.Record {
	for i := len(path) - 1; i >= 0; i-- {
		if auth := path[i].Authorities(class); len(auth) > 0 {
			return auth
		}
	}
	return nil
}

// AllRecords returns every record in the tree, depth-first with
// children in insertion order. Records keep their insertion order
// within each (class, type) bucket; the order of a node's buckets
// relative to each other is not fixed. It
// exists for dump/lint tooling; the resolver never calls it.
func (t *Tree) AllRecords() []dns.Record {
	var out []dns.Record
	t.root.collect(&out)
	return out
}

func (n *Node) collect(out *[]dns.Record) {
	for _, recs := range n.records {
		*out = append(*out, recs...)
	}
	for _, key := range n.childOrder {
		n.children[key].collect(out)
	}
}
