package classify

import (
	"strings"
)

// Topic is one catalog entry as seen by the classifier.
type Topic struct {
	Slug    string
	Name    string
	Aliases []string
}

// Index is an immutable, pre-normalized phrase trie over the catalog. It is safe for
// concurrent use; rebuild it to pick up catalog changes.
//
// An identical phrase shared by several topics belongs to the first of them in catalog
// order, so duplicated aliases make classification depend on catalog order. Distinct
// phrases are matched independently even when one contains another.
type Index struct {
	topics      []Topic
	root        *trieNode
	lookup      map[string]int
	defaultSlug string
	phrases     int
}

type trieNode struct {
	next  map[string]*trieNode
	owner int // topic index, -1 when no phrase ends here
}

func newTrieNode() *trieNode {
	return &trieNode{next: map[string]*trieNode{}, owner: -1}
}

// NewIndex builds the index in catalog order. The default topic stays resolvable by
// Lookup but contributes no phrases, so it is only ever chosen as the fallback.
func NewIndex(topics []Topic, defaultSlug string) *Index {
	ix := &Index{
		topics:      make([]Topic, 0, len(topics)),
		root:        newTrieNode(),
		lookup:      map[string]int{},
		defaultSlug: strings.ToLower(strings.TrimSpace(defaultSlug)),
	}
	for _, t := range topics {
		t.Slug = strings.ToLower(strings.TrimSpace(t.Slug))
		if t.Slug == "" {
			continue
		}
		if _, dup := ix.lookup[t.Slug]; dup {
			continue
		}
		i := len(ix.topics)
		ix.topics = append(ix.topics, t)

		keys := append([]string{t.Slug, strings.ReplaceAll(t.Slug, "-", " "), t.Name}, t.Aliases...)
		for _, k := range keys {
			if _, ok := ix.lookup[strings.ToLower(strings.TrimSpace(k))]; !ok && strings.TrimSpace(k) != "" {
				ix.lookup[strings.ToLower(strings.TrimSpace(k))] = i
			}
			norm := Normalize(k)
			if norm == "" {
				continue
			}
			if _, ok := ix.lookup[norm]; !ok {
				ix.lookup[norm] = i
			}
			if t.Slug != ix.defaultSlug {
				ix.insert(Tokens(k), i)
			}
		}
	}
	return ix
}

func (ix *Index) insert(tokens []string, owner int) {
	if len(tokens) == 0 {
		return
	}
	n := ix.root
	for _, tok := range tokens {
		child, ok := n.next[tok]
		if !ok {
			child = newTrieNode()
			n.next[tok] = child
		}
		n = child
	}
	if n.owner == -1 {
		n.owner = owner
		ix.phrases++
	}
}

// eachMatch calls fn with the owner of every phrase that starts at tokens[i]. Nested
// phrases each fire, so "rest api" reports both "rest api" and, if indexed, "rest".
func (ix *Index) eachMatch(tokens []string, i int, fn func(owner int)) {
	n := ix.root
	for j := i; j < len(tokens); j++ {
		child, ok := n.next[tokens[j]]
		if !ok {
			return
		}
		n = child
		if n.owner >= 0 {
			fn(n.owner)
		}
	}
}

// Lookup resolves a slug, name or alias, case- and accent-insensitively.
func (ix *Index) Lookup(s string) (Topic, bool) {
	if ix == nil {
		return Topic{}, false
	}
	if i, ok := ix.lookup[strings.ToLower(strings.TrimSpace(s))]; ok {
		return ix.topics[i], true
	}
	if i, ok := ix.lookup[Normalize(s)]; ok {
		return ix.topics[i], true
	}
	return Topic{}, false
}

// Topics returns the catalog in order. The slice must not be modified.
func (ix *Index) Topics() []Topic {
	if ix == nil {
		return nil
	}
	return ix.topics
}

func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.topics)
}

// Phrases is the number of distinct phrases in the trie.
func (ix *Index) Phrases() int {
	if ix == nil {
		return 0
	}
	return ix.phrases
}
