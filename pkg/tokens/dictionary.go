// Package tokens holds the token dictionary the segmenter matches against.
// It is a thin layer over a patricia trie answering one question quickly:
// which tokens are a prefix of the text starting at a given offset.
package tokens

import (
	"errors"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// ErrEmptyToken is returned when adding a zero-length token.
// Zero-length tokens would let a search stand still forever.
var ErrEmptyToken = errors.New("token must not be empty")

// Dictionary maps token ids to opaque metadata.
// It is built once by a loader and only read afterwards.
type Dictionary struct {
	trie   *patricia.Trie
	size   int
	maxLen int
}

// New returns an empty dictionary.
func New() *Dictionary {
	return &Dictionary{
		trie: patricia.NewTrie(),
	}
}

// Add inserts id with its metadata. Adding an id twice keeps the last metadata,
// callers that care about duplicates must check Has first.
func (d *Dictionary) Add(id string, meta any) error {
	if id == "" {
		return ErrEmptyToken
	}
	key := patricia.Prefix(id)
	if d.trie.Insert(key, entry{meta: meta}) {
		d.size++
	} else {
		d.trie.Set(key, entry{meta: meta})
	}
	if len(id) > d.maxLen {
		d.maxLen = len(id)
	}
	return nil
}

// entry wraps metadata so a nil meta still marks a present key in the trie.
type entry struct {
	meta any
}

// Len returns the number of distinct tokens.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return d.size
}

// MaxLen returns the length in bytes of the longest token.
func (d *Dictionary) MaxLen() int {
	return d.maxLen
}

// Has reports whether id is a token.
func (d *Dictionary) Has(id string) bool {
	return d.trie.Get(patricia.Prefix(id)) != nil
}

// Meta returns the metadata stored for id.
func (d *Dictionary) Meta(id string) (any, bool) {
	item := d.trie.Get(patricia.Prefix(id))
	if item == nil {
		return nil, false
	}
	e, ok := item.(entry)
	if !ok {
		log.Errorf("Unknown item type: %T for token %s", item, id)
		return nil, false
	}
	return e.meta, true
}

// IDs returns every token in lexicographic order.
func (d *Dictionary) IDs() []string {
	ids := make([]string, 0, d.size)
	err := d.trie.Visit(func(p patricia.Prefix, _ patricia.Item) error {
		ids = append(ids, string(p))
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting token trie: %v", err)
	}
	sort.Strings(ids)
	return ids
}

// MatchesAt returns the tokens that are an exact prefix of text[pos:],
// shortest first. Because every returned token is a prefix of the same
// string, shortest first is also lexicographic order.
// Positions outside [0, len(text)) yield no matches.
func (d *Dictionary) MatchesAt(text string, pos int) []string {
	return d.AppendMatchesAt(nil, text, pos)
}

// AppendMatchesAt is MatchesAt writing into dst, so hot loops can reuse a buffer.
func (d *Dictionary) AppendMatchesAt(dst []string, text string, pos int) []string {
	if pos < 0 || pos >= len(text) {
		return dst
	}
	rest := text[pos:]
	if d.maxLen > 0 && len(rest) > d.maxLen {
		rest = rest[:d.maxLen]
	}
	err := d.trie.VisitPrefixes(patricia.Prefix(rest), func(p patricia.Prefix, _ patricia.Item) error {
		// slice the text rather than converting p so no new string is allocated
		dst = append(dst, text[pos:pos+len(p)])
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting token prefixes at %d: %v", pos, err)
	}
	return dst
}
