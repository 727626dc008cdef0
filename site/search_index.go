package site

import (
	"encoding/json"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const searchIndexVersion = 1

var emptySearchIndexJSON = json.RawMessage(`{"v":1,"docs":[],"terms":{}}`)

type searchIndex struct {
	Version int              `json:"v"`
	Docs    []searchDoc      `json:"docs"`
	Terms   map[string][]int `json:"terms"`
}

type searchDoc struct {
	Route   string `json:"route"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// buildSearchIndex serializes a token -> document posting list over titles,
// summaries, and body text.
func buildSearchIndex(pages []page) (json.RawMessage, error) {
	if len(pages) == 0 {
		return append(json.RawMessage(nil), emptySearchIndexJSON...), nil
	}

	index := searchIndex{
		Version: searchIndexVersion,
		Docs:    make([]searchDoc, 0, len(pages)),
		Terms:   make(map[string][]int, len(pages)*16),
	}

	for docID, pg := range pages {
		index.Docs = append(index.Docs, searchDoc{Route: pg.Route, Title: pg.Title, Summary: pg.Summary})

		seen := make(map[string]struct{}, 64)
		for _, field := range []string{pg.Title, pg.Summary, pg.PlainText} {
			for _, token := range tokenize(field) {
				if _, dup := seen[token]; dup {
					continue
				}
				seen[token] = struct{}{}
				index.Terms[token] = append(index.Terms[token], docID)
			}
		}
	}

	for _, postings := range index.Terms {
		sort.Ints(postings)
	}

	return json.Marshal(index)
}

// tokenize lowercases, NFKC-normalizes, and splits on non-alphanumeric runes.
func tokenize(text string) []string {
	normalized := norm.NFKC.String(strings.ToLower(text))
	return strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
