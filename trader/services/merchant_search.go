package services

import (
	"context"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/seoultrader/server/trader/database/models"
	"github.com/seoultrader/server/trader/database/repositories"
	"github.com/seoultrader/server/trader/gameerr"
)

// searchEntry is one fuzzy-matchable string pointing back at a
// merchant. Merchants appear once for their own name and once per
// stocked item, so "celadon" finds whoever sells it.
type searchEntry struct {
	merchant *models.Merchant
	text     string
}

type searchEntries []searchEntry

func (e searchEntries) Len() int            { return len(e) }
func (e searchEntries) String(i int) string { return e[i].text }

// SearchResult pairs a matched merchant with what matched.
type SearchResult struct {
	Merchant  *models.Merchant `json:"merchant"`
	MatchedOn string           `json:"matched_on"`
	Score     int              `json:"score"`
}

// MerchantSearch fuzzy-matches merchants by name and by the items they
// stock.
type MerchantSearch struct {
	merchants repositories.MerchantRepository
}

func NewMerchantSearch(merchants repositories.MerchantRepository) *MerchantSearch {
	return &MerchantSearch{merchants: merchants}
}

func (s *MerchantSearch) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, gameerr.Precondition("search query is empty")
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	merchants, err := s.merchants.GetAll(ctx)
	if err != nil {
		return nil, gameerr.Internal(err)
	}

	entries := make(searchEntries, 0, len(merchants)*4)
	for _, m := range merchants {
		entries = append(entries, searchEntry{merchant: m, text: m.Name})
		for _, line := range m.Stock {
			entries = append(entries, searchEntry{merchant: m, text: line.ItemName})
		}
	}

	matches := fuzzy.FindFrom(query, entries)

	results := make([]SearchResult, 0, limit)
	seen := make(map[int64]bool)
	for _, match := range matches {
		entry := entries[match.Index]
		if seen[entry.merchant.ID] {
			continue
		}
		seen[entry.merchant.ID] = true
		results = append(results, SearchResult{
			Merchant:  entry.merchant,
			MatchedOn: entry.text,
			Score:     match.Score,
		})
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}
