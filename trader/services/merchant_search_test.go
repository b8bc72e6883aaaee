package services

import (
	"context"
	"testing"

	"github.com/seoultrader/server/trader/database/models"
	"github.com/seoultrader/server/trader/gameerr"
	"github.com/uptrace/bun"
)

type fakeMerchantRepo struct {
	merchants []*models.Merchant
}

func (f *fakeMerchantRepo) GetByID(ctx context.Context, id int64) (*models.Merchant, error) {
	return f.GetByIDTx(ctx, nil, id)
}

func (f *fakeMerchantRepo) GetByIDTx(ctx context.Context, idb bun.IDB, id int64) (*models.Merchant, error) {
	for _, m := range f.merchants {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMerchantRepo) GetAll(ctx context.Context) ([]*models.Merchant, error) {
	return f.merchants, nil
}

func (f *fakeMerchantRepo) ListStock(ctx context.Context, merchantID int64) ([]*models.MerchantStock, error) {
	return nil, nil
}

func (f *fakeMerchantRepo) GetStockForUpdate(ctx context.Context, tx bun.IDB, merchantID int64, itemName string) (*models.MerchantStock, error) {
	return nil, nil
}

func (f *fakeMerchantRepo) DecrementStockTx(ctx context.Context, tx bun.IDB, stockID int64, qty int) error {
	return nil
}

func testMerchants() []*models.Merchant {
	return []*models.Merchant{
		{
			ID: 1, Name: "Gangnam Antiques", District: "강남구",
			Stock: []*models.MerchantStock{
				{ItemName: "celadon vase"},
				{ItemName: "silk scroll"},
			},
		},
		{
			ID: 2, Name: "Mapo Curios", District: "마포구",
			Stock: []*models.MerchantStock{
				{ItemName: "brass compass"},
			},
		},
		{
			ID: 3, Name: "Jongno Bookstall", District: "종로구",
		},
	}
}

func TestMerchantSearchByName(t *testing.T) {
	s := NewMerchantSearch(&fakeMerchantRepo{merchants: testMerchants()})

	results, err := s.Search(context.Background(), "gangnam", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
	if results[0].Merchant.ID != 1 {
		t.Errorf("top result = merchant %d, want 1", results[0].Merchant.ID)
	}
}

func TestMerchantSearchByStockedItem(t *testing.T) {
	s := NewMerchantSearch(&fakeMerchantRepo{merchants: testMerchants()})

	results, err := s.Search(context.Background(), "celadon", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
	if results[0].Merchant.ID != 1 {
		t.Errorf("item match should surface its merchant, got %d", results[0].Merchant.ID)
	}
	if results[0].MatchedOn != "celadon vase" {
		t.Errorf("matched_on = %q, want the item name", results[0].MatchedOn)
	}
}

func TestMerchantSearchDeduplicates(t *testing.T) {
	s := NewMerchantSearch(&fakeMerchantRepo{merchants: testMerchants()})

	// "s" matches the merchant name and both stock lines of merchant 1;
	// it must still appear once.
	results, err := s.Search(context.Background(), "s", 50)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	seen := make(map[int64]int)
	for _, r := range results {
		seen[r.Merchant.ID]++
	}
	for id, n := range seen {
		if n > 1 {
			t.Errorf("merchant %d appeared %d times", id, n)
		}
	}
}

func TestMerchantSearchEmptyQuery(t *testing.T) {
	s := NewMerchantSearch(&fakeMerchantRepo{merchants: testMerchants()})

	_, err := s.Search(context.Background(), "   ", 10)
	if gameerr.KindOf(err) != gameerr.KindPrecondition {
		t.Errorf("empty query kind = %v, want precondition", gameerr.KindOf(err))
	}
}
