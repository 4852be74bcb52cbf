package importers

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// FeedProduct is one product line of the exported ERP feed.
type FeedProduct struct {
	Code          string   `json:"code"`
	Description   string   `json:"description"`
	CategoryCode  int      `json:"category_code"`
	Group1Code    int      `json:"group1_code"`
	Group2Code    int      `json:"group2_code"`
	Group3Code    int      `json:"group3_code"`
	CreatedAt     string   `json:"created_at,omitempty"`
	ModifiedAt    string   `json:"modified_at,omitempty"`
	InAccounting  bool     `json:"in_accounting"`
	Available     bool     `json:"available"`
	LocationCode  string   `json:"location_code,omitempty"`
	StockQuantity *float64 `json:"stock_quantity,omitempty"`
	Price         *float64 `json:"price,omitempty"`
}

// FeedFile is the shape of one exported feed document.
type FeedFile struct {
	PriceListID uint          `json:"price_list_id,omitempty"`
	Products    []FeedProduct `json:"products"`
}

// ParseFeedFile reads and decodes a feed export from disk.
func ParseFeedFile(path string) (*FeedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feed file: %w", err)
	}
	defer f.Close()

	return ParseFeed(f)
}

// ParseFeed decodes a feed export from a reader.
func ParseFeed(r io.Reader) (*FeedFile, error) {
	var feed FeedFile
	dec := json.NewDecoder(r)
	if err := dec.Decode(&feed); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	return &feed, nil
}

// parseFeedTime parses the feed's date formats, trying the richer layout
// first. The zero return stands for "not provided".
func parseFeedTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}
