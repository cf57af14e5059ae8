package domain

import (
	"fmt"
	"strings"
)

// DownloadItem is one URL queued for download and conversion
type DownloadItem struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"` // populated after resolution
	Index int    `json:"index,omitempty"` // 1-based position within a batch, 0 when standalone
	Total int    `json:"total,omitempty"` // batch size, 0 when standalone
}

// NewDownloadItem creates a standalone item
func NewDownloadItem(url string) *DownloadItem {
	return &DownloadItem{URL: url}
}

// NewBatchItem creates an item at position index (1-based) of a batch of total
func NewBatchItem(url string, index, total int) *DownloadItem {
	return &DownloadItem{URL: url, Index: index, Total: total}
}

// InBatch reports whether the item belongs to a playlist batch
func (i *DownloadItem) InBatch() bool {
	return i.Total > 0
}

// Label returns the title when known, otherwise the URL
func (i *DownloadItem) Label() string {
	if i.Title != "" {
		return i.Title
	}
	return i.URL
}

// Position returns "i/n" for batch items and an empty string otherwise
func (i *DownloadItem) Position() string {
	if !i.InBatch() {
		return ""
	}
	return fmt.Sprintf("%d/%d", i.Index, i.Total)
}

// ValidateURL checks that url looks like a fetchable web address
func ValidateURL(url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return fmt.Errorf("URL is required")
	}
	if !strings.HasPrefix(url, "http") {
		return fmt.Errorf("not a valid URL: %s", url)
	}
	return nil
}

// IsPlaylistURL reports whether url points at a playlist rather than a single video
func IsPlaylistURL(url string) bool {
	return strings.Contains(url, "playlist") || strings.Contains(url, "list=")
}
