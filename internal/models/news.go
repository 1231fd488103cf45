package models

import (
	"strings"
	"time"
)

// Field limits for stored entries, counted in characters (runes).
const (
	MaxTitleLen   = 280
	MaxSummaryLen = 300
)

// NewsItem is a candidate item, not yet hashed
type NewsItem struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Source    string `json:"source"`
	Published string `json:"published"`
	Summary   string `json:"summary"`
}

// Normalize trims surrounding whitespace from every field
func (n NewsItem) Normalize() NewsItem {
	return NewsItem{
		Title:     strings.TrimSpace(n.Title),
		Link:      strings.TrimSpace(n.Link),
		Source:    strings.TrimSpace(n.Source),
		Published: strings.TrimSpace(n.Published),
		Summary:   strings.TrimSpace(n.Summary),
	}
}

// LedgerEntry is a news item once included in a block
type LedgerEntry struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Source    string `json:"source"`
	Published string `json:"published"`
	Summary   string `json:"summary"`
	IHash     string `json:"iHash"`
}

// PendingEntry is a user submission awaiting mining
type PendingEntry struct {
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Source    string    `json:"source"`
	Published string    `json:"published"`
	Submitter string    `json:"submitter"`
	AddedAt   time.Time `json:"added_at"`
	IHash     string    `json:"iHash"`
}

// Candidate converts the pending entry back into a mining candidate.
// Pending entries carry no summary.
func (p *PendingEntry) Candidate() NewsItem {
	return NewsItem{
		Title:     p.Title,
		Link:      p.Link,
		Source:    p.Source,
		Published: p.Published,
	}
}

// SourceCount is one row of the source distribution
type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// NodeStatus summarizes the node state
type NodeStatus struct {
	Version            string `json:"version"`
	HistoryCount       int    `json:"history_count"`
	PendingCount       int    `json:"pending_count"`
	BlockCount         int    `json:"block_count"`
	Integrity          bool   `json:"integrity"`
	AutoMineEnabled    bool   `json:"auto_mine_enabled"`
	PersistenceHealthy bool   `json:"persistence_healthy"`
	LastPersistError   string `json:"last_persist_error,omitempty"`
}

// TruncateRunes cuts s to at most limit characters
func TruncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}
