package models

import "time"

// ClientStats is a denormalized counters row, recomputed in a single
// aggregate query after any post-count-altering operation.
type ClientStats struct {
	ClientID         int64     `db:"client_id" json:"client_id"`
	TotalPosts       int64     `db:"total_posts" json:"total_posts"`
	PendingPosts     int64     `db:"pending_posts" json:"pending_posts"`
	ApprovedPosts    int64     `db:"approved_posts" json:"approved_posts"`
	RejectedPosts    int64     `db:"rejected_posts" json:"rejected_posts"`
	PublishedPosts   int64     `db:"published_posts" json:"published_posts"`
	TotalImpressions int64     `db:"total_impressions" json:"total_impressions"`
	CurrentFollowers int64     `db:"current_followers" json:"current_followers"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}
