package models

import "time"

type TweetAnalytics struct {
	ID          int64     `db:"id" json:"id"`
	ClientID    int64     `db:"client_id" json:"client_id"`
	TweetURL    string    `db:"tweet_url" json:"tweet_url"`
	Date        time.Time `db:"date" json:"date"`
	Impressions int64     `db:"impressions" json:"impressions"`
	Likes       int64     `db:"likes" json:"likes"`
	Retweets    int64     `db:"retweets" json:"retweets"`
	Replies     int64     `db:"replies" json:"replies"`
	Bookmarks   int64     `db:"bookmarks" json:"bookmarks"`
	Engagements int64     `db:"engagements" json:"engagements"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type FollowerAnalytics struct {
	ID        int64     `db:"id" json:"id"`
	ClientID  int64     `db:"client_id" json:"client_id"`
	Date      time.Time `db:"date" json:"date"`
	Followers int64     `db:"followers" json:"followers"`
	Following int64     `db:"following" json:"following"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
