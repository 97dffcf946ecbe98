package models

import "time"

// Upload is one import event for a single client. Seq is a per-client
// monotonic sequence assigned inside the creating transaction; it is the
// ordering key the undo reconciliation uses to find the previous upload.
type Upload struct {
	ID           int64     `db:"id" json:"id"`
	ClientID     int64     `db:"client_id" json:"client_id"`
	Seq          int64     `db:"seq" json:"seq"`
	Filename     string    `db:"filename" json:"filename"`
	OriginalName string    `db:"original_name" json:"original_name"`
	UploadedByID int64     `db:"uploaded_by" json:"uploaded_by"`
	UploadType   string    `db:"upload_type" json:"upload_type"`
	UploadDate   time.Time `db:"upload_date" json:"upload_date"`
	Processed    bool      `db:"processed" json:"processed"`
	PostsCount   int       `db:"posts_count" json:"posts_count"`
}

const (
	UploadTypeTweets    = "tweets"
	UploadTypeFollowers = "followers"
	UploadTypePosts     = "posts"
)

func ValidUploadType(t string) bool {
	switch t {
	case UploadTypeTweets, UploadTypeFollowers, UploadTypePosts:
		return true
	}
	return false
}
