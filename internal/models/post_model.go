package models

import "time"

type Post struct {
	ID            int64      `db:"id" json:"id"`
	ClientID      int64      `db:"client_id" json:"client_id"`
	UploadID      *int64     `db:"upload_id" json:"upload_id,omitempty"`
	TypefullyURL  string     `db:"typefully_url" json:"typefully_url"`
	Content       string     `db:"content" json:"content"`
	Status        string     `db:"status" json:"status"`
	Feedback      string     `db:"feedback" json:"feedback"`
	Media         []string   `db:"media" json:"media"`
	ScheduledDate *time.Time `db:"scheduled_date" json:"scheduled_date,omitempty"`
	PublishedDate *time.Time `db:"published_date" json:"published_date,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

const (
	PostStatusPending        = "PENDING"
	PostStatusApproved       = "APPROVED"
	PostStatusRejected       = "REJECTED"
	PostStatusSuggestChanges = "SUGGEST_CHANGES"
	PostStatusPublished      = "PUBLISHED"
)

// postTransitions lists the review transitions a caller may request.
// APPROVED -> PUBLISHED is reserved for the publisher and is not listed here.
var postTransitions = map[string][]string{
	PostStatusPending:        {PostStatusApproved, PostStatusRejected, PostStatusSuggestChanges},
	PostStatusSuggestChanges: {PostStatusPending},
	PostStatusRejected:       {PostStatusPending},
}

func ValidPostStatus(s string) bool {
	switch s {
	case PostStatusPending, PostStatusApproved, PostStatusRejected,
		PostStatusSuggestChanges, PostStatusPublished:
		return true
	}
	return false
}

func ValidTransition(from, to string) bool {
	for _, next := range postTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
