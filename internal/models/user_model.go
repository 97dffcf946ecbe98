package models

import "time"

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleAgency Role = "AGENCY"
	RoleClient Role = "CLIENT"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleAgency, RoleClient:
		return Role(s), true
	}
	return "", false
}

// Capability names one action a caller may be allowed to perform. Every
// handler checks exactly one capability instead of comparing role strings.
type Capability string

const (
	CapManageUploads Capability = "manage_uploads" // list + undo uploads
	CapImportContent Capability = "import_content" // upload CSV/XLSX, dumps
	CapManageClients Capability = "manage_clients"
	CapManagePosts   Capability = "manage_posts" // create/edit drafts, media
	CapReviewPosts   Capability = "review_posts" // approve/reject/suggest
	CapViewContent   Capability = "view_content"
	CapManageKeys    Capability = "manage_keys"
)

var roleCapabilities = map[Role]map[Capability]struct{}{
	RoleAdmin: {
		CapManageUploads: {},
		CapManageClients: {},
		CapReviewPosts:   {},
		CapViewContent:   {},
	},
	RoleAgency: {
		CapImportContent: {},
		CapManageClients: {},
		CapManagePosts:   {},
		CapViewContent:   {},
		CapManageKeys:    {},
	},
	RoleClient: {
		CapReviewPosts: {},
		CapViewContent: {},
	},
}

func (r Role) Can(cap Capability) bool {
	caps, ok := roleCapabilities[r]
	if !ok {
		return false
	}
	_, ok = caps[cap]
	return ok
}

type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	GoogleID     string    `db:"google_id" json:"-"`
	Name         string    `db:"name" json:"name"`
	Role         Role      `db:"role" json:"role"`
	ClientID     *int64    `db:"client_id" json:"client_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
