package models

import "time"

type Client struct {
	ID        int64     `db:"id" json:"id"`
	AgencyID  int64     `db:"agency_id" json:"agency_id"`
	Name      string    `db:"name" json:"name"`
	Handle    string    `db:"handle" json:"handle"`
	Timezone  string    `db:"timezone" json:"timezone"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
