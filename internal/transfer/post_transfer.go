package transfer

type PostCreation struct {
	ClientID      int64  `json:"client_id"`
	Content       string `json:"content"`
	TypefullyURL  string `json:"typefully_url"`
	ScheduledDate string `json:"scheduled_date"`
}

type PostUpdate struct {
	Content       string `json:"content"`
	ScheduledDate string `json:"scheduled_date"`
}

type StatusUpdate struct {
	Status   string `json:"status"`
	Feedback string `json:"feedback"`
}

type CommentCreation struct {
	Body string `json:"body"`
}

type ClientCreation struct {
	Name     string `json:"name"`
	Handle   string `json:"handle"`
	Timezone string `json:"timezone"`
}

type DumpCreation struct {
	ClientID int64  `json:"client_id"`
	Title    string `json:"title"`
	Body     string `json:"body"`
}
