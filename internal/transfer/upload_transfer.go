package transfer

// ImportResult reports what an import did with the rows of one file.
type ImportResult struct {
	UploadID         int64 `json:"upload_id"`
	ProcessedRecords int   `json:"processed_records"`
	NewRecords       int   `json:"new_records"`
	UpdatedRecords   int   `json:"updated_records"`
}

// UndoResult reports the outcome of reversing one upload.
type UndoResult struct {
	RestoredCount int    `json:"restored_count"`
	DeletedCount  int    `json:"deleted_count"`
	ClientName    string `json:"client_name"`
}
