package models

// GeneratedItem is one unit of a transient content batch. Batches live only
// in the per-session store; they are never written to the database.
type GeneratedItem struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Cost    int    `json:"cost"`
}
