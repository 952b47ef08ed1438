package export

import (
	"encoding/json"
	"io"
)

// Document is the JSON export: metadata plus the table.
type Document struct {
	Metadata any    `json:"metadata,omitempty"`
	Rows     int    `json:"rows"`
	Table    *Table `json:"table"`
}

func WriteJSON(w io.Writer, metadata any, t *Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Document{Metadata: metadata, Rows: t.Rows(), Table: t})
}
