package postgres

import "time"

type leagueDocumentTableModel struct {
	Key       string    `db:"key"`
	Version   int64     `db:"version"`
	Body      string    `db:"body"`
	Message   string    `db:"message"`
	UpdatedAt time.Time `db:"updated_at"`
}

type leagueDocumentInsertModel struct {
	Key     string `db:"key"`
	Version int64  `db:"version"`
	Body    string `db:"body"`
	Message string `db:"message"`
}
