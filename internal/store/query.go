package store

const (
	queryCreateResultsTable = `
		CREATE TABLE IF NOT EXISTS colors_results (
			class_name TEXT,
			quantity INTEGER,
			color TEXT
		)
	`

	queryInsertResult = `
		INSERT INTO colors_results (
			class_name,
			quantity,
			color
		) VALUES (
			:class_name,
			:quantity,
			:color
		)
	`
)
