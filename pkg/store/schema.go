package store

// schemaStatements are the local-migration DDL statements this module runs
// on every startup (idempotent via IF NOT EXISTS), a fixed statement list
// since this module has no generated-by-parser
// tables to layer underneath.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS workspace (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		db_name TEXT NOT NULL DEFAULT '',
		language TEXT NOT NULL DEFAULT 'en',
		last_preprocess TIMESTAMP,
		last_evidence_load TIMESTAMP,
		last_sql_loaded TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS vector_db (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		backend TEXT NOT NULL,
		host TEXT NOT NULL DEFAULT '',
		port INTEGER NOT NULL DEFAULT 0,
		api_key TEXT NOT NULL DEFAULT '',
		tenant TEXT NOT NULL DEFAULT '',
		collection_name TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS sql_db (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		workspace_id INTEGER NOT NULL REFERENCES workspace(id),
		name TEXT NOT NULL,
		dialect TEXT NOT NULL,
		host TEXT NOT NULL DEFAULT '',
		port INTEGER NOT NULL DEFAULT 0,
		database_name TEXT NOT NULL DEFAULT '',
		db_user TEXT NOT NULL DEFAULT '',
		db_schema TEXT NOT NULL DEFAULT '',
		vector_db_id INTEGER REFERENCES vector_db(id),
		db_elements_status TEXT NOT NULL DEFAULT 'IDLE',
		db_elements_task_id TEXT NOT NULL DEFAULT '',
		db_elements_log TEXT NOT NULL DEFAULT '',
		db_elements_start_time TIMESTAMP,
		db_elements_end_time TIMESTAMP,
		table_comment_status TEXT NOT NULL DEFAULT 'IDLE',
		table_comment_task_id TEXT NOT NULL DEFAULT '',
		table_comment_log TEXT NOT NULL DEFAULT '',
		table_comment_start_time TIMESTAMP,
		table_comment_end_time TIMESTAMP,
		column_comment_status TEXT NOT NULL DEFAULT 'IDLE',
		column_comment_task_id TEXT NOT NULL DEFAULT '',
		column_comment_log TEXT NOT NULL DEFAULT '',
		column_comment_start_time TIMESTAMP,
		column_comment_end_time TIMESTAMP,
		UNIQUE(workspace_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS sql_table (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sql_db_id INTEGER NOT NULL REFERENCES sql_db(id),
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		ai_description TEXT NOT NULL DEFAULT '',
		comment TEXT NOT NULL DEFAULT '',
		UNIQUE(sql_db_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS sql_column (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sql_table_id INTEGER NOT NULL REFERENCES sql_table(id),
		original_name TEXT NOT NULL,
		normalized_name TEXT NOT NULL,
		data_format TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		ai_description TEXT NOT NULL DEFAULT '',
		value_description TEXT NOT NULL DEFAULT '',
		is_primary_key INTEGER NOT NULL DEFAULT 0,
		is_foreign_key INTEGER NOT NULL DEFAULT 0,
		UNIQUE(sql_table_id, original_name)
	)`,
	`CREATE TABLE IF NOT EXISTS relationship (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_column_id INTEGER NOT NULL REFERENCES sql_column(id),
		target_column_id INTEGER NOT NULL REFERENCES sql_column(id),
		UNIQUE(source_column_id, target_column_id)
	)`,
	`CREATE TABLE IF NOT EXISTS thoth_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		question TEXT NOT NULL,
		sql TEXT NOT NULL,
		workspace_id TEXT NOT NULL DEFAULT '',
		username TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMP,
		ended_at TIMESTAMP,
		agent_used TEXT NOT NULL DEFAULT '',
		pass_rate REAL NOT NULL DEFAULT 0,
		evaluation_case TEXT NOT NULL DEFAULT '',
		sql_status TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT ''
	)`,
}
