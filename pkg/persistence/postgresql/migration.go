package postgresql

// migrations returns the schema migration set, keyed by version.
func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS workflows (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL,
				nodes JSONB NOT NULL DEFAULT '[]',
				connections JSONB NOT NULL DEFAULT '[]',
				variables JSONB NOT NULL DEFAULT '{}',
				metadata JSONB NOT NULL DEFAULT '{}',
				owner TEXT NOT NULL DEFAULT '',
				tags JSONB NOT NULL DEFAULT '[]',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX IF NOT EXISTS idx_workflows_status ON workflows (status);
			CREATE INDEX IF NOT EXISTS idx_workflows_owner ON workflows (owner);
		`,
		2: `
			CREATE TABLE IF NOT EXISTS executions (
				id TEXT PRIMARY KEY,
				workflow_id TEXT NOT NULL,
				status TEXT NOT NULL,
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				ended_at TIMESTAMP WITH TIME ZONE,
				duration_ms BIGINT NOT NULL DEFAULT 0,
				steps JSONB NOT NULL DEFAULT '[]',
				variables JSONB NOT NULL DEFAULT '{}',
				result JSONB,
				error_message TEXT NOT NULL DEFAULT '',
				logs JSONB NOT NULL DEFAULT '[]',
				deployment_id TEXT NOT NULL DEFAULT '',
				conversation_id TEXT NOT NULL DEFAULT '',
				channel TEXT NOT NULL DEFAULT ''
			);

			CREATE INDEX IF NOT EXISTS idx_executions_workflow_id ON executions (workflow_id, started_at DESC);
			CREATE INDEX IF NOT EXISTS idx_executions_conversation_id ON executions (conversation_id);
		`,
	}
}
