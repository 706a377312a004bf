package db

// SchemaSQL contains the database schema initialization SQL.
const SchemaSQL = `
    -- ==========================================================================
    -- TOPIC QUEUE
    -- ==========================================================================
    -- Single record topic_queue:pending holds the ordered list; the head is
    -- the next topic to generate.
    DEFINE TABLE IF NOT EXISTS topic_queue SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS items ON topic_queue TYPE array<string> DEFAULT [];
    DEFINE FIELD IF NOT EXISTS updated ON topic_queue TYPE datetime DEFAULT time::now();

    -- ==========================================================================
    -- RUN HISTORY
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS generation_run SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS run_id ON generation_run TYPE string;
    DEFINE FIELD IF NOT EXISTS topic ON generation_run TYPE string;
    DEFINE FIELD IF NOT EXISTS source ON generation_run TYPE string;
    DEFINE FIELD IF NOT EXISTS status ON generation_run TYPE string
        ASSERT $value IN ["no_work", "completed", "partial", "failed"];
    DEFINE FIELD IF NOT EXISTS periods ON generation_run TYPE int;
    DEFINE FIELD IF NOT EXISTS succeeded ON generation_run TYPE int;
    DEFINE FIELD IF NOT EXISTS backends ON generation_run TYPE array<string>;
    DEFINE FIELD IF NOT EXISTS artifact_path ON generation_run TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS restored ON generation_run TYPE bool DEFAULT false;
    DEFINE FIELD IF NOT EXISTS error ON generation_run TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS started_at ON generation_run TYPE datetime;
    DEFINE FIELD IF NOT EXISTS finished_at ON generation_run TYPE datetime;

    DEFINE INDEX IF NOT EXISTS generation_run_id ON generation_run FIELDS run_id UNIQUE;
    DEFINE INDEX IF NOT EXISTS generation_run_topic ON generation_run FIELDS topic;
    DEFINE INDEX IF NOT EXISTS generation_run_started ON generation_run FIELDS started_at;
`
