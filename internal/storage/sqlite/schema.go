package sqlite

// schema is applied on every open; all statements are idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS tasks (
    id                 TEXT PRIMARY KEY,
    title              TEXT NOT NULL,
    level              TEXT NOT NULL DEFAULT 'task',
    status             TEXT NOT NULL DEFAULT 'todo',
    priority           TEXT,
    needs_human_review INTEGER NOT NULL DEFAULT 0,
    tags               TEXT NOT NULL DEFAULT '[]',
    sections           TEXT NOT NULL DEFAULT '[]',
    refs               TEXT NOT NULL DEFAULT '[]',
    created_at         DATETIME NOT NULL,
    updated_at         DATETIME NOT NULL,
    started_at         DATETIME,
    completed_at       DATETIME
);

CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
CREATE INDEX IF NOT EXISTS idx_tasks_level ON tasks(level);

CREATE TABLE IF NOT EXISTS child_of (
    child  TEXT PRIMARY KEY,
    parent TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_child_of_parent ON child_of(parent);

CREATE TABLE IF NOT EXISTS depends_on (
    task    TEXT NOT NULL,
    blocker TEXT NOT NULL,
    PRIMARY KEY (task, blocker)
);

CREATE INDEX IF NOT EXISTS idx_depends_on_blocker ON depends_on(blocker);
`
