package export

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/agentic-research/tree2tabular/internal/graph"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS nodes (
	id TEXT NOT NULL,
	is_num INTEGER NOT NULL,
	parent_id TEXT,
	parent_is_num INTEGER,
	name TEXT NOT NULL,
	level INTEGER NOT NULL,
	leaf INTEGER NOT NULL,
	PRIMARY KEY (id, is_num)
);
CREATE VIEW IF NOT EXISTS parent_child AS
	SELECT p.id AS parent_id, c.id AS child_id, p.name AS parent_name, c.name AS child_name
	FROM nodes c
	JOIN nodes p ON p.id = c.parent_id AND p.is_num = c.parent_is_num
	ORDER BY c.rowid;
`

// SQLiteWriter stores a built tree and its tabular projection in a SQLite
// database: a nodes table, a parent_child view and one table per Records.
type SQLiteWriter struct {
	db       *sql.DB
	tx       *sql.Tx
	stmtNode *sql.Stmt
}

// NewSQLiteWriter creates dbPath and initializes the schema. An existing
// file is replaced only when overwrite is set.
func NewSQLiteWriter(dbPath string, overwrite bool) (*SQLiteWriter, error) {
	if _, err := os.Stat(dbPath); err == nil {
		if !overwrite {
			return nil, graph.DestinationExists(dbPath)
		}
		if err := os.Remove(dbPath); err != nil {
			return nil, fmt.Errorf("remove %s: %w", dbPath, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", dbPath, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = MEMORY"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	w := &SQLiteWriter{db: db}
	if err := w.beginTx(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

func (w *SQLiteWriter) beginTx() error {
	var err error
	w.tx, err = w.db.Begin()
	if err != nil {
		return err
	}
	w.stmtNode, err = w.tx.Prepare(`
		INSERT INTO nodes (id, is_num, parent_id, parent_is_num, name, level, leaf)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	return err
}

// AddNode writes one node record.
func (w *SQLiteWriter) AddNode(n *graph.Node) error {
	var parentID, parentNumeric any
	if !n.IsRoot() {
		parentID = n.Parent.String()
		parentNumeric = boolInt(n.Parent.Numeric())
	}
	_, err := w.stmtNode.Exec(
		n.ID.String(),
		boolInt(n.ID.Numeric()),
		parentID,
		parentNumeric,
		n.Name,
		n.Level,
		boolInt(n.IsLeaf()),
	)
	if err != nil {
		return fmt.Errorf("insert node %s: %w", n.ID, err)
	}
	return nil
}

// AddTree writes every node of tree in build order.
func (w *SQLiteWriter) AddTree(tree *graph.Tree) error {
	for _, n := range tree.Nodes() {
		if err := w.AddNode(n); err != nil {
			return err
		}
	}
	return nil
}

// AddRecords creates table name from the header row of rec and inserts
// the remaining rows. All columns are TEXT.
func (w *SQLiteWriter) AddRecords(name string, rec Records) error {
	records := rec.Records()
	if len(records) == 0 || len(records[0]) == 0 {
		return nil
	}
	header := records[0]
	cols := make([]string, len(header))
	marks := make([]string, len(header))
	for i, h := range header {
		cols[i] = quoteIdent(h) + " TEXT"
		marks[i] = "?"
	}
	if _, err := w.tx.Exec(fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(cols, ", "))); err != nil {
		return fmt.Errorf("create table %s: %w", name, err)
	}

	stmt, err := w.tx.Prepare(fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(name), strings.Join(marks, ", ")))
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	args := make([]any, len(header))
	for _, row := range records[1:] {
		for i := range args {
			args[i] = row[i]
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("insert into %s: %w", name, err)
		}
	}
	return nil
}

// Close commits pending writes and closes the database.
func (w *SQLiteWriter) Close() error {
	if w.stmtNode != nil {
		_ = w.stmtNode.Close()
	}
	if err := w.tx.Commit(); err != nil {
		_ = w.db.Close()
		return err
	}
	return w.db.Close()
}

// Abort discards pending writes and closes the database.
func (w *SQLiteWriter) Abort() {
	if w.stmtNode != nil {
		_ = w.stmtNode.Close()
	}
	_ = w.tx.Rollback()
	_ = w.db.Close()
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// NamedRecords pairs a record set with the table it is stored in.
type NamedRecords struct {
	Name    string
	Records Records
}

// WriteSQLite stores tree and each record set in a new database at path.
// On failure the partially written file is removed.
func WriteSQLite(path string, overwrite bool, tree *graph.Tree, tables ...NamedRecords) error {
	w, err := NewSQLiteWriter(path, overwrite)
	if err != nil {
		return err
	}
	fail := func(err error) error {
		w.Abort()
		_ = os.Remove(path)
		return err
	}
	if err := w.AddTree(tree); err != nil {
		return fail(err)
	}
	for _, t := range tables {
		if err := w.AddRecords(t.Name, t.Records); err != nil {
			return fail(err)
		}
	}
	if err := w.Close(); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}
