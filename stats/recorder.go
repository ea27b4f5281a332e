package stats

import (
	"database/sql"
	"fmt"
	"os"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

type statRow struct {
	interval uint64
	cycle    uint64
	name     string
	value    string
	units    string
}

// Recorder writes stat snapshots into a SQLite database. Rows are buffered
// and written in batches; the remainder is flushed at process exit.
type Recorder struct {
	*sql.DB

	dbName    string
	pending   []statRow
	batchSize int
}

// NewRecorder creates a Recorder backed by the given database path. An
// empty path picks a generated name. The file must not already exist.
func NewRecorder(path string) *Recorder {
	r := &Recorder{
		dbName:    path,
		batchSize: 100000,
	}

	r.init()

	atexit.Register(func() { r.Flush() })

	return r
}

func (r *Recorder) init() {
	if r.dbName == "" {
		r.dbName = "nvmsim_stats_" + xid.New().String()
	}

	filename := r.dbName + ".sqlite3"

	_, err := os.Stat(filename)
	if err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	fmt.Fprintf(os.Stderr, "Database created for stat recording: %s\n",
		filename)

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	r.DB = db
	r.createTable()
}

func (r *Recorder) createTable() {
	_, err := r.Exec(`
		CREATE TABLE stats (
			interval INTEGER,
			cycle INTEGER,
			name TEXT,
			value TEXT,
			units TEXT
		)
	`)
	if err != nil {
		panic(err)
	}
}

// RecordAll snapshots every stat of the registry at the given cycle.
func (r *Recorder) RecordAll(reg *Registry, cycle uint64) {
	reg.Each(func(s *Stat) {
		r.pending = append(r.pending, statRow{
			interval: reg.Interval(),
			cycle:    cycle,
			name:     s.Name,
			value:    formatValue(s.Get()),
			units:    s.Units,
		})
	})

	if len(r.pending) >= r.batchSize {
		r.Flush()
	}
}

// Flush writes all buffered rows to the database.
func (r *Recorder) Flush() {
	if len(r.pending) == 0 {
		return
	}

	tx, err := r.Begin()
	if err != nil {
		panic(err)
	}

	stmt, err := tx.Prepare(
		"INSERT INTO stats(interval, cycle, name, value, units) " +
			"VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		panic(err)
	}

	for _, row := range r.pending {
		_, err := stmt.Exec(
			row.interval, row.cycle, row.name, row.value, row.units)
		if err != nil {
			panic(err)
		}
	}

	if err := stmt.Close(); err != nil {
		panic(err)
	}

	if err := tx.Commit(); err != nil {
		panic(err)
	}

	r.pending = r.pending[:0]
}
