package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jgoulah/epichart/pkg/models"
	_ "modernc.org/sqlite"
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		city TEXT NOT NULL,
		latest_date TEXT NOT NULL,
		days INTEGER NOT NULL,
		confirmed INTEGER NOT NULL,
		asymptomatic INTEGER NOT NULL,
		confirmed_from_risk INTEGER NOT NULL,
		asymptomatic_from_risk INTEGER NOT NULL,
		severe INTEGER NOT NULL,
		critical INTEGER NOT NULL,
		death INTEGER NOT NULL,
		in_hospital INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		published INTEGER DEFAULT 0,
		UNIQUE(run_id, city)
	);
	CREATE INDEX IF NOT EXISTS idx_reports_city ON reports(city);
	CREATE INDEX IF NOT EXISTS idx_reports_published ON reports(published);

	CREATE TABLE IF NOT EXISTS figures (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		city TEXT NOT NULL,
		kind TEXT NOT NULL,
		path TEXT NOT NULL,
		bytes INTEGER NOT NULL,
		UNIQUE(run_id, city, kind)
	);
	CREATE INDEX IF NOT EXISTS idx_figures_run ON figures(run_id, city);
	`

	_, err := db.conn.Exec(schema)
	return err
}

const reportColumns = `id, run_id, city, latest_date, days, confirmed, asymptomatic,
	confirmed_from_risk, asymptomatic_from_risk, severe, critical, death, in_hospital,
	created_at, published`

// InsertReport stores a report and sets its ID. Reports repeating a run and city are ignored.
func (db *DB) InsertReport(r *models.Report) error {
	query := `
	INSERT OR IGNORE INTO reports (run_id, city, latest_date, days, confirmed, asymptomatic,
		confirmed_from_risk, asymptomatic_from_risk, severe, critical, death, in_hospital, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	res, err := db.conn.Exec(query,
		r.RunID, r.City, r.LatestDate.Format("2006-01-02"), r.Days,
		r.Confirmed, r.Asymptomatic, r.ConfirmedFromRisk, r.AsymptomaticFromRisk,
		r.Severe, r.Critical, r.Death, r.InHospital,
		r.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting report: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading report id: %w", err)
	}
	r.ID = int(id)
	return nil
}

// InsertFigures stores the figures written by a run
func (db *DB) InsertFigures(figures []models.Figure) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
	INSERT OR REPLACE INTO figures (run_id, city, kind, path, bytes)
	VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range figures {
		if _, err := stmt.Exec(f.RunID, f.City, f.Kind, f.Path, f.Bytes); err != nil {
			return fmt.Errorf("inserting figure %s: %w", f.Path, err)
		}
	}

	return tx.Commit()
}

// ListReports retrieves reports newest first. An empty city lists every city; a limit of
// zero lists everything.
func (db *DB) ListReports(city string, limit int) ([]models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE (? = '' OR city = ?) ORDER BY id DESC`
	args := []interface{}{city, city}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return db.queryReports(query, args...)
}

// ListUnpublished retrieves reports not yet published, oldest first
func (db *DB) ListUnpublished(city string) ([]models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE (? = '' OR city = ?) AND published = 0 ORDER BY id ASC`
	return db.queryReports(query, city, city)
}

// LatestReport retrieves the most recent report of a city, nil if there is none
func (db *DB) LatestReport(city string) (*models.Report, error) {
	reports, err := db.ListReports(city, 1)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, nil
	}
	return &reports[0], nil
}

// ListFigures retrieves the figures of a run and city
func (db *DB) ListFigures(runID, city string) ([]models.Figure, error) {
	query := `
	SELECT run_id, city, kind, path, bytes
	FROM figures
	WHERE run_id = ? AND city = ?
	ORDER BY id
	`

	rows, err := db.conn.Query(query, runID, city)
	if err != nil {
		return nil, fmt.Errorf("querying figures: %w", err)
	}
	defer rows.Close()

	var results []models.Figure
	for rows.Next() {
		var f models.Figure
		if err := rows.Scan(&f.RunID, &f.City, &f.Kind, &f.Path, &f.Bytes); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, f)
	}

	return results, rows.Err()
}

// MarkPublished marks a report as published
func (db *DB) MarkPublished(id int) error {
	query := `UPDATE reports SET published = 1 WHERE id = ?`
	_, err := db.conn.Exec(query, id)
	if err != nil {
		return fmt.Errorf("marking report as published: %w", err)
	}
	return nil
}

func (db *DB) queryReports(query string, args ...interface{}) ([]models.Report, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	var results []models.Report
	for rows.Next() {
		var r models.Report
		var latestStr, createdStr string
		var published int

		if err := rows.Scan(&r.ID, &r.RunID, &r.City, &latestStr, &r.Days,
			&r.Confirmed, &r.Asymptomatic, &r.ConfirmedFromRisk, &r.AsymptomaticFromRisk,
			&r.Severe, &r.Critical, &r.Death, &r.InHospital, &createdStr, &published); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		r.LatestDate, err = time.Parse("2006-01-02", latestStr)
		if err != nil {
			return nil, fmt.Errorf("parsing latest_date: %w", err)
		}
		r.CreatedAt, err = time.Parse(time.RFC3339, createdStr)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		r.Published = published != 0

		results = append(results, r)
	}

	return results, rows.Err()
}
