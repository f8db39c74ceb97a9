// cmd/backup/main.go
// Copies the core tournament tables out of PostgreSQL into a MySQL archive
// table and/or an xlsx workbook.
//
// Usage:
//
//	MYSQL_DSN="user:pass@tcp(host:3306)/archive?parseTime=true" \
//	BACKUP_XLSX_DIR=./backups \
//	DB_PASS="pgpass" \
//	go run ./cmd/backup
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/xuri/excelize/v2"

	"github.com/padraicbc/juniortour/config"
	bundb "github.com/padraicbc/juniortour/db"
)

const batchSize = 500

// table describes one source table: key is a SQL expression that
// identifies a row, drop lists columns left out of the payload and
// sheetDrop columns left out of the workbook only.
type table struct {
	name      string
	key       string
	drop      []string
	sheetDrop []string
}

var coreTables = []table{
	{name: "tournaments", key: "id::text"},
	{name: "tournament_holes", key: "tournament_id::text || ':' || hole::text"},
	{name: "registrations", key: "id::text"},
	{name: "flights", key: "id::text"},
	{name: "flight_players", key: "flight_id::text || ':' || registration_id::text"},
	{name: "hole_entries", key: "id::text"},
	{name: "scorecard_signatures", key: "id::text", sheetDrop: []string{"signature_data_url"}},
	{name: "scorecard_documents", key: "id::text", drop: []string{"body"}},
}

// row is one source row: its key and its JSON object payload.
type row struct {
	Key     string
	Payload string
}

func main() {
	ctx := context.Background()
	cfg := config.LoadBackup()

	if cfg.MySQLDSN == "" && cfg.XLSXDir == "" {
		log.Fatal("nothing to do: set MYSQL_DSN and/or BACKUP_XLSX_DIR")
	}

	pgDB, err := bundb.Open(ctx, cfg.PostgresDSN(), false)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pgDB.Close()
	log.Println("connected to PostgreSQL")

	dump := make(map[string][]row, len(coreTables))
	for _, t := range coreTables {
		rows, err := readTable(ctx, pgDB, t)
		if err != nil {
			log.Fatalf("read %s: %v", t.name, err)
		}
		dump[t.name] = rows
	}

	runID := uuid.New()
	now := time.Now().UTC()

	if cfg.MySQLDSN != "" {
		myDB, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatalf("open mysql: %v", err)
		}
		defer myDB.Close()
		myDB.SetMaxOpenConns(4)
		if err := myDB.PingContext(ctx); err != nil {
			log.Fatalf("ping mysql: %v", err)
		}
		if _, err := myDB.ExecContext(ctx, archiveDDL); err != nil {
			log.Fatalf("create archive table: %v", err)
		}

		for _, t := range coreTables {
			n, err := archiveRows(ctx, myDB, runID, t.name, now, dump[t.name])
			if err != nil {
				log.Fatalf("archive %s: %v", t.name, err)
			}
			log.Printf("%-22s  %d rows archived", t.name, n)
		}
	}

	if cfg.XLSXDir != "" {
		path, err := writeWorkbook(cfg.XLSXDir, now, dump)
		if err != nil {
			log.Fatalf("write workbook: %v", err)
		}
		log.Printf("workbook written to %s", path)
	}

	log.Printf("backup %s complete", runID)
}

// --- postgres ---

func selectSQL(t table) string {
	payload := "to_jsonb(t)"
	for _, c := range t.drop {
		payload += " - '" + c + "'"
	}
	return fmt.Sprintf("SELECT %s AS k, (%s)::text AS p FROM %s AS t ORDER BY 1", t.key, payload, t.name)
}

func readTable(ctx context.Context, pgDB *bun.DB, t table) ([]row, error) {
	rows, err := pgDB.QueryContext(ctx, selectSQL(t))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.Key, &r.Payload); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// --- mysql archive ---

const archiveDDL = `CREATE TABLE IF NOT EXISTS backup_rows (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	run_id CHAR(36) NOT NULL,
	table_name VARCHAR(64) NOT NULL,
	row_key VARCHAR(128) NOT NULL,
	payload JSON NOT NULL,
	backed_up_at DATETIME(6) NOT NULL,
	UNIQUE KEY backup_rows_key (run_id, table_name, row_key)
)`

// insertSQL builds a multi-row insert for n rows; re-runs of the same
// run id skip rows already archived.
func insertSQL(n int) string {
	var b strings.Builder
	b.WriteString("INSERT IGNORE INTO backup_rows (run_id, table_name, row_key, payload, backed_up_at) VALUES ")
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(?, ?, ?, ?, ?)")
	}
	return b.String()
}

func archiveBatch(ctx context.Context, myDB *sql.DB, runID uuid.UUID, name string, at time.Time, batch []row) error {
	if len(batch) == 0 {
		return nil
	}
	args := make([]any, 0, len(batch)*5)
	for _, r := range batch {
		args = append(args, runID.String(), name, r.Key, r.Payload, at)
	}
	_, err := myDB.ExecContext(ctx, insertSQL(len(batch)), args...)
	return err
}

func archiveRows(ctx context.Context, myDB *sql.DB, runID uuid.UUID, name string, at time.Time, rows []row) (int, error) {
	total := 0
	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		if err := archiveBatch(ctx, myDB, runID, name, at, rows[start:end]); err != nil {
			return total, err
		}
		total += end - start
	}
	return total, nil
}

// --- xlsx ---

// columns returns the union of payload keys, sorted, and the decoded rows.
// Keys in skip are left out.
func columns(rows []row, skip ...string) ([]string, []map[string]any, error) {
	seen := map[string]bool{}
	decoded := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		var m map[string]any
		if err := json.Unmarshal([]byte(r.Payload), &m); err != nil {
			return nil, nil, fmt.Errorf("row %s: %w", r.Key, err)
		}
		for _, k := range skip {
			delete(m, k)
		}
		for k := range m {
			seen[k] = true
		}
		decoded = append(decoded, m)
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols, decoded, nil
}

// cellValue flattens a JSON value for a cell. Strings longer than a cell
// can hold are an error, excelize would truncate them.
func cellValue(v any) (any, error) {
	var s string
	switch x := v.(type) {
	case nil:
		return "", nil
	case map[string]any, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return nil, err
		}
		s = string(b)
	case string:
		s = x
	default:
		return x, nil
	}
	if n := utf8.RuneCountInString(s); n > excelize.TotalCellChars {
		return nil, fmt.Errorf("value of %d characters exceeds the %d cell limit", n, excelize.TotalCellChars)
	}
	return s, nil
}

func writeSheet(f *excelize.File, t table, rows []row) error {
	name := t.name
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	cols, decoded, err := columns(rows, t.sheetDrop...)
	if err != nil || len(cols) == 0 {
		return err
	}
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	for i, m := range decoded {
		values := make([]any, len(cols))
		for j, c := range cols {
			if values[j], err = cellValue(m[c]); err != nil {
				return fmt.Errorf("row %d column %s: %w", i+1, c, err)
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

func workbookName(at time.Time) string {
	return "juniortour_backup_" + at.Format("2006-01-02_15-04-05") + ".xlsx"
}

func writeWorkbook(dir string, at time.Time, dump map[string][]row) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	f := excelize.NewFile()
	defer f.Close()

	for _, t := range coreTables {
		if err := writeSheet(f, t, dump[t.name]); err != nil {
			return "", fmt.Errorf("sheet %s: %w", t.name, err)
		}
	}
	if idx, err := f.GetSheetIndex(coreTables[0].name); err == nil {
		f.SetActiveSheet(idx)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return "", err
	}

	path := filepath.Join(dir, workbookName(at))
	if err := f.SaveAs(path); err != nil {
		return "", err
	}
	return path, nil
}
