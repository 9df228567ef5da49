/*
Package sqlite provides a SQLite-backed implementation of records.Store.

PURPOSE:
  Persists employees, institutions, assessments, integration credits and
  education credits. The store is a dumb collaborator: it never computes
  derived fields, it stores what records.Service hands it.

KEY TABLES:
  employees:           Pegawai (unique NIP)
  institutions:        Instansi with optional default assessor
  assessments:         Penilaian angka kredit with derived columns
  integration_credits: Angka integrasi
  education_credits:   AK pendidikan with derived columns

DECIMALS:
  prosentase, koefisien, angka_kredit and every other credit value are
  stored as TEXT in decimal.Decimal's string form, so values round-trip
  exactly. REAL would reintroduce binary float error.

NO CASCADE:
  There are no foreign keys. Deleting an employee leaves its assessments in
  place; reports print "-" for the missing employee.

CONCURRENCY:
  Uses sync.RWMutex around every statement, like the in-memory store.

MIGRATION:
  Versioned goose migrations are embedded from migrations/*.sql and applied
  on New().

USAGE:
  store, err := sqlite.New("./angka_kredit.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := records.NewService(store, nil)

SEE ALSO:
  - records/store.go: Interface definitions
  - records/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"
	"github.com/warp/angka-kredit/credit"
	"github.com/warp/angka-kredit/records"
)

//go:embed migrations/*.sql
var migrations embed.FS

// goose keeps its dialect and filesystem in package globals.
var gooseMu sync.Mutex

// Store implements records.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ records.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.Up(s.db, "migrations")
}

// SchemaVersion returns the applied migration version.
func (s *Store) SchemaVersion() (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()
	if err := goose.SetDialect("sqlite3"); err != nil {
		return 0, err
	}
	return goose.GetDBVersion(s.db)
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Reset deletes every record. Used when loading demo data.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"education_credits", "integration_credits", "assessments", "institutions", "employees"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// EMPLOYEES
// =============================================================================

const employeeColumns = `id, nama, nip, no_seri_karpeg, tempat_lahir, tanggal_lahir, jenis_kelamin,
	pangkat, golongan, tmt_pangkat, jabatan, tmt_jabatan, unit_kerja, created_at, updated_at`

func (s *Store) SaveEmployee(ctx context.Context, e records.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (` + employeeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			nama = excluded.nama,
			nip = excluded.nip,
			no_seri_karpeg = excluded.no_seri_karpeg,
			tempat_lahir = excluded.tempat_lahir,
			tanggal_lahir = excluded.tanggal_lahir,
			jenis_kelamin = excluded.jenis_kelamin,
			pangkat = excluded.pangkat,
			golongan = excluded.golongan,
			tmt_pangkat = excluded.tmt_pangkat,
			jabatan = excluded.jabatan,
			tmt_jabatan = excluded.tmt_jabatan,
			unit_kerja = excluded.unit_kerja,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		e.ID, e.Name, e.NIP,
		nullString(e.CardSerial), nullString(e.BirthPlace), nullString(e.BirthDate),
		e.Gender,
		nullString(e.Rank), nullString(e.Grade), nullString(e.RankTMT),
		nullString(e.Position), nullString(e.PositionTMT), nullString(e.Unit),
		formatTime(e.CreatedAt), formatTime(e.UpdatedAt),
	)
	if isUniqueConstraintError(err) {
		return fmt.Errorf("nip %s: %w", e.NIP, records.ErrDuplicate)
	}
	return err
}

func (s *Store) GetEmployee(ctx context.Context, id string) (*records.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+employeeColumns+" FROM employees WHERE id = ?", id)
	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, records.NotFound("employee", id)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListEmployees orders by name.
func (s *Store) ListEmployees(ctx context.Context) ([]records.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+employeeColumns+" FROM employees ORDER BY nama, rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []records.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "employees", "employee", id)
}

func scanEmployee(sc scanner) (records.Employee, error) {
	var e records.Employee
	var cardSerial, birthPlace, birthDate, rank, grade, rankTMT, position, positionTMT, unit sql.NullString
	var createdAt, updatedAt string
	err := sc.Scan(&e.ID, &e.Name, &e.NIP, &cardSerial, &birthPlace, &birthDate, &e.Gender,
		&rank, &grade, &rankTMT, &position, &positionTMT, &unit, &createdAt, &updatedAt)
	if err != nil {
		return e, err
	}
	e.CardSerial = cardSerial.String
	e.BirthPlace = birthPlace.String
	e.BirthDate = birthDate.String
	e.Rank = rank.String
	e.Grade = grade.String
	e.RankTMT = rankTMT.String
	e.Position = position.String
	e.PositionTMT = positionTMT.String
	e.Unit = unit.String
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	return e, nil
}

// =============================================================================
// INSTITUTIONS
// =============================================================================

const institutionColumns = `id, name, penilai_nama, penilai_nip, penilai_pangkat, penilai_golongan, created_at, updated_at`

func (s *Store) SaveInstitution(ctx context.Context, i records.Institution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO institutions (` + institutionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			penilai_nama = excluded.penilai_nama,
			penilai_nip = excluded.penilai_nip,
			penilai_pangkat = excluded.penilai_pangkat,
			penilai_golongan = excluded.penilai_golongan,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		i.ID, i.Name,
		nullString(i.AssessorName), nullString(i.AssessorNIP),
		nullString(i.AssessorRank), nullString(i.AssessorGrade),
		formatTime(i.CreatedAt), formatTime(i.UpdatedAt),
	)
	return err
}

func (s *Store) GetInstitution(ctx context.Context, id string) (*records.Institution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+institutionColumns+" FROM institutions WHERE id = ?", id)
	i, err := scanInstitution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, records.NotFound("institution", id)
	}
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (s *Store) ListInstitutions(ctx context.Context) ([]records.Institution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+institutionColumns+" FROM institutions ORDER BY name, rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []records.Institution
	for rows.Next() {
		i, err := scanInstitution(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (s *Store) DeleteInstitution(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "institutions", "institution", id)
}

func scanInstitution(sc scanner) (records.Institution, error) {
	var i records.Institution
	var name, nip, rank, grade sql.NullString
	var createdAt, updatedAt string
	if err := sc.Scan(&i.ID, &i.Name, &name, &nip, &rank, &grade, &createdAt, &updatedAt); err != nil {
		return i, err
	}
	i.AssessorName = name.String
	i.AssessorNIP = nip.String
	i.AssessorRank = rank.String
	i.AssessorGrade = grade.String
	i.CreatedAt = parseTime(createdAt)
	i.UpdatedAt = parseTime(updatedAt)
	return i, nil
}

// =============================================================================
// ASSESSMENTS
// =============================================================================

const assessmentColumns = `id, employee_id, institution_id, assessor_id, jenjang, predikat,
	period_start, period_end, determined_on, determined_at,
	prosentase, koefisien, angka_kredit, created_at, updated_at`

func (s *Store) SaveAssessment(ctx context.Context, a records.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO assessments (` + assessmentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee_id = excluded.employee_id,
			institution_id = excluded.institution_id,
			assessor_id = excluded.assessor_id,
			jenjang = excluded.jenjang,
			predikat = excluded.predikat,
			period_start = excluded.period_start,
			period_end = excluded.period_end,
			determined_on = excluded.determined_on,
			determined_at = excluded.determined_at,
			prosentase = excluded.prosentase,
			koefisien = excluded.koefisien,
			angka_kredit = excluded.angka_kredit,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		a.ID, a.EmployeeID, nullString(a.InstitutionID), nullString(a.AssessorID),
		nullString(a.JobLevel), nullString(string(a.Predicate)),
		nullString(a.PeriodStart), nullString(a.PeriodEnd),
		nullString(a.DeterminedOn), nullString(a.DeterminedAt),
		a.Percentage.String(), a.Coefficient.String(), a.Credit.String(),
		formatTime(a.CreatedAt), formatTime(a.UpdatedAt),
	)
	return err
}

func (s *Store) GetAssessment(ctx context.Context, id string) (*records.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+assessmentColumns+" FROM assessments WHERE id = ?", id)
	a, err := scanAssessment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, records.NotFound("assessment", id)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAssessments orders by parsed period end, then insertion. The sort
// runs in Go because period_end holds whatever date format was entered.
func (s *Store) ListAssessments(ctx context.Context, employeeID string) ([]records.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + assessmentColumns + " FROM assessments"
	var args []any
	if employeeID != "" {
		query += " WHERE employee_id = ?"
		args = append(args, employeeID)
	}
	query += " ORDER BY rowid"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []records.Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(out, func(a, b records.Assessment) int {
		ta, _ := credit.ParseDate(a.PeriodEnd)
		tb, _ := credit.ParseDate(b.PeriodEnd)
		return ta.Compare(tb)
	})
	return out, nil
}

func (s *Store) DeleteAssessment(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "assessments", "assessment", id)
}

func scanAssessment(sc scanner) (records.Assessment, error) {
	var a records.Assessment
	var institutionID, assessorID, jobLevel, predicate, start, end, on, at sql.NullString
	var pct, coef, ak, createdAt, updatedAt string
	err := sc.Scan(&a.ID, &a.EmployeeID, &institutionID, &assessorID, &jobLevel, &predicate,
		&start, &end, &on, &at, &pct, &coef, &ak, &createdAt, &updatedAt)
	if err != nil {
		return a, err
	}
	a.InstitutionID = institutionID.String
	a.AssessorID = assessorID.String
	a.JobLevel = jobLevel.String
	a.Predicate = credit.Predicate(predicate.String)
	a.PeriodStart = start.String
	a.PeriodEnd = end.String
	a.DeterminedOn = on.String
	a.DeterminedAt = at.String
	if a.Percentage, err = parseDecimal("prosentase", pct); err != nil {
		return a, err
	}
	if a.Coefficient, err = parseDecimal("koefisien", coef); err != nil {
		return a, err
	}
	if a.Credit, err = parseDecimal("angka_kredit", ak); err != nil {
		return a, err
	}
	a.CreatedAt = parseTime(createdAt)
	a.UpdatedAt = parseTime(updatedAt)
	return a, nil
}

// =============================================================================
// INTEGRATION CREDITS
// =============================================================================

const integrationColumns = `id, employee_id, value, created_at, updated_at`

func (s *Store) SaveIntegrationCredit(ctx context.Context, c records.IntegrationCredit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO integration_credits (` + integrationColumns + `)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee_id = excluded.employee_id,
			value = excluded.value,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		c.ID, c.EmployeeID, c.Value.String(), formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
	return err
}

func (s *Store) GetIntegrationCredit(ctx context.Context, id string) (*records.IntegrationCredit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+integrationColumns+" FROM integration_credits WHERE id = ?", id)
	c, err := scanIntegration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, records.NotFound("integration credit", id)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ListIntegrationCredits(ctx context.Context, employeeID string) ([]records.IntegrationCredit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + integrationColumns + " FROM integration_credits"
	var args []any
	if employeeID != "" {
		query += " WHERE employee_id = ?"
		args = append(args, employeeID)
	}
	query += " ORDER BY rowid"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []records.IntegrationCredit
	for rows.Next() {
		c, err := scanIntegration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) DeleteIntegrationCredit(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "integration_credits", "integration credit", id)
}

func scanIntegration(sc scanner) (records.IntegrationCredit, error) {
	var c records.IntegrationCredit
	var value, createdAt, updatedAt string
	if err := sc.Scan(&c.ID, &c.EmployeeID, &value, &createdAt, &updatedAt); err != nil {
		return c, err
	}
	var err error
	if c.Value, err = parseDecimal("value", value); err != nil {
		return c, err
	}
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return c, nil
}

// =============================================================================
// EDUCATION CREDITS
// =============================================================================

const educationColumns = `id, employee_id, nama_pendidikan, jenjang, tahun_lulus, metode,
	nilai_next_pangkat, calculated_value, created_at, updated_at`

func (s *Store) SaveEducationCredit(ctx context.Context, c records.EducationCredit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO education_credits (` + educationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee_id = excluded.employee_id,
			nama_pendidikan = excluded.nama_pendidikan,
			jenjang = excluded.jenjang,
			tahun_lulus = excluded.tahun_lulus,
			metode = excluded.metode,
			nilai_next_pangkat = excluded.nilai_next_pangkat,
			calculated_value = excluded.calculated_value,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		c.ID, c.EmployeeID, nullString(c.Name), nullString(c.Level), c.GraduationYear,
		nullString(string(c.Method)), c.NextRankValue.String(), c.Value.String(),
		formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
	)
	return err
}

func (s *Store) GetEducationCredit(ctx context.Context, id string) (*records.EducationCredit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+educationColumns+" FROM education_credits WHERE id = ?", id)
	c, err := scanEducation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, records.NotFound("education credit", id)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ListEducationCredits(ctx context.Context, employeeID string) ([]records.EducationCredit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + educationColumns + " FROM education_credits"
	var args []any
	if employeeID != "" {
		query += " WHERE employee_id = ?"
		args = append(args, employeeID)
	}
	query += " ORDER BY rowid"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []records.EducationCredit
	for rows.Next() {
		c, err := scanEducation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) DeleteEducationCredit(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "education_credits", "education credit", id)
}

func scanEducation(sc scanner) (records.EducationCredit, error) {
	var c records.EducationCredit
	var name, level, method sql.NullString
	var basis, value, createdAt, updatedAt string
	err := sc.Scan(&c.ID, &c.EmployeeID, &name, &level, &c.GraduationYear, &method,
		&basis, &value, &createdAt, &updatedAt)
	if err != nil {
		return c, err
	}
	c.Name = name.String
	c.Level = level.String
	c.Method = credit.EducationMethod(method.String)
	if c.NextRankValue, err = parseDecimal("nilai_next_pangkat", basis); err != nil {
		return c, err
	}
	if c.Value, err = parseDecimal("calculated_value", value); err != nil {
		return c, err
	}
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return c, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) deleteByID(ctx context.Context, table, kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return records.NotFound(kind, id)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func parseDecimal(column, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("column %s: %w", column, err)
	}
	return d, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
