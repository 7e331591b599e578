package backup

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	datamodel "github.com/frahmantamala/timekeeper/internal/core/datamodel/timerecording"
	"github.com/frahmantamala/timekeeper/internal/core/datamodel/user"
	"github.com/frahmantamala/timekeeper/internal/persistence"
)

const batchSize = 500

// Open returns a gorm handle on the SQLite file at path. Use ":memory:" in
// tests.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open backup database %s: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; ":memory:" is also private to a connection.
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Exporter writes point-in-time snapshots of the object store into a
// relational database for reporting. Each export replaces the previous
// contents of the data tables and appends one row to exports.
type Exporter struct {
	logger *slog.Logger
}

func NewExporter(lg *slog.Logger) *Exporter {
	return &Exporter{logger: lg}
}

func (e *Exporter) Export(ctx context.Context, source *persistence.Database, target *gorm.DB) (ExportRow, error) {
	snapshot := source.Copy()
	defer snapshot.Stop()

	if err := target.WithContext(ctx).AutoMigrate(allModels...); err != nil {
		return ExportRow{}, fmt.Errorf("migrate backup schema: %w", err)
	}

	employees := employeeRows(snapshot.Employees().GetAll())
	projects := projectRows(snapshot.Projects().GetAll())
	entries := timeEntryRows(snapshot.TimeEntries().GetAll())
	periods := periodRows(snapshot.SubmittedPeriods().GetAll())
	users := userRows(snapshot.Users().GetAll())

	summary := ExportRow{
		Employees:   len(employees),
		Projects:    len(projects),
		TimeEntries: len(entries),
		Periods:     len(periods),
		Users:       len(users),
	}

	err := target.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := replaceAll(tx, &EmployeeRow{}, employees); err != nil {
			return err
		}
		if err := replaceAll(tx, &ProjectRow{}, projects); err != nil {
			return err
		}
		if err := replaceAll(tx, &TimeEntryRow{}, entries); err != nil {
			return err
		}
		if err := replaceAll(tx, &SubmittedPeriodRow{}, periods); err != nil {
			return err
		}
		if err := replaceAll(tx, &UserRow{}, users); err != nil {
			return err
		}
		return tx.Create(&summary).Error
	})
	if err != nil {
		e.logger.Error("backup export failed", "error", err)
		return ExportRow{}, err
	}

	e.logger.Info("backup exported",
		"employees", summary.Employees,
		"projects", summary.Projects,
		"time_entries", summary.TimeEntries,
		"submitted_periods", summary.Periods,
		"users", summary.Users)
	return summary, nil
}

func replaceAll[R any](tx *gorm.DB, model *R, rows []R) error {
	if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
		return fmt.Errorf("clear %T: %w", model, err)
	}
	if len(rows) == 0 {
		return nil
	}
	if err := tx.CreateInBatches(rows, batchSize).Error; err != nil {
		return fmt.Errorf("insert %T: %w", model, err)
	}
	return nil
}

func employeeRows(in []datamodel.Employee) []EmployeeRow {
	out := make([]EmployeeRow, 0, len(in))
	for _, e := range in {
		out = append(out, EmployeeRow{ID: int64(e.ID), Name: e.Name})
	}
	return out
}

func projectRows(in []datamodel.Project) []ProjectRow {
	out := make([]ProjectRow, 0, len(in))
	for _, p := range in {
		out = append(out, ProjectRow{ID: int64(p.ID), Name: p.Name})
	}
	return out
}

func timeEntryRows(in []datamodel.TimeEntry) []TimeEntryRow {
	out := make([]TimeEntryRow, 0, len(in))
	for _, t := range in {
		out = append(out, TimeEntryRow{
			ID:         int64(t.ID),
			EmployeeID: int64(t.EmployeeID),
			ProjectID:  int64(t.ProjectID),
			Minutes:    t.Minutes,
			Date:       t.Date.Time(),
			Details:    t.Details,
		})
	}
	return out
}

func periodRows(in []datamodel.SubmittedPeriod) []SubmittedPeriodRow {
	out := make([]SubmittedPeriodRow, 0, len(in))
	for _, p := range in {
		out = append(out, SubmittedPeriodRow{
			ID:             int64(p.ID),
			EmployeeID:     int64(p.EmployeeID),
			Start:          p.Period.Start.Time(),
			End:            p.Period.End.Time(),
			ApprovalStatus: string(p.ApprovalStatus),
		})
	}
	return out
}

func userRows(in []user.User) []UserRow {
	out := make([]UserRow, 0, len(in))
	for _, u := range in {
		row := UserRow{ID: int64(u.ID), Name: u.Name, Role: string(u.Role)}
		if u.Employee.Valid {
			id := int64(u.Employee.ID)
			row.EmployeeID = &id
		}
		out = append(out, row)
	}
	return out
}
