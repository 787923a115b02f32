package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"quiz-platform/internal/models"
)

// UserStore is the importer's view of user persistence. FindByEmail returns
// nil when the email is unknown.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type ImportService struct {
	Users UserStore
}

func NewImportService(users UserStore) *ImportService {
	return &ImportService{Users: users}
}

// ImportReport lists what a spreadsheet upload actually did. Rows missing a
// required column and rows whose email already has an account are skipped,
// not failed.
type ImportReport struct {
	BatchID  string   `json:"batchId"`
	Imported []string `json:"users"`
	Skipped  int      `json:"skipped"`
}

// ImportWorkbook seeds accounts from the first sheet of an xlsx workbook.
// The header row names the columns; name, email and password are required,
// role defaults to student unless the row carries a recognized role.
// Passwords are stored bcrypt-hashed.
func (s *ImportService) ImportWorkbook(ctx context.Context, r io.Reader) (*ImportReport, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	columns := map[string]int{}
	for i, header := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, required := range []string{"name", "email", "password"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("sheet %q is missing a %q column", sheets[0], required)
		}
	}

	report := &ImportReport{BatchID: uuid.NewString(), Imported: []string{}}
	for _, row := range rows[1:] {
		name := cell(row, columns["name"])
		email := cell(row, columns["email"])
		password := cell(row, columns["password"])
		if name == "" || email == "" || password == "" {
			report.Skipped++
			continue
		}

		existing, err := s.Users.FindByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("look up %s: %w", email, err)
		}
		if existing != nil {
			report.Skipped++
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", email, err)
		}

		user := &models.User{
			Name:      name,
			Email:     email,
			Password:  string(hash),
			Role:      normalizeRole(cell(row, roleColumn(columns))),
			CreatedAt: time.Now(),
		}
		if err := s.Users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create %s: %w", email, err)
		}
		report.Imported = append(report.Imported, email)
	}
	return report, nil
}

func roleColumn(columns map[string]int) int {
	if i, ok := columns["role"]; ok {
		return i
	}
	return -1
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func normalizeRole(role string) string {
	switch strings.ToLower(role) {
	case models.RoleAdmin:
		return models.RoleAdmin
	default:
		return models.RoleStudent
	}
}
