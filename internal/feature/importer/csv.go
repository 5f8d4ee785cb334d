// Package importer CSV 批量导入：整表替换，不做 merge/upsert。
package importer

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"memorial-records-api/internal/domain"
)

// personHeader 表头恰好是这组字段时按 Person 入库，否则整行存 JSON。
var personHeader = []string{"id", "name", "en_name", "age", "dob", "sex", "source"}

type Service struct {
	persons domain.PersonRepository
	rows    domain.RowRepository
	log     *zap.Logger
}

func NewService(persons domain.PersonRepository, rows domain.RowRepository, l *zap.Logger) *Service {
	return &Service{persons: persons, rows: rows, log: l}
}

// Result Table 标明落到了哪张表。
type Result struct {
	Table string `json:"table"`
	Count int    `json:"count"`
}

// Import 解析带表头的 CSV 并整表替换。解析或写库失败整体中止，
// 事务回滚（见 repo.ReplaceAll），不会留下半截数据。
func (s *Service) Import(ctx context.Context, r io.Reader) (Result, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return Result{}, fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var records []map[string]string
	for {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("read csv row: %w", err)
		}
		if isEmptyRow(row) {
			continue
		}
		rec := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = strings.TrimSpace(row[i])
			} else {
				rec[col] = ""
			}
		}
		records = append(records, rec)
	}

	if hasPersonHeader(header) {
		persons := make([]domain.Person, 0, len(records))
		for _, rec := range records {
			persons = append(persons, coercePerson(rec))
		}
		if err := s.persons.ReplaceAll(persons); err != nil {
			return Result{}, fmt.Errorf("replace persons: %w", err)
		}
		s.log.Info("csv import replaced persons", zap.Int("count", len(persons)))
		return Result{Table: "Person", Count: len(persons)}, nil
	}

	rows := make([]domain.Row, 0, len(records))
	for _, rec := range records {
		blob, err := json.Marshal(rec)
		if err != nil {
			return Result{}, fmt.Errorf("encode row: %w", err)
		}
		rows = append(rows, domain.Row{ID: uuid.NewString(), Data: blob})
	}
	if err := s.rows.ReplaceAll(rows); err != nil {
		return Result{}, fmt.Errorf("replace rows: %w", err)
	}
	s.log.Info("csv import replaced generic rows", zap.Int("count", len(rows)))
	return Result{Table: "Row", Count: len(rows)}, nil
}

func hasPersonHeader(header []string) bool {
	set := make(map[string]bool, len(header))
	for _, h := range header {
		set[h] = true
	}
	for _, want := range personHeader {
		if !set[want] {
			return false
		}
	}
	return true
}

// coercePerson 字段矫正：数字/日期/性别解析失败一律置空，不报错。
func coercePerson(rec map[string]string) domain.Person {
	p := domain.Person{
		ID:     rec["id"],
		Name:   rec["name"],
		EnName: rec["en_name"],
	}
	if v, err := strconv.Atoi(rec["age"]); err == nil {
		p.Age = &v
	}
	if dob := parseDate(rec["dob"]); dob != nil {
		p.DOB = dob
	}
	if sex := rec["sex"]; sex == "m" || sex == "f" {
		p.Sex = &sex
	}
	if src := rec["source"]; src != "" {
		p.Source = &src
	}
	return p
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006/01/02", "01/02/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
