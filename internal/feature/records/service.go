package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"memorial-records-api/internal/core/cache"
	"memorial-records-api/internal/domain"
	"memorial-records-api/pkg/derive"
)

// ErrMissingID 更新请求缺 id，按 400 处理。
var ErrMissingID = errors.New("missing id")

const categoryIDsTTL = 30 * time.Second

// Service 行查询服务：筛选 + 分页 + 兜底 + 失败降级为空集。
type Service struct {
	persons domain.PersonRepository
	rows    domain.RowRepository
	cache   *cache.Cache // 可为 nil（未配置 redis）
	log     *zap.Logger
	now     func() time.Time
}

func NewService(persons domain.PersonRepository, rows domain.RowRepository, c *cache.Cache, l *zap.Logger) *Service {
	return &Service{persons: persons, rows: rows, cache: c, log: l, now: time.Now}
}

// Query 来自查询串的列表参数，全部可选。
type Query struct {
	Page     int
	Limit    int
	Name     string
	Age      string
	Sex      string
	Category string
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// ListResult Fallback=true 时 Data 为空、Rows 携带通用 blob。
type ListResult struct {
	Data       []domain.Person
	Pagination Pagination
	Fallback   bool
	Rows       []json.RawMessage
}

// DetailView 详情页：原始记录 + 派生展示属性。
type DetailView struct {
	domain.Person
	Category    string  `json:"category"`
	DateOfDeath string  `json:"dateOfDeath"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	HasImage    bool    `json:"hasImage"`
}

// List 读路径只降级不报错：任何存储异常都返回空结果。
func (s *Service) List(ctx context.Context, q Query) ListResult {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 1000
	}

	res, err := s.list(ctx, q)
	if err != nil {
		s.log.Warn("list rows failed, returning empty set", zap.Error(err))
		return ListResult{
			Data:       []domain.Person{},
			Pagination: Pagination{Page: q.Page, Limit: q.Limit},
		}
	}
	return res
}

func (s *Service) list(ctx context.Context, q Query) (ListResult, error) {
	filter := domain.PersonFilter{
		Name: strings.TrimSpace(q.Name),
		Sex:  ParseSexFilter(q.Sex),
		Age:  ParseAgeFilter(q.Age),
	}
	offset := (q.Page - 1) * q.Limit

	if cat := ParseCategoryFilter(q.Category, derive.Categories); cat != "" {
		return s.listByCategory(ctx, filter, cat, q)
	}

	persons, total, err := s.persons.List(filter, offset, q.Limit)
	if err != nil {
		return ListResult{}, err
	}
	if total == 0 {
		if all, err := s.persons.CountAll(); err == nil && all == 0 {
			return s.listFallbackRows(offset, q)
		}
	}
	return ListResult{
		Data:       persons,
		Pagination: paginate(q.Page, q.Limit, total),
	}, nil
}

// listByCategory category 不是存储列，谓词推不下去：
// 先按其余条件取全部 ID（保持 created_at DESC），进程内算派生类别，
// 过滤后再分页、按页回查整行。total 是过滤后的数量。
func (s *Service) listByCategory(ctx context.Context, filter domain.PersonFilter, cat string, q Query) (ListResult, error) {
	ids, err := s.categoryIDs(ctx, filter, cat)
	if err != nil {
		return ListResult{}, err
	}
	total := int64(len(ids))
	if total == 0 {
		if all, err := s.persons.CountAll(); err == nil && all == 0 {
			return s.listFallbackRows((q.Page-1)*q.Limit, q)
		}
		return ListResult{Data: []domain.Person{}, Pagination: paginate(q.Page, q.Limit, 0)}, nil
	}

	start := (q.Page - 1) * q.Limit
	if start > len(ids) {
		start = len(ids)
	}
	end := start + q.Limit
	if end > len(ids) {
		end = len(ids)
	}
	persons, err := s.persons.FindByIDs(ids[start:end])
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{
		Data:       persons,
		Pagination: paginate(q.Page, q.Limit, total),
	}, nil
}

// categoryIDs 全表扫描的结果短暂缓存（singleflight 合并并发回源）。
func (s *Service) categoryIDs(ctx context.Context, filter domain.PersonFilter, cat string) ([]string, error) {
	load := func(context.Context) (*[]string, error) {
		ids, err := s.persons.ListIDs(filter)
		if err != nil {
			return nil, err
		}
		matched := make([]string, 0, len(ids))
		for _, id := range ids {
			if derive.CategoryOf(id) == cat {
				matched = append(matched, id)
			}
		}
		return &matched, nil
	}
	if s.cache == nil {
		ids, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return *ids, nil
	}
	key := categoryScanKey(filter, cat)
	ids, err := cache.GetOrLoadJSON[[]string](s.cache, ctx, key, categoryIDsTTL, load)
	if err != nil || ids == nil {
		// 缓存故障不影响正确性，直接回源
		fresh, lerr := load(ctx)
		if lerr != nil {
			return nil, lerr
		}
		return *fresh, nil
	}
	return *ids, nil
}

func categoryScanKey(f domain.PersonFilter, cat string) string {
	age := ""
	if f.Age != nil {
		age = fmt.Sprintf("%d:%d:%d", f.Age.Op, f.Age.Min, f.Age.Max)
	}
	return fmt.Sprintf("catids:%s|%s|%s|%s", cat, strings.ToLower(f.Name), f.Sex, age)
}

func (s *Service) listFallbackRows(offset int, q Query) (ListResult, error) {
	rows, err := s.rows.List(offset, q.Limit)
	if err != nil {
		return ListResult{}, err
	}
	blobs := make([]json.RawMessage, 0, len(rows))
	for _, r := range rows {
		blobs = append(blobs, r.Data)
	}
	return ListResult{
		Data:       []domain.Person{},
		Pagination: Pagination{Page: q.Page, Limit: q.Limit},
		Fallback:   true,
		Rows:       blobs,
	}, nil
}

// Get 详情：查不到返回 (nil, nil)。
func (s *Service) Get(ctx context.Context, id string) (*DetailView, error) {
	p, err := s.persons.FindByID(id)
	if err != nil || p == nil {
		return nil, err
	}
	lat, lon := derive.GeoOf(p.ID)
	dod := time.UnixMilli(derive.DateOfDeathOf(p.ID, s.now().UnixMilli())).UTC()
	return &DetailView{
		Person:      *p,
		Category:    derive.CategoryOf(p.ID),
		DateOfDeath: dod.Format("2006-01-02"),
		Lat:         lat,
		Lon:         lon,
		HasImage:    derive.HasImageOf(p.ID),
	}, nil
}

// Update 整条覆盖。缺 id 是校验错误；其余（含未知 id）统一按存储失败上抛。
func (s *Service) Update(ctx context.Context, p *domain.Person) (*domain.Person, error) {
	if strings.TrimSpace(p.ID) == "" {
		return nil, ErrMissingID
	}
	existing, err := s.persons.FindByID(p.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("update person %s: no such record", p.ID)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = existing.CreatedAt
	}
	if err := s.persons.Update(p); err != nil {
		return nil, err
	}
	return p, nil
}

func paginate(page, limit int, total int64) Pagination {
	tp := (total + int64(limit) - 1) / int64(limit)
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: tp}
}
