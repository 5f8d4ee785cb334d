package repo

import (
	"errors"

	"gorm.io/gorm"

	"memorial-records-api/internal/domain"
)

type PersonRepo struct{ db *gorm.DB }

func NewPersonRepo(db *gorm.DB) *PersonRepo { return &PersonRepo{db: db} }

// scope 把 PersonFilter 翻译成 where 子句
func (r *PersonRepo) scope(f domain.PersonFilter) *gorm.DB {
	q := r.db.Model(&domain.Person{})
	if f.Name != "" {
		like := "%" + f.Name + "%"
		q = q.Where("LOWER(name) LIKE LOWER(?) OR LOWER(en_name) LIKE LOWER(?)", like, like)
	}
	if f.Sex == "m" || f.Sex == "f" {
		q = q.Where("sex = ?", f.Sex)
	}
	if a := f.Age; a != nil {
		switch a.Op {
		case domain.AgeRange:
			q = q.Where("age >= ? AND age <= ?", a.Min, a.Max)
		case domain.AgeGt:
			q = q.Where("age > ?", a.Min)
		case domain.AgeLt:
			q = q.Where("age < ?", a.Min)
		case domain.AgeGte:
			q = q.Where("age >= ?", a.Min)
		case domain.AgeLte:
			q = q.Where("age <= ?", a.Min)
		default:
			q = q.Where("age = ?", a.Min)
		}
	}
	return q
}

func (r *PersonRepo) List(f domain.PersonFilter, offset, limit int) ([]domain.Person, int64, error) {
	q := r.scope(f)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var persons []domain.Person
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&persons).Error; err != nil {
		return nil, 0, err
	}
	return persons, total, nil
}

// ListIDs 只取 ID 列，保持 created_at DESC 顺序（category 过滤要在进程内做）
func (r *PersonRepo) ListIDs(f domain.PersonFilter) ([]string, error) {
	var ids []string
	err := r.scope(f).Order("created_at DESC").Pluck("id", &ids).Error
	return ids, err
}

// FindByIDs 按传入的 ID 顺序返回（分页切片后的回查）
func (r *PersonRepo) FindByIDs(ids []string) ([]domain.Person, error) {
	if len(ids) == 0 {
		return []domain.Person{}, nil
	}
	var persons []domain.Person
	if err := r.db.Where("id IN ?", ids).Find(&persons).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Person, len(persons))
	for _, p := range persons {
		byID[p.ID] = p
	}
	ordered := make([]domain.Person, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

func (r *PersonRepo) FindByID(id string) (*domain.Person, error) {
	var p domain.Person
	err := r.db.First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *PersonRepo) Update(p *domain.Person) error {
	return r.db.Save(p).Error
}

// ReplaceAll 整表替换：单事务内先清空再分批写入，导入中途的读请求不会看到空表
func (r *PersonRepo) ReplaceAll(persons []domain.Person) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.Person{}).Error; err != nil {
			return err
		}
		if len(persons) == 0 {
			return nil
		}
		return tx.CreateInBatches(persons, 1000).Error
	})
}

func (r *PersonRepo) CountAll() (int64, error) {
	var total int64
	err := r.db.Model(&domain.Person{}).Count(&total).Error
	return total, err
}
