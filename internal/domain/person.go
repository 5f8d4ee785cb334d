package domain

import (
	"encoding/json"
	"time"
)

// Person 一条公开记录。ID 在导入时分配，之后不变。
type Person struct {
	ID        string     `gorm:"primaryKey;size:64" json:"id"`
	Name      string     `gorm:"size:255" json:"name"`
	EnName    string     `gorm:"size:255;column:en_name" json:"enName"`
	Age       *int       `json:"age"`
	DOB       *time.Time `gorm:"column:dob" json:"dob"`
	Sex       *string    `gorm:"size:1" json:"sex"` // "m" / "f"
	Source    *string    `json:"source"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (Person) TableName() string { return "persons" }

// Row 兜底的通用记录：上传的表头对不上 Person 时整行存 JSON。
type Row struct {
	ID        string          `gorm:"primaryKey;size:36" json:"id"`
	Data      json.RawMessage `gorm:"type:text" json:"data"`
	CreatedAt time.Time       `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (Row) TableName() string { return "rows" }

// PersonRepository 列表/详情/更新/整表替换。
type PersonRepository interface {
	List(filter PersonFilter, offset, limit int) ([]Person, int64, error)
	ListIDs(filter PersonFilter) ([]string, error)
	FindByIDs(ids []string) ([]Person, error)
	FindByID(id string) (*Person, error)
	Update(p *Person) error
	ReplaceAll(persons []Person) error
	CountAll() (int64, error)
}

// RowRepository 兜底表。
type RowRepository interface {
	List(offset, limit int) ([]Row, error)
	ReplaceAll(rows []Row) error
}

// PersonFilter 可下推到存储层的筛选条件（category 不在此列，见 records 服务）。
type PersonFilter struct {
	Name string // name / en_name 模糊匹配（大小写不敏感）
	Sex  string // 仅 "m"/"f"
	Age  *AgeFilter
}

// AgeFilter 解析后的年龄条件，Op 为比较方式。
type AgeFilter struct {
	Op  AgeOp
	Min int // Eq/Gt/Lt/Gte/Lte 用 Min 存值
	Max int // 仅 Range 用
}

type AgeOp int

const (
	AgeEq AgeOp = iota
	AgeRange
	AgeGt
	AgeLt
	AgeGte
	AgeLte
)
