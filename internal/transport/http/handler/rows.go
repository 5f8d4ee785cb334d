package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"memorial-records-api/internal/domain"
	"memorial-records-api/internal/feature/records"
)

// RowsHandler 列表/详情/编辑。列表响应不走统一信封，
// 保持 dashboard 既有契约：{data, pagination} 或兜底时的裸数组。
type RowsHandler struct {
	svc *records.Service
}

func NewRowsHandler(svc *records.Service) *RowsHandler { return &RowsHandler{svc: svc} }

// 读接口挂公开面，编辑挂管理面
func (h *RowsHandler) MountAPI(g *gin.RouterGroup) {
	g.GET("/rows", h.List)
	g.GET("/rows/:id", h.Get)
}

func (h *RowsHandler) MountAdmin(g *gin.RouterGroup) {
	g.PUT("/rows", h.Update)
}

func (h *RowsHandler) List(c *gin.Context) {
	q := records.Query{
		Page:     atoiDefault(c.Query("page"), 1),
		Limit:    atoiDefault(c.Query("limit"), 1000),
		Name:     c.Query("name"),
		Age:      c.Query("age"),
		Sex:      c.Query("sex"),
		Category: c.Query("category"),
	}
	res := h.svc.List(c.Request.Context(), q)
	if res.Fallback {
		c.JSON(http.StatusOK, res.Rows)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":       res.Data,
		"pagination": res.Pagination,
	})
}

func (h *RowsHandler) Get(c *gin.Context) {
	view, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if view == nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "not found"})
		return
	}
	c.JSON(http.StatusOK, view)
}

// Update 整条覆盖，body 必须带 id
func (h *RowsHandler) Update(c *gin.Context) {
	var p domain.Person
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}
	updated, err := h.svc.Update(c.Request.Context(), &p)
	if err != nil {
		if errors.Is(err, records.ErrMissingID) {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Missing id"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": updated})
}

func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}
