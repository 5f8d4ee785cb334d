package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"memorial-records-api/internal/core/auth"
	"memorial-records-api/internal/core/config"
	httpez "memorial-records-api/internal/transport/http/ez"
	"memorial-records-api/pkg/utils"
)

// MountAuthActions /auth/login 换取管理 token；/whoami 回显身份。
func MountAuthActions(g *gin.RouterGroup, jwter *auth.JWTer, cfg config.Auth) {
	e := httpez.New(g)

	type loginIn struct {
		UserID   string `json:"userId"   binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	type loginOut struct {
		Token string `json:"token"`
	}
	httpez.RegisterAction[loginIn, loginOut](e, httpez.Action[loginIn, loginOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (loginOut, error) {
			if !auth.IsAdmin(in.UserID, cfg.AdminIDs) {
				return loginOut{}, httpez.Unauthorized("unknown user")
			}
			if !utils.CheckPassword(in.Password, cfg.AdminPasswordHash) {
				return loginOut{}, httpez.Unauthorized("invalid credentials")
			}
			tok, err := jwter.Issue(in.UserID)
			if err != nil || tok == "" {
				return loginOut{}, httpez.Internal("issue token failed", err)
			}
			return loginOut{Token: tok}, nil
		},
	})
}

// Whoami 不强制登录：带合法 token 就回显 uid 和是否管理员。
func Whoami(adminIDs []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString("userId")
		out := gin.H{"userId": nil, "admin": false}
		if uid != "" {
			out["userId"] = uid
			out["admin"] = auth.IsAdmin(uid, adminIDs)
		}
		c.JSON(http.StatusOK, out)
	}
}
