package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword 生成管理口令的 bcrypt 哈希（配置里只存哈希）
func HashPassword(pw string) string {
	b, _ := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b)
}

func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}
