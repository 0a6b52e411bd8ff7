package middleware

import (
	"CafeBackend/models"
	"github.com/gin-gonic/gin"
	"log"
	"net/http"
)

// 檢查身分權限是否達到要求，沒有則中止請求
func CheckRolePermissionMiddleware(required models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleValue, exists := c.Get("Role")
		if !exists {
			log.Println("無法取得Role")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "錯誤",
			})
			c.Abort()
			return
		}
		role, ok := roleValue.(models.Role)
		if !ok || !role.AtLeast(required) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": models.ErrUnauthorized.Error(),
			})
			c.Abort()
			return
		}

		c.Next()
		return
	}
}
