package handlers

import (
	"CafeBackend/models"
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

func isValidImageExtensions(file *multipart.FileHeader) bool {
	allowExtensions := []string{".jpg", ".jpeg", ".png"}
	fileExt := strings.ToLower(filepath.Ext(file.Filename))
	for _, allowExt := range allowExtensions {
		if fileExt == allowExt {
			return true
		}
	}
	return false
}

func makeUniqueFileName(file *multipart.FileHeader) string {
	fileExt := filepath.Ext(file.Filename)
	return fmt.Sprintf("%s%s", uuid.New().String(), fileExt)
}

// 上傳餐點圖片，回傳圖片路徑供imageRef使用
func UploadImageHandler(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "綁定圖片失敗",
			"error":   err.Error(),
		})
		return
	}

	if !isValidImageExtensions(file) {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "圖片檔案格式錯誤",
		})
		return
	}

	uploadsDir := "./uploads"
	//檢查uploads資料夾是否存在，如不存在則創建
	_, err = os.Stat(uploadsDir)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.Mkdir(uploadsDir, 0755); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"message": "建立uploads資料夾失敗",
					"error":   err.Error(),
				})
				return
			}
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "檢查uploads資料夾失敗",
				"error":   err.Error(),
			})
			return
		}
	}

	imageName := makeUniqueFileName(file)
	filePath := filepath.Join(uploadsDir, imageName)
	if err := c.SaveUploadedFile(file, filePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "儲存圖片失敗",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "成功上傳圖片",
		"imagePath": "/" + filepath.ToSlash(filePath),
	})
}

// 新增餐點至菜單
func CreateMenuItemHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client) {
	var newItemReq struct {
		Name        string `json:"name" binding:"required"`
		Type        string `json:"type" binding:"required"`
		Price       *uint  `json:"price" binding:"required"`
		Description string `json:"description"`
		ImageRef    string `json:"imageRef"`
	}
	err := c.ShouldBindJSON(&newItemReq)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "綁定請求資料錯誤",
			"error":   err.Error(),
		})
		return
	}

	//檢查餐點名稱是否重複
	var exists models.MenuItem
	err = db.First(&exists, "name = ?", newItemReq.Name).Error
	if err == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": models.ErrDuplicateItem.Error(),
		})
		return
	}
	if err != gorm.ErrRecordNotFound {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "檢查餐點名稱失敗",
			"error":   err.Error(),
		})
		return
	}

	menuItem := models.MenuItem{
		Name:        newItemReq.Name,
		Type:        newItemReq.Type,
		Price:       *newItemReq.Price,
		Description: newItemReq.Description,
		ImageRef:    newItemReq.ImageRef,
	}

	tx := db.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "開啟資料庫事務失敗",
			"error":   tx.Error.Error(),
		})
		return
	}

	err = tx.Create(&menuItem).Error
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "新增餐點失敗",
			"error":   err.Error(),
		})
		return
	}

	err, msg := UpdateMenuItemToRedis(c, rdb, &menuItem)
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": msg,
			"error":   err.Error(),
		})
		return
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "提交事務失敗",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "成功新增餐點",
		"menuItem": menuItem,
	})
}

// 修改餐點資料，只更新有提供的欄位
func UpdateMenuItemHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client) {
	name := c.Param("name")

	var itemDataReq struct {
		Type        *string `json:"type"`
		Price       *uint   `json:"price"`
		Description *string `json:"description"`
		ImageRef    *string `json:"imageRef"`
	}
	err := c.ShouldBindJSON(&itemDataReq)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "綁定請求資料錯誤",
			"error":   err.Error(),
		})
		return
	}

	var menuItem models.MenuItem
	err = db.First(&menuItem, "name = ?", name).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"message": models.ErrUnknownItem.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	if itemDataReq.Type != nil {
		menuItem.Type = *itemDataReq.Type
	}
	if itemDataReq.Price != nil {
		menuItem.Price = *itemDataReq.Price
	}
	if itemDataReq.Description != nil {
		menuItem.Description = *itemDataReq.Description
	}
	if itemDataReq.ImageRef != nil {
		menuItem.ImageRef = *itemDataReq.ImageRef
	}

	tx := db.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "開啟資料庫事務失敗",
			"error":   tx.Error.Error(),
		})
		return
	}

	result := tx.Save(&menuItem)
	err = result.Error
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	err, msg := UpdateMenuItemToRedis(c, rdb, &menuItem)
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": msg,
			"error":   err.Error(),
		})
		return
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "提交事務失敗",
			"error":   err.Error(),
		})
		return
	}

	if result.RowsAffected == 0 {
		c.JSON(http.StatusOK, gin.H{
			"message": "沒有變更資料",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "成功修改餐點資料",
	})
}

// 從菜單刪除餐點，歷史訂單的ItemStatus保留不動
// 直接移除資料列而非軟刪除，否則名稱的unique索引會讓同名餐點無法再上架
func DeleteMenuItemHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client) {
	name := c.Param("name")

	var menuItem models.MenuItem

	tx := db.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "開啟資料庫事務失敗",
			"error":   tx.Error.Error(),
		})
		return
	}

	err := tx.First(&menuItem, "name = ?", name).Error
	if err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"message": models.ErrUnknownItem.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查找此餐點失敗",
			"error":   err.Error(),
		})
		return
	}

	err = tx.Unscoped().Delete(&menuItem).Error
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "刪除餐點失敗",
			"error":   err.Error(),
		})
		return
	}

	err = RemoveMenuItemFromRedis(c, rdb, &menuItem)
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法將餐點資料從Redis刪除",
			"error":   err.Error(),
		})
		return
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "提交事務失敗",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "成功刪除餐點",
	})
}

// 查詢使用者列表
func GetUserListHandler(c *gin.Context, db *gorm.DB) {
	//嘗試獲取使用者列表
	var userList []struct {
		Id    uint
		Login string
		Role  models.Role
	}
	err := db.
		Model(&models.User{}).
		Select("Id", "Login", "Role").
		Find(&userList).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法獲取使用者列表",
			"error":   err.Error(),
		})
		return
	}

	//檢查使用者列表是否為空
	if len(userList) == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "使用者列表為空",
		})
		return
	}

	//成功獲取使用者列表
	c.JSON(http.StatusOK, gin.H{
		"message":  "成功獲取使用者列表",
		"userList": userList,
	})
}

// 以帳號模糊搜尋使用者，回傳候選列表供呼叫端挑選
func SearchUsersHandler(c *gin.Context, db *gorm.DB) {
	search := c.Query("q")
	if search == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "請輸入要搜尋的帳號",
		})
		return
	}

	var logins []string
	err := db.
		Model(&models.User{}).
		Where("login LIKE ?", "%"+search+"%").
		Pluck("login", &logins).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "搜尋使用者失敗",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "成功搜尋使用者",
		"userList":   logins,
		"totalCount": len(logins),
	})
}

// 變更使用者身分，僅Manager可操作
func SetUserRoleHandler(c *gin.Context, db *gorm.DB) {
	targetLogin := c.Param("login")

	var roleReq struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&roleReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "綁定請求資料錯誤",
			"error":   err.Error(),
		})
		return
	}

	newRole, valid := models.ParseRole(roleReq.Role)
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "不合法的身分",
		})
		return
	}

	var user models.User
	err := db.First(&user, "login = ?", targetLogin).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "找不到此使用者",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢使用者失敗",
			"error":   err.Error(),
		})
		return
	}

	err = db.Model(&user).Update("role", newRole).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "變更身分失敗",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "成功變更使用者身分",
		"login":   user.Login,
		"role":    newRole,
	})
}

// Manager修改任一使用者的資料
func ManagerUpdateUserHandler(c *gin.Context, db *gorm.DB) {
	targetLogin := c.Param("login")

	var user models.User
	err := db.First(&user, "login = ?", targetLogin).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "找不到此使用者",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢使用者失敗",
			"error":   err.Error(),
		})
		return
	}

	var newUserData struct {
		NewPassword   string  `json:"newPassword"`
		PhoneNumber   *string `json:"phoneNumber"`
		FavoriteItems *string `json:"favoriteItems"`
	}
	if err := c.ShouldBindJSON(&newUserData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "綁定請求資料錯誤",
			"error":   err.Error(),
		})
		return
	}

	if newUserData.NewPassword != "" {
		if !ValidatePassword(newUserData.NewPassword) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "不合法的新密碼",
			})
			return
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newUserData.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "無法生成Hashed密碼",
				"error":   err.Error(),
			})
			return
		}
		user.Password = string(hashedPassword)
	}

	if newUserData.PhoneNumber != nil {
		if !ValidatePhoneNumber(*newUserData.PhoneNumber) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "電話號碼必須為13碼",
			})
			return
		}
		user.PhoneNumber = *newUserData.PhoneNumber
	}
	if newUserData.FavoriteItems != nil {
		if !ValidateFavoriteItems(*newUserData.FavoriteItems) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "最愛餐點超過400字",
			})
			return
		}
		user.FavoriteItems = *newUserData.FavoriteItems
	}

	result := db.Where("login = ?", targetLogin).Save(&user)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": result.Error.Error(),
		})
		return
	}

	if result.RowsAffected == 0 {
		c.JSON(http.StatusOK, gin.H{
			"message": "沒有變更資料",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "成功修改使用者資料",
	})
}
