package handlers

import (
	"CafeBackend/jwt"
	"CafeBackend/models"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"net/http"
	"regexp"
	"time"
	"unicode"
)

// 檢查登入帳號是否合法
func ValidateLogin(login string) bool {
	if len(login) < 4 || len(login) > 20 {
		return false
	}
	pattern := "^[a-zA-Z0-9_-]+$"
	matched, _ := regexp.MatchString(pattern, login)
	return matched
}

// 檢查電話號碼是否合法，允許留空，有填則必須為13碼
func ValidatePhoneNumber(phoneNumber string) bool {
	return len(phoneNumber) == 0 || len(phoneNumber) == 13
}

// 檢查最愛餐點是否合法
func ValidateFavoriteItems(favoriteItems string) bool {
	return len(favoriteItems) <= 400
}

// 檢查密碼是否合法
func ValidatePassword(password string) bool {
	if len(password) < 8 || len(password) > 50 {
		return false
	}

	var (
		isUpper   = false
		isLower   = false
		isNumber  = false
		isSpecial = false
		isSpace   = false
	)

	for _, s := range password {
		switch {
		case unicode.IsSpace(s):
			isSpace = true
		case unicode.IsUpper(s):
			isUpper = true
		case unicode.IsLower(s):
			isLower = true
		case unicode.IsDigit(s):
			isNumber = true
		case unicode.IsPunct(s) || unicode.IsSymbol(s):
			isSpecial = true
		default:
		}
	}

	return isUpper && isLower && isNumber && isSpecial && !isSpace
}

// 檢查登入帳號是否重複
func IsLoginExists(db *gorm.DB, login string) (bool, error) {
	var user models.User
	err := db.First(&user, "Login = ?", login).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil //帳號沒重複，不代表錯誤
		}
		return false, err //有錯誤
	}
	return true, nil //帳號重複
}

// 註冊使用者帳戶，身分固定為Customer
func RegisterHandler(c *gin.Context, db *gorm.DB) {
	var registerReq struct {
		Login         string `json:"login" binding:"required"`
		Password      string `json:"password" binding:"required"`
		PhoneNumber   string `json:"phoneNumber"`
		FavoriteItems string `json:"favoriteItems"`
	}
	if err := c.BindJSON(&registerReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "綁定請求資料錯誤",
			"error":   err.Error(),
		})
		return
	}

	//檢查登入帳號是否合法
	if !ValidateLogin(registerReq.Login) {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "註冊失敗:不合法的帳號",
		})
		return
	}

	//檢查密碼是否合法
	if !ValidatePassword(registerReq.Password) {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "註冊失敗:不合法的密碼",
		})
		return
	}

	//檢查電話號碼是否合法
	if !ValidatePhoneNumber(registerReq.PhoneNumber) {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "註冊失敗:電話號碼必須為13碼",
		})
		return
	}

	//檢查最愛餐點是否合法
	if !ValidateFavoriteItems(registerReq.FavoriteItems) {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "註冊失敗:最愛餐點超過400字",
		})
		return
	}

	//檢查登入帳號是否重複
	result, err := IsLoginExists(db, registerReq.Login)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "註冊失敗:檢查帳號失敗",
			"error":   err.Error(),
		})
		return
	}
	if result {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": models.ErrDuplicateLogin.Error(),
		})
		return
	}

	//將密碼Hash
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registerReq.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法生成Hashed密碼",
			"error":   err.Error(),
		})
		return
	}

	newUser := models.User{
		Login:         registerReq.Login,
		Password:      string(hashedPassword),
		PhoneNumber:   registerReq.PhoneNumber,
		FavoriteItems: registerReq.FavoriteItems,
		Role:          models.RoleCustomer,
	}

	//將newUser儲存到資料庫
	if err := db.Create(&newUser).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法儲存使用者資料至資料庫",
			"error":   err.Error(),
		})
		return
	}

	//成功註冊
	c.JSON(http.StatusCreated, gin.H{
		"message": "使用者已成功註冊",
		"login":   newUser.Login,
	})
	return
}

func LoginHandler(c *gin.Context, db *gorm.DB) {
	//檢查是否已經登入
	if _, ok := c.Get("Login"); ok {
		c.JSON(http.StatusOK, gin.H{
			"message": "已經登入",
		})
		return
	}

	//從請求擷取帳號和密碼
	var loginReq struct {
		Login    string `json:"login" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&loginReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "綁定請求資料錯誤",
			"error":   err.Error(),
		})
		return
	}

	//檢查是否有此帳號，找不到帳號和密碼錯誤回傳相同訊息
	var user models.User
	err := db.First(&user, "Login = ?", loginReq.Login).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": models.ErrAuthFailure.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "資料庫錯誤",
			"error":   err.Error(),
		})
		return
	}

	//檢查密碼是否正確
	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(loginReq.Password))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": models.ErrAuthFailure.Error(),
		})
		return
	}

	//生成JWT Token
	tokenExpiredTime := time.Now().Add(time.Hour * 24)
	token, err := jwt.GenerateToken(user.Login, user.Role, tokenExpiredTime.Unix())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "生成JWT Token錯誤",
			"error":   err.Error(),
		})
		return
	}

	//儲存LoginToken
	loginToken := models.LoginToken{
		Token:          token,
		ExpirationTime: tokenExpiredTime,
		UserID:         user.ID,
		Login:          user.Login,
		Role:           user.Role,
	}
	err = db.Create(&loginToken).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "儲存Login Token失敗",
			"error":   err.Error(),
		})
		return
	}

	//成功登入 回傳Token和成功訊息
	c.Header("Authorization", "Bearer "+token)
	c.JSON(http.StatusOK, gin.H{
		"message": "成功登入",
		"role":    user.Role,
	})
}

func LogOutHandler(c *gin.Context, db *gorm.DB) {
	token, exists := c.Get("Token")
	if !exists {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "無法取得Token",
		})
		return
	}

	//刪除此LoginToken
	var loginToken models.LoginToken
	result := db.Delete(&loginToken, "Token = ?", token)
	err := result.Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "資料庫錯誤",
			"error":   err.Error(),
		})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "找不到此token或已登出",
		})
		return
	}

	c.Header("Authorization", "")
	c.JSON(http.StatusOK, gin.H{
		"message": "成功登出",
	})
	return
}

// 查詢使用者資料
func GetUserProfileHandler(c *gin.Context, db *gorm.DB) {
	login, ok := c.Get("Login")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得登入帳號",
		})
		return
	}

	//嘗試查詢使用者資料，不回傳密碼
	var user struct {
		Login         string
		PhoneNumber   string
		FavoriteItems string
		Role          models.Role
	}
	err := db.
		Model(&models.User{}).
		First(&user, "login = ?", login).
		Error

	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	//成功查詢使用者資料
	c.JSON(http.StatusOK, gin.H{
		"message": "成功查詢使用者資料",
		"user":    user,
	})
}

// 變更使用者資料
func UpdateUserProfileHandler(c *gin.Context, db *gorm.DB) {
	login, ok := c.Get("Login")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得登入帳號",
		})
		return
	}

	var user models.User
	err := db.First(&user, "login = ?", login).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "發生錯誤:無法取得使用者資料",
			"error":   err.Error(),
		})
		return
	}

	var newUserData struct {
		OldPassword   string  `json:"oldPassword" binding:"required"`
		NewPassword   string  `json:"newPassword"`
		PhoneNumber   *string `json:"phoneNumber"`
		FavoriteItems *string `json:"favoriteItems"`
	}
	err = c.ShouldBindJSON(&newUserData)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "綁定請求資料錯誤",
			"error":   err.Error(),
		})
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(newUserData.OldPassword))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "舊密碼錯誤",
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
		//將密碼Hash
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

	//如果使用者有提供資料則覆蓋(包含空字串)
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

	result := db.Where("login = ?", login).Save(&user)
	err = result.Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
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
