package handlers

import (
	"CafeBackend/models"
	"encoding/json"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"log"
	"net/http"
	"strconv"
)

// Redis菜單快取的Key
const menuCacheKey = "menu"

// 更新Redis中的單筆餐點資料
func UpdateMenuItemToRedis(c *gin.Context, rdb *redis.Client, item *models.MenuItem) (error, string) {
	itemJSON, err := json.Marshal(item)
	if err != nil {
		return err, "無法序列化餐點資料"
	}

	score := strconv.Itoa(int(item.ID))
	err = rdb.ZRemRangeByScore(c, menuCacheKey, score, score).Err()
	if err != nil {
		return err, "無法將餐點資料從Redis刪除"
	}

	err = rdb.ZAdd(c, menuCacheKey, redis.Z{
		Score:  float64(item.ID),
		Member: itemJSON,
	}).Err()
	if err != nil {
		return err, "無法將餐點資料加入Redis"
	}

	return nil, ""
}

// 從Redis刪除單筆餐點資料
func RemoveMenuItemFromRedis(c *gin.Context, rdb *redis.Client, item *models.MenuItem) error {
	score := strconv.Itoa(int(item.ID))
	return rdb.ZRemRangeByScore(c, menuCacheKey, score, score).Err()
}

// 查詢菜單列表
func GetMenuListHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client) {
	limit := c.DefaultQuery("limit", "10")
	limitInt, err := strconv.Atoi(limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "查詢數量輸入錯誤",
			"error":   err.Error(),
		})
		return
	}
	//限制最高查詢數量為50
	if limitInt > 50 {
		limitInt = 50
	}

	offset := c.DefaultQuery("offset", "0")
	offsetInt, err := strconv.Atoi(offset)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "offset輸入錯誤",
			"error":   err.Error(),
		})
		return
	}

	//嘗試從Redis讀取菜單列表，如失敗則從資料庫讀取並儲存至Redis
	redisItems, err := rdb.ZRange(c, menuCacheKey, int64(offsetInt), int64(offsetInt+limitInt-1)).Result()
	if err != nil || rdb.ZCard(c, menuCacheKey).Val() == 0 {
		var menuItems []models.MenuItem
		err = db.Find(&menuItems).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "無法讀取菜單列表",
				"error":   err.Error(),
			})
			return
		}

		rdb.Del(c, menuCacheKey)

		for _, menuItem := range menuItems {
			itemJSON, err := json.Marshal(menuItem)
			if err != nil {
				log.Printf("無法序列化餐點資料: %v\n", err)
				continue
			}

			err = rdb.ZAdd(c, menuCacheKey, redis.Z{
				Score:  float64(menuItem.ID),
				Member: itemJSON,
			}).Err()
			if err != nil {
				log.Printf("無法將餐點資料加入Redis: %v\n", err)
				continue
			}
		}

		//再次嘗試從Redis讀取菜單列表
		redisItems, err = rdb.ZRange(c, menuCacheKey, int64(offsetInt), int64(offsetInt+limitInt-1)).Result()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "無法從Redis讀取菜單列表",
				"error":   err.Error(),
			})
			return
		}
	}

	var menuData []gin.H
	for _, redisItem := range redisItems {
		var itemUnmarshal models.MenuItem
		err = json.Unmarshal([]byte(redisItem), &itemUnmarshal)
		if err != nil {
			log.Printf("無法反序列化餐點資料: %v\n", err)
			continue
		}

		menuData = append(menuData, gin.H{
			"name":        itemUnmarshal.Name,
			"type":        itemUnmarshal.Type,
			"price":       itemUnmarshal.Price,
			"description": itemUnmarshal.Description,
			"imageRef":    itemUnmarshal.ImageRef,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "成功讀取菜單列表",
		"menu":       menuData,
		"totalCount": rdb.ZCard(c, menuCacheKey).Val(),
	})
}

// 以名稱模糊搜尋餐點
func SearchMenuByNameHandler(c *gin.Context, db *gorm.DB) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "請輸入要搜尋的餐點名稱",
		})
		return
	}

	var menuItems []models.MenuItem
	err := db.
		Where("name LIKE ?", "%"+name+"%").
		Find(&menuItems).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "搜尋餐點失敗",
			"error":   err.Error(),
		})
		return
	}

	var menuData []gin.H
	for _, menuItem := range menuItems {
		menuData = append(menuData, gin.H{
			"name":        menuItem.Name,
			"type":        menuItem.Type,
			"price":       menuItem.Price,
			"description": menuItem.Description,
			"imageRef":    menuItem.ImageRef,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "成功搜尋餐點",
		"menu":       menuData,
		"totalCount": len(menuData),
	})
}

// 查詢指定種類的所有餐點，結果可能為空
func GetMenuByTypeHandler(c *gin.Context, db *gorm.DB) {
	itemType := c.Param("type")

	var menuItems []models.MenuItem
	err := db.
		Where("type = ?", itemType).
		Find(&menuItems).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢餐點失敗",
			"error":   err.Error(),
		})
		return
	}

	var menuData []gin.H
	for _, menuItem := range menuItems {
		menuData = append(menuData, gin.H{
			"name":        menuItem.Name,
			"price":       menuItem.Price,
			"description": menuItem.Description,
			"imageRef":    menuItem.ImageRef,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "成功查詢餐點",
		"type":       itemType,
		"menu":       menuData,
		"totalCount": len(menuData),
	})
}

// 查詢單筆餐點詳細資料
func GetMenuItemHandler(c *gin.Context, db *gorm.DB) {
	name := c.Param("name")

	var menuItem models.MenuItem
	err := db.First(&menuItem, "name = ?", name).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"message": models.ErrUnknownItem.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢餐點資料失敗",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "成功查詢餐點資料",
		"menuItem": gin.H{
			"name":        menuItem.Name,
			"type":        menuItem.Type,
			"price":       menuItem.Price,
			"description": menuItem.Description,
			"imageRef":    menuItem.ImageRef,
		},
	})
}
