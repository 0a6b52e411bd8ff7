package handlers

import (
	"CafeBackend/models"
	"errors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"net/http"
	"time"
)

type orderItemReq struct {
	ItemName string `json:"itemName" binding:"required"`
	Comments string `json:"comments"`
}

// 在事務內將餐點加入訂單，建立ItemStatus並同步更新訂單總金額
func addItemToOrder(tx *gorm.DB, order *models.Order, itemName string, comments string) error {
	var menuItem models.MenuItem
	if err := tx.First(&menuItem, "name = ?", itemName).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return models.ErrUnknownItem
		}
		return err
	}

	//同一筆訂單不能重複加入相同餐點
	var exists models.ItemStatus
	err := tx.First(&exists, "order_id = ? AND item_name = ?", order.ID, menuItem.Name).Error
	if err == nil {
		return models.ErrDuplicateItem
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	itemStatus := models.ItemStatus{
		OrderID:     order.ID,
		ItemName:    menuItem.Name,
		Price:       menuItem.Price,
		Status:      models.StateNotStarted,
		LastUpdated: time.Now(),
		Comments:    comments,
	}
	if err := tx.Create(&itemStatus).Error; err != nil {
		return err
	}

	//新增餐點與累加總金額在同一個事務內，失敗時一起回滾
	if err := tx.Model(order).Update("total", gorm.Expr("total + ?", menuItem.Price)).Error; err != nil {
		return err
	}
	order.Total += menuItem.Price

	return nil
}

// 建立新訂單，可以同時附上第一批餐點
func CreateOrderHandler(c *gin.Context, db *gorm.DB) {
	login, ok := c.Get("Login")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得登入帳號",
		})
		return
	}

	var orderReq struct {
		Items []orderItemReq `json:"items"`
	}
	//沒有附餐點也可以先開訂單
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&orderReq); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": "綁定請求資料錯誤",
				"error":   err.Error(),
			})
			return
		}
	}

	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "開啟資料庫事務失敗",
			"error":   tx.Error.Error(),
		})
		return
	}

	//訂單編號由資料庫自動遞增配發，避免同時下單搶到相同編號
	newOrder := models.Order{
		Login: login.(string),
		Paid:  false,
		Total: 0,
	}
	if err := tx.Create(&newOrder).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "建立訂單失敗",
			"error":   err.Error(),
		})
		return
	}

	for _, item := range orderReq.Items {
		if err := addItemToOrder(tx, &newOrder, item.ItemName, item.Comments); err != nil {
			tx.Rollback()
			if errors.Is(err, models.ErrUnknownItem) || errors.Is(err, models.ErrDuplicateItem) {
				c.JSON(http.StatusBadRequest, gin.H{
					"message":  err.Error(),
					"itemName": item.ItemName,
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "加入餐點失敗",
				"error":   err.Error(),
			})
			return
		}
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
		"message":    "成功建立訂單",
		"orderID":    newOrder.ID,
		"total":      newOrder.Total,
		"receivedAt": newOrder.CreatedAt,
	})
}

// 查詢訂單並檢查是否為本人的訂單
func findOwnOrder(c *gin.Context, db *gorm.DB) (*models.Order, bool) {
	orderID := c.Param("orderID")
	login, ok := c.Get("Login")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得登入帳號",
		})
		return nil, false
	}

	var order models.Order
	err := db.First(&order, "id = ?", orderID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "找不到此訂單",
			})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢訂單失敗",
			"error":   err.Error(),
		})
		return nil, false
	}

	if order.Login != login.(string) {
		c.JSON(http.StatusForbidden, gin.H{
			"message": models.ErrUnauthorized.Error(),
		})
		return nil, false
	}

	return &order, true
}

// 將餐點加入自己尚未付款的訂單
func AddOrderItemHandler(c *gin.Context, db *gorm.DB) {
	order, ok := findOwnOrder(c, db)
	if !ok {
		return
	}

	if order.Paid {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": models.ErrOrderPaid.Error(),
		})
		return
	}

	var itemReq orderItemReq
	if err := c.ShouldBindJSON(&itemReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "綁定請求資料錯誤",
			"error":   err.Error(),
		})
		return
	}

	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "開啟資料庫事務失敗",
			"error":   tx.Error.Error(),
		})
		return
	}

	if err := addItemToOrder(tx, order, itemReq.ItemName, itemReq.Comments); err != nil {
		tx.Rollback()
		if errors.Is(err, models.ErrUnknownItem) || errors.Is(err, models.ErrDuplicateItem) {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "加入餐點失敗",
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
		"message":  "成功加入餐點",
		"orderID":  order.ID,
		"itemName": itemReq.ItemName,
		"total":    order.Total,
	})
}

// 以目前的ItemStatus重新計算訂單總金額，可重複執行
func FinalizeOrderHandler(c *gin.Context, db *gorm.DB) {
	order, ok := findOwnOrder(c, db)
	if !ok {
		return
	}

	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "開啟資料庫事務失敗",
			"error":   tx.Error.Error(),
		})
		return
	}

	//總金額以ItemStatus重新加總，不信任快取值
	var total int64
	err := tx.
		Model(&models.ItemStatus{}).
		Where("order_id = ?", order.ID).
		Select("COALESCE(SUM(price), 0)").
		Scan(&total).
		Error
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "計算總金額失敗",
			"error":   err.Error(),
		})
		return
	}

	if err := tx.Model(order).Update("total", total).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "更新總金額失敗",
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
		"message": "成功結算訂單",
		"orderID": order.ID,
		"total":   total,
	})
}

// 修改自己尚未付款訂單中餐點的備註
func UpdateOrderItemCommentHandler(c *gin.Context, db *gorm.DB) {
	order, ok := findOwnOrder(c, db)
	if !ok {
		return
	}

	if order.Paid {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": models.ErrOrderPaid.Error(),
		})
		return
	}

	itemName := c.Param("itemName")

	var commentReq struct {
		Comments string `json:"comments"`
	}
	if err := c.ShouldBindJSON(&commentReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "綁定請求資料錯誤",
			"error":   err.Error(),
		})
		return
	}

	var itemStatus models.ItemStatus
	err := db.First(&itemStatus, "order_id = ? AND item_name = ?", order.ID, itemName).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"message": models.ErrUnknownOrderItem.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢餐點狀態失敗",
			"error":   err.Error(),
		})
		return
	}

	err = db.Model(&itemStatus).Updates(map[string]interface{}{
		"comments":     commentReq.Comments,
		"last_updated": time.Now(),
	}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "修改備註失敗",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "成功修改備註",
	})
}

// 查詢自己的訂單紀錄
func GetOrderListHandler(c *gin.Context, db *gorm.DB) {
	login, ok := c.Get("Login")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得登入帳號",
		})
		return
	}

	var orders []models.Order
	err := db.Where("login = ?", login).Find(&orders).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢訂單列表失敗",
			"error":   err.Error(),
		})
		return
	}

	var orderList []gin.H
	for _, order := range orders {
		orderList = append(orderList, gin.H{
			"orderID":    order.ID,
			"receivedAt": order.CreatedAt,
			"paid":       order.Paid,
			"total":      order.Total,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "成功查詢訂單列表",
		"orderList": orderList,
	})
}

// 查詢自己單筆訂單與餐點製作進度
func GetOrderDataHandler(c *gin.Context, db *gorm.DB) {
	login, ok := c.Get("Login")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得登入帳號",
		})
		return
	}

	orderID := c.Param("orderID")

	var order models.Order
	err := db.
		Where("id = ? AND login = ?", orderID, login).
		Preload("Items").
		First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "找不到此訂單",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢訂單失敗",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "成功查詢訂單",
		"orderID":    order.ID,
		"receivedAt": order.CreatedAt,
		"paid":       order.Paid,
		"total":      order.Total,
		"items":      orderItemsData(&order),
	})
}

func orderItemsData(order *models.Order) []gin.H {
	var itemsData []gin.H
	for _, item := range order.Items {
		itemsData = append(itemsData, gin.H{
			"itemName":    item.ItemName,
			"price":       item.Price,
			"status":      item.Status,
			"lastUpdated": item.LastUpdated,
			"comments":    item.Comments,
		})
	}
	return itemsData
}
