package handlers

import (
	"CafeBackend/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"net/http"
	"time"
)

// 將訂單設為已付款，重複設定不視為錯誤
func UpdateOrderPaidHandler(c *gin.Context, db *gorm.DB) {
	orderID := c.Param("orderID")

	var order models.Order
	err := db.First(&order, "id = ?", orderID).Error
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

	if order.Paid {
		c.JSON(http.StatusOK, gin.H{
			"message": "訂單已付款",
			"orderID": order.ID,
		})
		return
	}

	err = db.Model(&order).Update("paid", true).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "更新付款狀態失敗",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "訂單已付款",
		"orderID": order.ID,
	})
}

// 更新訂單中餐點的製作進度，進度只能往前
func UpdateItemStatusHandler(c *gin.Context, db *gorm.DB) {
	orderID := c.Param("orderID")
	itemName := c.Param("itemName")

	var statusReq struct {
		Status   string  `json:"status" binding:"required"`
		Comments *string `json:"comments"`
	}
	if err := c.ShouldBindJSON(&statusReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "綁定請求資料錯誤",
			"error":   err.Error(),
		})
		return
	}

	newState, valid := models.ParseItemState(statusReq.Status)
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "不合法的製作進度",
		})
		return
	}

	var itemStatus models.ItemStatus
	err := db.First(&itemStatus, "order_id = ? AND item_name = ?", orderID, itemName).Error
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

	if !itemStatus.Status.CanAdvanceTo(newState) {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": models.ErrInvalidTransition.Error(),
		})
		return
	}

	updates := map[string]interface{}{
		"status":       newState,
		"last_updated": time.Now(),
	}
	if statusReq.Comments != nil {
		updates["comments"] = *statusReq.Comments
	}

	err = db.Model(&itemStatus).Updates(updates).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "更新製作進度失敗",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "成功更新製作進度",
		"orderID":  itemStatus.OrderID,
		"itemName": itemStatus.ItemName,
		"status":   newState,
	})
}

// 查詢最近24小時內的所有訂單
func GetRecentOrdersHandler(c *gin.Context, db *gorm.DB) {
	since := time.Now().Add(-24 * time.Hour)

	var orders []models.Order
	err := db.
		Where("created_at >= ?", since).
		Preload("Items").
		Find(&orders).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢訂單列表失敗",
			"error":   err.Error(),
		})
		return
	}

	var orderList []gin.H
	for _, order := range orders {
		order := order
		orderList = append(orderList, gin.H{
			"orderID":    order.ID,
			"login":      order.Login,
			"receivedAt": order.CreatedAt,
			"paid":       order.Paid,
			"total":      order.Total,
			"items":      orderItemsData(&order),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "成功查詢最近24小時訂單",
		"orderList":  orderList,
		"totalCount": len(orderList),
	})
}

// 查詢任一訂單與餐點製作進度
func GetStaffOrderDataHandler(c *gin.Context, db *gorm.DB) {
	orderID := c.Param("orderID")

	var order models.Order
	err := db.
		Preload("Items").
		First(&order, "id = ?", orderID).Error
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
		"login":      order.Login,
		"receivedAt": order.CreatedAt,
		"paid":       order.Paid,
		"total":      order.Total,
		"items":      orderItemsData(&order),
	})
}
