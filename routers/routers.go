package routers

import (
	"CafeBackend/handlers"
	"CafeBackend/middleware"
	"CafeBackend/models"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"net/http"
)

func SetupRouters(db *gorm.DB, rdb *redis.Client) *gin.Engine {
	//建立Gin路由器
	router := gin.Default()
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Authorization")
		c.Next()
	})
	err := router.SetTrustedProxies(nil)
	if err != nil {
		return nil
	}

	//設定餐點圖片靜態資源路徑
	router.Static("/uploads", "./uploads")

	router.OPTIONS("/*path", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	////無須權限，使用中間件檢查是否登入
	router.Use(middleware.AuthMiddleware(db))
	{
		//查詢菜單列表
		router.GET("/api/v1/menu", func(context *gin.Context) {
			handlers.GetMenuListHandler(context, db, rdb)
		})
		//以名稱模糊搜尋餐點
		router.GET("/api/v1/menu/search", func(context *gin.Context) {
			handlers.SearchMenuByNameHandler(context, db)
		})
		//查詢指定種類的所有餐點
		router.GET("/api/v1/menu/types/:type", func(context *gin.Context) {
			handlers.GetMenuByTypeHandler(context, db)
		})
		//查詢單筆餐點詳細資料
		router.GET("/api/v1/menu/items/:name", func(context *gin.Context) {
			handlers.GetMenuItemHandler(context, db)
		})
		//註冊帳號
		router.POST("/api/v1/register", func(context *gin.Context) {
			handlers.RegisterHandler(context, db)
		})
		//登入帳號
		router.POST("/api/v1/login", func(context *gin.Context) {
			handlers.LoginHandler(context, db)
		})

		////需要登入，使用中間件檢查是否登入
		loginRequired := router.Group("/api/v1/user")
		loginRequired.Use(middleware.CheckLoginMiddleware())
		{
			//查詢使用者資料
			loginRequired.GET("/profile", func(context *gin.Context) {
				handlers.GetUserProfileHandler(context, db)
			})
			//修改使用者資料
			loginRequired.PATCH("/profile/edit", func(context *gin.Context) {
				handlers.UpdateUserProfileHandler(context, db)
			})
			//建立新訂單
			loginRequired.POST("/orders", func(context *gin.Context) {
				handlers.CreateOrderHandler(context, db)
			})
			//將餐點加入訂單
			loginRequired.POST("/orders/:orderID/items", func(context *gin.Context) {
				handlers.AddOrderItemHandler(context, db)
			})
			//重新結算訂單總金額
			loginRequired.POST("/orders/:orderID/finalize", func(context *gin.Context) {
				handlers.FinalizeOrderHandler(context, db)
			})
			//修改訂單中餐點的備註
			loginRequired.PATCH("/orders/:orderID/items/:itemName", func(context *gin.Context) {
				handlers.UpdateOrderItemCommentHandler(context, db)
			})
			//查詢訂單紀錄
			loginRequired.GET("/orders", func(context *gin.Context) {
				handlers.GetOrderListHandler(context, db)
			})
			//查詢訂單詳細資訊與製作進度
			loginRequired.GET("/orders/:orderID", func(context *gin.Context) {
				handlers.GetOrderDataHandler(context, db)
			})
			//登出
			loginRequired.POST("/logout", func(context *gin.Context) {
				handlers.LogOutHandler(context, db)
			})
		}

		////需要Employee以上身分
		staffRequired := router.Group("/api/v1/staff")
		staffRequired.Use(middleware.CheckLoginMiddleware(), middleware.CheckRolePermissionMiddleware(models.RoleEmployee))
		{
			//查詢最近24小時內的所有訂單
			staffRequired.GET("/orders/recent", func(context *gin.Context) {
				handlers.GetRecentOrdersHandler(context, db)
			})
			//查詢任一訂單
			staffRequired.GET("/orders/:orderID", func(context *gin.Context) {
				handlers.GetStaffOrderDataHandler(context, db)
			})
			//將訂單設為已付款
			staffRequired.PATCH("/orders/:orderID/paid", func(context *gin.Context) {
				handlers.UpdateOrderPaidHandler(context, db)
			})
			//更新餐點製作進度
			staffRequired.PATCH("/orders/:orderID/items/:itemName/status", func(context *gin.Context) {
				handlers.UpdateItemStatusHandler(context, db)
			})
		}

		////需要Manager身分
		managerRequired := router.Group("/api/v1/manager")
		managerRequired.Use(middleware.CheckLoginMiddleware(), middleware.CheckRolePermissionMiddleware(models.RoleManager))
		{
			//查詢使用者列表
			managerRequired.GET("/users/list", func(context *gin.Context) {
				handlers.GetUserListHandler(context, db)
			})
			//以帳號模糊搜尋使用者
			managerRequired.GET("/users", func(context *gin.Context) {
				handlers.SearchUsersHandler(context, db)
			})
			//變更使用者身分
			managerRequired.PATCH("/users/:login/role", func(context *gin.Context) {
				handlers.SetUserRoleHandler(context, db)
			})
			//修改任一使用者資料
			managerRequired.PATCH("/users/:login", func(context *gin.Context) {
				handlers.ManagerUpdateUserHandler(context, db)
			})
			//上傳餐點圖片
			managerRequired.POST("/image", func(context *gin.Context) {
				handlers.UploadImageHandler(context)
			})
			//新增餐點
			managerRequired.POST("/menu", func(context *gin.Context) {
				handlers.CreateMenuItemHandler(context, db, rdb)
			})
			//修改餐點
			managerRequired.PATCH("/menu/:name", func(context *gin.Context) {
				handlers.UpdateMenuItemHandler(context, db, rdb)
			})
			//刪除餐點
			managerRequired.DELETE("/menu/:name", func(context *gin.Context) {
				handlers.DeleteMenuItemHandler(context, db, rdb)
			})
		}
	}

	return router
}
