package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"CafeBackend/models"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func getTestDB(t *testing.T) *gorm.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/cafe_test?charset=utf8mb4&parseTime=True&loc=Local"
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := sqlDB.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.LoginToken{},
		&models.MenuItem{},
		&models.Order{},
		&models.ItemStatus{},
	)
	if err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	tables := []interface{}{
		&models.ItemStatus{},
		&models.Order{},
		&models.MenuItem{},
		&models.LoginToken{},
		&models.User{},
	}
	for _, table := range tables {
		if err := db.Unscoped().Where("1 = 1").Delete(table).Error; err != nil {
			t.Fatalf("cleanup failed: %v", err)
		}
	}

	return db
}

func seedMenuItem(t *testing.T, db *gorm.DB, name, itemType string, price uint) {
	item := models.MenuItem{Name: name, Type: itemType, Price: price}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed menu item %q failed: %v", name, err)
	}
}

func newTestContext(t *testing.T, login string, body interface{}, params gin.Params) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var req *http.Request
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body failed: %v", err)
		}
		req = httptest.NewRequest("POST", "/", bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest("POST", "/", nil)
	}
	c.Request = req
	c.Params = params
	if login != "" {
		c.Set("Login", login)
	}

	return c, w
}

func responseBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return body
}

func beginTestOrder(t *testing.T, db *gorm.DB, login string) (uint, gin.Params) {
	c, w := newTestContext(t, login, nil, nil)
	CreateOrderHandler(c, db)
	if w.Code != http.StatusCreated {
		t.Fatalf("create order: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	orderID := uint(responseBody(t, w)["orderID"].(float64))
	params := gin.Params{{Key: "orderID", Value: fmt.Sprint(orderID)}}
	return orderID, params
}

func orderTotal(t *testing.T, db *gorm.DB, orderID uint) uint {
	var order models.Order
	if err := db.First(&order, "id = ?", orderID).Error; err != nil {
		t.Fatalf("load order %d failed: %v", orderID, err)
	}
	return order.Total
}

func TestOrderTotalsLifecycle(t *testing.T) {
	db := getTestDB(t)
	seedMenuItem(t, db, "Latte", "Drinks", 350)
	seedMenuItem(t, db, "Bagel", "Food", 200)

	orderID, params := beginTestOrder(t, db, "alice")
	if total := orderTotal(t, db, orderID); total != 0 {
		t.Fatalf("new order total = %d, want 0", total)
	}

	c, w := newTestContext(t, "alice", gin.H{"itemName": "Latte", "comments": "no sugar"}, params)
	AddOrderItemHandler(c, db)
	if w.Code != http.StatusCreated {
		t.Fatalf("add Latte: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if total := orderTotal(t, db, orderID); total != 350 {
		t.Errorf("total after Latte = %d, want 350", total)
	}

	c, w = newTestContext(t, "alice", gin.H{"itemName": "Bagel"}, params)
	AddOrderItemHandler(c, db)
	if w.Code != http.StatusCreated {
		t.Fatalf("add Bagel: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if total := orderTotal(t, db, orderID); total != 550 {
		t.Errorf("total after Bagel = %d, want 550", total)
	}

	// the same item cannot be added to the same order twice
	c, w = newTestContext(t, "alice", gin.H{"itemName": "Latte"}, params)
	AddOrderItemHandler(c, db)
	if w.Code != http.StatusBadRequest {
		t.Errorf("duplicate add: expected 400, got %d", w.Code)
	}
	if total := orderTotal(t, db, orderID); total != 550 {
		t.Errorf("total after rejected duplicate = %d, want 550", total)
	}

	// finalize recomputes from the ItemStatus rows and is repeatable
	for i := 0; i < 2; i++ {
		c, w = newTestContext(t, "alice", nil, params)
		FinalizeOrderHandler(c, db)
		if w.Code != http.StatusOK {
			t.Fatalf("finalize #%d: expected 200, got %d: %s", i+1, w.Code, w.Body.String())
		}
		if total := orderTotal(t, db, orderID); total != 550 {
			t.Errorf("total after finalize #%d = %d, want 550", i+1, total)
		}
	}

	// finalize repairs a drifted cached total
	if err := db.Model(&models.Order{}).Where("id = ?", orderID).Update("total", 9999).Error; err != nil {
		t.Fatalf("inject drift failed: %v", err)
	}
	c, w = newTestContext(t, "alice", nil, params)
	FinalizeOrderHandler(c, db)
	if w.Code != http.StatusOK {
		t.Fatalf("finalize after drift: expected 200, got %d", w.Code)
	}
	if total := orderTotal(t, db, orderID); total != 550 {
		t.Errorf("total after drift repair = %d, want 550", total)
	}
}

func TestAddItemUnknownItemIsAtomic(t *testing.T) {
	db := getTestDB(t)
	seedMenuItem(t, db, "Latte", "Drinks", 350)

	orderID, params := beginTestOrder(t, db, "alice")

	c, w := newTestContext(t, "alice", gin.H{"itemName": "Ghost"}, params)
	AddOrderItemHandler(c, db)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown item: expected 400, got %d", w.Code)
	}
	if msg := responseBody(t, w)["message"]; msg != models.ErrUnknownItem.Error() {
		t.Errorf("unknown item message = %v", msg)
	}

	if total := orderTotal(t, db, orderID); total != 0 {
		t.Errorf("total after failed add = %d, want 0", total)
	}
	var count int64
	db.Model(&models.ItemStatus{}).Where("order_id = ?", orderID).Count(&count)
	if count != 0 {
		t.Errorf("item status rows after failed add = %d, want 0", count)
	}
}

func TestOrderOwnershipEnforced(t *testing.T) {
	db := getTestDB(t)
	seedMenuItem(t, db, "Latte", "Drinks", 350)

	_, params := beginTestOrder(t, db, "alice")

	c, w := newTestContext(t, "mallory", gin.H{"itemName": "Latte"}, params)
	AddOrderItemHandler(c, db)
	if w.Code != http.StatusForbidden {
		t.Errorf("foreign order add: expected 403, got %d", w.Code)
	}

	c, w = newTestContext(t, "mallory", nil, params)
	FinalizeOrderHandler(c, db)
	if w.Code != http.StatusForbidden {
		t.Errorf("foreign order finalize: expected 403, got %d", w.Code)
	}
}

func TestPaidFlagIdempotent(t *testing.T) {
	db := getTestDB(t)

	orderID, params := beginTestOrder(t, db, "alice")

	for i := 0; i < 2; i++ {
		c, w := newTestContext(t, "bob", nil, params)
		UpdateOrderPaidHandler(c, db)
		if w.Code != http.StatusOK {
			t.Fatalf("set paid #%d: expected 200, got %d: %s", i+1, w.Code, w.Body.String())
		}
	}

	var order models.Order
	if err := db.First(&order, "id = ?", orderID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if !order.Paid {
		t.Error("order should be paid")
	}

	// a paid order can no longer be amended by its owner
	c, w := newTestContext(t, "alice", gin.H{"itemName": "Latte"}, params)
	AddOrderItemHandler(c, db)
	if w.Code != http.StatusBadRequest {
		t.Errorf("add to paid order: expected 400, got %d", w.Code)
	}
}

func TestItemStatusTransitions(t *testing.T) {
	db := getTestDB(t)
	seedMenuItem(t, db, "Latte", "Drinks", 350)

	orderID, params := beginTestOrder(t, db, "alice")
	c, w := newTestContext(t, "alice", gin.H{"itemName": "Latte"}, params)
	AddOrderItemHandler(c, db)
	if w.Code != http.StatusCreated {
		t.Fatalf("add Latte: expected 201, got %d", w.Code)
	}

	itemParams := gin.Params{
		{Key: "orderID", Value: fmt.Sprint(orderID)},
		{Key: "itemName", Value: "Latte"},
	}

	steps := []struct {
		status   string
		wantCode int
	}{
		{"InProgress", http.StatusOK},
		{"NotStarted", http.StatusBadRequest}, // backward
		{"InProgress", http.StatusOK},         // same state is a no-op
		{"Complete", http.StatusOK},
		{"InProgress", http.StatusBadRequest}, // backward from terminal
		{"Done", http.StatusBadRequest},       // not a state at all
	}

	for _, step := range steps {
		c, w = newTestContext(t, "bob", gin.H{"status": step.status}, itemParams)
		UpdateItemStatusHandler(c, db)
		if w.Code != step.wantCode {
			t.Errorf("transition to %q: expected %d, got %d: %s", step.status, step.wantCode, w.Code, w.Body.String())
		}
	}

	var itemStatus models.ItemStatus
	if err := db.First(&itemStatus, "order_id = ? AND item_name = ?", orderID, "Latte").Error; err != nil {
		t.Fatalf("load item status failed: %v", err)
	}
	if itemStatus.Status != models.StateComplete {
		t.Errorf("final state = %s, want Complete", itemStatus.Status)
	}

	// composite key misses report UnknownOrderItem
	ghostParams := gin.Params{
		{Key: "orderID", Value: fmt.Sprint(orderID)},
		{Key: "itemName", Value: "Ghost"},
	}
	c, w = newTestContext(t, "bob", gin.H{"status": "InProgress"}, ghostParams)
	UpdateItemStatusHandler(c, db)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing order item: expected 404, got %d", w.Code)
	}
}

func TestConcurrentOrderCreationAllocatesDistinctIDs(t *testing.T) {
	db := getTestDB(t)

	const n = 10
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[uint]bool)
	)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, w := newTestContext(t, "alice", nil, nil)
			CreateOrderHandler(c, db)
			if w.Code != http.StatusCreated {
				t.Errorf("concurrent create: expected 201, got %d", w.Code)
				return
			}
			var body map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Errorf("unmarshal response failed: %v", err)
				return
			}
			orderID := uint(body["orderID"].(float64))
			mu.Lock()
			ids[orderID] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(ids) != n {
		t.Errorf("distinct order ids = %d, want %d", len(ids), n)
	}
}

func TestMenuDeletionKeepsOrderHistory(t *testing.T) {
	db := getTestDB(t)
	seedMenuItem(t, db, "Mocha", "Drinks", 400)

	orderID, params := beginTestOrder(t, db, "alice")
	c, w := newTestContext(t, "alice", gin.H{"itemName": "Mocha"}, params)
	AddOrderItemHandler(c, db)
	if w.Code != http.StatusCreated {
		t.Fatalf("add Mocha: expected 201, got %d", w.Code)
	}

	if err := db.Unscoped().Delete(&models.MenuItem{}, "name = ?", "Mocha").Error; err != nil {
		t.Fatalf("delete menu item failed: %v", err)
	}

	// history survives the menu deletion
	var count int64
	db.Model(&models.ItemStatus{}).Where("order_id = ?", orderID).Count(&count)
	if count != 1 {
		t.Errorf("item status rows after menu deletion = %d, want 1", count)
	}

	// finalize still sees the recorded price
	c, w = newTestContext(t, "alice", nil, params)
	FinalizeOrderHandler(c, db)
	if w.Code != http.StatusOK {
		t.Fatalf("finalize: expected 200, got %d", w.Code)
	}
	if total := orderTotal(t, db, orderID); total != 400 {
		t.Errorf("total after menu deletion = %d, want 400", total)
	}

	// but a new order can no longer reference the deleted name
	_, newParams := beginTestOrder(t, db, "alice")
	c, w = newTestContext(t, "alice", gin.H{"itemName": "Mocha"}, newParams)
	AddOrderItemHandler(c, db)
	if w.Code != http.StatusBadRequest {
		t.Errorf("add deleted item: expected 400, got %d", w.Code)
	}
	if msg := responseBody(t, w)["message"]; msg != models.ErrUnknownItem.Error() {
		t.Errorf("add deleted item message = %v", msg)
	}
}
