package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"CafeBackend/models"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func getTestRedis(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	if err := rdb.Del(context.Background(), menuCacheKey).Err(); err != nil {
		t.Fatalf("cache cleanup failed: %v", err)
	}

	return rdb
}

func createMenuItem(t *testing.T, db *gorm.DB, rdb *redis.Client, name string, price uint) *httptest.ResponseRecorder {
	c, w := newTestContext(t, "boss", gin.H{"name": name, "type": "Drinks", "price": price}, nil)
	CreateMenuItemHandler(c, db, rdb)
	return w
}

func TestCreateMenuItemDuplicateName(t *testing.T) {
	db := getTestDB(t)
	rdb := getTestRedis(t)

	if w := createMenuItem(t, db, rdb, "Latte", 350); w.Code != http.StatusCreated {
		t.Fatalf("create Latte: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w := createMenuItem(t, db, rdb, "Latte", 380)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate create: expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if msg := responseBody(t, w)["message"]; msg != models.ErrDuplicateItem.Error() {
		t.Errorf("duplicate create message = %v", msg)
	}

	// the original price must be untouched
	var menuItem models.MenuItem
	if err := db.First(&menuItem, "name = ?", "Latte").Error; err != nil {
		t.Fatalf("load menu item failed: %v", err)
	}
	if menuItem.Price != 350 {
		t.Errorf("price after rejected duplicate = %d, want 350", menuItem.Price)
	}
}

func TestMenuItemNameReusableAfterDelete(t *testing.T) {
	db := getTestDB(t)
	rdb := getTestRedis(t)

	if w := createMenuItem(t, db, rdb, "Mocha", 400); w.Code != http.StatusCreated {
		t.Fatalf("create Mocha: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	params := gin.Params{{Key: "name", Value: "Mocha"}}
	c, w := newTestContext(t, "boss", nil, params)
	DeleteMenuItemHandler(c, db, rdb)
	if w.Code != http.StatusOK {
		t.Fatalf("delete Mocha: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// a deleted name can be put back on the menu
	if w := createMenuItem(t, db, rdb, "Mocha", 420); w.Code != http.StatusCreated {
		t.Fatalf("re-create Mocha: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var menuItem models.MenuItem
	if err := db.First(&menuItem, "name = ?", "Mocha").Error; err != nil {
		t.Fatalf("load re-created menu item failed: %v", err)
	}
	if menuItem.Price != 420 {
		t.Errorf("re-created price = %d, want 420", menuItem.Price)
	}
}
