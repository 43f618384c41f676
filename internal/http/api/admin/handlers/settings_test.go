package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	dbpkg "github.com/foodbridge-dev/foodbridge/internal/db"
	"github.com/foodbridge-dev/foodbridge/internal/models"
	"github.com/foodbridge-dev/foodbridge/internal/settings"
)

func setupAdminDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, errOpen := dbpkg.Open(":memory:")
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := dbpkg.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	return conn
}

func strconvID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func TestPutSettingUpdatesSnapshot(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conn := setupAdminDB(t)
	if errRefresh := settings.Refresh(context.Background(), conn); errRefresh != nil {
		t.Fatalf("refresh settings: %v", errRefresh)
	}
	if got := settings.RewardPoints(); got != 10 {
		t.Fatalf("expected default reward of 10, got %d", got)
	}

	handler := NewSettingsAdminHandler(conn)
	router := gin.New()
	router.PUT("/settings/:key", handler.Put)

	req := httptest.NewRequest(http.MethodPut, "/settings/"+settings.RewardPointsKey, strings.NewReader(`{"value":25}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	if got := settings.RewardPoints(); got != 25 {
		t.Fatalf("expected reward of 25 after update, got %d", got)
	}

	var stored models.Setting
	if errFind := conn.First(&stored, "key = ?", settings.RewardPointsKey).Error; errFind != nil {
		t.Fatalf("setting row missing: %v", errFind)
	}

	// Restore defaults for other tests sharing the process snapshot.
	if errDelete := conn.Delete(&models.Setting{}, "key = ?", settings.RewardPointsKey).Error; errDelete != nil {
		t.Fatalf("cleanup: %v", errDelete)
	}
	if errRefresh := settings.Refresh(context.Background(), conn); errRefresh != nil {
		t.Fatalf("refresh settings: %v", errRefresh)
	}
}

func TestPutSettingRejectsInvalidJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conn := setupAdminDB(t)

	handler := NewSettingsAdminHandler(conn)
	router := gin.New()
	router.PUT("/settings/:key", handler.Put)

	req := httptest.NewRequest(http.MethodPut, "/settings/SOME_KEY", strings.NewReader(`{"value":`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestVerifyMerchantSetsFlag(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conn := setupAdminDB(t)

	user := models.User{Username: "m", Email: "m@example.com", Password: "x", Role: models.RoleMerchant}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}
	merchant := models.Merchant{UserID: user.ID, BusinessName: "Bakery"}
	if errCreate := conn.Create(&merchant).Error; errCreate != nil {
		t.Fatalf("create merchant: %v", errCreate)
	}

	handler := NewMerchantAdminHandler(conn)
	router := gin.New()
	router.PATCH("/merchants/:user_id/verify", handler.Verify)

	req := httptest.NewRequest(http.MethodPatch, "/merchants/"+strconvID(user.ID)+"/verify", strings.NewReader(`{"is_verified":true}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var reloaded models.Merchant
	if errFind := conn.First(&reloaded, "user_id = ?", user.ID).Error; errFind != nil {
		t.Fatalf("reload merchant: %v", errFind)
	}
	if !reloaded.IsVerified {
		t.Fatal("merchant not verified")
	}
}
