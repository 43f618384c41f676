package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodbridge-dev/foodbridge/internal/access"
	dbpkg "github.com/foodbridge-dev/foodbridge/internal/db"
	"github.com/foodbridge-dev/foodbridge/internal/models"
	"github.com/foodbridge-dev/foodbridge/internal/points"
)

func setupHandlerDB(t *testing.T) *gorm.DB {
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

func seedUser(t *testing.T, conn *gorm.DB, email, role string) models.User {
	t.Helper()
	user := models.User{Username: email, Email: email, Password: "x", Role: role}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}
	return user
}

// identityMiddleware injects the caller the way the auth middleware would.
func identityMiddleware(user models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", user.ID)
		c.Set("identity", access.IdentityFromUser(user))
		c.Next()
	}
}

func TestGetBalanceForbidsOtherUsers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conn := setupHandlerDB(t)
	alice := seedUser(t, conn, "alice@example.com", models.RoleConsumer)
	bob := seedUser(t, conn, "bob@example.com", models.RoleConsumer)

	ledger := points.NewStore(conn, nil)
	handler := NewPointsHandler(ledger)

	router := gin.New()
	router.Use(identityMiddleware(alice))
	router.GET("/points/:user_id", handler.GetBalance)

	req := httptest.NewRequest(http.MethodGet, "/points/"+formatID(bob.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", w.Code)
	}
}

func TestGetBalanceAdminReadsAnyUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conn := setupHandlerDB(t)
	admin := seedUser(t, conn, "admin@example.com", models.RoleAdministrator)
	bob := seedUser(t, conn, "bob@example.com", models.RoleConsumer)

	ledger := points.NewStore(conn, nil)
	if errEnsure := ledger.EnsureAccount(context.Background(), bob.ID); errEnsure != nil {
		t.Fatalf("ensure account: %v", errEnsure)
	}
	if _, errAdd := ledger.AddPoints(context.Background(), bob.ID, 42); errAdd != nil {
		t.Fatalf("add points: %v", errAdd)
	}

	handler := NewPointsHandler(ledger)
	router := gin.New()
	router.Use(identityMiddleware(admin))
	router.GET("/points/:user_id", handler.GetBalance)

	req := httptest.NewRequest(http.MethodGet, "/points/"+formatID(bob.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Balance int64 `json:"balance"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &resp); errDecode != nil {
		t.Fatalf("decode response: %v", errDecode)
	}
	if resp.Balance != 42 {
		t.Fatalf("expected balance 42, got %d", resp.Balance)
	}
}

func TestAddPointsRejectsNonPositiveAmount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conn := setupHandlerDB(t)
	alice := seedUser(t, conn, "alice@example.com", models.RoleConsumer)

	ledger := points.NewStore(conn, nil)
	if errEnsure := ledger.EnsureAccount(context.Background(), alice.ID); errEnsure != nil {
		t.Fatalf("ensure account: %v", errEnsure)
	}

	handler := NewPointsHandler(ledger)
	router := gin.New()
	router.Use(identityMiddleware(alice))
	router.POST("/points/:user_id/add", handler.AddPoints)

	req := httptest.NewRequest(http.MethodPost, "/points/"+formatID(alice.ID)+"/add", strings.NewReader(`{"amount":-5}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}

	balance, errGet := ledger.GetBalance(context.Background(), alice.ID)
	if errGet != nil {
		t.Fatalf("get balance: %v", errGet)
	}
	if balance != 0 {
		t.Fatalf("balance changed by rejected credit: %d", balance)
	}
}

func TestTransferOverHTTPMovesPoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conn := setupHandlerDB(t)
	alice := seedUser(t, conn, "alice@example.com", models.RoleConsumer)
	bob := seedUser(t, conn, "bob@example.com", models.RoleConsumer)

	ledger := points.NewStore(conn, nil)
	for _, userID := range []uint64{alice.ID, bob.ID} {
		if errEnsure := ledger.EnsureAccount(context.Background(), userID); errEnsure != nil {
			t.Fatalf("ensure account: %v", errEnsure)
		}
	}
	if _, errAdd := ledger.AddPoints(context.Background(), alice.ID, 50); errAdd != nil {
		t.Fatalf("add points: %v", errAdd)
	}

	handler := NewPointsHandler(ledger)
	router := gin.New()
	router.Use(identityMiddleware(alice))
	router.POST("/points/transfer", handler.Transfer)

	body := `{"from_user_id":` + formatID(alice.ID) + `,"to_user_id":` + formatID(bob.ID) + `,"amount":30}`
	req := httptest.NewRequest(http.MethodPost, "/points/transfer", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		FromBalance int64 `json:"from_user_balance"`
		ToBalance   int64 `json:"to_user_balance"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &resp); errDecode != nil {
		t.Fatalf("decode response: %v", errDecode)
	}
	if resp.FromBalance != 20 || resp.ToBalance != 30 {
		t.Fatalf("unexpected balances after transfer: from=%d to=%d", resp.FromBalance, resp.ToBalance)
	}
}

func TestTransferForbidsSendingFromAnotherAccount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conn := setupHandlerDB(t)
	alice := seedUser(t, conn, "alice@example.com", models.RoleConsumer)
	bob := seedUser(t, conn, "bob@example.com", models.RoleConsumer)

	ledger := points.NewStore(conn, nil)
	for _, userID := range []uint64{alice.ID, bob.ID} {
		if errEnsure := ledger.EnsureAccount(context.Background(), userID); errEnsure != nil {
			t.Fatalf("ensure account: %v", errEnsure)
		}
	}
	if _, errAdd := ledger.AddPoints(context.Background(), bob.ID, 50); errAdd != nil {
		t.Fatalf("add points: %v", errAdd)
	}

	handler := NewPointsHandler(ledger)
	router := gin.New()
	router.Use(identityMiddleware(alice))
	router.POST("/points/transfer", handler.Transfer)

	body := `{"from_user_id":` + formatID(bob.ID) + `,"to_user_id":` + formatID(alice.ID) + `,"amount":10}`
	req := httptest.NewRequest(http.MethodPost, "/points/transfer", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", w.Code)
	}

	balance, errGet := ledger.GetBalance(context.Background(), bob.ID)
	if errGet != nil {
		t.Fatalf("get balance: %v", errGet)
	}
	if balance != 50 {
		t.Fatalf("balance changed by forbidden transfer: %d", balance)
	}
}

func TestLeaderboardReturnsDescendingBalances(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conn := setupHandlerDB(t)
	viewer := seedUser(t, conn, "viewer@example.com", models.RoleConsumer)

	ledger := points.NewStore(conn, nil)
	amounts := []int64{10, 30, 20}
	for i, amount := range amounts {
		user := seedUser(t, conn, "player"+formatID(uint64(i))+"@example.com", models.RoleConsumer)
		if errEnsure := ledger.EnsureAccount(context.Background(), user.ID); errEnsure != nil {
			t.Fatalf("ensure account: %v", errEnsure)
		}
		if _, errAdd := ledger.AddPoints(context.Background(), user.ID, amount); errAdd != nil {
			t.Fatalf("add points: %v", errAdd)
		}
	}

	handler := NewPointsHandler(ledger)
	router := gin.New()
	router.Use(identityMiddleware(viewer))
	router.GET("/points/leaderboard", handler.Leaderboard)

	req := httptest.NewRequest(http.MethodGet, "/points/leaderboard?limit=2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Leaderboard []struct {
			Balance int64 `json:"balance"`
		} `json:"leaderboard"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &resp); errDecode != nil {
		t.Fatalf("decode response: %v", errDecode)
	}
	if len(resp.Leaderboard) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(resp.Leaderboard))
	}
	if resp.Leaderboard[0].Balance != 30 || resp.Leaderboard[1].Balance != 20 {
		t.Fatalf("unexpected ordering: %+v", resp.Leaderboard)
	}
}

func TestLeaderboardCoercesNonPositiveLimitToDefault(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conn := setupHandlerDB(t)
	viewer := seedUser(t, conn, "viewer@example.com", models.RoleConsumer)

	ledger := points.NewStore(conn, nil)
	for i, amount := range []int64{10, 30, 20} {
		user := seedUser(t, conn, "player"+formatID(uint64(i))+"@example.com", models.RoleConsumer)
		if errEnsure := ledger.EnsureAccount(context.Background(), user.ID); errEnsure != nil {
			t.Fatalf("ensure account: %v", errEnsure)
		}
		if _, errAdd := ledger.AddPoints(context.Background(), user.ID, amount); errAdd != nil {
			t.Fatalf("add points: %v", errAdd)
		}
	}

	handler := NewPointsHandler(ledger)
	router := gin.New()
	router.Use(identityMiddleware(viewer))
	router.GET("/points/leaderboard", handler.Leaderboard)

	for _, query := range []string{"limit=0", "limit=-3"} {
		req := httptest.NewRequest(http.MethodGet, "/points/leaderboard?"+query, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected status 200, got %d: %s", query, w.Code, w.Body.String())
		}

		var resp struct {
			Leaderboard []struct {
				Balance int64 `json:"balance"`
			} `json:"leaderboard"`
		}
		if errDecode := json.Unmarshal(w.Body.Bytes(), &resp); errDecode != nil {
			t.Fatalf("%s: decode response: %v", query, errDecode)
		}
		if len(resp.Leaderboard) != 3 {
			t.Fatalf("%s: expected all 3 entries under the default limit, got %d", query, len(resp.Leaderboard))
		}
		if resp.Leaderboard[0].Balance != 30 {
			t.Fatalf("%s: unexpected ordering: %+v", query, resp.Leaderboard)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/points/leaderboard?limit=abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for non-numeric limit, got %d", w.Code)
	}
}
