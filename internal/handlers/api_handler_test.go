package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"procurement_tracker/internal/models"
	"procurement_tracker/internal/services"
	"procurement_tracker/internal/snapshot"
	"procurement_tracker/internal/state"
)

type memOrderRepo struct {
	orders map[uint]models.Order
}

func (m *memOrderRepo) FetchAll(context.Context) ([]models.Order, error) {
	out := make([]models.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o)
	}
	return out, nil
}

func (m *memOrderRepo) Upsert(_ context.Context, o *models.Order) error {
	m.orders[o.ID] = o.Clone()
	return nil
}

func (m *memOrderRepo) Delete(_ context.Context, id uint) error {
	delete(m.orders, id)
	return nil
}

type memRemote struct{ snap state.RemoteSnapshot }

func (m *memRemote) Ping(context.Context) error { return nil }
func (m *memRemote) Fetch(context.Context) (state.RemoteSnapshot, error) {
	return m.snap, nil
}

type memItemRepo struct{}

func (memItemRepo) FetchAll(context.Context) ([]models.Item, error) { return nil, nil }
func (memItemRepo) Upsert(context.Context, *models.Item) error      { return nil }
func (memItemRepo) Delete(context.Context, uint) error              { return nil }

type silentNotifier struct{}

func (silentNotifier) SendMessage(string, string) error          { return nil }
func (silentNotifier) SendOrderSheet(string, models.Order) error { return nil }
func (silentNotifier) NotifySyncResult(bool, string)             {}

type staticUsers struct{ manager bool }

func (u staticUsers) CreateUser(*models.User, string) error { return nil }
func (u staticUsers) GetUserByUsername(string) (*models.User, error) {
	return &models.User{Username: "manager"}, nil
}
func (u staticUsers) VerifyManagerPIN(string, string) (bool, error) { return u.manager, nil }

func setupRouter(t *testing.T) (*gin.Engine, *state.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := state.NewStore(snapshot.NewMemoryStore())
	if err := st.Hydrate(context.Background()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	_, err := st.Dispatch(context.Background(), state.ReplaceCollections{
		Stores:    []models.Store{{ID: 1, Name: "Central", Prefix: "CV2"}},
		Suppliers: []models.Supplier{{ID: 1, Name: "Fresh Farm", PaymentMethod: "transfer"}},
		Items:     []models.Item{{ID: 1, Name: "Milk", Unit: "l", SupplierID: 1}},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	repo := &memOrderRepo{orders: map[uint]models.Order{}}
	notifier := silentNotifier{}
	inventory := services.NewInventoryService(st, memItemRepo{})
	mutations := services.NewMutationService(st, repo, inventory, notifier)
	syncSvc := services.NewSyncService(st, &memRemote{}, notifier)
	handler := NewAPIHandler(st, mutations, syncSvc, staticUsers{manager: true})

	router := gin.New()
	api := router.Group("/api")
	api.GET("/state", handler.GetState)
	api.POST("/orders", handler.CreateOrder)
	api.POST("/orders/:id/status", handler.SetStatus)
	api.POST("/orders/:id/spoil", handler.SpoilItem)
	api.POST("/orders/move-item", handler.MoveItem)
	api.POST("/sync", handler.TriggerSync)
	api.GET("/sync/status", handler.SyncStatus)
	api.PUT("/settings", handler.UpdateSettings)
	return router, st
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateOrderEndpoint(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/orders", gin.H{
		"store_id":    1,
		"supplier_id": 1,
		"items":       []gin.H{{"item_id": 1, "name": "Milk", "quantity": 5}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var order models.Order
	if err := json.Unmarshal(w.Body.Bytes(), &order); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if order.OrderID == "" || order.Status != models.StatusDispatching {
		t.Fatalf("unexpected order: %+v", order)
	}
}

func TestCreateOrderUnknownSupplier(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/orders", gin.H{"store_id": 1, "supplier_id": 42})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestMoveItemEndpointRejectsSelfMove(t *testing.T) {
	router, _ := setupRouter(t)
	doJSON(t, router, http.MethodPost, "/api/orders", gin.H{
		"store_id": 1, "supplier_id": 1,
		"items": []gin.H{{"item_id": 1, "name": "Milk", "quantity": 5}},
	})

	w := doJSON(t, router, http.MethodPost, "/api/orders/move-item", gin.H{
		"source_id": 1, "dest_id": 1, "item_id": 1,
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSpoilEndpoint(t *testing.T) {
	router, st := setupRouter(t)
	doJSON(t, router, http.MethodPost, "/api/orders", gin.H{
		"store_id": 1, "supplier_id": 1,
		"items": []gin.H{{"item_id": 1, "name": "Milk", "quantity": 5}},
	})

	w := doJSON(t, router, http.MethodPost, "/api/orders/1/spoil", gin.H{"item_id": 1, "quantity": 2})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	cur := st.State()
	o := cur.OrderByID(1)
	if o.FindItem(1, true) < 0 {
		t.Fatalf("spoiled line missing: %+v", o.Items)
	}
}

func TestSyncEndpoint(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/sync", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, router, http.MethodGet, "/api/sync/status", nil)
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte("idle")) {
		t.Fatalf("sync status: %d %s", w.Code, w.Body.String())
	}
}

func TestUpdateSettingsEndpoint(t *testing.T) {
	router, st := setupRouter(t)

	w := doJSON(t, router, http.MethodPut, "/api/settings", gin.H{"webhook_url": "https://example.test/hook"})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if st.State().Settings.WebhookURL != "https://example.test/hook" {
		t.Fatalf("settings not stored")
	}
}
