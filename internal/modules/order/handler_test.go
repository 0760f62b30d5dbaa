package order

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/predobro/internal/modules/access"
)

func routerAs(e *env, actor access.Actor) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(access.WithActor(req.Context(), actor)))
		})
	})
	NewHandler(e.svc).RegisterRoutes(r)
	return r
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestCartEndpoints(t *testing.T) {
	e := newEnv(t)
	item := e.repo.addItem(e.storeA.ID, "Bread", "2.50", 1)
	customer := routerAs(e, e.customer)

	rec := do(customer, http.MethodPost, "/api/v1/cart/checkout", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "your cart is empty")

	rec = do(customer, http.MethodPost, "/api/v1/cart/items", `{"item_id":"`+item.String()+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var res AddToCartResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Added)

	rec = do(customer, http.MethodPatch, "/api/v1/cart/items/"+res.Cart.Lines[0].ID.String(), `{"quantity":3}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(customer, http.MethodGet, "/api/v1/cart/count", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":1}`, rec.Body.String())

	rec = do(customer, http.MethodPost, "/api/v1/cart/items", `{"item_id":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(customer, http.MethodPost, "/api/v1/cart/checkout", "")
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(customer, http.MethodGet, "/api/v1/orders/not-a-uuid", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStoreStatusEndpoint(t *testing.T) {
	e := newEnv(t)
	_, lineA, lineB := mixedOrder(t, e)
	store := routerAs(e, e.storeA)

	rec := do(store, http.MethodPatch, "/api/v1/store/order-items/"+lineA.String()+"/status", `{"status":"COMPLETED"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(store, http.MethodPatch, "/api/v1/store/order-items/"+lineA.String()+"/status", `{"status":"PROCESSING"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(store, http.MethodPatch, "/api/v1/store/order-items/"+lineB.String()+"/status", `{"status":"COMPLETED"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(store, http.MethodGet, "/api/v1/store/orders?include_completed=true", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(store, http.MethodGet, "/api/v1/store/orders.csv", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	customer := routerAs(e, e.customer)
	rec = do(customer, http.MethodGet, "/api/v1/store/orders", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateQuantityRequiresQuantity(t *testing.T) {
	e := newEnv(t)
	item := e.repo.addItem(e.storeA.ID, "Honey", "8.00", 4)
	customer := routerAs(e, e.customer)

	rec := do(customer, http.MethodPost, "/api/v1/cart/items", `{"item_id":"`+item.String()+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var res AddToCartResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	path := "/api/v1/cart/items/" + res.Cart.Lines[0].ID.String()

	rec = do(customer, http.MethodPatch, path, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "quantity")
	assert.Equal(t, 3, e.repo.stock(item), "the line must survive a missing quantity")

	rec = do(customer, http.MethodPatch, path, `{"quantity":2}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, e.repo.stock(item))

	rec = do(customer, http.MethodPatch, path, `{"quantity":0}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, e.repo.stock(item))
}
