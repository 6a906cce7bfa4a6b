package sales

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(repo *mockRepository) http.Handler {
	r := chi.NewRouter()
	r.Route("/restlets/sales-orders", NewHandler(discardLogger(), NewService(repo, nil, discardLogger())).MountRoutes)
	return r
}

func getJSON(t *testing.T, h http.Handler, target string) map[string]any {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestHandlerListsOpenOrders(t *testing.T) {
	h := newTestHandler(&mockRepository{orders: sampleOrders()})

	body := getJSON(t, h, "/restlets/sales-orders/")

	result, ok := body["result"].([]any)
	require.True(t, ok, "result must be an array: %v", body)
	require.Len(t, result, 2)
	first := result[0].(map[string]any)
	assert.Equal(t, "7", first["internalId"])
	assert.Equal(t, "SO-0007", first["documentNumber"])
	assert.Equal(t, "2024-03-01", first["date"])
	assert.Equal(t, 125.5, first["totalAmount"])
}

func TestHandlerListReturnsEmptyArray(t *testing.T) {
	h := newTestHandler(&mockRepository{})

	body := getJSON(t, h, "/restlets/sales-orders/")

	assert.Equal(t, []any{}, body["result"])
}

func TestHandlerGetsSingleOrder(t *testing.T) {
	repo := &mockRepository{details: map[string]*OrderDetail{
		"7": {
			OrderSummary: OrderSummary{InternalID: "7", DocumentNumber: "SO-0007", Date: "2024-03-01", TotalAmount: decimal.NewFromInt(26)},
			Items: []OrderItem{
				{ItemName: "Widget", Quantity: decimal.NewFromInt(3), Rate: decimal.NewFromInt(2), GrossAmount: decimal.NewFromInt(6)},
				{ItemName: "Gadget", Quantity: decimal.NewFromInt(4), Rate: decimal.NewFromInt(5), GrossAmount: decimal.NewFromInt(20)},
			},
		},
	}}
	h := newTestHandler(repo)

	body := getJSON(t, h, "/restlets/sales-orders/?id=7")

	result := body["result"].(map[string]any)
	assert.Equal(t, "SO-0007", result["documentNumber"])
	assert.Equal(t, float64(26), result["totalAmount"])
	items := result["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, map[string]any{"itemName": "Gadget", "quantity": float64(4), "rate": float64(5), "grossAmount": float64(20)}, items[1])
}

func TestHandlerReportsNotFound(t *testing.T) {
	h := newTestHandler(&mockRepository{details: map[string]*OrderDetail{}})

	body := getJSON(t, h, "/restlets/sales-orders/?id=404")

	assert.Equal(t, map[string]any{"RESULT": "NOT FOUND"}, body)
}

func TestHandlerReportsUnexpectedErrors(t *testing.T) {
	h := newTestHandler(&mockRepository{listErr: errors.New("boom"), getErr: errors.New("bang")})

	for _, target := range []string{"/restlets/sales-orders/", "/restlets/sales-orders/?id=1"} {
		body := getJSON(t, h, target)
		errBody, ok := body["error"].(map[string]any)
		require.True(t, ok, target)
		assert.Equal(t, "UNEXPECTED_ERROR", errBody["code"])
		assert.NotEmpty(t, errBody["message"])
	}
}
