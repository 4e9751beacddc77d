package route

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dense-analysis/fxwave/internal/model"
	"github.com/dense-analysis/fxwave/internal/route/util"
	"github.com/dense-analysis/fxwave/internal/store"
	"github.com/dense-analysis/fxwave/internal/store/memory"
	"go.uber.org/zap"
)

func newServer(t *testing.T, storage Storage) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(NewRouter(storage, Options{RequestTimeout: 5 * time.Second}, zap.NewNop()))
	t.Cleanup(server.Close)

	return server
}

func call(t *testing.T, server *httptest.Server, method, path, body string, out any) int {
	t.Helper()

	var reader io.Reader

	if body != "" {
		reader = strings.NewReader(body)
	}

	request, err := http.NewRequest(method, server.URL+path, reader)

	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}

	response, err := server.Client().Do(request)

	if err != nil {
		t.Fatalf("%s %s error = %v", method, path, err)
	}

	defer response.Body.Close()

	if out != nil {
		if err := json.NewDecoder(response.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: cannot decode body: %v", method, path, err)
		}
	}

	return response.StatusCode
}

func TestUserLifecycle(t *testing.T) {
	server := newServer(t, store.NewHandle(memory.New()))
	var user model.User

	if status := call(t, server, "POST", "/api/users", `{"line_user_id": "U1", "display_name": "Taro"}`, &user); status != http.StatusCreated {
		t.Fatalf("create status = %d", status)
	}

	if !user.NotificationsEnabled {
		t.Error("notifications should default to enabled")
	}

	var body util.ErrorBody

	if status := call(t, server, "POST", "/api/users", `{"line_user_id": "U1"}`, &body); status != http.StatusConflict {
		t.Fatalf("duplicate create status = %d", status)
	}

	if body.Error != "conflict" {
		t.Errorf("error = %q, want conflict", body.Error)
	}

	var synced model.User

	if status := call(t, server, "PUT", "/api/users", `{"line_user_id": "U1", "email": "taro@example.com"}`, &synced); status != http.StatusOK {
		t.Fatalf("upsert status = %d", status)
	}

	if synced.ID != user.ID || synced.Email == nil || *synced.Email != "taro@example.com" {
		t.Errorf("upsert = %+v", synced)
	}

	if !synced.UpdatedAt.After(synced.CreatedAt) {
		t.Errorf("updated_at %s is not after created_at %s", synced.UpdatedAt, synced.CreatedAt)
	}

	if status := call(t, server, "PUT", "/api/users", `{"line_user_id": "U2"}`, nil); status != http.StatusCreated {
		t.Fatalf("upsert of new user status = %d", status)
	}

	var byLine model.User

	if status := call(t, server, "GET", "/api/users/line/U1", "", &byLine); status != http.StatusOK || byLine.ID != user.ID {
		t.Fatalf("get by line id = %d %+v", status, byLine)
	}

	var muted model.User

	if status := call(t, server, "PUT", "/api/users/"+user.ID.String()+"/notifications", `{"enabled": false}`, &muted); status != http.StatusOK {
		t.Fatalf("notifications status = %d", status)
	}

	if muted.NotificationsEnabled {
		t.Error("notifications were not disabled")
	}

	if status := call(t, server, "GET", "/api/users/not-a-uuid", "", nil); status != http.StatusNotFound {
		t.Errorf("malformed id status = %d", status)
	}
}

func TestAlertFlow(t *testing.T) {
	server := newServer(t, store.NewHandle(memory.New()))
	var user model.User

	call(t, server, "POST", "/api/users", `{"line_user_id": "U1"}`, &user)

	var body util.ErrorBody
	invalid := `{"user_id": "` + user.ID.String() + `", "pair": "USD/JPY", "wave_type": 4, "price": "150.12345", "timestamp": "2025-01-15T10:00:00Z"}`

	if status := call(t, server, "POST", "/api/alerts", invalid, &body); status != http.StatusBadRequest {
		t.Fatalf("wave_type 4 status = %d", status)
	}

	if len(body.Issues) != 1 || body.Issues[0].Path != "wave_type" {
		t.Errorf("issues = %+v", body.Issues)
	}

	missing := `{"user_id": "6f1c2d33-0000-4000-8000-000000000000", "pair": "USD/JPY", "wave_type": 3, "timestamp": "2025-01-15T10:00:00Z"}`

	if status := call(t, server, "POST", "/api/alerts", missing, nil); status != http.StatusNotFound {
		t.Fatalf("unknown user status = %d", status)
	}

	var alert model.WaveAlert
	valid := `{"user_id": "` + user.ID.String() + `", "pair": "usdjpy", "wave_type": 3, "price": "150.12345", "timestamp": "2025-01-15T10:00:00Z"}`

	if status := call(t, server, "POST", "/api/alerts", valid, &alert); status != http.StatusCreated {
		t.Fatalf("record status = %d", status)
	}

	if alert.Status != model.StatusSent || alert.Pair != "USD/JPY" || alert.Price.Decimal.String() != "150.12345" {
		t.Errorf("alert = %+v", alert)
	}

	var alertList []model.WaveAlert

	if status := call(t, server, "GET", "/api/users/"+user.ID.String()+"/alerts?pair=USD_JPY", "", &alertList); status != http.StatusOK {
		t.Fatalf("list status = %d", status)
	}

	if len(alertList) != 1 || alertList[0].ID != alert.ID {
		t.Fatalf("alerts = %+v", alertList)
	}

	statusPath := "/api/alerts/" + alert.ID.String() + "/status"

	if status := call(t, server, "PUT", statusPath, `{"status": "read"}`, nil); status != http.StatusConflict {
		t.Errorf("sent to read status = %d, want 409", status)
	}

	if status := call(t, server, "PUT", statusPath, `{"status": "delivered"}`, &alert); status != http.StatusOK || alert.Status != model.StatusDelivered {
		t.Errorf("sent to delivered = %d %q", status, alert.Status)
	}

	if status := call(t, server, "PUT", statusPath, `{"status": "archived"}`, nil); status != http.StatusBadRequest {
		t.Errorf("unknown status = %d, want 400", status)
	}
}

func TestPricesAndQuote(t *testing.T) {
	server := newServer(t, store.NewHandle(memory.New()))
	bars := []string{
		`{"pair": "USD/JPY", "timestamp": "2025-01-15T09:00:00Z", "open_price": "150.00000", "close_price": "150.10000", "volume": 100}`,
		`{"pair": "USD/JPY", "timestamp": "2025-01-15T10:00:00Z", "open_price": "150.10000", "close_price": "150.99999", "volume": 50}`,
	}

	for _, bar := range bars {
		if status := call(t, server, "POST", "/api/prices", bar, nil); status != http.StatusCreated {
			t.Fatalf("append status = %d", status)
		}
	}

	var barList []model.PriceBar

	if status := call(t, server, "GET", "/api/prices?pair=USD/JPY&from=2025-01-15T10:00:00Z", "", &barList); status != http.StatusOK {
		t.Fatalf("query status = %d", status)
	}

	if len(barList) != 1 || barList[0].Close.Decimal.String() != "150.99999" {
		t.Fatalf("bars = %+v", barList)
	}

	var quote struct {
		Price  string `json:"price"`
		Change string `json:"change_24h"`
		Volume int64  `json:"volume_24h"`
	}

	if status := call(t, server, "GET", "/api/fx/usdjpy", "", &quote); status != http.StatusOK {
		t.Fatalf("quote status = %d", status)
	}

	if quote.Price != "150.99999" || quote.Change != "0.99999" || quote.Volume != 150 {
		t.Errorf("quote = %+v", quote)
	}

	if status := call(t, server, "GET", "/api/fx/EURUSD", "", nil); status != http.StatusNotFound {
		t.Errorf("quote without prices status = %d", status)
	}

	if status := call(t, server, "GET", "/api/prices", "", nil); status != http.StatusBadRequest {
		t.Errorf("query without pair status = %d", status)
	}
}

func TestSummaries(t *testing.T) {
	server := newServer(t, store.NewHandle(memory.New()))

	for _, closing := range []string{"150.1", "150.2"} {
		body := `{"pair": "USD/JPY", "date": "2025-01-15T18:30:00Z", "close_price": "` + closing + `"}`

		if status := call(t, server, "PUT", "/api/summaries", body, nil); status != http.StatusOK {
			t.Fatalf("upsert status = %d", status)
		}
	}

	var summaryList []model.DailySummary

	if status := call(t, server, "GET", "/api/summaries?pair=USD/JPY", "", &summaryList); status != http.StatusOK {
		t.Fatalf("list status = %d", status)
	}

	if len(summaryList) != 1 || summaryList[0].Close.Decimal.String() != "150.2" {
		t.Fatalf("summaries = %+v", summaryList)
	}
}

func TestUnavailableStorage(t *testing.T) {
	server := newServer(t, store.NewHandle(store.Unavailable{}))
	var body util.ErrorBody

	if status := call(t, server, "GET", "/api/users/line/U1", "", &body); status != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", status)
	}

	if body.Error != "storage_unavailable" {
		t.Errorf("error = %q", body.Error)
	}

	if status := call(t, server, "GET", "/health", "", nil); status != http.StatusServiceUnavailable {
		t.Errorf("health status = %d, want 503", status)
	}
}
