package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rogerio-castellano/school-inventory/internal/auth"
	api "github.com/rogerio-castellano/school-inventory/internal/http"
	"github.com/rogerio-castellano/school-inventory/internal/http/handlers"
	rl "github.com/rogerio-castellano/school-inventory/internal/http/rate_limiter"
	"github.com/rogerio-castellano/school-inventory/internal/models"
	"github.com/rogerio-castellano/school-inventory/internal/notice"
	"github.com/rogerio-castellano/school-inventory/internal/records"
	"github.com/rogerio-castellano/school-inventory/internal/repo"
)

var (
	store     *records.MemoryStore
	noticeLog *notice.MemoryLog
	hub       *notice.Hub
	invRepo   *repo.RecordsInventoryRepository
	reqRepo   *repo.RecordsRequestRepository
	catRepo   *repo.RecordsCategoryRepository

	token      string
	staffToken string
)

func init() {
	setupTestRepo()
	r := api.NewRouter()

	var err error
	if token, err = generateToken(r, "admin", "secret"); err != nil {
		panic(fmt.Sprintf("error generating token: %v", err))
	}
	if staffToken, err = generateToken(r, "clerk", "secret"); err != nil {
		panic(fmt.Sprintf("error generating token: %v", err))
	}
}

func setupTestRepo() {
	store = records.NewMemoryStore()
	noticeLog = notice.NewMemoryLog(0)
	hub = notice.NewHub()
	n := notice.Fanout{noticeLog, hub}

	handlers.SetNotices(n, noticeLog, hub)
	invRepo = repo.NewRecordsInventoryRepository(store, n)
	reqRepo = repo.NewRecordsRequestRepository(store, n)
	catRepo = repo.NewRecordsCategoryRepository(store, n)
	handlers.SetRepos(invRepo, reqRepo, catRepo)
	handlers.SetTokens(auth.NewTokens("test-secret", 0, "school-inventory-test"))
	handlers.SetRevoker(auth.NewMemoryRevoker())
	api.SetLoginLimiter(rl.New(100, 100, 0))

	userRepo := repo.NewInMemoryUserRepository()
	handlers.SetUserRepo(userRepo)
	hash, err := auth.HashPassword("secret")
	if err != nil {
		panic(err)
	}
	// Pre-populate with an admin user and a staff user
	ctx := context.Background()
	userRepo.CreateUser(ctx, models.User{Username: "admin", PasswordHash: hash, Role: "admin"})
	userRepo.CreateUser(ctx, models.User{Username: "clerk", PasswordHash: hash, Role: "staff"})
}

func generateToken(r http.Handler, username, password string) (string, error) {
	body, _ := json.Marshal(handlers.UserLogin{Username: username, Password: password})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d: %s", w.Code, w.Body.String())
	}

	var res handlers.LoginResult
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		return "", err
	}
	return res.Token, nil
}

func clearAll() {
	store.Clear(records.TableInventory)
	store.Clear(records.TableRequests)
	store.Clear(records.TableCategories)
	store.ClearFailures()
	noticeLog.Clear()
}

// seed stores categories Writing and Paper, items Pencils (5/10, low),
// Erasers (0/5, out) and Copy Paper (50/10, good), and one pending request
// for Pencils. Ids start at 1 in that order.
func seed(t *testing.T) {
	t.Helper()
	clearAll()
	t.Cleanup(clearAll)

	ctx := context.Background()
	for _, c := range []models.Category{{Name: "Writing", Icon: "pencil"}, {Name: "Paper", Icon: "file"}} {
		if _, err := catRepo.Create(ctx, c); err != nil {
			t.Fatalf("seed category: %v", err)
		}
	}
	for _, it := range []models.InventoryItem{
		{Name: "Pencils", Category: "Writing", Quantity: 5, MinStock: 10, Unit: "box", Location: "Room 101"},
		{Name: "Erasers", Category: "Writing", Quantity: 0, MinStock: 5, Unit: "piece", Location: "Room 102"},
		{Name: "Copy Paper", Category: "Paper", Quantity: 50, MinStock: 10, Unit: "ream", Location: "Storage"},
	} {
		if _, err := invRepo.Create(ctx, it); err != nil {
			t.Fatalf("seed item: %v", err)
		}
	}
	if _, err := reqRepo.Create(ctx, models.Request{ItemID: 1, Quantity: 2, Requester: "Ms. Rivera", Department: "Science"}); err != nil {
		t.Fatalf("seed request: %v", err)
	}
	noticeLog.Clear()
}

func do(r http.Handler, method, path string, body any, tok string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}
	return v
}

func multipartCSV(t *testing.T, csv string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "items.csv")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte(csv)); err != nil {
		t.Fatal(err)
	}
	writer.Close()
	return &buf, writer.FormDataContentType()
}

func messages(level notice.Level) []string {
	var out []string
	for _, n := range noticeLog.All() {
		if n.Level == level {
			out = append(out, n.Message)
		}
	}
	return out
}

func newRequest(method, path string, body io.Reader, tok string) *http.Request {
	req := httptest.NewRequest(method, path, body)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return req
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
