package ledger

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/earnstack/backend/internal/models"
)

func postJSON(h http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestRegisterUserHandler(t *testing.T) {
	store := newMockStore()
	h := NewHandler(NewService(store), nil)

	rec := postJSON(h.RegisterUser, "/users", `{"email":"b@x.com","name":"B","role":"buyer","image":"http://img"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["acknowledged"] != true || resp["insertedId"] != "b@x.com" {
		t.Errorf("unexpected response: %v", resp)
	}

	// Posting the same email again answers with the legacy payload and a
	// null insertedId.
	rec = postJSON(h.RegisterUser, "/users", `{"email":"b@x.com","name":"B","role":"buyer"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	resp = nil
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["message"] != "User already exists" {
		t.Errorf("unexpected message: %v", resp["message"])
	}
	if id, ok := resp["insertedId"]; !ok || id != nil {
		t.Errorf("insertedId should be null, got %v", id)
	}
}

func TestRegisterUserHandler_DefaultsToWorker(t *testing.T) {
	store := newMockStore()
	h := NewHandler(NewService(store), nil)

	rec := postJSON(h.RegisterUser, "/users", `{"email":"w@x.com","name":"W"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	u, _ := store.GetByEmail(nil, "w@x.com")
	if u.Role != models.RoleWorker {
		t.Errorf("default role: got %q, want worker", u.Role)
	}
	if u.Coin != models.StartingCoinsDefault {
		t.Errorf("starting coins: got %d, want %d", u.Coin, models.StartingCoinsDefault)
	}
}

func TestRegisterUserHandler_HashesPassword(t *testing.T) {
	store := newMockStore()
	h := NewHandler(NewService(store), nil)

	rec := postJSON(h.RegisterUser, "/users", `{"email":"w@x.com","name":"W","password":"hunter2"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	u, _ := store.GetByEmail(nil, "w@x.com")
	if u.PasswordHash == "" || u.PasswordHash == "hunter2" {
		t.Fatal("password must be stored hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("hunter2")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestRegisterUserHandler_Validation(t *testing.T) {
	h := NewHandler(NewService(newMockStore()), nil)
	cases := []string{
		`{"name":"no email"}`,
		`{"email":"x@x.com"}`,
		`{"email":"x@x.com","name":"X","role":"superuser"}`,
		`not json`,
	}
	for _, body := range cases {
		if rec := postJSON(h.RegisterUser, "/users", body); rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: got %d, want 400", body, rec.Code)
		}
	}
}
