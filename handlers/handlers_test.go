package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"chatline/config"
	"chatline/database"
	"chatline/middleware"
	"chatline/models"
	"chatline/realtime"
	"chatline/store"
	"chatline/utils"
)

type recordedBroadcast struct {
	Channels []string
	Event    string
	Payload  interface{}
	Except   string
}

type fakeBroadcaster struct {
	calls []recordedBroadcast
	err   error
}

func (f *fakeBroadcaster) Broadcast(channels []string, event string, payload interface{}, exceptSocket string) error {
	f.calls = append(f.calls, recordedBroadcast{channels, event, payload, exceptSocket})
	return f.err
}

type testEnv struct {
	store     *store.Store
	transport *fakeBroadcaster
	router    *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)
	config.Load()

	db, err := database.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.CreateTables(db, "sqlite3"); err != nil {
		t.Fatalf("create tables: %v", err)
	}

	st := store.New(db)
	transport := &fakeBroadcaster{}
	dispatcher := realtime.NewDispatcher(transport)

	authH := &AuthHandler{Store: st}
	userH := &UserHandler{Store: st}
	friendH := &FriendHandler{Store: st}
	messageH := &MessageHandler{Store: st, Dispatcher: dispatcher}
	groupH := &GroupHandler{Store: st, Dispatcher: dispatcher}

	r := gin.New()
	r.POST("/api/auth/register", authH.Register)
	r.POST("/api/auth/login", authH.Login)

	authed := r.Group("/api")
	authed.Use(middleware.AuthMiddleware())
	{
		authed.GET("/users/me", userH.Me)
		authed.GET("/friends", friendH.Index)
		authed.POST("/friends/request", friendH.SendRequest)
		authed.POST("/friends/accept/:user_id", friendH.Accept)
		authed.POST("/friends/reject/:user_id", friendH.Reject)
		authed.GET("/messages/:user_id", messageH.GetConversation)
		authed.POST("/messages/:user_id", messageH.Send)
		authed.POST("/messages/:user_id/typing", messageH.Typing)
		authed.GET("/groups", groupH.Index)
		authed.POST("/groups", groupH.Create)
		authed.GET("/groups/:id", groupH.Show)
		authed.POST("/groups/:id/members", groupH.AddMember)
		authed.GET("/groups/:id/messages", groupH.Messages)
		authed.POST("/groups/:id/messages", groupH.SendMessage)
	}

	return &testEnv{store: st, transport: transport, router: r}
}

func (e *testEnv) createUser(t *testing.T, name, email string) int64 {
	t.Helper()

	user := &models.User{Name: name, Email: email, Password: "hashed"}
	if err := e.store.CreateUser(user); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user.ID
}

func (e *testEnv) makeFriends(t *testing.T, a, b int64) {
	t.Helper()

	if _, err := e.store.CreateFriendship(a, b); err != nil {
		t.Fatalf("create friendship: %v", err)
	}
	if _, err := e.store.SetFriendshipStatus(a, b, models.FriendshipAccepted); err != nil {
		t.Fatalf("accept friendship: %v", err)
	}
}

// request performs an authenticated JSON request as userID. A zero userID
// sends no Authorization header.
func (e *testEnv) request(t *testing.T, method, path string, userID int64, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		token, err := utils.GenerateToken(userID)
		if err != nil {
			t.Fatalf("generate token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeData(t *testing.T, rr *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &wrapper); err != nil {
		t.Fatalf("decode response %s: %v", rr.Body.String(), err)
	}
	if err := json.Unmarshal(wrapper.Data, out); err != nil {
		t.Fatalf("decode data %s: %v", wrapper.Data, err)
	}
}
