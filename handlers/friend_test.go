package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"chatline/models"
)

func TestSendFriendRequest(t *testing.T) {
	env := newTestEnv(t)
	ana := env.createUser(t, "Ana", "ana@example.com")
	ben := env.createUser(t, "Ben", "ben@example.com")

	rr := env.request(t, "POST", "/api/friends/request", ana, map[string]string{"email": "ben@example.com"}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	f, err := env.store.FriendshipBetween(ana, ben)
	if err != nil {
		t.Fatalf("no friendship created: %v", err)
	}
	if f.Status != models.FriendshipPending || f.UserID != ana || f.FriendID != ben {
		t.Errorf("friendship = %+v", f)
	}
}

func TestSendFriendRequestToSelf(t *testing.T) {
	env := newTestEnv(t)
	ana := env.createUser(t, "Ana", "ana@example.com")

	rr := env.request(t, "POST", "/api/friends/request", ana, map[string]string{"email": "ana@example.com"}, nil)
	if rr.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusForbidden)
	}
}

func TestSendFriendRequestUnknownEmail(t *testing.T) {
	env := newTestEnv(t)
	ana := env.createUser(t, "Ana", "ana@example.com")

	rr := env.request(t, "POST", "/api/friends/request", ana, map[string]string{"email": "ghost@example.com"}, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestSendFriendRequestDuplicate(t *testing.T) {
	env := newTestEnv(t)
	ana := env.createUser(t, "Ana", "ana@example.com")
	ben := env.createUser(t, "Ben", "ben@example.com")

	if _, err := env.store.CreateFriendship(ben, ana); err != nil {
		t.Fatal(err)
	}

	// The reverse edge already exists, so a new request is refused.
	rr := env.request(t, "POST", "/api/friends/request", ana, map[string]string{"email": "ben@example.com"}, nil)
	if rr.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestAcceptFriendRequest(t *testing.T) {
	env := newTestEnv(t)
	ana := env.createUser(t, "Ana", "ana@example.com")
	ben := env.createUser(t, "Ben", "ben@example.com")

	if _, err := env.store.CreateFriendship(ana, ben); err != nil {
		t.Fatal(err)
	}

	rr := env.request(t, "POST", fmt.Sprintf("/api/friends/accept/%d", ana), ben, nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	friends, err := env.store.AreFriends(ana, ben)
	if err != nil {
		t.Fatal(err)
	}
	if !friends {
		t.Error("users are not friends after accept")
	}
}

// Only the recipient may resolve a pending request.
func TestAcceptFriendRequestByRequester(t *testing.T) {
	env := newTestEnv(t)
	ana := env.createUser(t, "Ana", "ana@example.com")
	ben := env.createUser(t, "Ben", "ben@example.com")

	if _, err := env.store.CreateFriendship(ana, ben); err != nil {
		t.Fatal(err)
	}

	rr := env.request(t, "POST", fmt.Sprintf("/api/friends/accept/%d", ben), ana, nil, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestRejectFriendRequest(t *testing.T) {
	env := newTestEnv(t)
	ana := env.createUser(t, "Ana", "ana@example.com")
	ben := env.createUser(t, "Ben", "ben@example.com")

	if _, err := env.store.CreateFriendship(ana, ben); err != nil {
		t.Fatal(err)
	}

	rr := env.request(t, "POST", fmt.Sprintf("/api/friends/reject/%d", ana), ben, nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	f, err := env.store.FriendshipBetween(ana, ben)
	if err != nil {
		t.Fatal(err)
	}
	if f.Status != models.FriendshipRejected {
		t.Errorf("status = %q, want rejected", f.Status)
	}
}

func TestFriendIndex(t *testing.T) {
	env := newTestEnv(t)
	ana := env.createUser(t, "Ana", "ana@example.com")
	ben := env.createUser(t, "Ben", "ben@example.com")
	cal := env.createUser(t, "Cal", "cal@example.com")

	env.makeFriends(t, ana, ben)
	if _, err := env.store.CreateFriendship(cal, ana); err != nil {
		t.Fatal(err)
	}

	rr := env.request(t, "GET", "/api/friends", ana, nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	type edge struct {
		User struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	var index struct {
		Friends          []edge `json:"friends"`
		ReceivedRequests []edge `json:"received_requests"`
		SentRequests     []edge `json:"sent_requests"`
	}
	decodeData(t, rr, &index)

	if len(index.Friends) != 1 || index.Friends[0].User.ID != ben {
		t.Errorf("friends = %+v, want just Ben", index.Friends)
	}
	if len(index.ReceivedRequests) != 1 || index.ReceivedRequests[0].User.ID != cal {
		t.Errorf("received = %+v, want just Cal", index.ReceivedRequests)
	}
	if len(index.SentRequests) != 0 {
		t.Errorf("sent = %+v, want empty", index.SentRequests)
	}
}
