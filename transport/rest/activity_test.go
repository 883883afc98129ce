package rest

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dealstreak/dealstreak"
	"github.com/dealstreak/dealstreak/inmem"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

type testServer struct {
	app        *fiber.App
	users      *inmem.UserStore
	activities *inmem.ActivityStore
}

// newTestServer authorizes every request as the user named in the X-User header.
func newTestServer(t *testing.T) testServer {
	ctx := context.Background()
	users := inmem.NewUserStore()
	activities := inmem.NewActivityStore()
	for _, u := range []dealstreak.User{{Id: "u1", DisplayName: "Alice"}, {Id: "u2", DisplayName: "Bob"}} {
		if err := users.Insert(ctx, u); err != nil {
			t.Fatal(err)
		}
	}
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	board := &dealstreak.Leaderboard{Activities: activities, Users: users, Now: func() time.Time { return now }}
	ledger := &dealstreak.Ledger{
		Activities: activities,
		Users:      users,
		Aggregates: &dealstreak.Aggregator{Users: users, Activities: activities},
		Stats:      board,
		Now:        func() time.Time { return now },
	}

	authorizer := func(ctx *fiber.Ctx) error {
		user, err := users.ById(ctx.Context(), dealstreak.UserId(ctx.Get("X-User")))
		if err != nil {
			return fiber.ErrUnauthorized
		}
		ctx.Locals(userLocalsKey, user)
		return nil
	}

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	api := app.Group("/api")
	(&ActivityController{Ledger: ledger}).InstallTo(authorizer, api)
	(&LeaderboardController{Stats: ledger}).InstallTo(authorizer, api)
	(&GroupController{Registry: &dealstreak.GroupRegistry{Store: inmem.NewGroupStore()}}).InstallTo(authorizer, api)
	return testServer{app: app, users: users, activities: activities}
}

func (s testServer) do(t *testing.T, method string, path string, user string, body string) (int, string) {
	var req = httptest.NewRequest(method, path, nil)
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if user != "" {
		req.Header.Set("X-User", user)
	}
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	respBody, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, string(respBody)
}

func TestActivityLifecycle(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s := newTestServer(t)

	status, body := s.do(t, "POST", "/api/activities", "u1",
		`{"type":"contract-sent","description":"ACME contract","metadata":{"value":1200}}`)
	if !assert.Equal(fiber.StatusCreated, status, body) {
		return
	}
	var created activityResponse
	if !assert.NoError(json.Unmarshal([]byte(body), &created)) {
		return
	}
	assert.Equal("u1", created.UserId)
	assert.Equal(30, created.Points)
	assert.Equal("completed", created.Status)
	assert.Equal(map[string]interface{}{"value": float64(1200)}, created.Metadata)

	user, err := s.users.ById(ctx, "u1")
	if assert.NoError(err) {
		assert.Equal(30, user.TotalPoints)
		assert.Equal(1, user.CurrentStreak)
	}

	status, _ = s.do(t, "GET", "/api/activities/"+created.Id, "u2", "")
	assert.Equal(fiber.StatusOK, status)

	status, body = s.do(t, "PATCH", "/api/activities/"+created.Id, "u2", `{"type":"project-booked"}`)
	assert.Equal(fiber.StatusBadRequest, status)
	assert.Equal(JsonErrorMessageResponse("update activity: activity owned by another user"), body)

	status, body = s.do(t, "PATCH", "/api/activities/"+created.Id, "u1", `{"type":"project-booked"}`)
	if assert.Equal(fiber.StatusOK, status, body) {
		var updated activityResponse
		if assert.NoError(json.Unmarshal([]byte(body), &updated)) {
			assert.Equal(50, updated.Points)
		}
	}
	user, err = s.users.ById(ctx, "u1")
	if assert.NoError(err) {
		assert.Equal(50, user.TotalPoints)
	}

	status, body = s.do(t, "GET", "/api/activities", "u1", "")
	if assert.Equal(fiber.StatusOK, status) {
		var list []activityResponse
		if assert.NoError(json.Unmarshal([]byte(body), &list)) {
			assert.Len(list, 1)
		}
	}

	status, _ = s.do(t, "DELETE", "/api/activities/"+created.Id, "u1", "")
	assert.Equal(fiber.StatusNoContent, status)
	user, err = s.users.ById(ctx, "u1")
	if assert.NoError(err) {
		assert.Equal(0, user.TotalPoints)
	}

	status, _ = s.do(t, "GET", "/api/activities/"+created.Id, "u1", "")
	assert.Equal(fiber.StatusNotFound, status)
	status, _ = s.do(t, "DELETE", "/api/activities/"+created.Id, "u1", "")
	assert.Equal(fiber.StatusNotFound, status)
}

func TestActivityCreateValidation(t *testing.T) {
	assert := assert.New(t)
	s := newTestServer(t)

	cases := []struct {
		body       string
		returnCode int
	}{
		{body: `{"description":"no type"}`, returnCode: fiber.StatusBadRequest},
		{body: `{"type":"dance","description":"unknown"}`, returnCode: fiber.StatusBadRequest},
		{body: `{"type":"call","description":"   "}`, returnCode: fiber.StatusBadRequest},
		{body: `{"type":"call","description":"ok","status":"archived"}`, returnCode: fiber.StatusBadRequest},
		{body: `{"type":`, returnCode: fiber.StatusBadRequest},
		{body: `{"type":"call","description":"ok","status":"pending"}`, returnCode: fiber.StatusCreated},
	}
	for _, useCase := range cases {
		status, body := s.do(t, "POST", "/api/activities", "u1", useCase.body)
		assert.Equal(useCase.returnCode, status, useCase.body+" -> "+body)
	}

	status, _ := s.do(t, "POST", "/api/activities", "", `{"type":"call","description":"ok"}`)
	assert.Equal(fiber.StatusUnauthorized, status)
}

func TestLeaderboardEndpoint(t *testing.T) {
	assert := assert.New(t)
	s := newTestServer(t)

	for _, req := range []struct{ user, body string }{
		{"u1", `{"type":"call","description":"a"}`},
		{"u2", `{"type":"meeting","description":"b"}`},
		{"u2", `{"type":"call","description":"c"}`},
	} {
		status, body := s.do(t, "POST", "/api/activities", req.user, req.body)
		if !assert.Equal(fiber.StatusCreated, status, body) {
			return
		}
	}

	status, body := s.do(t, "GET", "/api/leaderboard?period=weekly", "u1", "")
	if !assert.Equal(fiber.StatusOK, status, body) {
		return
	}
	var resp struct {
		Period      string `json:"period"`
		Leaderboard []struct {
			UserId      string `json:"userId"`
			DisplayName string `json:"displayName"`
			Points      int    `json:"points"`
			Rank        int    `json:"rank"`
		} `json:"leaderboard"`
		TeamTotal struct {
			Points      int `json:"points"`
			Activities  int `json:"activities"`
			ActiveUsers int `json:"activeUsers"`
		} `json:"teamTotal"`
	}
	if !assert.NoError(json.Unmarshal([]byte(body), &resp)) {
		return
	}
	assert.Equal("weekly", resp.Period)
	if assert.Len(resp.Leaderboard, 2) {
		assert.Equal("Bob", resp.Leaderboard[0].DisplayName)
		assert.Equal(30, resp.Leaderboard[0].Points)
		assert.Equal(1, resp.Leaderboard[0].Rank)
		assert.Equal(2, resp.Leaderboard[1].Rank)
	}
	assert.Equal(40, resp.TeamTotal.Points)
	assert.Equal(3, resp.TeamTotal.Activities)
	assert.Equal(2, resp.TeamTotal.ActiveUsers)

	status, _ = s.do(t, "GET", "/api/leaderboard?period=yearly", "u1", "")
	assert.Equal(fiber.StatusBadRequest, status)
}

func TestGroupEndpoints(t *testing.T) {
	assert := assert.New(t)
	s := newTestServer(t)

	status, body := s.do(t, "POST", "/api/groups", "u1", `{"groupId":"g1","groupName":"Sales"}`)
	if !assert.Equal(fiber.StatusCreated, status, body) {
		return
	}
	assert.Contains(body, `"notificationSettings":{"achievements":true,"dailyLeaderboard":true,"milestones":true}`)

	status, _ = s.do(t, "POST", "/api/groups", "u1", `{"groupId":"g1"}`)
	assert.Equal(fiber.StatusConflict, status)
	status, _ = s.do(t, "POST", "/api/groups", "u1", `{"groupName":"nameless"}`)
	assert.Equal(fiber.StatusBadRequest, status)

	status, body = s.do(t, "GET", "/api/groups?kind=achievements", "u1", "")
	assert.Equal(fiber.StatusOK, status)
	assert.Equal(`{"groupIds":["g1"]}`, body)
	status, _ = s.do(t, "GET", "/api/groups?kind=weather", "u1", "")
	assert.Equal(fiber.StatusBadRequest, status)

	status, _ = s.do(t, "DELETE", "/api/groups/g1", "u1", "")
	assert.Equal(fiber.StatusNoContent, status)
	status, _ = s.do(t, "DELETE", "/api/groups/g1", "u1", "")
	assert.Equal(fiber.StatusNoContent, status)
	status, _ = s.do(t, "DELETE", "/api/groups/g2", "u1", "")
	assert.Equal(fiber.StatusNotFound, status)

	status, body = s.do(t, "GET", "/api/groups", "u1", "")
	assert.Equal(fiber.StatusOK, status)
	assert.Equal(`{"groupIds":[]}`, body)
}
