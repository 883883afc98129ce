package line

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordedRequest struct {
	Method        string
	Path          string
	Authorization string
	Body          map[string]interface{}
}

func testServer(t *testing.T, status int, response string) (*httptest.Server, *[]recordedRequest) {
	requests := make([]recordedRequest, 0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := ioutil.ReadAll(r.Body)
		rec := recordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
		}
		if len(body) > 0 {
			_ = json.Unmarshal(body, &rec.Body)
		}
		requests = append(requests, rec)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func TestClientPrimitives(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	server, requests := testServer(t, http.StatusOK, `{}`)
	client := &Client{AccessToken: "tok3n", BaseUrl: server.URL}

	assert.NoError(client.Reply(ctx, "reply-1", NewTextMessage("hi")))
	assert.NoError(client.Push(ctx, "C1", NewTextMessage("push")))
	assert.NoError(client.Multicast(ctx, []string{"U1", "U2"}, NewTextMessage("multi")))
	assert.NoError(client.Broadcast(ctx, NewTextMessage("all")))

	if !assert.Equal(4, len(*requests)) {
		return
	}
	reqs := *requests
	for _, r := range reqs {
		assert.Equal(http.MethodPost, r.Method)
		assert.Equal("Bearer tok3n", r.Authorization)
	}
	assert.Equal("/message/reply", reqs[0].Path)
	assert.Equal("reply-1", reqs[0].Body["replyToken"])
	assert.Equal([]interface{}{map[string]interface{}{"type": "text", "text": "hi"}}, reqs[0].Body["messages"])
	assert.Equal("/message/push", reqs[1].Path)
	assert.Equal("C1", reqs[1].Body["to"])
	assert.Equal("/message/multicast", reqs[2].Path)
	assert.Equal([]interface{}{"U1", "U2"}, reqs[2].Body["to"])
	assert.Equal("/message/broadcast", reqs[3].Path)
}

func TestClientErrors(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	cases := []struct {
		status int
		err    error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusTooManyRequests, ErrRateLimited},
	}
	for _, tc := range cases {
		server, _ := testServer(t, tc.status, `{"message":"nope"}`)
		client := &Client{AccessToken: "tok3n", BaseUrl: server.URL}
		assert.Equal(tc.err, client.Push(ctx, "C1", NewTextMessage("x")), "status: %d", tc.status)
	}

	server, _ := testServer(t, http.StatusBadRequest, `{"message":"bad"}`)
	client := &Client{AccessToken: "tok3n", BaseUrl: server.URL}
	err := client.Push(ctx, "C1", NewTextMessage("x"))
	if assert.Error(err) {
		assert.Contains(err.Error(), "invalid status code 400")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.Equal(context.Canceled, client.Push(cancelled, "C1", NewTextMessage("x")))
}

func TestGroupSummary(t *testing.T) {
	assert := assert.New(t)

	server, requests := testServer(t, http.StatusOK, `{"groupId":"C1","groupName":"Sales North"}`)
	client := &Client{AccessToken: "tok3n", BaseUrl: server.URL}

	summary, err := client.GroupSummary(context.Background(), "C1")
	if !assert.NoError(err) {
		return
	}
	assert.Equal(GroupSummary{GroupId: "C1", GroupName: "Sales North"}, summary)
	assert.Equal(http.MethodGet, (*requests)[0].Method)
	assert.Equal("/group/C1/summary", (*requests)[0].Path)
}

func TestFlexMessageJson(t *testing.T) {
	assert := assert.New(t)

	msg := NewFlexMessage("alt", NewBubble(
		NewBox("vertical", NewText("Title").Bold()),
		NewBox("horizontal", NewText("a").WithFlex(1), NewSeparator("md")),
		NewBox("vertical", NewURIButton("Open", "https://example.com")),
	))
	encoded, err := json.Marshal(msg)
	if !assert.NoError(err) {
		return
	}
	assert.Equal(`{"type":"flex","altText":"alt","contents":{"type":"bubble",`+
		`"header":{"type":"box","layout":"vertical","contents":[{"type":"text","text":"Title","weight":"bold"}]},`+
		`"body":{"type":"box","layout":"horizontal","contents":[{"type":"text","text":"a","flex":1},{"type":"separator","margin":"md"}]},`+
		`"footer":{"type":"box","layout":"vertical","contents":[{"type":"button","style":"primary","action":{"type":"uri","label":"Open","uri":"https://example.com"}}]}}}`,
		string(encoded))
}
