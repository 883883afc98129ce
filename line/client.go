package line

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
)

const DefaultBaseUrl = "https://api.line.me/v2/bot"

var (
	ErrUnauthorized = errors.New("line: unauthorized")
	ErrRateLimited  = errors.New("line: rate limited")
)

// Client of the messaging API. Zero Timeout means no client side timeout.
type Client struct {
	AccessToken string
	BaseUrl     string
	Timeout     time.Duration
}

type GroupSummary struct {
	GroupId   string `json:"groupId"`
	GroupName string `json:"groupName"`
}

func (c *Client) Reply(ctx context.Context, replyToken string, messages ...Message) error {
	type ReqBody struct {
		ReplyToken string    `json:"replyToken"`
		Messages   []Message `json:"messages"`
	}
	_, err := c.do(ctx, fiber.MethodPost, "/message/reply", ReqBody{ReplyToken: replyToken, Messages: messages})
	return err
}

func (c *Client) Push(ctx context.Context, to string, messages ...Message) error {
	type ReqBody struct {
		To       string    `json:"to"`
		Messages []Message `json:"messages"`
	}
	_, err := c.do(ctx, fiber.MethodPost, "/message/push", ReqBody{To: to, Messages: messages})
	return err
}

func (c *Client) Multicast(ctx context.Context, to []string, messages ...Message) error {
	type ReqBody struct {
		To       []string  `json:"to"`
		Messages []Message `json:"messages"`
	}
	_, err := c.do(ctx, fiber.MethodPost, "/message/multicast", ReqBody{To: to, Messages: messages})
	return err
}

func (c *Client) Broadcast(ctx context.Context, messages ...Message) error {
	type ReqBody struct {
		Messages []Message `json:"messages"`
	}
	_, err := c.do(ctx, fiber.MethodPost, "/message/broadcast", ReqBody{Messages: messages})
	return err
}

// Impl of /group/{groupId}/summary
func (c *Client) GroupSummary(ctx context.Context, groupId string) (GroupSummary, error) {
	body, err := c.do(ctx, fiber.MethodGet, "/group/"+url.PathEscape(groupId)+"/summary", nil)
	if err != nil {
		return GroupSummary{}, err
	}
	var summary GroupSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return GroupSummary{}, fmt.Errorf("unmarshal body: %w", err)
	}
	return summary, nil
}

func (c *Client) do(ctx context.Context, method string, path string, reqBody interface{}) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	agent := fiber.AcquireAgent()
	defer fiber.ReleaseAgent(agent)

	req := agent.Request()
	req.Header.SetMethod(method)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+c.AccessToken)
	req.SetRequestURI(c.baseUrl() + path)
	if reqBody != nil {
		encoded, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		req.SetBody(encoded)
	}
	if c.Timeout > 0 {
		agent.Timeout(c.Timeout)
	}

	if err := agent.Parse(); err != nil {
		return nil, fmt.Errorf("agent parse: %w", err)
	}
	statusCode, body, errs := agent.Bytes()
	if len(errs) != 0 {
		return nil, fmt.Errorf("agent bytes: %v", errs)
	}
	switch statusCode {
	case fiber.StatusOK:
		return body, nil
	case fiber.StatusUnauthorized:
		return nil, ErrUnauthorized
	case fiber.StatusTooManyRequests:
		return nil, ErrRateLimited
	default:
		return nil, fmt.Errorf("invalid status code %d: %s", statusCode, string(body))
	}
}

func (c *Client) baseUrl() string {
	if c.BaseUrl == "" {
		return DefaultBaseUrl
	}
	return c.BaseUrl
}
