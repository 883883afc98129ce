package rest

import (
	"bufio"
	"bytes"
	"testing"
	"time"

	"github.com/dealstreak/dealstreak"
	"github.com/stretchr/testify/assert"
)

func TestWriteEvent(t *testing.T) {
	assert := assert.New(t)

	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	err := writeEvent(w, dealstreak.Event{
		Name: dealstreak.EventActivityCreated,
		Activity: dealstreak.Activity{
			Id: "a1", OwnerId: "u1", Type: dealstreak.ActivityCall, Description: "Intro",
			Points: 10, Status: dealstreak.StatusCompleted, CreatedAt: at, UpdatedAt: at,
		},
		OccurredAt: at,
	})
	if !assert.NoError(err) {
		return
	}
	assert.Equal("event: activity:created\n"+
		"id: 1773133200000000000\n"+
		`data: {"id":"a1","userId":"u1","type":"call","description":"Intro","points":10,"status":"completed","createdAt":1773133200,"updatedAt":1773133200}`+
		"\n\n", buf.String())
}
