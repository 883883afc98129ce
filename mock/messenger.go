package mock

import (
	"context"
	"sync"

	"github.com/dealstreak/dealstreak/line"
)

// Sent is a message delivery recorded by Messenger.
type Sent struct {
	Primitive string
	To        []string
	Messages  []line.Message
}

// Messenger records every delivery. Err, when set, is returned by every
// primitive instead of recording.
type Messenger struct {
	Err error

	mutex sync.Mutex
	sent  []Sent
}

func (m *Messenger) record(primitive string, to []string, messages []line.Message) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, Sent{Primitive: primitive, To: to, Messages: messages})
	return nil
}

func (m *Messenger) Reply(ctx context.Context, replyToken string, messages ...line.Message) error {
	return m.record("reply", []string{replyToken}, messages)
}

func (m *Messenger) Push(ctx context.Context, to string, messages ...line.Message) error {
	return m.record("push", []string{to}, messages)
}

func (m *Messenger) Multicast(ctx context.Context, to []string, messages ...line.Message) error {
	return m.record("multicast", to, messages)
}

func (m *Messenger) Broadcast(ctx context.Context, messages ...line.Message) error {
	return m.record("broadcast", nil, messages)
}

func (m *Messenger) Sent() []Sent {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	sent := make([]Sent, len(m.sent))
	copy(sent, m.sent)
	return sent
}
