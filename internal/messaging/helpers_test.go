package messaging_test

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
)

type clickEvent struct {
	Code     string `json:"code"`
	ClientID string `json:"client_id,omitempty"`
}

// stubSubscriber hands out a single buffered channel the test writes into.
type stubSubscriber struct {
	inbox         chan *message.Message
	failSubscribe error

	once   sync.Once
	closed bool
}

func newStubSubscriber() *stubSubscriber {
	return &stubSubscriber{inbox: make(chan *message.Message, 10)}
}

func (s *stubSubscriber) Subscribe(context.Context, string) (<-chan *message.Message, error) {
	if s.failSubscribe != nil {
		return nil, s.failSubscribe
	}

	return s.inbox, nil
}

func (s *stubSubscriber) Close() error {
	s.once.Do(func() {
		s.closed = true
		close(s.inbox)
	})

	return nil
}

type recordingPublisher struct {
	lastTopic  string
	sent       []*message.Message
	publishErr error
	closeErr   error
}

func (p *recordingPublisher) Publish(topic string, msgs ...*message.Message) error {
	if p.publishErr != nil {
		return p.publishErr
	}

	p.lastTopic = topic
	p.sent = append(p.sent, msgs...)

	return nil
}

func (p *recordingPublisher) Close() error {
	return p.closeErr
}

type fakeRunnable struct {
	started     bool
	shutdowns   int
	startErr    error
	shutdownErr error
}

func (f *fakeRunnable) Start(context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}

	f.started = true

	return nil
}

func (f *fakeRunnable) Shutdown() error {
	f.shutdowns++

	return f.shutdownErr
}
