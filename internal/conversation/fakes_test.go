package conversation

import (
	"context"
	"errors"
	"sync"
)

type sentMessage struct {
	Op        string
	To        string
	Body      string
	ReplyTo   string
	Buttons   []Button
	Media     Media
	Contact   Contact
	MessageID string
}

type recordingGateway struct {
	mu   sync.Mutex
	sent []sentMessage
	fail map[string]error
}

func newRecordingGateway() *recordingGateway {
	return &recordingGateway{fail: map[string]error{}}
}

func (g *recordingGateway) record(msg sentMessage) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, msg)
	return g.fail[msg.Op]
}

func (g *recordingGateway) SendText(_ context.Context, to, body, replyTo string) error {
	return g.record(sentMessage{Op: OpSendText, To: to, Body: body, ReplyTo: replyTo})
}

func (g *recordingGateway) SendButtons(_ context.Context, to, body string, buttons []Button) error {
	return g.record(sentMessage{Op: OpSendButtons, To: to, Body: body, Buttons: buttons})
}

func (g *recordingGateway) SendMedia(_ context.Context, to string, media Media) error {
	return g.record(sentMessage{Op: OpSendMedia, To: to, Media: media})
}

func (g *recordingGateway) SendContactCard(_ context.Context, to string, contact Contact) error {
	return g.record(sentMessage{Op: OpSendContact, To: to, Contact: contact})
}

func (g *recordingGateway) MarkRead(_ context.Context, messageID string) error {
	return g.record(sentMessage{Op: OpMarkRead, MessageID: messageID})
}

func (g *recordingGateway) messages() []sentMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]sentMessage, len(g.sent))
	copy(out, g.sent)
	return out
}

func (g *recordingGateway) reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = nil
}

func (g *recordingGateway) count(op string) int {
	n := 0
	for _, msg := range g.messages() {
		if msg.Op == op {
			n++
		}
	}
	return n
}

func (g *recordingGateway) texts() []string {
	var out []string
	for _, msg := range g.messages() {
		if msg.Op == OpSendText {
			out = append(out, msg.Body)
		}
	}
	return out
}

type scriptedAssistant struct {
	mu        sync.Mutex
	answer    string
	err       error
	questions []string
}

func (a *scriptedAssistant) Ask(_ context.Context, question string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.questions = append(a.questions, question)
	return a.answer, a.err
}

type recordingLedger struct {
	mu   sync.Mutex
	rows [][]string
	err  error
}

func (l *recordingLedger) AppendRow(_ context.Context, row []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows = append(l.rows, append([]string(nil), row...))
	return l.err
}

type observation struct {
	op  string
	err error
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []observation
}

func (o *recordingObserver) ObserveDelivery(op string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, observation{op: op, err: err})
}

func (o *recordingObserver) failures(op string) []error {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []error
	for _, c := range o.calls {
		if c.op == op && c.err != nil {
			out = append(out, c.err)
		}
	}
	return out
}

var errGatewayDown = errors.New("gateway down")

type engineFixture struct {
	engine    *Engine
	gateway   *recordingGateway
	assistant *scriptedAssistant
	ledger    *recordingLedger
	observer  *recordingObserver
	sessions  *MemorySessionStore
}

func newEngineFixture() *engineFixture {
	f := &engineFixture{
		gateway:   newRecordingGateway(),
		assistant: &scriptedAssistant{answer: "Dale agua fresca."},
		ledger:    &recordingLedger{},
		observer:  &recordingObserver{},
		sessions:  NewMemorySessionStore(0),
	}
	f.engine = NewEngine(EngineConfig{
		Gateway:   f.gateway,
		Assistant: f.assistant,
		Ledger:    f.ledger,
		Sessions:  f.sessions,
		Observer:  f.observer,
	})
	return f
}

func (f *engineFixture) text(from, id, body string) {
	f.engine.Handle(context.Background(), TextEvent{From: from, ID: id, Body: body}, Profile{ID: from})
}

func (f *engineFixture) choose(from, id string, choice ButtonChoice) {
	f.engine.Handle(context.Background(), InteractiveEvent{From: from, ID: id, Selected: choice}, Profile{ID: from})
}
