package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"

	"github.com/oxalis-games/tictactoe/internal/apperror"
	"github.com/oxalis-games/tictactoe/internal/entity"
	"github.com/oxalis-games/tictactoe/internal/session"
)

const (
	sendBufferSize = 16
	writeWait      = 10 * time.Second
)

// client runs one socket connection against one session. All writes go
// through a single send channel because a gorilla connection allows only
// one concurrent writer.
type client struct {
	logger   *slog.Logger
	conn     *websocket.Conn
	sess     *session.Session
	validate *validator.Validate

	send     chan Message
	done     chan struct{}
	handlers map[string]func(*Message)
}

func newClient(logger *slog.Logger, conn *websocket.Conn, sess *session.Session, validate *validator.Validate) *client {
	that := &client{
		logger:   logger.With("component", "ws_client", "session", sess.ID()),
		conn:     conn,
		sess:     sess,
		validate: validate,

		send:     make(chan Message, sendBufferSize),
		done:     make(chan struct{}),
		handlers: make(map[string]func(*Message)),
	}

	that.handlers[ActionJoin] = that.handleJoin
	that.handlers[ActionMove] = that.handleMove
	that.handlers[ActionMode] = that.handleMode
	that.handlers[ActionMark] = that.handleMark
	that.handlers[ActionReset] = that.handleReset
	that.handlers[ActionSwap] = that.handleSwap

	return that
}

// run blocks until the client disconnects. Shutdown order matters: the read
// loop exits first, then the event forwarder, and only then is the send
// channel closed, so nothing ever sends on a closed channel.
func (that *client) run() {
	events, unsubscribe := that.sess.Subscribe()

	var writers sync.WaitGroup

	writers.Add(1)
	go func() {
		defer writers.Done()
		that.forward(events)
	}()

	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		that.writePump()
	}()

	// The client renders from this snapshot and learns its session id.
	that.pushState("", that.sess.Snapshot())

	that.readLoop()

	close(that.done)
	unsubscribe()
	writers.Wait()

	close(that.send)
	<-pumpDone

	that.conn.Close()
}

func (that *client) readLoop() {
	log := that.logger.With("method", "readLoop")

	for {
		_, raw, err := that.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("connection closed unexpectedly", "error", err)
			}

			return
		}

		var message Message
		if err = json.Unmarshal(raw, &message); err != nil {
			that.reject("error", apperror.ErrInvalidPayload)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			that.reject(message.Action, apperror.ErrUnknownAction)
			continue
		}

		handler(&message)
	}
}

// writePump is the only writer on the connection. After a write failure it
// closes the connection to wake the read loop and keeps draining the send
// channel so no sender ever blocks.
func (that *client) writePump() {
	log := that.logger.With("method", "writePump")

	broken := false
	for message := range that.send {
		if broken {
			continue
		}

		if err := that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			log.Warn("failed to set write deadline", "error", err)
		}

		if err := that.conn.WriteJSON(message); err != nil {
			log.Warn("failed to write message", "error", err)
			broken = true

			that.conn.Close()
		}
	}
}

// forward turns session events into state pushes.
func (that *client) forward(events <-chan session.Event) {
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}

			that.pushState(string(event.Kind), event.State)
		case <-that.done:
			return
		}
	}
}

func (that *client) handleJoin(message *Message) {
	that.ack(message.Action, true)
	that.pushState("", that.sess.Snapshot())
}

func (that *client) handleMove(message *Message) {
	var payload MovePayload
	if !that.bindPayload(message, &payload) {
		return
	}

	that.ack(message.Action, that.sess.RequestMove(*payload.Cell))
}

func (that *client) handleMode(message *Message) {
	var payload ModePayload
	if !that.bindPayload(message, &payload) {
		return
	}

	that.ack(message.Action, that.sess.SetMode(payload.Mode))
}

func (that *client) handleMark(message *Message) {
	var payload MarkPayload
	if !that.bindPayload(message, &payload) {
		return
	}

	that.ack(message.Action, that.sess.SetComputerMark(payload.Mark))
}

func (that *client) handleReset(message *Message) {
	that.sess.Reset()
	that.ack(message.Action, true)
}

func (that *client) handleSwap(message *Message) {
	that.sess.RestartAndSwap()
	that.ack(message.Action, true)
}

// bindPayload unmarshals and validates a request payload. A payload that
// cannot be read is answered with a rejection carrying the reason.
func (that *client) bindPayload(message *Message, out any) bool {
	if err := json.Unmarshal(message.Payload, out); err != nil {
		that.reject(message.Action, apperror.ErrInvalidPayload)
		return false
	}

	if err := that.validate.Struct(out); err != nil {
		that.reject(message.Action, apperror.ErrInvalidPayload)
		return false
	}

	return true
}

func (that *client) ack(action string, accepted bool) {
	that.send <- Message{
		Action:  action,
		Payload: mustMarshal(AckPayload{Accepted: accepted}),
	}
}

func (that *client) reject(action string, reason error) {
	that.send <- Message{
		Action:  action,
		Payload: mustMarshal(AckPayload{Accepted: false, Error: reason.Error()}),
	}
}

func (that *client) pushState(event string, state entity.SessionState) {
	that.send <- Message{
		Action:  ActionState,
		Payload: mustMarshal(StatePayload{Event: event, State: state}),
	}
}

func mustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}

	return b
}
