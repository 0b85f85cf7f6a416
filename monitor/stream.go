package monitor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"
)

const (
	writeWait      = 1 * time.Second
	pubResolution  = 250 * time.Millisecond
	pingResolution = 500 * time.Millisecond
	pongWait       = pingResolution * 4
	readDeadline   = time.Second
	writeDeadline  = time.Second
	closeGracePeriod = 2 * time.Second
)

var upgrader = websocket.Upgrader{}

// ErrPongDeadlineExceeded is returned by reportStream.sync when the
// browser client stops answering pings.
var ErrPongDeadlineExceeded = errors.New("monitor client disconnected: pong deadline exceeded")

// reportStream publishes BlockReport snapshots to a single connected
// browser client over a websocket. Kept generic-free since monitor has
// exactly one update type to stream.
type reportStream struct {
	updates <-chan BlockReport
	ws      *guardedSocket
	ctx     context.Context
}

// newReportStream upgrades the HTTP request to a websocket and wraps it
// for serialized reads/writes.
func newReportStream(w http.ResponseWriter, r *http.Request, updates <-chan BlockReport) (*reportStream, error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, err
	}
	return &reportStream{
		updates: updates,
		ws:      newGuardedSocket(ws),
		ctx:     r.Context(),
	}, nil
}

// sync runs the read pump (required so ping/pong control frames are
// processed), the ping/pong liveness check, and the throttled publish
// loop as three goroutines supervised by an errgroup, cancelling
// together on the first error.
func (rs *reportStream) sync() error {
	group, groupCtx := errgroup.WithContext(rs.ctx)

	group.Go(func() error { return rs.readMessages(groupCtx) })
	group.Go(func() error { return rs.pingPong(groupCtx) })
	group.Go(func() error { return rs.publish(groupCtx) })

	return group.Wait()
}

func (rs *reportStream) readMessages(ctx context.Context) error {
	for {
		err := rs.ws.Read(ctx, func(ws *websocket.Conn) (readErr error) {
			_, _, readErr = ws.ReadMessage()
			return
		})
		if err != nil {
			return err
		}
	}
}

func (rs *reportStream) pingPong(ctx context.Context) error {
	pong := make(chan struct{})
	defer close(pong)
	rs.ws.Conn().SetPongHandler(func(_ string) error {
		pong <- struct{}{}
		return nil
	})

	pinger := channerics.NewTicker(ctx.Done(), pingResolution)
	lastPong := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pinger:
			if time.Since(lastPong) > pongWait {
				return ErrPongDeadlineExceeded
			}
			if err := rs.ping(ctx); err != nil {
				return err
			}
		case <-pong:
			lastPong = time.Now()
		}
	}
}

func (rs *reportStream) ping(ctx context.Context) error {
	return rs.ws.Write(ctx, func(ws *websocket.Conn) error {
		return ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
	})
}

func (rs *reportStream) publish(ctx context.Context) error {
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case r, ok := <-rs.updates:
			if !ok {
				return nil
			}
			if time.Since(last) < pubResolution {
				break
			}
			last = time.Now()
			err := rs.ws.Write(ctx, func(ws *websocket.Conn) error {
				if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
					return fmt.Errorf("set write deadline: %w", err)
				}
				return ws.WriteJSON(r)
			})
			if err != nil {
				return err
			}
		}
	}
}

// guardedSocket serializes reads and writes to a single websocket
// connection, since gorilla/websocket permits at most one concurrent
// reader and one concurrent writer.
type guardedSocket struct {
	readSem  chan struct{}
	writeSem chan struct{}
	ws       *websocket.Conn
}

func newGuardedSocket(ws *websocket.Conn) *guardedSocket {
	return &guardedSocket{
		readSem:  make(chan struct{}, 1),
		writeSem: make(chan struct{}, 1),
		ws:       ws,
	}
}

func (s *guardedSocket) Conn() *websocket.Conn { return s.ws }

func (s *guardedSocket) Close() {
	s.readSem <- struct{}{}
	s.writeSem <- struct{}{}
	_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = s.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	time.Sleep(closeGracePeriod)
	s.ws.Close()
}

func (s *guardedSocket) Read(ctx context.Context, fn func(*websocket.Conn) error) error {
	select {
	case <-ctx.Done():
		return nil
	case s.readSem <- struct{}{}:
		defer func() { <-s.readSem }()
		return fn(s.ws)
	case <-time.After(readDeadline):
		return errSockCongestion
	}
}

func (s *guardedSocket) Write(ctx context.Context, fn func(*websocket.Conn) error) error {
	select {
	case <-ctx.Done():
		return nil
	case s.writeSem <- struct{}{}:
		defer func() { <-s.writeSem }()
		return fn(s.ws)
	case <-time.After(writeDeadline):
		return errSockCongestion
	}
}

var errSockCongestion = errors.New("monitor: too many waiters on websocket")
