package impulse

import (
	"errors"
	"math"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/gekko3d/impulse/physics"
)

// Control message types accepted from stream clients.
const (
	ControlPause    = "pause"
	ControlResume   = "resume"
	ControlStep     = "step"
	ControlSeek     = "seek"
	ControlScenario = "scenario"
	ControlStop     = "stop"
)

const controlQueueSize = 64

type HelloMessage struct {
	Type      string   `json:"type"`
	Session   string   `json:"session"`
	Scenarios []string `json:"scenarios"`
}

type ControlMessage struct {
	Type     string `json:"type"`
	Frame    int    `json:"frame,omitempty"`
	Scenario string `json:"scenario,omitempty"`
}

type BodyState struct {
	Index       int     `json:"index"`
	Shape       string  `json:"shape"`
	Static      bool    `json:"static"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Angle       float64 `json:"angle"`
	VX          float64 `json:"vx"`
	VY          float64 `json:"vy"`
	Omega       float64 `json:"omega"`
	Radius      float64 `json:"radius,omitempty"`
	Length      float64 `json:"length,omitempty"`
	NormalAngle float64 `json:"normal_angle,omitempty"`
}

type ContactState struct {
	IdA        int     `json:"a"`
	IdB        int     `json:"b"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	NX         float64 `json:"nx"`
	NY         float64 `json:"ny"`
	Separation float64 `json:"separation"`
}

// FrameMessage is one engine state as sent to stream clients.
type FrameMessage struct {
	Type          string         `json:"type"`
	Session       string         `json:"session"`
	Scenario      string         `json:"scenario"`
	Step          int            `json:"step"`
	Time          float64        `json:"time"`
	Paused        bool           `json:"paused"`
	KineticEnergy float64        `json:"kinetic_energy"`
	Bodies        []BodyState    `json:"bodies"`
	Contacts      []ContactState `json:"contacts"`
}

// finite replaces NaN and infinities, which encoding/json refuses.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func NewFrameMessage(world *PhysicsWorld) FrameMessage {
	msg := FrameMessage{
		Type:     "frame",
		Scenario: world.ScenarioName(),
		Step:     world.Steps,
		Time:     world.Time,
	}
	e := world.Engine
	if e == nil {
		return msg
	}
	msg.KineticEnergy = finite(e.KineticEnergy())

	msg.Bodies = make([]BodyState, len(e.Bodies))
	for i := range e.Bodies {
		b := &e.Bodies[i]
		msg.Bodies[i] = BodyState{
			Index:       i,
			Shape:       b.Shape.Kind.String(),
			Static:      b.IsStatic(),
			X:           finite(b.Pos.X()),
			Y:           finite(b.Pos.Y()),
			Angle:       finite(b.Angle),
			VX:          finite(b.Vel.X()),
			VY:          finite(b.Vel.Y()),
			Omega:       finite(b.Omega),
			Radius:      b.Shape.Radius,
			Length:      b.Shape.Length,
			NormalAngle: b.Shape.NormalAngle,
		}
	}

	for _, c := range e.DetectCollisions() {
		msg.Contacts = append(msg.Contacts, contactState(c))
	}
	return msg
}

func contactState(c physics.Constraint) ContactState {
	return ContactState{
		IdA:        c.IdA,
		IdB:        c.IdB,
		X:          finite(c.Contact.Pos.X()),
		Y:          finite(c.Contact.Pos.Y()),
		NX:         finite(c.Contact.Normal.X()),
		NY:         finite(c.Contact.Normal.Y()),
		Separation: finite(c.Contact.Separation),
	}
}

// SafeWriter serialises writes to one websocket connection.
type SafeWriter struct {
	conn  *websocket.Conn
	mutex sync.Mutex
}

func NewSafeWriter(conn *websocket.Conn) *SafeWriter {
	return &SafeWriter{conn: conn}
}

func (w *SafeWriter) WriteJSON(v any) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.conn.WriteJSON(v)
}

func (w *SafeWriter) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.conn.Close()
}

// StreamHub fans frames out to websocket clients and queues their control messages
// for the app thread.
type StreamHub struct {
	Session   uuid.UUID
	Scenarios []string

	upgrader  websocket.Upgrader
	clients   map[*SafeWriter]struct{}
	clientsMu sync.Mutex
	controls  chan ControlMessage
	logger    Logger
	server    *http.Server

	lastRevision int
}

func NewStreamHub(logger Logger) *StreamHub {
	if logger == nil {
		logger = NewNopLogger()
	}
	logger = logger.Component("stream")
	return &StreamHub{
		Session: uuid.New(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients:      make(map[*SafeWriter]struct{}),
		controls:     make(chan ControlMessage, controlQueueSize),
		logger:       logger,
		lastRevision: -1,
	}
}

func (h *StreamHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnf("stream upgrade from %s: %v", r.RemoteAddr, err)
		return
	}
	writer := NewSafeWriter(conn)

	h.clientsMu.Lock()
	h.clients[writer] = struct{}{}
	h.clientsMu.Unlock()
	h.logger.Infof("stream client %s connected", r.RemoteAddr)

	defer func() {
		h.remove(writer)
		h.logger.Infof("stream client %s disconnected", r.RemoteAddr)
	}()

	hello := HelloMessage{Type: "hello", Session: h.Session.String(), Scenarios: h.Scenarios}
	if err := writer.WriteJSON(hello); err != nil {
		h.logger.Warnf("stream hello to %s: %v", r.RemoteAddr, err)
		return
	}

	for {
		var msg ControlMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debugf("stream read from %s: %v", r.RemoteAddr, err)
			}
			return
		}
		select {
		case h.controls <- msg:
		default:
			h.logger.Warnf("stream control queue full, dropping %q", msg.Type)
		}
	}
}

func (h *StreamHub) remove(w *SafeWriter) {
	h.clientsMu.Lock()
	_, ok := h.clients[w]
	delete(h.clients, w)
	h.clientsMu.Unlock()
	if ok {
		w.Close()
	}
}

func (h *StreamHub) Clients() int {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	return len(h.clients)
}

// Broadcast writes v to every client and returns how many received it. Clients that
// fail are dropped.
func (h *StreamHub) Broadcast(v any) int {
	h.clientsMu.Lock()
	writers := make([]*SafeWriter, 0, len(h.clients))
	for w := range h.clients {
		writers = append(writers, w)
	}
	h.clientsMu.Unlock()

	sent := 0
	for _, w := range writers {
		if err := w.WriteJSON(v); err != nil {
			h.logger.Warnf("stream write: %v", err)
			h.remove(w)
			continue
		}
		sent++
	}
	return sent
}

// DrainControls returns the queued control messages without blocking.
func (h *StreamHub) DrainControls() []ControlMessage {
	var msgs []ControlMessage
	for {
		select {
		case msg := <-h.controls:
			msgs = append(msgs, msg)
		default:
			return msgs
		}
	}
}

// Listen serves the hub on addr under path in the background.
func (h *StreamHub) Listen(addr, path string) {
	mux := http.NewServeMux()
	mux.Handle(path, h)
	h.server = &http.Server{Addr: addr, Handler: mux}

	go func() {
		h.logger.Infof("streaming frames on ws://%s%s", addr, path)
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Errorf("stream server: %v", err)
		}
	}()
}

// Close stops the listener, if any, and disconnects every client.
func (h *StreamHub) Close() error {
	var err error
	if h.server != nil {
		err = h.server.Close()
	}

	h.clientsMu.Lock()
	writers := h.clients
	h.clients = make(map[*SafeWriter]struct{})
	h.clientsMu.Unlock()
	for w := range writers {
		w.Close()
	}
	return err
}

// StreamModule needs PhysicsModule, ScenarioModule and HistoryModule installed before it.
// With an empty Addr the hub is installed but not served; mount it on any mux instead.
type StreamModule struct {
	Addr string
	Path string
}

func (m StreamModule) Install(app *App, cmd *Commands) {
	hub := NewStreamHub(app.Logger())
	if sel, ok := Resource[ScenarioSelection](app); ok {
		hub.Scenarios = sel.Registry.Names()
	}
	cmd.AddResources(hub)

	if m.Addr != "" {
		path := m.Path
		if path == "" {
			path = "/ws"
		}
		hub.Listen(m.Addr, path)
	}

	app.UseSystem(
		System(StreamControlSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
	app.UseSystem(
		System(StreamBroadcastSystem).
			InStage(Finale).
			RunAlways(),
	)
}

// StreamControlSystem applies the control messages received since the last frame.
func StreamControlSystem(cmd *Commands, hub *StreamHub, sel *ScenarioSelection, world *PhysicsWorld, history *History) {
	for _, msg := range hub.DrainControls() {
		switch msg.Type {
		case ControlPause:
			changeStateIfStateful(cmd, StatePaused)
		case ControlResume:
			changeStateIfStateful(cmd, StateRunning)
		case ControlStep:
			world.RequestStep()
		case ControlSeek:
			if err := history.SeekWorld(world, msg.Frame); err != nil {
				cmd.Logger().Warnf("stream seek: %v", err)
				continue
			}
			changeStateIfStateful(cmd, StatePaused)
		case ControlScenario:
			sel.Select(msg.Scenario)
		case ControlStop:
			if cmd.Stateful() {
				cmd.ChangeState(StateStopped)
			} else {
				cmd.Exit()
			}
		default:
			cmd.Logger().Warnf("stream control %q not understood", msg.Type)
		}
	}
}

func changeStateIfStateful(cmd *Commands, s State) {
	if !cmd.Stateful() {
		cmd.Logger().Warnf("ignoring %v request in a stateless app", s)
		return
	}
	cmd.ChangeState(s)
}

// StreamBroadcastSystem sends the engine state whenever it changed since the last broadcast.
func StreamBroadcastSystem(cmd *Commands, hub *StreamHub, world *PhysicsWorld) {
	if world.Engine == nil || world.Revision == hub.lastRevision || hub.Clients() == 0 {
		return
	}
	msg := NewFrameMessage(world)
	msg.Session = hub.Session.String()
	msg.Paused = cmd.State() == StatePaused
	hub.Broadcast(msg)
	hub.lastRevision = world.Revision
}
