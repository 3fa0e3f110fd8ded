package fantasiad

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/mdouchement/logger"
	"github.com/thoukydides/fantasiad/fantasia"
)

var ErrUnknownFan = errors.New("unknown fan")

// ErrMissingField is returned when a request body leaves out a required field.
type ErrMissingField struct {
	Name string
}

func (e ErrMissingField) Error() string {
	return fmt.Sprintf("missing field %q", e.Name)
}

// A Controller exposes a set of fans over an HTTP API served on a unix socket.
type Controller struct {
	devices  map[string]*Device
	events   chan event
	done     chan struct{}
	listener net.Listener
}

func New(cfg Config, devices ...*Device) (*Controller, error) {
	c := &Controller{
		devices: make(map[string]*Device, len(devices)),
		events:  make(chan event, 10),
		done:    make(chan struct{}),
	}

	for _, d := range devices {
		c.devices[d.ID()] = d
		d.OnChange(c.refresh)
	}

	err := os.MkdirAll(filepath.Dir(cfg.Socket), 0o755)
	if err != nil {
		return nil, fmt.Errorf("socket: %w", err)
	}

	if _, err := os.Stat(cfg.Socket); err == nil {
		fmt.Printf("Removing existing %s\n", cfg.Socket)
		os.Remove(cfg.Socket)
	}
	c.listener, err = net.Listen("unix", cfg.Socket)
	if err != nil {
		return nil, fmt.Errorf("socket: %w", err)
	}

	return c, nil
}

// Launch serves the API until ctx is cancelled.
// The returned channel is closed once the server is shut down and the socket removed.
func (c *Controller) Launch(ctx context.Context) <-chan struct{} {
	log := logger.LogWith(ctx)
	stopped := make(chan struct{})

	go c.eventLoop(ctx)

	srv := &http.Server{Handler: c.Handler(log)}
	go func() {
		log.Info("Starting HTTP server on", c.listener.Addr().String())
		err := srv.Serve(c.listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Could not serve HTTP")
		}
	}()

	go func() {
		defer close(stopped)

		<-ctx.Done()
		close(c.done)

		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.WithError(err).Error("Could not shutdown HTTP server")
		}
		if err := os.Remove(c.listener.Addr().String()); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.WithError(err).Errorf("Could not remove socket %s", c.listener.Addr().String())
		}
	}()

	return stopped
}

// Handler returns the HTTP API of the controller.
func (c *Controller) Handler(log logger.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /fans", c.list)
	mux.HandleFunc("POST /fans/{fan}/power", c.power(log))
	mux.HandleFunc("POST /fans/{fan}/speed", c.speed(log))
	mux.HandleFunc("POST /fans/{fan}/press", c.press(log))
	mux.HandleFunc("GET /monitor", c.monitor(log))
	return mux
}

// Statuses returns the status of every fan ordered by identifier.
func (c *Controller) Statuses() []Status {
	statuses := make([]Status, 0, len(c.devices))
	for _, d := range c.devices {
		statuses = append(statuses, d.Status())
	}
	slices.SortFunc(statuses, func(a, b Status) int {
		return strings.Compare(a.ID, b.ID)
	})

	return statuses
}

func (c *Controller) refresh() {
	select {
	case c.events <- event{name: eventRefreshWatchers}:
	case <-c.done:
	default:
		// A refresh is already queued.
	}
}

func (c *Controller) eventLoop(ctx context.Context) {
	log := logger.LogWith(ctx)
	watchers := map[string]chan<- []byte{}

	for {
		var e event
		select {
		case e = <-c.events:
		case <-c.done:
			for _, watcher := range watchers {
				close(watcher)
			}
			return
		}

		switch e.name {
		case eventRefreshWatchers:
			payload, err := json.Marshal(c.Statuses())
			if err != nil {
				log.WithError(err).Error("Could not serialize statuses") // Should never happen
				continue
			}

			for id, watcher := range watchers {
				select {
				case watcher <- payload:
				default:
					log.Warnf("Monitor %s is lagging, dropping update", id)
				}
			}
		case eventWatch:
			watchers[e.monitorID] = e.monitor
			c.refresh()
		case eventUnwatch:
			if watcher, ok := watchers[e.monitorID]; ok {
				close(watcher)
				delete(watchers, e.monitorID)
			}
		}
	}
}

func (c *Controller) device(r *http.Request) (*Device, error) {
	d, ok := c.devices[r.PathValue("fan")]
	if !ok {
		return nil, fmt.Errorf("%s: %w", r.PathValue("fan"), ErrUnknownFan)
	}
	return d, nil
}

func (c *Controller) list(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, c.Statuses())
}

type (
	PowerRequest struct {
		On *bool `json:"on"`
	}

	SpeedRequest struct {
		Speed *float64 `json:"speed"`
	}

	PressRequest struct {
		Button *fantasia.Button `json:"button"`
	}

	Reply struct {
		Status  string `json:"status"`
		Message string `json:"message,omitempty"`
	}
)

func (c *Controller) power(log logger.Logger) http.HandlerFunc {
	return c.command(log, func(d *Device, r *http.Request) (<-chan error, error) {
		var req PowerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, err
		}
		if req.On == nil {
			return nil, ErrMissingField{Name: "on"}
		}
		return d.SetPower(*req.On), nil
	})
}

func (c *Controller) speed(log logger.Logger) http.HandlerFunc {
	return c.command(log, func(d *Device, r *http.Request) (<-chan error, error) {
		var req SpeedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, err
		}
		if req.Speed == nil {
			return nil, ErrMissingField{Name: "speed"}
		}
		return d.SetSpeed(*req.Speed), nil
	})
}

func (c *Controller) press(log logger.Logger) http.HandlerFunc {
	return c.command(log, func(d *Device, r *http.Request) (<-chan error, error) {
		var req PressRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, err
		}
		if req.Button == nil {
			return nil, ErrMissingField{Name: "button"}
		}

		ch := make(chan error, 1)
		ch <- d.Press(r.Context(), *req.Button)
		return ch, nil
	})
}

func (c *Controller) command(log logger.Logger, fn func(d *Device, r *http.Request) (<-chan error, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := c.device(r)
		if err != nil {
			writeJSON(w, http.StatusNotFound, Reply{Status: "error", Message: err.Error()})
			return
		}

		ch, err := fn(d, r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, Reply{Status: "error", Message: err.Error()})
			return
		}

		select {
		case err = <-ch:
		case <-r.Context().Done():
			// The update still happens, the client just stopped waiting.
			log.Debugf("Client left before %s completed", r.URL.Path)
			return
		}

		if err != nil {
			writeJSON(w, http.StatusBadGateway, Reply{Status: "error", Message: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, Reply{Status: "success"})
	}
}

func (c *Controller) monitor(log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Client connected")

		// Set http headers required for SSE.
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		disconnected := r.Context().Done()

		id := genID()
		ch := make(chan []byte, 20)
		select {
		case c.events <- event{name: eventWatch, monitorID: id, monitor: ch}:
		case <-c.done:
			return
		}

		defer func() {
			select {
			case c.events <- event{name: eventUnwatch, monitorID: id}:
			case <-c.done:
			}
		}()

		rc := http.NewResponseController(w)
		for {
			select {
			case <-disconnected:
				log.Info("Client disconnected")
				return
			case payload, ok := <-ch:
				if !ok {
					return
				}

				if err := WriteSSE(w, payload); err != nil {
					log.WithError(err).Error("Could not write monitor SSE payload")
					return
				}

				if err := rc.Flush(); err != nil {
					log.WithError(err).Error("Could not flush monitor SSE payload")
					return
				}
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
