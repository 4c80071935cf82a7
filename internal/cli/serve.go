package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/layoutfile"
	"github.com/matzehuels/tilegrid/pkg/observability"
	"github.com/matzehuels/tilegrid/pkg/render/boxes"
)

// serveCommand exposes a live layout over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		lo            layoutOpts
		addr          string
		width, height float64
	)

	cmd := &cobra.Command{
		Use:   "serve [layout]",
		Short: "Serve a layout over HTTP with drag endpoints and Prometheus metrics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hooks := observability.NewPrometheusHooks()
			observability.SetCommitHooks(hooks)
			observability.SetResizeHooks(hooks)
			defer observability.Reset()

			sched := &grid.ManualScheduler{}
			tree, err := c.loadTree(args[0], lo, sched)
			if err != nil {
				return err
			}
			s := newServer(tree, sched, grid.Box{Width: width, Height: height}, c.Logger)
			return s.listen(cmd.Context(), addr, hooks.Handler())
		},
	}

	lo.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().Float64Var(&width, "width", defaultWidth, "frame width for pixel drags and SVG")
	cmd.Flags().Float64Var(&height, "height", defaultHeight, "frame height for pixel drags and SVG")

	return cmd
}

// =============================================================================
// Server
// =============================================================================

// server serializes all access to one tree. Commits flush through a manual
// scheduler drained at the end of each mutating request, so a response
// always reflects a settled layout.
type server struct {
	mu       sync.Mutex
	tree     *grid.Tree
	sched    *grid.ManualScheduler
	layout   *boxes.Layout
	drags    map[string]*grid.DragSession
	revision int
	logger   *log.Logger
}

func newServer(tree *grid.Tree, sched *grid.ManualScheduler, frame grid.Box, logger *log.Logger) *server {
	return &server{
		tree:   tree,
		sched:  sched,
		layout: boxes.Attach(tree, frame, false),
		drags:  make(map[string]*grid.DragSession),
		logger: logger,
	}
}

func (s *server) routes(metrics http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if metrics != nil {
		r.Handle("/metrics", metrics)
	}

	r.Get("/layout", s.getLayout)
	r.Get("/layout.svg", s.getSVG)

	r.Route("/nodes", func(r chi.Router) {
		r.Get("/", s.listNodes)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getNode)
			r.Patch("/", s.patchNode)
			r.Delete("/", s.removeNode)
			r.Get("/edges", s.getEdges)
			r.Post("/children", s.pushChild)
		})
	})

	r.Post("/resize", s.resize)
	r.Route("/drags", func(r chi.Router) {
		r.Post("/", s.beginDrag)
		r.Post("/{session}/move", s.moveDrag)
		r.Delete("/{session}", s.endDrag)
	})

	return r
}

func (s *server) listen(ctx context.Context, addr string, metrics http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(metrics),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	printSuccess("Serving %s on %s", s.tree.Instance(), addr)
	printDetail("GET /layout, GET /nodes/{id}/edges, POST /resize, GET /metrics")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// logRequests attaches a request-scoped logger and logs each response.
func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		l := s.logger.With("req", middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(withLogger(r.Context(), l)))
		l.Debug("request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "took", time.Since(start))
	})
}

// settle flushes pending commits and re-arranges boxes. Callers hold mu.
func (s *server) settle(commit *grid.Commit) {
	if commit != nil && commit.Dirty() {
		s.revision++
	}
	s.sched.Run()
	s.layout.Arrange()
}

// =============================================================================
// Views
// =============================================================================

type nodeView struct {
	ID          string           `json:"id"`
	Kind        string           `json:"kind"`
	Weight      float64          `json:"weight"`
	Parent      string           `json:"parent,omitempty"`
	Depth       int              `json:"depth"`
	Direction   grid.Direction   `json:"direction,omitempty"`
	ComponentID string           `json:"component_id,omitempty"`
	Title       string           `json:"title,omitempty"`
	Children    []string         `json:"children,omitempty"`
	ActiveTab   *int             `json:"active_tab,omitempty"`
	Constraints grid.Constraints `json:"constraints"`
	Box         *grid.Box        `json:"box,omitempty"`
}

func (s *server) viewNode(c grid.Child) nodeView {
	v := nodeView{
		ID:          c.ID(),
		Kind:        c.Kind().String(),
		Weight:      c.Weight(),
		Depth:       s.tree.Depth(c),
		Title:       c.Title(),
		Constraints: s.tree.Constraints(c),
	}
	if p := s.tree.Parent(c); p != nil {
		v.Parent = p.ID()
	}
	if b, ok := s.layout.Box(c.ID()); ok {
		v.Box = &b
	}
	switch n := c.(type) {
	case *grid.Grid:
		v.Direction = n.Direction()
		for _, ch := range n.Children() {
			v.Children = append(v.Children, ch.ID())
		}
	case *grid.Tile:
		v.ComponentID = n.ComponentID()
		if tabs := n.Tabs(); len(tabs) > 0 {
			for _, tab := range tabs {
				v.Children = append(v.Children, tab.ID())
			}
			active := n.ActiveTab()
			v.ActiveTab = &active
		}
	}
	return v
}

type edgeView struct {
	Side          grid.Side `json:"side"`
	Resizable     bool      `json:"resizable"`
	Axis          grid.Axis `json:"axis"`
	Child         string    `json:"child,omitempty"`
	Neighbor      string    `json:"neighbor,omitempty"`
	Parent        string    `json:"parent,omitempty"`
	ChildIndex    int       `json:"child_index"`
	NeighborIndex int       `json:"neighbor_index"`
}

func viewEdge(e *grid.Edge) edgeView {
	v := edgeView{
		Side:          e.Side,
		Resizable:     e.Resizable,
		Axis:          e.Axis,
		ChildIndex:    e.ChildIndex,
		NeighborIndex: e.NeighborIndex,
	}
	if e.Neighbor != nil {
		v.Child, v.Neighbor, v.Parent = e.Child.ID(), e.Neighbor.ID(), e.Parent.ID()
	}
	return v
}

type dragView struct {
	Session  string     `json:"session"`
	Steps    int        `json:"steps"`
	Edge     edgeView   `json:"edge"`
	Siblings []nodeView `json:"siblings"`
	Revision int        `json:"revision"`
}

func (s *server) viewDrag(d *grid.DragSession) dragView {
	v := dragView{Session: d.ID, Steps: d.Steps(), Edge: viewEdge(d.Edge()), Revision: s.revision}
	for _, ch := range d.Edge().Parent.Children() {
		v.Siblings = append(v.Siblings, s.viewNode(ch))
	}
	return v
}

// =============================================================================
// Handlers
// =============================================================================

func (s *server) getLayout(w http.ResponseWriter, r *http.Request) {
	format := layoutfile.JSON
	if q := r.URL.Query().Get("format"); q != "" {
		f, err := layoutfile.ParseFormat(q)
		if err != nil {
			writeError(w, r, err)
			return
		}
		format = f
	}

	s.mu.Lock()
	desc := s.tree.Describe()
	rev := s.revision
	s.mu.Unlock()

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Layout-Revision", strconv.Itoa(rev))
	if err := layoutfile.WriteDescription(w, format, desc); err != nil {
		loggerFromContext(r.Context()).Error("write layout", "err", err)
	}
}

var contentTypes = map[layoutfile.Format]string{
	layoutfile.JSON: "application/json",
	layoutfile.TOML: "application/toml",
	layoutfile.YAML: "application/yaml",
}

func (s *server) getSVG(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	svg := boxes.RenderSVG(s.tree, s.layout.Boxes(), boxes.Options{Handles: true, Weights: true})
	s.mu.Unlock()

	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

func (s *server) listNodes(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []nodeView
	s.tree.Walk(func(c grid.Child, _ int) bool {
		out = append(out, s.viewNode(c))
		return true
	})
	writeJSON(w, http.StatusOK, out)
}

func (s *server) getNode(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := findNode(s.tree, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.viewNode(n))
}

func (s *server) getEdges(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := findNode(s.tree, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	edges := s.tree.Edges(n)
	out := make(map[grid.Side]edgeView, len(grid.Sides))
	for _, side := range grid.Sides {
		out[side] = viewEdge(edges.Side(side))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) patchNode(w http.ResponseWriter, r *http.Request) {
	var p grid.Patch
	if !decodeBody(w, r, &p) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := findNode(s.tree, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	commit, err := s.tree.SetState(n, p, nil)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.settle(commit)
	writeJSON(w, http.StatusOK, s.viewNode(n))
}

func (s *server) pushChild(w http.ResponseWriter, r *http.Request) {
	var desc grid.Description
	if !decodeBody(w, r, &desc) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	parent, err := findNode(s.tree, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	child, commit, err := s.tree.PushChild(parent, desc, nil)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.settle(commit)
	writeJSON(w, http.StatusCreated, s.viewNode(child))
}

func (s *server) removeNode(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := findNode(s.tree, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	commit, err := s.tree.Detach(n, nil)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.settle(commit)
	w.WriteHeader(http.StatusNoContent)
}

type resizeRequest struct {
	Node   string      `json:"node"`
	Side   grid.Side   `json:"side"`
	Region grid.Region `json:"region,omitempty"`
	Amount float64     `json:"amount,omitempty"`
	Px     float64     `json:"px,omitempty"`
}

// resize applies a single-step drag: begin, one move, end.
func (s *server) resize(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.begin(req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.step(d, req); err != nil {
		writeError(w, r, err)
		return
	}
	d.End()
	s.settle(d.Commit())
	writeJSON(w, http.StatusOK, s.viewDrag(d))
}

func (s *server) beginDrag(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.begin(req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.drags[d.ID] = d
	loggerFromContext(r.Context()).Debug("drag opened", "session", d.ID, "req", req)
	writeJSON(w, http.StatusCreated, s.viewDrag(d))
}

func (s *server) moveDrag(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drags[chi.URLParam(r, "session")]
	if !ok {
		writeError(w, r, errs.New(errs.ErrCodeNotFound, "no drag session %q", chi.URLParam(r, "session")))
		return
	}
	if err := s.step(d, req); err != nil {
		writeError(w, r, err)
		return
	}
	// Flush so observers and boxes follow the pointer.
	s.settle(d.Commit())
	writeJSON(w, http.StatusOK, s.viewDrag(d))
}

func (s *server) endDrag(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := chi.URLParam(r, "session")
	d, ok := s.drags[id]
	if !ok {
		writeError(w, r, errs.New(errs.ErrCodeNotFound, "no drag session %q", id))
		return
	}
	delete(s.drags, id)
	d.End()
	s.settle(d.Commit())
	writeJSON(w, http.StatusOK, s.viewDrag(d))
}

func (s *server) begin(req resizeRequest) (*grid.DragSession, error) {
	n, err := findNode(s.tree, req.Node)
	if err != nil {
		return nil, err
	}
	side, err := parseSide(string(req.Side))
	if err != nil {
		return nil, err
	}
	return s.tree.BeginDrag(n, side)
}

// step applies px when given, otherwise amount against region (default
// neighbor).
func (s *server) step(d *grid.DragSession, req resizeRequest) error {
	if req.Px != 0 {
		_, err := d.Move(req.Px)
		return err
	}
	region := req.Region
	if region == "" {
		region = grid.RegionNeighbor
	}
	if region != grid.RegionChild && region != grid.RegionNeighbor {
		return errs.New(errs.ErrCodeInvalidInput, "invalid region %q", region)
	}
	_, err := d.Resize(region, req.Amount)
	return err
}

// =============================================================================
// Encoding
// =============================================================================

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode request body"))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		loggerFromContext(r.Context()).Error("request failed", "err", err)
	}
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	writeJSON(w, status, errorBody{Code: code, Message: errs.UserMessage(err)})
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	switch errs.GetCode(err) {
	case errs.ErrCodeNotFound, errs.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidDescription, errs.ErrCodeInvalidDirection,
		errs.ErrCodeInvalidSide, errs.ErrCodeInvalidStyle, errs.ErrCodeInvalidFormat, errs.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errs.ErrCodeDuplicateID, errs.ErrCodeDetachedNode, errs.ErrCodeNotResizable:
		return http.StatusConflict
	case errs.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func (r resizeRequest) String() string {
	return fmt.Sprintf("%s %s %s %g/%gpx", r.Node, r.Side, r.Region, r.Amount, r.Px)
}
