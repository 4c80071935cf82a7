package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/observability"
)

// h [ editor 50, v [ terminal, output ] 50 ]
func testServer(t *testing.T) (*server, *httptest.Server) {
	t.Helper()
	desc := grid.Description{
		Direction: grid.Horizontal,
		Children: []grid.Description{
			{ComponentID: "editor", Weight: 50},
			{Direction: grid.Vertical, Weight: 50, Children: []grid.Description{
				{ComponentID: "terminal"},
				{ComponentID: "output"},
			}},
		},
	}
	sched := &grid.ManualScheduler{}
	tree, err := grid.New(grid.Config{InitialGrid: &desc}, grid.Options{Scheduler: sched})
	if err != nil {
		t.Fatalf("grid.New() error: %v", err)
	}

	hooks := observability.NewPrometheusHooks()
	observability.SetCommitHooks(hooks)
	observability.SetResizeHooks(hooks)
	t.Cleanup(observability.Reset)

	s := newServer(tree, sched, grid.Box{Width: 1000, Height: 500}, log.New(io.Discard))
	ts := httptest.NewServer(s.routes(hooks.Handler()))
	t.Cleanup(ts.Close)
	return s, ts
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestServeHealthz(t *testing.T) {
	_, ts := testServer(t)
	resp := do(t, http.MethodGet, ts.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestServeNodes(t *testing.T) {
	_, ts := testServer(t)

	nodes := decode[[]nodeView](t, do(t, http.MethodGet, ts.URL+"/nodes", ""))
	if len(nodes) != 5 {
		t.Fatalf("len(nodes) = %d, want 5", len(nodes))
	}

	n := decode[nodeView](t, do(t, http.MethodGet, ts.URL+"/nodes/editor", ""))
	if n.Kind != "tile" || n.Weight != 50 || n.Depth != 1 {
		t.Errorf("editor = %+v", n)
	}
	if n.Box == nil || n.Box.Width != 500 {
		t.Errorf("editor box = %+v, want width 500", n.Box)
	}

	resp := do(t, http.MethodGet, ts.URL+"/nodes/missing", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing node status = %d, want 404", resp.StatusCode)
	}
	body := decode[errorBody](t, resp)
	if body.Code != "NOT_FOUND" {
		t.Errorf("error code = %q, want NOT_FOUND", body.Code)
	}
}

func TestServeEdges(t *testing.T) {
	_, ts := testServer(t)
	edges := decode[map[grid.Side]edgeView](t, do(t, http.MethodGet, ts.URL+"/nodes/terminal/edges", ""))

	if e := edges[grid.SideBottom]; !e.Resizable || e.Neighbor == "" {
		t.Errorf("terminal bottom = %+v, want resizable", e)
	}
	if e := edges[grid.SideTop]; e.Resizable {
		t.Errorf("terminal top = %+v, want not resizable", e)
	}
	// Left resolves one level up, against the editor.
	if e := edges[grid.SideLeft]; e.Resizable {
		t.Errorf("terminal left = %+v, want not resizable (neighbor precedes)", e)
	}
}

func TestServeResize(t *testing.T) {
	s, ts := testServer(t)
	resp := do(t, http.MethodPost, ts.URL+"/resize", `{"node":"editor","side":"right","amount":10}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	v := decode[dragView](t, resp)
	if v.Steps != 1 {
		t.Errorf("steps = %d, want 1", v.Steps)
	}
	if got := v.Siblings[0].Weight; got != 60 {
		t.Errorf("editor weight = %g, want 60", got)
	}
	if b, _ := s.layout.Box("editor"); b.Width != 600 {
		t.Errorf("editor box width = %g, want 600 after settle", b.Width)
	}
}

func TestServeResizeErrors(t *testing.T) {
	_, ts := testServer(t)
	tests := []struct {
		name string
		body string
		want int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"bad side", `{"node":"editor","side":"north","amount":1}`, http.StatusBadRequest},
		{"bad region", `{"node":"editor","side":"right","region":"middle","amount":1}`, http.StatusBadRequest},
		{"unknown node", `{"node":"nope","side":"right","amount":1}`, http.StatusNotFound},
		{"no partner", `{"node":"editor","side":"left","amount":1}`, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, ts.URL+"/resize", tt.body)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestServeDragSession(t *testing.T) {
	s, ts := testServer(t)

	resp := do(t, http.MethodPost, ts.URL+"/drags", `{"node":"editor","side":"right"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("begin status = %d, want 201", resp.StatusCode)
	}
	id := decode[dragView](t, resp).Session

	// 100px of a 1000px row is 10 weight.
	v := decode[dragView](t, do(t, http.MethodPost, ts.URL+"/drags/"+id+"/move", `{"px":100}`))
	if got := v.Siblings[0].Weight; got != 60 {
		t.Errorf("after +100px editor = %g, want 60", got)
	}
	v = decode[dragView](t, do(t, http.MethodPost, ts.URL+"/drags/"+id+"/move", `{"px":-100}`))
	if got := v.Siblings[0].Weight; got != 50 {
		t.Errorf("after -100px editor = %g, want 50", got)
	}

	if resp := do(t, http.MethodDelete, ts.URL+"/drags/"+id, ""); resp.StatusCode != http.StatusOK {
		t.Errorf("end status = %d, want 200", resp.StatusCode)
	}
	if len(s.drags) != 0 {
		t.Errorf("drags = %d, want 0 after end", len(s.drags))
	}
	if resp := do(t, http.MethodPost, ts.URL+"/drags/"+id+"/move", `{"px":1}`); resp.StatusCode != http.StatusNotFound {
		t.Errorf("move after end status = %d, want 404", resp.StatusCode)
	}
}

func TestServeMutations(t *testing.T) {
	s, ts := testServer(t)

	resp := do(t, http.MethodPatch, ts.URL+"/nodes/editor", `{"title":"Main"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch status = %d", resp.StatusCode)
	}
	if n := decode[nodeView](t, resp); n.Title != "Main" {
		t.Errorf("title = %q, want Main", n.Title)
	}

	root := s.tree.Root().ID()
	resp = do(t, http.MethodPost, ts.URL+"/nodes/"+root+"/children", `{"component_id":"preview"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("push status = %d", resp.StatusCode)
	}
	if s.tree.Root().Len() != 3 {
		t.Errorf("root children = %d, want 3", s.tree.Root().Len())
	}

	if resp := do(t, http.MethodDelete, ts.URL+"/nodes/preview", ""); resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", resp.StatusCode)
	}
	if s.tree.Root().Len() != 2 {
		t.Errorf("root children = %d, want 2", s.tree.Root().Len())
	}
	if resp := do(t, http.MethodDelete, ts.URL+"/nodes/"+root, ""); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("delete root status = %d, want 400", resp.StatusCode)
	}
}

func TestServeLayoutFormats(t *testing.T) {
	_, ts := testServer(t)
	tests := []struct {
		format string
		ctype  string
		want   string
	}{
		{"", "application/json", `"component_id": "editor"`},
		{"yaml", "application/yaml", "component_id: editor"},
		{"toml", "application/toml", `component_id = "editor"`},
	}
	for _, tt := range tests {
		t.Run(tt.ctype, func(t *testing.T) {
			resp := do(t, http.MethodGet, ts.URL+"/layout?format="+tt.format, "")
			if got := resp.Header.Get("Content-Type"); got != tt.ctype {
				t.Errorf("Content-Type = %q, want %q", got, tt.ctype)
			}
			body, _ := io.ReadAll(resp.Body)
			if !strings.Contains(string(body), tt.want) {
				t.Errorf("body missing %q:\n%s", tt.want, body)
			}
		})
	}

	if resp := do(t, http.MethodGet, ts.URL+"/layout?format=xml", ""); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("xml status = %d, want 400", resp.StatusCode)
	}
}

func TestServeSVGAndMetrics(t *testing.T) {
	_, ts := testServer(t)

	resp := do(t, http.MethodGet, ts.URL+"/layout.svg", "")
	body, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "image/svg+xml") || !strings.Contains(string(body), "<svg") {
		t.Errorf("svg response: %s", body)
	}

	do(t, http.MethodPost, ts.URL+"/resize", `{"node":"editor","side":"right","amount":5}`)
	resp = do(t, http.MethodGet, ts.URL+"/metrics", "")
	body, _ = io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "tilegrid_") {
		t.Errorf("metrics missing tilegrid_ series:\n%s", body)
	}
}

func TestStatusFor(t *testing.T) {
	if got := statusFor(io.EOF); got != http.StatusInternalServerError {
		t.Errorf("statusFor(EOF) = %d, want 500", got)
	}
}
