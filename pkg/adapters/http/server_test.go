package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/loom"
	"github.com/aretw0/loom/pkg/domain"
	"github.com/aretw0/loom/pkg/observability"
	"github.com/aretw0/loom/pkg/scene"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testScene = `
name: http
nodes:
  - name: zero
    type: constant
    params: {value: "[0] 3"}
  - name: step
    type: sim_step
    params: {key: total}
  - name: inc
    type: add
    values: {in1: "[1] 3"}
  - name: commit
    type: sim_commit
    params: {key: total}
connections:
  - {from: zero.out, to: step.initial}
  - {from: step.previous, to: inc.in0}
  - {from: inc.out, to: commit.value}
outputs: [commit.out]
`

func newTestHandler(t *testing.T) (http.Handler, *prometheus.Registry) {
	t.Helper()
	s, err := scene.Parse([]byte(testScene))
	require.NoError(t, err)
	reg := prometheus.NewRegistry()
	eng, err := loom.New(s, loom.WithMetrics(observability.NewMetrics(reg)))
	require.NoError(t, err)
	return NewHandler(eng, WithGatherer(reg)), reg
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestAttributes(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, "GET", "/attributes/inc.out", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var info domain.AttributeInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "[1] 3", info.Value)
	assert.Equal(t, "Float", info.Kind)

	w = do(t, h, "PUT", "/attributes/inc.in1", "[41] 3\n")
	assert.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	w = do(t, h, "GET", "/attributes/inc.out", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "[41] 3", info.Value)

	tests := []struct {
		method, path, body string
		want               int
	}{
		{"GET", "/attributes/inc.nope", "", http.StatusNotFound},
		{"PUT", "/attributes/inc.in0", "[1] 3", http.StatusConflict},
		{"PUT", "/attributes/inc.in1", "[true] 13", http.StatusConflict},
		{"PUT", "/attributes/inc.in1", "not a literal", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path+" "+tt.body, func(t *testing.T) {
			assert.Equal(t, tt.want, do(t, h, tt.method, tt.path, tt.body).Code)
		})
	}
}

func TestNodesAndGraph(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, "GET", "/nodes", "")
	require.Equal(t, http.StatusOK, w.Code)
	var nodes []domain.NodeInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &nodes))
	assert.Len(t, nodes, 4)
	assert.Equal(t, "sim_step", nodes[1].Type)

	w = do(t, h, "GET", "/graph", "")
	assert.Contains(t, w.Body.String(), "graph LR")
	assert.Contains(t, w.Body.String(), `inc -- "out → value" --> commit`)

	w = do(t, h, "GET", "/info", "")
	assert.Contains(t, w.Body.String(), `"app":"loom-http"`)
	assert.Equal(t, http.StatusOK, do(t, h, "GET", "/health", "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, "OPTIONS", "/nodes", "").Code)
}

func TestEvaluateStepAndMetrics(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, "POST", "/evaluate", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"commit.out":"[1] 3"}`, w.Body.String())

	for want := 1; want <= 2; want++ {
		w = do(t, h, "POST", "/sessions/s1/step", "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var res loom.StepResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, want, res.Step)
	}
	assert.Equal(t, http.StatusNoContent, do(t, h, "DELETE", "/sessions/s1", "").Code)

	w = do(t, h, "GET", "/metrics", "")
	assert.Contains(t, w.Body.String(), "loom_node_evaluations_total")
}

func TestSubscribeEvents(t *testing.T) {
	h, _ := newTestHandler(t)
	do(t, h, "POST", "/evaluate", "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/events", nil).WithContext(ctx)
	done := make(chan struct{})
	go func() {
		h.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, http.StatusNoContent, do(t, h, "PUT", "/attributes/inc.in1", "[5] 3").Code)
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	out := w.Body.String()
	assert.Contains(t, out, "event: ping")
	assert.Contains(t, out, "event: dirty")
	assert.Contains(t, out, `"commit.out"`)
}
