package generichttp

import (
	"bytes"
	"encoding/json"
	"errors"
	"go/types"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
)

func TestRouteTableBind(t *testing.T) {
	rt := RouteTable{
		MethodPath{http.MethodGet, "/temperature"}: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}}
	r := chi.NewRouter()
	rt.Bind(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/temperature", nil))
	if w.Code != http.StatusTeapot {
		t.Errorf("expected the bound handler to answer, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/temperature", nil))
	if w.Code == http.StatusTeapot {
		t.Error("expected the binding to be method specific")
	}
}

func TestEndpointsSortedAndFormatted(t *testing.T) {
	nop := func(w http.ResponseWriter, r *http.Request) {}
	rt := RouteTable{
		MethodPath{http.MethodPost, "/units"}:      nop,
		MethodPath{http.MethodGet, "/units"}:       nop,
		MethodPath{http.MethodGet, "/temperature"}: nop}
	expected := []string{"GET /temperature", "GET /units", "POST /units"}
	eps := rt.Endpoints()
	if len(eps) != len(expected) {
		t.Fatalf("expected %d endpoints, got %d", len(expected), len(eps))
	}
	for i := range expected {
		if eps[i] != expected[i] {
			t.Errorf("expected %s at position %d, got %s", expected[i], i, eps[i])
		}
	}
}

func TestEndpointsHandler(t *testing.T) {
	rt := RouteTable{
		MethodPath{http.MethodGet, "/read"}: func(w http.ResponseWriter, r *http.Request) {}}
	w := httptest.NewRecorder()
	rt.EndpointsHandler()(w, httptest.NewRequest(http.MethodGet, "/endpoints", nil))
	var eps []string
	if err := json.NewDecoder(w.Body).Decode(&eps); err != nil {
		t.Fatal(err)
	}
	if len(eps) != 1 || eps[0] != "GET /read" {
		t.Errorf("expected [GET /read], got %v", eps)
	}
}

func TestSubMuxSanitize(t *testing.T) {
	cases := map[string]string{
		"cham":   "/cham",
		"/cham":  "/cham",
		"cham/":  "/cham",
		"/cham/": "/cham"}
	for in, expected := range cases {
		if out := SubMuxSanitize(in); out != expected {
			t.Errorf("expected %s => %s, got %s", in, expected, out)
		}
	}
}

func TestGetFloat(t *testing.T) {
	w := httptest.NewRecorder()
	GetFloat(func() (float64, error) { return 21.5, nil })(w, httptest.NewRequest(http.MethodGet, "/", nil))
	var f FloatT
	if err := json.NewDecoder(w.Body).Decode(&f); err != nil {
		t.Fatal(err)
	}
	if f.F64 != 21.5 {
		t.Errorf("expected 21.5, got %v", f.F64)
	}

	w = httptest.NewRecorder()
	GetFloat(func() (float64, error) { return 0, errors.New("sensor unplugged") })(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 when the getter fails, got %d", w.Code)
	}
}

func TestSetFloat(t *testing.T) {
	var got float64
	h := SetFloat(func(f float64) error { got = f; return nil })

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"f64": 25}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got != 25 {
		t.Errorf("expected the setter to see 25, got %v", got)
	}

	w = httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("not json")))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for garbage input, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	bad := SetFloat(func(f float64) error { return errors.New("no") })
	bad(w, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"f64": 25}`)))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 when the setter fails, got %d", w.Code)
	}
}

func TestStringAndBoolRoundTrips(t *testing.T) {
	var gotS string
	w := httptest.NewRecorder()
	SetString(func(s string) error { gotS = s; return nil })(w,
		httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"str": "kelvin"}`)))
	if w.Code != http.StatusOK || gotS != "kelvin" {
		t.Errorf("expected the setter to see kelvin, got %d %q", w.Code, gotS)
	}

	w = httptest.NewRecorder()
	GetString(func() (string, error) { return "Celsius", nil })(w, httptest.NewRequest(http.MethodGet, "/", nil))
	var s StrT
	if err := json.NewDecoder(w.Body).Decode(&s); err != nil {
		t.Fatal(err)
	}
	if s.Str != "Celsius" {
		t.Errorf("expected Celsius, got %s", s.Str)
	}

	var gotB bool
	w = httptest.NewRecorder()
	SetBool(func(b bool) error { gotB = b; return nil })(w,
		httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"bool": true}`)))
	if w.Code != http.StatusOK || !gotB {
		t.Errorf("expected the setter to see true, got %d %v", w.Code, gotB)
	}

	w = httptest.NewRecorder()
	GetBool(func() (bool, error) { return true, nil })(w, httptest.NewRequest(http.MethodGet, "/", nil))
	var b BoolT
	if err := json.NewDecoder(w.Body).Decode(&b); err != nil {
		t.Fatal(err)
	}
	if !b.Bool {
		t.Error("expected true")
	}
}

func TestHumanPayloadRejectsUnknownKind(t *testing.T) {
	w := httptest.NewRecorder()
	hp := HumanPayload{T: types.Int}
	hp.EncodeAndRespond(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 for a kind the encoder does not know, got %d", w.Code)
	}
}
