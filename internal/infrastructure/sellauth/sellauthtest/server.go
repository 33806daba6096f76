// Package sellauthtest provides an in-memory SellAuth API for tests.
package sellauthtest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

const (
	APIKey = "test-api-key"
	ShopID = "shop-1"
)

// Variant is a product variant as stored by the fake.
type Variant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type product struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Variants []Variant `json:"variants"`
}

// Recorded is one request the fake received.
type Recorded struct {
	Method string
	Path   string
	Body   []byte
}

type canned struct {
	status int
	body   string
}

// Server is an httptest server speaking the subset of the SellAuth API the bot uses.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	orders    map[string]map[string]any
	products  []product
	stock     map[string][]string
	overrides map[string]canned
	requests  []Recorded
}

// New starts a fake and closes it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		orders:    map[string]map[string]any{},
		stock:     map[string][]string{},
		overrides: map[string]canned{},
	}

	r := chi.NewRouter()
	r.Use(s.record, s.authorize, s.override)
	r.Route("/shops/"+ShopID, func(r chi.Router) {
		r.Get("/orders/{id}", s.getOrder)
		r.Get("/products", s.listProducts)
		r.Get("/products/{pid}", s.getProduct)
		r.Get("/products/{pid}/deliverables/{vid}", s.getStock)
		r.Put("/products/{pid}/deliverables/append/{vid}", s.appendStock)
	})

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

func (s *Server) AddOrder(id string, fields map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := map[string]any{"id": id}
	for k, v := range fields {
		o[k] = v
	}
	s.orders[id] = o
}

func (s *Server) AddProduct(id, name string, variants ...Variant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if variants == nil {
		variants = []Variant{}
	}
	s.products = append(s.products, product{ID: id, Name: name, Variants: variants})
}

func (s *Server) SetStock(productID, variantID string, items ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock[stockKey(productID, variantID)] = append([]string(nil), items...)
}

// Stock returns the deliverables currently held by a variant.
func (s *Server) Stock(productID, variantID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.stock[stockKey(productID, variantID)]...)
}

// Override makes every request for method and path answer with status and a raw body.
func (s *Server) Override(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[method+" "+path] = canned{status: status, body: body}
}

func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.requests...)
}

func (s *Server) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, Recorded{Method: r.Method, Path: r.URL.EscapedPath(), Body: body})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+APIKey {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Unauthenticated."})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) override(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		c, ok := s.overrides[r.Method+" "+r.URL.Path]
		s.mu.Unlock()
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(c.status)
		_, _ = io.WriteString(w, c.body)
	})
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	o, ok := s.orders[chi.URLParam(r, "id")]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Order not found."})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": o})
}

func (s *Server) listProducts(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := append([]product{}, s.products...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"data": out})
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := s.product(chi.URLParam(r, "pid"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Product not found."})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": p})
}

func (s *Server) getStock(w http.ResponseWriter, r *http.Request) {
	pid, vid := chi.URLParam(r, "pid"), chi.URLParam(r, "vid")
	if _, ok := s.product(pid); !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Product not found."})
		return
	}
	items := s.Stock(pid, vid)
	if items == nil {
		items = []string{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) appendStock(w http.ResponseWriter, r *http.Request) {
	pid, vid := chi.URLParam(r, "pid"), chi.URLParam(r, "vid")
	if _, ok := s.product(pid); !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Product not found."})
		return
	}
	var body struct {
		Deliverables []string `json:"deliverables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"message": err.Error()})
		return
	}

	s.mu.Lock()
	key := stockKey(pid, vid)
	s.stock[key] = append(s.stock[key], body.Deliverables...)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"message": "Deliverables appended."})
}

func (s *Server) product(id string) (product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return product{}, false
}

func stockKey(productID, variantID string) string {
	return productID + "/" + variantID
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
