// Package backendtest runs an in-memory storefront backend for client tests.
package backendtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/doubleteemedia40-oss/doublet/internal/backend"
)

// Server is a fake storefront backend backed by in-memory slices. Fields may
// be seeded directly before issuing requests; mutate under Lock when the
// server is already receiving traffic.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	nextID    int
	passwords map[string]string
	tokens    map[string]string

	Products      []backend.Product
	Orders        []backend.Order
	Users         []backend.User
	Maintenance   bool
	FailMe        bool
	FailInitiate  bool
	Verifications map[string]backend.PaymentVerification

	// LastProductLimit records the limit of the most recent catalog fetch.
	LastProductLimit int
}

// New starts the fake backend. Callers own closing it via Server.Close.
func New() *Server {
	s := &Server{
		passwords:     map[string]string{},
		tokens:        map[string]string{},
		Verifications: map[string]backend.PaymentVerification{},
	}

	r := chi.NewRouter()
	r.Post("/api/auth/register", s.handleRegister)
	r.Post("/api/auth/login", s.handleLogin)
	r.Get("/api/auth/me", s.handleMe)
	r.Post("/api/auth/request-reset", s.handleRequestReset)
	r.Post("/api/auth/reset", s.handleReset)

	r.Get("/api/products", s.handleListProducts)
	r.Post("/api/products", s.handleCreateProduct)
	r.Put("/api/products/{id}", s.handleUpdateProduct)
	r.Delete("/api/products/{id}", s.handleDeleteProduct)

	r.Get("/api/orders", s.handleListOrders)
	r.Post("/api/orders", s.handleCreateOrder)
	r.Put("/api/orders/{id}/status", s.handleOrderStatus)
	r.Put("/api/orders/{id}/delivery", s.handleOrderDelivery)

	r.Get("/api/users", s.handleListUsers)
	r.Put("/api/users/{id}/role", s.handleUserRole)
	r.Put("/api/users/{id}/active", s.handleUserActive)

	r.Post("/api/payments/{gateway}/initiate", s.handleInitiate)
	r.Get("/api/payments/verify/{reference}", s.handleVerify)

	r.Get("/api/health", s.handleHealth)
	r.Put("/api/config", s.handleConfig)

	s.Server = httptest.NewServer(r)
	return s
}

// Lock takes the state mutex for direct seeding while the server is live.
func (s *Server) Lock() { s.mu.Lock() }

// Unlock releases the state mutex.
func (s *Server) Unlock() { s.mu.Unlock() }

// RegisterUser seeds an account with credentials and returns its token.
func (s *Server) RegisterUser(email, password, name string, isAdmin bool) (backend.User, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := backend.User{ID: s.id("u"), Email: email, Name: name, IsAdmin: isAdmin}
	s.Users = append(s.Users, user)
	s.passwords[email] = password
	token := "tok-" + user.ID
	s.tokens[token] = user.ID
	return user, token
}

// SeedOrders appends n orders, newest first, with strictly decreasing
// createdAt stamps so cursor paging is deterministic.
func (s *Server) SeedOrders(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		created := base.Add(-time.Duration(i) * time.Minute).Format(time.RFC3339)
		s.Orders = append(s.Orders, backend.Order{
			ID:        s.id("o"),
			UserID:    "u-1",
			Customer:  fmt.Sprintf("Customer %d", i+1),
			Email:     "customer@example.com",
			Total:     1000,
			Status:    backend.OrderPending,
			Date:      created,
			CreatedAt: created,
		})
	}
}

func (s *Server) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) userForRequest(r *http.Request) *backend.User {
	auth := r.Header.Get("Authorization")
	if len(auth) < 8 || auth[:7] != "Bearer " {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.tokens[auth[7:]]
	if !ok {
		return nil
	}
	for i := range s.Users {
		if s.Users[i].ID == userID {
			u := s.Users[i]
			return &u
		}
	}
	return nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in struct{ Email, Password, Name string }
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.mu.Lock()
	for _, u := range s.Users {
		if u.Email == in.Email {
			s.mu.Unlock()
			writeError(w, http.StatusConflict, "Email already registered")
			return
		}
	}
	user := backend.User{ID: s.id("u"), Email: in.Email, Name: in.Name}
	s.Users = append(s.Users, user)
	s.passwords[in.Email] = in.Password
	token := "tok-" + user.ID
	s.tokens[token] = user.ID
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, backend.AuthResult{Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct{ Email, Password string }
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.passwords[in.Email] != in.Password || in.Password == "" {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	for _, u := range s.Users {
		if u.Email == in.Email {
			token := "tok-" + u.ID
			s.tokens[token] = u.ID
			writeJSON(w, http.StatusOK, backend.AuthResult{Token: token, User: u})
			return
		}
	}
	writeError(w, http.StatusUnauthorized, "Invalid credentials")
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if s.FailMe {
		writeError(w, http.StatusInternalServerError, "session lookup failed")
		return
	}
	user := s.userForRequest(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Server) handleRequestReset(w http.ResponseWriter, r *http.Request) {
	var in struct{ Email string }
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Email == "" {
		writeError(w, http.StatusBadRequest, "email required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": "reset-" + in.Email})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var in struct{ Token, NewPassword string }
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Token == "" {
		writeError(w, http.StatusBadRequest, "invalid token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}
	s.mu.Lock()
	s.LastProductLimit = limit
	items := make([]backend.Product, 0, limit)
	for i := 0; i < len(s.Products) && i < limit; i++ {
		items = append(items, s.Products[i])
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var in backend.Product
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.mu.Lock()
	in.ID = s.id("p")
	s.Products = append(s.Products, in)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, in)
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in backend.Product
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Products {
		if s.Products[i].ID == id {
			in.ID = id
			s.Products[i] = in
			writeJSON(w, http.StatusOK, in)
			return
		}
	}
	writeError(w, http.StatusNotFound, "product not found")
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Products {
		if s.Products[i].ID == id {
			s.Products = append(s.Products[:i], s.Products[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "product not found")
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}
	afterDate := r.URL.Query().Get("afterDate")
	userID := r.URL.Query().Get("userId")

	s.mu.Lock()
	defer s.mu.Unlock()

	matching := make([]backend.Order, 0, len(s.Orders))
	for _, o := range s.Orders {
		if userID == "" || o.UserID == userID {
			matching = append(matching, o)
		}
	}

	start := 0
	if afterDate != "" {
		for i, o := range matching {
			if o.CreatedAt == afterDate {
				start = i + 1
				break
			}
		}
	}

	end := start + limit
	if end > len(matching) {
		end = len(matching)
	}
	items := matching[start:end]

	next := ""
	if end < len(matching) && len(items) > 0 {
		next = items[len(items)-1].CreatedAt
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var in backend.Order
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.mu.Lock()
	in.ID = s.id("o")
	s.Orders = append([]backend.Order{in}, s.Orders...)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, in)
}

func (s *Server) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in struct {
		Status backend.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Orders {
		if s.Orders[i].ID == id {
			s.Orders[i].Status = in.Status
			writeJSON(w, http.StatusOK, s.Orders[i])
			return
		}
	}
	writeError(w, http.StatusNotFound, "order not found")
}

func (s *Server) handleOrderDelivery(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in struct {
		Details string `json:"details"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Orders {
		if s.Orders[i].ID == id {
			delivery := &backend.Delivery{Details: in.Details, UpdatedAt: time.Now().UnixMilli()}
			s.Orders[i].Delivery = delivery
			writeJSON(w, http.StatusOK, map[string]any{"delivery": delivery})
			return
		}
	}
	writeError(w, http.StatusNotFound, "order not found")
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := append([]backend.User(nil), s.Users...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleUserRole(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in struct {
		IsAdmin bool `json:"isAdmin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Users {
		if s.Users[i].ID == id {
			s.Users[i].IsAdmin = in.IsAdmin
			writeJSON(w, http.StatusOK, s.Users[i])
			return
		}
	}
	writeError(w, http.StatusNotFound, "user not found")
}

func (s *Server) handleUserActive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Users {
		if s.Users[i].ID == id {
			active := in.Active
			s.Users[i].Active = &active
			writeJSON(w, http.StatusOK, s.Users[i])
			return
		}
	}
	writeError(w, http.StatusNotFound, "user not found")
}

func (s *Server) handleInitiate(w http.ResponseWriter, r *http.Request) {
	if s.FailInitiate {
		writeError(w, http.StatusBadGateway, "gateway unavailable")
		return
	}
	gateway := chi.URLParam(r, "gateway")
	var in backend.InitiatePaymentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Reference == "" {
		writeError(w, http.StatusBadRequest, "reference required")
		return
	}
	link := fmt.Sprintf("https://pay.example/%s/%s", gateway, in.Reference)
	switch gateway {
	case "flutterwave":
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]string{"link": link}})
	case "paystack":
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]string{"authorization_url": link}})
	default:
		writeError(w, http.StatusNotFound, "unknown gateway")
	}
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")
	s.mu.Lock()
	verification, ok := s.Verifications[reference]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	writeJSON(w, http.StatusOK, verification)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	maintenance := s.Maintenance
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, backend.HealthStatus{FlutterwaveConfigured: true, Maintenance: maintenance})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Maintenance bool `json:"maintenance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.mu.Lock()
	s.Maintenance = in.Maintenance
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"config": map[string]bool{"maintenance": in.Maintenance}})
}
