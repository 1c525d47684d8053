// Package apitest sobe uma versão em memória da API de identidade e métricas
// para testes de ponta a ponta do cliente.
package apitest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	jsoniter "github.com/json-iterator/go"
	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/metrics-dashboard/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var emailRegex = regexp.MustCompile(`^[\w\.-]+@[\w\.-]+\.\w+$`)

const (
	DuplicateEmailDetail = "Unique constraint failed on the fields: (`email`)"
	InvalidEmailDetail   = "Email inválido. Formato esperado: usuario@dominio.com"
)

type user struct {
	username     string
	email        string
	passwordHash string
	role         domain.Role
}

// Server é a API falsa. Tokens são HS256 com a claim role.
type Server struct {
	*httptest.Server

	secret []byte
	ttl    time.Duration

	mu        sync.Mutex
	users     map[string]user
	rows      []domain.MetricRow
	lastQuery url.Values
	failNext  int
	requests  int
}

func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		secret: []byte("apitest-secret"),
		ttl:    time.Hour,
		users:  make(map[string]user),
	}

	router := httprouter.New()
	router.HandlerFunc(http.MethodPost, "/login", s.login)
	router.HandlerFunc(http.MethodPost, "/users", s.createUser)
	router.HandlerFunc(http.MethodGet, "/metrics", s.listMetrics)

	s.Server = httptest.NewServer(router)
	t.Cleanup(s.Server.Close)

	return s
}

// AddUser cadastra um usuário diretamente, inclusive administradores
func (s *Server) AddUser(username, email, password string, role domain.Role) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = user{username: username, email: email, passwordHash: string(hash), role: role}
}

func (s *Server) HasUser(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[email]
	return ok
}

func (s *Server) SetRows(rows []domain.MetricRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = rows
}

// LastQuery retorna os parâmetros da última chamada a /metrics
func (s *Server) LastQuery() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuery
}

// MetricsRequests conta as chamadas a /metrics
func (s *Server) MetricsRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// FailNext faz a próxima chamada a /metrics responder com o status informado
func (s *Server) FailNext(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = status
}

// IssueToken assina um token como o /login faria
func (s *Server) IssueToken(subject string, role domain.Role, ttl time.Duration) string {
	claims := domain.TokenClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	return token
}

func (s *Server) validateToken(r *http.Request) (*domain.TokenClaims, bool) {
	tokenString := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if tokenString == "" {
		return nil, false
	}

	claims := &domain.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}

	return claims, true
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req domain.Credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	s.mu.Lock()
	u, ok := s.users[req.Email]
	s.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(req.Password)) != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": s.IssueToken(u.username+"|"+u.email, u.role, s.ttl),
		"token_type":   "bearer",
	})
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req domain.NewUser
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	if !emailRegex.MatchString(req.Email) {
		writeDetail(w, http.StatusBadRequest, InvalidEmailDetail)
		return
	}

	if s.HasUser(req.Email) {
		writeDetail(w, http.StatusBadRequest, DuplicateEmailDetail)
		return
	}

	// o servidor ignora o papel enviado
	s.AddUser(req.Username, req.Email, req.Password, domain.RoleUser)

	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": s.IssueToken(req.Username+"|"+req.Email, domain.RoleUser, s.ttl),
		"token_type":   "bearer",
	})
}

func (s *Server) listMetrics(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests++
	s.lastQuery = r.URL.Query()
	failStatus := s.failNext
	s.failNext = 0
	rows := append([]domain.MetricRow(nil), s.rows...)
	s.mu.Unlock()

	if failStatus != 0 {
		writeDetail(w, failStatus, http.StatusText(failStatus))
		return
	}

	claims, ok := s.validateToken(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	q := r.URL.Query()
	page := intParam(q, "page", 1)
	pageSize := intParam(q, "page_size", 20)

	rows = filterByDate(rows, q.Get("start_date"), q.Get("end_date"))
	sortRows(rows, q.Get("sort_by"), q.Get("order"))

	total := len(rows)
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	data := make([]domain.MetricRow, 0, end-start)
	for _, row := range rows[start:end] {
		if domain.Role(claims.Role) != domain.RoleAdmin {
			row.CostMicros = nil
		}
		data = append(data, row)
	}

	writeJSON(w, http.StatusOK, domain.PageResult{
		Rows: data,
		Pagination: domain.Pagination{
			Page:     page,
			Pages:    (total + pageSize - 1) / pageSize,
			Total:    total,
			PageSize: pageSize,
		},
	})
}

func filterByDate(rows []domain.MetricRow, start, end string) []domain.MetricRow {
	if start == "" && end == "" {
		return rows
	}

	filtered := rows[:0]
	for _, row := range rows {
		day := row.Date
		if len(day) > 10 {
			day = day[:10]
		}
		if start != "" && day < start {
			continue
		}
		if end != "" && day > end {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}

func sortRows(rows []domain.MetricRow, sortBy, order string) {
	if sortBy == "" {
		sortBy, order = domain.ColumnDate, string(domain.SortDesc)
	}

	column := domain.Column{Key: sortBy}
	less := func(i, j int) bool {
		if sortBy == domain.ColumnDate {
			return rows[i].Date < rows[j].Date
		}
		a, _ := strconv.ParseFloat(column.Cell(rows[i]), 64)
		b, _ := strconv.ParseFloat(column.Cell(rows[j]), 64)
		return a < b
	}

	if strings.ToLower(order) == string(domain.SortDesc) {
		sort.SliceStable(rows, func(i, j int) bool { return less(j, i) })
		return
	}
	sort.SliceStable(rows, less)
}

func intParam(q url.Values, key string, def int) int {
	v, err := strconv.Atoi(q.Get(key))
	if err != nil || v < 1 {
		return def
	}
	return v
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
