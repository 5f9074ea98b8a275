// Package fakeapi поднимает in-memory backend книжного ассистента
// для тестов клиента. Реализует те же маршруты и форматы ответов,
// что и настоящий backend, и позволяет подменять ответы конкретных маршрутов.
package fakeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/bookchat/internal/lib/jwt"
	"github.com/magabrotheeeer/bookchat/internal/lib/password"
	"github.com/magabrotheeeer/bookchat/internal/models"
)

const secret = "fakeapi-secret"

// PlanLimits лимиты сообщений по планам; nil означает безлимитный план.
var PlanLimits = map[string]*int{
	models.PlanFree:     intPtr(5),
	models.PlanStandard: intPtr(100),
	models.PlanPremium:  nil,
}

// User пользователь fake backend.
type User struct {
	ID        string
	Email     string
	Name      string
	Role      models.Role
	Hash      string // bcrypt-хеш пароля
	CreatedAt time.Time
	Plan      string
	Used      int
}

type failure struct {
	status int
	detail string
	delay  time.Duration
}

// Server fake backend.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	users    map[string]*User // по id
	maker    *jwt.MakerImpl
	revoked  bool
	hits     map[string]int
	failures map[string][]failure
	delays   map[string]time.Duration
	logs     []models.ActionLog
	payments []models.CheckoutRequest
}

// New запускает fake backend. Остановить через Close.
func New() *Server {
	s := &Server{
		users:    make(map[string]*User),
		maker:    jwt.NewJWTMaker(secret, time.Hour),
		hits:     make(map[string]int),
		failures: make(map[string][]failure),
		delays:   make(map[string]time.Duration),
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.track)

	r.Post("/auth/register", s.register)
	r.Post("/auth/login", s.login)
	r.Post("/auth/forgot-password", s.forgotPassword)
	r.Post("/auth/reset-password", s.resetPassword)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/account/me", s.me)
		r.Get("/account/overview", s.overview)
		r.Post("/account/change-password", s.changePassword)
		r.Post("/chat", s.chat)
		r.Post("/subscriptions/create", s.createSubscription)
		r.Get("/subscriptions/check", s.check)
		r.Post("/subscriptions/consume", s.consume)
		r.Post("/subscriptions/checkout", s.checkout)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Get("/admin/users", s.listUsers)
			r.Post("/admin/users", s.createUser)
			r.Put("/admin/users/{id}", s.updateUser)
			r.Delete("/admin/users/{id}", s.deleteUser)
			r.Get("/admin/plans", s.listPlans)
			r.Get("/admin/logs", s.listLogs)
		})
	})
	return r
}

// AddUser создаёт пользователя и возвращает его.
func (s *Server) AddUser(email, password string, role models.Role) *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(email, "", password, role)
}

func (s *Server) addUserLocked(email, name, pw string, role models.Role) *User {
	u := &User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		Role:      role,
		Hash:      mustHash(pw),
		CreatedAt: time.Now().UTC(),
	}
	s.users[u.ID] = u
	return u
}

// SetPlan задаёт план и расход пользователя.
func (s *Server) SetPlan(id, plan string, used int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.Plan = plan
		u.Used = used
	}
}

// User возвращает копию пользователя по id.
func (s *Server) User(id string) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, false
	}
	return *u, true
}

// Token выдаёт валидный токен для пользователя.
func (s *Server) Token(u *User) string {
	tok, err := s.maker.GenerateToken(u.ID, string(u.Role))
	if err != nil {
		panic(err)
	}
	return tok
}

// ExpiredToken выдаёт токен с истёкшим сроком.
func (s *Server) ExpiredToken(u *User) string {
	tok, err := jwt.NewJWTMaker(secret, -time.Minute).GenerateToken(u.ID, string(u.Role))
	if err != nil {
		panic(err)
	}
	return tok
}

// RevokeAll заставляет backend отвечать 401 на все защищённые маршруты.
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked = true
}

// Fail ставит в очередь ответ status/detail для следующего запроса к "METHOD /path".
func (s *Server) Fail(route string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = append(s.failures[route], failure{status: status, detail: detail})
}

// Delay задерживает все ответы маршрута "METHOD /path".
func (s *Server) Delay(route string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[route] = d
}

// Hits число запросов к "METHOD /path".
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// TotalHits общее число запросов.
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.hits {
		total += n
	}
	return total
}

// Payments принятые оплаты.
func (s *Server) Payments() []models.CheckoutRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.CheckoutRequest, len(s.payments))
	copy(out, s.payments)
	return out
}

func routeKey(r *http.Request) string {
	return r.Method + " " + r.URL.Path
}

func (s *Server) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := routeKey(r)

		s.mu.Lock()
		s.hits[key]++
		delay := s.delays[key]
		var f *failure
		if queue := s.failures[key]; len(queue) > 0 {
			f = &queue[0]
			s.failures[key] = queue[1:]
		}
		s.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}
		if f != nil {
			writeDetail(w, r, f.status, f.detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type ctxKey struct{}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeDetail(w, r, http.StatusUnauthorized, "Not authenticated")
			return
		}
		claims, err := s.maker.ParseToken(strings.TrimPrefix(header, "Bearer "))

		s.mu.Lock()
		revoked := s.revoked
		var u *User
		if err == nil {
			u = s.users[claims.Subject]
		}
		s.mu.Unlock()

		if err != nil || revoked || u == nil {
			writeDetail(w, r, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r, u.ID)))
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := s.current(r)
		if u.Role != models.RoleAdmin {
			writeDetail(w, r, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// current возвращает копию текущего пользователя.
func (s *Server) current(r *http.Request) User {
	id, _ := r.Context().Value(ctxKey{}).(string)
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return *u
	}
	return User{}
}

func (s *Server) findByEmailLocked(email string) *User {
	for _, u := range s.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (s *Server) logLocked(userID, action, endpoint, description, status string) {
	s.logs = append(s.logs, models.ActionLog{
		ID:          int64(len(s.logs) + 1),
		UserID:      userID,
		ActionType:  action,
		Endpoint:    endpoint,
		Description: description,
		Status:      status,
		CreatedAt:   models.NewTimestamp(time.Now().UTC()),
	})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, r, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findByEmailLocked(req.Email) != nil {
		writeDetail(w, r, http.StatusBadRequest, "Email already registered")
		return
	}
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	u := s.addUserLocked(req.Email, req.Name, req.Password, role)
	render.JSON(w, r, profile(u))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || r.Header.Get("Content-Type") != "application/x-www-form-urlencoded" {
		writeDetail(w, r, http.StatusUnprocessableEntity, "form data expected")
		return
	}
	s.mu.Lock()
	u := s.findByEmailLocked(r.PostForm.Get("username"))
	ok := u != nil && password.Matches(u.Hash, r.PostForm.Get("password"))
	if ok {
		s.logLocked(u.ID, "LOGIN", "/auth/login", "login", "SUCCESS")
	}
	s.mu.Unlock()

	if !ok {
		writeDetail(w, r, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	render.JSON(w, r, map[string]any{
		"access_token": s.Token(u),
		"token_type":   "bearer",
		"role":         u.Role,
	})
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"message": "If the email exists, a reset link was sent."})
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeDetail(w, r, http.StatusBadRequest, "Invalid or expired token")
		return
	}
	render.JSON(w, r, map[string]string{"message": "Password reset."})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	u := s.current(r)
	render.JSON(w, r, profile(&u))
}

func (s *Server) overview(w http.ResponseWriter, r *http.Request) {
	u := s.current(r)
	plan, status := u.Plan, "active"
	if plan == "" {
		plan, status = models.PlanFree, "inactive"
	}
	end := time.Now().UTC().AddDate(0, 1, 0).Format("2006-01-02T15:04:05")
	render.JSON(w, r, map[string]any{
		"subscription": map[string]any{
			"plan":               plan,
			"status":             status,
			"messages_used":      u.Used,
			"messages_limit":     PlanLimits[plan],
			"current_period_end": end,
		},
		"usage": map[string]int{"tts_seconds": 0, "stt_seconds": 0},
	})
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req models.PasswordChange
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, r, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, _ := r.Context().Value(ctxKey{}).(string)
	u := s.users[id]
	if !password.Matches(u.Hash, req.OldPassword) {
		writeDetail(w, r, http.StatusBadRequest, "Current password is incorrect.")
		return
	}
	u.Hash = mustHash(req.NewPassword)
	render.JSON(w, r, map[string]string{"message": "Password updated."})
}

func (s *Server) limitReachedLocked(u *User) bool {
	plan := u.Plan
	if plan == "" {
		plan = models.PlanFree
	}
	limit := PlanLimits[plan]
	return limit != nil && u.Used >= *limit
}

func (s *Server) check(w http.ResponseWriter, r *http.Request) {
	id, _ := r.Context().Value(ctxKey{}).(string)
	s.mu.Lock()
	reached := s.limitReachedLocked(s.users[id])
	s.mu.Unlock()
	if reached {
		writeDetail(w, r, http.StatusForbidden, "Message limit reached for your plan.")
		return
	}
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (s *Server) consume(w http.ResponseWriter, r *http.Request) {
	id, _ := r.Context().Value(ctxKey{}).(string)
	s.mu.Lock()
	u := s.users[id]
	if s.limitReachedLocked(u) {
		s.mu.Unlock()
		writeDetail(w, r, http.StatusForbidden, "Message limit reached for your plan.")
		return
	}
	u.Used++
	used := u.Used
	s.mu.Unlock()
	render.JSON(w, r, map[string]int{"messages_used": used})
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		writeDetail(w, r, http.StatusUnprocessableEntity, "message required")
		return
	}
	conv := uuid.New()
	if req.ConversationID != nil {
		conv = *req.ConversationID
	}
	render.JSON(w, r, models.ChatResponse{
		ConversationID: conv,
		Answer:         fmt.Sprintf("Try \"The Name of the Wind\" for: %s", req.Message),
		Title:          "The Name of the Wind",
		Reason:         "matches your request",
	})
}

func (s *Server) createSubscription(w http.ResponseWriter, r *http.Request) {
	plan := r.URL.Query().Get("plan")
	if _, ok := PlanLimits[plan]; !ok {
		writeDetail(w, r, http.StatusBadRequest, "Unknown plan")
		return
	}
	id, _ := r.Context().Value(ctxKey{}).(string)
	s.mu.Lock()
	u := s.users[id]
	u.Plan = plan
	u.Used = 0
	s.logLocked(u.ID, "BILLING", "/subscriptions/create", "plan "+plan, "SUCCESS")
	s.mu.Unlock()
	render.JSON(w, r, map[string]string{"plan_name": plan, "status": "active"})
}

func (s *Server) checkout(w http.ResponseWriter, r *http.Request) {
	var req models.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, r, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	s.mu.Lock()
	s.payments = append(s.payments, req)
	n := len(s.payments)
	s.mu.Unlock()
	render.JSON(w, r, map[string]any{"message": "Payment processed", "payment_id": n})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]models.AdminUser, 0, len(s.users))
	for _, u := range s.users {
		planName := "None"
		if u.Plan != "" {
			planName = u.Plan
		}
		out = append(out, models.AdminUser{
			ID:            u.ID,
			Email:         u.Email,
			Name:          u.Name,
			Role:          u.Role,
			CreatedAt:     models.NewTimestamp(u.CreatedAt),
			HasActivePlan: u.Plan != "",
			PlanName:      planName,
		})
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	render.JSON(w, r, out)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req models.AdminUserCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, r, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findByEmailLocked(req.Email) != nil {
		writeDetail(w, r, http.StatusBadRequest, "Email already registered.")
		return
	}
	u := s.addUserLocked(req.Email, req.Name, req.Password, req.Role)
	s.logLocked("", "ADMIN_USER_CREATE", "/admin/users", "created "+req.Email, "SUCCESS")
	render.JSON(w, r, profile(u))
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	var req models.AdminUserUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, r, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[chi.URLParam(r, "id")]
	if !ok {
		writeDetail(w, r, http.StatusNotFound, "User not found")
		return
	}
	u.Name = req.Name
	if req.Role != "" {
		u.Role = req.Role
	}
	if req.Password != "" {
		u.Hash = mustHash(req.Password)
	}
	s.logLocked("", "ADMIN_USER_UPDATE", "/admin/users", "updated "+u.Email, "SUCCESS")
	render.JSON(w, r, profile(u))
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := chi.URLParam(r, "id")
	if _, ok := s.users[id]; !ok {
		writeDetail(w, r, http.StatusNotFound, "User not found")
		return
	}
	delete(s.users, id)
	render.JSON(w, r, map[string]string{"message": "deleted"})
}

func (s *Server) listPlans(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, []models.Plan{
		{ID: 1, Code: models.PlanFree, Name: "Free", Currency: "EUR", MessagesLimit: PlanLimits[models.PlanFree], Active: true},
		{ID: 2, Code: models.PlanStandard, Name: "Standard", PriceCents: 499, Currency: "EUR", MessagesLimit: PlanLimits[models.PlanStandard], Active: true},
		{ID: 3, Code: models.PlanPremium, Name: "Premium", PriceCents: 1499, Currency: "EUR", Active: true},
	})
}

func (s *Server) listLogs(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]models.ActionLog, len(s.logs))
	for i := range s.logs {
		out[len(s.logs)-1-i] = s.logs[i]
	}
	s.mu.Unlock()
	render.JSON(w, r, out)
}

func profile(u *User) map[string]any {
	return map[string]any{
		"id":         u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"role":       u.Role,
		"created_at": u.CreatedAt.Format("2006-01-02T15:04:05.999999"),
	}
}

func writeDetail(w http.ResponseWriter, r *http.Request, status int, detail string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"detail": detail})
}

func intPtr(v int) *int {
	return &v
}

func mustHash(pw string) string {
	hash, err := password.Hash(pw)
	if err != nil {
		panic(err)
	}
	return hash
}
