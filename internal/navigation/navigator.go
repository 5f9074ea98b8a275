// Package navigation хранит текущее положение клиента в приложении
// и историю принудительных переходов.
package navigation

import (
	"strings"
	"sync"
)

// Пути страниц приложения.
const (
	PathRoot           = "/"
	PathLogin          = "/login"
	PathRegister       = "/register"
	PathForgotPassword = "/forgot-password"
	PathResetPassword  = "/reset-password"
	PathChat           = "/chat"
	PathPlans          = "/plans"
	PathAccount        = "/account"
	PathAdmin          = "/admin"
)

// Kind вид перехода.
type Kind string

const (
	// KindVisit — переход по действию пользователя.
	KindVisit Kind = "visit"
	// KindRedirect — замена текущего положения (редирект).
	KindRedirect Kind = "redirect"
	// KindReload — полный сброс клиента с переходом на страницу.
	KindReload Kind = "reload"
)

// Transition запись о переходе.
type Transition struct {
	From string
	To   string
	Kind Kind
}

// Navigator потокобезопасный трекер положения клиента.
type Navigator struct {
	mu        sync.Mutex
	location  string
	history   []Transition
	listeners []func(Transition)
}

// New создаёт Navigator на странице start.
func New(start string) *Navigator {
	if start == "" {
		start = PathRoot
	}
	return &Navigator{location: start}
}

// Location текущий путь.
func (n *Navigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

// OnChange регистрирует обработчик, вызываемый после каждого перехода.
func (n *Navigator) OnChange(fn func(Transition)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, fn)
}

// Visit переход по действию пользователя.
func (n *Navigator) Visit(path string) {
	n.move(path, KindVisit)
}

// Redirect принудительный переход с заменой текущего положения.
func (n *Navigator) Redirect(path string) {
	n.move(path, KindRedirect)
}

// Reload полный сброс клиента на страницу path.
func (n *Navigator) Reload(path string) {
	n.move(path, KindReload)
}

// RedirectToLogin переводит на страницу входа, если клиент ещё не на ней.
// Возвращает true, если переход состоялся.
func (n *Navigator) RedirectToLogin() bool {
	n.mu.Lock()
	if IsLogin(n.location) {
		n.mu.Unlock()
		return false
	}
	t := n.record(PathLogin, KindRedirect)
	listeners := n.snapshotListeners()
	n.mu.Unlock()

	notify(listeners, t)
	return true
}

// History возвращает копию истории переходов.
func (n *Navigator) History() []Transition {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Transition, len(n.history))
	copy(out, n.history)
	return out
}

// Redirects возвращает только принудительные переходы (redirect и reload).
func (n *Navigator) Redirects() []Transition {
	var out []Transition
	for _, t := range n.History() {
		if t.Kind != KindVisit {
			out = append(out, t)
		}
	}
	return out
}

func (n *Navigator) move(path string, kind Kind) {
	n.mu.Lock()
	t := n.record(path, kind)
	listeners := n.snapshotListeners()
	n.mu.Unlock()

	notify(listeners, t)
}

// record вызывается под мьютексом.
func (n *Navigator) record(path string, kind Kind) Transition {
	t := Transition{From: n.location, To: path, Kind: kind}
	n.location = path
	n.history = append(n.history, t)
	return t
}

func (n *Navigator) snapshotListeners() []func(Transition) {
	out := make([]func(Transition), len(n.listeners))
	copy(out, n.listeners)
	return out
}

func notify(listeners []func(Transition), t Transition) {
	for _, fn := range listeners {
		fn(t)
	}
}

// IsLogin сообщает, является ли path страницей входа.
func IsLogin(path string) bool {
	return strings.HasPrefix(path, PathLogin)
}
