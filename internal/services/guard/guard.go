// Package guard решает, можно ли показать страницу при текущем состоянии сессии.
package guard

import (
	"github.com/magabrotheeeer/bookchat/internal/navigation"
	"github.com/magabrotheeeer/bookchat/internal/services/session"
)

// Requirement требование страницы к сессии.
type Requirement int

const (
	// None — публичная страница.
	None Requirement = iota
	// RequireAuthenticated — нужен вход.
	RequireAuthenticated
	// RequireAdmin — нужен вход с ролью admin.
	RequireAdmin
	// RequirePlan — страница чата. План носит справочный характер,
	// лимиты проверяет backend, поэтому достаточно входа.
	RequirePlan
)

func (r Requirement) String() string {
	switch r {
	case RequireAuthenticated:
		return "authenticated"
	case RequireAdmin:
		return "admin"
	case RequirePlan:
		return "plan"
	default:
		return "none"
	}
}

// Action что делать со страницей.
type Action int

const (
	// Render — показать страницу.
	Render Action = iota
	// Placeholder — сессия ещё загружается, показать заглушку.
	Placeholder
	// Redirect — перейти на Target.
	Redirect
)

// Decision результат проверки.
type Decision struct {
	Action Action
	Target string
	// From страница, на которую вернуть пользователя после входа.
	From string
}

// Decide применяет требование req к состоянию st для страницы location.
func Decide(st session.State, req Requirement, location string) Decision {
	if req == None {
		return Decision{Action: Render}
	}
	switch st.Status {
	case session.StatusLoading:
		return Decision{Action: Placeholder}
	case session.StatusUnauthenticated:
		return Decision{Action: Redirect, Target: navigation.PathLogin, From: location}
	}
	if req == RequireAdmin && !st.Role().IsAdmin() {
		return Decision{Action: Redirect, Target: navigation.PathChat}
	}
	return Decision{Action: Render}
}
