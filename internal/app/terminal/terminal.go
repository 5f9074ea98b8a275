// Package terminal реализует интерактивный клиент для терминала.
//
// Shell использует те же сессию, проверку доступа и контроллеры страниц,
// что и web-оболочка. Каждая команда относится к странице приложения и
// выполняется только если страница доступна текущей сессии.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/bookchat/internal/apiclient"
	"github.com/magabrotheeeer/bookchat/internal/config"
	"github.com/magabrotheeeer/bookchat/internal/lib/sl"
	"github.com/magabrotheeeer/bookchat/internal/navigation"
	"github.com/magabrotheeeer/bookchat/internal/services/account"
	"github.com/magabrotheeeer/bookchat/internal/services/admin"
	"github.com/magabrotheeeer/bookchat/internal/services/authforms"
	"github.com/magabrotheeeer/bookchat/internal/services/chat"
	"github.com/magabrotheeeer/bookchat/internal/services/guard"
	"github.com/magabrotheeeer/bookchat/internal/services/plans"
	"github.com/magabrotheeeer/bookchat/internal/services/session"
	"github.com/magabrotheeeer/bookchat/internal/storage"
)

const prompt = "bookchat> "

// ErrQuit команда выхода.
var ErrQuit = errors.New("quit")

// Shell терминальный клиент.
type Shell struct {
	out   io.Writer
	log   *slog.Logger
	store storage.Store

	api       *apiclient.Client
	creds     *storage.Credentials
	nav       *navigation.Navigator
	session   *session.Store
	forms     *authforms.Service
	plans     *plans.Service
	account   *account.Service
	dashboard *admin.Dashboard

	// chat живёт, пока клиент на странице чата.
	chat *chat.Controller
}

// New собирает клиент поверх хранилища из cfg.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger, out io.Writer) (*Shell, error) {
	const op = "terminal.New"

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	creds := storage.NewCredentials(store)

	api := apiclient.New(cfg.API, creds, log)
	nav := navigation.New(navigation.PathRoot)
	sess := session.New(api, creds, nav, log)
	api.OnUnauthorized(sess.HandleUnauthorized)

	s := &Shell{
		out:       out,
		log:       log,
		store:     store,
		api:       api,
		creds:     creds,
		nav:       nav,
		session:   sess,
		forms:     authforms.New(api, sess, nav, log),
		plans:     plans.New(api, sess, log),
		account:   account.New(api, log),
		dashboard: admin.New(api, cfg.PollInterval, log),
	}
	nav.OnChange(s.onNavigate)
	return s, nil
}

// Close освобождает хранилище.
func (s *Shell) Close() error {
	if c, ok := s.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Run проверяет сохранённую сессию и выполняет команды из in до quit,
// конца ввода или отмены ctx.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	s.session.Refresh(ctx)
	s.printf("%s\n", s.whoami())

	scanner := bufio.NewScanner(in)
	for {
		s.printf("%s", prompt)
		if !scanner.Scan() {
			s.printf("\n")
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := s.Exec(ctx, scanner.Text())
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			s.printf("error: %s\n", err)
		}
	}
}

// Exec выполняет одну команду.
func (s *Shell) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q, type help", name)
	}
	if len(args) < cmd.minArgs {
		return fmt.Errorf("usage: %s", cmd.usage)
	}
	if cmd.page != "" && !s.enter(cmd.page, cmd.req) {
		return nil
	}
	return cmd.run(s, ctx, args)
}

// enter переходит на страницу page, если она доступна.
func (s *Shell) enter(page string, req guard.Requirement) bool {
	d := guard.Decide(s.session.Snapshot(), req, page)
	switch d.Action {
	case guard.Placeholder:
		s.printf("session is still loading, try again\n")
		return false
	case guard.Redirect:
		s.nav.Redirect(d.Target)
		if navigation.IsLogin(d.Target) {
			s.printf("please sign in first: login <email> <password>\n")
		} else {
			s.printf("%s is not available for your account\n", page)
		}
		return false
	}
	if s.nav.Location() != page {
		s.nav.Visit(page)
	}
	return true
}

func (s *Shell) onNavigate(t navigation.Transition) {
	if t.From == navigation.PathChat && t.To != navigation.PathChat {
		s.chat = nil
	}
	if t.Kind == navigation.KindReload || navigation.IsLogin(t.To) {
		s.chat = nil
	}
}

func (s *Shell) chatController(ctx context.Context) *chat.Controller {
	if s.chat == nil {
		s.chat = chat.New(ctx, s.api, s.creds, s.log, chat.WithOverviewRefresher(s.session))
	}
	return s.chat
}

func (s *Shell) whoami() string {
	st := s.session.Snapshot()
	if !st.Authenticated() {
		return "not signed in"
	}
	plan := st.Plan()
	if plan == "" {
		plan = "no plan"
	}
	return fmt.Sprintf("signed in as %s (%s, %s)", st.User.Email, st.Role(), plan)
}

func (s *Shell) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(s.out, format, args...); err != nil {
		s.log.Debug("failed to write output", sl.Err(err))
	}
}
