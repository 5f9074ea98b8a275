package bookchat

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/magabrotheeeer/bookchat/internal/navigation"
	"github.com/magabrotheeeer/bookchat/internal/services/admin"
	"github.com/magabrotheeeer/bookchat/internal/services/chat"
)

// chatPage держит контроллер чата, пока клиент находится на странице чата.
// Уход со страницы, сброс клиента или переход на вход начинают страницу заново:
// транскрипт снова начинается с приветствия, блокировка снимается.
type chatPage struct {
	api      chat.Backend
	convs    chat.ConversationStore
	overview chat.OverviewRefresher
	log      *slog.Logger

	mu   sync.Mutex
	ctrl *chat.Controller
}

func (p *chatPage) controller(ctx context.Context) *chat.Controller {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == nil {
		p.ctrl = chat.New(ctx, p.api, p.convs, p.log, chat.WithOverviewRefresher(p.overview))
	}
	return p.ctrl
}

func (p *chatPage) Snapshot(ctx context.Context) chat.Snapshot {
	return p.controller(ctx).Snapshot()
}

func (p *chatPage) Send(ctx context.Context, text string) error {
	return p.controller(ctx).Send(ctx, text)
}

func (p *chatPage) NewConversation(ctx context.Context) error {
	return p.controller(ctx).NewConversation(ctx)
}

func (p *chatPage) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ctrl = nil
}

// adminPage привязывает опрос панели к пребыванию клиента на странице панели.
type adminPage struct {
	*admin.Dashboard
	// ctx живёт столько же, сколько приложение; опрос не должен
	// обрываться с окончанием запроса, который его запустил.
	ctx context.Context
}

// Open запускает опрос, если он ещё не идёт, и возвращает данные панели.
func (p *adminPage) Open(_ context.Context) admin.Snapshot {
	p.Start(p.ctx)
	return p.Snapshot()
}

// onNavigate завершает жизнь страниц, которые клиент покинул.
func (a *App) onNavigate(t navigation.Transition) {
	leftChat := onPage(t.From, navigation.PathChat) && !onPage(t.To, navigation.PathChat)
	if leftChat || t.Kind == navigation.KindReload || navigation.IsLogin(t.To) {
		a.chat.reset()
	}

	if onPage(t.From, navigation.PathAdmin) && !onPage(t.To, navigation.PathAdmin) {
		// Переход может случиться внутри опроса (ответ 401), а Stop ждёт
		// завершения горутины опроса.
		go a.admin.Stop()
	}
}

func onPage(path, page string) bool {
	return path == page || strings.HasPrefix(path, page+"/")
}
