// Package admin реализует панель администратора: список пользователей,
// журнал действий, производную статистику и операции над пользователями.
//
// Данные панели обновляются периодическим опросом backend. Опрос привязан
// к времени жизни страницы: Start запускает его, stop (или отмена контекста)
// останавливает без висящих таймеров.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator"
	"golang.org/x/sync/errgroup"

	"github.com/magabrotheeeer/bookchat/internal/lib/apierr"
	"github.com/magabrotheeeer/bookchat/internal/lib/sl"
	"github.com/magabrotheeeer/bookchat/internal/lib/validation"
	"github.com/magabrotheeeer/bookchat/internal/models"
)

// DefaultPollInterval интервал опроса по умолчанию.
const DefaultPollInterval = 30 * time.Second

// Backend вызовы backend, нужные панели.
type Backend interface {
	ListUsers(ctx context.Context) ([]models.AdminUser, error)
	ListLogs(ctx context.Context) ([]models.ActionLog, error)
	ListPlans(ctx context.Context) ([]models.Plan, error)
	CreateUser(ctx context.Context, req models.AdminUserCreate) (*models.AdminUser, error)
	UpdateUser(ctx context.Context, id string, req models.AdminUserUpdate) error
	DeleteUser(ctx context.Context, id string) error
}

// Stats статистика, посчитанная по списку пользователей.
type Stats struct {
	TotalUsers int `json:"total_users"`
	AdminCount int `json:"admin_count"`
	ActiveSubs int `json:"active_subs"`
}

// ComputeStats считает Stats фильтрацией списка.
func ComputeStats(users []models.AdminUser) Stats {
	st := Stats{TotalUsers: len(users)}
	for _, u := range users {
		if u.Role.IsAdmin() {
			st.AdminCount++
		}
		if u.HasActivePlan {
			st.ActiveSubs++
		}
	}
	return st
}

// Notice блокирующее уведомление об ошибке операции.
type Notice struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// Snapshot состояние панели.
type Snapshot struct {
	Users     []models.AdminUser `json:"users"`
	Logs      []models.ActionLog `json:"logs"`
	Stats     Stats              `json:"stats"`
	Loading   bool               `json:"loading"`
	Polling   bool               `json:"polling"`
	Notice    *Notice            `json:"notice,omitempty"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Dashboard контроллер панели администратора.
type Dashboard struct {
	api      Backend
	interval time.Duration
	validate *validator.Validate
	log      *slog.Logger

	mu        sync.Mutex
	users     []models.AdminUser
	logs      []models.ActionLog
	loading   bool
	notice    *Notice
	updatedAt time.Time

	// seq номер последнего запущенного обновления, applied номер последнего применённого.
	seq     uint64
	applied uint64
	stop    func()
}

// New создаёт Dashboard. interval <= 0 заменяется на DefaultPollInterval.
func New(api Backend, interval time.Duration, log *slog.Logger) *Dashboard {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Dashboard{
		api:      api,
		interval: interval,
		validate: validation.New(),
		log:      log,
		loading:  true,
	}
}

// Snapshot возвращает копию состояния.
func (d *Dashboard) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	users := make([]models.AdminUser, len(d.users))
	copy(users, d.users)
	logs := make([]models.ActionLog, len(d.logs))
	copy(logs, d.logs)
	var notice *Notice
	if d.notice != nil {
		n := *d.notice
		notice = &n
	}
	return Snapshot{
		Users:     users,
		Logs:      logs,
		Stats:     ComputeStats(users),
		Loading:   d.loading,
		Polling:   d.stop != nil,
		Notice:    notice,
		UpdatedAt: d.updatedAt,
	}
}

// Refresh загружает пользователей и журнал параллельно. При ошибке
// показанные данные не меняются. Результат более раннего обновления,
// пришедший после более позднего, отбрасывается.
func (d *Dashboard) Refresh(ctx context.Context) error {
	const op = "admin.Refresh"

	d.mu.Lock()
	d.seq++
	seq := d.seq
	d.mu.Unlock()

	var (
		users []models.AdminUser
		logs  []models.ActionLog
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = d.api.ListUsers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		logs, err = d.api.ListLogs(gctx)
		return err
	})
	err := g.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.loading = false
	if err != nil {
		d.log.Error("failed to refresh dashboard", sl.Op(op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if seq < d.applied {
		d.log.Debug("dropping stale dashboard refresh", slog.Uint64("seq", seq), slog.Uint64("applied", d.applied))
		return nil
	}
	d.applied = seq
	d.users = users
	d.logs = logs
	d.updatedAt = time.Now()
	return nil
}

// Start загружает данные и запускает периодический опрос.
// Возвращаемая stop останавливает опрос и дожидается его горутины;
// повторные вызовы stop безопасны. Если опрос уже запущен, Start
// возвращает его stop.
func (d *Dashboard) Start(ctx context.Context) (stop func()) {
	d.mu.Lock()
	if d.stop != nil {
		stop = d.stop
		d.mu.Unlock()
		return stop
	}
	pollCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	var once sync.Once
	stop = func() {
		once.Do(func() {
			cancel()
			<-done
			d.mu.Lock()
			d.stop = nil
			d.mu.Unlock()
		})
	}
	d.stop = stop
	d.mu.Unlock()

	if err := d.Refresh(pollCtx); err != nil {
		_ = d.fail("admin.Start", "Failed to load dashboard", err)
	}

	go func() {
		defer close(done)
		d.poll(pollCtx)
	}()

	d.log.Info("admin polling started", slog.Duration("interval", d.interval))
	return stop
}

// Stop останавливает опрос, если он запущен.
func (d *Dashboard) Stop() {
	d.mu.Lock()
	stop := d.stop
	d.mu.Unlock()
	if stop != nil {
		stop()
	}
}

func (d *Dashboard) poll(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.log.Info("admin polling stopped")
			return
		case <-ticker.C:
			_ = d.Refresh(ctx)
		}
	}
}

// CreateUser создаёт пользователя и перезагружает список.
func (d *Dashboard) CreateUser(ctx context.Context, req models.AdminUserCreate) error {
	const op = "admin.CreateUser"
	if req.Role == "" {
		req.Role = models.RoleUser
	}
	if err := d.validate.Struct(req); err != nil {
		return d.fail(op, "Failed to create user", apierr.Validation(validation.Message(err)))
	}
	if _, err := d.api.CreateUser(ctx, req); err != nil {
		return d.fail(op, "Failed to create user", err)
	}
	return d.succeed(ctx, op)
}

// UpdateUser меняет имя, роль и пароль пользователя id и перезагружает список.
// Пустой пароль оставляет текущий.
func (d *Dashboard) UpdateUser(ctx context.Context, id string, req models.AdminUserUpdate) error {
	const op = "admin.UpdateUser"
	if err := d.validate.Struct(req); err != nil {
		return d.fail(op, "Failed to save", apierr.Validation(validation.Message(err)))
	}
	if err := d.api.UpdateUser(ctx, id, req); err != nil {
		return d.fail(op, "Failed to save", err)
	}
	return d.succeed(ctx, op)
}

// DeleteUser удаляет пользователя id и перезагружает список.
func (d *Dashboard) DeleteUser(ctx context.Context, id string) error {
	const op = "admin.DeleteUser"
	if err := d.api.DeleteUser(ctx, id); err != nil {
		return d.fail(op, "Failed to delete", err)
	}
	return d.succeed(ctx, op)
}

// Plans список тарифных планов backend.
func (d *Dashboard) Plans(ctx context.Context) ([]models.Plan, error) {
	const op = "admin.Plans"
	plans, err := d.api.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plans, nil
}

// DismissNotice скрывает уведомление.
func (d *Dashboard) DismissNotice() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notice = nil
}

func (d *Dashboard) fail(op, prefix string, err error) error {
	d.log.Error("admin operation failed", sl.Op(op), sl.Err(err))
	d.mu.Lock()
	d.notice = &Notice{Error: true, Message: prefix + ": " + apierr.Message(err, err.Error())}
	d.mu.Unlock()
	return fmt.Errorf("%s: %w", op, err)
}

func (d *Dashboard) succeed(ctx context.Context, op string) error {
	d.mu.Lock()
	d.notice = nil
	d.mu.Unlock()
	if err := d.Refresh(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
