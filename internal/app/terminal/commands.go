package terminal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/magabrotheeeer/bookchat/internal/lib/apierr"
	"github.com/magabrotheeeer/bookchat/internal/lib/usage"
	"github.com/magabrotheeeer/bookchat/internal/models"
	"github.com/magabrotheeeer/bookchat/internal/navigation"
	"github.com/magabrotheeeer/bookchat/internal/services/authforms"
	"github.com/magabrotheeeer/bookchat/internal/services/chat"
	"github.com/magabrotheeeer/bookchat/internal/services/guard"
	"github.com/magabrotheeeer/bookchat/internal/services/plans"
)

type command struct {
	usage   string
	minArgs int
	// page страница, на которой выполняется команда, пустая строка означает команду без перехода.
	page string
	req  guard.Requirement
	run  func(s *Shell, ctx context.Context, args []string) error
}

const helpText = `commands:
  login <email> <password>        sign in
  logout                          sign out
  register <email> <name> <pass>  create an account
  forgot <email>                  request a password reset email
  reset <token> <new password>    set a new password
  whoami                          show the current session
  chat <text>                     ask the assistant
  new                             start a new conversation
  history                         show the conversation
  plans                           list plans
  subscribe <code> [card MM/YY cvv]
  account                         show account and usage
  passwd <old> <new>              change password
  admin users|logs|plans          admin dashboard
  admin create <email> <password> [role]
  admin update <id> <role> [name]
  admin delete <id>
  quit
`

var commands = map[string]command{
	"help": {usage: "help", run: func(s *Shell, _ context.Context, _ []string) error {
		s.printf("%s", helpText)
		return nil
	}},
	"quit": {usage: "quit", run: func(*Shell, context.Context, []string) error { return ErrQuit }},
	"exit": {usage: "exit", run: func(*Shell, context.Context, []string) error { return ErrQuit }},
	"whoami": {usage: "whoami", run: func(s *Shell, _ context.Context, _ []string) error {
		s.printf("%s\n", s.whoami())
		return nil
	}},
	"login": {
		usage:   "login <email> <password>",
		minArgs: 2,
		run:     (*Shell).login,
	},
	"logout": {usage: "logout", run: func(s *Shell, ctx context.Context, _ []string) error {
		s.session.Logout(ctx)
		s.printf("signed out\n")
		return nil
	}},
	"register": {
		usage:   "register <email> <name> <password>",
		minArgs: 3,
		page:    navigation.PathRegister,
		run:     (*Shell).register,
	},
	"forgot": {
		usage:   "forgot <email>",
		minArgs: 1,
		page:    navigation.PathForgotPassword,
		run:     (*Shell).forgot,
	},
	"reset": {
		usage:   "reset <token> <new password>",
		minArgs: 2,
		page:    navigation.PathResetPassword,
		run:     (*Shell).reset,
	},
	"chat": {
		usage:   "chat <text>",
		minArgs: 1,
		page:    navigation.PathChat,
		req:     guard.RequirePlan,
		run:     (*Shell).send,
	},
	"new": {
		usage: "new",
		page:  navigation.PathChat,
		req:   guard.RequirePlan,
		run:   (*Shell).newConversation,
	},
	"history": {
		usage: "history",
		page:  navigation.PathChat,
		req:   guard.RequirePlan,
		run: func(s *Shell, ctx context.Context, _ []string) error {
			s.printTranscript(s.chatController(ctx).Snapshot().Messages)
			return nil
		},
	},
	"plans": {
		usage: "plans",
		page:  navigation.PathPlans,
		req:   guard.RequireAuthenticated,
		run:   (*Shell).listPlans,
	},
	"subscribe": {
		usage:   "subscribe <code> [card MM/YY cvv]",
		minArgs: 1,
		page:    navigation.PathPlans,
		req:     guard.RequireAuthenticated,
		run:     (*Shell).subscribe,
	},
	"account": {
		usage: "account",
		page:  navigation.PathAccount,
		req:   guard.RequireAuthenticated,
		run:   (*Shell).showAccount,
	},
	"passwd": {
		usage:   "passwd <old> <new>",
		minArgs: 2,
		page:    navigation.PathAccount,
		req:     guard.RequireAuthenticated,
		run:     (*Shell).passwd,
	},
	"admin": {
		usage:   "admin users|logs|plans|create|update|delete",
		minArgs: 1,
		page:    navigation.PathAdmin,
		req:     guard.RequireAdmin,
		run:     (*Shell).admin,
	},
}

func (s *Shell) login(ctx context.Context, args []string) error {
	res, err := s.forms.Login(ctx, authforms.LoginForm{Email: args[0], Password: args[1]}, s.nav.Location())
	if err != nil {
		return errors.New(authforms.LoginError(err))
	}
	s.printf("%s\n", s.whoami())
	s.printf("now on %s\n", res.Target)
	return nil
}

func (s *Shell) register(ctx context.Context, args []string) error {
	res, err := s.forms.Register(ctx, models.RegisterRequest{
		Email:    args[0],
		Name:     args[1],
		Password: args[2],
	})
	if err != nil {
		return errors.New(apierr.Message(err, "Registration failed."))
	}
	s.printf("%s\n", res.Message)
	return nil
}

func (s *Shell) forgot(ctx context.Context, args []string) error {
	res, err := s.forms.ForgotPassword(ctx, authforms.ForgotForm{Email: args[0]})
	if err != nil {
		return errors.New(apierr.Message(err, "Failed to send the reset email."))
	}
	s.printf("%s\n", res.Message)
	return nil
}

func (s *Shell) reset(ctx context.Context, args []string) error {
	res, err := s.forms.ResetPassword(ctx, models.ResetPasswordRequest{Token: args[0], NewPassword: args[1]})
	if err != nil {
		return errors.New(apierr.Message(err, "Failed to reset the password."))
	}
	s.printf("%s\n", res.Message)
	return nil
}

func (s *Shell) send(ctx context.Context, args []string) error {
	ctrl := s.chatController(ctx)
	before := len(ctrl.Snapshot().Messages)

	if err := ctrl.Send(ctx, strings.Join(args, " ")); err != nil {
		if errors.Is(err, chat.ErrLocked) {
			return errors.New("message limit reached for your plan, see: plans")
		}
		return err
	}

	msgs := ctrl.Snapshot().Messages
	if len(msgs) > before {
		// Реплика пользователя уже на экране.
		s.printTranscript(msgs[before+1:])
	}
	return nil
}

func (s *Shell) newConversation(ctx context.Context, _ []string) error {
	ctrl := s.chatController(ctx)
	if err := ctrl.NewConversation(ctx); err != nil {
		return err
	}
	s.printTranscript(ctrl.Snapshot().Messages)
	return nil
}

func (s *Shell) printTranscript(msgs []models.Message) {
	for _, m := range msgs {
		who := "assistant"
		if m.Role == models.MessageRoleUser {
			who = "you"
		}
		s.printf("%s: %s\n", who, m.Content)
	}
}

func (s *Shell) listPlans(_ context.Context, _ []string) error {
	current := s.session.Snapshot().Plan()

	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tPRICE\tMESSAGES\t")
	for _, p := range s.plans.Plans() {
		marker := ""
		if p.Code == current {
			marker = "current"
		}
		messages := usage.UnlimitedLabel
		if p.MessagesLimit != nil {
			messages = fmt.Sprintf("%d/%s", *p.MessagesLimit, p.Period)
		}
		fmt.Fprintf(tw, "%s\t%.2f %s\t%s\t%s\n", p.Code, float64(p.PriceCents)/100, p.Currency, messages, marker)
	}
	return tw.Flush()
}

func (s *Shell) subscribe(ctx context.Context, args []string) error {
	res, err := s.plans.Select(ctx, args[0])
	if err != nil {
		return s.planError(err)
	}
	if !res.PaymentRequired {
		s.printf("%s\n", res.Message)
		return nil
	}
	if len(args) < 4 {
		return fmt.Errorf("%s requires payment: subscribe %s <card> <MM/YY> <cvv>", res.Plan.Name, res.Plan.Code)
	}

	res, err = s.plans.Pay(ctx, args[0], plans.PaymentForm{
		CardNumber: args[1],
		Expiry:     args[2],
		CVV:        args[3],
	})
	if err != nil {
		return s.planError(err)
	}
	s.printf("%s\n", res.Message)
	return nil
}

func (s *Shell) planError(err error) error {
	if errors.Is(err, plans.ErrUnknownPlan) {
		return errors.New("unknown plan, see: plans")
	}
	return errors.New(apierr.Message(err, "Failed to activate the plan."))
}

func (s *Shell) showAccount(ctx context.Context, _ []string) error {
	page, err := s.account.Load(ctx)
	if err != nil {
		return errors.New(apierr.Message(err, "Failed to load account data."))
	}

	s.printf("name:     %s\n", page.User.DisplayName())
	s.printf("email:    %s\n", page.User.Email)
	s.printf("role:     %s\n", page.User.Role)
	if page.Overview != nil && page.Overview.Subscription != nil {
		s.printf("plan:     %s (%s)\n", page.Overview.Subscription.Plan, page.Overview.Subscription.Status)
	} else {
		s.printf("plan:     none\n")
	}
	if page.Usage.Unlimited {
		s.printf("messages: %d / %s\n", page.Usage.Used, page.LimitLabel)
	} else {
		s.printf("messages: %d / %s (%.0f%%)\n", page.Usage.Used, page.LimitLabel, page.Usage.Percent)
	}
	if page.Usage.NearLimit {
		s.printf("you are close to your plan limit\n")
	}
	if page.ShowUpgrade {
		s.printf("upgrade with: plans\n")
	}
	return nil
}

func (s *Shell) passwd(ctx context.Context, args []string) error {
	fb := s.account.ChangePassword(ctx, args[0], args[1])
	if !fb.OK {
		return errors.New(fb.Message)
	}
	s.printf("%s\n", fb.Message)
	return nil
}

func (s *Shell) admin(ctx context.Context, args []string) error {
	switch args[0] {
	case "users":
		if err := s.dashboard.Refresh(ctx); err != nil {
			return errors.New(apierr.Message(err, "Failed to load the dashboard."))
		}
		snap := s.dashboard.Snapshot()
		s.printf("users: %d  admins: %d  active subscriptions: %d\n",
			snap.Stats.TotalUsers, snap.Stats.AdminCount, snap.Stats.ActiveSubs)

		tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tEMAIL\tROLE\tPLAN")
		for _, u := range snap.Users {
			plan := "-"
			if u.HasActivePlan {
				plan = u.PlanName
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Role, plan)
		}
		return tw.Flush()
	case "logs":
		if err := s.dashboard.Refresh(ctx); err != nil {
			return errors.New(apierr.Message(err, "Failed to load the dashboard."))
		}
		tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tACTION\tSTATUS\tDESCRIPTION")
		for _, l := range s.dashboard.Snapshot().Logs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.CreatedAt.Time.Format("2006-01-02 15:04"), l.ActionType, l.Status, l.Description)
		}
		return tw.Flush()
	case "plans":
		list, err := s.dashboard.Plans(ctx)
		if err != nil {
			return errors.New(apierr.Message(err, "Failed to load plans."))
		}
		for _, p := range list {
			s.printf("%s  %.2f %s\n", p.Code, float64(p.PriceCents)/100, p.Currency)
		}
		return nil
	case "create":
		if len(args) < 3 {
			return errors.New("usage: admin create <email> <password> [role]")
		}
		req := models.AdminUserCreate{Email: args[1], Password: args[2]}
		if len(args) > 3 {
			req.Role = models.Role(args[3])
		}
		if err := s.dashboard.CreateUser(ctx, req); err != nil {
			return s.noticeError(err)
		}
		s.printf("user created\n")
		return nil
	case "update":
		if len(args) < 3 {
			return errors.New("usage: admin update <id> <role> [name]")
		}
		req := models.AdminUserUpdate{Role: models.Role(args[2]), Name: strings.Join(args[3:], " ")}
		if req.Name == "" {
			name, err := s.userName(ctx, args[1])
			if err != nil {
				return err
			}
			req.Name = name
		}
		if err := s.dashboard.UpdateUser(ctx, args[1], req); err != nil {
			return s.noticeError(err)
		}
		s.printf("user updated\n")
		return nil
	case "delete":
		if len(args) < 2 {
			return errors.New("usage: admin delete <id>")
		}
		if err := s.dashboard.DeleteUser(ctx, args[1]); err != nil {
			return s.noticeError(err)
		}
		s.printf("user deleted\n")
		return nil
	default:
		return errors.New("usage: admin users|logs|plans|create|update|delete")
	}
}

// userName возвращает текущее имя пользователя, чтобы смена роли его не стирала.
func (s *Shell) userName(ctx context.Context, id string) (string, error) {
	if err := s.dashboard.Refresh(ctx); err != nil {
		return "", errors.New(apierr.Message(err, "Failed to load the dashboard."))
	}
	for _, u := range s.dashboard.Snapshot().Users {
		if u.ID == id {
			return u.Name, nil
		}
	}
	return "", nil
}

func (s *Shell) noticeError(err error) error {
	if n := s.dashboard.Snapshot().Notice; n != nil {
		return errors.New(n.Message)
	}
	return errors.New(apierr.Message(err, "Operation failed."))
}
