package bot

import (
	"context"
	"errors"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/verifybot/core/config"
	coretelegram "github.com/m3rciful/verifybot/core/telegram"
	"github.com/m3rciful/verifybot/core/telegram/callbacks"
	"github.com/m3rciful/verifybot/core/telegram/commands"
	"github.com/m3rciful/verifybot/core/telegram/middleware"
	"github.com/m3rciful/verifybot/core/telegram/sender"
	"github.com/m3rciful/verifybot/internal/audit"
	"github.com/m3rciful/verifybot/internal/moderation"
	"github.com/m3rciful/verifybot/internal/verify"

	"github.com/jmoiron/sqlx"
)

// App composes the verification workflow over the Telegram transport.
type App struct {
	cfg *coreconfig.Config

	dispatcher *sender.Dispatcher
	notifier   *Notifier
	machine    *verify.Machine
	gateway    *moderation.Gateway
	registry   *coretelegram.Registry
}

// NewApp wires the full application graph. db may be nil, in which case
// moderation decisions are not persisted.
func NewApp(cfg *coreconfig.Config, db *sqlx.DB) *App {
	dispatcher := sender.NewDispatcher(sender.Options{})
	notifier := NewNotifier(dispatcher)

	store := verify.NewMemoryStore()
	recorder := audit.NewRecorder(db)
	gateway := moderation.NewGateway(cfg.Moderation.ModeratorID, store, notifier, recorder)
	machine := verify.NewMachine(store, notifier, gateway)

	app := &App{
		cfg:        cfg,
		dispatcher: dispatcher,
		notifier:   notifier,
		machine:    machine,
		gateway:    gateway,
		registry:   coretelegram.NewRegistry(),
	}
	app.registerCommands()
	app.registerCallbacks()
	return app
}

// TelegramRunOptions assembles the bot run configuration.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	if a.cfg == nil {
		return coretelegram.RunOptions{}, errors.New("bot: nil config")
	}

	routes := []coretelegram.Route{
		{Endpoint: tele.OnContact, Handler: a.wrap("contact", a.onContact)},
		{Endpoint: tele.OnPhoto, Handler: a.wrap("photo", a.onPhoto)},
		{Endpoint: tele.OnText, Handler: a.wrap("text", a.onText)},
		{Endpoint: tele.OnCallback, Handler: a.wrap("callback", a.onCallback)},
	}
	for name, cmd := range a.registry.Commands() {
		routes = append(routes, coretelegram.Route{Endpoint: name, Handler: cmd.Handler})
	}

	return coretelegram.RunOptions{
		Config:      a.cfg,
		Registry:    a.registry,
		Dispatcher:  a.dispatcher,
		Middlewares: coretelegram.DefaultMiddlewares(),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			a.notifier.Bind(rt.Bot)
			return nil
		},
	}, nil
}

func (a *App) registerCommands() {
	a.registry.RegisterCommand("/start", commands.Command{
		Handler:     a.wrap("start", a.onStart),
		Description: "Welcome and instructions",
	})
	a.registry.RegisterCommand("/verify", commands.Command{
		Handler:     a.wrap("verify", a.onVerify),
		Description: "Start purchase verification",
	})
	a.registry.RegisterCommand("/cancel", commands.Command{
		Handler:     a.wrap("cancel", a.onCancel),
		Description: "Cancel the current verification",
	})
	a.registry.RegisterCommand("/status", commands.Command{
		Handler:     a.wrap("status", a.onStatus),
		Description: "Show your verification status",
	})

	adminGate := middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		AdminID: a.cfg.Moderation.ModeratorID,
	})
	a.registry.RegisterCommand("/pending", commands.Command{
		Handler:     adminGate(a.wrap("pending", a.onPending)),
		Description: "List submissions awaiting review",
		AdminOnly:   true,
		Hidden:      true,
	})
}

func (a *App) registerCallbacks() {
	_ = a.registry.RegisterCallback(callbackApprove, a.wrap("callback.approve", a.decisionCallback(moderation.DecisionApprove)))
	_ = a.registry.RegisterCallback(callbackReject, a.wrap("callback.reject", a.decisionCallback(moderation.DecisionReject)))
}

func (a *App) decisionCallback(decision moderation.Decision) func(ctx context.Context, c tele.Context) error {
	return func(ctx context.Context, c tele.Context) error {
		targetID, err := callbacks.PayloadInt64(c)
		if err != nil {
			return c.Respond(&tele.CallbackResponse{Text: "Malformed action"})
		}
		err = a.gateway.Resolve(ctx, c.Sender().ID, decision, targetID)
		switch {
		case errors.Is(err, moderation.ErrUnauthorized):
			return c.Respond(&tele.CallbackResponse{Text: "Not allowed"})
		case errors.Is(err, moderation.ErrNotFound):
			return c.Respond(&tele.CallbackResponse{Text: "Already resolved"})
		case err != nil:
			return err
		}
		return c.Respond(&tele.CallbackResponse{Text: "Done"})
	}
}
