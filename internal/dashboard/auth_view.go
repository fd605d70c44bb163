package dashboard

import (
	"context"
	"errors"
	"fmt"

	dasherrors "github.com/vango-dev/salesdash/internal/errors"
	"github.com/vango-dev/salesdash/pkg/authmw"
	"github.com/vango-dev/salesdash/pkg/form"
	"github.com/vango-dev/salesdash/pkg/live"
	"github.com/vango-dev/salesdash/pkg/session"
	"github.com/vango-dev/salesdash/pkg/toast"
)

const viewAuth = "auth"

// Auth tabs.
const (
	tabLogin    = "login"
	tabRegister = "register"
)

const registeredMessage = "Registration successful! Please login."

var errNoSession = errors.New("dashboard: no browser session")

// authView is the sign-in page.
type authView struct {
	base

	Tab      string
	Login    formState
	Register formState
}

func newAuthView(s *Server, _ string) live.View {
	return &authView{base: base{srv: s}, Tab: tabLogin}
}

func (v *authView) Mount(ctx *live.Ctx) error {
	v.attach(ctx)
	return nil
}

func (v *authView) HandleEvent(_ *live.Ctx, ev live.Event) error {
	return v.handle(ev)
}

func (v *authView) handle(ev live.Event) error {
	switch ev.Name {
	case "tab":
		if ev.Value != tabLogin && ev.Value != tabRegister {
			return invalidEvent(ev)
		}
		v.Tab = ev.Value
		return nil
	case "login":
		return v.login(ev.Values)
	case "register":
		return v.register(ev.Values)
	}
	return invalidEvent(ev)
}

func (v *authView) login(values map[string]string) error {
	var f form.Login
	ok, err := v.Login.check(values, &f)
	if !ok || err != nil {
		return err
	}

	client := v.client()
	sess := v.h.Auth()
	v.submit(&v.Login.sub, func(ctx context.Context) error {
		if sess == nil {
			return errNoSession
		}
		resp, err := client.Login(ctx, f.Request())
		if err != nil {
			return err
		}
		_, err = sess.SignIn(ctx, resp.AccessToken, session.User{
			Name:         resp.Name,
			Email:        resp.Email,
			RoleName:     resp.RoleName,
			ProfileImage: resp.ProfileImage,
		})
		return err
	}, func(err error) {
		if err != nil {
			v.h.Logger().Debug("login failed", "error", err)
			v.Login.fail(v.h, form.Route(err, form.FallbackLogin))
			return
		}
		v.Login.reset()
		v.h.Navigate(authmw.HomePath)
	})
	return nil
}

func (v *authView) register(values map[string]string) error {
	var f form.Register
	ok, err := v.Register.check(values, &f)
	if !ok || err != nil {
		return err
	}

	client := v.client()
	v.submit(&v.Register.sub, func(ctx context.Context) error {
		_, err := client.Register(ctx, f.Request())
		return err
	}, func(err error) {
		if err != nil {
			v.Register.fail(v.h, form.Route(err, form.FallbackRegister))
			return
		}
		v.Register.reset()
		v.Tab = tabLogin
		toast.Success(v.h, registeredMessage)
	})
	return nil
}

func (v *authView) Render() (live.Fragments, error) {
	html, err := v.srv.render.fragment(viewAuth, v)
	if err != nil {
		return nil, err
	}
	return live.Fragments{viewAuth: html}, nil
}

func (v *authView) Dispose() {}

// invalidEvent is returned for events a view does not handle.
func invalidEvent(ev live.Event) error {
	return dasherrors.New("E400").Wrap(fmt.Errorf("%s %s=%q", ev.View, ev.Name, ev.Value))
}
