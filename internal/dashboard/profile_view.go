package dashboard

import (
	"context"

	"github.com/vango-dev/salesdash/pkg/api"
	"github.com/vango-dev/salesdash/pkg/disclosure"
	"github.com/vango-dev/salesdash/pkg/fetch"
	"github.com/vango-dev/salesdash/pkg/form"
	"github.com/vango-dev/salesdash/pkg/live"
	"github.com/vango-dev/salesdash/pkg/table"
	"github.com/vango-dev/salesdash/pkg/toast"
)

const viewProfile = "profile"

// Profile events.
const (
	eventPasswordOpen   = "password_open"
	eventPasswordClose  = "password_close"
	eventPasswordSubmit = "password_submit"
)

const passwordChangedMessage = "Password Success Updated!"

// profileView shows the signed-in user and the change-password dialog.
type profileView struct {
	base

	profile  *fetch.Resource[api.Profile]
	dialog   *disclosure.Disclosure
	password formState
}

func newProfileView(s *Server, _ string) live.View {
	return &profileView{base: base{srv: s}, dialog: disclosure.New(false)}
}

func (v *profileView) Mount(ctx *live.Ctx) error {
	return v.mount(ctx)
}

func (v *profileView) mount(h host) error {
	v.attach(h)
	c := v.srv.api
	v.profile = fetch.New[api.Profile](h, c, fetch.Get(c.ProfileURL()), v.fetchOptions("profile")...)
	return nil
}

func (v *profileView) HandleEvent(_ *live.Ctx, ev live.Event) error {
	return v.handle(ev)
}

func (v *profileView) handle(ev live.Event) error {
	switch ev.Name {
	case table.DefaultRetryEvent:
		v.profile.Refetch()
	case eventPasswordOpen:
		v.password.reset()
		v.dialog.Open()
	case eventPasswordClose:
		if !v.password.InFlight() {
			v.dialog.Close()
		}
	case eventPasswordSubmit:
		return v.changePassword(ev.Values)
	default:
		return invalidEvent(ev)
	}
	return nil
}

func (v *profileView) changePassword(values map[string]string) error {
	var f form.ChangePassword
	ok, err := v.password.check(values, &f)
	if !ok || err != nil {
		return err
	}

	client := v.client()
	v.submit(&v.password.sub, func(ctx context.Context) error {
		_, err := client.ChangePassword(ctx, f.Request())
		return err
	}, func(err error) {
		if err != nil {
			o := form.Route(err, form.FallbackPassword).Rename(form.ChangePasswordFields)
			v.password.fail(v.h, o)
			return
		}
		v.password.reset()
		v.dialog.Close()
		toast.Success(v.h, passwordChangedMessage, toast.At(toast.BottomRight))
	})
	return nil
}

type profileData struct {
	Loading bool
	Err     string
	Profile *api.Profile

	DialogOpen bool
	Password   *formState
}

func (v *profileView) Render() (live.Fragments, error) {
	s := v.profile.State()
	html, err := v.srv.render.fragment(viewProfile, profileData{
		Loading:    s.Loading,
		Err:        s.Message(),
		Profile:    s.Data,
		DialogOpen: v.dialog.IsOpen(),
		Password:   &v.password,
	})
	if err != nil {
		return nil, err
	}
	return live.Fragments{viewProfile: html}, nil
}

func (v *profileView) Dispose() {
	if v.profile != nil {
		v.profile.Dispose()
	}
}
