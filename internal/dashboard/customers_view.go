package dashboard

import (
	"context"

	"github.com/vango-dev/salesdash/pkg/api"
	"github.com/vango-dev/salesdash/pkg/fetch"
	"github.com/vango-dev/salesdash/pkg/form"
	"github.com/vango-dev/salesdash/pkg/listview"
	"github.com/vango-dev/salesdash/pkg/live"
	"github.com/vango-dev/salesdash/pkg/toast"
)

// Customer fragments.
const (
	viewCustomerToolbar = "customer_toolbar"
	viewCustomerTable   = "customer_table"
	viewCustomerPanels  = "customer_panels"
)

// Customer events outside the list's own.
const (
	eventAddSubmit   = "add_submit"
	eventEditSubmit  = "edit_submit"
	eventDetailRetry = "detail_retry"
)

const (
	customerCreatedMessage = "Customer Created!"
	customerUpdatedMessage = "Customer Updated!"
)

// customersView is the customer list page.
type customersView struct {
	base

	list      *listview.View[api.Customer]
	provinces *fetch.Resource[api.List[api.Ref]]
	cities    *fetch.Resource[api.List[api.Ref]]

	// detail is created when a row panel is first opened.
	detail *fetch.Resource[api.CustomerDetail]

	add  formState
	edit formState

	// prefill is set while the edit form waits for the customer to load.
	prefill bool
}

func newCustomersView(s *Server, _ string) live.View {
	return &customersView{base: base{srv: s}}
}

func (v *customersView) Mount(ctx *live.Ctx) error {
	return v.mount(ctx, nil)
}

func (v *customersView) mount(h host, opts []listview.Option) error {
	v.attach(h)
	c := v.srv.api
	opts = append([]listview.Option{
		listview.WithTokenSource(v.tokens),
		listview.WithSearchDelay(v.srv.opts.SearchDelay),
		listview.WithLogger(h.Logger()),
	}, opts...)
	v.list = listview.New(h, c, listview.CustomerList(c), opts...)
	v.provinces = fetch.New[api.List[api.Ref]](h, c, fetch.Get(c.ProvincesURL()), v.fetchOptions("provinces")...)
	v.cities = fetch.New[api.List[api.Ref]](h, c, fetch.Get(c.CitiesURL()), v.fetchOptions("cities")...)
	return nil
}

func (v *customersView) HandleEvent(_ *live.Ctx, ev live.Event) error {
	return v.handle(ev)
}

// panelState is the open state of the row panels and the selected row.
type panelState struct {
	add, detail, edit bool
	selected          string
}

func (v *customersView) panels() panelState {
	return panelState{
		add:      v.list.Panel(listview.PanelAdd).IsOpen(),
		detail:   v.list.Panel(listview.PanelDetail).IsOpen(),
		edit:     v.list.Panel(listview.PanelEdit).IsOpen(),
		selected: v.list.Selected(),
	}
}

func (v *customersView) handle(ev live.Event) error {
	switch ev.Name {
	case eventAddSubmit:
		return v.create(ev.Values)
	case eventEditSubmit:
		return v.update(ev.Values)
	case eventDetailRetry:
		if v.detail != nil {
			v.detail.Refetch()
		}
		return nil
	}

	before := v.panels()
	handled, err := v.list.HandleEvent(ev.Name, ev.Value)
	if !handled {
		return invalidEvent(ev)
	}
	if err != nil {
		return err
	}
	v.opened(before, v.panels())
	return nil
}

// opened prepares panels that were just opened or switched to another row.
func (v *customersView) opened(before, after panelState) {
	fresh := func(was, is bool) bool {
		return is && (!was || before.selected != after.selected)
	}
	if fresh(before.add, after.add) {
		v.add.reset()
	}
	if fresh(before.detail, after.detail) {
		v.loadDetail(false)
	}
	if fresh(before.edit, after.edit) {
		v.edit.reset()
		v.loadDetail(true)
	}
}

// loadDetail loads the selected customer. With prefill the edit form is
// filled once it arrives.
func (v *customersView) loadDetail(prefill bool) {
	loc := fetch.Get(v.srv.api.CustomerURL(v.list.Selected()))
	v.prefill = prefill

	if v.detail == nil {
		v.detail = fetch.New[api.CustomerDetail](v.h, v.srv.api, loc, v.fetchOptions("customer")...).
			OnSuccess(v.detailLoaded)
		return
	}
	if !v.detail.Locator().Equal(loc) {
		v.detail.SetLocator(loc)
		return
	}
	switch s := v.detail.State(); {
	case s.Ready():
		v.detailLoaded(*s.Data)
	case s.Failed():
		v.detail.Refetch()
	}
}

func (v *customersView) detailLoaded(d api.CustomerDetail) {
	if !v.prefill {
		return
	}
	v.prefill = false
	v.edit.Values = editValues(d)
}

// editValues are the edit form fields of a loaded customer.
func editValues(d api.CustomerDetail) map[string]string {
	f := form.EditCustomer(d)
	return map[string]string{
		"name":         f.Name,
		"identityNo":   f.IdentityNo,
		"npwp":         f.NPWP,
		"email":        f.Email,
		"phone":        f.Phone,
		"mobile_phone": f.MobilePhone,
		"address":      f.Address,
	}
}

func (v *customersView) create(values map[string]string) error {
	var f form.Customer
	ok, err := v.add.check(values, &f)
	if !ok || err != nil {
		return err
	}

	client := v.client()
	v.submit(&v.add.sub, func(ctx context.Context) error {
		_, err := client.CreateCustomer(ctx, f.Payload())
		return err
	}, func(err error) {
		if err != nil {
			v.add.fail(v.h, form.Route(err, form.FallbackSave))
			return
		}
		v.add.reset()
		v.list.ClosePanel(listview.PanelAdd, listview.MutationSucceeded)
		toast.Success(v.h, customerCreatedMessage, toast.At(toast.BottomRight))
	})
	return nil
}

func (v *customersView) update(values map[string]string) error {
	var f form.CustomerEdit
	ok, err := v.edit.check(values, &f)
	if !ok || err != nil {
		return err
	}

	code := v.list.Selected()
	client := v.client()
	v.submit(&v.edit.sub, func(ctx context.Context) error {
		_, err := client.UpdateCustomer(ctx, code, f.Payload())
		return err
	}, func(err error) {
		if err != nil {
			v.edit.fail(v.h, form.Route(err, form.FallbackSave))
			return
		}
		v.edit.reset()
		v.list.ClosePanel(listview.PanelEdit, listview.MutationSucceeded)
		if v.detail != nil {
			v.detail.Refetch()
		}
		toast.Success(v.h, customerUpdatedMessage, toast.At(toast.BottomRight))
	})
	return nil
}

// toolbarData is shared by the customer and transaction toolbars.
type toolbarData struct {
	Query           listview.Query
	SearchInput     string
	SearchPending   bool
	Placeholder     string
	EndDateDisabled bool
	SortOptions     []listview.Choice
	SortDirections  []listview.Choice
	Filters         []filterData
}

// filterData is one filter select.
type filterData struct {
	Key     string
	Label   string
	Loading bool
	Options []listview.Choice
}

func toolbar[T any](l *listview.View[T], filters ...filterData) toolbarData {
	def := l.Definition()
	return toolbarData{
		Query:           l.Query(),
		SearchInput:     l.SearchInput(),
		SearchPending:   l.SearchPending(),
		Placeholder:     def.SearchPlaceholder,
		EndDateDisabled: l.EndDateDisabled(),
		SortOptions:     def.SortOptions,
		SortDirections:  listview.SortDirections,
		Filters:         filters,
	}
}

// refFilter builds a filter select from an option resource.
func refFilter(key, label string, r *fetch.Resource[api.List[api.Ref]]) filterData {
	s := r.State()
	f := filterData{Key: key, Label: label, Loading: s.Loading}
	if s.Data != nil {
		f.Options = listview.Choices(listview.UniqueRefs(s.Data.Items))
	}
	return f
}

type customerPanelsData struct {
	Selected string

	AddOpen    bool
	DetailOpen bool
	EditOpen   bool

	Add  *formState
	Edit *formState

	Detail       *api.CustomerDetail
	DetailLoad   bool
	DetailErr    string
	EditWaiting  bool
	Provinces    []listview.Choice
	Cities       []listview.Choice
	CompanyTypes []listview.Choice
}

var companyTypes = []listview.Choice{
	{Value: "person", Label: "Person"},
	{Value: "company", Label: "Company"},
}

func (v *customersView) panelsData() customerPanelsData {
	d := customerPanelsData{
		Selected:     v.list.Selected(),
		AddOpen:      v.list.Panel(listview.PanelAdd).IsOpen(),
		DetailOpen:   v.list.Panel(listview.PanelDetail).IsOpen(),
		EditOpen:     v.list.Panel(listview.PanelEdit).IsOpen(),
		Add:          &v.add,
		Edit:         &v.edit,
		EditWaiting:  v.prefill,
		Provinces:    refFilter(listview.FilterProvince, "", v.provinces).Options,
		Cities:       refFilter(listview.FilterCity, "", v.cities).Options,
		CompanyTypes: companyTypes,
	}
	if v.detail != nil {
		s := v.detail.State()
		d.Detail = s.Data
		d.DetailLoad = s.Loading
		d.DetailErr = s.Message()
	}
	return d
}

func (v *customersView) Render() (live.Fragments, error) {
	r := v.srv.render
	tb, err := r.fragment(viewCustomerToolbar, toolbar(v.list,
		refFilter(listview.FilterProvince, "Province", v.provinces),
		refFilter(listview.FilterCity, "City", v.cities),
	))
	if err != nil {
		return nil, err
	}
	tbl, err := r.fragment(viewCustomerTable, listData{Table: v.list.Table(), Pagination: v.list.Pagination()})
	if err != nil {
		return nil, err
	}
	panels, err := r.fragment(viewCustomerPanels, v.panelsData())
	if err != nil {
		return nil, err
	}
	return live.Fragments{
		viewCustomerToolbar: tb,
		viewCustomerTable:   tbl,
		viewCustomerPanels:  panels,
	}, nil
}

func (v *customersView) Dispose() {
	if v.list == nil {
		return
	}
	v.list.Dispose()
	v.provinces.Dispose()
	v.cities.Dispose()
	if v.detail != nil {
		v.detail.Dispose()
	}
}
