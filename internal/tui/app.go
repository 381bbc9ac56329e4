package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/salesops/leadscope/internal/api"
	"github.com/salesops/leadscope/internal/config"
	"github.com/salesops/leadscope/internal/freshness"
	"github.com/salesops/leadscope/internal/lead"
	"github.com/salesops/leadscope/internal/logger"
	"github.com/salesops/leadscope/internal/session"
)

// AppDir is the directory name used for persisted session state.
const AppDir = "leadscope"

// App ties together views.
type App struct {
	ctx    context.Context
	cfg    config.Config
	log    *logger.Logger
	client *api.Client
	bus    *freshness.Bus

	state   appState
	modal   modalState
	status  string
	spinner spinner.Model

	authed bool
	user   session.User

	lastUpdated string
	freshCh     <-chan string
	freshCancel func()

	// auth form
	formCursor  int
	formName    string
	formEmail   string
	formPass    string
	formConfirm string
	formErr     string
	authBusy    bool

	// leads view
	leadsSeq     int
	leadsLoading bool
	leadsLoaded  bool
	leadsErr     string
	customers    []lead.Customer
	pagination   api.Pagination
	pageNum      int
	leadCursor   int
	search       string
	searching    bool
	band         lead.Band
	bandAll      bool
	filters      filterSet
	filterCursor int
	filterInput  string
	selected     map[int64]bool
	batchBusy    bool
	lastBatch    *lead.BatchResult

	// pending view
	pendingSeq     int
	pendingLoading bool
	pendingLoaded  bool
	pendingErr     string
	pendingLeads   []lead.Customer
	pendingTotal   int
	pendingCursor  int

	// dashboard
	dashSeq     int
	dashLoading bool
	dashLoaded  bool
	dashErr     string
	dashParts   *dashAccumulator
	dashStats   lead.Stats
	dashPred    lead.PredictionStats
	dashTop     []lead.Customer

	// analytics view
	anaSeq     int
	anaLoading bool
	anaLoaded  bool
	anaErr     string
	anaPred    lead.PredictionStats
	anaStats   lead.Stats

	// monitor view
	monSeq     int
	monLoading bool
	monLoaded  bool
	monErr     string
	monJob     lead.JobStatus
	monCache   lead.CacheStats
	monBusy    bool

	// detail view
	detailID      int64
	detail        *lead.Customer
	detailTab     detailTab
	history       []lead.HistoryEntry
	historyErr    string
	historySeq    int
	predictBusy   bool
	predictNotice string

	// import flow
	importPath string
	lastUpload *lead.UploadSummary
	uploadBusy bool
	returnTo   appState

	// customer form modal
	custForm       customerForm
	custFormCursor int
	custFormInput  string
	custFormErr    string
	editID         int64
	saveBusy       bool

	// settings modal
	settingsForm   [4]string
	settingsCursor int
	settingsErr    string
}

type appState string

const (
	viewLogin     appState = "login"
	viewRegister  appState = "register"
	viewDashboard appState = "dashboard"
	viewLeads     appState = "leads"
	viewPending   appState = "pending"
	viewAnalytics appState = "analytics"
	viewMonitor   appState = "monitor"
	viewImport    appState = "import"
	viewDetail    appState = "detail"
)

type modalState string

const (
	modalNone          modalState = ""
	modalConfirmBatch  modalState = "confirmBatch"
	modalConfirmDelete modalState = "confirmDelete"
	modalFilters       modalState = "filters"
	modalCustomer      modalState = "customer"
	modalSettings      modalState = "settings"
)

type detailTab string

const (
	tabDetails detailTab = "details"
	tabHistory detailTab = "history"
)

// filterSet is the advanced filter form backing the leads query.
type filterSet struct {
	MinAge    string
	MaxAge    string
	Job       string
	Education string
	Marital   string
	Housing   *bool
	Loan      *bool
	Default   *bool
}

func (f filterSet) empty() bool {
	return f == filterSet{}
}

// customerForm backs the add/edit modal. Text fields stay strings
// until submit so partial input never loses keystrokes.
type customerForm struct {
	Name      string
	Age       string
	Job       string
	Marital   string
	Education string
	Balance   string
	Contact   string
	Email     string
	Phone     string
	Housing   bool
	Loan      bool
	Default   bool
}

// dashAccumulator collects the three concurrent dashboard fetches so
// derived state is applied only once all of them settled.
type dashAccumulator struct {
	stats  *lead.Stats
	pred   *lead.PredictionStats
	top    []lead.Customer
	gotTop bool
	errs   []string
}

func (d *dashAccumulator) done() bool {
	return d.stats != nil && d.pred != nil && d.gotTop
}

func New(ctx context.Context, cfg config.Config, log *logger.Logger, client *api.Client, bus *freshness.Bus, sess session.Session) *App {
	a := &App{
		ctx:        ctx,
		cfg:        cfg,
		log:        log,
		client:     client,
		bus:        bus,
		state:      viewLogin,
		bandAll:    true,
		pageNum:    1,
		selected:   map[int64]bool{},
		importPath: "leads.csv",
		detailTab:  tabDetails,
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	if sess.Authenticated() {
		a.authed = true
		if sess.User != nil {
			a.user = *sess.User
		}
		client.SetToken(sess.Token)
		a.state = viewDashboard
	}
	return a
}

func (a *App) Init() tea.Cmd {
	last, ch, cancel := a.bus.Subscribe()
	a.lastUpdated = last
	a.freshCh = ch
	a.freshCancel = cancel
	cmds := []tea.Cmd{a.waitFreshness(), a.spinner.Tick}
	if a.authed {
		cmds = append(cmds, a.loadDashboard(), a.refreshProfile())
	}
	return tea.Batch(cmds...)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(m)
	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(m)
		return a, cmd
	case freshnessMsg:
		if m != "" {
			a.lastUpdated = string(m)
		}
		return a, a.waitFreshness()

	case loginDoneMsg:
		a.authBusy = false
		if m.err != nil {
			a.formErr = a.describe(m.err)
			return a, nil
		}
		a.authed = true
		a.user = m.res.User
		a.formErr = ""
		a.clearForm()
		if err := session.Save(AppDir, session.Session{Token: m.res.Token, User: &m.res.User}); err != nil {
			a.log.WithError(err).Warn("session save failed")
		}
		a.state = viewDashboard
		return a, a.loadDashboard()

	case registerDoneMsg:
		a.authBusy = false
		if m.err != nil {
			a.formErr = a.describe(m.err)
			return a, nil
		}
		a.clearForm()
		a.state = viewLogin
		a.status = "Account created, sign in to continue"
		return a, nil

	case leadsPageMsg:
		if m.seq != a.leadsSeq {
			// superseded fetch, drop it
			return a, nil
		}
		a.leadsLoading = false
		if m.err != nil {
			if cmd, routed := a.routeUnauthorized(m.err); routed {
				return a, cmd
			}
			a.leadsErr = a.describe(m.err)
			if !a.leadsLoaded {
				a.customers = nil
			}
			return a, nil
		}
		a.leadsErr = ""
		a.leadsLoaded = true
		a.customers = m.page.Customers
		if a.search != "" {
			lead.RankBySearch(a.customers, a.search)
		}
		a.pagination = m.page.Pagination
		// clamp against the band-filtered subset, not the raw page
		if a.leadCursor >= len(a.visibleLeads()) {
			a.leadCursor = 0
		}
		return a, nil

	case pendingPageMsg:
		if m.seq != a.pendingSeq {
			return a, nil
		}
		a.pendingLoading = false
		if m.err != nil {
			if cmd, routed := a.routeUnauthorized(m.err); routed {
				return a, cmd
			}
			a.pendingErr = a.describe(m.err)
			if !a.pendingLoaded {
				a.pendingLeads = nil
			}
			return a, nil
		}
		a.pendingErr = ""
		a.pendingLoaded = true
		a.pendingLeads = m.customers
		a.pendingTotal = m.total
		if a.pendingCursor >= len(a.pendingLeads) {
			a.pendingCursor = 0
		}
		return a, nil

	case dashPartMsg:
		if m.seq != a.dashSeq || a.dashParts == nil {
			return a, nil
		}
		if m.err != nil {
			if cmd, routed := a.routeUnauthorized(m.err); routed {
				return a, cmd
			}
			a.dashParts.errs = append(a.dashParts.errs, a.describe(m.err))
		}
		switch m.part {
		case dashPartStats:
			if m.err == nil {
				a.dashParts.stats = &m.stats
			} else {
				a.dashParts.stats = &lead.Stats{}
			}
		case dashPartPred:
			if m.err == nil {
				a.dashParts.pred = &m.pred
			} else {
				a.dashParts.pred = &lead.PredictionStats{}
			}
		case dashPartTop:
			a.dashParts.top = m.top
			a.dashParts.gotTop = true
		}
		if !a.dashParts.done() {
			return a, nil
		}
		a.dashLoading = false
		if len(a.dashParts.errs) > 0 {
			a.dashErr = strings.Join(a.dashParts.errs, "; ")
			if !a.dashLoaded {
				a.dashParts = nil
				return a, nil
			}
		} else {
			a.dashErr = ""
		}
		a.dashLoaded = true
		a.dashStats = *a.dashParts.stats
		a.dashPred = *a.dashParts.pred
		a.dashTop = a.dashParts.top
		a.dashParts = nil
		return a, nil

	case analyticsMsg:
		if m.seq != a.anaSeq {
			return a, nil
		}
		a.anaLoading = false
		if m.err != nil {
			if cmd, routed := a.routeUnauthorized(m.err); routed {
				return a, cmd
			}
			a.anaErr = a.describe(m.err)
			return a, nil
		}
		a.anaErr = ""
		a.anaLoaded = true
		a.anaPred = m.pred
		a.anaStats = m.stats
		return a, nil

	case monitorMsg:
		a.monLoading = false
		if m.err != nil {
			if cmd, routed := a.routeUnauthorized(m.err); routed {
				return a, cmd
			}
			a.monErr = a.describe(m.err)
			return a, nil
		}
		a.monErr = ""
		a.monLoaded = true
		a.monJob = m.job
		a.monCache = m.cache
		return a, nil

	case monitorTickMsg:
		if a.state != viewMonitor || m.seq != a.monSeq {
			// the view was left or a newer chain took over
			return a, nil
		}
		return a, tea.Batch(a.loadMonitor(), a.monitorTick())

	case triggerDoneMsg:
		a.monBusy = false
		if m.err != nil {
			if cmd, routed := a.routeUnauthorized(m.err); routed {
				return a, cmd
			}
			a.status = a.describe(m.err)
			return a, nil
		}
		a.status = triggerSummary(m.res)
		return a, a.delayedMonitorRefresh()

	case delayedRefreshMsg:
		if a.state != viewMonitor {
			return a, nil
		}
		return a, a.loadMonitor()

	case historyMsg:
		if m.seq != a.historySeq || m.customerID != a.detailID {
			return a, nil
		}
		if m.err != nil {
			a.historyErr = a.describe(m.err)
			return a, nil
		}
		a.historyErr = ""
		a.history = m.entries
		return a, nil

	case predictDoneMsg:
		a.predictBusy = false
		if m.err != nil {
			if cmd, routed := a.routeUnauthorized(m.err); routed {
				return a, cmd
			}
			a.status = a.describe(m.err)
			return a, nil
		}
		if a.detail != nil && a.detail.ID == m.cust.ID {
			a.detail = &m.cust
		}
		a.status = "Score updated"
		return a, a.loadHistory(m.cust.ID)

	case batchDoneMsg:
		a.batchBusy = false
		if m.err != nil {
			if cmd, routed := a.routeUnauthorized(m.err); routed {
				return a, cmd
			}
			a.status = a.describe(m.err)
			return a, nil
		}
		a.lastBatch = &m.res
		a.selected = map[int64]bool{}
		a.status = batchSummary(m.res)
		return a, a.reloadLeads()

	case uploadDoneMsg:
		a.uploadBusy = false
		if m.err != nil {
			if cmd, routed := a.routeUnauthorized(m.err); routed {
				return a, cmd
			}
			a.status = a.describe(m.err)
			return a, nil
		}
		a.lastUpload = &m.sum
		a.status = uploadSummaryLine(m.sum)
		if m.sum.AutoCloses() {
			return a, a.closeImportSoon()
		}
		return a, nil

	case importClosedMsg:
		if a.state != viewImport {
			return a, nil
		}
		a.state = a.returnTo
		if a.state == "" {
			a.state = viewLeads
		}
		return a, a.reloadLeads()

	case templateSavedMsg:
		if m.err != nil {
			a.status = a.describe(m.err)
			return a, nil
		}
		a.status = "Template saved to " + m.path
		return a, nil

	case customerSavedMsg:
		a.saveBusy = false
		if m.err != nil {
			if cmd, routed := a.routeUnauthorized(m.err); routed {
				return a, cmd
			}
			a.custFormErr = a.describe(m.err)
			return a, nil
		}
		a.modal = modalNone
		if a.detail != nil && a.detail.ID == m.cust.ID {
			a.detail = &m.cust
		}
		if m.created {
			a.status = "Customer added"
		} else {
			a.status = "Customer updated"
		}
		return a, a.reloadLeads()

	case profileMsg:
		if m.err != nil {
			if cmd, routed := a.routeUnauthorized(m.err); routed {
				return a, cmd
			}
			return a, nil
		}
		a.user = m.user
		return a, nil

	case deleteDoneMsg:
		if m.err != nil {
			if cmd, routed := a.routeUnauthorized(m.err); routed {
				return a, cmd
			}
			a.status = a.describe(m.err)
			return a, nil
		}
		a.status = "Customer deleted"
		return a, a.reloadLeads()

	case statusMsg:
		a.status = string(m)
		return a, nil
	case errMsg:
		if cmd, routed := a.routeUnauthorized(m.error); routed {
			return a, cmd
		}
		a.status = "error: " + m.Error()
		return a, nil
	}
	return a, nil
}

// routeUnauthorized forces logout on a 401 and routes to the login
// view unless it is already showing.
func (a *App) routeUnauthorized(err error) (tea.Cmd, bool) {
	apiErr, ok := err.(*api.Error)
	if !ok || apiErr.Status != 401 {
		return nil, false
	}
	a.authed = false
	a.user = session.User{}
	if err := session.Clear(AppDir); err != nil {
		a.log.WithError(err).Warn("session clear failed")
	}
	if a.state != viewLogin {
		a.state = viewLogin
		a.status = "Session expired, sign in again"
	}
	return nil, true
}

// describe resolves the message shown for a failed call.
func (a *App) describe(err error) string {
	if apiErr, ok := err.(*api.Error); ok {
		return apiErr.Message
	}
	return err.Error()
}

func (a *App) clearForm() {
	a.formCursor = 0
	a.formName = ""
	a.formEmail = ""
	a.formPass = ""
	a.formConfirm = ""
	a.formErr = ""
}

func (a *App) logout() {
	a.authed = false
	a.user = session.User{}
	a.client.SetToken("")
	if err := session.Clear(AppDir); err != nil {
		a.log.WithError(err).Warn("session clear failed")
	}
	a.state = viewLogin
	a.status = ""
}

// listParams assembles the backend query from the current view state.
func (a *App) listParams() api.ListParams {
	p := api.ListParams{
		Page:      a.pageNum,
		Limit:     a.cfg.UI.PageLimit,
		Search:    strings.TrimSpace(a.search),
		SortBy:    "probability_score",
		Order:     "DESC",
		Job:       strings.TrimSpace(a.filters.Job),
		Education: strings.TrimSpace(a.filters.Education),
		Marital:   strings.TrimSpace(a.filters.Marital),
		Housing:   a.filters.Housing,
		Loan:      a.filters.Loan,
		Default:   a.filters.Default,
	}
	p.MinAge = parseAge(a.filters.MinAge)
	p.MaxAge = parseAge(a.filters.MaxAge)
	if p.Limit <= 0 {
		p.Limit = 20
	}
	return p
}

func parseAge(s string) int {
	n := 0
	for _, r := range strings.TrimSpace(s) {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// visibleLeads applies the client-side band filter on top of the
// server page.
func (a *App) visibleLeads() []lead.Customer {
	if a.bandAll {
		return a.customers
	}
	return lead.Filter(a.customers, "", a.band, false)
}

func triggerSummary(res api.TriggerResult) string {
	r := res.Results
	switch {
	case r.Total == 0:
		return "Job triggered, nothing to score"
	case r.Failed == 0:
		return statusf("Job done: %d scored", r.Success)
	case r.Success == 0:
		return statusf("Job failed: %d errors", r.Failed)
	default:
		return statusf("Job partial: %d scored, %d failed", r.Success, r.Failed)
	}
}

func batchSummary(res lead.BatchResult) string {
	if res.Failed == 0 {
		return statusf("Batch done: %d scored", res.Success)
	}
	return statusf("Batch: %d scored, %d failed", res.Success, res.Failed)
}

func uploadSummaryLine(sum lead.UploadSummary) string {
	if sum.Failed == 0 {
		return statusf("Imported %d customers", sum.Imported)
	}
	return statusf("Imported %d, failed %d", sum.Imported, sum.Failed)
}

// messages
type freshnessMsg string

type loginDoneMsg struct {
	res api.LoginResult
	err error
}

type registerDoneMsg struct {
	user session.User
	err  error
}

type leadsPageMsg struct {
	seq  int
	page api.CustomerPage
	err  error
}

type pendingPageMsg struct {
	seq       int
	customers []lead.Customer
	total     int
	err       error
}

type dashPart int

const (
	dashPartStats dashPart = iota
	dashPartPred
	dashPartTop
)

type dashPartMsg struct {
	seq   int
	part  dashPart
	stats lead.Stats
	pred  lead.PredictionStats
	top   []lead.Customer
	err   error
}

type analyticsMsg struct {
	seq   int
	pred  lead.PredictionStats
	stats lead.Stats
	err   error
}

type monitorMsg struct {
	job   lead.JobStatus
	cache lead.CacheStats
	err   error
}

type monitorTickMsg struct{ seq int }

type triggerDoneMsg struct {
	res api.TriggerResult
	err error
}

type delayedRefreshMsg struct{}

type historyMsg struct {
	seq        int
	customerID int64
	entries    []lead.HistoryEntry
	err        error
}

type predictDoneMsg struct {
	cust lead.Customer
	err  error
}

type batchDoneMsg struct {
	res lead.BatchResult
	err error
}

type uploadDoneMsg struct {
	sum lead.UploadSummary
	err error
}

type importClosedMsg struct{}

type templateSavedMsg struct {
	path string
	err  error
}

type customerSavedMsg struct {
	cust    lead.Customer
	created bool
	err     error
}

type profileMsg struct {
	user session.User
	err  error
}

type deleteDoneMsg struct{ err error }

type statusMsg string

type errMsg struct{ error }
