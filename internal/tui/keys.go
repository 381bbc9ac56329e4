package tui

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/salesops/leadscope/internal/api"
	"github.com/salesops/leadscope/internal/lead"
)

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.modal != modalNone {
		return a.handleModalKey(m)
	}
	switch a.state {
	case viewLogin, viewRegister:
		return a.handleAuthKey(m)
	case viewImport:
		return a.handleImportKey(m)
	}
	if a.searching {
		return a.handleSearchKey(m)
	}

	switch m.String() {
	case "q", "ctrl+c":
		if a.freshCancel != nil {
			a.freshCancel()
		}
		return a, tea.Quit
	case "d":
		a.state = viewDashboard
		a.status = ""
		return a, a.loadDashboard()
	case "l":
		a.state = viewLeads
		a.status = ""
		if !a.leadsLoaded {
			return a, a.reloadLeads()
		}
		return a, nil
	case "p":
		if a.state == viewDetail {
			return a.handleViewKey(m)
		}
		a.state = viewPending
		a.status = ""
		return a, a.reloadPending()
	case "a":
		a.state = viewAnalytics
		a.status = ""
		return a, a.loadAnalytics()
	case "m":
		a.state = viewMonitor
		a.status = ""
		a.monSeq++
		return a, tea.Batch(a.loadMonitor(), a.monitorTick())
	case "s":
		a.openSettings()
		return a, nil
	case "i":
		a.returnTo = a.state
		a.state = viewImport
		a.status = ""
		a.lastUpload = nil
		return a, nil
	case "O":
		a.logout()
		return a, nil
	}
	return a.handleViewKey(m)
}

func (a *App) handleViewKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.state {
	case viewLeads:
		return a.handleLeadsKey(m)
	case viewPending:
		return a.handlePendingKey(m)
	case viewMonitor:
		return a.handleMonitorKey(m)
	case viewAnalytics:
		if m.String() == "u" {
			return a, a.loadAnalytics()
		}
	case viewDashboard:
		if m.String() == "u" {
			return a, a.loadDashboard()
		}
	case viewDetail:
		return a.handleDetailKey(m)
	}
	return a, nil
}

func (a *App) handleLeadsKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := a.visibleLeads()
	switch m.String() {
	case "up", "k":
		if a.leadCursor > 0 {
			a.leadCursor--
		}
	case "down", "j":
		if a.leadCursor < len(visible)-1 {
			a.leadCursor++
		}
	case "left":
		if a.pageNum > 1 {
			a.pageNum--
			a.leadCursor = 0
			return a, a.reloadLeads()
		}
	case "right":
		if a.pagination.TotalPages == 0 || a.pageNum < a.pagination.TotalPages {
			a.pageNum++
			a.leadCursor = 0
			return a, a.reloadLeads()
		}
	case "/":
		a.searching = true
	case "b":
		a.cycleBand()
		a.leadCursor = 0
	case "f":
		a.modal = modalFilters
		a.filterCursor = 0
		a.filterInput = a.filterFieldValue(0)
	case "c":
		if !a.filters.empty() {
			a.filters = filterSet{}
			a.pageNum = 1
			return a, a.reloadLeads()
		}
	case " ", "space":
		if a.leadCursor < len(visible) {
			id := visible[a.leadCursor].ID
			if a.selected[id] {
				delete(a.selected, id)
			} else {
				a.selected[id] = true
			}
		}
	case "v":
		for _, c := range visible {
			a.selected[c.ID] = true
		}
	case "r":
		if a.batchBusy {
			a.status = "Batch prediction already running"
			return a, nil
		}
		if len(a.selected) == 0 {
			a.status = "Select customers first (space)"
			return a, nil
		}
		a.modal = modalConfirmBatch
	case "x":
		if a.leadCursor < len(visible) {
			a.modal = modalConfirmDelete
		}
	case "u":
		return a, a.reloadLeads()
	case "n":
		a.openCustomerForm(nil)
	case "e":
		if a.leadCursor < len(visible) {
			c := visible[a.leadCursor]
			a.openCustomerForm(&c)
		}
	case "enter":
		if a.leadCursor < len(visible) {
			c := visible[a.leadCursor]
			a.detailID = c.ID
			a.detail = &c
			a.detailTab = tabDetails
			a.history = nil
			a.historyErr = ""
			a.predictNotice = ""
			a.state = viewDetail
			return a, a.loadHistory(c.ID)
		}
	}
	return a, nil
}

func (a *App) cycleBand() {
	switch {
	case a.bandAll:
		a.bandAll = false
		a.band = lead.High
	case a.band == lead.High:
		a.band = lead.Medium
	case a.band == lead.Medium:
		a.band = lead.Low
	case a.band == lead.Low:
		a.band = lead.Pending
	default:
		a.bandAll = true
	}
}

func (a *App) handleSearchKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEsc:
		a.searching = false
		if a.search != "" {
			a.search = ""
			a.pageNum = 1
			return a, a.reloadLeads()
		}
	case tea.KeyEnter:
		a.searching = false
		a.pageNum = 1
		return a, a.reloadLeads()
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		if len(a.search) > 0 {
			a.search = a.search[:len(a.search)-1]
		}
	case tea.KeySpace:
		a.search += " "
	case tea.KeyRunes:
		a.search += string(m.Runes)
	}
	return a, nil
}

func (a *App) handlePendingKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "up", "k":
		if a.pendingCursor > 0 {
			a.pendingCursor--
		}
	case "down", "j":
		if a.pendingCursor < len(a.pendingLeads)-1 {
			a.pendingCursor++
		}
	case "u":
		return a, a.reloadPending()
	case "enter":
		if len(a.pendingLeads) > 0 {
			c := a.pendingLeads[a.pendingCursor]
			a.detailID = c.ID
			a.detail = &c
			a.detailTab = tabDetails
			a.history = nil
			a.state = viewDetail
			return a, a.loadHistory(c.ID)
		}
	}
	return a, nil
}

func (a *App) handleMonitorKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "t":
		if a.monBusy {
			a.status = "Trigger already in flight"
			return a, nil
		}
		return a, a.triggerJobCmd()
	case "u":
		return a, a.loadMonitor()
	}
	return a, nil
}

func (a *App) handleDetailKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "esc":
		a.state = viewLeads
		a.detail = nil
		return a, nil
	case "tab", "h":
		if a.detailTab == tabDetails {
			a.detailTab = tabHistory
		} else {
			a.detailTab = tabDetails
		}
	case "e":
		if a.detail != nil {
			a.openCustomerForm(a.detail)
		}
	case "p":
		if a.detail == nil {
			return a, nil
		}
		if a.predictBusy {
			a.status = "Prediction already running"
			return a, nil
		}
		return a, a.predictCmd(*a.detail)
	}
	return a, nil
}

func (a *App) handleImportKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "ctrl+t":
		return a, a.downloadTemplateCmd()
	}
	switch m.Type {
	case tea.KeyEsc:
		a.state = a.returnTo
		if a.state == "" || a.state == viewImport {
			a.state = viewLeads
		}
		a.status = ""
	case tea.KeyEnter:
		if a.uploadBusy {
			a.status = "Upload already running"
			return a, nil
		}
		path := strings.TrimSpace(a.importPath)
		if path == "" {
			a.status = "enter a CSV path"
			return a, nil
		}
		return a, a.uploadCmd(path)
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		if len(a.importPath) > 0 {
			a.importPath = a.importPath[:len(a.importPath)-1]
		}
	case tea.KeySpace:
		a.importPath += " "
	case tea.KeyRunes:
		a.importPath += string(m.Runes)
	}
	return a, nil
}

func (a *App) handleAuthKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	register := a.state == viewRegister
	fieldCount := 2
	if register {
		fieldCount = 4
	}
	switch m.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "ctrl+r":
		a.clearForm()
		if register {
			a.state = viewLogin
		} else {
			a.state = viewRegister
		}
		return a, nil
	}
	switch m.Type {
	case tea.KeyEsc:
		if register {
			a.clearForm()
			a.state = viewLogin
			return a, nil
		}
		return a, tea.Quit
	case tea.KeyTab, tea.KeyDown:
		a.formCursor = (a.formCursor + 1) % fieldCount
	case tea.KeyShiftTab, tea.KeyUp:
		a.formCursor = (a.formCursor + fieldCount - 1) % fieldCount
	case tea.KeyEnter:
		if a.authBusy {
			return a, nil
		}
		if register {
			return a.submitRegister()
		}
		return a.submitLogin()
	case tea.KeyBackspace, tea.KeyCtrlH:
		field := a.formField()
		if len(*field) > 0 {
			*field = (*field)[:len(*field)-1]
		}
	case tea.KeySpace:
		*a.formField() += " "
	case tea.KeyRunes:
		*a.formField() += string(m.Runes)
	}
	return a, nil
}

func (a *App) formField() *string {
	if a.state == viewRegister {
		switch a.formCursor {
		case 0:
			return &a.formName
		case 1:
			return &a.formEmail
		case 2:
			return &a.formPass
		default:
			return &a.formConfirm
		}
	}
	if a.formCursor == 0 {
		return &a.formEmail
	}
	return &a.formPass
}

func (a *App) submitLogin() (tea.Model, tea.Cmd) {
	email := strings.TrimSpace(a.formEmail)
	if email == "" || a.formPass == "" {
		a.formErr = "Email and password are required"
		return a, nil
	}
	a.formErr = ""
	a.authBusy = true
	return a, a.loginCmd(email, a.formPass)
}

func (a *App) submitRegister() (tea.Model, tea.Cmd) {
	name := strings.TrimSpace(a.formName)
	email := strings.TrimSpace(a.formEmail)
	switch {
	case name == "" || email == "":
		a.formErr = "Name and email are required"
	case len(a.formPass) < 6:
		a.formErr = "Password must be at least 6 characters"
	case a.formPass != a.formConfirm:
		a.formErr = "Passwords do not match"
	default:
		a.formErr = ""
		a.authBusy = true
		return a, a.registerCmd(name, email, a.formPass)
	}
	return a, nil
}

var filterFields = []string{"Min age", "Max age", "Job", "Education", "Marital", "Housing loan", "Personal loan", "Has default"}

func (a *App) filterFieldValue(i int) string {
	switch i {
	case 0:
		return a.filters.MinAge
	case 1:
		return a.filters.MaxAge
	case 2:
		return a.filters.Job
	case 3:
		return a.filters.Education
	case 4:
		return a.filters.Marital
	}
	return ""
}

func (a *App) setFilterField(i int, v string) {
	switch i {
	case 0:
		a.filters.MinAge = v
	case 1:
		a.filters.MaxAge = v
	case 2:
		a.filters.Job = v
	case 3:
		a.filters.Education = v
	case 4:
		a.filters.Marital = v
	}
}

// boolFilterAt returns the tri-state pointer for the boolean rows.
func (a *App) boolFilterAt(i int) **bool {
	switch i {
	case 5:
		return &a.filters.Housing
	case 6:
		return &a.filters.Loan
	default:
		return &a.filters.Default
	}
}

func cycleTriState(v *bool) *bool {
	t, f := true, false
	switch {
	case v == nil:
		return &t
	case *v:
		return &f
	default:
		return nil
	}
}

func (a *App) handleModalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.modal {
	case modalConfirmBatch:
		switch m.String() {
		case "y", "Y":
			a.modal = modalNone
			ids := make([]int64, 0, len(a.selected))
			for id := range a.selected {
				ids = append(ids, id)
			}
			return a, a.batchPredictCmd(ids)
		case "n", "N", "esc":
			a.modal = modalNone
		}
	case modalConfirmDelete:
		switch m.String() {
		case "y", "Y":
			a.modal = modalNone
			visible := a.visibleLeads()
			if a.leadCursor < len(visible) {
				return a, a.deleteCmd(visible[a.leadCursor].ID)
			}
		case "n", "N", "esc":
			a.modal = modalNone
		}
	case modalFilters:
		return a.handleFilterKey(m)
	case modalCustomer:
		return a.handleCustomerFormKey(m)
	case modalSettings:
		return a.handleSettingsKey(m)
	}
	return a, nil
}

func (a *App) handleFilterKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	boolRow := a.filterCursor >= 5
	switch m.Type {
	case tea.KeyEsc:
		a.modal = modalNone
		return a, nil
	case tea.KeyTab, tea.KeyDown:
		if !boolRow {
			a.setFilterField(a.filterCursor, a.filterInput)
		}
		a.filterCursor = (a.filterCursor + 1) % len(filterFields)
		a.filterInput = a.filterFieldValue(a.filterCursor)
		return a, nil
	case tea.KeyShiftTab, tea.KeyUp:
		if !boolRow {
			a.setFilterField(a.filterCursor, a.filterInput)
		}
		a.filterCursor = (a.filterCursor + len(filterFields) - 1) % len(filterFields)
		a.filterInput = a.filterFieldValue(a.filterCursor)
		return a, nil
	case tea.KeyEnter:
		if !boolRow {
			a.setFilterField(a.filterCursor, a.filterInput)
		}
		a.modal = modalNone
		a.pageNum = 1
		return a, a.reloadLeads()
	}
	if boolRow {
		if s := m.String(); s == " " || s == "space" {
			slot := a.boolFilterAt(a.filterCursor)
			*slot = cycleTriState(*slot)
		}
		return a, nil
	}
	switch m.Type {
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		if len(a.filterInput) > 0 {
			a.filterInput = a.filterInput[:len(a.filterInput)-1]
		}
	case tea.KeySpace:
		a.filterInput += " "
	case tea.KeyRunes:
		a.filterInput += string(m.Runes)
	}
	return a, nil
}

var customerFields = []string{"Name", "Age", "Job", "Marital", "Education", "Balance", "Contact", "Email", "Phone", "Housing loan", "Personal loan", "Has default"}

const customerBoolOffset = 9

// openCustomerForm shows the add/edit modal. A nil customer means
// create; otherwise the form is prefilled and the save goes to PUT.
func (a *App) openCustomerForm(c *lead.Customer) {
	a.modal = modalCustomer
	a.custFormCursor = 0
	a.custFormErr = ""
	if c == nil {
		a.editID = 0
		a.custForm = customerForm{}
	} else {
		a.editID = c.ID
		a.custForm = formFromCustomer(*c)
	}
	a.custFormInput = a.custFieldValue(0)
}

func formFromCustomer(c lead.Customer) customerForm {
	f := customerForm{
		Name:      c.FullName,
		Age:       strconv.Itoa(c.Age),
		Job:       c.Job,
		Marital:   c.Marital,
		Education: c.Education,
		Contact:   c.Contact,
		Email:     c.Email,
		Phone:     c.Phone,
		Housing:   c.HasHousingLoan,
		Loan:      c.HasPersonalLoan,
		Default:   c.HasDefault,
	}
	if c.Balance != nil {
		f.Balance = strconv.FormatFloat(*c.Balance, 'f', -1, 64)
	}
	return f
}

func (a *App) custFieldValue(i int) string {
	switch i {
	case 0:
		return a.custForm.Name
	case 1:
		return a.custForm.Age
	case 2:
		return a.custForm.Job
	case 3:
		return a.custForm.Marital
	case 4:
		return a.custForm.Education
	case 5:
		return a.custForm.Balance
	case 6:
		return a.custForm.Contact
	case 7:
		return a.custForm.Email
	case 8:
		return a.custForm.Phone
	}
	return ""
}

func (a *App) setCustField(i int, v string) {
	switch i {
	case 0:
		a.custForm.Name = v
	case 1:
		a.custForm.Age = v
	case 2:
		a.custForm.Job = v
	case 3:
		a.custForm.Marital = v
	case 4:
		a.custForm.Education = v
	case 5:
		a.custForm.Balance = v
	case 6:
		a.custForm.Contact = v
	case 7:
		a.custForm.Email = v
	case 8:
		a.custForm.Phone = v
	}
}

func (a *App) custBoolAt(i int) *bool {
	switch i {
	case customerBoolOffset:
		return &a.custForm.Housing
	case customerBoolOffset + 1:
		return &a.custForm.Loan
	default:
		return &a.custForm.Default
	}
}

func (a *App) handleCustomerFormKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	boolRow := a.custFormCursor >= customerBoolOffset
	switch m.Type {
	case tea.KeyEsc:
		a.modal = modalNone
		return a, nil
	case tea.KeyTab, tea.KeyDown:
		if !boolRow {
			a.setCustField(a.custFormCursor, a.custFormInput)
		}
		a.custFormCursor = (a.custFormCursor + 1) % len(customerFields)
		a.custFormInput = a.custFieldValue(a.custFormCursor)
		return a, nil
	case tea.KeyShiftTab, tea.KeyUp:
		if !boolRow {
			a.setCustField(a.custFormCursor, a.custFormInput)
		}
		a.custFormCursor = (a.custFormCursor + len(customerFields) - 1) % len(customerFields)
		a.custFormInput = a.custFieldValue(a.custFormCursor)
		return a, nil
	case tea.KeyEnter:
		if a.saveBusy {
			return a, nil
		}
		if !boolRow {
			a.setCustField(a.custFormCursor, a.custFormInput)
		}
		return a.submitCustomerForm()
	}
	if boolRow {
		if s := m.String(); s == " " || s == "space" {
			slot := a.custBoolAt(a.custFormCursor)
			*slot = !*slot
		}
		return a, nil
	}
	switch m.Type {
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		if len(a.custFormInput) > 0 {
			a.custFormInput = a.custFormInput[:len(a.custFormInput)-1]
		}
	case tea.KeySpace:
		a.custFormInput += " "
	case tea.KeyRunes:
		a.custFormInput += string(m.Runes)
	}
	return a, nil
}

func (a *App) submitCustomerForm() (tea.Model, tea.Cmd) {
	f := a.custForm
	name := strings.TrimSpace(f.Name)
	age, ageErr := strconv.Atoi(strings.TrimSpace(f.Age))
	switch {
	case name == "":
		a.custFormErr = "Name is required"
	case ageErr != nil || age <= 0:
		a.custFormErr = "Age must be a positive number"
	default:
		p := api.CustomerPayload{
			FullName:  name,
			Age:       age,
			Job:       strings.TrimSpace(f.Job),
			Marital:   strings.TrimSpace(f.Marital),
			Education: strings.TrimSpace(f.Education),
			Default:   f.Default,
			Housing:   f.Housing,
			Loan:      f.Loan,
			Contact:   strings.TrimSpace(f.Contact),
			Email:     strings.TrimSpace(f.Email),
			Phone:     strings.TrimSpace(f.Phone),
		}
		if b := strings.TrimSpace(f.Balance); b != "" {
			v, err := strconv.ParseFloat(b, 64)
			if err != nil {
				a.custFormErr = "Balance must be a number"
				return a, nil
			}
			p.Balance = &v
		}
		a.custFormErr = ""
		return a, a.saveCustomerCmd(a.editID, p)
	}
	return a, nil
}

var settingsFields = []string{"Base URL", "Page limit", "Refresh seconds", "Currency symbol"}

func (a *App) openSettings() {
	a.modal = modalSettings
	a.settingsCursor = 0
	a.settingsErr = ""
	a.settingsForm = [4]string{
		a.cfg.API.BaseURL,
		strconv.Itoa(a.cfg.UI.PageLimit),
		strconv.Itoa(a.cfg.UI.RefreshSeconds),
		a.cfg.UI.CurrencySymbol,
	}
}

func (a *App) handleSettingsKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEsc:
		a.modal = modalNone
		return a, nil
	case tea.KeyTab, tea.KeyDown:
		a.settingsCursor = (a.settingsCursor + 1) % len(settingsFields)
		return a, nil
	case tea.KeyShiftTab, tea.KeyUp:
		a.settingsCursor = (a.settingsCursor + len(settingsFields) - 1) % len(settingsFields)
		return a, nil
	case tea.KeyEnter:
		return a.applySettings()
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		cur := a.settingsForm[a.settingsCursor]
		if len(cur) > 0 {
			a.settingsForm[a.settingsCursor] = cur[:len(cur)-1]
		}
	case tea.KeySpace:
		a.settingsForm[a.settingsCursor] += " "
	case tea.KeyRunes:
		a.settingsForm[a.settingsCursor] += string(m.Runes)
	}
	return a, nil
}

func (a *App) applySettings() (tea.Model, tea.Cmd) {
	base := strings.TrimRight(strings.TrimSpace(a.settingsForm[0]), "/")
	limit, limitErr := strconv.Atoi(strings.TrimSpace(a.settingsForm[1]))
	refresh, refreshErr := strconv.Atoi(strings.TrimSpace(a.settingsForm[2]))
	switch {
	case base == "":
		a.settingsErr = "Base URL is required"
	case limitErr != nil || limit <= 0:
		a.settingsErr = "Page limit must be a positive number"
	case refreshErr != nil || refresh <= 0:
		a.settingsErr = "Refresh seconds must be a positive number"
	default:
		a.settingsErr = ""
		// the base URL is read at startup; a change lands on the next run
		a.cfg.API.BaseURL = base
		a.cfg.UI.PageLimit = limit
		a.cfg.UI.RefreshSeconds = refresh
		a.cfg.UI.CurrencySymbol = strings.TrimSpace(a.settingsForm[3])
		a.modal = modalNone
		return a, a.saveSettingsCmd()
	}
	return a, nil
}
