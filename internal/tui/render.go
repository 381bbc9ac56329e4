package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/salesops/leadscope/internal/chartgeom"
	"github.com/salesops/leadscope/internal/lead"
	"github.com/salesops/leadscope/internal/series"
)

// styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	highStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	mediumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	lowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func bandStyle(b lead.Band) lipgloss.Style {
	switch b {
	case lead.High:
		return highStyle
	case lead.Medium:
		return mediumStyle
	case lead.Low:
		return lowStyle
	default:
		return dimStyle
	}
}

func (a *App) View() string {
	var body string
	switch a.state {
	case viewLogin:
		body = a.renderLogin()
	case viewRegister:
		body = a.renderRegister()
	case viewLeads:
		body = a.renderLeads()
	case viewPending:
		body = a.renderPending()
	case viewAnalytics:
		body = a.renderAnalytics()
	case viewMonitor:
		body = a.renderMonitor()
	case viewImport:
		body = a.renderImport()
	case viewDetail:
		body = a.renderDetail()
	default:
		body = a.renderDashboard()
	}
	if a.modal != modalNone {
		body += "\n\n" + a.renderModal()
	}
	if a.status != "" {
		body += "\n" + a.status
	}
	return body
}

func (a *App) header(name string) string {
	line := titleStyle.Render("LeadScope — " + name)
	meta := ""
	if a.user.Email != "" {
		meta = a.user.Email
	}
	if a.lastUpdated != "" {
		stamp := a.lastUpdated
		if t, err := time.Parse(time.RFC3339, a.lastUpdated); err == nil {
			stamp = t.Local().Format("15:04:05")
		}
		if meta != "" {
			meta += "  "
		}
		meta += "Last updated: " + stamp
	}
	if meta != "" {
		line += "\n" + dimStyle.Render(meta)
	}
	return line
}

func field(label, value string, active, masked bool) string {
	shown := value
	if masked {
		shown = strings.Repeat("*", len(value))
	}
	marker := " "
	if active {
		marker = "▶"
	}
	return fmt.Sprintf("%s %-10s %s", marker, label+":", shown)
}

func (a *App) renderLogin() string {
	out := titleStyle.Render("LeadScope — Sign in") + "\n\n"
	out += field("Email", a.formEmail, a.formCursor == 0, false) + "\n"
	out += field("Password", a.formPass, a.formCursor == 1, true) + "\n"
	if a.formErr != "" {
		out += "\n" + errStyle.Render(a.formErr)
	}
	if a.authBusy {
		out += "\n" + dimStyle.Render("signing in...")
	}
	out += "\n\n[tab] Next field  [enter] Sign in  [ctrl+r] Register  [esc] Quit"
	return out
}

func (a *App) renderRegister() string {
	out := titleStyle.Render("LeadScope — Create account") + "\n\n"
	out += field("Name", a.formName, a.formCursor == 0, false) + "\n"
	out += field("Email", a.formEmail, a.formCursor == 1, false) + "\n"
	out += field("Password", a.formPass, a.formCursor == 2, true) + "\n"
	out += field("Confirm", a.formConfirm, a.formCursor == 3, true) + "\n"
	if a.formErr != "" {
		out += "\n" + errStyle.Render(a.formErr)
	}
	if a.authBusy {
		out += "\n" + dimStyle.Render("creating account...")
	}
	out += "\n\n[tab] Next field  [enter] Create  [esc] Back to sign in"
	return out
}

func (a *App) renderDashboard() string {
	out := a.header("Dashboard") + "\n\n"
	if a.dashLoading && !a.dashLoaded {
		return out + a.spinner.View() + " loading..."
	}
	if a.dashErr != "" {
		out += errStyle.Render(a.dashErr) + "\n"
		if !a.dashLoaded {
			return out + "\n[u] Retry  [q] Quit"
		}
	}
	s := a.dashStats
	out += fmt.Sprintf("Customers: %d   Avg age: %.1f   Pending calls: %d   Conversions: %d\n",
		s.TotalCustomers, s.AvgAge, s.PendingCalls, s.MonthlyConversions)
	out += fmt.Sprintf("Housing loans: %d   Personal loans: %d   Jobs: %d   Education levels: %d\n",
		s.WithHousingLoan, s.WithPersonalLoan, s.UniqueJobs, s.UniqueEducationLevels)
	out += fmt.Sprintf("Predictions: %d   Avg score: %.2f   High priority: %d\n\n",
		a.dashPred.TotalPredictions, a.dashPred.AverageScore, a.dashPred.HighPriorityCount)

	out += a.renderTrend(s.MonthlyTrend)

	out += "\nTop leads:\n"
	if len(a.dashTop) == 0 {
		out += dimStyle.Render("  (none yet)") + "\n"
	}
	for _, c := range a.dashTop {
		band := c.Priority()
		out += fmt.Sprintf("  %-28s %-14s %6s %s\n",
			c.DisplayName(), c.Job, lead.FormatScore(c.Score), bandStyle(band).Render(band.Label()))
	}
	out += "\n[l] Leads  [p] Pending  [a] Analytics  [m] Monitor  [i] Import  [s] Settings  [u] Refresh  [O] Logout  [q] Quit"
	return out
}

func (a *App) renderTrend(trend []lead.TrendPoint) string {
	res := series.Build(trend)
	if len(res.Totals.Points) == 0 {
		return dimStyle.Render("No monthly trend data yet.") + "\n"
	}
	out := "Monthly leads"
	if res.Estimated {
		out += dimStyle.Render("  (estimated breakdown)")
	}
	out += "\n"
	for i, p := range res.Totals.Points {
		width := int(p.Value / res.Totals.Max * 24)
		hp := res.HighPriority.Points[i].Value
		out += fmt.Sprintf("  %-4s %-24s %4.0f  high %3.0f  avg %.2f\n",
			p.Month, strings.Repeat("█", width), p.Value, hp, res.AvgScore.Points[i].Value)
	}
	out += fmt.Sprintf("Latest: %d leads, %d high priority, avg score %d%%\n",
		res.LatestTotal, res.LatestHighPriority, res.LatestAvgScorePct)
	return out
}

func (a *App) renderLeads() string {
	out := a.header("Leads") + "\n"

	search := a.search
	if a.searching {
		search += "▌"
	}
	bandLabel := "All"
	if !a.bandAll {
		bandLabel = a.band.Label()
	}
	out += fmt.Sprintf("Search: %-24s Band: %-8s Page %d", search, bandLabel, a.pageNum)
	if a.pagination.TotalPages > 0 {
		out += fmt.Sprintf("/%d (%d total)", a.pagination.TotalPages, a.pagination.Total)
	}
	if !a.filters.empty() {
		out += "  " + dimStyle.Render("[filters active]")
	}
	out += "\n\n"

	if a.leadsLoading && !a.leadsLoaded {
		return out + a.spinner.View() + " loading..."
	}
	if a.leadsErr != "" {
		out += errStyle.Render(a.leadsErr) + "\n"
		if !a.leadsLoaded {
			return out + "\n[u] Retry  [q] Quit"
		}
		out += dimStyle.Render("showing last loaded results") + "\n"
	}

	visible := a.visibleLeads()
	if len(visible) == 0 {
		out += dimStyle.Render("No customers match.") + "\n"
	}
	for i, c := range visible {
		marker := " "
		if i == a.leadCursor {
			marker = "▶"
		}
		check := " "
		if a.selected[c.ID] {
			check = "✓"
		}
		band := c.Priority()
		out += fmt.Sprintf("%s[%s] %-26s %3d  %-14s %10s  %6s %s\n",
			marker, check, c.DisplayName(), c.Age, c.Job,
			lead.FormatBalance(c.Balance, a.cfg.UI.CurrencySymbol),
			lead.FormatScore(c.Score), bandStyle(band).Render(band.Label()))
	}
	if a.batchBusy {
		out += dimStyle.Render("batch prediction running...") + "\n"
	}
	out += "\n[/] Search  [b] Band  [f] Filters  [c] Clear filters  [space] Select  [v] All  [r] Batch predict  [enter] Detail  [n] New  [e] Edit  [x] Delete  [←/→] Page  [u] Refresh"
	return out
}

func (a *App) renderPending() string {
	out := a.header("Pending Calls") + "\n\n"
	if a.pendingLoading && !a.pendingLoaded {
		return out + a.spinner.View() + " loading..."
	}
	if a.pendingErr != "" {
		out += errStyle.Render(a.pendingErr) + "\n"
		if !a.pendingLoaded {
			return out + "\n[u] Retry  [q] Quit"
		}
	}
	out += fmt.Sprintf("Unscored customers: %d of %d fetched\n\n", len(a.pendingLeads), a.pendingTotal)
	if len(a.pendingLeads) == 0 {
		out += dimStyle.Render("Everyone is scored.") + "\n"
	}
	for i, c := range a.pendingLeads {
		marker := " "
		if i == a.pendingCursor {
			marker = "▶"
		}
		out += fmt.Sprintf("%s %-28s %3d  %-14s %s\n",
			marker, c.DisplayName(), c.Age, c.Job, dimStyle.Render("Pending"))
	}
	out += "\n[enter] Detail  [u] Refresh  [d] Dashboard  [l] Leads"
	return out
}

func (a *App) renderAnalytics() string {
	out := a.header("Prediction Analytics") + "\n\n"
	if a.anaLoading && !a.anaLoaded {
		return out + a.spinner.View() + " loading..."
	}
	if a.anaErr != "" {
		out += errStyle.Render(a.anaErr) + "\n"
		if !a.anaLoaded {
			return out + "\n[u] Retry  [q] Quit"
		}
	}
	p := a.anaPred
	out += fmt.Sprintf("Predictions: %d   Positive: %d   Negative: %d   Conversion: %.1f%%\n",
		p.TotalPredictions, p.PositivePredictions, p.NegativePredictions, p.ConversionRate)
	out += fmt.Sprintf("Highest: %.2f   Lowest: %.2f   Unscored: %d\n\n",
		p.HighestScore, p.LowestScore, p.CustomersWithoutPredictions)

	out += "Priority distribution\n"
	segs := chartgeom.Donut(p.LowPriorityCount, p.MediumPriorityCount, p.HighPriorityCount)
	for _, seg := range segs {
		width := int(seg.Percent / 100 * 30)
		label := seg.Label
		style := dimStyle
		switch seg.Label {
		case "High":
			style = highStyle
		case "Medium":
			style = mediumStyle
		case "Low":
			style = lowStyle
		}
		out += fmt.Sprintf("  %-7s %-30s %5.1f%%  (%d)\n",
			style.Render(label), strings.Repeat("█", width), seg.Percent, seg.Count)
	}

	gauge := chartgeom.NewGauge(p.AverageScore * 100)
	out += fmt.Sprintf("\nAverage score gauge: %.0f/100  needle %+.0f°  arc %.0f/%.0f\n",
		gauge.Score, gauge.NeedleDeg, gauge.ArcLength, chartgeom.GaugeArcTotal)

	out += "\n" + a.renderTrend(a.anaStats.MonthlyTrend)
	out += "\n[u] Refresh  [d] Dashboard  [l] Leads"
	return out
}

func (a *App) renderMonitor() string {
	out := a.header("Auto-Predict Monitor") + "\n\n"
	if a.monLoading && !a.monLoaded {
		return out + a.spinner.View() + " loading..."
	}
	if a.monErr != "" {
		out += errStyle.Render(a.monErr) + "\n"
		if !a.monLoaded {
			return out + "\n[u] Retry  [q] Quit"
		}
	}
	j := a.monJob
	state := "disabled"
	if j.Enabled {
		state = "enabled"
	}
	running := "idle"
	if j.Running {
		running = "running"
	}
	out += fmt.Sprintf("Job: %s, %s   Runs: %d\n", state, running, j.RunCount)
	out += fmt.Sprintf("Last run: %s   Next run: %s\n\n", stamp(j.LastRun), stamp(j.NextRun))
	c := a.monCache
	out += fmt.Sprintf("Cache: %d hits, %d misses, %d keys   Hit rate: %.1f%%\n",
		c.Hits, c.Misses, c.Keys, c.HitRate())
	if a.monBusy {
		out += dimStyle.Render("\ntrigger in flight...")
	}
	refresh := a.cfg.UI.RefreshSeconds
	if refresh <= 0 {
		refresh = 30
	}
	out += fmt.Sprintf("\nAuto-refresh every %ds while this view is open.\n", refresh)
	out += "\n[t] Trigger job  [u] Refresh  [d] Dashboard"
	return out
}

func stamp(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func (a *App) renderImport() string {
	out := a.header("Import CSV") + "\n\n"
	out += fmt.Sprintf("CSV path: %s\n", a.importPath)
	out += "Type a path and press Enter to upload.\n"
	if a.uploadBusy {
		out += dimStyle.Render("uploading...") + "\n"
	}
	if u := a.lastUpload; u != nil {
		out += fmt.Sprintf("\n%s\nImported: %d   Failed: %d\n", u.Message, u.Imported, u.Failed)
		for i, e := range u.Errors {
			if i == 5 {
				out += dimStyle.Render(fmt.Sprintf("  (+%d more)", len(u.Errors)-5)) + "\n"
				break
			}
			out += errStyle.Render("  "+e) + "\n"
		}
		if u.AutoCloses() {
			out += dimStyle.Render("closing...") + "\n"
		}
	}
	out += "\n[enter] Upload  [ctrl+t] Save template  [esc] Back  [ctrl+c] Quit"
	return out
}

func (a *App) renderDetail() string {
	if a.detail == nil {
		return a.header("Customer") + "\n\nNo customer selected.\n[esc] Back"
	}
	c := *a.detail
	out := a.header(c.DisplayName()) + "\n\n"
	tabs := "[Details]  History "
	if a.detailTab == tabHistory {
		tabs = " Details  [History]"
	}
	out += tabs + "\n\n"

	if a.detailTab == tabDetails {
		band := c.Priority()
		out += fmt.Sprintf("Score: %s  %s", lead.FormatScore(c.Score), bandStyle(band).Render(band.Label()))
		if a.predictNotice != "" {
			out += "  " + dimStyle.Render(a.predictNotice)
		}
		out += "\n"
		if c.Score != nil {
			g := chartgeom.NewGauge(*c.Score * 100)
			out += fmt.Sprintf("Gauge: needle %+.0f°, arc %.0f\n", g.NeedleDeg, g.ArcLength)
		}
		out += fmt.Sprintf("Age: %d   Job: %s   Marital: %s   Education: %s\n", c.Age, c.Job, c.Marital, c.Education)
		out += fmt.Sprintf("Balance: %s   Housing loan: %t   Personal loan: %t   Default: %t\n",
			lead.FormatBalance(c.Balance, a.cfg.UI.CurrencySymbol), c.HasHousingLoan, c.HasPersonalLoan, c.HasDefault)
		out += fmt.Sprintf("Contact: %s   Month: %s   Campaign: %d   Previous: %d   Outcome: %s\n",
			c.Contact, c.Month, c.Campaign, c.Previous, c.POutcome)
		if c.Email != "" || c.Phone != "" {
			out += fmt.Sprintf("Email: %s   Phone: %s\n", c.Email, c.Phone)
		}
		if c.PredictedAt != nil {
			out += fmt.Sprintf("Predicted: %s   Model: %s\n", stamp(c.PredictedAt), c.ModelVersion)
		}
		if a.predictBusy {
			out += dimStyle.Render("predicting...") + "\n"
		}
	} else {
		if a.historyErr != "" {
			out += errStyle.Render(a.historyErr) + "\n"
		} else if len(a.history) == 0 {
			out += dimStyle.Render("No prediction history yet.") + "\n"
		}
		for i, h := range a.history {
			tag := ""
			if i == 0 {
				tag = highStyle.Render(" Latest")
			}
			version := h.ModelVersion
			if version == "" {
				version = "unknown"
			}
			out += fmt.Sprintf("  %s  %6.1f%%  model %-10s%s\n",
				h.PredictedAt.Local().Format("2006-01-02 15:04"), h.Score*100, version, tag)
		}
	}
	out += "\n[tab] Switch tab  [p] Predict  [e] Edit  [esc] Back"
	return out
}

func (a *App) renderModal() string {
	switch a.modal {
	case modalConfirmBatch:
		return titleStyle.Render("Run batch prediction?") +
			fmt.Sprintf("\n%d customers selected.\n[y] Yes  [n] No", len(a.selected))
	case modalConfirmDelete:
		visible := a.visibleLeads()
		name := ""
		if a.leadCursor < len(visible) {
			name = visible[a.leadCursor].DisplayName()
		}
		return titleStyle.Render("Delete customer?") +
			fmt.Sprintf("\n%s will be removed permanently.\n[y] Yes  [n] No", name)
	case modalFilters:
		out := titleStyle.Render("Filters") + "\n"
		for i, label := range filterFields {
			marker := " "
			if i == a.filterCursor {
				marker = "▶"
			}
			var value string
			if i < 5 {
				value = a.filterFieldValue(i)
				if i == a.filterCursor {
					value = a.filterInput + "▌"
				}
			} else {
				value = triStateLabel(*a.boolFilterAt(i))
			}
			out += fmt.Sprintf("%s %-14s %s\n", marker, label+":", value)
		}
		out += "[tab] Next  [space] Toggle  [enter] Apply  [esc] Cancel"
		return out
	case modalCustomer:
		title := "New customer"
		if a.editID != 0 {
			title = "Edit customer"
		}
		out := titleStyle.Render(title) + "\n"
		for i, label := range customerFields {
			marker := " "
			if i == a.custFormCursor {
				marker = "▶"
			}
			var value string
			if i < customerBoolOffset {
				value = a.custFieldValue(i)
				if i == a.custFormCursor {
					value = a.custFormInput + "▌"
				}
			} else {
				value = "no"
				if *a.custBoolAt(i) {
					value = "yes"
				}
			}
			out += fmt.Sprintf("%s %-14s %s\n", marker, label+":", value)
		}
		if a.custFormErr != "" {
			out += errStyle.Render(a.custFormErr) + "\n"
		}
		if a.saveBusy {
			out += dimStyle.Render("saving...") + "\n"
		}
		out += "[tab] Next  [space] Toggle  [enter] Save  [esc] Cancel"
		return out
	case modalSettings:
		out := titleStyle.Render("Settings") + "\n"
		for i, label := range settingsFields {
			marker := " "
			value := a.settingsForm[i]
			if i == a.settingsCursor {
				marker = "▶"
				value += "▌"
			}
			out += fmt.Sprintf("%s %-16s %s\n", marker, label+":", value)
		}
		if a.settingsErr != "" {
			out += errStyle.Render(a.settingsErr) + "\n"
		}
		out += "[tab] Next  [enter] Save  [esc] Cancel"
		return out
	default:
		return ""
	}
}

func triStateLabel(v *bool) string {
	switch {
	case v == nil:
		return "any"
	case *v:
		return "yes"
	default:
		return "no"
	}
}
