package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/salesops/leadscope/internal/api"
	"github.com/salesops/leadscope/internal/config"
	"github.com/salesops/leadscope/internal/lead"
)

func statusf(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}

// waitFreshness blocks on the broadcaster channel and feeds updates
// back into the program. Re-armed after every receipt.
func (a *App) waitFreshness() tea.Cmd {
	ch := a.freshCh
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return freshnessMsg("")
		}
		return freshnessMsg(v)
	}
}

func (a *App) loginCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		res, err := a.client.Login(a.ctx, email, password)
		return loginDoneMsg{res: res, err: err}
	}
}

func (a *App) registerCmd(name, email, password string) tea.Cmd {
	return func() tea.Msg {
		user, err := a.client.Register(a.ctx, name, email, password)
		return registerDoneMsg{user: user, err: err}
	}
}

// reloadLeads bumps the sequence counter so any in-flight response is
// dropped instead of clobbering the newer fetch.
func (a *App) reloadLeads() tea.Cmd {
	a.leadsSeq++
	a.leadsLoading = true
	seq := a.leadsSeq
	params := a.listParams()
	return func() tea.Msg {
		page, err := a.client.Customers(a.ctx, params)
		if err == nil {
			a.bus.PublishNow()
		}
		return leadsPageMsg{seq: seq, page: page, err: err}
	}
}

func (a *App) reloadPending() tea.Cmd {
	a.pendingSeq++
	a.pendingLoading = true
	seq := a.pendingSeq
	params := a.listParams()
	params.Page = 1
	params.Limit = 100
	return func() tea.Msg {
		page, err := a.client.Customers(a.ctx, params)
		if err != nil {
			return pendingPageMsg{seq: seq, err: err}
		}
		a.bus.PublishNow()
		return pendingPageMsg{
			seq:       seq,
			customers: lead.PendingOnly(page.Customers),
			total:     page.Pagination.Total,
		}
	}
}

// loadDashboard fires the three dashboard fetches concurrently; the
// accumulator in Update applies state once all three settled.
func (a *App) loadDashboard() tea.Cmd {
	a.dashSeq++
	a.dashLoading = true
	a.dashParts = &dashAccumulator{}
	seq := a.dashSeq
	return tea.Batch(
		func() tea.Msg {
			stats, err := a.client.CustomerStats(a.ctx)
			if err == nil {
				a.bus.PublishNow()
			}
			return dashPartMsg{seq: seq, part: dashPartStats, stats: stats, err: err}
		},
		func() tea.Msg {
			pred, err := a.client.PredictionStats(a.ctx)
			if err == nil {
				a.bus.PublishNow()
			}
			return dashPartMsg{seq: seq, part: dashPartPred, pred: pred, err: err}
		},
		func() tea.Msg {
			top, err := a.client.TopLeads(a.ctx, 5, 0)
			if err == nil {
				a.bus.PublishNow()
			}
			return dashPartMsg{seq: seq, part: dashPartTop, top: top, err: err}
		},
	)
}

func (a *App) loadAnalytics() tea.Cmd {
	a.anaSeq++
	a.anaLoading = true
	seq := a.anaSeq
	return func() tea.Msg {
		pred, err := a.client.PredictionStats(a.ctx)
		if err != nil {
			return analyticsMsg{seq: seq, err: err}
		}
		stats, err := a.client.CustomerStats(a.ctx)
		if err != nil {
			return analyticsMsg{seq: seq, err: err}
		}
		a.bus.PublishNow()
		return analyticsMsg{seq: seq, pred: pred, stats: stats}
	}
}

func (a *App) loadMonitor() tea.Cmd {
	a.monLoading = true
	return func() tea.Msg {
		job, err := a.client.JobStatus(a.ctx)
		if err != nil {
			return monitorMsg{err: err}
		}
		cache, err := a.client.CacheStats(a.ctx)
		if err != nil {
			return monitorMsg{err: err}
		}
		a.bus.PublishNow()
		return monitorMsg{job: job, cache: cache}
	}
}

// monitorTick schedules the next monitor refresh. The tick carries the
// chain's sequence so re-entering the view supersedes old chains
// instead of stacking them.
func (a *App) monitorTick() tea.Cmd {
	interval := time.Duration(a.cfg.UI.RefreshSeconds) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	seq := a.monSeq
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return monitorTickMsg{seq: seq}
	})
}

func (a *App) triggerJobCmd() tea.Cmd {
	a.monBusy = true
	return func() tea.Msg {
		res, err := a.client.TriggerJob(a.ctx)
		return triggerDoneMsg{res: res, err: err}
	}
}

// delayedMonitorRefresh gives the backend a moment to finish the
// triggered run before re-reading its status.
func (a *App) delayedMonitorRefresh() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return delayedRefreshMsg{}
	})
}

func (a *App) loadHistory(customerID int64) tea.Cmd {
	a.historySeq++
	seq := a.historySeq
	return func() tea.Msg {
		entries, err := a.client.PredictionHistory(a.ctx, customerID)
		return historyMsg{seq: seq, customerID: customerID, entries: entries, err: err}
	}
}

// predictCmd scores one customer. A customer that already has a score
// keeps it; the backend is only called for unscored records.
func (a *App) predictCmd(c lead.Customer) tea.Cmd {
	if c.Scored() {
		a.predictNotice = "Using cached score"
		return func() tea.Msg {
			return predictDoneMsg{cust: c}
		}
	}
	a.predictBusy = true
	a.predictNotice = ""
	return func() tea.Msg {
		cust, err := a.client.PredictCustomer(a.ctx, c.ID)
		return predictDoneMsg{cust: cust, err: err}
	}
}

func (a *App) batchPredictCmd(ids []int64) tea.Cmd {
	a.batchBusy = true
	return func() tea.Msg {
		res, err := a.client.PredictBatch(a.ctx, ids)
		return batchDoneMsg{res: res, err: err}
	}
}

// saveCustomerCmd creates or updates one customer record. id zero
// means create.
func (a *App) saveCustomerCmd(id int64, p api.CustomerPayload) tea.Cmd {
	a.saveBusy = true
	return func() tea.Msg {
		if id == 0 {
			cust, err := a.client.CreateCustomer(a.ctx, p)
			return customerSavedMsg{cust: cust, created: true, err: err}
		}
		cust, err := a.client.UpdateCustomer(a.ctx, id, p)
		return customerSavedMsg{cust: cust, err: err}
	}
}

// refreshProfile re-reads the signed-in user for the stored token, so
// a revoked session surfaces at startup instead of on the first fetch.
func (a *App) refreshProfile() tea.Cmd {
	return func() tea.Msg {
		user, err := a.client.Me(a.ctx)
		return profileMsg{user: user, err: err}
	}
}

func (a *App) saveSettingsCmd() tea.Cmd {
	cfg := a.cfg
	return func() tea.Msg {
		if err := config.Save(cfg); err != nil {
			return errMsg{err}
		}
		return statusMsg("Settings saved")
	}
}

func (a *App) deleteCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		err := a.client.DeleteCustomer(a.ctx, id)
		return deleteDoneMsg{err: err}
	}
}

func (a *App) uploadCmd(path string) tea.Cmd {
	abs := path
	if !filepath.IsAbs(path) {
		if p, err := filepath.Abs(path); err == nil {
			abs = p
		}
	}
	a.uploadBusy = true
	return func() tea.Msg {
		f, err := os.Open(abs)
		if err != nil {
			return uploadDoneMsg{err: fmt.Errorf("open %s: %w", abs, err)}
		}
		defer f.Close()
		sum, err := a.client.UploadCSV(a.ctx, filepath.Base(abs), f)
		return uploadDoneMsg{sum: sum, err: err}
	}
}

// closeImportSoon dismisses the import view after a clean upload.
func (a *App) closeImportSoon() tea.Cmd {
	return tea.Tick(1500*time.Millisecond, func(time.Time) tea.Msg {
		return importClosedMsg{}
	})
}

func (a *App) downloadTemplateCmd() tea.Cmd {
	dir := filepath.Dir(a.importPath)
	return func() tea.Msg {
		data, err := a.client.CSVTemplate(a.ctx)
		if err != nil {
			return templateSavedMsg{err: err}
		}
		path := filepath.Join(dir, "customer-template.csv")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return templateSavedMsg{err: err}
		}
		return templateSavedMsg{path: path}
	}
}
