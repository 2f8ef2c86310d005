package controller

import (
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/cloudx/internal/keymap"
	"github.com/oakwood-commons/cloudx/internal/session"
	"github.com/oakwood-commons/cloudx/pkg/logger"
)

type tabRecordedMsg struct{ err error }

type sessionsListedMsg struct {
	sessions []session.Session
	err      error
}

type sessionLoadedMsg struct {
	session session.Session
	err     error
}

type sessionSavedMsg struct {
	name string
	err  error
}

type sessionDeletedMsg struct {
	name string
	err  error
}

func (c *Controller) addTab(service string) *Tab {
	svc, _ := c.opts.Catalog.Get(service)
	c.nextTabID++
	t := newTab(c.nextTabID, svc, c.opts.PageSize, c.opts.FilterMode)
	c.tabs = append(c.tabs, t)
	c.active = len(c.tabs) - 1
	return t
}

// newTab opens another listing of the active service.
func (c *Controller) newTab() tea.Cmd {
	t := c.addTab(c.ActiveTab().Service.Name)
	c.status = fmt.Sprintf("tab %d opened", len(c.tabs))
	return c.loadTab(t)
}

// activate switches to tab i, reloading it if the region or profile changed
// since it was last loaded.
func (c *Controller) activate(i int) tea.Cmd {
	if i < 0 || i >= len(c.tabs) {
		return nil
	}
	c.active = i
	t := c.tabs[i]
	if t.stale {
		return c.loadTab(t)
	}
	return nil
}

// closeTab closes tab i and records it in the closed-tab history. The last
// tab never closes.
func (c *Controller) closeTab(i int) tea.Cmd {
	if len(c.tabs) <= 1 || i < 0 || i >= len(c.tabs) {
		c.status = "cannot close the last tab"
		return nil
	}
	closed := c.tabs[i].session(c.region, c.profile)
	c.tabs = append(c.tabs[:i], c.tabs[i+1:]...)
	if c.active > i || c.active >= len(c.tabs) {
		c.active--
	}
	c.status = "closed " + closed.Title

	cmds := []tea.Cmd{c.activate(c.active)}
	if store := c.opts.Sessions; store != nil {
		cmds = append(cmds, func() tea.Msg {
			return tabRecordedMsg{err: store.RecordClosed(closed)}
		})
	}
	return tea.Batch(cmds...)
}

func (c *Controller) openSessionPicker() tea.Cmd {
	store := c.opts.Sessions
	if store == nil {
		c.status = "sessions are disabled"
		return nil
	}
	return func() tea.Msg {
		list, err := store.List()
		return sessionsListedMsg{sessions: list, err: err}
	}
}

func (c *Controller) onSessionsListed(msg sessionsListedMsg) tea.Cmd {
	if msg.err != nil {
		c.fail("list sessions", msg.err, c.openSessionPicker)
		return nil
	}
	opts := make([]PickerOption, 0, len(msg.sessions))
	for _, s := range msg.sessions {
		opts = append(opts, PickerOption{
			Value:  s.Name,
			Label:  s.Name,
			Detail: fmt.Sprintf("%d tabs, %s", len(s.Tabs), s.Saved.Format("2006-01-02 15:04")),
		})
	}
	c.picker = newPicker(keymap.PickerSession, opts, "")
	c.setMode(keymap.ItemPicker(keymap.PickerSession))
	return nil
}

func (c *Controller) restoreSession(name string) tea.Cmd {
	store := c.opts.Sessions
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		s, err := store.Get(name)
		return sessionLoadedMsg{session: s, err: err}
	}
}

// onSessionLoaded replaces the open tabs with the session's. Tabs naming a
// service missing from the catalog are skipped. Region and profile follow
// the first tab.
func (c *Controller) onSessionLoaded(msg sessionLoadedMsg) tea.Cmd {
	if msg.err != nil {
		c.fail("restore session", msg.err, nil)
		if c.ActiveTab().gen == 0 {
			return c.loadTab(c.ActiveTab())
		}
		return nil
	}
	var tabs []*Tab
	for _, st := range msg.session.Tabs {
		svc, ok := c.opts.Catalog.Get(st.Service)
		if !ok {
			c.log.Info("skipping tab of unknown service", "session", msg.session.Name, logger.ServiceKey, st.Service)
			continue
		}
		c.nextTabID++
		t := newTab(c.nextTabID, svc, c.opts.PageSize, c.opts.FilterMode)
		t.restore(st)
		t.stale = true
		tabs = append(tabs, t)
	}
	if len(tabs) == 0 {
		c.status = fmt.Sprintf("session %q has no usable tabs", msg.session.Name)
		if c.ActiveTab().gen == 0 {
			return c.loadTab(c.ActiveTab())
		}
		return nil
	}
	if first := msg.session.Tabs[0]; first.Region != "" || first.Profile != "" {
		if first.Region != "" {
			c.region = first.Region
		}
		if first.Profile != "" {
			c.profile = first.Profile
		}
	}
	c.tabs = tabs
	c.status = fmt.Sprintf("restored session %q", msg.session.Name)
	return c.activate(0)
}

// saveSession stores the open tabs under a name derived from the clock.
func (c *Controller) saveSession() tea.Cmd {
	store := c.opts.Sessions
	if store == nil {
		c.status = "sessions are disabled"
		return nil
	}
	name := "session-" + c.opts.Now().Format("20060102-150405")
	tabs := make([]session.Tab, 0, len(c.tabs))
	for _, t := range c.tabs {
		tabs = append(tabs, t.session(c.region, c.profile))
	}
	return func() tea.Msg {
		return sessionSavedMsg{name: name, err: store.Save(name, tabs)}
	}
}

func (c *Controller) onSessionSaved(msg sessionSavedMsg) tea.Cmd {
	if msg.err != nil {
		c.fail("save session", msg.err, c.saveSession)
		return nil
	}
	c.status = fmt.Sprintf("saved session %q", msg.name)
	return nil
}

func (c *Controller) deleteSession(name string) tea.Cmd {
	store := c.opts.Sessions
	return func() tea.Msg {
		return sessionDeletedMsg{name: name, err: store.Delete(name)}
	}
}

func (c *Controller) onSessionDeleted(msg sessionDeletedMsg) tea.Cmd {
	if msg.err != nil {
		c.fail("delete session", msg.err, nil)
		return nil
	}
	if c.picker != nil && c.picker.Kind == keymap.PickerSession {
		c.picker.remove(msg.name)
	}
	c.status = fmt.Sprintf("deleted session %q", msg.name)
	return nil
}
