// Package sdnotify reports process state to systemd (Type=notify units).
// Outside systemd every call is a no-op.
package sdnotify

import (
	"github.com/coreos/go-systemd/v22/daemon"

	logx "homeworkbot/pkg/logx"
)

// Notifier sends sd_notify messages.
type Notifier struct {
	log    logx.Logger
	notify func(unsetEnv bool, state string) (bool, error)
}

func New(log logx.Logger) *Notifier {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Notifier{log: log, notify: daemon.SdNotify}
}

func (n *Notifier) Ready()    { n.send(daemon.SdNotifyReady) }
func (n *Notifier) Stopping() { n.send(daemon.SdNotifyStopping) }
func (n *Notifier) Watchdog() { n.send(daemon.SdNotifyWatchdog) }

// Status sets the free-form status line shown by `systemctl status`.
func (n *Notifier) Status(s string) { n.send("STATUS=" + s) }

func (n *Notifier) send(state string) {
	if n == nil || n.notify == nil {
		return
	}
	if _, err := n.notify(false, state); err != nil {
		n.log.Debug("sd_notify failed", logx.String("state", state), logx.Err(err))
	}
}
