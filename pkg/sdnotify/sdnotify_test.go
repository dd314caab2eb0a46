package sdnotify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	logx "homeworkbot/pkg/logx"
)

func TestNotifierSendsStates(t *testing.T) {
	var got []string
	n := New(logx.Nop())
	n.notify = func(_ bool, state string) (bool, error) {
		got = append(got, state)
		return true, nil
	}

	n.Ready()
	n.Status("last cycle ok")
	n.Watchdog()
	n.Stopping()

	assert.Equal(t, []string{"READY=1", "STATUS=last cycle ok", "WATCHDOG=1", "STOPPING=1"}, got)
}

func TestNotifierIgnoresErrors(t *testing.T) {
	n := New(logx.Nop())
	n.notify = func(bool, string) (bool, error) { return false, errors.New("no socket") }
	assert.NotPanics(t, n.Ready)

	var nilN *Notifier
	assert.NotPanics(t, func() { nilN.Status("x") })
}
