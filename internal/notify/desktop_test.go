package notify

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
)

func TestInvokedAction(t *testing.T) {
	tests := []struct {
		name       string
		sig        *dbus.Signal
		wantAction string
		wantOK     bool
	}{
		{
			name:       "dismiss on our notification",
			sig:        &dbus.Signal{Name: signalActionInvoked, Body: []interface{}{uint32(7), "dismiss"}},
			wantAction: "dismiss",
			wantOK:     true,
		},
		{
			name:       "default click",
			sig:        &dbus.Signal{Name: signalActionInvoked, Body: []interface{}{uint32(7), "default"}},
			wantAction: "default",
			wantOK:     true,
		},
		{
			name: "other notification",
			sig:  &dbus.Signal{Name: signalActionInvoked, Body: []interface{}{uint32(8), "dismiss"}},
		},
		{
			name: "unknown action",
			sig:  &dbus.Signal{Name: signalActionInvoked, Body: []interface{}{uint32(7), "reply"}},
		},
		{
			name: "closed signal",
			sig:  &dbus.Signal{Name: notifyIface + ".NotificationClosed", Body: []interface{}{uint32(7), uint32(2)}},
		},
		{
			name: "short body",
			sig:  &dbus.Signal{Name: signalActionInvoked, Body: []interface{}{uint32(7)}},
		},
		{
			name: "nil signal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, ok := invokedAction(tt.sig, 7)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantAction, action)
		})
	}
}

func TestActionsFor(t *testing.T) {
	assert.Equal(t, []string{"default", "Open", "dismiss", "Dismiss"}, actionsFor(Notification{WaitForDismiss: true}))
	assert.Equal(t, []string{"dismiss", "Dismiss"}, actionsFor(Notification{}))
}

func TestHintsAndExpiry(t *testing.T) {
	waiting := Notification{WaitForDismiss: true}
	assert.Contains(t, hintsFor(waiting), "resident")
	assert.Equal(t, int32(0), expireTimeout(waiting))

	transient := Notification{}
	assert.NotContains(t, hintsFor(transient), "resident")
	assert.Equal(t, int32(-1), expireTimeout(transient))
}
