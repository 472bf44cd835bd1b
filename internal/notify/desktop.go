package notify

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

// freedesktop notification service on the session bus.
const (
	notifyDest  = "org.freedesktop.Notifications"
	notifyPath  = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyIface = "org.freedesktop.Notifications"

	signalActionInvoked = notifyIface + ".ActionInvoked"
)

// Action keys understood by the notification server.
const (
	actionDefault = "default"
	actionDismiss = "dismiss"
)

// DesktopNotifier sends notifications to the freedesktop notification
// server over the session D-Bus and listens for action invocations.
type DesktopNotifier struct {
	appName string
	logger  *zap.Logger
	connect func() (*dbus.Conn, error)
}

// NewDesktopNotifier creates a notifier that connects to the session bus
// on each Show.
func NewDesktopNotifier(appName string, logger *zap.Logger) *DesktopNotifier {
	return &DesktopNotifier{
		appName: appName,
		logger:  logger,
		connect: func() (*dbus.Conn, error) { return dbus.ConnectSessionBus() },
	}
}

// Available reports an error when no notification server owns its name
// on the session bus.
func (d *DesktopNotifier) Available() error {
	conn, err := d.connect()
	if err != nil {
		return fmt.Errorf("connecting to session bus: %w", err)
	}
	defer conn.Close()

	var owned bool
	err = conn.BusObject().Call("org.freedesktop.DBus.NameHasOwner", 0, notifyDest).Store(&owned)
	if err != nil {
		return fmt.Errorf("querying %s owner: %w", notifyDest, err)
	}
	if !owned {
		return fmt.Errorf("no notification server owns %s", notifyDest)
	}
	return nil
}

// Show sends n and returns once the server accepted it. A background
// listener resolves the alarm as Acknowledged when the user invokes an
// action; when the alarm resolves any other way the notification is
// withdrawn.
func (d *DesktopNotifier) Show(ctx context.Context, n Notification, alarm *Alarm) error {
	conn, err := d.connect()
	if err != nil {
		return fmt.Errorf("connecting to session bus: %w", err)
	}

	err = conn.AddMatchSignal(
		dbus.WithMatchObjectPath(notifyPath),
		dbus.WithMatchInterface(notifyIface),
	)
	if err != nil {
		conn.Close()
		return fmt.Errorf("subscribing to notification signals: %w", err)
	}

	signals := make(chan *dbus.Signal, 8)
	conn.Signal(signals)

	obj := conn.Object(notifyDest, notifyPath)
	var id uint32
	err = obj.CallWithContext(ctx, notifyIface+".Notify", 0,
		d.appName,
		uint32(0),
		"",
		n.Summary,
		n.Body,
		actionsFor(n),
		hintsFor(n),
		expireTimeout(n),
	).Store(&id)
	if err != nil {
		conn.RemoveSignal(signals)
		conn.Close()
		return fmt.Errorf("sending notification: %w", err)
	}

	d.logger.Debug("desktop notification sent", zap.Uint32("id", id), zap.String("kind", string(n.Kind)))

	go d.listen(conn, obj, id, signals, alarm)
	return nil
}

// listen owns conn until the alarm resolves.
func (d *DesktopNotifier) listen(
	conn *dbus.Conn,
	obj dbus.BusObject,
	id uint32,
	signals chan *dbus.Signal,
	alarm *Alarm,
) {
	defer conn.Close()
	defer conn.RemoveSignal(signals)

	for {
		select {
		case sig, ok := <-signals:
			if !ok {
				return
			}
			action, matched := invokedAction(sig, id)
			if !matched {
				continue
			}
			d.logger.Debug("notification action invoked", zap.Uint32("id", id), zap.String("action", action))
			alarm.Resolve(Acknowledged)

		case <-alarm.Done():
			if alarm.Resolution() != Acknowledged {
				if call := obj.Call(notifyIface+".CloseNotification", 0, id); call.Err != nil {
					d.logger.Debug("closing notification", zap.Uint32("id", id), zap.Error(call.Err))
				}
			}
			return
		}
	}
}

// invokedAction extracts the action key of an ActionInvoked signal
// addressed to notification id.
func invokedAction(sig *dbus.Signal, id uint32) (string, bool) {
	if sig == nil || sig.Name != signalActionInvoked || len(sig.Body) < 2 {
		return "", false
	}
	sigID, ok := sig.Body[0].(uint32)
	if !ok || sigID != id {
		return "", false
	}
	action, ok := sig.Body[1].(string)
	if !ok {
		return "", false
	}
	switch action {
	case actionDefault, actionDismiss:
		return action, true
	default:
		return "", false
	}
}

// actionsFor returns the flat key/label list of the Notify call. The
// default action only exists when the notification waits for dismissal.
func actionsFor(n Notification) []string {
	var actions []string
	if n.WaitForDismiss {
		actions = append(actions, actionDefault, "Open")
	}
	return append(actions, actionDismiss, "Dismiss")
}

func hintsFor(n Notification) map[string]dbus.Variant {
	hints := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(1)),
		"desktop-entry": dbus.MakeVariant(AppName),
	}
	if n.WaitForDismiss {
		hints["resident"] = dbus.MakeVariant(true)
	}
	return hints
}

// expireTimeout is 0 (never) when waiting for dismissal and -1 (server
// default) otherwise.
func expireTimeout(n Notification) int32 {
	if n.WaitForDismiss {
		return 0
	}
	return -1
}
