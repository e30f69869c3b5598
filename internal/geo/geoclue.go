package geo

import (
	"context"
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	geoclueService    = "org.freedesktop.GeoClue2"
	geoclueManager    = dbus.ObjectPath("/org/freedesktop/GeoClue2/Manager")
	clientInterface   = "org.freedesktop.GeoClue2.Client"
	locationInterface = "org.freedesktop.GeoClue2.Location"

	// GCLUE_ACCURACY_LEVEL_CITY; municipality precision is all we need.
	accuracyCity = uint32(4)
)

var ErrNoLocation = errors.New("location unavailable")

type Position struct {
	Latitude  float64
	Longitude float64
}

type Locator struct {
	conn      *dbus.Conn
	desktopID string
}

func NewLocator(ctx context.Context, desktopID string) (*Locator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect system bus: %w", err)
	}

	if !serviceAvailable(conn, geoclueService) {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: geoclue service not found", ErrNoLocation)
	}

	return &Locator{conn: conn, desktopID: desktopID}, nil
}

func (l *Locator) Close() error {
	if l == nil || l.conn == nil {
		return nil
	}
	return l.conn.Close()
}

// Locate starts a GeoClue client and waits for its first location update.
func (l *Locator) Locate(ctx context.Context) (Position, error) {
	manager := l.conn.Object(geoclueService, geoclueManager)

	var clientPath dbus.ObjectPath
	if err := manager.CallWithContext(ctx, "org.freedesktop.GeoClue2.Manager.GetClient", 0).Store(&clientPath); err != nil {
		return Position{}, fmt.Errorf("geoclue GetClient: %w", err)
	}

	client := l.conn.Object(geoclueService, clientPath)
	if err := client.SetProperty(clientInterface+".DesktopId", dbus.MakeVariant(l.desktopID)); err != nil {
		return Position{}, fmt.Errorf("geoclue set DesktopId: %w", err)
	}
	if err := client.SetProperty(clientInterface+".RequestedAccuracyLevel", dbus.MakeVariant(accuracyCity)); err != nil {
		return Position{}, fmt.Errorf("geoclue set accuracy: %w", err)
	}

	matchOptions := []dbus.MatchOption{
		dbus.WithMatchObjectPath(clientPath),
		dbus.WithMatchInterface(clientInterface),
		dbus.WithMatchMember("LocationUpdated"),
	}
	if err := l.conn.AddMatchSignalContext(ctx, matchOptions...); err != nil {
		return Position{}, fmt.Errorf("geoclue subscribe: %w", err)
	}
	defer func() {
		_ = l.conn.RemoveMatchSignal(matchOptions...)
	}()

	signals := make(chan *dbus.Signal, 4)
	l.conn.Signal(signals)
	defer l.conn.RemoveSignal(signals)

	if err := client.CallWithContext(ctx, clientInterface+".Start", 0).Err; err != nil {
		return Position{}, fmt.Errorf("geoclue Start: %w", err)
	}
	defer func() {
		_ = client.Call(clientInterface+".Stop", 0).Err
	}()

	for {
		select {
		case <-ctx.Done():
			return Position{}, fmt.Errorf("%w: %w", ErrNoLocation, ctx.Err())
		case signal, ok := <-signals:
			if !ok {
				return Position{}, ErrNoLocation
			}
			locationPath, ok := updatedLocationPath(signal, clientPath)
			if !ok {
				continue
			}
			return l.readPosition(locationPath)
		}
	}
}

func (l *Locator) readPosition(path dbus.ObjectPath) (Position, error) {
	location := l.conn.Object(geoclueService, path)

	latitude, err := floatProperty(location, locationInterface+".Latitude")
	if err != nil {
		return Position{}, err
	}
	longitude, err := floatProperty(location, locationInterface+".Longitude")
	if err != nil {
		return Position{}, err
	}
	return Position{Latitude: latitude, Longitude: longitude}, nil
}

func updatedLocationPath(signal *dbus.Signal, clientPath dbus.ObjectPath) (dbus.ObjectPath, bool) {
	if signal == nil || signal.Path != clientPath || signal.Name != clientInterface+".LocationUpdated" {
		return "", false
	}
	if len(signal.Body) < 2 {
		return "", false
	}
	path, ok := signal.Body[1].(dbus.ObjectPath)
	if !ok || path == "" || path == "/" {
		return "", false
	}
	return path, true
}

func floatProperty(object dbus.BusObject, name string) (float64, error) {
	variant, err := object.GetProperty(name)
	if err != nil {
		return 0, fmt.Errorf("geoclue read %s: %w", name, err)
	}
	value, ok := variant.Value().(float64)
	if !ok {
		return 0, fmt.Errorf("geoclue read %s: unexpected type %s", name, variant.Signature())
	}
	return value, nil
}

func serviceAvailable(conn *dbus.Conn, name string) bool {
	busObject := conn.Object("org.freedesktop.DBus", "/org/freedesktop/DBus")

	for _, method := range []string{"org.freedesktop.DBus.ListNames", "org.freedesktop.DBus.ListActivatableNames"} {
		var names []string
		if err := busObject.Call(method, 0).Store(&names); err != nil {
			continue
		}
		for _, candidate := range names {
			if candidate == name {
				return true
			}
		}
	}
	return false
}
