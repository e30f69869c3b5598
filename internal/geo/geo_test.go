package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
)

func TestParsePlace_PrefersMunicipality(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"display_name":"Arnhem, Gelderland, Nederland","address":{"city":"Arnhem","municipality":"Gemeente Arnhem","state":"Gelderland","country_code":"nl"}}`)
	place, err := parsePlace(raw)
	if err != nil {
		t.Fatalf("parse place: %v", err)
	}
	if place.Province != "Gelderland" || place.Municipality != "Gemeente Arnhem" {
		t.Fatalf("unexpected place: %+v", place)
	}
}

func TestParsePlace_FallsBackToVillage(t *testing.T) {
	t.Parallel()

	place, err := parsePlace([]byte(`{"address":{"village":"Abcoude","province":"Utrecht"}}`))
	if err != nil {
		t.Fatalf("parse place: %v", err)
	}
	if place.Province != "Utrecht" || place.Municipality != "Abcoude" {
		t.Fatalf("unexpected place: %+v", place)
	}
}

func TestParsePlace_ErrorResponse(t *testing.T) {
	t.Parallel()

	if _, err := parsePlace([]byte(`{"error":"Unable to geocode"}`)); err == nil {
		t.Fatalf("expected geocode error")
	}
}

func TestReverse_QueriesNominatim(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("format") != "jsonv2" || query.Get("lat") != "52.370216" || query.Get("lon") != "4.895168" {
			http.Error(w, "bad query", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"address":{"city":"Amsterdam","state":"Noord-Holland"}}`))
	}))
	defer server.Close()

	geocoder := Geocoder{BaseURL: server.URL + "/reverse", UserAgent: "test", Timeout: 5 * time.Second}
	place, err := geocoder.Reverse(context.Background(), Position{Latitude: 52.370216, Longitude: 4.895168})
	if err != nil {
		t.Fatalf("reverse: %v", err)
	}
	if place.Province != "Noord-Holland" || place.Municipality != "Amsterdam" {
		t.Fatalf("unexpected place: %+v", place)
	}
}

func TestUpdatedLocationPath(t *testing.T) {
	t.Parallel()

	clientPath := dbus.ObjectPath("/org/freedesktop/GeoClue2/Client/1")
	signal := &dbus.Signal{
		Path: clientPath,
		Name: clientInterface + ".LocationUpdated",
		Body: []interface{}{dbus.ObjectPath("/"), dbus.ObjectPath("/org/freedesktop/GeoClue2/Location/1")},
	}

	path, ok := updatedLocationPath(signal, clientPath)
	if !ok || path != "/org/freedesktop/GeoClue2/Location/1" {
		t.Fatalf("unexpected location path: %q (%v)", path, ok)
	}

	other := *signal
	other.Path = "/org/freedesktop/GeoClue2/Client/2"
	if _, ok := updatedLocationPath(&other, clientPath); ok {
		t.Fatalf("signals from other clients must be ignored")
	}
}
