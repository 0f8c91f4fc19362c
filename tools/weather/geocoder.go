package weather

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/codingsince1985/geo-golang"
	"github.com/codingsince1985/geo-golang/openstreetmap"
)

// DefaultNominatimURL is the public Nominatim instance
const DefaultNominatimURL = "https://nominatim.openstreetmap.org/"

// Coordinates is a latitude and longitude pair
type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Geocoder resolves a free text place name.
// No match is reported as nil Coordinates without error.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Coordinates, error)
}

type nominatim struct {
	geocoder geo.Geocoder
}

// NewNominatim returns Geocoder backed by the Nominatim service,
// the first match ranked by the service wins.
func NewNominatim(baseURL string) Geocoder {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &nominatim{
		geocoder: openstreetmap.GeocoderWithURL(baseURL),
	}
}

func (n *nominatim) Geocode(ctx context.Context, address string) (*Coordinates, error) {
	type result struct {
		loc *geo.Location
		err error
	}
	// the geo client has its own timeout and does not accept a context
	ch := make(chan result, 1)
	go func() {
		loc, err := n.geocoder.Geocode(address)
		ch <- result{loc: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, errors.WithStack(ctx.Err())
	case res := <-ch:
		if res.err != nil {
			return nil, errors.WithStack(res.err)
		}
		if res.loc == nil {
			return nil, nil
		}
		return &Coordinates{Lat: res.loc.Lat, Lng: res.loc.Lng}, nil
	}
}
