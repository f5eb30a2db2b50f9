package domain

import (
	"context"
	"log/slog"
)

// EnrichWithGeocoding fills the result's formatted address from a reverse
// lookup of its coordinates. A caller-supplied address is kept. A nil geocoder
// leaves the result untouched, and a failed lookup only sets GeoSource.
func EnrichWithGeocoding(ctx context.Context, res ForecastResult, geocoder Geocoder, logger *slog.Logger) ForecastResult {
	if geocoder == nil {
		return res
	}
	if res.FormattedAddress != "" {
		res.GeoSource = GeoSourceOriginal
		return res
	}

	result, err := geocoder.ReverseGeocode(ctx, res.Latitude, res.Longitude)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"forecast_id", res.ID,
			"lat", res.Latitude,
			"lon", res.Longitude,
			"error", err,
		)
		res.GeoSource = GeoSourceFailed
		return res
	}
	if result.FormattedAddress == "" {
		res.GeoSource = GeoSourceOriginal
		return res
	}

	res.FormattedAddress = result.FormattedAddress
	if res.City == "" {
		res.City = result.PlaceName
	}
	res.GeoSource = GeoSourceReverse
	return res
}
