package loadtest

import (
	"math/rand/v2"

	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/amenity"
	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/model"
)

// Property keys the generator draws from. Keys missing from the server's
// score table exercise the no-baseline path.
var sampleProperties = []struct {
	area  string
	zone  int
	rooms string
}{
	{"Downtown", 2, "2 B/R"},
	{"Dubai Marina", 1, "1 B/R"},
	{"Business Bay", 2, "Studio"},
	{"Jumeirah Village Circle", 3, "1 B/R"},
	{"Palm Jumeirah", 1, "3 B/R"},
	{"Al Barsha", 4, "2 B/R"},
}

const (
	firstHistoryYear = 2015
	maxHistoryYears  = 8
	minStartPrice    = 500_000
	startPriceRange  = 2_500_000
	maxAmenityCount  = 6
)

// generateRequests builds cfg.Unique distinct requests and cycles through them
// until cfg.NumRequests are produced.
func generateRequests(cfg *Config) []model.ForecastRequest {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	unique := make([]model.ForecastRequest, cfg.Unique)
	for i := range unique {
		unique[i] = generateSingleRequest(rng)
	}

	out := make([]model.ForecastRequest, cfg.NumRequests)
	for i := range out {
		out[i] = unique[i%cfg.Unique]
	}
	return out
}

func generateSingleRequest(rng *rand.Rand) model.ForecastRequest {
	p := sampleProperties[rng.IntN(len(sampleProperties))]

	counter := model.AmenityCounter{}
	for _, kind := range amenity.NewAdjuster().Kinds() {
		if n := rng.IntN(maxAmenityCount + 1); n > 0 {
			counter[kind] = float64(n)
		}
	}

	var history model.PriceSeries
	price := float64(minStartPrice + rng.IntN(startPriceRange))
	for y := range rng.IntN(maxHistoryYears + 1) {
		history = history.With(firstHistoryYear+y, price)
		price *= 1 + (rng.Float64()*0.25 - 0.05)
	}

	return model.ForecastRequest{
		ZoneIndex:   p.zone,
		Area:        p.area,
		Rooms:       p.rooms,
		Amenities:   counter,
		ActualPrice: history,
	}
}
