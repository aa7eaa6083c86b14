package geo

type Area struct {
	Name   string
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

func (a Area) Contains(lat, lng float64) bool {
	return lat >= a.MinLat && lat <= a.MaxLat && lng >= a.MinLng && lng <= a.MaxLng
}

// Order matters: boxes overlap and the first match wins.
var echagueAreas = []Area{
	{Name: "Echague Town Center", MinLat: 16.700, MaxLat: 16.720, MinLng: 121.660, MaxLng: 121.680},
	{Name: "Near Echague Municipal Hall", MinLat: 16.705, MaxLat: 16.715, MinLng: 121.665, MaxLng: 121.675},
	{Name: "Echague Market Area", MinLat: 16.695, MaxLat: 16.710, MinLng: 121.650, MaxLng: 121.670},
	{Name: "Echague Residential Area", MinLat: 16.680, MaxLat: 16.740, MinLng: 121.640, MaxLng: 121.690},
	{Name: "Echague Police Station Area", MinLat: 16.715, MaxLat: 16.716, MinLng: 121.682, MaxLng: 121.684},
	{Name: "Savemore Market Area", MinLat: 16.705, MaxLat: 16.706, MinLng: 121.676, MaxLng: 121.677},
	{Name: "Echague Poblacion Road Area", MinLat: 16.721, MaxLat: 16.722, MinLng: 121.685, MaxLng: 121.686},
}

var echagueRegion = Area{Name: "Echague, Isabela Area", MinLat: 16.6, MaxLat: 16.8, MinLng: 121.6, MaxLng: 121.8}

func lookupArea(areas []Area, lat, lng float64) (string, bool) {
	for _, a := range areas {
		if a.Contains(lat, lng) {
			return a.Name, true
		}
	}
	return "", false
}
