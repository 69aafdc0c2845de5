package overpass

// Amenity kinds, matching the keys of the default weight table.
const (
	KindHospital   = "hospital"
	KindMetro      = "metro"
	KindSchool     = "school"
	KindUniversity = "university"
	KindPark       = "park"
	KindOffice     = "office"
	KindPOI        = "poi"
	KindLandfill   = "landfill"
	KindPrison     = "prison"
	KindHighway    = "highway"
	KindBar        = "bar"
	KindCemetery   = "cemetery"
)

// Kinds lists every kind CountAmenities reports.
var Kinds = []string{
	KindHospital, KindMetro, KindSchool, KindUniversity, KindPark, KindOffice,
	KindPOI, KindLandfill, KindPrison, KindHighway, KindBar, KindCemetery,
}

// selectors fetch every element Classify can place.
var selectors = []string{
	`nwr["amenity"~"^(hospital|clinic|school|kindergarten|university|college|prison|bar|pub|nightclub|grave_yard)$"]`,
	`nwr["railway"="station"]["station"="subway"]`,
	`nwr["leisure"="park"]`,
	`nwr["office"]`,
	`nwr["tourism"~"^(attraction|museum|viewpoint)$"]`,
	`nwr["landuse"~"^(landfill|cemetery)$"]`,
	`way["highway"~"^(motorway|trunk)$"]`,
}

var amenityKinds = map[string]string{
	"hospital":     KindHospital,
	"clinic":       KindHospital,
	"school":       KindSchool,
	"kindergarten": KindSchool,
	"university":   KindUniversity,
	"college":      KindUniversity,
	"prison":       KindPrison,
	"bar":          KindBar,
	"pub":          KindBar,
	"nightclub":    KindBar,
	"grave_yard":   KindCemetery,
}

// Classify maps OSM tags to an amenity kind.
func Classify(tags map[string]string) (string, bool) {
	if kind, ok := amenityKinds[tags["amenity"]]; ok {
		return kind, true
	}
	if tags["railway"] == "station" && tags["station"] == "subway" {
		return KindMetro, true
	}
	if tags["leisure"] == "park" {
		return KindPark, true
	}
	switch tags["landuse"] {
	case "landfill":
		return KindLandfill, true
	case "cemetery":
		return KindCemetery, true
	}
	switch tags["highway"] {
	case "motorway", "trunk":
		return KindHighway, true
	}
	switch tags["tourism"] {
	case "attraction", "museum", "viewpoint":
		return KindPOI, true
	}
	if tags["office"] != "" {
		return KindOffice, true
	}
	return "", false
}
