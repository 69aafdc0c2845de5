package amenity_test

import (
	"math"
	"testing"

	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/amenity"
	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const eps = 1e-12

func TestNormalize(t *testing.T) {
	Convey("Names are lowercased with spaces and underscores removed", t, func() {
		So(amenity.Normalize("Metro"), ShouldEqual, "metro")
		So(amenity.Normalize("Bus_Stop"), ShouldEqual, "busstop")
		So(amenity.Normalize(" Land fill_ "), ShouldEqual, "landfill")
		So(amenity.Normalize(""), ShouldEqual, "")
	})
}

func TestAdjust(t *testing.T) {
	Convey("Given the default adjuster", t, func() {
		a := amenity.NewAdjuster()

		Convey("An empty counter adjusts nothing", func() {
			So(a.Adjust(nil), ShouldEqual, 0.0)
			So(a.Adjust(model.AmenityCounter{}), ShouldEqual, 0.0)
		})

		Convey("Two metros and a bar add 0.015", func() {
			adj := a.Adjust(model.AmenityCounter{"metro": 2, "bar": 1})
			So(adj, ShouldAlmostEqual, 0.015, eps)
		})

		Convey("Dashboard spellings match after normalization", func() {
			adj := a.Adjust(model.AmenityCounter{"Metro": 1, "LAND_FILL": 1, "Cemetery ": 2})
			So(adj, ShouldAlmostEqual, 0.1*(0.09-0.06-0.04), eps)
		})

		Convey("Unknown amenities contribute zero", func() {
			So(a.Adjust(model.AmenityCounter{"casino": 10, "gym": 3}), ShouldEqual, 0.0)
		})

		Convey("Negative weights can drive the adjustment below zero", func() {
			So(a.Adjust(model.AmenityCounter{"prison": 4}), ShouldAlmostEqual, -0.02, eps)
		})

		Convey("The result does not depend on map iteration order", func() {
			counter := model.AmenityCounter{
				"hospital": 3, "metro": 1, "school": 7, "university": 2, "park": 5, "office": 11,
				"poi": 13, "landfill": 1, "prison": 1, "highway": 3, "bar": 9, "cemetery": 2,
			}
			first := a.Adjust(counter)
			for i := 0; i < 50; i++ {
				So(a.Adjust(counter), ShouldEqual, first)
			}
		})

		Convey("Every default kind has a weight", func() {
			So(a.Kinds(), ShouldHaveLength, 12)
			w, ok := a.Weight("Hospital")
			So(ok, ShouldBeTrue)
			So(w, ShouldEqual, 0.07)
		})
	})

	Convey("Given custom weights", t, func() {
		a := amenity.NewAdjuster(amenity.WithWeights(map[string]float64{"Bus_Stop": 0.5}))

		Convey("Only the custom table applies", func() {
			So(a.Adjust(model.AmenityCounter{"bus stop": 2, "metro": 10}), ShouldAlmostEqual, 0.1, eps)
			_, ok := a.Weight("metro")
			So(ok, ShouldBeFalse)
		})

		Convey("An empty override keeps the defaults", func() {
			d := amenity.NewAdjuster(amenity.WithWeights(nil))
			So(d.Kinds(), ShouldHaveLength, 12)
		})
	})
}

func TestSum(t *testing.T) {
	Convey("Sum totals every count", t, func() {
		So(amenity.Sum(model.AmenityCounter{"metro": 2, "casino": 1.5}), ShouldEqual, 3.5)
		So(amenity.Sum(nil), ShouldEqual, 0.0)
		So(math.IsNaN(amenity.Sum(model.AmenityCounter{"x": math.NaN()})), ShouldBeTrue)
	})
}

func TestDigest(t *testing.T) {
	Convey("Adjusters with equal weights share a digest", t, func() {
		So(amenity.NewAdjuster().Digest(), ShouldEqual, amenity.NewAdjuster(amenity.WithWeights(amenity.DefaultWeights())).Digest())
		So(amenity.NewAdjuster().Digest(), ShouldNotEqual, amenity.NewAdjuster(amenity.WithWeights(map[string]float64{"metro": 0.1})).Digest())
	})
}
