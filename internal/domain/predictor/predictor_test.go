package predictor_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/predictor"
	"github.com/smartystreets/goconvey/convey"
)

const linearYAML = `
kind: linear
version: "2024-06"
features: [normalized_year, weighted_score, zone_index, pct_change]
intercept: 13.5
coefficients: [0.5, 1.0, 0.1, 2.0]
`

func TestLoadLinear(t *testing.T) {
	convey.Convey("Given a valid linear artifact", t, func() {
		m, err := predictor.LoadLinear(strings.NewReader(linearYAML))

		convey.Convey("Then it predicts intercept plus weighted features", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(m.Version, convey.ShouldEqual, "2024-06")
			got, err := m.Predict(context.Background(), predictor.Features{
				NormalizedYear: 1, Score: 0.5, ZoneIndex: 2, PctChange: 0.1,
			})
			convey.So(err, convey.ShouldBeNil)
			convey.So(got, convey.ShouldAlmostEqual, 13.5+0.5+0.5+0.2+0.2, 1e-12)
		})
	})

	convey.Convey("Given invalid artifacts", t, func() {
		cases := []struct{ name, doc string }{
			{"wrong kind", strings.Replace(linearYAML, "kind: linear", "kind: forest", 1)},
			{"reordered features", strings.Replace(linearYAML, "[normalized_year, weighted_score", "[weighted_score, normalized_year", 1)},
			{"short coefficients", strings.Replace(linearYAML, "[0.5, 1.0, 0.1, 2.0]", "[0.5, 1.0]", 1)},
			{"unknown field", linearYAML + "depth: 3\n"},
			{"broken document", "kind: ["},
			{"infinite intercept", strings.Replace(linearYAML, "13.5", ".inf", 1)},
		}
		for _, tc := range cases {
			tc := tc
			convey.Convey("When the artifact has a "+tc.name, func() {
				_, err := predictor.LoadLinear(strings.NewReader(tc.doc))
				convey.So(errors.Is(err, predictor.ErrInvalidArtifact), convey.ShouldBeTrue)
			})
		}
	})
}

func TestUnavailable(t *testing.T) {
	convey.Convey("The unavailable predictor always reports ErrUnavailable", t, func() {
		_, err := predictor.Unavailable{}.Predict(context.Background(), predictor.Features{})
		convey.So(errors.Is(err, predictor.ErrUnavailable), convey.ShouldBeTrue)
	})

	convey.Convey("Features keep the model's column order", t, func() {
		f := predictor.Features{NormalizedYear: 1, Score: 2, ZoneIndex: 3, PctChange: 4}
		convey.So(f.Vector(), convey.ShouldResemble, [4]float64{1, 2, 3, 4})
		convey.So(predictor.FeatureNames[1], convey.ShouldEqual, "weighted_score")
	})
}

func TestLinearID(t *testing.T) {
	convey.Convey("Given a loaded linear model", t, func() {
		m, err := predictor.LoadLinear(strings.NewReader(linearYAML))
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Its identity names the version and follows the parameters", func() {
			convey.So(m.ID(), convey.ShouldStartWith, "linear/2024-06/")
			same := predictor.NewLinear(13.5, [4]float64{0.5, 1.0, 0.1, 2.0})
			same.Version = "2024-06"
			convey.So(same.ID(), convey.ShouldEqual, m.ID())

			retrained := predictor.NewLinear(13.6, [4]float64{0.5, 1.0, 0.1, 2.0})
			retrained.Version = "2024-06"
			convey.So(retrained.ID(), convey.ShouldNotEqual, m.ID())
		})
	})
}
