package types_test

import (
	"encoding/json"
	"testing"

	"github.com/Darkwolf007/GeoDashboardApp/internal/domain/model"
	types "github.com/Darkwolf007/GeoDashboardApp/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestForecastResponse(t *testing.T) {
	Convey("Given a forecast result", t, func() {
		res := model.ForecastResult{Points: []model.ForecastPoint{
			{Year: 2024, Price: 1_000_000},
			{Year: 2025, Price: 1_640_000},
		}}

		Convey("When it is converted to the wire form", func() {
			resp := types.NewForecastResponse(res)

			Convey("Then years become strings in the original order", func() {
				So(resp.Forecast, ShouldHaveLength, 2)
				So(resp.Forecast[0].Year, ShouldEqual, "2024")
				So(resp.Forecast[1].Price, ShouldEqual, 1_640_000.0)
			})

			Convey("And it encodes under the forecast key", func() {
				raw, err := json.Marshal(resp)
				So(err, ShouldBeNil)
				So(string(raw), ShouldEqual, `{"forecast":[{"year":"2024","price":1000000},{"year":"2025","price":1640000}]}`)
			})
		})

		Convey("An empty result still encodes a list", func() {
			raw, err := json.Marshal(types.NewForecastResponse(model.ForecastResult{}))
			So(err, ShouldBeNil)
			So(string(raw), ShouldEqual, `{"forecast":[]}`)
		})
	})
}

func TestErrorPayload(t *testing.T) {
	Convey("The error payload has a single error key", t, func() {
		raw, err := json.Marshal(types.ErrorPayload{Error: "boom"})
		So(err, ShouldBeNil)
		So(string(raw), ShouldEqual, `{"error":"boom"}`)
	})
}
