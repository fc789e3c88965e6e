package network

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/scrubline/scrubline/constant"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGet(t *testing.T) {
	Convey("Given a plain http server", t, func() {
		var userAgent string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userAgent = r.Header.Get("User-Agent")
			_, _ = io.WriteString(w, "#EXTM3U")
		}))
		defer server.Close()

		Convey("Get should go through the plain transport with browser headers", func() {
			resp, err := Get(context.Background(), nil, server.URL)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			So(err, ShouldBeNil)
			So(string(body), ShouldEqual, "#EXTM3U")
			So(userAgent, ShouldEqual, constant.UserAgent)
		})

		Convey("A cancelled context should abort the request", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := Get(ctx, nil, server.URL)
			So(err, ShouldNotBeNil)
		})
	})
}
