package mux

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"highcard-server/internal/jwt"
	"highcard-server/pkg/highcard"
	"highcard-server/pkg/room"

	"github.com/stretchr/testify/assert"
)

func Test_authMiddleware(t *testing.T) {
	a := assert.New(t)
	m := testMux(t)

	session, err := m.registry.CreateSession("auth test", highcard.DefaultOptions(), nil)
	a.NoError(err)

	m.wsRouter.Path("/test").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, r.Context().Value(ctxSeatKey).(int))
	})

	ts := httptest.NewServer(m)
	defer ts.Close()

	path := "/game/" + session.UUID() + "/ws/test"

	var errObj errorResponse
	assertGet(t, ts, path, &errObj, 401)
	a.Equal("Unauthorized", errObj.Message)

	assertGet(t, ts, path, &errObj, 401, "garbage")

	token, err := jwt.Sign(session.UUID(), 2)
	a.NoError(err)

	// token in the Authorization header
	var seat int
	resp := assertGetWithResp(t, ts, path, &seat, 200, token)
	a.Equal(2, seat)
	a.Equal("2", resp.Header.Get("HighCard-Seat"))
	_ = resp.Body.Close()

	// token as a query parameter
	seat = -1
	assertGet(t, ts, path+"?access_token="+url.QueryEscape(token), &seat, 200)
	a.Equal(2, seat)

	// a ticket for another game does not open this one
	other, err := m.registry.CreateSession("other game", highcard.DefaultOptions(), nil)
	a.NoError(err)

	otherToken, err := jwt.Sign(other.UUID(), 0)
	a.NoError(err)
	assertGet(t, ts, path, &errObj, 401, otherToken)
}

func Test_gameMiddleware(t *testing.T) {
	a := assert.New(t)
	m := testMux(t)

	session, err := m.registry.CreateSession("middleware test", highcard.DefaultOptions(), nil)
	a.NoError(err)

	ts := httptest.NewServer(m)
	defer ts.Close()

	var data room.GameState
	assertGet(t, ts, "/game/"+session.UUID(), &data, 200)
	a.Equal(session.UUID(), data.UUID)

	// the route only matches well-formed UUIDs
	assertGet(t, ts, "/game/not-a-uuid", nil, 404)

	var errObj errorResponse
	assertGet(t, ts, "/game/9b54a614-0ef6-4b2d-a26c-92ee4a3b5cf1", &errObj, 404)
	a.Equal("Not Found", errObj.Message)
}
