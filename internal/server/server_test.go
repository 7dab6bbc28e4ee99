package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ctchen222/Tic-Tac-Toe-AI/internal/api/controller"
	"ctchen222/Tic-Tac-Toe-AI/internal/api/service"
	"ctchen222/Tic-Tac-Toe-AI/internal/game"
	"ctchen222/Tic-Tac-Toe-AI/internal/hub"
	"ctchen222/Tic-Tac-Toe-AI/internal/mocks"
	"ctchen222/Tic-Tac-Toe-AI/internal/repository"
	"ctchen222/Tic-Tac-Toe-AI/pkg/proto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type constSource int

func (s constSource) IntN(n int) int { return int(s) % n }

type envelope[T any] struct {
	Success bool `json:"success"`
	Code    int  `json:"code"`
	Extras  T    `json:"extras"`
}

type testServer struct {
	srv     *Server
	results *mocks.MockResultRepository
	tokens  service.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)

	snapshots := mocks.NewMockSnapshotRepository(ctrl)
	snapshots.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	snapshots.EXPECT().Load(gomock.Any(), gomock.Any()).Return(nil, repository.ErrNotFound).AnyTimes()
	results := mocks.NewMockResultRepository(ctrl)
	results.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	h := hub.NewHub(snapshots, results, nil, hub.Options{AutoReply: true, Source: constSource(0)})
	tokens := service.NewTokenService("server-test-secret-value", time.Hour)
	games := controller.NewGameController(h, tokens, results)
	return &testServer{srv: NewServer(h, games, tokens), results: results, tokens: tokens}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.srv.Engine().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env.Extras
}

func (ts *testServer) create(t *testing.T, difficulty string) proto.CreateGameResponse {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/games", "", proto.CreateGameRequest{Difficulty: difficulty})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[proto.CreateGameResponse](t, w)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateAndPlay(t *testing.T) {
	ts := newTestServer(t)
	created := ts.create(t, "hard")
	require.NotEmpty(t, created.Token)
	assert.Equal(t, "---------", created.State.Board)
	assert.Equal(t, game.PlayerX, created.State.CurrentTurn)
	assert.Equal(t, "hard", created.State.Difficulty)

	path := "/api/games/" + created.State.ID
	w := ts.do(t, http.MethodPost, path+"/moves", created.Token, gin.H{"index": 4})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	st := decode[proto.GameState](t, w)
	assert.Equal(t, byte('X'), st.Board[4])
	require.NotNil(t, st.LastBotMove)
	assert.Equal(t, byte('O'), st.Board[*st.LastBotMove])

	w = ts.do(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, st.Board, decode[proto.GameState](t, w).Board)

	w = ts.do(t, http.MethodPost, path+"/moves", created.Token, gin.H{"index": 4})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, http.MethodPost, path+"/bot-move", created.Token, nil)
	assert.Equal(t, http.StatusConflict, w.Code, "it is the human's turn")

	w = ts.do(t, http.MethodPost, path+"/restart", created.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "---------", decode[proto.GameState](t, w).Board)
}

func TestCreateWithoutBody(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/games", nil)
	w := httptest.NewRecorder()
	ts.srv.Engine().ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "hard", decode[proto.CreateGameResponse](t, w).State.Difficulty)
}

func TestCreateRejectsUnknownDifficulty(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodPost, "/api/games", "", gin.H{"difficulty": "nightmare"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMoveValidation(t *testing.T) {
	ts := newTestServer(t)
	created := ts.create(t, "easy")
	path := "/api/games/" + created.State.ID + "/moves"

	tests := []struct {
		name string
		body any
	}{
		{"missing index", gin.H{}},
		{"index too large", gin.H{"index": 9}},
		{"negative index", gin.H{"index": -1}},
		{"wrong type", gin.H{"index": "four"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, path, created.Token, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestRoomToken(t *testing.T) {
	ts := newTestServer(t)
	first := ts.create(t, "")
	second := ts.create(t, "")
	path := "/api/games/" + first.State.ID + "/moves"

	w := ts.do(t, http.MethodPost, path, "", gin.H{"index": 0})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPost, path, "garbage", gin.H{"index": 0})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPost, path, second.Token, gin.H{"index": 0})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodGet, "/api/games/"+first.State.ID, "", nil)
	assert.Equal(t, http.StatusOK, w.Code, "reads do not need a token")
}

func TestUnknownRoom(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/games/"+uuid.New().String(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/api/games/not-a-room", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	id := uuid.New().String()
	token, err := ts.tokens.Issue(id)
	require.NoError(t, err)
	w = ts.do(t, http.MethodPost, "/api/games/"+id+"/restart", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRestore(t *testing.T) {
	ts := newTestServer(t)
	created := ts.create(t, "hard")
	path := "/api/games/" + created.State.ID + "/state"

	w := ts.do(t, http.MethodPut, path, created.Token, proto.RestoreRequest{
		Board:       "XXXOO----",
		CurrentTurn: game.PlayerO,
		IsOver:      true,
		Outcome:     game.PlayerOneWins,
		WinningLine: []int{0, 1, 2},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	st := decode[proto.GameState](t, w)
	assert.True(t, st.IsOver)
	assert.Equal(t, []int{0, 1, 2}, st.WinningLine)

	tests := []struct {
		name string
		req  proto.RestoreRequest
		want int
	}{
		{
			name: "bad board encoding",
			req:  proto.RestoreRequest{Board: "XXXOO", CurrentTurn: game.PlayerO, Outcome: game.Continue},
			want: http.StatusBadRequest,
		},
		{
			name: "unknown outcome",
			req:  proto.RestoreRequest{Board: "---------", CurrentTurn: game.PlayerO, Outcome: "draw"},
			want: http.StatusBadRequest,
		},
		{
			name: "line not held by winner",
			req: proto.RestoreRequest{
				Board: "XX-OO----", CurrentTurn: game.PlayerO, IsOver: true,
				Outcome: game.PlayerOneWins, WinningLine: []int{0, 1, 2},
			},
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "over flag disagrees with outcome",
			req:  proto.RestoreRequest{Board: "---------", CurrentTurn: game.PlayerX, IsOver: true, Outcome: game.Continue},
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "continue on a full board",
			req:  proto.RestoreRequest{Board: "XOXXOOOXX", CurrentTurn: game.PlayerO, Outcome: game.Continue},
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "continue with a completed row",
			req:  proto.RestoreRequest{Board: "XXX-OO---", CurrentTurn: game.PlayerO, Outcome: game.Continue},
			want: http.StatusUnprocessableEntity,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPut, path, created.Token, tt.req)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestStats(t *testing.T) {
	ts := newTestServer(t)
	ts.results.EXPECT().Stats(gomock.Any()).Return(repository.Stats{Total: 3, Ties: 2, PlayerTwoWins: 1}, nil)
	ts.results.EXPECT().Recent(gomock.Any(), 5).Return([]repository.GameRecord{{RoomID: "r1", Outcome: game.Tie}}, nil)

	w := ts.do(t, http.MethodGet, "/api/stats?recent=5", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got := decode[struct {
		Stats  repository.Stats `json:"stats"`
		Recent []json.RawMessage `json:"recent"`
	}](t, w)
	assert.Equal(t, repository.Stats{Total: 3, Ties: 2, PlayerTwoWins: 1}, got.Stats)
	assert.Len(t, got.Recent, 1)

	w = ts.do(t, http.MethodGet, "/api/stats?recent=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebSocketStream(t *testing.T) {
	ts := newTestServer(t)
	created := ts.create(t, "hard")

	httpSrv := httptest.NewServer(ts.srv.Engine())
	defer httpSrv.Close()

	wsURL := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/api/games/" + created.State.ID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg proto.ServerMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, proto.TypeUpdate, msg.Type)
	assert.Equal(t, "---------", msg.State.Board)

	body := strings.NewReader(`{"index":0}`)
	req, err := http.NewRequest(http.MethodPost, httpSrv.URL+"/api/games/"+created.State.ID+"/moves", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+created.Token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, proto.TypeUpdate, msg.Type)
	assert.Equal(t, byte('X'), msg.State.Board[0])
	assert.NotNil(t, msg.State.LastBotMove)
}

func TestWebSocketUnknownRoom(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/api/games/"+uuid.New().String()+"/ws", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
