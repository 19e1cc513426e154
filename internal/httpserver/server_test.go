package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/robalobadob/constitution-games/assets"
	"github.com/robalobadob/constitution-games/internal/config"
	"github.com/robalobadob/constitution-games/internal/content"
	"github.com/robalobadob/constitution-games/internal/rng"
	"github.com/robalobadob/constitution-games/internal/schedule"
	"github.com/robalobadob/constitution-games/internal/scoreboard"
	"github.com/robalobadob/constitution-games/internal/sequence"
	"github.com/robalobadob/constitution-games/internal/store"
)

type testEnv struct {
	srv   *Server
	clock *schedule.Fake
	sb    *scoreboard.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := scoreboard.Open(filepath.Join(t.TempDir(), "games.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	migrations, err := assets.Migrations()
	if err != nil {
		t.Fatal(err)
	}
	if err := scoreboard.Migrate(db, migrations); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	lib, err := content.Load("", "")
	if err != nil {
		t.Fatalf("content: %v", err)
	}

	cfg := &config.Config{
		ClientOrigin:     "http://localhost:5173",
		JWTSecret:        "test_secret",
		TokenTTL:         time.Hour,
		CookieName:       "games_token",
		SequenceInterval: 800 * time.Millisecond,
		SequenceDisplay:  600 * time.Millisecond,
		SequencePause:    time.Second,
		WordAdvanceDelay: time.Second,
	}
	clock := schedule.NewFake()
	sb := scoreboard.NewStore(db)
	srv := New(Deps{
		Config:   cfg,
		Library:  lib,
		Sessions: store.NewMemory[*Session](),
		Scores:   sb,
		Random:   rng.NewSeeded(7),
		Clock:    clock,
	})
	return &testEnv{srv: srv, clock: clock, sb: sb}
}

// client replays cookies between requests like a browser.
type client struct {
	env     *testEnv
	cookies map[string]*http.Cookie
}

func (e *testEnv) client() *client {
	return &client{env: e, cookies: map[string]*http.Cookie{}}
}

func (c *client) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.env.srv.Router().ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func snapshotOf(t *testing.T, res map[string]any) map[string]any {
	t.Helper()
	snap, ok := res["snapshot"].(map[string]any)
	if !ok {
		t.Fatalf("response has no snapshot: %v", res)
	}
	return snap
}

func num(v any) int {
	f, _ := v.(float64)
	return int(f)
}

func TestHealthAndIndex(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()

	rec, body := c.do(t, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK || body["ok"] != true {
		t.Fatalf("health = %d %v", rec.Code, body)
	}
	rec, body = c.do(t, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK || num(body["wordCount"]) != 8 {
		t.Errorf("index = %d %v", rec.Code, body)
	}
	rec, _ = c.do(t, http.MethodGet, "/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestQuizRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()

	rec, res := c.do(t, http.MethodPost, "/quiz/new", map[string]string{"set": "constitution"})
	if rec.Code != http.StatusOK {
		t.Fatalf("new quiz: %d %s", rec.Code, rec.Body)
	}
	id, _ := res["sessionId"].(string)
	if id == "" {
		t.Fatal("no session id")
	}
	if _, ok := c.cookies[anonCookieName]; !ok {
		t.Error("guest cookie not set")
	}
	q, _ := snapshotOf(t, res)["question"].(map[string]any)
	if _, leaked := q["correctIndex"]; leaked {
		t.Error("answer exposed before answering")
	}

	// Every constitution question's answer is option 1.
	for i := 0; i < 4; i++ {
		_, res = c.do(t, http.MethodPost, "/quiz/"+id+"/answer", map[string]int{"option": 1})
		if res["ignored"] == true {
			t.Fatalf("answer %d ignored: %v", i, res)
		}
		_, res = c.do(t, http.MethodPost, "/quiz/"+id+"/answer", map[string]int{"option": 0})
		if res["ignored"] != true || res["reason"] != "invalid_state" {
			t.Errorf("double answer should be ignored, got %v", res)
		}
		_, res = c.do(t, http.MethodPost, "/quiz/"+id+"/advance", nil)
	}
	snap := snapshotOf(t, res)
	if snap["complete"] != true || num(snap["score"]) != 4 || snap["tier"] != "Scholar" {
		t.Errorf("final snapshot = %v", snap)
	}
	if num(snap["xp"]) != 40 || num(snap["streak"]) != 4 {
		t.Errorf("xp/streak = %v/%v", snap["xp"], snap["streak"])
	}

	_, res = c.do(t, http.MethodPost, "/quiz/"+id+"/advance", nil)
	if res["ignored"] != true {
		t.Errorf("advance after completion should be ignored")
	}

	_, lb := c.do(t, http.MethodGet, "/scores/quiz", nil)
	entries, _ := lb["entries"].([]any)
	if len(entries) != 1 {
		t.Fatalf("expected one quiz result, got %v", lb)
	}
	if e := entries[0].(map[string]any); e["username"] != "guest" || num(e["score"]) != 4 || e["variant"] != "constitution" {
		t.Errorf("unexpected entry %v", e)
	}

	_, res = c.do(t, http.MethodPost, "/quiz/"+id+"/reset", nil)
	if snap := snapshotOf(t, res); num(snap["score"]) != 0 || snap["complete"] != false {
		t.Errorf("reset snapshot = %v", snap)
	}
}

func TestQuizBadRequests(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()

	rec, _ := c.do(t, http.MethodPost, "/quiz/new", map[string]string{"set": "missing"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown set: %d", rec.Code)
	}
	rec, _ = c.do(t, http.MethodGet, "/quiz/not-a-session", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown session: %d", rec.Code)
	}

	_, res := c.do(t, http.MethodPost, "/quiz/new", nil)
	id := res["sessionId"].(string)
	_, res = c.do(t, http.MethodPost, "/quiz/"+id+"/answer", map[string]int{"option": 9})
	if res["ignored"] != true || res["reason"] != "invalid_input" {
		t.Errorf("out of range option: %v", res)
	}
	_, res = c.do(t, http.MethodPost, "/quiz/"+id+"/answer", map[string]any{})
	if res["ignored"] != true {
		t.Errorf("missing option should be ignored: %v", res)
	}

	req := httptest.NewRequest(http.MethodPost, "/quiz/"+id+"/answer", strings.NewReader("{"))
	rec = httptest.NewRecorder()
	env.srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed json: %d", rec.Code)
	}

	// A quiz session is not a word game.
	rec, _ = c.do(t, http.MethodGet, "/words/"+id, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-game lookup: %d", rec.Code)
	}
}

func TestSequenceRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()

	_, res := c.do(t, http.MethodPost, "/sequence/new", nil)
	id := res["sessionId"].(string)
	if snap := snapshotOf(t, res); snap["phase"] != "idle" {
		t.Fatalf("new game phase = %v", snap["phase"])
	}

	_, res = c.do(t, http.MethodPost, "/sequence/"+id+"/step", map[string]string{"symbol": "justice"})
	if res["ignored"] != true || res["reason"] != "invalid_state" {
		t.Errorf("step before start: %v", res)
	}

	_, res = c.do(t, http.MethodPost, "/sequence/"+id+"/start", nil)
	if snap := snapshotOf(t, res); snap["phase"] != "playing" || num(snap["level"]) != 1 {
		t.Fatalf("start snapshot = %v", snap)
	}

	env.clock.Advance(100 * time.Millisecond)
	_, res = c.do(t, http.MethodGet, "/sequence/"+id, nil)
	snap := snapshotOf(t, res)
	revealed, _ := snap["revealed"].([]any)
	if len(revealed) != 1 || snap["highlight"] == nil {
		t.Fatalf("expected first symbol lit, got %v", snap)
	}
	first := revealed[0].(string)

	_, res = c.do(t, http.MethodPost, "/sequence/"+id+"/step", map[string]string{"symbol": first})
	if res["ignored"] != true {
		t.Errorf("step during playback should be ignored: %v", res)
	}

	env.clock.Advance(time.Second)
	_, res = c.do(t, http.MethodGet, "/sequence/"+id, nil)
	if snap := snapshotOf(t, res); snap["phase"] != "awaiting_input" {
		t.Fatalf("phase after playback = %v", snap["phase"])
	}

	_, res = c.do(t, http.MethodPost, "/sequence/"+id+"/step", map[string]string{"symbol": "bogus"})
	if res["reason"] != "invalid_input" {
		t.Errorf("bogus symbol: %v", res)
	}

	_, res = c.do(t, http.MethodPost, "/sequence/"+id+"/step", map[string]string{"symbol": first})
	snap = snapshotOf(t, res)
	if num(snap["score"]) != 20 || num(snap["level"]) != 2 || snap["phase"] != "playing" {
		t.Fatalf("after first round = %v", snap)
	}

	env.clock.Advance(5 * time.Second)
	sym, err := sequence.ParseSymbol(first)
	if err != nil {
		t.Fatal(err)
	}
	wrong := (sym + 1) % sequence.AlphabetSize
	_, res = c.do(t, http.MethodPost, "/sequence/"+id+"/step", map[string]int{"symbol": int(wrong)})
	snap = snapshotOf(t, res)
	if snap["gameOver"] != true || num(snap["score"]) != 20 {
		t.Fatalf("expected game over at 20, got %v", snap)
	}

	_, lb := c.do(t, http.MethodGet, "/scores/sequence", nil)
	entries, _ := lb["entries"].([]any)
	if len(entries) != 1 || num(entries[0].(map[string]any)["level"]) != 2 {
		t.Errorf("expected recorded sequence result, got %v", lb)
	}

	_, res = c.do(t, http.MethodPost, "/sequence/"+id+"/reset", nil)
	if snap := snapshotOf(t, res); snap["phase"] != "idle" || num(snap["score"]) != 0 {
		t.Errorf("reset snapshot = %v", snap)
	}
}

func TestSequenceResetCancelsPlayback(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()

	_, res := c.do(t, http.MethodPost, "/sequence/new", nil)
	id := res["sessionId"].(string)
	c.do(t, http.MethodPost, "/sequence/"+id+"/start", nil)
	c.do(t, http.MethodPost, "/sequence/"+id+"/reset", nil)

	env.clock.Advance(10 * time.Second)
	_, res = c.do(t, http.MethodGet, "/sequence/"+id, nil)
	if snap := snapshotOf(t, res); snap["phase"] != "idle" || snap["highlight"] != nil {
		t.Errorf("stale playback leaked into reset game: %v", snap)
	}
}

func TestWordsRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()

	_, res := c.do(t, http.MethodPost, "/words/new", nil)
	id := res["sessionId"].(string)
	snap := snapshotOf(t, res)
	if _, leaked := snap["answer"]; leaked {
		t.Fatal("answer exposed before solving")
	}

	sess, err := env.srv.sess.Get(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	word := sess.Words.Puzzle().Word
	if snap["scrambled"] == word || num(snap["wordLength"]) != len(word) {
		t.Errorf("scrambled %v for %s", snap["scrambled"], word)
	}

	_, res = c.do(t, http.MethodPost, "/words/"+id+"/guess", map[string]string{"guess": "zzz"})
	if v, _ := res["verdict"].(map[string]any); v["correct"] != false {
		t.Errorf("wrong guess verdict = %v", res)
	}
	_, res = c.do(t, http.MethodPost, "/words/"+id+"/guess", map[string]string{"guess": "   "})
	if res["reason"] != "invalid_input" {
		t.Errorf("blank guess: %v", res)
	}

	_, res = c.do(t, http.MethodPost, "/words/"+id+"/guess", map[string]string{"guess": " " + strings.ToLower(word) + " "})
	v, _ := res["verdict"].(map[string]any)
	if v["correct"] != true || num(v["points"]) != len(word)*10 {
		t.Fatalf("correct guess verdict = %v", res)
	}
	if snap := snapshotOf(t, res); snap["answer"] != word || snap["solved"] != true {
		t.Errorf("solved snapshot = %v", snap)
	}

	_, res = c.do(t, http.MethodPost, "/words/"+id+"/guess", map[string]string{"guess": word})
	if res["reason"] != "invalid_state" {
		t.Errorf("guess while advancing: %v", res)
	}

	env.clock.Advance(time.Second)
	_, res = c.do(t, http.MethodGet, "/words/"+id, nil)
	if snap := snapshotOf(t, res); snap["solved"] != false || num(snap["score"]) != len(word)*10 {
		t.Errorf("after advance = %v", snap)
	}

	_, res = c.do(t, http.MethodPost, "/words/"+id+"/skip", nil)
	if snap := snapshotOf(t, res); num(snap["score"]) != len(word)*10 {
		t.Errorf("skip changed score: %v", snap)
	}

	_, res = c.do(t, http.MethodPost, "/words/"+id+"/reset", nil)
	if snap := snapshotOf(t, res); num(snap["score"]) != 0 || num(snap["streak"]) != 0 {
		t.Errorf("reset snapshot = %v", snap)
	}
	_, lb := c.do(t, http.MethodGet, "/scores/scramble", nil)
	if entries, _ := lb["entries"].([]any); len(entries) != 1 {
		t.Errorf("expected recorded scramble result, got %v", lb)
	}
}

func TestLeaderboardErrors(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()

	if rec, _ := c.do(t, http.MethodGet, "/scores/chess", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown game: %d", rec.Code)
	}
	if rec, _ := c.do(t, http.MethodGet, "/scores/quiz?limit=abc", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit: %d", rec.Code)
	}
	if rec, _ := c.do(t, http.MethodGet, "/scores/mine", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("mine without auth: %d", rec.Code)
	}
}
