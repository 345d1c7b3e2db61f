package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"germanclash/internal/audio"
	"germanclash/internal/database"
	"germanclash/internal/models"
	"germanclash/internal/security"
	"germanclash/internal/service"
	"germanclash/internal/testutil"
)

type fakeMailer struct {
	sent []service.EmailMessage
}

func (m *fakeMailer) Send(_ context.Context, msg service.EmailMessage) error {
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) IsEnabled() bool { return true }

type fakeSpeaker struct {
	clip  []byte
	err   error
	texts []string
}

func (s *fakeSpeaker) Speak(_ context.Context, text string, _ audio.Options) ([]byte, error) {
	s.texts = append(s.texts, text)
	return s.clip, s.err
}

type testApp struct {
	db        *database.DB
	handler   http.Handler
	exercises *service.ExerciseService
	config    *service.ConfigService
	mailer    *fakeMailer
	speaker   *fakeSpeaker
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db := testutil.NewDB(t)

	rankings := service.NewRankingService(db)
	profiles := service.NewProfileService(db)
	levels := service.NewLevelService(profiles, rankings)
	config := service.NewConfigService(db)
	exercises := service.NewExerciseService(db, nil)
	topics := service.NewTopicService(db)
	sessions := service.NewSessionService(exercises, levels, rankings, config, time.Hour)
	auth := service.NewAuthService(db, security.NewTokenManager("test-secret", time.Hour), rankings)
	mailer := &fakeMailer{}
	contact := service.NewContactService(mailer, config, security.NewMemoryWindow(service.ContactLimit, service.ContactWindow))
	signer := security.NewPendingScoreSigner("pending-secret")
	speaker := &fakeSpeaker{clip: []byte("ID3-clip")}

	mux := http.NewServeMux()
	RegisterRoutes(mux, NewMiddleware(auth, nil), Handlers{
		Auth:   NewAuthHandler(auth, signer, nil, "", "http://localhost:8080"),
		Game:   NewGameHandler(sessions, exercises, config, speaker, signer),
		Player: NewPlayerHandler(rankings, levels, profiles, topics, config, contact),
		Admin:  NewAdminHandler(exercises, topics, config, auth, profiles, service.NewBackupService(db, config)),
		Health: NewHealthHandler(db.Check, nil),
	})

	return &testApp{
		db:        db,
		handler:   mux,
		exercises: exercises,
		config:    config,
		mailer:    mailer,
		speaker:   speaker,
	}
}

// call sends a JSON request. token may be empty; cookies are attached as given.
func (a *testApp) call(t *testing.T, method, path, token string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
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
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) register(t *testing.T, email, name string, cookies ...*http.Cookie) AuthResponse {
	t.Helper()
	rec := a.call(t, http.MethodPost, "/api/auth/register", "", credentialsRequest{
		Email:    email,
		Password: "geheim1234",
		Name:     name,
	}, cookies...)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp AuthResponse
	decode(t, rec, &resp)
	return resp
}

func (a *testApp) addExercise(t *testing.T, ex *models.Exercise) *models.Exercise {
	t.Helper()
	require.NoError(t, a.exercises.Create(context.Background(), ex))
	return ex
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func seinExercise() *models.Exercise {
	return &models.Exercise{
		Level:            1,
		Type:             models.TypeFillInTheBlank,
		Topic:            "Sein",
		Statement:        "Ich ___ müde.",
		CorrectAnswer:    "bin",
		IncorrectAnswer1: "bist",
		IncorrectAnswer2: "ist",
	}
}

func TestAuthFlow(t *testing.T) {
	app := newTestApp(t)

	first := app.register(t, "Anna@Example.com", "Anna")
	assert.NotEmpty(t, first.Token)
	assert.Equal(t, "anna@example.com", first.User.Email)
	assert.Equal(t, models.RoleAdmin, first.User.Role, "first account becomes admin")

	rec := app.call(t, http.MethodPost, "/api/auth/register", "", credentialsRequest{Email: "anna@example.com", Password: "geheim1234", Name: "Anna"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = app.call(t, http.MethodPost, "/api/auth/register", "", credentialsRequest{Email: "kurz@example.com", Password: "kurz", Name: "Kurz"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.call(t, http.MethodPost, "/api/auth/login", "", credentialsRequest{Email: "anna@example.com", Password: "falsch1234"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.call(t, http.MethodPost, "/api/auth/login", "", credentialsRequest{Email: "anna@example.com", Password: "geheim1234"})
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := findCookie(rec, security.AuthCookie)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	rec = app.call(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.call(t, http.MethodGet, "/api/auth/me", "", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var me UserView
	decode(t, rec, &me)
	assert.Equal(t, first.User.ID, me.ID)

	second := app.register(t, "ben@example.com", "Ben")
	assert.Equal(t, models.RoleUser, second.User.Role)
	rec = app.call(t, http.MethodGet, "/api/admin/users", second.User.Email, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "an email is not a token")
	rec = app.call(t, http.MethodGet, "/api/admin/users", second.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.call(t, http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	cleared := findCookie(rec, security.AuthCookie)
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)
}

func TestAnonymousSessionCarriesScoreIntoSignUp(t *testing.T) {
	app := newTestApp(t)
	app.addExercise(t, seinExercise())

	rec := app.call(t, http.MethodPost, "/api/sessions", "", startSessionRequest{Level: 2, Topic: "Sein"})
	assert.Equal(t, http.StatusForbidden, rec.Code, "anonymous players only get level 1")

	rec = app.call(t, http.MethodPost, "/api/sessions", "", startSessionRequest{Level: 1, Topic: "Sein"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "correct_answer", "answers stay on the server")
	var view SessionView
	decode(t, rec, &view)
	require.NotNil(t, view.Exercise)
	assert.ElementsMatch(t, []string{"bin", "bist", "ist"}, view.Options)
	base := "/api/sessions/" + view.ID

	rec = app.call(t, http.MethodPost, base+"/acknowledge", "", nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "nothing to acknowledge while playing")

	rec = app.call(t, http.MethodPost, base+"/answer", "", answerRequest{Option: "bin"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &view)
	require.NotNil(t, view.Feedback)
	assert.True(t, view.Feedback.Correct)

	rec = app.call(t, http.MethodPost, base+"/acknowledge", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &view)
	assert.Equal(t, "complete", string(view.Phase))
	require.NotNil(t, view.Result)
	assert.Positive(t, view.Result.Score)
	assert.True(t, view.PendingSaved)
	pending := findCookie(rec, security.PendingScoreCookie)
	require.NotNil(t, pending)

	rec = app.call(t, http.MethodGet, base, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	user := app.register(t, "carla@example.com", "Carla", pending)
	assert.NotEmpty(t, user.Token)

	rec = app.call(t, http.MethodGet, "/api/rankings/1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rankings []models.DailyRanking
	decode(t, rec, &rankings)
	require.Len(t, rankings, 1)
	assert.Equal(t, view.Result.Score, rankings[0].Score)
	assert.Equal(t, "Carla", rankings[0].Username)

	rec = app.call(t, http.MethodGet, "/api/rankings/1/position", user.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var position RankPositionView
	decode(t, rec, &position)
	assert.Equal(t, RankPositionView{Level: 1, Position: 1, Ranked: true}, position)
}

func TestRetryFeedbackKeepsAnswerHidden(t *testing.T) {
	app := newTestApp(t)
	app.addExercise(t, seinExercise())

	rec := app.call(t, http.MethodPost, "/api/sessions", "", startSessionRequest{Level: 1, Topic: "Sein"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var view SessionView
	decode(t, rec, &view)
	base := "/api/sessions/" + view.ID

	rec = app.call(t, http.MethodPost, base+"/answer", "", answerRequest{Option: "bist"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "correct_answer")
	decode(t, rec, &view)
	require.NotNil(t, view.Feedback)
	assert.True(t, view.Feedback.Retry)
	assert.Equal(t, "feedback", string(view.Phase))

	rec = app.call(t, http.MethodPost, base+"/acknowledge", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "correct_answer")

	rec = app.call(t, http.MethodPost, base+"/answer", "", answerRequest{Option: "ist"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view = SessionView{}
	decode(t, rec, &view)
	require.NotNil(t, view.Feedback)
	assert.False(t, view.Feedback.Retry)
	assert.Equal(t, "bin", view.Feedback.CorrectAnswer)
}

func TestForgedPendingScoreIsIgnored(t *testing.T) {
	app := newTestApp(t)
	forged := &http.Cookie{Name: security.PendingScoreCookie, Value: "eyJsZXZlbCI6MSwic2NvcmUiOjk5OTl9.deadbeef"}

	app.register(t, "dora@example.com", "Dora", forged)

	rec := app.call(t, http.MethodGet, "/api/rankings/1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestSessionOwnership(t *testing.T) {
	app := newTestApp(t)
	app.addExercise(t, seinExercise())
	owner := app.register(t, "eva@example.com", "Eva")
	other := app.register(t, "finn@example.com", "Finn")

	rec := app.call(t, http.MethodPost, "/api/sessions", owner.Token, startSessionRequest{Level: 1, Topic: "Sein"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var view SessionView
	decode(t, rec, &view)

	rec = app.call(t, http.MethodGet, "/api/sessions/"+view.ID, other.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = app.call(t, http.MethodGet, "/api/sessions/"+view.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.call(t, http.MethodDelete, "/api/sessions/"+view.ID, owner.Token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = app.call(t, http.MethodGet, "/api/sessions/"+view.ID, owner.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.call(t, http.MethodPost, "/api/sessions", owner.Token, startSessionRequest{Level: 1, Topic: "Gibt es nicht"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLevelsAndProfile(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "admin@example.com", "Admin")
	player := app.register(t, "gabi@example.com", "Gabi")

	rec := app.call(t, http.MethodGet, "/api/levels", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var levels []service.LevelStatus
	decode(t, rec, &levels)
	require.Len(t, levels, service.MaxLevel)
	assert.True(t, levels[0].Unlocked)
	assert.False(t, levels[1].Unlocked)
	assert.Equal(t, "A1", levels[0].Name)

	rec = app.call(t, http.MethodGet, "/api/rankings/7", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.call(t, http.MethodGet, "/api/profile", player.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile models.Profile
	decode(t, rec, &profile)
	assert.Equal(t, "Gabi", profile.Username)
	assert.Equal(t, models.DefaultAvatarIcon, profile.AvatarIcon)

	rec = app.call(t, http.MethodPut, "/api/profile", player.Token, updateProfileRequest{Username: "G", AvatarIcon: "🐻"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body errorBody
	decode(t, rec, &body)
	assert.Equal(t, "username", body.Field)

	rec = app.call(t, http.MethodPut, "/api/profile", player.Token, updateProfileRequest{Username: "Gabriele", AvatarIcon: "🐻"})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &profile)
	assert.Equal(t, "Gabriele", profile.Username)

	rec = app.call(t, http.MethodGet, "/api/profile/stats", player.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"levelsCompleted":0,"totalScore":0,"highestLevel":0}`, rec.Body.String())
}

func TestAdminContentAndRoles(t *testing.T) {
	app := newTestApp(t)
	admin := app.register(t, "admin@example.com", "Admin")
	player := app.register(t, "hans@example.com", "Hans")

	rec := app.call(t, http.MethodPost, "/api/admin/topics", admin.Token, models.Topic{Title: "Sein", IsVisible: true})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = app.call(t, http.MethodPost, "/api/admin/topics", admin.Token, models.Topic{Title: "sein"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = app.call(t, http.MethodGet, "/api/topics/by-title/Sein", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = app.call(t, http.MethodGet, "/api/topics", "", nil)
	var topics []models.Topic
	decode(t, rec, &topics)
	assert.Len(t, topics, 1)

	broken := seinExercise()
	broken.CorrectAnswer = ""
	rec = app.call(t, http.MethodPost, "/api/admin/exercises", admin.Token, broken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	ex := seinExercise()
	ex.Type = "fill_in_the_blank"
	rec = app.call(t, http.MethodPost, "/api/admin/exercises", admin.Token, ex)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.Exercise
	decode(t, rec, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.TypeFillInTheBlank, created.Type)

	rec = app.call(t, http.MethodGet, "/api/admin/exercises?level=1", admin.Token, nil)
	var listed []models.Exercise
	decode(t, rec, &listed)
	assert.Len(t, listed, 1)
	rec = app.call(t, http.MethodGet, "/api/admin/exercises?level=9", admin.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.call(t, http.MethodPost, "/api/admin/exercises/generate", admin.Token, generateRequest{Level: 1, Topic: "Sein", Count: 3})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "no model configured")

	rec = app.call(t, http.MethodDelete, "/api/admin/exercises/"+created.ID, admin.Token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = app.call(t, http.MethodDelete, "/api/admin/exercises/"+created.ID, admin.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	path := "/api/admin/users/" + jsonInt(player.User.ID) + "/roles/pro"
	rec = app.call(t, http.MethodPut, path, admin.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = app.call(t, http.MethodGet, "/api/levels", player.Token, nil)
	var levels []service.LevelStatus
	decode(t, rec, &levels)
	for _, l := range levels {
		assert.True(t, l.Unlocked, "PRO players get level %d", l.Level)
	}

	rec = app.call(t, http.MethodPut, "/api/admin/users/"+jsonInt(player.User.ID)+"/roles/king", admin.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = app.call(t, http.MethodPut, "/api/admin/users/abc/roles/pro", admin.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.call(t, http.MethodGet, "/api/admin/backup", admin.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "germanclash_backup_")
	var backup service.BackupData
	decode(t, rec, &backup)
	assert.Equal(t, service.BackupVersion, backup.Version)
	assert.Len(t, backup.Topics, 1)

	rec = app.call(t, http.MethodPost, "/api/admin/backup", admin.Token, map[string]string{"version": "0"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfigAndContact(t *testing.T) {
	app := newTestApp(t)
	admin := app.register(t, "admin@example.com", "Admin")

	rec := app.call(t, http.MethodPost, "/api/contact", admin.Token, contactRequest{Subject: "Hallo", Message: "Eine Frage"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "no contact address yet")

	rec = app.call(t, http.MethodPut, "/api/admin/config", admin.Token, []models.ConfigEntry{
		{Key: service.ConfigContactEmail, Value: "owner@example.com"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.call(t, http.MethodGet, "/api/config", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var public map[string]string
	decode(t, rec, &public)
	assert.Equal(t, "Die Betonung", public[service.ConfigDefaultTopic])
	assert.NotContains(t, public, service.ConfigContactEmail)

	rec = app.call(t, http.MethodPost, "/api/contact", admin.Token, contactRequest{Subject: "", Message: "Eine Frage"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.call(t, http.MethodPost, "/api/contact", admin.Token, contactRequest{Subject: "Hallo", Message: "Eine Frage"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp ContactResponse
	decode(t, rec, &resp)
	assert.Equal(t, ContactResponse{Success: true, Remaining: service.ContactLimit - 1}, resp)
	require.Len(t, app.mailer.sent, 1)
	assert.Equal(t, "owner@example.com", app.mailer.sent[0].To)
	assert.Equal(t, "admin@example.com", app.mailer.sent[0].ReplyTo)

	rec = app.call(t, http.MethodPost, "/api/contact", "", contactRequest{Subject: "Hallo", Message: "Eine Frage"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExerciseAudio(t *testing.T) {
	app := newTestApp(t)
	listening := app.addExercise(t, &models.Exercise{
		Level:              1,
		Type:               models.TypeListening,
		Topic:              "Tiere",
		GermanWord:         "der Hund",
		SpanishTranslation: "el perro",
		IncorrectAnswer1:   "el gato",
	})
	other := app.addExercise(t, seinExercise())

	rec := app.call(t, http.MethodGet, "/api/exercises/"+listening.ID+"/audio", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "ID3-clip", rec.Body.String())
	assert.Equal(t, []string{"der Hund"}, app.speaker.texts)

	rec = app.call(t, http.MethodGet, "/api/exercises/"+other.ID+"/audio", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	app.speaker.err = audio.ErrEmptyText
	rec = app.call(t, http.MethodGet, "/api/exercises/"+listening.ID+"/audio", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var fallback audioUnavailableBody
	decode(t, rec, &fallback)
	assert.Equal(t, "der Hund", fallback.FallbackText)

	app.speaker.err = nil
	require.NoError(t, app.config.Set(context.Background(), service.ConfigEnableTTS, "false", ""))
	rec = app.call(t, http.MethodGet, "/api/exercises/"+listening.ID+"/audio", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthz(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		handler    *HealthHandler
		wantStatus int
		wantBody   string
	}{
		{"database only", NewHealthHandler(ok, nil), http.StatusOK, `{"status":"ok","database":"ok"}`},
		{"with redis", NewHealthHandler(ok, ok), http.StatusOK, `{"status":"ok","database":"ok","redis":"ok"}`},
		{"redis down", NewHealthHandler(ok, down), http.StatusServiceUnavailable, `{"status":"degraded","database":"ok","redis":"unavailable"}`},
		{"database down", NewHealthHandler(down, nil), http.StatusServiceUnavailable, `{"status":"degraded","database":"unavailable"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func jsonInt(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
