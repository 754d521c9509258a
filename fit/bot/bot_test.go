package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/espertofit/core/telegram/state"
	"github.com/m3rciful/espertofit/fit/catalog"
	"github.com/m3rciful/espertofit/fit/config"
	"github.com/m3rciful/espertofit/fit/dialog"

	tele "gopkg.in/telebot.v4"
)

type sentMessage struct {
	text   string
	markup *tele.ReplyMarkup
}

// fakeContext implements the parts of tele.Context the handlers touch.
type fakeContext struct {
	tele.Context

	chat      *tele.Chat
	text      string
	callback  *tele.Callback
	values    map[string]any
	sent      []sentMessage
	responses []*tele.CallbackResponse
}

func newFakeContext(chatID int64) *fakeContext {
	return &fakeContext{chat: &tele.Chat{ID: chatID}, values: map[string]any{}}
}

func (f *fakeContext) Update() tele.Update           { return tele.Update{ID: 1} }
func (f *fakeContext) Chat() *tele.Chat              { return f.chat }
func (f *fakeContext) Sender() *tele.User            { return &tele.User{ID: 7} }
func (f *fakeContext) Text() string                  { return f.text }
func (f *fakeContext) Callback() *tele.Callback      { return f.callback }
func (f *fakeContext) Get(key string) interface{}    { return f.values[key] }
func (f *fakeContext) Set(key string, v interface{}) { f.values[key] = v }

func (f *fakeContext) Send(what interface{}, opts ...interface{}) error {
	msg := sentMessage{text: what.(string)}
	for _, o := range opts {
		if so, ok := o.(*tele.SendOptions); ok {
			msg.markup = so.ReplyMarkup
		}
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeContext) Respond(resp ...*tele.CallbackResponse) error {
	var r *tele.CallbackResponse
	if len(resp) > 0 {
		r = resp[0]
	}
	f.responses = append(f.responses, r)
	return nil
}

func testApp(t *testing.T) *App {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	cfg := &config.Config{}
	cfg.Storage.Driver = config.StorageMemory
	return newApp(cfg, nil, cat, state.NewMemoryBackend())
}

func TestStartSendsTrainingMenu(t *testing.T) {
	app := testApp(t)
	c := newFakeContext(42)
	c.text = "/start"

	require.NoError(t, app.onText(c))
	require.Len(t, c.sent, 1)
	assert.Equal(t, dialog.TextChooseTraining, c.sent[0].text)
	require.NotNil(t, c.sent[0].markup)
	rows := c.sent[0].markup.InlineKeyboard
	require.Len(t, rows, 4)
	assert.Equal(t, "A", rows[0][0].Text)
	assert.Equal(t, "T:A", rows[0][0].Data)
	assert.Empty(t, rows[0][0].Unique)
}

func TestCallbackFlowAcknowledgesOnce(t *testing.T) {
	app := testApp(t)

	start := newFakeContext(42)
	start.text = "/start"
	require.NoError(t, app.onText(start))

	pick := newFakeContext(42)
	pick.callback = &tele.Callback{ID: "cb-1", Data: "T:A"}
	require.NoError(t, app.onCallback(pick))
	assert.Len(t, pick.responses, 1)
	require.Len(t, pick.sent, 1)
	assert.Equal(t, "Exercises for training A", pick.sent[0].text)

	bad := newFakeContext(42)
	bad.callback = &tele.Callback{ID: "cb-2", Data: "garbage"}
	require.NoError(t, app.onCallback(bad))
	assert.Len(t, bad.responses, 1)
	assert.Empty(t, bad.sent)

	sess, err := app.sessions.Get(t.Context(), 42)
	require.NoError(t, err)
	assert.True(t, sess.IsBrowsing())
}

func TestPlainTextRepliesNotFound(t *testing.T) {
	app := testApp(t)
	c := newFakeContext(5)
	c.text = "hello"

	require.NoError(t, app.onText(c))
	require.Len(t, c.sent, 1)
	assert.Equal(t, dialog.TextCommandNotFound, c.sent[0].text)
	assert.Nil(t, c.sent[0].markup)
}

func TestOnLimitedAnswersCallbacksOnly(t *testing.T) {
	app := testApp(t)

	msg := newFakeContext(1)
	require.NoError(t, app.onLimited(msg))
	assert.Empty(t, msg.responses)

	cb := newFakeContext(1)
	cb.callback = &tele.Callback{ID: "x", Data: "T:A"}
	require.NoError(t, app.onLimited(cb))
	require.Len(t, cb.responses, 1)
	assert.Equal(t, textSlowDown, cb.responses[0].Text)
}

func TestRegistryWiring(t *testing.T) {
	reg := testApp(t).Registry()

	names := make([]string, 0)
	for _, c := range reg.ListCommands(true) {
		names = append(names, c.Text)
	}
	assert.Equal(t, []string{"help", "start"}, names)
	assert.ElementsMatch(t, []string{"T", "E", "CL", "FE"}, reg.ListCallbacks())
}

func TestMarkupConversion(t *testing.T) {
	assert.Nil(t, markup(nil))

	m := markup(dialog.Keyboard{
		{{Label: "Plank", Payload: "E:A:Plank"}, {Label: "Change Load", Payload: "CL:A:Plank"}},
		{{Label: "Completed!", Payload: "FE:A"}},
	})
	require.NotNil(t, m)
	require.Len(t, m.InlineKeyboard, 2)
	assert.Equal(t, "CL:A:Plank", m.InlineKeyboard[0][1].Data)
	assert.Equal(t, "Completed!", m.InlineKeyboard[1][0].Text)
}
