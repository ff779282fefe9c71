package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hanpama/qlient/internal/eventbus"
	"github.com/hanpama/qlient/internal/events"
	"github.com/hanpama/qlient/internal/introspection"
	"github.com/hanpama/qlient/internal/operation"
	"github.com/hanpama/qlient/internal/proxy"
	"github.com/hanpama/qlient/internal/response"
	"github.com/hanpama/qlient/internal/schematest"
	"github.com/hanpama/qlient/internal/transport"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// recorder answers every request with body and remembers what it got.
type recorder struct {
	mu   sync.Mutex
	reqs []*transport.Request
	body string
	err  error
}

func (r *recorder) Send(_ context.Context, req *transport.Request) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
	return []byte(r.body), r.err
}

func newClient(t *testing.T, tp transport.Transport, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithSchema(schematest.StarWars(t)), WithLogger(quiet)}, opts...)
	c, err := New(context.Background(), tp, opts...)
	require.NoError(t, err)
	return c
}

func TestCallFilm(t *testing.T) {
	rec := &recorder{body: `{"data":{"film":{"id":"ZmlsbXM6MQ==","title":"A New Hope","episodeID":4}}}`}
	c := newClient(t, rec)

	env, err := c.Call(context.Background(), operation.Query, "film", map[string]any{
		"id":            "ZmlsbXM6MQ==",
		proxy.FieldsKey: []string{"id", "title", "episodeID"},
	})
	require.NoError(t, err)
	require.False(t, env.HasErrors())
	title, ok := env.Get("film", "title")
	require.True(t, ok)
	require.Equal(t, "A New Hope", title)

	require.Len(t, rec.reqs, 1)
	require.Equal(t, `query($id: ID) { film(id: $id) { id title episodeID } }`, rec.reqs[0].Query)
	require.Equal(t, map[string]any{"id": "ZmlsbXM6MQ=="}, rec.reqs[0].Variables)
	require.Equal(t, rec.reqs[0].Query, env.Query())
}

func TestNewIntrospects(t *testing.T) {
	exported, err := introspection.Marshal(schematest.StarWars(t))
	require.NoError(t, err)
	rec := &recorder{body: string(exported)}

	c, err := New(context.Background(), rec, WithLogger(quiet))
	require.NoError(t, err)
	require.Equal(t, introspection.OperationName, rec.reqs[0].OperationName)
	require.Equal(t, []string{"createReview"}, c.Mutation().Names())
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, introspection.WriteFile(path, schematest.StarWars(t)))

	c, err := New(context.Background(), nil, WithSchemaFile(path), WithLogger(quiet))
	require.NoError(t, err)
	doc, err := c.Build(operation.Query, "greeting", nil)
	require.NoError(t, err)
	require.Equal(t, `query { greeting }`, doc.Query())

	_, err = c.Execute(context.Background(), doc)
	require.ErrorIs(t, err, ErrNoTransport)
}

func TestNewErrors(t *testing.T) {
	_, err := New(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoTransport)

	rec := &recorder{body: `{"errors":[{"message":"introspection disabled"}]}`}
	_, err = New(context.Background(), rec, WithLogger(quiet))
	require.ErrorContains(t, err, "introspection disabled")
}

func TestExecuteTransportErrors(t *testing.T) {
	doc := operation.NewDocument(operation.Query, "", nil, &operation.Field{Name: "greeting"})

	t.Run("network", func(t *testing.T) {
		c := newClient(t, &recorder{err: errors.New("connection refused")})
		env, err := c.Execute(context.Background(), doc)
		require.Nil(t, env)
		require.ErrorContains(t, err, "connection refused")
	})

	t.Run("status with graphql body", func(t *testing.T) {
		c := newClient(t, &recorder{
			body: `{"errors":[{"message":"rate limited"}]}`,
			err:  &transport.StatusError{StatusCode: 429, Status: "429 Too Many Requests"},
		})
		env, err := c.Execute(context.Background(), doc)
		require.NoError(t, err)
		require.True(t, env.HasErrors())
		require.Equal(t, "rate limited", env.Errors()[0].Message)
	})

	t.Run("status with html body", func(t *testing.T) {
		c := newClient(t, &recorder{
			body: `<html>bad gateway</html>`,
			err:  &transport.StatusError{StatusCode: 502, Status: "502 Bad Gateway"},
		})
		_, err := c.Execute(context.Background(), doc)
		var se *transport.StatusError
		require.ErrorAs(t, err, &se)
	})

	t.Run("malformed body", func(t *testing.T) {
		c := newClient(t, &recorder{body: `[]`})
		env, err := c.Execute(context.Background(), doc)
		require.NoError(t, err)
		var mre *response.MalformedResponseError
		require.ErrorAs(t, env.Err(), &mre)
	})
}

func TestPluginsRunInOrder(t *testing.T) {
	rec := &recorder{body: `{"data":{"greeting":"hi"}}`}
	var trail []string
	mk := func(name string) Plugin {
		return Hooks{
			PreFunc: func(_ context.Context, r *transport.Request) error {
				trail = append(trail, "pre:"+name)
				if r.Extensions == nil {
					r.Extensions = map[string]any{}
				}
				r.Extensions[name] = true
				return nil
			},
			PostFunc: func(_ context.Context, env *response.Envelope) error {
				trail = append(trail, "post:"+name)
				return nil
			},
		}
	}
	c := newClient(t, rec, WithPlugins(mk("a"), mk("b")))
	_, err := c.Call(context.Background(), operation.Query, "greeting", nil)
	require.NoError(t, err)
	require.Equal(t, []string{"pre:a", "pre:b", "post:a", "post:b"}, trail)
	require.Equal(t, map[string]any{"a": true, "b": true}, rec.reqs[0].Extensions)

	failing := newClient(t, rec, WithPlugins(Hooks{PreFunc: func(context.Context, *transport.Request) error {
		return errors.New("denied")
	}}))
	_, err = failing.Call(context.Background(), operation.Query, "greeting", nil)
	require.ErrorContains(t, err, "denied")
	require.Len(t, rec.reqs, 1)
}

func TestValidation(t *testing.T) {
	rec := &recorder{body: `{"data":{}}`}
	c := newClient(t, rec, WithValidation(true))

	bad := operation.NewDocument(operation.Query, "", nil, &operation.Field{
		Name:       "film",
		Selections: []operation.Selection{&operation.Field{Name: "budget"}},
	})
	_, err := c.Execute(context.Background(), bad)
	require.ErrorContains(t, err, "invalid document")
	require.Empty(t, rec.reqs)

	good, err := c.Build(operation.Query, "film", map[string]any{"id": "1"})
	require.NoError(t, err)
	_, err = c.Execute(context.Background(), good)
	require.NoError(t, err)
}

func TestGoAndWait(t *testing.T) {
	rec := &recorder{body: `{"data":{"greeting":"hi"}}`}
	c := newClient(t, rec)
	doc, err := c.Query().Field("greeting").Build()
	require.NoError(t, err)

	pending := make([]*Pending, 8)
	for i := range pending {
		pending[i] = c.Go(context.Background(), doc)
	}
	for _, p := range pending {
		env, err := p.Wait()
		require.NoError(t, err)
		v, _ := env.Get("greeting")
		require.Equal(t, "hi", v)
		<-p.Done()
	}
	require.Len(t, rec.reqs, 8)
}

func TestExecutePublishesEvents(t *testing.T) {
	eventbus.Use(eventbus.New())
	defer eventbus.Use(nil)

	var got []events.OperationFinish
	defer eventbus.Subscribe(func(_ context.Context, e events.OperationFinish) { got = append(got, e) })()
	started := 0
	defer eventbus.Subscribe(func(context.Context, events.OperationStart) { started++ })()

	c := newClient(t, &recorder{body: `{"data":null,"errors":[{"message":"nope"}]}`})
	_, err := c.Call(context.Background(), operation.Query, "greeting", map[string]any{proxy.NameKey: "Hello"})
	require.NoError(t, err)

	require.Equal(t, 1, started)
	require.Len(t, got, 1)
	require.Equal(t, "Hello", got[0].OperationName)
	require.Equal(t, "query", got[0].OperationType)
	require.Len(t, got[0].Errors, 1)
}

type fakeSubscriber struct {
	payloads []string
	req      *transport.Request
}

func (f *fakeSubscriber) Subscribe(_ context.Context, r *transport.Request) (<-chan []byte, error) {
	f.req = r
	ch := make(chan []byte, len(f.payloads))
	for _, p := range f.payloads {
		ch <- []byte(p)
	}
	close(ch)
	return ch, nil
}

func TestSubscribe(t *testing.T) {
	sub := &fakeSubscriber{payloads: []string{
		`{"data":{"reviewAdded":{"stars":4}}}`,
		`{"data":{"reviewAdded":{"stars":5}}}`,
	}}
	c := newClient(t, &recorder{}, WithSubscriber(sub))

	doc, err := c.Subscription().Call("reviewAdded", map[string]any{"episode": "JEDI", proxy.FieldsKey: "stars"})
	require.NoError(t, err)
	ch, err := c.Subscribe(context.Background(), doc)
	require.NoError(t, err)

	var stars []float64
	for env := range ch {
		v, ok := env.Get("reviewAdded", "stars")
		require.True(t, ok)
		stars = append(stars, v.(float64))
	}
	require.Equal(t, []float64{4, 5}, stars)
	require.Equal(t, `subscription($episode: Episode) { reviewAdded(episode: $episode) { stars } }`, sub.req.Query)
	vars, _ := json.Marshal(sub.req.Variables)
	require.JSONEq(t, `{"episode":"JEDI"}`, string(vars))
}

func TestKindMismatch(t *testing.T) {
	c := newClient(t, &recorder{}, WithSubscriber(&fakeSubscriber{}))
	query, err := c.Build(operation.Query, "greeting", nil)
	require.NoError(t, err)
	sub, err := c.Build(operation.Subscription, "reviewAdded", nil)
	require.NoError(t, err)

	_, err = c.Subscribe(context.Background(), query)
	require.ErrorIs(t, err, ErrWrongKind)
	_, err = c.Execute(context.Background(), sub)
	require.ErrorIs(t, err, ErrWrongKind)

	noSub := newClient(t, &recorder{})
	_, err = noSub.Subscribe(context.Background(), sub)
	require.ErrorIs(t, err, transport.ErrNotSupported)
}
