package lookup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zain621/rehmatshipping/internal/domain"
	"github.com/zain621/rehmatshipping/internal/domain/search/match"
	"github.com/zain621/rehmatshipping/internal/domain/search/term"
	"github.com/zain621/rehmatshipping/internal/domain/user"
	logpkg "github.com/zain621/rehmatshipping/internal/logger"
	"github.com/zain621/rehmatshipping/internal/report"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// --- Mocks ---

type mockFetcher struct {
	users []user.User
	err   error
	calls int
}

func (m *mockFetcher) Fetch(_ context.Context) ([]user.User, error) {
	m.calls++
	return m.users, m.err
}

type memStore struct {
	data    map[string][]byte
	saveErr error
}

func newMemStore() *memStore { return &memStore{data: map[string][]byte{}} }

func (m *memStore) Save(_ context.Context, id string, data []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data[id] = append([]byte(nil), data...)
	return nil
}

func (m *memStore) Load(_ context.Context, id string) ([]byte, error) {
	d, ok := m.data[id]
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	return d, nil
}

type spyRenderer struct {
	calls int
}

func (s *spyRenderer) Render(w io.Writer, set match.Set) (report.Layout, error) {
	s.calls++
	if set.IsEmpty() {
		return report.Layout{}, domain.ErrRender
	}
	_, err := io.WriteString(w, "%PDF-spy")
	return report.Layout{Pages: 1}, err
}

func mustUser(t *testing.T, name, email, city, phone string) user.User {
	t.Helper()
	u, err := user.New(name, email, city, phone)
	require.NoError(t, err)
	return u
}

func mustTerm(t *testing.T, raw string) term.Term {
	t.Helper()
	tm, err := term.Parse(raw)
	require.NoError(t, err)
	return tm
}

func directory(t *testing.T) []user.User {
	return []user.User{
		mustUser(t, "Leanne Graham", "Sincere@april.biz", "Gwenborough", "1-770-736-8031"),
		mustUser(t, "Ervin Howell", "Shanna@melissa.tv", "Wisokyburgh", "010-692-6593"),
		mustUser(t, "Clementine Bauch", "Nathan@yesenia.net", "McKenziehaven", "1-463-123-4447"),
		mustUser(t, "Patricia Lebsack", "Julianne.OConner@kory.org", "South Elvis", "493-170-9623"),
		mustUser(t, "Chelsey Dietrich", "Lucio_Hettinger@annie.ca", "Roscoeview", "(254)954-1289"),
		mustUser(t, "Dennis Schulist", "Karley_Dach@jasper.info", "South Christy", "1-477-935-8478"),
		mustUser(t, "Kurtis Weissnat", "Telly.Hoeger@billy.biz", "Howemouth", "210.067.6132"),
	}
}

func fixedRenderer() *report.Renderer {
	return report.NewRenderer().WithClock(func() time.Time {
		return time.Date(2026, time.October, 19, 9, 0, 0, 0, time.Local)
	})
}

// --- Tests ---

func TestRun_SingleMatchByName(t *testing.T) {
	fetch := &mockFetcher{users: []user.User{
		mustUser(t, "Leanne Graham", "Sincere@april.biz", "Gwenborough", "1-770-736-8031"),
	}}
	svc := New(fetch, fixedRenderer(), newMemStore())

	out, err := svc.Run(context.Background(), Request{Term: "leanne"})
	require.NoError(t, err)

	require.Equal(t, 1, out.Matches.Len())
	assert.Equal(t, match.Row{
		Name: "Leanne Graham", Email: "Sincere@april.biz", City: "Gwenborough", Phone: "1-770-736-8031",
	}, out.Matches.Rows()[0])
	assert.Equal(t, "1 result(s) found.", out.Notice)
	assert.Nil(t, out.Report)
}

func TestRun_NoMatchSkipsReport(t *testing.T) {
	render := &spyRenderer{}
	store := newMemStore()
	svc := New(&mockFetcher{users: directory(t)}, render, store)

	out, err := svc.Run(context.Background(), Request{Term: "zzz-nomatch", GenerateReport: true})
	require.NoError(t, err)

	assert.True(t, out.Matches.IsEmpty())
	assert.Equal(t, "No results found.", out.Notice)
	assert.Nil(t, out.Report)
	assert.Zero(t, render.calls)
	assert.Empty(t, store.data)
}

func TestRun_PreservesSourceOrder(t *testing.T) {
	fetch := &mockFetcher{users: []user.User{
		mustUser(t, "ANNA", "anna@x.io", "c", "1"),
		mustUser(t, "Bob", "bob@x.io", "c", "2"),
		mustUser(t, "Chris", "CHARLIE@x.io", "c", "3"),
		mustUser(t, "Dominic", "d@x.io", "c", "4"),
		mustUser(t, "Eve", "eve@x.io", "c", "5"),
		mustUser(t, "Frank", "frank@x.io", "c", "6"),
		mustUser(t, "Gus", "gus@x.io", "c", "7"),
		mustUser(t, "Hal", "hal@x.io", "c", "8"),
		mustUser(t, "Ike", "ike@xa.io", "c", "9"),
	}}
	svc := New(fetch, fixedRenderer(), newMemStore())

	out, err := svc.Run(context.Background(), Request{Term: "a"})
	require.NoError(t, err)

	var names []string
	for _, r := range out.Matches.Rows() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"ANNA", "Chris", "Frank", "Hal", "Ike"}, names)
}

func TestRun_UpstreamFailureStopsPipeline(t *testing.T) {
	cause := errors.New("500 Server Error: Internal Server Error for url: http://upstream/users")
	render := &spyRenderer{}
	store := newMemStore()
	svc := New(&mockFetcher{err: domain.NewTransportError(500, cause)}, render, store)

	out, err := svc.Run(context.Background(), Request{Term: "leanne", GenerateReport: true})

	require.ErrorIs(t, err, domain.ErrTransport)
	assert.Equal(t, "API Error: "+cause.Error(), domain.UserMessage(err))
	assert.Zero(t, out.Matches.Len())
	assert.Nil(t, out.Report)
	assert.Zero(t, render.calls)
	assert.Empty(t, store.data)
}

func TestRun_BlankTermNeverFetches(t *testing.T) {
	fetch := &mockFetcher{users: directory(t)}
	svc := New(fetch, &spyRenderer{}, newMemStore())

	for _, raw := range []string{"", "   ", "\t"} {
		_, err := svc.Run(context.Background(), Request{Term: raw, GenerateReport: true})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Equal(t, domain.MsgBlankTerm, domain.UserMessage(err))
	}
	assert.Zero(t, fetch.calls)
}

func TestRun_GeneratesAndStoresReport(t *testing.T) {
	store := newMemStore()
	svc := New(&mockFetcher{users: directory(t)}, fixedRenderer(), store).
		WithIDGenerator(func() string { return "report-1" })

	out, err := svc.Run(context.Background(), Request{Term: "  LE ", GenerateReport: true})
	require.NoError(t, err)

	require.NotNil(t, out.Report)
	assert.Equal(t, "report-1", out.Report.ID)
	assert.Equal(t, "search_result.pdf", out.Report.FileName)
	assert.Equal(t, "application/pdf", out.Report.ContentType)
	assert.Equal(t, 1, out.Report.Pages)

	data, err := svc.Open(context.Background(), "report-1")
	require.NoError(t, err)
	assert.Equal(t, out.Report.Size, len(data))
	assert.Equal(t, "%PDF-", string(data[:5]))
}

func TestRun_FetchedFreshEachTime(t *testing.T) {
	fetch := &mockFetcher{users: directory(t)}
	svc := New(fetch, &spyRenderer{}, newMemStore())

	for i := 0; i < 3; i++ {
		_, err := svc.Run(context.Background(), Request{Term: "a"})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, fetch.calls)
}

func TestRun_UniqueReportIDs(t *testing.T) {
	store := newMemStore()
	svc := New(&mockFetcher{users: directory(t)}, &spyRenderer{}, store)

	ids := map[string]bool{}
	for i := 0; i < 5; i++ {
		out, err := svc.Run(context.Background(), Request{Term: "e", GenerateReport: true})
		require.NoError(t, err)
		require.NotNil(t, out.Report)
		ids[out.Report.ID] = true
	}
	assert.Len(t, ids, 5)
	assert.Len(t, store.data, 5)
}

func TestRun_StoreFailure(t *testing.T) {
	store := newMemStore()
	store.saveErr = fmt.Errorf("disk full")
	svc := New(&mockFetcher{users: directory(t)}, &spyRenderer{}, store)

	out, err := svc.Run(context.Background(), Request{Term: "leanne", GenerateReport: true})
	require.Error(t, err)
	assert.Nil(t, out.Report)
	assert.Equal(t, domain.MsgInternal, domain.UserMessage(err))
}

func TestGenerate_EmptySet(t *testing.T) {
	store := newMemStore()
	svc := New(&mockFetcher{}, fixedRenderer(), store)

	_, err := svc.Generate(context.Background(), match.NewSet(nil))
	require.ErrorIs(t, err, domain.ErrRender)
	assert.Empty(t, store.data)
}

func TestOpen_Missing(t *testing.T) {
	svc := New(&mockFetcher{}, &spyRenderer{}, newMemStore())
	_, err := svc.Open(context.Background(), "nope")
	require.ErrorIs(t, err, domain.ErrReportNotFound)
}

func TestSearch_ParseErrorPropagates(t *testing.T) {
	svc := New(&mockFetcher{err: fmt.Errorf("%w: missing email", domain.ErrParse)}, &spyRenderer{}, newMemStore())
	_, err := svc.Search(context.Background(), "x")
	require.ErrorIs(t, err, domain.ErrParse)
}

func TestRun_LongTermMatchesContainingRecord(t *testing.T) {
	long := strings.Repeat("x", 5000)
	fetch := &mockFetcher{users: []user.User{
		mustUser(t, "Leanne Graham", "Sincere@april.biz", "Gwenborough", "1"),
		mustUser(t, "Long Mail", long+"@example.com", "Somewhere", "2"),
	}}
	svc := New(fetch, &spyRenderer{}, newMemStore())

	out, err := svc.Run(context.Background(), Request{Term: long})
	require.NoError(t, err)
	assert.Equal(t, 1, fetch.calls)
	require.Equal(t, 1, out.Matches.Len())
	assert.Equal(t, "Long Mail", out.Matches.Rows()[0].Name)
}

func TestGenerate_LogsRowsPerPage(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := logpkg.ContextWithLogger(context.Background(), zap.New(core))
	svc := New(&mockFetcher{}, fixedRenderer(), newMemStore()).
		WithIDGenerator(func() string { return "report-rows" })

	_, err := svc.Generate(ctx, match.Filter(directory(t), mustTerm(t, "a")))
	require.NoError(t, err)

	entries := logs.FilterMessage("Report generated").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "report-rows", fields["report_id"])
	assert.Contains(t, fields, "rows_per_page")
}
