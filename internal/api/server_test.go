package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/dinodash/internal/config"
	"github.com/JakeFAU/dinodash/internal/dataset"
	"github.com/JakeFAU/dinodash/internal/hash/sha256"
	"github.com/JakeFAU/dinodash/internal/insights"
)

func testTable() *dataset.Table {
	return dataset.NewTable([]dataset.Record{
		{Index: 0, Name: "aardonyx", Species: "celestae", Type: "sauropod", Length: 8, Diet: "herbivorous",
			Period: "Early Jurassic", PeriodFrom: 199, PeriodTo: 189, LivedIn: "South Africa", Discovered: 2010,
			MajorGroup: "Anchisauria", Taxonomy: "Dinosauria Saurischia Sauropodomorpha", NamedBy: "Yates",
			Link: "https://dino/aardonyx", Image: "https://img/aardonyx.jpg"},
		{Index: 1, Name: "abelisaurus", Species: "comahuensis", Type: "large theropod", Length: 9, Diet: "carnivorous",
			Period: "Late Cretaceous", PeriodFrom: 74, PeriodTo: 70, LivedIn: "Argentina", Discovered: 1985,
			MajorGroup: "Ceratosauria", Taxonomy: "Dinosauria Saurischia Theropoda", NamedBy: "Bonaparte and Novas",
			Link: "https://dino/abelisaurus", Image: "https://img/abelisaurus.jpg"},
		{Index: 4, Name: "tyrannosaurus", Species: "rex", Type: "large theropod", Length: 12, Diet: "carnivorous",
			Period: "Late Cretaceous", PeriodFrom: 67, PeriodTo: 65, LivedIn: "USA", Discovered: 1905,
			MajorGroup: "Tyrannosauroidea", Taxonomy: "Dinosauria Saurischia Theropoda", NamedBy: "Osborn",
			Link: "https://dino/tyrannosaurus", Image: "https://img/tyrannosaurus.jpg"},
	})
}

func testConfig() config.Config {
	return config.Config{Server: config.ServerConfig{Port: 8080, RequestTimeoutSeconds: 5}}
}

func newTestServer(opts ...Option) *Server {
	opts = append([]Option{WithRequestIDs(func() string { return "req-1" })}, opts...)
	return NewServer(testTable(), sha256.New(), testConfig(), zap.NewNop(), opts...)
}

func get(t *testing.T, s *Server, target string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestServer_Probes(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	rec := get(t, s, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-1", rec.Header().Get("X-Request-ID"))

	rec = get(t, s, "/readyz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"records":3`)

	empty := NewServer(dataset.NewTable(nil), sha256.New(), testConfig(), nil)
	rec = get(t, empty, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_Metrics(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	get(t, s, "/v1/summary")
	rec := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dinodash_dataset_records")
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestServer_ListDinosaurs(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	rec := get(t, s, "/v1/dinosaurs")
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[dinosaurList](t, rec)
	assert.Equal(t, 3, all.Count)

	rec = get(t, s, "/v1/dinosaurs?period=cretaceous&min_length=10")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[dinosaurList](t, rec)
	require.Equal(t, 1, got.Count)
	assert.Equal(t, "tyrannosaurus", got.Dinosaurs[0].Name)

	rec = get(t, s, "/v1/dinosaurs?group=ceratosauria&lived_in=argentina")
	assert.Equal(t, 1, decode[dinosaurList](t, rec).Count)
}

func TestServer_ListDinosaursBadQuery(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	for _, target := range []string{
		"/v1/dinosaurs?min_length=abc",
		"/v1/dinosaurs?max_length=-1",
		"/v1/dinosaurs?min_length=10&max_length=2",
	} {
		rec := get(t, s, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Contains(t, rec.Body.String(), `"error"`)
	}
}

func TestServer_GetDinosaur(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	rec := get(t, s, "/v1/dinosaurs/Tyrannosaurus")
	require.Equal(t, http.StatusOK, rec.Code)
	card := decode[insights.DinoCard](t, rec)
	assert.Equal(t, "Tyrannosaurus Rex", card.Title)
	assert.Equal(t, "12.0m", card.Size)

	rec = get(t, s, "/v1/dinosaurs/nessie")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_RandomDinosaur(t *testing.T) {
	t.Parallel()

	s := newTestServer(WithRandom(func(int) int { return 1 }))
	rec := get(t, s, "/v1/dinosaurs/random")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abelisaurus", decode[insights.DinoCard](t, rec).Record.Name)
}

func TestServer_Analytics(t *testing.T) {
	t.Parallel()

	s := newTestServer()

	summary := decode[insights.Overview](t, get(t, s, "/v1/summary"))
	assert.Equal(t, 3, summary.Species)
	assert.Equal(t, 199-65, summary.MillionYears)

	timeline := decode[insights.TimelineView](t, get(t, s, "/v1/timeline"))
	require.Len(t, timeline.Survivors, 1)
	assert.Equal(t, "tyrannosaurus", timeline.Survivors[0].Name)

	rec := get(t, s, "/v1/groups/anchisauria")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Anchisauria", decode[insights.GroupDetail](t, rec).Group)
	assert.Equal(t, http.StatusNotFound, get(t, s, "/v1/groups/nope").Code)
	assert.Contains(t, get(t, s, "/v1/groups").Body.String(), "Ceratosauria")

	sizes := decode[sizesResponse](t, get(t, s, "/v1/sizes?size=8"))
	require.Len(t, sizes.BySize, 1)
	assert.Equal(t, "aardonyx", sizes.BySize[0].Name)
	require.Len(t, sizes.TopLargeTheropods, 2)
	assert.Equal(t, "tyrannosaurus", sizes.TopLargeTheropods[0].Name)
	assert.Equal(t, http.StatusBadRequest, get(t, s, "/v1/sizes?size=big").Code)

	disc := decode[insights.DiscoveryView](t, get(t, s, "/v1/discoveries?top=1"))
	assert.Len(t, disc.TopNamers, 1)
	assert.Equal(t, http.StatusBadRequest, get(t, s, "/v1/discoveries?top=x").Code)

	rec = get(t, s, "/v1/locations?era=Jurassic")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "South Africa")
	assert.NotContains(t, rec.Body.String(), "Argentina")
	assert.Equal(t, http.StatusBadRequest, get(t, s, "/v1/locations?era=Permian").Code)

	rec = get(t, s, "/v1/describe")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"period_from"`)
}

func TestServer_ExportCSV(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	rec := get(t, s, "/v1/export.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="dino_df.csv"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), ",name,species,type,length"))

	want, err := dataset.Render(testTable(), dataset.FormatCSV)
	require.NoError(t, err)
	etag := sha256.New().ETag(want)
	assert.Equal(t, etag, rec.Header().Get("ETag"))

	rec = get(t, s, "/v1/export.csv", "If-None-Match", `"other", `+etag)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = get(t, s, "/v1/export.csv", "If-None-Match", `"stale"`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_ExportHTML(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	rec := get(t, s, "/v1/export.html")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="dino_df.html"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), `class="dataframe"`)
	assert.NotEqual(t, get(t, s, "/v1/export.csv").Header().Get("ETag"), rec.Header().Get("ETag"))
}

func TestServer_APIKey(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Auth = config.AuthConfig{Enabled: true, APIKey: "secret"}
	s := NewServer(testTable(), sha256.New(), cfg, zap.NewNop())

	assert.Equal(t, http.StatusForbidden, get(t, s, "/v1/summary").Code)
	assert.Equal(t, http.StatusOK, get(t, s, "/v1/summary", "X-API-Key", "secret").Code)
	assert.Equal(t, http.StatusOK, get(t, s, "/v1/summary?api_key=secret").Code)
	assert.Equal(t, http.StatusOK, get(t, s, "/healthz").Code, "probes stay open")
}

func TestRecoverMiddleware(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	h := s.recoverMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
}

func TestEtagMatches(t *testing.T) {
	t.Parallel()

	assert.False(t, etagMatches("", `"a"`))
	assert.True(t, etagMatches(`"a"`, `"a"`))
	assert.True(t, etagMatches(`W/"a"`, `"a"`))
	assert.True(t, etagMatches(`*`, `"a"`))
	assert.False(t, etagMatches(`"b", "c"`, `"a"`))
}
