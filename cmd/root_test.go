package cmd

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/JakeFAU/dinodash/internal/app"
	"github.com/JakeFAU/dinodash/internal/config"
	"github.com/JakeFAU/dinodash/internal/dataset"
)

const rawHeader = "name,diet,period,lived_in,type,length,taxonomy,named_by,species,link"

const enrichedCSV = rawHeader + ",image\n" +
	"aardonyx,herbivorous,Early Jurassic 199-189 million years ago,South Africa,sauropod,8.0m," +
	"Dinosauria Saurischia Sauropodomorpha Prosauropoda Anchisauria,Yates Bonnan Neveling Chinsamy and Blackbeard (2010)," +
	"celestae,https://www.nhm.ac.uk/discover/dino-directory/aardonyx.html,https://www.nhm.ac.uk/resources/aardonyx.jpg\n" +
	"abelisaurus,carnivorous,Late Cretaceous 74-70 million years ago,Argentina,large theropod,9.0m," +
	"Dinosauria Saurischia Theropoda Neotheropoda Ceratosauria Abelisauroidea Abelisauridae,Bonaparte and Novas (1985)," +
	"comahuensis,https://www.nhm.ac.uk/discover/dino-directory/abelisaurus.html,\n"

// useTestApp swaps the app factory for one built from defaults plus mutate.
// The returned logs capture what the App logs, including its close.
func useTestApp(t *testing.T, mutate func(*config.Config)) *observer.ObservedLogs {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Storage.Backend = config.StorageMemory
	if mutate != nil {
		mutate(&cfg)
	}
	core, logs := observer.New(zap.DebugLevel)
	prev := newApp
	newApp = func(string) (*app.App, error) {
		return app.New(cfg, zap.New(core)), nil
	}
	t.Cleanup(func() { newApp = prev })
	return logs
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := execute(context.Background(), args, &out)
	return out.String(), err
}

func TestDescribeCommand(t *testing.T) {
	useTestApp(t, nil)
	path := writeFile(t, "data_with_images.csv", enrichedCSV)

	out, err := run(t, "describe", "--data", path)
	require.NoError(t, err)
	assert.Contains(t, out, "raw:\n2 entries")
	assert.Contains(t, out, "cleaned:\n1 entries")
	assert.Contains(t, out, "dropped 1 rows at "+dataset.RuleRequireImageLocation)
	assert.Contains(t, out, "count")
}

func TestExportCommand(t *testing.T) {
	useTestApp(t, nil)
	path := writeFile(t, "data_with_images.csv", enrichedCSV)

	out, err := run(t, "export", "--data", path, "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, ": 1 rows")
	assert.Contains(t, out, "memory://dinodash/")
	assert.Contains(t, out, "/dino_df.csv")
	assert.NotContains(t, out, "dino_df.html")
}

func TestExportCommandRejectsUnknownFormat(t *testing.T) {
	logs := useTestApp(t, nil)
	path := writeFile(t, "data_with_images.csv", enrichedCSV)

	_, err := run(t, "export", "--data", path, "--format", "xlsx")
	require.Error(t, err)
	assert.Equal(t, 1, logs.FilterMessage("application services closed").Len(),
		"a failed command still closes the app")
}

func TestSuccessfulCommandClosesAppOnce(t *testing.T) {
	logs := useTestApp(t, nil)
	path := writeFile(t, "data_with_images.csv", enrichedCSV)

	_, err := run(t, "export", "--data", path)
	require.NoError(t, err)
	closed := logs.FilterMessage("application services closed").All()
	require.Len(t, closed, 1)
	assert.Equal(t, int64(0), closed[0].ContextMap()["closed"], "memory store registers no closers")
}

func TestDescribeCommandMissingFile(t *testing.T) {
	useTestApp(t, nil)

	_, err := run(t, "describe", "--data", filepath.Join(t.TempDir(), "nope.csv"))
	require.ErrorContains(t, err, "nope.csv")
}

func TestEnrichCommand(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/dino-directory/aardonyx.html", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><img class="dinosaur--image" src="/resources/aardonyx.jpg"></body></html>`)
	})
	mux.HandleFunc("/dino-directory/gone.html", func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	useTestApp(t, nil)
	raw := rawHeader + "\n" +
		"aardonyx,herbivorous,Early Jurassic 199-189 million years ago,South Africa,sauropod,8.0m,Dinosauria,Yates (2010),celestae," +
		server.URL + "/dino-directory/aardonyx.html\n" +
		"gone,herbivorous,Early Jurassic 199-189 million years ago,South Africa,sauropod,8.0m,Dinosauria,Yates (2010),celestae," +
		server.URL + "/dino-directory/gone.html\n"
	in := writeFile(t, "data.csv", raw)
	out := filepath.Join(t.TempDir(), "data_with_images.csv")

	_, err := run(t, "enrich", "--in", in, "--out", out)
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	enriched, err := dataset.ReadRawCSV(f)
	require.NoError(t, err)
	images, err := enriched.Column(dataset.RawImage)
	require.NoError(t, err)
	assert.Equal(t, []string{server.URL + "/resources/aardonyx.jpg", ""}, images)
}

func TestResolveAppMissing(t *testing.T) {
	_, err := resolveApp(context.Background())
	require.Error(t, err)
}

func TestRunHTTPServerShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{
		Addr:              "127.0.0.1:0",
		Handler:           http.NotFoundHandler(),
		ReadHeaderTimeout: time.Second,
	}
	done := make(chan error, 1)
	go func() { done <- runHTTPServer(ctx, srv, time.Second, zap.NewNop()) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRunHTTPServerReportsListenError(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:-1", ReadHeaderTimeout: time.Second}
	err := runHTTPServer(context.Background(), srv, time.Second, zap.NewNop())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "http server failed"))
}
