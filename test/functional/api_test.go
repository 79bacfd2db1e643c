package functional_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/paralleldiary/pardiary/internal/domain/activity"
	"github.com/paralleldiary/pardiary/internal/testserver"
	"github.com/stretchr/testify/require"
)

func apiRequest(t *testing.T, ts *testserver.TestServer, method, path string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.Server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+ts.Token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func status(t *testing.T, ts *testserver.TestServer, id string) activity.StatusView {
	t.Helper()
	resp := apiRequest(t, ts, http.MethodGet, "/activities/"+id+"/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[activity.StatusView](t, resp)
}

func waitForStatus(t *testing.T, ts *testserver.TestServer, id string, want activity.Kind) activity.StatusView {
	t.Helper()
	var last activity.StatusView
	require.Eventually(t, func() bool {
		last = status(t, ts, id)
		return last.Status == want
	}, 5*time.Second, 20*time.Millisecond, "activity %s never reached %s", id, want)
	return last
}

type parallelResponse struct {
	ParallelDiary struct {
		ID         string `json:"id"`
		Activities []struct {
			ID string `json:"id"`
		} `json:"activities"`
	} `json:"parallelDiary"`
	Prefetching []string `json:"prefetching"`
}

func TestFunctional_Authentication(t *testing.T) {
	ts := testserver.New(t, "token")

	resp, err := http.Get(ts.Server.URL + "/activities/a1/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	health, err := http.Get(ts.Server.URL + "/health")
	require.NoError(t, err)
	defer health.Body.Close()
	require.Equal(t, http.StatusOK, health.StatusCode)
}

func TestFunctional_OpeningParallelDiaryPrefetches(t *testing.T) {
	ts := testserver.New(t, "token")

	resp := apiRequest(t, ts, http.MethodGet, "/diaries/d1/parallel", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[parallelResponse](t, resp)
	require.Equal(t, "p1", body.ParallelDiary.ID)
	require.ElementsMatch(t, []string{"a1", "a2", "a3"}, body.Prefetching)

	done := waitForStatus(t, ts, "a1", activity.KindComplete)
	require.NotNil(t, done.Detail)
	require.Equal(t, "전시 관람", done.Detail.Title)
	require.Equal(t, activity.DifficultyEasy, done.Detail.Difficulty)
	require.Len(t, done.Detail.RecommendedPlaces, 1)
	require.Equal(t, "서울 미술관", done.Detail.RecommendedPlaces[0].Name)
	require.Equal(t, "조용한 전시", done.Detail.RecommendedPlaces[0].Reason)

	waitForStatus(t, ts, "a2", activity.KindComplete)

	// One failing activity leaves the others untouched.
	failed := waitForStatus(t, ts, "a3", activity.KindError)
	require.Contains(t, failed.Error, "model overloaded")

	// Reopening skips everything already complete and retries the failure.
	again := decode[parallelResponse](t, apiRequest(t, ts, http.MethodGet, "/diaries/d1/parallel", nil))
	require.Equal(t, []string{"a3"}, again.Prefetching)
	waitForStatus(t, ts, "a3", activity.KindError)
	ts.Activities.Wait()
	require.EqualValues(t, 4, ts.Upstream.GenerateCalls.Load())
}

func TestFunctional_UnknownDiary(t *testing.T) {
	ts := testserver.New(t, "token")

	resp := apiRequest(t, ts, http.MethodGet, "/diaries/missing/parallel", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFunctional_DetailOnDemand(t *testing.T) {
	ts := testserver.New(t, "token")

	resp := apiRequest(t, ts, http.MethodPost, "/activities/a2/detail", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	detail := decode[activity.Detail](t, resp)
	require.Equal(t, "a2", detail.ID)
	require.Equal(t, "한강 러닝", detail.Title)

	// A second request is served from the store.
	again := apiRequest(t, ts, http.MethodPost, "/activities/a2/detail", nil)
	require.Equal(t, http.StatusOK, again.StatusCode)
	require.EqualValues(t, 1, ts.Upstream.GenerateCalls.Load())

	missing := apiRequest(t, ts, http.MethodPost, "/activities/nope/detail", nil)
	require.Equal(t, http.StatusNotFound, missing.StatusCode)

	failing := apiRequest(t, ts, http.MethodPost, "/activities/a3/detail", nil)
	require.Equal(t, http.StatusBadGateway, failing.StatusCode)
	require.Equal(t, activity.KindError, status(t, ts, "a3").Status)
}

func TestFunctional_RestartRehydratesFromCache(t *testing.T) {
	ts := testserver.New(t, "token")

	resp := apiRequest(t, ts, http.MethodPost, "/activities/a1/detail", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	failing := apiRequest(t, ts, http.MethodPost, "/activities/a3/detail", nil)
	require.Equal(t, http.StatusBadGateway, failing.StatusCode)
	calls := ts.Upstream.GenerateCalls.Load()

	restarted := ts.Restart(t)

	st := status(t, restarted, "a1")
	require.Equal(t, activity.KindComplete, st.Status)
	require.Equal(t, "전시 관람", st.Detail.Title)
	require.NotEmpty(t, st.Detail.RecommendedPlaces)
	// Failures live in memory only.
	require.Equal(t, activity.KindIdle, status(t, restarted, "a3").Status)

	body := decode[parallelResponse](t, apiRequest(t, restarted, http.MethodGet, "/diaries/d1/parallel", nil))
	require.ElementsMatch(t, []string{"a2", "a3"}, body.Prefetching)
	restarted.Activities.Wait()
	require.Equal(t, calls+2, ts.Upstream.GenerateCalls.Load())
}

func TestFunctional_ClearFallsBackToCache(t *testing.T) {
	ts := testserver.New(t, "token")

	require.Equal(t, http.StatusOK, apiRequest(t, ts, http.MethodPost, "/activities/a1/detail", nil).StatusCode)
	require.Equal(t, http.StatusBadGateway, apiRequest(t, ts, http.MethodPost, "/activities/a3/detail", nil).StatusCode)

	cleared := decode[activity.StatusView](t, apiRequest(t, ts, http.MethodDelete, "/activities/a1/status", nil))
	require.Equal(t, activity.KindComplete, cleared.Status)

	clearedErr := decode[activity.StatusView](t, apiRequest(t, ts, http.MethodDelete, "/activities/a3/status", nil))
	require.Equal(t, activity.KindIdle, clearedErr.Status)
}

func TestFunctional_ExplicitPrefetch(t *testing.T) {
	ts := testserver.New(t, "token")

	resp := apiRequest(t, ts, http.MethodPost, "/activities/prefetch", map[string]any{
		"activities": []map[string]string{
			{"id": "x1", "title": "독서", "description": "카페에서 책 읽기"},
			{"id": "x1", "title": "독서", "description": "중복"},
		},
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	body := decode[struct {
		Scheduled []string `json:"scheduled"`
	}](t, resp)
	require.Equal(t, []string{"x1"}, body.Scheduled)

	waitForStatus(t, ts, "x1", activity.KindComplete)
}

func TestFunctional_History(t *testing.T) {
	ts := testserver.New(t, "token")

	require.Equal(t, http.StatusBadGateway, apiRequest(t, ts, http.MethodPost, "/activities/a3/detail", nil).StatusCode)

	resp := apiRequest(t, ts, http.MethodGet, "/activities/a3/history?limit=10", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[struct {
		Events []activity.Event `json:"events"`
	}](t, resp)
	require.Len(t, body.Events, 2)
	require.Equal(t, activity.EventError, body.Events[0].Status)
	require.Equal(t, activity.EventLoading, body.Events[1].Status)
	require.Equal(t, body.Events[0].AttemptID, body.Events[1].AttemptID)

	bad := apiRequest(t, ts, http.MethodGet, "/activities/a3/history?limit=-1", nil)
	require.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestFunctional_StatusEvents(t *testing.T) {
	ts := testserver.New(t, "token")

	req, err := http.NewRequest(http.MethodGet, ts.Server.URL+"/activities/a1/events", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+ts.Token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	frames := make(chan activity.StatusView, 8)
	go func() {
		defer close(frames)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line, ok := strings.CutPrefix(scanner.Text(), "data: ")
			if !ok {
				continue
			}
			var v activity.StatusView
			if json.Unmarshal([]byte(line), &v) == nil {
				frames <- v
			}
		}
	}()

	first := <-frames
	require.Equal(t, activity.KindIdle, first.Status)

	require.Equal(t, http.StatusOK, apiRequest(t, ts, http.MethodPost, "/activities/a1/detail", nil).StatusCode)

	deadline := time.After(5 * time.Second)
	for {
		select {
		case v, ok := <-frames:
			require.True(t, ok, "stream ended before completion")
			if v.Status == activity.KindComplete {
				require.Equal(t, "a1", v.Detail.ID)
				return
			}
		case <-deadline:
			t.Fatal("no complete frame received")
		}
	}
}

func TestFunctional_ChatRelay(t *testing.T) {
	ts := testserver.New(t, "token")

	resp := apiRequest(t, ts, http.MethodPost, "/chat/stream", map[string]any{
		"messages": []map[string]string{{"role": "user", "content": "안녕"}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var tokens []string
	for _, line := range strings.Split(string(data), "\n") {
		payload, ok := strings.CutPrefix(line, "data: ")
		if !ok || payload == "[DONE]" {
			continue
		}
		var frame struct {
			Content string `json:"content"`
		}
		require.NoError(t, json.Unmarshal([]byte(payload), &frame))
		tokens = append(tokens, frame.Content)
	}
	require.Equal(t, "오늘 하루는 어땠어?", strings.Join(tokens, ""))
	require.True(t, strings.HasSuffix(strings.TrimSpace(string(data)), "data: [DONE]"))
}
