package testserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/paralleldiary/pardiary/internal/domain/diary"
)

// FailingTitle marks an activity whose generation always fails upstream.
const FailingTitle = "실패하는 활동"

// Upstream fakes the diary backend, the OpenAI API and Naver local search on
// one HTTP server.
type Upstream struct {
	Server *httptest.Server

	GenerateCalls atomic.Int32
	SearchCalls   atomic.Int32

	Parallel diary.ParallelDiary
}

// NewUpstream starts the fake upstream.
func NewUpstream(t *testing.T) *Upstream {
	t.Helper()
	u := &Upstream{
		Parallel: diary.ParallelDiary{
			ID:      "p1",
			DiaryID: "d1",
			Content: "비 오는 날 미술관에 갔다면",
			Activities: []diary.RecommendedActivity{
				{ID: "a1", Emoji: "🎨", Title: "전시 관람", Content: "가까운 미술관에서 전시 보기"},
				{ID: "a2", Emoji: "🏃", Title: "한강 러닝", Content: "저녁에 한강 달리기"},
				{ID: "a3", Emoji: "💥", Title: FailingTitle, Content: "항상 실패"},
			},
		},
	}

	r := chi.NewRouter()
	r.Get("/api/diaries/{id}/parallel", u.handleParallel)
	r.Get("/api/activities/recommended", u.handleRecommended)
	r.Post("/api/chat/stream", u.handleChat)
	r.Post("/v1/chat/completions", u.handleCompletion)
	r.Get("/v1/search/local.json", u.handleSearch)

	u.Server = httptest.NewServer(r)
	t.Cleanup(u.Server.Close)
	return u
}

// BackendURL is the diary API base URL.
func (u *Upstream) BackendURL() string { return u.Server.URL + "/api" }

// OpenAIURL is the OpenAI API base URL.
func (u *Upstream) OpenAIURL() string { return u.Server.URL + "/v1" }

// NaverURL is the Naver API base URL.
func (u *Upstream) NaverURL() string { return u.Server.URL }

func (u *Upstream) handleParallel(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "id") != u.Parallel.DiaryID {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"diary not found"}`))
		return
	}
	_ = json.NewEncoder(w).Encode(u.Parallel)
}

func (u *Upstream) handleRecommended(w http.ResponseWriter, _ *http.Request) {
	_ = json.NewEncoder(w).Encode(u.Parallel.Activities)
}

func (u *Upstream) handleChat(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	for _, token := range []string{"오늘", " 하루는", " 어땠어?"} {
		payload, _ := json.Marshal(map[string]string{"content": token})
		_, _ = fmt.Fprintf(w, "data: %s\n\n", payload)
	}
	_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
}

type completionRequest struct {
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func (u *Upstream) handleCompletion(w http.ResponseWriter, r *http.Request) {
	u.GenerateCalls.Add(1)

	var req completionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	for _, m := range req.Messages {
		if strings.Contains(m.Content, FailingTitle) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"message":"model overloaded"}}`))
			return
		}
	}

	content, _ := json.Marshal(map[string]any{
		"detailedDescription": "천천히 둘러보며 하루를 환기하는 활동입니다.",
		"benefits":            []string{"기분 전환", "영감"},
		"tips":                []string{"평일 오전이 한적합니다"},
		"estimatedTime":       "1~2시간",
		"difficulty":          "쉬움",
		"tags":                []string{"휴식", "문화"},
		"placeSearchKeywords": []map[string]string{{"keyword": "서울 미술관", "reason": "조용한 전시"}},
	})
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": string(content)}},
		},
	})
}

func (u *Upstream) handleSearch(w http.ResponseWriter, r *http.Request) {
	u.SearchCalls.Add(1)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"total": 1,
		"items": []map[string]string{{
			"title":    "<b>" + r.URL.Query().Get("query") + "</b>",
			"category": "미술관",
			"address":  "서울 종로구",
		}},
	})
}
