package ghost

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ai-study-planner/internal/config"
	"ai-study-planner/internal/planner"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAdminKey = "abc123:0a1b2c3d4e5f"

var exam = time.Date(2026, time.October, 26, 0, 0, 0, 0, time.UTC)

func TestCreatePost(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/ghost/api/v3/admin/posts/", r.URL.Path)
			assert.Equal(t, "html", r.URL.Query().Get("source"))

			auth := strings.TrimPrefix(r.Header.Get("Authorization"), "Ghost ")
			token, err := jwt.Parse(auth, func(tok *jwt.Token) (any, error) {
				assert.Equal(t, "abc123", tok.Header["kid"])
				return []byte{0x0a, 0x1b, 0x2c, 0x3d, 0x4e, 0x5f}, nil
			}, jwt.WithAudience("/v3/admin/"))
			require.NoError(t, err)
			assert.True(t, token.Valid)

			var body struct {
				Posts []map[string]any `json:"posts"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Len(t, body.Posts, 1)
			assert.Equal(t, "draft", body.Posts[0]["status"])
			assert.Equal(t, "Study plan: Calculus II", body.Posts[0]["title"])

			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"posts":[{"id":"p1","title":"Study plan: Calculus II","status":"draft","url":"http://blog/p1"}]}`))
		}))
		defer server.Close()

		client := NewClient(&config.Config{GhostURL: server.URL, GhostAdminKey: testAdminKey})
		result := planner.StudyPlanResult{CourseName: "Calculus II", ExamDate: exam, Days: 7, PlanText: "Day 1: Limits"}

		post, err := PublishPlan(context.Background(), client, result, nil)
		require.NoError(t, err)
		assert.Equal(t, "p1", post.ID)
		assert.Equal(t, "draft", post.Status)
	})

	t.Run("ServerError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"errors":[{"message":"Invalid token"}]}`))
		}))
		defer server.Close()

		client := NewClient(&config.Config{GhostURL: server.URL, GhostAdminKey: testAdminKey})
		_, err := client.CreatePost(context.Background(), "t", "<p>x</p>", false)
		assert.ErrorContains(t, err, "status 401")
	})

	t.Run("BadKey", func(t *testing.T) {
		client := NewClient(&config.Config{GhostURL: "http://unused", GhostAdminKey: "no-secret"})
		_, err := client.CreatePost(context.Background(), "t", "<p>x</p>", false)
		assert.ErrorContains(t, err, "invalid admin key format")
	})
}

func TestFormatPlanHTML(t *testing.T) {
	result := planner.StudyPlanResult{CourseName: "Chem", ExamDate: exam, Days: 2, PlanText: "Day 1: Acids & bases"}
	sessions := []planner.Session{
		{Date: exam.AddDate(0, 0, -2), Course: "Chem", Day: 1, Task: "Acids & bases"},
		{Date: exam.AddDate(0, 0, -2), Course: "Physics", Day: 3, Task: "Optics"},
	}

	html, err := FormatPlanHTML(result, sessions)
	require.NoError(t, err)
	assert.Contains(t, html, "Monday, October 26, 2026")
	assert.Contains(t, html, "Day 1: Acids &amp; bases")
	assert.Contains(t, html, "Sat Oct 24: Day 1")
	assert.NotContains(t, html, "Optics")
}

func TestPublishPlan_FailedResult(t *testing.T) {
	_, err := PublishPlan(context.Background(), nil, planner.StudyPlanResult{CourseName: "X", Error: planner.KindProviderRequestFailure}, nil)
	assert.Error(t, err)
}
