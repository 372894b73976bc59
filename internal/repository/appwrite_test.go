package repository_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"

	"github.com/kaushikshivam970/storeit/internal/appwrite"
	"github.com/kaushikshivam970/storeit/internal/config"
	"github.com/kaushikshivam970/storeit/internal/domain"
	"github.com/kaushikshivam970/storeit/internal/repository"
)

func newRepo(t *testing.T, endpoint string) *repository.AppwriteUserRepo {
	t.Helper()
	cfg := config.Config{
		Endpoint:          endpoint,
		ProjectID:         "storeit",
		APIKey:            "service-key",
		DatabaseID:        "db1",
		UsersCollectionID: "users",
	}
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return repository.NewAppwriteUserRepo(appwrite.NewFactory(cfg, nil).Admin(), node, cfg)
}

func TestGetByEmailExactMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries := r.URL.Query()["queries[]"]
		require.Len(t, queries, 1)

		var q struct {
			Method    string   `json:"method"`
			Attribute string   `json:"attribute"`
			Values    []string `json:"values"`
		}
		require.NoError(t, json.Unmarshal([]byte(queries[0]), &q))
		require.Equal(t, "equal", q.Method)
		require.Equal(t, "email", q.Attribute)
		require.Equal(t, []string{"ada@example.com"}, q.Values)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"total": 1,
			"documents": []map[string]any{{
				"$id":       "doc-1",
				"accountId": "acc-1",
				"fullName":  "Ada Lovelace",
				"email":     "ada@example.com",
				"avatar":    "https://cdn.example/avatar.png",
			}},
		})
	}))
	defer srv.Close()

	user, err := newRepo(t, srv.URL).GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, "doc-1", user.ID)
	require.Equal(t, "acc-1", user.AccountID)
	require.Equal(t, "Ada Lovelace", user.FullName)
}

func TestGetByEmailZeroMatchesIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"total": 0, "documents": []any{}})
	}))
	defer srv.Close()

	_, err := newRepo(t, srv.URL).GetByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestGetByEmailTransportFailureIsNotNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newRepo(t, srv.URL).GetByEmail(context.Background(), "ada@example.com")
	require.Error(t, err)
	require.NotErrorIs(t, err, domain.ErrUserNotFound)
}

func TestGetByEmailReturnsFirstOfMany(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"total": 2,
			"documents": []map[string]any{
				{"$id": "doc-1", "email": "ada@example.com"},
				{"$id": "doc-2", "email": "ada@example.com"},
			},
		})
	}))
	defer srv.Close()

	user, err := newRepo(t, srv.URL).GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, "doc-1", user.ID)
}

func TestGetByAccountIDQueriesAccountField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries := r.URL.Query()["queries[]"]
		require.Len(t, queries, 1)
		require.Contains(t, queries[0], `"attribute":"accountId"`)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"total":     1,
			"documents": []map[string]any{{"$id": "doc-1", "accountId": "acc-1"}},
		})
	}))
	defer srv.Close()

	user, err := newRepo(t, srv.URL).GetByAccountID(context.Background(), "acc-1")
	require.NoError(t, err)
	require.Equal(t, "acc-1", user.AccountID)
}

func TestCreateInsertsDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/databases/db1/collections/users/documents", r.URL.Path)

		var body struct {
			DocumentID string            `json:"documentId"`
			Data       map[string]string `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.NotEmpty(t, body.DocumentID)
		require.Equal(t, "ada@example.com", body.Data["email"])
		require.Equal(t, "acc-1", body.Data["accountId"])

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"$id":       body.DocumentID,
			"accountId": body.Data["accountId"],
			"fullName":  body.Data["fullName"],
			"email":     body.Data["email"],
			"avatar":    body.Data["avatar"],
		})
	}))
	defer srv.Close()

	created, err := newRepo(t, srv.URL).Create(context.Background(), domain.User{
		AccountID: "acc-1",
		FullName:  "Ada Lovelace",
		Email:     "ada@example.com",
		Avatar:    "https://cdn.example/avatar.png",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "ada@example.com", created.Email)
}
