package lists_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"list-manager/core/database"
	"list-manager/feature/lists"
	"list-manager/feature/lists/models"
	"list-manager/feature/users"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupApp(t *testing.T, cfg lists.Config) *fiber.App {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, lists.AutoMigrate(db))
	require.NoError(t, users.AutoMigrate(db))

	dir := users.NewDirectory(db)
	_, err = dir.Register(context.Background(), "u-alice", "alice", "Alice")
	require.NoError(t, err)

	feature := lists.NewFeature(db, dir, cfg, zap.NewNop(), 5*time.Second)
	app := fiber.New()
	require.NoError(t, feature.Load(app))
	return app
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, 2000)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decodeKeys(t *testing.T, data []byte) models.ListKeys {
	t.Helper()
	var keys models.ListKeys
	require.NoError(t, json.Unmarshal(data, &keys))
	return keys
}

func TestHandleGetListKeys(t *testing.T) {
	app := setupApp(t, lists.Config{})

	status, body := do(t, app, "GET", "/list/slugs?username=alice", "")
	assert.Equal(t, 200, status)
	keys := decodeKeys(t, body)
	assert.Len(t, keys[models.TypeCore], 4)
	assert.Empty(t, keys[models.TypeCreated])

	status, body = do(t, app, "GET", "/list/slugs?username=nobody", "")
	assert.Equal(t, 200, status)
	keys = decodeKeys(t, body)
	assert.Len(t, keys, 3)
	assert.Empty(t, keys[models.TypeCore])
}

func TestHandleCreateList(t *testing.T) {
	app := setupApp(t, lists.Config{})
	body := `{"creatorKey":"u-alice","name":"Space Opera","bookKeys":["bk1","bk1"]}`

	status, data := do(t, app, "POST", "/list/create", body)
	require.Equal(t, 200, status, string(data))
	var created []models.ListRecord
	require.NoError(t, json.Unmarshal(data, &created))
	require.Len(t, created, 1)
	assert.Equal(t, "space-opera", created[0].Key)
	assert.Equal(t, 1, created[0].BooksCount)

	status, _ = do(t, app, "POST", "/list/create", body)
	assert.Equal(t, 409, status)

	status, data = do(t, app, "POST", "/list/create", `{"creatorKey":"u-alice"}`)
	assert.Equal(t, 400, status)
	assert.Contains(t, string(data), "name")

	status, data = do(t, app, "POST", "/list/create", `{"creatorKey":"u-ghost","name":"X"}`)
	assert.Equal(t, 200, status)
	assert.JSONEq(t, `[]`, string(data))
}

func TestHandleUpdateBookMembership(t *testing.T) {
	app := setupApp(t, lists.Config{})

	status, data := do(t, app, "POST", "/list/book", `{
		"userId": "u-alice",
		"bookKey": "bk1",
		"changes": [{"type": "core", "previousListKeys": [], "desiredListKeys": ["reading"]}]
	}`)
	require.Equal(t, 200, status, string(data))

	keys := decodeKeys(t, data)
	for _, s := range keys[models.TypeCore] {
		if s.Key == "reading" {
			assert.Equal(t, []string{"bk1"}, s.BookKeys)
		} else {
			assert.Empty(t, s.BookKeys)
		}
	}

	status, _ = do(t, app, "POST", "/list/book", `{"userId":"u-alice","bookKey":"bk1","changes":[{"type":"shelf"}]}`)
	assert.Equal(t, 400, status)
}

func TestHandleUpdateBooksAndGet(t *testing.T) {
	app := setupApp(t, lists.Config{})

	status, data := do(t, app, "PUT", "/list/core/update/books",
		`{"userId":"u-alice","key":"to-read","addKeys":["bk1","bk2"],"removeKeys":["bk2"]}`)
	require.Equal(t, 200, status, string(data))

	status, data = do(t, app, "GET", "/list/core?username=alice&key=to-read", "")
	require.Equal(t, 200, status)
	var record models.ListRecord
	require.NoError(t, json.Unmarshal(data, &record))
	assert.Equal(t, []string{"bk1"}, record.BookKeys)
	assert.Equal(t, models.TypeCore, record.Type)

	status, data = do(t, app, "GET", "/list/core/all?username=alice", "")
	require.Equal(t, 200, status)
	var all []models.ListRecord
	require.NoError(t, json.Unmarshal(data, &all))
	assert.Len(t, all, 4)

	status, _ = do(t, app, "PUT", "/list/bogus/update/books", `{"userId":"u-alice","key":"x"}`)
	assert.Equal(t, 400, status)
}

func TestHandleUpdateDetailsAndDelete(t *testing.T) {
	app := setupApp(t, lists.Config{})
	status, _ := do(t, app, "POST", "/list/create", `{"creatorKey":"u-alice","name":"Later"}`)
	require.Equal(t, 200, status)

	status, data := do(t, app, "PUT", "/list/created/update/details",
		`{"userId":"u-alice","key":"later","data":{"description":"someday"}}`)
	require.Equal(t, 200, status)
	assert.Contains(t, string(data), "someday")

	status, data = do(t, app, "DELETE", "/list/core/delete", `{"userId":"u-alice","key":"reading"}`)
	assert.Equal(t, 200, status)
	assert.JSONEq(t, `[]`, string(data))

	status, data = do(t, app, "DELETE", "/list/created/delete", `{"userId":"u-alice","key":"later"}`)
	assert.Equal(t, 200, status)
	assert.JSONEq(t, `[{"key":"later"}]`, string(data))
}

func TestHandleAccessErrorsDistinguished(t *testing.T) {
	app := setupApp(t, lists.Config{DistinguishAccessErrors: true})

	status, _ := do(t, app, "DELETE", "/list/created/delete", `{"userId":"u-alice","key":"nope"}`)
	assert.Equal(t, 404, status)

	status, _ = do(t, app, "PUT", "/list/following/update/books", `{"userId":"u-alice","key":"club","addKeys":["bk1"]}`)
	assert.Equal(t, 422, status)
}
