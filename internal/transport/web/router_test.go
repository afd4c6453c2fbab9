package web

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EgorLis/my-books/internal/auth/password"
	"github.com/EgorLis/my-books/internal/auth/token"
	"github.com/EgorLis/my-books/internal/config"
	"github.com/EgorLis/my-books/internal/domain"
	"github.com/EgorLis/my-books/internal/imaging"
	"github.com/EgorLis/my-books/internal/infra/database/memory"
	"github.com/EgorLis/my-books/internal/infra/storage/disk"
	"github.com/EgorLis/my-books/internal/service/books"
	"github.com/EgorLis/my-books/internal/service/users"
	"github.com/EgorLis/my-books/internal/transport/web/mw"
)

type testServer struct {
	*httptest.Server
	books *books.Service
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	discard := log.New(io.Discard, "", 0)

	repo := memory.New(discard)
	storage, err := disk.New(t.TempDir(), discard)
	require.NoError(t, err)

	hasher, err := password.New("bcrypt", 4)
	require.NoError(t, err)
	tm := token.New("test-secret", "my-books", time.Hour)

	usersSvc := users.New(repo, hasher, tm, discard)
	booksSvc := books.New(repo, storage, imaging.New(), discard)

	cfg := &config.Config{AppPort: "0", MaxUploadMB: 5}
	h := NewHandler(discard, cfg,
		Services{Users: usersSvc, Books: booksSvc},
		Infra{DB: repo, Storage: storage})

	srv := httptest.NewServer(h)
	t.Cleanup(func() {
		srv.Close()
		booksSvc.Wait()
	})
	return testServer{Server: srv, books: booksSvc}
}

func (s testServer) do(t *testing.T, method, path string, tok domain.Token, contentType string, body io.Reader) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, s.URL+path, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+string(tok))
	}
	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (s testServer) doJSON(t *testing.T, method, path string, tok domain.Token, v any) *http.Response {
	t.Helper()
	var body io.Reader
	if v != nil {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	return s.do(t, method, path, tok, "application/json", body)
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (s testServer) signupAndLogin(t *testing.T, email string) users.LoginResult {
	t.Helper()
	creds := map[string]string{"email": email, "password": "secret"}
	resp := s.doJSON(t, http.MethodPost, "/api/auth/signup", "", creds)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = s.doJSON(t, http.MethodPost, "/api/auth/login", "", creds)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decode[users.LoginResult](t, resp)
	require.NotEmpty(t, res.Token)
	return res
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func bookForm(t *testing.T, meta any, img []byte) (string, io.Reader) {
	t.Helper()
	var buf bytes.Buffer
	mpw := multipart.NewWriter(&buf)
	b, err := json.Marshal(meta)
	require.NoError(t, err)
	require.NoError(t, mpw.WriteField("book", string(b)))
	if img != nil {
		fw, err := mpw.CreateFormFile("image", "My Cover.png")
		require.NoError(t, err)
		_, err = fw.Write(img)
		require.NoError(t, err)
	}
	require.NoError(t, mpw.Close())
	return mpw.FormDataContentType(), &buf
}

func errCode(t *testing.T, resp *http.Response) int {
	t.Helper()
	env := decode[domain.APIEnvelope](t, resp)
	require.NotNil(t, env.Error)
	return env.Error.Code
}

func TestBookLifecycle(t *testing.T) {
	s := newTestServer(t)
	owner := s.signupAndLogin(t, "owner@example.com")
	reader := s.signupAndLogin(t, "reader@example.com")

	// создание: владелец берётся из токена
	ct, body := bookForm(t, map[string]any{
		"title": "Dune", "author": "Frank Herbert", "year": 1965, "genre": "SF",
	}, pngBytes(t, 1600, 40))
	resp := s.do(t, http.MethodPost, "/api/books", owner.Token, ct, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[domain.Book](t, resp)
	assert.Equal(t, owner.UserID, created.UserID)
	assert.Equal(t, 0, created.AverageRating)
	assert.Empty(t, created.Ratings)
	require.True(t, strings.HasPrefix(created.ImageURL, s.URL+"/images/"), created.ImageURL)
	assert.True(t, strings.HasSuffix(created.ImageURL, "_optimized.jpg"))

	// обложка доступна и ужата до 800px
	imgPath := strings.TrimPrefix(created.ImageURL, s.URL)
	resp = s.do(t, http.MethodGet, imgPath, "", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	cfg, err := jpeg.DecodeConfig(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 20, cfg.Height)

	bookPath := "/api/books/" + created.ID.String()

	resp = s.do(t, http.MethodGet, "/api/books", "", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]domain.Book](t, resp), 1)

	// оценки: 4 и 5 дают round(4.5) = 5
	resp = s.doJSON(t, http.MethodPost, bookPath+"/rating", owner.Token, map[string]any{"rating": 4})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 4, decode[domain.Book](t, resp).AverageRating)

	resp = s.doJSON(t, http.MethodPost, bookPath+"/rating", owner.Token, map[string]any{"rating": 1})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, domain.ErrCodeDuplicateRating, errCode(t, resp))

	resp = s.doJSON(t, http.MethodPost, bookPath+"/rating", reader.Token,
		map[string]any{"userId": reader.UserID.String(), "rating": 5})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rated := decode[domain.Book](t, resp)
	assert.Equal(t, 5, rated.AverageRating)
	assert.Len(t, rated.Ratings, 2)

	resp = s.do(t, http.MethodGet, "/api/books/bestrating", "", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	best := decode[[]domain.Book](t, resp)
	require.Len(t, best, 1)
	assert.Equal(t, created.ID, best[0].ID)

	// чужой пользователь не может менять и удалять
	resp = s.doJSON(t, http.MethodPut, bookPath, reader.Token, map[string]any{"title": "Hacked"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = s.do(t, http.MethodDelete, bookPath, reader.Token, "", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.doJSON(t, http.MethodPut, bookPath, "", map[string]any{"title": "Anon"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.doJSON(t, http.MethodPut, bookPath, owner.Token, map[string]any{"title": "Dune Messiah", "year": 1969})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	modified := decode[domain.Book](t, resp)
	assert.Equal(t, "Dune Messiah", modified.Title)
	assert.Equal(t, 1969, modified.Year)
	assert.Equal(t, "Frank Herbert", modified.Author)
	assert.Equal(t, 5, modified.AverageRating)

	resp = s.do(t, http.MethodDelete, bookPath, owner.Token, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "book deleted", decode[domain.Message](t, resp).Message)

	resp = s.do(t, http.MethodGet, bookPath, "", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	s.books.Wait()
	resp = s.do(t, http.MethodGet, imgPath, "", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateBookOwnership(t *testing.T) {
	s := newTestServer(t)
	owner := s.signupAndLogin(t, "owner@example.com")
	img := pngBytes(t, 10, 10)

	testCases := []struct {
		name   string
		token  domain.Token
		meta   map[string]any
		img    []byte
		status int
	}{
		{
			name:   "anonymous_with_user_id",
			meta:   map[string]any{"userId": owner.UserID.String(), "title": "T", "author": "A", "genre": "G"},
			img:    img,
			status: http.StatusCreated,
		},
		{
			name:   "anonymous_without_user_id",
			meta:   map[string]any{"title": "T", "author": "A", "genre": "G"},
			img:    img,
			status: http.StatusBadRequest,
		},
		{
			name:   "token_user_mismatch",
			token:  owner.Token,
			meta:   map[string]any{"userId": "7f1c2a9e-0000-4000-8000-000000000001", "title": "T", "author": "A", "genre": "G"},
			img:    img,
			status: http.StatusForbidden,
		},
		{
			name:   "invalid_token",
			token:  "garbage",
			meta:   map[string]any{"title": "T", "author": "A", "genre": "G"},
			img:    img,
			status: http.StatusUnauthorized,
		},
		{
			name:   "missing_image",
			token:  owner.Token,
			meta:   map[string]any{"title": "T", "author": "A", "genre": "G"},
			status: http.StatusBadRequest,
		},
		{
			name:   "missing_title",
			token:  owner.Token,
			meta:   map[string]any{"author": "A", "genre": "G"},
			img:    img,
			status: http.StatusBadRequest,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ct, body := bookForm(t, tc.meta, tc.img)
			resp := s.do(t, http.MethodPost, "/api/books", tc.token, ct, body)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}

	resp := s.doJSON(t, http.MethodPost, "/api/books", owner.Token, map[string]any{"title": "T"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.signupAndLogin(t, "user@example.com")

	resp := s.doJSON(t, http.MethodPost, "/api/auth/signup", "", map[string]string{"email": "user@example.com", "password": "other"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.doJSON(t, http.MethodPost, "/api/auth/signup", "", map[string]string{"email": "not-an-email", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.doJSON(t, http.MethodPost, "/api/auth/signup", "", map[string]string{"email": "long@example.com", "password": strings.Repeat("x", 73)})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, domain.ErrCodeBadParams, errCode(t, resp))

	resp = s.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "user@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, domain.ErrCodeUnauth, errCode(t, resp))

	resp = s.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "nobody@example.com", "password": "secret"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/auth/login", "", "application/x-www-form-urlencoded",
		strings.NewReader("email=user%40example.com&password=secret"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRatingValidation(t *testing.T) {
	s := newTestServer(t)
	u := s.signupAndLogin(t, "user@example.com")

	ct, body := bookForm(t, map[string]any{"title": "T", "author": "A", "genre": "G"}, pngBytes(t, 10, 10))
	resp := s.do(t, http.MethodPost, "/api/books", u.Token, ct, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	path := "/api/books/" + decode[domain.Book](t, resp).ID.String() + "/rating"

	resp = s.doJSON(t, http.MethodPost, path, u.Token, map[string]any{"rating": 6})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.doJSON(t, http.MethodPost, path, u.Token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.doJSON(t, http.MethodPost, path, u.Token, map[string]any{"userId": "7f1c2a9e-0000-4000-8000-000000000001", "rating": 3})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.doJSON(t, http.MethodPost, path, "", map[string]any{"rating": 3})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.doJSON(t, http.MethodPost, "/api/books/7f1c2a9e-0000-4000-8000-000000000002/rating", u.Token, map[string]any{"rating": 3})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/books/not-a-uuid", "", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/books/bestrating?limit=abc", "", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProbesAndMiddleware(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodGet, "/api/healthz", "", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(mw.HeaderRequestID))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	resp = s.do(t, http.MethodGet, "/api/readyz", "", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ready", decode[map[string]string](t, resp)["status"])

	resp = s.do(t, http.MethodGet, "/images/missing.jpg", "", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
