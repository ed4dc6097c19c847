package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"vidhub-go/internal/api/dto"
	"vidhub-go/internal/api/handler"
	"vidhub-go/internal/api/middleware"
	"vidhub-go/internal/api/response"
	"vidhub-go/internal/repository"
	"vidhub-go/internal/service"
	"vidhub-go/internal/testutil"
	"vidhub-go/pkg/utils"

	"github.com/gin-gonic/gin"
)

type testServer struct {
	t *testing.T
	r *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	ingestor, _ := testutil.NewIngestor(t, &testutil.FakeProber{DurationVal: 42})

	userRepo := repository.NewUserRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	historyRepo := repository.NewWatchHistoryRepository(db)

	searchService := service.NewSearchService(videoRepo, likeRepo, nil, nil)
	authService := service.NewAuthService(userRepo, utils.NewTokenManager("test-secret", "vidhub", time.Minute))
	videoService := service.NewVideoService(videoRepo, userRepo, likeRepo, ingestor, service.NewDirectPublisher(searchService))
	commentService := service.NewCommentService(commentRepo, videoRepo, likeRepo)

	limits := handler.UploadLimits{MaxVideoBytes: 1 << 20, MaxImageBytes: 1 << 20}
	r := gin.New()
	r.Use(middleware.Recovery())
	Setup(r, Handlers{
		Auth:         handler.NewAuthHandler(authService),
		User:         handler.NewUserHandler(service.NewUserService(userRepo, subRepo, ingestor), videoService, limits),
		Subscription: handler.NewSubscriptionHandler(service.NewSubscriptionService(userRepo, subRepo)),
		Video:        handler.NewVideoHandler(videoService, limits),
		Like:         handler.NewLikeHandler(videoService, commentService),
		Comment:      handler.NewCommentHandler(commentService),
		WatchHistory: handler.NewWatchHistoryHandler(service.NewWatchHistoryService(historyRepo, videoRepo, likeRepo)),
		Search:       handler.NewSearchHandler(searchService),
	}, authService)

	return &testServer{t: t, r: r}
}

func (s *testServer) do(req *http.Request, token string) *httptest.ResponseRecorder {
	s.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	return w
}

func (s *testServer) json(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.do(req, token)
}

// signup 注册并登录，返回 access token
func (s *testServer) signup(name string) string {
	s.t.Helper()
	w := s.json(http.MethodPost, "/register", "", map[string]string{
		"username": name, "email": name + "@example.com", "password": "secret123",
	})
	if w.Code != http.StatusCreated {
		s.t.Fatalf("register %s: %d %s", name, w.Code, w.Body.String())
	}

	form := url.Values{"username": {name}, "password": {"secret123"}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = s.do(req, "")
	if w.Code != http.StatusOK {
		s.t.Fatalf("token %s: %d %s", name, w.Code, w.Body.String())
	}
	var tok dto.TokenData
	decode(s.t, w, &tok)
	if tok.TokenType != "bearer" || tok.AccessToken == "" {
		s.t.Fatalf("token data = %+v", tok)
	}
	return tok.AccessToken
}

type filePart struct {
	field, filename, contentType, body string
}

func multipartRequest(t *testing.T, path string, fields map[string]string, files ...filePart) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.field, f.filename))
		h.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		io.WriteString(part, f.body)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func (s *testServer) upload(token, title string, private bool) dto.VideoInfo {
	s.t.Helper()
	req := multipartRequest(s.t, "/videos/",
		map[string]string{"title": title, "is_private": fmt.Sprint(private)},
		filePart{"video_file", "clip.mp4", "video/mp4", "frames"},
	)
	w := s.do(req, token)
	if w.Code != http.StatusCreated {
		s.t.Fatalf("upload %s: %d %s", title, w.Code, w.Body.String())
	}
	var v dto.VideoInfo
	decode(s.t, w, &v)
	return v
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

func wantError(t *testing.T, w *httptest.ResponseRecorder, status int, kind string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d (%s)", w.Code, status, w.Body.String())
	}
	var resp response.ErrorResponse
	decode(t, w, &resp)
	if resp.Error.Code != status || resp.Error.Type != kind || resp.Error.Message == "" {
		t.Errorf("error body = %+v, want type %s", resp.Error, kind)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)
	token := s.signup("alice")

	w := s.json(http.MethodPost, "/register", "", map[string]string{
		"username": "alice", "email": "other@example.com", "password": "secret123",
	})
	wantError(t, w, http.StatusBadRequest, "Conflict")

	w = s.json(http.MethodPost, "/register", "", map[string]string{
		"username": "  x  ", "email": "x@example.com", "password": "secret123",
	})
	wantError(t, w, http.StatusBadRequest, "BadRequest")

	w = s.json(http.MethodPut, "/users/me", token, map[string]string{"username": "   "})
	wantError(t, w, http.StatusBadRequest, "BadRequest")

	w = s.json(http.MethodGet, "/users/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: %d %s", w.Code, w.Body.String())
	}
	var me dto.UserInfo
	decode(t, w, &me)
	if me.Username != "alice" || !me.IsActive {
		t.Errorf("me = %+v", me)
	}
	if strings.Contains(w.Body.String(), "hashed_password") {
		t.Error("password hash leaked")
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	s := newTestServer(t)
	s.signup("alice")

	form := url.Values{"username": {"alice"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := s.do(req, "")
	wantError(t, w, http.StatusUnauthorized, "Unauthorized")
	if w.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Errorf("WWW-Authenticate = %q", w.Header().Get("WWW-Authenticate"))
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	wantError(t, s.json(http.MethodGet, "/users/me", "", nil), http.StatusUnauthorized, "Unauthorized")
	wantError(t, s.json(http.MethodGet, "/users/me", "garbage", nil), http.StatusUnauthorized, "Unauthorized")
	wantError(t, s.json(http.MethodGet, "/videos/watch-history", "", nil), http.StatusUnauthorized, "Unauthorized")
}

func TestUploadAndServeFiles(t *testing.T) {
	s := newTestServer(t)
	token := s.signup("alice")

	v := s.upload(token, "first", false)
	if v.Duration != 42 || v.ThumbnailPath == nil || v.UploaderID == 0 {
		t.Fatalf("video = %+v", v)
	}

	w := s.json(http.MethodGet, "/videos/file/"+v.FilePath, "", nil)
	if w.Code != http.StatusOK || w.Body.String() != "frames" {
		t.Errorf("serve video: %d %q", w.Code, w.Body.String())
	}

	w = s.json(http.MethodGet, "/videos/thumbnail/"+*v.ThumbnailPath, "", nil)
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		t.Errorf("serve thumbnail: %d", w.Code)
	}

	wantError(t, s.json(http.MethodGet, "/videos/file/missing.mp4", "", nil), http.StatusNotFound, "NotFound")
}

func TestUploadValidation(t *testing.T) {
	s := newTestServer(t)
	token := s.signup("alice")

	req := multipartRequest(t, "/videos/", map[string]string{"title": "x"},
		filePart{"video_file", "clip.txt", "text/plain", "hello"})
	wantError(t, s.do(req, token), http.StatusBadRequest, "InvalidMediaType")

	req = multipartRequest(t, "/videos/", map[string]string{"title": "x"})
	wantError(t, s.do(req, token), http.StatusBadRequest, "BadRequest")

	req = multipartRequest(t, "/videos/", map[string]string{"title": "x"},
		filePart{"video_file", "clip.mp4", "video/mp4", "frames"})
	wantError(t, s.do(req, ""), http.StatusUnauthorized, "Unauthorized")
}

func TestPrivateVideoVisibility(t *testing.T) {
	s := newTestServer(t)
	owner := s.signup("alice")
	other := s.signup("bob")
	v := s.upload(owner, "secret", true)
	path := fmt.Sprintf("/videos/%d", v.ID)

	wantError(t, s.json(http.MethodGet, path, "", nil), http.StatusForbidden, "Forbidden")
	wantError(t, s.json(http.MethodGet, path, other, nil), http.StatusForbidden, "Forbidden")

	w := s.json(http.MethodGet, path, owner, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("owner get: %d %s", w.Code, w.Body.String())
	}
	var got dto.VideoInfo
	decode(t, w, &got)
	if got.Views != 1 {
		t.Errorf("views = %d, want 1", got.Views)
	}

	w = s.json(http.MethodGet, "/videos", "", nil)
	if w.Code != http.StatusOK || strings.Contains(w.Body.String(), `"secret"`) {
		t.Errorf("public list leaked private video: %s", w.Body.String())
	}

	w = s.json(http.MethodGet, "/users/alice/videos", owner, nil)
	var mine []dto.VideoInfo
	decode(t, w, &mine)
	if len(mine) != 1 {
		t.Errorf("owner should see own private video, got %d", len(mine))
	}

	wantError(t, s.json(http.MethodGet, "/videos/9999", "", nil), http.StatusNotFound, "NotFound")
	wantError(t, s.json(http.MethodGet, "/videos/abc", "", nil), http.StatusBadRequest, "BadRequest")
}

func TestUpdateAndDeleteVideo(t *testing.T) {
	s := newTestServer(t)
	owner := s.signup("alice")
	other := s.signup("bob")
	v := s.upload(owner, "first", false)
	path := fmt.Sprintf("/videos/%d", v.ID)

	title := "renamed"
	wantError(t, s.json(http.MethodPut, path, other, dto.VideoUpdateRequest{Title: &title}), http.StatusForbidden, "Forbidden")

	w := s.json(http.MethodPut, path, owner, dto.VideoUpdateRequest{Title: &title})
	var got dto.VideoInfo
	decode(t, w, &got)
	if got.Title != "renamed" {
		t.Errorf("title = %q", got.Title)
	}

	wantError(t, s.json(http.MethodDelete, path, other, nil), http.StatusForbidden, "Forbidden")
	if w := s.json(http.MethodDelete, path, owner, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete: %d %s", w.Code, w.Body.String())
	}
	wantError(t, s.json(http.MethodGet, path, owner, nil), http.StatusNotFound, "NotFound")
	wantError(t, s.json(http.MethodGet, "/videos/file/"+v.FilePath, "", nil), http.StatusNotFound, "NotFound")
}

func TestLikeRoutes(t *testing.T) {
	s := newTestServer(t)
	owner := s.signup("alice")
	fan := s.signup("bob")
	v := s.upload(owner, "first", false)
	base := fmt.Sprintf("/videos/%d", v.ID)

	w := s.json(http.MethodPost, base+"/like", fan, nil)
	var got dto.VideoInfo
	decode(t, w, &got)
	if got.LikesCount != 1 {
		t.Errorf("likes = %d, want 1", got.LikesCount)
	}
	wantError(t, s.json(http.MethodPost, base+"/like", fan, nil), http.StatusBadRequest, "Conflict")

	// 公开视频的点赞列表无需登录
	w = s.json(http.MethodGet, base+"/likes", "", nil)
	var likers []dto.UserInfo
	decode(t, w, &likers)
	if len(likers) != 1 || likers[0].Username != "bob" {
		t.Errorf("likers = %+v", likers)
	}
	wantError(t, s.json(http.MethodGet, base+"/likes?skip=-1", "", nil), http.StatusBadRequest, "BadRequest")
	hidden := s.upload(owner, "hidden", true)
	wantError(t, s.json(http.MethodGet, fmt.Sprintf("/videos/%d/likes", hidden.ID), fan, nil), http.StatusForbidden, "Forbidden")

	w = s.json(http.MethodGet, base+"/like", fan, nil)
	var status dto.LikeStatus
	decode(t, w, &status)
	if !status.Liked || status.LikesCount != 1 {
		t.Errorf("status = %+v", status)
	}

	w = s.json(http.MethodDelete, base+"/like", fan, nil)
	decode(t, w, &got)
	if got.LikesCount != 0 {
		t.Errorf("likes after unlike = %d", got.LikesCount)
	}
	wantError(t, s.json(http.MethodPost, base+"/unlike", fan, nil), http.StatusBadRequest, "Conflict")
}

func TestCommentRoutes(t *testing.T) {
	s := newTestServer(t)
	owner := s.signup("alice")
	fan := s.signup("bob")
	v := s.upload(owner, "first", false)
	base := fmt.Sprintf("/videos/%d/comments", v.ID)

	w := s.json(http.MethodPost, base, fan, dto.CommentCreateRequest{Content: "nice"})
	if w.Code != http.StatusCreated {
		t.Fatalf("comment: %d %s", w.Code, w.Body.String())
	}
	var root dto.CommentInfo
	decode(t, w, &root)

	w = s.json(http.MethodPost, base, owner, dto.CommentCreateRequest{Content: "thanks", ParentID: &root.ID})
	if w.Code != http.StatusCreated {
		t.Fatalf("reply: %d %s", w.Code, w.Body.String())
	}

	w = s.json(http.MethodGet, base, "", nil)
	var top []dto.CommentInfo
	decode(t, w, &top)
	if len(top) != 1 || top[0].RepliesCount != 1 {
		t.Fatalf("top-level comments = %+v", top)
	}

	w = s.json(http.MethodGet, fmt.Sprintf("/videos/comments/%d/replies", root.ID), "", nil)
	var replies []dto.CommentInfo
	decode(t, w, &replies)
	if len(replies) != 1 || replies[0].Content != "thanks" {
		t.Errorf("replies = %+v", replies)
	}

	w = s.json(http.MethodPost, fmt.Sprintf("/videos/comments/%d/like", root.ID), owner, nil)
	var liked dto.CommentInfo
	decode(t, w, &liked)
	if liked.LikesCount != 1 {
		t.Errorf("comment likes = %d", liked.LikesCount)
	}

	commentPath := fmt.Sprintf("/videos/comments/%d", root.ID)
	wantError(t, s.json(http.MethodPut, commentPath, owner, dto.CommentUpdateRequest{Content: "hijack"}), http.StatusForbidden, "Forbidden")
	if w := s.json(http.MethodDelete, commentPath, fan, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete comment: %d %s", w.Code, w.Body.String())
	}

	w = s.json(http.MethodGet, base, "", nil)
	decode(t, w, &top)
	if len(top) != 0 {
		t.Errorf("comments after delete = %+v", top)
	}
}

func TestSubscriptionRoutes(t *testing.T) {
	s := newTestServer(t)
	s.signup("alice")
	fan := s.signup("bob")

	w := s.json(http.MethodPost, "/users/alice/subscribe", fan, nil)
	var ch dto.ChannelInfo
	decode(t, w, &ch)
	if ch.SubscribersCount != 1 || !ch.Subscribed {
		t.Errorf("channel = %+v", ch)
	}
	wantError(t, s.json(http.MethodPost, "/users/alice/subscribe", fan, nil), http.StatusBadRequest, "Conflict")
	wantError(t, s.json(http.MethodPost, "/users/bob/subscribe", fan, nil), http.StatusBadRequest, "BadRequest")
	wantError(t, s.json(http.MethodPost, "/users/nobody/subscribe", fan, nil), http.StatusNotFound, "NotFound")

	w = s.json(http.MethodGet, "/users/me/subscriptions", fan, nil)
	var subs []dto.UserInfo
	decode(t, w, &subs)
	if len(subs) != 1 || subs[0].Username != "alice" {
		t.Errorf("subscriptions = %+v", subs)
	}

	w = s.json(http.MethodPost, "/users/alice/unsubscribe", fan, nil)
	decode(t, w, &ch)
	if ch.SubscribersCount != 0 {
		t.Errorf("subscribers after unsubscribe = %d", ch.SubscribersCount)
	}
	wantError(t, s.json(http.MethodPost, "/users/alice/unsubscribe", fan, nil), http.StatusBadRequest, "Conflict")
}

func TestProfilePictureRoutes(t *testing.T) {
	s := newTestServer(t)
	token := s.signup("alice")

	req := multipartRequest(t, "/users/me/profile-picture", nil,
		filePart{"file", "me.png", "image/png", "png-bytes"})
	w := s.do(req, token)
	if w.Code != http.StatusOK {
		t.Fatalf("upload picture: %d %s", w.Code, w.Body.String())
	}
	var me dto.UserInfo
	decode(t, w, &me)
	if me.ProfilePicture == nil {
		t.Fatal("profile picture not set")
	}

	w = s.json(http.MethodGet, "/users/files/profile-picture/"+*me.ProfilePicture, "", nil)
	if w.Code != http.StatusOK || w.Body.String() != "png-bytes" {
		t.Errorf("serve picture: %d %q", w.Code, w.Body.String())
	}

	req = multipartRequest(t, "/users/me/banner", nil,
		filePart{"file", "banner.mp4", "video/mp4", "x"})
	wantError(t, s.do(req, token), http.StatusBadRequest, "InvalidMediaType")
}

func TestWatchHistoryRoutes(t *testing.T) {
	s := newTestServer(t)
	token := s.signup("alice")
	v := s.upload(token, "first", false)
	path := fmt.Sprintf("/videos/%d/watch-history", v.ID)

	s.json(http.MethodPost, path, token, dto.WatchHistoryRequest{Timestamp: 10})
	w := s.json(http.MethodPost, path, token, dto.WatchHistoryRequest{Timestamp: 25})
	if w.Code != http.StatusOK {
		t.Fatalf("record: %d %s", w.Code, w.Body.String())
	}

	w = s.json(http.MethodGet, "/videos/watch-history", token, nil)
	var items []dto.WatchHistoryInfo
	decode(t, w, &items)
	if len(items) != 1 || items[0].Timestamp != 25 {
		t.Errorf("history = %+v", items)
	}
}

func TestSearchRoutes(t *testing.T) {
	s := newTestServer(t)
	token := s.signup("alice")
	s.upload(token, "Go Tutorial", false)
	s.upload(token, "Cooking", false)
	s.upload(token, "Go Secrets", true)

	w := s.json(http.MethodGet, "/search/videos?query=go", "", nil)
	var found []dto.VideoInfo
	decode(t, w, &found)
	if len(found) != 1 || found[0].Title != "Go Tutorial" {
		t.Errorf("search = %+v", found)
	}

	wantError(t, s.json(http.MethodGet, "/search/videos?sort_by=title", "", nil), http.StatusBadRequest, "BadRequest")

	w = s.json(http.MethodGet, "/search/latest?limit=1", "", nil)
	var latest []dto.VideoInfo
	decode(t, w, &latest)
	if len(latest) != 1 || latest[0].Title != "Cooking" {
		t.Errorf("latest = %+v", latest)
	}
}
