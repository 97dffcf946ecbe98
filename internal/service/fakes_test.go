package service

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/apexcreative/clientflow/internal/models"
	"github.com/apexcreative/clientflow/internal/repository"
)

var (
	_ repository.PostRepository      = (*fakePostRepo)(nil)
	_ repository.UploadRepository    = (*fakeUploadRepo)(nil)
	_ repository.ClientRepository    = (*fakeClientRepo)(nil)
	_ repository.UserRepository      = (*fakeUserRepo)(nil)
	_ repository.AnalyticsRepository = (*fakeAnalyticsRepo)(nil)
	_ repository.CommentRepository   = (*fakeCommentRepo)(nil)
	_ repository.DumpRepository      = (*fakeDumpRepo)(nil)
	_ StatsService                   = (*fakeStats)(nil)
	_ ObjectStore                    = (*fakeStore)(nil)
)

type fakePostRepo struct {
	nextID     int64
	posts      map[int64]*models.Post
	removedIDs []int64
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: map[int64]*models.Post{}}
}

func (f *fakePostRepo) add(p models.Post) *models.Post {
	f.nextID++
	p.ID = f.nextID
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	f.posts[p.ID] = &p
	return f.posts[p.ID]
}

func (f *fakePostRepo) GetByID(ctx context.Context, id int64) (*models.Post, bool, error) {
	post, ok := f.posts[id]
	return post, ok, nil
}

func (f *fakePostRepo) GetByTypefullyURL(ctx context.Context, clientID int64, url string) (*models.Post, bool, error) {
	for _, post := range f.posts {
		if post.ClientID == clientID && post.TypefullyURL == url {
			return post, true, nil
		}
	}
	return nil, false, nil
}

func (f *fakePostRepo) ListByClientID(ctx context.Context, tx *sql.Tx, clientID int64) ([]*models.Post, error) {
	var posts []*models.Post
	for _, post := range f.posts {
		if post.ClientID == clientID {
			posts = append(posts, post)
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return posts, nil
}

func (f *fakePostRepo) ListByClientIDAndStatus(ctx context.Context, clientID int64, status string) ([]*models.Post, error) {
	all, _ := f.ListByClientID(ctx, nil, clientID)
	var posts []*models.Post
	for _, post := range all {
		if post.Status == status {
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func (f *fakePostRepo) ListOverdueApproved(ctx context.Context, before time.Time) ([]*models.Post, error) {
	var posts []*models.Post
	for _, post := range f.posts {
		if post.Status == models.PostStatusApproved && post.ScheduledDate != nil && !post.ScheduledDate.After(before) {
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func (f *fakePostRepo) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	stored := f.add(*post)
	post.ID = stored.ID
	return stored.ID, nil
}

func (f *fakePostRepo) Update(ctx context.Context, post *models.Post) error {
	if _, ok := f.posts[post.ID]; !ok {
		return fmt.Errorf("post %d does not exist", post.ID)
	}
	copied := *post
	f.posts[post.ID] = &copied
	return nil
}

func (f *fakePostRepo) UpdateStatus(ctx context.Context, status, feedback string, postID int64) error {
	post, ok := f.posts[postID]
	if !ok {
		return fmt.Errorf("post %d does not exist", postID)
	}
	post.Status = status
	post.Feedback = feedback
	return nil
}

func (f *fakePostRepo) SetPublished(ctx context.Context, postID int64, publishedAt time.Time) error {
	post, ok := f.posts[postID]
	if !ok {
		return fmt.Errorf("post %d does not exist", postID)
	}
	post.Status = models.PostStatusPublished
	post.PublishedDate = &publishedAt
	return nil
}

func (f *fakePostRepo) AppendMedia(ctx context.Context, postID int64, url string) error {
	post, ok := f.posts[postID]
	if !ok {
		return fmt.Errorf("post %d does not exist", postID)
	}
	post.Media = append(post.Media, url)
	return nil
}

func (f *fakePostRepo) ReassignUpload(ctx context.Context, tx *sql.Tx, postID int64, uploadID *int64) error {
	post, ok := f.posts[postID]
	if !ok {
		return fmt.Errorf("post %d does not exist", postID)
	}
	post.UploadID = uploadID
	return nil
}

func (f *fakePostRepo) Remove(ctx context.Context, tx *sql.Tx, id int64) error {
	delete(f.posts, id)
	f.removedIDs = append(f.removedIDs, id)
	return nil
}

func (f *fakePostRepo) RemoveByClientID(ctx context.Context, tx *sql.Tx, clientID int64) (int64, error) {
	var count int64
	for id, post := range f.posts {
		if post.ClientID == clientID {
			delete(f.posts, id)
			f.removedIDs = append(f.removedIDs, id)
			count++
		}
	}
	return count, nil
}

type fakeUploadRepo struct {
	nextID     int64
	uploads    map[int64]*models.Upload
	processed  map[int64]int
	removedIDs []int64
	createErr  error
}

func newFakeUploadRepo() *fakeUploadRepo {
	return &fakeUploadRepo{uploads: map[int64]*models.Upload{}, processed: map[int64]int{}}
}

func (f *fakeUploadRepo) GetByID(ctx context.Context, tx *sql.Tx, id int64) (*models.Upload, bool, error) {
	upload, ok := f.uploads[id]
	return upload, ok, nil
}

func (f *fakeUploadRepo) GetPrevious(ctx context.Context, tx *sql.Tx, clientID, seq int64) (*models.Upload, bool, error) {
	var previous *models.Upload
	for _, upload := range f.uploads {
		if upload.ClientID != clientID || upload.Seq >= seq {
			continue
		}
		if previous == nil || upload.Seq > previous.Seq {
			previous = upload
		}
	}
	return previous, previous != nil, nil
}

func (f *fakeUploadRepo) ListByClientID(ctx context.Context, clientID int64) ([]*models.Upload, error) {
	var uploads []*models.Upload
	for _, upload := range f.uploads {
		if upload.ClientID == clientID {
			uploads = append(uploads, upload)
		}
	}
	sort.Slice(uploads, func(i, j int) bool { return uploads[i].Seq > uploads[j].Seq })
	return uploads, nil
}

func (f *fakeUploadRepo) Create(ctx context.Context, upload *models.Upload) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.nextID++
	upload.ID = f.nextID
	var maxSeq int64
	for _, u := range f.uploads {
		if u.ClientID == upload.ClientID && u.Seq > maxSeq {
			maxSeq = u.Seq
		}
	}
	upload.Seq = maxSeq + 1
	if upload.UploadDate.IsZero() {
		upload.UploadDate = time.Now()
	}
	copied := *upload
	f.uploads[upload.ID] = &copied
	return upload.ID, nil
}

func (f *fakeUploadRepo) MarkProcessed(ctx context.Context, id int64, postsCount int) error {
	upload, ok := f.uploads[id]
	if !ok {
		return fmt.Errorf("upload %d does not exist", id)
	}
	upload.Processed = true
	upload.PostsCount = postsCount
	f.processed[id] = postsCount
	return nil
}

func (f *fakeUploadRepo) Remove(ctx context.Context, tx *sql.Tx, id int64) error {
	delete(f.uploads, id)
	f.removedIDs = append(f.removedIDs, id)
	return nil
}

type fakeClientRepo struct {
	nextID  int64
	clients map[int64]*models.Client
}

func newFakeClientRepo(clients ...*models.Client) *fakeClientRepo {
	f := &fakeClientRepo{clients: map[int64]*models.Client{}}
	for _, client := range clients {
		if client.ID > f.nextID {
			f.nextID = client.ID
		}
		f.clients[client.ID] = client
	}
	return f
}

func (f *fakeClientRepo) GetByID(ctx context.Context, id int64) (*models.Client, bool, error) {
	client, ok := f.clients[id]
	return client, ok, nil
}

func (f *fakeClientRepo) ListAll(ctx context.Context) ([]*models.Client, error) {
	var clients []*models.Client
	for _, client := range f.clients {
		clients = append(clients, client)
	}
	return clients, nil
}

func (f *fakeClientRepo) ListByAgencyID(ctx context.Context, agencyID int64) ([]*models.Client, error) {
	var clients []*models.Client
	for _, client := range f.clients {
		if client.AgencyID == agencyID {
			clients = append(clients, client)
		}
	}
	return clients, nil
}

func (f *fakeClientRepo) CheckByAgencyID(ctx context.Context, clientID, agencyID int64) (bool, error) {
	client, ok := f.clients[clientID]
	return ok && client.AgencyID == agencyID, nil
}

func (f *fakeClientRepo) Create(ctx context.Context, client *models.Client) (int64, error) {
	f.nextID++
	client.ID = f.nextID
	f.clients[client.ID] = client
	return client.ID, nil
}

func (f *fakeClientRepo) Update(ctx context.Context, client *models.Client) error {
	f.clients[client.ID] = client
	return nil
}

func (f *fakeClientRepo) Remove(ctx context.Context, id int64) error {
	delete(f.clients, id)
	return nil
}

type fakeUserRepo struct {
	users map[int64]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	f := &fakeUserRepo{users: map[int64]*models.User{}}
	for _, user := range users {
		f.users[user.ID] = user
	}
	return f
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, bool, error) {
	user, ok := f.users[id]
	return user, ok, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, true, nil
		}
	}
	return nil, false, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, tx *sql.Tx, user *models.User) (int64, error) {
	user.ID = int64(len(f.users) + 1)
	f.users[user.ID] = user
	return user.ID, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) Remove(ctx context.Context, id int64) error {
	delete(f.users, id)
	return nil
}

type fakeAnalyticsRepo struct {
	tweets    map[string]*models.TweetAnalytics
	followers map[string]*models.FollowerAnalytics
}

func newFakeAnalyticsRepo() *fakeAnalyticsRepo {
	return &fakeAnalyticsRepo{
		tweets:    map[string]*models.TweetAnalytics{},
		followers: map[string]*models.FollowerAnalytics{},
	}
}

func (f *fakeAnalyticsRepo) UpsertTweet(ctx context.Context, row *models.TweetAnalytics) (bool, error) {
	key := fmt.Sprintf("%d|%s", row.ClientID, row.TweetURL)
	_, exists := f.tweets[key]
	f.tweets[key] = row
	return !exists, nil
}

func (f *fakeAnalyticsRepo) UpsertFollower(ctx context.Context, row *models.FollowerAnalytics) (bool, error) {
	key := fmt.Sprintf("%d|%s", row.ClientID, row.Date.Format("2006-01-02"))
	_, exists := f.followers[key]
	f.followers[key] = row
	return !exists, nil
}

func (f *fakeAnalyticsRepo) ListTweetsByClientID(ctx context.Context, clientID int64) ([]*models.TweetAnalytics, error) {
	var rows []*models.TweetAnalytics
	for _, row := range f.tweets {
		if row.ClientID == clientID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (f *fakeAnalyticsRepo) ListFollowersByClientID(ctx context.Context, clientID int64) ([]*models.FollowerAnalytics, error) {
	var rows []*models.FollowerAnalytics
	for _, row := range f.followers {
		if row.ClientID == clientID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

type fakeCommentRepo struct {
	comments []*models.Comment
}

func (f *fakeCommentRepo) Create(ctx context.Context, comment *models.Comment) (int64, error) {
	comment.ID = int64(len(f.comments) + 1)
	f.comments = append(f.comments, comment)
	return comment.ID, nil
}

func (f *fakeCommentRepo) ListByPostID(ctx context.Context, postID int64) ([]*models.Comment, error) {
	var comments []*models.Comment
	for _, comment := range f.comments {
		if comment.PostID == postID {
			comments = append(comments, comment)
		}
	}
	return comments, nil
}

type fakeDumpRepo struct {
	nextID int64
	dumps  map[int64]*models.ContentDump
}

func newFakeDumpRepo(dumps ...*models.ContentDump) *fakeDumpRepo {
	f := &fakeDumpRepo{dumps: map[int64]*models.ContentDump{}}
	for _, dump := range dumps {
		if dump.ID > f.nextID {
			f.nextID = dump.ID
		}
		f.dumps[dump.ID] = dump
	}
	return f
}

func (f *fakeDumpRepo) GetByID(ctx context.Context, id int64) (*models.ContentDump, bool, error) {
	dump, ok := f.dumps[id]
	return dump, ok, nil
}

func (f *fakeDumpRepo) ListByClientID(ctx context.Context, clientID int64) ([]*models.ContentDump, error) {
	var dumps []*models.ContentDump
	for _, dump := range f.dumps {
		if dump.ClientID == clientID {
			dumps = append(dumps, dump)
		}
	}
	return dumps, nil
}

func (f *fakeDumpRepo) Create(ctx context.Context, dump *models.ContentDump) (int64, error) {
	f.nextID++
	dump.ID = f.nextID
	f.dumps[dump.ID] = dump
	return dump.ID, nil
}

func (f *fakeDumpRepo) MarkProcessed(ctx context.Context, id int64) error {
	dump, ok := f.dumps[id]
	if !ok {
		return fmt.Errorf("dump %d does not exist", id)
	}
	dump.Processed = true
	return nil
}

type fakeStats struct {
	refreshed []int64
}

func (f *fakeStats) Get(ctx context.Context, clientID int64) (*models.ClientStats, error) {
	return &models.ClientStats{ClientID: clientID}, nil
}

func (f *fakeStats) Refresh(ctx context.Context, clientID int64) error {
	f.refreshed = append(f.refreshed, clientID)
	return nil
}

type fakeStore struct {
	uploaded map[string][]byte
	removed  []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{uploaded: map[string][]byte{}}
}

func (f *fakeStore) Upload(ctx context.Context, key string, file []byte, contentType string) error {
	f.uploaded[key] = file
	return nil
}

func (f *fakeStore) Remove(ctx context.Context, key string) error {
	f.removed = append(f.removed, key)
	return nil
}

func (f *fakeStore) PublicURL(key string) string {
	return "https://cdn.test/" + key
}

func int64ptr(v int64) *int64 { return &v }

// multipartFile builds a real *multipart.FileHeader the way Fiber hands one
// to the services: by parsing an actual multipart request body.
func multipartFile(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatal(err)
	}
	return req.MultipartForm.File["file"][0]
}
