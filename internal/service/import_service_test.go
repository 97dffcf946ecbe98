package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/apexcreative/clientflow/internal/models"
)

type importFixture struct {
	svc     ImportService
	uploads *fakeUploadRepo
	posts   *fakePostRepo
	rows    *fakeAnalyticsRepo
	stats   *fakeStats
	store   *fakeStore
}

func newImportFixture() *importFixture {
	f := &importFixture{
		uploads: newFakeUploadRepo(),
		posts:   newFakePostRepo(),
		rows:    newFakeAnalyticsRepo(),
		stats:   &fakeStats{},
		store:   newFakeStore(),
	}
	clients := newFakeClientRepo(&models.Client{ID: 3, AgencyID: 1, Name: "Acme Coffee"})
	f.svc = NewImportService(f.uploads, f.posts, f.rows, clients, f.stats, f.store)
	return f
}

func TestHandleUploadTweets(t *testing.T) {
	f := newImportFixture()

	// a post from an earlier import; the new file must update it in place
	existing := f.posts.add(models.Post{
		ClientID:     3,
		TypefullyURL: "https://x.com/acme/1",
		Content:      "old text",
		Status:       models.PostStatusPublished,
		CreatedAt:    time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	})

	csv := "Tweet URL,Date,Text,Impressions,Likes\n" +
		"https://x.com/acme/1,2026-03-01,updated text,\"1,200\",30\n" +
		"https://x.com/acme/2,2026-03-02,brand new,900,12\n"
	file := multipartFile(t, "march.csv", []byte(csv))

	result, err := f.svc.HandleUpload(context.Background(), 1, 3, models.UploadTypeTweets, file)
	if err != nil {
		t.Fatalf("HandleUpload() error = %v", err)
	}

	if result.ProcessedRecords != 2 || result.NewRecords != 1 || result.UpdatedRecords != 1 {
		t.Errorf("result = %+v, want processed 2, new 1, updated 1", result)
	}
	if result.UploadID == 0 {
		t.Error("result must carry the recorded upload id")
	}

	upload, ok := f.uploads.uploads[result.UploadID]
	if !ok {
		t.Fatal("upload record was not kept")
	}
	if !upload.Processed || upload.PostsCount != 2 {
		t.Errorf("upload = %+v, want processed with 2 posts", upload)
	}

	updated := f.posts.posts[existing.ID]
	if updated.Content != "updated text" {
		t.Errorf("existing post content = %q, want updated", updated.Content)
	}
	if updated.UploadID == nil || *updated.UploadID != result.UploadID {
		t.Error("existing post must be reattributed to the new upload")
	}
	if !updated.CreatedAt.Equal(existing.CreatedAt) {
		t.Error("updating a post must not change its created_at")
	}

	fresh, ok, _ := f.posts.GetByTypefullyURL(context.Background(), 3, "https://x.com/acme/2")
	if !ok {
		t.Fatal("new row must create a post")
	}
	if fresh.Status != models.PostStatusPublished {
		t.Errorf("tweet import created post with status %q, want PUBLISHED", fresh.Status)
	}

	if len(f.rows.tweets) != 2 {
		t.Errorf("tweet analytics rows = %d, want 2", len(f.rows.tweets))
	}
	if f.rows.tweets["3|https://x.com/acme/1"].Impressions != 1200 {
		t.Error("thousands separators must be stripped from counters")
	}
	if len(f.stats.refreshed) != 1 || f.stats.refreshed[0] != 3 {
		t.Errorf("stats refreshed for %v, want [3]", f.stats.refreshed)
	}
	if len(f.store.uploaded) != 1 {
		t.Errorf("raw files stored = %d, want 1", len(f.store.uploaded))
	}
}

func TestHandleUploadFollowers(t *testing.T) {
	f := newImportFixture()

	csv := "Date,Followers,Following\n" +
		"2026-03-01,1500,90\n" +
		"2026-03-02,1512,90\n" +
		"2026-03-01,1508,91\n"
	file := multipartFile(t, "followers.csv", []byte(csv))

	result, err := f.svc.HandleUpload(context.Background(), 1, 3, models.UploadTypeFollowers, file)
	if err != nil {
		t.Fatalf("HandleUpload() error = %v", err)
	}

	if result.ProcessedRecords != 3 || result.NewRecords != 2 || result.UpdatedRecords != 1 {
		t.Errorf("result = %+v, want processed 3, new 2, updated 1", result)
	}
	if got := f.rows.followers["3|2026-03-01"].Followers; got != 1508 {
		t.Errorf("repeated date must keep the last value, got %d", got)
	}
}

func TestHandleUploadPostsCreatePendingDrafts(t *testing.T) {
	f := newImportFixture()

	csv := "URL,Content\nhttps://typefully.com/t/abc,draft one\n"
	file := multipartFile(t, "drafts.csv", []byte(csv))

	if _, err := f.svc.HandleUpload(context.Background(), 1, 3, models.UploadTypePosts, file); err != nil {
		t.Fatalf("HandleUpload() error = %v", err)
	}

	post, ok, _ := f.posts.GetByTypefullyURL(context.Background(), 3, "https://typefully.com/t/abc")
	if !ok {
		t.Fatal("draft post was not created")
	}
	if post.Status != models.PostStatusPending {
		t.Errorf("status = %q, want PENDING", post.Status)
	}
}

func TestHandleUploadPostsReadsStatusAndSchedule(t *testing.T) {
	f := newImportFixture()

	csv := "URL,Content,Status,Scheduled Date\n" +
		"https://typefully.com/t/abc,ready to go,APPROVED,2026-04-01\n" +
		"https://typefully.com/t/def,sent back,suggest changes,\n"
	file := multipartFile(t, "drafts.csv", []byte(csv))

	if _, err := f.svc.HandleUpload(context.Background(), 1, 3, models.UploadTypePosts, file); err != nil {
		t.Fatalf("HandleUpload() error = %v", err)
	}

	approved, ok, _ := f.posts.GetByTypefullyURL(context.Background(), 3, "https://typefully.com/t/abc")
	if !ok {
		t.Fatal("post was not created")
	}
	if approved.Status != models.PostStatusApproved {
		t.Errorf("status = %q, want APPROVED", approved.Status)
	}
	want := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	if approved.ScheduledDate == nil || !approved.ScheduledDate.Equal(want) {
		t.Errorf("scheduled date = %v, want %v", approved.ScheduledDate, want)
	}

	suggested, ok, _ := f.posts.GetByTypefullyURL(context.Background(), 3, "https://typefully.com/t/def")
	if !ok {
		t.Fatal("post was not created")
	}
	if suggested.Status != models.PostStatusSuggestChanges {
		t.Errorf("status = %q, want SUGGEST_CHANGES", suggested.Status)
	}
	if suggested.ScheduledDate != nil {
		t.Errorf("scheduled date = %v, want nil", suggested.ScheduledDate)
	}
}

func TestHandleUploadPostsRejectsUnknownStatus(t *testing.T) {
	f := newImportFixture()

	csv := "URL,Content,Status\nhttps://typefully.com/t/abc,draft,QUEUED\n"
	file := multipartFile(t, "drafts.csv", []byte(csv))

	if _, err := f.svc.HandleUpload(context.Background(), 1, 3, models.UploadTypePosts, file); err == nil {
		t.Fatal("HandleUpload() must reject a status outside the enumeration")
	}
	if len(f.uploads.uploads) != 0 {
		t.Error("a failed import must not stay in the upload chain")
	}
}

func TestHandleUploadPostsStatusDoesNotTouchReviewState(t *testing.T) {
	f := newImportFixture()

	existing := f.posts.add(models.Post{
		ClientID:     3,
		TypefullyURL: "https://typefully.com/t/abc",
		Content:      "old text",
		Status:       models.PostStatusRejected,
	})

	csv := "URL,Content,Status,Scheduled Date\n" +
		"https://typefully.com/t/abc,new text,APPROVED,2026-04-01\n"
	file := multipartFile(t, "drafts.csv", []byte(csv))

	if _, err := f.svc.HandleUpload(context.Background(), 1, 3, models.UploadTypePosts, file); err != nil {
		t.Fatalf("HandleUpload() error = %v", err)
	}

	updated := f.posts.posts[existing.ID]
	if updated.Status != models.PostStatusRejected {
		t.Errorf("status = %q, the importer must not override review state", updated.Status)
	}
	if updated.Content != "new text" {
		t.Errorf("content = %q, want updated", updated.Content)
	}
	if updated.ScheduledDate == nil {
		t.Error("the scheduled date from the file must be applied")
	}
}

func TestHandleUploadRejectsUnknownType(t *testing.T) {
	f := newImportFixture()
	file := multipartFile(t, "march.csv", []byte("a,b\n1,2\n"))

	if _, err := f.svc.HandleUpload(context.Background(), 1, 3, "engagement", file); err == nil {
		t.Fatal("HandleUpload() must reject unknown upload types")
	}
	if len(f.store.uploaded) != 0 {
		t.Error("nothing may be stored for a rejected upload type")
	}
}

func TestHandleUploadUnownedClient(t *testing.T) {
	f := newImportFixture()
	file := multipartFile(t, "march.csv", []byte("a,b\n1,2\n"))

	_, err := f.svc.HandleUpload(context.Background(), 9, 3, models.UploadTypeTweets, file)
	if !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("HandleUpload() error = %v, want ErrClientNotFound", err)
	}
}

func TestHandleUploadCleansUpFailedImport(t *testing.T) {
	f := newImportFixture()

	// tweets file without a URL column fails after the upload is recorded
	file := multipartFile(t, "march.csv", []byte("Date,Impressions\n2026-03-01,100\n"))

	if _, err := f.svc.HandleUpload(context.Background(), 1, 3, models.UploadTypeTweets, file); err == nil {
		t.Fatal("HandleUpload() must fail without a tweet URL column")
	}

	if len(f.uploads.uploads) != 0 {
		t.Error("a failed import must not stay in the upload chain")
	}
	if len(f.uploads.removedIDs) != 1 {
		t.Errorf("upload records removed = %d, want 1", len(f.uploads.removedIDs))
	}
	if len(f.store.removed) != 1 {
		t.Errorf("raw files removed = %d, want 1", len(f.store.removed))
	}
	if len(f.stats.refreshed) != 0 {
		t.Error("stats must not refresh after a failed import")
	}
}

func TestHandleUploadCleansUpFailedRecording(t *testing.T) {
	f := newImportFixture()
	f.uploads.createErr = errors.New("connection reset")

	csv := "Tweet URL\nhttps://x.com/acme/1\n"
	file := multipartFile(t, "march.csv", []byte(csv))

	if _, err := f.svc.HandleUpload(context.Background(), 1, 3, models.UploadTypeTweets, file); err == nil {
		t.Fatal("HandleUpload() must fail when the upload cannot be recorded")
	}

	if len(f.store.removed) != 1 {
		t.Errorf("raw files removed = %d, want 1 after a failed recording", len(f.store.removed))
	}
	if len(f.stats.refreshed) != 0 {
		t.Error("stats must not refresh after a failed import")
	}
}
