package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tsurilog/fishlog-backend/internal/errs"
	"github.com/tsurilog/fishlog-backend/pkg/helpers"
)

type stubBlobStore struct {
	mu      sync.Mutex
	puts    map[string][]byte
	failPut map[string]error

	// arrived/release let a test hold uploads open and finish them in a
	// chosen order.
	arrived chan string
	release map[string]chan struct{}
}

func newStubBlobStore() *stubBlobStore {
	return &stubBlobStore{
		puts:    make(map[string][]byte),
		failPut: make(map[string]error),
	}
}

func (s *stubBlobStore) Put(_ context.Context, key string, data []byte) error {
	if s.arrived != nil {
		s.arrived <- key
		<-s.release[key]
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failPut[key]; err != nil {
		return err
	}
	s.puts[key] = data
	return nil
}

func (s *stubBlobStore) DownloadURL(_ context.Context, key string) (string, error) {
	return "https://cdn.test/" + key, nil
}

func (s *stubBlobStore) putCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.puts)
}

func fixedClock() time.Time {
	return time.UnixMilli(1700000000000)
}

func postImageKey(postID string, i int) string {
	return fmt.Sprintf("posts/%s/image_%d_%d", postID, fixedClock().UnixMilli(), i)
}

func TestUploadPostImagesPreservesInputOrder(t *testing.T) {
	blobs := newStubBlobStore()
	svc := &mediaService{blobs: blobs, now: fixedClock}
	ctx := helpers.TestCtx()

	keys := []string{
		postImageKey("post-1", 0),
		postImageKey("post-1", 1),
		postImageKey("post-1", 2),
	}
	blobs.arrived = make(chan string, len(keys))
	blobs.release = map[string]chan struct{}{
		keys[0]: make(chan struct{}),
		keys[1]: make(chan struct{}),
		keys[2]: make(chan struct{}),
	}

	// Hold all three uploads open, then let them finish in reverse order.
	go func() {
		for range keys {
			<-blobs.arrived
		}
		close(blobs.release[keys[2]])
		close(blobs.release[keys[1]])
		close(blobs.release[keys[0]])
	}()

	urls, err := svc.UploadPostImages(ctx, "post-1", [][]byte{
		[]byte("first"), []byte("second"), []byte("third"),
	})
	if err != nil {
		t.Fatalf("UploadPostImages returned error: %v", err)
	}

	if len(urls) != 3 {
		t.Fatalf("got %d urls, want 3", len(urls))
	}
	for i, key := range keys {
		want := "https://cdn.test/" + key
		if urls[i] != want {
			t.Fatalf("urls[%d] = %q, want %q", i, urls[i], want)
		}
	}
}

func TestUploadPostImagesAllOrNothing(t *testing.T) {
	blobs := newStubBlobStore()
	blobs.failPut[postImageKey("post-2", 1)] = errors.New("storage unavailable")
	svc := &mediaService{blobs: blobs, now: fixedClock}

	urls, err := svc.UploadPostImages(helpers.TestCtx(), "post-2", [][]byte{
		[]byte("a"), []byte("b"), []byte("c"),
	})

	if urls != nil {
		t.Fatalf("expected no urls on failure, got %v", urls)
	}
	var uerr *errs.UploadError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected UploadError, got %T: %v", err, err)
	}
}

func TestUploadPostImagesCountValidation(t *testing.T) {
	blobs := newStubBlobStore()
	svc := &mediaService{blobs: blobs, now: fixedClock}
	ctx := helpers.TestCtx()

	if _, err := svc.UploadPostImages(ctx, "post-3", nil); err == nil {
		t.Fatalf("expected error for zero images")
	}

	four := [][]byte{[]byte("1"), []byte("2"), []byte("3"), []byte("4")}
	_, err := svc.UploadPostImages(ctx, "post-3", four)
	var verr *errs.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for four images, got %T: %v", err, err)
	}

	if blobs.putCount() != 0 {
		t.Fatalf("store was touched on invalid input: %d puts", blobs.putCount())
	}
}

func TestUploadUserImage(t *testing.T) {
	blobs := newStubBlobStore()
	svc := &mediaService{blobs: blobs, now: fixedClock}
	ctx := helpers.TestCtx()

	url, err := svc.UploadUserImage(ctx, "uid-1", []byte("avatar"))
	if err != nil {
		t.Fatalf("UploadUserImage returned error: %v", err)
	}

	want := "https://cdn.test/users/uid-1/userImage.jpg"
	if url != want {
		t.Fatalf("url = %q, want %q", url, want)
	}

	if _, err := svc.UploadUserImage(ctx, "uid-1", nil); err == nil {
		t.Fatalf("expected error for empty image")
	}
}
