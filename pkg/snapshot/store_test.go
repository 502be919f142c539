package snapshot

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/ngclient/ngutils/internal/errors"
	"github.com/ngclient/ngutils/pkg/headtags"
	"github.com/ngclient/ngutils/pkg/ngutils"
	"github.com/ngclient/ngutils/pkg/styleclass"
)

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	ctypes  map[string]string
	failPut error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, ctypes: map[string]string{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.failPut != nil {
		return nil, f.failPut
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[*in.Bucket+"/"+*in.Key] = data
	f.ctypes[*in.Bucket+"/"+*in.Key] = *in.ContentType
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, *in.Bucket+"/"+*in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func sampleModel() ngutils.Model {
	return ngutils.Model{
		ContributedTags: []headtags.ContributedTag{*headtags.ViewportTag(headtags.ViewportDenyZoomIn)},
		StyleClasses:    []styleclass.FormStyleClass{{FormName: "orders", StyleClass: "red bold"}},
	}
}

func testStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := store.Load(ctx, "c1"); err != nil || ok {
		t.Fatalf("Load missing = ok %v err %v", ok, err)
	}

	if err := store.Save(ctx, "c1", sampleModel()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	m, ok, err := store.Load(ctx, "c1")
	if err != nil || !ok {
		t.Fatalf("Load = ok %v err %v", ok, err)
	}
	if len(m.ContributedTags) != 1 || !m.ContributedTags[0].HasAttr("name", "viewport") {
		t.Errorf("tags = %+v", m.ContributedTags)
	}
	if len(m.StyleClasses) != 1 || m.StyleClasses[0].StyleClass != "red bold" {
		t.Errorf("classes = %+v", m.StyleClasses)
	}

	if err := store.Delete(ctx, "c1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, "c1"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
	if _, ok, _ := store.Load(ctx, "c1"); ok {
		t.Error("snapshot should be gone")
	}
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestS3Store(t *testing.T) {
	fake := newFakeS3()
	store := NewS3Store(fake, "bucket", "models/")
	testStore(t, store)

	if err := store.Save(context.Background(), "c2", sampleModel()); err != nil {
		t.Fatal(err)
	}
	if _, ok := fake.objects["bucket/models/c2.json"]; !ok {
		t.Errorf("object key not as expected: %v", fake.objects)
	}
	if fake.ctypes["bucket/models/c2.json"] != "application/json" {
		t.Errorf("content type = %q", fake.ctypes["bucket/models/c2.json"])
	}
}

func TestS3StoreSaveError(t *testing.T) {
	fake := newFakeS3()
	fake.failPut = stderrors.New("access denied")
	store := NewS3Store(fake, "bucket", "")

	err := store.Save(context.Background(), "c1", sampleModel())
	if !stderrors.Is(err, errors.New("N011")) {
		t.Fatalf("err = %v, want N011", err)
	}
	if !stderrors.Is(err, fake.failPut) {
		t.Error("cause should be wrapped")
	}
}

func TestS3StoreCorruptSnapshot(t *testing.T) {
	fake := newFakeS3()
	fake.objects["bucket/bad.json"] = []byte(`{"contributedTags":[{"tagName":"<x>","attrs":[]}]}`)
	store := NewS3Store(fake, "bucket", "")

	_, _, err := store.Load(context.Background(), "bad")
	if !stderrors.Is(err, errors.New("N012")) {
		t.Fatalf("err = %v, want N012", err)
	}
}

func TestEncodeKeepsNullVersusEmpty(t *testing.T) {
	data, err := Encode(ngutils.Model{ContributedTags: []headtags.ContributedTag{}})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"contributedTags":[],"styleclasses":null}` {
		t.Errorf("Encode = %s", data)
	}

	m, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if m.ContributedTags == nil || m.StyleClasses != nil {
		t.Errorf("Decode = %#v", m)
	}
}
