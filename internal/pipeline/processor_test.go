package pipeline

import (
	"context"
	"errors"
	"io"
	"math"
	"reflect"
	"testing"

	"ai-content-consultant/internal/model"
	"ai-content-consultant/pkg/tasks"
)

type fakeEmbedder struct {
	err   error
	texts []string
}

func (f *fakeEmbedder) CreateEmbedding(_ context.Context, text string) ([]float32, error) {
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type memIndexer struct {
	docs []model.ExampleDocument
}

func (m *memIndexer) IndexExample(_ context.Context, doc model.ExampleDocument) error {
	m.docs = append(m.docs, doc)
	return nil
}

type countingCache struct{ calls int }

func (c *countingCache) Invalidate(context.Context) error {
	c.calls++
	return nil
}

type manifestStore struct {
	objects map[string][]byte
}

func (s *manifestStore) Put(context.Context, string, io.Reader, int64, string) error {
	return errors.New("read-only")
}

func (s *manifestStore) Get(_ context.Context, name string) ([]byte, error) {
	data, ok := s.objects[name]
	if !ok {
		return nil, errors.New("missing object")
	}
	return data, nil
}

func TestClassifyCategory(t *testing.T) {
	tests := []struct {
		text, want string
	}{
		{"My 5am morning routine", "lifestyle"},
		{"Leg day workouts at the gym", "fitness"},
		{"Easy pasta recipe", "food"},
		{"Coding my first app", "tech"},
		{"Funny cat compilation", "entertainment"},
		{"A great sunset", "general"},
	}
	for _, tt := range tests {
		if got := ClassifyCategory(tt.text); got != tt.want {
			t.Errorf("ClassifyCategory(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestEngagementRate(t *testing.T) {
	if got := EngagementRate(80, 10, 10, 1000); math.Abs(got-10) > 1e-9 {
		t.Errorf("EngagementRate() = %v, want 10", got)
	}
	if got := EngagementRate(5, 5, 5, 0); got != 0 {
		t.Errorf("EngagementRate() with no views = %v, want 0", got)
	}
}

func TestDocumentFromPost(t *testing.T) {
	doc := DocumentFromPost(model.TrendingPost{
		Platform: "TikTok",
		Text:     "Morning coffee ritual #CoffeeTok #morning",
		Hashtags: []string{"#morning", "asmr"},
		Views:    200,
		Likes:    20,
	})
	if doc.Platform != "tiktok" || doc.ContentType != "video" || doc.Category != "lifestyle" {
		t.Errorf("unexpected doc %+v", doc)
	}
	if want := []string{"morning", "asmr", "coffeetok"}; !reflect.DeepEqual(doc.Hashtags, want) {
		t.Errorf("hashtags = %v, want %v", doc.Hashtags, want)
	}
	if math.Abs(doc.EngagementRate-10) > 1e-9 {
		t.Errorf("engagement = %v", doc.EngagementRate)
	}
	if doc.ExampleID == "" || doc.ExampleID != DocumentFromPost(model.TrendingPost{Platform: "tiktok", Text: doc.Text}).ExampleID {
		t.Error("derived IDs should be stable for the same platform and text")
	}
}

func TestDocumentFromExampleKeepsGivenFields(t *testing.T) {
	doc := DocumentFromExample(model.RetrievalExample{
		ID: "ex-1", Content: "Outfit check", Platform: "unknown", Category: "Fashion", EngagementRate: 4.2,
	})
	if doc.ExampleID != "ex-1" || doc.Category != "fashion" || doc.Platform != string(model.DefaultPlatform) || doc.EngagementRate != 4.2 {
		t.Errorf("unexpected doc %+v", doc)
	}
}

func TestProcess(t *testing.T) {
	embedder := &fakeEmbedder{}
	indexer := &memIndexer{}
	cache := &countingCache{}
	store := &manifestStore{objects: map[string][]byte{
		"manifests/a.json": []byte(`{"source":"weekly","posts":[{"id":"p1","platform":"instagram","text":"Gym glow up","hook":"Day 1 vs day 90"}]}`),
	}}
	p := NewProcessor(embedder, store, indexer, cache, "text-embedding-3-small")

	err := p.Process(context.Background(), tasks.ExampleIngestTask{
		TaskID:         "t1",
		ManifestObject: "manifests/a.json",
		Examples:       []model.RetrievalExample{{Content: "Latte art basics", Platform: "tiktok"}},
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(indexer.docs) != 2 || cache.calls != 1 {
		t.Fatalf("indexed %d docs, %d cache invalidations", len(indexer.docs), cache.calls)
	}
	manifestDoc := indexer.docs[1]
	if manifestDoc.ExampleID != "p1" || manifestDoc.ModelVersion != "text-embedding-3-small" || len(manifestDoc.Vector) != 3 || manifestDoc.IndexedAt.IsZero() {
		t.Errorf("unexpected manifest doc %+v", manifestDoc)
	}
	if embedder.texts[1] != "Day 1 vs day 90\nGym glow up" {
		t.Errorf("embedding text = %q", embedder.texts[1])
	}
}

func TestProcessFailures(t *testing.T) {
	p := NewProcessor(&fakeEmbedder{err: errors.New("quota")}, nil, &memIndexer{}, nil, "m")
	err := p.Process(context.Background(), tasks.ExampleIngestTask{
		TaskID:   "t2",
		Examples: []model.RetrievalExample{{Content: "x", Platform: "tiktok"}},
	})
	if err == nil {
		t.Error("expected an error when nothing is indexed")
	}

	p = NewProcessor(&fakeEmbedder{}, nil, &memIndexer{}, nil, "m")
	if err := p.Process(context.Background(), tasks.ExampleIngestTask{TaskID: "t3", ManifestObject: "m.json"}); err == nil {
		t.Error("expected an error without object storage")
	}
	if err := p.Process(context.Background(), tasks.ExampleIngestTask{TaskID: "t4"}); err != nil {
		t.Errorf("empty task should be a no-op, got %v", err)
	}
}
